// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the interfaces that the application exposes to the outside world
package inbound

import (
	"context"

	"github.com/google/uuid"
)

// MealPlanService defines the use cases for picking dishes and building a cart.
// HTTP handlers and the live cart feed drive the application through it.
type MealPlanService interface {
	// Session lifecycle
	StartSession(ctx context.Context) (*SessionDTO, error)
	GetSession(ctx context.Context, sessionID uuid.UUID) (*SessionDTO, error)
	EndSession(ctx context.Context, sessionID uuid.UUID) error

	// Commands - selection changes, each answering with the recomputed session
	ToggleDish(ctx context.Context, cmd ToggleDishCommand) (*SessionDTO, error)
	ToggleIngredientOriginal(ctx context.Context, cmd ToggleIngredientCommand) (*SessionDTO, error)
	ToggleSubstitution(ctx context.Context, cmd ToggleSubstitutionCommand) (*SessionDTO, error)
	ResetSession(ctx context.Context, sessionID uuid.UUID) (*SessionDTO, error)

	// Queries
	GetCart(ctx context.Context, sessionID uuid.UUID) (*CartDTO, error)
	ListDishes(ctx context.Context, query DishQuery) (*DishList, error)
	GetDish(ctx context.Context, dishID string) (*DishDTO, error)
}

// Command objects for operations

// ToggleDishCommand flips membership of a dish
type ToggleDishCommand struct {
	SessionID uuid.UUID
	DishID    string
}

// ToggleIngredientCommand flips the original form of an ingredient slot
type ToggleIngredientCommand struct {
	SessionID  uuid.UUID
	DishID     string
	Ingredient int
}

// ToggleSubstitutionCommand flips one substitution of an ingredient slot
type ToggleSubstitutionCommand struct {
	SessionID    uuid.UUID
	DishID       string
	Ingredient   int
	Substitution int
}

// DishQuery defines catalog browsing parameters
type DishQuery struct {
	Text       string
	Difficulty string
	MaxTime    int // total time in minutes
	Badge      string
}

// Response DTOs

// SessionDTO is the data transfer object for a selection session
type SessionDTO struct {
	ID       uuid.UUID         `json:"id"`
	Policy   string            `json:"policy"`
	Revision uint64            `json:"revision"`
	Dishes   []SelectedDishDTO `json:"dishes"`
	Cart     CartDTO           `json:"cart"`
}

// SelectedDishDTO lists the active slots of one selected dish
type SelectedDishDTO struct {
	DishID string    `json:"dish_id"`
	Name   string    `json:"name,omitempty"`
	Stale  bool      `json:"stale,omitempty"`
	Slots  []SlotDTO `json:"slots"`
}

// SlotDTO is the active forms of one ingredient slot
type SlotDTO struct {
	Ingredient    int   `json:"ingredient"`
	Original      bool  `json:"original"`
	Substitutions []int `json:"substitutions,omitempty"`
}

// CartDTO is the resolved shopping list of a session
type CartDTO struct {
	SessionID uuid.UUID     `json:"session_id"`
	Revision  uint64        `json:"revision"`
	Lines     []CartLineDTO `json:"lines"`
	Summary   CartSummary   `json:"summary"`
}

// CartLineDTO is one deduplicated cart entry
type CartLineDTO struct {
	Name            string            `json:"name"`
	Quantity        string            `json:"quantity"`
	DishNames       []string          `json:"dish_names"`
	HasSubstitution bool              `json:"has_substitution"`
	Contributions   []ContributionDTO `json:"contributions"`
}

// ContributionDTO records which dish asked for an item and in which form
type ContributionDTO struct {
	DishID         string `json:"dish_id"`
	DishName       string `json:"dish_name"`
	Quantity       string `json:"quantity"`
	IsSubstitution bool   `json:"is_substitution"`
}

// CartSummary totals a cart
type CartSummary struct {
	LineCount         int          `json:"line_count"`
	DishCount         int          `json:"dish_count"`
	SubstitutionCount int          `json:"substitution_count"`
	Nutrition         NutritionDTO `json:"nutrition"`
}

// DishDTO is the data transfer object for catalog dishes
type DishDTO struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	PrepTime    int             `json:"prep_time"`
	CookTime    int             `json:"cook_time"`
	TotalTime   int             `json:"total_time"`
	Calories    int             `json:"calories"`
	Protein     float64         `json:"protein"`
	Difficulty  string          `json:"difficulty,omitempty"`
	Badges      []string        `json:"badges,omitempty"`
	Ingredients []IngredientDTO `json:"ingredients"`
}

// IngredientDTO for ingredient data. Index addresses the slot in toggle calls.
type IngredientDTO struct {
	Index         int               `json:"index"`
	Name          string            `json:"name"`
	Quantity      string            `json:"quantity"`
	Nutrition     NutritionDTO      `json:"nutrition"`
	Substitutions []SubstitutionDTO `json:"substitutions,omitempty"`
}

// SubstitutionDTO for substitution data
type SubstitutionDTO struct {
	Index     int          `json:"index"`
	Name      string       `json:"name"`
	Quantity  string       `json:"quantity"`
	Nutrition NutritionDTO `json:"nutrition"`
}

// NutritionDTO for nutrition information
type NutritionDTO struct {
	Calories      int     `json:"calories"`
	Protein       float64 `json:"protein"`
	Carbohydrates float64 `json:"carbohydrates"`
	Fat           float64 `json:"fat"`
}

// DishList for catalog browsing results
type DishList struct {
	Dishes []DishDTO `json:"dishes"`
	Total  int       `json:"total"`
}
