package selection

import (
	"time"

	"github.com/alchemorsel/mealcart/internal/domain/catalog"
)

// DishSelectedEvent is raised when a dish joins the selection
type DishSelectedEvent struct {
	DishID       catalog.DishID
	AutoSelected bool
	Defaulted    int // slots whose original was switched on by policy
	SelectedAt   time.Time
}

func (e DishSelectedEvent) EventName() string {
	return "selection.dish.selected"
}

func (e DishSelectedEvent) OccurredAt() time.Time {
	return e.SelectedAt
}

// DishDeselectedEvent is raised when a dish leaves the selection
type DishDeselectedEvent struct {
	DishID       catalog.DishID
	ClearedSlots int
	DeselectedAt time.Time
}

func (e DishDeselectedEvent) EventName() string {
	return "selection.dish.deselected"
}

func (e DishDeselectedEvent) OccurredAt() time.Time {
	return e.DeselectedAt
}

// IngredientToggledEvent is raised when an ingredient's original form flips
type IngredientToggledEvent struct {
	DishID     catalog.DishID
	Ingredient int
	On         bool
	ToggledAt  time.Time
}

func (e IngredientToggledEvent) EventName() string {
	return "selection.ingredient.toggled"
}

func (e IngredientToggledEvent) OccurredAt() time.Time {
	return e.ToggledAt
}

// SubstitutionToggledEvent is raised when a substitution flips
type SubstitutionToggledEvent struct {
	DishID       catalog.DishID
	Ingredient   int
	Substitution int
	On           bool
	ToggledAt    time.Time
}

func (e SubstitutionToggledEvent) EventName() string {
	return "selection.substitution.toggled"
}

func (e SubstitutionToggledEvent) OccurredAt() time.Time {
	return e.ToggledAt
}

// SelectionResetEvent is raised when every selection is cleared
type SelectionResetEvent struct {
	ClearedDishes int
	ResetAt       time.Time
}

func (e SelectionResetEvent) EventName() string {
	return "selection.reset"
}

func (e SelectionResetEvent) OccurredAt() time.Time {
	return e.ResetAt
}
