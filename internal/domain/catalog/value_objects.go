// Package catalog contains the dish catalog consumed by meal selection.
// Dishes are immutable once loaded; ingredients are addressed by their
// position inside the owning dish.
package catalog

import "time"

// DishID identifies a dish. Numeric identifiers are carried as decimal
// strings; dishes loaded without one get a slug of their name.
type DishID string

// String returns the raw identifier
func (id DishID) String() string {
	return string(id)
}

// Dish is a recipe that can be picked from a weekly plan
type Dish struct {
	ID          DishID
	Name        string
	CookTime    int // minutes
	PrepTime    int // minutes
	Calories    int
	Protein     float64 // grams
	Difficulty  DifficultyLevel
	Ingredients []Ingredient
	Badges      []string
}

// TotalTime returns prep plus cook time
func (d *Dish) TotalTime() time.Duration {
	return time.Duration(d.PrepTime+d.CookTime) * time.Minute
}

// Ingredient returns the ingredient at index and whether it exists
func (d *Dish) Ingredient(index int) (Ingredient, bool) {
	if index < 0 || index >= len(d.Ingredients) {
		return Ingredient{}, false
	}
	return d.Ingredients[index], true
}

// Ingredient is one slot of a dish. Quantity is free text ("2 lbs",
// "1/4 cup fresh") and is never parsed.
type Ingredient struct {
	Name          string
	Quantity      string
	Nutrition     NutritionFacts
	Substitutions []Substitution
}

// Substitution returns the alternative at index and whether it exists
func (i Ingredient) Substitution(index int) (Substitution, bool) {
	if index < 0 || index >= len(i.Substitutions) {
		return Substitution{}, false
	}
	return i.Substitutions[index], true
}

// Substitution is a peer alternative to an ingredient's original form
type Substitution struct {
	Name      string
	Quantity  string
	Nutrition NutritionFacts
}

// NutritionFacts contains per-form nutritional information
type NutritionFacts struct {
	Calories int
	Protein  float64 // in grams
	Carbs    float64 // in grams
	Fat      float64 // in grams
}

// Add returns the element-wise sum of two facts
func (n NutritionFacts) Add(other NutritionFacts) NutritionFacts {
	return NutritionFacts{
		Calories: n.Calories + other.Calories,
		Protein:  n.Protein + other.Protein,
		Carbs:    n.Carbs + other.Carbs,
		Fat:      n.Fat + other.Fat,
	}
}

// DifficultyLevel represents dish difficulty
type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "easy"
	DifficultyMedium DifficultyLevel = "medium"
	DifficultyHard   DifficultyLevel = "hard"
)

// Valid reports whether the level is one of the known labels.
// An empty level is accepted and means "unrated".
func (l DifficultyLevel) Valid() bool {
	switch l {
	case "", DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}
