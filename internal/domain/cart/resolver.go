// Package cart projects a selection onto a deduplicated shopping list.
// Quantities are free text: repeated items have their quantities joined
// for the shopper to review, never added up.
package cart

import (
	"github.com/alchemorsel/mealcart/internal/domain/catalog"
	"github.com/alchemorsel/mealcart/internal/domain/selection"
)

// QuantitySeparator joins the quantities of a repeated item
const QuantitySeparator = " + "

// Selection is the read side of a selection state the resolver needs
type Selection interface {
	SelectedDishes() []catalog.DishID
	Choice(id catalog.DishID, ingredient int) selection.Choice
}

// Contribution is one active ingredient form of one selected dish
type Contribution struct {
	Name           string
	Quantity       string
	DishID         catalog.DishID
	DishName       string
	IsSubstitution bool
	Nutrition      catalog.NutritionFacts
}

// Line is a cart entry aggregating every contribution with the same name
type Line struct {
	Name          string
	Quantity      string
	DishNames     []string
	Contributions []Contribution
}

// HasSubstitution reports whether any contribution is a substitution
func (l Line) HasSubstitution() bool {
	for _, c := range l.Contributions {
		if c.IsSubstitution {
			return true
		}
	}
	return false
}

// Contributions lists the active forms of every selected dish in selection
// order, then ingredient order, original before substitutions. Dishes
// missing from the catalog are skipped.
func Contributions(lookup catalog.Lookup, sel Selection) []Contribution {
	var out []Contribution
	for _, id := range sel.SelectedDishes() {
		dish, ok := lookup.Dish(id)
		if !ok {
			continue
		}
		for i, ing := range dish.Ingredients {
			choice := sel.Choice(id, i)
			if choice.Original {
				out = append(out, Contribution{
					Name:      ing.Name,
					Quantity:  ing.Quantity,
					DishID:    dish.ID,
					DishName:  dish.Name,
					Nutrition: ing.Nutrition,
				})
			}
			for _, idx := range choice.ActiveSubstitutions() {
				sub, ok := ing.Substitution(idx)
				if !ok {
					continue
				}
				out = append(out, Contribution{
					Name:           sub.Name,
					Quantity:       sub.Quantity,
					DishID:         dish.ID,
					DishName:       dish.Name,
					IsSubstitution: true,
					Nutrition:      sub.Nutrition,
				})
			}
		}
	}
	return out
}

// Fold merges contributions by exact name in first-seen order
func Fold(contributions []Contribution) []Line {
	lines := make([]Line, 0, len(contributions))
	index := make(map[string]int, len(contributions))

	for _, c := range contributions {
		pos, seen := index[c.Name]
		if !seen {
			index[c.Name] = len(lines)
			lines = append(lines, Line{
				Name:          c.Name,
				Quantity:      c.Quantity,
				DishNames:     []string{c.DishName},
				Contributions: []Contribution{c},
			})
			continue
		}

		line := &lines[pos]
		line.Quantity += QuantitySeparator + c.Quantity
		line.Contributions = append(line.Contributions, c)
		if !containsString(line.DishNames, c.DishName) {
			line.DishNames = append(line.DishNames, c.DishName)
		}
	}
	return lines
}

// Resolve builds the cart for a selection. It never fails: an empty or
// stale selection yields an empty cart.
func Resolve(lookup catalog.Lookup, sel Selection) []Line {
	return Fold(Contributions(lookup, sel))
}

func containsString(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
