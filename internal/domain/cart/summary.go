package cart

import "github.com/alchemorsel/mealcart/internal/domain/catalog"

// Summary totals a resolved cart
type Summary struct {
	LineCount         int
	DishCount         int
	SubstitutionCount int
	Nutrition         catalog.NutritionFacts
}

// Summarize totals the lines of a cart. Nutrition is summed over every
// contribution since each one is a distinct purchase.
func Summarize(lines []Line) Summary {
	summary := Summary{LineCount: len(lines)}
	dishes := make(map[catalog.DishID]struct{})
	for _, line := range lines {
		for _, c := range line.Contributions {
			dishes[c.DishID] = struct{}{}
			if c.IsSubstitution {
				summary.SubstitutionCount++
			}
			summary.Nutrition = summary.Nutrition.Add(c.Nutrition)
		}
	}
	summary.DishCount = len(dishes)
	return summary
}
