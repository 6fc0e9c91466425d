package mealplan

import (
	"github.com/google/uuid"

	"github.com/alchemorsel/mealcart/internal/domain/cart"
	"github.com/alchemorsel/mealcart/internal/domain/catalog"
	"github.com/alchemorsel/mealcart/internal/domain/selection"
	"github.com/alchemorsel/mealcart/internal/ports/inbound"
)

func dishToDTO(d *catalog.Dish) inbound.DishDTO {
	dto := inbound.DishDTO{
		ID:          d.ID.String(),
		Name:        d.Name,
		PrepTime:    d.PrepTime,
		CookTime:    d.CookTime,
		TotalTime:   int(d.TotalTime().Minutes()),
		Calories:    d.Calories,
		Protein:     d.Protein,
		Difficulty:  string(d.Difficulty),
		Badges:      d.Badges,
		Ingredients: make([]inbound.IngredientDTO, len(d.Ingredients)),
	}
	for i, ing := range d.Ingredients {
		ingDTO := inbound.IngredientDTO{
			Index:     i,
			Name:      ing.Name,
			Quantity:  ing.Quantity,
			Nutrition: nutritionToDTO(ing.Nutrition),
		}
		for j, sub := range ing.Substitutions {
			ingDTO.Substitutions = append(ingDTO.Substitutions, inbound.SubstitutionDTO{
				Index:     j,
				Name:      sub.Name,
				Quantity:  sub.Quantity,
				Nutrition: nutritionToDTO(sub.Nutrition),
			})
		}
		dto.Ingredients[i] = ingDTO
	}
	return dto
}

func nutritionToDTO(n catalog.NutritionFacts) inbound.NutritionDTO {
	return inbound.NutritionDTO{
		Calories:      n.Calories,
		Protein:       n.Protein,
		Carbohydrates: n.Carbs,
		Fat:           n.Fat,
	}
}

func cartToDTO(sessionID uuid.UUID, revision uint64, lines []cart.Line) inbound.CartDTO {
	summary := cart.Summarize(lines)
	dto := inbound.CartDTO{
		SessionID: sessionID,
		Revision:  revision,
		Lines:     make([]inbound.CartLineDTO, len(lines)),
		Summary: inbound.CartSummary{
			LineCount:         summary.LineCount,
			DishCount:         summary.DishCount,
			SubstitutionCount: summary.SubstitutionCount,
			Nutrition:         nutritionToDTO(summary.Nutrition),
		},
	}
	for i, line := range lines {
		lineDTO := inbound.CartLineDTO{
			Name:            line.Name,
			Quantity:        line.Quantity,
			DishNames:       line.DishNames,
			HasSubstitution: line.HasSubstitution(),
			Contributions:   make([]inbound.ContributionDTO, len(line.Contributions)),
		}
		for j, c := range line.Contributions {
			lineDTO.Contributions[j] = inbound.ContributionDTO{
				DishID:         c.DishID.String(),
				DishName:       c.DishName,
				Quantity:       c.Quantity,
				IsSubstitution: c.IsSubstitution,
			}
		}
		dto.Lines[i] = lineDTO
	}
	return dto
}

func selectedToDTO(lookup catalog.Lookup, state *selection.State) []inbound.SelectedDishDTO {
	snap := state.Snapshot()
	out := make([]inbound.SelectedDishDTO, 0, len(snap.Selected))
	positions := make(map[catalog.DishID]int, len(snap.Selected))
	for _, id := range snap.Selected {
		dto := inbound.SelectedDishDTO{DishID: id.String(), Slots: []inbound.SlotDTO{}}
		if dish, ok := lookup.Dish(id); ok {
			dto.Name = dish.Name
		} else {
			dto.Stale = true
		}
		positions[id] = len(out)
		out = append(out, dto)
	}
	for _, slot := range snap.Slots {
		pos := positions[slot.DishID]
		out[pos].Slots = append(out[pos].Slots, inbound.SlotDTO{
			Ingredient:    slot.Ingredient,
			Original:      slot.Original,
			Substitutions: slot.Substitutions,
		})
	}
	return out
}
