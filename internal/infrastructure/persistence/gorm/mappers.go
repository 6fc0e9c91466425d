package gorm

import (
	"github.com/alchemorsel/mealcart/internal/domain/catalog"
	"github.com/alchemorsel/mealcart/internal/domain/selection"
)

// DishToModel converts a dish to its GORM model
func DishToModel(d *catalog.Dish, position int) *DishModel {
	model := &DishModel{
		ID:              d.ID.String(),
		Position:        position,
		Name:            d.Name,
		PrepTimeMinutes: d.PrepTime,
		CookTimeMinutes: d.CookTime,
		Calories:        d.Calories,
		Protein:         d.Protein,
		Difficulty:      string(d.Difficulty),
		Badges:          StringSlice(d.Badges),
		Ingredients:     make(IngredientList, len(d.Ingredients)),
	}
	for i, ing := range d.Ingredients {
		rec := IngredientRecord{
			Name:      ing.Name,
			Quantity:  ing.Quantity,
			Nutrition: nutritionToRecord(ing.Nutrition),
		}
		for _, sub := range ing.Substitutions {
			rec.Substitutions = append(rec.Substitutions, SubstitutionRecord{
				Name:      sub.Name,
				Quantity:  sub.Quantity,
				Nutrition: nutritionToRecord(sub.Nutrition),
			})
		}
		model.Ingredients[i] = rec
	}
	return model
}

// ModelToDish converts a GORM model back to a dish
func ModelToDish(model *DishModel) catalog.Dish {
	d := catalog.Dish{
		ID:          catalog.DishID(model.ID),
		Name:        model.Name,
		PrepTime:    model.PrepTimeMinutes,
		CookTime:    model.CookTimeMinutes,
		Calories:    model.Calories,
		Protein:     model.Protein,
		Difficulty:  catalog.DifficultyLevel(model.Difficulty),
		Badges:      []string(model.Badges),
		Ingredients: make([]catalog.Ingredient, len(model.Ingredients)),
	}
	for i, rec := range model.Ingredients {
		ing := catalog.Ingredient{
			Name:      rec.Name,
			Quantity:  rec.Quantity,
			Nutrition: recordToNutrition(rec.Nutrition),
		}
		for _, sub := range rec.Substitutions {
			ing.Substitutions = append(ing.Substitutions, catalog.Substitution{
				Name:      sub.Name,
				Quantity:  sub.Quantity,
				Nutrition: recordToNutrition(sub.Nutrition),
			})
		}
		d.Ingredients[i] = ing
	}
	return d
}

// SnapshotToField converts a selection snapshot to its JSON column
func SnapshotToField(snap selection.Snapshot) SnapshotField {
	field := SnapshotField{Selected: make([]string, len(snap.Selected))}
	for i, id := range snap.Selected {
		field.Selected[i] = id.String()
	}
	for _, slot := range snap.Slots {
		field.Slots = append(field.Slots, SnapshotSlotRecord{
			DishID:        slot.DishID.String(),
			Ingredient:    slot.Ingredient,
			Original:      slot.Original,
			Substitutions: slot.Substitutions,
		})
	}
	return field
}

// FieldToSnapshot converts a stored JSON column back to a snapshot
func FieldToSnapshot(field SnapshotField, revision uint64) selection.Snapshot {
	snap := selection.Snapshot{
		Selected: make([]catalog.DishID, len(field.Selected)),
		Revision: revision,
	}
	for i, id := range field.Selected {
		snap.Selected[i] = catalog.DishID(id)
	}
	for _, slot := range field.Slots {
		snap.Slots = append(snap.Slots, selection.SlotSnapshot{
			DishID:        catalog.DishID(slot.DishID),
			Ingredient:    slot.Ingredient,
			Original:      slot.Original,
			Substitutions: slot.Substitutions,
		})
	}
	return snap
}

func nutritionToRecord(n catalog.NutritionFacts) NutritionRecord {
	return NutritionRecord{Calories: n.Calories, Protein: n.Protein, Carbs: n.Carbs, Fat: n.Fat}
}

func recordToNutrition(r NutritionRecord) catalog.NutritionFacts {
	return catalog.NutritionFacts{Calories: r.Calories, Protein: r.Protein, Carbs: r.Carbs, Fat: r.Fat}
}
