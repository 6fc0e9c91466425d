package sqlite

import "github.com/alchemorsel/mealcart/internal/domain/catalog"

// DemoDishes is the weekly plan loaded into an empty database
func DemoDishes() []catalog.Dish {
	return []catalog.Dish{
		{
			ID:         "1",
			Name:       "Garlic Butter Salmon",
			PrepTime:   10,
			CookTime:   15,
			Calories:   520,
			Protein:    38,
			Difficulty: catalog.DifficultyEasy,
			Badges:     []string{"High Protein", "Quick"},
			Ingredients: []catalog.Ingredient{
				{
					Name:      "Salmon Fillet",
					Quantity:  "2 fillets",
					Nutrition: catalog.NutritionFacts{Calories: 360, Protein: 34, Fat: 22},
					Substitutions: []catalog.Substitution{
						{Name: "Cod Fillet", Quantity: "2 fillets", Nutrition: catalog.NutritionFacts{Calories: 180, Protein: 40, Fat: 2}},
						{Name: "Firm Tofu", Quantity: "14 oz", Nutrition: catalog.NutritionFacts{Calories: 300, Protein: 32, Carbs: 8, Fat: 16}},
					},
				},
				{
					Name:      "Garlic",
					Quantity:  "4 cloves",
					Nutrition: catalog.NutritionFacts{Calories: 18, Protein: 0.8, Carbs: 4},
					Substitutions: []catalog.Substitution{
						{Name: "Garlic Powder", Quantity: "1 tsp", Nutrition: catalog.NutritionFacts{Calories: 10, Protein: 0.5, Carbs: 2}},
					},
				},
				{
					Name:      "Butter",
					Quantity:  "2 tbsp",
					Nutrition: catalog.NutritionFacts{Calories: 204, Fat: 23},
					Substitutions: []catalog.Substitution{
						{Name: "Olive Oil", Quantity: "2 tbsp", Nutrition: catalog.NutritionFacts{Calories: 240, Fat: 27}},
					},
				},
				{Name: "Lemon", Quantity: "1", Nutrition: catalog.NutritionFacts{Calories: 17, Carbs: 5}},
			},
		},
		{
			ID:         "2",
			Name:       "Chicken Stir Fry",
			PrepTime:   15,
			CookTime:   12,
			Calories:   450,
			Protein:    35,
			Difficulty: catalog.DifficultyEasy,
			Badges:     []string{"Family Friendly"},
			Ingredients: []catalog.Ingredient{
				{
					Name:      "Chicken Breast",
					Quantity:  "1 lb",
					Nutrition: catalog.NutritionFacts{Calories: 540, Protein: 100, Fat: 12},
					Substitutions: []catalog.Substitution{
						{Name: "Chicken Thighs", Quantity: "1 lb", Nutrition: catalog.NutritionFacts{Calories: 680, Protein: 88, Fat: 36}},
					},
				},
				{Name: "Broccoli", Quantity: "2 cups", Nutrition: catalog.NutritionFacts{Calories: 62, Protein: 5, Carbs: 12}},
				{
					Name:      "Soy Sauce",
					Quantity:  "3 tbsp",
					Nutrition: catalog.NutritionFacts{Calories: 27, Protein: 4, Carbs: 3},
					Substitutions: []catalog.Substitution{
						{Name: "Coconut Aminos", Quantity: "3 tbsp", Nutrition: catalog.NutritionFacts{Calories: 45, Carbs: 9}},
					},
				},
				{Name: "Garlic", Quantity: "2 cloves", Nutrition: catalog.NutritionFacts{Calories: 9, Protein: 0.4, Carbs: 2}},
			},
		},
		{
			ID:         "3",
			Name:       "Mediterranean Quinoa Bowl",
			PrepTime:   20,
			CookTime:   15,
			Calories:   410,
			Protein:    14,
			Difficulty: catalog.DifficultyMedium,
			Badges:     []string{"Vegetarian"},
			Ingredients: []catalog.Ingredient{
				{Name: "Quinoa", Quantity: "1 cup", Nutrition: catalog.NutritionFacts{Calories: 626, Protein: 24, Carbs: 109, Fat: 10}},
				{
					Name:      "Feta Cheese",
					Quantity:  "1/2 cup crumbled",
					Nutrition: catalog.NutritionFacts{Calories: 198, Protein: 11, Carbs: 3, Fat: 16},
					Substitutions: []catalog.Substitution{
						{Name: "Vegan Feta", Quantity: "1/2 cup", Nutrition: catalog.NutritionFacts{Calories: 160, Carbs: 6, Fat: 14}},
					},
				},
				{Name: "Cherry Tomatoes", Quantity: "1 pint", Nutrition: catalog.NutritionFacts{Calories: 54, Protein: 2.6, Carbs: 12}},
				{Name: "Olive Oil", Quantity: "1 tbsp", Nutrition: catalog.NutritionFacts{Calories: 120, Fat: 14}},
			},
		},
	}
}
