// Package testutils provides test data factories for consistent test data generation
package testutils

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/alchemorsel/mealcart/internal/domain/catalog"
)

// DishFactory provides methods to create test dishes
type DishFactory struct {
	faker *gofakeit.Faker
	next  int
}

// NewDishFactory creates a new dish factory with seeded faker
func NewDishFactory(seed int64) *DishFactory {
	return &DishFactory{
		faker: gofakeit.New(seed),
	}
}

// Dish creates a dish with the given number of ingredients, each carrying
// subs substitutions. IDs are sequential decimal strings.
func (f *DishFactory) Dish(ingredients, subs int) catalog.Dish {
	f.next++
	builder := NewDishBuilder().
		WithID(fmt.Sprintf("%d", f.next)).
		WithName(fmt.Sprintf("%s %s", f.faker.Adjective(), f.faker.Dinner()))

	for i := 0; i < ingredients; i++ {
		ing := catalog.Ingredient{
			Name:      fmt.Sprintf("%s %d", f.faker.Vegetable(), f.next*100+i),
			Quantity:  fmt.Sprintf("%d %s", f.faker.Number(1, 4), f.faker.RandomString([]string{"cups", "lbs", "tbsp", "cloves"})),
			Nutrition: f.nutrition(),
		}
		for s := 0; s < subs; s++ {
			ing.Substitutions = append(ing.Substitutions, catalog.Substitution{
				Name:      fmt.Sprintf("%s %d-%d", f.faker.Fruit(), f.next*100+i, s),
				Quantity:  fmt.Sprintf("%d oz", f.faker.Number(1, 16)),
				Nutrition: f.nutrition(),
			})
		}
		builder.WithIngredient(ing)
	}

	return builder.Build()
}

// Catalog creates a catalog of n dishes
func (f *DishFactory) Catalog(n, ingredients, subs int) *catalog.Catalog {
	dishes := make([]catalog.Dish, n)
	for i := range dishes {
		dishes[i] = f.Dish(ingredients, subs)
	}
	cat, err := catalog.NewCatalog(dishes)
	if err != nil {
		panic(fmt.Sprintf("factory produced an invalid catalog: %v", err))
	}
	return cat
}

func (f *DishFactory) nutrition() catalog.NutritionFacts {
	return catalog.NutritionFacts{
		Calories: f.faker.Number(10, 400),
		Protein:  float64(f.faker.Number(0, 40)),
		Carbs:    float64(f.faker.Number(0, 60)),
		Fat:      float64(f.faker.Number(0, 30)),
	}
}

// DishBuilder provides a fluent interface for building test dishes
type DishBuilder struct {
	dish catalog.Dish
}

// NewDishBuilder creates a new dish builder with default values
func NewDishBuilder() *DishBuilder {
	return &DishBuilder{
		dish: catalog.Dish{
			Name:       gofakeit.Dinner(),
			PrepTime:   15,
			CookTime:   30,
			Calories:   550,
			Protein:    30,
			Difficulty: catalog.DifficultyMedium,
		},
	}
}

// WithID sets the dish ID
func (b *DishBuilder) WithID(id string) *DishBuilder {
	b.dish.ID = catalog.DishID(id)
	return b
}

// WithName sets the dish name
func (b *DishBuilder) WithName(name string) *DishBuilder {
	b.dish.Name = name
	return b
}

// WithTimings sets prep and cook time
func (b *DishBuilder) WithTimings(prep, cook time.Duration) *DishBuilder {
	b.dish.PrepTime = int(prep / time.Minute)
	b.dish.CookTime = int(cook / time.Minute)
	return b
}

// WithDifficulty sets the dish difficulty
func (b *DishBuilder) WithDifficulty(difficulty catalog.DifficultyLevel) *DishBuilder {
	b.dish.Difficulty = difficulty
	return b
}

// WithBadges sets the dish badges
func (b *DishBuilder) WithBadges(badges ...string) *DishBuilder {
	b.dish.Badges = badges
	return b
}

// WithIngredient appends an ingredient slot
func (b *DishBuilder) WithIngredient(ing catalog.Ingredient) *DishBuilder {
	b.dish.Ingredients = append(b.dish.Ingredients, ing)
	return b
}

// WithSimpleIngredient appends an ingredient with optional substitutions
// given as name/quantity pairs
func (b *DishBuilder) WithSimpleIngredient(name, quantity string, subs ...[2]string) *DishBuilder {
	ing := catalog.Ingredient{Name: name, Quantity: quantity}
	for _, s := range subs {
		ing.Substitutions = append(ing.Substitutions, catalog.Substitution{Name: s[0], Quantity: s[1]})
	}
	return b.WithIngredient(ing)
}

// Build returns the dish
func (b *DishBuilder) Build() catalog.Dish {
	return b.dish
}
