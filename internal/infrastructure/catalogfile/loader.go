// Package catalogfile loads the dish catalog from a YAML file and keeps it
// in sync with the file on disk.
package catalogfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/alchemorsel/mealcart/internal/domain/catalog"
)

// File is the document layout of a catalog file
type File struct {
	Dishes []DishEntry `yaml:"dishes" validate:"required,min=1,dive"`
}

// DishEntry is one dish in a catalog file. Numeric ids ("id: 3") decode
// as their decimal string.
type DishEntry struct {
	ID          string            `yaml:"id,omitempty"`
	Name        string            `yaml:"name" validate:"required"`
	PrepTime    int               `yaml:"prep_time" validate:"min=0"`
	CookTime    int               `yaml:"cook_time" validate:"min=0"`
	Calories    int               `yaml:"calories" validate:"min=0"`
	Protein     float64           `yaml:"protein" validate:"min=0"`
	Difficulty  string            `yaml:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	Badges      []string          `yaml:"badges,omitempty"`
	Ingredients []IngredientEntry `yaml:"ingredients,omitempty" validate:"dive"`
}

// IngredientEntry is one ingredient slot of a dish
type IngredientEntry struct {
	Name          string              `yaml:"name" validate:"required"`
	Quantity      string              `yaml:"quantity"`
	Nutrition     NutritionEntry      `yaml:"nutrition"`
	Substitutions []SubstitutionEntry `yaml:"substitutions,omitempty" validate:"dive"`
}

// SubstitutionEntry is an alternative form of an ingredient
type SubstitutionEntry struct {
	Name      string         `yaml:"name" validate:"required"`
	Quantity  string         `yaml:"quantity"`
	Nutrition NutritionEntry `yaml:"nutrition"`
}

// NutritionEntry holds optional nutrition facts
type NutritionEntry struct {
	Calories int     `yaml:"calories" validate:"min=0"`
	Protein  float64 `yaml:"protein" validate:"min=0"`
	Carbs    float64 `yaml:"carbs" validate:"min=0"`
	Fat      float64 `yaml:"fat" validate:"min=0"`
}

var validate = validator.New()

// LoadFile reads and validates the catalog file at path
func LoadFile(path string) ([]catalog.Dish, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Parse(bytes.NewReader(data))
}

// Parse decodes a catalog document. Unknown keys are rejected so typos in
// hand-edited files surface instead of silently dropping data.
func Parse(r io.Reader) ([]catalog.Dish, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var file File
	if err := decoder.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("catalog file is empty")
		}
		return nil, fmt.Errorf("failed to decode catalog file: %w", err)
	}

	if err := validate.Struct(file); err != nil {
		return nil, fmt.Errorf("invalid catalog file: %w", err)
	}

	dishes := make([]catalog.Dish, 0, len(file.Dishes))
	for _, entry := range file.Dishes {
		dishes = append(dishes, entry.toDish())
	}
	return dishes, nil
}

// Encode writes dishes in catalog file layout
func Encode(w io.Writer, dishes []catalog.Dish) error {
	file := File{Dishes: make([]DishEntry, 0, len(dishes))}
	for _, d := range dishes {
		file.Dishes = append(file.Dishes, fromDish(d))
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(file); err != nil {
		return fmt.Errorf("failed to encode catalog file: %w", err)
	}
	return encoder.Close()
}

func (e DishEntry) toDish() catalog.Dish {
	dish := catalog.Dish{
		ID:         catalog.DishID(e.ID),
		Name:       e.Name,
		PrepTime:   e.PrepTime,
		CookTime:   e.CookTime,
		Calories:   e.Calories,
		Protein:    e.Protein,
		Difficulty: catalog.DifficultyLevel(e.Difficulty),
		Badges:     e.Badges,
	}
	for _, ing := range e.Ingredients {
		ingredient := catalog.Ingredient{
			Name:      ing.Name,
			Quantity:  ing.Quantity,
			Nutrition: ing.Nutrition.toFacts(),
		}
		for _, sub := range ing.Substitutions {
			ingredient.Substitutions = append(ingredient.Substitutions, catalog.Substitution{
				Name:      sub.Name,
				Quantity:  sub.Quantity,
				Nutrition: sub.Nutrition.toFacts(),
			})
		}
		dish.Ingredients = append(dish.Ingredients, ingredient)
	}
	return dish
}

func fromDish(d catalog.Dish) DishEntry {
	entry := DishEntry{
		ID:         d.ID.String(),
		Name:       d.Name,
		PrepTime:   d.PrepTime,
		CookTime:   d.CookTime,
		Calories:   d.Calories,
		Protein:    d.Protein,
		Difficulty: string(d.Difficulty),
		Badges:     d.Badges,
	}
	for _, ing := range d.Ingredients {
		ingredient := IngredientEntry{
			Name:      ing.Name,
			Quantity:  ing.Quantity,
			Nutrition: toEntry(ing.Nutrition),
		}
		for _, sub := range ing.Substitutions {
			ingredient.Substitutions = append(ingredient.Substitutions, SubstitutionEntry{
				Name:      sub.Name,
				Quantity:  sub.Quantity,
				Nutrition: toEntry(sub.Nutrition),
			})
		}
		entry.Ingredients = append(entry.Ingredients, ingredient)
	}
	return entry
}

func (n NutritionEntry) toFacts() catalog.NutritionFacts {
	return catalog.NutritionFacts{Calories: n.Calories, Protein: n.Protein, Carbs: n.Carbs, Fat: n.Fat}
}

func toEntry(n catalog.NutritionFacts) NutritionEntry {
	return NutritionEntry{Calories: n.Calories, Protein: n.Protein, Carbs: n.Carbs, Fat: n.Fat}
}
