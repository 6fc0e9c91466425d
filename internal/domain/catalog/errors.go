package catalog

import "errors"

// Catalog validation errors
var (
	ErrDishNameRequired       = errors.New("dish name is required")
	ErrIngredientNameRequired = errors.New("ingredient name is required")
	ErrDuplicateDish          = errors.New("duplicate dish identifier")
	ErrInvalidDifficulty      = errors.New("unknown difficulty level")
)
