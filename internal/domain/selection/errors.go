package selection

import (
	"errors"
	"fmt"

	"github.com/alchemorsel/mealcart/internal/domain/catalog"
)

// ErrInvalidIndex is matched by every IndexError
var ErrInvalidIndex = errors.New("invalid selection index")

// IndexKind names the coordinate that was out of range
type IndexKind string

const (
	IndexDish         IndexKind = "dish"
	IndexIngredient   IndexKind = "ingredient"
	IndexSubstitution IndexKind = "substitution"
)

// IndexError reports a dish, ingredient or substitution that does not exist
// in the bound catalog. The state is never modified when one is returned.
type IndexError struct {
	Kind         IndexKind
	DishID       catalog.DishID
	Ingredient   int
	Substitution int
}

func (e *IndexError) Error() string {
	switch e.Kind {
	case IndexDish:
		return fmt.Sprintf("unknown dish %q", e.DishID)
	case IndexIngredient:
		return fmt.Sprintf("ingredient %d out of range for dish %q", e.Ingredient, e.DishID)
	default:
		return fmt.Sprintf("substitution %d out of range for ingredient %d of dish %q",
			e.Substitution, e.Ingredient, e.DishID)
	}
}

// Is makes errors.Is(err, ErrInvalidIndex) hold
func (e *IndexError) Is(target error) bool {
	return target == ErrInvalidIndex
}
