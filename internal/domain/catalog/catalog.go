package catalog

import (
	"fmt"
	"strings"
	"time"
)

// Lookup resolves dishes by identifier
type Lookup interface {
	Dish(id DishID) (*Dish, bool)
}

// Catalog is an immutable, ordered set of dishes
type Catalog struct {
	dishes []Dish
	index  map[DishID]int
}

// NewCatalog validates dishes and builds a catalog preserving input order.
// Dishes without an identifier receive a slug of their name, or their
// position ("dish-3") when the name has no letters or digits.
func NewCatalog(dishes []Dish) (*Catalog, error) {
	c := &Catalog{
		dishes: make([]Dish, 0, len(dishes)),
		index:  make(map[DishID]int, len(dishes)),
	}

	for i, d := range dishes {
		d.Name = strings.TrimSpace(d.Name)
		if d.Name == "" {
			return nil, fmt.Errorf("dish %d: %w", i, ErrDishNameRequired)
		}
		if d.ID == "" {
			d.ID = Slugify(d.Name)
		}
		if d.ID == "" {
			d.ID = DishID(fmt.Sprintf("dish-%d", i+1))
		}
		if !d.Difficulty.Valid() {
			return nil, fmt.Errorf("dish %q: %w: %s", d.ID, ErrInvalidDifficulty, d.Difficulty)
		}
		for j, ing := range d.Ingredients {
			if strings.TrimSpace(ing.Name) == "" {
				return nil, fmt.Errorf("dish %q ingredient %d: %w", d.ID, j, ErrIngredientNameRequired)
			}
		}
		if _, exists := c.index[d.ID]; exists {
			return nil, fmt.Errorf("dish %q: %w", d.ID, ErrDuplicateDish)
		}

		c.index[d.ID] = len(c.dishes)
		c.dishes = append(c.dishes, cloneDish(d))
	}

	return c, nil
}

// Dish returns the dish with the given identifier
func (c *Catalog) Dish(id DishID) (*Dish, bool) {
	if c == nil {
		return nil, false
	}
	i, ok := c.index[id]
	if !ok {
		return nil, false
	}
	d := c.dishes[i]
	return &d, true
}

// Dishes returns every dish in catalog order
func (c *Catalog) Dishes() []Dish {
	if c == nil {
		return nil
	}
	out := make([]Dish, len(c.dishes))
	copy(out, c.dishes)
	return out
}

// Len returns the number of dishes
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.dishes)
}

// Filter narrows a catalog search. Zero values match everything.
type Filter struct {
	Query        string
	Difficulty   DifficultyLevel
	MaxTotalTime time.Duration
	Badge        string
}

// Search returns the dishes matching filter in catalog order
func (c *Catalog) Search(filter Filter) []Dish {
	if c == nil {
		return nil
	}

	query := strings.ToLower(strings.TrimSpace(filter.Query))
	var out []Dish
	for i := range c.dishes {
		d := &c.dishes[i]
		if filter.Difficulty != "" && d.Difficulty != filter.Difficulty {
			continue
		}
		if filter.MaxTotalTime > 0 && d.TotalTime() > filter.MaxTotalTime {
			continue
		}
		if filter.Badge != "" && !hasBadge(d, filter.Badge) {
			continue
		}
		if query != "" && !matchesQuery(d, query) {
			continue
		}
		out = append(out, *d)
	}
	return out
}

func hasBadge(d *Dish, badge string) bool {
	for _, b := range d.Badges {
		if strings.EqualFold(b, badge) {
			return true
		}
	}
	return false
}

func matchesQuery(d *Dish, query string) bool {
	if strings.Contains(strings.ToLower(d.Name), query) {
		return true
	}
	for _, ing := range d.Ingredients {
		if strings.Contains(strings.ToLower(ing.Name), query) {
			return true
		}
	}
	for _, b := range d.Badges {
		if strings.Contains(strings.ToLower(b), query) {
			return true
		}
	}
	return false
}

// cloneDish copies the slices so callers cannot mutate catalog contents
func cloneDish(d Dish) Dish {
	if d.Ingredients != nil {
		ings := make([]Ingredient, len(d.Ingredients))
		for i, ing := range d.Ingredients {
			if ing.Substitutions != nil {
				ing.Substitutions = append([]Substitution(nil), ing.Substitutions...)
			}
			ings[i] = ing
		}
		d.Ingredients = ings
	}
	if d.Badges != nil {
		d.Badges = append([]string(nil), d.Badges...)
	}
	return d
}
