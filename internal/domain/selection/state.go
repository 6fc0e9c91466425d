// Package selection owns the dishes a user picked and, per ingredient slot,
// which forms (original and substitutions) are active.
package selection

import (
	"sort"
	"time"

	"github.com/alchemorsel/mealcart/internal/domain/catalog"
	"github.com/alchemorsel/mealcart/internal/domain/shared"
)

// Choice is the active forms of one ingredient slot. The original and any
// number of substitutions may be on at the same time.
type Choice struct {
	Original      bool
	Substitutions map[int]bool
}

// Empty reports whether no form is active
func (c Choice) Empty() bool {
	if c.Original {
		return false
	}
	for _, on := range c.Substitutions {
		if on {
			return false
		}
	}
	return true
}

// ActiveSubstitutions returns the indexes switched on, ascending
func (c Choice) ActiveSubstitutions() []int {
	var out []int
	for idx, on := range c.Substitutions {
		if on {
			out = append(out, idx)
		}
	}
	sort.Ints(out)
	return out
}

func (c Choice) clone() Choice {
	out := Choice{Original: c.Original}
	if len(c.Substitutions) > 0 {
		out.Substitutions = make(map[int]bool, len(c.Substitutions))
		for k, v := range c.Substitutions {
			out.Substitutions[k] = v
		}
	}
	return out
}

// State is the selection of a single session. It is not safe for
// concurrent use; callers serialise access per session.
type State struct {
	lookup   catalog.Lookup
	policy   Policy
	selected []catalog.DishID
	choices  map[catalog.DishID]map[int]Choice
	revision uint64
	now      func() time.Time

	shared.EventRecorder
}

// NewState creates an empty selection validated against lookup
func NewState(lookup catalog.Lookup, policy Policy) *State {
	return &State{
		lookup:  lookup,
		policy:  policy,
		choices: make(map[catalog.DishID]map[int]Choice),
		now:     time.Now,
	}
}

// Policy returns the dish-select policy in effect
func (s *State) Policy() Policy {
	return s.policy
}

// Revision increases on every successful mutation
func (s *State) Revision() uint64 {
	return s.revision
}

// IsSelected reports whether the dish is in the selection
func (s *State) IsSelected(id catalog.DishID) bool {
	return s.position(id) >= 0
}

// SelectedDishes returns the selected identifiers in selection order
func (s *State) SelectedDishes() []catalog.DishID {
	out := make([]catalog.DishID, len(s.selected))
	copy(out, s.selected)
	return out
}

// Choice returns the active forms of a slot. Slots of deselected dishes
// always read as empty.
func (s *State) Choice(id catalog.DishID, ingredient int) Choice {
	if !s.IsSelected(id) {
		return Choice{}
	}
	return s.choices[id][ingredient].clone()
}

// IsEmpty reports whether nothing is selected
func (s *State) IsEmpty() bool {
	return len(s.selected) == 0
}

// ToggleDish flips membership of a dish. Deselecting clears every slot of
// the dish; selecting applies the state's policy.
func (s *State) ToggleDish(id catalog.DishID) error {
	if s.IsSelected(id) {
		s.deselect(id)
		s.bump()
		return nil
	}

	dish, ok := s.lookup.Dish(id)
	if !ok {
		return &IndexError{Kind: IndexDish, DishID: id}
	}

	defaulted := 0
	if s.policy == PolicyDefaultOriginals {
		slots := make(map[int]Choice, len(dish.Ingredients))
		for i := range dish.Ingredients {
			slots[i] = Choice{Original: true}
		}
		s.choices[id] = slots
		defaulted = len(slots)
	}
	s.selected = append(s.selected, id)
	s.Record(DishSelectedEvent{DishID: id, Defaulted: defaulted, SelectedAt: s.now()})
	s.bump()
	return nil
}

// ToggleIngredientOriginal flips the original form of a slot. Switching it
// on for an unselected dish selects the dish without applying the policy.
func (s *State) ToggleIngredientOriginal(id catalog.DishID, ingredient int) error {
	if _, err := s.ingredient(id, ingredient); err != nil {
		return err
	}

	c := s.choices[id][ingredient].clone()
	c.Original = !c.Original
	s.autoSelect(id, c.Original)
	s.store(id, ingredient, c)
	s.Record(IngredientToggledEvent{DishID: id, Ingredient: ingredient, On: c.Original, ToggledAt: s.now()})
	s.bump()
	return nil
}

// ToggleSubstitution flips one substitution of a slot with the same
// auto-select rule as ToggleIngredientOriginal.
func (s *State) ToggleSubstitution(id catalog.DishID, ingredient, substitution int) error {
	ing, err := s.ingredient(id, ingredient)
	if err != nil {
		return err
	}
	if _, ok := ing.Substitution(substitution); !ok {
		return &IndexError{Kind: IndexSubstitution, DishID: id, Ingredient: ingredient, Substitution: substitution}
	}

	c := s.choices[id][ingredient].clone()
	if c.Substitutions == nil {
		c.Substitutions = make(map[int]bool)
	}
	on := !c.Substitutions[substitution]
	if on {
		c.Substitutions[substitution] = true
	} else {
		delete(c.Substitutions, substitution)
	}
	s.autoSelect(id, on)
	s.store(id, ingredient, c)
	s.Record(SubstitutionToggledEvent{
		DishID:       id,
		Ingredient:   ingredient,
		Substitution: substitution,
		On:           on,
		ToggledAt:    s.now(),
	})
	s.bump()
	return nil
}

// Reset clears every selection
func (s *State) Reset() {
	cleared := len(s.selected)
	s.selected = nil
	s.choices = make(map[catalog.DishID]map[int]Choice)
	s.Record(SelectionResetEvent{ClearedDishes: cleared, ResetAt: s.now()})
	s.bump()
}

// Rebind points the state at a newer catalog. Selections of dishes that
// disappeared are kept and skipped by the resolver.
func (s *State) Rebind(lookup catalog.Lookup) {
	s.lookup = lookup
}

func (s *State) ingredient(id catalog.DishID, index int) (catalog.Ingredient, error) {
	dish, ok := s.lookup.Dish(id)
	if !ok {
		return catalog.Ingredient{}, &IndexError{Kind: IndexDish, DishID: id}
	}
	ing, ok := dish.Ingredient(index)
	if !ok {
		return catalog.Ingredient{}, &IndexError{Kind: IndexIngredient, DishID: id, Ingredient: index}
	}
	return ing, nil
}

func (s *State) autoSelect(id catalog.DishID, on bool) {
	if !on || s.IsSelected(id) {
		return
	}
	// a slot edited while the dish was unselected must not resurrect
	// choices from before the last deselect
	delete(s.choices, id)
	s.selected = append(s.selected, id)
	s.Record(DishSelectedEvent{DishID: id, AutoSelected: true, SelectedAt: s.now()})
}

func (s *State) deselect(id catalog.DishID) {
	pos := s.position(id)
	s.selected = append(s.selected[:pos:pos], s.selected[pos+1:]...)
	cleared := len(s.choices[id])
	delete(s.choices, id)
	s.Record(DishDeselectedEvent{DishID: id, ClearedSlots: cleared, DeselectedAt: s.now()})
}

func (s *State) store(id catalog.DishID, ingredient int, c Choice) {
	if !s.IsSelected(id) {
		// toggling off a slot of an unselected dish leaves nothing behind
		return
	}
	slots := s.choices[id]
	if slots == nil {
		slots = make(map[int]Choice)
		s.choices[id] = slots
	}
	if c.Empty() {
		delete(slots, ingredient)
		return
	}
	slots[ingredient] = c
}

func (s *State) position(id catalog.DishID) int {
	for i, sel := range s.selected {
		if sel == id {
			return i
		}
	}
	return -1
}

func (s *State) bump() {
	s.revision++
}
