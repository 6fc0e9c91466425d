package selection

import (
	"sort"
	"time"

	"github.com/alchemorsel/mealcart/internal/domain/catalog"
)

// Snapshot is a serialisable copy of a State used by session stores
type Snapshot struct {
	Selected []catalog.DishID `json:"selected"`
	Slots    []SlotSnapshot   `json:"slots,omitempty"`
	Revision uint64           `json:"revision"`
}

// SlotSnapshot is one non-empty ingredient slot
type SlotSnapshot struct {
	DishID        catalog.DishID `json:"dish_id"`
	Ingredient    int            `json:"ingredient"`
	Original      bool           `json:"original,omitempty"`
	Substitutions []int          `json:"substitutions,omitempty"`
}

// Snapshot copies the state. Slots are ordered by selection order then
// ingredient index so equal states produce equal snapshots.
func (s *State) Snapshot() Snapshot {
	snap := Snapshot{
		Selected: s.SelectedDishes(),
		Revision: s.revision,
	}
	for _, id := range s.selected {
		slots := s.choices[id]
		indexes := make([]int, 0, len(slots))
		for idx := range slots {
			indexes = append(indexes, idx)
		}
		sort.Ints(indexes)
		for _, idx := range indexes {
			c := slots[idx]
			snap.Slots = append(snap.Slots, SlotSnapshot{
				DishID:        id,
				Ingredient:    idx,
				Original:      c.Original,
				Substitutions: c.ActiveSubstitutions(),
			})
		}
	}
	return snap
}

// Restore rebuilds a State from a snapshot. Indexes are not revalidated so
// a state saved against an older catalog survives; slots of dishes that are
// not selected are dropped.
func Restore(lookup catalog.Lookup, policy Policy, snap Snapshot) *State {
	s := NewState(lookup, policy)
	for _, id := range snap.Selected {
		if !s.IsSelected(id) {
			s.selected = append(s.selected, id)
		}
	}
	for _, slot := range snap.Slots {
		if !s.IsSelected(slot.DishID) {
			continue
		}
		c := Choice{Original: slot.Original}
		for _, sub := range slot.Substitutions {
			if c.Substitutions == nil {
				c.Substitutions = make(map[int]bool)
			}
			c.Substitutions[sub] = true
		}
		s.store(slot.DishID, slot.Ingredient, c)
	}
	s.revision = snap.Revision
	return s
}

// WithClock overrides the event timestamp source
func (s *State) WithClock(now func() time.Time) *State {
	s.now = now
	return s
}
