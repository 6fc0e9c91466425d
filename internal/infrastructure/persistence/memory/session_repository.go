// Package memory provides in-memory repository implementations
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alchemorsel/mealcart/internal/domain/selection"
	"github.com/alchemorsel/mealcart/internal/ports/outbound"
)

// sessionItem represents a stored session
type sessionItem struct {
	snapshot  selection.Snapshot
	expiresAt time.Time
}

// SessionRepository keeps selection snapshots in process memory
type SessionRepository struct {
	data  map[uuid.UUID]sessionItem
	ttl   time.Duration
	now   func() time.Time
	mutex sync.RWMutex
}

// NewSessionRepository creates an in-memory session repository. A zero ttl
// keeps sessions until they are deleted.
func NewSessionRepository(ttl time.Duration) *SessionRepository {
	return &SessionRepository{
		data: make(map[uuid.UUID]sessionItem),
		ttl:  ttl,
		now:  time.Now,
	}
}

var _ outbound.SessionRepository = (*SessionRepository)(nil)

// Save stores a copy of the snapshot
func (r *SessionRepository) Save(ctx context.Context, sessionID uuid.UUID, snapshot selection.Snapshot) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	item := sessionItem{snapshot: copySnapshot(snapshot)}
	if r.ttl > 0 {
		item.expiresAt = r.now().Add(r.ttl)
	}
	r.data[sessionID] = item
	return nil
}

// Load returns a copy of a live session's snapshot
func (r *SessionRepository) Load(ctx context.Context, sessionID uuid.UUID) (selection.Snapshot, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	item, exists := r.data[sessionID]
	if !exists || r.expired(item) {
		return selection.Snapshot{}, outbound.ErrSessionNotFound
	}
	return copySnapshot(item.snapshot), nil
}

// Delete removes a session
func (r *SessionRepository) Delete(ctx context.Context, sessionID uuid.UUID) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	delete(r.data, sessionID)
	return nil
}

// PurgeExpired removes expired sessions and returns how many went
func (r *SessionRepository) PurgeExpired(ctx context.Context) (int64, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var purged int64
	for id, item := range r.data {
		if r.expired(item) {
			delete(r.data, id)
			purged++
		}
	}
	return purged, nil
}

// Len returns the number of stored sessions, expired ones included
func (r *SessionRepository) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.data)
}

func (r *SessionRepository) expired(item sessionItem) bool {
	return !item.expiresAt.IsZero() && r.now().After(item.expiresAt)
}

// copySnapshot deep-copies so stored state never aliases caller slices
func copySnapshot(s selection.Snapshot) selection.Snapshot {
	out := selection.Snapshot{Revision: s.Revision}
	if s.Selected != nil {
		out.Selected = append(out.Selected, s.Selected...)
	}
	for _, slot := range s.Slots {
		if slot.Substitutions != nil {
			slot.Substitutions = append([]int(nil), slot.Substitutions...)
		}
		out.Slots = append(out.Slots, slot)
	}
	return out
}
