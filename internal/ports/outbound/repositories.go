// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to interact with external systems
package outbound

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/alchemorsel/mealcart/internal/domain/catalog"
	"github.com/alchemorsel/mealcart/internal/domain/selection"
	"github.com/alchemorsel/mealcart/internal/ports/inbound"
)

// ErrSessionNotFound is returned by session stores for unknown or expired sessions
var ErrSessionNotFound = errors.New("session not found")

// CatalogRepository supplies the current dish catalog
type CatalogRepository interface {
	Load(ctx context.Context) (*catalog.Catalog, error)
}

// CatalogWriter replaces the stored catalog, used by seeders and file feeds
type CatalogWriter interface {
	Replace(ctx context.Context, dishes []catalog.Dish) error
}

// SessionRepository persists selection snapshots. Stores are best effort
// and may expire sessions after their TTL.
type SessionRepository interface {
	Save(ctx context.Context, sessionID uuid.UUID, snapshot selection.Snapshot) error
	Load(ctx context.Context, sessionID uuid.UUID) (selection.Snapshot, error)
	Delete(ctx context.Context, sessionID uuid.UUID) error
}

// CartNotifier pushes recomputed carts to live subscribers
type CartNotifier interface {
	NotifyCart(ctx context.Context, update CartUpdate) error
}

// CartUpdate is the payload pushed after every successful mutation
type CartUpdate struct {
	SessionID uuid.UUID       `json:"session_id"`
	Revision  uint64          `json:"revision"`
	Action    string          `json:"action"`
	Cart      inbound.CartDTO `json:"cart"`
	SentAt    time.Time       `json:"sent_at"`
}

// MetricsRecorder records selection and resolution metrics
type MetricsRecorder interface {
	RecordToggle(action string, outcome string)
	RecordCartResolved(lines int, duration time.Duration)
	// AddActiveSessions moves the active session gauge; purges report a negative delta
	AddActiveSessions(delta int)
}
