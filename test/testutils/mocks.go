// Package testutils provides mock implementations for testing
package testutils

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/alchemorsel/mealcart/internal/domain/catalog"
	"github.com/alchemorsel/mealcart/internal/domain/selection"
	"github.com/alchemorsel/mealcart/internal/ports/outbound"
)

// MockCatalogRepository provides a mock implementation of CatalogRepository
type MockCatalogRepository struct {
	mock.Mock
}

// Load returns the configured catalog
func (m *MockCatalogRepository) Load(ctx context.Context) (*catalog.Catalog, error) {
	args := m.Called(ctx)
	if args.Error(1) != nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Catalog), nil
}

// MockSessionRepository provides a mock implementation of SessionRepository
type MockSessionRepository struct {
	mock.Mock
}

// Save saves a snapshot
func (m *MockSessionRepository) Save(ctx context.Context, sessionID uuid.UUID, snapshot selection.Snapshot) error {
	args := m.Called(ctx, sessionID, snapshot)
	return args.Error(0)
}

// Load loads a snapshot
func (m *MockSessionRepository) Load(ctx context.Context, sessionID uuid.UUID) (selection.Snapshot, error) {
	args := m.Called(ctx, sessionID)
	if args.Error(1) != nil {
		return selection.Snapshot{}, args.Error(1)
	}
	return args.Get(0).(selection.Snapshot), nil
}

// Delete deletes a snapshot
func (m *MockSessionRepository) Delete(ctx context.Context, sessionID uuid.UUID) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

// MockCartNotifier records every cart update it receives
type MockCartNotifier struct {
	mu      sync.Mutex
	updates []outbound.CartUpdate
	err     error
}

// NewMockCartNotifier creates a notifier that answers every call with err
func NewMockCartNotifier(err error) *MockCartNotifier {
	return &MockCartNotifier{err: err}
}

// NotifyCart records the update
func (m *MockCartNotifier) NotifyCart(ctx context.Context, update outbound.CartUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates = append(m.updates, update)
	return m.err
}

// Updates returns the recorded updates in arrival order
func (m *MockCartNotifier) Updates() []outbound.CartUpdate {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]outbound.CartUpdate(nil), m.updates...)
}

// MockMetricsRecorder counts recorded toggles by action and outcome
type MockMetricsRecorder struct {
	mu       sync.Mutex
	toggles  map[string]int
	resolved int
	active   int
}

// NewMockMetricsRecorder creates an empty recorder
func NewMockMetricsRecorder() *MockMetricsRecorder {
	return &MockMetricsRecorder{toggles: make(map[string]int)}
}

// RecordToggle counts a toggle
func (m *MockMetricsRecorder) RecordToggle(action, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toggles[action+"/"+outcome]++
}

// RecordCartResolved counts a resolution
func (m *MockMetricsRecorder) RecordCartResolved(lines int, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resolved++
}

// AddActiveSessions tracks the active session gauge
func (m *MockMetricsRecorder) AddActiveSessions(delta int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active += delta
}

// Toggles returns the count for action and outcome
func (m *MockMetricsRecorder) Toggles(action, outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.toggles[action+"/"+outcome]
}

// Resolved returns how many carts were resolved
func (m *MockMetricsRecorder) Resolved() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resolved
}

// ActiveSessions returns the gauge value
func (m *MockMetricsRecorder) ActiveSessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

var (
	_ outbound.CatalogRepository = (*MockCatalogRepository)(nil)
	_ outbound.SessionRepository = (*MockSessionRepository)(nil)
	_ outbound.CartNotifier      = (*MockCartNotifier)(nil)
	_ outbound.MetricsRecorder   = (*MockMetricsRecorder)(nil)
)
