package gorm

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/alchemorsel/mealcart/internal/domain/selection"
	"github.com/alchemorsel/mealcart/internal/ports/outbound"
)

// SessionRepository stores selection snapshots in SQL
type SessionRepository struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

// NewSessionRepository creates a session repository. A zero ttl keeps
// sessions until they are deleted.
func NewSessionRepository(db *gorm.DB, ttl time.Duration) *SessionRepository {
	return &SessionRepository{db: db, ttl: ttl, now: time.Now}
}

var _ outbound.SessionRepository = (*SessionRepository)(nil)

// Save upserts the snapshot and pushes the expiry forward
func (r *SessionRepository) Save(ctx context.Context, sessionID uuid.UUID, snapshot selection.Snapshot) error {
	model := &SessionModel{
		ID:       sessionID,
		Snapshot: SnapshotToField(snapshot),
		Revision: snapshot.Revision,
	}
	if r.ttl > 0 {
		expires := r.now().Add(r.ttl)
		model.ExpiresAt = &expires
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"snapshot", "revision", "expires_at", "updated_at"}),
	}).Create(model).Error
}

// Load returns the snapshot of a live session
func (r *SessionRepository) Load(ctx context.Context, sessionID uuid.UUID) (selection.Snapshot, error) {
	var model SessionModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", sessionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return selection.Snapshot{}, outbound.ErrSessionNotFound
		}
		return selection.Snapshot{}, err
	}
	if model.ExpiresAt != nil && r.now().After(*model.ExpiresAt) {
		return selection.Snapshot{}, outbound.ErrSessionNotFound
	}
	return FieldToSnapshot(model.Snapshot, model.Revision), nil
}

// Delete removes a session
func (r *SessionRepository) Delete(ctx context.Context, sessionID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&SessionModel{}, "id = ?", sessionID).Error
}

// PurgeExpired removes sessions past their expiry and returns how many went
func (r *SessionRepository) PurgeExpired(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at < ?", r.now()).
		Delete(&SessionModel{})
	return result.RowsAffected, result.Error
}
