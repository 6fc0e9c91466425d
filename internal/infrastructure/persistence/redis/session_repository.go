package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/alchemorsel/mealcart/internal/domain/selection"
	"github.com/alchemorsel/mealcart/internal/ports/outbound"
)

// SessionRepository stores selection snapshots as JSON strings with a TTL
// that slides forward on every save.
type SessionRepository struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

// NewSessionRepository creates a Redis session repository
func NewSessionRepository(client redis.UniversalClient, prefix string, ttl time.Duration, logger *zap.Logger) outbound.SessionRepository {
	return &SessionRepository{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: logger.Named("redis-sessions"),
	}
}

// Save stores the snapshot
func (r *SessionRepository) Save(ctx context.Context, sessionID uuid.UUID, snapshot selection.Snapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := r.client.Set(ctx, r.key(sessionID), payload, r.ttl).Err(); err != nil {
		r.logger.Error("Session save failed", zap.String("session_id", sessionID.String()), zap.Error(err))
		return err
	}
	return nil
}

// Load returns the snapshot of a live session
func (r *SessionRepository) Load(ctx context.Context, sessionID uuid.UUID) (selection.Snapshot, error) {
	payload, err := r.client.Get(ctx, r.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return selection.Snapshot{}, outbound.ErrSessionNotFound
		}
		return selection.Snapshot{}, err
	}

	var snap selection.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return selection.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

// Delete removes a session
func (r *SessionRepository) Delete(ctx context.Context, sessionID uuid.UUID) error {
	return r.client.Del(ctx, r.key(sessionID)).Err()
}

func (r *SessionRepository) key(sessionID uuid.UUID) string {
	return r.prefix + "session:" + sessionID.String()
}
