package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/alchemorsel/mealcart/internal/ports/outbound"
)

// CartBroadcaster publishes cart updates on a Redis channel so every API
// instance can push them to its own websocket subscribers.
type CartBroadcaster struct {
	client  redis.UniversalClient
	channel string
	logger  *zap.Logger
}

// NewCartBroadcaster creates a broadcaster on <prefix>carts
func NewCartBroadcaster(client redis.UniversalClient, prefix string, logger *zap.Logger) *CartBroadcaster {
	return &CartBroadcaster{
		client:  client,
		channel: prefix + "carts",
		logger:  logger.Named("cart-broadcaster"),
	}
}

var _ outbound.CartNotifier = (*CartBroadcaster)(nil)

// NotifyCart publishes the update
func (b *CartBroadcaster) NotifyCart(ctx context.Context, update outbound.CartUpdate) error {
	payload, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("encode cart update: %w", err)
	}
	return b.client.Publish(ctx, b.channel, payload).Err()
}

// Relay forwards every published update to local until ctx is cancelled
func (b *CartBroadcaster) Relay(ctx context.Context, local outbound.CartNotifier) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", b.channel, err)
	}
	b.logger.Info("Relaying cart updates", zap.String("channel", b.channel))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var update outbound.CartUpdate
			if err := json.Unmarshal([]byte(msg.Payload), &update); err != nil {
				b.logger.Warn("Dropping malformed cart update", zap.Error(err))
				continue
			}
			if err := local.NotifyCart(ctx, update); err != nil {
				b.logger.Warn("Local cart delivery failed",
					zap.String("session_id", update.SessionID.String()),
					zap.Error(err),
				)
			}
		}
	}
}
