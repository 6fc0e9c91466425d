// Package realtime pushes recomputed carts to websocket subscribers
package realtime

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/alchemorsel/mealcart/internal/ports/inbound"
	"github.com/alchemorsel/mealcart/internal/ports/outbound"
)

// ActionSnapshot marks the first message of a stream
const ActionSnapshot = "snapshot"

const (
	subscriberBuffer = 16
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
)

// Hub fans cart updates out to the subscribers of each session. Slow
// subscribers miss intermediate updates; every message carries the full
// cart so the latest one is always sufficient.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[uuid.UUID]map[*subscriber]struct{}
	upgrader    websocket.Upgrader
	logger      *zap.Logger
}

type subscriber struct {
	updates chan outbound.CartUpdate
}

// NewHub creates a hub. allowedOrigins limits websocket origins; empty or
// "*" accepts any origin.
func NewHub(allowedOrigins []string, logger *zap.Logger) *Hub {
	return &Hub{
		subscribers: make(map[uuid.UUID]map[*subscriber]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: logger.Named("cart-hub"),
	}
}

var _ outbound.CartNotifier = (*Hub)(nil)

// NotifyCart delivers update to every subscriber of its session
func (h *Hub) NotifyCart(ctx context.Context, update outbound.CartUpdate) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subscribers[update.SessionID] {
		select {
		case sub.updates <- update:
		default:
			h.logger.Debug("Dropping cart update for slow subscriber",
				zap.String("session_id", update.SessionID.String()),
				zap.Uint64("revision", update.Revision),
			)
		}
	}
	return nil
}

// Subscribe registers interest in a session's carts. The returned function
// unsubscribes and closes the channel.
func (h *Hub) Subscribe(sessionID uuid.UUID) (<-chan outbound.CartUpdate, func()) {
	sub := &subscriber{updates: make(chan outbound.CartUpdate, subscriberBuffer)}

	h.mu.Lock()
	if h.subscribers[sessionID] == nil {
		h.subscribers[sessionID] = make(map[*subscriber]struct{})
	}
	h.subscribers[sessionID][sub] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return sub.updates, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subscribers[sessionID], sub)
			if len(h.subscribers[sessionID]) == 0 {
				delete(h.subscribers, sessionID)
			}
			h.mu.Unlock()
			close(sub.updates)
		})
	}
}

// Subscribers returns the number of live subscribers of a session
func (h *Hub) Subscribers(sessionID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[sessionID])
}

// Serve subscribes to the session, loads its cart as a snapshot, upgrades
// the request to a websocket and then streams every update until either
// side closes. The subscription exists before load runs, so an update
// committed while the snapshot is read is still delivered. A load error
// is returned before the upgrade and nothing is written to w.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, sessionID uuid.UUID, load func(ctx context.Context) (inbound.CartDTO, error)) error {
	updates, unsubscribe := h.Subscribe(sessionID)
	defer unsubscribe()

	initial, err := load(r.Context())
	if err != nil {
		return err
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	logger := h.logger.With(zap.String("session_id", sessionID.String()))
	logger.Debug("Cart stream opened")

	// Reader goroutine: handles pongs and notices the client going away
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					logger.Debug("Cart stream read error", zap.Error(err))
				}
				return
			}
		}
	}()

	snapshot := outbound.CartUpdate{
		SessionID: sessionID,
		Revision:  initial.Revision,
		Action:    ActionSnapshot,
		Cart:      initial,
		SentAt:    time.Now().UTC(),
	}
	if err := h.write(conn, snapshot); err != nil {
		return err
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			logger.Debug("Cart stream closed")
			return nil
		case <-r.Context().Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Revision < snapshot.Revision {
				continue
			}
			if err := h.write(conn, update); err != nil {
				return err
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}
		}
	}
}

func (h *Hub) write(conn *websocket.Conn, update outbound.CartUpdate) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(update)
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, origin := range allowed {
		if origin == "*" {
			return func(*http.Request) bool { return true }
		}
		set[origin] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
