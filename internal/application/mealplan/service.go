// Package mealplan provides the application layer for meal selection
// This implements the use cases defined in the inbound ports
package mealplan

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alchemorsel/mealcart/internal/domain/cart"
	"github.com/alchemorsel/mealcart/internal/domain/catalog"
	"github.com/alchemorsel/mealcart/internal/domain/selection"
	"github.com/alchemorsel/mealcart/internal/domain/shared"
	"github.com/alchemorsel/mealcart/internal/ports/inbound"
	"github.com/alchemorsel/mealcart/internal/ports/outbound"
	"github.com/alchemorsel/mealcart/pkg/errors"
)

// Toggle actions reported to metrics and live subscribers
const (
	ActionToggleDish         = "toggle_dish"
	ActionToggleIngredient   = "toggle_ingredient"
	ActionToggleSubstitution = "toggle_substitution"
	ActionReset              = "reset"
)

// MealPlanService implements the meal selection use cases
type MealPlanService struct {
	catalogs outbound.CatalogRepository
	sessions outbound.SessionRepository
	notifier outbound.CartNotifier
	metrics  outbound.MetricsRecorder
	policy   selection.Policy
	locks    *sessionLocks
	logger   *zap.Logger
}

// NewMealPlanService creates a new meal plan service
func NewMealPlanService(
	catalogs outbound.CatalogRepository,
	sessions outbound.SessionRepository,
	notifier outbound.CartNotifier,
	metrics outbound.MetricsRecorder,
	policy selection.Policy,
	logger *zap.Logger,
) inbound.MealPlanService {
	return &MealPlanService{
		catalogs: catalogs,
		sessions: sessions,
		notifier: notifier,
		metrics:  metrics,
		policy:   policy,
		locks:    newSessionLocks(),
		logger:   logger.Named("mealplan-service"),
	}
}

// StartSession creates an empty selection session
func (s *MealPlanService) StartSession(ctx context.Context) (*inbound.SessionDTO, error) {
	cat, err := s.loadCatalog(ctx)
	if err != nil {
		return nil, err
	}

	sessionID := uuid.New()
	state := selection.NewState(cat, s.policy)
	if err := s.sessions.Save(ctx, sessionID, state.Snapshot()); err != nil {
		return nil, errors.NewStorageError("save session", err)
	}
	s.metrics.AddActiveSessions(1)

	s.logger.Info("Session started",
		zap.String("session_id", sessionID.String()),
		zap.String("policy", s.policy.String()),
	)

	return s.sessionToDTO(sessionID, cat, state), nil
}

// GetSession returns the selection and cart of a session
func (s *MealPlanService) GetSession(ctx context.Context, sessionID uuid.UUID) (*inbound.SessionDTO, error) {
	cat, err := s.loadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	state, err := s.loadState(ctx, sessionID, cat)
	if err != nil {
		return nil, err
	}
	return s.sessionToDTO(sessionID, cat, state), nil
}

// EndSession discards a session
func (s *MealPlanService) EndSession(ctx context.Context, sessionID uuid.UUID) error {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	if _, err := s.sessions.Load(ctx, sessionID); err != nil {
		return s.sessionError(sessionID, err)
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return errors.NewStorageError("delete session", err)
	}
	s.metrics.AddActiveSessions(-1)

	s.logger.Info("Session ended", zap.String("session_id", sessionID.String()))
	return nil
}

// ToggleDish flips membership of a dish in the session
func (s *MealPlanService) ToggleDish(ctx context.Context, cmd inbound.ToggleDishCommand) (*inbound.SessionDTO, error) {
	id := catalog.DishID(cmd.DishID)
	return s.mutate(ctx, cmd.SessionID, ActionToggleDish, func(state *selection.State) error {
		return state.ToggleDish(id)
	})
}

// ToggleIngredientOriginal flips the original form of an ingredient slot
func (s *MealPlanService) ToggleIngredientOriginal(ctx context.Context, cmd inbound.ToggleIngredientCommand) (*inbound.SessionDTO, error) {
	id := catalog.DishID(cmd.DishID)
	return s.mutate(ctx, cmd.SessionID, ActionToggleIngredient, func(state *selection.State) error {
		return state.ToggleIngredientOriginal(id, cmd.Ingredient)
	})
}

// ToggleSubstitution flips one substitution of an ingredient slot
func (s *MealPlanService) ToggleSubstitution(ctx context.Context, cmd inbound.ToggleSubstitutionCommand) (*inbound.SessionDTO, error) {
	id := catalog.DishID(cmd.DishID)
	return s.mutate(ctx, cmd.SessionID, ActionToggleSubstitution, func(state *selection.State) error {
		return state.ToggleSubstitution(id, cmd.Ingredient, cmd.Substitution)
	})
}

// ResetSession clears every selection of the session
func (s *MealPlanService) ResetSession(ctx context.Context, sessionID uuid.UUID) (*inbound.SessionDTO, error) {
	return s.mutate(ctx, sessionID, ActionReset, func(state *selection.State) error {
		state.Reset()
		return nil
	})
}

// GetCart resolves the shopping list of a session
func (s *MealPlanService) GetCart(ctx context.Context, sessionID uuid.UUID) (*inbound.CartDTO, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &session.Cart, nil
}

// ListDishes browses the catalog
func (s *MealPlanService) ListDishes(ctx context.Context, query inbound.DishQuery) (*inbound.DishList, error) {
	cat, err := s.loadCatalog(ctx)
	if err != nil {
		return nil, err
	}

	dishes := cat.Search(catalog.Filter{
		Query:        query.Text,
		Difficulty:   catalog.DifficultyLevel(query.Difficulty),
		MaxTotalTime: time.Duration(query.MaxTime) * time.Minute,
		Badge:        query.Badge,
	})

	list := &inbound.DishList{
		Dishes: make([]inbound.DishDTO, len(dishes)),
		Total:  len(dishes),
	}
	for i := range dishes {
		list.Dishes[i] = dishToDTO(&dishes[i])
	}
	return list, nil
}

// GetDish returns one catalog dish
func (s *MealPlanService) GetDish(ctx context.Context, dishID string) (*inbound.DishDTO, error) {
	cat, err := s.loadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	dish, ok := cat.Dish(catalog.DishID(dishID))
	if !ok {
		return nil, errors.NewDishNotFoundError(dishID)
	}
	dto := dishToDTO(dish)
	return &dto, nil
}

// mutate runs fn against the session state bound to the latest catalog,
// persists the result and fans the new cart out to subscribers.
func (s *MealPlanService) mutate(
	ctx context.Context,
	sessionID uuid.UUID,
	action string,
	fn func(*selection.State) error,
) (*inbound.SessionDTO, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	cat, err := s.loadCatalog(ctx)
	if err != nil {
		s.metrics.RecordToggle(action, "error")
		return nil, err
	}
	state, err := s.loadState(ctx, sessionID, cat)
	if err != nil {
		s.metrics.RecordToggle(action, "error")
		return nil, err
	}

	if err := fn(state); err != nil {
		s.metrics.RecordToggle(action, "rejected")
		return nil, s.toggleError(err)
	}

	if err := s.sessions.Save(ctx, sessionID, state.Snapshot()); err != nil {
		s.metrics.RecordToggle(action, "error")
		return nil, errors.NewStorageError("save session", err)
	}

	s.publishEvents(sessionID, state.Events())
	dto := s.sessionToDTO(sessionID, cat, state)
	s.metrics.RecordToggle(action, "ok")

	if s.notifier != nil {
		update := outbound.CartUpdate{
			SessionID: sessionID,
			Revision:  dto.Revision,
			Action:    action,
			Cart:      dto.Cart,
			SentAt:    time.Now().UTC(),
		}
		if err := s.notifier.NotifyCart(ctx, update); err != nil {
			s.logger.Warn("Failed to notify cart subscribers",
				zap.String("session_id", sessionID.String()),
				zap.Error(err),
			)
		}
	}

	return dto, nil
}

func (s *MealPlanService) loadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	cat, err := s.catalogs.Load(ctx)
	if err != nil {
		s.logger.Error("Failed to load catalog", zap.Error(err))
		return nil, errors.NewCatalogUnavailableError(err)
	}
	return cat, nil
}

func (s *MealPlanService) loadState(ctx context.Context, sessionID uuid.UUID, cat *catalog.Catalog) (*selection.State, error) {
	snap, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, s.sessionError(sessionID, err)
	}
	return selection.Restore(cat, s.policy, snap), nil
}

func (s *MealPlanService) sessionError(sessionID uuid.UUID, err error) error {
	if stderrors.Is(err, outbound.ErrSessionNotFound) {
		return errors.NewSessionNotFoundError(sessionID.String())
	}
	return errors.NewStorageError("load session", err)
}

func (s *MealPlanService) toggleError(err error) error {
	var idxErr *selection.IndexError
	if stderrors.As(err, &idxErr) && idxErr.Kind == selection.IndexDish {
		return errors.NewDishNotFoundError(idxErr.DishID.String()).WithCause(err)
	}
	if stderrors.Is(err, selection.ErrInvalidIndex) {
		return errors.NewInvalidIndexError(err)
	}
	return errors.Wrap(err, "failed to update selection")
}

func (s *MealPlanService) sessionToDTO(sessionID uuid.UUID, cat *catalog.Catalog, state *selection.State) *inbound.SessionDTO {
	started := time.Now()
	lines := cart.Resolve(cat, state)
	s.metrics.RecordCartResolved(len(lines), time.Since(started))

	return &inbound.SessionDTO{
		ID:       sessionID,
		Policy:   state.Policy().String(),
		Revision: state.Revision(),
		Dishes:   selectedToDTO(cat, state),
		Cart:     cartToDTO(sessionID, state.Revision(), lines),
	}
}

// publishEvents logs drained domain events
func (s *MealPlanService) publishEvents(sessionID uuid.UUID, events []shared.DomainEvent) {
	for _, event := range events {
		s.logger.Debug("Selection event",
			zap.String("session_id", sessionID.String()),
			zap.String("event", event.EventName()),
			zap.Time("occurred_at", event.OccurredAt()),
		)
	}
}
