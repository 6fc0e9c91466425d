// Package handlers provides HTTP handlers for the REST API
package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alchemorsel/mealcart/internal/ports/inbound"
	"github.com/alchemorsel/mealcart/pkg/errors"
)

// CartStreamer serves the live cart feed of a session over an upgraded
// connection. load is called once the feed is subscribed; its error is
// returned before anything is written.
type CartStreamer interface {
	Serve(w http.ResponseWriter, r *http.Request, sessionID uuid.UUID, load func(ctx context.Context) (inbound.CartDTO, error)) error
}

// MealPlanHandler handles dish browsing, selection and cart requests
type MealPlanHandler struct {
	service  inbound.MealPlanService
	streamer CartStreamer
	logger   *zap.Logger
}

// NewMealPlanHandler creates a new meal plan handler. streamer may be nil,
// in which case the cart stream route answers 503.
func NewMealPlanHandler(service inbound.MealPlanService, streamer CartStreamer, logger *zap.Logger) *MealPlanHandler {
	return &MealPlanHandler{
		service:  service,
		streamer: streamer,
		logger:   logger.Named("mealplan-handler"),
	}
}

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// RegisterRoutes registers meal plan routes
func (h *MealPlanHandler) RegisterRoutes(r *gin.RouterGroup) {
	dishes := r.Group("/dishes")
	{
		dishes.GET("", h.ListDishes)
		dishes.GET("/:dishId", h.GetDish)
	}

	sessions := r.Group("/sessions")
	{
		sessions.POST("", h.StartSession)
		sessions.GET("/:id", h.GetSession)
		sessions.DELETE("/:id", h.EndSession)
		sessions.POST("/:id/reset", h.ResetSession)

		// Selection toggles
		sessions.POST("/:id/dishes/:dishId/toggle", h.ToggleDish)
		sessions.POST("/:id/dishes/:dishId/ingredients/:index/toggle", h.ToggleIngredient)
		sessions.POST("/:id/dishes/:dishId/ingredients/:index/substitutions/:sub/toggle", h.ToggleSubstitution)

		// Cart
		sessions.GET("/:id/cart", h.GetCart)
		sessions.GET("/:id/cart/stream", h.StreamCart)
	}
}

// ListDishes handles GET /dishes
func (h *MealPlanHandler) ListDishes(c *gin.Context) {
	query := inbound.DishQuery{
		Text:       c.Query("q"),
		Difficulty: c.Query("difficulty"),
		Badge:      c.Query("badge"),
	}
	if raw := c.Query("max_time"); raw != "" {
		maxTime, err := strconv.Atoi(raw)
		if err != nil || maxTime < 0 {
			h.respondError(c, errors.NewValidationError("max_time must be a non-negative number of minutes"))
			return
		}
		query.MaxTime = maxTime
	}

	list, err := h.service.ListDishes(c.Request.Context(), query)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respond(c, http.StatusOK, list)
}

// GetDish handles GET /dishes/:dishId
func (h *MealPlanHandler) GetDish(c *gin.Context) {
	dish, err := h.service.GetDish(c.Request.Context(), c.Param("dishId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respond(c, http.StatusOK, dish)
}

// StartSession handles POST /sessions
func (h *MealPlanHandler) StartSession(c *gin.Context) {
	session, err := h.service.StartSession(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.Header("Location", c.FullPath()+"/"+session.ID.String())
	h.respond(c, http.StatusCreated, session)
}

// GetSession handles GET /sessions/:id
func (h *MealPlanHandler) GetSession(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}
	session, err := h.service.GetSession(c.Request.Context(), sessionID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respond(c, http.StatusOK, session)
}

// EndSession handles DELETE /sessions/:id
func (h *MealPlanHandler) EndSession(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}
	if err := h.service.EndSession(c.Request.Context(), sessionID); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ResetSession handles POST /sessions/:id/reset
func (h *MealPlanHandler) ResetSession(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}
	session, err := h.service.ResetSession(c.Request.Context(), sessionID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respond(c, http.StatusOK, session)
}

// ToggleDish handles POST /sessions/:id/dishes/:dishId/toggle
func (h *MealPlanHandler) ToggleDish(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}
	session, err := h.service.ToggleDish(c.Request.Context(), inbound.ToggleDishCommand{
		SessionID: sessionID,
		DishID:    c.Param("dishId"),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respond(c, http.StatusOK, session)
}

// ToggleIngredient handles POST /sessions/:id/dishes/:dishId/ingredients/:index/toggle
func (h *MealPlanHandler) ToggleIngredient(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}
	index, ok := h.intParam(c, "index")
	if !ok {
		return
	}
	session, err := h.service.ToggleIngredientOriginal(c.Request.Context(), inbound.ToggleIngredientCommand{
		SessionID:  sessionID,
		DishID:     c.Param("dishId"),
		Ingredient: index,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respond(c, http.StatusOK, session)
}

// ToggleSubstitution handles POST /sessions/:id/dishes/:dishId/ingredients/:index/substitutions/:sub/toggle
func (h *MealPlanHandler) ToggleSubstitution(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}
	index, ok := h.intParam(c, "index")
	if !ok {
		return
	}
	sub, ok := h.intParam(c, "sub")
	if !ok {
		return
	}
	session, err := h.service.ToggleSubstitution(c.Request.Context(), inbound.ToggleSubstitutionCommand{
		SessionID:    sessionID,
		DishID:       c.Param("dishId"),
		Ingredient:   index,
		Substitution: sub,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respond(c, http.StatusOK, session)
}

// GetCart handles GET /sessions/:id/cart
func (h *MealPlanHandler) GetCart(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}
	cart, err := h.service.GetCart(c.Request.Context(), sessionID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respond(c, http.StatusOK, cart)
}

// StreamCart handles GET /sessions/:id/cart/stream (websocket)
func (h *MealPlanHandler) StreamCart(c *gin.Context) {
	if h.streamer == nil {
		h.respondError(c, errors.NewAppError(errors.CodeServiceUnavailable, "Cart stream unavailable", ""))
		return
	}
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}
	load := func(ctx context.Context) (inbound.CartDTO, error) {
		cart, err := h.service.GetCart(ctx, sessionID)
		if err != nil {
			return inbound.CartDTO{}, err
		}
		return *cart, nil
	}

	err := h.streamer.Serve(c.Writer, c.Request, sessionID, load)
	if err != nil && !c.Writer.Written() {
		// The cart could not be read, so the connection was never upgraded
		h.respondError(c, err)
		return
	}
	if err != nil {
		h.logger.Debug("Cart stream ended",
			zap.String("session_id", sessionID.String()),
			zap.Error(err),
		)
	}
}

func (h *MealPlanHandler) sessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.respondError(c, errors.NewBadRequestError("Invalid session ID"))
		return uuid.Nil, false
	}
	return id, true
}

// intParam parses a path position. Negative values pass through so the
// selection core reports them as invalid indexes.
func (h *MealPlanHandler) intParam(c *gin.Context, name string) (int, bool) {
	value, err := strconv.Atoi(c.Param(name))
	if err != nil {
		h.respondError(c, errors.NewBadRequestError("Invalid "+name+" parameter"))
		return 0, false
	}
	return value, true
}

func (h *MealPlanHandler) respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, APIResponse{Success: true, Data: data})
}

func (h *MealPlanHandler) respondError(c *gin.Context, err error) {
	appErr := errors.Wrap(err, "An unexpected error occurred")
	_ = c.Error(err)
	c.AbortWithStatusJSON(appErr.StatusCode(), errors.ToErrorResponse(appErr, c.GetString("request_id")))
}
