package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/alchemorsel/mealcart/internal/application/mealplan"
	"github.com/alchemorsel/mealcart/internal/domain/selection"
	"github.com/alchemorsel/mealcart/internal/infrastructure/http/realtime"
	"github.com/alchemorsel/mealcart/internal/infrastructure/monitoring"
	"github.com/alchemorsel/mealcart/internal/infrastructure/persistence/memory"
	"github.com/alchemorsel/mealcart/internal/infrastructure/persistence/sqlite"
	"github.com/alchemorsel/mealcart/internal/ports/inbound"
	"github.com/alchemorsel/mealcart/internal/ports/outbound"
	"github.com/alchemorsel/mealcart/pkg/errors"
)

type envelope[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
}

type MealPlanHandlerTestSuite struct {
	suite.Suite
	router *gin.Engine
	hub    *realtime.Hub
}

func (s *MealPlanHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	catalogs := memory.NewCatalogRepository()
	s.Require().NoError(catalogs.Replace(context.Background(), sqlite.DemoDishes()))

	s.hub = realtime.NewHub(nil, logger)
	service := mealplan.NewMealPlanService(
		catalogs,
		memory.NewSessionRepository(time.Hour),
		s.hub,
		monitoring.NewMetricsCollector(logger),
		selection.PolicyDefaultOriginals,
		logger,
	)

	s.router = gin.New()
	NewMealPlanHandler(service, s.hub, logger).RegisterRoutes(s.router.Group("/api/v1"))
}

func (s *MealPlanHandlerTestSuite) do(method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func (s *MealPlanHandlerTestSuite) startSession() uuid.UUID {
	w := s.do(http.MethodPost, "/api/v1/sessions")
	s.Require().Equal(http.StatusCreated, w.Code)

	var resp envelope[inbound.SessionDTO]
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Require().True(resp.Success)
	s.Equal("/api/v1/sessions/"+resp.Data.ID.String(), w.Header().Get("Location"))
	return resp.Data.ID
}

func (s *MealPlanHandlerTestSuite) errorCode(w *httptest.ResponseRecorder) errors.ErrorCode {
	var resp errors.ErrorResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error.Code
}

func (s *MealPlanHandlerTestSuite) TestDishes() {
	s.Run("List_ShouldFilterByQuery", func() {
		w := s.do(http.MethodGet, "/api/v1/dishes?q=salmon")
		s.Require().Equal(http.StatusOK, w.Code)

		var resp envelope[inbound.DishList]
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		s.Equal(1, resp.Data.Total)
		s.Equal("Garlic Butter Salmon", resp.Data.Dishes[0].Name)
	})

	s.Run("List_InvalidMaxTime_ShouldBeBadRequest", func() {
		w := s.do(http.MethodGet, "/api/v1/dishes?max_time=soon")
		s.Equal(http.StatusBadRequest, w.Code)
		s.Equal(errors.CodeValidationFailed, s.errorCode(w))
	})

	s.Run("Get_Unknown_ShouldBeNotFound", func() {
		w := s.do(http.MethodGet, "/api/v1/dishes/nope")
		s.Equal(http.StatusNotFound, w.Code)
		s.Equal(errors.CodeDishNotFound, s.errorCode(w))
	})
}

func (s *MealPlanHandlerTestSuite) TestSelectionFlow() {
	// Arrange
	id := s.startSession()
	base := "/api/v1/sessions/" + id.String()

	// Act
	w := s.do(http.MethodPost, base+"/dishes/1/toggle")

	// Assert
	s.Require().Equal(http.StatusOK, w.Code)
	var resp envelope[inbound.SessionDTO]
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal(uint64(1), resp.Data.Revision)
	s.Len(resp.Data.Cart.Lines, 4)
	s.Equal("Salmon Fillet", resp.Data.Cart.Lines[0].Name)

	s.Run("SubstitutionToggle_ShouldAddLine", func() {
		w := s.do(http.MethodPost, base+"/dishes/1/ingredients/1/substitutions/0/toggle")
		s.Require().Equal(http.StatusOK, w.Code)

		w = s.do(http.MethodGet, base+"/cart")
		s.Require().Equal(http.StatusOK, w.Code)
		var cart envelope[inbound.CartDTO]
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &cart))
		s.Len(cart.Data.Lines, 5)
		s.Equal("Garlic Powder", cart.Data.Lines[2].Name)
		s.True(cart.Data.Lines[2].HasSubstitution)
	})

	s.Run("OutOfRangeIngredient_ShouldBeUnprocessable", func() {
		w := s.do(http.MethodPost, base+"/dishes/1/ingredients/99/toggle")
		s.Equal(http.StatusUnprocessableEntity, w.Code)
		s.Equal(errors.CodeInvalidIndex, s.errorCode(w))
	})

	s.Run("NegativeSubstitution_ShouldBeUnprocessable", func() {
		w := s.do(http.MethodPost, base+"/dishes/1/ingredients/0/substitutions/-1/toggle")
		s.Equal(http.StatusUnprocessableEntity, w.Code)
	})

	s.Run("NonNumericIndex_ShouldBeBadRequest", func() {
		w := s.do(http.MethodPost, base+"/dishes/1/ingredients/first/toggle")
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("UnknownDish_ShouldBeNotFound", func() {
		w := s.do(http.MethodPost, base+"/dishes/404/toggle")
		s.Equal(http.StatusNotFound, w.Code)
		s.Equal(errors.CodeDishNotFound, s.errorCode(w))
	})

	s.Run("Reset_ShouldEmptyCart", func() {
		w := s.do(http.MethodPost, base+"/reset")
		s.Require().Equal(http.StatusOK, w.Code)
		var resp envelope[inbound.SessionDTO]
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		s.Empty(resp.Data.Cart.Lines)
		s.Empty(resp.Data.Dishes)
	})

	s.Run("End_ShouldRemoveSession", func() {
		s.Equal(http.StatusNoContent, s.do(http.MethodDelete, base).Code)
		w := s.do(http.MethodGet, base)
		s.Equal(http.StatusNotFound, w.Code)
		s.Equal(errors.CodeSessionNotFound, s.errorCode(w))
	})
}

func (s *MealPlanHandlerTestSuite) TestInvalidSessionID_ShouldBeBadRequest() {
	w := s.do(http.MethodGet, "/api/v1/sessions/not-a-uuid/cart")
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(errors.CodeBadRequest, s.errorCode(w))
}

func (s *MealPlanHandlerTestSuite) TestStreamCart() {
	server := httptest.NewServer(s.router)
	defer server.Close()

	id := s.startSession()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/v1/sessions/" + id.String() + "/cart/stream"

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err)
	defer conn.Close()

	var snapshot outbound.CartUpdate
	s.Require().NoError(conn.ReadJSON(&snapshot))
	s.Equal(realtime.ActionSnapshot, snapshot.Action)
	s.Require().Eventually(func() bool { return s.hub.Subscribers(id) == 1 }, time.Second, 10*time.Millisecond)

	s.Require().Equal(http.StatusOK, s.do(http.MethodPost, "/api/v1/sessions/"+id.String()+"/dishes/2/toggle").Code)

	var update outbound.CartUpdate
	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(2 * time.Second)))
	s.Require().NoError(conn.ReadJSON(&update))
	s.Equal(mealplan.ActionToggleDish, update.Action)
	s.Equal(uint64(1), update.Revision)
	s.NotEmpty(update.Cart.Lines)
}

func TestStreamCart_UnknownSession_ShouldFailBeforeUpgrade(t *testing.T) {
	gin.SetMode(gin.TestMode)
	catalogs := memory.NewCatalogRepository()
	require.NoError(t, catalogs.Replace(context.Background(), sqlite.DemoDishes()))
	service := mealplan.NewMealPlanService(catalogs, memory.NewSessionRepository(0), nil,
		monitoring.NewMetricsCollector(zap.NewNop()), selection.PolicyDefaultOriginals, zap.NewNop())

	router := gin.New()
	NewMealPlanHandler(service, realtime.NewHub(nil, zap.NewNop()), zap.NewNop()).RegisterRoutes(router.Group("/api/v1"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/sessions/"+uuid.NewString()+"/cart/stream", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestMealPlanHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(MealPlanHandlerTestSuite))
}
