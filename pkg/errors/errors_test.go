package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want int
	}{
		{"InvalidIndex", NewInvalidIndexError(stderrors.New("ingredient 9")), http.StatusUnprocessableEntity},
		{"SessionNotFound", NewSessionNotFoundError("abc"), http.StatusNotFound},
		{"DishNotFound", NewDishNotFoundError("7"), http.StatusNotFound},
		{"CatalogUnavailable", NewCatalogUnavailableError(stderrors.New("db down")), http.StatusServiceUnavailable},
		{"Validation", NewValidationError("bad"), http.StatusBadRequest},
		{"Storage", NewStorageError("save session", stderrors.New("io")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.StatusCode())
		})
	}
}

func TestWrap(t *testing.T) {
	t.Run("NilError_ShouldReturnNil", func(t *testing.T) {
		assert.Nil(t, Wrap(nil, "ignored"))
	})

	t.Run("AppError_ShouldBeReturnedAsIs", func(t *testing.T) {
		original := NewSessionNotFoundError("s-1")
		wrapped := Wrap(fmt.Errorf("load: %w", original), "ignored")
		assert.Same(t, original, wrapped)
	})

	t.Run("PlainError_ShouldBecomeInternal", func(t *testing.T) {
		cause := stderrors.New("boom")
		wrapped := Wrap(cause, "resolve cart")
		require.NotNil(t, wrapped)
		assert.Equal(t, CodeInternal, wrapped.Code)
		assert.ErrorIs(t, wrapped, cause)
	})
}

func TestIsAndGetCode(t *testing.T) {
	err := fmt.Errorf("toggle: %w", NewInvalidIndexError(stderrors.New("substitution 3")))

	assert.True(t, Is(err, CodeInvalidIndex))
	assert.False(t, Is(err, CodeDishNotFound))
	assert.Equal(t, CodeInvalidIndex, GetCode(err))
	assert.Equal(t, CodeInternal, GetCode(stderrors.New("plain")))
}

func TestToErrorResponse(t *testing.T) {
	err := NewDishNotFoundError("42")
	resp := ToErrorResponse(err, "req-1")

	assert.Equal(t, CodeDishNotFound, resp.Error.Code)
	assert.Equal(t, "req-1", resp.Error.RequestID)
	assert.Equal(t, "42", resp.Error.Metadata["dish_id"])
	assert.NotEmpty(t, resp.Error.Timestamp)
}
