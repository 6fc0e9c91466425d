// Package testutils provides custom assertions and testing utilities
package testutils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alchemorsel/mealcart/internal/domain/cart"
	"github.com/alchemorsel/mealcart/internal/ports/inbound"
	"github.com/alchemorsel/mealcart/pkg/errors"
)

// CartAssertions provides cart-specific assertion methods
type CartAssertions struct {
	t *testing.T
}

// NewCartAssertions creates a new cart assertions helper
func NewCartAssertions(t *testing.T) *CartAssertions {
	return &CartAssertions{t: t}
}

// LineNames asserts the cart lines in order
func (ca *CartAssertions) LineNames(lines []cart.Line, expected ...string) {
	names := make([]string, len(lines))
	for i, l := range lines {
		names[i] = l.Name
	}
	assert.Equal(ca.t, expected, names, "Cart line names should match in order")
}

// Line asserts the quantity and contributing dishes of one named line
func (ca *CartAssertions) Line(lines []cart.Line, name, quantity string, dishes ...string) {
	for _, l := range lines {
		if l.Name == name {
			assert.Equal(ca.t, quantity, l.Quantity, "Quantity of %q", name)
			assert.Equal(ca.t, dishes, l.DishNames, "Dishes of %q", name)
			return
		}
	}
	assert.Fail(ca.t, "Cart line not found", "no line named %q", name)
}

// DTOLine returns the named line of a cart DTO, failing the test if absent
func (ca *CartAssertions) DTOLine(c inbound.CartDTO, name string) inbound.CartLineDTO {
	for _, l := range c.Lines {
		if l.Name == name {
			return l
		}
	}
	require.Fail(ca.t, "Cart line not found", "no line named %q", name)
	return inbound.CartLineDTO{}
}

// HTTPAssertions provides HTTP-specific assertion methods
type HTTPAssertions struct {
	t *testing.T
}

// NewHTTPAssertions creates a new HTTP assertions helper
func NewHTTPAssertions(t *testing.T) *HTTPAssertions {
	return &HTTPAssertions{t: t}
}

// JSONResponse asserts the status code and decodes the body into target
func (ha *HTTPAssertions) JSONResponse(w *httptest.ResponseRecorder, expectedCode int, target interface{}) {
	require.Equal(ha.t, expectedCode, w.Code, "Unexpected status, body: %s", w.Body.String())
	assert.Contains(ha.t, w.Header().Get("Content-Type"), "application/json")
	if target != nil {
		require.NoError(ha.t, json.Unmarshal(w.Body.Bytes(), target), "Response should be valid JSON")
	}
}

// ErrorCode asserts an error envelope with the given status and code
func (ha *HTTPAssertions) ErrorCode(w *httptest.ResponseRecorder, expectedCode int, code errors.ErrorCode) {
	var resp errors.ErrorResponse
	ha.JSONResponse(w, expectedCode, &resp)
	assert.Equal(ha.t, code, resp.Error.Code)
}

// SecurityHeaders asserts the headers set by the security middleware
func (ha *HTTPAssertions) SecurityHeaders(h http.Header) {
	assert.Equal(ha.t, "nosniff", h.Get("X-Content-Type-Options"))
	assert.Equal(ha.t, "DENY", h.Get("X-Frame-Options"))
}
