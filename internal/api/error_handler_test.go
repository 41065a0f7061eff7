package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/ispoms/oms-console/internal/core/domain"
)

func TestHTTPErrorHandler(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"echo error", echo.NewHTTPError(http.StatusNotFound, "Not Found"), http.StatusNotFound, "Not Found"},
		{"authorization", &domain.AuthorizationError{RequiredPermission: "orders:read"}, http.StatusForbidden, "Insufficient permissions. Required: orders:read"},
		{"authentication", domain.NewAuthenticationError("Login timed out", nil), http.StatusUnauthorized, "Login timed out"},
		{"login in progress", fmt.Errorf("console c1: %w", domain.ErrLoginInProgress), http.StatusConflict, "login already in progress"},
		{"user exists", domain.ErrUserExists, http.StatusConflict, "user already exists"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			NewHTTPErrorHandler(zerolog.Nop())(tc.err, c)

			assert.Equal(t, tc.code, rec.Code)
			assert.JSONEq(t, fmt.Sprintf(`{"error":%q}`, tc.msg), rec.Body.String())
		})
	}
}
