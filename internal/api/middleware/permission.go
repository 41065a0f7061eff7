package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/ispoms/oms-console/internal/core/domain"
)

// RequirePermission aborts with a *domain.AuthorizationError unless the
// caller holds permission. It must run after Auth or Console.
func RequirePermission(permission string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := domain.RequirePermission(UserFrom(c), permission); err != nil {
				return err
			}
			return next(c)
		}
	}
}
