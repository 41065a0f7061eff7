package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/ispoms/oms-console/internal/core/domain"
	"github.com/ispoms/oms-console/internal/core/service"
)

const userKey = "user"

// Auth validates a directory access token and injects the caller as a
// *domain.User.
func Auth(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			scheme, raw, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "bearer") || raw == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims := &service.AccessClaims{}
			tkn, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
				return []byte(jwtSecret), nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !tkn.Valid || claims.Subject == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(userKey, &domain.User{
				ID:    claims.Subject,
				Email: claims.Email,
				Role:  domain.Role{Name: claims.Role, Permissions: claims.Permissions},
			})
			return next(c)
		}
	}
}

// UserFrom returns the caller injected by Auth or Console, or nil.
func UserFrom(c echo.Context) *domain.User {
	u, _ := c.Get(userKey).(*domain.User)
	return u
}
