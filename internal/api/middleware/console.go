package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ispoms/oms-console/internal/core/service"
)

// ConsoleCookie identifies a browser console across requests.
const ConsoleCookie = "oms_console"

const storeKey = "console_store"

// Console resolves the caller's SessionStore from the console cookie,
// issuing a fresh console id when the cookie is absent or malformed. The
// authenticated user, if any, is exposed through UserFrom.
func Console(sessions *service.Sessions, secureCookie bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := ""
			if ck, err := c.Cookie(ConsoleCookie); err == nil {
				if _, err := uuid.Parse(ck.Value); err == nil {
					id = ck.Value
				}
			}
			if id == "" {
				id = uuid.NewString()
				c.SetCookie(&http.Cookie{
					Name:     ConsoleCookie,
					Value:    id,
					Path:     "/",
					HttpOnly: true,
					Secure:   secureCookie,
					SameSite: http.SameSiteLaxMode,
				})
			}

			// A restore must not be cut short by a client disconnect.
			store := sessions.Get(context.WithoutCancel(c.Request().Context()), id)
			c.Set(storeKey, store)
			if snap := store.Snapshot(); snap.IsAuthenticated {
				c.Set(userKey, snap.User)
			}
			return next(c)
		}
	}
}

// Store returns the SessionStore attached by Console.
func Store(c echo.Context) (*service.SessionStore, error) {
	st, ok := c.Get(storeKey).(*service.SessionStore)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "console session unavailable")
	}
	return st, nil
}
