package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ispoms/oms-console/internal/api/metrics"
	"github.com/ispoms/oms-console/internal/core/domain"
)

const (
	LoginPath        = "/login"
	UnauthorizedPath = "/unauthorized"
)

type guardResponse struct {
	Status   string `json:"status,omitempty"`
	Error    string `json:"error,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

// Guard gates a view behind authentication and, when required is not
// empty, behind holding at least one of the listed permissions. Expired
// sessions are logged out before deciding.
func Guard(required ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			store, err := Store(c)
			if err != nil {
				return err
			}

			if store.ExpireIfStale(context.WithoutCancel(c.Request().Context())) {
				c.Set(userKey, nil)
			}
			decision := domain.Decide(store.Snapshot(), required)
			metrics.GuardDecisionsTotal.WithLabelValues(decision.String()).Inc()

			switch decision {
			case domain.Render:
				return next(c)
			case domain.ShowLoading:
				c.Response().Header().Set("Retry-After", "1")
				return c.JSON(http.StatusAccepted, guardResponse{Status: "authenticating"})
			case domain.RedirectToLogin:
				return redirect(c, LoginPath, http.StatusUnauthorized, "authentication required")
			default:
				msg := (&domain.AuthorizationError{RequiredPermission: strings.Join(required, " or ")}).Error()
				return redirect(c, UnauthorizedPath, http.StatusForbidden, msg)
			}
		}
	}
}

// redirect sends browsers to target and answers JSON clients with status.
func redirect(c echo.Context, target string, status int, msg string) error {
	loc := target + "?from=" + url.QueryEscape(c.Request().URL.RequestURI())
	if WantsJSON(c.Request()) {
		return c.JSON(status, guardResponse{Error: msg, Redirect: loc})
	}
	return c.Redirect(http.StatusFound, loc)
}

// WantsJSON reports whether the client asked for JSON rather than a page.
func WantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}
