package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ispoms/oms-console/internal/api/middleware"
	"github.com/ispoms/oms-console/internal/core/domain"
)

// SessionHandler exposes the console session to the browser. It must be
// mounted behind middleware.Console.
type SessionHandler struct {
	now func() time.Time
}

func NewSessionHandler(now func() time.Time) *SessionHandler {
	if now == nil {
		now = time.Now
	}
	return &SessionHandler{now: now}
}

// Login checks credentials and starts a console session.
//
// @Summary      Sign in
// @Description  Email/password or federated identity token. Failures are reported in the session's error field.
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  sessionView
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  sessionView
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/session/login [post]
func (h *SessionHandler) Login(c echo.Context) error {
	store, err := middleware.Store(c)
	if err != nil {
		return err
	}

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if req.Method == "" {
		req.Method = domain.MethodEmail
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	}
	if req.Method == domain.MethodFederated && req.DeviceInfo.UserAgent == "" {
		req.DeviceInfo.UserAgent = c.Request().UserAgent()
	}

	// The store bounds the call with its own timeout; a client disconnect
	// must not leave a half-finished login behind.
	sess, err := store.Login(context.WithoutCancel(c.Request().Context()), req.credentials())
	if err != nil {
		return err
	}

	status := http.StatusOK
	if !sess.IsAuthenticated {
		status = http.StatusUnauthorized
	}
	return c.JSON(status, newSessionView(sess, h.now()))
}

// Logout ends the console session.
//
// @Summary      Sign out
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionView
// @Router       /api/session/logout [post]
func (h *SessionHandler) Logout(c echo.Context) error {
	store, err := middleware.Store(c)
	if err != nil {
		return err
	}
	sess := store.Logout(context.WithoutCancel(c.Request().Context()))
	return c.JSON(http.StatusOK, newSessionView(sess, h.now()))
}

// Get reports the current session without changing it.
//
// @Summary      Current session
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionView
// @Router       /api/session [get]
func (h *SessionHandler) Get(c echo.Context) error {
	store, err := middleware.Store(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newSessionView(store.Snapshot(), h.now()))
}

// ClearError dismisses the last login error.
//
// @Summary      Dismiss the session error
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionView
// @Router       /api/session/error [delete]
func (h *SessionHandler) ClearError(c echo.Context) error {
	store, err := middleware.Store(c)
	if err != nil {
		return err
	}
	store.ClearError()
	return c.JSON(http.StatusOK, newSessionView(store.Snapshot(), h.now()))
}

// Can reports whether the signed-in user holds a permission.
//
// @Summary      Check a permission
// @Tags         session
// @Produce      json
// @Param        permission  query     string  true  "resource:action"
// @Success      200         {object}  canResponse
// @Failure      400         {object}  errorResponse
// @Router       /api/session/can [get]
func (h *SessionHandler) Can(c echo.Context) error {
	store, err := middleware.Store(c)
	if err != nil {
		return err
	}
	perm := c.QueryParam("permission")
	if perm == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "permission is required"})
	}
	sess := store.Snapshot()
	return c.JSON(http.StatusOK, canResponse{
		Permission: perm,
		Allowed:    sess.IsAuthenticated && domain.HasPermission(sess.User, perm),
	})
}
