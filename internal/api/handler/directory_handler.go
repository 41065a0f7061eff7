package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ispoms/oms-console/internal/api/middleware"
	"github.com/ispoms/oms-console/internal/core/domain"
	"github.com/ispoms/oms-console/internal/core/ports"
)

// DirectoryHandler serves the bundled identity directory under /idp.
type DirectoryHandler struct {
	directory ports.DirectoryService
	log       zerolog.Logger
}

func NewDirectoryHandler(directory ports.DirectoryService, log zerolog.Logger) *DirectoryHandler {
	return &DirectoryHandler{directory: directory, log: log}
}

// Register creates a console operator account.
//
// @Summary      Register an operator
// @Tags         directory
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Account details"
// @Success      201   {object}  envelope{data=registerResponse}
// @Failure      400   {object}  envelope
// @Failure      409   {object}  envelope
// @Failure      422   {object}  envelope
// @Router       /idp/auth/register [post]
func (h *DirectoryHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return h.fail(c, http.StatusBadRequest, "INVALID_PAYLOAD", "invalid payload")
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := c.Validate(&req); err != nil {
		return h.fail(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error())
	}

	reg, err := h.directory.Register(c.Request().Context(), ports.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Role:      req.Role,
	})
	if err != nil {
		return h.failWith(c, err)
	}

	return c.JSON(http.StatusCreated, envelope{Success: true, Data: registerResponse{
		UserID:            reg.Account.ID,
		VerificationToken: reg.VerificationToken,
	}})
}

// Login checks credentials and issues tokens. This is the endpoint the
// console's credential verifier calls.
//
// @Summary      Login
// @Tags         directory
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  envelope{data=loginGrantResponse}
// @Failure      400   {object}  envelope
// @Failure      401   {object}  envelope
// @Failure      403   {object}  envelope
// @Router       /idp/auth/login [post]
func (h *DirectoryHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return h.fail(c, http.StatusBadRequest, "INVALID_PAYLOAD", "invalid payload")
	}
	if req.Method == "" {
		req.Method = domain.MethodEmail
	}
	if err := c.Validate(&req); err != nil {
		return h.fail(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error())
	}

	ctx := c.Request().Context()
	var (
		grant *domain.LoginGrant
		err   error
	)
	switch req.Method {
	case domain.MethodFederated:
		grant, err = h.directory.LoginFederated(ctx, req.IDToken, req.DeviceInfo)
	default:
		grant, err = h.directory.Login(ctx, strings.TrimSpace(req.Email), req.Password)
	}
	// Unknown accounts look like bad credentials to the caller.
	if errors.Is(err, domain.ErrUserNotFound) {
		err = domain.ErrInvalidCredentials
		if req.Method == domain.MethodFederated {
			err = domain.ErrInvalidIdentityToken
		}
	}
	if err != nil {
		return h.failWith(c, err)
	}

	return c.JSON(http.StatusOK, envelope{Success: true, Data: loginGrantResponse{
		User:         toDirectoryUser(grant.User),
		AccessToken:  grant.AccessToken,
		RefreshToken: grant.RefreshToken,
		ExpiresIn:    grant.ExpiresIn,
	}})
}

// VerifyEmail consumes a verification token.
//
// @Summary      Verify an email address
// @Tags         directory
// @Produce      json
// @Param        token  query     string  true  "verification token"
// @Success      200    {object}  envelope
// @Failure      400    {object}  envelope
// @Router       /idp/auth/verify-email [get]
func (h *DirectoryHandler) VerifyEmail(c echo.Context) error {
	if err := h.directory.VerifyEmail(c.Request().Context(), c.QueryParam("token")); err != nil {
		return h.failWith(c, err)
	}
	return c.JSON(http.StatusOK, envelope{Success: true})
}

// ResendVerification issues a fresh verification token.
//
// @Summary      Resend verification
// @Tags         directory
// @Accept       json
// @Produce      json
// @Param        body  body      resendRequest  true  "Account email"
// @Success      200   {object}  envelope{data=resendResponse}
// @Failure      400   {object}  envelope
// @Failure      404   {object}  envelope
// @Router       /idp/auth/resend-verification [post]
func (h *DirectoryHandler) ResendVerification(c echo.Context) error {
	var req resendRequest
	if err := c.Bind(&req); err != nil {
		return h.fail(c, http.StatusBadRequest, "INVALID_PAYLOAD", "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return h.fail(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error())
	}

	token, err := h.directory.ResendVerification(c.Request().Context(), req.Email)
	if err != nil {
		return h.failWith(c, err)
	}
	return c.JSON(http.StatusOK, envelope{Success: true, Data: resendResponse{VerificationToken: token}})
}

// Profile returns the account of the bearer token's owner.
//
// @Summary      Current operator profile
// @Tags         directory
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  envelope{data=directoryUser}
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  envelope
// @Failure      404  {object}  envelope
// @Router       /idp/auth/profile [get]
func (h *DirectoryHandler) Profile(c echo.Context) error {
	caller := middleware.UserFrom(c)
	if caller == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	user, err := h.directory.Profile(c.Request().Context(), caller.Email)
	if err != nil {
		return h.failWith(c, err)
	}
	return c.JSON(http.StatusOK, envelope{Success: true, Data: toDirectoryUser(user)})
}

// ListUsers returns every operator account.
//
// @Summary      List operators
// @Tags         directory
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  envelope{data=[]directoryUser}
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /idp/admin/users [get]
func (h *DirectoryHandler) ListUsers(c echo.Context) error {
	users, err := h.directory.ListUsers(c.Request().Context())
	if err != nil {
		return h.failWith(c, err)
	}
	out := make([]directoryUser, 0, len(users))
	for _, u := range users {
		out = append(out, toDirectoryUser(u))
	}
	return c.JSON(http.StatusOK, envelope{Success: true, Data: out})
}

func (h *DirectoryHandler) fail(c echo.Context, status int, code, msg string) error {
	return c.JSON(status, envelope{Error: &directoryError{Message: msg, Code: code}})
}

// failWith maps directory errors onto envelope codes.
func (h *DirectoryHandler) failWith(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return h.fail(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
	case errors.Is(err, domain.ErrInvalidIdentityToken):
		return h.fail(c, http.StatusUnauthorized, "INVALID_IDENTITY_TOKEN", "Invalid identity token")
	case errors.Is(err, domain.ErrUserNotFound):
		return h.fail(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	case errors.Is(err, domain.ErrUserExists):
		return h.fail(c, http.StatusConflict, "USER_EXISTS", "User already exists")
	case errors.Is(err, domain.ErrAccountDisabled):
		return h.fail(c, http.StatusForbidden, "ACCOUNT_DISABLED", "Account is disabled")
	case errors.Is(err, domain.ErrUnknownRole):
		return h.fail(c, http.StatusUnprocessableEntity, "UNKNOWN_ROLE", "Unknown role")
	case errors.Is(err, domain.ErrInvalidVerificationToken):
		return h.fail(c, http.StatusBadRequest, "INVALID_VERIFICATION_TOKEN", "Invalid or expired verification token")
	}

	h.log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("directory request failed")
	return h.fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}
