package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/ispoms/oms-console/internal/core/domain"
	"github.com/ispoms/oms-console/internal/core/service"
	"github.com/ispoms/oms-console/internal/infrastructure/db/memory"
)

type stubVerifier struct {
	grant *domain.LoginGrant
}

func (s stubVerifier) Verify(_ context.Context, creds domain.Credentials) (*domain.LoginGrant, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	if s.grant == nil {
		return nil, domain.NewAuthenticationError("Invalid credentials", nil)
	}
	return s.grant, nil
}

func grantWith(perms ...string) *domain.LoginGrant {
	return &domain.LoginGrant{
		User: &domain.User{
			ID:    "u-1",
			Email: "agent@ispoms.com",
			Role:  domain.Role{Name: "Sales Agent", Permissions: perms},
		},
		AccessToken:  "tok",
		RefreshToken: "ref",
		ExpiresIn:    3600,
	}
}

func newSessions(grant *domain.LoginGrant, opts ...service.SessionStoreOption) *service.Sessions {
	return service.NewSessions(stubVerifier{grant: grant}, memory.NewSessionPersistence(), zerolog.Nop(), opts...)
}

const testConsoleID = "6f1c2f7e-8a54-4b6f-9d3a-2b7c1e0f9a11"

// loggedIn returns a registry where testConsoleID is authenticated.
func loggedIn(t *testing.T, now *time.Time, perms ...string) *service.Sessions {
	t.Helper()
	reg := newSessions(grantWith(perms...), service.WithClock(func() time.Time { return *now }))
	sess, err := reg.Get(context.Background(), testConsoleID).Login(context.Background(),
		domain.EmailCredentials{Email: "agent@ispoms.com", Password: "pw"})
	require.NoError(t, err)
	require.True(t, sess.IsAuthenticated)
	return reg
}

func newContext(method, target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func okHandler(called *bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		*called = true
		return c.NoContent(http.StatusOK)
	}
}
