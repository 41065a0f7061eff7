package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/ispoms/oms-console/internal/api/middleware"
	"github.com/ispoms/oms-console/internal/core/domain"
	"github.com/ispoms/oms-console/internal/core/service"
	"github.com/ispoms/oms-console/internal/infrastructure/db/memory"
)

const testConsoleID = "0b6c8f0e-2d4a-4c7e-9f51-3a8e6d2b1c70"

var testNow = time.Unix(1_700_000_000, 0)

type stubVerifier struct {
	calls []domain.Credentials
}

// Verify accepts admin@ispoms.com / correct-pw and any identity token "good".
func (s *stubVerifier) Verify(_ context.Context, creds domain.Credentials) (*domain.LoginGrant, error) {
	s.calls = append(s.calls, creds)
	switch c := creds.(type) {
	case domain.EmailCredentials:
		if c.Email == "admin@ispoms.com" && c.Password == "correct-pw" {
			return adminGrant(), nil
		}
	case domain.FederatedCredentials:
		if c.IdentityToken == "good" {
			return adminGrant(), nil
		}
	}
	return nil, domain.NewAuthenticationError("Invalid credentials", nil)
}

func adminGrant() *domain.LoginGrant {
	return &domain.LoginGrant{
		User: &domain.User{
			ID:    "u-1",
			Email: "admin@ispoms.com",
			Role:  domain.Role{Name: "Sales Agent", Permissions: []string{"orders:*", "customers:read"}},
		},
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresIn:    3600,
	}
}

type consoleFixture struct {
	e        *echo.Echo
	sessions *service.Sessions
	verifier *stubVerifier
}

func newConsoleFixture() *consoleFixture {
	v := &stubVerifier{}
	f := &consoleFixture{
		e:        echo.New(),
		verifier: v,
		sessions: service.NewSessions(v, memory.NewSessionPersistence(), zerolog.Nop(),
			service.WithClock(func() time.Time { return testNow })),
	}
	f.e.Validator = NewValidator()
	return f
}

func (f *consoleFixture) store() *service.SessionStore {
	return f.sessions.Get(context.Background(), testConsoleID)
}

func (f *consoleFixture) signIn(t *testing.T) {
	t.Helper()
	sess, err := f.store().Login(context.Background(), domain.EmailCredentials{Email: "admin@ispoms.com", Password: "correct-pw"})
	require.NoError(t, err)
	require.True(t, sess.IsAuthenticated)
}

// serve runs h behind the console middleware with the fixture's cookie.
func (f *consoleFixture) serve(t *testing.T, h echo.HandlerFunc, method, target string, body io.Reader, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	req.AddCookie(&http.Cookie{Name: middleware.ConsoleCookie, Value: testConsoleID})
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	c := f.e.NewContext(req, rec)
	if err := middleware.Console(f.sessions, false)(h)(c); err != nil {
		f.e.HTTPErrorHandler(err, c)
	}
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}
