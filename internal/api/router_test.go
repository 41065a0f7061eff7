package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ispoms/oms-console/internal/core/ports"
	"github.com/ispoms/oms-console/internal/core/service"
	"github.com/ispoms/oms-console/internal/infrastructure/authclient"
	"github.com/ispoms/oms-console/internal/infrastructure/db/memory"
	"github.com/ispoms/oms-console/internal/infrastructure/rolecatalog"
)

const testSecret = "router-secret"

type stack struct {
	console   *httptest.Server
	directory *service.DirectoryService
	client    *http.Client
}

// newStack serves the directory and the console from one router, the way a
// single-process deployment does.
func newStack(t *testing.T) *stack {
	t.Helper()
	roles, err := rolecatalog.Default()
	require.NoError(t, err)
	dir := service.NewDirectoryService(memory.NewAccountRepository(), memory.NewVerificationStore(), roles,
		service.DirectoryConfig{JWTSecret: testSecret, TokenTTL: time.Hour}, zerolog.Nop())

	verifier := &lateVerifier{}
	sessions := service.NewSessions(verifier, memory.NewSessionPersistence(), zerolog.Nop())
	srv := httptest.NewServer(NewRouter(Deps{
		Sessions:  sessions,
		Directory: dir,
		JWTSecret: testSecret,
		Registry:  prometheus.NewRegistry(),
		Log:       zerolog.Nop(),
	}))
	t.Cleanup(srv.Close)
	verifier.Client = authclient.New(srv.URL+"/idp", srv.Client())

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := srv.Client()
	client.Jar = jar
	client.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }

	return &stack{console: srv, directory: dir, client: client}
}

// lateVerifier lets the test point the verifier at the server after it starts.
type lateVerifier struct {
	*authclient.Client
}

func (s *stack) do(t *testing.T, method, path, body string, headers ...string) (*http.Response, map[string]any) {
	t.Helper()
	var rdr *strings.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	} else {
		rdr = strings.NewReader("")
	}
	req, err := http.NewRequest(method, s.console.URL+path, rdr)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := s.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func (s *stack) register(t *testing.T, email, role string) {
	t.Helper()
	_, err := s.directory.Register(context.Background(), ports.RegisterInput{
		Email: email, Password: "correct-pw", FirstName: "Test", LastName: "User", Role: role,
	})
	require.NoError(t, err)
}

func TestRouter_ConsoleFlow(t *testing.T) {
	s := newStack(t)
	s.register(t, "agent@ispoms.com", "Sales Agent")

	resp, _ := s.do(t, http.MethodGet, "/orders", "")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login?from=%2Forders", resp.Header.Get("Location"))

	resp, body := s.do(t, http.MethodPost, "/api/session/login", `{"email":"agent@ispoms.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid email or password", body["error"])

	resp, body = s.do(t, http.MethodPost, "/api/session/login", `{"email":"agent@ispoms.com","password":"correct-pw"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["isAuthenticated"])

	resp, body = s.do(t, http.MethodGet, "/orders", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "orders", body["view"])

	resp, _ = s.do(t, http.MethodGet, "/users", "")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/unauthorized?from=%2Fusers", resp.Header.Get("Location"))

	resp, body = s.do(t, http.MethodGet, "/settings", "", "Accept", "application/json")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Insufficient permissions. Required: admin:settings", body["error"])

	resp, body = s.do(t, http.MethodGet, "/api/session/can?permission=customers:create", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["allowed"])

	resp, _ = s.do(t, http.MethodPost, "/api/session/logout", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = s.do(t, http.MethodGet, "/dashboard", "", "Accept", "application/json")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "/login?from=%2Fdashboard", body["redirect"])
}

func TestRouter_AdminUsersNeedsPermission(t *testing.T) {
	s := newStack(t)
	s.register(t, "admin@ispoms.com", "Administrator")
	s.register(t, "viewer@ispoms.com", "Viewer")

	token := func(email string) string {
		grant, err := s.directory.Login(context.Background(), email, "correct-pw")
		require.NoError(t, err)
		return grant.AccessToken
	}

	resp, _ := s.do(t, http.MethodGet, "/idp/admin/users", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := s.do(t, http.MethodGet, "/idp/admin/users", "", "Authorization", "Bearer "+token("viewer@ispoms.com"))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Insufficient permissions. Required: admin:users", body["error"])

	resp, body = s.do(t, http.MethodGet, "/idp/admin/users", "", "Authorization", "Bearer "+token("admin@ispoms.com"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["data"], 2)
}

func TestRouter_Profile(t *testing.T) {
	s := newStack(t)
	s.register(t, "viewer@ispoms.com", "Viewer")

	grant, err := s.directory.Login(context.Background(), "viewer@ispoms.com", "correct-pw")
	require.NoError(t, err)

	resp, _ := s.do(t, http.MethodGet, "/idp/auth/profile", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := s.do(t, http.MethodGet, "/idp/auth/profile", "", "Authorization", "Bearer "+grant.AccessToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "viewer@ispoms.com", data["email"])
	assert.Equal(t, "Viewer", data["role_name"])
	assert.Equal(t, false, data["email_verified"])
}

func TestRouter_Operational(t *testing.T) {
	s := newStack(t)

	resp, body := s.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])

	resp, _ = s.do(t, http.MethodGet, "/health/ready", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, s.console.URL+"/metrics", nil)
	require.NoError(t, err)
	mresp, err := s.client.Do(req)
	require.NoError(t, err)
	mresp.Body.Close()
	assert.Equal(t, http.StatusOK, mresp.StatusCode)

	u, err := url.Parse(s.console.URL)
	require.NoError(t, err)
	assert.Empty(t, s.client.Jar.Cookies(u), "operational routes do not mint console ids")
}
