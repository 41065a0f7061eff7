// Package authclient verifies console credentials against the remote
// authentication endpoint over HTTP.
package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/ispoms/oms-console/internal/core/domain"
)

const (
	loginPath       = "/auth/login"
	maxResponseBody = 1 << 20
)

var tracer = otel.Tracer("github.com/ispoms/oms-console/internal/infrastructure/authclient")

// Client implements ports.CredentialVerifier.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a Client posting to baseURL + "/auth/login". A nil httpClient
// selects http.DefaultClient; deadlines come from the caller's context.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// Wire shapes of the remote endpoint.

type loginRequest struct {
	Method     string             `json:"method"`
	Email      string             `json:"email,omitempty"`
	Password   string             `json:"password,omitempty"`
	IDToken    string             `json:"idToken,omitempty"`
	DeviceInfo *domain.DeviceInfo `json:"deviceInfo,omitempty"`
}

type remoteUser struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Phone           *string   `json:"phone"`
	IsActive        bool      `json:"is_active"`
	EmailVerified   bool      `json:"email_verified"`
	RoleName        string    `json:"role_name"`
	RolePermissions []string  `json:"role_permissions"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type loginData struct {
	User         *remoteUser `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	ExpiresIn    int64       `json:"expiresIn"`
}

type remoteError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

type envelope struct {
	Success bool         `json:"success"`
	Data    *loginData   `json:"data"`
	Error   *remoteError `json:"error"`
}

// Verify checks creds. Every failure is a *domain.AuthenticationError.
func (c *Client) Verify(ctx context.Context, creds domain.Credentials) (*domain.LoginGrant, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "authclient.Verify")
	span.SetAttributes(attribute.String("login.method", creds.Method()))
	defer span.End()

	grant, err := c.verify(ctx, creds)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return grant, nil
}

func (c *Client) verify(ctx context.Context, creds domain.Credentials) (*domain.LoginGrant, error) {
	body, err := json.Marshal(toRequest(creds))
	if err != nil {
		return nil, domain.NewAuthenticationError("", fmt.Errorf("encode login request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+loginPath, bytes.NewReader(body))
	if err != nil {
		return nil, domain.NewAuthenticationError("", fmt.Errorf("build login request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, domain.NewAuthenticationError(domain.LoginTimedOutMessage, err)
		}
		return nil, domain.NewAuthenticationError("", fmt.Errorf("login request: %w", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, domain.NewAuthenticationError("", fmt.Errorf("read login response: %w", err))
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 || !env.Success {
		msg := ""
		if decodeErr == nil && env.Error != nil {
			msg = env.Error.Message
		}
		return nil, domain.NewAuthenticationError(msg, fmt.Errorf("login rejected: status %d", resp.StatusCode))
	}
	if decodeErr != nil {
		return nil, domain.NewAuthenticationError("", fmt.Errorf("decode login response: %w", decodeErr))
	}
	if env.Data == nil || env.Data.User == nil || env.Data.AccessToken == "" {
		return nil, domain.NewAuthenticationError("", errors.New("login response missing user or token"))
	}

	return toGrant(env.Data), nil
}

func toRequest(creds domain.Credentials) loginRequest {
	switch c := creds.(type) {
	case domain.EmailCredentials:
		return loginRequest{Method: domain.MethodEmail, Email: c.Email, Password: c.Password}
	case domain.FederatedCredentials:
		device := c.Device
		return loginRequest{Method: domain.MethodFederated, IDToken: c.IdentityToken, DeviceInfo: &device}
	default:
		return loginRequest{Method: creds.Method()}
	}
}

func toGrant(d *loginData) *domain.LoginGrant {
	u := d.User
	user := &domain.User{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role: domain.Role{
			Name:        u.RoleName,
			Permissions: append([]string{}, u.RolePermissions...),
		},
		IsActive:      u.IsActive,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
	if u.Phone != nil {
		user.Phone = *u.Phone
	}
	return &domain.LoginGrant{
		User:         user,
		AccessToken:  d.AccessToken,
		RefreshToken: d.RefreshToken,
		ExpiresIn:    d.ExpiresIn,
	}
}
