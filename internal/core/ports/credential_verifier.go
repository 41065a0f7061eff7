package ports

import (
	"context"

	"github.com/ispoms/oms-console/internal/core/domain"
)

// CredentialVerifier checks a login attempt against the authentication
// endpoint. Every failure is returned as a *domain.AuthenticationError.
type CredentialVerifier interface {
	Verify(ctx context.Context, creds domain.Credentials) (*domain.LoginGrant, error)
}
