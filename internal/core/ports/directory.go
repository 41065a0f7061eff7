package ports

import (
	"context"
	"time"

	"github.com/ispoms/oms-console/internal/core/domain"
)

// AccountRepository persists directory accounts.
type AccountRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	MarkEmailVerified(ctx context.Context, email string) error
	// BindFederatedSubject pins the identity provider subject to the account.
	BindFederatedSubject(ctx context.Context, email, subject string) error
	List(ctx context.Context) ([]*domain.Account, error)
}

// VerificationStore keeps single-use email verification tokens.
type VerificationStore interface {
	Save(ctx context.Context, token, email string, ttl time.Duration) error
	// Consume returns the email bound to token and deletes it.
	// Unknown or expired tokens yield domain.ErrInvalidVerificationToken.
	Consume(ctx context.Context, token string) (string, error)
}

// RoleCatalog resolves role names to their permission grants.
type RoleCatalog interface {
	Role(name string) (domain.Role, bool)
	Roles() []domain.Role
}

// RegisterInput carries a new directory account.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	Role      string
}

// Registration is returned by Register.
type Registration struct {
	Account           *domain.Account
	VerificationToken string
}

// DirectoryService is the bundled authentication endpoint.
type DirectoryService interface {
	Register(ctx context.Context, in RegisterInput) (*Registration, error)
	Login(ctx context.Context, email, password string) (*domain.LoginGrant, error)
	LoginFederated(ctx context.Context, identityToken string, device domain.DeviceInfo) (*domain.LoginGrant, error)
	VerifyEmail(ctx context.Context, token string) error
	ResendVerification(ctx context.Context, email string) (string, error)
	Profile(ctx context.Context, email string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
}
