package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/ispoms/oms-console/internal/api/metrics"
	"github.com/ispoms/oms-console/internal/core/domain"
	"github.com/ispoms/oms-console/internal/core/ports"
)

const (
	defaultTokenTTL        = time.Hour
	defaultVerificationTTL = 24 * time.Hour
)

// dummyHash is compared against when the account does not exist so unknown
// and known emails cost the same bcrypt work.
var dummyHash = sync.OnceValue(func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("oms-console-no-such-account"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return h
})

// DirectoryConfig holds the signing material and lifetimes of the directory.
type DirectoryConfig struct {
	JWTSecret       string
	FederatedSecret string
	TokenTTL        time.Duration
	VerificationTTL time.Duration
}

// DirectoryService implements registration, login and email verification
// for console operators.
type DirectoryService struct {
	accounts     ports.AccountRepository
	verification ports.VerificationStore
	roles        ports.RoleCatalog
	cfg          DirectoryConfig
	now          func() time.Time
	compare      func(hash, password []byte) error
	log          zerolog.Logger
}

func NewDirectoryService(
	accounts ports.AccountRepository,
	verification ports.VerificationStore,
	roles ports.RoleCatalog,
	cfg DirectoryConfig,
	log zerolog.Logger,
) *DirectoryService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}
	if cfg.VerificationTTL <= 0 {
		cfg.VerificationTTL = defaultVerificationTTL
	}
	return &DirectoryService{
		accounts:     accounts,
		verification: verification,
		roles:        roles,
		cfg:          cfg,
		now:          time.Now,
		compare:      bcrypt.CompareHashAndPassword,
		log:          log,
	}
}

func (s *DirectoryService) Register(ctx context.Context, in ports.RegisterInput) (*ports.Registration, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" || in.FirstName == "" || in.LastName == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if _, ok := s.roles.Role(in.Role); !ok {
		return nil, domain.ErrUnknownRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	created, err := s.accounts.Create(ctx, &domain.Account{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Phone:        in.Phone,
		RoleName:     in.Role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	token, err := s.issueVerification(ctx, created.Email)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", created.ID).Str("role", created.RoleName).Msg("account registered")
	return &ports.Registration{Account: created, VerificationToken: token}, nil
}

func (s *DirectoryService) Login(ctx context.Context, email, password string) (*domain.LoginGrant, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			_ = s.compare(dummyHash(), []byte(password))
		}
		metrics.DirectoryLoginsTotal.WithLabelValues(domain.MethodEmail, "failure").Inc()
		return nil, err
	}

	if s.compare([]byte(account.PasswordHash), []byte(password)) != nil {
		metrics.DirectoryLoginsTotal.WithLabelValues(domain.MethodEmail, "failure").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	return s.grant(account, domain.MethodEmail)
}

type identityClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// LoginFederated accepts an identity token signed by the federated provider.
// The account must already exist; there is no auto-provisioning. The first
// successful login pins the token subject to the account and later tokens
// must carry the same subject.
func (s *DirectoryService) LoginFederated(ctx context.Context, identityToken string, device domain.DeviceInfo) (*domain.LoginGrant, error) {
	if identityToken == "" || s.cfg.FederatedSecret == "" {
		return nil, domain.ErrInvalidIdentityToken
	}

	claims := &identityClaims{}
	tkn, err := jwt.ParseWithClaims(identityToken, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.FederatedSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tkn.Valid || claims.Email == "" || claims.Subject == "" {
		metrics.DirectoryLoginsTotal.WithLabelValues(domain.MethodFederated, "failure").Inc()
		return nil, domain.ErrInvalidIdentityToken
	}

	account, err := s.accounts.FindByEmail(ctx, claims.Email)
	if err != nil {
		metrics.DirectoryLoginsTotal.WithLabelValues(domain.MethodFederated, "failure").Inc()
		return nil, err
	}
	if account.FederatedSubject != "" && account.FederatedSubject != claims.Subject {
		metrics.DirectoryLoginsTotal.WithLabelValues(domain.MethodFederated, "failure").Inc()
		s.log.Warn().Str("user_id", account.ID).Msg("federated subject mismatch")
		return nil, domain.ErrInvalidIdentityToken
	}

	grant, err := s.grant(account, domain.MethodFederated)
	if err != nil {
		return nil, err
	}
	if account.FederatedSubject == "" {
		if err := s.accounts.BindFederatedSubject(ctx, account.Email, claims.Subject); err != nil {
			return nil, fmt.Errorf("bind federated subject: %w", err)
		}
	}

	s.log.Debug().
		Str("user_id", account.ID).
		Str("subject", claims.Subject).
		Str("user_agent", device.UserAgent).
		Str("platform", device.Platform).
		Msg("federated login")

	return grant, nil
}

func (s *DirectoryService) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return domain.ErrInvalidVerificationToken
	}
	email, err := s.verification.Consume(ctx, token)
	if err != nil {
		return err
	}
	if err := s.accounts.MarkEmailVerified(ctx, email); err != nil {
		return fmt.Errorf("verify email: %w", err)
	}
	return nil
}

func (s *DirectoryService) ResendVerification(ctx context.Context, email string) (string, error) {
	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if account.EmailVerified {
		return "", domain.ErrInvalidVerificationToken
	}
	return s.issueVerification(ctx, account.Email)
}

// Profile returns the current snapshot of the account behind email.
func (s *DirectoryService) Profile(ctx context.Context, email string) (*domain.User, error) {
	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !account.IsActive {
		return nil, domain.ErrAccountDisabled
	}
	role, _ := s.roles.Role(account.RoleName)
	return account.Snapshot(role), nil
}

func (s *DirectoryService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return nil, err
	}
	users := make([]*domain.User, 0, len(accounts))
	for _, a := range accounts {
		role, _ := s.roles.Role(a.RoleName)
		users = append(users, a.Snapshot(role))
	}
	return users, nil
}

func (s *DirectoryService) grant(account *domain.Account, method string) (*domain.LoginGrant, error) {
	if !account.IsActive {
		metrics.DirectoryLoginsTotal.WithLabelValues(method, "failure").Inc()
		return nil, domain.ErrAccountDisabled
	}
	role, ok := s.roles.Role(account.RoleName)
	if !ok {
		metrics.DirectoryLoginsTotal.WithLabelValues(method, "failure").Inc()
		return nil, fmt.Errorf("account %s: %w", account.ID, domain.ErrUnknownRole)
	}

	user := account.Snapshot(role)
	token, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}

	metrics.DirectoryLoginsTotal.WithLabelValues(method, "success").Inc()
	return &domain.LoginGrant{
		User:         user,
		AccessToken:  token,
		RefreshToken: uuid.NewString(),
		ExpiresIn:    int64(s.cfg.TokenTTL / time.Second),
	}, nil
}

// AccessClaims are the claims carried by directory access tokens.
type AccessClaims struct {
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Permissions []string `json:"perms"`
	jwt.RegisteredClaims
}

func (s *DirectoryService) generateToken(user *domain.User) (string, error) {
	now := s.now()
	claims := AccessClaims{
		Email:       user.Email,
		Role:        user.Role.Name,
		Permissions: user.Role.Permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *DirectoryService) issueVerification(ctx context.Context, email string) (string, error) {
	token := uuid.NewString()
	if err := s.verification.Save(ctx, token, email, s.cfg.VerificationTTL); err != nil {
		return "", fmt.Errorf("save verification token: %w", err)
	}
	return token, nil
}
