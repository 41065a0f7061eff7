package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ispoms/oms-console/internal/core/domain"
	"github.com/ispoms/oms-console/internal/core/ports"
	"github.com/ispoms/oms-console/internal/infrastructure/db/memory"
	"github.com/ispoms/oms-console/internal/infrastructure/rolecatalog"
)

const (
	testJWTSecret       = "secret"
	testFederatedSecret = "federated"
)

func newTestDirectory(t *testing.T) (*DirectoryService, *memory.AccountRepository) {
	t.Helper()
	roles, err := rolecatalog.Default()
	require.NoError(t, err)
	accounts := memory.NewAccountRepository()
	svc := NewDirectoryService(accounts, memory.NewVerificationStore(), roles, DirectoryConfig{
		JWTSecret:       testJWTSecret,
		FederatedSecret: testFederatedSecret,
		TokenTTL:        time.Hour,
	}, zerolog.Nop())
	return svc, accounts
}

func registerAdmin(t *testing.T, svc *DirectoryService) *ports.Registration {
	t.Helper()
	reg, err := svc.Register(context.Background(), ports.RegisterInput{
		Email:     "admin@ispoms.com",
		Password:  "correct-pw",
		FirstName: "Ada",
		LastName:  "Admin",
		Role:      "Administrator",
	})
	require.NoError(t, err)
	return reg
}

func signIdentity(t *testing.T, secret, email string, method jwt.SigningMethod) string {
	t.Helper()
	return signIdentityFor(t, secret, email, "federated-sub", method)
}

func signIdentityFor(t *testing.T, secret, email, subject string, method jwt.SigningMethod) string {
	t.Helper()
	claims := identityClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	tok, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func TestDirectoryService_Register(t *testing.T) {
	svc, accounts := newTestDirectory(t)
	reg := registerAdmin(t, svc)

	assert.NotEmpty(t, reg.Account.ID)
	assert.NotEmpty(t, reg.VerificationToken)
	assert.True(t, reg.Account.IsActive)
	assert.False(t, reg.Account.EmailVerified)
	assert.NotEqual(t, "correct-pw", reg.Account.PasswordHash)

	stored, err := accounts.FindByEmail(context.Background(), "admin@ispoms.com")
	require.NoError(t, err)
	assert.Equal(t, "Administrator", stored.RoleName)
}

func TestDirectoryService_RegisterRejects(t *testing.T) {
	svc, _ := newTestDirectory(t)
	ctx := context.Background()
	registerAdmin(t, svc)

	_, err := svc.Register(ctx, ports.RegisterInput{Email: "admin@ispoms.com", Password: "x", FirstName: "A", LastName: "B", Role: "Viewer"})
	assert.ErrorIs(t, err, domain.ErrUserExists)

	_, err = svc.Register(ctx, ports.RegisterInput{Email: "new@ispoms.com", Password: "x", FirstName: "A", LastName: "B", Role: "Janitor"})
	assert.ErrorIs(t, err, domain.ErrUnknownRole)

	_, err = svc.Register(ctx, ports.RegisterInput{Email: "  ", Password: "x", FirstName: "A", LastName: "B", Role: "Viewer"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestDirectoryService_Login(t *testing.T) {
	svc, _ := newTestDirectory(t)
	registerAdmin(t, svc)

	grant, err := svc.Login(context.Background(), "admin@ispoms.com", "correct-pw")
	require.NoError(t, err)

	assert.Equal(t, int64(3600), grant.ExpiresIn)
	assert.NotEmpty(t, grant.RefreshToken)
	require.NotNil(t, grant.User)
	assert.Equal(t, "Administrator", grant.User.Role.Name)
	assert.Equal(t, []string{"*"}, grant.User.Role.Permissions)

	claims := &AccessClaims{}
	tok, err := jwt.ParseWithClaims(grant.AccessToken, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	assert.True(t, tok.Valid)
	assert.Equal(t, grant.User.ID, claims.Subject)
	assert.Equal(t, "admin@ispoms.com", claims.Email)
	assert.Equal(t, "Administrator", claims.Role)
	assert.Equal(t, []string{"*"}, claims.Permissions)
}

func TestDirectoryService_LoginFailures(t *testing.T) {
	svc, accounts := newTestDirectory(t)
	ctx := context.Background()
	registerAdmin(t, svc)

	_, err := svc.Login(ctx, "admin@ispoms.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "ghost@ispoms.com", "correct-pw")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = svc.Login(ctx, "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = accounts.Create(ctx, &domain.Account{Email: "off@ispoms.com", PasswordHash: "$2a$", RoleName: "Viewer"})
	require.NoError(t, err)
	_, err = svc.LoginFederated(ctx, signIdentity(t, testFederatedSecret, "off@ispoms.com", jwt.SigningMethodHS256), domain.DeviceInfo{})
	assert.ErrorIs(t, err, domain.ErrAccountDisabled)
}

func TestDirectoryService_LoginFederated(t *testing.T) {
	svc, _ := newTestDirectory(t)
	ctx := context.Background()
	registerAdmin(t, svc)

	grant, err := svc.LoginFederated(ctx, signIdentity(t, testFederatedSecret, "admin@ispoms.com", jwt.SigningMethodHS256),
		domain.DeviceInfo{UserAgent: "Mozilla/5.0", Platform: "MacIntel"})
	require.NoError(t, err)
	assert.Equal(t, "admin@ispoms.com", grant.User.Email)

	_, err = svc.LoginFederated(ctx, signIdentity(t, "other", "admin@ispoms.com", jwt.SigningMethodHS256), domain.DeviceInfo{})
	assert.ErrorIs(t, err, domain.ErrInvalidIdentityToken)

	_, err = svc.LoginFederated(ctx, signIdentity(t, testFederatedSecret, "admin@ispoms.com", jwt.SigningMethodHS512), domain.DeviceInfo{})
	assert.ErrorIs(t, err, domain.ErrInvalidIdentityToken, "only HS256 is accepted")

	_, err = svc.LoginFederated(ctx, signIdentity(t, testFederatedSecret, "nobody@ispoms.com", jwt.SigningMethodHS256), domain.DeviceInfo{})
	assert.ErrorIs(t, err, domain.ErrUserNotFound, "accounts are not provisioned on first use")

	_, err = svc.LoginFederated(ctx, "", domain.DeviceInfo{})
	assert.ErrorIs(t, err, domain.ErrInvalidIdentityToken)
}

func TestDirectoryService_LoginFederatedPinsSubject(t *testing.T) {
	svc, accounts := newTestDirectory(t)
	ctx := context.Background()
	registerAdmin(t, svc)

	_, err := svc.LoginFederated(ctx, signIdentityFor(t, testFederatedSecret, "admin@ispoms.com", "", jwt.SigningMethodHS256), domain.DeviceInfo{})
	assert.ErrorIs(t, err, domain.ErrInvalidIdentityToken, "subject is required")

	_, err = svc.LoginFederated(ctx, signIdentityFor(t, testFederatedSecret, "admin@ispoms.com", "idp|1001", jwt.SigningMethodHS256), domain.DeviceInfo{})
	require.NoError(t, err)

	acc, err := accounts.FindByEmail(ctx, "admin@ispoms.com")
	require.NoError(t, err)
	assert.Equal(t, "idp|1001", acc.FederatedSubject)

	_, err = svc.LoginFederated(ctx, signIdentityFor(t, testFederatedSecret, "admin@ispoms.com", "idp|1001", jwt.SigningMethodHS256), domain.DeviceInfo{})
	assert.NoError(t, err)

	_, err = svc.LoginFederated(ctx, signIdentityFor(t, testFederatedSecret, "admin@ispoms.com", "idp|2002", jwt.SigningMethodHS256), domain.DeviceInfo{})
	assert.ErrorIs(t, err, domain.ErrInvalidIdentityToken)
}

func TestDirectoryService_LoginUnknownEmailStillHashes(t *testing.T) {
	svc, _ := newTestDirectory(t)
	registerAdmin(t, svc)

	var compared [][]byte
	svc.compare = func(hash, password []byte) error {
		compared = append(compared, hash)
		return errors.New("mismatch")
	}

	_, err := svc.Login(context.Background(), "ghost@ispoms.com", "whatever")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	require.Len(t, compared, 1)
	assert.Equal(t, dummyHash(), compared[0])

	_, err = svc.Login(context.Background(), "admin@ispoms.com", "whatever")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	require.Len(t, compared, 2)
	assert.NotEqual(t, dummyHash(), compared[1])
}

func TestDirectoryService_Profile(t *testing.T) {
	svc, accounts := newTestDirectory(t)
	ctx := context.Background()
	registerAdmin(t, svc)

	user, err := svc.Profile(ctx, "ADMIN@ispoms.com")
	require.NoError(t, err)
	assert.Equal(t, "admin@ispoms.com", user.Email)
	assert.Equal(t, "Ada", user.FirstName)
	assert.Equal(t, []string{"*"}, user.Role.Permissions)

	_, err = svc.Profile(ctx, "ghost@ispoms.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = accounts.Create(ctx, &domain.Account{Email: "off@ispoms.com", RoleName: "Viewer"})
	require.NoError(t, err)
	_, err = svc.Profile(ctx, "off@ispoms.com")
	assert.ErrorIs(t, err, domain.ErrAccountDisabled)
}

func TestDirectoryService_VerifyEmail(t *testing.T) {
	svc, accounts := newTestDirectory(t)
	ctx := context.Background()
	reg := registerAdmin(t, svc)

	require.NoError(t, svc.VerifyEmail(ctx, reg.VerificationToken))
	acc, err := accounts.FindByEmail(ctx, "admin@ispoms.com")
	require.NoError(t, err)
	assert.True(t, acc.EmailVerified)

	assert.ErrorIs(t, svc.VerifyEmail(ctx, reg.VerificationToken), domain.ErrInvalidVerificationToken, "tokens are single use")
	assert.ErrorIs(t, svc.VerifyEmail(ctx, ""), domain.ErrInvalidVerificationToken)

	_, err = svc.ResendVerification(ctx, "admin@ispoms.com")
	assert.ErrorIs(t, err, domain.ErrInvalidVerificationToken, "already verified")
}

func TestDirectoryService_ResendVerification(t *testing.T) {
	svc, _ := newTestDirectory(t)
	ctx := context.Background()
	reg := registerAdmin(t, svc)

	token, err := svc.ResendVerification(ctx, "admin@ispoms.com")
	require.NoError(t, err)
	assert.NotEqual(t, reg.VerificationToken, token)
	require.NoError(t, svc.VerifyEmail(ctx, token))

	_, err = svc.ResendVerification(ctx, "ghost@ispoms.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestDirectoryService_ListUsers(t *testing.T) {
	svc, _ := newTestDirectory(t)
	ctx := context.Background()
	registerAdmin(t, svc)
	_, err := svc.Register(ctx, ports.RegisterInput{Email: "viewer@ispoms.com", Password: "pw", FirstName: "V", LastName: "W", Role: "Viewer"})
	require.NoError(t, err)

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "admin@ispoms.com", users[0].Email)
	assert.Equal(t, "Viewer", users[1].Role.Name)
	assert.Contains(t, users[1].Role.Permissions, "reports:read")
}
