package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ispoms/oms-console/internal/core/domain"
)

func TestSessionPersistence_RoundTrip(t *testing.T) {
	ctx := context.Background()
	p := NewSessionPersistence()

	_, err := p.Get(ctx, "k")
	require.ErrorIs(t, err, domain.ErrSessionNotFound)

	val := []byte("v1")
	require.NoError(t, p.Set(ctx, "k", val))
	val[0] = 'x'

	got, err := p.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)

	require.NoError(t, p.Delete(ctx, "k", "missing"))
	_, err = p.Get(ctx, "k")
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestAccountRepository(t *testing.T) {
	ctx := context.Background()
	r := NewAccountRepository()

	created, err := r.Create(ctx, &domain.Account{Email: "Ops@ISPOMS.com", RoleName: "Viewer"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	_, err = r.Create(ctx, &domain.Account{Email: "ops@ispoms.com"})
	require.ErrorIs(t, err, domain.ErrUserExists)

	found, err := r.FindByEmail(ctx, "ops@ispoms.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	require.NoError(t, r.MarkEmailVerified(ctx, "OPS@ispoms.com"))
	found, _ = r.FindByEmail(ctx, "ops@ispoms.com")
	assert.True(t, found.EmailVerified)

	require.NoError(t, r.BindFederatedSubject(ctx, "OPS@ispoms.com", "idp|42"))
	found, _ = r.FindByEmail(ctx, "ops@ispoms.com")
	assert.Equal(t, "idp|42", found.FederatedSubject)
	require.ErrorIs(t, r.BindFederatedSubject(ctx, "ghost@ispoms.com", "idp|1"), domain.ErrUserNotFound)

	require.ErrorIs(t, r.MarkEmailVerified(ctx, "ghost@ispoms.com"), domain.ErrUserNotFound)
	_, err = r.FindByEmail(ctx, "ghost@ispoms.com")
	require.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = r.Create(ctx, &domain.Account{Email: "a@ispoms.com"})
	require.NoError(t, err)
	all, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a@ispoms.com", all[0].Email)
}

func TestVerificationStore(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)
	s := NewVerificationStore()
	s.now = func() time.Time { return now }

	require.NoError(t, s.Save(ctx, "tok", "ops@ispoms.com", time.Minute))
	email, err := s.Consume(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "ops@ispoms.com", email)

	_, err = s.Consume(ctx, "tok")
	require.ErrorIs(t, err, domain.ErrInvalidVerificationToken, "tokens are single use")

	require.NoError(t, s.Save(ctx, "old", "ops@ispoms.com", time.Minute))
	now = now.Add(2 * time.Minute)
	_, err = s.Consume(ctx, "old")
	require.ErrorIs(t, err, domain.ErrInvalidVerificationToken)
}

func TestVerificationStore_SavePrunesExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)
	s := NewVerificationStore()
	s.now = func() time.Time { return now }

	require.NoError(t, s.Save(ctx, "a", "a@ispoms.com", time.Minute))
	require.NoError(t, s.Save(ctx, "b", "b@ispoms.com", time.Hour))
	assert.Equal(t, 2, s.Len())

	now = now.Add(10 * time.Minute)
	require.NoError(t, s.Save(ctx, "c", "c@ispoms.com", time.Minute))
	assert.Equal(t, 2, s.Len())

	_, err := s.Consume(ctx, "a")
	require.ErrorIs(t, err, domain.ErrInvalidVerificationToken)
	email, err := s.Consume(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "b@ispoms.com", email)
}
