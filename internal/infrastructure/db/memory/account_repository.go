package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/ispoms/oms-console/internal/core/domain"
)

// AccountRepository keeps accounts keyed by lower-cased email.
type AccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{accounts: make(map[string]*domain.Account)}
}

func cloneAccount(a *domain.Account) *domain.Account {
	c := *a
	return &c
}

func (r *AccountRepository) Create(_ context.Context, account *domain.Account) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(account.Email)
	if _, exists := r.accounts[key]; exists {
		return nil, domain.ErrUserExists
	}
	stored := cloneAccount(account)
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	r.accounts[key] = stored
	return cloneAccount(stored), nil
}

func (r *AccountRepository) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.accounts[strings.ToLower(email)]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneAccount(a), nil
}

func (r *AccountRepository) MarkEmailVerified(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[strings.ToLower(email)]
	if !ok {
		return domain.ErrUserNotFound
	}
	a.EmailVerified = true
	return nil
}

func (r *AccountRepository) BindFederatedSubject(_ context.Context, email, subject string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[strings.ToLower(email)]
	if !ok {
		return domain.ErrUserNotFound
	}
	a.FederatedSubject = subject
	return nil
}

func (r *AccountRepository) List(_ context.Context) ([]*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		out = append(out, cloneAccount(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}
