package memory

import (
	"context"
	"sync"
	"time"

	"github.com/ispoms/oms-console/internal/core/domain"
)

type pendingVerification struct {
	email     string
	expiresAt time.Time
}

// VerificationStore holds verification tokens until they are consumed or expire.
type VerificationStore struct {
	mu     sync.Mutex
	tokens map[string]pendingVerification
	now    func() time.Time
}

func NewVerificationStore() *VerificationStore {
	return &VerificationStore{tokens: make(map[string]pendingVerification), now: time.Now}
}

// Save stores token and drops every token that has already expired.
func (s *VerificationStore) Save(_ context.Context, token, email string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for t, p := range s.tokens {
		if !now.Before(p.expiresAt) {
			delete(s.tokens, t)
		}
	}
	s.tokens[token] = pendingVerification{email: email, expiresAt: now.Add(ttl)}
	return nil
}

// Len reports how many tokens are held.
func (s *VerificationStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokens)
}

func (s *VerificationStore) Consume(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.tokens[token]
	if !ok {
		return "", domain.ErrInvalidVerificationToken
	}
	delete(s.tokens, token)
	if !s.now().Before(p.expiresAt) {
		return "", domain.ErrInvalidVerificationToken
	}
	return p.email, nil
}
