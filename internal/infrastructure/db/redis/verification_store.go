package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ispoms/oms-console/internal/core/domain"
)

// VerificationStore keeps email verification tokens with a TTL.
// Key format: verify:<token>
type VerificationStore struct {
	client *redis.Client
}

func NewVerificationStore(client *redis.Client) *VerificationStore {
	return &VerificationStore{client: client}
}

func (s *VerificationStore) Save(ctx context.Context, token, email string, ttl time.Duration) error {
	return s.client.Set(ctx, verificationKey(token), email, ttl).Err()
}

// Consume reads and deletes the token atomically.
func (s *VerificationStore) Consume(ctx context.Context, token string) (string, error) {
	email, err := s.client.GetDel(ctx, verificationKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrInvalidVerificationToken
	}
	if err != nil {
		return "", fmt.Errorf("verification consume: %w", err)
	}
	return email, nil
}

func verificationKey(token string) string {
	return "verify:" + token
}
