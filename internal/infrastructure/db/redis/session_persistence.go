package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ispoms/oms-console/internal/core/domain"
)

const defaultSessionRetention = 7 * 24 * time.Hour

// SessionPersistence stores console sessions in Redis. Every write refreshes
// the key's retention so abandoned consoles age out.
type SessionPersistence struct {
	client    *redis.Client
	retention time.Duration
}

// NewSessionPersistence wraps client. retention <= 0 selects the default.
func NewSessionPersistence(client *redis.Client, retention time.Duration) *SessionPersistence {
	if retention <= 0 {
		retention = defaultSessionRetention
	}
	return &SessionPersistence{client: client, retention: retention}
}

func (p *SessionPersistence) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := p.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session get %s: %w", key, err)
	}
	return v, nil
}

func (p *SessionPersistence) Set(ctx context.Context, key string, value []byte) error {
	if err := p.client.Set(ctx, key, value, p.retention).Err(); err != nil {
		return fmt.Errorf("session set %s: %w", key, err)
	}
	return nil
}

func (p *SessionPersistence) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := p.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("session delete: %w", err)
	}
	return nil
}
