package ports

import "context"

// SessionPersistence is the durable key/value store behind a console's
// session. Get returns domain.ErrSessionNotFound for a missing key.
type SessionPersistence interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
}
