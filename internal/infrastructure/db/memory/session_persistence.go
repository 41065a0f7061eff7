// Package memory holds process-local implementations of the persistence
// ports, used for development and tests.
package memory

import (
	"context"
	"sync"

	"github.com/ispoms/oms-console/internal/core/domain"
)

// SessionPersistence is a map-backed ports.SessionPersistence.
type SessionPersistence struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewSessionPersistence() *SessionPersistence {
	return &SessionPersistence{data: make(map[string][]byte)}
}

func (p *SessionPersistence) Get(_ context.Context, key string) ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.data[key]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return append([]byte(nil), v...), nil
}

func (p *SessionPersistence) Set(_ context.Context, key string, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.data[key] = append([]byte(nil), value...)
	return nil
}

func (p *SessionPersistence) Delete(_ context.Context, keys ...string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, k := range keys {
		delete(p.data, k)
	}
	return nil
}
