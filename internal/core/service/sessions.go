package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ispoms/oms-console/internal/core/ports"
)

const (
	consoleKeyPrefix = "console:"

	defaultSweepInterval = time.Minute
)

type entry struct {
	store    *SessionStore
	lastSeen time.Time
	restored sync.Once
}

// Sessions owns one SessionStore per console id. It is built once at
// startup and handed to the HTTP layer.
type Sessions struct {
	verifier    ports.CredentialVerifier
	persistence ports.SessionPersistence
	opts        []SessionStoreOption
	now         func() time.Time
	log         zerolog.Logger

	mu     sync.Mutex
	stores map[string]*entry
}

// NewSessions returns an empty registry. opts apply to every store it creates.
func NewSessions(
	verifier ports.CredentialVerifier,
	persistence ports.SessionPersistence,
	log zerolog.Logger,
	opts ...SessionStoreOption,
) *Sessions {
	return &Sessions{
		verifier:    verifier,
		persistence: persistence,
		opts:        opts,
		now:         time.Now,
		log:         log,
		stores:      make(map[string]*entry),
	}
}

// Get returns the store for consoleID, creating and restoring it on first use.
// Restore runs outside the registry lock; concurrent callers for the same
// console wait for it, other consoles do not.
func (r *Sessions) Get(ctx context.Context, consoleID string) *SessionStore {
	r.mu.Lock()
	e, ok := r.stores[consoleID]
	if !ok {
		st := NewSessionStore(consoleKeyPrefix+consoleID, r.verifier, r.persistence, r.log, r.opts...)
		e = &entry{store: st}
		r.stores[consoleID] = e
	}
	e.lastSeen = r.now()
	r.mu.Unlock()

	e.restored.Do(func() { e.store.Restore(ctx) })
	return e.store
}

// Len reports how many consoles are held in memory.
func (r *Sessions) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}

// Evict drops consoles not seen for idle. Persisted sessions are kept, so an
// evicted console is restored on its next request. Consoles with a pending
// login stay. It returns the number of consoles dropped.
func (r *Sessions) Evict(idle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-idle)
	n := 0
	for id, e := range r.stores {
		if e.lastSeen.After(cutoff) || e.store.Snapshot().Loading {
			continue
		}
		delete(r.stores, id)
		n++
	}
	return n
}

// StartSweeper evicts idle consoles every interval until ctx is cancelled.
func (r *Sessions) StartSweeper(ctx context.Context, interval, idle time.Duration) {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := r.Evict(idle); n > 0 {
					r.log.Debug().Int("evicted", n).Int("remaining", r.Len()).Msg("idle consoles evicted")
				}
			}
		}
	}()
}
