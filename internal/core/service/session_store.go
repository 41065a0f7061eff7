package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/ispoms/oms-console/internal/api/metrics"
	"github.com/ispoms/oms-console/internal/core/domain"
	"github.com/ispoms/oms-console/internal/core/ports"
)

const (
	defaultLoginTimeout = 5 * time.Second

	accessTokenKey = "access_token"
	sessionKey     = "session"
)

var tracer = otel.Tracer("github.com/ispoms/oms-console/internal/core/service")

// SessionStore owns the session of a single console. All reads go through
// Snapshot; the store is the only writer.
type SessionStore struct {
	keyPrefix    string
	verifier     ports.CredentialVerifier
	persistence  ports.SessionPersistence
	loginTimeout time.Duration
	now          func() time.Time
	log          zerolog.Logger

	mu      sync.Mutex
	session domain.Session
	// gen is bumped by Logout so a login that was cancelled mid-flight
	// cannot write its late result.
	gen         uint64
	cancelLogin context.CancelFunc
}

// SessionStoreOption customises a SessionStore.
type SessionStoreOption func(*SessionStore)

// WithLoginTimeout bounds each credential check.
func WithLoginTimeout(d time.Duration) SessionStoreOption {
	return func(s *SessionStore) {
		if d > 0 {
			s.loginTimeout = d
		}
	}
}

// WithClock replaces time.Now, used for token timestamps.
func WithClock(now func() time.Time) SessionStoreOption {
	return func(s *SessionStore) { s.now = now }
}

// NewSessionStore returns an anonymous store whose persisted keys are
// prefixed with keyPrefix.
func NewSessionStore(
	keyPrefix string,
	verifier ports.CredentialVerifier,
	persistence ports.SessionPersistence,
	log zerolog.Logger,
	opts ...SessionStoreOption,
) *SessionStore {
	s := &SessionStore{
		keyPrefix:    keyPrefix,
		verifier:     verifier,
		persistence:  persistence,
		loginTimeout: defaultLoginTimeout,
		now:          time.Now,
		log:          log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns a copy of the current session.
func (s *SessionStore) Snapshot() domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Clone()
}

// ClearError dismisses the last failure message.
func (s *SessionStore) ClearError() {
	s.mu.Lock()
	s.session.Error = ""
	s.mu.Unlock()
}

// Restore hydrates the session from persistence. Missing data leaves the
// store anonymous and corrupt data is purged. A failing backend also leaves
// the store anonymous but keeps the stored copy for the next restore. It
// never fails.
func (s *SessionStore) Restore(ctx context.Context) domain.Session {
	restored, err := s.readPersisted(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case err == nil:
		s.session = restored
		metrics.SessionRestoresTotal.WithLabelValues("restored").Inc()
	case errors.Is(err, domain.ErrSessionNotFound):
		s.session = domain.Session{}
		metrics.SessionRestoresTotal.WithLabelValues("anonymous").Inc()
	case errors.Is(err, domain.ErrSessionCorrupt):
		s.log.Warn().Err(err).Str("console", s.keyPrefix).Msg("discarding persisted session")
		s.purge(ctx)
		s.session = domain.Session{}
		metrics.SessionRestoresTotal.WithLabelValues("corrupt").Inc()
	default:
		s.log.Warn().Err(err).Str("console", s.keyPrefix).Msg("session persistence unavailable")
		s.session = domain.Session{}
		metrics.SessionRestoresTotal.WithLabelValues("unavailable").Inc()
	}
	return s.session.Clone()
}

func (s *SessionStore) readPersisted(ctx context.Context) (domain.Session, error) {
	token, err := s.persistence.Get(ctx, s.key(accessTokenKey))
	if err != nil {
		return domain.Session{}, err
	}
	raw, err := s.persistence.Get(ctx, s.key(sessionKey))
	if err != nil {
		return domain.Session{}, err
	}

	var sess domain.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return domain.Session{}, fmt.Errorf("%w: %v", domain.ErrSessionCorrupt, err)
	}
	if sess.User == nil || len(token) == 0 {
		return domain.Session{}, fmt.Errorf("%w: missing user or token", domain.ErrSessionCorrupt)
	}

	sess.AccessToken = string(token)
	sess.IsAuthenticated = true
	return sess, nil
}

// Login runs a credential check. Authentication failures are recorded in
// the returned session's Error; the only error returned is
// domain.ErrLoginInProgress when another login on this console is pending.
func (s *SessionStore) Login(ctx context.Context, creds domain.Credentials) (domain.Session, error) {
	s.mu.Lock()
	if s.session.Loading {
		s.mu.Unlock()
		return domain.Session{}, domain.ErrLoginInProgress
	}
	s.session = domain.Session{Loading: true}
	gen := s.gen
	loginCtx, cancel := context.WithTimeout(ctx, s.loginTimeout)
	s.cancelLogin = cancel
	s.mu.Unlock()
	defer cancel()

	loginCtx, span := tracer.Start(loginCtx, "SessionStore.Login")
	span.SetAttributes(attribute.String("login.method", creds.Method()))
	defer span.End()

	start := time.Now()
	grant, err := s.verifier.Verify(loginCtx, creds)
	metrics.LoginDuration.WithLabelValues(creds.Method()).Observe(time.Since(start).Seconds())

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen != gen {
		span.SetStatus(codes.Error, "cancelled by logout")
		return s.session.Clone(), nil
	}
	s.cancelLogin = nil

	if err != nil {
		msg := domain.GenericLoginFailure
		var authErr *domain.AuthenticationError
		switch {
		case errors.As(err, &authErr):
			msg = authErr.Error()
		case errors.Is(err, context.DeadlineExceeded):
			msg = domain.LoginTimedOutMessage
		}
		s.session = domain.Session{Error: msg}
		s.purge(ctx)
		span.RecordError(err)
		span.SetStatus(codes.Error, msg)
		metrics.LoginsTotal.WithLabelValues(creds.Method(), "failure").Inc()
		s.log.Info().Err(err).Str("console", s.keyPrefix).Str("method", creds.Method()).Msg("login failed")
		return s.session.Clone(), nil
	}

	s.session = domain.Authenticated(grant, s.now().Unix())
	s.persist(ctx)
	metrics.LoginsTotal.WithLabelValues(creds.Method(), "success").Inc()
	s.log.Info().
		Str("console", s.keyPrefix).
		Str("method", creds.Method()).
		Str("user_id", s.session.User.ID).
		Msg("login succeeded")

	return s.session.Clone(), nil
}

// Logout resets the session and removes the persisted copy. A pending login
// is cancelled and its result discarded. Calling it repeatedly is harmless.
func (s *SessionStore) Logout(ctx context.Context) domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	if s.cancelLogin != nil {
		s.cancelLogin()
		s.cancelLogin = nil
	}
	s.session = domain.Session{}
	s.purge(ctx)
	metrics.LogoutsTotal.Inc()
	return s.session.Clone()
}

// ExpireIfStale logs out an authenticated session whose access token has
// expired, leaving SessionExpiredMessage as the error. It reports whether
// it did so.
func (s *SessionStore) ExpireIfStale(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.session.IsAuthenticated || s.session.Loading {
		return false
	}
	if !domain.IsExpired(s.session, s.now().Unix()) {
		return false
	}

	s.gen++
	s.session = domain.Session{Error: domain.SessionExpiredMessage}
	s.purge(ctx)
	metrics.SessionExpiriesTotal.Inc()
	s.log.Info().Str("console", s.keyPrefix).Msg("session expired")
	return true
}

// persist and purge are best effort; callers hold mu.
func (s *SessionStore) persist(ctx context.Context) {
	raw, err := json.Marshal(s.session)
	if err != nil {
		s.log.Error().Err(err).Str("console", s.keyPrefix).Msg("encode session")
		return
	}
	if err := s.persistence.Set(ctx, s.key(accessTokenKey), []byte(s.session.AccessToken)); err != nil {
		s.log.Error().Err(err).Str("console", s.keyPrefix).Msg("persist access token")
		return
	}
	if err := s.persistence.Set(ctx, s.key(sessionKey), raw); err != nil {
		s.log.Error().Err(err).Str("console", s.keyPrefix).Msg("persist session")
	}
}

func (s *SessionStore) purge(ctx context.Context) {
	if err := s.persistence.Delete(ctx, s.key(accessTokenKey), s.key(sessionKey)); err != nil {
		s.log.Error().Err(err).Str("console", s.keyPrefix).Msg("delete persisted session")
	}
}

func (s *SessionStore) key(name string) string {
	return s.keyPrefix + ":" + name
}
