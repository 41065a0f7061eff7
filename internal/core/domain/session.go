package domain

// LoginGrant is what a successful credential check yields.
type LoginGrant struct {
	User         *User
	AccessToken  string
	RefreshToken string
	// ExpiresIn is the access token time-to-live in seconds.
	ExpiresIn int64
}

// Session is the console-held record of who is logged in.
//
// Zero values mean absent: an empty Error, empty tokens and zero timestamps.
// IsAuthenticated is true iff User is set and the last credential check
// succeeded. TokenExpiresAt == TokenIssuedAt + ExpiresIn whenever set.
type Session struct {
	IsAuthenticated bool   `json:"is_authenticated"`
	User            *User  `json:"user,omitempty"`
	Loading         bool   `json:"-"`
	Error           string `json:"-"`
	AccessToken     string `json:"access_token,omitempty"`
	RefreshToken    string `json:"refresh_token,omitempty"`
	ExpiresIn       int64  `json:"expires_in,omitempty"`
	TokenIssuedAt   int64  `json:"token_issued_at,omitempty"`
	TokenExpiresAt  int64  `json:"token_expires_at,omitempty"`
}

// Clone returns a copy that shares nothing with s.
func (s Session) Clone() Session {
	s.User = s.User.Clone()
	return s
}

// Authenticated builds the session recorded after a successful login at
// issuedAt (seconds since epoch).
func Authenticated(g *LoginGrant, issuedAt int64) Session {
	return Session{
		IsAuthenticated: true,
		User:            g.User.Clone(),
		AccessToken:     g.AccessToken,
		RefreshToken:    g.RefreshToken,
		ExpiresIn:       g.ExpiresIn,
		TokenIssuedAt:   issuedAt,
		TokenExpiresAt:  issuedAt + g.ExpiresIn,
	}
}

// IsExpired reports whether the access token is past its expiry. A session
// without an expiry is treated as expired.
func IsExpired(s Session, now int64) bool {
	if s.TokenExpiresAt == 0 {
		return true
	}
	return now >= s.TokenExpiresAt
}

// TimeUntilExpiry returns the seconds left before expiry, never negative.
func TimeUntilExpiry(s Session, now int64) int64 {
	if s.TokenExpiresAt == 0 {
		return 0
	}
	return max(0, s.TokenExpiresAt-now)
}
