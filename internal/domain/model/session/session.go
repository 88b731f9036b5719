package session

import "time"

// DefaultTTL is how long an authenticated session stays valid
const DefaultTTL = 24 * time.Hour

// Session is the authentication-validity window of a wizard run.
// The zero value is an unauthenticated session.
type Session struct {
	authenticated bool
	expiresAt     time.Time
}

// NewAuthenticated creates a session that is valid from now until now+ttl
func NewAuthenticated(now time.Time, ttl time.Duration) Session {
	return Session{
		authenticated: true,
		expiresAt:     now.UTC().Add(ttl),
	}
}

// Reconstruct rebuilds a Session from persisted data
func Reconstruct(authenticated bool, expiresAt time.Time) Session {
	return Session{authenticated: authenticated, expiresAt: expiresAt}
}

// IsValid reports whether the session is authenticated and not yet expired at now
func (s Session) IsValid(now time.Time) bool {
	return s.authenticated && now.Before(s.expiresAt)
}

// IsExpired reports an authenticated session whose window has passed
func (s Session) IsExpired(now time.Time) bool {
	return s.authenticated && !now.Before(s.expiresAt)
}

// RemainingTime returns the time left before expiry, or zero
func (s Session) RemainingTime(now time.Time) time.Duration {
	if !s.IsValid(now) {
		return 0
	}
	return s.expiresAt.Sub(now)
}

// Getters
func (s Session) Authenticated() bool  { return s.authenticated }
func (s Session) ExpiresAt() time.Time { return s.expiresAt }

// ExpiresAtMillis returns the expiry as Unix milliseconds, 0 when unset
func (s Session) ExpiresAtMillis() int64 {
	if s.expiresAt.IsZero() {
		return 0
	}
	return s.expiresAt.UnixMilli()
}

// FromMillis converts persisted Unix milliseconds back into a time; 0 means unset
func FromMillis(ms int64) time.Time {
	if ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
