package domain

import "time"

// Session represents one authenticated login instance bound to a token.
//
// A session is usable only while Active is true and the expiry has not
// passed. Logout flips Active and stamps LogoutAt; expiry is lazy, checked
// at validation time. Inactive is terminal: a new login always creates a
// new session row, and rows are never deleted so they double as an audit
// trail.
type Session struct {
	ID             string
	UserID         string
	Token          string
	IPAddress      string
	UserAgent      string
	Active         bool
	LoginAt        time.Time
	LastActivityAt time.Time
	ExpiresAt      time.Time
	LogoutAt       *time.Time
}

// UsableAt reports whether the session authenticates requests at the
// given instant.
func (s *Session) UsableAt(now time.Time) bool {
	return s.Active && now.Before(s.ExpiresAt)
}

// DefaultSessionTTL is the session lifetime applied at login.
const DefaultSessionTTL = 24 * time.Hour
