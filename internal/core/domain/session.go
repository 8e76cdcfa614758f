package domain

import "time"

// Session is the server-side state bound to a session cookie.
//
// A Session is either anonymous (the zero value) or fully authenticated with
// every identity field copied from one User. The identity fields are a
// snapshot: a later role change is not reflected until the next login.
type Session struct {
	Authenticated bool      `json:"authenticated"`
	Username      string    `json:"username,omitempty"`
	Email         string    `json:"email,omitempty"`
	UserType      UserType  `json:"user_type,omitempty"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// Authenticate fills the session from u and sets the expiry ttl after now.
func (s *Session) Authenticate(u *User, now time.Time, ttl time.Duration) {
	*s = Session{
		Authenticated: true,
		Username:      u.Username,
		Email:         u.Email,
		UserType:      u.UserType,
		ExpiresAt:     now.Add(ttl),
	}
}

// Clear drops every trust claim.
func (s *Session) Clear() {
	*s = Session{}
}

// IsAdmin reports whether the session carries the admin role.
func (s *Session) IsAdmin() bool {
	return s.Authenticated && s.UserType.IsAdmin()
}

// IsExpiredAt reports whether the session is past its expiry at t.
// Anonymous sessions never expire.
func (s *Session) IsExpiredAt(t time.Time) bool {
	return s.Authenticated && !s.ExpiresAt.IsZero() && t.After(s.ExpiresAt)
}
