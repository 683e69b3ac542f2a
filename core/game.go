package core

import "time"

// Status is the authentication state of a single connection.
type Status int

const (
	StatusUnauthenticated Status = iota
	StatusAuthenticated
)

// Identity is the stable user record resolved from the user directory at
// login. Immutable for the lifetime of the session it belongs to.
type Identity struct {
	UID      string // opaque stable user id
	Username string // display name
	RowID    int64  // directory row reference, used for friendship lookups
}

// Session binds an identity to one opaque bearer secret. A connection holds
// at most one session; one identity may hold many sessions at once (one per
// device), each with its own secret.
type Session struct {
	UID       string
	Secret    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session secret is no longer valid for
// secret-based reuse. An expired session does not close its live connection.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Friendship is one edge from the user directory's friend graph.
type Friendship struct {
	UID      string
	Username string
}

// FriendEntry is one row of a friends-list response. The Online flag is
// derived from the presence registry at query time and never cached.
type FriendEntry struct {
	Username string `json:"username"`
	Online   bool   `json:"online"`
}
