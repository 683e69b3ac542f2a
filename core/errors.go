package core

import "errors"

var (
	ErrMalformedRequest   = errors.New("missing required fields")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFriends         = errors.New("target is not a friend")
	ErrTargetOffline      = errors.New("target has no live connection")
	ErrUploadsDisabled    = errors.New("uploads are disabled")
	ErrNoSuchUser         = errors.New("no matching user")
)

// Client-visible reason strings. Unknown-user and wrong-password failures
// share one string so login responses cannot be used to enumerate accounts.
const (
	ReasonMissingData     = "Missing data"
	ReasonBadCredentials  = "Wrong username/password"
	ReasonNotFriends      = "This user is not your friend."
	ReasonOffline         = "User is offline"
	ReasonBusy            = "User is busy"
	ReasonUploadsDisabled = "Uploads are disabled"
)

// ReasonFor maps a protocol error to the string reported to the client.
func ReasonFor(err error) string {
	switch {
	case errors.Is(err, ErrMalformedRequest):
		return ReasonMissingData
	case errors.Is(err, ErrInvalidCredentials):
		return ReasonBadCredentials
	case errors.Is(err, ErrNotFriends):
		return ReasonNotFriends
	case errors.Is(err, ErrTargetOffline):
		return ReasonOffline
	case errors.Is(err, ErrUploadsDisabled):
		return ReasonUploadsDisabled
	default:
		return "Request failed"
	}
}
