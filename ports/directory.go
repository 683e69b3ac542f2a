package ports

import (
	"context"

	"github.com/songclash/songclash/core"
)

// Directory is the user-directory collaborator holding credentials and the
// friendship graph.
type Directory interface {
	// LookupCredentials resolves a username/password pair to an identity.
	// Returns core.ErrNoSuchUser when no row matches; callers must not
	// distinguish that from a wrong password in anything client-visible.
	LookupCredentials(ctx context.Context, username, password string) (*core.Identity, error)

	// ListFriendships returns the friendship edges touching the given
	// directory row, regardless of which side of the stored pair it is on.
	ListFriendships(ctx context.Context, rowID int64) ([]core.Friendship, error)
}
