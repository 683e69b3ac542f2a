package ports

import (
	"context"
	"time"

	"github.com/songclash/songclash/core"
)

// SessionStore persists issued session secrets for later secret-based
// reconnection. Losing the store never affects live connections.
type SessionStore interface {
	Save(ctx context.Context, session *core.Session) error

	// PurgeExpired removes sessions whose expiry precedes now and reports
	// how many were removed.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
