package ports

import "context"

// EventPublisher publishes presence and challenge lifecycle events for
// observers outside the connection path. Publishing is best effort; a failed
// publish never fails the operation that triggered it.
type EventPublisher interface {
	PublishPresence(ctx context.Context, uid string, online bool) error
	PublishChallenge(ctx context.Context, fromUID, toUID, songID string) error
}
