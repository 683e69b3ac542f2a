package ports

import "github.com/songclash/songclash/core"

// Link is one live client connection as seen by the services and the
// presence registry.
type Link interface {
	// Send queues an event for delivery to the client. It must not block;
	// a link with a full outbound queue drops the event.
	Send(event string, payload any) error

	// Promote flips the connection to the authenticated state, atomically
	// swapping its accepted-message set. Called exactly once per
	// connection, before the login response is emitted.
	Promote(identity *core.Identity, session *core.Session)

	// Closed reports whether the connection's teardown has already run.
	// Registration must consult this after the fact: a teardown that
	// fires mid-login finds nothing to unregister, so the registering
	// side owns the cleanup of that window.
	Closed() bool
}
