package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/songclash/songclash/core"
	"github.com/songclash/songclash/ports"
	"github.com/songclash/songclash/presence"
)

// Credentials is the payload of a login request.
type Credentials struct {
	Username string
	Password string
}

// AuthService validates credentials against the user directory, issues
// session secrets and registers authenticated connections in the presence
// registry.
type AuthService struct {
	directory ports.Directory
	sessions  ports.SessionStore
	registry  *presence.Registry
	events    ports.EventPublisher
	log       *slog.Logger

	sessionTTL time.Duration
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	directory ports.Directory,
	sessions ports.SessionStore,
	registry *presence.Registry,
	events ports.EventPublisher,
	sessionTTL time.Duration,
	log *slog.Logger,
) *AuthService {
	if sessionTTL <= 0 {
		sessionTTL = time.Minute
	}
	return &AuthService{
		directory:  directory,
		sessions:   sessions,
		registry:   registry,
		events:     events,
		log:        log,
		sessionTTL: sessionTTL,
	}
}

// Authenticate runs the login handshake for one connection. On success the
// link is promoted (its accepted-message set is swapped) and registered in
// the presence registry before Authenticate returns, so the caller's success
// response is always emitted after the new handler set is live.
//
// Unknown username and wrong password fail identically with
// core.ErrInvalidCredentials. The connection stays unauthenticated on every
// failure path.
func (s *AuthService) Authenticate(ctx context.Context, link ports.Link, creds Credentials) (*core.Session, error) {
	if creds.Username == "" || creds.Password == "" {
		return nil, core.ErrMalformedRequest
	}

	identity, err := s.directory.LookupCredentials(ctx, creds.Username, creds.Password)
	if err != nil {
		if !errors.Is(err, core.ErrNoSuchUser) {
			s.log.Error("credential lookup failed", "username", creds.Username, "err", err)
		}
		return nil, core.ErrInvalidCredentials
	}

	now := time.Now()
	session := &core.Session{
		UID:       identity.UID,
		Secret:    uuid.New().String(),
		IssuedAt:  now,
		ExpiresAt: now.Add(s.sessionTTL),
	}

	// Persisting the secret is best effort; a store fault must not break a
	// live login.
	if err := s.sessions.Save(ctx, session); err != nil {
		s.log.Warn("session save failed", "uid", identity.UID, "err", err)
	}

	link.Promote(identity, session)
	if s.registry.Register(identity.UID, link) {
		if err := s.events.PublishPresence(ctx, identity.UID, true); err != nil {
			s.log.Warn("presence publish failed", "uid", identity.UID, "err", err)
		}
	}

	// A transport teardown that fired between promotion and registration
	// had nothing to unregister; it is this side's job to notice and take
	// the dead connection back out, or the identity stays online forever.
	if link.Closed() {
		s.Disconnect(ctx, identity.UID, link)
	}

	return session, nil
}

// Disconnect removes a connection from the presence registry. Safe to call
// for links that were never registered.
func (s *AuthService) Disconnect(ctx context.Context, uid string, link ports.Link) {
	if s.registry.Unregister(uid, link) {
		if err := s.events.PublishPresence(ctx, uid, false); err != nil {
			s.log.Warn("presence publish failed", "uid", uid, "err", err)
		}
	}
}
