package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/songclash/songclash/core"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type sentEvent struct {
	Event   string
	Payload any
}

type fakeLink struct {
	mu       sync.Mutex
	events   []sentEvent
	identity *core.Identity
	session  *core.Session
	promoted bool
	closed   bool

	// promoteHook, when set, runs after Promote completes. Used to land a
	// concurrent teardown in the window before registration.
	promoteHook func()
}

func (l *fakeLink) Send(event string, payload any) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, sentEvent{Event: event, Payload: payload})
	return nil
}

func (l *fakeLink) Promote(identity *core.Identity, session *core.Session) {
	l.mu.Lock()
	l.promoted = true
	l.identity = identity
	l.session = session
	hook := l.promoteHook
	l.mu.Unlock()
	if hook != nil {
		hook()
	}
}

func (l *fakeLink) Closed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

func (l *fakeLink) markClosed() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
}

func (l *fakeLink) received() []sentEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]sentEvent(nil), l.events...)
}

type fakeDirectory struct {
	users     map[string]*core.Identity // keyed username + "\x00" + password
	friends   map[int64][]core.Friendship
	lookupErr error
	listErr   error
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		users:   make(map[string]*core.Identity),
		friends: make(map[int64][]core.Friendship),
	}
}

func (d *fakeDirectory) addUser(username, password, uid string, rowID int64) *core.Identity {
	id := &core.Identity{UID: uid, Username: username, RowID: rowID}
	d.users[username+"\x00"+password] = id
	return id
}

func (d *fakeDirectory) befriend(a, b *core.Identity) {
	d.friends[a.RowID] = append(d.friends[a.RowID], core.Friendship{UID: b.UID, Username: b.Username})
	d.friends[b.RowID] = append(d.friends[b.RowID], core.Friendship{UID: a.UID, Username: a.Username})
}

func (d *fakeDirectory) LookupCredentials(ctx context.Context, username, password string) (*core.Identity, error) {
	if d.lookupErr != nil {
		return nil, d.lookupErr
	}
	id, ok := d.users[username+"\x00"+password]
	if !ok {
		return nil, core.ErrNoSuchUser
	}
	return id, nil
}

func (d *fakeDirectory) ListFriendships(ctx context.Context, rowID int64) ([]core.Friendship, error) {
	if d.listErr != nil {
		return nil, d.listErr
	}
	return d.friends[rowID], nil
}

type fakeSessions struct {
	mu      sync.Mutex
	saved   []*core.Session
	saveErr error
}

func (s *fakeSessions) Save(ctx context.Context, session *core.Session) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, session)
	return nil
}

func (s *fakeSessions) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

type presenceEvent struct {
	UID    string
	Online bool
}

type fakeEvents struct {
	mu         sync.Mutex
	presence   []presenceEvent
	challenges []string // fromUID -> toUID pairs, "from>to"
}

func (e *fakeEvents) PublishPresence(ctx context.Context, uid string, online bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.presence = append(e.presence, presenceEvent{UID: uid, Online: online})
	return nil
}

func (e *fakeEvents) PublishChallenge(ctx context.Context, fromUID, toUID, songID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.challenges = append(e.challenges, fromUID+">"+toUID)
	return nil
}
