package service

import (
	"context"
	"errors"
	"testing"

	"github.com/songclash/songclash/core"
	"github.com/songclash/songclash/presence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type challengeFixture struct {
	svc      *ChallengeService
	dir      *fakeDirectory
	events   *fakeEvents
	registry *presence.Registry

	alice *core.Identity
	bob   *core.Identity
	carol *core.Identity
}

func newChallengeFixture() *challengeFixture {
	dir := newFakeDirectory()
	events := &fakeEvents{}
	registry := presence.NewRegistry()

	f := &challengeFixture{
		svc:      NewChallengeService(dir, registry, events, discardLogger()),
		dir:      dir,
		events:   events,
		registry: registry,
		alice:    dir.addUser("alice", "pw", "uid-alice", 1),
		bob:      dir.addUser("bob", "pw", "uid-bob", 2),
		carol:    dir.addUser("carol", "pw", "uid-carol", 3),
	}
	dir.befriend(f.alice, f.bob)
	return f
}

func TestChallengeMissingFields(t *testing.T) {
	f := newChallengeFixture()

	err := f.svc.Challenge(context.Background(), f.alice, ChallengeRequest{SongID: "s1"})
	assert.ErrorIs(t, err, core.ErrMalformedRequest)

	err = f.svc.Challenge(context.Background(), f.alice, ChallengeRequest{TargetUID: "uid-bob"})
	assert.ErrorIs(t, err, core.ErrMalformedRequest)
}

func TestChallengeStrangerIsRefused(t *testing.T) {
	f := newChallengeFixture()
	carolLink := &fakeLink{}
	f.registry.Register("uid-carol", carolLink)

	err := f.svc.Challenge(context.Background(), f.alice, ChallengeRequest{TargetUID: "uid-carol", SongID: "s1"})
	assert.ErrorIs(t, err, core.ErrNotFriends)
	assert.Equal(t, core.ReasonNotFriends, core.ReasonFor(err))
	assert.Empty(t, carolLink.received(), "no message may reach the stranger")
}

func TestChallengeOfflineFriendIsRefused(t *testing.T) {
	f := newChallengeFixture()

	err := f.svc.Challenge(context.Background(), f.alice, ChallengeRequest{TargetUID: "uid-bob", SongID: "s1"})
	assert.ErrorIs(t, err, core.ErrTargetOffline)
	assert.Equal(t, core.ReasonOffline, core.ReasonFor(err))
}

func TestChallengeFansOutToEveryTargetDevice(t *testing.T) {
	f := newChallengeFixture()
	bob1 := &fakeLink{}
	bob2 := &fakeLink{}
	carolLink := &fakeLink{}
	f.registry.Register("uid-bob", bob1)
	f.registry.Register("uid-bob", bob2)
	f.registry.Register("uid-carol", carolLink)

	err := f.svc.Challenge(context.Background(), f.alice, ChallengeRequest{TargetUID: "uid-bob", SongID: "s1", Seconds: 30})
	require.NoError(t, err)

	want := core.ChallengePayload{UID: "uid-alice", SongID: "s1", Seconds: 30}
	for _, l := range []*fakeLink{bob1, bob2} {
		got := l.received()
		require.Len(t, got, 1)
		assert.Equal(t, core.EventChallenge, got[0].Event)
		assert.Equal(t, want, got[0].Payload, "relay must be stamped with the initiator's identity")
	}
	assert.Empty(t, carolLink.received(), "no event may reach other online identities")
	assert.Equal(t, []string{"uid-alice>uid-bob"}, f.events.challenges)
}

func TestChallengeAfterAllDevicesDisconnect(t *testing.T) {
	f := newChallengeFixture()
	bob1 := &fakeLink{}
	bob2 := &fakeLink{}
	f.registry.Register("uid-bob", bob1)
	f.registry.Register("uid-bob", bob2)
	f.registry.Unregister("uid-bob", bob1)
	f.registry.Unregister("uid-bob", bob2)

	err := f.svc.Challenge(context.Background(), f.alice, ChallengeRequest{TargetUID: "uid-bob", SongID: "s1"})
	assert.ErrorIs(t, err, core.ErrTargetOffline)
}

func TestChallengeDirectoryFaultReadsAsNotFriends(t *testing.T) {
	f := newChallengeFixture()
	f.registry.Register("uid-bob", &fakeLink{})
	f.dir.listErr = errors.New("directory unreachable")

	err := f.svc.Challenge(context.Background(), f.alice, ChallengeRequest{TargetUID: "uid-bob", SongID: "s1"})
	assert.ErrorIs(t, err, core.ErrNotFriends)
}

func TestDeclineRelaysFixedReasonToInitiator(t *testing.T) {
	f := newChallengeFixture()
	alice1 := &fakeLink{}
	alice2 := &fakeLink{}
	f.registry.Register("uid-alice", alice1)
	f.registry.Register("uid-alice", alice2)

	require.NoError(t, f.svc.Decline("uid-alice"))

	for _, l := range []*fakeLink{alice1, alice2} {
		got := l.received()
		require.Len(t, got, 1)
		assert.Equal(t, core.EventChallengeDeclined, got[0].Event)
		assert.Equal(t, core.ReasonBusy, got[0].Payload)
	}
}

func TestDeclineOfflineInitiatorIsSilentlyDropped(t *testing.T) {
	f := newChallengeFixture()
	assert.NoError(t, f.svc.Decline("uid-alice"))
	assert.ErrorIs(t, f.svc.Decline(""), core.ErrMalformedRequest)
}

func TestStartAndUpdateAreStampedWithSender(t *testing.T) {
	f := newChallengeFixture()
	bobLink := &fakeLink{}
	f.registry.Register("uid-bob", bobLink)

	require.NoError(t, f.svc.Start(f.alice, "uid-bob", 12))
	require.NoError(t, f.svc.Update(f.alice, "uid-bob", "got it!"))

	got := bobLink.received()
	require.Len(t, got, 2)
	assert.Equal(t, core.EventStartPlaying, got[0].Event)
	assert.Equal(t, core.StartPayload{UID: "uid-alice", Seconds: 12}, got[0].Payload)
	assert.Equal(t, core.EventChallengeUpdate, got[1].Event)
	assert.Equal(t, core.UpdatePayload{UID: "uid-alice", Message: "got it!"}, got[1].Payload)
}

func TestStartAndUpdateFieldPresence(t *testing.T) {
	f := newChallengeFixture()
	assert.ErrorIs(t, f.svc.Start(f.alice, "", 5), core.ErrMalformedRequest)
	assert.ErrorIs(t, f.svc.Update(f.alice, "uid-bob", ""), core.ErrMalformedRequest)
	assert.ErrorIs(t, f.svc.Update(f.alice, "", "hi"), core.ErrMalformedRequest)

	// Offline counterpart: relayed into the void without error.
	assert.NoError(t, f.svc.Start(f.alice, "uid-bob", 5))
	assert.NoError(t, f.svc.Update(f.alice, "uid-bob", "hi"))
}
