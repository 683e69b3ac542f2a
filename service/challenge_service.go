package service

import (
	"context"
	"log/slog"

	"github.com/songclash/songclash/core"
	"github.com/songclash/songclash/ports"
	"github.com/songclash/songclash/presence"
)

// ChallengeRequest carries the round parameters of a new challenge.
type ChallengeRequest struct {
	TargetUID string
	SongID    string
	Seconds   int
}

// ChallengeService routes challenge-lifecycle messages between identities.
// Each step is an independent relay decision; no challenge object outlives
// its delivery attempt.
type ChallengeService struct {
	directory ports.Directory
	registry  *presence.Registry
	events    ports.EventPublisher
	log       *slog.Logger
}

func NewChallengeService(
	directory ports.Directory,
	registry *presence.Registry,
	events ports.EventPublisher,
	log *slog.Logger,
) *ChallengeService {
	return &ChallengeService{directory: directory, registry: registry, events: events, log: log}
}

// Challenge relays a new challenge from the initiator to every live
// connection of the target. Preconditions in order, first failure wins:
// required fields, friendship, target online. The friendship lookup happens
// before any registry access so a slow directory never holds a registry lock.
func (s *ChallengeService) Challenge(ctx context.Context, from *core.Identity, req ChallengeRequest) error {
	if req.TargetUID == "" || req.SongID == "" {
		return core.ErrMalformedRequest
	}

	edges, err := s.directory.ListFriendships(ctx, from.RowID)
	if err != nil {
		s.log.Error("friendship lookup failed", "uid", from.UID, "err", err)
		return core.ErrNotFriends
	}
	if !hasFriend(edges, req.TargetUID) {
		return core.ErrNotFriends
	}
	if !s.registry.IsOnline(req.TargetUID) {
		return core.ErrTargetOffline
	}

	s.registry.Broadcast(req.TargetUID, core.EventChallenge, core.ChallengePayload{
		UID:     from.UID,
		SongID:  req.SongID,
		Seconds: req.Seconds,
	})

	if err := s.events.PublishChallenge(ctx, from.UID, req.TargetUID, req.SongID); err != nil {
		s.log.Warn("challenge publish failed", "uid", from.UID, "err", err)
	}
	return nil
}

// Decline relays a decline back to the original initiator with a fixed
// human-readable reason. Silently dropped when the initiator went offline.
func (s *ChallengeService) Decline(initiatorUID string) error {
	if initiatorUID == "" {
		return core.ErrMalformedRequest
	}
	s.registry.Broadcast(initiatorUID, core.EventChallengeDeclined, core.ReasonBusy)
	return nil
}

// Start relays a round-start signal to all live connections of the
// counterpart, stamped with the sender's uid. Silently dropped when the
// counterpart is offline.
func (s *ChallengeService) Start(from *core.Identity, counterpartUID string, seconds int) error {
	if counterpartUID == "" {
		return core.ErrMalformedRequest
	}
	s.registry.Broadcast(counterpartUID, core.EventStartPlaying, core.StartPayload{
		UID:     from.UID,
		Seconds: seconds,
	})
	return nil
}

// Update relays a free-form in-round status message to the counterpart. No
// content validation beyond field presence.
func (s *ChallengeService) Update(from *core.Identity, counterpartUID, message string) error {
	if counterpartUID == "" || message == "" {
		return core.ErrMalformedRequest
	}
	s.registry.Broadcast(counterpartUID, core.EventChallengeUpdate, core.UpdatePayload{
		UID:     from.UID,
		Message: message,
	})
	return nil
}

func hasFriend(edges []core.Friendship, uid string) bool {
	for _, e := range edges {
		if e.UID == uid {
			return true
		}
	}
	return false
}
