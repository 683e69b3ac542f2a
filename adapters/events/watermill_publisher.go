package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/songclash/songclash/ports"
)

// PresenceEvent marks an identity going online or offline.
type PresenceEvent struct {
	UID    string `json:"uid"`
	Online bool   `json:"online"`
}

// ChallengeEvent marks a challenge successfully relayed to its target.
type ChallengeEvent struct {
	FromUID string `json:"from_uid"`
	ToUID   string `json:"to_uid"`
	SongID  string `json:"song_id"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill.
type WatermillPublisher struct {
	publisher      message.Publisher
	presenceTopic  string
	challengeTopic string
}

// NewWatermillPublisher creates a new Watermill publisher.
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{
		publisher:      publisher,
		presenceTopic:  "songclash.presence",
		challengeTopic: "songclash.challenge",
	}
}

// PublishPresence publishes an online/offline transition.
func (p *WatermillPublisher) PublishPresence(ctx context.Context, uid string, online bool) error {
	return p.publish(p.presenceTopic, PresenceEvent{UID: uid, Online: online})
}

// PublishChallenge publishes a relayed challenge.
func (p *WatermillPublisher) PublishChallenge(ctx context.Context, fromUID, toUID, songID string) error {
	return p.publish(p.challengeTopic, ChallengeEvent{FromUID: fromUID, ToUID: toUID, SongID: songID})
}

func (p *WatermillPublisher) publish(topic string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// NopPublisher discards all events. Used where no event bus is wired.
type NopPublisher struct{}

func (NopPublisher) PublishPresence(ctx context.Context, uid string, online bool) error {
	return nil
}

func (NopPublisher) PublishChallenge(ctx context.Context, fromUID, toUID, songID string) error {
	return nil
}
