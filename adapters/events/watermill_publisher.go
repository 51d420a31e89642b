package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/creda-technologies/hitch/ports"
)

// SessionIssuedEvent notifies other services that an account completed
// authentication and received a session token.
type SessionIssuedEvent struct {
	Subject      string `json:"subject"`
	ClientDomain string `json:"client_domain,omitempty"`
	TokenID      string `json:"token_id"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill
type WatermillPublisher struct {
	publisher message.Publisher
	topic     string
}

// NewWatermillPublisher creates a new Watermill publisher
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{
		publisher: publisher,
		topic:     "hitch.session.issued",
	}
}

// PublishSessionIssued publishes a session issuance event
func (p *WatermillPublisher) PublishSessionIssued(ctx context.Context, subject, clientDomain, tokenID string) error {
	event := SessionIssuedEvent{
		Subject:      subject,
		ClientDomain: clientDomain,
		TokenID:      tokenID,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.New().String(), payload)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}
