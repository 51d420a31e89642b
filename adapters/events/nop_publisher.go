package events

import (
	"context"

	"github.com/creda-technologies/hitch/ports"
)

// NopPublisher discards events. Used when no message broker is configured.
type NopPublisher struct{}

// NewNopPublisher creates a publisher that drops everything
func NewNopPublisher() ports.EventPublisher {
	return NopPublisher{}
}

func (NopPublisher) PublishSessionIssued(ctx context.Context, subject, clientDomain, tokenID string) error {
	return nil
}
