package ports

import "context"

// EventPublisher publishes events to notify other instances
type EventPublisher interface {
	PublishSessionIssued(ctx context.Context, subject, clientDomain, tokenID string) error
}
