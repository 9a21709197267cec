package events

import "context"

// NoopPublisher discards events. Used when no broker is configured.
type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

func (NoopPublisher) PublishOrderPlaced(context.Context, OrderPlacedEvent) error {
	return nil
}

func (NoopPublisher) Close() error {
	return nil
}
