package events

import "context"

type noopPublisher struct{}

// NewNoopPublisher returns a publisher that drops every event. Used when
// no broker is configured.
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) PublishEvent(ctx context.Context, topic string, key string, event any) error {
	return nil
}
