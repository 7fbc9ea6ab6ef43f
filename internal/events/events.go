// Package events publishes order lifecycle events to a message broker.
package events

import "context"

const TopicOrders = "orders"

// Event types carried in OrderEvent.Type.
const (
	OrderPlaced        = "order.placed"
	OrderStatusChanged = "order.status_changed"
	OrderDeleted       = "order.deleted"
)

type OrderEvent struct {
	Type       string `json:"type"`
	OrderID    string `json:"order_id"`
	UserID     string `json:"user_id,omitempty"`
	Status     string `json:"status,omitempty"`
	TotalPrice string `json:"total_price,omitempty"`
}

// Publisher defines an interface for publishing events to a message broker.
type Publisher interface {
	PublishEvent(ctx context.Context, topic string, key string, event any) error
}
