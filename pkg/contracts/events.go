package contracts

import "time"

// Event is the envelope for everything the store publishes.
type Event struct {
	EventID   string         `json:"event_id"`
	OrderID   int64          `json:"order_id"`
	UserID    int64          `json:"user_id"`
	CreatedAt time.Time      `json:"created_at"`
	Type      string         `json:"type"`
	Payload   map[string]any `json:"payload"`
}

const (
	TopicOrders = "shop.orders"

	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)
