package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// OrderPlacedEvent is emitted after a checkout commits.
type OrderPlacedEvent struct {
	OrderID    uuid.UUID        `json:"orderId"`
	UserID     uuid.UUID        `json:"userId"`
	TotalPrice float64          `json:"totalPrice"`
	Items      []OrderLineEvent `json:"items"`
	PlacedAt   time.Time        `json:"placedAt"`
}

// OrderLineEvent is one purchased line inside an OrderPlacedEvent.
type OrderLineEvent struct {
	ProductID   uuid.UUID `json:"productId"`
	ProductName string    `json:"productName"`
	UnitPrice   float64   `json:"unitPrice"`
	Quantity    int       `json:"quantity"`
}

// Publisher delivers order events to downstream consumers. Publishing is
// best-effort: a failed publish never rolls back the order.
type Publisher interface {
	PublishOrderPlaced(ctx context.Context, event OrderPlacedEvent) error
	Close() error
}
