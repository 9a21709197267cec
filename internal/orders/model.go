package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when an order cannot be located for the user.
var ErrNotFound = errors.New("order not found")

// ErrEmptyCart is returned when checkout is attempted with no cart lines.
var ErrEmptyCart = errors.New("cart is empty")

// OrderItem is an immutable snapshot of a cart line at checkout time. The
// product name, unit price, and line total are copied so later catalog edits
// do not rewrite order history.
type OrderItem struct {
	ID          uuid.UUID `json:"id" db:"id"`
	OrderID     uuid.UUID `json:"-" db:"order_id"`
	ProductID   uuid.UUID `json:"productId" db:"product_id"`
	ProductName string    `json:"productName" db:"product_name"`
	UnitPrice   float64   `json:"unitPrice" db:"unit_price"`
	Quantity    int       `json:"quantity" db:"quantity"`
	TotalPrice  float64   `json:"totalPrice" db:"total_price"`
}

// Order is a completed purchase.
type Order struct {
	ID         uuid.UUID   `json:"id" db:"id"`
	UserID     uuid.UUID   `json:"-" db:"user_id"`
	TotalPrice float64     `json:"totalPrice" db:"total_price"`
	CreatedAt  time.Time   `json:"createdAt" db:"created_at"`
	Items      []OrderItem `json:"items" db:"-"`
}

// Repository defines order persistence. PlaceOrder is the atomic checkout
// boundary: it decrements stock for every line, records the order, and
// empties the cart, or does none of those things. It finalizes the snapshot
// in place, re-reading each line's name and price from the product store so
// the recorded prices are the ones the stock decrement was applied against.
type Repository interface {
	PlaceOrder(ctx context.Context, order *Order, cartID uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error)
	Get(ctx context.Context, userID, orderID uuid.UUID) (Order, error)
}
