package cart

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrItemNotFound is returned when a cart line cannot be located.
var ErrItemNotFound = errors.New("cart item not found")

// ErrValidation is returned when input validation fails.
var ErrValidation = errors.New("validation error")

// Item is a stored cart line. Quantity is strictly positive; a line whose
// quantity would drop to zero is removed instead.
type Item struct {
	ID        uuid.UUID `db:"id"`
	CartID    uuid.UUID `db:"cart_id"`
	ProductID uuid.UUID `db:"product_id"`
	Quantity  int       `db:"quantity"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// ViewItem is a cart line joined with live product data for presentation.
type ViewItem struct {
	ID           uuid.UUID `json:"id"`
	ProductID    uuid.UUID `json:"productId"`
	Quantity     int       `json:"quantity"`
	Price        float64   `json:"price"`
	TotalPrice   float64   `json:"totalPrice"`
	ProductName  string    `json:"productName"`
	ProductImage string    `json:"productImage"`
}

// View is the cart as returned to clients. Totals are computed from current
// product prices at read time, never stored.
type View struct {
	ID         uuid.UUID  `json:"id"`
	TotalPrice float64    `json:"totalPrice"`
	Items      []ViewItem `json:"items"`
}

// Repository defines cart persistence. Carts are created lazily, one per user.
type Repository interface {
	EnsureCart(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
	Items(ctx context.Context, cartID uuid.UUID) ([]Item, error)
	GetItem(ctx context.Context, cartID, itemID uuid.UUID) (Item, error)
	FindItemByProduct(ctx context.Context, cartID, productID uuid.UUID) (*Item, error)
	CreateItem(ctx context.Context, item Item) error
	UpdateItemQuantity(ctx context.Context, cartID, itemID uuid.UUID, quantity int) error
	RemoveItem(ctx context.Context, cartID, itemID uuid.UUID) error
	Clear(ctx context.Context, cartID uuid.UUID) error
}
