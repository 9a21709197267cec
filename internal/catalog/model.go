package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a product cannot be located.
var ErrNotFound = errors.New("product not found")

// ErrValidation is returned when input validation fails.
var ErrValidation = errors.New("validation error")

// ErrInsufficientStock is returned when a stock decrement would drive the
// count below zero.
var ErrInsufficientStock = errors.New("insufficient stock")

// ValidationError wraps a validation message so callers can distinguish
// client errors from internal failures.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Product represents a catalog entry in the shop.
type Product struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Category  string    `json:"category" db:"category"`
	ImageURL  string    `json:"image" db:"image_url"`
	Price     float64   `json:"price" db:"price"`
	Stock     int       `json:"stock" db:"stock"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// CreateProductInput carries the fields needed to add a product.
type CreateProductInput struct {
	Name     string
	Category string
	ImageURL string
	Price    float64
	Stock    int
}

// UpdateProductInput carries optional modifications; nil fields are left
// untouched.
type UpdateProductInput struct {
	Name     *string
	Category *string
	ImageURL *string
	Price    *float64
	Stock    *int
}

// ListOptions filters product listings. Name and Category match
// case-insensitive substrings, per the storefront search boxes.
type ListOptions struct {
	Name     string
	Category string
}

// Repository defines product persistence.
type Repository interface {
	Create(ctx context.Context, product Product) (Product, error)
	Get(ctx context.Context, id uuid.UUID) (Product, error)
	List(ctx context.Context, opts ListOptions) ([]Product, error)
	Update(ctx context.Context, product Product) (Product, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// DecrementStock atomically subtracts quantity from stock, failing with
	// ErrInsufficientStock when the remaining stock does not cover it.
	DecrementStock(ctx context.Context, id uuid.UUID, quantity int) error
	// IncrementStock adds quantity back; used to compensate a failed
	// multi-product decrement in stores without transactions.
	IncrementStock(ctx context.Context, id uuid.UUID, quantity int) error
}
