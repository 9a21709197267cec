package orders

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"shoponline/internal/cart"
	"shoponline/internal/catalog"
)

// InMemoryRepository implements Repository for local development and tests.
// It composes the in-memory catalog and cart stores: stock is decremented
// line by line, and already-taken stock is returned if a later line fails,
// so checkout stays all-or-nothing without a database transaction.
type InMemoryRepository struct {
	mu       sync.RWMutex
	orders   map[uuid.UUID]Order
	products catalog.Repository
	carts    cart.Repository
}

func NewInMemoryRepository(products catalog.Repository, carts cart.Repository) *InMemoryRepository {
	return &InMemoryRepository{
		orders:   make(map[uuid.UUID]Order),
		products: products,
		carts:    carts,
	}
}

func (r *InMemoryRepository) PlaceOrder(ctx context.Context, order *Order, cartID uuid.UUID) error {
	order.TotalPrice = 0
	for i := range order.Items {
		item := &order.Items[i]
		product, err := r.products.Get(ctx, item.ProductID)
		if err != nil {
			return fmt.Errorf("product %s: %w", item.ProductID, err)
		}
		item.ProductName = product.Name
		item.UnitPrice = product.Price
		item.TotalPrice = product.Price * float64(item.Quantity)
		order.TotalPrice += item.TotalPrice
	}

	taken := make([]OrderItem, 0, len(order.Items))
	for _, item := range order.Items {
		if err := r.products.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			for _, prev := range taken {
				if incErr := r.products.IncrementStock(ctx, prev.ProductID, prev.Quantity); incErr != nil {
					return fmt.Errorf("restoring stock for %s: %w", prev.ProductID, incErr)
				}
			}
			return fmt.Errorf("product %s: %w", item.ProductID, err)
		}
		taken = append(taken, item)
	}

	r.mu.Lock()
	r.orders[order.ID] = *order
	r.mu.Unlock()

	return r.carts.Clear(ctx, cartID)
}

func (r *InMemoryRepository) ListByUser(_ context.Context, userID uuid.UUID) ([]Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orders := []Order{}
	for _, order := range r.orders {
		if order.UserID == userID {
			orders = append(orders, order)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return orders, nil
}

func (r *InMemoryRepository) Get(_ context.Context, userID, orderID uuid.UUID) (Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[orderID]
	if !ok || order.UserID != userID {
		return Order{}, ErrNotFound
	}
	return order, nil
}
