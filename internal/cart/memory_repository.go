package cart

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryRepository implements Repository with in-memory maps, used for
// local development and tests.
type InMemoryRepository struct {
	mu    sync.RWMutex
	carts map[uuid.UUID]uuid.UUID // user id -> cart id
	items map[uuid.UUID][]Item    // cart id -> lines
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		carts: make(map[uuid.UUID]uuid.UUID),
		items: make(map[uuid.UUID][]Item),
	}
}

func (r *InMemoryRepository) EnsureCart(_ context.Context, userID uuid.UUID) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.carts[userID]; ok {
		return id, nil
	}
	id := uuid.New()
	r.carts[userID] = id
	r.items[id] = nil
	return id, nil
}

func (r *InMemoryRepository) Items(_ context.Context, cartID uuid.UUID) ([]Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]Item, len(r.items[cartID]))
	copy(items, r.items[cartID])
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) })
	return items, nil
}

func (r *InMemoryRepository) GetItem(_ context.Context, cartID, itemID uuid.UUID) (Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items[cartID] {
		if item.ID == itemID {
			return item, nil
		}
	}
	return Item{}, ErrItemNotFound
}

func (r *InMemoryRepository) FindItemByProduct(_ context.Context, cartID, productID uuid.UUID) (*Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items[cartID] {
		if item.ProductID == productID {
			out := item
			return &out, nil
		}
	}
	return nil, nil
}

func (r *InMemoryRepository) CreateItem(_ context.Context, item Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[item.CartID] = append(r.items[item.CartID], item)
	return nil
}

func (r *InMemoryRepository) UpdateItemQuantity(_ context.Context, cartID, itemID uuid.UUID, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := r.items[cartID]
	for i := range items {
		if items[i].ID == itemID {
			items[i].Quantity = quantity
			items[i].UpdatedAt = time.Now()
			return nil
		}
	}
	return ErrItemNotFound
}

func (r *InMemoryRepository) RemoveItem(_ context.Context, cartID, itemID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := r.items[cartID]
	for i := range items {
		if items[i].ID == itemID {
			r.items[cartID] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return ErrItemNotFound
}

func (r *InMemoryRepository) Clear(_ context.Context, cartID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[cartID] = nil
	return nil
}
