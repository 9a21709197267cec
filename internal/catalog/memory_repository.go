package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryRepository stores products in an in-process map, ideal for local
// development or tests.
type InMemoryRepository struct {
	mu   sync.RWMutex
	data map[uuid.UUID]Product
}

// NewInMemoryRepository constructs a repository seeded with optional initial
// products.
func NewInMemoryRepository(initial []Product) *InMemoryRepository {
	data := make(map[uuid.UUID]Product, len(initial))
	for _, product := range initial {
		data[product.ID] = product
	}
	return &InMemoryRepository{data: data}
}

// Create stores a new product.
func (r *InMemoryRepository) Create(_ context.Context, product Product) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.data[product.ID] = product
	return product, nil
}

// Get returns a product by ID.
func (r *InMemoryRepository) Get(_ context.Context, id uuid.UUID) (Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.data[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return product, nil
}

// List returns stored products matching the filters, newest first.
func (r *InMemoryRepository) List(_ context.Context, opts ListOptions) ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name := strings.ToLower(opts.Name)
	category := strings.ToLower(opts.Category)

	products := make([]Product, 0, len(r.data))
	for _, product := range r.data {
		if name != "" && !strings.Contains(strings.ToLower(product.Name), name) {
			continue
		}
		if category != "" && !strings.Contains(strings.ToLower(product.Category), category) {
			continue
		}
		products = append(products, product)
	}

	sort.Slice(products, func(i, j int) bool {
		if !products[i].CreatedAt.Equal(products[j].CreatedAt) {
			return products[i].CreatedAt.After(products[j].CreatedAt)
		}
		return products[i].ID.String() < products[j].ID.String()
	})
	return products, nil
}

// Update replaces an existing product.
func (r *InMemoryRepository) Update(_ context.Context, product Product) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.data[product.ID]; !ok {
		return Product{}, ErrNotFound
	}
	r.data[product.ID] = product
	return product, nil
}

// Delete removes a product by ID.
func (r *InMemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.data[id]; !ok {
		return ErrNotFound
	}
	delete(r.data, id)
	return nil
}

// DecrementStock subtracts quantity, refusing to go below zero.
func (r *InMemoryRepository) DecrementStock(_ context.Context, id uuid.UUID, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.data[id]
	if !ok {
		return ErrNotFound
	}
	if product.Stock < quantity {
		return ErrInsufficientStock
	}
	product.Stock -= quantity
	product.UpdatedAt = time.Now().UTC()
	r.data[id] = product
	return nil
}

// IncrementStock adds quantity back.
func (r *InMemoryRepository) IncrementStock(_ context.Context, id uuid.UUID, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.data[id]
	if !ok {
		return ErrNotFound
	}
	product.Stock += quantity
	product.UpdatedAt = time.Now().UTC()
	r.data[id] = product
	return nil
}
