package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Cache is the subset of a key-value cache the catalog needs. Implementations
// must be safe for concurrent use; failures are swallowed by the service.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Del(ctx context.Context, keys ...string)
}

const listCacheKey = "catalog:products"

// Service orchestrates validation and persistence for products, with an
// optional read-through cache in front of unfiltered listings and lookups.
type Service struct {
	repo     Repository
	cache    Cache
	cacheTTL time.Duration
	logger   *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithCache enables the read-through cache.
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = cache
		s.cacheTTL = ttl
	}
}

// NewService wires a Service with the provided repository.
func NewService(repo Repository, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{repo: repo, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates and persists a new product.
func (s *Service) Create(ctx context.Context, input CreateProductInput) (Product, error) {
	if err := validateProductInput(input.Name, input.Price, input.Stock); err != nil {
		return Product{}, err
	}

	now := time.Now().UTC()
	product := Product{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(input.Name),
		Category:  strings.TrimSpace(input.Category),
		ImageURL:  strings.TrimSpace(input.ImageURL),
		Price:     input.Price,
		Stock:     input.Stock,
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return Product{}, err
	}
	s.invalidate(ctx, created.ID)
	return created, nil
}

// Get retrieves a product by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Product, error) {
	key := productCacheKey(id)
	if cached, ok := s.cacheGet(ctx, key); ok {
		var product Product
		if err := json.Unmarshal(cached, &product); err == nil {
			return product, nil
		}
	}

	product, err := s.repo.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	s.cacheSet(ctx, key, product)
	return product, nil
}

// List returns products matching the given filters. Only the unfiltered
// listing is cached; search results go straight to the repository.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]Product, error) {
	filtered := opts.Name != "" || opts.Category != ""
	if !filtered {
		if cached, ok := s.cacheGet(ctx, listCacheKey); ok {
			var products []Product
			if err := json.Unmarshal(cached, &products); err == nil {
				return products, nil
			}
		}
	}

	products, err := s.repo.List(ctx, ListOptions{
		Name:     strings.TrimSpace(opts.Name),
		Category: strings.TrimSpace(opts.Category),
	})
	if err != nil {
		return nil, err
	}

	if !filtered {
		s.cacheSet(ctx, listCacheKey, products)
	}
	return products, nil
}

// Update applies modifications to a product.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (Product, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}

	if input.Name != nil {
		existing.Name = strings.TrimSpace(*input.Name)
	}
	if input.Category != nil {
		existing.Category = strings.TrimSpace(*input.Category)
	}
	if input.ImageURL != nil {
		existing.ImageURL = strings.TrimSpace(*input.ImageURL)
	}
	if input.Price != nil {
		existing.Price = *input.Price
	}
	if input.Stock != nil {
		existing.Stock = *input.Stock
	}

	if err := validateProductInput(existing.Name, existing.Price, existing.Stock); err != nil {
		return Product{}, err
	}

	existing.UpdatedAt = time.Now().UTC()
	updated, err := s.repo.Update(ctx, existing)
	if err != nil {
		return Product{}, err
	}
	s.invalidate(ctx, id)
	return updated, nil
}

// Delete removes a product.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// InvalidateCache drops cached entries for the given products. Called after
// checkout commits a stock change outside this service.
func (s *Service) InvalidateCache(ctx context.Context, ids ...uuid.UUID) {
	for _, id := range ids {
		s.invalidate(ctx, id)
	}
}

func validateProductInput(name string, price float64, stock int) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Message: "name is required"}
	}
	if price < 0 {
		return &ValidationError{Message: "price must not be negative"}
	}
	if stock < 0 {
		return &ValidationError{Message: "stock must not be negative"}
	}
	return nil
}

func productCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("catalog:product:%s", id)
}

func (s *Service) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	if s.cache == nil {
		return nil, false
	}
	return s.cache.Get(ctx, key)
}

func (s *Service) cacheSet(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("product cache marshal failed", "key", key, "error", err)
		return
	}
	s.cache.Set(ctx, key, data, s.cacheTTL)
}

func (s *Service) invalidate(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	s.cache.Del(ctx, productCacheKey(id), listCacheKey)
}
