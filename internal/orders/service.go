package orders

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"shoponline/internal/cart"
	"shoponline/internal/catalog"
	"shoponline/internal/events"
)

// ProductCatalog is the slice of the catalog the checkout needs: product
// lookups for snapshots and cache invalidation after stock changes.
type ProductCatalog interface {
	Get(ctx context.Context, id uuid.UUID) (catalog.Product, error)
	InvalidateCache(ctx context.Context, ids ...uuid.UUID)
}

// Service contains order business logic.
type Service struct {
	repo      Repository
	carts     cart.Repository
	products  ProductCatalog
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(repo Repository, carts cart.Repository, products ProductCatalog, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		carts:     carts,
		products:  products,
		publisher: publisher,
		logger:    logger,
	}
}

// Checkout converts the user's cart into an order. Stock is decremented,
// the order recorded, and the cart emptied in one atomic step; if any line
// lacks stock, nothing changes and the cart is preserved.
func (s *Service) Checkout(ctx context.Context, userID uuid.UUID) (Order, error) {
	cartID, err := s.carts.EnsureCart(ctx, userID)
	if err != nil {
		return Order{}, fmt.Errorf("ensuring cart: %w", err)
	}

	lines, err := s.carts.Items(ctx, cartID)
	if err != nil {
		return Order{}, fmt.Errorf("loading cart items: %w", err)
	}
	if len(lines) == 0 {
		return Order{}, ErrEmptyCart
	}

	order := Order{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: time.Now(),
		Items:     make([]OrderItem, 0, len(lines)),
	}
	productIDs := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		product, err := s.products.Get(ctx, line.ProductID)
		if err != nil {
			return Order{}, fmt.Errorf("loading product %s: %w", line.ProductID, err)
		}
		order.Items = append(order.Items, OrderItem{
			ID:          uuid.New(),
			OrderID:     order.ID,
			ProductID:   product.ID,
			ProductName: product.Name,
			UnitPrice:   product.Price,
			Quantity:    line.Quantity,
			TotalPrice:  product.Price * float64(line.Quantity),
		})
		order.TotalPrice += product.Price * float64(line.Quantity)
		productIDs = append(productIDs, product.ID)
	}

	// The repository finalizes the snapshot against the product rows it
	// locks, so cached reads above only decide which products take part.
	if err := s.repo.PlaceOrder(ctx, &order, cartID); err != nil {
		return Order{}, err
	}

	s.products.InvalidateCache(ctx, productIDs...)
	s.publishOrderPlaced(ctx, order)

	s.logger.Info("order placed", "orderId", order.ID, "userId", userID, "total", order.TotalPrice)
	return order, nil
}

// ListByUser returns the user's orders, newest first.
func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Get returns one of the user's orders. Orders belonging to other users are
// indistinguishable from missing ones.
func (s *Service) Get(ctx context.Context, userID, orderID uuid.UUID) (Order, error) {
	return s.repo.Get(ctx, userID, orderID)
}

func (s *Service) publishOrderPlaced(ctx context.Context, order Order) {
	event := events.OrderPlacedEvent{
		OrderID:    order.ID,
		UserID:     order.UserID,
		TotalPrice: order.TotalPrice,
		PlacedAt:   order.CreatedAt,
		Items:      make([]events.OrderLineEvent, 0, len(order.Items)),
	}
	for _, item := range order.Items {
		event.Items = append(event.Items, events.OrderLineEvent{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
		})
	}
	if err := s.publisher.PublishOrderPlaced(ctx, event); err != nil {
		s.logger.Error("publishing order event", "orderId", order.ID, "error", err)
	}
}
