package cart

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"shoponline/internal/catalog"
)

// Service contains cart business logic. Product names and prices are joined
// from the catalog at read time so the cart always reflects current data.
type Service struct {
	repo     Repository
	products catalog.Repository
	logger   *slog.Logger
}

func NewService(repo Repository, products catalog.Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		products: products,
		logger:   logger,
	}
}

// Get returns the user's cart, creating an empty one on first access.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (View, error) {
	cartID, err := s.repo.EnsureCart(ctx, userID)
	if err != nil {
		return View{}, fmt.Errorf("ensuring cart: %w", err)
	}
	return s.buildView(ctx, cartID)
}

// AddItem adds a product to the cart. If the product is already present the
// quantities are merged into the existing line.
func (s *Service) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (View, error) {
	if quantity <= 0 {
		return View{}, fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}

	if _, err := s.products.Get(ctx, productID); err != nil {
		return View{}, err
	}

	cartID, err := s.repo.EnsureCart(ctx, userID)
	if err != nil {
		return View{}, fmt.Errorf("ensuring cart: %w", err)
	}

	existing, err := s.repo.FindItemByProduct(ctx, cartID, productID)
	if err != nil {
		return View{}, fmt.Errorf("finding cart item: %w", err)
	}
	if existing != nil {
		if err := s.repo.UpdateItemQuantity(ctx, cartID, existing.ID, existing.Quantity+quantity); err != nil {
			return View{}, fmt.Errorf("updating cart item: %w", err)
		}
		return s.buildView(ctx, cartID)
	}

	now := time.Now()
	item := Item{
		ID:        uuid.New(),
		CartID:    cartID,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return View{}, fmt.Errorf("creating cart item: %w", err)
	}
	return s.buildView(ctx, cartID)
}

// SetItemQuantity replaces the quantity of an existing line.
func (s *Service) SetItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (View, error) {
	if quantity <= 0 {
		return View{}, fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}

	cartID, err := s.repo.EnsureCart(ctx, userID)
	if err != nil {
		return View{}, fmt.Errorf("ensuring cart: %w", err)
	}
	if err := s.repo.UpdateItemQuantity(ctx, cartID, itemID, quantity); err != nil {
		return View{}, err
	}
	return s.buildView(ctx, cartID)
}

// IncrementItem raises a line's quantity by one.
func (s *Service) IncrementItem(ctx context.Context, userID, itemID uuid.UUID) (View, error) {
	return s.adjustItem(ctx, userID, itemID, 1)
}

// DecrementItem lowers a line's quantity by one. A line already at quantity
// one is left unchanged; removal is an explicit, separate action.
func (s *Service) DecrementItem(ctx context.Context, userID, itemID uuid.UUID) (View, error) {
	return s.adjustItem(ctx, userID, itemID, -1)
}

func (s *Service) adjustItem(ctx context.Context, userID, itemID uuid.UUID, delta int) (View, error) {
	cartID, err := s.repo.EnsureCart(ctx, userID)
	if err != nil {
		return View{}, fmt.Errorf("ensuring cart: %w", err)
	}

	item, err := s.repo.GetItem(ctx, cartID, itemID)
	if err != nil {
		return View{}, err
	}

	next := item.Quantity + delta
	if next < 1 {
		return s.buildView(ctx, cartID)
	}
	if err := s.repo.UpdateItemQuantity(ctx, cartID, itemID, next); err != nil {
		return View{}, err
	}
	return s.buildView(ctx, cartID)
}

// RemoveItem deletes a line from the cart.
func (s *Service) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (View, error) {
	cartID, err := s.repo.EnsureCart(ctx, userID)
	if err != nil {
		return View{}, fmt.Errorf("ensuring cart: %w", err)
	}
	if err := s.repo.RemoveItem(ctx, cartID, itemID); err != nil {
		return View{}, err
	}
	return s.buildView(ctx, cartID)
}

// Clear removes every line from the user's cart.
func (s *Service) Clear(ctx context.Context, userID uuid.UUID) (View, error) {
	cartID, err := s.repo.EnsureCart(ctx, userID)
	if err != nil {
		return View{}, fmt.Errorf("ensuring cart: %w", err)
	}
	if err := s.repo.Clear(ctx, cartID); err != nil {
		return View{}, fmt.Errorf("clearing cart: %w", err)
	}
	return s.buildView(ctx, cartID)
}

func (s *Service) buildView(ctx context.Context, cartID uuid.UUID) (View, error) {
	items, err := s.repo.Items(ctx, cartID)
	if err != nil {
		return View{}, fmt.Errorf("loading cart items: %w", err)
	}

	view := View{
		ID:    cartID,
		Items: make([]ViewItem, 0, len(items)),
	}
	for _, item := range items {
		product, err := s.products.Get(ctx, item.ProductID)
		if err != nil {
			// A product deleted from the catalog no longer renders;
			// its line is skipped rather than failing the whole cart.
			s.logger.Warn("cart references missing product",
				"cartId", cartID, "productId", item.ProductID, "error", err)
			continue
		}
		line := ViewItem{
			ID:           item.ID,
			ProductID:    item.ProductID,
			Quantity:     item.Quantity,
			Price:        product.Price,
			TotalPrice:   product.Price * float64(item.Quantity),
			ProductName:  product.Name,
			ProductImage: product.ImageURL,
		}
		view.Items = append(view.Items, line)
		view.TotalPrice += line.TotalPrice
	}
	return view, nil
}
