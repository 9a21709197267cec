package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"

	"shoponline/internal/auth"
	"shoponline/internal/cart"
	"shoponline/internal/catalog"
	"shoponline/internal/config"
	"shoponline/internal/events"
	"shoponline/internal/orders"
	"shoponline/internal/platform/metrics"
)

const testAdminToken = "test-admin-token"

type testServer struct {
	handler  http.Handler
	products catalog.Repository
	auth     *auth.Service
}

// newTestServer wires the full router against in-memory stores.
func newTestServer(t *testing.T, seed []catalog.Product) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	authRepo := auth.NewInMemoryRepository()
	authService := auth.NewService(authRepo, 24*time.Hour)

	productRepo := catalog.NewInMemoryRepository(seed)
	catalogService := catalog.NewService(productRepo, logger)

	cartRepo := cart.NewInMemoryRepository()
	cartService := cart.NewService(cartRepo, productRepo, logger)

	orderRepo := orders.NewInMemoryRepository(productRepo, cartRepo)
	orderService := orders.NewService(orderRepo, cartRepo, catalogService, events.NewNoopPublisher(), logger)

	cfg := config.Config{
		Environment:    "development",
		AllowedOrigins: []string{"http://localhost:3000"},
		FrontendURL:    "http://localhost:3000",
		SessionTTL:     24 * time.Hour,
		AdminAPIToken:  testAdminToken,
	}

	handler := NewRouter(cfg, Services{
		Auth:    authService,
		Catalog: catalogService,
		Cart:    cartService,
		Orders:  orderService,
	}, metrics.NoopRecorder{}, nil, logger)

	return &testServer{
		handler:  handler,
		products: productRepo,
		auth:     authService,
	}
}

// sessionCookieFor creates a user and returns a valid session cookie.
func (ts *testServer) sessionCookieFor(t *testing.T, email string) *http.Cookie {
	t.Helper()
	user, err := ts.auth.SignUp(context.Background(), email, "password123")
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	token, err := ts.auth.CreateSession(context.Background(), user.ID, "test", "127.0.0.1")
	if err != nil {
		t.Fatalf("session creation failed: %v", err)
	}
	return &http.Cookie{Name: sessionCookieName, Value: token}
}

func seedProduct(name string, price float64, stock int) catalog.Product {
	now := time.Now()
	return catalog.Product{
		ID:        uuid.New(),
		Name:      name,
		Category:  "test",
		Price:     price,
		Stock:     stock,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
