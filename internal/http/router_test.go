package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"shoponline/internal/catalog"
)

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestProductListIsPublic(t *testing.T) {
	ts := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestCartRequiresSession(t *testing.T) {
	ts := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestAdminProductCreateRequiresToken(t *testing.T) {
	ts := newTestServer(t, nil)
	body := `{"name":"Widget","category":"misc","price":9.99,"stock":3}`

	req := httptest.NewRequest(http.MethodPost, "/api/admin/products", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 without token, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/admin/products", bytes.NewBufferString(body))
	req.Header.Set("Authorization", "Bearer wrong-token")
	rec = httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 with wrong token, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/admin/products", bytes.NewBufferString(body))
	req.Header.Set("Authorization", "Bearer "+testAdminToken)
	rec = httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201 with admin token, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestShoppingFlow(t *testing.T) {
	product := seedProduct("Laptop", 999.00, 2)
	ts := newTestServer(t, []catalog.Product{product})
	cookie := ts.sessionCookieFor(t, "shopper@example.com")

	// Add to cart.
	body := fmt.Sprintf(`{"productId":%q,"quantity":2}`, product.ID)
	req := httptest.NewRequest(http.MethodPost, "/api/cart/items", bytes.NewBufferString(body))
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add to cart: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	// Checkout.
	req = httptest.NewRequest(http.MethodPost, "/api/checkout", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("checkout: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var order struct {
		ID         string  `json:"id"`
		TotalPrice float64 `json:"totalPrice"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &order); err != nil {
		t.Fatalf("decoding order: %v", err)
	}
	if order.TotalPrice != 1998.00 {
		t.Fatalf("expected total 1998.00, got %f", order.TotalPrice)
	}

	// Cart is empty afterwards.
	req = httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	var view struct {
		Items []any `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decoding cart: %v", err)
	}
	if len(view.Items) != 0 {
		t.Fatalf("expected empty cart after checkout, got %d items", len(view.Items))
	}

	// Order shows up in history.
	req = httptest.NewRequest(http.MethodGet, "/api/orders/"+order.ID, nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("get order: expected 200, got %d", rec.Code)
	}

	// A second checkout with an empty cart is rejected.
	req = httptest.NewRequest(http.MethodPost, "/api/checkout", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("empty checkout: expected 409, got %d", rec.Code)
	}
}

func TestCheckoutInsufficientStock(t *testing.T) {
	product := seedProduct("Rare Item", 50.00, 1)
	ts := newTestServer(t, []catalog.Product{product})
	first := ts.sessionCookieFor(t, "first@example.com")
	second := ts.sessionCookieFor(t, "second@example.com")

	for _, cookie := range []*http.Cookie{first, second} {
		body := fmt.Sprintf(`{"productId":%q,"quantity":1}`, product.ID)
		req := httptest.NewRequest(http.MethodPost, "/api/cart/items", bytes.NewBufferString(body))
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		ts.handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("add to cart: expected 201, got %d", rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/api/checkout", nil)
	req.AddCookie(first)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("first checkout: expected 201, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/checkout", nil)
	req.AddCookie(second)
	rec = httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("second checkout: expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestOrderHiddenFromOtherUsers(t *testing.T) {
	product := seedProduct("Book", 10.00, 5)
	ts := newTestServer(t, []catalog.Product{product})
	owner := ts.sessionCookieFor(t, "owner@example.com")
	other := ts.sessionCookieFor(t, "other@example.com")

	body := fmt.Sprintf(`{"productId":%q}`, product.ID)
	req := httptest.NewRequest(http.MethodPost, "/api/cart/items", bytes.NewBufferString(body))
	req.AddCookie(owner)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	req = httptest.NewRequest(http.MethodPost, "/api/checkout", nil)
	req.AddCookie(owner)
	rec = httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	var order struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &order); err != nil {
		t.Fatalf("decoding order: %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/orders/"+order.ID, nil)
	req.AddCookie(other)
	rec = httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for other user's order, got %d", rec.Code)
	}
}
