package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"shoponline/internal/cart"
)

// CartHandler exposes the authenticated user's cart. Every mutation returns
// the refreshed cart so clients never need a follow-up read.
type CartHandler struct {
	service *cart.Service
	logger  *slog.Logger
}

func NewCartHandler(service *cart.Service, logger *slog.Logger) *CartHandler {
	return &CartHandler{service: service, logger: logger}
}

// Get handles GET /api/cart.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		unauthorized(w)
		return
	}

	view, err := h.service.Get(r.Context(), user.ID)
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// AddItem handles POST /api/cart/items.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		unauthorized(w)
		return
	}

	var payload struct {
		ProductID uuid.UUID `json:"productId"`
		Quantity  int       `json:"quantity"`
	}
	if err := decodeJSONBody(w, r, &payload); err != nil {
		writeJSONError(w, err)
		return
	}
	if payload.Quantity == 0 {
		payload.Quantity = 1
	}

	view, err := h.service.AddItem(r.Context(), user.ID, payload.ProductID, payload.Quantity)
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// UpdateItem handles PUT /api/cart/items/{itemId}.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		unauthorized(w)
		return
	}
	itemID, ok := parseUUIDParam(w, r, "itemId")
	if !ok {
		return
	}

	var payload struct {
		Quantity int `json:"quantity"`
	}
	if err := decodeJSONBody(w, r, &payload); err != nil {
		writeJSONError(w, err)
		return
	}

	view, err := h.service.SetItemQuantity(r.Context(), user.ID, itemID, payload.Quantity)
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// IncrementItem handles POST /api/cart/items/{itemId}/increment.
func (h *CartHandler) IncrementItem(w http.ResponseWriter, r *http.Request) {
	h.adjustItem(w, r, h.service.IncrementItem)
}

// DecrementItem handles POST /api/cart/items/{itemId}/decrement.
func (h *CartHandler) DecrementItem(w http.ResponseWriter, r *http.Request) {
	h.adjustItem(w, r, h.service.DecrementItem)
}

func (h *CartHandler) adjustItem(w http.ResponseWriter, r *http.Request, adjust func(ctx context.Context, userID, itemID uuid.UUID) (cart.View, error)) {
	user := UserFromContext(r.Context())
	if user == nil {
		unauthorized(w)
		return
	}
	itemID, ok := parseUUIDParam(w, r, "itemId")
	if !ok {
		return
	}

	view, err := adjust(r.Context(), user.ID, itemID)
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// RemoveItem handles DELETE /api/cart/items/{itemId}.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		unauthorized(w)
		return
	}
	itemID, ok := parseUUIDParam(w, r, "itemId")
	if !ok {
		return
	}

	view, err := h.service.RemoveItem(r.Context(), user.ID, itemID)
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Clear handles DELETE /api/cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		unauthorized(w)
		return
	}

	view, err := h.service.Clear(r.Context(), user.ID)
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
