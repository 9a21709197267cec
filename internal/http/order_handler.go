package http

import (
	"errors"
	"log/slog"
	"net/http"

	"shoponline/internal/catalog"
	"shoponline/internal/exporter"
	"shoponline/internal/orders"
	"shoponline/internal/platform/metrics"
)

// OrderHandler exposes checkout and order history for the authenticated user.
type OrderHandler struct {
	service  *orders.Service
	exporter *exporter.CSVExporter
	metrics  metrics.Recorder
	logger   *slog.Logger
}

func NewOrderHandler(service *orders.Service, csvExporter *exporter.CSVExporter, recorder metrics.Recorder, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		service:  service,
		exporter: csvExporter,
		metrics:  recorder,
		logger:   logger,
	}
}

// Checkout handles POST /api/checkout.
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		unauthorized(w)
		return
	}

	order, err := h.service.Checkout(r.Context(), user.ID)
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrEmptyCart):
			h.metrics.RecordCheckoutRejected("empty_cart")
		case errors.Is(err, catalog.ErrInsufficientStock):
			h.metrics.RecordCheckoutRejected("insufficient_stock")
		}
		handleServiceError(w, err, h.logger)
		return
	}

	h.metrics.RecordOrderPlaced(order.TotalPrice)
	writeJSON(w, http.StatusCreated, order)
}

// List handles GET /api/orders.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		unauthorized(w)
		return
	}

	orderList, err := h.service.ListByUser(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("list orders", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": orderList})
}

// Get handles GET /api/orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		unauthorized(w)
		return
	}
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	order, err := h.service.Get(r.Context(), user.ID, id)
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// ExportCSV handles GET /api/orders/export, streaming the user's order
// history as CSV.
func (h *OrderHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		unauthorized(w)
		return
	}
	if h.exporter == nil {
		writeError(w, http.StatusNotImplemented, "CSV export is not available")
		return
	}

	orderList, err := h.service.ListByUser(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("list orders for export", "error", err)
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="orders.csv"`)
	if err := h.exporter.ExportOrders(w, orderList); err != nil {
		h.logger.Error("csv export failed", "error", err)
	}
}
