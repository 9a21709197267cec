package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"shoponline/internal/catalog"
	"shoponline/internal/exporter"
	"shoponline/internal/importer"
)

// ProductHandler exposes the product catalog. Reads are public; mutations
// sit behind the admin middleware.
type ProductHandler struct {
	service  *catalog.Service
	importer *importer.CSVImporter
	exporter *exporter.CSVExporter
	logger   *slog.Logger
}

func NewProductHandler(service *catalog.Service, csvImporter *importer.CSVImporter, csvExporter *exporter.CSVExporter, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service:  service,
		importer: csvImporter,
		exporter: csvExporter,
		logger:   logger,
	}
}

// List returns products, optionally filtered by name or category substring.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	opts := catalog.ListOptions{
		Name:     strings.TrimSpace(r.URL.Query().Get("name")),
		Category: strings.TrimSpace(r.URL.Query().Get("category")),
	}

	products, err := h.service.List(r.Context(), opts)
	if err != nil {
		h.logger.Error("list products", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list products")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": products})
}

// Search returns products whose name contains the q parameter.
func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeJSON(w, http.StatusOK, map[string]any{"products": []catalog.Product{}})
		return
	}

	products, err := h.service.List(r.Context(), catalog.ListOptions{Name: q})
	if err != nil {
		h.logger.Error("search products", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to search products")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": products})
}

// Get returns a single product.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	product, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// Create stores a new product.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name     string  `json:"name"`
		Category string  `json:"category"`
		Image    string  `json:"image"`
		Price    float64 `json:"price"`
		Stock    int     `json:"stock"`
	}
	if err := decodeJSONBody(w, r, &payload); err != nil {
		writeJSONError(w, err)
		return
	}

	product, err := h.service.Create(r.Context(), catalog.CreateProductInput{
		Name:     payload.Name,
		Category: payload.Category,
		ImageURL: payload.Image,
		Price:    payload.Price,
		Stock:    payload.Stock,
	})
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

// Update modifies a product. Only fields present in the body change.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	var payload struct {
		Name     *string  `json:"name"`
		Category *string  `json:"category"`
		Image    *string  `json:"image"`
		Price    *float64 `json:"price"`
		Stock    *int     `json:"stock"`
	}
	if err := decodeJSONBody(w, r, &payload); err != nil {
		writeJSONError(w, err)
		return
	}

	product, err := h.service.Update(r.Context(), id, catalog.UpdateProductInput{
		Name:     payload.Name,
		Category: payload.Category,
		ImageURL: payload.Image,
		Price:    payload.Price,
		Stock:    payload.Stock,
	})
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// Delete removes a product.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		handleServiceError(w, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

const maxCSVUploadBytes int64 = 5 << 20

// ImportCSV ingests a CSV file of products.
func (h *ProductHandler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	if h.importer == nil {
		writeError(w, http.StatusNotImplemented, "CSV import is not available")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxCSVUploadBytes)
	if err := r.ParseMultipartForm(maxCSVUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("CSV upload is too large (max %d bytes)", maxErr.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, "invalid CSV upload")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "CSV file is required")
		return
	}
	defer func() { _ = file.Close() }()

	summary, err := h.importer.Import(r.Context(), file)
	if err != nil {
		if errors.Is(err, importer.ErrInvalidCSV) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("csv import failed", "error", err)
		writeError(w, http.StatusInternalServerError, "bulk import failed")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// ExportCSV streams the full catalog as CSV.
func (h *ProductHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	if h.exporter == nil {
		writeError(w, http.StatusNotImplemented, "CSV export is not available")
		return
	}

	products, err := h.service.List(r.Context(), catalog.ListOptions{})
	if err != nil {
		h.logger.Error("list products for export", "error", err)
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="products.csv"`)
	if err := h.exporter.ExportProducts(w, products); err != nil {
		h.logger.Error("csv export failed", "error", err)
	}
}
