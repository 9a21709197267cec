package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"shoponline/internal/catalog"
	"shoponline/internal/orders"
)

// SchemaVersion identifies the CSV export format version.
// This version should be incremented when adding new columns or changing the format.
const SchemaVersion = "1"

// productColumns defines the column order for product exports. The columns
// are a superset of the import format so a product export can be re-imported.
var productColumns = []string{
	"schemaVersion",
	"name",
	"category",
	"image",
	"price",
	"stock",
	"createdAt",
	"updatedAt",
}

// orderColumns defines the column order for order history exports, one row
// per purchased line.
var orderColumns = []string{
	"schemaVersion",
	"orderId",
	"placedAt",
	"productName",
	"unitPrice",
	"quantity",
	"lineTotal",
	"orderTotal",
}

// CSVExporter exports catalog and order data to CSV format.
type CSVExporter struct{}

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// ExportProducts writes products to the given writer in CSV format.
// The export format is designed to be compatible with the CSV import feature.
func (e *CSVExporter) ExportProducts(w io.Writer, products []catalog.Product) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(productColumns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, product := range products {
		row := []string{
			SchemaVersion,
			product.Name,
			product.Category,
			product.ImageURL,
			formatPrice(product.Price),
			strconv.Itoa(product.Stock),
			formatTime(product.CreatedAt),
			formatTime(product.UpdatedAt),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	return writer.Error()
}

// ExportOrders writes a user's order history to the given writer, flattened
// to one row per order line.
func (e *CSVExporter) ExportOrders(w io.Writer, orderList []orders.Order) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(orderColumns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, order := range orderList {
		for _, item := range order.Items {
			row := []string{
				SchemaVersion,
				order.ID.String(),
				formatTime(order.CreatedAt),
				item.ProductName,
				formatPrice(item.UnitPrice),
				strconv.Itoa(item.Quantity),
				formatPrice(item.TotalPrice),
				formatPrice(order.TotalPrice),
			}
			if err := writer.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
	}

	return writer.Error()
}

// formatPrice formats a price with two decimal places.
func formatPrice(value float64) string {
	return strconv.FormatFloat(value, 'f', 2, 64)
}

// formatTime formats a time to RFC3339 string.
func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.Format(time.RFC3339)
}
