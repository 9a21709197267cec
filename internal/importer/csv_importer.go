package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"shoponline/internal/catalog"
)

// ProductStore is the slice of the catalog the importer needs.
type ProductStore interface {
	Create(ctx context.Context, input catalog.CreateProductInput) (catalog.Product, error)
	List(ctx context.Context, opts catalog.ListOptions) ([]catalog.Product, error)
}

type Summary struct {
	TotalRows         int             `json:"totalRows"`
	Imported          int             `json:"imported"`
	SkippedDuplicates []SkippedRecord `json:"skippedDuplicates"`
	Failed            []FailedRecord  `json:"failed"`
	TruncatedRecords  bool            `json:"truncatedRecords,omitempty"`
}

type SkippedRecord struct {
	Row    int    `json:"row"`
	Name   string `json:"name,omitempty"`
	Reason string `json:"reason"`
}

type FailedRecord struct {
	Row   int    `json:"row"`
	Name  string `json:"name,omitempty"`
	Error string `json:"error"`
}

var ErrInvalidCSV = errors.New("invalid csv upload")

// MaxImportRows limits the number of data rows processed per CSV import to
// prevent excessive memory usage and long-running requests.
const MaxImportRows = 1000

// MaxFailedRecords caps the number of failed/skipped records stored in the
// summary to avoid unbounded memory growth from malformed uploads.
const MaxFailedRecords = 100

var requiredColumns = []string{
	"name",
	"category",
	"price",
	"stock",
}

type CSVImporter struct {
	products ProductStore
}

func NewCSVImporter(products ProductStore) *CSVImporter {
	return &CSVImporter{products: products}
}

func (i *CSVImporter) Import(ctx context.Context, reader io.Reader) (Summary, error) {
	if i.products == nil {
		return Summary{}, fmt.Errorf("%w: product store is not configured", ErrInvalidCSV)
	}

	existing, err := i.products.List(ctx, catalog.ListOptions{})
	if err != nil {
		return Summary{}, err
	}

	tracker := newDuplicateTracker(existing)

	csvReader := csv.NewReader(reader)
	csvReader.FieldsPerRecord = -1
	csvReader.TrimLeadingSpace = true

	header, err := csvReader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Summary{}, fmt.Errorf("%w: file is empty", ErrInvalidCSV)
		}
		return Summary{}, fmt.Errorf("%w: failed to read header", ErrInvalidCSV)
	}

	columns, err := normalizeHeader(header)
	if err != nil {
		return Summary{}, err
	}

	type parsedRow struct {
		number int
		values map[string]string
	}

	var rows []parsedRow
	rowNumber := 1
	totalRows := 0

	for {
		record, err := csvReader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return Summary{}, fmt.Errorf("%w: failed to read row %d", ErrInvalidCSV, rowNumber+1)
		}
		rowNumber++
		values := mapRecord(columns, record)
		if isRowEmpty(values) {
			continue
		}

		totalRows++
		if totalRows > MaxImportRows {
			return Summary{}, fmt.Errorf("%w: CSV exceeds maximum of %d rows", ErrInvalidCSV, MaxImportRows)
		}

		rows = append(rows, parsedRow{
			number: rowNumber,
			values: values,
		})
	}

	summary := Summary{TotalRows: totalRows}

	for _, row := range rows {
		input, rowErr := buildInput(row.values)
		if rowErr != nil {
			if len(summary.Failed) < MaxFailedRecords {
				summary.Failed = append(summary.Failed, FailedRecord{
					Row:   row.number,
					Name:  strings.TrimSpace(row.values["name"]),
					Error: rowErr.Error(),
				})
			} else {
				summary.TruncatedRecords = true
			}
			continue
		}

		if tracker.Check(input.Name) {
			if len(summary.SkippedDuplicates) < MaxFailedRecords {
				summary.SkippedDuplicates = append(summary.SkippedDuplicates, SkippedRecord{
					Row:    row.number,
					Name:   input.Name,
					Reason: "duplicate name",
				})
			} else {
				summary.TruncatedRecords = true
			}
			continue
		}

		if _, err := i.products.Create(ctx, input); err != nil {
			if len(summary.Failed) < MaxFailedRecords {
				summary.Failed = append(summary.Failed, FailedRecord{
					Row:   row.number,
					Name:  input.Name,
					Error: err.Error(),
				})
			} else {
				summary.TruncatedRecords = true
			}
			continue
		}

		tracker.Add(input.Name)
		summary.Imported++
	}

	return summary, nil
}

func buildInput(values map[string]string) (catalog.CreateProductInput, error) {
	name := strings.TrimSpace(values["name"])
	if name == "" {
		return catalog.CreateProductInput{}, fmt.Errorf("name is required")
	}

	category := strings.TrimSpace(values["category"])
	image := strings.TrimSpace(values["image"])

	price, err := parseRequiredFloat(values["price"], "price")
	if err != nil {
		return catalog.CreateProductInput{}, err
	}
	if price < 0 {
		return catalog.CreateProductInput{}, fmt.Errorf("price must be zero or greater")
	}

	stock, err := parseRequiredInt(values["stock"], "stock")
	if err != nil {
		return catalog.CreateProductInput{}, err
	}
	if stock < 0 {
		return catalog.CreateProductInput{}, fmt.Errorf("stock must be zero or greater")
	}

	return catalog.CreateProductInput{
		Name:     name,
		Category: category,
		ImageURL: image,
		Price:    price,
		Stock:    stock,
	}, nil
}

func normalizeHeader(header []string) (map[int]string, error) {
	columns := make(map[int]string, len(header))
	seen := map[string]bool{}
	for idx, raw := range header {
		cleaned := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(raw, "\uFEFF")))
		if cleaned == "" {
			continue
		}
		columns[idx] = cleaned
		seen[cleaned] = true
	}

	missing := make([]string, 0)
	for _, column := range requiredColumns {
		if !seen[column] {
			missing = append(missing, column)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing required columns: %s", ErrInvalidCSV, strings.Join(missing, ", "))
	}
	return columns, nil
}

func mapRecord(columns map[int]string, record []string) map[string]string {
	values := make(map[string]string, len(columns))
	for idx, column := range columns {
		if idx >= len(record) {
			values[column] = ""
			continue
		}
		values[column] = strings.TrimSpace(record[idx])
	}
	return values
}

func isRowEmpty(values map[string]string) bool {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}

func parseRequiredInt(value string, field string) (int, error) {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0, fmt.Errorf("%s is required", field)
	}
	parsed, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", field)
	}
	return parsed, nil
}

func parseRequiredFloat(value string, field string) (float64, error) {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0, fmt.Errorf("%s is required", field)
	}
	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", field)
	}
	return parsed, nil
}

type duplicateTracker struct {
	known map[string]bool
}

func newDuplicateTracker(existing []catalog.Product) *duplicateTracker {
	tracker := &duplicateTracker{known: map[string]bool{}}
	for _, product := range existing {
		tracker.Add(product.Name)
	}
	return tracker
}

func (t *duplicateTracker) Add(name string) {
	if cleaned := strings.ToLower(strings.TrimSpace(name)); cleaned != "" {
		t.known[cleaned] = true
	}
}

func (t *duplicateTracker) Check(name string) bool {
	return t.known[strings.ToLower(strings.TrimSpace(name))]
}
