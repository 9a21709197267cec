package importer

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"shoponline/internal/catalog"
)

type stubStore struct {
	products  []catalog.Product
	createErr error
	listed    bool
}

func (s *stubStore) Create(ctx context.Context, input catalog.CreateProductInput) (catalog.Product, error) {
	if s.createErr != nil {
		return catalog.Product{}, s.createErr
	}
	product := catalog.Product{
		ID:       uuid.New(),
		Name:     input.Name,
		Category: input.Category,
		ImageURL: input.ImageURL,
		Price:    input.Price,
		Stock:    input.Stock,
	}
	s.products = append(s.products, product)
	return product, nil
}

func (s *stubStore) List(ctx context.Context, opts catalog.ListOptions) ([]catalog.Product, error) {
	s.listed = true
	copies := make([]catalog.Product, len(s.products))
	copy(copies, s.products)
	return copies, nil
}

func TestCSVImporter_ImportCreatesProductsAndSkipsDuplicates(t *testing.T) {
	store := &stubStore{products: []catalog.Product{{Name: "Existing Product"}}}
	importer := NewCSVImporter(store)
	csv := "name,category,image,price,stock\n" +
		"New Product,electronics,https://img.example/p.png,19.99,10\n" +
		"Existing Product,electronics,,5.00,3\n"
	summary, err := importer.Import(context.Background(), bytes.NewBufferString(csv))
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if summary.Imported != 1 {
		t.Fatalf("expected 1 import, got %d", summary.Imported)
	}
	if len(summary.SkippedDuplicates) != 1 {
		t.Fatalf("expected 1 skipped record, got %d", len(summary.SkippedDuplicates))
	}
	if !store.listed {
		t.Fatal("expected existing products to be listed for duplicate detection")
	}
}

func TestCSVImporter_RecordsRowErrors(t *testing.T) {
	store := &stubStore{}
	importer := NewCSVImporter(store)
	csv := "name,category,image,price,stock\n" +
		",electronics,,19.99,10\n" +
		"Bad Price,electronics,,abc,10\n" +
		"Negative Stock,electronics,,5.00,-1\n" +
		"Good,electronics,,5.00,1\n"
	summary, err := importer.Import(context.Background(), bytes.NewBufferString(csv))
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if summary.TotalRows != 4 {
		t.Fatalf("expected 4 rows, got %d", summary.TotalRows)
	}
	if summary.Imported != 1 {
		t.Fatalf("expected 1 import, got %d", summary.Imported)
	}
	if len(summary.Failed) != 3 {
		t.Fatalf("expected 3 failed records, got %d", len(summary.Failed))
	}
}

func TestCSVImporter_RejectsMissingColumns(t *testing.T) {
	importer := NewCSVImporter(&stubStore{})
	csv := "name,category\nWidget,misc\n"
	_, err := importer.Import(context.Background(), bytes.NewBufferString(csv))
	if !errors.Is(err, ErrInvalidCSV) {
		t.Fatalf("expected ErrInvalidCSV, got %v", err)
	}
}

func TestCSVImporter_RejectsEmptyFile(t *testing.T) {
	importer := NewCSVImporter(&stubStore{})
	_, err := importer.Import(context.Background(), bytes.NewBufferString(""))
	if !errors.Is(err, ErrInvalidCSV) {
		t.Fatalf("expected ErrInvalidCSV, got %v", err)
	}
}

func TestCSVImporter_DuplicateWithinUpload(t *testing.T) {
	store := &stubStore{}
	importer := NewCSVImporter(store)
	csv := "name,category,image,price,stock\n" +
		"Widget,misc,,1.00,5\n" +
		"widget,misc,,1.00,5\n"
	summary, err := importer.Import(context.Background(), bytes.NewBufferString(csv))
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if summary.Imported != 1 {
		t.Fatalf("expected 1 import, got %d", summary.Imported)
	}
	if len(summary.SkippedDuplicates) != 1 {
		t.Fatalf("expected 1 skipped record, got %d", len(summary.SkippedDuplicates))
	}
}
