package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// PostgresRepository persists products to a Postgres database.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository constructs a repository backed by sqlx.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const baseSelect = `
SELECT id, name, category, image_url, price, stock, created_at, updated_at
FROM products
`

// Create inserts a new row and returns the stored representation.
func (r *PostgresRepository) Create(ctx context.Context, product Product) (Product, error) {
	const insert = `
		INSERT INTO products (id, name, category, image_url, price, stock, created_at, updated_at)
		VALUES (:id, :name, :category, :image_url, :price, :stock, :created_at, :updated_at)
	`

	if _, err := r.db.NamedExecContext(ctx, insert, product); err != nil {
		return Product{}, fmt.Errorf("insert product: %w", err)
	}

	return product, nil
}

// Get retrieves a row by primary key.
func (r *PostgresRepository) Get(ctx context.Context, id uuid.UUID) (Product, error) {
	var product Product
	if err := r.db.GetContext(ctx, &product, baseSelect+"WHERE id = $1", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

// List returns products, optionally filtered by name or category substring.
func (r *PostgresRepository) List(ctx context.Context, opts ListOptions) ([]Product, error) {
	query := baseSelect
	var args []any
	clause := "WHERE"

	if opts.Name != "" {
		args = append(args, "%"+opts.Name+"%")
		query += fmt.Sprintf("%s name ILIKE $%d\n", clause, len(args))
		clause = "AND"
	}
	if opts.Category != "" {
		args = append(args, "%"+opts.Category+"%")
		query += fmt.Sprintf("%s category ILIKE $%d\n", clause, len(args))
	}
	query += "ORDER BY created_at DESC, id"

	products := []Product{}
	if err := r.db.SelectContext(ctx, &products, query, args...); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// Update replaces the mutable columns of an existing row.
func (r *PostgresRepository) Update(ctx context.Context, product Product) (Product, error) {
	const update = `
		UPDATE products
		SET name = :name, category = :category, image_url = :image_url,
		    price = :price, stock = :stock, updated_at = :updated_at
		WHERE id = :id
	`

	result, err := r.db.NamedExecContext(ctx, update, product)
	if err != nil {
		return Product{}, fmt.Errorf("update product: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return Product{}, err
	}
	if affected == 0 {
		return Product{}, ErrNotFound
	}

	return product, nil
}

// Delete removes a row by primary key.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DecrementStock subtracts quantity from the product's stock in a single
// guarded statement, so concurrent decrements cannot drive stock negative.
func (r *PostgresRepository) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) error {
	const query = `
		UPDATE products
		SET stock = stock - $2, updated_at = NOW()
		WHERE id = $1 AND stock >= $2
	`

	result, err := r.db.ExecContext(ctx, query, id, quantity)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		if _, err := r.Get(ctx, id); err != nil {
			return err
		}
		return ErrInsufficientStock
	}
	return nil
}

// IncrementStock adds quantity back to the product's stock.
func (r *PostgresRepository) IncrementStock(ctx context.Context, id uuid.UUID, quantity int) error {
	const query = `
		UPDATE products
		SET stock = stock + $2, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, quantity)
	if err != nil {
		return fmt.Errorf("increment stock: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
