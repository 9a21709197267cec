package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// PostgresRepository implements Repository backed by PostgreSQL.
type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// EnsureCart returns the user's cart id, creating the cart row on first use.
func (r *PostgresRepository) EnsureCart(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.db.GetContext(ctx, &id, `SELECT id FROM carts WHERE user_id = $1`, userID)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, fmt.Errorf("selecting cart: %w", err)
	}

	id = uuid.New()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO carts (id, user_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO NOTHING`,
		id, userID, time.Now())
	if err != nil {
		return uuid.Nil, fmt.Errorf("inserting cart: %w", err)
	}

	// A concurrent request may have won the insert; read back the winner.
	if err := r.db.GetContext(ctx, &id, `SELECT id FROM carts WHERE user_id = $1`, userID); err != nil {
		return uuid.Nil, fmt.Errorf("selecting cart after insert: %w", err)
	}
	return id, nil
}

func (r *PostgresRepository) Items(ctx context.Context, cartID uuid.UUID) ([]Item, error) {
	items := []Item{}
	err := r.db.SelectContext(ctx, &items, `
		SELECT id, cart_id, product_id, quantity, created_at, updated_at
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY created_at`,
		cartID)
	if err != nil {
		return nil, fmt.Errorf("selecting cart items: %w", err)
	}
	return items, nil
}

func (r *PostgresRepository) GetItem(ctx context.Context, cartID, itemID uuid.UUID) (Item, error) {
	var item Item
	err := r.db.GetContext(ctx, &item, `
		SELECT id, cart_id, product_id, quantity, created_at, updated_at
		FROM cart_items
		WHERE cart_id = $1 AND id = $2`,
		cartID, itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, ErrItemNotFound
	}
	if err != nil {
		return Item{}, fmt.Errorf("selecting cart item: %w", err)
	}
	return item, nil
}

func (r *PostgresRepository) FindItemByProduct(ctx context.Context, cartID, productID uuid.UUID) (*Item, error) {
	var item Item
	err := r.db.GetContext(ctx, &item, `
		SELECT id, cart_id, product_id, quantity, created_at, updated_at
		FROM cart_items
		WHERE cart_id = $1 AND product_id = $2`,
		cartID, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("selecting cart item by product: %w", err)
	}
	return &item, nil
}

func (r *PostgresRepository) CreateItem(ctx context.Context, item Item) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO cart_items (id, cart_id, product_id, quantity, created_at, updated_at)
		VALUES (:id, :cart_id, :product_id, :quantity, :created_at, :updated_at)`,
		item)
	if err != nil {
		return fmt.Errorf("inserting cart item: %w", err)
	}
	return nil
}

func (r *PostgresRepository) UpdateItemQuantity(ctx context.Context, cartID, itemID uuid.UUID, quantity int) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE cart_items
		SET quantity = $3, updated_at = $4
		WHERE cart_id = $1 AND id = $2`,
		cartID, itemID, quantity, time.Now())
	if err != nil {
		return fmt.Errorf("updating cart item: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *PostgresRepository) RemoveItem(ctx context.Context, cartID, itemID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE cart_id = $1 AND id = $2`,
		cartID, itemID)
	if err != nil {
		return fmt.Errorf("deleting cart item: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *PostgresRepository) Clear(ctx context.Context, cartID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("clearing cart: %w", err)
	}
	return nil
}
