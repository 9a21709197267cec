package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"shoponline/internal/catalog"
)

// PostgresRepository implements Repository backed by PostgreSQL.
type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// PlaceOrder runs the whole checkout in one transaction. Product rows are
// locked before their stock is checked so two concurrent checkouts cannot
// both consume the last unit, and each line's name and price are re-read
// from the locked row so the snapshot cannot carry a stale cached price.
func (r *PostgresRepository) PlaceOrder(ctx context.Context, order *Order, cartID uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Lock rows in a stable order so overlapping checkouts cannot deadlock.
	sort.Slice(order.Items, func(i, j int) bool {
		return order.Items[i].ProductID.String() < order.Items[j].ProductID.String()
	})

	order.TotalPrice = 0
	for i := range order.Items {
		item := &order.Items[i]
		var row struct {
			Name  string  `db:"name"`
			Price float64 `db:"price"`
			Stock int     `db:"stock"`
		}
		err := tx.GetContext(ctx, &row,
			`SELECT name, price, stock FROM products WHERE id = $1 FOR UPDATE`, item.ProductID)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("product %s: %w", item.ProductID, catalog.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("locking product %s: %w", item.ProductID, err)
		}
		if row.Stock < item.Quantity {
			return fmt.Errorf("product %s: %w", item.ProductID, catalog.ErrInsufficientStock)
		}
		item.ProductName = row.Name
		item.UnitPrice = row.Price
		item.TotalPrice = row.Price * float64(item.Quantity)
		order.TotalPrice += item.TotalPrice

		if _, err := tx.ExecContext(ctx,
			`UPDATE products SET stock = stock - $2, updated_at = now() WHERE id = $1`,
			item.ProductID, item.Quantity); err != nil {
			return fmt.Errorf("decrementing stock for %s: %w", item.ProductID, err)
		}
	}

	if _, err := tx.NamedExecContext(ctx, `
		INSERT INTO orders (id, user_id, total_price, created_at)
		VALUES (:id, :user_id, :total_price, :created_at)`,
		order); err != nil {
		return fmt.Errorf("inserting order: %w", err)
	}
	for _, item := range order.Items {
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, product_name, unit_price, quantity, total_price)
			VALUES (:id, :order_id, :product_id, :product_name, :unit_price, :quantity, :total_price)`,
			item); err != nil {
			return fmt.Errorf("inserting order item: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("clearing cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing order: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	orders := []Order{}
	err := r.db.SelectContext(ctx, &orders, `
		SELECT id, user_id, total_price, created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("selecting orders: %w", err)
	}

	for i := range orders {
		items, err := r.orderItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID, orderID uuid.UUID) (Order, error) {
	var order Order
	err := r.db.GetContext(ctx, &order, `
		SELECT id, user_id, total_price, created_at
		FROM orders
		WHERE id = $1 AND user_id = $2`,
		orderID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, fmt.Errorf("selecting order: %w", err)
	}

	items, err := r.orderItems(ctx, order.ID)
	if err != nil {
		return Order{}, err
	}
	order.Items = items
	return order, nil
}

func (r *PostgresRepository) orderItems(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	items := []OrderItem{}
	err := r.db.SelectContext(ctx, &items, `
		SELECT id, order_id, product_id, product_name, unit_price, quantity, total_price
		FROM order_items
		WHERE order_id = $1
		ORDER BY product_name`,
		orderID)
	if err != nil {
		return nil, fmt.Errorf("selecting order items: %w", err)
	}
	return items, nil
}
