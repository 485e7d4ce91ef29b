package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"socks-bot/internal/domain"
)

var (
	ErrOutOfStock = errors.New("product is out of stock")
)

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	PlaceOrder(ctx context.Context, userID, productID int64, quantity int) (*domain.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]*domain.Order, error)
	ListAll(ctx context.Context) ([]*domain.Order, error)
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

// PlaceOrder decrements stock and records an order with a single item in
// one transaction. The decrement is conditional on enough stock remaining,
// so concurrent buyers of the last unit cannot both succeed.
func (r *orderRepository) PlaceOrder(ctx context.Context, userID, productID int64, quantity int) (*domain.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE products SET stock = stock - $2
		WHERE id = $1 AND stock >= $2
	`, productID, quantity)
	if err != nil {
		return nil, fmt.Errorf("failed to decrement stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		var exists bool
		err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("failed to check product: %w", err)
		}
		if !exists {
			return nil, ErrProductNotFound
		}
		return nil, ErrOutOfStock
	}

	order := &domain.Order{UserID: userID}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (user_id) VALUES ($1)
		RETURNING id, created_at, (SELECT telegram_id FROM users WHERE id = $1)
	`, userID).Scan(&order.ID, &order.CreatedAt, &order.TelegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	item := &domain.OrderItem{OrderID: order.ID, ProductID: productID, Quantity: quantity}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO order_items (order_id, product_id, quantity) VALUES ($1, $2, $3)
		RETURNING id
	`, order.ID, productID, quantity).Scan(&item.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create order item: %w", err)
	}
	order.Items = []*domain.OrderItem{item}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}

	return order, nil
}

const orderListQuery = `
	SELECT o.id, o.user_id, u.telegram_id, o.created_at,
	       i.id, i.product_id, i.quantity,
	       p.id, p.name, p.size, p.material, p.color, p.price, p.stock
	FROM orders o
	JOIN users u ON u.id = o.user_id
	JOIN order_items i ON i.order_id = o.id
	JOIN products p ON p.id = i.product_id
`

// ListByUser returns a user's orders, newest first, with their items
func (r *orderRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.Order, error) {
	return r.list(ctx, orderListQuery+`
		WHERE o.user_id = $1
		ORDER BY o.created_at DESC, o.id DESC, i.id
	`, userID)
}

// ListAll returns every order, newest first, with their items
func (r *orderRepository) ListAll(ctx context.Context) ([]*domain.Order, error) {
	return r.list(ctx, orderListQuery+`
		ORDER BY o.created_at DESC, o.id DESC, i.id
	`)
}

func (r *orderRepository) list(ctx context.Context, query string, args ...interface{}) ([]*domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	var current *domain.Order
	for rows.Next() {
		order := &domain.Order{}
		item := &domain.OrderItem{Product: &domain.Product{}}
		err := rows.Scan(
			&order.ID,
			&order.UserID,
			&order.TelegramID,
			&order.CreatedAt,
			&item.ID,
			&item.ProductID,
			&item.Quantity,
			&item.Product.ID,
			&item.Product.Name,
			&item.Product.Size,
			&item.Product.Material,
			&item.Product.Color,
			&item.Product.Price,
			&item.Product.Stock,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}

		// rows arrive grouped by order
		if current == nil || current.ID != order.ID {
			current = order
			orders = append(orders, current)
		}
		item.OrderID = current.ID
		current.Items = append(current.Items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}
