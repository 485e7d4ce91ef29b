package domain

import (
	"time"
)

// Order represents one purchase event
type Order struct {
	ID         int64        `json:"id" db:"id"`
	UserID     int64        `json:"user_id" db:"user_id"`
	TelegramID int64        `json:"telegram_id" db:"telegram_id"`
	CreatedAt  time.Time    `json:"created_at" db:"created_at"`
	Items      []*OrderItem `json:"items"`
}

// OrderItem references a product bought within an order
type OrderItem struct {
	ID        int64    `json:"id" db:"id"`
	OrderID   int64    `json:"order_id" db:"order_id"`
	ProductID int64    `json:"product_id" db:"product_id"`
	Quantity  int      `json:"quantity" db:"quantity"`
	Product   *Product `json:"product,omitempty"`
}
