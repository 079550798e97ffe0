package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/swnshop/checkout-pipeline/internal/models"
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(database *PostgresDB) *OrderRepository {
	return &OrderRepository{db: database.Conn}
}

// CreateIfAbsent inserts the order and its items unless an order with the
// same idempotency key already exists. It reports whether a row was created;
// (false, nil) means a previous attempt already persisted this checkout,
// which callers treat as success.
func (r *OrderRepository) CreateIfAbsent(order *models.Order) (bool, error) {
	// Start transaction
	tx, err := r.db.Begin()
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	orderQuery := `
		INSERT INTO orders (user_name, order_date, total_price, first_name, last_name, email, address, payment_method, card_info, idempotency_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (idempotency_key) DO NOTHING
		RETURNING id
	`
	err = tx.QueryRow(orderQuery,
		order.UserName,
		order.OrderDate,
		order.TotalPrice,
		order.FirstName,
		order.LastName,
		order.Email,
		order.Address,
		order.PaymentMethod,
		order.CardInfo,
		order.IdempotencyKey,
	).Scan(&order.ID)
	if err == sql.ErrNoRows {
		// conflict on idempotency key: this checkout is already persisted
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (order_id, product_id, product_name, quantity, price, color)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
		err = tx.QueryRow(itemQuery,
			order.ID,
			order.Items[i].ProductID,
			order.Items[i].ProductName,
			order.Items[i].Quantity,
			order.Items[i].Price,
			order.Items[i].Color,
		).Scan(&order.Items[i].ID)
		if err != nil {
			return false, fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	// Commit transaction
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return true, nil
}

// GetByUser returns all of a user's orders with items, ordered by order date.
func (r *OrderRepository) GetByUser(userName string) ([]models.Order, error) {
	query := `
		SELECT id, user_name, order_date, total_price, first_name, last_name, email, address, payment_method, card_info
		FROM orders
		WHERE user_name = $1
		ORDER BY order_date
	`

	rows, err := r.db.Query(query, userName)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var o models.Order
		err := rows.Scan(&o.ID, &o.UserName, &o.OrderDate, &o.TotalPrice,
			&o.FirstName, &o.LastName, &o.Email, &o.Address, &o.PaymentMethod, &o.CardInfo)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read orders: %w", err)
	}

	for i := range orders {
		items, err := r.itemsForOrder(orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}

	return orders, nil
}

// GetByUserAndDate returns the single order matching the business key, or
// nil when absent.
func (r *OrderRepository) GetByUserAndDate(userName string, orderDate time.Time) (*models.Order, error) {
	query := `
		SELECT id, user_name, order_date, total_price, first_name, last_name, email, address, payment_method, card_info
		FROM orders
		WHERE user_name = $1 AND order_date = $2
	`

	var o models.Order
	err := r.db.QueryRow(query, userName, orderDate).
		Scan(&o.ID, &o.UserName, &o.OrderDate, &o.TotalPrice,
			&o.FirstName, &o.LastName, &o.Email, &o.Address, &o.PaymentMethod, &o.CardInfo)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	items, err := r.itemsForOrder(o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items

	return &o, nil
}

func (r *OrderRepository) itemsForOrder(orderID int) ([]models.OrderItem, error) {
	query := `SELECT id, order_id, product_id, product_name, quantity, price, color FROM order_items WHERE order_id = $1`

	rows, err := r.db.Query(query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &item.Quantity, &item.Price, &item.Color)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}
