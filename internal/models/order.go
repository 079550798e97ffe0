package models

import "time"

// Order is the persisted result of processing one checkout event. The
// business key is (UserName, OrderDate); IdempotencyKey is the uniqueness
// anchor that keeps redelivered messages from creating duplicates.
type Order struct {
	ID             int         `json:"id"`
	UserName       string      `json:"user_name"`
	OrderDate      time.Time   `json:"order_date"`
	TotalPrice     float64     `json:"total_price"`
	FirstName      string      `json:"first_name"`
	LastName       string      `json:"last_name"`
	Email          string      `json:"email"`
	Address        string      `json:"address"`
	PaymentMethod  string      `json:"payment_method"`
	CardInfo       string      `json:"card_info"`
	IdempotencyKey string      `json:"-"`
	Items          []OrderItem `json:"items"`
}

type OrderItem struct {
	ID          int     `json:"id"`
	OrderID     int     `json:"order_id"`
	ProductID   int     `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	Color       string  `json:"color"`
}
