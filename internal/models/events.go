package models

import (
	"errors"
	"fmt"
)

// Event source and detail-type values for the checkout domain.
const (
	SourceBasketCheckout     = "basket.checkoutbasket"
	DetailTypeCheckoutBasket = "CheckoutBasket"
)

// CheckoutEvent is published by the basket service when a user checks out.
// The envelope carries the origin (Source) and a discriminator (DetailType)
// so routing rules can match without inspecting the payload.
type CheckoutEvent struct {
	Source     string                `json:"source"`
	DetailType string                `json:"detail_type"`
	Detail     *CheckoutBasketDetail `json:"detail"`
}

// CheckoutBasketDetail is the payload of a CheckoutBasket event: the customer
// identity, contact details, and the basket line items being checked out.
type CheckoutBasketDetail struct {
	UserName string `json:"user_name"`
	// TotalPrice as reported by the basket is advisory only; the order
	// consumer recomputes the total from the line items.
	TotalPrice    float64      `json:"total_price"`
	FirstName     string       `json:"first_name"`
	LastName      string       `json:"last_name"`
	Email         string       `json:"email"`
	Address       string       `json:"address"`
	PaymentMethod string       `json:"payment_method"`
	CardInfo      string       `json:"card_info"`
	Items         []BasketItem `json:"items"`
}

type BasketItem struct {
	ProductID   int     `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	Color       string  `json:"color"`
}

// ValidateEnvelope checks that the routable parts of the event are present.
// The event bus rejects events failing this check before rule evaluation.
func (e *CheckoutEvent) ValidateEnvelope() error {
	if e.Source == "" {
		return errors.New("event source is required")
	}
	if e.DetailType == "" {
		return errors.New("event detail type is required")
	}
	if e.Detail == nil {
		return errors.New("event detail is required")
	}
	return nil
}

// Validate checks the full event, envelope and payload. The order consumer
// refuses to process events failing this check.
func (e *CheckoutEvent) Validate() error {
	if err := e.ValidateEnvelope(); err != nil {
		return err
	}
	if e.Detail.UserName == "" {
		return errors.New("detail.user_name is required")
	}
	if len(e.Detail.Items) == 0 {
		return errors.New("detail.items must not be empty")
	}
	for i, item := range e.Detail.Items {
		if item.Quantity <= 0 {
			return fmt.Errorf("detail.items[%d].quantity must be positive", i)
		}
		if item.Price < 0 {
			return fmt.Errorf("detail.items[%d].price must not be negative", i)
		}
	}
	return nil
}

// ComputeTotal sums quantity * price over the basket line items.
func (d *CheckoutBasketDetail) ComputeTotal() float64 {
	var total float64
	for _, item := range d.Items {
		total += float64(item.Quantity) * item.Price
	}
	return total
}
