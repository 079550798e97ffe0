package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCheckoutEvent() *CheckoutEvent {
	return &CheckoutEvent{
		Source:     SourceBasketCheckout,
		DetailType: DetailTypeCheckoutBasket,
		Detail: &CheckoutBasketDetail{
			UserName: "swn",
			Email:    "swn@example.com",
			Items: []BasketItem{
				{ProductID: 1, ProductName: "Gloves", Quantity: 2, Price: 10.0, Color: "black"},
				{ProductID: 2, ProductName: "Cap", Quantity: 1, Price: 5.0, Color: "red"},
			},
		},
	}
}

func TestComputeTotal(t *testing.T) {
	event := validCheckoutEvent()

	assert.InDelta(t, 25.0, event.Detail.ComputeTotal(), 0.0001)
}

func TestComputeTotalEmptyItems(t *testing.T) {
	detail := &CheckoutBasketDetail{}

	assert.Zero(t, detail.ComputeTotal())
}

func TestValidateAcceptsCompleteEvent(t *testing.T) {
	require.NoError(t, validCheckoutEvent().Validate())
}

func TestValidateEnvelope(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CheckoutEvent)
	}{
		{"missing source", func(e *CheckoutEvent) { e.Source = "" }},
		{"missing detail type", func(e *CheckoutEvent) { e.DetailType = "" }},
		{"missing detail", func(e *CheckoutEvent) { e.Detail = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := validCheckoutEvent()
			tt.mutate(event)

			assert.Error(t, event.ValidateEnvelope())
		})
	}
}

func TestValidateRejectsInvalidDetail(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CheckoutEvent)
	}{
		{"missing user name", func(e *CheckoutEvent) { e.Detail.UserName = "" }},
		{"no items", func(e *CheckoutEvent) { e.Detail.Items = nil }},
		{"zero quantity", func(e *CheckoutEvent) { e.Detail.Items[0].Quantity = 0 }},
		{"negative price", func(e *CheckoutEvent) { e.Detail.Items[1].Price = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := validCheckoutEvent()
			tt.mutate(event)

			assert.Error(t, event.Validate())
		})
	}
}
