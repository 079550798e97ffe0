package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swnshop/checkout-pipeline/internal/models"
)

type stubOrderReader struct {
	orders []models.Order
}

func (s *stubOrderReader) GetByUser(_ context.Context, userName string) ([]models.Order, error) {
	var matches []models.Order
	for _, o := range s.orders {
		if o.UserName == userName {
			matches = append(matches, o)
		}
	}
	return matches, nil
}

func (s *stubOrderReader) GetByUserAndDate(_ context.Context, userName string, orderDate time.Time) (*models.Order, error) {
	for _, o := range s.orders {
		if o.UserName == userName && o.OrderDate.Equal(orderDate) {
			return &o, nil
		}
	}
	return nil, nil
}

func newOrderServer(reader OrderReader) *gin.Engine {
	gin.SetMode(gin.TestMode)

	h := NewOrderHandler(reader)
	r := gin.New()
	r.GET("/orders/:userName", h.ListUserOrders)
	return r
}

func swnOrders() *stubOrderReader {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return &stubOrderReader{orders: []models.Order{
		{ID: 1, UserName: "swn", OrderDate: base, TotalPrice: 25.0},
		{ID: 2, UserName: "swn", OrderDate: base.Add(24 * time.Hour), TotalPrice: 10.0},
		{ID: 3, UserName: "swn", OrderDate: base.Add(48 * time.Hour), TotalPrice: 99.0},
	}}
}

func TestListUserOrders(t *testing.T) {
	r := newOrderServer(swnOrders())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/orders/swn", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var orders []models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &orders))
	require.Len(t, orders, 3)
	assert.Equal(t, 1, orders[0].ID)
	assert.Equal(t, 3, orders[2].ID)
}

func TestListUserOrdersEmpty(t *testing.T) {
	r := newOrderServer(swnOrders())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/orders/nobody", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestListUserOrdersWithDateFilter(t *testing.T) {
	r := newOrderServer(swnOrders())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/orders/swn?orderDate=2024-03-02T12:00:00Z", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var order models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	assert.Equal(t, 2, order.ID)
	assert.InDelta(t, 10.0, order.TotalPrice, 0.0001)
}

func TestListUserOrdersDateNotFound(t *testing.T) {
	r := newOrderServer(swnOrders())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/orders/swn?orderDate=2019-01-01T00:00:00Z", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListUserOrdersBadDate(t *testing.T) {
	r := newOrderServer(swnOrders())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/orders/swn?orderDate=yesterday", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
