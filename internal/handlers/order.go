package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/swnshop/checkout-pipeline/internal/models"
)

// OrderReader is the read side of the order store served by this API.
type OrderReader interface {
	GetByUser(ctx context.Context, userName string) ([]models.Order, error)
	GetByUserAndDate(ctx context.Context, userName string, orderDate time.Time) (*models.Order, error)
}

type OrderHandler struct {
	repo OrderReader
}

func NewOrderHandler(repo OrderReader) *OrderHandler {
	return &OrderHandler{repo: repo}
}

// HealthCheck returns server status
func (h *OrderHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "order-api"})
}

// ListUserOrders returns a user's orders ordered by order date. An optional
// orderDate query parameter (RFC 3339) narrows it to a point lookup.
func (h *OrderHandler) ListUserOrders(c *gin.Context) {
	userName := c.Param("userName")

	if raw := c.Query("orderDate"); raw != "" {
		orderDate, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid orderDate, expected RFC 3339"})
			return
		}

		order, err := h.repo.GetByUserAndDate(c.Request.Context(), userName, orderDate)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if order == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}

		c.JSON(http.StatusOK, order)
		return
	}

	orders, err := h.repo.GetByUser(c.Request.Context(), userName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}

	c.JSON(http.StatusOK, orders)
}
