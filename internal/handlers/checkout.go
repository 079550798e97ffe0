package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/swnshop/checkout-pipeline/internal/models"
	"github.com/swnshop/checkout-pipeline/internal/router"
)

type CheckoutHandler struct {
	bus *router.Bus
}

func NewCheckoutHandler(bus *router.Bus) *CheckoutHandler {
	return &CheckoutHandler{bus: bus}
}

// HealthCheck returns server status
func (h *CheckoutHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "checkout-gateway"})
}

// Checkout accepts a checkout event from the basket service and publishes it
// onto the event bus. A publish is not atomic across destinations: partial
// failures are reported per destination without rolling back successes.
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var event models.CheckoutEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.bus.Publish(c.Request.Context(), &event)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !result.Ok() {
		c.JSON(http.StatusBadGateway, gin.H{
			"matched":  result.Matched,
			"failures": result.Failures,
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"matched": result.Matched})
}
