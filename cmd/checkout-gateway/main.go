package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/swnshop/checkout-pipeline/internal/config"
	"github.com/swnshop/checkout-pipeline/internal/discovery"
	"github.com/swnshop/checkout-pipeline/internal/handlers"
	"github.com/swnshop/checkout-pipeline/internal/messaging"
	"github.com/swnshop/checkout-pipeline/internal/models"
	"github.com/swnshop/checkout-pipeline/internal/publisher"
	"github.com/swnshop/checkout-pipeline/internal/queue"
	"github.com/swnshop/checkout-pipeline/internal/router"
)

const (
	serviceName = "checkout-gateway"
	serviceID   = "checkout-gateway-1"
	servicePort = 8080
)

func main() {
	cfg := config.Load()

	// Order delivery queue (Redis)
	orderQueue, err := queue.NewRedisQueue(cfg.RedisHost, cfg.RedisPort, cfg.CheckoutQueue, cfg.VisibilityTimeout)
	if err != nil {
		log.Fatalf("Failed to create delivery queue: %v", err)
	}
	defer orderQueue.Close()

	// Audit fan-out (RabbitMQ)
	rabbitMQ, err := messaging.NewRabbitMQ(cfg.RabbitHost, cfg.RabbitPort, cfg.RabbitUser, cfg.RabbitPassword)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer rabbitMQ.Close()

	auditPublisher, err := publisher.NewAuditPublisher(rabbitMQ)
	if err != nil {
		log.Fatalf("Failed to create audit publisher: %v", err)
	}

	// Checkout events fan out to order processing and audit
	checkoutMatch := router.MatchSourceAndType{
		Source:     models.SourceBasketCheckout,
		DetailType: models.DetailTypeCheckoutBasket,
	}
	bus := router.NewBus(
		router.Rule{Matcher: checkoutMatch, Destination: orderQueue},
		router.Rule{Matcher: checkoutMatch, Destination: auditPublisher},
	)

	// Connect to Consul
	consul, err := discovery.NewConsulClient(cfg.ConsulHost, cfg.ConsulPort)
	if err != nil {
		log.Fatalf("Failed to connect to Consul: %v", err)
	}

	// Register with Consul
	err = consul.Register(discovery.ServiceConfig{
		Name: serviceName,
		ID:   serviceID,
		Port: servicePort,
		Tags: []string{"api", "checkout"},
	})
	if err != nil {
		log.Fatalf("Failed to register service: %v", err)
	}

	// Deregister on shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Println("Shutting down...")
		consul.Deregister(serviceID)
		os.Exit(0)
	}()

	checkoutHandler := handlers.NewCheckoutHandler(bus)

	// Setup router
	r := gin.Default()

	r.GET("/health", checkoutHandler.HealthCheck)
	r.POST("/checkout", checkoutHandler.Checkout)

	// Start server
	log.Printf("🚀 %s starting on http://localhost:%d", serviceName, servicePort)
	log.Println("   Routing checkout events to order and audit queues")
	r.Run(fmt.Sprintf(":%d", servicePort))
}
