package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/swnshop/checkout-pipeline/internal/cache"
	"github.com/swnshop/checkout-pipeline/internal/config"
	"github.com/swnshop/checkout-pipeline/internal/db"
	"github.com/swnshop/checkout-pipeline/internal/discovery"
	"github.com/swnshop/checkout-pipeline/internal/handlers"
)

const (
	serviceName = "order-api"
	serviceID   = "order-api-1"
	servicePort = 8082
)

func main() {
	cfg := config.Load()

	// Connect to PostgreSQL
	database, err := db.NewPostgresDB(cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDB)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Connect to Redis
	redisCache, err := cache.NewRedisCache(cfg.RedisHost, cfg.RedisPort, cfg.CacheTTL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisCache.Close()

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
		Tags: []string{"api", "orders"},
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

	// Create repositories
	orderRepo := db.NewOrderRepository(database)
	cachedRepo := db.NewCachedOrderRepository(orderRepo, redisCache)

	// Create handler
	orderHandler := handlers.NewOrderHandler(cachedRepo)

	// Setup router
	r := gin.Default()

	r.GET("/health", orderHandler.HealthCheck)
	r.GET("/orders/:userName", orderHandler.ListUserOrders)

	// Start server
	log.Printf("🚀 %s starting on http://localhost:%d", serviceName, servicePort)
	log.Println("   Registered with Consul")
	r.Run(fmt.Sprintf(":%d", servicePort))
}
