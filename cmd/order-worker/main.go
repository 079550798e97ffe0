package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/swnshop/checkout-pipeline/internal/cache"
	"github.com/swnshop/checkout-pipeline/internal/config"
	"github.com/swnshop/checkout-pipeline/internal/consumer"
	"github.com/swnshop/checkout-pipeline/internal/db"
	"github.com/swnshop/checkout-pipeline/internal/queue"
)

func main() {
	cfg := config.Load()

	// Connect to PostgreSQL
	database, err := db.NewPostgresDB(cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDB)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Connect to Redis (read-model cache)
	redisCache, err := cache.NewRedisCache(cfg.RedisHost, cfg.RedisPort, cfg.CacheTTL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisCache.Close()

	// Delivery queue
	orderQueue, err := queue.NewRedisQueue(cfg.RedisHost, cfg.RedisPort, cfg.CheckoutQueue, cfg.VisibilityTimeout)
	if err != nil {
		log.Fatalf("Failed to create delivery queue: %v", err)
	}
	defer orderQueue.Close()

	// Create repositories
	orderRepo := db.NewOrderRepository(database)
	cachedRepo := db.NewCachedOrderRepository(orderRepo, redisCache)

	orderConsumer := consumer.NewOrderConsumer(orderQueue, cachedRepo, cfg.MaxMessages, cfg.PollWaitTime)

	// Stop workers on shutdown; claimed messages redeliver after the
	// visibility timeout.
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Println("Shutting down...")
		cancel()
	}()

	log.Printf("🚀 order-worker starting with %d workers on queue %s", cfg.Workers, cfg.CheckoutQueue)
	orderConsumer.Run(ctx, cfg.Workers)
}
