package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/swnshop/checkout-pipeline/internal/cache"
	"github.com/swnshop/checkout-pipeline/internal/models"
)

// CachedOrderRepository wraps OrderRepository with a Redis read cache for
// per-user order lists. Writes go straight through and invalidate the
// affected user's cached list.
type CachedOrderRepository struct {
	repo  *OrderRepository
	cache *cache.RedisCache
}

func NewCachedOrderRepository(repo *OrderRepository, cache *cache.RedisCache) *CachedOrderRepository {
	return &CachedOrderRepository{
		repo:  repo,
		cache: cache,
	}
}

func userOrdersKey(userName string) string {
	return fmt.Sprintf("orders:user:%s", userName)
}

// CreateIfAbsent persists through the underlying repository and invalidates
// the user's cached order list when a row was actually created.
func (r *CachedOrderRepository) CreateIfAbsent(ctx context.Context, order *models.Order) (bool, error) {
	created, err := r.repo.CreateIfAbsent(order)
	if err != nil {
		return false, err
	}

	if created {
		if err := r.cache.Delete(ctx, userOrdersKey(order.UserName)); err != nil {
			log.Printf("⚠️ Failed to invalidate cache for %s: %v", order.UserName, err)
		}
	}

	return created, nil
}

// GetByUser returns a user's orders, serving from cache when possible.
func (r *CachedOrderRepository) GetByUser(ctx context.Context, userName string) ([]models.Order, error) {
	cacheKey := userOrdersKey(userName)

	// Try cache first
	var orders []models.Order
	err := r.cache.Get(ctx, cacheKey, &orders)
	if err == nil {
		log.Printf("📦 Cache HIT: orders for %s", userName)
		return orders, nil
	}

	if err != redis.Nil {
		log.Printf("⚠️ Cache error: %v", err)
	}

	// Cache miss - get from database
	log.Printf("💾 Cache MISS: orders for %s - fetching from DB", userName)
	orders, err = r.repo.GetByUser(userName)
	if err != nil {
		return nil, err
	}

	// Store in cache
	if err := r.cache.Set(ctx, cacheKey, orders); err != nil {
		log.Printf("⚠️ Failed to cache orders: %v", err)
	}

	return orders, nil
}

// GetByUserAndDate is a point lookup; it bypasses the list cache.
func (r *CachedOrderRepository) GetByUserAndDate(ctx context.Context, userName string, orderDate time.Time) (*models.Order, error) {
	return r.repo.GetByUserAndDate(userName, orderDate)
}
