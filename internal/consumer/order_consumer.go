package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/swnshop/checkout-pipeline/internal/models"
	"github.com/swnshop/checkout-pipeline/internal/queue"
)

// Processing failure kinds. Both leave the message unacknowledged so the
// queue's visibility timeout drives the retry.
var (
	ErrMalformed    = errors.New("malformed payload")
	ErrInvalidEvent = errors.New("invalid checkout event")
)

// OrderStore is the persistence surface the consumer writes through.
type OrderStore interface {
	CreateIfAbsent(ctx context.Context, order *models.Order) (bool, error)
}

// OrderConsumer drains checkout events from the delivery queue and persists
// them as orders. Multiple instances may run against the same queue; the
// store's conditional write is the only concurrency control.
type OrderConsumer struct {
	queue       queue.Queue
	store       OrderStore
	maxMessages int
	waitTime    time.Duration
}

func NewOrderConsumer(q queue.Queue, store OrderStore, maxMessages int, waitTime time.Duration) *OrderConsumer {
	return &OrderConsumer{
		queue:       q,
		store:       store,
		maxMessages: maxMessages,
		waitTime:    waitTime,
	}
}

// Run polls and processes until the context is cancelled. Claimed but
// unfinished messages are abandoned on shutdown and simply redeliver.
func (c *OrderConsumer) Run(ctx context.Context, workers int) {
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			c.runWorker(ctx, worker)
		}(i)
	}

	wg.Wait()
}

func (c *OrderConsumer) runWorker(ctx context.Context, worker int) {
	log.Printf("👂 Worker %d polling queue %s", worker, c.queue.Name())

	for {
		if ctx.Err() != nil {
			log.Printf("🛑 Worker %d stopping", worker)
			return
		}

		messages, err := c.queue.Poll(ctx, c.maxMessages, c.waitTime)
		if err != nil {
			if ctx.Err() != nil {
				log.Printf("🛑 Worker %d stopping", worker)
				return
			}
			log.Printf("❌ Worker %d poll failed: %v", worker, err)
			continue
		}

		for _, msg := range messages {
			c.Handle(ctx, msg)
		}
	}
}

// Handle runs one message through the processing state machine and
// acknowledges it only after the order is durably persisted.
func (c *OrderConsumer) Handle(ctx context.Context, msg queue.Message) {
	order, err := c.Process(ctx, msg)
	if err != nil {
		// no ack; the visibility timeout drives the retry
		log.Printf("❌ Message %s (delivery %d) failed: %v", msg.ID, msg.DeliveryCount, err)
		return
	}

	if err := c.queue.Acknowledge(ctx, msg.ID); err != nil && !errors.Is(err, queue.ErrNotFound) {
		log.Printf("⚠️ Failed to acknowledge message %s: %v", msg.ID, err)
		return
	}

	log.Printf("✅ Order for %s persisted (total $%.2f, message %s)", order.UserName, order.TotalPrice, msg.ID)
}

// Process turns one queue message into a persisted order. The message ID
// doubles as the idempotency key: it is assigned once at enqueue and stable
// across redeliveries, so reprocessing the same message can never create a
// second order.
func (c *OrderConsumer) Process(ctx context.Context, msg queue.Message) (*models.Order, error) {
	var event models.CheckoutEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if err := event.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}

	detail := event.Detail
	order := &models.Order{
		UserName:       detail.UserName,
		OrderDate:      time.Now().UTC(),
		TotalPrice:     detail.ComputeTotal(),
		FirstName:      detail.FirstName,
		LastName:       detail.LastName,
		Email:          detail.Email,
		Address:        detail.Address,
		PaymentMethod:  detail.PaymentMethod,
		CardInfo:       detail.CardInfo,
		IdempotencyKey: msg.ID,
	}
	for _, item := range detail.Items {
		order.Items = append(order.Items, models.OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       item.Price,
			Color:       item.Color,
		})
	}

	created, err := c.store.CreateIfAbsent(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("failed to persist order: %w", err)
	}
	if !created {
		log.Printf("♻️ Message %s already processed, skipping", msg.ID)
	}

	return order, nil
}
