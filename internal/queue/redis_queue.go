package queue

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const pollInterval = 100 * time.Millisecond

// RedisQueue implements Queue on Redis. Pending message IDs live in a list,
// claimed IDs in a sorted set scored by their visibility deadline, and each
// payload in its own hash together with the delivery counter.
type RedisQueue struct {
	client     *redis.Client
	name       string
	visibility time.Duration
}

func NewRedisQueue(host string, port int, name string, visibility time.Duration) (*RedisQueue, error) {
	client := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%d", host, port),
	})

	// Test connection
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Printf("✅ Connected to Redis (queue: %s)", name)

	return &RedisQueue{
		client:     client,
		name:       name,
		visibility: visibility,
	}, nil
}

// NewRedisQueueWithClient builds a queue on an existing client, used when
// several queues share one connection and in tests.
func NewRedisQueueWithClient(client *redis.Client, name string, visibility time.Duration) *RedisQueue {
	return &RedisQueue{
		client:     client,
		name:       name,
		visibility: visibility,
	}
}

func (q *RedisQueue) Name() string { return q.name }

func (q *RedisQueue) pendingKey() string  { return fmt.Sprintf("queue:%s:pending", q.name) }
func (q *RedisQueue) inflightKey() string { return fmt.Sprintf("queue:%s:inflight", q.name) }
func (q *RedisQueue) messageKey(id string) string {
	return fmt.Sprintf("queue:%s:msg:%s", q.name, id)
}

// Enqueue durably stores the payload and pushes its ID onto the pending list.
func (q *RedisQueue) Enqueue(ctx context.Context, body []byte) (string, error) {
	id := uuid.NewString()

	if err := q.client.HSet(ctx, q.messageKey(id), "body", body, "deliveries", 0).Err(); err != nil {
		return "", fmt.Errorf("failed to store message: %w", err)
	}
	if err := q.client.RPush(ctx, q.pendingKey(), id).Err(); err != nil {
		return "", fmt.Errorf("failed to enqueue message: %w", err)
	}

	return id, nil
}

// Poll claims up to max visible messages, marking each invisible until its
// visibility deadline. When nothing is visible it keeps trying until wait
// has elapsed or the context is cancelled.
func (q *RedisQueue) Poll(ctx context.Context, max int, wait time.Duration) ([]Message, error) {
	deadline := time.Now().Add(wait)

	for {
		if err := q.requeueExpired(ctx); err != nil {
			return nil, err
		}

		messages, err := q.claim(ctx, max)
		if err != nil {
			return nil, err
		}
		if len(messages) > 0 || !time.Now().Before(deadline) {
			return messages, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// requeueExpired moves messages whose visibility window lapsed without an
// acknowledgment back onto the pending list.
func (q *RedisQueue) requeueExpired(ctx context.Context) error {
	now := strconv.FormatInt(time.Now().UnixMilli(), 10)

	expired, err := q.client.ZRangeByScore(ctx, q.inflightKey(), &redis.ZRangeBy{
		Min: "-inf",
		Max: now,
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to scan in-flight messages: %w", err)
	}

	for _, id := range expired {
		removed, err := q.client.ZRem(ctx, q.inflightKey(), id).Result()
		if err != nil {
			return fmt.Errorf("failed to release message %s: %w", id, err)
		}
		if removed == 0 {
			// another consumer released or acknowledged it first
			continue
		}
		if err := q.client.RPush(ctx, q.pendingKey(), id).Err(); err != nil {
			return fmt.Errorf("failed to requeue message %s: %w", id, err)
		}
		log.Printf("🔁 Message %s visibility expired, requeued", id)
	}

	return nil
}

// claimScript pops the next pending ID and marks it in-flight in one atomic
// step. A consumer killed mid-claim therefore leaves the message in exactly
// one of the two structures, never in neither, so it is always redelivered.
var claimScript = redis.NewScript(`
local id = redis.call('LPOP', KEYS[1])
if not id then
	return false
end
redis.call('ZADD', KEYS[2], ARGV[1], id)
return id
`)

func (q *RedisQueue) claim(ctx context.Context, max int) ([]Message, error) {
	var messages []Message

	for len(messages) < max {
		score := strconv.FormatInt(time.Now().Add(q.visibility).UnixMilli(), 10)
		val, err := claimScript.Run(ctx, q.client, []string{q.pendingKey(), q.inflightKey()}, score).Result()
		if err == redis.Nil {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to claim message: %w", err)
		}
		id, ok := val.(string)
		if !ok {
			return nil, fmt.Errorf("failed to claim message: unexpected reply %v", val)
		}

		deliveries, err := q.client.HIncrBy(ctx, q.messageKey(id), "deliveries", 1).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to count delivery: %w", err)
		}

		body, err := q.client.HGet(ctx, q.messageKey(id), "body").Result()
		if err == redis.Nil {
			// payload already acknowledged away; drop the stale claim
			q.client.ZRem(ctx, q.inflightKey(), id)
			q.client.Del(ctx, q.messageKey(id))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load message body: %w", err)
		}

		messages = append(messages, Message{
			ID:            id,
			Body:          []byte(body),
			DeliveryCount: int(deliveries),
		})
	}

	return messages, nil
}

// Acknowledge deletes the message and its in-flight entry.
func (q *RedisQueue) Acknowledge(ctx context.Context, messageID string) error {
	if err := q.client.ZRem(ctx, q.inflightKey(), messageID).Err(); err != nil {
		return fmt.Errorf("failed to remove in-flight entry: %w", err)
	}

	deleted, err := q.client.Del(ctx, q.messageKey(messageID)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	if deleted == 0 {
		return ErrNotFound
	}

	return nil
}

// Close closes the Redis connection.
func (q *RedisQueue) Close() error {
	return q.client.Close()
}
