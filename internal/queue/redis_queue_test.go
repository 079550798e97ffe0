package queue

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQueue(t *testing.T, visibility time.Duration) (*RedisQueue, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisQueueWithClient(client, "checkout.order", visibility), client
}

func TestEnqueuePollAcknowledge(t *testing.T) {
	ctx := context.Background()
	q, _ := newTestQueue(t, time.Minute)

	first, err := q.Enqueue(ctx, []byte(`{"n":1}`))
	require.NoError(t, err)
	second, err := q.Enqueue(ctx, []byte(`{"n":2}`))
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	messages, err := q.Poll(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	for _, msg := range messages {
		assert.Equal(t, 1, msg.DeliveryCount)
		require.NoError(t, q.Acknowledge(ctx, msg.ID))
	}

	messages, err = q.Poll(ctx, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestPollRespectsMaxMessages(t *testing.T) {
	ctx := context.Background()
	q, _ := newTestQueue(t, time.Minute)

	for i := 0; i < 5; i++ {
		_, err := q.Enqueue(ctx, []byte(`{}`))
		require.NoError(t, err)
	}

	messages, err := q.Poll(ctx, 3, 0)
	require.NoError(t, err)
	assert.Len(t, messages, 3)
}

func TestClaimedMessageIsInvisible(t *testing.T) {
	ctx := context.Background()
	q, _ := newTestQueue(t, time.Minute)

	_, err := q.Enqueue(ctx, []byte(`{}`))
	require.NoError(t, err)

	first, err := q.Poll(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// still within the visibility window: nothing to claim
	second, err := q.Poll(ctx, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, second)
}

func TestRedeliveryAfterVisibilityTimeout(t *testing.T) {
	ctx := context.Background()
	q, _ := newTestQueue(t, 50*time.Millisecond)

	id, err := q.Enqueue(ctx, []byte(`{"order":"swn"}`))
	require.NoError(t, err)

	first, err := q.Poll(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, id, first[0].ID)
	assert.Equal(t, 1, first[0].DeliveryCount)

	time.Sleep(60 * time.Millisecond)

	second, err := q.Poll(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, id, second[0].ID)
	assert.Equal(t, []byte(`{"order":"swn"}`), second[0].Body)
	assert.Equal(t, 2, second[0].DeliveryCount)
}

func TestAcknowledgeStopsRedelivery(t *testing.T) {
	ctx := context.Background()
	q, _ := newTestQueue(t, 50*time.Millisecond)

	_, err := q.Enqueue(ctx, []byte(`{}`))
	require.NoError(t, err)

	messages, err := q.Poll(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	require.NoError(t, q.Acknowledge(ctx, messages[0].ID))

	time.Sleep(60 * time.Millisecond)

	messages, err = q.Poll(ctx, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestClaimNeverStrandsMessages(t *testing.T) {
	ctx := context.Background()
	q, client := newTestQueue(t, 50*time.Millisecond)

	var ids []string
	for i := 0; i < 3; i++ {
		id, err := q.Enqueue(ctx, []byte(`{}`))
		require.NoError(t, err)
		ids = append(ids, id)
	}

	messages, err := q.Poll(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, messages, 2)

	// every unacknowledged message sits in exactly one of pending or
	// in-flight; the atomic claim can never leave one in neither
	pending, err := client.LRange(ctx, q.pendingKey(), 0, -1).Result()
	require.NoError(t, err)
	inflight, err := client.ZRange(ctx, q.inflightKey(), 0, -1).Result()
	require.NoError(t, err)

	assert.Len(t, inflight, 2)
	assert.ElementsMatch(t, ids, append(append([]string{}, pending...), inflight...))

	// abandoned claims come back after the visibility window; nothing is lost
	time.Sleep(60 * time.Millisecond)

	redelivered, err := q.Poll(ctx, 10, 0)
	require.NoError(t, err)

	var seen []string
	for _, msg := range redelivered {
		seen = append(seen, msg.ID)
	}
	assert.ElementsMatch(t, ids, seen)
}

func TestAcknowledgeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	q, _ := newTestQueue(t, time.Minute)

	_, err := q.Enqueue(ctx, []byte(`{}`))
	require.NoError(t, err)

	messages, err := q.Poll(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, messages, 1)

	require.NoError(t, q.Acknowledge(ctx, messages[0].ID))
	assert.ErrorIs(t, q.Acknowledge(ctx, messages[0].ID), ErrNotFound)
}

func TestAcknowledgeUnknownMessage(t *testing.T) {
	ctx := context.Background()
	q, _ := newTestQueue(t, time.Minute)

	assert.ErrorIs(t, q.Acknowledge(ctx, "no-such-message"), ErrNotFound)
}

func TestLongPollPicksUpLateEnqueue(t *testing.T) {
	ctx := context.Background()
	q, _ := newTestQueue(t, time.Minute)

	go func() {
		time.Sleep(150 * time.Millisecond)
		q.Enqueue(ctx, []byte(`{}`))
	}()

	messages, err := q.Poll(ctx, 10, time.Second)
	require.NoError(t, err)
	assert.Len(t, messages, 1)
}

func TestPollStopsOnContextCancel(t *testing.T) {
	q, _ := newTestQueue(t, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := q.Poll(ctx, 10, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
}
