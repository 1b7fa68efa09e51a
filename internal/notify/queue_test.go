package notify

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbourn/go-match-backend/internal/config"
)

func TestMemoryQueue_DrainsAfterClose(t *testing.T) {
	q := NewMemoryQueue(4)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, SuperLike("alice", "bob")))
	require.NoError(t, q.Enqueue(ctx, SuperLike("bob", "alice")))
	require.NoError(t, q.Close())
	assert.Equal(t, 2, q.Len())

	ev, err := q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", ev.Actor)

	ev, err = q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "bob", ev.Actor)

	_, err = q.Dequeue(ctx)
	assert.ErrorIs(t, err, ErrQueueClosed)
	assert.NoError(t, q.Close(), "close is idempotent")
}

func TestMemoryQueue_DequeueHonoursContext(t *testing.T) {
	q := NewMemoryQueue(1)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := q.Dequeue(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func newRedisQueue(t *testing.T) (*RedisQueue, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := NewRedisClient(config.RedisConfig{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisQueue(client, "test:events"), mr
}

func TestRedisQueue_FIFORoundTrip(t *testing.T) {
	q, mr := newRedisQueue(t)
	ctx := context.Background()
	require.NoError(t, q.Ping(ctx))

	first := MatchCreated("m1", "alice", "bob")
	second := MessageSent("m1", "bob", "alice", "hey")
	require.NoError(t, q.Enqueue(ctx, first))
	require.NoError(t, q.Enqueue(ctx, second))

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	assert.True(t, mr.Exists("test:events"))

	got, err := q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, KindMatchCreated, got.Kind)
	assert.Equal(t, "m1", got.MatchID)
	assert.True(t, first.At.Equal(got.At))

	got, err = q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, KindMessageSent, got.Kind)
	assert.Equal(t, "hey", got.Preview)
}

func TestRedisQueue_CloseStopsDequeueAndKeepsEvents(t *testing.T) {
	q, _ := newRedisQueue(t)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, SuperLike("alice", "bob")))
	require.NoError(t, q.Close())

	_, err := q.Dequeue(ctx)
	assert.ErrorIs(t, err, ErrQueueClosed)

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n, "queued events stay for the next consumer")
}

func TestRedisQueue_DefaultKey(t *testing.T) {
	q := NewRedisQueue(nil, "")
	assert.Equal(t, "notify:events", q.Key)
}
