package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tbourn/go-match-backend/internal/config"
)

// ErrQueueClosed is returned by Dequeue once a queue is closed and, for the
// in-memory queue, drained.
var ErrQueueClosed = errors.New("notify: queue closed")

// Queue buffers events between the publisher pump and the workers.
type Queue interface {
	Enqueue(ctx context.Context, ev Event) error
	// Dequeue blocks until an event is available, ctx is done or the queue closes.
	Dequeue(ctx context.Context) (Event, error)
	Close() error
}

// MemoryQueue is a process-local queue backed by a buffered channel. Events
// still buffered when the process exits are lost.
type MemoryQueue struct {
	ch   chan Event
	once sync.Once
}

// NewMemoryQueue returns a queue holding up to size events.
func NewMemoryQueue(size int) *MemoryQueue {
	if size <= 0 {
		size = 256
	}
	return &MemoryQueue{ch: make(chan Event, size)}
}

// Enqueue blocks while the queue is full. It must not be called after Close.
func (q *MemoryQueue) Enqueue(ctx context.Context, ev Event) error {
	select {
	case q.ch <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dequeue keeps returning buffered events after Close until the queue is empty.
func (q *MemoryQueue) Dequeue(ctx context.Context) (Event, error) {
	select {
	case ev, ok := <-q.ch:
		if !ok {
			return Event{}, ErrQueueClosed
		}
		return ev, nil
	case <-ctx.Done():
		return Event{}, ctx.Err()
	}
}

// Close stops intake; pending events remain readable.
func (q *MemoryQueue) Close() error {
	q.once.Do(func() { close(q.ch) })
	return nil
}

// Len reports the number of buffered events.
func (q *MemoryQueue) Len() int { return len(q.ch) }

// RedisQueue stores events as JSON on a Redis list (LPUSH / BRPOP), so queued
// notifications survive restarts and can be consumed by any instance.
type RedisQueue struct {
	Client *redis.Client
	Key    string

	// PollInterval bounds each BRPOP so Close is noticed promptly.
	PollInterval time.Duration

	closed chan struct{}
	once   sync.Once
}

// NewRedisClient initializes a Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	opts := &redis.Options{
		Addr: cfg.Addr,
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	if cfg.DB != 0 {
		opts.DB = cfg.DB
	}
	return redis.NewClient(opts)
}

// NewRedisQueue builds a queue on the list key.
func NewRedisQueue(client *redis.Client, key string) *RedisQueue {
	if key == "" {
		key = "notify:events"
	}
	return &RedisQueue{
		Client:       client,
		Key:          key,
		PollInterval: time.Second,
		closed:       make(chan struct{}),
	}
}

// Ping checks connectivity.
func (q *RedisQueue) Ping(ctx context.Context) error {
	return q.Client.Ping(ctx).Err()
}

func (q *RedisQueue) Enqueue(ctx context.Context, ev Event) error {
	b, err := ev.encode()
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return q.Client.LPush(ctx, q.Key, b).Err()
}

func (q *RedisQueue) Dequeue(ctx context.Context) (Event, error) {
	for {
		select {
		case <-q.closed:
			return Event{}, ErrQueueClosed
		case <-ctx.Done():
			return Event{}, ctx.Err()
		default:
		}

		res, err := q.Client.BRPop(ctx, q.PollInterval, q.Key).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return Event{}, ctx.Err()
			}
			return Event{}, err
		}
		// res is [key, value]
		ev, err := decodeEvent([]byte(res[1]))
		if err != nil {
			return Event{}, fmt.Errorf("decode event: %w", err)
		}
		return ev, nil
	}
}

// Len reports the number of queued events.
func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.Client.LLen(ctx, q.Key).Result()
}

// Close stops Dequeue. Queued events stay on the list for the next consumer.
func (q *RedisQueue) Close() error {
	q.once.Do(func() { close(q.closed) })
	return nil
}
