// Package redisfeed fans backend change signals out through Redis pub/sub so
// several API processes sharing one store see each other's writes.
package redisfeed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"go-stockyng/internal/backend"
)

const (
	defaultTimeout = 5 * time.Second
	channelPrefix  = "stockyng:changes:"
)

// Config captures the settings for establishing a Redis connection.
type Config struct {
	Addr    string
	DB      int
	Timeout time.Duration
}

// Connect initialises a Redis client and validates connectivity with a ping.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return client, nil
}

var _ backend.Notifier = (*Feed)(nil)

// Feed is a backend.Notifier over Redis pub/sub.
type Feed struct {
	client *redis.Client
}

func New(client *redis.Client) *Feed {
	return &Feed{client: client}
}

// Channel returns the pub/sub channel carrying changes for collection.
func Channel(collection string) string {
	return channelPrefix + collection
}

func (f *Feed) Publish(ctx context.Context, collection string) error {
	if err := f.client.Publish(ctx, Channel(collection), "1").Err(); err != nil {
		return fmt.Errorf("publish %s: %w", collection, err)
	}
	return nil
}

// Watch subscribes to the collection channel. The subscription is confirmed
// before Watch returns so no publish after it is missed.
func (f *Feed) Watch(ctx context.Context, collection string) (backend.Watch, error) {
	ps := f.client.Subscribe(ctx, Channel(collection))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", collection, err)
	}

	w := &watch{
		ps:   ps,
		ch:   make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go w.forward()
	return w, nil
}

type watch struct {
	ps   *redis.PubSub
	ch   chan struct{}
	done chan struct{}
	once sync.Once
}

func (w *watch) forward() {
	defer close(w.ch)
	msgs := w.ps.Channel()
	for {
		select {
		case <-w.done:
			return
		case _, ok := <-msgs:
			if !ok {
				return
			}
			select {
			case w.ch <- struct{}{}:
			default:
			}
		}
	}
}

func (w *watch) Changes() <-chan struct{} { return w.ch }

func (w *watch) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.ps.Close()
	})
	return err
}
