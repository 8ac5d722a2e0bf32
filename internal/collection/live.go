package collection

import (
	"context"
	"sync"

	"go-stockyng/internal/backend"
)

// Subscription delivers full snapshots of a collection: one immediately,
// then a fresh one after every change. Each snapshot replaces the previous.
type Subscription[T any] struct {
	snapshots chan []T
	errs      chan error
	cancel    context.CancelFunc
	once      sync.Once
	done      chan struct{}
}

// Snapshots is closed once the subscription stops.
func (s *Subscription[T]) Snapshots() <-chan []T { return s.snapshots }

// Err delivers backend failures. The subscription keeps running after one.
func (s *Subscription[T]) Err() <-chan error { return s.errs }

// Cancel stops the subscription and releases its watch. Safe to call more
// than once.
func (s *Subscription[T]) Cancel() {
	s.once.Do(s.cancel)
	<-s.done
}

// Live opens a subscription. Each call starts its own sequence with a fresh
// snapshot.
func (c *Collection[T, P]) Live(ctx context.Context) (*Subscription[T], error) {
	w, err := c.store.Watch(ctx, c.name)
	if err != nil {
		return nil, c.unavailable("watch", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	sub := &Subscription[T]{
		snapshots: make(chan []T, 1),
		errs:      make(chan error, 1),
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	go c.run(ctx, w, sub)
	return sub, nil
}

func (c *Collection[T, P]) run(ctx context.Context, w backend.Watch, sub *Subscription[T]) {
	defer close(sub.done)
	defer close(sub.snapshots)
	defer w.Close()

	emit := func() bool {
		items, err := c.Once(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return false
			}
			select {
			case sub.errs <- err:
			default:
			}
			return true
		}
		// newest snapshot wins when the reader lags behind
		select {
		case <-sub.snapshots:
		default:
		}
		select {
		case sub.snapshots <- items:
		case <-ctx.Done():
			return false
		}
		return true
	}

	if !emit() {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-w.Changes():
			if !ok {
				return
			}
			if !emit() {
				return
			}
		}
	}
}

// Watch is the callback form of Live. onChange runs on the subscription
// goroutine for every snapshot; onError may be nil.
func (c *Collection[T, P]) Watch(ctx context.Context, onChange func([]T), onError func(error)) (*Subscription[T], error) {
	sub, err := c.Live(ctx)
	if err != nil {
		return nil, err
	}
	// done is shared so Cancel from inside onChange does not wait on itself
	out := &Subscription[T]{
		snapshots: make(chan []T),
		errs:      make(chan error),
		cancel:    func() { sub.once.Do(sub.cancel) },
		done:      sub.done,
	}
	go func() {
		defer close(out.snapshots)
		for {
			select {
			case items, ok := <-sub.Snapshots():
				if !ok {
					return
				}
				onChange(items)
			case err := <-sub.Err():
				if onError != nil {
					onError(err)
				}
			}
		}
	}()
	return out, nil
}
