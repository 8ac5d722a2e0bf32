package backend

import (
	"context"
	"sync"
)

// Broker is an in-process Notifier.
type Broker struct {
	mu       sync.Mutex
	watchers map[string]map[*brokerWatch]struct{}
}

func NewBroker() *Broker {
	return &Broker{watchers: make(map[string]map[*brokerWatch]struct{})}
}

func (b *Broker) Publish(_ context.Context, collection string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for w := range b.watchers[collection] {
		w.signal()
	}
	return nil
}

func (b *Broker) Watch(_ context.Context, collection string) (Watch, error) {
	w := &brokerWatch{
		ch:         make(chan struct{}, 1),
		broker:     b,
		collection: collection,
	}
	b.mu.Lock()
	if b.watchers[collection] == nil {
		b.watchers[collection] = make(map[*brokerWatch]struct{})
	}
	b.watchers[collection][w] = struct{}{}
	b.mu.Unlock()
	return w, nil
}

// Watchers returns the number of open watches on collection.
func (b *Broker) Watchers(collection string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.watchers[collection])
}

func (b *Broker) remove(w *brokerWatch) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.watchers[w.collection], w)
	if len(b.watchers[w.collection]) == 0 {
		delete(b.watchers, w.collection)
	}
	close(w.ch)
}

type brokerWatch struct {
	ch         chan struct{}
	once       sync.Once
	broker     *Broker
	collection string
}

// signal is only called with the broker lock held.
func (w *brokerWatch) signal() {
	select {
	case w.ch <- struct{}{}:
	default:
	}
}

func (w *brokerWatch) Changes() <-chan struct{} { return w.ch }

func (w *brokerWatch) Close() error {
	w.once.Do(func() { w.broker.remove(w) })
	return nil
}
