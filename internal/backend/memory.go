package backend

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryStore keeps every collection in process memory.
// It backs tests and the "memory" BACKEND setting.
type MemoryStore struct {
	mu       sync.RWMutex
	data     map[string]map[string][]byte
	notifier Notifier
	keyFunc  func() (string, error)
}

// NewMemoryStore creates a store publishing changes to n.
// A nil notifier gets a private Broker.
func NewMemoryStore(n Notifier) *MemoryStore {
	if n == nil {
		n = NewBroker()
	}
	return &MemoryStore{
		data:     make(map[string]map[string][]byte),
		notifier: n,
		keyFunc:  GenerateKey,
	}
}

// WithKeyFunc overrides key generation.
func (s *MemoryStore) WithKeyFunc(fn func() (string, error)) *MemoryStore {
	s.keyFunc = fn
	return s
}

func (s *MemoryStore) NewKey(_ context.Context, _ string) (string, error) {
	return s.keyFunc()
}

func (s *MemoryStore) Set(ctx context.Context, collection, key string, data []byte) error {
	s.mu.Lock()
	if s.data[collection] == nil {
		s.data[collection] = make(map[string][]byte)
	}
	s.data[collection][key] = append([]byte(nil), data...)
	s.mu.Unlock()
	return s.notifier.Publish(ctx, collection)
}

func (s *MemoryStore) Update(ctx context.Context, collection, key string, fields map[string]any) error {
	s.mu.Lock()
	merged, err := MergeFields(s.data[collection][key], fields)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if s.data[collection] == nil {
		s.data[collection] = make(map[string][]byte)
	}
	s.data[collection][key] = merged
	s.mu.Unlock()
	return s.notifier.Publish(ctx, collection)
}

func (s *MemoryStore) Delete(ctx context.Context, collection, key string) error {
	s.mu.Lock()
	delete(s.data[collection], key)
	s.mu.Unlock()
	return s.notifier.Publish(ctx, collection)
}

func (s *MemoryStore) Get(_ context.Context, collection, key string) (Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.data[collection][key]
	if !ok {
		return Node{}, fmt.Errorf("%s/%s: %w", collection, key, ErrNotFound)
	}
	return Node{Key: key, Data: append([]byte(nil), data...)}, nil
}

func (s *MemoryStore) List(_ context.Context, collection string) ([]Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sorted(collection, nil), nil
}

func (s *MemoryStore) Query(_ context.Context, collection, child, value string) ([]Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sorted(collection, func(data []byte) bool {
		return ChildEquals(data, child, value)
	}), nil
}

func (s *MemoryStore) Watch(ctx context.Context, collection string) (Watch, error) {
	return s.notifier.Watch(ctx, collection)
}

func (s *MemoryStore) sorted(collection string, keep func([]byte) bool) []Node {
	nodes := make([]Node, 0, len(s.data[collection]))
	for k, v := range s.data[collection] {
		if keep != nil && !keep(v) {
			continue
		}
		nodes = append(nodes, Node{Key: k, Data: append([]byte(nil), v...)})
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Key < nodes[j].Key })
	return nodes
}
