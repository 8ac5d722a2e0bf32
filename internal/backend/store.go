// Package backend defines the narrow surface the application needs from a
// realtime keyed store: generated keys, set/update/delete by key, single reads,
// child-equality queries and change notifications. Any store offering that
// surface is interchangeable.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("backend: key not found")

// Node is one child of a collection. Data is the JSON encoding of the value.
type Node struct {
	Key  string
	Data []byte
}

// Store is the capability surface of the remote keyed store.
// List and Query return children ordered by key.
type Store interface {
	NewKey(ctx context.Context, collection string) (string, error)
	Set(ctx context.Context, collection, key string, data []byte) error
	Update(ctx context.Context, collection, key string, fields map[string]any) error
	Delete(ctx context.Context, collection, key string) error
	Get(ctx context.Context, collection, key string) (Node, error)
	List(ctx context.Context, collection string) ([]Node, error)
	Query(ctx context.Context, collection, child, value string) ([]Node, error)
	Watch(ctx context.Context, collection string) (Watch, error)
}

// Watch delivers a signal after each committed change to a collection.
// Signals coalesce: receivers re-read the whole collection on every signal.
type Watch interface {
	Changes() <-chan struct{}
	Close() error
}

// Notifier fans change signals out to watchers.
type Notifier interface {
	Publish(ctx context.Context, collection string) error
	Watch(ctx context.Context, collection string) (Watch, error)
}

// GenerateKey returns a time-ordered unique key, so ordering children by key
// keeps insertion order.
func GenerateKey() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate key: %w", err)
	}
	return id.String(), nil
}

// MergeFields applies fields on top of the JSON object in data.
// A nil data is treated as an empty object.
func MergeFields(data []byte, fields map[string]any) ([]byte, error) {
	obj := map[string]any{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &obj); err != nil {
			return nil, fmt.Errorf("decode node: %w", err)
		}
	}
	for k, v := range fields {
		obj[k] = v
	}
	return json.Marshal(obj)
}

// ChildEquals reports whether the JSON object in data has child equal to value.
func ChildEquals(data []byte, child, value string) bool {
	obj := map[string]any{}
	if err := json.Unmarshal(data, &obj); err != nil {
		return false
	}
	v, ok := obj[child]
	if !ok || v == nil {
		return false
	}
	if s, ok := v.(string); ok {
		return s == value
	}
	return fmt.Sprint(v) == value
}
