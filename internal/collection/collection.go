// Package collection mirrors one named collection of the remote keyed store
// as a typed, ordered list of records.
package collection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go-stockyng/internal/backend"
	"go-stockyng/internal/model"
)

// Entity is satisfied by pointers to records carrying a backend key.
type Entity[T any] interface {
	*T
	GetID() string
	SetID(string)
}

// Collection is a typed view over one backend collection. It never caches:
// every read goes to the backend, and writes are not applied locally.
type Collection[T any, P Entity[T]] struct {
	store backend.Store
	name  string
}

func New[T any, P Entity[T]](store backend.Store, name string) *Collection[T, P] {
	return &Collection[T, P]{store: store, name: name}
}

func (c *Collection[T, P]) Name() string { return c.name }

// Once reads the whole collection, ordered by key.
func (c *Collection[T, P]) Once(ctx context.Context) ([]T, error) {
	nodes, err := c.store.List(ctx, c.name)
	if err != nil {
		return nil, c.unavailable("list", err)
	}
	return c.decodeAll(nodes)
}

// Where returns the children whose child field equals value.
func (c *Collection[T, P]) Where(ctx context.Context, child, value string) ([]T, error) {
	nodes, err := c.store.Query(ctx, c.name, child, value)
	if err != nil {
		return nil, c.unavailable("query", err)
	}
	return c.decodeAll(nodes)
}

// Get reads one record. A missing key yields model.ErrNotFound.
func (c *Collection[T, P]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	n, err := c.store.Get(ctx, c.name, id)
	if errors.Is(err, backend.ErrNotFound) {
		return zero, fmt.Errorf("%s/%s: %w", c.name, id, model.ErrNotFound)
	}
	if err != nil {
		return zero, c.unavailable("get", err)
	}
	return c.decode(n)
}

// Create asks the backend for a fresh key, then stores v under it.
// A key failure aborts before anything is written.
func (c *Collection[T, P]) Create(ctx context.Context, v T) (T, error) {
	key, err := c.store.NewKey(ctx, c.name)
	if err != nil {
		return v, c.unavailable("new key", err)
	}
	P(&v).SetID(key)
	if err := c.set(ctx, key, v); err != nil {
		return v, err
	}
	return v, nil
}

// Replace overwrites the record at id with v.
func (c *Collection[T, P]) Replace(ctx context.Context, id string, v T) error {
	P(&v).SetID(id)
	return c.set(ctx, id, v)
}

// Patch merges fields into the record at id.
func (c *Collection[T, P]) Patch(ctx context.Context, id string, fields map[string]any) error {
	if err := c.store.Update(ctx, c.name, id, fields); err != nil {
		return c.unavailable("update", err)
	}
	return nil
}

func (c *Collection[T, P]) Delete(ctx context.Context, id string) error {
	if err := c.store.Delete(ctx, c.name, id); err != nil {
		return c.unavailable("delete", err)
	}
	return nil
}

func (c *Collection[T, P]) set(ctx context.Context, key string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", c.name, key, err)
	}
	if err := c.store.Set(ctx, c.name, key, data); err != nil {
		return c.unavailable("set", err)
	}
	return nil
}

func (c *Collection[T, P]) decodeAll(nodes []backend.Node) ([]T, error) {
	out := make([]T, 0, len(nodes))
	for _, n := range nodes {
		v, err := c.decode(n)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// decode takes the id from the node key, never from the payload.
func (c *Collection[T, P]) decode(n backend.Node) (T, error) {
	var v T
	if err := json.Unmarshal(n.Data, &v); err != nil {
		return v, fmt.Errorf("decode %s/%s: %w", c.name, n.Key, err)
	}
	P(&v).SetID(n.Key)
	return v, nil
}

func (c *Collection[T, P]) unavailable(op string, err error) error {
	return fmt.Errorf("%s %s: %w: %w", op, c.name, model.ErrBackendUnavailable, err)
}
