// Package objectstore uploads binary payloads (product and profile images)
// and hands back a publicly readable URL.
package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Store uploads body under path and returns the download URL.
type Store interface {
	Put(ctx context.Context, path string, body io.Reader, contentType string) (string, error)
}

// ProductImagePath is where a product's picture lives.
func ProductImagePath(productID string) string {
	return "products/" + productID + ".jpg"
}

// ProfileImagePath is where a user's avatar lives.
func ProfileImagePath(userID string) string {
	return "profile_images/" + userID + ".jpg"
}

// Object is one stored payload in a Memory store.
type Object struct {
	Data        []byte
	ContentType string
}

// Memory keeps uploads in process memory.
type Memory struct {
	BaseURL string

	mu      sync.Mutex
	objects map[string]Object
}

func NewMemory(baseURL string) *Memory {
	return &Memory{BaseURL: strings.TrimRight(baseURL, "/"), objects: make(map[string]Object)}
}

func (m *Memory) Put(_ context.Context, path string, body io.Reader, contentType string) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	m.mu.Lock()
	m.objects[path] = Object{Data: data, ContentType: contentType}
	m.mu.Unlock()
	return m.BaseURL + "/" + path, nil
}

// Get returns a stored object.
func (m *Memory) Get(path string) (Object, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.objects[path]
	if !ok {
		return Object{}, false
	}
	o.Data = bytes.Clone(o.Data)
	return o, true
}
