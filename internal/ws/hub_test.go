package ws

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-stockyng/internal/backend"
	"go-stockyng/internal/collection"
	"go-stockyng/internal/model"
)

type fakeClient struct {
	mu     sync.Mutex
	frames [][]byte
	closed bool
}

func (c *fakeClient) WriteMessage(_ int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, data)
	return nil
}

func (c *fakeClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeClient) snapshots() []Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Snapshot, len(c.frames))
	for i, f := range c.frames {
		_ = json.Unmarshal(f, &out[i])
	}
	return out
}

func (c *fakeClient) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func TestHub_FeedsSnapshotsToClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := backend.NewMemoryStore(nil)
	products := collection.New[model.Product](store, model.CollectionProducts)
	hub := NewHub(zerolog.Nop())
	go hub.Run(ctx)

	client := &fakeClient{}
	hub.Register <- Membership{Topic: model.CollectionProducts, Client: client}

	go func() {
		_ = Feed(ctx, hub, model.CollectionProducts, products.Live, func(p model.Product) model.Product { return p })
	}()

	require.Eventually(t, func() bool { return len(client.snapshots()) == 1 }, 2*time.Second, 10*time.Millisecond)

	_, err := products.Create(ctx, model.Product{Name: "Widget", Quantity: "1"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		snaps := client.snapshots()
		if len(snaps) < 2 {
			return false
		}
		items, _ := snaps[len(snaps)-1].Items.([]any)
		return len(items) == 1
	}, 2*time.Second, 10*time.Millisecond)

	late := &fakeClient{}
	hub.Register <- Membership{Topic: model.CollectionProducts, Client: late}
	require.Eventually(t, func() bool { return len(late.snapshots()) == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Unregister <- Membership{Topic: model.CollectionProducts, Client: late}
	require.Eventually(t, func() bool { return hub.Clients(model.CollectionProducts) == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.Eventually(t, client.isClosed, 2*time.Second, 10*time.Millisecond)
	assert.True(t, late.isClosed())
}
