package redisfeed

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannel(t *testing.T) {
	assert.Equal(t, "stockyng:changes:products", Channel("products"))
}

// Runs against a real Redis when STOCKYNG_TEST_REDIS_ADDR is set.
func TestFeed_PublishReachesWatch(t *testing.T) {
	addr := os.Getenv("STOCKYNG_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("STOCKYNG_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	client, err := Connect(ctx, Config{Addr: addr})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	f := New(client)
	w, err := f.Watch(ctx, "products")
	require.NoError(t, err)

	require.NoError(t, f.Publish(ctx, "products"))
	select {
	case <-w.Changes():
	case <-time.After(5 * time.Second):
		t.Fatal("no change signal")
	}

	require.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}
