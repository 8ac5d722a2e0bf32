package backend

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SetGetList(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(nil)

	require.NoError(t, s.Set(ctx, "products", "b", []byte(`{"name":"B"}`)))
	require.NoError(t, s.Set(ctx, "products", "a", []byte(`{"name":"A"}`)))

	n, err := s.Get(ctx, "products", "a")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"A"}`, string(n.Data))

	nodes, err := s.List(ctx, "products")
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, "a", nodes[0].Key)
	assert.Equal(t, "b", nodes[1].Key)

	_, err = s.Get(ctx, "products", "zzz")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMemoryStore_UpdateMergesFields(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(nil)

	require.NoError(t, s.Set(ctx, "users", "u1", []byte(`{"name":"Ann","email":"a@b.com"}`)))
	require.NoError(t, s.Update(ctx, "users", "u1", map[string]any{"name": "Anna"}))

	n, err := s.Get(ctx, "users", "u1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Anna","email":"a@b.com"}`, string(n.Data))
}

func TestMemoryStore_QueryByChild(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(nil)

	require.NoError(t, s.Set(ctx, "users", "u1", []byte(`{"username":"bob"}`)))
	require.NoError(t, s.Set(ctx, "users", "u2", []byte(`{"username":"alice"}`)))

	nodes, err := s.Query(ctx, "users", "username", "bob")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "u1", nodes[0].Key)

	nodes, err = s.Query(ctx, "users", "username", "carol")
	require.NoError(t, err)
	assert.Empty(t, nodes)
}

func TestMemoryStore_DeleteAndWatch(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(nil)

	w, err := s.Watch(ctx, "products")
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, s.Set(ctx, "products", "p1", []byte(`{}`)))
	select {
	case <-w.Changes():
	case <-time.After(time.Second):
		t.Fatal("expected change signal after Set")
	}

	require.NoError(t, s.Delete(ctx, "products", "p1"))
	select {
	case <-w.Changes():
	case <-time.After(time.Second):
		t.Fatal("expected change signal after Delete")
	}

	nodes, err := s.List(ctx, "products")
	require.NoError(t, err)
	assert.Empty(t, nodes)
}

func TestGenerateKey_Ordered(t *testing.T) {
	a, err := GenerateKey()
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	b, err := GenerateKey()
	require.NoError(t, err)
	assert.Less(t, a, b)
}

func TestChildEquals(t *testing.T) {
	assert.True(t, ChildEquals([]byte(`{"username":"bob"}`), "username", "bob"))
	assert.False(t, ChildEquals([]byte(`{"username":"bob"}`), "email", "bob"))
	assert.False(t, ChildEquals([]byte(`not json`), "username", "bob"))
	assert.True(t, ChildEquals([]byte(`{"n":5}`), "n", "5"))
}
