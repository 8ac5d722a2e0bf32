package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-stockyng/internal/model"
)

var ann = model.Session{
	UserID:   "u1",
	Name:     "Ann",
	Email:    "ann@example.com",
	Username: "ann",
	Role:     "user",
}

func openKV(t *testing.T) *SQLiteKV {
	t.Helper()
	kv, err := OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	return kv
}

func TestSQLiteKV_PutReplacesNamespace(t *testing.T) {
	ctx := context.Background()
	kv := openKV(t)

	require.NoError(t, kv.Put(ctx, "ns", map[string]string{"a": "1", "b": "2"}))
	require.NoError(t, kv.Put(ctx, "ns", map[string]string{"a": "3"}))
	require.NoError(t, kv.Put(ctx, "other", map[string]string{"x": "y"}))

	got, err := kv.Get(ctx, "ns")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "3"}, got)

	require.NoError(t, kv.Clear(ctx, "ns"))
	got, err = kv.Get(ctx, "ns")
	require.NoError(t, err)
	assert.Empty(t, got)

	other, err := kv.Get(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, "y", other["x"])
}

func TestSQLiteKV_PutIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	kv := openKV(t)
	require.NoError(t, kv.Put(ctx, "ns", map[string]string{"a": "1"}))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.Error(t, kv.Put(cancelled, "ns", map[string]string{"a": "2", "b": "2"}))

	got, err := kv.Get(ctx, "ns")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1"}, got)
}

func TestStore_RoundTrip(t *testing.T) {
	for name, kv := range map[string]KV{"sqlite": openKV(t), "memory": NewMemoryKV()} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			st := NewStore(kv)

			require.NoError(t, st.Save(ctx, ann))
			got, err := st.Load(ctx)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, ann, *got)

			require.NoError(t, st.Clear(ctx))
			got, err = st.Load(ctx)
			require.NoError(t, err)
			assert.Nil(t, got)
		})
	}
}

func TestStore_IncompleteLoadsAsSignedOut(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	require.NoError(t, kv.Put(ctx, Namespace, map[string]string{
		KeyUserID: "u1", KeyName: "Ann", KeyEmail: "ann@example.com",
	}))

	got, err := NewStore(kv).Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSession_Lifecycle(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	s := New(NewStore(kv))

	require.NoError(t, s.Init(ctx))
	_, err := s.Require()
	assert.ErrorIs(t, err, model.ErrUnauthenticated)

	require.NoError(t, s.Refresh(ctx, ann))
	cur, err := s.Require()
	require.NoError(t, err)
	assert.Equal(t, "ann", cur.Username)

	// a second process sees the same identity
	other := New(NewStore(kv))
	require.NoError(t, other.Init(ctx))
	require.NotNil(t, other.Current())
	assert.Equal(t, ann, *other.Current())

	require.NoError(t, s.Teardown(ctx))
	assert.Nil(t, s.Current())
	require.NoError(t, other.Init(ctx))
	assert.Nil(t, other.Current())
}

func TestContext(t *testing.T) {
	ctx := NewContext(context.Background(), ann)
	got, ok := FromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, ann, got)

	_, ok = FromContext(NewContext(context.Background(), model.Session{UserID: "u1"}))
	assert.False(t, ok)

	_, ok = FromContext(context.Background())
	assert.False(t, ok)
}
