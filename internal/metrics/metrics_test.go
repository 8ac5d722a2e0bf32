package metrics

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-stockyng/internal/backend"
)

func TestInstrument(t *testing.T) {
	ctx := context.Background()
	s := Instrument(backend.NewMemoryStore(nil))

	before := testutil.ToFloat64(BackendOps.WithLabelValues("metrics_test", "set", "ok"))
	require.NoError(t, s.Set(ctx, "metrics_test", "k", []byte(`{}`)))
	assert.Equal(t, before+1, testutil.ToFloat64(BackendOps.WithLabelValues("metrics_test", "set", "ok")))

	_, err := s.Get(ctx, "metrics_test", "missing")
	require.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(BackendOps.WithLabelValues("metrics_test", "get", "error")))

	w, err := s.Watch(ctx, "metrics_test")
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(LiveSubscriptions.WithLabelValues("metrics_test")))
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	assert.Equal(t, 0.0, testutil.ToFloat64(LiveSubscriptions.WithLabelValues("metrics_test")))
}
