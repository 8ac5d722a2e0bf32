// Package metrics defines the Prometheus metrics exposed on /metrics.
package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"go-stockyng/internal/backend"
)

const namespace = "stockyng"

// BackendOps counts store calls by collection, operation and outcome.
var BackendOps = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_operations_total",
		Help:      "Total number of backend store operations.",
	},
	[]string{"collection", "op", "result"},
)

var BackendLatency = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_operation_seconds",
		Help:      "Latency of backend store operations.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"collection", "op"},
)

// LiveSubscriptions is the number of open change watches per collection.
var LiveSubscriptions = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "live_subscriptions",
		Help:      "Open live subscriptions per collection.",
	},
	[]string{"collection"},
)

var WebsocketClients = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "websocket_clients",
		Help:      "Connected websocket clients per collection.",
	},
	[]string{"collection"},
)

// Instrument wraps s so every call is counted and timed.
func Instrument(s backend.Store) backend.Store {
	return &instrumented{next: s}
}

type instrumented struct {
	next backend.Store
}

func observe(collection, op string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	BackendOps.WithLabelValues(collection, op, result).Inc()
	BackendLatency.WithLabelValues(collection, op).Observe(time.Since(start).Seconds())
}

func (i *instrumented) NewKey(ctx context.Context, c string) (key string, err error) {
	defer func(start time.Time) { observe(c, "new_key", start, err) }(time.Now())
	return i.next.NewKey(ctx, c)
}

func (i *instrumented) Set(ctx context.Context, c, key string, data []byte) (err error) {
	defer func(start time.Time) { observe(c, "set", start, err) }(time.Now())
	return i.next.Set(ctx, c, key, data)
}

func (i *instrumented) Update(ctx context.Context, c, key string, fields map[string]any) (err error) {
	defer func(start time.Time) { observe(c, "update", start, err) }(time.Now())
	return i.next.Update(ctx, c, key, fields)
}

func (i *instrumented) Delete(ctx context.Context, c, key string) (err error) {
	defer func(start time.Time) { observe(c, "delete", start, err) }(time.Now())
	return i.next.Delete(ctx, c, key)
}

func (i *instrumented) Get(ctx context.Context, c, key string) (n backend.Node, err error) {
	defer func(start time.Time) { observe(c, "get", start, err) }(time.Now())
	return i.next.Get(ctx, c, key)
}

func (i *instrumented) List(ctx context.Context, c string) (nodes []backend.Node, err error) {
	defer func(start time.Time) { observe(c, "list", start, err) }(time.Now())
	return i.next.List(ctx, c)
}

func (i *instrumented) Query(ctx context.Context, c, child, value string) (nodes []backend.Node, err error) {
	defer func(start time.Time) { observe(c, "query", start, err) }(time.Now())
	return i.next.Query(ctx, c, child, value)
}

func (i *instrumented) Watch(ctx context.Context, c string) (backend.Watch, error) {
	w, err := i.next.Watch(ctx, c)
	if err != nil {
		BackendOps.WithLabelValues(c, "watch", "error").Inc()
		return nil, err
	}
	BackendOps.WithLabelValues(c, "watch", "ok").Inc()
	LiveSubscriptions.WithLabelValues(c).Inc()
	return &countedWatch{Watch: w, collection: c}, nil
}

type countedWatch struct {
	backend.Watch
	collection string
	once       sync.Once
}

func (w *countedWatch) Close() error {
	w.once.Do(func() { LiveSubscriptions.WithLabelValues(w.collection).Dec() })
	return w.Watch.Close()
}
