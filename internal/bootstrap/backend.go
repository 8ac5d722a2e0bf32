// Package bootstrap turns configuration into the wired dependencies shared by
// the API server and the command line client.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"go-stockyng/internal/backend"
	"go-stockyng/internal/backend/gormstore"
	"go-stockyng/internal/backend/mongostore"
	"go-stockyng/internal/backend/redisfeed"
	"go-stockyng/internal/config"
	"go-stockyng/internal/metrics"
	"go-stockyng/internal/objectstore"
	"go-stockyng/pkg/database"
)

// Check probes one dependency for readiness.
type Check func(ctx context.Context) error

// Backend is the selected store with its notifier, health probes and the
// connections to release on shutdown.
type Backend struct {
	Store  backend.Store
	Checks map[string]Check

	closers []func()
}

// Close releases connections in reverse order of opening.
func (b *Backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
	b.closers = nil
}

// OpenBackend connects the store named by cfg.Backend. Changes fan out through
// Redis when REDIS_ADDR is set, otherwise through an in-process broker.
func OpenBackend(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Backend, error) {
	b := &Backend{Checks: make(map[string]Check)}

	notifier, err := b.openNotifier(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	var store backend.Store
	switch cfg.Backend {
	case config.BackendPostgres:
		store, err = b.openPostgres(cfg, notifier, log)
	case config.BackendMongo:
		store, err = b.openMongo(ctx, cfg, notifier)
	default:
		store = backend.NewMemoryStore(notifier)
		b.Checks["backend"] = func(context.Context) error { return nil }
	}
	if err != nil {
		b.Close()
		return nil, err
	}

	b.Store = metrics.Instrument(store)
	log.Info().Str("backend", cfg.Backend).Msg("backend ready")
	return b, nil
}

func (b *Backend) openNotifier(ctx context.Context, cfg *config.Config, log zerolog.Logger) (backend.Notifier, error) {
	if cfg.Redis.Addr == "" {
		return backend.NewBroker(), nil
	}
	client, err := redisfeed.Connect(ctx, redisfeed.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		return nil, err
	}
	b.closers = append(b.closers, func() { _ = client.Close() })
	b.Checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	log.Info().Str("addr", cfg.Redis.Addr).Msg("change feed on redis")
	return redisfeed.New(client), nil
}

func (b *Backend) openPostgres(cfg *config.Config, n backend.Notifier, log zerolog.Logger) (backend.Store, error) {
	pg := cfg.Postgres
	db, err := database.ConnectDB(database.Config{
		DSN:      pg.URL,
		Host:     pg.Host,
		Port:     pg.Port,
		User:     pg.User,
		Password: pg.Password,
		Name:     pg.Name,
		TimeZone: pg.TimeZone,
	}, log)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	b.closers = append(b.closers, func() { _ = sqlDB.Close() })
	b.Checks["postgres"] = sqlDB.PingContext

	store := gormstore.New(db, n)
	if err := store.Migrate(); err != nil {
		return nil, fmt.Errorf("migrate nodes: %w", err)
	}
	return store, nil
}

func (b *Backend) openMongo(ctx context.Context, cfg *config.Config, n backend.Notifier) (backend.Store, error) {
	client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return nil, err
	}
	b.closers = append(b.closers, func() { _ = client.Disconnect(context.Background()) })
	b.Checks["mongo"] = func(ctx context.Context) error { return client.Ping(ctx, nil) }
	return mongostore.New(db, n), nil
}

// OpenImages returns the S3 image store when S3_BUCKET is set. Without one,
// uploads are reported as failed and records are kept without an image.
func OpenImages(ctx context.Context, cfg *config.Config, log zerolog.Logger) (objectstore.Store, error) {
	if cfg.S3.Bucket == "" {
		log.Warn().Msg("S3_BUCKET not set; image uploads disabled")
		return nil, nil
	}
	s3cfg := cfg.S3
	store, err := objectstore.NewS3(ctx, objectstore.S3Config{
		Endpoint:  s3cfg.Endpoint,
		Region:    s3cfg.Region,
		Bucket:    s3cfg.Bucket,
		AccessKey: s3cfg.AccessKey,
		SecretKey: s3cfg.SecretKey,
		PublicURL: s3cfg.PublicURL,
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}
