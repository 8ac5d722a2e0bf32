// Package gormstore is a PostgreSQL implementation of backend.Store built on
// GORM. Every child of every collection is one row holding its JSON value in a
// JSONB column.
package gormstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go-stockyng/internal/backend"
)

type node struct {
	Collection string    `gorm:"primaryKey;type:varchar(64)"`
	Key        string    `gorm:"primaryKey;type:varchar(64)"`
	Data       string    `gorm:"type:jsonb;not null"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (node) TableName() string {
	return "nodes"
}

var _ backend.Store = (*Store)(nil)

type Store struct {
	db       *gorm.DB
	notifier backend.Notifier
}

func New(db *gorm.DB, n backend.Notifier) *Store {
	if n == nil {
		n = backend.NewBroker()
	}
	return &Store{db: db, notifier: n}
}

// Migrate creates the nodes table and its lookup index.
func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&node{})
}

func (s *Store) NewKey(_ context.Context, _ string) (string, error) {
	return backend.GenerateKey()
}

func (s *Store) Set(ctx context.Context, collection, key string, data []byte) error {
	row := node{Collection: collection, Key: key, Data: string(data)}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, key, err)
	}
	return s.notifier.Publish(ctx, collection)
}

func (s *Store) Update(ctx context.Context, collection, key string, fields map[string]any) error {
	patch, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode patch: %w", err)
	}

	res := s.db.WithContext(ctx).Model(&node{}).
		Where("collection = ? AND key = ?", collection, key).
		Updates(map[string]interface{}{
			"data":       gorm.Expr("data || ?::jsonb", string(patch)),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return fmt.Errorf("update %s/%s: %w", collection, key, res.Error)
	}
	if res.RowsAffected == 0 {
		// updating a missing child creates it
		return s.Set(ctx, collection, key, patch)
	}
	return s.notifier.Publish(ctx, collection)
}

func (s *Store) Delete(ctx context.Context, collection, key string) error {
	err := s.db.WithContext(ctx).
		Where("collection = ? AND key = ?", collection, key).
		Delete(&node{}).Error
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, key, err)
	}
	return s.notifier.Publish(ctx, collection)
}

func (s *Store) Get(ctx context.Context, collection, key string) (backend.Node, error) {
	var row node
	err := s.db.WithContext(ctx).
		Where("collection = ? AND key = ?", collection, key).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return backend.Node{}, fmt.Errorf("%s/%s: %w", collection, key, backend.ErrNotFound)
	}
	if err != nil {
		return backend.Node{}, fmt.Errorf("get %s/%s: %w", collection, key, err)
	}
	return backend.Node{Key: row.Key, Data: []byte(row.Data)}, nil
}

func (s *Store) List(ctx context.Context, collection string) ([]backend.Node, error) {
	var rows []node
	err := s.db.WithContext(ctx).
		Where("collection = ?", collection).
		Order("key ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	return toNodes(rows), nil
}

func (s *Store) Query(ctx context.Context, collection, child, value string) ([]backend.Node, error) {
	var rows []node
	err := s.db.WithContext(ctx).
		Where("collection = ? AND data->>? = ?", collection, child, value).
		Order("key ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query %s by %s: %w", collection, child, err)
	}
	return toNodes(rows), nil
}

func (s *Store) Watch(ctx context.Context, collection string) (backend.Watch, error) {
	return s.notifier.Watch(ctx, collection)
}

func toNodes(rows []node) []backend.Node {
	nodes := make([]backend.Node, len(rows))
	for i, r := range rows {
		nodes[i] = backend.Node{Key: r.Key, Data: []byte(r.Data)}
	}
	return nodes
}
