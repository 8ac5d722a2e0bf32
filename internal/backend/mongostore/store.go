// Package mongostore is a MongoDB implementation of backend.Store. Each named
// collection maps to a Mongo collection; the child key is the document _id.
package mongostore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"go-stockyng/internal/backend"
)

var _ backend.Store = (*Store)(nil)

type Store struct {
	db       *mongo.Database
	notifier backend.Notifier
}

func New(db *mongo.Database, n backend.Notifier) *Store {
	if n == nil {
		n = backend.NewBroker()
	}
	return &Store{db: db, notifier: n}
}

func (s *Store) NewKey(_ context.Context, _ string) (string, error) {
	return backend.GenerateKey()
}

func (s *Store) Set(ctx context.Context, collection, key string, data []byte) error {
	doc, err := toDocument(key, data)
	if err != nil {
		return err
	}
	_, err = s.db.Collection(collection).ReplaceOne(ctx,
		bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, key, err)
	}
	return s.notifier.Publish(ctx, collection)
}

func (s *Store) Update(ctx context.Context, collection, key string, fields map[string]any) error {
	set := bson.M{}
	for k, v := range fields {
		if k == "_id" {
			continue
		}
		set[k] = v
	}
	_, err := s.db.Collection(collection).UpdateOne(ctx,
		bson.M{"_id": key}, bson.M{"$set": set}, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, key, err)
	}
	return s.notifier.Publish(ctx, collection)
}

func (s *Store) Delete(ctx context.Context, collection, key string) error {
	if _, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, key, err)
	}
	return s.notifier.Publish(ctx, collection)
}

func (s *Store) Get(ctx context.Context, collection, key string) (backend.Node, error) {
	var doc bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return backend.Node{}, fmt.Errorf("%s/%s: %w", collection, key, backend.ErrNotFound)
	}
	if err != nil {
		return backend.Node{}, fmt.Errorf("get %s/%s: %w", collection, key, err)
	}
	return fromDocument(doc)
}

func (s *Store) List(ctx context.Context, collection string) ([]backend.Node, error) {
	return s.find(ctx, collection, bson.M{})
}

func (s *Store) Query(ctx context.Context, collection, child, value string) ([]backend.Node, error) {
	return s.find(ctx, collection, bson.M{child: value})
}

func (s *Store) Watch(ctx context.Context, collection string) (backend.Watch, error) {
	return s.notifier.Watch(ctx, collection)
}

func (s *Store) find(ctx context.Context, collection string, filter bson.M) ([]backend.Node, error) {
	cur, err := s.db.Collection(collection).Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", collection, err)
	}
	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", collection, err)
	}

	nodes := make([]backend.Node, 0, len(docs))
	for _, d := range docs {
		n, err := fromDocument(d)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func toDocument(key string, data []byte) (bson.M, error) {
	doc := bson.M{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode node %s: %w", key, err)
	}
	doc["_id"] = key
	return doc, nil
}

func fromDocument(doc bson.M) (backend.Node, error) {
	key, _ := doc["_id"].(string)
	delete(doc, "_id")
	data, err := json.Marshal(doc)
	if err != nil {
		return backend.Node{}, fmt.Errorf("encode node %s: %w", key, err)
	}
	return backend.Node{Key: key, Data: data}, nil
}
