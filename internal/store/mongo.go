package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bandstand-io/bandstand/internal/domain"
)

// NewMongo connects to MongoDB and returns a store over the given
// database. The caller owns the lifetime and must Close the store.
func NewMongo(ctx context.Context, uri, database string) (*Store, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(100).
		SetRetryWrites(true)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongodb ping failed: %w", err)
	}

	db := client.Database(database)
	return &Store{
		Groups:        &mongoCollection[domain.Group]{coll: db.Collection("groups")},
		Members:       &mongoCollection[domain.Member]{coll: db.Collection("members"), groupField: "group_id"},
		Tasks:         &mongoCollection[domain.Task]{coll: db.Collection("tasks"), groupField: "group_id"},
		Setlists:      &mongoCollection[domain.Setlist]{coll: db.Collection("setlists"), groupField: "group_id"},
		MerchItems:    &mongoCollection[domain.MerchItem]{coll: db.Collection("merch_items"), groupField: "group_id"},
		Sales:         &mongoCollection[domain.Sale]{coll: db.Collection("sales"), groupField: "group_id"},
		Finance:       &mongoCollection[domain.FinanceEntry]{coll: db.Collection("finance_entries"), groupField: "group_id"},
		Notifications: &mongoCollection[domain.Notification]{coll: db.Collection("notifications"), groupField: "group_id"},
		closeFn:       client.Disconnect,
	}, nil
}

// mongoCollection adapts one mongo collection to the Collection
// interface. An empty groupField makes List return every document.
type mongoCollection[T any] struct {
	coll       *mongo.Collection
	groupField string
}

func (c *mongoCollection[T]) Get(ctx context.Context, id string) (*T, error) {
	var doc T
	err := c.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find in %s: %w", c.coll.Name(), err)
	}
	return &doc, nil
}

func (c *mongoCollection[T]) List(ctx context.Context, groupID string) ([]T, error) {
	filter := bson.M{}
	if c.groupField != "" {
		filter[c.groupField] = groupID
	}

	cursor, err := c.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", c.coll.Name(), err)
	}
	defer cursor.Close(ctx)

	var docs []T
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.coll.Name(), err)
	}
	return docs, nil
}

func (c *mongoCollection[T]) Save(ctx context.Context, id string, doc *T) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := c.coll.ReplaceOne(ctx, bson.M{"_id": id}, doc, opts); err != nil {
		return fmt.Errorf("save to %s: %w", c.coll.Name(), err)
	}
	return nil
}

func (c *mongoCollection[T]) Delete(ctx context.Context, id string) error {
	res, err := c.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete from %s: %w", c.coll.Name(), err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
