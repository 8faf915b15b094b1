package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ItemsCollection is the collection holding marketplace items.
const ItemsCollection = "secondChanceItems"

// NewMongo connects to MongoDB and verifies the connection.
func NewMongo(ctx context.Context, uri, database string) (*mongo.Client, *mongo.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, client.Database(database), nil
}

// EnsureItemIndexes creates the unique index on the public item id.
func EnsureItemIndexes(ctx context.Context, database *mongo.Database) error {
	_, err := database.Collection(ItemsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_item_id"),
	})
	if err != nil {
		return fmt.Errorf("create item index: %w", err)
	}
	return nil
}

// DropItems removes the items collection and its indexes.
func DropItems(ctx context.Context, database *mongo.Database) error {
	if err := database.Collection(ItemsCollection).Drop(ctx); err != nil {
		return fmt.Errorf("drop items: %w", err)
	}
	return nil
}
