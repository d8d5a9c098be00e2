package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const (
	usersCollection    = "users"
	articlesCollection = "articles"
	productsCollection = "products"
)

// Connect opens a pooled client and pings the primary.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI)
	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

// NewMongoStores binds the stores to db. timeout bounds every store call.
func NewMongoStores(db *mongo.Database, timeout time.Duration) *Stores {
	return &Stores{
		Kind:     "mongodb",
		Users:    &mongoUsers{col: db.Collection(usersCollection), timeout: timeout},
		Articles: &mongoArticles{col: db.Collection(articlesCollection), timeout: timeout},
		Products: &mongoProducts{col: db.Collection(productsCollection), timeout: timeout},
	}
}

// EnsureIndexes creates the indexes the stores rely on. It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		articlesCollection: {
			{Keys: bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: 1}}},
			{Keys: bson.D{{Key: "product", Value: 1}}},
		},
		productsCollection: {
			{Keys: bson.D{{Key: "name", Value: 1}}},
		},
	}
	for name, idx := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func findOptions(p Page, sort bson.D) *options.FindOptionsBuilder {
	return options.Find().
		SetSkip(p.Skip).
		SetLimit(p.Limit).
		SetSort(sort)
}

func afterUpdate() *options.FindOneAndUpdateOptionsBuilder {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}
