package database

import (
	"context"
	"fmt"
	"time"
)

// Options selects a backend. Driver is "mongodb" or "memory".
type Options struct {
	Driver  string
	URI     string
	Name    string
	Timeout time.Duration
}

// Open connects the configured backend, makes sure its indexes exist and
// returns the stores with a function that releases the connection.
func Open(ctx context.Context, o Options) (*Stores, func(context.Context) error, error) {
	switch o.Driver {
	case "memory":
		return NewMemoryStores(), func(context.Context) error { return nil }, nil
	case "mongodb":
		client, err := Connect(ctx, o.URI)
		if err != nil {
			return nil, nil, err
		}
		db := client.Database(o.Name)
		if err := EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, err
		}
		return NewMongoStores(db, o.Timeout), client.Disconnect, nil
	}
	return nil, nil, fmt.Errorf("unknown database driver %q", o.Driver)
}
