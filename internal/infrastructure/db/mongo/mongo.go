package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/onlinestore/product-store/internal/core/ports"
)

var (
	_ ports.UserRepository     = (*UserRepository)(nil)
	_ ports.CategoryRepository = (*CategoryRepository)(nil)
	_ ports.ProductRepository  = (*ProductRepository)(nil)
	_ ports.OrderRepository    = (*OrderRepository)(nil)
)

const defaultTimeout = 10 * time.Second

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database. A default timeout is
// applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(cfg.Database)
	return client, db, nil
}

// EnsureIndexes creates the indexes every repository relies on, including
// the unique keys that back the duplicate checks.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"users", NewUserRepository(db).EnsureIndexes},
		{"categories", NewCategoryRepository(db).EnsureIndexes},
		{"products", NewProductRepository(db).EnsureIndexes},
		{"orders", NewOrderRepository(db).EnsureIndexes},
	}
	for _, s := range steps {
		if err := s.fn(ctx); err != nil {
			return fmt.Errorf("ensure %s indexes: %w", s.name, err)
		}
	}
	return nil
}

// pageOptions applies skip, limit and an optional sort to a find.
func pageOptions(offset, size int, sortField string, desc bool) *options.FindOptions {
	opts := options.Find().SetSkip(int64(offset)).SetLimit(int64(size))
	if sortField == "" {
		return opts.SetSort(primitive.D{{Key: "_id", Value: 1}})
	}
	dir := 1
	if desc {
		dir = -1
	}
	return opts.SetSort(primitive.D{{Key: sortField, Value: dir}, {Key: "_id", Value: 1}})
}

// objectID parses a hex id. Malformed ids cannot exist in the store, so
// callers map the failure to their not-found error.
func objectID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return oid, true
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}

func timeToUnix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}
