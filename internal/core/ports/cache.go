package ports

import "context"

// Cache is a read-through cache for catalog lookups. Get reports a miss
// with found=false and a nil error.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (found bool, err error)
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, keys ...string) error
}
