package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultPoolSize    = 10
	defaultDialTimeout = 5 * time.Second
	defaultIOTimeout   = 3 * time.Second
)

// Config holds the connection and expiry settings of the catalog cache.
type Config struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
	// DialTimeout also bounds the startup ping.
	DialTimeout time.Duration
	IOTimeout   time.Duration
	CacheTTL    time.Duration
}

func (c Config) options() *redis.Options {
	opts := &redis.Options{
		Addr:         c.Addr,
		Password:     c.Password,
		DB:           c.DB,
		PoolSize:     c.PoolSize,
		DialTimeout:  c.DialTimeout,
		ReadTimeout:  c.IOTimeout,
		WriteTimeout: c.IOTimeout,
	}
	if opts.PoolSize <= 0 {
		opts.PoolSize = defaultPoolSize
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = defaultDialTimeout
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = defaultIOTimeout
		opts.WriteTimeout = defaultIOTimeout
	}
	return opts
}

// Open connects to Redis, verifies the connection with a ping and returns
// a CatalogCache that owns the client.
func Open(ctx context.Context, cfg Config) (*CatalogCache, error) {
	opts := cfg.options()
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, opts.DialTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}

	return NewCatalogCache(client, cfg.CacheTTL), nil
}
