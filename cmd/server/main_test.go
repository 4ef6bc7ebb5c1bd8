package main

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"

	"github.com/onlinestore/product-store/internal/pkg/config"
)

func TestOpenCache(t *testing.T) {
	mr := miniredis.RunT(t)

	cache, health, closeCache := openCache(context.Background(), config.RedisConfig{Addr: mr.Addr(), CacheTTL: time.Minute}, zerolog.Nop())
	defer closeCache()

	if cache == nil {
		t.Fatal("expected a cache when redis is reachable")
	}
	if len(health) != 1 || health[0].Name != "redis" {
		t.Fatalf("expected a redis readiness dependency, got %+v", health)
	}
	if err := health[0].Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestOpenCache_UnreachableRunsUncached(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cache, health, closeCache := openCache(context.Background(), config.RedisConfig{Addr: addr, DialTimeout: time.Second}, zerolog.Nop())
	defer closeCache()

	if cache != nil {
		t.Fatalf("expected no cache, got %T", cache)
	}
	if len(health) != 0 {
		t.Fatalf("expected no redis readiness dependency, got %+v", health)
	}
}
