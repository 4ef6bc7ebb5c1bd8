package service

import (
	"context"

	"github.com/onlinestore/product-store/internal/core/ports"
)

func categoryKey(id string) string { return "category:" + id }
func productKey(id string) string  { return "product:" + id }

// noopCache is used when no cache is configured.
type noopCache struct{}

func (noopCache) Get(context.Context, string, any) (bool, error) { return false, nil }
func (noopCache) Set(context.Context, string, any) error         { return nil }
func (noopCache) Delete(context.Context, ...string) error        { return nil }

func cacheOrNoop(c ports.Cache) ports.Cache {
	if c == nil {
		return noopCache{}
	}
	return c
}
