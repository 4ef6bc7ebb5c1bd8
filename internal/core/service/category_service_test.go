package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/onlinestore/product-store/internal/core/domain"
	"github.com/onlinestore/product-store/internal/core/ports"
)

func TestCategoryService_Create(t *testing.T) {
	svc := NewCategoryService(newStubCategoryRepo(), nil, zerolog.Nop())

	c, err := svc.Create(context.Background(), ports.CategoryInput{Name: " Books "})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if c.ID == "" || c.Name != "Books" {
		t.Fatalf("unexpected category %+v", c)
	}

	if _, err := svc.Create(context.Background(), ports.CategoryInput{Name: "  "}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, err := svc.Create(context.Background(), ports.CategoryInput{Name: "Books"}); !errors.Is(err, domain.ErrCategoryExists) {
		t.Fatalf("expected ErrCategoryExists, got %v", err)
	}
}

func TestCategoryService_GetReadsThroughCache(t *testing.T) {
	repo := newStubCategoryRepo(&domain.Category{ID: "c1", Name: "Books"})
	cache := newMapCache()
	svc := NewCategoryService(repo, cache, zerolog.Nop())

	for i := 0; i < 3; i++ {
		c, err := svc.Get(context.Background(), "c1")
		if err != nil {
			t.Fatalf("Get returned error: %v", err)
		}
		if c.Name != "Books" {
			t.Fatalf("unexpected category %+v", c)
		}
	}
	if repo.finds != 1 {
		t.Fatalf("expected one repository lookup, got %d", repo.finds)
	}
}

func TestCategoryService_CacheErrorFallsBackToStore(t *testing.T) {
	repo := newStubCategoryRepo(&domain.Category{ID: "c1", Name: "Books"})
	cache := newMapCache()
	cache.getErr = errors.New("redis down")
	svc := NewCategoryService(repo, cache, zerolog.Nop())

	if _, err := svc.Get(context.Background(), "c1"); err != nil {
		t.Fatalf("expected store fallback, got %v", err)
	}
}

func TestCategoryService_UpdateAndDeleteInvalidate(t *testing.T) {
	repo := newStubCategoryRepo(&domain.Category{ID: "c1", Name: "Books"})
	cache := newMapCache()
	svc := NewCategoryService(repo, cache, zerolog.Nop())

	if _, err := svc.Get(context.Background(), "c1"); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if _, err := svc.Update(context.Background(), "c1", ports.CategoryInput{Name: "Novels"}); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	c, _ := svc.Get(context.Background(), "c1")
	if c.Name != "Novels" {
		t.Fatalf("stale cached category after update: %+v", c)
	}

	if err := svc.Delete(context.Background(), "c1"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := svc.Get(context.Background(), "c1"); !errors.Is(err, domain.ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound after delete, got %v", err)
	}
	if err := svc.Delete(context.Background(), "c1"); !errors.Is(err, domain.ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound, got %v", err)
	}
}
