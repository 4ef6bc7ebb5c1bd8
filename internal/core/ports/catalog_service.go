package ports

import (
	"context"

	"github.com/onlinestore/product-store/internal/core/domain"
)

// CategoryInput carries the writable category fields.
type CategoryInput struct {
	Name        string
	Description string
}

// ProductInput carries the writable product fields.
type ProductInput struct {
	Title         string
	Brand         string
	SKU           string
	Price         float64
	Description   string
	CoverImageURL string
	CategoryIDs   []string
	Stock         int
}

// CategoryService defines category use cases.
type CategoryService interface {
	Create(ctx context.Context, in CategoryInput) (*domain.Category, error)
	Get(ctx context.Context, id string) (*domain.Category, error)
	List(ctx context.Context, page Page) ([]*domain.Category, error)
	Update(ctx context.Context, id string, in CategoryInput) (*domain.Category, error)
	Delete(ctx context.Context, id string) error
}

// ProductService defines product use cases.
type ProductService interface {
	Create(ctx context.Context, in ProductInput) (*domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, page Page) ([]*domain.Product, error)
	ListByCategory(ctx context.Context, categoryID string, page Page) ([]*domain.Product, error)
	Search(ctx context.Context, params ProductSearchParams, page Page) ([]*domain.Product, error)
	Update(ctx context.Context, id string, in ProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
}
