package ports

import (
	"context"

	"github.com/onlinestore/product-store/internal/core/domain"
)

// ProductSearchParams are the optional criteria accepted by product search.
// Zero values mean "no constraint".
type ProductSearchParams struct {
	Title      string  // partial, case-insensitive
	Brand      string  // partial, case-insensitive
	MinPrice   float64 // price >= MinPrice
	MaxPrice   float64 // price <= MaxPrice
	CategoryID string
}

// Empty reports whether no criteria are set.
func (p ProductSearchParams) Empty() bool {
	return p == ProductSearchParams{}
}

// CategoryRepository defines persistence operations for categories.
type CategoryRepository interface {
	Create(ctx context.Context, c *domain.Category) (*domain.Category, error)
	FindByID(ctx context.Context, id string) (*domain.Category, error)
	List(ctx context.Context, page Page) ([]*domain.Category, error)
	Update(ctx context.Context, c *domain.Category) error
	Delete(ctx context.Context, id string) error
}

// ProductRepository defines persistence operations for products.
// Soft-deleted products are invisible to every read.
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) (*domain.Product, error)
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, page Page) ([]*domain.Product, error)
	ListByCategory(ctx context.Context, categoryID string, page Page) ([]*domain.Product, error)
	Search(ctx context.Context, params ProductSearchParams, page Page) ([]*domain.Product, error)
	Update(ctx context.Context, p *domain.Product) error
	SoftDelete(ctx context.Context, id string) error

	// ReserveStock atomically decrements stock by qty, failing with
	// domain.ErrInsufficientStock when fewer than qty units remain.
	ReserveStock(ctx context.Context, productID string, qty int) error
	// ReleaseStock returns qty units to stock.
	ReleaseStock(ctx context.Context, productID string, qty int) error
}
