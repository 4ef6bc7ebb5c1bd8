package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/onlinestore/product-store/internal/core/domain"
	"github.com/onlinestore/product-store/internal/core/ports"
)

type ProductService struct {
	repo       ports.ProductRepository
	categories ports.CategoryRepository
	cache      ports.Cache
	logger     zerolog.Logger
}

// NewProductService returns a ProductService. cache may be nil.
func NewProductService(
	repo ports.ProductRepository,
	categories ports.CategoryRepository,
	cache ports.Cache,
	logger zerolog.Logger,
) *ProductService {
	return &ProductService{
		repo:       repo,
		categories: categories,
		cache:      cacheOrNoop(cache),
		logger:     logger,
	}
}

func (s *ProductService) Create(ctx context.Context, in ports.ProductInput) (*domain.Product, error) {
	if err := s.validate(ctx, in); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	now := time.Now().UTC()
	p := toProduct(in)
	p.CreatedAt = now
	p.UpdatedAt = now

	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("product_id", created.ID).Str("sku", created.SKU).Msg("product created")
	return created, nil
}

// Get reads through the cache. Cache failures are logged and ignored.
func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	var cached domain.Product
	found, err := s.cache.Get(ctx, productKey(id), &cached)
	if err != nil {
		s.logger.Warn().Err(err).Str("product_id", id).Msg("product cache read failed")
	} else if found {
		return &cached, nil
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, productKey(id), p); err != nil {
		s.logger.Warn().Err(err).Str("product_id", id).Msg("product cache write failed")
	}
	return p, nil
}

func (s *ProductService) List(ctx context.Context, page ports.Page) ([]*domain.Product, error) {
	return s.repo.List(ctx, page)
}

// ListByCategory fails with domain.ErrCategoryNotFound for unknown categories.
func (s *ProductService) ListByCategory(ctx context.Context, categoryID string, page ports.Page) ([]*domain.Product, error) {
	if _, err := s.categories.FindByID(ctx, categoryID); err != nil {
		return nil, err
	}
	return s.repo.ListByCategory(ctx, categoryID, page)
}

func (s *ProductService) Search(ctx context.Context, params ports.ProductSearchParams, page ports.Page) ([]*domain.Product, error) {
	if params.MinPrice < 0 || params.MaxPrice < 0 {
		return nil, fmt.Errorf("search products: negative price bound: %w", domain.ErrValidation)
	}
	if params.MaxPrice > 0 && params.MinPrice > params.MaxPrice {
		return nil, fmt.Errorf("search products: min_price exceeds max_price: %w", domain.ErrValidation)
	}
	params.Title = strings.TrimSpace(params.Title)
	params.Brand = strings.TrimSpace(params.Brand)
	return s.repo.Search(ctx, params, page)
}

func (s *ProductService) Update(ctx context.Context, id string, in ports.ProductInput) (*domain.Product, error) {
	if err := s.validate(ctx, in); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	p := toProduct(in)
	p.ID = id
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)
	return p, nil
}

// Delete soft-deletes the product; existing orders keep their snapshots.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	s.logger.Info().Str("product_id", id).Msg("product deleted")
	return nil
}

func (s *ProductService) validate(ctx context.Context, in ports.ProductInput) error {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.SKU) == "" {
		return fmt.Errorf("title and sku are required: %w", domain.ErrValidation)
	}
	if in.Price <= 0 {
		return fmt.Errorf("price must be greater than 0: %w", domain.ErrValidation)
	}
	if in.Stock < 0 {
		return fmt.Errorf("stock must not be negative: %w", domain.ErrValidation)
	}
	for _, id := range in.CategoryIDs {
		if _, err := s.categories.FindByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (s *ProductService) invalidate(ctx context.Context, id string) {
	if err := s.cache.Delete(ctx, productKey(id)); err != nil {
		s.logger.Warn().Err(err).Str("product_id", id).Msg("product cache invalidation failed")
	}
}

func toProduct(in ports.ProductInput) *domain.Product {
	categoryIDs := in.CategoryIDs
	if categoryIDs == nil {
		categoryIDs = []string{}
	}
	return &domain.Product{
		Title:         strings.TrimSpace(in.Title),
		Brand:         strings.TrimSpace(in.Brand),
		SKU:           strings.TrimSpace(in.SKU),
		Price:         in.Price,
		Description:   in.Description,
		CoverImageURL: in.CoverImageURL,
		CategoryIDs:   categoryIDs,
		Stock:         in.Stock,
	}
}
