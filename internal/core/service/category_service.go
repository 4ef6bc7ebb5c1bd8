package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/onlinestore/product-store/internal/core/domain"
	"github.com/onlinestore/product-store/internal/core/ports"
)

type CategoryService struct {
	repo   ports.CategoryRepository
	cache  ports.Cache
	logger zerolog.Logger
}

// NewCategoryService returns a CategoryService. cache may be nil.
func NewCategoryService(repo ports.CategoryRepository, cache ports.Cache, logger zerolog.Logger) *CategoryService {
	return &CategoryService{repo: repo, cache: cacheOrNoop(cache), logger: logger}
}

func (s *CategoryService) Create(ctx context.Context, in ports.CategoryInput) (*domain.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("create category: name is required: %w", domain.ErrValidation)
	}

	created, err := s.repo.Create(ctx, &domain.Category{Name: name, Description: strings.TrimSpace(in.Description)})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("category_id", created.ID).Msg("category created")
	return created, nil
}

// Get reads through the cache. Cache failures are logged and ignored.
func (s *CategoryService) Get(ctx context.Context, id string) (*domain.Category, error) {
	var cached domain.Category
	found, err := s.cache.Get(ctx, categoryKey(id), &cached)
	if err != nil {
		s.logger.Warn().Err(err).Str("category_id", id).Msg("category cache read failed")
	} else if found {
		return &cached, nil
	}

	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, categoryKey(id), c); err != nil {
		s.logger.Warn().Err(err).Str("category_id", id).Msg("category cache write failed")
	}
	return c, nil
}

func (s *CategoryService) List(ctx context.Context, page ports.Page) ([]*domain.Category, error) {
	return s.repo.List(ctx, page)
}

func (s *CategoryService) Update(ctx context.Context, id string, in ports.CategoryInput) (*domain.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("update category: name is required: %w", domain.ErrValidation)
	}

	c := &domain.Category{ID: id, Name: name, Description: strings.TrimSpace(in.Description)}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)
	return c, nil
}

func (s *CategoryService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	s.logger.Info().Str("category_id", id).Msg("category deleted")
	return nil
}

func (s *CategoryService) invalidate(ctx context.Context, id string) {
	if err := s.cache.Delete(ctx, categoryKey(id)); err != nil {
		s.logger.Warn().Err(err).Str("category_id", id).Msg("category cache invalidation failed")
	}
}
