package category

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

type Service interface {
	CreateCategory(ctx context.Context, c *Category) (*Category, error)
	GetCategoryByID(ctx context.Context, id uuid.UUID) (*Category, error)
	ListCategories(ctx context.Context) ([]Category, error)
	UpdateCategory(ctx context.Context, c *Category) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateCategory(ctx context.Context, c *Category) (*Category, error) {
	if c.Name == "" {
		return nil, errors.New("service: category name is required")
	}

	if c.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return nil, fmt.Errorf("service: failed to generate category ID: %w", err)
		}
		c.ID = id
	}

	if err := s.repo.Create(ctx, c); err != nil {
		log.Error().Err(err).Msg("service: failed to create category in repository")
		return nil, fmt.Errorf("service: failed to create category: %w", err)
	}

	return c, nil
}

func (s *service) GetCategoryByID(ctx context.Context, id uuid.UUID) (*Category, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn().Stringer("category_id", id).Msg("service: category not found")
			return nil, ErrNotFound
		}
		log.Error().Err(err).Msg("service: failed to fetch category by id in repository")
		return nil, fmt.Errorf("service: failed to fetch category by id: %w", err)
	}

	return c, nil
}

func (s *service) ListCategories(ctx context.Context) ([]Category, error) {
	categories, err := s.repo.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to fetch categories in repository")
		return nil, fmt.Errorf("service: failed to fetch categories: %w", err)
	}

	return categories, nil
}

func (s *service) UpdateCategory(ctx context.Context, c *Category) error {
	if c.Name == "" {
		return errors.New("service: category name is required")
	}

	err := s.repo.Update(ctx, c)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		log.Error().Err(err).Stringer("category_id", c.ID).Msg("service: failed to update category")
		return fmt.Errorf("service: failed to update category: %w", err)
	}

	return nil
}

// DeleteCategory removes a category. Products referencing it keep a
// dangling category id; existing orders are unaffected because their
// totals are price snapshots.
func (s *service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		log.Error().Err(err).Stringer("category_id", id).Msg("service: failed to delete category")
		return fmt.Errorf("service: failed to delete category: %w", err)
	}

	return nil
}
