package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/swaniket/ecom-backend/internal/category"
)

var ErrInvalidCategory = errors.New("invalid category")

type Service interface {
	CreateProduct(ctx context.Context, p *Product) (*Product, error)
	GetProductByID(ctx context.Context, id uuid.UUID) (*Product, error)
	ListProducts(ctx context.Context, categoryIDs []uuid.UUID) ([]Product, error)
	UpdateProduct(ctx context.Context, p *Product) (*Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	ProductCount(ctx context.Context) (int64, error)
	FeaturedProducts(ctx context.Context, limit int) ([]Product, error)
	SetGalleryImages(ctx context.Context, id uuid.UUID, urls []string) (*Product, error)
}

type service struct {
	repo       Repository
	categories category.Repository
}

func NewService(repo Repository, categories category.Repository) Service {
	return &service{repo: repo, categories: categories}
}

func (s *service) validate(ctx context.Context, p *Product) error {
	if p.Name == "" {
		return errors.New("service: product name is required")
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("service: product price cannot be negative, got %s", p.Price)
	}
	if p.CategoryID == uuid.Nil {
		return ErrInvalidCategory
	}

	exists, err := s.categories.ExistsByID(ctx, p.CategoryID)
	if err != nil {
		return fmt.Errorf("service: failed to check category: %w", err)
	}
	if !exists {
		return ErrInvalidCategory
	}

	return nil
}

func (s *service) CreateProduct(ctx context.Context, p *Product) (*Product, error) {
	if err := s.validate(ctx, p); err != nil {
		return nil, err
	}

	if p.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return nil, fmt.Errorf("service: failed to generate product ID: %w", err)
		}
		p.ID = id
	}

	if err := s.repo.Create(ctx, p); err != nil {
		log.Error().Err(err).Msg("service: failed to create product in repository")
		return nil, fmt.Errorf("service: failed to create product: %w", err)
	}

	log.Info().Stringer("product_id", p.ID).Str("name", p.Name).Msg("service: product created")

	return p, nil
}

func (s *service) GetProductByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn().Stringer("product_id", id).Msg("service: product not found")
			return nil, ErrNotFound
		}
		log.Error().Err(err).Msg("service: failed to fetch product by id in repository")
		return nil, fmt.Errorf("service: failed to fetch product by id: %w", err)
	}

	return p, nil
}

func (s *service) ListProducts(ctx context.Context, categoryIDs []uuid.UUID) ([]Product, error) {
	products, err := s.repo.List(ctx, categoryIDs)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to fetch products in repository")
		return nil, fmt.Errorf("service: failed to fetch products: %w", err)
	}

	return products, nil
}

func (s *service) UpdateProduct(ctx context.Context, p *Product) (*Product, error) {
	if err := s.validate(ctx, p); err != nil {
		return nil, err
	}

	// Keep the stored image when the update carries none.
	if p.ImageURL == "" {
		current, err := s.repo.GetByID(ctx, p.ID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("service: failed to fetch product for update: %w", err)
		}
		p.ImageURL = current.ImageURL
	}

	if err := s.repo.Update(ctx, p); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("product_id", p.ID).Msg("service: failed to update product")
		return nil, fmt.Errorf("service: failed to update product: %w", err)
	}

	return s.repo.GetByID(ctx, p.ID)
}

func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		log.Error().Err(err).Stringer("product_id", id).Msg("service: failed to delete product")
		return fmt.Errorf("service: failed to delete product: %w", err)
	}

	return nil
}

func (s *service) ProductCount(ctx context.Context) (int64, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to count products")
		return 0, fmt.Errorf("service: failed to count products: %w", err)
	}

	return count, nil
}

func (s *service) FeaturedProducts(ctx context.Context, limit int) ([]Product, error) {
	if limit <= 0 {
		return []Product{}, nil
	}

	products, err := s.repo.Featured(ctx, limit)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to fetch featured products")
		return nil, fmt.Errorf("service: failed to fetch featured products: %w", err)
	}

	return products, nil
}

func (s *service) SetGalleryImages(ctx context.Context, id uuid.UUID, urls []string) (*Product, error) {
	p, err := s.repo.SetGalleryImages(ctx, id, urls)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("product_id", id).Msg("service: failed to set gallery images")
		return nil, fmt.Errorf("service: failed to set gallery images: %w", err)
	}

	return p, nil
}
