package product

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/swaniket/ecom-backend/internal/category"
)

var ErrNotFound = errors.New("product not found")

type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	List(ctx context.Context, categoryIDs []uuid.UUID) ([]Product, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
	Featured(ctx context.Context, limit int) ([]Product, error)
	SetGalleryImages(ctx context.Context, id uuid.UUID, urls []string) (*Product, error)
	PriceByID(ctx context.Context, id uuid.UUID) (decimal.Decimal, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

const productColumns = `
	p.id, p.name, p.description, p.rich_description, p.image_url, p.gallery_image_urls,
	p.brand, p.price, p.category_id, p.count_in_stock, p.rating, p.num_reviews, p.is_featured,
	p.created_at, p.updated_at,
	c.id, c.name, c.icon, c.color, c.created_at, c.updated_at`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	var catID *uuid.UUID
	var catName, catIcon, catColor *string
	var catCreatedAt, catUpdatedAt *time.Time

	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.RichDescription, &p.ImageURL, &p.GalleryImageURLs,
		&p.Brand, &p.Price, &p.CategoryID, &p.CountInStock, &p.Rating, &p.NumReviews, &p.IsFeatured,
		&p.CreatedAt, &p.UpdatedAt,
		&catID, &catName, &catIcon, &catColor, &catCreatedAt, &catUpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	// A dangling category id leaves Category nil.
	if catID != nil {
		p.Category = &category.Category{
			ID:        *catID,
			Name:      *catName,
			Icon:      *catIcon,
			Color:     *catColor,
			CreatedAt: *catCreatedAt,
			UpdatedAt: *catUpdatedAt,
		}
	}

	return &p, nil
}

func (r *postgresRepository) Create(ctx context.Context, p *Product) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	query := `
		INSERT INTO products (id, name, description, rich_description, image_url, gallery_image_urls,
			brand, price, category_id, count_in_stock, rating, num_reviews, is_featured, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := r.db.Exec(ctx, query,
		p.ID, p.Name, p.Description, p.RichDescription, p.ImageURL, p.GalleryImageURLs,
		p.Brand, p.Price, p.CategoryID, p.CountInStock, p.Rating, p.NumReviews, p.IsFeatured,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert product: %w", err)
	}

	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE p.id = $1
	`

	p, err := scanProduct(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select product by id %s: %w", id, err)
	}

	return p, nil
}

func (r *postgresRepository) List(ctx context.Context, categoryIDs []uuid.UUID) ([]Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
	`
	args := []any{}
	if len(categoryIDs) > 0 {
		query += ` WHERE p.category_id = ANY($1)`
		args = append(args, categoryIDs)
	}
	query += ` ORDER BY p.created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan product: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating products: %w", err)
	}

	return products, nil
}

func (r *postgresRepository) Update(ctx context.Context, p *Product) error {
	p.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE products
		SET name = $1, description = $2, rich_description = $3, image_url = $4,
			brand = $5, price = $6, category_id = $7, count_in_stock = $8,
			rating = $9, num_reviews = $10, is_featured = $11, updated_at = $12
		WHERE id = $13
	`
	cmdTag, err := r.db.Exec(ctx, query,
		p.Name, p.Description, p.RichDescription, p.ImageURL,
		p.Brand, p.Price, p.CategoryID, p.CountInStock,
		p.Rating, p.NumReviews, p.IsFeatured, p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to update product %s: %w", p.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete product %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *postgresRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return 0, fmt.Errorf("repository: failed to count products: %w", err)
	}

	return count, nil
}

func (r *postgresRepository) Featured(ctx context.Context, limit int) ([]Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE p.is_featured
		ORDER BY p.created_at DESC
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query featured products: %w", err)
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan featured product: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating featured products: %w", err)
	}

	return products, nil
}

func (r *postgresRepository) SetGalleryImages(ctx context.Context, id uuid.UUID, urls []string) (*Product, error) {
	query := `
		UPDATE products
		SET gallery_image_urls = $1, updated_at = $2
		WHERE id = $3
	`
	cmdTag, err := r.db.Exec(ctx, query, urls, time.Now().UTC(), id)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to update gallery images for product %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	return r.GetByID(ctx, id)
}

func (r *postgresRepository) PriceByID(ctx context.Context, id uuid.UUID) (decimal.Decimal, error) {
	var price decimal.Decimal
	err := r.db.QueryRow(ctx, `SELECT price FROM products WHERE id = $1`, id).Scan(&price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Decimal{}, ErrNotFound
		}
		return decimal.Decimal{}, fmt.Errorf("repository: failed to select product price %s: %w", id, err)
	}

	return price, nil
}
