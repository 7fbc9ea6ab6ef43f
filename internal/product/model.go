package product

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/swaniket/ecom-backend/internal/category"
)

type Product struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	Name             string          `json:"name" db:"name"`
	Description      string          `json:"description" db:"description"`
	RichDescription  string          `json:"rich_description,omitempty" db:"rich_description"`
	ImageURL         string          `json:"image_url,omitempty" db:"image_url"`
	GalleryImageURLs []string        `json:"gallery_image_urls,omitempty" db:"gallery_image_urls"`
	Brand            string          `json:"brand,omitempty" db:"brand"`
	Price            decimal.Decimal `json:"price" db:"price"`
	CategoryID       uuid.UUID       `json:"category_id" db:"category_id"`
	// Category is populated on reads, taking the place of the bare id.
	Category     *category.Category `json:"category,omitempty" db:"-"`
	CountInStock int                `json:"count_in_stock" db:"count_in_stock"`
	Rating       float64            `json:"rating" db:"rating"`
	NumReviews   int                `json:"num_reviews" db:"num_reviews"`
	IsFeatured   bool               `json:"is_featured" db:"is_featured"`
	CreatedAt    time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" db:"updated_at"`
}
