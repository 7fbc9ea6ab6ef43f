package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/swaniket/ecom-backend/internal/category"
	"github.com/swaniket/ecom-backend/internal/product"
)

var ErrNotFound = errors.New("order not found")

type Repository interface {
	// Create writes the order and its items in a single transaction, so
	// a failed order write leaves no orphaned items behind.
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	List(ctx context.Context) ([]Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, newStatus OrderStatus) error
	Delete(ctx context.Context, id uuid.UUID) (*DeleteResult, error)
	TotalSales(ctx context.Context) (decimal.Decimal, error)
	Count(ctx context.Context) (int64, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, o *Order) (err error) {
	tx, beginErr := r.db.Begin(ctx)
	if beginErr != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", beginErr)
	}
	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("order_id", o.ID).Msg("Failed to rollback transaction after panic")
			}
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("order_id", o.ID).Msg("Failed to rollback transaction")
			}
		} else {
			if commitErr := tx.Commit(ctx); commitErr != nil {
				err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
			}
		}
	}()

	now := time.Now().UTC()
	if o.DateOrdered.IsZero() {
		o.DateOrdered = now
	}
	o.UpdatedAt = now

	queryOrder := `
		INSERT INTO orders (id, user_id, status, total_price, shipping_address1, shipping_address2,
			city, zip, country, phone, date_ordered, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err = tx.Exec(ctx, queryOrder,
		o.ID, o.UserID, string(o.Status), o.TotalPrice,
		o.ShippingAddress1, o.ShippingAddress2, o.City, o.Zip, o.Country, o.Phone,
		o.DateOrdered, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert order: %w", err)
	}

	queryItem := `
		INSERT INTO order_items (id, order_id, product_id, quantity, position)
		VALUES ($1, $2, $3, $4, $5)
	`
	for i := range o.Items {
		item := &o.Items[i]

		if item.ID == uuid.Nil {
			itemID, genErr := uuid.NewV4()
			if genErr != nil {
				return fmt.Errorf("repository: failed to generate order item ID: %w", genErr)
			}
			item.ID = itemID
		}
		item.OrderID = o.ID

		_, err = tx.Exec(ctx, queryItem, item.ID, o.ID, item.ProductID, item.Quantity, i)
		if err != nil {
			return fmt.Errorf("repository: failed to insert order item for order %s: %w", o.ID, err)
		}
	}

	return nil
}

const orderColumns = `
	o.id, o.user_id, o.status, o.total_price, o.shipping_address1, o.shipping_address2,
	o.city, o.zip, o.country, o.phone, o.date_ordered, o.updated_at,
	u.name, u.email`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var userName, userEmail *string

	err := row.Scan(
		&o.ID, &o.UserID, &o.Status, &o.TotalPrice, &o.ShippingAddress1, &o.ShippingAddress2,
		&o.City, &o.Zip, &o.Country, &o.Phone, &o.DateOrdered, &o.UpdatedAt,
		&userName, &userEmail,
	)
	if err != nil {
		return nil, err
	}

	if userName != nil {
		o.User = &UserSummary{Name: *userName, Email: *userEmail}
	}

	return &o, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders o
		LEFT JOIN users u ON u.id = o.user_id
		WHERE o.id = $1
	`

	o, err := scanOrder(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select order by id %s: %w", id, err)
	}

	itemsByOrder, err := r.loadExpandedItems(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	o.Items = itemsByOrder[id]
	if o.Items == nil {
		o.Items = make([]OrderItem, 0)
	}

	return o, nil
}

func (r *postgresRepository) List(ctx context.Context) ([]Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders o
		LEFT JOIN users u ON u.id = o.user_id
		ORDER BY o.date_ordered DESC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order: %w", err)
		}
		// List never expands items; keep the serialized shape a list, not null.
		o.Items = make([]OrderItem, 0)
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating orders: %w", err)
	}

	return orders, nil
}

func (r *postgresRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders o
		LEFT JOIN users u ON u.id = o.user_id
		WHERE o.user_id = $1
		ORDER BY o.date_ordered DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query orders for user %s: %w", userID, err)
	}
	defer rows.Close()

	ordersByID := make(map[uuid.UUID]*Order)
	var orderIDs []uuid.UUID
	orders := make([]Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order for user %s: %w", userID, err)
		}
		o.Items = make([]OrderItem, 0)
		orders = append(orders, *o)
		orderIDs = append(orderIDs, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating orders for user %s: %w", userID, err)
	}

	if len(orderIDs) == 0 {
		return orders, nil
	}
	for i := range orders {
		ordersByID[orders[i].ID] = &orders[i]
	}

	itemsByOrder, err := r.loadExpandedItems(ctx, orderIDs)
	if err != nil {
		return nil, err
	}
	for orderID, items := range itemsByOrder {
		if o, ok := ordersByID[orderID]; ok {
			o.Items = items
		}
	}

	return orders, nil
}

// loadExpandedItems fetches the items of the given orders with their
// product and the product's category populated, keyed by order id and
// kept in placement order.
func (r *postgresRepository) loadExpandedItems(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]OrderItem, error) {
	query := `
		SELECT oi.id, oi.order_id, oi.product_id, oi.quantity,
			p.id, p.name, p.description, p.rich_description, p.image_url, p.gallery_image_urls,
			p.brand, p.price, p.category_id, p.count_in_stock, p.rating, p.num_reviews, p.is_featured,
			p.created_at, p.updated_at,
			c.id, c.name, c.icon, c.color, c.created_at, c.updated_at
		FROM order_items oi
		LEFT JOIN products p ON p.id = oi.product_id
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE oi.order_id = ANY($1)
		ORDER BY oi.order_id, oi.position
	`

	rows, err := r.db.Query(ctx, query, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query order items: %w", err)
	}
	defer rows.Close()

	itemsByOrder := make(map[uuid.UUID][]OrderItem)
	for rows.Next() {
		var item OrderItem
		var prodID, catID *uuid.UUID
		var prodName, prodDescription, prodRichDescription, prodImageURL, prodBrand *string
		var prodGallery []string
		var prodPrice *decimal.Decimal
		var prodCategoryID *uuid.UUID
		var prodCountInStock, prodNumReviews *int
		var prodRating *float64
		var prodIsFeatured *bool
		var prodCreatedAt, prodUpdatedAt *time.Time
		var catName, catIcon, catColor *string
		var catCreatedAt, catUpdatedAt *time.Time

		err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.Quantity,
			&prodID, &prodName, &prodDescription, &prodRichDescription, &prodImageURL, &prodGallery,
			&prodBrand, &prodPrice, &prodCategoryID, &prodCountInStock, &prodRating, &prodNumReviews, &prodIsFeatured,
			&prodCreatedAt, &prodUpdatedAt,
			&catID, &catName, &catIcon, &catColor, &catCreatedAt, &catUpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order item: %w", err)
		}

		if prodID != nil {
			item.Product = &product.Product{
				ID:               *prodID,
				Name:             *prodName,
				Description:      *prodDescription,
				RichDescription:  *prodRichDescription,
				ImageURL:         *prodImageURL,
				GalleryImageURLs: prodGallery,
				Brand:            *prodBrand,
				Price:            *prodPrice,
				CategoryID:       *prodCategoryID,
				CountInStock:     *prodCountInStock,
				Rating:           *prodRating,
				NumReviews:       *prodNumReviews,
				IsFeatured:       *prodIsFeatured,
				CreatedAt:        *prodCreatedAt,
				UpdatedAt:        *prodUpdatedAt,
			}
			if catID != nil {
				item.Product.Category = &category.Category{
					ID:        *catID,
					Name:      *catName,
					Icon:      *catIcon,
					Color:     *catColor,
					CreatedAt: *catCreatedAt,
					UpdatedAt: *catUpdatedAt,
				}
			}
		}

		itemsByOrder[item.OrderID] = append(itemsByOrder[item.OrderID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating order items: %w", err)
	}

	return itemsByOrder, nil
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, newStatus OrderStatus) error {
	query := `
		UPDATE orders
		SET status = $1, updated_at = $2
		WHERE id = $3
	`

	cmdTag, err := r.db.Exec(ctx, query, string(newStatus), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("repository: failed to update order status %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes the order row first, then each of its items
// independently. Item failures do not undo the order deletion; they are
// reported in the result.
func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) (*DeleteResult, error) {
	itemRows, err := r.db.Query(ctx, `SELECT id FROM order_items WHERE order_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query items of order %s: %w", id, err)
	}

	var itemIDs []uuid.UUID
	for itemRows.Next() {
		var itemID uuid.UUID
		if err := itemRows.Scan(&itemID); err != nil {
			itemRows.Close()
			return nil, fmt.Errorf("repository: failed to scan order item id: %w", err)
		}
		itemIDs = append(itemIDs, itemID)
	}
	if err := itemRows.Err(); err != nil {
		itemRows.Close()
		return nil, fmt.Errorf("repository: error iterating order item ids: %w", err)
	}
	itemRows.Close()

	cmdTag, err := r.db.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to delete order %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	result := &DeleteResult{OrderID: id}
	for _, itemID := range itemIDs {
		if _, err := r.db.Exec(ctx, `DELETE FROM order_items WHERE id = $1`, itemID); err != nil {
			log.Error().Err(err).Stringer("order_id", id).Stringer("item_id", itemID).Msg("repository: failed to delete order item")
			result.ItemFailures = append(result.ItemFailures, ItemDeleteFailure{ItemID: itemID, Err: err.Error()})
			continue
		}
		result.DeletedItems++
	}

	return result, nil
}

func (r *postgresRepository) TotalSales(ctx context.Context) (decimal.Decimal, error) {
	// COALESCE makes the empty order set a defined zero instead of NULL.
	var total decimal.Decimal
	err := r.db.QueryRow(ctx, `SELECT COALESCE(SUM(total_price), 0) FROM orders`).Scan(&total)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("repository: failed to sum order totals: %w", err)
	}

	return total, nil
}

func (r *postgresRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders`).Scan(&count); err != nil {
		return 0, fmt.Errorf("repository: failed to count orders: %w", err)
	}

	return count, nil
}
