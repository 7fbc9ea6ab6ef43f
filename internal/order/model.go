package order

import (
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/swaniket/ecom-backend/internal/product"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "Pending"
	StatusProcessing OrderStatus = "Processing"
	StatusShipped    OrderStatus = "Shipped"
	StatusDelivered  OrderStatus = "Delivered"
	StatusCancelled  OrderStatus = "Cancelled"
)

func (os OrderStatus) String() string {
	return string(os)
}

// ParseStatus maps a raw status string to a known OrderStatus.
func ParseStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return OrderStatus(s), nil
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

type OrderItem struct {
	ID        uuid.UUID `json:"id" db:"id"`
	OrderID   uuid.UUID `json:"order_id" db:"order_id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	// Product is populated on expanded reads, category included.
	Product *product.Product `json:"product,omitempty" db:"-"`
}

// UserSummary is the slice of the user record exposed on order reads.
type UserSummary struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Order struct {
	ID               uuid.UUID    `json:"id" db:"id"`
	UserID           uuid.UUID    `json:"user_id" db:"user_id"`
	User             *UserSummary `json:"user,omitempty" db:"-"`
	Items            []OrderItem  `json:"order_items" db:"-"`
	ShippingAddress1 string       `json:"shipping_address1" db:"shipping_address1"`
	ShippingAddress2 string       `json:"shipping_address2,omitempty" db:"shipping_address2"`
	City             string       `json:"city" db:"city"`
	Zip              string       `json:"zip" db:"zip"`
	Country          string       `json:"country" db:"country"`
	Phone            string       `json:"phone" db:"phone"`
	Status           OrderStatus  `json:"status" db:"status"`
	// TotalPrice is a snapshot computed at placement time and never
	// recomputed, even if product prices change later.
	TotalPrice  decimal.Decimal `json:"total_price" db:"total_price"`
	DateOrdered time.Time       `json:"date_ordered" db:"date_ordered"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// ItemInput is one requested line of a new order.
type ItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// ShippingInfo carries the contact fields supplied at placement.
type ShippingInfo struct {
	Address1 string
	Address2 string
	City     string
	Zip      string
	Country  string
	Phone    string
}

// ItemDeleteFailure records one order item that could not be removed
// during a cascading delete.
type ItemDeleteFailure struct {
	ItemID uuid.UUID `json:"item_id"`
	Err    string    `json:"error"`
}

// DeleteResult enumerates the outcome of a cascading order deletion.
// The order itself is gone once DeleteOrder returns nil; ItemFailures
// lists line items that survived and need manual cleanup.
type DeleteResult struct {
	OrderID      uuid.UUID           `json:"order_id"`
	DeletedItems int                 `json:"deleted_items"`
	ItemFailures []ItemDeleteFailure `json:"item_failures,omitempty"`
}
