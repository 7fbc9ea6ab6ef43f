package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

// ErrProductUnresolvable is returned when a line item references a
// product whose price cannot be looked up. No partial total is reported.
var ErrProductUnresolvable = errors.New("order references a product that cannot be resolved")

// PriceSource resolves a product's current price. product.Repository
// satisfies it.
type PriceSource interface {
	PriceByID(ctx context.Context, id uuid.UUID) (decimal.Decimal, error)
}

// ComputeTotal sums quantity times unit price over the given items using
// exact decimal arithmetic. The result is independent of item order, and
// an empty item list yields zero.
func ComputeTotal(ctx context.Context, prices PriceSource, items []ItemInput) (decimal.Decimal, error) {
	total := decimal.Zero

	for _, item := range items {
		price, err := prices.PriceByID(ctx, item.ProductID)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: product %s: %v", ErrProductUnresolvable, item.ProductID, err)
		}
		total = total.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	return total, nil
}
