package order_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaniket/ecom-backend/internal/order"
)

type mockPriceSource struct {
	priceFunc func(ctx context.Context, id uuid.UUID) (decimal.Decimal, error)
}

func (m *mockPriceSource) PriceByID(ctx context.Context, id uuid.UUID) (decimal.Decimal, error) {
	return m.priceFunc(ctx, id)
}

func fixedPrices(prices map[uuid.UUID]decimal.Decimal) *mockPriceSource {
	return &mockPriceSource{
		priceFunc: func(ctx context.Context, id uuid.UUID) (decimal.Decimal, error) {
			price, ok := prices[id]
			if !ok {
				return decimal.Decimal{}, errors.New("no such product")
			}
			return price, nil
		},
	}
}

func TestComputeTotal(t *testing.T) {
	productA := uuid.Must(uuid.NewV4())
	productB := uuid.Must(uuid.NewV4())

	prices := fixedPrices(map[uuid.UUID]decimal.Decimal{
		productA: decimal.NewFromInt(10),
		productB: decimal.NewFromInt(5),
	})

	tests := []struct {
		name  string
		items []order.ItemInput
		want  decimal.Decimal
	}{
		{
			name: "two_items",
			items: []order.ItemInput{
				{ProductID: productA, Quantity: 2},
				{ProductID: productB, Quantity: 1},
			},
			want: decimal.NewFromInt(25),
		},
		{
			name: "reversed_order_same_total",
			items: []order.ItemInput{
				{ProductID: productB, Quantity: 1},
				{ProductID: productA, Quantity: 2},
			},
			want: decimal.NewFromInt(25),
		},
		{
			name:  "empty_items_zero_total",
			items: []order.ItemInput{},
			want:  decimal.Zero,
		},
		{
			name: "same_product_twice",
			items: []order.ItemInput{
				{ProductID: productA, Quantity: 1},
				{ProductID: productA, Quantity: 3},
			},
			want: decimal.NewFromInt(40),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total, err := order.ComputeTotal(context.Background(), prices, tt.items)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(total), "want %s, got %s", tt.want, total)
		})
	}
}

// Fractional prices must not drift the way float sums do.
func TestComputeTotal_DecimalExactness(t *testing.T) {
	productID := uuid.Must(uuid.NewV4())
	prices := fixedPrices(map[uuid.UUID]decimal.Decimal{
		productID: decimal.RequireFromString("0.10"),
	})

	total, err := order.ComputeTotal(context.Background(), prices, []order.ItemInput{
		{ProductID: productID, Quantity: 3},
	})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("0.30").Equal(total), "got %s", total)
}

func TestComputeTotal_UnresolvableProduct(t *testing.T) {
	known := uuid.Must(uuid.NewV4())
	unknown := uuid.Must(uuid.NewV4())
	prices := fixedPrices(map[uuid.UUID]decimal.Decimal{
		known: decimal.NewFromInt(10),
	})

	total, err := order.ComputeTotal(context.Background(), prices, []order.ItemInput{
		{ProductID: known, Quantity: 1},
		{ProductID: unknown, Quantity: 1},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, order.ErrProductUnresolvable))
	assert.True(t, total.IsZero(), "no partial total may be reported, got %s", total)
}
