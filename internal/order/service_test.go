package order_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaniket/ecom-backend/internal/events"
	"github.com/swaniket/ecom-backend/internal/order"
)

type mockOrderRepository struct {
	createFunc       func(ctx context.Context, o *order.Order) error
	getByIDFunc      func(ctx context.Context, id uuid.UUID) (*order.Order, error)
	listFunc         func(ctx context.Context) ([]order.Order, error)
	listByUserFunc   func(ctx context.Context, userID uuid.UUID) ([]order.Order, error)
	updateStatusFunc func(ctx context.Context, id uuid.UUID, newStatus order.OrderStatus) error
	deleteFunc       func(ctx context.Context, id uuid.UUID) (*order.DeleteResult, error)
	totalSalesFunc   func(ctx context.Context) (decimal.Decimal, error)
	countFunc        func(ctx context.Context) (int64, error)
}

func (m *mockOrderRepository) Create(ctx context.Context, o *order.Order) error {
	return m.createFunc(ctx, o)
}

func (m *mockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockOrderRepository) List(ctx context.Context) ([]order.Order, error) {
	return m.listFunc(ctx)
}

func (m *mockOrderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]order.Order, error) {
	return m.listByUserFunc(ctx, userID)
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, newStatus order.OrderStatus) error {
	return m.updateStatusFunc(ctx, id, newStatus)
}

func (m *mockOrderRepository) Delete(ctx context.Context, id uuid.UUID) (*order.DeleteResult, error) {
	return m.deleteFunc(ctx, id)
}

func (m *mockOrderRepository) TotalSales(ctx context.Context) (decimal.Decimal, error) {
	return m.totalSalesFunc(ctx)
}

func (m *mockOrderRepository) Count(ctx context.Context) (int64, error) {
	return m.countFunc(ctx)
}

type recordedEvent struct {
	topic string
	key   string
	event any
}

type recordingPublisher struct {
	published []recordedEvent
}

func (p *recordingPublisher) PublishEvent(ctx context.Context, topic string, key string, event any) error {
	p.published = append(p.published, recordedEvent{topic: topic, key: key, event: event})
	return nil
}

func TestOrderService_PlaceOrder(t *testing.T) {
	productA := uuid.Must(uuid.NewV4())
	productB := uuid.Must(uuid.NewV4())
	userID := uuid.Must(uuid.NewV4())

	prices := fixedPrices(map[uuid.UUID]decimal.Decimal{
		productA: decimal.NewFromInt(10),
		productB: decimal.NewFromInt(5),
	})

	shipping := order.ShippingInfo{
		Address1: "42 Main St",
		City:     "Kolkata",
		Zip:      "700001",
		Country:  "India",
		Phone:    "+91-900000000",
	}

	t.Run("success", func(t *testing.T) {
		var createdOrder *order.Order
		repo := &mockOrderRepository{
			createFunc: func(ctx context.Context, o *order.Order) error {
				createdOrder = o
				return nil
			},
		}
		publisher := &recordingPublisher{}
		svc := order.NewService(repo, prices, publisher)

		placed, err := svc.PlaceOrder(context.Background(), order.PlaceOrderInput{
			UserID: userID,
			Items: []order.ItemInput{
				{ProductID: productA, Quantity: 2},
				{ProductID: productB, Quantity: 1},
			},
			Shipping: shipping,
		})
		require.NoError(t, err)
		require.NotNil(t, createdOrder)

		assert.True(t, decimal.NewFromInt(25).Equal(placed.TotalPrice), "got %s", placed.TotalPrice)
		assert.Equal(t, order.StatusPending, placed.Status)
		require.Len(t, placed.Items, 2)
		assert.Equal(t, productA, placed.Items[0].ProductID)
		assert.Equal(t, productB, placed.Items[1].ProductID)
		assert.Equal(t, userID, placed.UserID)
		assert.NotEqual(t, uuid.Nil, placed.ID)

		require.Len(t, publisher.published, 1)
		assert.Equal(t, events.TopicOrders, publisher.published[0].topic)
		event, ok := publisher.published[0].event.(events.OrderEvent)
		require.True(t, ok)
		assert.Equal(t, events.OrderPlaced, event.Type)
		assert.Equal(t, placed.ID.String(), event.OrderID)
	})

	t.Run("empty_items_zero_total", func(t *testing.T) {
		repo := &mockOrderRepository{
			createFunc: func(ctx context.Context, o *order.Order) error { return nil },
		}
		svc := order.NewService(repo, prices, events.NewNoopPublisher())

		placed, err := svc.PlaceOrder(context.Background(), order.PlaceOrderInput{
			UserID:   userID,
			Items:    []order.ItemInput{},
			Shipping: shipping,
		})
		require.NoError(t, err)
		assert.True(t, placed.TotalPrice.IsZero(), "got %s", placed.TotalPrice)
		assert.Empty(t, placed.Items)
		assert.Equal(t, order.StatusPending, placed.Status)
	})

	t.Run("rejects_non_positive_quantity", func(t *testing.T) {
		repoCalled := false
		repo := &mockOrderRepository{
			createFunc: func(ctx context.Context, o *order.Order) error {
				repoCalled = true
				return nil
			},
		}
		svc := order.NewService(repo, prices, events.NewNoopPublisher())

		_, err := svc.PlaceOrder(context.Background(), order.PlaceOrderInput{
			UserID:   userID,
			Items:    []order.ItemInput{{ProductID: productA, Quantity: 0}},
			Shipping: shipping,
		})
		require.Error(t, err)
		assert.False(t, repoCalled, "repository must not be reached")
	})

	t.Run("rejects_nil_product_id", func(t *testing.T) {
		repo := &mockOrderRepository{}
		svc := order.NewService(repo, prices, events.NewNoopPublisher())

		_, err := svc.PlaceOrder(context.Background(), order.PlaceOrderInput{
			UserID:   userID,
			Items:    []order.ItemInput{{ProductID: uuid.Nil, Quantity: 1}},
			Shipping: shipping,
		})
		require.Error(t, err)
	})

	t.Run("unresolvable_product_aborts_before_write", func(t *testing.T) {
		repoCalled := false
		repo := &mockOrderRepository{
			createFunc: func(ctx context.Context, o *order.Order) error {
				repoCalled = true
				return nil
			},
		}
		svc := order.NewService(repo, prices, events.NewNoopPublisher())

		_, err := svc.PlaceOrder(context.Background(), order.PlaceOrderInput{
			UserID:   userID,
			Items:    []order.ItemInput{{ProductID: uuid.Must(uuid.NewV4()), Quantity: 1}},
			Shipping: shipping,
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, order.ErrProductUnresolvable))
		assert.False(t, repoCalled, "nothing may be written when pricing fails")
	})

	t.Run("repository_failure", func(t *testing.T) {
		repo := &mockOrderRepository{
			createFunc: func(ctx context.Context, o *order.Order) error {
				return errors.New("connection reset")
			},
		}
		publisher := &recordingPublisher{}
		svc := order.NewService(repo, prices, publisher)

		_, err := svc.PlaceOrder(context.Background(), order.PlaceOrderInput{
			UserID:   userID,
			Items:    []order.ItemInput{{ProductID: productA, Quantity: 1}},
			Shipping: shipping,
		})
		require.Error(t, err)
		assert.Empty(t, publisher.published, "no event for a failed placement")
	})
}

func TestOrderService_UpdateStatus(t *testing.T) {
	orderID := uuid.Must(uuid.NewV4())
	userID := uuid.Must(uuid.NewV4())

	baseOrder := func(status order.OrderStatus) *order.Order {
		return &order.Order{
			ID:               orderID,
			UserID:           userID,
			Status:           status,
			ShippingAddress1: "42 Main St",
			City:             "Kolkata",
			TotalPrice:       decimal.NewFromInt(100),
			DateOrdered:      time.Date(2025, 4, 16, 12, 0, 0, 0, time.UTC),
		}
	}

	tests := []struct {
		name       string
		current    order.OrderStatus
		newStatus  order.OrderStatus
		wantErrIs  error
		wantUpdate bool
	}{
		{name: "pending_to_shipped", current: order.StatusPending, newStatus: order.StatusShipped, wantUpdate: true},
		{name: "pending_to_processing", current: order.StatusPending, newStatus: order.StatusProcessing, wantUpdate: true},
		{name: "shipped_to_delivered", current: order.StatusShipped, newStatus: order.StatusDelivered, wantUpdate: true},
		{name: "same_status_noop", current: order.StatusShipped, newStatus: order.StatusShipped, wantUpdate: false},
		{name: "delivered_is_terminal", current: order.StatusDelivered, newStatus: order.StatusPending, wantErrIs: order.ErrInvalidStatusTransition},
		{name: "cancelled_is_terminal", current: order.StatusCancelled, newStatus: order.StatusProcessing, wantErrIs: order.ErrInvalidStatusTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updateCalled := false
			repo := &mockOrderRepository{
				getByIDFunc: func(ctx context.Context, id uuid.UUID) (*order.Order, error) {
					return baseOrder(tt.current), nil
				},
				updateStatusFunc: func(ctx context.Context, id uuid.UUID, newStatus order.OrderStatus) error {
					updateCalled = true
					assert.Equal(t, tt.newStatus, newStatus)
					return nil
				},
			}
			svc := order.NewService(repo, nil, events.NewNoopPublisher())

			updated, err := svc.UpdateStatus(context.Background(), orderID, tt.newStatus)
			if tt.wantErrIs != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErrIs))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantUpdate, updateCalled)
			assert.Equal(t, tt.newStatus, updated.Status)

			// Only the status may change.
			want := baseOrder(tt.current)
			assert.Equal(t, want.ID, updated.ID)
			assert.Equal(t, want.UserID, updated.UserID)
			assert.Equal(t, want.ShippingAddress1, updated.ShippingAddress1)
			assert.True(t, want.TotalPrice.Equal(updated.TotalPrice))
			assert.Equal(t, want.DateOrdered, updated.DateOrdered)
		})
	}

	t.Run("not_found", func(t *testing.T) {
		repo := &mockOrderRepository{
			getByIDFunc: func(ctx context.Context, id uuid.UUID) (*order.Order, error) {
				return nil, order.ErrNotFound
			},
		}
		svc := order.NewService(repo, nil, events.NewNoopPublisher())

		_, err := svc.UpdateStatus(context.Background(), orderID, order.StatusShipped)
		assert.True(t, errors.Is(err, order.ErrNotFound))
	})
}

func TestOrderService_DeleteOrder(t *testing.T) {
	orderID := uuid.Must(uuid.NewV4())
	userID := uuid.Must(uuid.NewV4())

	storedOrder := func() *order.Order {
		return &order.Order{
			ID:         orderID,
			UserID:     userID,
			Status:     order.StatusPending,
			TotalPrice: decimal.NewFromInt(25),
		}
	}

	t.Run("reports_partial_item_failures", func(t *testing.T) {
		failedItem := uuid.Must(uuid.NewV4())
		repo := &mockOrderRepository{
			getByIDFunc: func(ctx context.Context, id uuid.UUID) (*order.Order, error) {
				return storedOrder(), nil
			},
			deleteFunc: func(ctx context.Context, id uuid.UUID) (*order.DeleteResult, error) {
				return &order.DeleteResult{
					OrderID:      id,
					DeletedItems: 2,
					ItemFailures: []order.ItemDeleteFailure{{ItemID: failedItem, Err: "connection reset"}},
				}, nil
			},
		}
		svc := order.NewService(repo, nil, events.NewNoopPublisher())

		result, err := svc.DeleteOrder(context.Background(), orderID)
		require.NoError(t, err)
		assert.Equal(t, 2, result.DeletedItems)
		require.Len(t, result.ItemFailures, 1)
		assert.Equal(t, failedItem, result.ItemFailures[0].ItemID)
	})

	t.Run("event_carries_order_data", func(t *testing.T) {
		repo := &mockOrderRepository{
			getByIDFunc: func(ctx context.Context, id uuid.UUID) (*order.Order, error) {
				return storedOrder(), nil
			},
			deleteFunc: func(ctx context.Context, id uuid.UUID) (*order.DeleteResult, error) {
				return &order.DeleteResult{OrderID: id, DeletedItems: 1}, nil
			},
		}
		publisher := &recordingPublisher{}
		svc := order.NewService(repo, nil, publisher)

		_, err := svc.DeleteOrder(context.Background(), orderID)
		require.NoError(t, err)

		require.Len(t, publisher.published, 1)
		event, ok := publisher.published[0].event.(events.OrderEvent)
		require.True(t, ok)
		assert.Equal(t, events.OrderDeleted, event.Type)
		assert.Equal(t, orderID.String(), event.OrderID)
		assert.Equal(t, userID.String(), event.UserID)
		assert.Equal(t, "25", event.TotalPrice)
	})

	t.Run("not_found", func(t *testing.T) {
		deleteCalled := false
		repo := &mockOrderRepository{
			getByIDFunc: func(ctx context.Context, id uuid.UUID) (*order.Order, error) {
				return nil, order.ErrNotFound
			},
			deleteFunc: func(ctx context.Context, id uuid.UUID) (*order.DeleteResult, error) {
				deleteCalled = true
				return nil, order.ErrNotFound
			},
		}
		svc := order.NewService(repo, nil, events.NewNoopPublisher())

		_, err := svc.DeleteOrder(context.Background(), orderID)
		assert.True(t, errors.Is(err, order.ErrNotFound))
		assert.False(t, deleteCalled)
	})
}

func TestOrderService_TotalSales(t *testing.T) {
	tests := []struct {
		name   string
		totals []string
		want   string
	}{
		{name: "three_orders", totals: []string{"10.50", "4.50", "85.00"}, want: "100.00"},
		{name: "no_orders_defined_zero", totals: nil, want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockOrderRepository{
				totalSalesFunc: func(ctx context.Context) (decimal.Decimal, error) {
					sum := decimal.Zero
					for _, raw := range tt.totals {
						sum = sum.Add(decimal.RequireFromString(raw))
					}
					return sum, nil
				},
			}
			svc := order.NewService(repo, nil, events.NewNoopPublisher())

			total, err := svc.TotalSales(context.Background())
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(total), "got %s", total)
		})
	}
}

func TestOrderService_OrderCount(t *testing.T) {
	repo := &mockOrderRepository{
		countFunc: func(ctx context.Context) (int64, error) { return 7, nil },
	}
	svc := order.NewService(repo, nil, events.NewNoopPublisher())

	count, err := svc.OrderCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
}

func TestParseStatus(t *testing.T) {
	for _, raw := range []string{"Pending", "Processing", "Shipped", "Delivered", "Cancelled"} {
		status, err := order.ParseStatus(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, status.String())
	}

	_, err := order.ParseStatus("Teleported")
	assert.Error(t, err)
}
