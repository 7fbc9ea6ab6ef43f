package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/swaniket/ecom-backend/internal/events"
)

var allowedTransitions = map[OrderStatus]map[OrderStatus]bool{
	StatusPending: {
		StatusProcessing: true,
		StatusShipped:    true,
		StatusCancelled:  true,
	},
	StatusProcessing: {
		StatusShipped:   true,
		StatusCancelled: true,
	},
	StatusShipped: {
		StatusDelivered: true,
		StatusCancelled: true,
	},
	StatusDelivered: {},
	StatusCancelled: {},
}

var ErrInvalidStatusTransition = errors.New("invalid order status transition")

// PlaceOrderInput is everything needed to place an order.
type PlaceOrderInput struct {
	UserID   uuid.UUID
	Items    []ItemInput
	Shipping ShippingInfo
}

type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*Order, error)
	GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error)
	ListOrders(ctx context.Context) ([]Order, error)
	ListOrdersForUser(ctx context.Context, userID uuid.UUID) ([]Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, newStatus OrderStatus) (*Order, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) (*DeleteResult, error)
	TotalSales(ctx context.Context) (decimal.Decimal, error)
	OrderCount(ctx context.Context) (int64, error)
}

type service struct {
	repo      Repository
	prices    PriceSource
	publisher events.Publisher
}

func NewService(repo Repository, prices PriceSource, publisher events.Publisher) Service {
	return &service{repo: repo, prices: prices, publisher: publisher}
}

// PlaceOrder resolves each item's product price, computes the snapshot
// total and writes the order with its items in one transaction. An empty
// item list is accepted and yields a zero total.
func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*Order, error) {
	if input.UserID == uuid.Nil {
		return nil, errors.New("service: user id is required")
	}

	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("service: order item quantity for product %s must be greater than zero", item.ProductID)
		}
		if item.ProductID == uuid.Nil {
			return nil, errors.New("service: product id in order item cannot be nil")
		}
	}

	totalPrice, err := ComputeTotal(ctx, s.prices, input.Items)
	if err != nil {
		log.Warn().Err(err).Msg("service: failed to compute order total")
		return nil, err
	}

	orderID, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("service: failed to generate order ID: %w", err)
	}

	items := make([]OrderItem, len(input.Items))
	for i, item := range input.Items {
		items[i] = OrderItem{ProductID: item.ProductID, Quantity: item.Quantity}
	}

	o := &Order{
		ID:               orderID,
		UserID:           input.UserID,
		Items:            items,
		ShippingAddress1: input.Shipping.Address1,
		ShippingAddress2: input.Shipping.Address2,
		City:             input.Shipping.City,
		Zip:              input.Shipping.Zip,
		Country:          input.Shipping.Country,
		Phone:            input.Shipping.Phone,
		Status:           StatusPending,
		TotalPrice:       totalPrice,
	}

	if err := s.repo.Create(ctx, o); err != nil {
		log.Error().Err(err).Msg("service: failed to create order in repository")
		return nil, fmt.Errorf("service: failed to create order: %w", err)
	}

	log.Info().Stringer("order_id", o.ID).Stringer("user_id", o.UserID).Str("total_price", o.TotalPrice.String()).Msg("service: order placed")
	s.publish(ctx, events.OrderPlaced, o)

	return o, nil
}

func (s *service) GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn().Stringer("order_id", id).Msg("service: order not found by id")
			return nil, ErrNotFound
		}
		log.Error().Err(err).Msg("service: failed to fetch order by id in repository")
		return nil, fmt.Errorf("service: failed to fetch order by id: %w", err)
	}

	return o, nil
}

func (s *service) ListOrders(ctx context.Context) ([]Order, error) {
	orders, err := s.repo.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to fetch orders in repository")
		return nil, fmt.Errorf("service: failed to fetch orders: %w", err)
	}

	return orders, nil
}

func (s *service) ListOrdersForUser(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to fetch user orders in repository")
		return nil, fmt.Errorf("service: failed to fetch user orders: %w", err)
	}

	return orders, nil
}

// UpdateStatus moves the order along the status transition table.
// Setting the current status again is a no-op.
func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, newStatus OrderStatus) (*Order, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn().Stringer("order_id", id).Stringer("new_status", newStatus).Msg("service: order not found, cannot update status")
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("order_id", id).Msg("service: failed to get order for status update")
		return nil, fmt.Errorf("service: failed to get order for status update: %w", err)
	}

	if current.Status == newStatus {
		log.Info().Stringer("order_id", id).Stringer("status", newStatus).Msg("service: order status is already the same, no update needed")
		return current, nil
	}

	if !allowedTransitions[current.Status][newStatus] {
		log.Warn().
			Stringer("order_id", id).
			Stringer("current_status", current.Status).
			Stringer("new_status", newStatus).
			Msg("service: invalid status transition attempt")
		return nil, fmt.Errorf("%w: from %s to %s", ErrInvalidStatusTransition, current.Status, newStatus)
	}

	if err := s.repo.UpdateStatus(ctx, id, newStatus); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("order_id", id).Stringer("new_status", newStatus).Msg("service: failed to update order status in repository")
		return nil, fmt.Errorf("service: failed to update order status: %w", err)
	}

	log.Info().Stringer("order_id", id).Stringer("old_status", current.Status).Stringer("new_status", newStatus).Msg("service: order status updated")

	current.Status = newStatus
	s.publish(ctx, events.OrderStatusChanged, current)

	return current, nil
}

// DeleteOrder removes the order and then each of its items. Item
// deletions are independent; their failures are reported in the result
// instead of failing the call.
func (s *service) DeleteOrder(ctx context.Context, id uuid.UUID) (*DeleteResult, error) {
	// Captured before deletion so the event carries the real order data.
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("order_id", id).Msg("service: failed to get order for deletion")
		return nil, fmt.Errorf("service: failed to get order for deletion: %w", err)
	}

	result, err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("order_id", id).Msg("service: failed to delete order")
		return nil, fmt.Errorf("service: failed to delete order: %w", err)
	}

	if len(result.ItemFailures) > 0 {
		log.Warn().Stringer("order_id", id).Int("failed_items", len(result.ItemFailures)).Msg("service: order deleted with item deletions left behind")
	}
	s.publish(ctx, events.OrderDeleted, current)

	return result, nil
}

func (s *service) TotalSales(ctx context.Context) (decimal.Decimal, error) {
	total, err := s.repo.TotalSales(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to compute total sales")
		return decimal.Decimal{}, fmt.Errorf("service: failed to compute total sales: %w", err)
	}

	return total, nil
}

func (s *service) OrderCount(ctx context.Context) (int64, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to count orders")
		return 0, fmt.Errorf("service: failed to count orders: %w", err)
	}

	return count, nil
}

// publish is fire-and-forget: event delivery never fails the operation.
func (s *service) publish(ctx context.Context, eventType string, o *Order) {
	if s.publisher == nil {
		return
	}

	event := events.OrderEvent{
		Type:       eventType,
		OrderID:    o.ID.String(),
		UserID:     o.UserID.String(),
		Status:     string(o.Status),
		TotalPrice: o.TotalPrice.String(),
	}
	if err := s.publisher.PublishEvent(ctx, events.TopicOrders, o.ID.String(), event); err != nil {
		log.Error().Err(err).Stringer("order_id", o.ID).Str("event_type", eventType).Msg("service: failed to publish order event")
	}
}
