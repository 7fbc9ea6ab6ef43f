package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/swaniket/ecom-backend/internal/order"
)

type OrderItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid4"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

type PlaceOrderRequest struct {
	// An empty item list is accepted; the order total is then zero.
	OrderItems       []OrderItemRequest `json:"order_items" validate:"dive"`
	ShippingAddress1 string             `json:"shipping_address1" validate:"required"`
	ShippingAddress2 string             `json:"shipping_address2"`
	City             string             `json:"city" validate:"required"`
	Zip              string             `json:"zip" validate:"required"`
	Country          string             `json:"country" validate:"required"`
	Phone            string             `json:"phone" validate:"required"`
	UserID           string             `json:"user_id" validate:"required,uuid4"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type OrderHandler struct {
	service  order.Service
	validate *validator.Validate
}

func NewOrderHandler(service order.Service) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *OrderHandler) RegisterRoutes(router chi.Router) {
	router.Get("/orders", h.handleListOrders)
	router.Get("/orders/get/totalsales", h.handleTotalSales)
	router.Get("/orders/get/count", h.handleOrderCount)
	router.Get("/orders/get/userorders/{userid}", h.handleListOrdersForUser)
	router.Get("/orders/{id}", h.handleGetOrderByID)
	router.Post("/orders", h.handlePlaceOrder)
	router.Put("/orders/{id}", h.handleUpdateStatus)
	router.Delete("/orders/{id}", h.handleDeleteOrder)
}

func (h *OrderHandler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListOrders(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list orders via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to list orders")
		return
	}

	respondWithJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) handleGetOrderByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	o, err := h.service.GetOrderByID(r.Context(), id)
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "Failed to get order")
		return
	}

	respondWithJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	var payload PlaceOrderRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&payload); err != nil {
		log.Warn().Err(err).Msg("Failed to decode order request body")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(payload); err != nil {
		respondWithValidationError(w, err)
		return
	}

	userID, err := uuid.FromString(payload.UserID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid user_id")
		return
	}

	items := make([]order.ItemInput, len(payload.OrderItems))
	for i, item := range payload.OrderItems {
		productID, err := uuid.FromString(item.ProductID)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid product_id in order items")
			return
		}
		items[i] = order.ItemInput{ProductID: productID, Quantity: item.Quantity}
	}

	placed, err := h.service.PlaceOrder(r.Context(), order.PlaceOrderInput{
		UserID: userID,
		Items:  items,
		Shipping: order.ShippingInfo{
			Address1: payload.ShippingAddress1,
			Address2: payload.ShippingAddress2,
			City:     payload.City,
			Zip:      payload.Zip,
			Country:  payload.Country,
			Phone:    payload.Phone,
		},
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to place order via service")
		respondWithError(w, mapErrorToStatusCode(err), "The order cannot be placed")
		return
	}

	respondWithJSON(w, http.StatusCreated, placed)
}

func (h *OrderHandler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	var payload UpdateOrderStatusRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		respondWithValidationError(w, err)
		return
	}

	newStatus, err := order.ParseStatus(payload.Status)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.service.UpdateStatus(r.Context(), id, newStatus)
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "The order cannot be updated")
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

func (h *OrderHandler) handleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	result, err := h.service.DeleteOrder(r.Context(), id)
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "Failed to delete order")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "The order is deleted",
		"result":  result,
	})
}

func (h *OrderHandler) handleTotalSales(w http.ResponseWriter, r *http.Request) {
	total, err := h.service.TotalSales(r.Context())
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "The order sales cannot be generated")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"total_sales": total})
}

func (h *OrderHandler) handleOrderCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.OrderCount(r.Context())
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "Failed to count orders")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]int64{"order_count": count})
}

func (h *OrderHandler) handleListOrdersForUser(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.FromString(chi.URLParam(r, "userid"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid userid parameter")
		return
	}

	orders, err := h.service.ListOrdersForUser(r.Context(), userID)
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "Failed to list user orders")
		return
	}

	respondWithJSON(w, http.StatusOK, orders)
}
