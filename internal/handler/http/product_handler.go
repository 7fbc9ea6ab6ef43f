package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/swaniket/ecom-backend/internal/product"
)

type ProductRequest struct {
	Name            string          `json:"name" validate:"required"`
	Description     string          `json:"description"`
	RichDescription string          `json:"rich_description"`
	ImageURL        string          `json:"image_url"`
	Brand           string          `json:"brand"`
	Price           decimal.Decimal `json:"price"`
	CategoryID      string          `json:"category_id" validate:"required,uuid4"`
	CountInStock    int             `json:"count_in_stock" validate:"gte=0"`
	Rating          float64         `json:"rating" validate:"gte=0,lte=5"`
	NumReviews      int             `json:"num_reviews" validate:"gte=0"`
	IsFeatured      bool            `json:"is_featured"`
}

type GalleryImagesRequest struct {
	ImageURLs []string `json:"image_urls" validate:"required,max=10"`
}

type ProductHandler struct {
	service  product.Service
	validate *validator.Validate
}

func NewProductHandler(service product.Service) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *ProductHandler) RegisterRoutes(router chi.Router) {
	router.Get("/products", h.handleListProducts)
	router.Get("/products/get/count", h.handleProductCount)
	router.Get("/products/get/featured/{count}", h.handleFeaturedProducts)
	router.Get("/products/{id}", h.handleGetProductByID)
	router.Post("/products", h.handleCreateProduct)
	router.Put("/products/gallery-images/{id}", h.handleSetGalleryImages)
	router.Put("/products/{id}", h.handleUpdateProduct)
	router.Delete("/products/{id}", h.handleDeleteProduct)
}

func (h *ProductHandler) decode(w http.ResponseWriter, r *http.Request) (*product.Product, bool) {
	var payload ProductRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&payload); err != nil {
		log.Warn().Err(err).Msg("Failed to decode product request body")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return nil, false
	}

	if err := h.validate.Struct(payload); err != nil {
		respondWithValidationError(w, err)
		return nil, false
	}

	if payload.Price.IsNegative() {
		respondWithError(w, http.StatusBadRequest, "Price must be non-negative")
		return nil, false
	}

	categoryID, err := uuid.FromString(payload.CategoryID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid category_id")
		return nil, false
	}

	return &product.Product{
		Name:            payload.Name,
		Description:     payload.Description,
		RichDescription: payload.RichDescription,
		ImageURL:        payload.ImageURL,
		Brand:           payload.Brand,
		Price:           payload.Price,
		CategoryID:      categoryID,
		CountInStock:    payload.CountInStock,
		Rating:          payload.Rating,
		NumReviews:      payload.NumReviews,
		IsFeatured:      payload.IsFeatured,
	}, true
}

// handleListProducts supports ?categories=id1,id2 filtering.
func (h *ProductHandler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	var categoryIDs []uuid.UUID
	if raw := r.URL.Query().Get("categories"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := uuid.FromString(strings.TrimSpace(part))
			if err != nil {
				respondWithError(w, http.StatusBadRequest, "Invalid categories filter")
				return
			}
			categoryIDs = append(categoryIDs, id)
		}
	}

	products, err := h.service.ListProducts(r.Context(), categoryIDs)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list products via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to list products")
		return
	}

	respondWithJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) handleGetProductByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	p, err := h.service.GetProductByID(r.Context(), id)
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "Failed to get product")
		return
	}

	respondWithJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	p, ok := h.decode(w, r)
	if !ok {
		return
	}

	created, err := h.service.CreateProduct(r.Context(), p)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create product via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to create product")
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

func (h *ProductHandler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	p, ok := h.decode(w, r)
	if !ok {
		return
	}
	p.ID = id

	updated, err := h.service.UpdateProduct(r.Context(), p)
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "Failed to update product")
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

func (h *ProductHandler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "Failed to delete product")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"success": true, "message": "The product is deleted"})
}

func (h *ProductHandler) handleProductCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.ProductCount(r.Context())
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "Failed to count products")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]int64{"product_count": count})
}

func (h *ProductHandler) handleFeaturedProducts(w http.ResponseWriter, r *http.Request) {
	count, err := strconv.Atoi(chi.URLParam(r, "count"))
	if err != nil || count < 0 {
		respondWithError(w, http.StatusBadRequest, "Invalid count parameter")
		return
	}

	products, err := h.service.FeaturedProducts(r.Context(), count)
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "Failed to fetch featured products")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"featured_products": products})
}

func (h *ProductHandler) handleSetGalleryImages(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	var payload GalleryImagesRequest
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

	updated, err := h.service.SetGalleryImages(r.Context(), id, payload.ImageURLs)
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "Failed to update gallery images")
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}
