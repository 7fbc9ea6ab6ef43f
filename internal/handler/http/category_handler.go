package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/swaniket/ecom-backend/internal/category"
)

type CategoryRequest struct {
	Name  string `json:"name" validate:"required"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

type CategoryHandler struct {
	service  category.Service
	validate *validator.Validate
}

func NewCategoryHandler(service category.Service) *CategoryHandler {
	return &CategoryHandler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *CategoryHandler) RegisterRoutes(router chi.Router) {
	router.Get("/categories", h.handleListCategories)
	router.Get("/categories/{id}", h.handleGetCategoryByID)
	router.Post("/categories", h.handleCreateCategory)
	router.Put("/categories/{id}", h.handleUpdateCategory)
	router.Delete("/categories/{id}", h.handleDeleteCategory)
}

func (h *CategoryHandler) decode(w http.ResponseWriter, r *http.Request) (*CategoryRequest, bool) {
	var payload CategoryRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&payload); err != nil {
		log.Warn().Err(err).Msg("Failed to decode category request body")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return nil, false
	}

	if err := h.validate.Struct(payload); err != nil {
		respondWithValidationError(w, err)
		return nil, false
	}

	return &payload, true
}

func (h *CategoryHandler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list categories via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to list categories")
		return
	}

	respondWithJSON(w, http.StatusOK, categories)
}

func (h *CategoryHandler) handleGetCategoryByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	c, err := h.service.GetCategoryByID(r.Context(), id)
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "Failed to get category")
		return
	}

	respondWithJSON(w, http.StatusOK, c)
}

func (h *CategoryHandler) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.decode(w, r)
	if !ok {
		return
	}

	created, err := h.service.CreateCategory(r.Context(), &category.Category{
		Name:  payload.Name,
		Icon:  payload.Icon,
		Color: payload.Color,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to create category via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to create category")
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

func (h *CategoryHandler) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	payload, ok := h.decode(w, r)
	if !ok {
		return
	}

	updated := &category.Category{
		ID:    id,
		Name:  payload.Name,
		Icon:  payload.Icon,
		Color: payload.Color,
	}
	if err := h.service.UpdateCategory(r.Context(), updated); err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "Failed to update category")
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

func (h *CategoryHandler) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	if err := h.service.DeleteCategory(r.Context(), id); err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "Failed to delete category")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"success": true, "message": "The category is deleted"})
}
