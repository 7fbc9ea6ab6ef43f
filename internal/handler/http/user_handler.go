package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/swaniket/ecom-backend/internal/auth"
	"github.com/swaniket/ecom-backend/internal/user"
)

type CreateUserRequest struct {
	Name      string `json:"name" validate:"required,min=2"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	Phone     string `json:"phone"`
	IsAdmin   bool   `json:"is_admin"`
	Street    string `json:"street"`
	Apartment string `json:"apartment"`
	Zip       string `json:"zip"`
	City      string `json:"city"`
	Country   string `json:"country"`
}

type UpdateUserRequest struct {
	Name      string  `json:"name" validate:"required,min=2"`
	Email     string  `json:"email" validate:"required,email"`
	Password  *string `json:"password,omitempty" validate:"omitempty,min=8"`
	Phone     string  `json:"phone"`
	IsAdmin   bool    `json:"is_admin"`
	Street    string  `json:"street"`
	Apartment string  `json:"apartment"`
	Zip       string  `json:"zip"`
	City      string  `json:"city"`
	Country   string  `json:"country"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	User  string `json:"user"`
	Token string `json:"token"`
}

type UserHandler struct {
	service  user.Service
	tokens   *auth.Manager
	validate *validator.Validate
}

func NewUserHandler(service user.Service, tokens *auth.Manager) *UserHandler {
	return &UserHandler{
		service:  service,
		tokens:   tokens,
		validate: validator.New(),
	}
}

func (h *UserHandler) RegisterRoutes(router chi.Router) {
	// User management beyond one's own record is admin territory.
	router.Group(func(admin chi.Router) {
		admin.Use(auth.RequireAdmin)
		admin.Get("/users", h.handleListUsers)
		admin.Get("/users/get/count", h.handleUserCount)
		admin.Delete("/users/{id}", h.handleDeleteUser)
	})

	router.Get("/users/{id}", h.handleGetUserByID)
	router.Post("/users", h.handleCreateUser)
	router.Post("/users/register", h.handleCreateUser)
	router.Post("/users/login", h.handleLogin)
	router.Put("/users/{id}", h.handleUpdateUser)
}

func (h *UserHandler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list users via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to list users")
		return
	}

	respondWithJSON(w, http.StatusOK, users)
}

func (h *UserHandler) handleGetUserByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	u, err := h.service.GetUserByID(r.Context(), id)
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "User not found")
		return
	}

	respondWithJSON(w, http.StatusOK, u)
}

// handleCreateUser serves both admin creation and self registration.
func (h *UserHandler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var payload CreateUserRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&payload); err != nil {
		log.Warn().Err(err).Msg("Failed to decode user request body")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(payload); err != nil {
		respondWithValidationError(w, err)
		return
	}

	created, err := h.service.CreateUser(r.Context(), &user.User{
		Name:      payload.Name,
		Email:     payload.Email,
		Phone:     payload.Phone,
		IsAdmin:   payload.IsAdmin,
		Street:    payload.Street,
		Apartment: payload.Apartment,
		Zip:       payload.Zip,
		City:      payload.City,
		Country:   payload.Country,
	}, payload.Password)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create user via service")

		clientMessage := "Failed to create user"
		if mapErrorToStatusCode(err) == http.StatusConflict {
			clientMessage = "Email already exists"
		}
		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

func (h *UserHandler) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	var payload UpdateUserRequest
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

	password := ""
	if payload.Password != nil {
		password = *payload.Password
	}

	updated := &user.User{
		ID:        id,
		Name:      payload.Name,
		Email:     payload.Email,
		Phone:     payload.Phone,
		IsAdmin:   payload.IsAdmin,
		Street:    payload.Street,
		Apartment: payload.Apartment,
		Zip:       payload.Zip,
		City:      payload.City,
		Country:   payload.Country,
	}
	if err := h.service.UpdateUser(r.Context(), updated, password); err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "Failed to update user")
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

func (h *UserHandler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	if err := h.service.DeleteUser(r.Context(), id); err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "Failed to delete user")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"success": true, "message": "The user is removed"})
}

func (h *UserHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload LoginRequest

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

	u, err := h.service.Authenticate(r.Context(), payload.Email, payload.Password)
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "Invalid email or password")
		return
	}

	token, err := h.tokens.Issue(u.ID, u.IsAdmin)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", u.ID).Msg("Failed to issue token")
		respondWithError(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	respondWithJSON(w, http.StatusOK, LoginResponse{User: u.Email, Token: token})
}

func (h *UserHandler) handleUserCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.UserCount(r.Context())
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "Failed to count users")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]int64{"user_count": count})
}
