package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/swaniket/ecom-backend/internal/auth"
	"github.com/swaniket/ecom-backend/internal/category"
	"github.com/swaniket/ecom-backend/internal/config"
	"github.com/swaniket/ecom-backend/internal/events"
	handler "github.com/swaniket/ecom-backend/internal/handler/http"
	"github.com/swaniket/ecom-backend/internal/order"
	"github.com/swaniket/ecom-backend/internal/product"
	"github.com/swaniket/ecom-backend/internal/user"
)

// NewRouter wires repositories, services and handlers into the HTTP API.
func NewRouter(pool *pgxpool.Pool, cfg *config.Config, publisher events.Publisher) *chi.Mux {
	categoryRepo := category.NewRepository(pool)
	productRepo := product.NewRepository(pool)
	userRepo := user.NewRepository(pool)
	orderRepo := order.NewRepository(pool)

	categorySvc := category.NewService(categoryRepo)
	productSvc := product.NewService(productRepo, categoryRepo)
	userSvc := user.NewService(userRepo)
	orderSvc := order.NewService(orderRepo, productRepo, publisher)

	tokens := auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(tokens.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api/v1", func(api chi.Router) {
		handler.NewCategoryHandler(categorySvc).RegisterRoutes(api)
		handler.NewProductHandler(productSvc).RegisterRoutes(api)
		handler.NewUserHandler(userSvc, tokens).RegisterRoutes(api)
		handler.NewOrderHandler(orderSvc).RegisterRoutes(api)
		handler.NewUploadHandler(cfg.Uploads.Dir, cfg.Uploads.BaseURL).RegisterRoutes(api)
	})

	// Uploaded images are served statically.
	fileServer := http.StripPrefix("/public/uploads/", http.FileServer(http.Dir(cfg.Uploads.Dir)))
	r.Get("/public/uploads/*", fileServer.ServeHTTP)

	return r
}
