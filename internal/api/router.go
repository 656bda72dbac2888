package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/isdelr/stockroom-be/internal/api/handlers"
	"github.com/isdelr/stockroom-be/internal/auth"
	"github.com/isdelr/stockroom-be/internal/logger"
	"github.com/isdelr/stockroom-be/internal/services"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(authn *auth.Authenticator, userService services.UserServiceProvider, itemService services.ItemServiceProvider) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.StripSlashes)
	r.Use(logger.RequestLogger)
	r.Use(middleware.Recoverer)

	// CORS configuration for development
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"}, // Adjust for your frontend URL
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, authn)
	userHandler := handlers.NewUserHandler(userService, itemService)
	itemHandler := handlers.NewItemHandler(itemService)

	r.Get("/", welcome("Welcome to the Inventory Management API"))
	r.Get("/health", health)

	// API versioning
	r.Route("/v1", func(r chi.Router) {
		r.Get("/", welcome("Welcome to the Inventory Management API v1"))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/{id}", userHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(authn.Middleware())
				r.Get("/me", userHandler.GetMe)
				r.Put("/me", userHandler.UpdateMe)
			})
		})

		r.Route("/items", func(r chi.Router) {
			r.Get("/", itemHandler.List)
			r.Get("/{id}", itemHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(authn.Middleware())
				r.Post("/", itemHandler.Create)
				r.Put("/{id}", itemHandler.Update)
				r.Delete("/{id}", itemHandler.Delete)
			})
		})
	})

	return r
}

func welcome(message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": message})
	}
}

func health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}
