package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/saveagri/saveagri-backend/internal/auth"
	"github.com/saveagri/saveagri-backend/internal/handlers"
	"github.com/saveagri/saveagri-backend/internal/middleware"
)

// Handlers bundles everything SetupRoutes mounts.
type Handlers struct {
	Users     *handlers.UserHandler
	Farmers   *handlers.FarmerHandler
	Products  *handlers.ProductHandler
	Favorites *handlers.FavoriteHandler
	Ratings   *handlers.RatingHandler
	Tokens    *auth.TokenManager
}

func SetupRoutes(r *chi.Mux, h Handlers) {
	requireAuth := middleware.RequireAuth(h.Tokens)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("Welcome to the Save Agri API!"))
	})

	// Users
	r.Post("/users", h.Users.Register)
	r.Post("/users/login", h.Users.Login)

	// Farmers. /farmers/coordinates must be mounted alongside /farmers/{id};
	// chi prefers the static segment.
	r.Get("/farmers", h.Farmers.Search)
	r.Get("/farmers/coordinates", h.Farmers.SearchByCoordinates)
	r.Get("/farmers/{id}", h.Farmers.Get)
	r.With(requireAuth).Post("/farmers", h.Farmers.Create)
	r.With(requireAuth).Put("/farmers/{id}", h.Farmers.Update)
	r.With(requireAuth).Delete("/farmers/{id}", h.Farmers.Delete)

	// Products
	r.Get("/products", h.Products.List)
	r.Get("/products/{id}", h.Products.Get)
	r.With(requireAuth).Post("/products", h.Products.Create)

	// Favorites
	r.Get("/users/{id}/favorites", h.Favorites.List)
	r.With(requireAuth).Post("/users/{id}/favorites", h.Favorites.Add)
	r.With(requireAuth).Delete("/users/{id}/favorites/{farmerId}", h.Favorites.Remove)

	// Ratings
	r.With(requireAuth).Post("/ratings", h.Ratings.Create)
	r.With(requireAuth).Put("/ratings/{id}", h.Ratings.Update)
	r.With(requireAuth).Delete("/ratings/{id}", h.Ratings.Delete)
}
