package v1

import (
	"net/http"

	"evalue-storefront/internal/delivery/http/middleware"
)

// Handlers groups everything RegisterRoutes mounts.
type Handlers struct {
	Catalog   *CatalogHandler
	View      *ViewHandler
	Auth      *AuthHandler
	Cart      *CartHandler
	Favorites *FavoritesHandler
	Health    *HealthHandler
}

// RegisterRoutes mounts the storefront API on mux.
func RegisterRoutes(mux *http.ServeMux, h Handlers, auth middleware.Authenticator) {
	requireAuth := func(fn http.HandlerFunc) http.Handler {
		return middleware.RequireAuth(auth)(fn)
	}
	optionalAuth := func(fn http.HandlerFunc) http.Handler {
		return middleware.OptionalAuth(auth)(fn)
	}

	// Catalog (Public)
	mux.HandleFunc("GET /api/v1/products", h.Catalog.ListProducts)
	mux.Handle("GET /api/v1/products/{id}", optionalAuth(h.Catalog.GetProduct))
	mux.HandleFunc("GET /api/v1/catalog/options", h.Catalog.GetOptions)

	// Product views
	mux.HandleFunc("POST /api/v1/views", h.View.Create)
	mux.HandleFunc("GET /api/v1/views/{id}", h.View.Get)
	mux.HandleFunc("PATCH /api/v1/views/{id}", h.View.Update)
	mux.HandleFunc("POST /api/v1/views/{id}/more", h.View.LoadMore)
	mux.HandleFunc("POST /api/v1/views/{id}/reload", h.View.Reload)
	mux.HandleFunc("DELETE /api/v1/views/{id}", h.View.Delete)

	// Auth
	mux.HandleFunc("POST /api/v1/auth/register", h.Auth.Register)
	mux.HandleFunc("POST /api/v1/auth/login", h.Auth.Login)
	mux.Handle("POST /api/v1/auth/logout", optionalAuth(h.Auth.Logout))
	mux.Handle("GET /api/v1/auth/me", requireAuth(h.Auth.Me))

	// Cart (Protected)
	mux.Handle("GET /api/v1/cart", requireAuth(h.Cart.GetCart))
	mux.Handle("POST /api/v1/cart", requireAuth(h.Cart.AddToCart))
	mux.Handle("DELETE /api/v1/cart/{productId}", requireAuth(h.Cart.RemoveFromCart))
	mux.Handle("POST /api/v1/cart/checkout", requireAuth(h.Cart.Checkout))

	// Favorites
	mux.Handle("GET /api/v1/favorites", requireAuth(h.Favorites.GetFavorites))
	mux.Handle("GET /api/v1/favorites/{productId}", optionalAuth(h.Favorites.IsLiked))
	mux.Handle("POST /api/v1/favorites/{productId}/toggle", requireAuth(h.Favorites.ToggleLike))

	// Health Check
	mux.Handle("GET /api/v1/health", h.Health)
	mux.Handle("GET /health", h.Health)
}
