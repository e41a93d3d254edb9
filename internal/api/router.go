package api

import (
	"net/http"

	"github.com/Picces04/ToyStore-Client/internal/api/middleware"
	"github.com/Picces04/ToyStore-Client/internal/auth"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

// RouterConfig holds the dependencies for the router
type RouterConfig struct {
	Handlers       *Handlers
	VisitorTokens  *auth.VisitorTokens
	CookieName     string
	AllowedOrigins []string
	Log            zerolog.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	h := cfg.Handlers
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLogger(cfg.Log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.VisitorHeader},
		ExposedHeaders:   []string{middleware.VisitorHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Visitor(cfg.VisitorTokens, cfg.CookieName, cfg.Log))

		// Catalog
		r.Route("/catalog", func(r chi.Router) {
			r.Get("/", h.GetCatalog)
			r.Post("/refresh", h.RefreshCatalog)
			r.Put("/page", h.SetCatalogPage)
			r.Put("/sort", h.SetCatalogSort)
			r.Delete("/sort", h.ClearCatalogSort)
			r.Put("/categories", h.SetCatalogCategories)
			r.Post("/categories/{id}/toggle", h.ToggleCatalogCategory)
			r.Delete("/categories/{id}", h.RemoveCatalogCategory)
			r.Put("/price", h.SetCatalogPrice)
			r.Delete("/price", h.ClearCatalogPrice)
			r.Delete("/filters", h.ClearCatalogFilters)
		})
		r.Get("/categories", h.ListCategories)
		r.Get("/best-sellers", h.ListBestSellers)

		// Blog
		r.Route("/blogs", func(r chi.Router) {
			r.Get("/", h.GetBlogs)
			r.Put("/page", h.SetBlogPage)
			r.Put("/search", h.SetBlogSearch)
			r.Get("/latest", h.LatestBlogs)
			r.Get("/{id}", h.GetBlog)
		})

		// Cart
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Delete("/", h.ClearCart)
			r.Post("/items", h.AddToCart)
			r.Put("/items/{productID}", h.SetCartQuantity)
			r.Delete("/items/{productID}", h.RemoveFromCart)
		})

		// Wishlist
		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", h.GetWishlist)
			r.Post("/{productID}/toggle", h.ToggleWishlist)
			r.Delete("/{productID}", h.RemoveFromWishlist)
		})

		// Quick view and modals
		r.Route("/quick-view", func(r chi.Router) {
			r.Get("/", h.GetQuickView)
			r.Post("/", h.OpenQuickView)
			r.Delete("/", h.CloseQuickView)
			r.Put("/image", h.SelectQuickViewImage)
			r.Post("/quantity", h.StepQuickViewQuantity)
			r.Post("/cart", h.AddQuickViewToCart)
			r.Post("/details", h.ShowQuickViewDetails)
		})
		r.Route("/details", func(r chi.Router) {
			r.Get("/", h.GetDetails)
			r.Delete("/", h.ClearDetails)
		})
		r.Route("/modals", func(r chi.Router) {
			r.Get("/cart-sidebar", h.GetCartSidebar)
			r.Post("/cart-sidebar", h.OpenCartSidebar)
			r.Delete("/cart-sidebar", h.CloseCartSidebar)
			r.Get("/preview", h.GetPreview)
			r.Post("/preview", h.OpenPreview)
			r.Delete("/preview", h.ClosePreview)
		})

		// Session and checkout
		r.Route("/session", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Post("/", h.SignIn)
			r.Delete("/", h.Logout)
		})
		r.Post("/checkout", h.Checkout)
	})

	return r
}
