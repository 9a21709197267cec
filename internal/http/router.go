package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"shoponline/internal/auth"
	"shoponline/internal/cart"
	"shoponline/internal/catalog"
	"shoponline/internal/config"
	"shoponline/internal/exporter"
	"shoponline/internal/importer"
	"shoponline/internal/orders"
	"shoponline/internal/platform/metrics"
)

// Services bundles the application services the router depends on.
type Services struct {
	Auth    *auth.Service
	Google  *auth.GoogleAuthenticator
	Catalog *catalog.Service
	Cart    *cart.Service
	Orders  *orders.Service
}

// NewRouter wires application routes and middleware using chi.
func NewRouter(cfg config.Config, svcs Services, recorder metrics.Recorder, gatherer prometheus.Gatherer, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(newSecurityHeadersMiddleware(cfg.Environment))
	r.Use(newSlogMiddleware(logger))
	r.Use(newMetricsMiddleware(recorder))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":      "ok",
			"environment": cfg.Environment,
		})
	})
	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(gatherer))
	}

	csvImporter := importer.NewCSVImporter(svcs.Catalog)
	csvExporter := exporter.NewCSVExporter()

	accountHandler := NewAccountHandler(svcs.Auth, cfg.Environment, cfg.SessionTTL, recorder, logger)
	productHandler := NewProductHandler(svcs.Catalog, csvImporter, csvExporter, logger)
	cartHandler := NewCartHandler(svcs.Cart, logger)
	orderHandler := NewOrderHandler(svcs.Orders, csvExporter, recorder, logger)

	requireSession := newAuthMiddleware(svcs.Auth, logger)
	requireAdmin := newAdminMiddleware(cfg.AdminAPIToken)
	authLimiter := NewRateLimiter(rate.Limit(1), 10)

	if strings.TrimSpace(cfg.AdminAPIToken) == "" {
		logger.Warn("admin API token not configured; catalog mutations are disabled")
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter.Middleware)

			if svcs.Google != nil {
				oauthHandler := NewOAuthHandler(svcs.Google, svcs.Auth, cfg.FrontendURL, cfg.Environment, cfg.SessionTTL, recorder, logger)
				r.Get("/google", oauthHandler.InitiateGoogle)
				r.Get("/google/callback", oauthHandler.CallbackGoogle)
			}

			r.Post("/signup", accountHandler.SignUp)
			r.Post("/login", accountHandler.LogIn)
			r.Post("/logout", accountHandler.LogOut)

			r.Group(func(r chi.Router) {
				r.Use(requireSession)
				r.Get("/me", accountHandler.Me)
				r.Delete("/me", accountHandler.DeleteAccount)
				r.Put("/password", accountHandler.UpdatePassword)
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.List)
			r.Get("/search", productHandler.Search)
			r.Get("/{id}", productHandler.Get)
		})

		r.Route("/admin/products", func(r chi.Router) {
			r.Use(requireAdmin)
			r.Post("/", productHandler.Create)
			r.Put("/{id}", productHandler.Update)
			r.Delete("/{id}", productHandler.Delete)
			r.Post("/import", productHandler.ImportCSV)
			r.Get("/export.csv", productHandler.ExportCSV)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireSession)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartHandler.Get)
				r.Delete("/", cartHandler.Clear)
				r.Post("/items", cartHandler.AddItem)
				r.Route("/items/{itemId}", func(r chi.Router) {
					r.Put("/", cartHandler.UpdateItem)
					r.Delete("/", cartHandler.RemoveItem)
					r.Post("/increment", cartHandler.IncrementItem)
					r.Post("/decrement", cartHandler.DecrementItem)
				})
			})

			r.Post("/checkout", orderHandler.Checkout)
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", orderHandler.List)
				r.Get("/export.csv", orderHandler.ExportCSV)
				r.Get("/{id}", orderHandler.Get)
			})
		})
	})

	r.NotFound(http.NotFoundHandler().ServeHTTP)

	return r
}
