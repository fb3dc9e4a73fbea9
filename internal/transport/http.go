package transport

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/bonison01/shop3/internal/auth"
	"github.com/bonison01/shop3/internal/backend"
	"github.com/bonison01/shop3/internal/config"
	"github.com/bonison01/shop3/internal/customer"
	"github.com/bonison01/shop3/internal/dashboard"
	"github.com/bonison01/shop3/internal/handler"
	"github.com/bonison01/shop3/internal/order"
	"github.com/bonison01/shop3/internal/product"
)

func NewRouter(cfg *config.Config, client backend.Client) *chi.Mux {
	issuer := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	orderH := handler.NewOrderHandler(order.NewService(client))
	productH := handler.NewProductHandler(product.NewService(client))
	customerH := handler.NewCustomerHandler(customer.NewService(client))
	dashboardH := handler.NewDashboardHandler(dashboard.NewService(client))
	tokenH := handler.NewTokenHandler(issuer, cfg.Auth.APIKey)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/token", tokenH.Mint)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(issuer))

			r.Post("/orders", orderH.Create)
			r.Get("/orders", orderH.List)
			r.Get("/orders/{id}", orderH.GetByID)

			r.Get("/products", productH.List)
			r.Get("/products/export", productH.Export)
			r.Post("/products/import", productH.Import)
			r.Post("/products", productH.Create)
			r.Get("/products/{id}", productH.GetByID)
			r.Put("/products/{id}", productH.Update)
			r.Delete("/products/{id}", productH.Delete)

			r.Get("/customers", customerH.List)
			r.Post("/customers", customerH.Create)
			r.Get("/customers/{id}", customerH.GetByID)

			r.Get("/dashboard", dashboardH.Stats)
		})
	})

	return r
}
