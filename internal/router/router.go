// Package router wires the HTTP surface onto chi.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Tarlochansingh04052005/swaad-e-bihar-website/internal/handler"
	"github.com/Tarlochansingh04052005/swaad-e-bihar-website/pkg/logger"
)

type Handlers struct {
	Orders *handler.OrderHandler
	Admin  *handler.AdminHandler
	Menu   *handler.MenuHandler
	Health http.HandlerFunc
}

// New builds the full route tree.
func New(log *logger.Logger, h Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(log.HTTPMiddleware)

	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/menu", h.Menu.List)
		r.Get("/track", h.Orders.Track)

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.Orders.ListOrders)
			r.Post("/checkout", h.Orders.Checkout)
			r.Post("/request", h.Orders.SubmitRequest)
			r.Get("/{id}", h.Orders.GetOrder)
			r.Post("/{id}/status", h.Orders.UpdateStatus)
		})

		r.Get("/customer/orders", h.Orders.ListCustomerOrders)

		r.Route("/admin", func(r chi.Router) {
			r.Get("/dashboard", h.Admin.Dashboard)
			r.Get("/orders/export.csv", h.Admin.ExportOrders)
			r.Get("/audit/export.csv", h.Admin.ExportAudit)

			r.Post("/orders", h.Orders.AdminCreate)
			r.Post("/orders/clear", h.Orders.ClearAll)
			r.Put("/orders/{id}", h.Orders.AdminEdit)
			r.Delete("/orders/{id}", h.Orders.AdminDelete)
			r.Post("/orders/{id}/accept", h.Orders.Accept)
			r.Post("/orders/{id}/reject", h.Orders.Reject)
		})
	})

	return r
}
