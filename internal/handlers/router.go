package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"online-cinema/internal/middleware"
	"online-cinema/internal/services"
)

// RouterDeps bundles everything the HTTP surface needs
type RouterDeps struct {
	Auth     *middleware.AuthMiddleware
	Carts    services.CartServiceInterface
	Orders   services.OrderServiceInterface
	Payments services.PaymentServiceInterface
	Refunds  services.RefundServiceInterface
}

// NewRouter builds the API router
func NewRouter(deps RouterDeps) chi.Router {
	cartHandler := NewCartHandler(deps.Carts)
	orderHandler := NewOrderHandler(deps.Orders, deps.Refunds)
	paymentHandler := NewPaymentHandler(deps.Payments)
	adminHandler := NewAdminHandler(deps.Orders, deps.Payments, deps.Carts)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORSMiddleware(middleware.DefaultCORSConfig()))
	r.Use(middleware.LoggingMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		// The provider calls this; the signature check replaces auth
		r.Post("/payments/webhook", paymentHandler.Webhook)

		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.RequireAuth)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartHandler.GetCart)
				r.Delete("/", cartHandler.Clear)
				r.Post("/items", cartHandler.AddItem)
				r.Delete("/items/{id}", cartHandler.RemoveItem)
				r.Post("/checkout", cartHandler.Checkout)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", orderHandler.CreateOrder)
				r.Get("/", orderHandler.ListOrders)
				r.Get("/{id}", orderHandler.GetOrder)
				r.Delete("/{id}", orderHandler.CancelOrder)
				r.Post("/{id}/refund", orderHandler.RefundOrder)
			})

			r.Route("/payments", func(r chi.Router) {
				r.Post("/create-intent", paymentHandler.CreateIntent)
				r.Post("/checkout-session", paymentHandler.CreateCheckoutSession)
				r.Post("/process", paymentHandler.ProcessPayment)
				r.Get("/", paymentHandler.ListPayments)
				r.Get("/{id}", paymentHandler.GetPayment)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(deps.Auth.RequireRoles(middleware.RoleAdmin, middleware.RoleModerator))
				r.Get("/orders", adminHandler.ListOrders)
				r.Get("/payments", adminHandler.ListPayments)
				r.Get("/carts/{id}", adminHandler.GetCart)
			})
		})
	})

	return r
}
