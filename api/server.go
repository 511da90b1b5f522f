/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the management frontend

ROUTE GROUPS:
  /api/clients/*          Client management, declarations overview
  /api/properties/*       Properties, co-owners, registers, calculations
  /api/contracts/*        Contracts and rent payments
  /api/documents/*        Acquisition document maintenance
  /api/negative-income/*  Carry-forward compensation
  /api/admin/*            Expiry run trigger

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured. allowedOrigins
// feeds the CORS policy; empty means same-origin only.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Client routes
		r.Route("/clients", func(r chi.Router) {
			r.Get("/", h.ListClients)
			r.Post("/", h.CreateClient)
			r.Get("/{id}", h.GetClient)
			r.Put("/{id}", h.UpdateClient)
			r.Delete("/{id}", h.DeleteClient)
			r.Get("/{id}/properties", h.ListClientProperties)
			r.Post("/{id}/properties", h.CreateClientProperty)
			r.Get("/{id}/declarations", h.ListClientDeclarations)
			r.Get("/{id}/negative-income", h.ListClientNegativeIncome)
		})

		// Property routes
		r.Route("/properties", func(r chi.Router) {
			r.Get("/{id}", h.GetProperty)
			r.Put("/{id}", h.UpdateProperty)
			r.Delete("/{id}", h.DeleteProperty)

			r.Get("/{id}/coowners", h.ListCoOwners)
			r.Post("/{id}/coowners", h.CreateCoOwners)
			r.Delete("/{id}/coowners/{clientID}", h.DeleteCoOwner)

			r.Get("/{id}/contracts", h.ListContracts)
			r.Post("/{id}/contracts", h.CreateContract)
			r.Get("/{id}/documents", h.ListDocuments)
			r.Post("/{id}/documents", h.CreateDocuments)
			r.Get("/{id}/expenses", h.ListExpenses)
			r.Post("/{id}/expenses", h.CreateExpense)

			// Calculation routes
			r.Get("/{id}/rental-days", h.RentalDays)
			r.Post("/{id}/amortizable-value", h.AmortizableValue)
			r.Post("/{id}/amortization", h.Amortization)
			r.Get("/{id}/deductible-expenses", h.DeductibleExpenses)
			r.Post("/{id}/rental-result", h.RentalResult)
			r.Get("/{id}/imputation", h.ImputationPreview)
			r.Post("/{id}/imputation/calculate", h.ImputationCalculate)
		})

		// Contract routes
		r.Route("/contracts", func(r chi.Router) {
			r.Get("/{id}", h.GetContract)
			r.Put("/{id}", h.UpdateContract)
			r.Post("/{id}/cancel", h.CancelContract)
			r.Get("/{id}/payments", h.ListPayments)
			r.Post("/{id}/payments", h.CreatePayment)
		})

		// Document routes
		r.Route("/documents", func(r chi.Router) {
			r.Put("/{id}", h.UpdateDocument)
			r.Delete("/{id}", h.DeleteDocument)
			r.Post("/{id}/validate", h.ValidateDocument)
		})

		// Negative income routes
		r.Route("/negative-income", func(r chi.Router) {
			r.Post("/{id}/compensate", h.Compensate)
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Post("/expire-negative-income", h.ExpireNegativeIncome)
		})
	})

	return r
}
