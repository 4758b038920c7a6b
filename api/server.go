/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests from the roster frontend

ROUTE GROUPS:
  /api/employees/*   Employees, summaries, coupures
  /api/weeks/*       Weekly roster, summaries, compliance
  /api/shifts/*      Shift deletion
  /api/compute/*     Stateless computations
  /api/compliance/*  Compliance run history
  /api/rules         Active rule set
  /api/scenarios/*   Demo rosters (dev only)

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

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
// feeds the CORS middleware.
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

	r.Route("/api", func(r chi.Router) {
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
			r.Get("/{id}", h.GetEmployee)
			r.Put("/{id}", h.UpdateEmployee)
			r.Delete("/{id}", h.DeleteEmployee)
			r.Get("/{id}/summary", h.GetEmployeeSummary)
			r.Get("/{id}/coupures", h.GetEmployeeCoupures)
		})

		r.Route("/weeks/{week}", func(r chi.Router) {
			r.Get("/shifts", h.ListShifts)
			r.Post("/shifts", h.CreateShift)
			r.Put("/shifts/{id}", h.UpdateShift)
			r.Get("/summaries", h.ListWeekSummaries)
			r.Get("/compliance", h.GetWeekCompliance)
		})

		r.Delete("/shifts/{id}", h.DeleteShift)

		r.Route("/compute", func(r chi.Router) {
			r.Post("/summary", h.ComputeSummary)
			r.Post("/coupure", h.ComputeCoupure)
			r.Post("/validate", h.ComputeValidate)
			r.Post("/compliance", h.ComputeCompliance)
		})

		r.Route("/compliance", func(r chi.Router) {
			r.Get("/runs", h.ListComplianceRuns)
			r.Post("/runs", h.TriggerComplianceRun)
		})

		r.Get("/rules", h.GetRules)

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetStore)
		})
	})

	return r
}
