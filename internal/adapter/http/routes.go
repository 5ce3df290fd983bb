package http

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/daoteng/backoffice/internal/domain/user"
	"github.com/daoteng/backoffice/internal/middleware"
)

// MountRoutes registers all API routes on the given chi router. The router
// is expected to already carry the auth middleware; the login rate limiter
// is applied here because it only guards a single route. The request timeout
// covers /api/v1 only: /ws holds its connection open for the client's whole
// session and must not be capped.
func MountRoutes(r chi.Router, h *Handlers, loginLimiter *middleware.RateLimiter) {
	r.Get("/healthz", h.Healthz)
	r.Get("/ws", h.Hub.HandleWS)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimw.Timeout(60 * time.Second))

		// Auth
		r.With(loginLimiter.Handler).Post("/auth/login", h.Login)
		r.Post("/auth/logout", h.Logout)
		r.Get("/auth/me", h.Me)

		// User management
		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.RequireRole(user.RoleAdmin))
			r.Get("/", h.ListUsers)
			r.Post("/", h.CreateUser)
			r.Put("/{id}", h.UpdateUser)
		})

		// Pipelines and boards
		r.Get("/pipelines", h.ListPipelines)
		r.Route("/pipelines/{pipeline}", func(r chi.Router) {
			r.Get("/stages", h.GetCatalog)
			r.Get("/board", h.GetBoard)
			r.Get("/cards", h.ListCards)
			r.Get("/cards/{id}", h.GetCard)
			r.Get("/transitions", h.PendingTransition)

			// Mutations require edit rights.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(user.RoleAdmin, user.RoleEditor))
				r.Post("/cards", h.CreateCard)
				r.Patch("/cards/{id}", h.UpdateCard)
				r.Put("/cards/{id}", h.UpdateCard)
				r.Delete("/cards/{id}", h.DeleteCard)
				r.Post("/drops", h.ResolveDrop)
				r.Post("/transitions", h.ProposeTransition)
				r.Post("/transitions/commit", h.CommitTransition)
				r.Post("/transitions/cancel", h.CancelTransition)
			})
		})

		// Dashboard
		r.Get("/dashboard", h.DashboardSummary)

		// Announcements
		r.Get("/announcements", h.ListAnnouncements)
		r.With(middleware.RequireRole(user.RoleAdmin, user.RoleEditor)).
			Post("/announcements", h.CreateAnnouncement)

		// Customer directory
		r.Get("/customers", h.ListCustomers)
		r.Get("/customers/{id}", h.GetCustomer)

		// Static document catalog
		r.Get("/documents", h.ListDocuments)

		// Change history
		r.Get("/history", h.ListHistory)
	})
}
