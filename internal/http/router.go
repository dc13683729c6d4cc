package http

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/inhome/registry/internal/auth"
	"github.com/inhome/registry/internal/http/handlers"
	"github.com/inhome/registry/internal/middleware"
)

// NewRouter creates a new HTTP router with all routes configured.
// Reads are open; every mutating route requires a valid session.
func NewRouter(
	authHandler *handlers.AuthHandler,
	deviceHandler *handlers.DeviceHandler,
	policyHandler *handlers.PolicyHandler,
	healthHandler *handlers.HealthHandler,
	sessions *auth.SessionStore,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	r.Get("/health", healthHandler.ServeHTTP)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.HandleSignup)
		r.Post("/login", authHandler.HandleLogin)
	})

	r.Get("/devices", deviceHandler.HandleList)
	r.Get("/devices/{mac}", deviceHandler.HandleGet)
	r.Get("/policies", policyHandler.HandleList)
	r.Get("/policies/device/{name}", policyHandler.HandleListForDevice)

	// Protected routes (require valid session)
	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(sessions))
		r.Post("/devices", deviceHandler.HandleAdd)
		r.Delete("/devices/{mac}", deviceHandler.HandleRemove)
		r.Put("/devices/name", deviceHandler.HandleRename)
		r.Post("/policies", policyHandler.HandleAdd)
		r.Delete("/policies/{id}", policyHandler.HandleRemove)
	})

	return r
}
