package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/support-desk/internal/api/http/handlers"
	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tickets        *handlers.TicketsHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Metrics.Registry, promhttp.HandlerOpts{})))
	}

	tickets := app.Group("/api/v1/tickets", cfg.AuthMiddleware.Handle)
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/stats", cfg.Tickets.Stats)
	tickets.Get("/export.xlsx", cfg.Tickets.Export)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Get("/:id/sla", cfg.Tickets.GetSLA)
	tickets.Get("/:id/history", cfg.Tickets.ListHistory)
	tickets.Post("/:id/status", cfg.Tickets.TransitionStatus)
	tickets.Post("/:id/priority", auth.RequireSupport(), cfg.Tickets.ChangePriority)
	tickets.Post("/:id/assign", auth.RequireSupport(), cfg.Tickets.AssignTicket)
	tickets.Post("/:id/messages", cfg.Tickets.AddMessage)
	tickets.Delete("/:id", cfg.Tickets.DeleteTicket)
}
