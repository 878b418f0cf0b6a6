package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/authz"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Users          *handlers.UsersHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Route guards consult the same capability
// table as the service layer.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/password/reset/request", cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Auth.ConfirmPasswordReset)

	authProtected := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	authProtected.Post("/logout", cfg.Auth.Logout)
	authProtected.Get("/session", cfg.Auth.Session)
	authProtected.Post("/password/change", cfg.Auth.ChangePassword)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle)
	tickets.Post("", auth.RequireOperation(authz.OpCreateTicket), cfg.Tickets.CreateTicket)
	tickets.Get("", auth.RequireOperation(authz.OpViewTickets), cfg.Tickets.ListTickets)
	tickets.Get("/:id", auth.RequireOperation(authz.OpViewTickets), cfg.Tickets.GetTicket)
	tickets.Patch("/:id", auth.RequireOperation(authz.OpEditTicket), cfg.Tickets.UpdateTicket)
	tickets.Patch("/:id/status", auth.RequireOperation(authz.OpChangeStatus), cfg.Tickets.ChangeStatus)
	tickets.Patch("/:id/assign", auth.RequireOperation(authz.OpAssignTicket), cfg.Tickets.AssignTicket)

	users := app.Group("/users", cfg.AuthMiddleware.Handle)
	users.Get("", auth.RequireOperation(authz.OpListEmployees), cfg.Users.ListEmployees)
}
