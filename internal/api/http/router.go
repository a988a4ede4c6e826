package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/site-api/internal/api/http/handlers"
	"github.com/spec-kit/site-api/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health          *handlers.HealthHandler
	Contact         *handlers.ContactHandler
	Support         *handlers.SupportHandler
	Webhook         *handlers.WebhookHandler
	AdminContacts   *handlers.AdminContactsHandler
	AdminSupport    *handlers.AdminSupportHandler
	AdminAccounts   *handlers.AdminAccountsHandler
	AdminMiddleware *auth.AdminMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	// Public surface.
	app.Post("/contact", cfg.Contact.Create)
	app.Post("/support", cfg.Support.Create)
	app.Get("/support/lookup", cfg.Support.Lookup)
	app.Post("/support/reply", cfg.Support.Reply)
	app.Post("/email-webhook", cfg.Webhook.Handle)

	// Admin bootstrap and session minting sit outside the guard.
	app.Post("/admin/setup", cfg.AdminAccounts.Setup)
	app.Post("/admin/login", cfg.AdminAccounts.Login)

	admin := app.Group("/admin", cfg.AdminMiddleware.Handle)

	admin.Get("/contacts", cfg.AdminContacts.List)
	admin.Get("/contacts/:id", cfg.AdminContacts.Get)
	admin.Patch("/contacts/:id", cfg.AdminContacts.Patch)
	admin.Post("/contacts/:id/reply", cfg.AdminContacts.Reply)

	admin.Get("/support", cfg.AdminSupport.List)
	admin.Get("/support/:id", cfg.AdminSupport.Get)
	admin.Patch("/support/:id", cfg.AdminSupport.Patch)
	admin.Post("/support/:id/reply", cfg.AdminSupport.Reply)

	admin.Get("/admins", cfg.AdminAccounts.List)
	admin.Post("/admins", cfg.AdminAccounts.Create)
	admin.Patch("/admins/:id", cfg.AdminAccounts.Update)
	admin.Post("/admins/:id/password", cfg.AdminAccounts.ChangePassword)
	admin.Delete("/admins/:id", cfg.AdminAccounts.Delete)
}
