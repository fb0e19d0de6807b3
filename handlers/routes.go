// handlers/routes.go
package handlers

import (
	"upvote-club/middleware"
	"upvote-club/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// SecuredPrefixes are the paths that must carry X-User-ID.
var SecuredPrefixes = []string{"/tasks", "/users", "/admin"}

// SetupRoutes registers every route. Gateway auth is applied by the caller.
func SetupRoutes(app *fiber.App, engine *services.Engine) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Use(middleware.UserContextMiddleware(SecuredPrefixes...))

	tasks := &TaskHandler{Tasks: engine.Tasks}
	SetupTaskRoutes(app, tasks)

	ledger := &LedgerHandler{Ledger: engine.Ledger}
	SetupLedgerRoutes(app, ledger)

	admin := &AdminHandler{Tasks: engine.Tasks, Sweeper: engine.Sweeper, Dispatcher: engine.Dispatcher}
	SetupAdminRoutes(app, admin)
}

// param copies a route parameter out of fiber's request buffer, which is
// reused once the handler returns.
func param(c *fiber.Ctx, name string) string {
	return utils.CopyString(c.Params(name))
}
