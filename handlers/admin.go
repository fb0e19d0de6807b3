// handlers/admin.go
package handlers

import (
	"strings"

	"upvote-club/middleware"
	"upvote-club/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

type AdminHandler struct {
	Tasks      *services.TaskService
	Sweeper    *services.Sweeper
	Dispatcher *services.Dispatcher
}

func SetupAdminRoutes(app *fiber.App, h *AdminHandler) {
	admin := app.Group("/admin", middleware.RequireRole(middleware.RoleAdmin))

	admin.Delete("/tasks/:id", h.DeleteTask)
	admin.Post("/tasks/:id/complete", h.MarkCompleted)
	admin.Post("/sweeps/:name", h.RunSweep)
	admin.Post("/notifications/dispatch", h.DispatchNotifications)
}

type adminDeleteRequest struct {
	Reason string `json:"reason"`
}

// DeleteTask requires an explicit reason; NONE marks an ordinary admin deletion.
func (h *AdminHandler) DeleteTask(c *fiber.Ctx) error {
	var req adminDeleteRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
	}
	if req.Reason == "" {
		req.Reason = utils.CopyString(c.Query("reason"))
	}

	res, err := h.Tasks.DeleteTask(c.UserContext(), services.DeleteTaskInput{
		TaskID:  param(c, "id"),
		Reason:  req.Reason,
		ActorID: middleware.UserID(c),
		Admin:   true,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

// MarkCompleted closes the task and immediately fills missing main actions.
func (h *AdminHandler) MarkCompleted(c *fiber.Ctx) error {
	task, drafted, err := h.Sweeper.CompleteNow(c.UserContext(), param(c, "id"))
	if task == nil {
		return respondError(c, err)
	}
	if err != nil {
		// The scheduled forced-completion pass retries.
		return c.JSON(fiber.Map{"task": task, "drafted": drafted, "warning": err.Error()})
	}
	return c.JSON(fiber.Map{"task": task, "drafted": drafted})
}

func (h *AdminHandler) RunSweep(c *fiber.Ctx) error {
	report, err := h.Sweeper.Run(c.UserContext(), strings.ToLower(param(c, "name")))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}

func (h *AdminHandler) DispatchNotifications(c *fiber.Ctx) error {
	stats, err := h.Dispatcher.DispatchDue(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}
