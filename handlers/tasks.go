// handlers/tasks.go
package handlers

import (
	"time"

	"upvote-club/middleware"
	"upvote-club/models"
	"upvote-club/services"

	"github.com/gofiber/fiber/v2"
)

type TaskHandler struct {
	Tasks *services.TaskService
}

func SetupTaskRoutes(app *fiber.App, h *TaskHandler) {
	tasks := app.Group("/tasks")

	tasks.Post("/", h.CreateTask)
	tasks.Get("/:id", h.GetTask)
	tasks.Delete("/:id", h.DeleteTask)
	tasks.Post("/:id/pause", h.PauseTask)
	tasks.Post("/:id/resume", h.ResumeTask)
	tasks.Post("/:id/completions", h.SubmitCompletion)
	tasks.Get("/:id/completions", h.ListCompletions)
	tasks.Post("/:id/reports", h.ReportTask)
}

type createTaskRequest struct {
	SocialNetwork   string `json:"social_network"`
	ActionKind      string `json:"action_kind"`
	PostURL         string `json:"post_url"`
	Price           int64  `json:"price"`
	ActionsRequired int    `json:"actions_required"`
	BonusActions    int    `json:"bonus_actions"`
}

func (h *TaskHandler) CreateTask(c *fiber.Ctx) error {
	var req createTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	task, err := h.Tasks.CreateTask(c.UserContext(), services.CreateTaskInput{
		CreatorID:       middleware.UserID(c),
		SocialNetwork:   req.SocialNetwork,
		ActionKind:      req.ActionKind,
		PostURL:         req.PostURL,
		Price:           req.Price,
		ActionsRequired: req.ActionsRequired,
		BonusActions:    req.BonusActions,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(task)
}

func (h *TaskHandler) GetTask(c *fiber.Ctx) error {
	task, err := h.Tasks.GetTask(c.UserContext(), param(c, "id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(task)
}

// DeleteTask is the creator's own deletion; the reason is always USER_REQUEST.
func (h *TaskHandler) DeleteTask(c *fiber.Ctx) error {
	res, err := h.Tasks.DeleteTask(c.UserContext(), services.DeleteTaskInput{
		TaskID:  param(c, "id"),
		Reason:  string(models.DeletionUserRequest),
		ActorID: middleware.UserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

func (h *TaskHandler) PauseTask(c *fiber.Ctx) error {
	task, err := h.Tasks.PauseTask(c.UserContext(), param(c, "id"), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(task)
}

func (h *TaskHandler) ResumeTask(c *fiber.Ctx) error {
	task, err := h.Tasks.ResumeTask(c.UserContext(), param(c, "id"), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(task)
}

type completionRequest struct {
	ActionKind  string         `json:"action_kind"`
	PostURL     string         `json:"post_url"`
	CompletedAt *time.Time     `json:"completed_at"`
	Metadata    map[string]any `json:"metadata"`
}

func (h *TaskHandler) SubmitCompletion(c *fiber.Ctx) error {
	var req completionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	res, err := h.Tasks.SubmitCompletion(c.UserContext(), services.CompletionInput{
		TaskID:      param(c, "id"),
		UserID:      middleware.UserID(c),
		ActionKind:  req.ActionKind,
		PostURL:     req.PostURL,
		CompletedAt: req.CompletedAt,
		Metadata:    req.Metadata,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

func (h *TaskHandler) ListCompletions(c *fiber.Ctx) error {
	completions, err := h.Tasks.ListCompletions(c.UserContext(), param(c, "id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"completions": completions, "count": len(completions)})
}

func (h *TaskHandler) ReportTask(c *fiber.Ctx) error {
	report, err := h.Tasks.ReportTask(c.UserContext(), param(c, "id"), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(report)
}
