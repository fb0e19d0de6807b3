// handlers/errors.go
package handlers

import (
	"errors"
	"log"

	"upvote-club/models"
	"upvote-club/services"

	"github.com/gofiber/fiber/v2"
)

var errorStatus = []struct {
	err    error
	status int
}{
	{models.ErrTaskNotFound, fiber.StatusNotFound},
	{models.ErrProfileNotFound, fiber.StatusNotFound},
	{services.ErrUnknownSweep, fiber.StatusNotFound},

	{models.ErrInvalidActionKind, fiber.StatusBadRequest},
	{models.ErrInvalidSocialNetwork, fiber.StatusBadRequest},
	{models.ErrInvalidTask, fiber.StatusBadRequest},
	{models.ErrMissingDeletionReason, fiber.StatusBadRequest},
	{models.ErrUnknownDeletionReason, fiber.StatusBadRequest},
	{models.ErrInvalidAmount, fiber.StatusBadRequest},
	{models.ErrActionKindMismatch, fiber.StatusBadRequest},

	{models.ErrInsufficientBalance, fiber.StatusPaymentRequired},
	{models.ErrNoAvailableTasks, fiber.StatusPaymentRequired},

	{models.ErrNotTaskOwner, fiber.StatusForbidden},
	{models.ErrReasonNotAllowed, fiber.StatusForbidden},
	{models.ErrSelfCompletion, fiber.StatusForbidden},

	{models.ErrDuplicateCompletion, fiber.StatusConflict},
	{models.ErrDuplicateReport, fiber.StatusConflict},
	{models.ErrDuplicatePayment, fiber.StatusConflict},
	{models.ErrTaskAlreadyDeleted, fiber.StatusConflict},

	{models.ErrTaskNotActive, fiber.StatusUnprocessableEntity},
	{models.ErrTaskNotPaused, fiber.StatusUnprocessableEntity},
	{models.ErrNoRemainingActions, fiber.StatusUnprocessableEntity},

	{models.ErrTargetLookupFailed, fiber.StatusBadGateway},
}

func statusFor(err error) int {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return fiber.StatusInternalServerError
}

// respondError writes {"error": ...}. Internal errors are logged and not echoed.
func respondError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		log.Printf("❌ %s %s: %v", c.Method(), c.Path(), err)
		return c.Status(status).JSON(fiber.Map{"error": "internal error"})
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}
