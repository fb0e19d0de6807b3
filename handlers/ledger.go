// handlers/ledger.go
package handlers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"upvote-club/middleware"
	"upvote-club/services"

	"github.com/gofiber/fiber/v2"
)

const ledgerStreamInterval = 2 * time.Second

type LedgerHandler struct {
	Ledger *services.PointLedger
}

func SetupLedgerRoutes(app *fiber.App, h *LedgerHandler) {
	app.Get("/users/me/balance", h.GetBalance)
	app.Get("/users/me/ledger", h.GetHistory)
	app.Get("/users/me/ledger/stream", h.StreamLedger)

	// Called by the payment processor through the gateway; no user context.
	app.Post("/payments/credit", h.CreditPayment)
}

func (h *LedgerHandler) GetBalance(c *fiber.Ctx) error {
	profile, err := h.Ledger.GetBalance(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

func (h *LedgerHandler) GetHistory(c *fiber.Ctx) error {
	limit, err := strconv.Atoi(c.Query("limit", "100"))
	if err != nil || limit <= 0 || limit > 500 {
		limit = 100
	}
	var after time.Time
	if s := c.Query("after"); s != "" {
		if after, err = time.Parse(time.RFC3339Nano, s); err != nil {
			return badRequest(c, "after must be an RFC3339 timestamp")
		}
	}

	entries, err := h.Ledger.History(c.UserContext(), middleware.UserID(c), after, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"entries": entries, "count": len(entries)})
}

// StreamLedger pushes new ledger entries for the caller as server-sent events.
func (h *LedgerHandler) StreamLedger(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	ctx := c.Context()
	cursor := time.Now()

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	ctx.SetBodyStreamWriter(func(w *bufio.Writer) {
		ticker := time.NewTicker(ledgerStreamInterval)
		defer ticker.Stop()

		w.WriteString(":\n\n")
		if err := w.Flush(); err != nil {
			return
		}

		for {
			select {
			case <-ticker.C:
				entries, err := h.Ledger.History(ctx, userID, cursor, 100)
				if err != nil {
					log.Printf("SSE ledger query error for user %s: %v", userID, err)
					continue
				}
				if len(entries) == 0 {
					w.WriteString(":\n\n")
				}
				for _, e := range entries {
					payload, _ := json.Marshal(e)
					fmt.Fprintf(w, "event: ledger\ndata: %s\n\n", payload)
					cursor = e.CreatedAt
				}
				if err := w.Flush(); err != nil {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	})
	return nil
}

func (h *LedgerHandler) CreditPayment(c *fiber.Ctx) error {
	var req services.PaymentCreditInput
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	profile, err := h.Ledger.CreditPayment(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}
