package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/postbridge/internal/models"
	"github.com/maheshrc27/postbridge/internal/transfer"
)

type RunService interface {
	LastRuns() []models.RunOutcome
	Trigger(ctx context.Context) bool
}

type StatusHandler struct {
	s   RunService
	ctx context.Context
}

// NewStatusHandler runs triggered jobs under ctx rather than the request
// context, which ends with the response.
func NewStatusHandler(ctx context.Context, service RunService) *StatusHandler {
	return &StatusHandler{s: service, ctx: ctx}
}

func (h *StatusHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *StatusHandler) ListRuns(c *fiber.Ctx) error {
	outcomes := h.s.LastRuns()

	runs := make([]transfer.RunStatus, 0, len(outcomes))
	for _, o := range outcomes {
		runs = append(runs, transfer.NewRunStatus(o))
	}

	return c.JSON(fiber.Map{"runs": runs})
}

func (h *StatusHandler) TriggerRun(c *fiber.Ctx) error {
	if !h.s.Trigger(h.ctx) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "A posting run is already in progress",
		})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "started"})
}
