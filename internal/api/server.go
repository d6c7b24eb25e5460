package api

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/maheshrc27/postbridge/internal/api/handlers"
	"github.com/maheshrc27/postbridge/internal/api/middleware"
)

func NewStatusApp(status *handlers.StatusHandler, auth *middleware.AuthMiddleware) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Get("/healthz", status.Health)

	api := app.Group("/api")
	api.Use(auth.AuthMiddleware())
	api.Get("/runs", status.ListRuns)
	api.Post("/runs/trigger", status.TriggerRun)

	return app
}
