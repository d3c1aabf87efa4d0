// handlers/system.go
package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"game-match-service/services"
)

// SetupSystemRoutes mounts liveness and metrics endpoints.
func SetupSystemRoutes(app *fiber.App, svc *services.RealtimeService) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":      "ok",
			"queue_depth": svc.Queue().Len(),
			"live_rooms":  svc.Registry().Count(),
		})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}
