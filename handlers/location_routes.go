// handlers/location_routes.go
package handlers

import (
	"time"

	"github.com/SOULGPT/brandorb/middleware"
	"github.com/SOULGPT/brandorb/models"
	"github.com/SOULGPT/brandorb/services"

	"github.com/gofiber/fiber/v2"
)

func SetupLocationRoutes(app *fiber.App, movementService *services.MovementService, progressionService *services.ProgressionService) {
	securedGroup := app.Group("/s", middleware.UserContextMiddleware())

	// POST /s/user/location: report a GPS fix. Accepted samples advance the
	// movement baseline; rejected ones are logged and discarded. The client
	// should re-acquire and resubmit after a rejection.
	securedGroup.Post("/user/location", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var sample models.LocationSample
		if err := c.BodyParser(&sample); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}
		if sample.ObservedAt.IsZero() {
			sample.ObservedAt = time.Now()
		}

		profile, err := progressionService.GetProfile(userID)
		if err == nil && profile.Banned {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "account suspended"})
		}

		result, err := movementService.ReportLocation(userID, sample)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "location validation failed",
				"cause": err.Error(),
			})
		}

		if !result.Accepted {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(result)
		}
		return c.JSON(result)
	})
}
