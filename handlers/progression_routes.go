// handlers/progression_routes.go
package handlers

import (
	"errors"
	"time"

	"github.com/SOULGPT/brandorb/middleware"
	"github.com/SOULGPT/brandorb/services"

	"github.com/gofiber/fiber/v2"
)

func SetupProgressionRoutes(app *fiber.App, progressionService *services.ProgressionService, missionService *services.MissionService) {
	securedGroup := app.Group("/s", middleware.UserContextMiddleware())

	// GET /s/user/profile: progression view, created lazily on first contact.
	securedGroup.Get("/user/profile", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		profile, err := progressionService.EnsureProfile(userID, c.Get("X-User-Name"), "")
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load profile",
				"cause": err.Error(),
			})
		}
		return c.JSON(profile)
	})

	// POST /s/user/streak: daily activity ping; the client calls this once
	// per session open.
	securedGroup.Post("/user/streak", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		streak, err := progressionService.UpdateStreak(userID, time.Now())
		if err != nil {
			if errors.Is(err, services.ErrUserNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user profile not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to update streak",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"streak": streak})
	})

	// GET /s/user/inventory
	securedGroup.Get("/user/inventory", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		items, err := progressionService.Inventory(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load inventory",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"items": items, "count": len(items)})
	})

	// GET /s/user/inventory/stream: SSE feed of newly earned items.
	securedGroup.Get("/user/inventory/stream", progressionService.StreamInventorySSE)

	// GET /s/missions/daily
	securedGroup.Get("/missions/daily", func(c *fiber.Ctx) error {
		missions, err := missionService.DailyMissions()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load missions",
				"cause": err.Error(),
			})
		}
		return c.JSON(missions)
	})

	// POST /s/missions/:id/complete
	securedGroup.Post("/missions/:id/complete", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		result, err := progressionService.CompleteMission(userID, c.Params("id"))
		if err != nil {
			if errors.Is(err, services.ErrMissionNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "mission not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to complete mission",
				"cause": err.Error(),
			})
		}
		return c.JSON(result)
	})
}
