// handlers/admin_routes.go
package handlers

import (
	"errors"
	"strconv"

	"github.com/SOULGPT/brandorb/middleware"
	"github.com/SOULGPT/brandorb/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAdminRoutes(app *fiber.App, movementService *services.MovementService, progressionService *services.ProgressionService, campaignService *services.CampaignService) {
	adminGroup := app.Group("/s/admin", middleware.UserContextMiddleware(), middleware.RequireRole("admin"))

	// GET /s/admin/anticheat?limit=100: newest violations first.
	adminGroup.Get("/anticheat", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "100"))

		events, err := movementService.RecentEvents(limit)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load anti-cheat events",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"events": events, "count": len(events)})
	})

	// POST /s/admin/users/:id/ban
	adminGroup.Post("/users/:id/ban", func(c *fiber.Ctx) error {
		var req struct {
			Reason string `json:"reason"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
		if req.Reason == "" {
			req.Reason = "manual_ban"
		}

		reason, err := progressionService.BanUser(c.Params("id"), req.Reason)
		if err != nil {
			if errors.Is(err, services.ErrUserNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to ban user",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"message": "user banned", "reason": reason})
	})

	// POST /s/admin/campaigns/:id/approve
	adminGroup.Post("/campaigns/:id/approve", campaignService.ApproveCampaign)

	// POST /s/admin/xp/grant: manual XP adjustment (support tooling).
	adminGroup.Post("/xp/grant", func(c *fiber.Ctx) error {
		var req struct {
			UserID    string `json:"user_id"`
			XP        int64  `json:"xp"`
			ActionKey string `json:"action_key"`
			Reason    string `json:"reason"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}

		result, err := progressionService.GrantXP(req.UserID, req.XP, req.ActionKey, req.Reason)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrInvalidAmount):
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "xp must be non-negative"})
			case errors.Is(err, services.ErrUserNotFound):
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
			default:
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "XP grant failed",
					"cause": err.Error(),
				})
			}
		}
		return c.JSON(result)
	})
}
