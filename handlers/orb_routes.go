// handlers/orb_routes.go
package handlers

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/SOULGPT/brandorb/middleware"
	"github.com/SOULGPT/brandorb/services"

	"github.com/gofiber/fiber/v2"
)

func SetupOrbRoutes(app *fiber.App, orbService *services.OrbService, progressionService *services.ProgressionService, analyticsService *services.AnalyticsService) {
	securedGroup := app.Group("/s", middleware.UserContextMiddleware())

	// GET /s/orbs/nearby?lat=..&lng=..&radius_km=..
	securedGroup.Get("/orbs/nearby", func(c *fiber.Ctx) error {
		lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
		lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
		if errLat != nil || errLng != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "lat and lng are required"})
		}

		radiusKm := 1.0
		if r := c.Query("radius_km"); r != "" {
			parsed, err := strconv.ParseFloat(r, 64)
			if err != nil || parsed <= 0 || parsed > 50 {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid radius_km"})
			}
			radiusKm = parsed
		}

		orbs, err := orbService.QueryNearby(c.Context(), lat, lng, radiusKm)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to query orbs",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"orbs": orbs, "count": len(orbs)})
	})

	// POST /s/orbs/:id/collect: the collect saga. The claim itself is the
	// atomic primary step; XP and analytics follow best-effort, each reported
	// separately so the client can retry just the failed half.
	securedGroup.Post("/orbs/:id/collect", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		orbID := c.Params("id")

		profile, err := progressionService.GetProfile(userID)
		if err != nil {
			if errors.Is(err, services.ErrUserNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user profile not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
		}
		if profile.Banned {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "account suspended"})
		}

		orb, err := orbService.Collect(orbID, userID)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrOrbNotFound):
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "orb not found"})
			case errors.Is(err, services.ErrAlreadyCollected):
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "already collected"})
			case errors.Is(err, services.ErrOrbExhausted):
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "orb collection limit reached"})
			case errors.Is(err, services.ErrOrbInactive):
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "orb is no longer active"})
			default:
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "collect failed",
					"cause": err.Error(),
				})
			}
		}

		response := fiber.Map{
			"message":   "collected",
			"orb":       orb,
			"xp_reward": orb.XPReward,
		}

		grant, err := progressionService.GrantXP(userID, orb.XPReward, fmt.Sprintf("orb:%s", orbID), "orb_collected")
		if err != nil {
			response["xp_status"] = "failed"
		} else {
			response["xp_status"] = "granted"
			response["new_xp"] = grant.NewXP
			response["new_level"] = grant.NewLevel
			response["leveled_up"] = grant.LeveledUp
		}

		if err := analyticsService.RecordEngagement(orb.CampaignID, userID, orb.Latitude, orb.Longitude); err != nil {
			response["analytics_status"] = "failed"
		} else {
			response["analytics_status"] = "counted"
		}

		return c.JSON(response)
	})
}
