// handlers/campaign_routes.go
package handlers

import (
	"errors"

	"github.com/SOULGPT/brandorb/middleware"
	"github.com/SOULGPT/brandorb/services"

	"github.com/gofiber/fiber/v2"
)

func SetupCampaignRoutes(app *fiber.App, campaignService *services.CampaignService, clueService *services.ClueService, analyticsService *services.AnalyticsService, progressionService *services.ProgressionService, orbService *services.OrbService) {
	securedGroup := app.Group("/s", middleware.UserContextMiddleware())

	// Player-facing
	securedGroup.Get("/campaigns", campaignService.ListActiveCampaigns)
	securedGroup.Get("/campaigns/:id", campaignService.GetCampaign)

	// GET /s/campaigns/:id/progress: the user's walk through the clue chain.
	securedGroup.Get("/campaigns/:id/progress", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		campaignID := c.Params("id")

		progress, clueIDs, err := clueService.Progress(userID, campaignID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to get progress",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"progress":        progress,
			"clues_completed": clueIDs,
		})
	})

	// POST /s/campaigns/:id/clues/:clueId/answer
	securedGroup.Post("/campaigns/:id/clues/:clueId/answer", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		campaignID := c.Params("id")
		clueID := c.Params("clueId")

		var req struct {
			Answer string `json:"answer"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}

		result, err := clueService.SubmitAnswer(userID, campaignID, clueID, req.Answer)
		if err != nil {
			if errors.Is(err, services.ErrClueNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "clue not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "answer evaluation failed",
				"cause": err.Error(),
			})
		}
		return c.JSON(result)
	})

	// POST /s/campaigns/:id/rewards/:rewardId/redeem: bounded-pool claim
	// plus the inventory/counter follow-up steps, reported separately.
	securedGroup.Post("/campaigns/:id/rewards/:rewardId/redeem", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		campaignID := c.Params("id")
		rewardID := c.Params("rewardId")

		reward, err := analyticsService.RedeemReward(campaignID, rewardID, userID)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrRewardNotFound):
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "reward not found"})
			case errors.Is(err, services.ErrRedemptionExhausted):
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "reward redemption limit reached"})
			case errors.Is(err, services.ErrRewardExpired):
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "reward has expired"})
			default:
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "redemption failed",
					"cause": err.Error(),
				})
			}
		}

		response := fiber.Map{"message": "redeemed", "reward": reward}

		if err := progressionService.AddToInventory(userID, rewardID); err != nil {
			response["inventory_status"] = "failed"
		} else {
			response["inventory_status"] = "added"
		}
		if err := analyticsService.Increment(campaignID, services.MetricRewardRedemption); err != nil {
			response["analytics_status"] = "failed"
		} else {
			response["analytics_status"] = "counted"
		}

		return c.JSON(response)
	})

	// Brand dashboard
	brandGroup := app.Group("/s/brand", middleware.UserContextMiddleware(), middleware.RequireRole("brand"))
	brandGroup.Post("/campaigns", campaignService.CreateCampaign)
	brandGroup.Get("/campaigns", campaignService.ListBrandCampaigns)
	brandGroup.Post("/campaigns/:id/creative", campaignService.UploadCreative)

	// POST /s/brand/orbs: spawn an orb for a campaign.
	brandGroup.Post("/orbs", func(c *fiber.Ctx) error {
		var spec services.OrbSpec
		if err := c.BodyParser(&spec); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
		spec.BrandID = c.Locals("user_id").(string)

		orb, err := orbService.Spawn(spec)
		if err != nil {
			if errors.Is(err, services.ErrInvalidSpec) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to spawn orb",
				"cause": err.Error(),
			})
		}
		return c.Status(fiber.StatusCreated).JSON(orb)
	})

	// GET /s/brand/campaigns/:id/analytics
	brandGroup.Get("/campaigns/:id/analytics", func(c *fiber.Ctx) error {
		snapshot, err := analyticsService.Snapshot(c.Context(), c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load analytics",
				"cause": err.Error(),
			})
		}
		return c.JSON(snapshot)
	})
}
