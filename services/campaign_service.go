// services/campaign_service.go
package services

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/SOULGPT/brandorb/models"
	"github.com/SOULGPT/brandorb/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type CampaignService struct {
	DB *gorm.DB
}

func NewCampaignService(db *gorm.DB) *CampaignService {
	return &CampaignService{DB: db}
}

// --- Brand Handlers ---

// CreateCampaign creates a draft campaign with its clue chain and reward pool.
// Campaigns go live only after admin approval AND their start date (scheduler).
func (s *CampaignService) CreateCampaign(c *fiber.Ctx) error {
	brandID := c.Locals("user_id").(string)

	var req struct {
		Name        string    `json:"name"`
		Description string    `json:"description"`
		StartDate   time.Time `json:"start_date"`
		EndDate     time.Time `json:"end_date"`
		Budget      float64   `json:"budget"`
		Clues       []struct {
			Kind      models.ClueKind `json:"kind"`
			Question  string          `json:"question"`
			Answer    *string         `json:"answer"`
			ImageURL  string          `json:"image_url"`
			Latitude  *float64        `json:"latitude"`
			Longitude *float64        `json:"longitude"`
			XPReward  int64           `json:"xp_reward"`
		} `json:"clues"`
		Rewards []struct {
			Kind            models.RewardKind `json:"kind"`
			Title           string            `json:"title"`
			Description     string            `json:"description"`
			Value           string            `json:"value"`
			Rarity          models.Rarity     `json:"rarity"`
			ImageURL        string            `json:"image_url"`
			ExpiryDate      *time.Time        `json:"expiry_date"`
			RedemptionLimit int               `json:"redemption_limit"`
		} `json:"rewards"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Campaign name is required"})
	}
	if !req.EndDate.After(req.StartDate) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "end_date must be after start_date"})
	}
	for _, r := range req.Rewards {
		if r.RedemptionLimit < 1 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "redemption_limit must be >= 1"})
		}
	}

	campaignID := uuid.NewString()
	campaign := &models.Campaign{
		ID:          campaignID,
		BrandID:     brandID,
		Name:        req.Name,
		Slug:        fmt.Sprintf("%s-%.8s", slug.Make(req.Name), campaignID),
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Budget:      req.Budget,
		Active:      false,
		Approved:    false,
	}

	for i, cl := range req.Clues {
		campaign.Clues = append(campaign.Clues, models.Clue{
			ID:         uuid.NewString(),
			CampaignID: campaignID,
			Kind:       cl.Kind,
			Question:   cl.Question,
			Answer:     cl.Answer,
			ImageURL:   cl.ImageURL,
			Latitude:   cl.Latitude,
			Longitude:  cl.Longitude,
			XPReward:   cl.XPReward,
			StepOrder:  i + 1,
		})
	}
	for _, r := range req.Rewards {
		campaign.Rewards = append(campaign.Rewards, models.Reward{
			ID:              uuid.NewString(),
			CampaignID:      campaignID,
			Kind:            r.Kind,
			Title:           r.Title,
			Description:     r.Description,
			Value:           r.Value,
			Rarity:          r.Rarity,
			ImageURL:        r.ImageURL,
			ExpiryDate:      r.ExpiryDate,
			RedemptionLimit: r.RedemptionLimit,
		})
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(campaign).Error; err != nil {
			return err
		}
		// Zeroed analytics row, owned by AnalyticsService from here on.
		return tx.Create(&models.CampaignAnalytics{CampaignID: campaignID}).Error
	})
	if err != nil {
		log.Printf("DB Error creating campaign: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create campaign"})
	}

	return c.Status(fiber.StatusCreated).JSON(campaign)
}

// GetCampaign returns one campaign with its clue chain (answers stripped by
// the model's JSON tags) and reward pool.
func (s *CampaignService) GetCampaign(c *fiber.Ctx) error {
	id := c.Params("id")

	var campaign models.Campaign
	if err := s.DB.
		Preload("Clues", func(db *gorm.DB) *gorm.DB { return db.Order("step_order ASC") }).
		Preload("Rewards").
		First(&campaign, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Campaign not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	return c.JSON(campaign)
}

// ListActiveCampaigns returns campaigns currently live in the world.
func (s *CampaignService) ListActiveCampaigns(c *fiber.Ctx) error {
	var campaigns []models.Campaign
	if err := s.DB.
		Preload("Clues", func(db *gorm.DB) *gorm.DB { return db.Order("step_order ASC") }).
		Preload("Rewards").
		Where("active = ?", true).
		Find(&campaigns).Error; err != nil {
		log.Printf("DB Error listing active campaigns: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch campaigns"})
	}

	return c.JSON(campaigns)
}

// ListBrandCampaigns returns the authenticated brand's own campaigns.
func (s *CampaignService) ListBrandCampaigns(c *fiber.Ctx) error {
	brandID := c.Locals("user_id").(string)

	var campaigns []models.Campaign
	if err := s.DB.Where("brand_id = ?", brandID).
		Order("created_at DESC").
		Find(&campaigns).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch campaigns"})
	}

	return c.JSON(campaigns)
}

// UploadCreative accepts a campaign asset (clue image, reward art, orb icon)
// and stores it in R2, returning the CDN URL for the brand to attach.
func (s *CampaignService) UploadCreative(c *fiber.Ctx) error {
	brandID := c.Locals("user_id").(string)
	campaignID := c.Params("id")

	var campaign models.Campaign
	if err := s.DB.Where("id = ? AND brand_id = ?", campaignID, brandID).
		First(&campaign).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Campaign not found or not owned by brand"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	file, err := c.FormFile("asset")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "asset file is required"})
	}
	if file.Size > 10*1024*1024 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file too large (max 10MB)"})
	}

	ext := filepath.Ext(file.Filename)
	if ext == "" {
		ext = ".png"
	}
	key := fmt.Sprintf("creative/%s/%s%s", campaignID, uuid.NewString(), ext)
	url, err := utils.UploadCreativeToR2(file, key)
	if err != nil {
		log.Printf("R2 upload failed for campaign %s: %v", campaignID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to upload asset"})
	}

	return c.JSON(fiber.Map{"url": url})
}

// --- Admin Handlers ---

// ApproveCampaign marks a campaign approved; the scheduler activates it once
// its date range opens (immediately on the next tick if already open).
func (s *CampaignService) ApproveCampaign(c *fiber.Ctx) error {
	id := c.Params("id")

	var campaign models.Campaign
	if err := s.DB.First(&campaign, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Campaign not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	now := time.Now()
	updates := map[string]interface{}{
		"approved":    true,
		"approved_at": now,
	}
	if !campaign.StartDate.After(now) && campaign.EndDate.After(now) {
		updates["active"] = true
	}
	if err := s.DB.Model(&campaign).Updates(updates).Error; err != nil {
		log.Printf("DB Error approving campaign %s: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to approve campaign"})
	}

	return c.JSON(fiber.Map{"message": "Campaign approved", "campaign_id": id})
}
