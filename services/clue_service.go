package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/SOULGPT/brandorb/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ClueService struct {
	DB *gorm.DB
}

func NewClueService(db *gorm.DB) *ClueService {
	return &ClueService{DB: db}
}

// AnswerResult is the outcome of a clue submission. An incorrect answer is a
// normal, retryable result, not an error.
type AnswerResult struct {
	Correct          bool  `json:"correct"`
	AlreadySolved    bool  `json:"already_solved,omitempty"`
	XPAwarded        int64 `json:"xp_awarded"`
	CurrentStep      int   `json:"current_step"`
	CampaignComplete bool  `json:"campaign_complete"`

	// XPStatus/AnalyticsStatus report the best-effort follow-up steps so a
	// client can retry just the failed half (see partial-failure contract).
	XPStatus        string `json:"xp_status,omitempty"`
	AnalyticsStatus string `json:"analytics_status,omitempty"`
}

// SubmitAnswer checks an answer against the campaign's clue chain. Matching
// is case-insensitive with surrounding whitespace trimmed. A correct answer
// records the completion (deduplicated; resubmitting a solved clue is a
// successful no-op), then grants the clue's XP and bumps the campaign counter
// as separate, individually-retryable steps.
//
// Chain order is deliberately not enforced; clients may present clues
// sequentially but the engine accepts any solvable clue.
func (s *ClueService) SubmitAnswer(userID, campaignID, clueID, answer string) (*AnswerResult, error) {
	var clue models.Clue
	if err := s.DB.Where("id = ? AND campaign_id = ?", clueID, campaignID).
		First(&clue).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClueNotFound
		}
		return nil, err
	}

	// Clue kinds without a text answer (qr, ar_scan) can't match here.
	if clue.Answer == nil {
		return &AnswerResult{Correct: false}, nil
	}
	if !strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(*clue.Answer)) {
		return &AnswerResult{Correct: false}, nil
	}

	result := &AnswerResult{Correct: true}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		progress, err := s.ensureProgress(tx, userID, campaignID)
		if err != nil {
			return err
		}

		completion := models.ClueCompletion{
			ID:         uuid.NewString(),
			ProgressID: progress.ID,
			ClueID:     clueID,
		}
		ins := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&completion)
		if ins.Error != nil {
			return ins.Error
		}
		if ins.RowsAffected == 0 {
			result.AlreadySolved = true
			result.CurrentStep = progress.CurrentStep
			result.CampaignComplete = progress.CompletedAt != nil
			return nil
		}

		if err := tx.Model(&models.UserProgress{}).
			Where("id = ?", progress.ID).
			UpdateColumn("current_step", gorm.Expr("current_step + 1")).Error; err != nil {
			return err
		}
		if err := tx.Where("id = ?", progress.ID).First(progress).Error; err != nil {
			return err
		}
		result.CurrentStep = progress.CurrentStep

		var chainLen int64
		if err := tx.Model(&models.Clue{}).
			Where("campaign_id = ?", campaignID).
			Count(&chainLen).Error; err != nil {
			return err
		}
		if int64(progress.CurrentStep) >= chainLen && progress.CompletedAt == nil {
			now := time.Now()
			if err := tx.Model(&models.UserProgress{}).
				Where("id = ?", progress.ID).
				UpdateColumn("completed_at", now).Error; err != nil {
				return err
			}
			result.CampaignComplete = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.AlreadySolved {
		return result, nil
	}

	// Follow-up saga steps: each commits on its own and is keyed so retries
	// are safe. Failures degrade to a status the client can act on.
	actionKey := fmt.Sprintf("clue:%s", clueID)
	if grant, err := NewProgressionService(s.DB).GrantXP(userID, clue.XPReward, actionKey, "clue_solved"); err != nil {
		log.Printf("⚠️ Clue XP grant failed for %s (clue %s): %v", userID, clueID, err)
		result.XPStatus = "failed"
	} else if !grant.Duplicate {
		result.XPAwarded = clue.XPReward
	}

	if err := NewAnalyticsService(s.DB, nil).Increment(campaignID, MetricClueCompletion); err != nil {
		log.Printf("⚠️ Clue completion counter failed for campaign %s: %v", campaignID, err)
		result.AnalyticsStatus = "failed"
	}

	return result, nil
}

// Progress returns the user's progress on a campaign plus solved clue IDs.
func (s *ClueService) Progress(userID, campaignID string) (*models.UserProgress, []string, error) {
	var progress models.UserProgress
	err := s.DB.Where("user_id = ? AND campaign_id = ?", userID, campaignID).
		First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.UserProgress{
			UserID:     userID,
			CampaignID: campaignID,
		}, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	var completions []models.ClueCompletion
	if err := s.DB.Where("progress_id = ?", progress.ID).
		Order("created_at ASC").
		Find(&completions).Error; err != nil {
		return nil, nil, err
	}

	clueIDs := make([]string, 0, len(completions))
	for _, c := range completions {
		clueIDs = append(clueIDs, c.ClueID)
	}
	return &progress, clueIDs, nil
}

func (s *ClueService) ensureProgress(tx *gorm.DB, userID, campaignID string) (*models.UserProgress, error) {
	var progress models.UserProgress
	err := tx.Where("user_id = ? AND campaign_id = ?", userID, campaignID).
		First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		progress = models.UserProgress{
			ID:         uuid.NewString(),
			UserID:     userID,
			CampaignID: campaignID,
			StartedAt:  time.Now(),
		}
		if err := tx.Create(&progress).Error; err != nil {
			return nil, err
		}
		return &progress, nil
	}
	if err != nil {
		return nil, err
	}
	return &progress, nil
}
