package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/SOULGPT/brandorb/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// XPPerLevel: level = floor(xp/100) + 1. Flat curve, tuned for short campaigns.
const XPPerLevel = 100

type ProgressionService struct {
	DB *gorm.DB
}

func NewProgressionService(db *gorm.DB) *ProgressionService {
	return &ProgressionService{DB: db}
}

func levelForXP(xp int64) int {
	return int(xp/XPPerLevel) + 1
}

// XPGrantResult reports the profile state after a grant. Duplicate is set
// when the action key was already consumed and nothing changed.
type XPGrantResult struct {
	NewXP     int64 `json:"new_xp"`
	NewLevel  int   `json:"new_level"`
	LeveledUp bool  `json:"leveled_up"`
	Duplicate bool  `json:"duplicate,omitempty"`
}

// EnsureProfile creates the progression row for a user on first contact
// (xp=0, level=1, streak=0). Idempotent.
func (s *ProgressionService) EnsureProfile(userID, username, email string) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := s.DB.Where("id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		profile = models.UserProfile{
			ID:             userID,
			Username:       username,
			Email:          email,
			Role:           models.UserRoleUser,
			XP:             0,
			Level:          1,
			Streak:         0,
			LastActivityAt: time.Now(),
		}
		if err := s.DB.Create(&profile).Error; err != nil {
			return nil, err
		}
		return &profile, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// GrantXP applies a non-negative XP delta and recomputes the level. The XP
// column is bumped with an atomic SQL increment so concurrent grants to the
// same user never lose an update; the level is derived from the result.
//
// actionKey, when non-empty, deduplicates retried grants: the first grant for
// a (user, action) pair wins, later ones return the current state unchanged.
func (s *ProgressionService) GrantXP(userID string, amount int64, actionKey, reason string) (*XPGrantResult, error) {
	if amount < 0 {
		return nil, ErrInvalidAmount
	}

	var result *XPGrantResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if actionKey != "" {
			grant := models.XPGrant{
				ID:        uuid.NewString(),
				UserID:    userID,
				ActionKey: actionKey,
				Amount:    amount,
				Reason:    reason,
			}
			ins := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&grant)
			if ins.Error != nil {
				return ins.Error
			}
			if ins.RowsAffected == 0 {
				var profile models.UserProfile
				if err := tx.Where("id = ?", userID).First(&profile).Error; err != nil {
					return err
				}
				result = &XPGrantResult{NewXP: profile.XP, NewLevel: profile.Level, Duplicate: true}
				return nil
			}
		}

		upd := tx.Model(&models.UserProfile{}).
			Where("id = ?", userID).
			UpdateColumn("xp", gorm.Expr("xp + ?", amount))
		if upd.Error != nil {
			return upd.Error
		}
		if upd.RowsAffected == 0 {
			return ErrUserNotFound
		}

		var profile models.UserProfile
		if err := tx.Where("id = ?", userID).First(&profile).Error; err != nil {
			return err
		}

		oldLevel := profile.Level
		newLevel := levelForXP(profile.XP)
		if newLevel != oldLevel {
			if err := tx.Model(&models.UserProfile{}).
				Where("id = ?", userID).
				UpdateColumn("level", newLevel).Error; err != nil {
				return err
			}
		}

		result = &XPGrantResult{
			NewXP:     profile.XP,
			NewLevel:  newLevel,
			LeveledUp: newLevel > oldLevel,
		}

		log.Printf("🎮 XP granted: %s +%d → XP=%d, Lvl=%d (reason: %s)",
			userID, amount, profile.XP, newLevel, reason)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AddToInventory adds a reward to the user's inventory. The inventory is a
// set: adding a reward the user already holds is a successful no-op, so
// retried redemption sagas cannot duplicate items.
func (s *ProgressionService) AddToInventory(userID, rewardID string) error {
	item := models.InventoryItem{
		ID:       uuid.NewString(),
		UserID:   userID,
		RewardID: rewardID,
	}
	return s.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&item).Error
}

// Inventory lists the user's held reward IDs, newest first.
func (s *ProgressionService) Inventory(userID string) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	err := s.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&items).Error
	return items, err
}

// UpdateStreak advances the consecutive-day counter. Day boundaries are fixed
// 24h windows measured from the previous activity timestamp: exactly one
// window elapsed extends the streak, more than one resets it to 1, same
// window leaves it untouched. LastActivityAt always moves to now.
func (s *ProgressionService) UpdateStreak(userID string, now time.Time) (int, error) {
	var streak int
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var profile models.UserProfile
		if err := tx.Where("id = ?", userID).First(&profile).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		days := int(now.Sub(profile.LastActivityAt).Hours() / 24)
		streak = profile.Streak
		switch {
		case days == 1:
			streak++
		case days > 1:
			streak = 1
		}

		return tx.Model(&models.UserProfile{}).
			Where("id = ?", userID).
			Updates(map[string]interface{}{
				"streak":           streak,
				"last_activity_at": now,
			}).Error
	})
	return streak, err
}

// BanUser flags the account. Idempotent: banning an already-banned user
// returns the original reason and changes nothing.
func (s *ProgressionService) BanUser(userID, reason string) (string, error) {
	var finalReason string
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var profile models.UserProfile
		if err := tx.Where("id = ?", userID).First(&profile).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		if profile.Banned {
			if profile.BanReason != nil {
				finalReason = *profile.BanReason
			}
			return nil
		}

		now := time.Now()
		finalReason = reason
		return tx.Model(&models.UserProfile{}).
			Where("id = ?", userID).
			Updates(map[string]interface{}{
				"banned":     true,
				"ban_reason": reason,
				"banned_at":  now,
			}).Error
	})
	return finalReason, err
}

// GetProfile fetches the progression view of a user.
func (s *ProgressionService) GetProfile(userID string) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := s.DB.Where("id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// CompleteMission marks a mission done for the user and grants its XP once.
func (s *ProgressionService) CompleteMission(userID, missionID string) (*XPGrantResult, error) {
	var mission models.Mission
	if err := s.DB.Where("id = ? AND active = ?", missionID, true).First(&mission).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMissionNotFound
		}
		return nil, err
	}
	if mission.ExpiryDate != nil && mission.ExpiryDate.Before(time.Now()) {
		return nil, ErrMissionNotFound
	}

	completion := models.MissionCompletion{
		ID:        uuid.NewString(),
		UserID:    userID,
		MissionID: missionID,
	}
	ins := s.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&completion)
	if ins.Error != nil {
		return nil, ins.Error
	}
	if ins.RowsAffected == 0 {
		profile, err := s.GetProfile(userID)
		if err != nil {
			return nil, err
		}
		return &XPGrantResult{NewXP: profile.XP, NewLevel: profile.Level, Duplicate: true}, nil
	}

	return s.GrantXP(userID, mission.XPReward, fmt.Sprintf("mission:%s", missionID), "mission_completed")
}
