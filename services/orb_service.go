package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/SOULGPT/brandorb/cache"
	"github.com/SOULGPT/brandorb/models"
	"github.com/SOULGPT/brandorb/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// nearbyCacheTTL bounds the staleness of cached nearby-orb queries. An orb
// collected or expired in the last few seconds may still render on the map;
// Collect re-checks everything against the database, so no invariant leaks.
const nearbyCacheTTL = 10 * time.Second

type OrbService struct {
	DB    *gorm.DB
	Cache cache.Cache
}

func NewOrbService(db *gorm.DB, c cache.Cache) *OrbService {
	return &OrbService{DB: db, Cache: c}
}

// OrbSpec is the operator/spawn-policy input for a new orb.
type OrbSpec struct {
	Kind           models.OrbKind `json:"kind"`
	Latitude       float64        `json:"latitude"`
	Longitude      float64        `json:"longitude"`
	BrandID        string         `json:"brand_id"`
	CampaignID     string         `json:"campaign_id"`
	Rarity         models.Rarity  `json:"rarity"`
	XPReward       int64          `json:"xp_reward"`
	IconURL        string         `json:"icon_url"`
	MaxCollections int            `json:"max_collections"`
	ExpiresAt      *time.Time     `json:"expires_at"`
}

// Spawn creates an active orb with an empty collection set.
func (s *OrbService) Spawn(spec OrbSpec) (*models.BrandOrb, error) {
	if spec.MaxCollections < 1 {
		return nil, fmt.Errorf("%w: max_collections must be >= 1", ErrInvalidSpec)
	}
	if !utils.ValidCoordinates(spec.Latitude, spec.Longitude) {
		return nil, fmt.Errorf("%w: position out of range (lat=%f, lng=%f)",
			ErrInvalidSpec, spec.Latitude, spec.Longitude)
	}
	if spec.Kind == "" {
		spec.Kind = models.OrbKindBrandOrb
	}
	if spec.Rarity == "" {
		spec.Rarity = models.RarityCommon
	}

	orb := models.BrandOrb{
		ID:             uuid.NewString(),
		Kind:           spec.Kind,
		Latitude:       spec.Latitude,
		Longitude:      spec.Longitude,
		BrandID:        spec.BrandID,
		CampaignID:     spec.CampaignID,
		Rarity:         spec.Rarity,
		XPReward:       spec.XPReward,
		IconURL:        spec.IconURL,
		Active:         true,
		SpawnedAt:      time.Now(),
		ExpiresAt:      spec.ExpiresAt,
		MaxCollections: spec.MaxCollections,
	}
	if err := s.DB.Create(&orb).Error; err != nil {
		return nil, err
	}
	return &orb, nil
}

// QueryNearby returns active, unexpired orbs within radiusKm of the center.
// Expiry is evaluated lazily against now: an expired row still marked active
// is filtered here regardless of whether the sweeper has caught up. Results
// are cached briefly per rounded center (see nearbyCacheTTL).
func (s *OrbService) QueryNearby(ctx context.Context, lat, lon, radiusKm float64) ([]models.BrandOrb, error) {
	key := fmt.Sprintf("orbs:nearby:%.3f:%.3f:%.1f", lat, lon, radiusKm)
	if s.Cache != nil {
		if data, err := s.Cache.Get(ctx, key); err == nil {
			var cached []models.BrandOrb
			if json.Unmarshal(data, &cached) == nil {
				return cached, nil
			}
		}
	}

	var candidates []models.BrandOrb
	if err := s.DB.Where("active = ?", true).Find(&candidates).Error; err != nil {
		return nil, err
	}

	now := time.Now()
	nearby := make([]models.BrandOrb, 0, len(candidates))
	for _, orb := range candidates {
		if orb.ExpiresAt != nil && orb.ExpiresAt.Before(now) {
			continue
		}
		if utils.DistanceKm(lat, lon, orb.Latitude, orb.Longitude) <= radiusKm {
			nearby = append(nearby, orb)
		}
	}

	if s.Cache != nil {
		if data, err := json.Marshal(nearby); err == nil {
			_ = s.Cache.Set(ctx, key, data, nearbyCacheTTL)
		}
	}
	return nearby, nil
}

// Collect claims one slot on an orb for a user. The whole check-and-update is
// one transaction built from conflict-safe primitives:
//
//  1. inserting the (orb, user) collection row; the unique index turns a
//     duplicate claim into ErrAlreadyCollected;
//  2. a conditional UPDATE that only increments collected_count while the
//     orb is active and under its bound. Two racers for the last slot both
//     pass step 1, but exactly one sees RowsAffected=1 here; the loser's
//     transaction rolls back with ErrOrbExhausted.
//
// XP grant and analytics are the caller's follow-up steps, not part of this
// transaction.
func (s *OrbService) Collect(orbID, userID string) (*models.BrandOrb, error) {
	var orb models.BrandOrb
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", orbID).First(&orb).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrbNotFound
			}
			return err
		}

		if !orb.Active {
			if orb.MaxCollections > 0 && orb.CollectedCount >= orb.MaxCollections {
				return ErrOrbExhausted
			}
			return ErrOrbInactive
		}
		if orb.ExpiresAt != nil && orb.ExpiresAt.Before(time.Now()) {
			return ErrOrbInactive
		}

		collection := models.OrbCollection{
			ID:         uuid.NewString(),
			OrbID:      orbID,
			UserID:     userID,
			CampaignID: orb.CampaignID,
			XPAwarded:  orb.XPReward,
		}
		ins := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&collection)
		if ins.Error != nil {
			return ins.Error
		}
		if ins.RowsAffected == 0 {
			return ErrAlreadyCollected
		}

		upd := tx.Model(&models.BrandOrb{}).
			Where("id = ? AND active = ? AND collected_count < max_collections", orbID, true).
			UpdateColumn("collected_count", gorm.Expr("collected_count + 1"))
		if upd.Error != nil {
			return upd.Error
		}
		if upd.RowsAffected == 0 {
			return ErrOrbExhausted
		}

		// Exhausted with this claim → deactivate.
		if err := tx.Model(&models.BrandOrb{}).
			Where("id = ? AND collected_count >= max_collections", orbID).
			UpdateColumn("active", false).Error; err != nil {
			return err
		}

		return tx.Where("id = ?", orbID).First(&orb).Error
	})
	if err != nil {
		return nil, err
	}
	return &orb, nil
}

// DeactivateExpired flips active=false on orbs past their expiry. Hygiene
// only; reads already filter expired orbs lazily. Returns the rows touched.
func (s *OrbService) DeactivateExpired(now time.Time) (int64, error) {
	res := s.DB.Model(&models.BrandOrb{}).
		Where("active = ? AND expires_at IS NOT NULL AND expires_at <= ?", true, now).
		UpdateColumn("active", false)
	return res.RowsAffected, res.Error
}
