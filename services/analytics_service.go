package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/SOULGPT/brandorb/cache"
	"github.com/SOULGPT/brandorb/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Metric names the per-campaign counters. Counters are monotonic and bumped
// with atomic SQL adds: many users act on the same campaign concurrently and
// a read-modify-write here would drop counts.
type Metric string

const (
	MetricImpression       Metric = "impression"
	MetricClueCompletion   Metric = "clue_completion"
	MetricRewardRedemption Metric = "reward_redemption"
)

const snapshotCacheTTL = 30 * time.Second

type AnalyticsService struct {
	DB    *gorm.DB
	Cache cache.Cache
}

func NewAnalyticsService(db *gorm.DB, c cache.Cache) *AnalyticsService {
	return &AnalyticsService{DB: db, Cache: c}
}

func (m Metric) column() (string, bool) {
	switch m {
	case MetricImpression:
		return "impressions", true
	case MetricClueCompletion:
		return "clue_completions", true
	case MetricRewardRedemption:
		return "reward_redemptions", true
	}
	return "", false
}

// Increment bumps one campaign counter. The analytics row is created lazily
// so campaigns seeded before this service existed still count.
func (s *AnalyticsService) Increment(campaignID string, metric Metric) error {
	col, ok := metric.column()
	if !ok {
		return fmt.Errorf("unknown analytics metric %q", metric)
	}

	upd := s.DB.Model(&models.CampaignAnalytics{}).
		Where("campaign_id = ?", campaignID).
		UpdateColumn(col, gorm.Expr(col+" + ?", 1))
	if upd.Error != nil {
		return upd.Error
	}
	if upd.RowsAffected > 0 {
		return nil
	}

	row := models.CampaignAnalytics{CampaignID: campaignID}
	if err := s.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return err
	}
	return s.DB.Model(&models.CampaignAnalytics{}).
		Where("campaign_id = ?", campaignID).
		UpdateColumn(col, gorm.Expr(col+" + ?", 1)).Error
}

// RecordEngagement registers an impression plus the supporting detail the
// brand dashboard wants: the unique-user set and the geographic heatmap
// bucket. Each piece is best-effort and independent.
func (s *AnalyticsService) RecordEngagement(campaignID, userID string, lat, lon float64) error {
	if err := s.Increment(campaignID, MetricImpression); err != nil {
		return err
	}

	// Unique users: first insert into the set wins the counter bump.
	cu := models.CampaignUser{CampaignID: campaignID, UserID: userID}
	ins := s.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&cu)
	if ins.Error != nil {
		return ins.Error
	}
	if ins.RowsAffected > 0 {
		if err := s.DB.Model(&models.CampaignAnalytics{}).
			Where("campaign_id = ?", campaignID).
			UpdateColumn("unique_users", gorm.Expr("unique_users + ?", 1)).Error; err != nil {
			return err
		}
	}

	// Heatmap bucket: ~100m resolution.
	geoKey := fmt.Sprintf("%.3f:%.3f", lat, lon)
	point := models.HeatmapPoint{
		ID:         uuid.NewString(),
		CampaignID: campaignID,
		GeoKey:     geoKey,
		Latitude:   lat,
		Longitude:  lon,
		Count:      1,
	}
	return s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "campaign_id"}, {Name: "geo_key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"count": gorm.Expr("count + 1")}),
	}).Create(&point).Error
}

// RedeemReward claims one redemption slot. Same discipline as orb scarcity:
// the eligibility check and the increment are a single conditional UPDATE, so
// two concurrent redeemers of the last slot produce exactly one success.
// Adding the reward to the user's inventory and counting the redemption are
// the caller's follow-up saga steps.
func (s *AnalyticsService) RedeemReward(campaignID, rewardID, userID string) (*models.Reward, error) {
	var reward models.Reward
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND campaign_id = ?", rewardID, campaignID).
			First(&reward).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRewardNotFound
			}
			return err
		}

		if reward.ExpiryDate != nil && reward.ExpiryDate.Before(time.Now()) {
			return ErrRewardExpired
		}

		upd := tx.Model(&models.Reward{}).
			Where("id = ? AND redeemed_count < redemption_limit", rewardID).
			UpdateColumn("redeemed_count", gorm.Expr("redeemed_count + 1"))
		if upd.Error != nil {
			return upd.Error
		}
		if upd.RowsAffected == 0 {
			return ErrRedemptionExhausted
		}

		return tx.Where("id = ?", rewardID).First(&reward).Error
	})
	if err != nil {
		return nil, err
	}
	return &reward, nil
}

// CampaignSnapshot is the dashboard read model: counters plus heatmap.
type CampaignSnapshot struct {
	Analytics models.CampaignAnalytics `json:"analytics"`
	Heatmap   []models.HeatmapPoint    `json:"heatmap"`
}

// Snapshot returns the campaign's analytics, cached briefly. Dashboards poll
// and slightly stale counters are acceptable telemetry.
func (s *AnalyticsService) Snapshot(ctx context.Context, campaignID string) (*CampaignSnapshot, error) {
	key := "analytics:snapshot:" + campaignID
	if s.Cache != nil {
		if data, err := s.Cache.Get(ctx, key); err == nil {
			var snap CampaignSnapshot
			if json.Unmarshal(data, &snap) == nil {
				return &snap, nil
			}
		}
	}

	var snap CampaignSnapshot
	err := s.DB.Where("campaign_id = ?", campaignID).First(&snap.Analytics).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		snap.Analytics = models.CampaignAnalytics{CampaignID: campaignID}
	} else if err != nil {
		return nil, err
	}

	if err := s.DB.Where("campaign_id = ?", campaignID).
		Order("count DESC").Limit(200).
		Find(&snap.Heatmap).Error; err != nil {
		return nil, err
	}

	if s.Cache != nil {
		if data, err := json.Marshal(&snap); err == nil {
			_ = s.Cache.Set(ctx, key, data, snapshotCacheTTL)
		}
	}
	return &snap, nil
}
