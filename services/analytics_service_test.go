package services

import (
	"context"
	"testing"
	"time"

	"github.com/SOULGPT/brandorb/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedReward(t *testing.T, s *AnalyticsService, campaignID string, limit int, expiry *time.Time) *models.Reward {
	t.Helper()
	reward := models.Reward{
		ID:              uuid.NewString(),
		CampaignID:      campaignID,
		Kind:            models.RewardKindDiscountCode,
		Title:           "10% off",
		Value:           "SAVE10",
		Rarity:          models.RarityCommon,
		ExpiryDate:      expiry,
		RedemptionLimit: limit,
	}
	require.NoError(t, s.DB.Create(&reward).Error)
	return &reward
}

func TestIncrementCreatesRowLazily(t *testing.T) {
	db := openTestDB(t)
	s := NewAnalyticsService(db, nil)
	campaignID := uuid.NewString()

	require.NoError(t, s.Increment(campaignID, MetricImpression))
	require.NoError(t, s.Increment(campaignID, MetricImpression))
	require.NoError(t, s.Increment(campaignID, MetricClueCompletion))

	var row models.CampaignAnalytics
	require.NoError(t, db.Where("campaign_id = ?", campaignID).First(&row).Error)
	assert.Equal(t, int64(2), row.Impressions)
	assert.Equal(t, int64(1), row.ClueCompletions)
	assert.Equal(t, int64(0), row.RewardRedemptions)
}

func TestIncrementUnknownMetric(t *testing.T) {
	db := openTestDB(t)
	s := NewAnalyticsService(db, nil)

	assert.Error(t, s.Increment(uuid.NewString(), Metric("bogus")))
}

func TestRecordEngagementUniqueUsersAndHeatmap(t *testing.T) {
	db := openTestDB(t)
	s := NewAnalyticsService(db, nil)
	campaignID := uuid.NewString()
	userA := uuid.NewString()
	userB := uuid.NewString()

	require.NoError(t, s.RecordEngagement(campaignID, userA, 51.505, -0.09))
	require.NoError(t, s.RecordEngagement(campaignID, userA, 51.505, -0.09))
	require.NoError(t, s.RecordEngagement(campaignID, userB, 51.505, -0.09))

	var row models.CampaignAnalytics
	require.NoError(t, db.Where("campaign_id = ?", campaignID).First(&row).Error)
	assert.Equal(t, int64(3), row.Impressions)
	assert.Equal(t, int64(2), row.UniqueUsers) // userA counted once

	// All three engagements landed in the same ~100m bucket.
	var points []models.HeatmapPoint
	require.NoError(t, db.Where("campaign_id = ?", campaignID).Find(&points).Error)
	require.Len(t, points, 1)
	assert.Equal(t, int64(3), points[0].Count)
}

func TestRecordEngagementSeparateBuckets(t *testing.T) {
	db := openTestDB(t)
	s := NewAnalyticsService(db, nil)
	campaignID := uuid.NewString()

	require.NoError(t, s.RecordEngagement(campaignID, uuid.NewString(), 51.505, -0.09))
	require.NoError(t, s.RecordEngagement(campaignID, uuid.NewString(), 51.511, -0.09))

	var points []models.HeatmapPoint
	require.NoError(t, db.Where("campaign_id = ?", campaignID).Find(&points).Error)
	assert.Len(t, points, 2)
}

func TestRedeemReward(t *testing.T) {
	db := openTestDB(t)
	s := NewAnalyticsService(db, nil)
	campaignID := uuid.NewString()
	reward := seedReward(t, s, campaignID, 2, nil)

	got, err := s.RedeemReward(campaignID, reward.ID, uuid.NewString())
	require.NoError(t, err)
	assert.Equal(t, 1, got.RedeemedCount)

	got, err = s.RedeemReward(campaignID, reward.ID, uuid.NewString())
	require.NoError(t, err)
	assert.Equal(t, 2, got.RedeemedCount)

	_, err = s.RedeemReward(campaignID, reward.ID, uuid.NewString())
	assert.ErrorIs(t, err, ErrRedemptionExhausted)

	// The bound is never overshot.
	var fresh models.Reward
	require.NoError(t, db.Where("id = ?", reward.ID).First(&fresh).Error)
	assert.Equal(t, 2, fresh.RedeemedCount)
}

func TestRedeemRewardExpired(t *testing.T) {
	db := openTestDB(t)
	s := NewAnalyticsService(db, nil)
	campaignID := uuid.NewString()
	past := time.Now().Add(-time.Hour)
	reward := seedReward(t, s, campaignID, 5, &past)

	_, err := s.RedeemReward(campaignID, reward.ID, uuid.NewString())
	assert.ErrorIs(t, err, ErrRewardExpired)
}

func TestRedeemRewardNotFound(t *testing.T) {
	db := openTestDB(t)
	s := NewAnalyticsService(db, nil)

	_, err := s.RedeemReward(uuid.NewString(), uuid.NewString(), uuid.NewString())
	assert.ErrorIs(t, err, ErrRewardNotFound)

	// A reward ID paired with the wrong campaign must not match either.
	campaignID := uuid.NewString()
	reward := seedReward(t, s, campaignID, 5, nil)
	_, err = s.RedeemReward(uuid.NewString(), reward.ID, uuid.NewString())
	assert.ErrorIs(t, err, ErrRewardNotFound)
}

func TestSnapshotMissingCampaignIsZeroed(t *testing.T) {
	db := openTestDB(t)
	s := NewAnalyticsService(db, nil)
	campaignID := uuid.NewString()

	snap, err := s.Snapshot(context.Background(), campaignID)
	require.NoError(t, err)
	assert.Equal(t, campaignID, snap.Analytics.CampaignID)
	assert.Equal(t, int64(0), snap.Analytics.Impressions)
	assert.Empty(t, snap.Heatmap)
}

func TestSnapshotIncludesHeatmap(t *testing.T) {
	db := openTestDB(t)
	s := NewAnalyticsService(db, nil)
	campaignID := uuid.NewString()

	require.NoError(t, s.RecordEngagement(campaignID, uuid.NewString(), 51.505, -0.09))

	snap, err := s.Snapshot(context.Background(), campaignID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), snap.Analytics.Impressions)
	require.Len(t, snap.Heatmap, 1)
	assert.Equal(t, int64(1), snap.Heatmap[0].Count)
}
