package services

import (
	"testing"
	"time"

	"github.com/SOULGPT/brandorb/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureProfileIdempotent(t *testing.T) {
	db := openTestDB(t)
	s := NewProgressionService(db)
	userID := uuid.NewString()

	first, err := s.EnsureProfile(userID, "alice", "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(0), first.XP)
	assert.Equal(t, 1, first.Level)
	assert.Equal(t, 0, first.Streak)

	// Second call returns the existing row untouched.
	require.NoError(t, db.Model(&models.UserProfile{}).
		Where("id = ?", userID).UpdateColumn("xp", 50).Error)
	again, err := s.EnsureProfile(userID, "alice", "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(50), again.XP)
}

func TestGrantXPLevelsUp(t *testing.T) {
	db := openTestDB(t)
	s := NewProgressionService(db)
	userID := seedProfile(t, db)

	res, err := s.GrantXP(userID, 250, "", "test")
	require.NoError(t, err)
	assert.Equal(t, int64(250), res.NewXP)
	assert.Equal(t, 3, res.NewLevel) // floor(250/100)+1
	assert.True(t, res.LeveledUp)

	res, err = s.GrantXP(userID, 30, "", "test")
	require.NoError(t, err)
	assert.Equal(t, int64(280), res.NewXP)
	assert.Equal(t, 3, res.NewLevel)
	assert.False(t, res.LeveledUp)
}

func TestGrantXPActionKeyDeduplicates(t *testing.T) {
	db := openTestDB(t)
	s := NewProgressionService(db)
	userID := seedProfile(t, db)

	first, err := s.GrantXP(userID, 40, "orb:abc", "orb_collected")
	require.NoError(t, err)
	assert.False(t, first.Duplicate)
	assert.Equal(t, int64(40), first.NewXP)

	// Retry of the same action changes nothing.
	second, err := s.GrantXP(userID, 40, "orb:abc", "orb_collected")
	require.NoError(t, err)
	assert.True(t, second.Duplicate)
	assert.Equal(t, int64(40), second.NewXP)

	var profile models.UserProfile
	require.NoError(t, db.Where("id = ?", userID).First(&profile).Error)
	assert.Equal(t, int64(40), profile.XP)
}

func TestGrantXPNegativeAmountRejected(t *testing.T) {
	db := openTestDB(t)
	s := NewProgressionService(db)
	userID := seedProfile(t, db)

	_, err := s.GrantXP(userID, -10, "", "test")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestGrantXPUnknownUser(t *testing.T) {
	db := openTestDB(t)
	s := NewProgressionService(db)

	_, err := s.GrantXP(uuid.NewString(), 10, "", "test")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAddToInventoryIsSet(t *testing.T) {
	db := openTestDB(t)
	s := NewProgressionService(db)
	userID := seedProfile(t, db)
	rewardID := uuid.NewString()

	require.NoError(t, s.AddToInventory(userID, rewardID))
	require.NoError(t, s.AddToInventory(userID, rewardID))

	items, err := s.Inventory(userID)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestUpdateStreak(t *testing.T) {
	db := openTestDB(t)
	s := NewProgressionService(db)
	now := time.Now()

	setLast := func(userID string, streak int, last time.Time) {
		require.NoError(t, db.Model(&models.UserProfile{}).
			Where("id = ?", userID).
			Updates(map[string]interface{}{"streak": streak, "last_activity_at": last}).Error)
	}

	t.Run("next day extends", func(t *testing.T) {
		userID := seedProfile(t, db)
		setLast(userID, 3, now.Add(-25*time.Hour))
		streak, err := s.UpdateStreak(userID, now)
		require.NoError(t, err)
		assert.Equal(t, 4, streak)
	})

	t.Run("gap resets to one", func(t *testing.T) {
		userID := seedProfile(t, db)
		setLast(userID, 7, now.Add(-72*time.Hour))
		streak, err := s.UpdateStreak(userID, now)
		require.NoError(t, err)
		assert.Equal(t, 1, streak)
	})

	t.Run("same day unchanged", func(t *testing.T) {
		userID := seedProfile(t, db)
		setLast(userID, 5, now.Add(-2*time.Hour))
		streak, err := s.UpdateStreak(userID, now)
		require.NoError(t, err)
		assert.Equal(t, 5, streak)

		// The activity timestamp still advances.
		var profile models.UserProfile
		require.NoError(t, db.Where("id = ?", userID).First(&profile).Error)
		assert.WithinDuration(t, now, profile.LastActivityAt, time.Second)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := s.UpdateStreak(uuid.NewString(), now)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestBanUserIdempotent(t *testing.T) {
	db := openTestDB(t)
	s := NewProgressionService(db)
	userID := seedProfile(t, db)

	reason, err := s.BanUser(userID, "teleport")
	require.NoError(t, err)
	assert.Equal(t, "teleport", reason)

	// A second ban keeps the original reason.
	reason, err = s.BanUser(userID, "fraud")
	require.NoError(t, err)
	assert.Equal(t, "teleport", reason)

	var profile models.UserProfile
	require.NoError(t, db.Where("id = ?", userID).First(&profile).Error)
	assert.True(t, profile.Banned)
	require.NotNil(t, profile.BanReason)
	assert.Equal(t, "teleport", *profile.BanReason)
}

func TestCompleteMission(t *testing.T) {
	db := openTestDB(t)
	s := NewProgressionService(db)
	userID := seedProfile(t, db)

	mission := models.Mission{
		ID:       uuid.NewString(),
		Title:    "Collect three orbs",
		Kind:     models.MissionKindDaily,
		XPReward: 60,
		Active:   true,
	}
	require.NoError(t, db.Create(&mission).Error)

	res, err := s.CompleteMission(userID, mission.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(60), res.NewXP)
	assert.False(t, res.Duplicate)

	// Completing again is a no-op.
	res, err = s.CompleteMission(userID, mission.ID)
	require.NoError(t, err)
	assert.True(t, res.Duplicate)
	assert.Equal(t, int64(60), res.NewXP)
}

func TestCompleteMissionNotFound(t *testing.T) {
	db := openTestDB(t)
	s := NewProgressionService(db)
	userID := seedProfile(t, db)

	_, err := s.CompleteMission(userID, uuid.NewString())
	assert.ErrorIs(t, err, ErrMissionNotFound)
}

func TestCompleteMissionExpired(t *testing.T) {
	db := openTestDB(t)
	s := NewProgressionService(db)
	userID := seedProfile(t, db)

	past := time.Now().Add(-time.Hour)
	mission := models.Mission{
		ID:         uuid.NewString(),
		Title:      "Too late",
		Kind:       models.MissionKindTimed,
		XPReward:   60,
		Active:     true,
		ExpiryDate: &past,
	}
	require.NoError(t, db.Create(&mission).Error)

	_, err := s.CompleteMission(userID, mission.ID)
	assert.ErrorIs(t, err, ErrMissionNotFound)
}
