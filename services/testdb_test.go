package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/SOULGPT/brandorb/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB gives each test its own in-memory SQLite database. The shared
// cache keeps the database alive across the pooled connections GORM opens,
// and the busy timeout lets concurrent-writer tests serialize instead of
// failing immediately.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.UserProfile{},
		&models.InventoryItem{},
		&models.XPGrant{},
		&models.MissionCompletion{},
		&models.UserLocation{},
		&models.AntiCheatEvent{},
		&models.BrandOrb{},
		&models.OrbCollection{},
		&models.Campaign{},
		&models.Clue{},
		&models.Reward{},
		&models.CampaignAnalytics{},
		&models.CampaignUser{},
		&models.HeatmapPoint{},
		&models.UserProgress{},
		&models.ClueCompletion{},
		&models.Mission{},
	))
	return db
}

// seedProfile inserts a bare user profile and returns its ID.
func seedProfile(t *testing.T, db *gorm.DB) string {
	t.Helper()

	id := uuid.NewString()
	require.NoError(t, db.Create(&models.UserProfile{
		ID:             id,
		Username:       "tester-" + id[:8],
		Role:           models.UserRoleUser,
		Level:          1,
		LastActivityAt: time.Now(),
	}).Error)
	return id
}
