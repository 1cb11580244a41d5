package services

import (
	"testing"
	"time"

	"github.com/SOULGPT/brandorb/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedCampaignWithClues(t *testing.T, db *gorm.DB, answers []string) (*models.Campaign, []models.Clue) {
	t.Helper()

	campaignID := uuid.NewString()
	campaign := models.Campaign{
		ID:        campaignID,
		BrandID:   uuid.NewString(),
		Name:      "Scavenger Hunt",
		Slug:      "scavenger-hunt-" + campaignID[:8],
		StartDate: time.Now().Add(-time.Hour),
		EndDate:   time.Now().Add(time.Hour),
		Active:    true,
		Approved:  true,
	}
	require.NoError(t, db.Create(&campaign).Error)

	clues := make([]models.Clue, len(answers))
	for i, answer := range answers {
		a := answer
		clues[i] = models.Clue{
			ID:         uuid.NewString(),
			CampaignID: campaignID,
			Kind:       models.ClueKindRiddle,
			Question:   "what am I?",
			Answer:     &a,
			XPReward:   30,
			StepOrder:  i + 1,
		}
		require.NoError(t, db.Create(&clues[i]).Error)
	}
	return &campaign, clues
}

func TestSubmitAnswerCaseInsensitive(t *testing.T) {
	db := openTestDB(t)
	s := NewClueService(db)
	userID := seedProfile(t, db)
	campaign, clues := seedCampaignWithClues(t, db, []string{"Fountain", "Clock Tower"})

	res, err := s.SubmitAnswer(userID, campaign.ID, clues[0].ID, "  fOUnTAIN ")
	require.NoError(t, err)
	assert.True(t, res.Correct)
	assert.False(t, res.AlreadySolved)
	assert.Equal(t, int64(30), res.XPAwarded)
	assert.Equal(t, 1, res.CurrentStep)
	assert.False(t, res.CampaignComplete)
}

func TestSubmitAnswerWrong(t *testing.T) {
	db := openTestDB(t)
	s := NewClueService(db)
	userID := seedProfile(t, db)
	campaign, clues := seedCampaignWithClues(t, db, []string{"fountain"})

	res, err := s.SubmitAnswer(userID, campaign.ID, clues[0].ID, "statue")
	require.NoError(t, err)
	assert.False(t, res.Correct)

	// A wrong answer creates no progress.
	var count int64
	require.NoError(t, db.Model(&models.UserProgress{}).
		Where("user_id = ?", userID).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestSubmitAnswerResubmitNoDoubleGrant(t *testing.T) {
	db := openTestDB(t)
	s := NewClueService(db)
	userID := seedProfile(t, db)
	campaign, clues := seedCampaignWithClues(t, db, []string{"fountain", "tower"})

	_, err := s.SubmitAnswer(userID, campaign.ID, clues[0].ID, "fountain")
	require.NoError(t, err)

	res, err := s.SubmitAnswer(userID, campaign.ID, clues[0].ID, "fountain")
	require.NoError(t, err)
	assert.True(t, res.Correct)
	assert.True(t, res.AlreadySolved)
	assert.Equal(t, int64(0), res.XPAwarded)
	assert.Equal(t, 1, res.CurrentStep)

	var profile models.UserProfile
	require.NoError(t, db.Where("id = ?", userID).First(&profile).Error)
	assert.Equal(t, int64(30), profile.XP)

	// The campaign counter also only moved once.
	var analytics models.CampaignAnalytics
	require.NoError(t, db.Where("campaign_id = ?", campaign.ID).First(&analytics).Error)
	assert.Equal(t, int64(1), analytics.ClueCompletions)
}

func TestSubmitAnswerCompletesCampaign(t *testing.T) {
	db := openTestDB(t)
	s := NewClueService(db)
	userID := seedProfile(t, db)
	campaign, clues := seedCampaignWithClues(t, db, []string{"one", "two"})

	res, err := s.SubmitAnswer(userID, campaign.ID, clues[0].ID, "one")
	require.NoError(t, err)
	assert.False(t, res.CampaignComplete)

	res, err = s.SubmitAnswer(userID, campaign.ID, clues[1].ID, "two")
	require.NoError(t, err)
	assert.True(t, res.CampaignComplete)
	assert.Equal(t, 2, res.CurrentStep)

	var progress models.UserProgress
	require.NoError(t, db.Where("user_id = ? AND campaign_id = ?", userID, campaign.ID).
		First(&progress).Error)
	assert.NotNil(t, progress.CompletedAt)
}

func TestSubmitAnswerOutOfOrderAccepted(t *testing.T) {
	db := openTestDB(t)
	s := NewClueService(db)
	userID := seedProfile(t, db)
	campaign, clues := seedCampaignWithClues(t, db, []string{"one", "two", "three"})

	// Solving the last clue first still counts.
	res, err := s.SubmitAnswer(userID, campaign.ID, clues[2].ID, "three")
	require.NoError(t, err)
	assert.True(t, res.Correct)
	assert.Equal(t, 1, res.CurrentStep)
}

func TestSubmitAnswerClueNotFound(t *testing.T) {
	db := openTestDB(t)
	s := NewClueService(db)
	userID := seedProfile(t, db)
	campaign, clues := seedCampaignWithClues(t, db, []string{"one"})

	_, err := s.SubmitAnswer(userID, campaign.ID, uuid.NewString(), "one")
	assert.ErrorIs(t, err, ErrClueNotFound)

	// A clue ID under a different campaign must not match.
	_, err = s.SubmitAnswer(userID, uuid.NewString(), clues[0].ID, "one")
	assert.ErrorIs(t, err, ErrClueNotFound)
}

func TestSubmitAnswerAnswerlessClue(t *testing.T) {
	db := openTestDB(t)
	s := NewClueService(db)
	userID := seedProfile(t, db)
	campaign, _ := seedCampaignWithClues(t, db, nil)

	clue := models.Clue{
		ID:         uuid.NewString(),
		CampaignID: campaign.ID,
		Kind:       models.ClueKindQR,
		Question:   "scan the code",
		StepOrder:  1,
	}
	require.NoError(t, db.Create(&clue).Error)

	res, err := s.SubmitAnswer(userID, campaign.ID, clue.ID, "anything")
	require.NoError(t, err)
	assert.False(t, res.Correct)
}

func TestProgress(t *testing.T) {
	db := openTestDB(t)
	s := NewClueService(db)
	userID := seedProfile(t, db)
	campaign, clues := seedCampaignWithClues(t, db, []string{"one", "two"})

	// Before any answers: a zero-valued view, not an error.
	progress, solved, err := s.Progress(userID, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, progress.CurrentStep)
	assert.Empty(t, solved)

	_, err = s.SubmitAnswer(userID, campaign.ID, clues[0].ID, "one")
	require.NoError(t, err)

	progress, solved, err = s.Progress(userID, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, progress.CurrentStep)
	require.Len(t, solved, 1)
	assert.Equal(t, clues[0].ID, solved[0])
}
