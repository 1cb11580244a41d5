package models

import "time"

// UserProgress tracks one user's walk through one campaign's clue chain.
// Created lazily on the first correct answer. CurrentStep always equals the
// number of ClueCompletion rows for the pair.
type UserProgress struct {
	ID         string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID     string `gorm:"uniqueIndex:idx_progress_user_campaign;not null" json:"user_id"`
	CampaignID string `gorm:"uniqueIndex:idx_progress_user_campaign;not null" json:"campaign_id"`

	CurrentStep int        `gorm:"not null;default:0" json:"current_step"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Timestamps
}

// ClueCompletion is one solved clue within a progress record. The unique
// (progress_id, clue_id) index makes resubmission of a solved clue a no-op.
type ClueCompletion struct {
	ID         string `gorm:"primaryKey;type:uuid" json:"id"`
	ProgressID string `gorm:"uniqueIndex:idx_progress_clue;not null" json:"progress_id"`
	ClueID     string `gorm:"uniqueIndex:idx_progress_clue;not null" json:"clue_id"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
