package models

import "time"

type MissionKind string

const (
	MissionKindDaily   MissionKind = "daily"
	MissionKindWeekly  MissionKind = "weekly"
	MissionKindTimed   MissionKind = "timed"
	MissionKindSpecial MissionKind = "special"
)

// Mission is a platform-wide task (not campaign-bound). Expiry is evaluated
// lazily when listing, same as orbs.
type Mission struct {
	ID          string      `gorm:"primaryKey;type:uuid" json:"id"`
	Title       string      `gorm:"not null" json:"title"`
	Description string      `gorm:"type:text" json:"description"`
	Kind        MissionKind `gorm:"not null;index" json:"kind"`
	XPReward    int64       `json:"xp_reward"`
	ExpiryDate  *time.Time  `json:"expiry_date,omitempty"`
	Active      bool        `gorm:"default:true;index" json:"active"`

	Timestamps
}
