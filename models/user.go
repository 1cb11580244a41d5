package models

import (
	"time"

	"gorm.io/gorm"
)

// UserRole mirrors the role the profile service assigns at signup.
type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleBrand UserRole = "brand"
	UserRoleAdmin UserRole = "admin"
)

// UserProfile is the engine's view of a player. Identity itself lives in the
// profile service; this row carries progression state (XP, level, streak,
// ban status) and is mutated exclusively through ProgressionService.
type UserProfile struct {
	ID        string   `gorm:"primaryKey;type:uuid" json:"id"` // profile service UUID
	Username  string   `gorm:"index" json:"username"`
	Email     string   `json:"email,omitempty"`
	AvatarURL *string  `json:"avatar_url,omitempty"`
	Role      UserRole `gorm:"not null;default:'user'" json:"role"`

	XP             int64     `gorm:"default:0" json:"xp"`
	Level          int       `gorm:"default:1" json:"level"`
	Streak         int       `gorm:"default:0" json:"streak"`
	LastActivityAt time.Time `json:"last_activity_at"`

	Banned    bool       `gorm:"default:false;index" json:"banned"`
	BanReason *string    `json:"ban_reason,omitempty"`
	BannedAt  *time.Time `json:"banned_at,omitempty"`

	Timestamps
}

// InventoryItem is one reward held by a user. The (user_id, reward_id) unique
// index makes the inventory a set: retried grants land on the same row.
type InventoryItem struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID   string `gorm:"uniqueIndex:idx_inventory_user_reward;not null" json:"user_id"`
	RewardID string `gorm:"uniqueIndex:idx_inventory_user_reward;not null" json:"reward_id"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// XPGrant is the dedup ledger for XP awards. ActionKey is a stable identifier
// for the triggering action (e.g. "orb:<orbId>"); a retried grant for the same
// (user, action) hits the unique index and is dropped instead of double-counted.
type XPGrant struct {
	ID        string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID    string `gorm:"uniqueIndex:idx_xp_grant_action;not null" json:"user_id"`
	ActionKey string `gorm:"uniqueIndex:idx_xp_grant_action;not null" json:"action_key"`
	Amount    int64  `json:"amount"`
	Reason    string `json:"reason"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// MissionCompletion records a finished mission on the profile (a set, like inventory).
type MissionCompletion struct {
	ID        string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID    string `gorm:"uniqueIndex:idx_mission_user;not null" json:"user_id"`
	MissionID string `gorm:"uniqueIndex:idx_mission_user;not null" json:"mission_id"`

	CompletedAt time.Time `json:"completed_at" gorm:"autoCreateTime"`
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
