package models

import "time"

type OrbKind string

const (
	OrbKindBrandOrb     OrbKind = "brandorb"
	OrbKindRewardBox    OrbKind = "reward_box"
	OrbKindDiscountCoin OrbKind = "discount_coin"
	OrbKindMysteryClue  OrbKind = "mystery_clue"
	OrbKindBrandNode    OrbKind = "brand_node"
)

type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// BrandOrb is a location-anchored collectible spawned for a campaign.
// CollectedCount is bounded by MaxCollections (always >= 1); the bound is
// enforced with a conditional UPDATE in OrbService.Collect, never in Go code
// alone. Per-user uniqueness lives in OrbCollection's unique index.
type BrandOrb struct {
	ID         string  `gorm:"primaryKey;type:uuid" json:"id"`
	Kind       OrbKind `gorm:"not null" json:"kind"`
	Latitude   float64 `gorm:"not null" json:"latitude"`
	Longitude  float64 `gorm:"not null" json:"longitude"`
	BrandID    string  `gorm:"index" json:"brand_id"`
	CampaignID string  `gorm:"index" json:"campaign_id"`
	Rarity     Rarity  `gorm:"not null;default:'common'" json:"rarity"`
	XPReward   int64   `json:"xp_reward"`
	IconURL    string  `json:"icon_url,omitempty"`

	Active         bool       `gorm:"default:true;index" json:"active"`
	SpawnedAt      time.Time  `json:"spawned_at"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	MaxCollections int        `gorm:"not null" json:"max_collections"`
	CollectedCount int        `gorm:"not null;default:0" json:"collected_count"`

	Timestamps
}

// OrbCollection is one user's claim on an orb. The (orb_id, user_id) unique
// index is what makes double-collection impossible under concurrent requests.
type OrbCollection struct {
	ID         string `gorm:"primaryKey;type:uuid" json:"id"`
	OrbID      string `gorm:"uniqueIndex:idx_orb_user;not null" json:"orb_id"`
	UserID     string `gorm:"uniqueIndex:idx_orb_user;not null" json:"user_id"`
	CampaignID string `gorm:"index" json:"campaign_id"`
	XPAwarded  int64  `json:"xp_awarded"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
