package models

import "time"

// Campaign is a brand's marketing run: a date range, a budget, an ordered clue
// chain and a reward pool. Analytics counters live in CampaignAnalytics and
// are owned by AnalyticsService.
type Campaign struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	BrandID     string `gorm:"index;not null" json:"brand_id"`
	Name        string `gorm:"not null" json:"name"`
	Slug        string `gorm:"uniqueIndex;not null" json:"slug"`
	Description string `gorm:"type:text" json:"description"`

	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Budget    float64   `json:"budget"`

	Active     bool       `gorm:"default:false;index" json:"active"`
	Approved   bool       `gorm:"default:false" json:"approved"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`

	Clues   []Clue   `gorm:"foreignKey:CampaignID" json:"clues,omitempty"`
	Rewards []Reward `gorm:"foreignKey:CampaignID" json:"rewards,omitempty"`

	Timestamps
}

type ClueKind string

const (
	ClueKindRiddle   ClueKind = "riddle"
	ClueKindLocation ClueKind = "location"
	ClueKindQR       ClueKind = "qr"
	ClueKindARScan   ClueKind = "ar_scan"
	ClueKindPhoto    ClueKind = "photo"
)

// Clue is one puzzle in a campaign's chain. StepOrder is strictly increasing
// within a campaign and defines the intended completion sequence.
type Clue struct {
	ID         string   `gorm:"primaryKey;type:uuid" json:"id"`
	CampaignID string   `gorm:"index;not null" json:"campaign_id"`
	Kind       ClueKind `gorm:"not null;default:'riddle'" json:"kind"`
	Question   string   `gorm:"type:text" json:"question"`
	Answer     *string  `json:"-"` // never serialized to clients
	ImageURL   string   `json:"image_url,omitempty"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
	XPReward   int64    `json:"xp_reward"`
	StepOrder  int      `gorm:"not null" json:"step_order"`
}

type RewardKind string

const (
	RewardKindDiscountCode RewardKind = "discount_code"
	RewardKindQRCoupon     RewardKind = "qr_coupon"
	RewardKindGiftBox      RewardKind = "gift_box"
	RewardKindBrandPoints  RewardKind = "brand_points"
)

// Reward is one redeemable item in a campaign's pool. RedeemedCount never
// exceeds RedemptionLimit; the increment is a conditional UPDATE in
// AnalyticsService.RedeemReward.
type Reward struct {
	ID          string     `gorm:"primaryKey;type:uuid" json:"id"`
	CampaignID  string     `gorm:"index;not null" json:"campaign_id"`
	Kind        RewardKind `gorm:"not null" json:"kind"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Value       string     `json:"value"`
	Rarity      Rarity     `gorm:"not null;default:'common'" json:"rarity"`
	ImageURL    string     `json:"image_url,omitempty"`
	ExpiryDate  *time.Time `json:"expiry_date,omitempty"`

	RedemptionLimit int `gorm:"not null" json:"redemption_limit"`
	RedeemedCount   int `gorm:"not null;default:0" json:"redeemed_count"`
}

// CampaignAnalytics holds the monotonic per-campaign counters. All writes go
// through atomic SQL increments; the struct is only ever read back whole.
type CampaignAnalytics struct {
	CampaignID        string  `gorm:"primaryKey;type:uuid" json:"campaign_id"`
	Impressions       int64   `gorm:"not null;default:0" json:"impressions"`
	ClueCompletions   int64   `gorm:"not null;default:0" json:"clue_completions"`
	RewardRedemptions int64   `gorm:"not null;default:0" json:"reward_redemptions"`
	UniqueUsers       int64   `gorm:"not null;default:0" json:"unique_users"`
	CostPerEngagement float64 `json:"cost_per_engagement"`

	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// CampaignUser marks that a user engaged with a campaign at least once.
// Backing set for the UniqueUsers counter.
type CampaignUser struct {
	CampaignID string `gorm:"primaryKey;type:uuid" json:"campaign_id"`
	UserID     string `gorm:"primaryKey;type:uuid" json:"user_id"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// HeatmapPoint is an engagement counter for a coarse geographic bucket
// (coordinates rounded to ~100m). Feeds the brand dashboard heatmap.
type HeatmapPoint struct {
	ID         string  `gorm:"primaryKey;type:uuid" json:"id"`
	CampaignID string  `gorm:"uniqueIndex:idx_heatmap_bucket;not null" json:"campaign_id"`
	GeoKey     string  `gorm:"uniqueIndex:idx_heatmap_bucket;not null" json:"-"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Count      int64   `gorm:"not null;default:0" json:"count"`
}
