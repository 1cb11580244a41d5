package models

import "time"

type AntiCheatKind string

const (
	AntiCheatGPSSpoof       AntiCheatKind = "gps_spoof"
	AntiCheatTeleport       AntiCheatKind = "teleport"
	AntiCheatSpeedViolation AntiCheatKind = "speed_violation"
	AntiCheatRootDetected   AntiCheatKind = "root_detected"
	AntiCheatFraud          AntiCheatKind = "fraud"
)

type AntiCheatSeverity string

const (
	SeverityLow      AntiCheatSeverity = "low"
	SeverityMedium   AntiCheatSeverity = "medium"
	SeverityHigh     AntiCheatSeverity = "high"
	SeverityCritical AntiCheatSeverity = "critical"
)

// AntiCheatEvent is an append-only record of a detected violation.
// Details holds a JSON blob with the measurements that triggered it
// (distance, speed, time delta).
type AntiCheatEvent struct {
	ID       string            `gorm:"primaryKey;type:uuid" json:"id"`
	UserID   string            `gorm:"index;not null" json:"user_id"`
	Kind     AntiCheatKind     `gorm:"not null" json:"kind"`
	Severity AntiCheatSeverity `gorm:"not null;index" json:"severity"`
	Details  string            `gorm:"type:text" json:"details"`

	OccurredAt time.Time `gorm:"index;autoCreateTime" json:"occurred_at"`
}
