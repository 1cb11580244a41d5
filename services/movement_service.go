package services

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/SOULGPT/brandorb/models"
	"github.com/SOULGPT/brandorb/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MaxSpeedKmh is the plausibility ceiling for reported movement: highway
// vehicle speed. Above 2x the ceiling the violation escalates to critical.
const MaxSpeedKmh = 120.0

// Teleport rule: more than this distance covered in under teleportWindow is
// rejected regardless of computed speed (catches chunked-timestamp gaming).
const (
	teleportDistanceKm = 1.0
	teleportWindow     = 5 * time.Second
)

type MovementService struct {
	DB          *gorm.DB
	MaxSpeedKmh float64
}

func NewMovementService(db *gorm.DB) *MovementService {
	return &MovementService{DB: db, MaxSpeedKmh: MaxSpeedKmh}
}

// MovementResult is the outcome of validating one location sample.
type MovementResult struct {
	Accepted   bool                     `json:"accepted"`
	Violation  models.AntiCheatKind     `json:"violation,omitempty"`
	Severity   models.AntiCheatSeverity `json:"severity,omitempty"`
	DistanceKm float64                  `json:"distance_km"`
	SpeedKmh   float64                  `json:"speed_kmh,omitempty"`
	DeltaSecs  float64                  `json:"delta_seconds"`
}

// ReportLocation validates a new sample against the user's last accepted one.
// An accepted sample becomes the new baseline; a rejected sample is discarded
// and logged as an AntiCheatEvent, and the baseline stays put, so a rejected
// teleport cannot be laundered into a new starting point.
func (s *MovementService) ReportLocation(userID string, sample models.LocationSample) (*MovementResult, error) {
	var prev models.UserLocation
	err := s.DB.Where("user_id = ?", userID).First(&prev).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// First fix for this user: nothing to validate against.
		if err := s.advanceBaseline(userID, sample); err != nil {
			return nil, err
		}
		return &MovementResult{Accepted: true}, nil
	}
	if err != nil {
		return nil, err
	}

	result := s.evaluate(&prev, sample)
	if !result.Accepted {
		s.flag(userID, result)
		return result, nil
	}

	if err := s.advanceBaseline(userID, sample); err != nil {
		return nil, err
	}
	return result, nil
}

// evaluate applies the plausibility rules. Pure with respect to the database.
func (s *MovementService) evaluate(prev *models.UserLocation, next models.LocationSample) *MovementResult {
	delta := next.ObservedAt.Sub(prev.ObservedAt).Seconds()
	dist := utils.DistanceKm(prev.Latitude, prev.Longitude, next.Latitude, next.Longitude)

	res := &MovementResult{DistanceKm: dist, DeltaSecs: delta}

	// Non-causal timestamp: sample from the past or a duplicate. Movement
	// cannot be validated, and honest clients never produce this.
	if delta <= 0 {
		res.Violation = models.AntiCheatGPSSpoof
		res.Severity = models.SeverityCritical
		return res
	}

	res.SpeedKmh = utils.SpeedKmh(dist, delta)

	// Checked before the speed rule: a large instant displacement always
	// implies an implausible speed too, and the teleport kind is the more
	// specific finding.
	if dist > teleportDistanceKm && delta < teleportWindow.Seconds() {
		res.Violation = models.AntiCheatTeleport
		res.Severity = models.SeverityCritical
		return res
	}

	if res.SpeedKmh > s.MaxSpeedKmh {
		res.Violation = models.AntiCheatSpeedViolation
		if res.SpeedKmh > s.MaxSpeedKmh*2 {
			res.Severity = models.SeverityCritical
		} else {
			res.Severity = models.SeverityHigh
		}
		return res
	}

	res.Accepted = true
	return res
}

func (s *MovementService) advanceBaseline(userID string, sample models.LocationSample) error {
	loc := models.UserLocation{
		UserID:     userID,
		Latitude:   sample.Latitude,
		Longitude:  sample.Longitude,
		ObservedAt: sample.ObservedAt,
	}
	return s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"latitude", "longitude", "observed_at", "updated_at"}),
	}).Create(&loc).Error
}

// flag persists exactly one AntiCheatEvent for a rejection. Critical severity
// additionally bans the account; if the ban write fails the rejection still
// stands and the failure is logged for operators, never surfaced to the user.
func (s *MovementService) flag(userID string, res *MovementResult) {
	details, _ := json.Marshal(map[string]float64{
		"distance_km":   res.DistanceKm,
		"speed_kmh":     res.SpeedKmh,
		"delta_seconds": res.DeltaSecs,
	})

	event := models.AntiCheatEvent{
		ID:       uuid.NewString(),
		UserID:   userID,
		Kind:     res.Violation,
		Severity: res.Severity,
		Details:  string(details),
	}
	if err := s.DB.Create(&event).Error; err != nil {
		log.Printf("❌ [ANTICHEAT] Failed to persist event for %s (%s/%s): %v",
			userID, res.Violation, res.Severity, err)
	}

	if res.Severity == models.SeverityCritical {
		if _, err := NewProgressionService(s.DB).BanUser(userID, string(res.Violation)); err != nil {
			log.Printf("❌ [ANTICHEAT] Ban write failed for %s: %v", userID, err)
		} else {
			log.Printf("🚫 [ANTICHEAT] Auto-banned %s (%s)", userID, res.Violation)
		}
	}
}

// RecentEvents returns the latest anti-cheat events for the admin dashboard.
func (s *MovementService) RecentEvents(limit int) ([]models.AntiCheatEvent, error) {
	if limit < 1 || limit > 500 {
		limit = 100
	}
	var events []models.AntiCheatEvent
	err := s.DB.Order("occurred_at DESC").Limit(limit).Find(&events).Error
	return events, err
}
