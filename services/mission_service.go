package services

import (
	"time"

	"github.com/SOULGPT/brandorb/models"

	"gorm.io/gorm"
)

type MissionService struct {
	DB *gorm.DB
}

func NewMissionService(db *gorm.DB) *MissionService {
	return &MissionService{DB: db}
}

// DailyMissions lists active daily missions, filtering expiry lazily.
func (s *MissionService) DailyMissions() ([]models.Mission, error) {
	var missions []models.Mission
	now := time.Now()
	err := s.DB.Where("kind = ? AND active = ?", models.MissionKindDaily, true).
		Where("expiry_date IS NULL OR expiry_date >= ?", now).
		Find(&missions).Error
	return missions, err
}
