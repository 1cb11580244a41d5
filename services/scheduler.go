// services/scheduler.go
package services

import (
	"log"
	"time"

	"github.com/SOULGPT/brandorb/models"

	"github.com/go-co-op/gocron/v2"
)

// StartCampaignScheduler flips approved campaigns live when their date range
// opens and pulls them once it closes. Runs every minute; each pass is a pair
// of idempotent bulk updates.
func (s *CampaignService) StartCampaignScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			now := time.Now()

			activated := s.DB.Model(&models.Campaign{}).
				Where("approved = ? AND active = ? AND start_date <= ? AND end_date > ?",
					true, false, now, now).
				UpdateColumn("active", true)
			if activated.Error != nil {
				log.Printf("[Scheduler] activation error: %v", activated.Error)
			} else if activated.RowsAffected > 0 {
				log.Printf("✅ Activated %d campaign(s)", activated.RowsAffected)
			}

			ended := s.DB.Model(&models.Campaign{}).
				Where("active = ? AND end_date <= ?", true, now).
				UpdateColumn("active", false)
			if ended.Error != nil {
				log.Printf("[Scheduler] deactivation error: %v", ended.Error)
			} else if ended.RowsAffected > 0 {
				log.Printf("✅ Ended %d campaign(s)", ended.RowsAffected)
			}
		}),
	)
}
