// workers/expiry_worker.go
package workers

import (
	"context"
	"log"
	"time"

	"github.com/SOULGPT/brandorb/services"
)

// PollOrbExpiry deactivates orbs whose expires_at has passed. Readers already
// filter expired orbs at query time, so this is hygiene only: it keeps the
// active flag honest for dashboards and stops dead rows matching the nearby
// index scan.
func PollOrbExpiry(ctx context.Context, orbService *services.OrbService, pollInterval time.Duration) {
	log.Println("Starting orb expiry sweeper...")

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Orb expiry sweeper stopped.")
			return
		case <-ticker.C:
			swept, err := orbService.DeactivateExpired(time.Now())
			if err != nil {
				log.Printf("❌ Orb expiry sweep failed: %v", err)
				continue
			}
			if swept > 0 {
				log.Printf("🧹 Deactivated %d expired orb(s)", swept)
			}
		}
	}
}
