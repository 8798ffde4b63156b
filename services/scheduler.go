// services/scheduler.go
package services

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartSuspiciousActivitySweep runs the analyzer on a schedule and logs the
// summary, so flagged users show up in the logs without anyone opening the
// admin report.
func (s *AnalysisService) StartSuspiciousActivitySweep(interval time.Duration) {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			report, err := s.AnalyzeClaims()
			if err != nil {
				log.Printf("[Sweep] suspicious-activity analysis failed: %v", err)
				return
			}
			if report.TotalFlaggedPairs == 0 {
				log.Printf("[Sweep] analyzed %d user(s), nothing flagged", report.TotalUsersAnalyzed)
				return
			}
			log.Printf("🚩 [Sweep] analyzed %d user(s): %d flagged, %d close-pair(s)",
				report.TotalUsersAnalyzed, report.TotalFlaggedUsers, report.TotalFlaggedPairs)
		}),
	)
}
