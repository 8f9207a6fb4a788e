// services/scheduler.go
package services

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartAutosaveScheduler flushes the in-memory state to the slot once a
// minute. Per-mutation writes are already synchronous; this is the safety net
// for the case where one of them failed silently.
func (s *MatchService) StartAutosaveScheduler() {
	sched, err := gocron.NewScheduler()
	if err != nil {
		log.Printf("[Autosave] scheduler init failed: %v", err)
		return
	}
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			s.Flush()
		}),
	)
}
