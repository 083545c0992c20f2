package utils

import (
	"log"

	"github.com/robfig/cron/v3"
)

// InitializeNotificationJobs sets up the periodic retry queue, bounce scan,
// and stale-generation sweep jobs. Cadence is a deployment concern and comes
// from config; the jobs themselves are also invocable on demand through the
// admin API.
func InitializeNotificationJobs(retrySpec, bounceSpec, sweepSpec string, retryJob, bounceJob, sweepJob func()) *cron.Cron {
	log.Println("[NOTIFICATION-SCHEDULER] Initializing notification jobs...")

	c := cron.New()

	if _, err := c.AddFunc(retrySpec, func() {
		log.Println("[NOTIFICATION-SCHEDULER] Running retry queue pass...")
		retryJob()
	}); err != nil {
		log.Fatalf("[NOTIFICATION-SCHEDULER] Invalid retry cron spec %q: %v", retrySpec, err)
	}

	if _, err := c.AddFunc(bounceSpec, func() {
		log.Println("[NOTIFICATION-SCHEDULER] Running bounce scan...")
		bounceJob()
	}); err != nil {
		log.Fatalf("[NOTIFICATION-SCHEDULER] Invalid bounce cron spec %q: %v", bounceSpec, err)
	}

	if _, err := c.AddFunc(sweepSpec, func() {
		log.Println("[NOTIFICATION-SCHEDULER] Running generation sweep...")
		sweepJob()
	}); err != nil {
		log.Fatalf("[NOTIFICATION-SCHEDULER] Invalid sweep cron spec %q: %v", sweepSpec, err)
	}

	c.Start()
	log.Printf("[NOTIFICATION-SCHEDULER] Started (retry %q, bounce %q, sweep %q)", retrySpec, bounceSpec, sweepSpec)
	return c
}
