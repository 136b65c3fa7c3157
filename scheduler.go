package main

import (
	"context"
	"log"
	"os"
	"time"
)

const defaultSchedulerInterval = 24 * time.Hour

// schedulerInterval is the tick spacing of the recurring-rule batch pass.
// SCHEDULER_INTERVAL (a Go duration) overrides the daily default; the per-rule
// minimum-interval guard absorbs any faster ticking without duplicates.
func schedulerInterval() time.Duration {
	raw := os.Getenv("SCHEDULER_INTERVAL")
	if raw == "" {
		return defaultSchedulerInterval
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("Invalid SCHEDULER_INTERVAL %q, using %v", raw, defaultSchedulerInterval)
		return defaultSchedulerInterval
	}
	return d
}

// runScheduler drives the batch trigger: one pass at startup, then one per
// tick until the context is cancelled. The pass itself never aborts on a
// single rule, so a failed tick only logs.
func runScheduler(ctx context.Context, s Store, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	schedulerPass(ctx, s)

	for {
		select {
		case <-ctx.Done():
			log.Println("Scheduler stopped")
			return
		case <-ticker.C:
			schedulerPass(ctx, s)
		}
	}
}

func schedulerPass(ctx context.Context, s Store) {
	summary, err := processDue(ctx, s, time.Now())
	if err != nil {
		log.Printf("Scheduler pass failed: %v", err)
		return
	}
	log.Printf("Scheduler pass: %d generated, %d skipped, %d total",
		summary.Generated, summary.Skipped, summary.Total)
}
