// Package scheduler runs the background jobs of the status service: refreshing
// the global status snapshot and dropping idle rate limiter buckets.
package scheduler

import (
	"fmt"
	"time"

	"github.com/giygas/nginx-status/interfaces"
	"github.com/giygas/nginx-status/logging"
	"github.com/giygas/nginx-status/metrics"
	"github.com/go-co-op/gocron"
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// CleanupInterval is how often idle rate limiter buckets are dropped
const CleanupInterval = 30 * time.Minute

// currentReporter is implemented by sources that know how many requests are in progress
type currentReporter interface {
	Current() int64
}

// Scheduler refreshes the snapshot store from a counter source at a fixed interval
type Scheduler struct {
	store     interfaces.SnapshotStore
	source    interfaces.CounterSource
	limiter   interfaces.BucketCleaner
	interval  time.Duration
	scheduler *gocron.Scheduler
}

// NewScheduler creates a new scheduler instance with injected dependencies.
// limiter may be nil, in which case no cleanup job is registered.
func NewScheduler(store interfaces.SnapshotStore, source interfaces.CounterSource, limiter interfaces.BucketCleaner, interval time.Duration) *Scheduler {
	return &Scheduler{
		store:     store,
		source:    source,
		limiter:   limiter,
		interval:  interval,
		scheduler: gocron.NewScheduler(time.Local),
	}
}

// Start takes a first snapshot and schedules the recurring jobs
func (s *Scheduler) Start() error {
	s.refreshSnapshot()

	_, err := s.scheduler.Every(s.interval).WaitForSchedule().Do(s.refreshSnapshot)
	if err != nil {
		logging.Error("Failed to schedule snapshot refresh", "error", err)
		return fmt.Errorf("failed to schedule snapshot refresh: %w", err)
	}

	if s.limiter != nil {
		_, err = s.scheduler.Every(CleanupInterval).WaitForSchedule().Do(s.cleanupBuckets)
		if err != nil {
			logging.Error("Failed to schedule rate limiter cleanup", "error", err)
			return fmt.Errorf("failed to schedule rate limiter cleanup: %w", err)
		}
	}

	s.scheduler.StartAsync()
	logging.Info("Scheduler started", "snapshot_interval", s.interval.String(), "jobs", len(s.scheduler.Jobs()))

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// refreshSnapshot stores a new snapshot unless a refresh is already running
func (s *Scheduler) refreshSnapshot() {
	if !s.store.BeginUpdate() {
		logging.Debug("Snapshot refresh already in progress, skipping")
		return
	}
	defer s.store.EndUpdate()

	var current int64
	if cr, ok := s.source.(currentReporter); ok {
		current = cr.Current()
	}

	counters := s.source.Counters()
	s.store.Refresh(counters, current, time.Now())

	logging.Debug("Status snapshot refreshed",
		"active", counters.Active,
		"requests", counters.Requests,
		"current", current)
}

func (s *Scheduler) cleanupBuckets() {
	remaining := s.limiter.Cleanup()
	metrics.RateLimiterBucketsTotal.Set(float64(remaining))
	logging.Debug("Rate limiter buckets cleaned up", "remaining", remaining)
}
