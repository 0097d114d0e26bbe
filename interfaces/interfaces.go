// Package interfaces defines the contracts between the status service packages
// to keep them testable in isolation.
package interfaces

import (
	"time"

	"github.com/giygas/nginx-status/stats"
)

// CounterSource supplies the values printed by the status location.
type CounterSource interface {
	Counters() stats.Counters
}

// SnapshotStore defines the contract for the global status snapshot.
// Reads never block a refresh in progress.
type SnapshotStore interface {
	GetSnapshot() stats.Snapshot
	Refresh(c stats.Counters, current int64, now time.Time)
	BeginUpdate() bool
	EndUpdate()
	IsUpdating() bool
	GetServerStartTime() time.Time
}

// BucketCleaner is implemented by rate limiters that can drop idle client buckets.
type BucketCleaner interface {
	// Cleanup removes idle buckets and returns how many remain
	Cleanup() int
}

// Scheduler defines the contract for background jobs.
type Scheduler interface {
	// Lifecycle management
	Start() error
	Stop()
}

// HealthChecker defines the contract for health check functionality.
type HealthChecker interface {
	// HealthCheck returns the health status, its details and the HTTP code to answer with
	HealthCheck() (status string, details map[string]any, httpStatus int)
}
