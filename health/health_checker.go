// Package health provides health checking functionality for the status service.
package health

import (
	"math"
	"net/http"
	"time"

	"github.com/giygas/nginx-status/interfaces"
)

// staleFactor is how many refresh intervals a snapshot may miss before the
// service reports itself degraded
const staleFactor = 3

// HealthCheckerImpl implements the interfaces.HealthChecker interface
type HealthCheckerImpl struct {
	store    interfaces.SnapshotStore
	interval time.Duration
	mounted  bool
	now      func() time.Time
}

// NewHealthChecker creates a new health checker with injected dependencies.
// interval is the snapshot refresh period and mounted tells whether the status
// location is served.
func NewHealthChecker(store interfaces.SnapshotStore, interval time.Duration, mounted bool) interfaces.HealthChecker {
	return &HealthCheckerImpl{
		store:    store,
		interval: interval,
		mounted:  mounted,
		now:      time.Now,
	}
}

// HealthCheck reports the state of the global status snapshot
func (h *HealthCheckerImpl) HealthCheck() (status string, data map[string]any, httpStatus int) {
	snap := h.store.GetSnapshot()
	isUpdating := h.store.IsUpdating()
	now := h.now()

	var age time.Duration
	if snap.Timestamp != 0 {
		age = now.Sub(time.UnixMilli(snap.Timestamp))
	}

	switch {
	case snap.Timestamp == 0:
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable

	case h.interval > 0 && age > staleFactor*h.interval:
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable

	default:
		status = "healthy"
		httpStatus = http.StatusOK
	}

	data = map[string]any{
		"snapshot_age_seconds": math.Round(age.Seconds()*10) / 10,
		"uptime_seconds":       math.Round(now.Sub(h.store.GetServerStartTime()).Seconds()),
		"is_updating":          isUpdating,
		"status_mounted":       h.mounted,
		"snapshot":             snap,
	}
	if snap.Timestamp != 0 {
		data["last_update"] = time.UnixMilli(snap.Timestamp).Format(time.RFC3339)
	}

	return status, data, httpStatus
}
