package stats

import (
	"runtime"
	"sync/atomic"
	"time"

	"github.com/giygas/nginx-status/logging"
)

// Version is the status data format version
const Version = "4"

// Snapshot is the global status of the server at a point in time
type Snapshot struct {
	Version       string `json:"version"`
	ServerVersion string `json:"server_version"`
	Address       string `json:"address"`
	LoadTimestamp int64  `json:"load_timestamp"`
	Timestamp     int64  `json:"timestamp"`

	// connections
	Accepted int64 `json:"accepted"`
	Dropped  int64 `json:"dropped"`
	Active   int64 `json:"active"`
	Idle     int64 `json:"idle"`

	// requests
	Total   int64 `json:"total"`
	Current int64 `json:"current"`
}

// SnapshotStore keeps the latest Snapshot behind an atomic pointer so readers
// never block the scheduler refreshing it
type SnapshotStore struct {
	snapshot        atomic.Value // Snapshot
	updating        atomic.Bool
	serverStartTime time.Time
	address         string
}

// NewSnapshotStore creates a store whose snapshots report the given listen address
func NewSnapshotStore(address string) *SnapshotStore {
	now := time.Now()
	s := &SnapshotStore{
		serverStartTime: now,
		address:         address,
	}
	s.snapshot.Store(Snapshot{
		Version:       Version,
		ServerVersion: runtime.Version(),
		Address:       address,
		LoadTimestamp: now.UnixMilli(),
	})
	return s
}

// GetSnapshot returns the latest snapshot
func (s *SnapshotStore) GetSnapshot() Snapshot {
	if v := s.snapshot.Load(); v != nil {
		if snap, ok := v.(Snapshot); ok {
			return snap
		}
	}

	logging.Warn("Status snapshot is empty or invalid")
	return Snapshot{Version: Version, Address: s.address}
}

// Refresh replaces the snapshot with one built from c at now
func (s *SnapshotStore) Refresh(c Counters, current int64, now time.Time) {
	prev := s.GetSnapshot()

	s.snapshot.Store(Snapshot{
		Version:       Version,
		ServerVersion: prev.ServerVersion,
		Address:       s.address,
		LoadTimestamp: prev.LoadTimestamp,
		Timestamp:     now.UnixMilli(),
		Accepted:      c.Accepts,
		Dropped:       c.Accepts - c.Handled,
		Active:        c.Active,
		Idle:          c.Waiting,
		Total:         c.Requests,
		Current:       current,
	})
}

// BeginUpdate marks a refresh as started. It returns false if one is already running.
func (s *SnapshotStore) BeginUpdate() bool {
	return s.updating.CompareAndSwap(false, true)
}

// EndUpdate marks the running refresh as finished
func (s *SnapshotStore) EndUpdate() {
	s.updating.Store(false)
}

// IsUpdating reports whether a refresh is running
func (s *SnapshotStore) IsUpdating() bool {
	return s.updating.Load()
}

// GetServerStartTime returns when the store was created
func (s *SnapshotStore) GetServerStartTime() time.Time {
	return s.serverStartTime
}
