package stats

import (
	"net"
	"net/http"
	"net/http/httptest"
	"runtime"
	"sync"
	"testing"
	"time"
)

func TestStaticSource(t *testing.T) {
	want := Counters{1, 1, 1, 1, 1, 1, 1}
	if got := NewStaticSource().Counters(); got != want {
		t.Errorf("static counters = %+v, want %+v", got, want)
	}
}

func TestZone(t *testing.T) {
	z := NewZone("backend")

	statuses := []int{101, 200, 204, 301, 404, 429, 500, 99}
	for range statuses {
		z.Begin()
	}

	c := z.Counters()
	if c.Processing != int64(len(statuses)) || c.Requests != int64(len(statuses)) {
		t.Fatalf("unexpected counters while processing: %+v", c)
	}

	for _, status := range statuses {
		z.End(status, 10, 100)
	}

	c = z.Counters()
	if c.Name != "backend" {
		t.Errorf("unexpected name %q", c.Name)
	}
	if c.Processing != 0 {
		t.Errorf("expected nothing processing, got %d", c.Processing)
	}
	if c.Responses.Total != 8 {
		t.Errorf("expected 8 responses, got %d", c.Responses.Total)
	}

	classes := []struct {
		name string
		got  int64
		want int64
	}{
		{"1xx", c.Responses.R1xx, 1},
		{"2xx", c.Responses.R2xx, 2},
		{"3xx", c.Responses.R3xx, 1},
		{"4xx", c.Responses.R4xx, 2},
		{"5xx", c.Responses.R5xx, 1},
	}
	for _, cl := range classes {
		if cl.got != cl.want {
			t.Errorf("%s = %d, want %d", cl.name, cl.got, cl.want)
		}
	}

	if c.Received != 80 || c.Sent != 800 {
		t.Errorf("unexpected byte counts: received=%d sent=%d", c.Received, c.Sent)
	}
}

func TestZoneConcurrent(t *testing.T) {
	z := NewZone("concurrent")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				z.Begin()
				z.End(200, 1, 1)
			}
		}()
	}
	wg.Wait()

	c := z.Counters()
	if c.Requests != 5000 || c.Responses.R2xx != 5000 || c.Processing != 0 {
		t.Errorf("unexpected counters after concurrent use: %+v", c)
	}
}

func TestTrackerConnStates(t *testing.T) {
	tr := NewTracker()

	a, aPeer := net.Pipe()
	b, bPeer := net.Pipe()
	defer aPeer.Close()
	defer bPeer.Close()

	steps := []struct {
		conn  net.Conn
		state http.ConnState
		want  Counters
	}{
		{a, http.StateNew, Counters{Active: 1, Accepts: 1, Handled: 1, Reading: 1}},
		{b, http.StateNew, Counters{Active: 2, Accepts: 2, Handled: 2, Reading: 2}},
		{a, http.StateActive, Counters{Active: 2, Accepts: 2, Handled: 2, Reading: 1, Writing: 1}},
		{a, http.StateIdle, Counters{Active: 2, Accepts: 2, Handled: 2, Reading: 1, Waiting: 1}},
		{b, http.StateHijacked, Counters{Active: 1, Accepts: 2, Handled: 2, Waiting: 1}},
		{a, http.StateActive, Counters{Active: 1, Accepts: 2, Handled: 2, Writing: 1}},
		{a, http.StateClosed, Counters{Accepts: 2, Handled: 2}},
	}

	for i, step := range steps {
		tr.TrackConnState(step.conn, step.state)
		if got := tr.Counters(); got != step.want {
			t.Fatalf("step %d (%s): counters = %+v, want %+v", i, step.state, got, step.want)
		}
	}

	a.Close()
	b.Close()
}

func TestTrackerMiddleware(t *testing.T) {
	tr := NewTracker()

	var during int64
	handler := tr.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		during = tr.Current()
	}))

	for i := 0; i < 3; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}

	if during != 1 {
		t.Errorf("expected 1 request in progress inside the handler, got %d", during)
	}
	if tr.Current() != 0 {
		t.Errorf("expected no request in progress, got %d", tr.Current())
	}
	if got := tr.Counters().Requests; got != 3 {
		t.Errorf("expected 3 requests, got %d", got)
	}
}

func TestSnapshotStore(t *testing.T) {
	before := time.Now()
	store := NewSnapshotStore("127.0.0.1:8000")

	snap := store.GetSnapshot()
	if snap.Version != Version {
		t.Errorf("expected version %q, got %q", Version, snap.Version)
	}
	if snap.ServerVersion != runtime.Version() {
		t.Errorf("unexpected server version %q", snap.ServerVersion)
	}
	if snap.Timestamp != 0 {
		t.Error("a new store should not have a refresh timestamp")
	}
	if snap.LoadTimestamp < before.UnixMilli() {
		t.Error("load timestamp should be set at creation")
	}

	now := time.Now()
	store.Refresh(Counters{Active: 3, Accepts: 10, Handled: 8, Requests: 40, Waiting: 2}, 1, now)

	snap = store.GetSnapshot()
	expected := Snapshot{
		Version:       Version,
		ServerVersion: runtime.Version(),
		Address:       "127.0.0.1:8000",
		LoadTimestamp: snap.LoadTimestamp,
		Timestamp:     now.UnixMilli(),
		Accepted:      10,
		Dropped:       2,
		Active:        3,
		Idle:          2,
		Total:         40,
		Current:       1,
	}
	if snap != expected {
		t.Errorf("snapshot = %+v, want %+v", snap, expected)
	}
}

func TestSnapshotStoreUpdateFlag(t *testing.T) {
	store := NewSnapshotStore("")

	if !store.BeginUpdate() {
		t.Fatal("first BeginUpdate should succeed")
	}
	if store.BeginUpdate() {
		t.Error("second BeginUpdate should fail while updating")
	}
	if !store.IsUpdating() {
		t.Error("IsUpdating should be true")
	}

	store.EndUpdate()

	if store.IsUpdating() {
		t.Error("IsUpdating should be false after EndUpdate")
	}
	if !store.BeginUpdate() {
		t.Error("BeginUpdate should succeed after EndUpdate")
	}
}
