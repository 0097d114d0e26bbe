package stats

import (
	"net"
	"net/http"
	"sync"
	"sync/atomic"
)

// Tracker counts live connections and requests of an http.Server.
//
// Connection states map onto the stub status fields as follows:
//   - http.StateNew: reading (accepted, request not started yet)
//   - http.StateActive: writing (request being served)
//   - http.StateIdle: waiting (keep-alive)
//
// Hijacked and closed connections leave the active set.
type Tracker struct {
	accepts  atomic.Int64
	handled  atomic.Int64
	requests atomic.Int64
	current  atomic.Int64

	reading atomic.Int64
	writing atomic.Int64
	waiting atomic.Int64

	// last known state per connection, needed to decrement on transition
	conns map[net.Conn]http.ConnState
	mu    sync.Mutex
}

// NewTracker creates an empty tracker
func NewTracker() *Tracker {
	return &Tracker{
		conns: make(map[net.Conn]http.ConnState),
	}
}

// TrackConnState is meant to be installed as http.Server.ConnState
func (t *Tracker) TrackConnState(conn net.Conn, state http.ConnState) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if prev, ok := t.conns[conn]; ok {
		t.gauge(prev).Add(-1)
	}

	switch state {
	case http.StateNew:
		t.accepts.Add(1)
		t.handled.Add(1)
		t.conns[conn] = state
		t.reading.Add(1)
	case http.StateActive, http.StateIdle:
		t.conns[conn] = state
		t.gauge(state).Add(1)
	case http.StateHijacked, http.StateClosed:
		delete(t.conns, conn)
	}
}

// gauge returns the counter for a tracked state (caller must hold mu)
func (t *Tracker) gauge(state http.ConnState) *atomic.Int64 {
	switch state {
	case http.StateActive:
		return &t.writing
	case http.StateIdle:
		return &t.waiting
	default:
		return &t.reading
	}
}

// Middleware counts every request passing through it
func (t *Tracker) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.requests.Add(1)
		t.current.Add(1)
		defer t.current.Add(-1)

		next.ServeHTTP(w, r)
	})
}

// Current returns the number of requests being served
func (t *Tracker) Current() int64 {
	return t.current.Load()
}

// Counters implements interfaces.CounterSource
func (t *Tracker) Counters() Counters {
	reading := t.reading.Load()
	writing := t.writing.Load()
	waiting := t.waiting.Load()

	return Counters{
		Active:   reading + writing + waiting,
		Accepts:  t.accepts.Load(),
		Handled:  t.handled.Load(),
		Requests: t.requests.Load(),
		Reading:  reading,
		Writing:  writing,
		Waiting:  waiting,
	}
}
