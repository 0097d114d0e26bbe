package stats

import "sync/atomic"

// Zone is a named bucket of request counters.
type Zone struct {
	Name string

	processing atomic.Int64
	requests   atomic.Int64

	// responses
	total    atomic.Int64
	total1xx atomic.Int64
	total2xx atomic.Int64
	total3xx atomic.Int64
	total4xx atomic.Int64
	total5xx atomic.Int64

	received atomic.Int64
	sent     atomic.Int64
}

// ZoneCounters is a point-in-time copy of a Zone.
type ZoneCounters struct {
	Name       string `json:"name"`
	Processing int64  `json:"processing"`
	Requests   int64  `json:"requests"`
	Responses  struct {
		Total int64 `json:"total"`
		R1xx  int64 `json:"1xx"`
		R2xx  int64 `json:"2xx"`
		R3xx  int64 `json:"3xx"`
		R4xx  int64 `json:"4xx"`
		R5xx  int64 `json:"5xx"`
	} `json:"responses"`
	Received int64 `json:"received"`
	Sent     int64 `json:"sent"`
}

// NewZone creates an empty zone
func NewZone(name string) *Zone {
	return &Zone{Name: name}
}

// Begin marks a request as entering the zone.
func (z *Zone) Begin() {
	z.requests.Add(1)
	z.processing.Add(1)
}

// End marks a request begun with Begin as finished with the given response status
// and byte counts.
func (z *Zone) End(status int, received, sent int64) {
	z.processing.Add(-1)
	z.total.Add(1)

	switch status / 100 {
	case 1:
		z.total1xx.Add(1)
	case 2:
		z.total2xx.Add(1)
	case 3:
		z.total3xx.Add(1)
	case 4:
		z.total4xx.Add(1)
	case 5:
		z.total5xx.Add(1)
	}

	z.received.Add(received)
	z.sent.Add(sent)
}

// Counters returns a copy of the zone counters
func (z *Zone) Counters() ZoneCounters {
	var c ZoneCounters
	c.Name = z.Name
	c.Processing = z.processing.Load()
	c.Requests = z.requests.Load()
	c.Responses.Total = z.total.Load()
	c.Responses.R1xx = z.total1xx.Load()
	c.Responses.R2xx = z.total2xx.Load()
	c.Responses.R3xx = z.total3xx.Load()
	c.Responses.R4xx = z.total4xx.Load()
	c.Responses.R5xx = z.total5xx.Load()
	c.Received = z.received.Load()
	c.Sent = z.sent.Load()
	return c
}
