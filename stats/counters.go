// Package stats holds the connection and request counters reported by the status
// location, the global status snapshot, and the per-zone counter record.
package stats

// Counters is one reading of the stub status fields.
type Counters struct {
	Active   int64 `json:"active"`
	Accepts  int64 `json:"accepts"`
	Handled  int64 `json:"handled"`
	Requests int64 `json:"requests"`
	Reading  int64 `json:"reading"`
	Writing  int64 `json:"writing"`
	Waiting  int64 `json:"waiting"`
}

// StaticSource reports 1 for every field.
type StaticSource struct{}

// NewStaticSource returns the source used when live counting is disabled
func NewStaticSource() StaticSource {
	return StaticSource{}
}

// Counters implements interfaces.CounterSource
func (StaticSource) Counters() Counters {
	return Counters{
		Active:   1,
		Accepts:  1,
		Handled:  1,
		Requests: 1,
		Reading:  1,
		Writing:  1,
		Waiting:  1,
	}
}
