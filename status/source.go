package status

import (
	"fmt"

	"github.com/giygas/nginx-status/config"
	"github.com/giygas/nginx-status/interfaces"
	"github.com/giygas/nginx-status/stats"
)

// Compile-time checks to ensure both sources implement interfaces.CounterSource
var (
	_ interfaces.CounterSource = stats.StaticSource{}
	_ interfaces.CounterSource = (*stats.Tracker)(nil)
)

// NewSource picks the counter source for a STATUS_COUNTERS mode. The tracker is
// only used in live mode.
func NewSource(mode string, tracker *stats.Tracker) (interfaces.CounterSource, error) {
	switch mode {
	case config.CountersStatic:
		return stats.NewStaticSource(), nil
	case config.CountersLive:
		if tracker == nil {
			return nil, fmt.Errorf("live counters need a tracker")
		}
		return tracker, nil
	default:
		return nil, fmt.Errorf("unknown counter mode %q", mode)
	}
}
