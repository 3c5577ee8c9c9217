// Package ticker isolates the periodic retransmission-sweep clock behind a
// small interface so it can be swapped for a deterministic fake in tests,
// rather than reaching for time.NewTicker directly in the reliability loop.
package ticker

import "time"

// DefaultInterval is how often a session's retransmission sweep runs.
const DefaultInterval = 100 * time.Millisecond

// Ticker is the minimal surface a session's reliability loop needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type realTicker struct {
	t *time.Ticker
}

// New starts a real wall-clock ticker firing every interval.
func New(interval time.Duration) Ticker {
	return &realTicker{t: time.NewTicker(interval)}
}

func (r *realTicker) C() <-chan time.Time {
	return r.t.C
}

func (r *realTicker) Stop() {
	r.t.Stop()
}
