package ticker

import "time"

// Fake is a manually-driven Ticker for deterministic tests: call Fire to
// push a tick rather than waiting on the wall clock.
type Fake struct {
	c      chan time.Time
	stopped bool
}

// NewFake constructs a Fake ticker with a buffered channel of depth 1.
func NewFake() *Fake {
	return &Fake{c: make(chan time.Time, 1)}
}

func (f *Fake) C() <-chan time.Time {
	return f.c
}

// Fire pushes a single tick carrying the given timestamp.
func (f *Fake) Fire(at time.Time) {
	if f.stopped {
		return
	}
	select {
	case f.c <- at:
	default:
	}
}

func (f *Fake) Stop() {
	f.stopped = true
}
