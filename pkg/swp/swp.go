// Package swp is the public API for the reliable-datagram transport:
// explicit SenderSession and ReceiverSession objects, each owning one
// datagram endpoint, one sliding window, and the goroutines that drive
// them — replacing the original reference's process-wide session globals
// with an object a host process can create many of and tear down
// deterministically (spec Design Note "Global session state").
package swp

import (
	"fmt"
	"os"
	"sync"

	"github.com/aetherflow/swp/internal/swp/metrics"
	"github.com/aetherflow/swp/internal/swp/ticker"
	"go.uber.org/zap"
	"github.com/aetherflow/swp/pkg/guuid"
)

// Option configures a SenderSession or ReceiverSession at construction.
type Option func(*options)

type options struct {
	log     *zap.Logger
	metrics *metrics.Metrics
	tick    ticker.Ticker
}

func defaultOptions() *options {
	return &options{
		log: zap.NewNop(),
	}
}

// WithLogger attaches a *zap.Logger for transient/fatal diagnostics (spec §7b/§7c).
func WithLogger(log *zap.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithMetrics attaches a Prometheus metrics recorder.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithTicker overrides the retransmission-sweep clock, for deterministic
// tests (spec §9 "Blocking on condition" / testability, mirrors the
// teacher's injectable bbr.Config pattern).
func WithTicker(t ticker.Ticker) Option {
	return func(o *options) { o.tick = t }
}

// newSessionID mints a session correlation ID for log lines and metrics
// labels only — it never appears on the wire (spec §6 mandates an exact
// fixed frame layout that has no room for one).
func newSessionID() (guuid.GUUID, error) {
	id, err := guuid.New()
	if err != nil {
		return guuid.GUUID{}, fmt.Errorf("swp: generate session id: %w", err)
	}
	return id, nil
}

// fatal logs a diagnostic and terminates the process, the Go-idiomatic
// rendering of SWP_sendTimer's exit(1) give-up path (spec §7c, §9).
func fatal(log *zap.Logger, msg string, fields ...zap.Field) {
	log.Error(msg, fields...)
	_ = log.Sync()
	os.Exit(1)
}

// closer is embedded by both session types to provide a once-only,
// goroutine-releasing Close.
type closer struct {
	once sync.Once
	done chan struct{}
	wg   sync.WaitGroup
}

func newCloser() closer {
	return closer{done: make(chan struct{})}
}

func (c *closer) close(teardown func()) {
	c.once.Do(func() {
		close(c.done)
		teardown()
		c.wg.Wait()
	})
}
