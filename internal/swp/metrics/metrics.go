// Package metrics defines the Prometheus instrumentation a swp session
// exposes, following internal/gateway/metrics's promauto-constructed
// counter/gauge/histogram fields and namespace/subsystem convention.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every counter/gauge a session's sender and receiver
// windows update as they run.
type Metrics struct {
	FramesSent       *prometheus.CounterVec
	FramesReceived   *prometheus.CounterVec
	FramesDiscarded  *prometheus.CounterVec
	Retransmissions  prometheus.Counter
	GiveUps          prometheus.Counter
	SendSlotsFree    prometheus.Gauge
	RecvQueueDepth   prometheus.Gauge
	CRCFailures      prometheus.Counter
}

// New constructs a Metrics registered under namespace/subsystem, the same
// two-level naming NewMetrics uses for its domain's counters.
func New(namespace, subsystem string) *Metrics {
	return &Metrics{
		FramesSent: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "frames_sent_total",
				Help:      "Total number of data/ack frames transmitted.",
			},
			[]string{"type"}, // data, ack
		),
		FramesReceived: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "frames_received_total",
				Help:      "Total number of data/ack frames received.",
			},
			[]string{"type"},
		),
		FramesDiscarded: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "frames_discarded_total",
				Help:      "Total number of malformed frames discarded (bad CRC or wrong size).",
			},
			[]string{"reason"}, // crc, size
		),
		Retransmissions: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "retransmissions_total",
				Help:      "Total number of data frame retransmissions.",
			},
		),
		GiveUps: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "give_ups_total",
				Help:      "Total number of slots abandoned after exceeding the retry limit.",
			},
		),
		SendSlotsFree: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "send_slots_free",
				Help:      "Current number of free send-window slots.",
			},
		),
		RecvQueueDepth: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "recv_queue_depth",
				Help:      "Current number of reassembled payloads awaiting Recv.",
			},
		),
		CRCFailures: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "crc_failures_total",
				Help:      "Total number of frames rejected for failing CRC verification.",
			},
		),
	}
}

// Handler returns the standard Prometheus exposition HTTP handler, wired
// the same way cmd/session-service exposes MetricsConfig.Path.
func Handler() http.Handler {
	return promhttp.Handler()
}
