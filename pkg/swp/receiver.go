package swp

import (
	"fmt"

	"github.com/aetherflow/swp/internal/swp/endpoint"
	"github.com/aetherflow/swp/internal/swp/metrics"
	"github.com/aetherflow/swp/internal/swp/receiver"
	"github.com/aetherflow/swp/internal/swp/swplog"
	"github.com/aetherflow/swp/internal/swp/wire"
	"github.com/aetherflow/swp/pkg/guuid"
	"go.uber.org/zap"
)

// ReceiverSession is the receiving side of a reliable-datagram session:
// one datagram endpoint bound to a local address, one receiver.Window,
// and a data-ingestion loop that re-ACKs every processed datagram exactly
// once (spec §4.2, §5).
type ReceiverSession struct {
	closer

	id  guuid.GUUID
	ep  *endpoint.Endpoint
	win *receiver.Window
	log *zap.Logger
	met *metrics.Metrics
}

// NewReceiver binds bindAddr and starts a receiver session with a receive
// window of rws frames (spec §4.2, §6).
func NewReceiver(bindAddr string, rws int, opts ...Option) (*ReceiverSession, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	id, err := newSessionID()
	if err != nil {
		return nil, err
	}

	ep, err := endpoint.Listen(bindAddr)
	if err != nil {
		return nil, fmt.Errorf("swp: listen receiver on %q: %w", bindAddr, err)
	}

	win, err := receiver.NewWindow(rws)
	if err != nil {
		ep.Close()
		return nil, err
	}

	log := swplog.WithSession(o.log, id.String(), ep.LocalAddr().String(), "")

	r := &ReceiverSession{
		closer: newCloser(),
		id:     id,
		ep:     ep,
		win:    win,
		log:    log,
		met:    o.metrics,
	}

	r.wg.Add(1)
	go r.dataIngestLoop()

	return r, nil
}

// Recv suspends until the next in-order payload is available, then
// returns it (spec §4.2).
func (r *ReceiverSession) Recv() ([]byte, error) {
	return r.win.Recv()
}

// ID returns the session's correlation ID (log/metrics only; not on the wire).
func (r *ReceiverSession) ID() string {
	return r.id.String()
}

// Close tears down the session's goroutine and releases its socket.
func (r *ReceiverSession) Close() error {
	r.close(func() {
		r.win.Close()
		r.ep.Close()
	})
	return nil
}

// dataIngestLoop is the receiver's "datagram readable" notification
// handler (spec §5): every inbound datagram is a data frame, ingested
// into the window and answered with exactly one ack frame per spec §4.2's
// fix for Open Question (iii).
func (r *ReceiverSession) dataIngestLoop() {
	defer r.wg.Done()
	for {
		select {
		case <-r.done:
			return
		case pkt, ok := <-r.ep.Packets():
			if !ok {
				return
			}
			f, err := wire.UnmarshalDataFrame(pkt.Data)
			if err != nil {
				if r.met != nil {
					if len(pkt.Data) != wire.DataFrameSize {
						r.met.FramesDiscarded.WithLabelValues("size").Inc()
					} else {
						r.met.FramesDiscarded.WithLabelValues("crc").Inc()
						r.met.CRCFailures.Inc()
					}
				}
				r.log.Debug("discarding malformed data frame", zap.Error(err))
				continue
			}
			if r.met != nil {
				r.met.FramesReceived.WithLabelValues("data").Inc()
			}

			ack := r.win.Ingest(f.Seq, f.Payload[:f.Length])

			ackFrame := &wire.AckFrame{AckNum: ack}
			ackBytes, err := ackFrame.MarshalBinary()
			if err != nil {
				// Unreachable: AckFrame.MarshalBinary never returns an
				// error.
				r.log.Debug("failed to marshal ack frame", zap.Error(err))
				continue
			}
			if err := r.ep.SendTo(pkt.Addr, ackBytes); err != nil {
				r.log.Debug("transient ack send failure", zap.Error(err))
				continue
			}
			if r.met != nil {
				r.met.FramesSent.WithLabelValues("ack").Inc()
				r.met.RecvQueueDepth.Set(float64(r.win.QueueDepth()))
			}
		}
	}
}
