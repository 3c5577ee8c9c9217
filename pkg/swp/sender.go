package swp

import (
	"fmt"

	"github.com/aetherflow/swp/internal/swp/endpoint"
	"github.com/aetherflow/swp/internal/swp/metrics"
	"github.com/aetherflow/swp/internal/swp/sender"
	"github.com/aetherflow/swp/internal/swp/swplog"
	"github.com/aetherflow/swp/internal/swp/ticker"
	"github.com/aetherflow/swp/internal/swp/wire"
	"github.com/aetherflow/swp/pkg/guuid"
	"go.uber.org/zap"
)

// SenderSession is the sending side of a reliable-datagram session: one
// datagram endpoint dialed to a fixed peer, one sender.Window, an ACK
// ingestion loop, and a retransmission-sweep loop (spec §4.1, §5).
type SenderSession struct {
	closer

	id  guuid.GUUID
	ep  *endpoint.Endpoint
	win *sender.Window
	tk  ticker.Ticker
	log *zap.Logger
	met *metrics.Metrics
}

// NewSender dials peerAddr and starts a sender session with a send window
// of sws frames (spec §4.1, §6). The session owns its own ephemeral local
// UDP port.
func NewSender(peerAddr string, sws int, opts ...Option) (*SenderSession, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	id, err := newSessionID()
	if err != nil {
		return nil, err
	}

	ep, err := endpoint.Dial(peerAddr)
	if err != nil {
		return nil, fmt.Errorf("swp: dial sender to %q: %w", peerAddr, err)
	}

	log := swplog.WithSession(o.log, id.String(), ep.LocalAddr().String(), peerAddr)

	s := &SenderSession{
		closer: newCloser(),
		id:     id,
		ep:     ep,
		log:    log,
		met:    o.metrics,
	}

	transmit := func(frame []byte) error {
		if s.met != nil {
			s.met.FramesSent.WithLabelValues("data").Inc()
		}
		return ep.Send(frame)
	}
	onGiveUp := func(seq byte, retries int) {
		if s.met != nil {
			s.met.GiveUps.Inc()
		}
		fatal(s.log, "retransmission retries exhausted, session unrecoverable",
			zap.Uint8("seq", seq), zap.Int("retries", retries))
	}
	onRetransmit := func(seq byte, retries int) {
		if s.met != nil {
			s.met.Retransmissions.Inc()
		}
		s.log.Debug("retransmitting frame", zap.Uint8("seq", seq), zap.Int("retries", retries))
	}

	win, err := sender.NewWindow(sws, transmit, onGiveUp, onRetransmit, log)
	if err != nil {
		ep.Close()
		return nil, err
	}
	s.win = win

	s.tk = o.tick
	if s.tk == nil {
		s.tk = ticker.New(ticker.DefaultInterval)
	}

	s.wg.Add(2)
	go s.ackIngestLoop()
	go s.sweepLoop()

	return s, nil
}

// Submit enqueues payload for transmission, blocking until a send-window
// slot is free (spec §4.1).
func (s *SenderSession) Submit(payload []byte) error {
	return s.win.Submit(payload)
}

// Flush suspends until every submitted frame has been acknowledged (spec §4.1).
func (s *SenderSession) Flush() error {
	return s.win.Flush()
}

// SlotsAvailable reports the current count of free send-window slots.
func (s *SenderSession) SlotsAvailable() int {
	return s.win.SlotsAvailable()
}

// ID returns the session's correlation ID (log/metrics only; not on the wire).
func (s *SenderSession) ID() string {
	return s.id.String()
}

// Close tears down the session's goroutines and releases its socket.
func (s *SenderSession) Close() error {
	s.close(func() {
		s.tk.Stop()
		s.win.Close()
		s.ep.Close()
	})
	return nil
}

// ackIngestLoop is the sender's "datagram readable" notification handler
// (spec §5): every inbound datagram is an ack frame, fed straight into the
// window's cumulative-ACK ingestion.
func (s *SenderSession) ackIngestLoop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			return
		case pkt, ok := <-s.ep.Packets():
			if !ok {
				return
			}
			ack, err := wire.UnmarshalAckFrame(pkt.Data)
			if err != nil {
				if s.met != nil {
					reason := "crc"
					if len(pkt.Data) != wire.AckFrameSize {
						reason = "size"
					}
					s.met.FramesDiscarded.WithLabelValues(reason).Inc()
				}
				s.log.Debug("discarding malformed ack frame", zap.Error(err))
				continue
			}
			if s.met != nil {
				s.met.FramesReceived.WithLabelValues("ack").Inc()
				s.met.SendSlotsFree.Set(float64(s.win.SlotsAvailable()))
			}
			s.win.HandleAck(ack.AckNum)
		}
	}
}

// sweepLoop is the sender's periodic timer notification (spec §4.5, §5).
func (s *SenderSession) sweepLoop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			return
		case now := <-s.tk.C():
			s.win.TimerSweep(now)
			if s.met != nil {
				s.met.SendSlotsFree.Set(float64(s.win.SlotsAvailable()))
			}
		}
	}
}
