// Package sender implements the Sender Engine: the outbound sliding
// window, its per-slot retransmission timers, cumulative-ACK ingestion,
// and the submit/flush application surface (spec §4.1).
package sender

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aetherflow/swp/internal/swp/window"
	"github.com/aetherflow/swp/internal/swp/wire"
	"go.uber.org/zap"
)

const (
	// RTO is the fixed retransmission timeout (spec §6).
	RTO = 250 * time.Millisecond

	// MaxRetries is the give-up bound: a slot whose retry counter exceeds
	// this is declared unrecoverable (spec §4.1, §6).
	MaxRetries = 25
)

// ErrClosed is returned by Submit/Flush when the window has been closed
// while a call was suspended — a Go-library teardown affordance the
// original spec's live-until-exit lifecycle doesn't need, but a host
// process does to release goroutines deterministically.
var ErrClosed = errors.New("sender: window closed")

// GiveUpFunc is invoked, outside the window's lock, by a sweep that finds a
// slot whose retry count exceeds MaxRetries — the session's only
// fatal-error path (spec §7c). The slot stays armed, so every later sweep
// invokes it again. It is the caller's responsibility to log a diagnostic
// and terminate the process; Window itself does not call os.Exit.
type GiveUpFunc func(seq byte, retries int)

// RetransmitFunc is invoked once per retransmitted frame, while the
// window's lock is held, so a caller can maintain an accurate counter in
// lockstep with the sweep. It must not call back into Window.
type RetransmitFunc func(seq byte, retries int)

// Transmitter hands a marshaled frame to the datagram endpoint. It is
// called while the window's lock is held, so that hand-off, timer arming,
// and the slotsAvailable decrement happen as one atomic step with respect
// to ACK ingestion and timer sweeps (spec §4.1, §5.1).
type Transmitter func(frame []byte) error

type slot struct {
	frame   wire.DataFrame
	bytes   []byte
	armed   bool
	expiry  time.Time
	retries int
}

// Window is the sender-side sliding window: LAR/LFS bookkeeping, the slot
// buffer, and the condition used to suspend Submit/Flush.
type Window struct {
	mu   sync.Mutex
	cond *sync.Cond

	sws      int
	sendSize int

	lar, lfs byte
	slots    []slot

	slotsAvailable int
	closed         bool

	transmit     Transmitter
	onGiveUp     GiveUpFunc
	onRetransmit RetransmitFunc
	log          *zap.Logger
}

// NewWindow constructs a sender window of size sws (in [1,128]).
// transmit hands a marshaled frame to the datagram endpoint; onGiveUp is
// invoked on permanent failure; onRetransmit, if non-nil, is invoked once
// per retransmitted frame. log may be nil (a no-op logger is used).
func NewWindow(sws int, transmit Transmitter, onGiveUp GiveUpFunc, onRetransmit RetransmitFunc, log *zap.Logger) (*Window, error) {
	if sws < 1 || sws > 128 {
		return nil, fmt.Errorf("sender: window size %d out of range [1,128]", sws)
	}
	if transmit == nil {
		return nil, fmt.Errorf("sender: transmit function is required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	w := &Window{
		sws:            sws,
		sendSize:       2 * sws,
		transmit:       transmit,
		onGiveUp:       onGiveUp,
		onRetransmit:   onRetransmit,
		log:            log,
		slotsAvailable: sws,
	}
	w.slots = make([]slot, w.sendSize)
	w.cond = sync.NewCond(&w.mu)
	return w, nil
}

// Submit enqueues payload for transmission, blocking until a window slot
// is free, then hands the frame to the datagram endpoint and arms its
// retransmission timer before returning (spec §4.1). Truncates to
// wire.PayloadMax. Never fails observably in normal operation; the only
// error is ErrClosed, returned if the window is closed while waiting.
func (w *Window) Submit(payload []byte) error {
	if len(payload) > wire.PayloadMax {
		payload = payload[:wire.PayloadMax]
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	for w.slotsAvailable == 0 && !w.closed {
		w.cond.Wait()
	}
	if w.closed {
		return ErrClosed
	}

	w.lfs = byte((int(w.lfs) + 1) % w.sendSize)
	seq := w.lfs

	f := wire.DataFrame{Seq: seq, Length: len(payload)}
	copy(f.Payload[:], payload)

	frameBytes, err := f.MarshalBinary()
	if err != nil {
		// Length is already clamped above, so this can't happen in
		// practice; treat it the same as a transient send failure.
		return fmt.Errorf("sender: marshal frame: %w", err)
	}

	w.slots[seq] = slot{
		frame:  f,
		bytes:  frameBytes,
		armed:  true,
		expiry: time.Now().Add(RTO),
	}

	if err := w.transmit(frameBytes); err != nil {
		w.log.Debug("transient send failure, relying on retransmission", zap.Uint8("seq", seq), zap.Error(err))
	}

	w.slotsAvailable--
	return nil
}

// Flush suspends until the window is empty, i.e. every prior Submit has
// been acknowledged (spec §4.1).
func (w *Window) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for w.slotsAvailable != w.sws && !w.closed {
		w.cond.Wait()
	}
	if w.closed {
		return ErrClosed
	}
	return nil
}

// HandleAck processes one cumulative ACK: rejects it if it falls outside
// the open window (LAR, LFS], otherwise advances LAR to ackNum one step
// at a time, disarming each slot's timer and freeing it (spec §4.1).
// An ackNum equal to the already-acknowledged LAR, or any ackNum outside
// the open window, is silently discarded (spec §4.1 tie-breaks).
func (w *Window) HandleAck(ackNum byte) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if int(ackNum) >= w.sendSize || !window.InWindow(w.lar, w.lfs, ackNum) {
		return
	}

	for w.lar != ackNum {
		w.lar = byte((int(w.lar) + 1) % w.sendSize)
		w.slots[w.lar].armed = false
		w.slotsAvailable++
	}
	w.cond.Broadcast()
}

// TimerSweep examines every armed slot in order LAR+1, LAR+2, ... and
// retransmits any whose expiry has passed, rearming its timer without
// resetting its retry counter and invoking onRetransmit once per frame
// resent. If a slot's retry count exceeds MaxRetries, onGiveUp is invoked
// (outside the lock) and the sweep stops early — the session is now
// unrecoverable (spec §4.1, §7c).
func (w *Window) TimerSweep(now time.Time) {
	w.mu.Lock()

	for j := 0; j < w.sendSize; j++ {
		i := byte((int(w.lar) + 1 + j) % w.sendSize)
		s := &w.slots[i]
		if !s.armed || now.Before(s.expiry) {
			continue
		}

		s.retries++
		if s.retries > MaxRetries {
			seq, retries := i, s.retries
			w.mu.Unlock()
			if w.onGiveUp != nil {
				w.onGiveUp(seq, retries)
			}
			return
		}

		if err := w.transmit(s.bytes); err != nil {
			w.log.Debug("transient retransmit failure", zap.Uint8("seq", i), zap.Error(err))
		}
		s.expiry = now.Add(RTO)
		if w.onRetransmit != nil {
			w.onRetransmit(i, s.retries)
		}
	}

	w.mu.Unlock()
}

// SlotsAvailable returns the current count of free send-window slots
// (for metrics/diagnostics; not part of the application surface).
func (w *Window) SlotsAvailable() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.slotsAvailable
}

// Close releases any goroutine suspended in Submit or Flush, returning
// ErrClosed to them. It does not affect in-flight retransmission state.
func (w *Window) Close() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	w.cond.Broadcast()
}
