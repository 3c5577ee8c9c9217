// Package receiver implements the Receiver Engine: the inbound sliding
// window, out-of-order reassembly, the bounded delivery queue, and the
// data-ingestion/ack-emission application surface (spec §4.2).
package receiver

import (
	"errors"
	"fmt"

	"github.com/aetherflow/swp/internal/swp/window"
	"sync"
)

// QCapacity is the maximum number of reassembled payloads the delivery
// queue holds awaiting application consumption (spec §3, §6).
const QCapacity = 1000

// ErrClosed is returned by Recv when the window has been closed while a
// call was suspended — a Go-library teardown affordance, see
// sender.ErrClosed for the symmetric rationale.
var ErrClosed = errors.New("receiver: window closed")

type Window struct {
	mu   sync.Mutex
	cond *sync.Cond

	rws      int
	recvSize int

	lfr, laf byte
	present  []bool
	slots    [][]byte // payload bytes, valid length only where present[i]

	queue  [][]byte
	closed bool
}

// NewWindow constructs a receiver window of size rws (in [1,128]).
// rws must be strictly less than QCapacity (spec §4.2 "Delivery queue
// discipline"); violating that is a configuration error, reported here.
func NewWindow(rws int) (*Window, error) {
	if rws < 1 || rws > 128 {
		return nil, fmt.Errorf("receiver: window size %d out of range [1,128]", rws)
	}
	if rws >= QCapacity {
		return nil, fmt.Errorf("receiver: window size %d must be less than delivery queue capacity %d", rws, QCapacity)
	}

	w := &Window{
		rws:      rws,
		recvSize: 2 * rws,
		laf:      byte(rws),
	}
	w.present = make([]bool, w.recvSize)
	w.slots = make([][]byte, w.recvSize)
	w.cond = sync.NewCond(&w.mu)
	return w, nil
}

// Ingest processes one already-validated (size- and CRC-checked) data
// frame: if seq falls in the acceptance window (LFR, LAF], it is buffered
// and the window is advanced past every now-contiguous in-order frame,
// moving each into the delivery queue in ascending sequence order. If seq
// is outside the window — a duplicate or a far-future frame — it is
// discarded with no state change. Either way, Ingest returns the ackNum
// (= LFR after any advance) the caller must send back to the peer: spec
// §4.2 requires exactly one ACK per processed datagram, win or lose.
func (w *Window) Ingest(seq byte, payload []byte) byte {
	w.mu.Lock()

	if int(seq) < w.recvSize && window.InWindow(w.lfr, w.laf, seq) {
		buf := make([]byte, len(payload))
		copy(buf, payload)
		w.present[seq] = true
		w.slots[seq] = buf

		for {
			if w.lfr == w.laf {
				break // acceptance window is empty; nothing left to promote
			}
			next := byte((int(w.lfr) + 1) % w.recvSize)
			if !w.present[next] {
				break
			}
			w.enqueue(w.slots[next])
			w.present[next] = false
			w.slots[next] = nil
			w.lfr = next
			w.laf = byte((int(w.laf) + 1) % w.recvSize)
		}
	}

	ack := w.lfr
	w.cond.Broadcast()
	w.mu.Unlock()
	return ack
}

// enqueue appends payload to the delivery queue. Callers must hold mu.
// The queue keeps every promoted payload until Recv takes it, so its
// length is bounded by how far Recv lags behind ingestion, not by rws.
// If it reaches QCapacity, enqueue panics (spec §7d) rather than
// silently corrupting delivery order.
func (w *Window) enqueue(payload []byte) {
	if len(w.queue) >= QCapacity {
		panic("receiver: delivery queue overflow — RWS/QCapacity invariant violated")
	}
	w.queue = append(w.queue, payload)
}

// Recv suspends until the delivery queue is non-empty, then dequeues and
// returns the head payload in FIFO order (spec §4.2).
func (w *Window) Recv() ([]byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for len(w.queue) == 0 && !w.closed {
		w.cond.Wait()
	}
	if w.closed && len(w.queue) == 0 {
		return nil, ErrClosed
	}

	payload := w.queue[0]
	w.queue = w.queue[1:]
	return payload, nil
}

// LFR returns the last in-order sequence number delivered (for
// metrics/diagnostics).
func (w *Window) LFR() byte {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lfr
}

// QueueDepth returns the number of reassembled payloads awaiting Recv.
func (w *Window) QueueDepth() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.queue)
}

// Close releases any goroutine suspended in Recv once the queue drains,
// returning ErrClosed to it.
func (w *Window) Close() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	w.cond.Broadcast()
}
