package receiver

import (
	"testing"
	"time"
)

func TestNewWindowRejectsBadSize(t *testing.T) {
	if _, err := NewWindow(0); err == nil {
		t.Fatal("expected error for window size 0")
	}
	if _, err := NewWindow(129); err == nil {
		t.Fatal("expected error for window size 129")
	}
}

// TestIngestOutOfOrder reproduces spec.md §8 scenario S3: frames injected
// in order [3,1,2,4] must be delivered in order [1,2,3,4].
//
// The ACK trace computed by walking spec.md §4.2's advance algorithm is
// [0,1,3,4]: frame 3 buffers with no advance (ack 0); frame 1 is the next
// expected frame and promotes immediately (ack 1); frame 2 then cascades
// through the already-buffered frame 3 (ack 3); frame 4 promotes alone
// (ack 4). spec.md's own worked narrative for this scenario states
// "[0,0,2,4]", which is inconsistent with its own sentence ("the third
// promotes 1,2,3" cannot yield ack=2) — this test follows the algorithm
// text in §4.2, not the inconsistent narrative number (see DESIGN.md).
func TestIngestOutOfOrder(t *testing.T) {
	w, err := NewWindow(4)
	if err != nil {
		t.Fatalf("NewWindow: %v", err)
	}

	seqOrder := []byte{3, 1, 2, 4}
	wantAcks := []byte{0, 1, 3, 4}

	for i, seq := range seqOrder {
		ack := w.Ingest(seq, []byte{seq})
		if ack != wantAcks[i] {
			t.Errorf("frame %d: ack = %d, want %d", seq, ack, wantAcks[i])
		}
	}

	for _, want := range []byte{1, 2, 3, 4} {
		got, err := w.Recv()
		if err != nil {
			t.Fatalf("Recv: %v", err)
		}
		if len(got) != 1 || got[0] != want {
			t.Errorf("delivery order mismatch: got %v, want [%d]", got, want)
		}
	}

	if w.QueueDepth() != 0 {
		t.Fatalf("expected empty queue after draining, got depth %d", w.QueueDepth())
	}
}

func TestIngestInOrder(t *testing.T) {
	w, _ := NewWindow(4)
	for seq := byte(1); seq <= 4; seq++ {
		ack := w.Ingest(seq, []byte{seq})
		if ack != seq {
			t.Errorf("in-order frame %d: ack = %d, want %d", seq, ack, seq)
		}
	}
}

func TestDuplicateDataTriggersReAckNoStateChange(t *testing.T) {
	w, _ := NewWindow(4)
	w.Ingest(1, []byte{1})
	w.Ingest(2, []byte{2})

	depthBefore := w.QueueDepth()
	lfrBefore := w.LFR()

	ack := w.Ingest(1, []byte{1}) // duplicate: seq <= LFR
	if ack != lfrBefore {
		t.Errorf("duplicate ack = %d, want re-ack of LFR=%d", ack, lfrBefore)
	}
	if w.QueueDepth() != depthBefore {
		t.Errorf("duplicate frame changed queue depth: before=%d after=%d", depthBefore, w.QueueDepth())
	}
}

func TestFarFutureFrameDiscardedButStillAcked(t *testing.T) {
	w, _ := NewWindow(2) // recvSize=4, LFR=0, LAF=2
	ack := w.Ingest(200, []byte{1})
	if ack != 0 {
		t.Errorf("far-future frame should not advance LFR: ack=%d, want 0", ack)
	}
	if w.QueueDepth() != 0 {
		t.Fatal("far-future frame should not be buffered for delivery")
	}
}

func TestRecvBlocksUntilQueueNonEmpty(t *testing.T) {
	w, _ := NewWindow(4)

	done := make(chan []byte, 1)
	go func() {
		payload, err := w.Recv()
		if err != nil {
			t.Error(err)
			return
		}
		done <- payload
	}()

	select {
	case <-done:
		t.Fatal("Recv returned before any frame was ingested")
	case <-time.After(50 * time.Millisecond):
	}

	w.Ingest(1, []byte{42})

	select {
	case payload := <-done:
		if len(payload) != 1 || payload[0] != 42 {
			t.Fatalf("unexpected payload: %v", payload)
		}
	case <-time.After(time.Second):
		t.Fatal("Recv never unblocked after ingestion")
	}
}

func TestCloseUnblocksRecv(t *testing.T) {
	w, _ := NewWindow(4)

	errCh := make(chan error, 1)
	go func() {
		_, err := w.Recv()
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	w.Close()

	select {
	case err := <-errCh:
		if err != ErrClosed {
			t.Fatalf("expected ErrClosed, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Close did not unblock pending Recv")
	}
}
