package swp

import (
	"fmt"
	"testing"
	"time"
)

// TestSenderReceiverEndToEnd reproduces spec.md §8 scenario S1 at small
// scale: a handful of payloads submitted over loopback UDP with no
// injected loss must arrive in order and byte-identical, and Flush must
// return once every frame is acknowledged.
func TestSenderReceiverEndToEnd(t *testing.T) {
	recv, err := NewReceiver("127.0.0.1:0", 4)
	if err != nil {
		t.Fatalf("NewReceiver: %v", err)
	}
	defer recv.Close()

	send, err := NewSender(recv.ep.LocalAddr().String(), 4)
	if err != nil {
		t.Fatalf("NewSender: %v", err)
	}
	defer send.Close()

	const n = 20
	want := make([][]byte, n)
	for i := 0; i < n; i++ {
		want[i] = []byte(fmt.Sprintf("payload-%02d", i))
	}

	go func() {
		for _, p := range want {
			if err := send.Submit(p); err != nil {
				t.Errorf("Submit: %v", err)
				return
			}
		}
	}()

	for i := 0; i < n; i++ {
		done := make(chan struct{})
		var got []byte
		var recvErr error
		go func() {
			got, recvErr = recv.Recv()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(3 * time.Second):
			t.Fatalf("payload %d: Recv never returned", i)
		}
		if recvErr != nil {
			t.Fatalf("Recv: %v", recvErr)
		}
		if string(got) != string(want[i]) {
			t.Fatalf("payload %d: got %q, want %q", i, got, want[i])
		}
	}

	flushed := make(chan error, 1)
	go func() { flushed <- send.Flush() }()
	select {
	case err := <-flushed:
		if err != nil {
			t.Fatalf("Flush: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Flush never returned after all frames delivered")
	}
}

// TestSenderWindowFullBlocking exercises spec.md §8 scenario S6 against a
// live receiver: after four submits fill a send window of four, a fifth
// submit must return once the receiver's acks free a slot. The receiver
// acks promptly over loopback, so the test does not assert that the fifth
// submit suspends first.
func TestSenderWindowFullBlocking(t *testing.T) {
	recv, err := NewReceiver("127.0.0.1:0", 4)
	if err != nil {
		t.Fatalf("NewReceiver: %v", err)
	}
	defer recv.Close()

	send, err := NewSender(recv.ep.LocalAddr().String(), 4)
	if err != nil {
		t.Fatalf("NewSender: %v", err)
	}
	defer send.Close()

	for i := 0; i < 4; i++ {
		if err := send.Submit([]byte{byte(i)}); err != nil {
			t.Fatalf("Submit %d: %v", i, err)
		}
	}

	done := make(chan struct{})
	go func() {
		send.Submit([]byte{4}) // fifth submit: waits for a free slot while the window is full
		close(done)
	}()

	// The running receiver acks the first four frames, which frees slots;
	// the fifth submit must return within the timeout.
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("fifth submit never unblocked once the receiver drained the window")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	recv, err := NewReceiver("127.0.0.1:0", 4)
	if err != nil {
		t.Fatalf("NewReceiver: %v", err)
	}
	if err := recv.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := recv.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
