package endpoint

import (
	"testing"
	"time"
)

func TestSendToAndPackets(t *testing.T) {
	server, err := Listen("127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer server.Close()

	client, err := Listen("127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer client.Close()

	payload := []byte("hello swp")
	if err := client.SendTo(server.LocalAddr(), payload); err != nil {
		t.Fatalf("SendTo: %v", err)
	}

	select {
	case pkt := <-server.Packets():
		if string(pkt.Data) != string(payload) {
			t.Errorf("got %q, want %q", pkt.Data, payload)
		}
		if pkt.Addr.Port != client.LocalAddr().Port {
			t.Errorf("got sender port %d, want %d", pkt.Addr.Port, client.LocalAddr().Port)
		}
	case <-time.After(time.Second):
		t.Fatal("server never received the datagram")
	}
}

func TestTryReceiveNonBlocking(t *testing.T) {
	server, err := Listen("127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer server.Close()

	if _, _, ok, err := server.TryReceive(); ok || err != nil {
		t.Fatalf("expected no datagram available, got ok=%v err=%v", ok, err)
	}

	client, err := Dial(server.LocalAddr().String())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer client.Close()

	if err := client.Send([]byte("ping")); err != nil {
		t.Fatalf("Send: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if buf, _, ok, err := server.TryReceive(); ok {
			if string(buf) != "ping" {
				t.Fatalf("got %q, want %q", buf, "ping")
			}
			return
		} else if err != nil {
			t.Fatalf("TryReceive: %v", err)
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("datagram never arrived")
}

func TestCloseUnblocksReaderAndClosesPackets(t *testing.T) {
	ep, err := Listen("127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}

	if err := ep.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	select {
	case _, open := <-ep.Packets():
		if open {
			t.Fatal("expected Packets channel to be closed after Close")
		}
	case <-time.After(time.Second):
		t.Fatal("Packets channel never closed after Close")
	}
}
