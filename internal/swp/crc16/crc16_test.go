package crc16

import "testing"

func TestChecksumRoundTrip(t *testing.T) {
	buf := []byte("the quick brown fox jumps over the lazy dog")
	buf = append(buf, 0, 0, 0, 0) // zeroed CRC field

	sum := Checksum(buf)
	buf[len(buf)-4] = byte(sum >> 24)
	buf[len(buf)-3] = byte(sum >> 16)
	buf[len(buf)-2] = byte(sum >> 8)
	buf[len(buf)-1] = byte(sum)

	if !Verify(buf) {
		t.Fatalf("expected verify to succeed on a correctly stamped frame")
	}
}

func TestVerifyDetectsCorruption(t *testing.T) {
	buf := []byte("session payload bytes go here")
	buf = append(buf, 0, 0, 0, 0)
	sum := Checksum(buf)
	buf[len(buf)-4] = byte(sum >> 24)
	buf[len(buf)-3] = byte(sum >> 16)
	buf[len(buf)-2] = byte(sum >> 8)
	buf[len(buf)-1] = byte(sum)

	for i := range buf {
		corrupted := append([]byte(nil), buf...)
		corrupted[i] ^= 0x01
		if Verify(corrupted) {
			t.Errorf("single-bit flip at byte %d went undetected", i)
		}
	}
}

func TestChecksumDeterministic(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5, 0, 0, 0, 0}
	if Checksum(buf) != Checksum(buf) {
		t.Fatal("checksum must be deterministic")
	}
}

func TestChecksumEmpty(t *testing.T) {
	if Checksum(nil) != 0 {
		t.Fatal("checksum of empty buffer must be zero")
	}
}
