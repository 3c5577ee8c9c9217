// Package wire implements the on-wire data-frame and ack-frame layouts:
// fixed-size structs, a native-endian length field, and a network-order
// CRC-16 trailer. The layout is interop-mandated (spec §6) and must not
// drift between sender and receiver builds.
package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/aetherflow/swp/internal/swp/crc16"
)

// PayloadMax is the largest payload, in bytes, a single data frame carries.
const PayloadMax = 1024

const (
	seqOff    = 0
	lenOff    = 1
	payloadOff = 5
	// DataFrameSize is the fixed size of a data frame on the wire,
	// regardless of how much of the payload region is significant.
	DataFrameSize = 1 + 4 + PayloadMax + 4

	// AckFrameSize is the fixed size of an ack frame on the wire.
	AckFrameSize = 1 + 4
)

// DataFrame is a single on-wire data unit: a sequence number, the
// significant payload length, the (always PayloadMax-sized) payload
// region, and a trailing CRC-16.
type DataFrame struct {
	Seq     byte
	Length  int
	Payload [PayloadMax]byte
}

// MarshalBinary encodes f into a DataFrameSize buffer, computing the CRC
// over the whole frame with the CRC field zeroed first.
func (f *DataFrame) MarshalBinary() ([]byte, error) {
	if f.Length < 0 || f.Length > PayloadMax {
		return nil, fmt.Errorf("wire: payload length %d out of range [0,%d]", f.Length, PayloadMax)
	}

	buf := make([]byte, DataFrameSize)
	buf[seqOff] = f.Seq
	binary.NativeEndian.PutUint32(buf[lenOff:lenOff+4], uint32(f.Length))
	copy(buf[payloadOff:payloadOff+PayloadMax], f.Payload[:])
	// CRC field (last 4 bytes) is already zero; compute over the full frame.
	sum := crc16.Checksum(buf)
	binary.BigEndian.PutUint32(buf[DataFrameSize-4:], sum)
	return buf, nil
}

// UnmarshalDataFrame decodes and CRC-verifies buf into a DataFrame. It
// rejects buffers of the wrong size or whose CRC doesn't verify, without
// distinguishing the two to the caller — both are the same "corrupt or
// malformed frame" transient condition (spec §7b).
func UnmarshalDataFrame(buf []byte) (*DataFrame, error) {
	if len(buf) != DataFrameSize {
		return nil, fmt.Errorf("wire: data frame wrong size: got %d, want %d", len(buf), DataFrameSize)
	}
	if !crc16.Verify(buf) {
		return nil, fmt.Errorf("wire: data frame failed CRC check")
	}

	f := &DataFrame{
		Seq:    buf[seqOff],
		Length: int(binary.NativeEndian.Uint32(buf[lenOff : lenOff+4])),
	}
	if f.Length < 0 || f.Length > PayloadMax {
		return nil, fmt.Errorf("wire: decoded payload length %d out of range", f.Length)
	}
	copy(f.Payload[:], buf[payloadOff:payloadOff+PayloadMax])
	return f, nil
}

// AckFrame is a single on-wire cumulative acknowledgement.
type AckFrame struct {
	AckNum byte
}

// MarshalBinary encodes f into an AckFrameSize buffer with a trailing CRC.
func (f *AckFrame) MarshalBinary() ([]byte, error) {
	buf := make([]byte, AckFrameSize)
	buf[0] = f.AckNum
	sum := crc16.Checksum(buf)
	binary.BigEndian.PutUint32(buf[1:], sum)
	return buf, nil
}

// UnmarshalAckFrame decodes and CRC-verifies buf into an AckFrame.
func UnmarshalAckFrame(buf []byte) (*AckFrame, error) {
	if len(buf) != AckFrameSize {
		return nil, fmt.Errorf("wire: ack frame wrong size: got %d, want %d", len(buf), AckFrameSize)
	}
	if !crc16.Verify(buf) {
		return nil, fmt.Errorf("wire: ack frame failed CRC check")
	}
	return &AckFrame{AckNum: buf[0]}, nil
}
