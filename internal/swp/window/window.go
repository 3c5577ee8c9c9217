// Package window implements the modular window-membership predicate shared
// by the sender (validating incoming ACKs against (LAR, LFS]) and the
// receiver (validating incoming data against (LFR, LAF]).
package window

// InWindow reports whether seq lies on the forward arc from left
// (exclusive) to right (inclusive). left, right, and seq must already be
// reduced into the caller's sequence-number modulus (SendSize or
// ReceiveSize); the predicate itself only compares their relative order.
func InWindow(left, right, seq byte) bool {
	if left <= right {
		return left < seq && seq <= right
	}
	return left < seq || seq <= right
}
