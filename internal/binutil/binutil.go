// Package binutil provides safe buffer slicing, hex conversion and
// constant-time byte comparison for untrusted wire input.
package binutil

import (
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"firestige.xyz/wiretap/internal/core"
)

// SafeSlice slices buf with both bounds clamped into range. It never panics:
// start is clamped into [0, len(buf)] and end into [start, len(buf)]. This is
// the sole guard between attacker-controlled length fields and out-of-bounds
// reads.
func SafeSlice(buf []byte, start, end int) []byte {
	if start < 0 {
		start = 0
	}
	if start > len(buf) {
		start = len(buf)
	}
	if end > len(buf) {
		end = len(buf)
	}
	if end < start {
		end = start
	}
	return buf[start:end]
}

// SecureCompare reports whether a and b are equal. Mismatched lengths return
// false immediately (length is public); equal-length inputs are compared in
// constant time so signature checks do not leak which byte differed.
func SecureCompare(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}

// BytesToHex encodes b as lowercase hex.
func BytesToHex(b []byte) string {
	return hex.EncodeToString(b)
}

// HexToBytes decodes a hex string. Malformed hex is a caller bug, not an
// untrusted-input concern, so it fails loudly.
func HexToBytes(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidHex, err)
	}
	return b, nil
}
