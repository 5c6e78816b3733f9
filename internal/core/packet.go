// Package core defines core data structures with zero external dependencies.
package core

import "time"

// Direction marks which side of the session a frame crossed.
type Direction string

const (
	DirectionSend Direction = "send"
	DirectionRecv Direction = "recv"
)

// Wire-format constants for the fixed frame header.
const (
	// HeaderSize is the fixed on-wire header length in bytes.
	HeaderSize = 22

	// MethodFieldSize is the null-padded ASCII method field width.
	MethodFieldSize = 11

	// MaxBodySize is the largest body a frame may claim (15 MiB).
	MaxBodySize = 15 * 1024 * 1024
)

// Header is the decoded fixed-size frame header.
//
// On-wire layout (multi-byte fields little-endian):
//
//	Offset  Size  Field
//	------  ----  -----
//	0       4     PacketID    uint32
//	4       2     StatusCode  int16
//	6       11    Method      ASCII, null-padded, [A-Z_]+
//	17      1     Type        uint8
//	18      4     BodyLength  uint32, 0..MaxBodySize
type Header struct {
	PacketID   uint32
	StatusCode int16
	Method     string
	Type       uint8
	BodyLength uint32
}

// Packet is one decoded frame. It is immutable once constructed: hook
// transforms produce replacement packets rather than mutating in place.
type Packet struct {
	Header Header

	// Raw is the full frame as received (header + body), the byte range
	// protected by Signature.
	Raw []byte

	// Body is the raw body slice. Always present, possibly truncated when
	// the buffer held fewer bytes than the header claimed.
	Body []byte

	// Decoded is the best-effort structured decode of Body. Nil when the
	// body is empty or does not parse; a parse failure is not an error.
	Decoded any

	Timestamp time.Time
	Direction Direction

	// Signature is the capture-time MAC over Raw, hex-encoded. Empty when
	// signing was not requested.
	Signature string
}

// InterceptedPacket wraps one buffer that crossed the interception boundary.
// Parsed is nil when the buffer did not decode as a frame.
type InterceptedPacket struct {
	Direction Direction
	Raw       []byte
	Parsed    *Packet
	Timestamp time.Time
	Verified  bool
}

// Stats aggregates interception counters.
//
// TotalPackets, TotalBytes, DecodeErrors and TamperCount accumulate for the
// lifetime of the interceptor and survive history eviction. The per-direction,
// per-method and per-status maps are derived from the retained history, so
// eviction drops their detail but never the historical totals. Clear resets
// everything.
type Stats struct {
	TotalPackets  uint64
	TotalBytes    uint64
	AvgPacketSize float64
	ByDirection   map[Direction]uint64
	ByMethod      map[string]uint64
	ByStatus      map[int16]uint64
	DecodeErrors  uint64
	TamperCount   uint64
}
