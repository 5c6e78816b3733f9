// Package wire implements the fixed-header frame codec.
//
// Frame layout: a 22-byte header (see core.Header) immediately followed by
// BodyLength raw body bytes. No padding or alignment between frames. Decode
// treats its input as hostile and never panics or errors on malformed data;
// Encode treats violations of its contract as caller bugs and fails loudly.
package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"

	"firestige.xyz/wiretap/internal/binutil"
	"firestige.xyz/wiretap/internal/core"
)

// Header field offsets within the fixed 22-byte prefix.
const (
	offPacketID   = 0
	offStatusCode = 4
	offMethod     = 6
	offType       = 17
	offBodyLength = 18
)

// Codec encodes and decodes frames. It is stateless aside from the signing
// secret and safe for concurrent use.
type Codec struct {
	signer *Signer
}

// NewCodec returns a codec whose signatures are keyed by secret.
func NewCodec(secret string) *Codec {
	return &Codec{signer: NewSigner(secret)}
}

// Decode parses buf as one frame. It returns nil — never an error, never a
// panic — when buf is shorter than the header, claims a body larger than
// core.MaxBodySize, or carries a method outside [A-Z_]+.
//
// A buffer holding fewer body bytes than the header claims is tolerated: the
// body is truncated to what is actually available. When withSignature is set
// the capture-time MAC over the received bytes is attached; this records what
// arrived, it is not yet a verification verdict.
func (c *Codec) Decode(buf []byte, withSignature bool) *core.Packet {
	if len(buf) < core.HeaderSize {
		return nil
	}

	h := core.Header{
		PacketID:   binary.LittleEndian.Uint32(buf[offPacketID:]),
		StatusCode: int16(binary.LittleEndian.Uint16(buf[offStatusCode:])),
		Method:     decodeMethod(buf[offMethod : offMethod+core.MethodFieldSize]),
		Type:       buf[offType],
		BodyLength: binary.LittleEndian.Uint32(buf[offBodyLength:]),
	}
	if h.BodyLength > core.MaxBodySize {
		return nil
	}
	if !core.ValidMethod(h.Method) {
		return nil
	}

	// Clamp to the bytes actually present; a short buffer yields a
	// truncated (possibly empty) body, not a fault.
	body := binutil.SafeSlice(buf, core.HeaderSize, core.HeaderSize+int(h.BodyLength))

	pkt := &core.Packet{
		Header:    h,
		Raw:       buf[:core.HeaderSize+len(body)],
		Body:      body,
		Timestamp: time.Now(),
	}
	if len(body) > 0 {
		pkt.Decoded = DecodeBody(body)
	}
	if withSignature {
		pkt.Signature = c.signer.Sign(pkt.Raw)
	}
	return pkt
}

// Encode serializes header fields and body into one frame.
//
// Caller contract: len(body) ≤ core.MaxBodySize and h.Method matches [A-Z_]+;
// violations are programming errors and return an error. The method field is
// null-padded to 11 bytes (truncated past that as a safety net, callers are
// expected to stay within the field). h.BodyLength is ignored; the written
// length is derived from body.
//
// When sign is set the returned hex MAC covers the fully assembled frame. The
// frame itself never carries signature bytes — signatures travel out-of-band
// so the wire stays compatible with peers unaware of the feature.
func (c *Codec) Encode(h core.Header, body []byte, sign bool) ([]byte, string, error) {
	if len(body) > core.MaxBodySize {
		return nil, "", fmt.Errorf("%w: %d bytes", core.ErrBodyTooLarge, len(body))
	}
	if !core.ValidMethod(h.Method) {
		return nil, "", fmt.Errorf("%w: %q", core.ErrInvalidMethod, h.Method)
	}

	frame := make([]byte, core.HeaderSize+len(body))
	binary.LittleEndian.PutUint32(frame[offPacketID:], h.PacketID)
	binary.LittleEndian.PutUint16(frame[offStatusCode:], uint16(h.StatusCode))
	copy(frame[offMethod:offMethod+core.MethodFieldSize], h.Method)
	frame[offType] = h.Type
	binary.LittleEndian.PutUint32(frame[offBodyLength:], uint32(len(body)))
	copy(frame[core.HeaderSize:], body)

	var sig string
	if sign {
		sig = c.signer.Sign(frame)
	}
	return frame, sig, nil
}

// VerifyPacketSignature recomputes the MAC over the packet's received bytes
// and compares it with sig in constant time. A packet with no expected
// signature fails verification; absence is never treated as "skip check".
func (c *Codec) VerifyPacketSignature(pkt *core.Packet, sig string) bool {
	if pkt == nil {
		return false
	}
	return c.signer.Verify(pkt.Raw, sig)
}

// decodeMethod strips the null padding from the fixed-width method field.
func decodeMethod(field []byte) string {
	return string(bytes.TrimRight(field, "\x00"))
}
