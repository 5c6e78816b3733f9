package wire

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/wiretap/internal/core"
)

// makeFrame assembles a raw frame by hand so decode tests do not depend on
// Encode being correct.
func makeFrame(id uint32, status int16, method string, typ uint8, claimedLen uint32, body []byte) []byte {
	buf := make([]byte, core.HeaderSize+len(body))
	binary.LittleEndian.PutUint32(buf[0:], id)
	binary.LittleEndian.PutUint16(buf[4:], uint16(status))
	copy(buf[6:17], method)
	buf[17] = typ
	binary.LittleEndian.PutUint32(buf[18:], claimedLen)
	copy(buf[core.HeaderSize:], body)
	return buf
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	codec := NewCodec("round-trip-secret")

	cases := []struct {
		name   string
		header core.Header
		body   []byte
	}{
		{"empty body", core.Header{PacketID: 1, StatusCode: 0, Method: "MSG", Type: 0}, nil},
		{"small body", core.Header{PacketID: 42, StatusCode: -7, Method: "LOGIN", Type: 3}, []byte("hello")},
		{"underscore method", core.Header{PacketID: 7, StatusCode: 200, Method: "CHANNEL_MSG", Type: 255}, []byte{0x00, 0x01, 0xff}},
		{"single char method", core.Header{PacketID: 0xFFFFFFFF, StatusCode: -32768, Method: "A", Type: 1}, []byte("x")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			frame, _, err := codec.Encode(tc.header, tc.body, false)
			require.NoError(t, err)
			require.Len(t, frame, core.HeaderSize+len(tc.body))

			pkt := codec.Decode(frame, false)
			require.NotNil(t, pkt)
			assert.Equal(t, tc.header.PacketID, pkt.Header.PacketID)
			assert.Equal(t, tc.header.StatusCode, pkt.Header.StatusCode)
			assert.Equal(t, tc.header.Method, pkt.Header.Method)
			assert.Equal(t, tc.header.Type, pkt.Header.Type)
			assert.Equal(t, uint32(len(tc.body)), pkt.Header.BodyLength)
			assert.Equal(t, []byte(tc.body), append([]byte{}, pkt.Body...))
		})
	}
}

func TestDecodeShortBuffer(t *testing.T) {
	codec := NewCodec("secret")

	for _, n := range []int{0, 1, 10, core.HeaderSize - 1} {
		assert.Nil(t, codec.Decode(make([]byte, n), false), "buffer of %d bytes must not decode", n)
	}
}

func TestDecodeOversizedBodyLength(t *testing.T) {
	codec := NewCodec("secret")

	frame := makeFrame(1, 0, "MSG", 0, core.MaxBodySize+1, nil)
	assert.Nil(t, codec.Decode(frame, false))
}

func TestDecodeInvalidMethod(t *testing.T) {
	codec := NewCodec("secret")

	for _, method := range []string{"", "msg", "MSG1", "MS G", "M-G"} {
		frame := makeFrame(1, 0, method, 0, 0, nil)
		assert.Nil(t, codec.Decode(frame, false), "method %q must not decode", method)
	}
}

func TestDecodeTruncatedBody(t *testing.T) {
	codec := NewCodec("secret")

	// Header claims 100 bytes, only 10 are present.
	frame := makeFrame(9, 0, "CHAT", 0, 100, []byte("0123456789"))
	pkt := codec.Decode(frame, false)
	require.NotNil(t, pkt)
	assert.Equal(t, uint32(100), pkt.Header.BodyLength)
	assert.Equal(t, []byte("0123456789"), pkt.Body)
	assert.Len(t, pkt.Raw, core.HeaderSize+10)
}

func TestDecodeHeaderOnlyBufferWithClaimedBody(t *testing.T) {
	codec := NewCodec("secret")

	frame := makeFrame(9, 0, "CHAT", 0, 1024, nil)
	pkt := codec.Decode(frame, false)
	require.NotNil(t, pkt)
	assert.Empty(t, pkt.Body)
	assert.Nil(t, pkt.Decoded)
}

// The canonical minimal frame: packetId=1, statusCode=0, method="MSG",
// type=0, no body. It must decode and re-encode to the identical 22 bytes.
func TestEmptyFrameRoundTripsByteExact(t *testing.T) {
	codec := NewCodec("secret")

	frame := makeFrame(1, 0, "MSG", 0, 0, nil)
	require.Len(t, frame, 22)

	pkt := codec.Decode(frame, false)
	require.NotNil(t, pkt)
	assert.Equal(t, uint32(1), pkt.Header.PacketID)
	assert.Equal(t, int16(0), pkt.Header.StatusCode)
	assert.Equal(t, "MSG", pkt.Header.Method)
	assert.Empty(t, pkt.Body)
	assert.Nil(t, pkt.Decoded)

	reencoded, _, err := codec.Encode(pkt.Header, pkt.Body, false)
	require.NoError(t, err)
	assert.Equal(t, frame, reencoded)
}

func TestEncodeRejectsOversizedBody(t *testing.T) {
	codec := NewCodec("secret")

	_, _, err := codec.Encode(core.Header{Method: "MSG"}, make([]byte, core.MaxBodySize+1), false)
	assert.ErrorIs(t, err, core.ErrBodyTooLarge)
}

func TestEncodeRejectsInvalidMethod(t *testing.T) {
	codec := NewCodec("secret")

	for _, method := range []string{"", "msg", "MSG2", "HELLO WORLD"} {
		_, _, err := codec.Encode(core.Header{Method: method}, nil, false)
		assert.ErrorIs(t, err, core.ErrInvalidMethod, "method %q", method)
	}
}

// Methods longer than the 11-byte field are truncated on the wire. That is a
// safety net, not the primary contract.
func TestEncodeTruncatesOverlongMethod(t *testing.T) {
	codec := NewCodec("secret")

	frame, _, err := codec.Encode(core.Header{Method: "VERY_LONG_METHOD"}, nil, false)
	require.NoError(t, err)

	pkt := codec.Decode(frame, false)
	require.NotNil(t, pkt)
	assert.Equal(t, "VERY_LONG_M", pkt.Header.Method)
}

func TestDecodeStructuredBody(t *testing.T) {
	codec := NewCodec("secret")

	body, err := EncodeBody(map[string]any{"user": "alice", "seq": uint64(3)})
	require.NoError(t, err)

	frame := makeFrame(5, 0, "LOGIN", 1, uint32(len(body)), body)
	pkt := codec.Decode(frame, false)
	require.NotNil(t, pkt)
	require.NotNil(t, pkt.Decoded)

	doc, ok := pkt.Decoded.(map[any]any)
	require.True(t, ok, "expected map document, got %T", pkt.Decoded)
	assert.Equal(t, "alice", doc["user"])
}

func TestDecodeUnparseableBodyKeepsRawBytes(t *testing.T) {
	codec := NewCodec("secret")

	// 0xff is a lone break code, never a valid document.
	body := []byte{0xff}
	frame := makeFrame(6, 0, "BLOB", 0, 1, body)
	pkt := codec.Decode(frame, false)
	require.NotNil(t, pkt, "structured decode failure must not fail the frame")
	assert.Nil(t, pkt.Decoded)
	assert.Equal(t, body, pkt.Body)
}
