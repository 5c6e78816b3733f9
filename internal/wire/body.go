package wire

import "github.com/fxamacker/cbor/v2"

// DecodeBody attempts to parse body as a self-describing CBOR document.
// Returns nil when the body does not parse; the raw bytes stay on the packet
// either way, so a failed structured decode is never a decode failure of the
// frame.
func DecodeBody(body []byte) any {
	var doc any
	if err := cbor.Unmarshal(body, &doc); err != nil {
		return nil
	}
	return doc
}

// EncodeBody serializes a structured value into CBOR body bytes. Used by
// transforms that rewrite structured bodies before re-attaching them.
func EncodeBody(doc any) ([]byte, error) {
	return cbor.Marshal(doc)
}
