package wire

import (
	"crypto/hmac"
	"crypto/sha256"

	"firestige.xyz/wiretap/internal/binutil"
)

// Signer computes keyed MACs over protected byte ranges. The secret is fixed
// at construction and read-only afterwards, so one Signer may be shared
// across goroutines.
//
// The MAC is HMAC-SHA256 over the hex encoding of the protected bytes,
// emitted as lowercase hex.
type Signer struct {
	secret []byte
}

// NewSigner returns a signer keyed by secret.
func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// Sign returns the hex MAC over data.
func (s *Signer) Sign(data []byte) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(binutil.BytesToHex(data)))
	return binutil.BytesToHex(mac.Sum(nil))
}

// Verify recomputes the MAC over data and compares it with sig in constant
// time. An empty sig fails immediately: a host that opted into verification
// treats a missing signature as a failure, not as unsigned traffic.
func (s *Signer) Verify(data []byte, sig string) bool {
	if sig == "" {
		return false
	}
	expected := s.Sign(data)
	return binutil.SecureCompare([]byte(expected), []byte(sig))
}
