package primitive

import (
	"crypto/hmac"
	"crypto/sha1" // #nosec -- RFC 3711's predefined authentication transform
	"hash"
)

// hmacSHA1Mac is the predefined SRTP authentication transform (RFC 3711
// section 4.2), truncated to tagLen bytes (10 for the 80-bit suite, 4 for
// the 32-bit suite). Adapted from the vendored context.go's
// generateAuthTag/verifyAuthTag and internal/rtp/srtp.go's hmacSHA1.
type hmacSHA1Mac struct {
	tagLen int
	key    []byte
	mac    hash.Hash
}

func newHMACSHA1(tagLen int) *hmacSHA1Mac {
	return &hmacSHA1Mac{tagLen: tagLen}
}

func (m *hmacSHA1Mac) Init(key []byte) error {
	m.key = append([]byte(nil), key...)
	m.mac = hmac.New(sha1.New, m.key)
	return nil
}

func (m *hmacSHA1Mac) Write(p []byte) (int, error) {
	return m.mac.Write(p)
}

func (m *hmacSHA1Mac) Finalize(dst []byte) []byte {
	sum := m.mac.Sum(nil)[:m.tagLen]
	out := append(dst, sum...)
	// Re-initialize for the next message, per the Mac contract.
	m.mac.Reset()
	return out
}

func (m *hmacSHA1Mac) Size() int {
	return m.tagLen
}
