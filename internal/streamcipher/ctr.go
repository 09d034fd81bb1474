// Package streamcipher builds the SRTP-CTR and SRTP-F8 stream-cipher
// constructions (RFC 3711 section 4.1) on top of a keyed
// internal/primitive.BlockCipher. The IV-reuse idiom (a pooled scratch
// buffer keyed per packet) follows internal/rtp/srtp.go's aesCounterMode in
// the teacher corpus.
package streamcipher

import (
	"encoding/binary"
	"sync"

	"github.com/lanikai/srtp/internal/primitive"
)

// CTR implements the SRTP counter-mode keystream construction (RFC 3711
// section 4.1.1) over a single keyed block cipher instance.
type CTR struct {
	block primitive.BlockCipher

	ksPool sync.Pool
}

// NewCTR wraps a block cipher already keyed with a session encryption key.
func NewCTR(block primitive.BlockCipher) *CTR {
	bs := block.BlockSize()
	return &CTR{
		block: block,
		ksPool: sync.Pool{
			New: func() interface{} { return make([]byte, bs) },
		},
	}
}

// RTPIV forms the 128-bit IV for an RTP packet per RFC 3711 section 4.1.1:
//
//	iv[0:4]   = salt[0:4]
//	iv[4:8]   = salt[4:8]  XOR big-endian(ssrc)
//	iv[8:14]  = salt[8:14] XOR big-endian-48(index)
//	iv[14:16] = 0
//
// dst must be 16 bytes; salt must be 14 bytes.
func RTPIV(dst, salt []byte, ssrc uint32, index uint64) {
	copy(dst[:14], salt)
	dst[14], dst[15] = 0, 0

	var ssrcBytes [4]byte
	binary.BigEndian.PutUint32(ssrcBytes[:], ssrc)
	for i := 0; i < 4; i++ {
		dst[4+i] ^= ssrcBytes[i]
	}

	var idxBytes [8]byte
	binary.BigEndian.PutUint64(idxBytes[:], index<<16) // left-align the 48-bit index
	for i := 0; i < 6; i++ {
		dst[8+i] ^= idxBytes[i]
	}
}

// RTCPIV forms the 128-bit IV for an SRTCP packet per RFC 3711 section
// 4.1.1, with the 31-bit SRTCP index occupying iv[10:14] instead of the
// 48-bit RTP packet index at iv[8:14].
func RTCPIV(dst, salt []byte, ssrc uint32, index uint32) {
	copy(dst[:14], salt)
	dst[14], dst[15] = 0, 0

	var ssrcBytes [4]byte
	binary.BigEndian.PutUint32(ssrcBytes[:], ssrc)
	for i := 0; i < 4; i++ {
		dst[4+i] ^= ssrcBytes[i]
	}

	var idxBytes [4]byte
	binary.BigEndian.PutUint32(idxBytes[:], index)
	for i := 0; i < 4; i++ {
		dst[10+i] ^= idxBytes[i]
	}
}

// XORKeyStream encrypts (or decrypts; CTR is symmetric) payload in place,
// using iv as the initial counter block. The low 16 bits of iv (iv[14:16])
// are overwritten with each successive block number; the caller need not
// zero them first.
func (c *CTR) XORKeyStream(payload []byte, iv []byte) {
	blockSize := c.block.BlockSize()

	counter := c.ksPool.Get().([]byte)
	ks := c.ksPool.Get().([]byte)
	defer func() {
		c.ksPool.Put(counter)
		c.ksPool.Put(ks)
	}()
	copy(counter, iv)

	var blockNum uint16
	for len(payload) > 0 {
		binary.BigEndian.PutUint16(counter[blockSize-2:blockSize], blockNum)
		c.block.ProcessBlock(ks, counter)

		n := len(payload)
		if n > blockSize {
			n = blockSize
		}
		xorBytes(payload[:n], payload[:n], ks[:n])
		payload = payload[n:]
		blockNum++
	}
}

func xorBytes(dst, a, b []byte) {
	for i := range dst {
		dst[i] = a[i] ^ b[i]
	}
}
