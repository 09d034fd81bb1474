package streamcipher

import (
	"encoding/binary"

	"github.com/lanikai/srtp/internal/primitive"
)

// F8 implements the SRTP-F8 keystream construction (RFC 3711 section
// 4.1.2), an alternative to SRTP-CTR with no direct precedent in the
// teacher corpus; built here from the RFC pseudocode using the same
// primitive.BlockCipher capability interface CTR uses.
type F8 struct {
	block   primitive.BlockCipher // keyed with the session key
	ivPrime [16]byte
}

// NewF8 derives the masked-key cipher and IV' (RFC 3711 section 4.1.2),
// then returns an F8 ready to encrypt one packet's payload.
//
//   - algorithm selects the underlying block cipher family.
//   - sessionKey, salt are this context's session encryption key and salt.
//   - headerIV is the 12 bytes copied from the RTP header with the first
//     byte set to 0x00, per the RFC construction.
//   - roc is the packet's rollover counter.
func NewF8(algorithm primitive.Algorithm, sessionKey, salt, headerIV []byte, roc uint32) (*F8, error) {
	block, err := primitive.CreateBlockCipher(algorithm)
	if err != nil {
		return nil, err
	}
	if err := block.Init(sessionKey, true); err != nil {
		return nil, err
	}

	maskedBlock, err := primitive.CreateBlockCipher(algorithm)
	if err != nil {
		return nil, err
	}
	if err := maskedBlock.Init(maskKey(sessionKey, salt), true); err != nil {
		return nil, err
	}

	var raw [16]byte
	copy(raw[0:12], headerIV)
	binary.BigEndian.PutUint32(raw[12:16], roc)

	f := &F8{block: block}
	maskedBlock.ProcessBlock(f.ivPrime[:], raw[:])
	return f, nil
}

// maskKey XORs the session key with (salt padded with 0x55 bytes up to key
// length), per RFC 3711 section 4.1.2's "masked key" construction.
func maskKey(sessionKey, salt []byte) []byte {
	masked := make([]byte, len(sessionKey))
	for i := range masked {
		if i < len(salt) {
			masked[i] = sessionKey[i] ^ salt[i]
		} else {
			masked[i] = sessionKey[i] ^ 0x55
		}
	}
	return masked
}

// XORKeyStream encrypts (or decrypts) payload in place using the F8
// recurrence:
//
//	S := AES_k(S XOR IV' XOR [0...0, J])
//	dst := S XOR src
//	J := J + 1
//
// starting from S = 0, J = 0.
func (f *F8) XORKeyStream(payload []byte) {
	blockSize := len(f.ivPrime)
	var s, input [16]byte
	var j uint32

	for len(payload) > 0 {
		binary.BigEndian.PutUint32(input[blockSize-4:blockSize], j)
		for i := 0; i < blockSize-4; i++ {
			input[i] = 0
		}
		for i := 0; i < blockSize; i++ {
			input[i] ^= s[i] ^ f.ivPrime[i]
		}
		f.block.ProcessBlock(s[:], input[:])

		n := len(payload)
		if n > blockSize {
			n = blockSize
		}
		xorBytes(payload[:n], payload[:n], s[:n])
		payload = payload[n:]
		j++
	}
}
