package srtp

import (
	"github.com/lanikai/srtp/internal/primitive"
	"github.com/lanikai/srtp/internal/streamcipher"
)

// Key-derivation labels, RFC 3711 section 4.3.1.
const (
	labelEncryption     byte = 0x00
	labelAuthentication byte = 0x01
	labelSalt           byte = 0x02
)

// deriveSessionKey runs the SRTP key derivation function under masterKey,
// producing n bytes of session key material for label at the given packet
// index. Grounded in the vendored context.go's generateSessionKey family,
// generalized from a fixed AES-128/SHA1 suite to any primitive.Algorithm
// and any of the three labels.
func deriveSessionKey(algorithm primitive.Algorithm, masterKey, masterSalt []byte, label byte, index uint64, kdr uint, n int) ([]byte, error) {
	block, err := primitive.CreateBlockCipher(algorithm)
	if err != nil {
		return nil, err
	}
	if err := block.Init(masterKey, true); err != nil {
		return nil, err
	}

	var keyID uint64
	if kdr != 0 {
		keyID = (uint64(label) << 48) | (index >> kdr)
	} else {
		keyID = uint64(label) << 48
	}

	iv := make([]byte, 16)
	copy(iv, masterSalt)
	for i := 0; i < 7; i++ {
		iv[7+i] ^= byte(keyID >> uint(8*(6-i)))
	}
	iv[14], iv[15] = 0, 0

	out := make([]byte, n)
	streamcipher.NewCTR(block).XORKeyStream(out, iv)
	return out, nil
}
