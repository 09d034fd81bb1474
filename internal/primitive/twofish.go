package primitive

import (
	"golang.org/x/crypto/twofish"
)

// twofishBlock backs the optional TWOFISH-CM/TWOFISH-F8 suites (spec.md
// section 6) with golang.org/x/crypto/twofish, a real ecosystem library
// already present (indirectly) in the teacher's go.mod.
type twofishBlock struct {
	cipher *twofish.Cipher
	key    []byte
}

func (b *twofishBlock) BlockSize() int { return twofish.BlockSize }

func (b *twofishBlock) Init(key []byte, forEncryption bool) error {
	c, err := twofish.NewCipher(key)
	if err != nil {
		return err
	}
	b.cipher = c
	b.key = append([]byte(nil), key...)
	return nil
}

func (b *twofishBlock) ProcessBlock(dst, src []byte) {
	b.cipher.Encrypt(dst, src)
}

func (b *twofishBlock) Reset() {
	if b.key != nil {
		_ = b.Init(b.key, true)
	}
}
