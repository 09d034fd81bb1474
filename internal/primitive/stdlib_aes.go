package primitive

import (
	stdaes "crypto/aes"
)

// aesSelector is the process-wide agility layer for AES-128. The stdlib
// backend is registered here as the portable fallback; build-tagged files
// (e.g. nettle_aes.go) insert accelerated candidates ahead of it via init().
var aesSelector = newSelector(backendFactory{
	name: "stdlib",
	new:  func() BlockCipher { return new(stdlibAES) },
})

// twofishSelector has a single portable candidate; Twofish is an optional,
// non-standard suite (spec.md section 6) with no accelerated backend in
// this corpus.
var twofishSelector = newSelector(backendFactory{
	name: "x/crypto/twofish",
	new:  func() BlockCipher { return new(twofishBlock) },
})

// stdlibAES wraps the Go standard library's crypto/aes, which already
// dispatches to hardware AES-NI/ARMv8 instructions internally on supported
// platforms. It is the portable fallback: always available, never marked
// unavailable.
type stdlibAES struct {
	block cipher128
	key   []byte
}

// cipher128 is the subset of crypto/cipher.Block this backend needs.
type cipher128 interface {
	BlockSize() int
	Encrypt(dst, src []byte)
	Decrypt(dst, src []byte)
}

func (b *stdlibAES) BlockSize() int { return 16 }

func (b *stdlibAES) Init(key []byte, forEncryption bool) error {
	block, err := stdaes.NewCipher(key)
	if err != nil {
		return err
	}
	b.block = block
	b.key = append([]byte(nil), key...)
	return nil
}

func (b *stdlibAES) ProcessBlock(dst, src []byte) {
	b.block.Encrypt(dst, src)
}

func (b *stdlibAES) Reset() {
	if b.key != nil {
		_ = b.Init(b.key, true)
	}
}
