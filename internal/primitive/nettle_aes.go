//go:build aes_nettle

package primitive

// #cgo LDFLAGS: -lnettle
// #include <nettle/aes.h>
import "C"

import (
	"fmt"
	"unsafe"
)

func init() {
	// Register the accelerated candidate ahead of the portable fallback so
	// that, all else equal, the benchmark has something faster to find.
	aesSelector.candidates = append([]*candidate{{factory: backendFactory{
		name: "nettle",
		new:  func() BlockCipher { return new(nettleAES) },
	}}}, aesSelector.candidates...)
}

// nettleAES binds libnettle's fixed-key-schedule AES-128 implementation,
// adapted from internal/aes/nettle.go in the teacher corpus. Building it
// requires the aes_nettle tag and a system libnettle; absent either, this
// file is simply not compiled and the candidate never registers.
type nettleAES struct {
	ctx C.struct_aes128_ctx
}

func (b *nettleAES) BlockSize() int { return 16 }

func (b *nettleAES) Init(key []byte, forEncryption bool) error {
	if len(key) != 16 {
		return fmt.Errorf("primitive: invalid AES-128 key length: %d", len(key))
	}
	C.aes128_set_encrypt_key(&b.ctx, (*C.uint8_t)(&key[0]))
	return nil
}

func (b *nettleAES) ProcessBlock(dst, src []byte) {
	C.aes128_encrypt(
		&b.ctx,
		C.size_t(len(src)),
		(*C.uint8_t)(unsafe.Pointer(&dst[0])),
		(*C.uint8_t)(unsafe.Pointer(&src[0])),
	)
}

func (b *nettleAES) Reset() {
	// The nettle key schedule is stateless between calls; nothing to do.
}
