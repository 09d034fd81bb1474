// Package primitive provides interchangeable implementations of the block
// cipher and keyed-MAC primitives SRTP builds on, and an algorithm-agility
// layer that benchmarks the available implementations at runtime and elects
// the fastest one. See internal/aes/stdlib.go and nettle.go in the teacher
// corpus for the portable-vs-accelerated split this generalizes.
package primitive

import (
	"github.com/pkg/errors"

	"github.com/lanikai/srtp/internal/logging"
)

var log = logging.DefaultLogger.WithTag("srtp/primitive")

// Algorithm names a block-cipher family a BlockCipher backend implements.
type Algorithm int

const (
	AES128 Algorithm = iota
	Twofish128
)

func (a Algorithm) String() string {
	switch a {
	case AES128:
		return "AES-128"
	case Twofish128:
		return "Twofish-128"
	default:
		return "unknown"
	}
}

// BlockCipher is a single 128-bit block cipher, keyed once via Init and then
// used to process any number of individual blocks.
type BlockCipher interface {
	// BlockSize is always 16 for the algorithms this core supports.
	BlockSize() int

	// Init keys the cipher. forEncryption distinguishes encrypt/decrypt
	// keying for backends whose native API requires it; SRTP only ever
	// needs the encryption direction (all of its constructions are stream
	// ciphers built from one-way block encryption).
	Init(key []byte, forEncryption bool) error

	// ProcessBlock encrypts exactly one block from src into dst. src and
	// dst must each be BlockSize() bytes and may alias.
	ProcessBlock(dst, src []byte)

	// Reset returns the cipher to its just-initialized state.
	Reset()
}

// Mac is a keyed message authentication code.
type Mac interface {
	// Init keys the MAC.
	Init(key []byte) error

	// Write adds message bytes to the running MAC computation.
	Write(p []byte) (int, error)

	// Finalize appends the MAC tag to dst and returns the extended slice.
	// After Finalize the Mac is re-initialized with the same key, ready
	// for the next message.
	Finalize(dst []byte) []byte

	// Size is the tag length in bytes, fixed for the lifetime of the Mac.
	Size() int
}

// ErrPrimitiveUnavailable is returned by CreateBlockCipher/CreateMac when no
// candidate backend for the requested algorithm could be initialized.
var ErrPrimitiveUnavailable = errors.New("primitive: no candidate backend available")

// SetAESProviderPreference records an operator hint (Config.
// AESProviderPreference) that breaks benchmark ties in favor of the named
// AES-128 backend (e.g. "nettle"). It never overrides a strictly faster
// candidate or resurrects one the benchmark marked unavailable.
func SetAESProviderPreference(name string) {
	if name == "" {
		return
	}
	aesSelector.SetPreferredName(name)
}

// Elected forces (re-)election for algorithm if the standing one is stale
// and reports the name of the currently-elected backend, without creating a
// cipher instance. Used by cmd/srtpbench to report which primitive an
// operator's host actually runs.
func Elected(algorithm Algorithm) (string, error) {
	switch algorithm {
	case AES128:
		return aesSelector.electedName()
	case Twofish128:
		return twofishSelector.electedName()
	default:
		return "", errors.Errorf("primitive: unsupported block cipher algorithm %v", algorithm)
	}
}

// CreateBlockCipher returns the currently-elected BlockCipher backend for
// algorithm, re-electing if the benchmark is stale. The returned value is
// unkeyed; call Init before use.
func CreateBlockCipher(algorithm Algorithm) (BlockCipher, error) {
	switch algorithm {
	case AES128:
		return aesSelector.selectAndCreate()
	case Twofish128:
		return twofishSelector.selectAndCreate()
	default:
		return nil, errors.Errorf("primitive: unsupported block cipher algorithm %v", algorithm)
	}
}

// MacAlgorithm names a keyed-MAC construction.
type MacAlgorithm int

const (
	HMACSHA1_80 MacAlgorithm = iota
	HMACSHA1_32
	Skein
)

// CreateMac returns a freshly-constructed Mac for algorithm. Skein-MAC is a
// recognized enum value but is not implemented: no library in this core's
// dependency corpus (nor golang.org/x/crypto) provides it, and hand-rolling
// a MAC primitive from scratch would mean inventing untested cryptography
// rather than grounding it in a real implementation. See DESIGN.md.
func CreateMac(algorithm MacAlgorithm) (Mac, error) {
	switch algorithm {
	case HMACSHA1_80:
		return newHMACSHA1(10), nil
	case HMACSHA1_32:
		return newHMACSHA1(4), nil
	case Skein:
		return nil, errors.New("primitive: Skein-MAC is not implemented by this build")
	default:
		return nil, errors.Errorf("primitive: unsupported MAC algorithm %v", algorithm)
	}
}
