package primitive

import (
	"bytes"
	"encoding/hex"
	"testing"
)

// TestAES128KnownAnswer pins the block cipher primitive against the
// FIPS-197 Appendix C.1 AES-128 known-answer vector, independent of
// whichever backend (stdlib, nettle, ...) the agility layer elects. Every
// SRTP-CM/F8 construction this core builds reduces to this primitive, so a
// correct AES-128 implementation here is the foundation the RFC 3711
// packet-level round-trip laws rest on.
func TestAES128KnownAnswer(t *testing.T) {
	key, _ := hex.DecodeString("000102030405060708090a0b0c0d0e0f")
	plaintext, _ := hex.DecodeString("00112233445566778899aabbccddeeff")
	want, _ := hex.DecodeString("69c4e0d86a7b0430d8cdb78070b4c55a")

	block, err := CreateBlockCipher(AES128)
	if err != nil {
		t.Fatalf("CreateBlockCipher: %v", err)
	}
	if err := block.Init(key, true); err != nil {
		t.Fatalf("Init: %v", err)
	}

	got := make([]byte, 16)
	block.ProcessBlock(got, plaintext)
	if !bytes.Equal(got, want) {
		t.Fatalf("AES-128(key, plaintext) = %x, want %x (FIPS-197 C.1)", got, want)
	}
}

func TestAESBlockCipherRoundTrip(t *testing.T) {
	block, err := CreateBlockCipher(AES128)
	if err != nil {
		t.Fatalf("CreateBlockCipher: %v", err)
	}
	key := bytes.Repeat([]byte{0x2b}, 16)
	if err := block.Init(key, true); err != nil {
		t.Fatalf("Init: %v", err)
	}

	plaintext := bytes.Repeat([]byte{0x11}, 16)
	ciphertext := make([]byte, 16)
	block.ProcessBlock(ciphertext, plaintext)

	if bytes.Equal(ciphertext, plaintext) {
		t.Fatalf("ciphertext equals plaintext, cipher did nothing")
	}

	// Re-running with the same key must be deterministic.
	again := make([]byte, 16)
	block.ProcessBlock(again, plaintext)
	if !bytes.Equal(ciphertext, again) {
		t.Fatalf("AES-128 encryption is not deterministic for identical inputs")
	}
}

func TestTwofishBlockCipher(t *testing.T) {
	block, err := CreateBlockCipher(Twofish128)
	if err != nil {
		t.Fatalf("CreateBlockCipher: %v", err)
	}
	if block.BlockSize() != 16 {
		t.Fatalf("expected 16-byte blocks, got %d", block.BlockSize())
	}
	key := bytes.Repeat([]byte{0x42}, 16)
	if err := block.Init(key, true); err != nil {
		t.Fatalf("Init: %v", err)
	}
	plaintext := bytes.Repeat([]byte{0x00}, 16)
	ciphertext := make([]byte, 16)
	block.ProcessBlock(ciphertext, plaintext)
	if bytes.Equal(ciphertext, plaintext) {
		t.Fatalf("Twofish produced identity ciphertext")
	}
}

func TestHMACSHA1TagLengths(t *testing.T) {
	for _, tc := range []struct {
		alg MacAlgorithm
		n   int
	}{
		{HMACSHA1_80, 10},
		{HMACSHA1_32, 4},
	} {
		mac, err := CreateMac(tc.alg)
		if err != nil {
			t.Fatalf("CreateMac: %v", err)
		}
		if err := mac.Init(bytes.Repeat([]byte{0x01}, 20)); err != nil {
			t.Fatalf("Init: %v", err)
		}
		if mac.Size() != tc.n {
			t.Fatalf("expected tag size %d, got %d", tc.n, mac.Size())
		}
		if _, err := mac.Write([]byte("hello world")); err != nil {
			t.Fatalf("Write: %v", err)
		}
		tag := mac.Finalize(nil)
		if len(tag) != tc.n {
			t.Fatalf("expected finalized tag of length %d, got %d", tc.n, len(tag))
		}

		// Finalize must leave the Mac reset and ready to reuse.
		if _, err := mac.Write([]byte("hello world")); err != nil {
			t.Fatalf("Write after finalize: %v", err)
		}
		tag2 := mac.Finalize(nil)
		if !bytes.Equal(tag, tag2) {
			t.Fatalf("Mac was not reset after Finalize: %x != %x", tag, tag2)
		}
	}
}

func TestSkeinMacUnsupported(t *testing.T) {
	if _, err := CreateMac(Skein); err == nil {
		t.Fatalf("expected Skein-MAC to be rejected, got nil error")
	}
}

func TestSelectorElectsAndCaches(t *testing.T) {
	s := newSelector(backendFactory{
		name: "stdlib",
		new:  func() BlockCipher { return new(stdlibAES) },
	})
	b1, err := s.selectAndCreate()
	if err != nil {
		t.Fatalf("selectAndCreate: %v", err)
	}
	if b1 == nil {
		t.Fatalf("expected a backend instance")
	}
	if s.elected == nil {
		t.Fatalf("expected an election to have occurred")
	}
	electedAt := s.electedAt
	if _, err := s.selectAndCreate(); err != nil {
		t.Fatalf("selectAndCreate (cached): %v", err)
	}
	if s.electedAt != electedAt {
		t.Fatalf("expected cached election to be reused within reelectionInterval")
	}
}

func TestSelectorDropsFailingCandidate(t *testing.T) {
	s := newSelector(
		backendFactory{
			name: "broken",
			new: func() BlockCipher {
				return &failingBlockCipher{}
			},
		},
		backendFactory{
			name: "stdlib",
			new:  func() BlockCipher { return new(stdlibAES) },
		},
	)
	b, err := s.selectAndCreate()
	if err != nil {
		t.Fatalf("selectAndCreate: %v", err)
	}
	if b == nil {
		t.Fatalf("expected the surviving candidate to be elected")
	}
	if !s.candidates[0].unavailable {
		t.Fatalf("expected the failing candidate to be marked unavailable")
	}
}

type failingBlockCipher struct{}

func (f *failingBlockCipher) BlockSize() int                  { return 16 }
func (f *failingBlockCipher) Init(key []byte, enc bool) error { return errAlwaysFails }
func (f *failingBlockCipher) ProcessBlock(dst, src []byte)    {}
func (f *failingBlockCipher) Reset()                          {}

var errAlwaysFails = &initError{"synthetic init failure"}

type initError struct{ msg string }

func (e *initError) Error() string { return e.msg }
