package srtp

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/lanikai/srtp/internal/packet"
	"github.com/lanikai/srtp/internal/primitive"
	"github.com/lanikai/srtp/internal/streamcipher"
)

func TestGuessIndexWrapForward(t *testing.T) {
	c := &SRTPContext{sL: 0xFFFE, roc: 5, seqNumSet: true}
	index, roc := c.guessIndex(0x0001)
	if roc != 6 {
		t.Fatalf("guessed_roc = %d, want 6", roc)
	}
	if want := (uint64(6) << 16) | 1; index != want {
		t.Fatalf("index = %#x, want %#x", index, want)
	}
}

func TestGuessIndexWrapBackward(t *testing.T) {
	c := &SRTPContext{sL: 0x0001, roc: 6, seqNumSet: true}
	index, roc := c.guessIndex(0xFFFE)
	if roc != 5 {
		t.Fatalf("guessed_roc = %d, want 5", roc)
	}
	if want := (uint64(5) << 16) | 0xFFFE; index != want {
		t.Fatalf("index = %#x, want %#x", index, want)
	}
}

func TestGuessIndexNoWrap(t *testing.T) {
	c := &SRTPContext{sL: 100, roc: 3, seqNumSet: true}
	index, roc := c.guessIndex(150)
	if roc != 3 {
		t.Fatalf("guessed_roc = %d, want 3 (no wrap)", roc)
	}
	if want := (uint64(3) << 16) | 150; index != want {
		t.Fatalf("index = %#x, want %#x", index, want)
	}
}

func TestUpdateAdvancesSLWithinSameROC(t *testing.T) {
	c := &SRTPContext{sL: 100, roc: 0}
	c.update(150, 0)
	if c.sL != 150 {
		t.Fatalf("s_l = %d, want 150", c.sL)
	}
	if c.roc != 0 {
		t.Fatalf("roc = %d, want 0", c.roc)
	}
}

func TestUpdateDoesNotRegressSLWithinSameROC(t *testing.T) {
	c := &SRTPContext{sL: 150, roc: 0, seqNumSet: true}
	c.update(100, 0)
	if c.sL != 150 {
		t.Fatalf("s_l regressed to %d, want 150", c.sL)
	}
}

func TestUpdateAdvancesROCOnRollover(t *testing.T) {
	c := &SRTPContext{sL: 0xFFFE, roc: 0, seqNumSet: true}
	c.update(1, 1)
	if c.roc != 1 {
		t.Fatalf("roc = %d, want 1", c.roc)
	}
	if c.sL != 1 {
		t.Fatalf("s_l = %d, want 1", c.sL)
	}
}

// TestApplyKeystreamF8ZeroesFullHeaderByte guards the F8 IV construction in
// applyKeystream: RFC 3711 section 4.1.2 replaces the RTP header's first
// byte (V/P/X/CC) with 0x00 entirely, not just its version bits, before
// copying the header into the IV. A packet with any of P/X/CC set would
// silently diverge from the RFC construction with the old `&^= 0x80`
// masking, even though sender and receiver would still agree with each
// other (and so a plain round trip would not catch it) — this test instead
// reproduces the expected keystream independently via streamcipher.NewF8.
func TestApplyKeystreamF8ZeroesFullHeaderByte(t *testing.T) {
	masterKey := bytes.Repeat([]byte{0x11}, 16)
	masterSalt := bytes.Repeat([]byte{0x22}, 14)

	c := newSRTPContext(0xF8F8F8F8, append([]byte(nil), masterKey...), append([]byte(nil), masterSalt...), f8Policy(), true, true)
	if err := c.deriveSessionKeys(0); err != nil {
		t.Fatalf("deriveSessionKeys: %v", err)
	}

	header := make([]byte, 12)
	header[0] = 0x80 | 0x20 | 0x10 | 0x0f // version 2, P=1, X=1, CC=0xf
	binary.BigEndian.PutUint16(header[2:4], 0x4321)
	binary.BigEndian.PutUint32(header[4:8], 0x0a0b0c0d)
	binary.BigEndian.PutUint32(header[8:12], c.ssrc)

	plaintext := []byte("this payload exercises the f8 header masking fix end to end")

	// CC=0xf announces fifteen 32-bit CSRC identifiers between the fixed
	// header and the payload.
	csrcs := make([]byte, 4*0x0f)
	buf := append(append(append([]byte(nil), header...), csrcs...), plaintext...)
	view := packet.NewView(buf)

	index, guessedROC := c.guessIndex(view.SequenceNumber())
	if err := c.applyKeystream(view, guessedROC, index); err != nil {
		t.Fatalf("applyKeystream: %v", err)
	}
	got := append([]byte(nil), view.Bytes()[view.HeaderLength():]...)

	var wantHeaderIV [12]byte
	copy(wantHeaderIV[:], header)
	wantHeaderIV[0] = 0 // RFC 3711 4.1.2: clear the whole byte, not just 0x80

	f8, err := streamcipher.NewF8(primitive.AES128, c.sessionEncKey, c.sessionSalt, wantHeaderIV[:], guessedROC)
	if err != nil {
		t.Fatalf("NewF8: %v", err)
	}
	want := append([]byte(nil), plaintext...)
	f8.XORKeyStream(want)

	if !bytes.Equal(got, want) {
		t.Fatalf("keystream mismatch: applyKeystream produced %x, want %x (full header byte0 zeroed)", got, want)
	}

	// Confirm this header actually distinguishes the fix from the old
	// version-bits-only masking, i.e. the assertion above is load-bearing.
	var buggyHeaderIV [12]byte
	copy(buggyHeaderIV[:], header)
	buggyHeaderIV[0] &^= 0x80

	buggyF8, err := streamcipher.NewF8(primitive.AES128, c.sessionEncKey, c.sessionSalt, buggyHeaderIV[:], guessedROC)
	if err != nil {
		t.Fatalf("NewF8: %v", err)
	}
	buggy := append([]byte(nil), plaintext...)
	buggyF8.XORKeyStream(buggy)
	if bytes.Equal(want, buggy) {
		t.Fatalf("test header does not distinguish full-byte-zero from version-bits-only masking")
	}
}

func TestUpdateIgnoresOldROC(t *testing.T) {
	c := &SRTPContext{sL: 1, roc: 6, seqNumSet: true}
	c.update(0xFFFE, 5) // guessed_roc == roc-1: neither branch in update fires
	if c.roc != 6 {
		t.Fatalf("roc changed to %d on an old-rollover update, want unchanged 6", c.roc)
	}
	if c.sL != 1 {
		t.Fatalf("s_l changed to %d on an old-rollover update, want unchanged 1", c.sL)
	}
}
