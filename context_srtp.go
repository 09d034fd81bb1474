package srtp

import (
	"crypto/hmac"
	"encoding/binary"
	"sync"

	"github.com/lanikai/srtp/internal/logging"
	"github.com/lanikai/srtp/internal/packet"
	"github.com/lanikai/srtp/internal/primitive"
	"github.com/lanikai/srtp/internal/replay"
	"github.com/lanikai/srtp/internal/streamcipher"
)

var log = logging.DefaultLogger.WithTag("srtp/context")

type contextState int

const (
	stateUninitialized contextState = iota
	stateKeyed
	stateClosed
)

// SRTPContext holds the per-SSRC state RFC 3711 section 3.2.1 describes:
// master and session keys, the rollover counter and highest sequence
// number, the replay window, and the keyed cipher/MAC instances derived
// from them. Grounded in the vendored context.go's cryptoContext, with the
// ROC-reconstruction algorithm replaced by the RFC 3.3.1 procedure (the
// vendored heuristic tracked only a bounded disorder window and is not
// equivalent).
type SRTPContext struct {
	mu sync.Mutex

	state contextState

	ssrc     uint32
	policy   Policy
	isSender bool

	masterKey  []byte
	masterSalt []byte

	roc       uint32
	sL        uint16
	seqNumSet bool

	replay *replay.Window

	block       primitive.BlockCipher
	ctr         *streamcipher.CTR
	mac         primitive.Mac
	sessionSalt []byte

	// sessionEncKey retains the raw session encryption key only when the
	// policy uses F8 mode, which needs it to derive a fresh masked-key
	// cipher for every packet (section 4.3). CTR-mode contexts never
	// populate this; the key lives only inside the keyed block cipher.
	sessionEncKey []byte
}

func newSRTPContext(ssrc uint32, masterKey, masterSalt []byte, policy Policy, isSender, checkReplay bool) *SRTPContext {
	w := replay.New()
	w.Enabled = checkReplay
	return &SRTPContext{
		ssrc:       ssrc,
		policy:     policy,
		isSender:   isSender,
		masterKey:  masterKey,
		masterSalt: masterSalt,
		replay:     w,
	}
}

// deriveSessionKeys derives the session encryption, authentication, and
// salt keys from the master key at the given packet index (section 4.5),
// keys the cipher and MAC, and transitions the context to KEYED.
func (c *SRTPContext) deriveSessionKeys(index uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == stateClosed {
		return newConstructionError("context: derive_session_keys called on a closed context")
	}

	algorithm := c.policy.EncType.blockAlgorithm()

	var encKey, authKey []byte
	var err error

	if c.policy.EncType != EncryptionNull {
		encKey, err = deriveSessionKey(algorithm, c.masterKey, c.masterSalt, labelEncryption, index, c.policy.KeyDerivationRate, c.policy.EncKeyLength)
		if err != nil {
			return err
		}
	}
	saltKey, err := deriveSessionKey(algorithm, c.masterKey, c.masterSalt, labelSalt, index, c.policy.KeyDerivationRate, c.policy.SaltKeyLength)
	if err != nil {
		return err
	}
	if c.policy.AuthType != AuthNull {
		authKey, err = deriveSessionKey(algorithm, c.masterKey, c.masterSalt, labelAuthentication, index, c.policy.KeyDerivationRate, c.policy.AuthKeyLength)
		if err != nil {
			return err
		}
	}

	if c.policy.EncType != EncryptionNull {
		block, err := primitive.CreateBlockCipher(algorithm)
		if err != nil {
			return err
		}
		if err := block.Init(encKey, true); err != nil {
			return err
		}
		c.block = block
		c.ctr = streamcipher.NewCTR(block)

		if c.policy.EncType.usesF8() {
			c.sessionEncKey = encKey
		} else {
			wipe(encKey)
		}
	}

	if c.policy.AuthType != AuthNull {
		mac, err := primitive.CreateMac(c.policy.AuthType.macAlgorithm())
		if err != nil {
			return err
		}
		if err := mac.Init(authKey); err != nil {
			return err
		}
		c.mac = mac
		wipe(authKey)
	}

	c.sessionSalt = saltKey

	// A context's master key material is zeroed the moment session keys are
	// derived (section 3's MasterKeyMaterial invariant); this core derives
	// session keys exactly once per context, at construction, and does not
	// re-derive mid-session even when KeyDerivationRate is nonzero.
	wipe(c.masterKey)
	wipe(c.masterSalt)

	c.state = stateKeyed
	return nil
}

// transform applies the sender-direction SRTP transform to view in place
// (section 4.5): replay consistency check, payload encryption, and tag
// append.
func (c *SRTPContext) transform(view *packet.View) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != stateKeyed {
		return false, newConstructionError("context: transform called before keys were derived")
	}

	seq := view.SequenceNumber()
	if !c.seqNumSet {
		c.sL = seq
		c.seqNumSet = true
	}

	index, guessedROC := c.guessIndex(seq)

	if verdict := c.replay.Check(int64(index)); verdict != replay.Accept {
		log.Reject(c.isSender, "srtp: ssrc=%08x seq=%d sender transform rejected: %v", c.ssrc, seq, replayDropReason(verdict))
		return false, nil
	}

	if err := c.applyKeystream(view, guessedROC, index); err != nil {
		return false, err
	}

	if c.policy.AuthType != AuthNull {
		tag := c.authenticate(view.Bytes(), guessedROC)
		view.Append(tag)
	}

	c.replay.Update(int64(index))
	c.update(seq, guessedROC)
	return true, nil
}

// reverseTransform applies the receiver-direction SRTP transform to view in
// place (section 4.5): replay check, authentication, and decryption.
func (c *SRTPContext) reverseTransform(view *packet.View) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != stateKeyed {
		return false, newConstructionError("context: reverse_transform called before keys were derived")
	}

	seq := view.SequenceNumber()
	if !c.seqNumSet {
		c.sL = seq
		c.seqNumSet = true
	}

	index, guessedROC := c.guessIndex(seq)

	if verdict := c.replay.Check(int64(index)); verdict != replay.Accept {
		log.Reject(c.isSender, "srtp: ssrc=%08x seq=%d receiver reverse_transform rejected: %v", c.ssrc, seq, replayDropReason(verdict))
		return false, nil
	}

	if c.policy.AuthType != AuthNull {
		tagLen := c.policy.AuthTagLength
		if view.Len() < tagLen {
			return false, nil
		}
		received := make([]byte, tagLen)
		view.ReadRegion(view.Len()-tagLen, tagLen, received)
		view.Shrink(tagLen)

		expected := c.authenticate(view.Bytes(), guessedROC)
		if !hmac.Equal(received, expected) {
			log.Reject(c.isSender, "srtp: ssrc=%08x seq=%d receiver reverse_transform rejected: %v", c.ssrc, seq, dropAuthFailure)
			return false, nil
		}
	}

	if err := c.applyKeystream(view, guessedROC, index); err != nil {
		return false, err
	}

	c.replay.Update(int64(index))
	c.update(seq, guessedROC)
	return true, nil
}

// applyKeystream encrypts or decrypts (the stream ciphers are symmetric)
// view's payload in place using the policy's selected construction.
func (c *SRTPContext) applyKeystream(view *packet.View, roc uint32, index uint64) error {
	if c.policy.EncType == EncryptionNull {
		return nil
	}

	payload := view.Bytes()[view.HeaderLength():]

	if c.policy.EncType.usesF8() {
		var headerIV [12]byte
		copy(headerIV[:], view.Bytes()[:12])
		// RFC 3711 section 4.1.2: the F8 IV copies the RTP header verbatim
		// except the first byte (V/P/X/CC), which is replaced with 0x00
		// entirely — not just its version bits.
		headerIV[0] = 0

		f8, err := streamcipher.NewF8(c.policy.EncType.blockAlgorithm(), c.sessionEncKey, c.sessionSalt, headerIV[:], roc)
		if err != nil {
			return err
		}
		f8.XORKeyStream(payload)
		return nil
	}

	iv := make([]byte, 16)
	streamcipher.RTPIV(iv, c.sessionSalt, c.ssrc, index)
	c.ctr.XORKeyStream(payload, iv)
	return nil
}

// authenticate computes the HMAC over data followed by the big-endian ROC,
// per section 4.5's "MAC(header || payload || roc)".
func (c *SRTPContext) authenticate(data []byte, roc uint32) []byte {
	_, _ = c.mac.Write(data)
	var rocBytes [4]byte
	binary.BigEndian.PutUint32(rocBytes[:], roc)
	_, _ = c.mac.Write(rocBytes[:])
	return c.mac.Finalize(nil)
}

// guessIndex reconstructs the 48-bit packet index for seq against the
// context's current roc/s_l, per RFC 3711 section 3.3.1. It does not
// mutate context state; update commits the result.
func (c *SRTPContext) guessIndex(seq uint16) (index uint64, guessedROC uint32) {
	roc := c.roc
	s, sl := int(seq), int(c.sL)

	if sl < 0x8000 {
		if s-sl > 0x8000 {
			roc = c.roc - 1
		}
	} else if sl-0x8000 > s {
		roc = c.roc + 1
	}

	return (uint64(roc) << 16) | uint64(seq), roc
}

// update advances s_l and roc following a packet accepted at (seq,
// guessedROC), per section 4.5.
func (c *SRTPContext) update(seq uint16, guessedROC uint32) {
	switch {
	case guessedROC == c.roc:
		if seq > c.sL || !c.seqNumSet {
			c.sL = seq
		}
		c.seqNumSet = true
	case guessedROC == c.roc+1:
		c.sL = seq
		c.roc = guessedROC
		c.seqNumSet = true
	}
}

// deriveContext constructs a sibling context for newSSRC, sharing this
// context's master key, salt, and policy (but not its replay state), per
// section 4.5. The sibling is UNINITIALIZED; deriveSessionKeys must be
// called before it can transform packets.
func (c *SRTPContext) deriveContext(newSSRC uint32, newROC uint32, newKDR uint) (*SRTPContext, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == stateClosed {
		return nil, newConstructionError("context: derive_context called on a closed context")
	}

	policy := c.policy
	policy.KeyDerivationRate = newKDR

	sibling := newSRTPContext(newSSRC, append([]byte(nil), c.masterKey...), append([]byte(nil), c.masterSalt...), policy, c.isSender, c.replay.Enabled)
	sibling.roc = newROC
	return sibling, nil
}

// close zeroes the master key and salt, the session salt, and the retained
// F8 session key, and marks the context unusable, per section 4.5. The keyed
// block cipher and MAC keep their own internal copies of the session keys;
// close does not zero those.
func (c *SRTPContext) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == stateClosed {
		return
	}
	wipe(c.masterKey)
	wipe(c.masterSalt)
	if c.sessionEncKey != nil {
		wipe(c.sessionEncKey)
	}
	if c.sessionSalt != nil {
		wipe(c.sessionSalt)
	}
	c.state = stateClosed
}
