package srtp

import (
	"crypto/hmac"
	"encoding/binary"
	"sync"

	"github.com/lanikai/srtp/internal/packet"
	"github.com/lanikai/srtp/internal/primitive"
	"github.com/lanikai/srtp/internal/replay"
	"github.com/lanikai/srtp/internal/streamcipher"
)

// srtcpIndexMask keeps the on-wire index field to 31 bits; bit 31 is the
// E-flag, appended separately.
const srtcpIndexMask = 0x7fffffff

// SRTCPContext is the SRTCP analogue of SRTPContext (section 4.6): in
// place of a rollover counter and guessed index, it carries an explicit
// 31-bit index transmitted on every packet, so there is no ROC-guessing
// step. Grounded on the same vendored context.go this core's SRTPContext
// is grounded on, with the RTP-specific IV and index-guessing logic
// replaced by the RTCP explicit-index wire format.
type SRTCPContext struct {
	mu sync.Mutex

	state contextState

	ssrc     uint32
	policy   Policy
	isSender bool

	masterKey  []byte
	masterSalt []byte

	sentIndex     uint32
	receivedIndex uint32
	indexSet      bool

	replay *replay.Window

	block primitive.BlockCipher
	ctr   *streamcipher.CTR
	mac   primitive.Mac

	sessionSalt []byte
}

func newSRTCPContext(ssrc uint32, masterKey, masterSalt []byte, policy Policy, isSender, checkReplay bool) *SRTCPContext {
	w := replay.New()
	w.Enabled = checkReplay
	return &SRTCPContext{
		ssrc:       ssrc,
		policy:     policy,
		isSender:   isSender,
		masterKey:  masterKey,
		masterSalt: masterSalt,
		replay:     w,
	}
}

// deriveSessionKeys is SRTPContext.deriveSessionKeys's SRTCP counterpart:
// the derivation formula is identical (section 4.5), SRTCP only differs in
// how the index is tracked and carried on the wire. F8 mode is not wired
// for SRTCP: section 4.6 describes only the counter-mode IV for SRTCP
// packets.
func (c *SRTCPContext) deriveSessionKeys(index uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == stateClosed {
		return newConstructionError("context: derive_session_keys called on a closed context")
	}
	if c.policy.EncType.usesF8() {
		return newConstructionError("context: F8 mode is not supported for SRTCP")
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
		wipe(encKey)
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
	wipe(c.masterKey)
	wipe(c.masterSalt)

	c.state = stateKeyed
	return nil
}

// transform applies the sender-direction SRTCP transform (section 4.6):
// encrypt, append the explicit index+E-flag field, authenticate, and
// advance sentIndex.
func (c *SRTCPContext) transform(view *packet.View) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != stateKeyed {
		return false, newConstructionError("context: transform called before keys were derived")
	}

	encrypted := c.policy.EncType != EncryptionNull
	index := c.sentIndex & srtcpIndexMask

	if encrypted {
		payload := view.Bytes()[view.RTCPHeaderLength():]
		iv := make([]byte, 16)
		streamcipher.RTCPIV(iv, c.sessionSalt, view.RTCPSSRC(), index)
		c.ctr.XORKeyStream(payload, iv)
	}

	var field [4]byte
	binary.BigEndian.PutUint32(field[:], index)
	if encrypted {
		field[0] |= 0x80
	}
	view.Append(field[:])

	if c.policy.AuthType != AuthNull {
		tag := c.authenticateRTCP(view.Bytes())
		view.Append(tag)
	}

	c.sentIndex++
	return true, nil
}

// reverseTransform applies the receiver-direction SRTCP transform (section
// 4.6): read the trailing index+E-flag field, replay-check, authenticate,
// and decrypt.
func (c *SRTCPContext) reverseTransform(view *packet.View) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != stateKeyed {
		return false, newConstructionError("context: reverse_transform called before keys were derived")
	}

	tagLen := c.policy.AuthTagLength
	if view.Len() < tagLen+4 {
		return false, nil
	}

	index, encrypted := view.SRTCPIndex(tagLen)

	if verdict := c.replay.Check(int64(index)); verdict != replay.Accept {
		log.Reject(c.isSender, "srtp: ssrc=%08x srtcp index=%d rejected: %v", c.ssrc, index, replayDropReason(verdict))
		return false, nil
	}

	if c.policy.AuthType != AuthNull {
		received := make([]byte, tagLen)
		view.ReadRegion(view.Len()-tagLen, tagLen, received)
		view.Shrink(tagLen)

		expected := c.authenticateRTCP(view.Bytes())
		if !hmac.Equal(received, expected) {
			log.Reject(c.isSender, "srtp: ssrc=%08x srtcp index=%d rejected: %v", c.ssrc, index, dropAuthFailure)
			return false, nil
		}
	}

	view.Shrink(4) // drop the index+E-flag field now that it has been authenticated

	if encrypted {
		payload := view.Bytes()[view.RTCPHeaderLength():]
		iv := make([]byte, 16)
		streamcipher.RTCPIV(iv, c.sessionSalt, view.RTCPSSRC(), index)
		c.ctr.XORKeyStream(payload, iv)
	}

	c.replay.Update(int64(index))
	if !c.indexSet || index > c.receivedIndex {
		c.receivedIndex = index
		c.indexSet = true
	}
	return true, nil
}

// authenticateRTCP computes the HMAC over data, which per section 4.6
// already includes the trailing index+E-flag field.
func (c *SRTCPContext) authenticateRTCP(data []byte) []byte {
	_, _ = c.mac.Write(data)
	return c.mac.Finalize(nil)
}

// deriveContext constructs a sibling SRTCPContext for newSSRC, sharing
// this context's master key, salt, and policy.
func (c *SRTCPContext) deriveContext(newSSRC uint32, newKDR uint) (*SRTCPContext, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == stateClosed {
		return nil, newConstructionError("context: derive_context called on a closed context")
	}

	policy := c.policy
	policy.KeyDerivationRate = newKDR

	return newSRTCPContext(newSSRC, append([]byte(nil), c.masterKey...), append([]byte(nil), c.masterSalt...), policy, c.isSender, c.replay.Enabled), nil
}

func (c *SRTCPContext) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == stateClosed {
		return
	}
	wipe(c.masterKey)
	wipe(c.masterSalt)
	if c.sessionSalt != nil {
		wipe(c.sessionSalt)
	}
	c.state = stateClosed
}
