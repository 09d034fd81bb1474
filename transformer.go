package srtp

import (
	"sync"

	"github.com/lanikai/srtp/internal/packet"
)

// Transformer is the public entry point this core exposes (spec section
// 4.7): a per-SSRC context cache sitting in front of ProtectRTP/
// UnprotectRTP/ProtectRTCP/UnprotectRTCP. Callers feed it whole packets;
// it looks up (or lazily derives) the right SRTPContext/SRTCPContext and
// dispatches to its transform/reverse_transform.
type Transformer struct {
	factory *ContextFactory

	mu     sync.Mutex
	srtp   map[uint32]*SRTPContext
	srtcp  map[uint32]*SRTCPContext
	closed bool
}

// NewTransformer wraps factory. factory's lifetime is owned by the
// Transformer from this point on; callers should not Close it directly.
func NewTransformer(factory *ContextFactory) *Transformer {
	return &Transformer{
		factory: factory,
		srtp:    make(map[uint32]*SRTPContext),
		srtcp:   make(map[uint32]*SRTCPContext),
	}
}

// isRTPVersion2 checks the first byte's top two bits, per section 4.7 step 1.
func isRTPVersion2(b []byte) bool {
	return len(b) > 0 && b[0]>>6 == 2
}

// ProtectRTP encrypts and authenticates an RTP packet in place (appending
// the auth tag as needed) and returns the resulting buffer. ok is false if
// the packet was rejected (bad version, replay) without an error.
func (t *Transformer) ProtectRTP(buf []byte) (out []byte, ok bool, err error) {
	if !isRTPVersion2(buf) {
		log.Warn("srtp: rejected: %v", dropBadVersion)
		return nil, false, nil
	}

	view := packet.NewView(buf)
	ctx, err := t.srtpContextFor(view.SSRC(), view.SequenceNumber())
	if err != nil {
		return nil, false, err
	}

	ok, err = ctx.transform(view)
	if err != nil || !ok {
		return nil, false, err
	}
	return view.Bytes(), true, nil
}

// UnprotectRTP authenticates and decrypts an SRTP packet in place
// (shrinking off the auth tag) and returns the resulting buffer.
func (t *Transformer) UnprotectRTP(buf []byte) (out []byte, ok bool, err error) {
	if !isRTPVersion2(buf) {
		log.Warn("srtp: rejected: %v", dropBadVersion)
		return nil, false, nil
	}

	view := packet.NewView(buf)
	ctx, err := t.srtpContextFor(view.SSRC(), view.SequenceNumber())
	if err != nil {
		return nil, false, err
	}

	ok, err = ctx.reverseTransform(view)
	if err != nil || !ok {
		return nil, false, err
	}
	return view.Bytes(), true, nil
}

// ProtectRTCP encrypts and authenticates an RTCP packet in place, appending
// the explicit index/E-flag field and, if authenticated, the tag.
func (t *Transformer) ProtectRTCP(buf []byte) (out []byte, ok bool, err error) {
	view := packet.NewView(buf)
	ctx, err := t.srtcpContextFor(view.RTCPSSRC())
	if err != nil {
		return nil, false, err
	}

	ok, err = ctx.transform(view)
	if err != nil || !ok {
		return nil, false, err
	}
	return view.Bytes(), true, nil
}

// UnprotectRTCP authenticates and decrypts an SRTCP packet in place.
func (t *Transformer) UnprotectRTCP(buf []byte) (out []byte, ok bool, err error) {
	view := packet.NewView(buf)
	ctx, err := t.srtcpContextFor(view.RTCPSSRC())
	if err != nil {
		return nil, false, err
	}

	ok, err = ctx.reverseTransform(view)
	if err != nil || !ok {
		return nil, false, err
	}
	return view.Bytes(), true, nil
}

// srtpContextFor returns the cached SRTPContext for ssrc, deriving and
// keying one from the factory's default context on first sight, per
// section 4.7 step 2.
func (t *Transformer) srtpContextFor(ssrc uint32, seq uint16) (*SRTPContext, error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil, newConstructionError("transformer: closed")
	}
	ctx, found := t.srtp[ssrc]
	if found {
		t.mu.Unlock()
		return ctx, nil
	}
	t.mu.Unlock()

	ctx, err := t.factory.newSRTPContextFor(ssrc, uint64(seq))
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		ctx.close()
		return nil, newConstructionError("transformer: closed")
	}
	if existing, raced := t.srtp[ssrc]; raced {
		ctx.close()
		return existing, nil
	}
	t.srtp[ssrc] = ctx
	return ctx, nil
}

// srtcpContextFor is srtpContextFor's SRTCP counterpart.
func (t *Transformer) srtcpContextFor(ssrc uint32) (*SRTCPContext, error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil, newConstructionError("transformer: closed")
	}
	ctx, found := t.srtcp[ssrc]
	if found {
		t.mu.Unlock()
		return ctx, nil
	}
	t.mu.Unlock()

	ctx, err := t.factory.newSRTCPContextFor(ssrc)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		ctx.close()
		return nil, newConstructionError("transformer: closed")
	}
	if existing, raced := t.srtcp[ssrc]; raced {
		ctx.close()
		return existing, nil
	}
	t.srtcp[ssrc] = ctx
	return ctx, nil
}

// Close zeroes and discards every cached context and closes the
// underlying ContextFactory, per section 4.7.
func (t *Transformer) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return
	}
	for ssrc, ctx := range t.srtp {
		ctx.close()
		delete(t.srtp, ssrc)
	}
	for ssrc, ctx := range t.srtcp {
		ctx.close()
		delete(t.srtcp, ssrc)
	}
	t.factory.Close()
	t.closed = true
}
