package srtp

import "github.com/lanikai/srtp/internal/primitive"

// ContextFactory turns a piece of KeyingMaterial into per-SSRC SRTP and
// SRTCP contexts. It owns the master key/salt for as long as any context it
// derived might still need them — in practice, not at all, since
// derive_session_keys wipes its own copy immediately — and wipes its own
// copy on Close. See spec section 3's ContextFactory/MasterKeyMaterial
// lifecycle.
type ContextFactory struct {
	isSender    bool
	checkReplay bool

	srtpPolicy  Policy
	srtcpPolicy Policy

	srtpDefault  *SRTPContext
	srtcpDefault *SRTCPContext

	masterKey masterKeyMaterial
	closed    bool
}

// NewContextFactory validates km's policies and constructs a factory
// holding the default (SSRC-less) SRTP and SRTCP contexts that per-SSRC
// contexts are derived from.
func NewContextFactory(km KeyingMaterial, cfg Config) (*ContextFactory, error) {
	if err := km.SRTPPolicy.validate(); err != nil {
		return nil, err
	}
	if err := km.SRTCPPolicy.validate(); err != nil {
		return nil, err
	}

	key := append([]byte(nil), km.MasterKey...)
	salt := append([]byte(nil), km.MasterSalt...)

	f := &ContextFactory{
		isSender:    km.IsSender,
		checkReplay: cfg.CheckReplay,
		srtpPolicy:  km.SRTPPolicy,
		srtcpPolicy: km.SRTCPPolicy,
		masterKey:   masterKeyMaterial{key: key, salt: salt},
	}

	f.srtpDefault = newSRTPContext(0, f.masterKey.key, f.masterKey.salt, f.srtpPolicy, f.isSender, f.checkReplay)
	f.srtcpDefault = newSRTCPContext(0, f.masterKey.key, f.masterKey.salt, f.srtcpPolicy, f.isSender, f.checkReplay)

	if cfg.AESProviderPreference != "" {
		primitive.SetAESProviderPreference(cfg.AESProviderPreference)
	}

	return f, nil
}

// newSRTPContextFor lazily derives and keys a per-SSRC SRTP context from
// the default context, per spec section 4.7's lookup-miss path.
func (f *ContextFactory) newSRTPContextFor(ssrc uint32, initialIndex uint64) (*SRTPContext, error) {
	ctx, err := f.srtpDefault.deriveContext(ssrc, 0, 0)
	if err != nil {
		return nil, err
	}
	if err := ctx.deriveSessionKeys(initialIndex); err != nil {
		return nil, err
	}
	return ctx, nil
}

// newSRTCPContextFor is newSRTPContextFor's SRTCP counterpart; the initial
// index is always 0 for SRTCP (section 3's lifecycle rule).
func (f *ContextFactory) newSRTCPContextFor(ssrc uint32) (*SRTCPContext, error) {
	ctx, err := f.srtcpDefault.deriveContext(ssrc, 0)
	if err != nil {
		return nil, err
	}
	if err := ctx.deriveSessionKeys(0); err != nil {
		return nil, err
	}
	return ctx, nil
}

// Close wipes the factory's master key copy and the two default contexts.
// It does not reach into any per-SSRC contexts a Transformer derived from
// this factory; the Transformer closes those itself.
func (f *ContextFactory) Close() {
	if f.closed {
		return
	}
	f.masterKey.wipe()
	f.srtpDefault.close()
	f.srtcpDefault.close()
	f.closed = true
}
