package srtp

// masterKeyMaterial holds the master key and salt for one direction,
// derived contexts, lent to every context a ContextFactory creates until it
// closes. Per spec section 3, it is owned by the ContextFactory: wiped only
// in the factory's close(), or when the last holder (factory or an
// individually-closed context) zeroes it.
type masterKeyMaterial struct {
	key  []byte
	salt []byte
}

func (m *masterKeyMaterial) wipe() {
	wipe(m.key)
	wipe(m.salt)
}

// KeyingMaterial is the input handed to NewContextFactory by the external
// key-management collaborator (spec section 6): whatever DTLS-SRTP, SDES,
// MIKEY, or ZRTP exchange produced the master key, salt, and the policies
// to protect RTP and RTCP under. This core consumes it but never produces
// it — key exchange is explicitly out of scope (spec section 1).
type KeyingMaterial struct {
	IsSender bool

	MasterKey  []byte
	MasterSalt []byte

	SRTPPolicy  Policy
	SRTCPPolicy Policy
}
