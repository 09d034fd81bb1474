package srtp

import "github.com/lanikai/srtp/internal/primitive"

// EncryptionType selects the stream-cipher construction a Policy uses to
// protect packet confidentiality. See spec section 3 and section 6.
type EncryptionType int

const (
	EncryptionNull EncryptionType = iota
	EncryptionAESCM
	EncryptionAESF8
	EncryptionTwofishCM
	EncryptionTwofishF8
)

func (e EncryptionType) String() string {
	switch e {
	case EncryptionNull:
		return "NULL"
	case EncryptionAESCM:
		return "AES-CM"
	case EncryptionAESF8:
		return "AES-F8"
	case EncryptionTwofishCM:
		return "TWOFISH-CM"
	case EncryptionTwofishF8:
		return "TWOFISH-F8"
	default:
		return "unknown"
	}
}

// blockAlgorithm maps an EncryptionType to the primitive.Algorithm its block
// cipher belongs to. Only meaningful for non-NULL types.
func (e EncryptionType) blockAlgorithm() primitive.Algorithm {
	switch e {
	case EncryptionTwofishCM, EncryptionTwofishF8:
		return primitive.Twofish128
	default:
		return primitive.AES128
	}
}

func (e EncryptionType) usesF8() bool {
	return e == EncryptionAESF8 || e == EncryptionTwofishF8
}

// AuthType selects the keyed-MAC construction a Policy uses to protect
// packet integrity.
type AuthType int

const (
	AuthNull AuthType = iota
	AuthHMACSHA1_80
	AuthHMACSHA1_32
	AuthSkein
)

func (a AuthType) String() string {
	switch a {
	case AuthNull:
		return "NULL"
	case AuthHMACSHA1_80:
		return "HMAC-SHA1-80"
	case AuthHMACSHA1_32:
		return "HMAC-SHA1-32"
	case AuthSkein:
		return "SKEIN-MAC"
	default:
		return "unknown"
	}
}

func (a AuthType) macAlgorithm() primitive.MacAlgorithm {
	switch a {
	case AuthHMACSHA1_32:
		return primitive.HMACSHA1_32
	case AuthSkein:
		return primitive.Skein
	default:
		return primitive.HMACSHA1_80
	}
}

// Policy is an immutable configuration of the encryption and authentication
// algorithms, and their key/salt/tag lengths, a crypto context is derived
// under. See spec section 3.
type Policy struct {
	EncType EncryptionType
	AuthType AuthType

	EncKeyLength  int // bytes
	SaltKeyLength int // bytes
	AuthKeyLength int // bytes
	AuthTagLength int // bytes

	// KeyDerivationRate is the KDR from spec section 4.5/GLOSSARY. When
	// nonzero, the key derivation uses index >> KeyDerivationRate in its key
	// ID; when 0, the index is ignored. Session keys are derived once per
	// context, when it is keyed, and are not re-derived mid-session.
	KeyDerivationRate uint
}

// DefaultPolicy returns the required-default suite: AES-CM-128 with
// HMAC-SHA1-80, per spec section 6.
func DefaultPolicy() Policy {
	return Policy{
		EncType:       EncryptionAESCM,
		AuthType:      AuthHMACSHA1_80,
		EncKeyLength:  16,
		SaltKeyLength: 14,
		AuthKeyLength: 20,
		AuthTagLength: 10,
	}
}

// NullPolicy returns the (NULL, NULL) debugging suite from spec section 6:
// no encryption, no authentication. Packets pass through unmodified except
// for ROC/index bookkeeping.
func NullPolicy() Policy {
	return Policy{
		EncType:       EncryptionNull,
		AuthType:      AuthNull,
		EncKeyLength:  16,
		SaltKeyLength: 14,
		AuthKeyLength: 0,
		AuthTagLength: 0,
	}
}

// validate checks that a Policy's declared lengths are internally
// consistent, per spec section 7's PolicyMismatch error kind.
func (p Policy) validate() error {
	if p.EncType != EncryptionNull {
		if p.EncKeyLength <= 0 {
			return newConstructionError("policy: non-NULL encryption requires a positive key length")
		}
		if p.SaltKeyLength <= 0 {
			return newConstructionError("policy: non-NULL encryption requires a positive salt length")
		}
	}
	if p.AuthType != AuthNull {
		if p.AuthKeyLength <= 0 {
			return newConstructionError("policy: non-NULL authentication requires a positive auth key length")
		}
		if p.AuthTagLength <= 0 {
			return newConstructionError("policy: non-NULL authentication requires a positive tag length")
		}
	}
	return nil
}
