package srtp

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/lanikai/srtp/internal/primitive"
)

func TestDeriveSessionKeyDeterministic(t *testing.T) {
	masterKey, _ := hex.DecodeString("E1F97A0D3E018BE0D64FA32C06DE4139")
	masterSalt, _ := hex.DecodeString("0EC675AD498AFEEBB6960B3AABE6")

	a, err := deriveSessionKey(primitive.AES128, masterKey, masterSalt, labelEncryption, 0, 0, 16)
	if err != nil {
		t.Fatalf("deriveSessionKey: %v", err)
	}
	b, err := deriveSessionKey(primitive.AES128, masterKey, masterSalt, labelEncryption, 0, 0, 16)
	if err != nil {
		t.Fatalf("deriveSessionKey: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("derive_session_keys is not deterministic: %x != %x", a, b)
	}
}

func TestDeriveSessionKeyLabelsDiffer(t *testing.T) {
	masterKey, _ := hex.DecodeString("E1F97A0D3E018BE0D64FA32C06DE4139")
	masterSalt, _ := hex.DecodeString("0EC675AD498AFEEBB6960B3AABE6")

	enc, err := deriveSessionKey(primitive.AES128, masterKey, masterSalt, labelEncryption, 0, 0, 16)
	if err != nil {
		t.Fatalf("deriveSessionKey(enc): %v", err)
	}
	auth, err := deriveSessionKey(primitive.AES128, masterKey, masterSalt, labelAuthentication, 0, 0, 20)
	if err != nil {
		t.Fatalf("deriveSessionKey(auth): %v", err)
	}
	salt, err := deriveSessionKey(primitive.AES128, masterKey, masterSalt, labelSalt, 0, 0, 14)
	if err != nil {
		t.Fatalf("deriveSessionKey(salt): %v", err)
	}

	if bytes.Equal(enc, auth[:16]) || bytes.Equal(enc, salt[:14]) {
		t.Fatalf("distinct labels produced colliding key material")
	}
}

func TestDeriveSessionKeyIndexIgnoredWhenKDRZero(t *testing.T) {
	masterKey, _ := hex.DecodeString("E1F97A0D3E018BE0D64FA32C06DE4139")
	masterSalt, _ := hex.DecodeString("0EC675AD498AFEEBB6960B3AABE6")

	a, err := deriveSessionKey(primitive.AES128, masterKey, masterSalt, labelEncryption, 0, 0, 16)
	if err != nil {
		t.Fatalf("deriveSessionKey: %v", err)
	}
	b, err := deriveSessionKey(primitive.AES128, masterKey, masterSalt, labelEncryption, 1<<40, 0, 16)
	if err != nil {
		t.Fatalf("deriveSessionKey: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("kdr=0 must derive the same key regardless of index: %x != %x", a, b)
	}
}

func TestDeriveSessionKeyIndexMattersWhenKDRNonzero(t *testing.T) {
	masterKey, _ := hex.DecodeString("E1F97A0D3E018BE0D64FA32C06DE4139")
	masterSalt, _ := hex.DecodeString("0EC675AD498AFEEBB6960B3AABE6")

	a, err := deriveSessionKey(primitive.AES128, masterKey, masterSalt, labelEncryption, 0, 4, 16)
	if err != nil {
		t.Fatalf("deriveSessionKey: %v", err)
	}
	b, err := deriveSessionKey(primitive.AES128, masterKey, masterSalt, labelEncryption, 1<<10, 4, 16)
	if err != nil {
		t.Fatalf("deriveSessionKey: %v", err)
	}
	if bytes.Equal(a, b) {
		t.Fatalf("distinct key_id values (nonzero kdr) produced identical key material")
	}
}
