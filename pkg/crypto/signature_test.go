package crypto

import (
	"bytes"
	"testing"
)

func TestGenerateKey(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error: %v", err)
	}
	if len(key.PublicKey()) != 32 {
		t.Errorf("PublicKey() length = %d, want 32", len(key.PublicKey()))
	}
	if len(key.Serialize()) != 64 {
		t.Errorf("Serialize() length = %d, want 64", len(key.Serialize()))
	}
}

func TestGenerateKey_Unique(t *testing.T) {
	k1, _ := GenerateKey()
	k2, _ := GenerateKey()
	if bytes.Equal(k1.Serialize(), k2.Serialize()) {
		t.Error("two generated keys should not be identical")
	}
}

func TestPrivateKeyFromSeed_Deterministic(t *testing.T) {
	seed := bytes.Repeat([]byte{7}, 32)
	k1, err := PrivateKeyFromSeed(seed)
	if err != nil {
		t.Fatalf("PrivateKeyFromSeed() error: %v", err)
	}
	k2, _ := PrivateKeyFromSeed(seed)
	if !bytes.Equal(k1.PublicKey(), k2.PublicKey()) {
		t.Error("same seed should give same key")
	}
	if _, err := PrivateKeyFromSeed(seed[:31]); err == nil {
		t.Error("short seed should fail")
	}
}

func TestPrivateKeyFromBytes(t *testing.T) {
	original, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error: %v", err)
	}
	restored, err := PrivateKeyFromBytes(original.Serialize())
	if err != nil {
		t.Fatalf("PrivateKeyFromBytes() error: %v", err)
	}
	if !bytes.Equal(original.PublicKey(), restored.PublicKey()) {
		t.Error("restored key should have same public key")
	}
}

func TestPrivateKeyFromBytes_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"seed only", make([]byte, 32)},
		{"too long", make([]byte, 65)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := PrivateKeyFromBytes(tt.data); err == nil {
				t.Error("expected error")
			}
		})
	}

	key, _ := GenerateKey()
	b := key.Serialize()
	b[63] ^= 0xff
	if _, err := PrivateKeyFromBytes(b); err == nil {
		t.Error("mismatched public half should fail")
	}
}

func TestSign_Verify(t *testing.T) {
	key, _ := GenerateKey()
	msg := Hash([]byte("message"))
	sig := key.Sign(msg[:])
	if len(sig) != 64 {
		t.Fatalf("signature length = %d, want 64", len(sig))
	}
	if !VerifySignature(msg[:], sig, key.PublicKey()) {
		t.Error("valid signature should verify")
	}

	other := Hash([]byte("other"))
	if VerifySignature(other[:], sig, key.PublicKey()) {
		t.Error("signature should not verify for a different message")
	}

	otherKey, _ := GenerateKey()
	if VerifySignature(msg[:], sig, otherKey.PublicKey()) {
		t.Error("signature should not verify under another key")
	}

	sig[0] ^= 0x01
	if VerifySignature(msg[:], sig, key.PublicKey()) {
		t.Error("corrupted signature should not verify")
	}
}

func TestVerify_InvalidInputs(t *testing.T) {
	key, _ := GenerateKey()
	msg := []byte("x")
	sig := key.Sign(msg)
	if VerifySignature(msg, sig[:10], key.PublicKey()) {
		t.Error("short signature should not verify")
	}
	if VerifySignature(msg, sig, key.PublicKey()[:31]) {
		t.Error("short public key should not verify")
	}
}

func TestPrivateKey_Zero(t *testing.T) {
	key, _ := GenerateKey()
	key.Zero()
	for _, b := range key.Serialize() {
		if b != 0 {
			t.Fatal("Serialize() should return zeros after Zero()")
		}
	}
}

func TestInterfaces(t *testing.T) {
	var s Signer
	key, _ := GenerateKey()
	s = key
	var v Verifier = Ed25519Verifier{}
	msg := []byte("interface test")
	if !v.Verify(msg, s.Sign(msg), s.PublicKey()) {
		t.Error("Ed25519Verifier should verify PrivateKey signatures")
	}
}
