package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
)

// Signer signs messages with a private key.
type Signer interface {
	// Sign produces an ed25519 signature over msg.
	Sign(msg []byte) []byte
	// PublicKey returns the 32-byte public key.
	PublicKey() []byte
}

// Verifier verifies ed25519 signatures.
type Verifier interface {
	Verify(msg, signature, publicKey []byte) bool
}

// PrivateKey wraps an ed25519 private key.
type PrivateKey struct {
	key ed25519.PrivateKey
}

// GenerateKey creates a new random private key.
func GenerateKey() (*PrivateKey, error) {
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return &PrivateKey{key: key}, nil
}

// PrivateKeyFromSeed derives a private key from a 32-byte seed.
func PrivateKeyFromSeed(seed []byte) (*PrivateKey, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	return &PrivateKey{key: ed25519.NewKeyFromSeed(seed)}, nil
}

// PrivateKeyFromBytes restores a private key from its 64-byte seed||public
// key form, as stored by Solana keypair files.
func PrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	if len(b) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("private key must be %d bytes, got %d", ed25519.PrivateKeySize, len(b))
	}
	key := make(ed25519.PrivateKey, ed25519.PrivateKeySize)
	copy(key, b)
	derived := ed25519.NewKeyFromSeed(key.Seed())
	if !derived.Equal(key) {
		return nil, fmt.Errorf("private key public half does not match seed")
	}
	return &PrivateKey{key: key}, nil
}

// Sign produces an ed25519 signature over msg.
func (pk *PrivateKey) Sign(msg []byte) []byte {
	return ed25519.Sign(pk.key, msg)
}

// PublicKey returns the 32-byte public key.
func (pk *PrivateKey) PublicKey() []byte {
	pub := make([]byte, ed25519.PublicKeySize)
	copy(pub, pk.key[ed25519.SeedSize:])
	return pub
}

// Serialize returns the 64-byte seed||public key form.
func (pk *PrivateKey) Serialize() []byte {
	out := make([]byte, len(pk.key))
	copy(out, pk.key)
	return out
}

// Zero securely zeroes the private key memory.
func (pk *PrivateKey) Zero() {
	clear(pk.key)
}

// VerifySignature checks an ed25519 signature against msg and a 32-byte
// public key. Returns false on malformed input.
func VerifySignature(msg, signature, publicKey []byte) bool {
	if len(publicKey) != ed25519.PublicKeySize || len(signature) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(publicKey), msg, signature)
}

// Ed25519Verifier implements the Verifier interface.
type Ed25519Verifier struct{}

// Verify checks an ed25519 signature against msg and public key.
func (v Ed25519Verifier) Verify(msg, signature, publicKey []byte) bool {
	return VerifySignature(msg, signature, publicKey)
}
