// Package crypto provides the hashing and signature primitives of the
// ledger runtime.
package crypto

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// DigestSize is the length of a Digest in bytes.
const DigestSize = 32

// Digest is a BLAKE3-256 hash.
type Digest [DigestSize]byte

// String returns the hex encoding of d.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Bytes returns a copy of d as a slice.
func (d Digest) Bytes() []byte {
	return append([]byte(nil), d[:]...)
}

// IsZero reports whether d is all zeros.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// Hash computes a BLAKE3-256 hash of the input data.
func Hash(data []byte) Digest {
	return blake3.Sum256(data)
}

// DoubleHash computes Hash(Hash(data)).
func DoubleHash(data []byte) Digest {
	first := Hash(data)
	return Hash(first[:])
}

// HashConcat hashes the concatenation of two digests.
func HashConcat(a, b Digest) Digest {
	var buf [2 * DigestSize]byte
	copy(buf[:DigestSize], a[:])
	copy(buf[DigestSize:], b[:])
	return Hash(buf[:])
}

// HashParts hashes each part prefixed with its length, so that different
// splits of the same bytes never collide.
func HashParts(parts ...[]byte) Digest {
	h := blake3.New()
	var lenBuf [8]byte
	for _, p := range parts {
		n := uint64(len(p))
		for i := range lenBuf {
			lenBuf[i] = byte(n >> (8 * i))
		}
		_, _ = h.Write(lenBuf[:])
		_, _ = h.Write(p)
	}
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}
