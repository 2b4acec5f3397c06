package wallet

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

// fastParams returns low-cost Argon2 params for fast tests.
func fastParams() EncryptionParams {
	return EncryptionParams{
		Memory:      64,
		Iterations:  1,
		Parallelism: 1,
	}
}

func TestEncryptDecrypt_Roundtrip(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"keypair", bytes.Repeat([]byte{7}, 64)},
		{"empty", []byte{}},
		{"large", bytes.Repeat([]byte("0123456789"), 1000)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sealed, err := Encrypt(tt.data, []byte("pass"), fastParams())
			if err != nil {
				t.Fatalf("Encrypt() error: %v", err)
			}
			got, err := Decrypt(sealed, []byte("pass"))
			if err != nil {
				t.Fatalf("Decrypt() error: %v", err)
			}
			if !bytes.Equal(got, tt.data) {
				t.Errorf("Decrypt() = %d bytes, want %d", len(got), len(tt.data))
			}
		})
	}
}

func TestDecrypt_WrongPassword(t *testing.T) {
	sealed, err := Encrypt([]byte("secret"), []byte("correct"), fastParams())
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}
	if _, err := Decrypt(sealed, []byte("wrong")); !errors.Is(err, ErrWrongPassword) {
		t.Errorf("Decrypt() error = %v, want ErrWrongPassword", err)
	}
}

func TestDecrypt_Tampered(t *testing.T) {
	tests := []struct {
		name   string
		offset func(n int) int
	}{
		{"salt", func(int) int { return 0 }},
		{"params", func(int) int { return SaltSize + 4 }},
		{"nonce", func(int) int { return headerSize }},
		{"tag", func(n int) int { return n - 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sealed, err := Encrypt([]byte("data"), []byte("pass"), fastParams())
			if err != nil {
				t.Fatalf("Encrypt() error: %v", err)
			}
			sealed[tt.offset(len(sealed))] ^= 0x01
			if _, err := Decrypt(sealed, []byte("pass")); err == nil {
				t.Error("Decrypt() of tampered data succeeded")
			}
		})
	}
}

func TestDecrypt_InvalidParams(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(sealed []byte)
	}{
		{"zero iterations", func(b []byte) { binary.LittleEndian.PutUint32(b[SaltSize+4:], 0) }},
		{"too many iterations", func(b []byte) { binary.LittleEndian.PutUint32(b[SaltSize+4:], MaxIterations+1) }},
		{"zero parallelism", func(b []byte) { b[SaltSize+8] = 0 }},
		{"zero memory", func(b []byte) { binary.LittleEndian.PutUint32(b[SaltSize:], 0) }},
		{"huge memory", func(b []byte) { binary.LittleEndian.PutUint32(b[SaltSize:], 0xFFFFFFFF) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sealed, err := Encrypt([]byte("data"), []byte("pass"), fastParams())
			if err != nil {
				t.Fatalf("Encrypt() error: %v", err)
			}
			tt.mutate(sealed)
			if _, err := Decrypt(sealed, []byte("pass")); !errors.Is(err, ErrInvalidParams) {
				t.Errorf("Decrypt() error = %v, want ErrInvalidParams", err)
			}
		})
	}
}

func TestEncrypt_InvalidParams(t *testing.T) {
	bad := fastParams()
	bad.Iterations = 0
	if _, err := Encrypt([]byte("data"), []byte("pass"), bad); !errors.Is(err, ErrInvalidParams) {
		t.Errorf("Encrypt() error = %v, want ErrInvalidParams", err)
	}
	if err := DefaultParams().Validate(); err != nil {
		t.Errorf("DefaultParams().Validate() = %v, want nil", err)
	}
}

func TestDecrypt_TooShort(t *testing.T) {
	if _, err := Decrypt([]byte("too short"), []byte("pass")); !errors.Is(err, ErrSealedTooShort) {
		t.Errorf("Decrypt() error = %v, want ErrSealedTooShort", err)
	}
}

func TestEncrypt_DifferentEachTime(t *testing.T) {
	enc1, err := Encrypt([]byte("same"), []byte("pass"), fastParams())
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}
	enc2, err := Encrypt([]byte("same"), []byte("pass"), fastParams())
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}
	if bytes.Equal(enc1, enc2) {
		t.Error("two encryptions of the same data are identical")
	}
}

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	if p.Memory != 64*1024 || p.Iterations != 3 || p.Parallelism != 4 {
		t.Errorf("DefaultParams() = %+v", p)
	}
}
