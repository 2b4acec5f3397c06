package wallet

import (
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/blocto/solana-go-sdk/types"
)

// ErrKeypairLength is returned for keypair data that is not 64 bytes.
var ErrKeypairLength = errors.New("keypair must be 64 bytes")

// DecodeKeypairJSON parses a solana-keygen keypair file: a JSON array of
// the 64 secret key bytes. A base64 JSON string is accepted too.
func DecodeKeypairJSON(data []byte) (types.Account, error) {
	var raw []byte
	if err := json.Unmarshal(data, &raw); err != nil || len(raw) != ed25519.PrivateKeySize {
		var ints []int
		if err := json.Unmarshal(data, &ints); err != nil {
			return types.Account{}, fmt.Errorf("parse keypair json: %w", err)
		}
		if len(ints) != ed25519.PrivateKeySize {
			return types.Account{}, fmt.Errorf("%w: got %d", ErrKeypairLength, len(ints))
		}
		raw = make([]byte, len(ints))
		for i, v := range ints {
			if v < 0 || v > 255 {
				return types.Account{}, fmt.Errorf("parse keypair json: byte %d out of range: %d", i, v)
			}
			raw[i] = byte(v)
		}
	}
	acc, err := types.AccountFromBytes(raw)
	if err != nil {
		return types.Account{}, fmt.Errorf("restore keypair: %w", err)
	}
	return acc, nil
}

// EncodeKeypairJSON renders acc in the solana-keygen file format.
func EncodeKeypairJSON(acc types.Account) ([]byte, error) {
	if len(acc.PrivateKey) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%w: got %d", ErrKeypairLength, len(acc.PrivateKey))
	}
	ints := make([]int, len(acc.PrivateKey))
	for i, b := range acc.PrivateKey {
		ints[i] = int(b)
	}
	return json.Marshal(ints)
}

// ReadKeypairFile loads a solana-keygen keypair file.
func ReadKeypairFile(path string) (types.Account, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Account{}, fmt.Errorf("read keypair: %w", err)
	}
	return DecodeKeypairJSON(data)
}

// WriteKeypairFile writes acc to path readable by the owner only. An
// existing file is never overwritten.
func WriteKeypairFile(path string, acc types.Account) error {
	data, err := EncodeKeypairJSON(acc)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return fmt.Errorf("create keypair file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write keypair: %w", err)
	}
	return f.Close()
}
