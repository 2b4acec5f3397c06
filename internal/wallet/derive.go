package wallet

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/blocto/solana-go-sdk/types"
)

// Derivation constants. Wallets such as Phantom and solana-keygen with
// a derivation path use m/44'/501'/account'/0'.
const (
	HardenedOffset uint32 = 0x80000000
	PurposeBIP44   uint32 = 44
	CoinTypeSolana uint32 = 501
)

var masterSecret = []byte("ed25519 seed")

// Derivation errors.
var (
	ErrNonHardened = errors.New("ed25519 derivation supports hardened indices only")
	ErrInvalidPath = errors.New("invalid derivation path")
)

// ExtendedKey is a SLIP-0010 ed25519 node.
type ExtendedKey struct {
	Key       [32]byte
	ChainCode [32]byte
	Depth     uint8
}

// NewMasterKey creates the root node of seed.
func NewMasterKey(seed []byte) (*ExtendedKey, error) {
	if len(seed) < 16 || len(seed) > 64 {
		return nil, fmt.Errorf("seed must be 16 to 64 bytes, got %d", len(seed))
	}
	return split(hmacSHA512(masterSecret, seed), 0), nil
}

// Child derives the hardened child at index.
func (k *ExtendedKey) Child(index uint32) (*ExtendedKey, error) {
	if index < HardenedOffset {
		return nil, fmt.Errorf("%w: %d", ErrNonHardened, index)
	}
	data := make([]byte, 0, 1+32+4)
	data = append(data, 0)
	data = append(data, k.Key[:]...)
	data = binary.BigEndian.AppendUint32(data, index)
	return split(hmacSHA512(k.ChainCode[:], data), k.Depth+1), nil
}

// DerivePath derives along indices.
func (k *ExtendedKey) DerivePath(indices ...uint32) (*ExtendedKey, error) {
	cur := k
	for _, idx := range indices {
		next, err := cur.Child(idx)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

// Account returns the keypair whose ed25519 seed is the node key.
func (k *ExtendedKey) Account() (types.Account, error) {
	return types.AccountFromSeed(k.Key[:])
}

// AccountPath returns the hardened path m/44'/501'/account'/0'.
func AccountPath(account uint32) []uint32 {
	return []uint32{
		HardenedOffset + PurposeBIP44,
		HardenedOffset + CoinTypeSolana,
		HardenedOffset + account,
		HardenedOffset,
	}
}

// DeriveAccount derives the keypair of account from a BIP-39 seed.
func DeriveAccount(seed []byte, account uint32) (types.Account, error) {
	master, err := NewMasterKey(seed)
	if err != nil {
		return types.Account{}, err
	}
	node, err := master.DerivePath(AccountPath(account)...)
	if err != nil {
		return types.Account{}, err
	}
	return node.Account()
}

// ParsePath parses a path like m/44'/501'/0'/0'. Every component must be
// hardened.
func ParsePath(path string) ([]uint32, error) {
	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] != "m" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	out := make([]uint32, 0, len(parts)-1)
	for _, p := range parts[1:] {
		trimmed := strings.TrimRight(p, "'h")
		if trimmed == p {
			return nil, fmt.Errorf("%w: %q is not hardened", ErrNonHardened, p)
		}
		n, err := strconv.ParseUint(trimmed, 10, 31)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPath, p)
		}
		out = append(out, HardenedOffset+uint32(n))
	}
	return out, nil
}

func hmacSHA512(key, data []byte) []byte {
	mac := hmac.New(sha512.New, key)
	mac.Write(data)
	return mac.Sum(nil)
}

func split(sum []byte, depth uint8) *ExtendedKey {
	k := &ExtendedKey{Depth: depth}
	copy(k.Key[:], sum[:32])
	copy(k.ChainCode[:], sum[32:])
	return k
}
