package spl

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
)

// Fixed layout sizes of the base token program states.
const (
	MintSize         = 82
	TokenAccountSize = 165
	coptionKeySize   = 4 + 32
)

// Layout errors.
var (
	ErrInvalidLayout     = errors.New("invalid account data layout")
	ErrUninitialized     = errors.New("account not initialized")
	ErrAlreadyInitialize = errors.New("account already initialized")
)

// Mint is the supply record of a token.
type Mint struct {
	MintAuthority   *common.PublicKey `json:"mint_authority"`
	Supply          uint64            `json:"supply"`
	Decimals        uint8             `json:"decimals"`
	IsInitialized   bool              `json:"is_initialized"`
	FreezeAuthority *common.PublicKey `json:"freeze_authority"`
}

// AccountState is the state of a token holding account.
type AccountState uint8

const (
	AccountStateUninitialized AccountState = iota
	AccountStateInitialized
	AccountStateFrozen
)

// TokenAccount is a per-owner balance of a single mint.
type TokenAccount struct {
	Mint            common.PublicKey  `json:"mint"`
	Owner           common.PublicKey  `json:"owner"`
	Amount          uint64            `json:"amount"`
	Delegate        *common.PublicKey `json:"delegate"`
	State           AccountState      `json:"state"`
	IsNative        *uint64           `json:"is_native"`
	DelegatedAmount uint64            `json:"delegated_amount"`
	CloseAuthority  *common.PublicKey `json:"close_authority"`
}

// PackMint writes m into the first MintSize bytes of dst.
func PackMint(m *Mint, dst []byte) error {
	if len(dst) < MintSize {
		return fmt.Errorf("%w: mint needs %d bytes, have %d", ErrInvalidLayout, MintSize, len(dst))
	}
	off := putCOptionKey(dst, 0, m.MintAuthority)
	binary.LittleEndian.PutUint64(dst[off:], m.Supply)
	off += 8
	dst[off] = m.Decimals
	off++
	dst[off] = boolByte(m.IsInitialized)
	off++
	putCOptionKey(dst, off, m.FreezeAuthority)
	return nil
}

// UnpackMint decodes the base mint layout from data. Trailing extension data
// is ignored.
func UnpackMint(data []byte) (*Mint, error) {
	if len(data) < MintSize {
		return nil, fmt.Errorf("%w: mint data is %d bytes", ErrInvalidLayout, len(data))
	}
	m := &Mint{}
	var off int
	var err error
	if m.MintAuthority, off, err = getCOptionKey(data, 0); err != nil {
		return nil, fmt.Errorf("mint authority: %w", err)
	}
	m.Supply = binary.LittleEndian.Uint64(data[off:])
	off += 8
	m.Decimals = data[off]
	off++
	switch data[off] {
	case 0:
	case 1:
		m.IsInitialized = true
	default:
		return nil, fmt.Errorf("%w: bad is_initialized byte", ErrInvalidLayout)
	}
	off++
	if m.FreezeAuthority, _, err = getCOptionKey(data, off); err != nil {
		return nil, fmt.Errorf("freeze authority: %w", err)
	}
	return m, nil
}

// PackTokenAccount writes a into the first TokenAccountSize bytes of dst.
func PackTokenAccount(a *TokenAccount, dst []byte) error {
	if len(dst) < TokenAccountSize {
		return fmt.Errorf("%w: token account needs %d bytes, have %d", ErrInvalidLayout, TokenAccountSize, len(dst))
	}
	copy(dst[0:32], a.Mint[:])
	copy(dst[32:64], a.Owner[:])
	binary.LittleEndian.PutUint64(dst[64:], a.Amount)
	off := putCOptionKey(dst, 72, a.Delegate)
	dst[off] = byte(a.State)
	off++
	if a.IsNative != nil {
		binary.LittleEndian.PutUint32(dst[off:], 1)
		binary.LittleEndian.PutUint64(dst[off+4:], *a.IsNative)
	} else {
		binary.LittleEndian.PutUint32(dst[off:], 0)
		binary.LittleEndian.PutUint64(dst[off+4:], 0)
	}
	off += 12
	binary.LittleEndian.PutUint64(dst[off:], a.DelegatedAmount)
	off += 8
	putCOptionKey(dst, off, a.CloseAuthority)
	return nil
}

// UnpackTokenAccount decodes the base token account layout from data.
func UnpackTokenAccount(data []byte) (*TokenAccount, error) {
	if len(data) < TokenAccountSize {
		return nil, fmt.Errorf("%w: token account data is %d bytes", ErrInvalidLayout, len(data))
	}
	a := &TokenAccount{}
	copy(a.Mint[:], data[0:32])
	copy(a.Owner[:], data[32:64])
	a.Amount = binary.LittleEndian.Uint64(data[64:])
	var off int
	var err error
	if a.Delegate, off, err = getCOptionKey(data, 72); err != nil {
		return nil, fmt.Errorf("delegate: %w", err)
	}
	a.State = AccountState(data[off])
	off++
	switch binary.LittleEndian.Uint32(data[off:]) {
	case 0:
	case 1:
		v := binary.LittleEndian.Uint64(data[off+4:])
		a.IsNative = &v
	default:
		return nil, fmt.Errorf("%w: bad is_native tag", ErrInvalidLayout)
	}
	off += 12
	a.DelegatedAmount = binary.LittleEndian.Uint64(data[off:])
	off += 8
	if a.CloseAuthority, _, err = getCOptionKey(data, off); err != nil {
		return nil, fmt.Errorf("close authority: %w", err)
	}
	return a, nil
}

// putCOptionKey writes a 4-byte tag followed by 32 key bytes at off and
// returns the offset after it.
func putCOptionKey(dst []byte, off int, key *common.PublicKey) int {
	if key == nil {
		binary.LittleEndian.PutUint32(dst[off:], 0)
		clear(dst[off+4 : off+coptionKeySize])
	} else {
		binary.LittleEndian.PutUint32(dst[off:], 1)
		copy(dst[off+4:off+coptionKeySize], key[:])
	}
	return off + coptionKeySize
}

func getCOptionKey(data []byte, off int) (*common.PublicKey, int, error) {
	switch binary.LittleEndian.Uint32(data[off:]) {
	case 0:
		return nil, off + coptionKeySize, nil
	case 1:
		key := common.PublicKeyFromBytes(data[off+4 : off+coptionKeySize])
		return &key, off + coptionKeySize, nil
	default:
		return nil, 0, fmt.Errorf("%w: bad option tag", ErrInvalidLayout)
	}
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
