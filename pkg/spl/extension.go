package spl

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// AccountType is the byte that follows the padded base state of a
// Token-2022 account carrying extensions.
type AccountType uint8

const (
	AccountTypeUninitialized AccountType = iota
	AccountTypeMint
	AccountTypeAccount
)

// ExtensionType identifies a Token-2022 TLV entry.
type ExtensionType uint16

const (
	ExtensionUninitialized   ExtensionType = 0
	ExtensionImmutableOwner  ExtensionType = 7
	ExtensionMetadataPointer ExtensionType = 18
	ExtensionTokenMetadata   ExtensionType = 19
)

const (
	accountTypeOffset = TokenAccountSize
	tlvStart          = TokenAccountSize + 1
	tlvHeaderSize     = 4
)

// Extension errors.
var (
	ErrVariableLengthExtension = errors.New("extension has variable length")
	ErrExtensionNotFound       = errors.New("extension not found")
	ErrInvalidAccountType      = errors.New("invalid account type")
	ErrExtensionTooLarge       = errors.New("extension value too large")
)

func (t ExtensionType) String() string {
	switch t {
	case ExtensionUninitialized:
		return "Uninitialized"
	case ExtensionImmutableOwner:
		return "ImmutableOwner"
	case ExtensionMetadataPointer:
		return "MetadataPointer"
	case ExtensionTokenMetadata:
		return "TokenMetadata"
	default:
		return fmt.Sprintf("ExtensionType(%d)", uint16(t))
	}
}

// fixedLen returns the value length of fixed-size extensions.
func (t ExtensionType) fixedLen() (int, error) {
	switch t {
	case ExtensionImmutableOwner:
		return 0, nil
	case ExtensionMetadataPointer:
		return MetadataPointerLen, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrVariableLengthExtension, t)
	}
}

// ExtensionSpace is the on-account size of a TLV entry holding valueLen
// bytes.
func ExtensionSpace(valueLen int) int {
	return tlvHeaderSize + valueLen
}

// MintSpace returns the account length of a mint carrying the given
// fixed-size extensions.
func MintSpace(exts ...ExtensionType) (int, error) {
	return extendedSpace(MintSize, exts)
}

// AccountSpace returns the account length of a token account carrying the
// given fixed-size extensions.
func AccountSpace(exts ...ExtensionType) (int, error) {
	return extendedSpace(TokenAccountSize, exts)
}

func extendedSpace(base int, exts []ExtensionType) (int, error) {
	if len(exts) == 0 {
		return base, nil
	}
	size := tlvStart
	for _, ext := range exts {
		n, err := ext.fixedLen()
		if err != nil {
			return 0, err
		}
		size += ExtensionSpace(n)
	}
	return size, nil
}

// HasExtensions reports whether data is long enough to carry an account
// type byte.
func HasExtensions(data []byte) bool {
	return len(data) > TokenAccountSize
}

// GetAccountType returns the account type byte of an extended account.
func GetAccountType(data []byte) AccountType {
	if !HasExtensions(data) {
		return AccountTypeUninitialized
	}
	return AccountType(data[accountTypeOffset])
}

// SetAccountType stamps the account type byte of an extended account.
func SetAccountType(data []byte, t AccountType) error {
	if !HasExtensions(data) {
		return fmt.Errorf("%w: no room for account type", ErrInvalidLayout)
	}
	data[accountTypeOffset] = byte(t)
	return nil
}

type tlvEntry struct {
	typ    ExtensionType
	offset int // start of the value
	length int
}

// walkTLV lists the initialized entries of data. An entry with type zero
// marks the end of the used region.
func walkTLV(data []byte) ([]tlvEntry, int, error) {
	if !HasExtensions(data) {
		return nil, len(data), nil
	}
	var entries []tlvEntry
	off := tlvStart
	for off+tlvHeaderSize <= len(data) {
		typ := ExtensionType(binary.LittleEndian.Uint16(data[off:]))
		if typ == ExtensionUninitialized {
			return entries, off, nil
		}
		length := int(binary.LittleEndian.Uint16(data[off+2:]))
		valueStart := off + tlvHeaderSize
		if valueStart+length > len(data) {
			return nil, 0, fmt.Errorf("%w: %s entry overruns account", ErrInvalidLayout, typ)
		}
		entries = append(entries, tlvEntry{typ: typ, offset: valueStart, length: length})
		off = valueStart + length
	}
	return entries, off, nil
}

// Extensions returns the types of the extensions initialized on data, in
// on-account order.
func Extensions(data []byte) ([]ExtensionType, error) {
	entries, _, err := walkTLV(data)
	if err != nil {
		return nil, err
	}
	out := make([]ExtensionType, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.typ)
	}
	return out, nil
}

// GetExtension returns the value bytes of extension t.
func GetExtension(data []byte, t ExtensionType) ([]byte, error) {
	entries, _, err := walkTLV(data)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.typ == t {
			return data[e.offset : e.offset+e.length], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrExtensionNotFound, t)
}

// SetExtension writes value as extension t and returns the resulting account
// data. Existing entries are rewritten in place when the length is unchanged;
// otherwise the data is resized to exactly fit every entry. New entries reuse
// unused trailing space before growing the account.
func SetExtension(data []byte, t ExtensionType, value []byte) ([]byte, error) {
	if len(value) > 0xffff {
		return nil, fmt.Errorf("%w: %d bytes", ErrExtensionTooLarge, len(value))
	}
	if !HasExtensions(data) {
		return nil, fmt.Errorf("%w: account has no extension area", ErrInvalidLayout)
	}
	entries, used, err := walkTLV(data)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.typ != t {
			continue
		}
		if e.length == len(value) {
			copy(data[e.offset:], value)
			return data, nil
		}
		out := make([]byte, 0, used-e.length+len(value))
		out = append(out, data[:e.offset-tlvHeaderSize]...)
		out = appendTLV(out, t, value)
		out = append(out, data[e.offset+e.length:used]...)
		return out, nil
	}

	need := used + ExtensionSpace(len(value))
	if need > len(data) {
		grown := make([]byte, need)
		copy(grown, data[:used])
		data = grown
	}
	binary.LittleEndian.PutUint16(data[used:], uint16(t))
	binary.LittleEndian.PutUint16(data[used+2:], uint16(len(value)))
	copy(data[used+tlvHeaderSize:], value)
	return data, nil
}

func appendTLV(dst []byte, t ExtensionType, value []byte) []byte {
	var hdr [tlvHeaderSize]byte
	binary.LittleEndian.PutUint16(hdr[0:], uint16(t))
	binary.LittleEndian.PutUint16(hdr[2:], uint16(len(value)))
	dst = append(dst, hdr[:]...)
	return append(dst, value...)
}
