package spl

import (
	"errors"
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/near/borsh-go"
)

// KeyValue is one additional metadata field.
type KeyValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// TokenMetadata is the token metadata interface record stored as the
// TokenMetadata extension of a Token-2022 mint. A zero UpdateAuthority
// means the metadata is immutable.
type TokenMetadata struct {
	UpdateAuthority    common.PublicKey `json:"update_authority"`
	Mint               common.PublicKey `json:"mint"`
	Name               string           `json:"name"`
	Symbol             string           `json:"symbol"`
	URI                string           `json:"uri"`
	AdditionalMetadata []KeyValue       `json:"additional_metadata"`
}

// FieldKind selects which metadata field an update writes.
type FieldKind uint8

const (
	FieldName FieldKind = iota
	FieldSymbol
	FieldURI
	FieldKey
)

// Field names a metadata field. Key is only used with FieldKey.
type Field struct {
	Kind FieldKind
	Key  string
}

// KeyField returns the Field for an additional metadata key.
func KeyField(key string) Field {
	return Field{Kind: FieldKey, Key: key}
}

func (f Field) String() string {
	switch f.Kind {
	case FieldName:
		return "name"
	case FieldSymbol:
		return "symbol"
	case FieldURI:
		return "uri"
	default:
		return f.Key
	}
}

// ErrInvalidField is returned for a field kind outside the interface.
var ErrInvalidField = errors.New("invalid metadata field")

// Pack serializes m the way it is stored inside the mint account.
func (m *TokenMetadata) Pack() ([]byte, error) {
	b, err := borsh.Serialize(*m)
	if err != nil {
		return nil, fmt.Errorf("serialize token metadata: %w", err)
	}
	return b, nil
}

// UnpackTokenMetadata decodes a TokenMetadata extension value.
func UnpackTokenMetadata(b []byte) (*TokenMetadata, error) {
	var m TokenMetadata
	if err := borsh.Deserialize(&m, b); err != nil {
		return nil, fmt.Errorf("deserialize token metadata: %w", err)
	}
	return &m, nil
}

// PackedLen is the exact serialized length of m.
func (m *TokenMetadata) PackedLen() (int, error) {
	b, err := m.Pack()
	if err != nil {
		return 0, err
	}
	return len(b), nil
}

// EncodedLen computes the serialized length of m from its field lengths.
func (m *TokenMetadata) EncodedLen() int {
	n := 32 + 32
	n += 4 + len(m.Name)
	n += 4 + len(m.Symbol)
	n += 4 + len(m.URI)
	n += 4
	for _, kv := range m.AdditionalMetadata {
		n += 4 + len(kv.Key) + 4 + len(kv.Value)
	}
	return n
}

// Get returns the value of field f.
func (m *TokenMetadata) Get(f Field) (string, bool) {
	switch f.Kind {
	case FieldName:
		return m.Name, true
	case FieldSymbol:
		return m.Symbol, true
	case FieldURI:
		return m.URI, true
	case FieldKey:
		for _, kv := range m.AdditionalMetadata {
			if kv.Key == f.Key {
				return kv.Value, true
			}
		}
	}
	return "", false
}

// Update sets field f to value. Additional keys are replaced in place or
// appended.
func (m *TokenMetadata) Update(f Field, value string) error {
	switch f.Kind {
	case FieldName:
		m.Name = value
	case FieldSymbol:
		m.Symbol = value
	case FieldURI:
		m.URI = value
	case FieldKey:
		for i := range m.AdditionalMetadata {
			if m.AdditionalMetadata[i].Key == f.Key {
				m.AdditionalMetadata[i].Value = value
				return nil
			}
		}
		m.AdditionalMetadata = append(m.AdditionalMetadata, KeyValue{Key: f.Key, Value: value})
	default:
		return fmt.Errorf("%w: kind %d", ErrInvalidField, f.Kind)
	}
	return nil
}
