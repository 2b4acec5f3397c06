package spl

import (
	"encoding/binary"
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/near/borsh-go"
)

// MetadataInstruction is a decoded token metadata interface instruction.
type MetadataInstruction struct {
	Initialize  *MetadataInitializeArgs
	UpdateField *MetadataUpdateFieldArgs
}

// MetadataInitializeArgs are the arguments of the interface Initialize.
type MetadataInitializeArgs struct {
	Name   string
	Symbol string
	URI    string
}

// MetadataUpdateFieldArgs are the arguments of the interface UpdateField.
type MetadataUpdateFieldArgs struct {
	Field Field
	Value string
}

// IsMetadataInstruction reports whether data carries a token metadata
// interface discriminator.
func IsMetadataInstruction(data []byte) bool {
	return MetadataInitializeDiscriminator.HasPrefix(data) || MetadataUpdateFieldDiscriminator.HasPrefix(data)
}

// DecodeMetadataInstruction decodes a token metadata interface instruction.
func DecodeMetadataInstruction(data []byte) (*MetadataInstruction, error) {
	switch {
	case MetadataInitializeDiscriminator.HasPrefix(data):
		var args MetadataInitializeArgs
		if err := borsh.Deserialize(&args, data[8:]); err != nil {
			return nil, fmt.Errorf("%w: metadata initialize: %v", ErrInvalidInstructionData, err)
		}
		return &MetadataInstruction{Initialize: &args}, nil
	case MetadataUpdateFieldDiscriminator.HasPrefix(data):
		body := data[8:]
		if len(body) < 1 {
			return nil, fmt.Errorf("%w: metadata update missing field", ErrInvalidInstructionData)
		}
		f := Field{Kind: FieldKind(body[0])}
		body = body[1:]
		if f.Kind == FieldKey {
			key, n, err := readString(body)
			if err != nil {
				return nil, err
			}
			f.Key = key
			body = body[n:]
		} else if f.Kind > FieldKey {
			return nil, fmt.Errorf("%w: kind %d", ErrInvalidField, f.Kind)
		}
		value, _, err := readString(body)
		if err != nil {
			return nil, err
		}
		return &MetadataInstruction{UpdateField: &MetadataUpdateFieldArgs{Field: f, Value: value}}, nil
	default:
		return nil, fmt.Errorf("%w: unknown metadata discriminator", ErrInvalidInstructionData)
	}
}

func readString(b []byte) (string, int, error) {
	var s string
	if len(b) < 4 {
		return "", 0, fmt.Errorf("%w: short string", ErrInvalidInstructionData)
	}
	n := 4 + int(binary.LittleEndian.Uint32(b))
	if n > len(b) {
		return "", 0, fmt.Errorf("%w: string overruns data", ErrInvalidInstructionData)
	}
	if err := borsh.Deserialize(&s, b[:n]); err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrInvalidInstructionData, err)
	}
	return s, n, nil
}

// InitializeTokenMetadata builds the interface Initialize writing name,
// symbol and uri into the metadata account. For embedded metadata the
// metadata account is the mint itself.
func InitializeTokenMetadata(programID, metadata, updateAuthority, mint, mintAuthority common.PublicKey, name, symbol, uri string) (types.Instruction, error) {
	body, err := borsh.Serialize(MetadataInitializeArgs{Name: name, Symbol: symbol, URI: uri})
	if err != nil {
		return types.Instruction{}, fmt.Errorf("serialize metadata initialize: %w", err)
	}
	data := append([]byte{}, MetadataInitializeDiscriminator[:]...)
	data = append(data, body...)
	return types.Instruction{
		ProgramID: programID,
		Accounts: []types.AccountMeta{
			{PubKey: metadata, IsSigner: false, IsWritable: true},
			{PubKey: updateAuthority, IsSigner: false, IsWritable: false},
			{PubKey: mint, IsSigner: false, IsWritable: false},
			{PubKey: mintAuthority, IsSigner: true, IsWritable: false},
		},
		Data: data,
	}, nil
}

// UpdateTokenMetadataField builds the interface UpdateField.
func UpdateTokenMetadataField(programID, metadata, updateAuthority common.PublicKey, field Field, value string) (types.Instruction, error) {
	data := append([]byte{}, MetadataUpdateFieldDiscriminator[:]...)
	data = append(data, byte(field.Kind))
	if field.Kind == FieldKey {
		key, err := borsh.Serialize(field.Key)
		if err != nil {
			return types.Instruction{}, fmt.Errorf("serialize field key: %w", err)
		}
		data = append(data, key...)
	}
	v, err := borsh.Serialize(value)
	if err != nil {
		return types.Instruction{}, fmt.Errorf("serialize field value: %w", err)
	}
	data = append(data, v...)
	return types.Instruction{
		ProgramID: programID,
		Accounts: []types.AccountMeta{
			{PubKey: metadata, IsSigner: false, IsWritable: true},
			{PubKey: updateAuthority, IsSigner: true, IsWritable: false},
		},
		Data: data,
	}, nil
}
