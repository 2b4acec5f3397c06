package spl

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/token"
	"github.com/blocto/solana-go-sdk/types"
)

// TokenInstruction is the leading tag byte of a token program instruction.
type TokenInstruction uint8

const (
	TokenInitializeMint           TokenInstruction = 0
	TokenInitializeAccount        TokenInstruction = 1
	TokenTransfer                 TokenInstruction = 3
	TokenSetAuthority             TokenInstruction = 6
	TokenMintTo                   TokenInstruction = 7
	TokenInitializeAccount3       TokenInstruction = 18
	TokenInitializeMint2          TokenInstruction = 20
	TokenInitializeImmutableOwner TokenInstruction = 22
	TokenMetadataPointerExtension TokenInstruction = 39
)

func (i TokenInstruction) String() string {
	switch i {
	case TokenInitializeMint:
		return "InitializeMint"
	case TokenInitializeAccount:
		return "InitializeAccount"
	case TokenTransfer:
		return "Transfer"
	case TokenSetAuthority:
		return "SetAuthority"
	case TokenMintTo:
		return "MintTo"
	case TokenInitializeAccount3:
		return "InitializeAccount3"
	case TokenInitializeMint2:
		return "InitializeMint2"
	case TokenInitializeImmutableOwner:
		return "InitializeImmutableOwner"
	case TokenMetadataPointerExtension:
		return "MetadataPointerExtension"
	default:
		return fmt.Sprintf("TokenInstruction(%d)", uint8(i))
	}
}

// AuthorityType selects the authority changed by SetAuthority.
type AuthorityType uint8

const (
	AuthorityMintTokens AuthorityType = iota
	AuthorityFreezeAccount
	AuthorityAccountOwner
	AuthorityCloseAccount
)

// ErrInvalidInstructionData is returned for undecodable instruction data.
var ErrInvalidInstructionData = errors.New("invalid instruction data")

// TokenArgs is a decoded token program instruction. Only the fields of the
// decoded instruction are set.
type TokenArgs struct {
	Instruction     TokenInstruction
	Decimals        uint8
	Amount          uint64
	Authority       *common.PublicKey
	FreezeAuthority *common.PublicKey
	AuthorityType   AuthorityType
	Owner           common.PublicKey

	// Metadata pointer initialize.
	PointerAuthority *common.PublicKey
	PointerAddress   *common.PublicKey
}

// DecodeTokenInstruction decodes the instructions both token programs share
// plus the Token-2022 extensions this module uses.
func DecodeTokenInstruction(data []byte) (*TokenArgs, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrInvalidInstructionData)
	}
	args := &TokenArgs{Instruction: TokenInstruction(data[0])}
	rest := data[1:]
	var err error
	switch args.Instruction {
	case TokenInitializeMint, TokenInitializeMint2:
		if len(rest) < 1+32 {
			return nil, fmt.Errorf("%w: short %s", ErrInvalidInstructionData, args.Instruction)
		}
		args.Decimals = rest[0]
		auth := common.PublicKeyFromBytes(rest[1:33])
		args.Authority = &auth
		if args.FreezeAuthority, _, err = decodeOptionKey(rest[33:]); err != nil {
			return nil, err
		}
	case TokenMintTo, TokenTransfer:
		if len(rest) < 8 {
			return nil, fmt.Errorf("%w: short %s", ErrInvalidInstructionData, args.Instruction)
		}
		args.Amount = binary.LittleEndian.Uint64(rest)
	case TokenSetAuthority:
		if len(rest) < 1 {
			return nil, fmt.Errorf("%w: short SetAuthority", ErrInvalidInstructionData)
		}
		args.AuthorityType = AuthorityType(rest[0])
		if args.Authority, _, err = decodeOptionKey(rest[1:]); err != nil {
			return nil, err
		}
	case TokenInitializeAccount3:
		if len(rest) < 32 {
			return nil, fmt.Errorf("%w: short InitializeAccount3", ErrInvalidInstructionData)
		}
		args.Owner = common.PublicKeyFromBytes(rest[:32])
	case TokenInitializeAccount, TokenInitializeImmutableOwner:
	case TokenMetadataPointerExtension:
		// Only the Initialize sub-instruction is supported.
		if len(rest) < 1+MetadataPointerLen || rest[0] != 0 {
			return nil, fmt.Errorf("%w: unsupported metadata pointer instruction", ErrInvalidInstructionData)
		}
		p, err := UnpackMetadataPointer(rest[1 : 1+MetadataPointerLen])
		if err != nil {
			return nil, err
		}
		args.PointerAuthority = p.Authority
		args.PointerAddress = p.MetadataAddress
	default:
		return nil, fmt.Errorf("%w: unsupported %s", ErrInvalidInstructionData, args.Instruction)
	}
	return args, nil
}

// decodeOptionKey reads an instruction-encoded optional key: one tag byte,
// then 32 bytes when set. A missing tag decodes as none.
func decodeOptionKey(b []byte) (*common.PublicKey, int, error) {
	if len(b) == 0 || b[0] == 0 {
		return nil, 1, nil
	}
	if b[0] != 1 || len(b) < 33 {
		return nil, 0, fmt.Errorf("%w: bad option key", ErrInvalidInstructionData)
	}
	key := common.PublicKeyFromBytes(b[1:33])
	return &key, 33, nil
}

func appendOptionKey(dst []byte, key *common.PublicKey) []byte {
	if key == nil {
		return append(dst, 0)
	}
	dst = append(dst, 1)
	return append(dst, key[:]...)
}

// InitializeMint2 builds the rent-sysvar-free mint initialization.
func InitializeMint2(programID, mint, mintAuthority common.PublicKey, freezeAuthority *common.PublicKey, decimals uint8) types.Instruction {
	data := []byte{byte(TokenInitializeMint2), decimals}
	data = append(data, mintAuthority[:]...)
	data = appendOptionKey(data, freezeAuthority)
	return types.Instruction{
		ProgramID: programID,
		Accounts: []types.AccountMeta{
			{PubKey: mint, IsSigner: false, IsWritable: true},
		},
		Data: data,
	}
}

// MintTo builds a single-authority MintTo against programID.
func MintTo(programID, mint, dest, authority common.PublicKey, amount uint64) types.Instruction {
	ix := token.MintTo(token.MintToParam{
		Mint:   mint,
		To:     dest,
		Auth:   authority,
		Amount: amount,
	})
	ix.ProgramID = programID
	return ix
}

// SetAuthority builds a SetAuthority on a mint or token account. A nil
// newAuthority clears the authority.
func SetAuthority(programID, target, current common.PublicKey, kind AuthorityType, newAuthority *common.PublicKey) types.Instruction {
	data := []byte{byte(TokenSetAuthority), byte(kind)}
	data = appendOptionKey(data, newAuthority)
	return types.Instruction{
		ProgramID: programID,
		Accounts: []types.AccountMeta{
			{PubKey: target, IsSigner: false, IsWritable: true},
			{PubKey: current, IsSigner: true, IsWritable: false},
		},
		Data: data,
	}
}

// InitializeAccount3 builds a token account initialization with the owner
// carried in the data.
func InitializeAccount3(programID, account, mint, owner common.PublicKey) types.Instruction {
	data := append([]byte{byte(TokenInitializeAccount3)}, owner[:]...)
	return types.Instruction{
		ProgramID: programID,
		Accounts: []types.AccountMeta{
			{PubKey: account, IsSigner: false, IsWritable: true},
			{PubKey: mint, IsSigner: false, IsWritable: false},
		},
		Data: data,
	}
}

// InitializeImmutableOwner builds the Token-2022 ImmutableOwner extension
// initialization for an uninitialized token account.
func InitializeImmutableOwner(account common.PublicKey) types.Instruction {
	return types.Instruction{
		ProgramID: Token2022ProgramID,
		Accounts: []types.AccountMeta{
			{PubKey: account, IsSigner: false, IsWritable: true},
		},
		Data: []byte{byte(TokenInitializeImmutableOwner)},
	}
}

// InitializeMetadataPointer builds the Token-2022 metadata pointer
// initialization. It must run before the mint is initialized.
func InitializeMetadataPointer(mint common.PublicKey, authority, metadataAddress *common.PublicKey) types.Instruction {
	data := []byte{byte(TokenMetadataPointerExtension), 0}
	data = append(data, MetadataPointer{Authority: authority, MetadataAddress: metadataAddress}.Pack()...)
	return types.Instruction{
		ProgramID: Token2022ProgramID,
		Accounts: []types.AccountMeta{
			{PubKey: mint, IsSigner: false, IsWritable: true},
		},
		Data: data,
	}
}
