package spl

import (
	"encoding/binary"
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
)

// SystemInstruction is the little-endian u32 tag of a system instruction.
type SystemInstruction uint32

const (
	SystemCreateAccount SystemInstruction = 0
	SystemAssign        SystemInstruction = 1
	SystemTransfer      SystemInstruction = 2
	SystemAllocate      SystemInstruction = 8
)

func (i SystemInstruction) String() string {
	switch i {
	case SystemCreateAccount:
		return "CreateAccount"
	case SystemAssign:
		return "Assign"
	case SystemTransfer:
		return "Transfer"
	case SystemAllocate:
		return "Allocate"
	default:
		return fmt.Sprintf("SystemInstruction(%d)", uint32(i))
	}
}

// SystemArgs is a decoded system instruction.
type SystemArgs struct {
	Instruction SystemInstruction
	Lamports    uint64
	Space       uint64
	Owner       common.PublicKey
}

// DecodeSystemInstruction decodes the system instructions the runtime
// supports.
func DecodeSystemInstruction(data []byte) (*SystemArgs, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("%w: short system instruction", ErrInvalidInstructionData)
	}
	args := &SystemArgs{Instruction: SystemInstruction(binary.LittleEndian.Uint32(data))}
	rest := data[4:]
	switch args.Instruction {
	case SystemCreateAccount:
		if len(rest) < 8+8+32 {
			return nil, fmt.Errorf("%w: short CreateAccount", ErrInvalidInstructionData)
		}
		args.Lamports = binary.LittleEndian.Uint64(rest[0:])
		args.Space = binary.LittleEndian.Uint64(rest[8:])
		args.Owner = common.PublicKeyFromBytes(rest[16:48])
	case SystemAssign:
		if len(rest) < 32 {
			return nil, fmt.Errorf("%w: short Assign", ErrInvalidInstructionData)
		}
		args.Owner = common.PublicKeyFromBytes(rest[:32])
	case SystemTransfer:
		if len(rest) < 8 {
			return nil, fmt.Errorf("%w: short Transfer", ErrInvalidInstructionData)
		}
		args.Lamports = binary.LittleEndian.Uint64(rest)
	case SystemAllocate:
		if len(rest) < 8 {
			return nil, fmt.Errorf("%w: short Allocate", ErrInvalidInstructionData)
		}
		args.Space = binary.LittleEndian.Uint64(rest)
	default:
		return nil, fmt.Errorf("%w: unsupported %s", ErrInvalidInstructionData, args.Instruction)
	}
	return args, nil
}

// Allocate builds a system Allocate.
func Allocate(account common.PublicKey, space uint64) types.Instruction {
	data := make([]byte, 12)
	binary.LittleEndian.PutUint32(data, uint32(SystemAllocate))
	binary.LittleEndian.PutUint64(data[4:], space)
	return types.Instruction{
		ProgramID: SystemProgramID,
		Accounts: []types.AccountMeta{
			{PubKey: account, IsSigner: true, IsWritable: true},
		},
		Data: data,
	}
}

// Assign builds a system Assign of account to owner.
func Assign(account, owner common.PublicKey) types.Instruction {
	data := binary.LittleEndian.AppendUint32(nil, uint32(SystemAssign))
	data = append(data, owner[:]...)
	return types.Instruction{
		ProgramID: SystemProgramID,
		Accounts: []types.AccountMeta{
			{PubKey: account, IsSigner: true, IsWritable: true},
		},
		Data: data,
	}
}

// Transfer builds a system lamport transfer.
func Transfer(from, to common.PublicKey, lamports uint64) types.Instruction {
	data := binary.LittleEndian.AppendUint32(nil, uint32(SystemTransfer))
	data = binary.LittleEndian.AppendUint64(data, lamports)
	return types.Instruction{
		ProgramID: SystemProgramID,
		Accounts: []types.AccountMeta{
			{PubKey: from, IsSigner: true, IsWritable: true},
			{PubKey: to, IsSigner: false, IsWritable: true},
		},
		Data: data,
	}
}
