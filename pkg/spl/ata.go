package spl

import (
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
)

// AssociatedInstruction selects the associated token account instruction.
type AssociatedInstruction uint8

const (
	AssociatedCreate           AssociatedInstruction = 0
	AssociatedCreateIdempotent AssociatedInstruction = 1
)

// FindAssociatedTokenAddress derives the associated token account of wallet
// for mint under tokenProgram.
func FindAssociatedTokenAddress(wallet, mint, tokenProgram common.PublicKey) (common.PublicKey, uint8, error) {
	addr, bump, err := common.FindProgramAddress(
		[][]byte{wallet.Bytes(), tokenProgram.Bytes(), mint.Bytes()},
		AssociatedTokenProgramID,
	)
	if err != nil {
		return common.PublicKey{}, 0, fmt.Errorf("derive associated token address: %w", err)
	}
	return addr, bump, nil
}

// DecodeAssociatedInstruction decodes the instruction selector. Empty data
// is the original Create.
func DecodeAssociatedInstruction(data []byte) (AssociatedInstruction, error) {
	if len(data) == 0 {
		return AssociatedCreate, nil
	}
	switch kind := AssociatedInstruction(data[0]); kind {
	case AssociatedCreate, AssociatedCreateIdempotent:
		return kind, nil
	default:
		return 0, fmt.Errorf("%w: unsupported associated token instruction %d", ErrInvalidInstructionData, data[0])
	}
}

// CreateAssociatedTokenAccount builds the ATA creation for wallet and mint
// under tokenProgram. Idempotent creation succeeds when the account already
// exists with the expected mint and owner.
func CreateAssociatedTokenAccount(funder, wallet, mint, tokenProgram common.PublicKey, idempotent bool) (types.Instruction, error) {
	ata, _, err := FindAssociatedTokenAddress(wallet, mint, tokenProgram)
	if err != nil {
		return types.Instruction{}, err
	}
	kind := AssociatedCreate
	if idempotent {
		kind = AssociatedCreateIdempotent
	}
	return types.Instruction{
		ProgramID: AssociatedTokenProgramID,
		Accounts: []types.AccountMeta{
			{PubKey: funder, IsSigner: true, IsWritable: true},
			{PubKey: ata, IsSigner: false, IsWritable: true},
			{PubKey: wallet, IsSigner: false, IsWritable: false},
			{PubKey: mint, IsSigner: false, IsWritable: false},
			{PubKey: SystemProgramID, IsSigner: false, IsWritable: false},
			{PubKey: tokenProgram, IsSigner: false, IsWritable: false},
		},
		Data: []byte{byte(kind)},
	}, nil
}
