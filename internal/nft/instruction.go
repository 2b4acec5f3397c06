package nft

import (
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/near/borsh-go"

	"github.com/Klingon-tech/klingnet-nft/internal/runtime"
	"github.com/Klingon-tech/klingnet-nft/pkg/spl"
)

// Instruction discriminators.
var (
	mintNFTDiscriminator    = spl.InstructionDiscriminator("mint_nft")
	initializeDiscriminator = spl.InstructionDiscriminator("initialize")
)

// MintArgs are the arguments of mint_nft.
type MintArgs struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	URI    string `json:"uri"`
}

func encodeInstruction(d spl.Discriminator, args any) ([]byte, error) {
	data := append([]byte{}, d[:]...)
	if args == nil {
		return data, nil
	}
	body, err := borsh.Serialize(args)
	if err != nil {
		return nil, fmt.Errorf("serialize instruction args: %w", err)
	}
	return append(data, body...), nil
}

func decodeMintArgs(data []byte) (*MintArgs, error) {
	var args MintArgs
	if err := borsh.Deserialize(&args, data[len(mintNFTDiscriminator):]); err != nil {
		return nil, fmt.Errorf("%w: mint_nft args: %v", runtime.ErrInvalidInstructionData, err)
	}
	return &args, nil
}

// InitializeInstruction builds the no-op initialize of programID.
func InitializeInstruction(programID common.PublicKey) types.Instruction {
	data, _ := encodeInstruction(initializeDiscriminator, nil)
	return types.Instruction{ProgramID: programID, Data: data}
}

// ExtensionAccounts are the addresses mint_nft on token_2022_nft uses.
type ExtensionAccounts struct {
	Signer       common.PublicKey
	Mint         common.PublicKey
	TokenAccount common.PublicKey
	Authority    common.PublicKey
}

// NewExtensionAccounts derives the authority and holding account for a mint
// of signer.
func NewExtensionAccounts(programID, signer, mint common.PublicKey) (ExtensionAccounts, error) {
	authority, _, err := DeriveAuthority(programID)
	if err != nil {
		return ExtensionAccounts{}, err
	}
	ata, _, err := spl.FindAssociatedTokenAddress(signer, mint, spl.Token2022ProgramID)
	if err != nil {
		return ExtensionAccounts{}, err
	}
	return ExtensionAccounts{Signer: signer, Mint: mint, TokenAccount: ata, Authority: authority}, nil
}

// MintExtensionInstruction builds mint_nft on the extension program. Both
// signer and mint must sign the transaction.
func MintExtensionInstruction(programID common.PublicKey, accts ExtensionAccounts, args MintArgs) (types.Instruction, error) {
	data, err := encodeInstruction(mintNFTDiscriminator, args)
	if err != nil {
		return types.Instruction{}, err
	}
	return types.Instruction{
		ProgramID: programID,
		Accounts: []types.AccountMeta{
			{PubKey: accts.Signer, IsSigner: true, IsWritable: true},
			{PubKey: accts.Mint, IsSigner: true, IsWritable: true},
			{PubKey: accts.TokenAccount, IsSigner: false, IsWritable: true},
			{PubKey: accts.Authority, IsSigner: false, IsWritable: true},
			{PubKey: spl.SystemProgramID, IsSigner: false, IsWritable: false},
			{PubKey: spl.Token2022ProgramID, IsSigner: false, IsWritable: false},
			{PubKey: spl.AssociatedTokenProgramID, IsSigner: false, IsWritable: false},
			{PubKey: spl.RentSysvarID, IsSigner: false, IsWritable: false},
		},
		Data: data,
	}, nil
}

// LegacyAccounts are the addresses mint_nft on metaplex_nft uses.
type LegacyAccounts struct {
	Signer        common.PublicKey
	Mint          common.PublicKey
	TokenAccount  common.PublicKey
	Metadata      common.PublicKey
	MasterEdition common.PublicKey
	TokenProgram  common.PublicKey
}

// NewLegacyAccounts derives the holding account and the Metaplex records of
// a mint of signer under tokenProgram.
func NewLegacyAccounts(signer, mint, tokenProgram common.PublicKey) (LegacyAccounts, error) {
	ata, _, err := spl.FindAssociatedTokenAddress(signer, mint, tokenProgram)
	if err != nil {
		return LegacyAccounts{}, err
	}
	metadata, err := spl.FindMetadataAddress(mint)
	if err != nil {
		return LegacyAccounts{}, err
	}
	edition, err := spl.FindMasterEditionAddress(mint)
	if err != nil {
		return LegacyAccounts{}, err
	}
	return LegacyAccounts{
		Signer:        signer,
		Mint:          mint,
		TokenAccount:  ata,
		Metadata:      metadata,
		MasterEdition: edition,
		TokenProgram:  tokenProgram,
	}, nil
}

// MintLegacyInstruction builds mint_nft on the legacy program.
func MintLegacyInstruction(programID common.PublicKey, accts LegacyAccounts, args MintArgs) (types.Instruction, error) {
	data, err := encodeInstruction(mintNFTDiscriminator, args)
	if err != nil {
		return types.Instruction{}, err
	}
	return types.Instruction{
		ProgramID: programID,
		Accounts: []types.AccountMeta{
			{PubKey: accts.Signer, IsSigner: true, IsWritable: true},
			{PubKey: accts.Mint, IsSigner: false, IsWritable: true},
			{PubKey: accts.TokenAccount, IsSigner: false, IsWritable: true},
			{PubKey: accts.Metadata, IsSigner: false, IsWritable: true},
			{PubKey: accts.MasterEdition, IsSigner: false, IsWritable: true},
			{PubKey: accts.TokenProgram, IsSigner: false, IsWritable: false},
			{PubKey: spl.AssociatedTokenProgramID, IsSigner: false, IsWritable: false},
			{PubKey: spl.MetadataProgramID, IsSigner: false, IsWritable: false},
			{PubKey: spl.SystemProgramID, IsSigner: false, IsWritable: false},
			{PubKey: spl.RentSysvarID, IsSigner: false, IsWritable: false},
		},
		Data: data,
	}, nil
}
