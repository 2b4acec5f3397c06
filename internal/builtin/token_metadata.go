package builtin

import (
	"errors"
	"fmt"

	"github.com/blocto/solana-go-sdk/common"

	"github.com/Klingon-tech/klingnet-nft/internal/runtime"
	"github.com/Klingon-tech/klingnet-nft/pkg/spl"
)

// processMetadata handles the token metadata interface for metadata
// embedded in a Token-2022 mint.
func (p *tokenProgram) processMetadata(ctx *runtime.InvokeContext) error {
	ix, err := spl.DecodeMetadataInstruction(ctx.Data)
	if err != nil {
		return fmt.Errorf("%w: %v", runtime.ErrInvalidInstructionData, err)
	}
	switch {
	case ix.Initialize != nil:
		ctx.Log("Instruction: TokenMetadataInstruction: Initialize")
		return p.initializeTokenMetadata(ctx, ix.Initialize)
	case ix.UpdateField != nil:
		ctx.Log("Instruction: TokenMetadataInstruction: UpdateField")
		return p.updateTokenMetadataField(ctx, ix.UpdateField)
	}
	return runtime.ErrInvalidInstructionData
}

func (p *tokenProgram) initializeTokenMetadata(ctx *runtime.InvokeContext, args *spl.MetadataInitializeArgs) error {
	metadata, err := ctx.Writable(0)
	if err != nil {
		return err
	}
	updateAuthority, err := ctx.Account(1)
	if err != nil {
		return err
	}
	mintInfo, err := ctx.Account(2)
	if err != nil {
		return err
	}
	mintAuthority, err := ctx.Account(3)
	if err != nil {
		return err
	}
	if metadata.Key != mintInfo.Key {
		return accountErr(metadata.Key, ErrMetadataLocation)
	}
	mint, err := p.loadMint(mintInfo)
	if err != nil {
		return err
	}
	if mint.MintAuthority == nil {
		return accountErr(mintInfo.Key, ErrFixedSupply)
	}
	if err := checkAuthority(mintAuthority, *mint.MintAuthority); err != nil {
		return err
	}
	if err := requireSelfPointer(mintInfo); err != nil {
		return err
	}
	if _, err := spl.GetExtension(mintInfo.Data, spl.ExtensionTokenMetadata); err == nil {
		return accountErr(mintInfo.Key, spl.ErrAlreadyInitialize)
	}

	tm := &spl.TokenMetadata{
		UpdateAuthority: updateAuthority.Key,
		Mint:            mintInfo.Key,
		Name:            args.Name,
		Symbol:          args.Symbol,
		URI:             args.URI,
	}
	return writeTokenMetadata(mintInfo, tm)
}

func (p *tokenProgram) updateTokenMetadataField(ctx *runtime.InvokeContext, args *spl.MetadataUpdateFieldArgs) error {
	metadata, err := ctx.Writable(0)
	if err != nil {
		return err
	}
	authority, err := ctx.Account(1)
	if err != nil {
		return err
	}
	if err := requireOwner(metadata, p.id); err != nil {
		return err
	}
	tm, err := readTokenMetadata(metadata)
	if err != nil {
		return err
	}
	if tm.UpdateAuthority == (common.PublicKey{}) {
		return accountErr(metadata.Key, ErrImmutableMetadata)
	}
	if err := checkAuthority(authority, tm.UpdateAuthority); err != nil {
		return err
	}
	if err := tm.Update(args.Field, args.Value); err != nil {
		return fmt.Errorf("%w: %v", runtime.ErrInvalidInstructionData, err)
	}
	return writeTokenMetadata(metadata, tm)
}

// requireSelfPointer checks that the mint's metadata pointer names the mint.
func requireSelfPointer(mint *runtime.AccountInfo) error {
	raw, err := spl.GetExtension(mint.Data, spl.ExtensionMetadataPointer)
	if err != nil {
		return accountErr(mint.Key, ErrNoMetadataPointer)
	}
	ptr, err := spl.UnpackMetadataPointer(raw)
	if err != nil {
		return accountErr(mint.Key, fmt.Errorf("%w: %v", runtime.ErrInvalidAccountData, err))
	}
	if ptr.MetadataAddress == nil || *ptr.MetadataAddress != mint.Key {
		return accountErr(mint.Key, ErrNoMetadataPointer)
	}
	return nil
}

func readTokenMetadata(ai *runtime.AccountInfo) (*spl.TokenMetadata, error) {
	raw, err := spl.GetExtension(ai.Data, spl.ExtensionTokenMetadata)
	if errors.Is(err, spl.ErrExtensionNotFound) {
		return nil, accountErr(ai.Key, runtime.ErrUninitializedAccount)
	}
	if err != nil {
		return nil, accountErr(ai.Key, fmt.Errorf("%w: %v", runtime.ErrInvalidAccountData, err))
	}
	tm, err := spl.UnpackTokenMetadata(raw)
	if err != nil {
		return nil, accountErr(ai.Key, fmt.Errorf("%w: %v", runtime.ErrInvalidAccountData, err))
	}
	return tm, nil
}

// writeTokenMetadata stores tm in the mint, reallocating the account to fit
// the new value exactly. The account must already hold the lamports for its
// new size by the end of the transaction.
func writeTokenMetadata(ai *runtime.AccountInfo, tm *spl.TokenMetadata) error {
	value, err := tm.Pack()
	if err != nil {
		return err
	}
	data, err := spl.SetExtension(ai.Data, spl.ExtensionTokenMetadata, value)
	if err != nil {
		return accountErr(ai.Key, fmt.Errorf("%w: %v", runtime.ErrInvalidAccountData, err))
	}
	ai.Data = data
	return nil
}
