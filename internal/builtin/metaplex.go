package builtin

import (
	"fmt"

	"github.com/blocto/solana-go-sdk/common"

	"github.com/Klingon-tech/klingnet-nft/internal/runtime"
	"github.com/Klingon-tech/klingnet-nft/pkg/spl"
)

func processMetaplex(ctx *runtime.InvokeContext) error {
	if len(ctx.Data) == 0 {
		return runtime.ErrInvalidInstructionData
	}
	body := ctx.Data[1:]
	switch ctx.Data[0] {
	case spl.MetaplexCreateMetadataAccountV3:
		ctx.Log("IX: Create Metadata Accounts v3")
		args, err := spl.DecodeCreateMetadataAccountV3(body)
		if err != nil {
			return fmt.Errorf("%w: %v", runtime.ErrInvalidInstructionData, err)
		}
		return createMetadataAccountV3(ctx, args)
	case spl.MetaplexCreateMasterEditionV3:
		ctx.Log("V3 Create Master Edition")
		args, err := spl.DecodeCreateMasterEditionV3(body)
		if err != nil {
			return fmt.Errorf("%w: %v", runtime.ErrInvalidInstructionData, err)
		}
		return createMasterEditionV3(ctx, args)
	}
	return fmt.Errorf("%w: unsupported metadata instruction %d", runtime.ErrInvalidInstructionData, ctx.Data[0])
}

func createMetadataAccountV3(ctx *runtime.InvokeContext, args *spl.CreateMetadataAccountV3Args) error {
	metadata, err := ctx.Writable(0)
	if err != nil {
		return err
	}
	mintInfo, err := ctx.Account(1)
	if err != nil {
		return err
	}
	mintAuthority, err := ctx.Account(2)
	if err != nil {
		return err
	}
	payer, err := ctx.Signer(3)
	if err != nil {
		return err
	}
	updateAuthority, err := ctx.Account(4)
	if err != nil {
		return err
	}

	if err := args.Data.Validate(); err != nil {
		return fmt.Errorf("%w: %v", runtime.ErrInvalidArgument, err)
	}
	if err := validateCreators(args.Data.Creators, updateAuthority); err != nil {
		return err
	}
	if args.Data.Collection != nil && args.Data.Collection.Verified {
		return fmt.Errorf("%w: collection cannot be verified on create", runtime.ErrInvalidArgument)
	}

	seeds := spl.MetadataSeeds(mintInfo.Key)
	expected, bump, err := common.FindProgramAddress(seeds, spl.MetadataProgramID)
	if err != nil {
		return fmt.Errorf("%w: %v", runtime.ErrInvalidSeeds, err)
	}
	if expected != metadata.Key {
		return accountErr(metadata.Key, spl.ErrMetadataAddress)
	}
	if len(metadata.Data) > 0 || metadata.Owner != spl.SystemProgramID {
		return accountErr(metadata.Key, ErrMetadataExists)
	}

	if !spl.IsTokenProgram(mintInfo.Owner) {
		return accountErr(mintInfo.Key, runtime.ErrIncorrectProgramID)
	}
	mint, err := spl.UnpackMint(mintInfo.Data)
	if err != nil || !mint.IsInitialized {
		return accountErr(mintInfo.Key, runtime.ErrUninitializedAccount)
	}
	if mint.MintAuthority == nil || *mint.MintAuthority != mintAuthority.Key {
		return accountErr(mintAuthority.Key, ErrMintAuthority)
	}
	if !mintAuthority.IsSigner {
		return accountErr(mintAuthority.Key, runtime.ErrAccountNotSigner)
	}

	if err := allocateOwned(ctx, payer, metadata, spl.MaxMetadataLen, spl.MetadataProgramID, append(seeds, []byte{bump})); err != nil {
		return err
	}

	standard := spl.TokenStandardFungible
	if mint.Decimals == 0 {
		standard = spl.TokenStandardFungibleAsset
	}
	record := spl.MetadataAccount{
		Key:               spl.MetaplexKeyMetadataV1,
		UpdateAuthority:   updateAuthority.Key,
		Mint:              mintInfo.Key,
		Data:              args.Data.PuffedData(),
		IsMutable:         args.IsMutable,
		TokenStandard:     &standard,
		Collection:        args.Data.Collection,
		Uses:              args.Data.Uses,
		CollectionDetails: args.CollectionDetails,
	}
	return writeRecord(metadata, record, spl.MaxMetadataLen)
}

func validateCreators(creators *[]spl.Creator, updateAuthority *runtime.AccountInfo) error {
	if creators == nil {
		return nil
	}
	var total int
	for _, c := range *creators {
		if c.Verified && (c.Address != updateAuthority.Key || !updateAuthority.IsSigner) {
			return fmt.Errorf("%w: creator %s cannot be verified", runtime.ErrInvalidArgument, c.Address.ToBase58())
		}
		total += int(c.Share)
	}
	if len(*creators) > 0 && total != 100 {
		return fmt.Errorf("%w: creator shares add up to %d", runtime.ErrInvalidArgument, total)
	}
	return nil
}

func createMasterEditionV3(ctx *runtime.InvokeContext, args *spl.CreateMasterEditionV3Args) error {
	edition, err := ctx.Writable(0)
	if err != nil {
		return err
	}
	mintInfo, err := ctx.Writable(1)
	if err != nil {
		return err
	}
	updateAuthority, err := ctx.Account(2)
	if err != nil {
		return err
	}
	mintAuthority, err := ctx.Account(3)
	if err != nil {
		return err
	}
	payer, err := ctx.Signer(4)
	if err != nil {
		return err
	}
	metadataInfo, err := ctx.Account(5)
	if err != nil {
		return err
	}
	tokenProgram, err := ctx.Account(6)
	if err != nil {
		return err
	}

	if err := requireOwner(metadataInfo, spl.MetadataProgramID); err != nil {
		return err
	}
	metadata, err := spl.UnpackMetadataAccount(metadataInfo.Data)
	if err != nil {
		return accountErr(metadataInfo.Key, fmt.Errorf("%w: %v", runtime.ErrInvalidAccountData, err))
	}
	if metadata.Mint != mintInfo.Key {
		return accountErr(metadataInfo.Key, spl.ErrMetadataAddress)
	}
	if metadata.UpdateAuthority != updateAuthority.Key {
		return accountErr(updateAuthority.Key, ErrUpdateAuthority)
	}
	if !updateAuthority.IsSigner {
		return accountErr(updateAuthority.Key, runtime.ErrAccountNotSigner)
	}

	if !spl.IsTokenProgram(tokenProgram.Key) || mintInfo.Owner != tokenProgram.Key {
		return accountErr(mintInfo.Key, runtime.ErrIncorrectProgramID)
	}
	mint, err := spl.UnpackMint(mintInfo.Data)
	if err != nil || !mint.IsInitialized {
		return accountErr(mintInfo.Key, runtime.ErrUninitializedAccount)
	}
	if mint.Decimals != 0 {
		return accountErr(mintInfo.Key, ErrEditionDecimals)
	}
	if mint.Supply != 1 {
		return accountErr(mintInfo.Key, ErrEditionSupply)
	}
	if mint.MintAuthority == nil || *mint.MintAuthority != mintAuthority.Key {
		return accountErr(mintAuthority.Key, ErrMintAuthority)
	}
	if !mintAuthority.IsSigner {
		return accountErr(mintAuthority.Key, runtime.ErrAccountNotSigner)
	}

	seeds := spl.MasterEditionSeeds(mintInfo.Key)
	expected, bump, err := common.FindProgramAddress(seeds, spl.MetadataProgramID)
	if err != nil {
		return fmt.Errorf("%w: %v", runtime.ErrInvalidSeeds, err)
	}
	if expected != edition.Key {
		return accountErr(edition.Key, spl.ErrMasterEditionAddress)
	}
	if len(edition.Data) > 0 || edition.Owner != spl.SystemProgramID {
		return accountErr(edition.Key, ErrMasterEditionExists)
	}
	if err := allocateOwned(ctx, payer, edition, spl.MaxMasterEditionLen, spl.MetadataProgramID, append(seeds, []byte{bump})); err != nil {
		return err
	}
	record := spl.MasterEditionAccount{
		Key:       spl.MetaplexKeyMasterEditionV2,
		MaxSupply: args.MaxSupply,
	}
	if err := writeRecord(edition, record, spl.MaxMasterEditionLen); err != nil {
		return err
	}

	// The edition takes over both mint authorities.
	ix := spl.SetAuthority(tokenProgram.Key, mintInfo.Key, mintAuthority.Key, spl.AuthorityMintTokens, &edition.Key)
	if err := ctx.Invoke(ix); err != nil {
		return err
	}
	if mint.FreezeAuthority != nil {
		ix := spl.SetAuthority(tokenProgram.Key, mintInfo.Key, mintAuthority.Key, spl.AuthorityFreezeAccount, &edition.Key)
		if err := ctx.Invoke(ix); err != nil {
			return err
		}
	}

	// Older clients pass the metadata read-only; the token standard is then
	// left as created.
	if !metadataInfo.IsWritable {
		return nil
	}
	standard := spl.TokenStandardNonFungible
	metadata.TokenStandard = &standard
	return writeRecord(metadataInfo, *metadata, spl.MaxMetadataLen)
}

// writeRecord stores a borsh record value padded to size.
func writeRecord(ai *runtime.AccountInfo, record any, size int) error {
	data, err := spl.PackPadded(record, size)
	if err != nil {
		return accountErr(ai.Key, err)
	}
	copy(ai.Data, data)
	return nil
}
