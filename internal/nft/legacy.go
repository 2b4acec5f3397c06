package nft

import (
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/metaplex/token_metadata"
	"github.com/blocto/solana-go-sdk/types"

	"github.com/Klingon-tech/klingnet-nft/internal/runtime"
	"github.com/Klingon-tech/klingnet-nft/pkg/spl"
)

// legacyProgram is metaplex_nft.
type legacyProgram struct {
	id common.PublicKey
}

func newLegacyProgram(id common.PublicKey) *legacyProgram {
	return &legacyProgram{id: id}
}

func (p *legacyProgram) Process(ctx *runtime.InvokeContext) error {
	switch {
	case mintNFTDiscriminator.HasPrefix(ctx.Data):
		ctx.Log("Instruction: MintNft")
		args, err := decodeMintArgs(ctx.Data)
		if err != nil {
			return err
		}
		return p.mintNFT(ctx, args)
	case initializeDiscriminator.HasPrefix(ctx.Data):
		return greet(ctx)
	}
	return fmt.Errorf("%w: instruction fallback not found", runtime.ErrInvalidInstructionData)
}

// legacyMint is the working state of one mint_nft.
type legacyMint struct {
	ctx  *runtime.InvokeContext
	args *MintArgs

	signer       *runtime.AccountInfo
	mint         *runtime.AccountInfo
	tokenAccount *runtime.AccountInfo
	metadata     *runtime.AccountInfo
	edition      *runtime.AccountInfo
	tokenProgram *runtime.AccountInfo
}

func (p *legacyProgram) mintNFT(ctx *runtime.InvokeContext, args *MintArgs) error {
	st, err := loadLegacyAccounts(ctx, args)
	if err != nil {
		return err
	}
	steps := []step[*legacyMint]{
		{"ensure-holding-account", ensureHoldingAccountStep},
		{"mint", legacyMintStep},
		{"create-metadata", createMetadataStep},
		{"create-master-edition", createMasterEditionStep},
	}
	return runSteps(st, steps)
}

// loadLegacyAccounts checks the account list of mint_nft and the mint it
// operates on.
func loadLegacyAccounts(ctx *runtime.InvokeContext, args *MintArgs) (*legacyMint, error) {
	st := &legacyMint{ctx: ctx, args: args}
	var err error
	if st.signer, err = ctx.Signer(0); err != nil {
		return nil, err
	}
	if st.mint, err = ctx.Writable(1); err != nil {
		return nil, err
	}
	if st.tokenAccount, err = ctx.Writable(2); err != nil {
		return nil, err
	}
	if st.metadata, err = ctx.Writable(3); err != nil {
		return nil, err
	}
	if st.edition, err = ctx.Writable(4); err != nil {
		return nil, err
	}
	if st.tokenProgram, err = ctx.Account(5); err != nil {
		return nil, err
	}
	if !spl.IsTokenProgram(st.tokenProgram.Key) {
		return nil, &runtime.AccountError{Account: st.tokenProgram.Key, Err: runtime.ErrIncorrectProgramID}
	}
	want := []common.PublicKey{spl.AssociatedTokenProgramID, spl.MetadataProgramID, spl.SystemProgramID, spl.RentSysvarID}
	for i, key := range want {
		ai, err := ctx.Account(6 + i)
		if err != nil {
			return nil, err
		}
		if ai.Key != key {
			return nil, &runtime.AccountError{Account: ai.Key, Err: runtime.ErrIncorrectProgramID}
		}
	}

	if st.mint.Owner != st.tokenProgram.Key {
		return nil, &runtime.AccountError{Account: st.mint.Key, Err: runtime.ErrInvalidAccountOwner}
	}
	mint, err := spl.UnpackMint(st.mint.Data)
	if err != nil || !mint.IsInitialized {
		return nil, &runtime.AccountError{Account: st.mint.Key, Err: runtime.ErrUninitializedAccount}
	}
	if mint.Decimals != 0 || mint.MintAuthority == nil || *mint.MintAuthority != st.signer.Key {
		return nil, &runtime.AccountError{Account: st.mint.Key, Err: ErrConstraintMint}
	}

	metadata, err := spl.FindMetadataAddress(st.mint.Key)
	if err != nil {
		return nil, err
	}
	if metadata != st.metadata.Key {
		return nil, &runtime.AccountError{Account: st.metadata.Key, Err: ErrConstraintSeeds}
	}
	edition, err := spl.FindMasterEditionAddress(st.mint.Key)
	if err != nil {
		return nil, err
	}
	if edition != st.edition.Key {
		return nil, &runtime.AccountError{Account: st.edition.Key, Err: ErrConstraintSeeds}
	}
	return st, nil
}

// ensureHoldingAccountStep creates the signer's associated token account
// unless the caller already did.
func ensureHoldingAccountStep(st *legacyMint) error {
	ix, err := spl.CreateAssociatedTokenAccount(st.signer.Key, st.signer.Key, st.mint.Key, st.tokenProgram.Key, true)
	if err != nil {
		return err
	}
	if ix.Accounts[1].PubKey != st.tokenAccount.Key {
		return &runtime.AccountError{Account: st.tokenAccount.Key, Err: ErrConstraintTokenAccount}
	}
	return st.ctx.Invoke(ix)
}

func legacyMintStep(st *legacyMint) error {
	return st.ctx.Invoke(spl.MintTo(st.tokenProgram.Key, st.mint.Key, st.tokenAccount.Key, st.signer.Key, 1))
}

func createMetadataStep(st *legacyMint) error {
	ix := token_metadata.CreateMetadataAccountV3(token_metadata.CreateMetadataAccountV3Param{
		Metadata:                st.metadata.Key,
		Mint:                    st.mint.Key,
		MintAuthority:           st.signer.Key,
		UpdateAuthority:         st.signer.Key,
		Payer:                   st.signer.Key,
		UpdateAuthorityIsSigner: true,
		IsMutable:               false,
		Data: token_metadata.DataV2{
			Name:                 st.args.Name,
			Symbol:               st.args.Symbol,
			Uri:                  st.args.URI,
			SellerFeeBasisPoints: 0,
		},
	})
	return st.ctx.Invoke(ix)
}

// createMasterEditionStep marks the NFT non-reproducible. The edition takes
// over the mint and freeze authorities.
func createMasterEditionStep(st *legacyMint) error {
	maxSupply := uint64(0)
	ix := token_metadata.CreateMasterEditionV3(token_metadata.CreateMasterEditionParam{
		Edition:         st.edition.Key,
		Mint:            st.mint.Key,
		UpdateAuthority: st.signer.Key,
		MintAuthority:   st.signer.Key,
		Metadata:        st.metadata.Key,
		Payer:           st.signer.Key,
		MaxSupply:       &maxSupply,
	})
	withTokenProgram(&ix, st.tokenProgram.Key)
	return st.ctx.Invoke(ix)
}

// withTokenProgram points a builder's legacy token program account at the
// mint's actual token program.
func withTokenProgram(ix *types.Instruction, tokenProgram common.PublicKey) {
	for i := range ix.Accounts {
		if ix.Accounts[i].PubKey == spl.TokenProgramID {
			ix.Accounts[i].PubKey = tokenProgram
		}
	}
}
