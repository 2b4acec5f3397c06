package nft

import (
	"bytes"
	"fmt"

	"github.com/blocto/solana-go-sdk/common"

	"github.com/Klingon-tech/klingnet-nft/internal/runtime"
	"github.com/Klingon-tech/klingnet-nft/pkg/spl"
)

// extensionProgram is token_2022_nft.
type extensionProgram struct {
	id common.PublicKey
}

func newExtensionProgram(id common.PublicKey) *extensionProgram {
	return &extensionProgram{id: id}
}

func (p *extensionProgram) Process(ctx *runtime.InvokeContext) error {
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

// extensionMint is the working state of one mint_nft.
type extensionMint struct {
	ctx  *runtime.InvokeContext
	args *MintArgs

	signer       *runtime.AccountInfo
	mint         *runtime.AccountInfo
	tokenAccount *runtime.AccountInfo
	authority    *runtime.AccountInfo
	bump         uint8

	meta   *spl.TokenMetadata
	sizing Sizing
}

func (p *extensionProgram) mintNFT(ctx *runtime.InvokeContext, args *MintArgs) error {
	st, err := p.loadAccounts(ctx, args)
	if err != nil {
		return err
	}
	steps := []step[*extensionMint]{
		{"ensure-authority", p.ensureAuthority},
		{"size", sizeStep},
		{"reserve", reserveStep},
		{"declare-extension", declareExtensionStep},
		{"initialize-mint", initializeMintStep},
		{"initialize-metadata", initializeMetadataStep},
		{"attach-field", attachFieldStep},
		{"create-holding-account", createHoldingAccountStep},
		{"mint", mintStep},
		{"revoke", revokeStep},
		{"emit", emitStep},
	}
	return runSteps(st, steps)
}

// loadAccounts checks the account list of mint_nft.
func (p *extensionProgram) loadAccounts(ctx *runtime.InvokeContext, args *MintArgs) (*extensionMint, error) {
	st := &extensionMint{ctx: ctx, args: args}
	var err error
	if st.signer, err = ctx.Signer(0); err != nil {
		return nil, err
	}
	if st.mint, err = ctx.Signer(1); err != nil {
		return nil, err
	}
	if st.tokenAccount, err = ctx.Writable(2); err != nil {
		return nil, err
	}
	if st.authority, err = ctx.Writable(3); err != nil {
		return nil, err
	}
	if !st.signer.IsWritable || !st.mint.IsWritable {
		return nil, runtime.ErrAccountNotWritable
	}
	want := []common.PublicKey{spl.SystemProgramID, spl.Token2022ProgramID, spl.AssociatedTokenProgramID, spl.RentSysvarID}
	for i, key := range want {
		ai, err := ctx.Account(4 + i)
		if err != nil {
			return nil, err
		}
		if ai.Key != key {
			return nil, &runtime.AccountError{Account: ai.Key, Err: runtime.ErrIncorrectProgramID}
		}
	}

	authority, bump, err := DeriveAuthority(p.id)
	if err != nil {
		return nil, err
	}
	if authority != st.authority.Key {
		return nil, &runtime.AccountError{Account: st.authority.Key, Err: ErrConstraintSeeds}
	}
	st.bump = bump
	return st, nil
}

// ensureAuthority creates the authority account on first use and checks it
// afterwards.
func (p *extensionProgram) ensureAuthority(st *extensionMint) error {
	return ensureProgramAccount(st.ctx, st.signer, st.authority, AuthoritySeeds(st.bump))
}

func sizeStep(st *extensionMint) error {
	st.meta = MintMetadata(st.authority.Key, st.mint.Key, *st.args)
	sizing, err := SizeMint(st.ctx.Rent(), st.meta)
	if err != nil {
		return err
	}
	st.sizing = sizing
	st.ctx.Log("Create Mint and metadata account size and cost: %d lamports: %d", sizing.TotalSpace, sizing.Lamports)
	st.ctx.Log("Lamports required: %d", sizing.Lamports)
	return nil
}

func reserveStep(st *extensionMint) error {
	err := st.ctx.CreateAccount(st.signer.Key, st.mint.Key, st.sizing.Lamports, uint64(st.sizing.MintSpace), spl.Token2022ProgramID)
	if err != nil {
		return err
	}
	return st.ctx.Invoke(spl.Assign(st.mint.Key, spl.Token2022ProgramID))
}

func declareExtensionStep(st *extensionMint) error {
	return st.ctx.Invoke(spl.InitializeMetadataPointer(st.mint.Key, &st.authority.Key, &st.mint.Key))
}

func initializeMintStep(st *extensionMint) error {
	return st.ctx.Invoke(spl.InitializeMint2(spl.Token2022ProgramID, st.mint.Key, st.authority.Key, nil, 0))
}

func initializeMetadataStep(st *extensionMint) error {
	st.ctx.Log("Initializing metadata for mint: %s", st.mint.Key.ToBase58())
	ix, err := spl.InitializeTokenMetadata(spl.Token2022ProgramID, st.mint.Key, st.authority.Key, st.mint.Key, st.authority.Key,
		st.meta.Name, st.meta.Symbol, st.meta.URI)
	if err != nil {
		return err
	}
	return st.ctx.InvokeSigned(ix, AuthoritySeeds(st.bump))
}

func attachFieldStep(st *extensionMint) error {
	ix, err := spl.UpdateTokenMetadataField(spl.Token2022ProgramID, st.mint.Key, st.authority.Key, spl.KeyField(LevelField), InitialLevel)
	if err != nil {
		return err
	}
	return st.ctx.InvokeSigned(ix, AuthoritySeeds(st.bump))
}

func createHoldingAccountStep(st *extensionMint) error {
	ix, err := spl.CreateAssociatedTokenAccount(st.signer.Key, st.signer.Key, st.mint.Key, spl.Token2022ProgramID, true)
	if err != nil {
		return err
	}
	if ix.Accounts[1].PubKey != st.tokenAccount.Key {
		return &runtime.AccountError{Account: st.tokenAccount.Key, Err: ErrConstraintTokenAccount}
	}
	return st.ctx.Invoke(ix)
}

func mintStep(st *extensionMint) error {
	ix := spl.MintTo(spl.Token2022ProgramID, st.mint.Key, st.tokenAccount.Key, st.authority.Key, 1)
	return st.ctx.InvokeSigned(ix, AuthoritySeeds(st.bump))
}

// revokeStep clears the mint authority and checks that exactly one
// indivisible unit exists and can never be added to.
func revokeStep(st *extensionMint) error {
	ix := spl.SetAuthority(spl.Token2022ProgramID, st.mint.Key, st.authority.Key, spl.AuthorityMintTokens, nil)
	if err := st.ctx.InvokeSigned(ix, AuthoritySeeds(st.bump)); err != nil {
		return err
	}
	return checkMinted(st.mint)
}

func emitStep(st *extensionMint) error {
	events := []any{
		NftMinted{NftMint: st.mint.Key, Recipient: st.signer.Key},
		NftMetadataUpdated{NftMint: st.mint.Key, Field: LevelField, Value: InitialLevel},
	}
	for _, ev := range events {
		data, err := EncodeEvent(ev)
		if err != nil {
			return err
		}
		st.ctx.EmitEvent(data)
	}
	return nil
}

// checkMinted verifies the non-fungible post-condition of a mint.
func checkMinted(ai *runtime.AccountInfo) error {
	m, err := spl.UnpackMint(ai.Data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPostCondition, err)
	}
	if m.Decimals != 0 || m.Supply != 1 || !IsRevoked(MintAuthority(m)) {
		return fmt.Errorf("%w: decimals %d supply %d authority %s", ErrPostCondition, m.Decimals, m.Supply, MintAuthority(m))
	}
	return nil
}

// ensureProgramAccount creates a program-owned account holding only its
// discriminator, or checks one created earlier.
func ensureProgramAccount(ctx *runtime.InvokeContext, payer, acct *runtime.AccountInfo, seeds [][]byte) error {
	if acct.Owner == spl.SystemProgramID && acct.Lamports == 0 {
		lamports := ctx.Rent().MinimumBalance(authorityAccountSpace)
		if err := ctx.CreateAccount(payer.Key, acct.Key, lamports, authorityAccountSpace, ctx.ProgramID, seeds); err != nil {
			return err
		}
		copy(acct.Data, authorityDiscriminator[:])
		return nil
	}
	if acct.Owner != ctx.ProgramID {
		return &runtime.AccountError{Account: acct.Key, Err: runtime.ErrInvalidAccountOwner}
	}
	if !bytes.HasPrefix(acct.Data, authorityDiscriminator[:]) {
		return &runtime.AccountError{Account: acct.Key, Err: ErrAccountDiscriminator}
	}
	return nil
}

// greet is the initialize entry point of every program.
func greet(ctx *runtime.InvokeContext) error {
	ctx.Log("Instruction: Initialize")
	ctx.Log("Greetings from: %s", ctx.ProgramID.ToBase58())
	return nil
}
