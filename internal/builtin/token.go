package builtin

import (
	"fmt"

	"github.com/blocto/solana-go-sdk/common"

	"github.com/Klingon-tech/klingnet-nft/internal/runtime"
	"github.com/Klingon-tech/klingnet-nft/pkg/spl"
)

// tokenProgram serves both token programs. The Token-2022 instance also
// accepts extension and token metadata interface instructions.
type tokenProgram struct {
	id         common.PublicKey
	extensions bool
}

func (p *tokenProgram) Process(ctx *runtime.InvokeContext) error {
	if spl.IsMetadataInstruction(ctx.Data) {
		if !p.extensions {
			return runtime.ErrInvalidInstructionData
		}
		return p.processMetadata(ctx)
	}
	args, err := spl.DecodeTokenInstruction(ctx.Data)
	if err != nil {
		return fmt.Errorf("%w: %v", runtime.ErrInvalidInstructionData, err)
	}
	ctx.Log("Instruction: %s", args.Instruction)

	switch args.Instruction {
	case spl.TokenInitializeMint, spl.TokenInitializeMint2:
		return p.initializeMint(ctx, args)
	case spl.TokenInitializeAccount, spl.TokenInitializeAccount3:
		return p.initializeAccount(ctx, args)
	case spl.TokenMintTo:
		return p.mintTo(ctx, args)
	case spl.TokenTransfer:
		return p.transfer(ctx, args)
	case spl.TokenSetAuthority:
		return p.setAuthority(ctx, args)
	case spl.TokenInitializeImmutableOwner:
		return p.initializeImmutableOwner(ctx)
	case spl.TokenMetadataPointerExtension:
		return p.initializeMetadataPointer(ctx, args)
	}
	return runtime.ErrInvalidInstructionData
}

// checkLayout validates the length and account type of a token program
// account that should hold the given kind of state.
func (p *tokenProgram) checkLayout(ai *runtime.AccountInfo, kind spl.AccountType) error {
	base := spl.MintSize
	if kind == spl.AccountTypeAccount {
		base = spl.TokenAccountSize
	}
	switch {
	case len(ai.Data) == base:
		return nil
	case p.extensions && spl.HasExtensions(ai.Data):
		if t := spl.GetAccountType(ai.Data); t != kind && t != spl.AccountTypeUninitialized {
			return accountErr(ai.Key, fmt.Errorf("%w: %w", runtime.ErrInvalidAccountData, spl.ErrInvalidAccountType))
		}
		return nil
	default:
		return accountErr(ai.Key, fmt.Errorf("%w: %d bytes", runtime.ErrInvalidAccountData, len(ai.Data)))
	}
}

// isMint reports whether an owned account holds mint state.
func (p *tokenProgram) isMint(data []byte) bool {
	if len(data) == spl.MintSize {
		return true
	}
	return p.extensions && spl.HasExtensions(data) && spl.GetAccountType(data) == spl.AccountTypeMint
}

// loadMint returns the initialized mint held by ai.
func (p *tokenProgram) loadMint(ai *runtime.AccountInfo) (*spl.Mint, error) {
	if err := requireOwner(ai, p.id); err != nil {
		return nil, err
	}
	if err := p.checkLayout(ai, spl.AccountTypeMint); err != nil {
		return nil, err
	}
	m, err := spl.UnpackMint(ai.Data)
	if err != nil {
		return nil, accountErr(ai.Key, fmt.Errorf("%w: %v", runtime.ErrInvalidAccountData, err))
	}
	if !m.IsInitialized {
		return nil, accountErr(ai.Key, runtime.ErrUninitializedAccount)
	}
	return m, nil
}

// loadTokenAccount returns the initialized token account held by ai.
func (p *tokenProgram) loadTokenAccount(ai *runtime.AccountInfo) (*spl.TokenAccount, error) {
	if err := requireOwner(ai, p.id); err != nil {
		return nil, err
	}
	if err := p.checkLayout(ai, spl.AccountTypeAccount); err != nil {
		return nil, err
	}
	a, err := spl.UnpackTokenAccount(ai.Data)
	if err != nil {
		return nil, accountErr(ai.Key, fmt.Errorf("%w: %v", runtime.ErrInvalidAccountData, err))
	}
	if a.State == spl.AccountStateUninitialized {
		return nil, accountErr(ai.Key, runtime.ErrUninitializedAccount)
	}
	return a, nil
}

func (p *tokenProgram) initializeMint(ctx *runtime.InvokeContext, args *spl.TokenArgs) error {
	mint, err := ctx.Writable(0)
	if err != nil {
		return err
	}
	if err := requireOwner(mint, p.id); err != nil {
		return err
	}
	if err := p.checkLayout(mint, spl.AccountTypeMint); err != nil {
		return err
	}
	existing, err := spl.UnpackMint(mint.Data)
	if err != nil {
		return accountErr(mint.Key, fmt.Errorf("%w: %v", runtime.ErrInvalidAccountData, err))
	}
	if existing.IsInitialized {
		return accountErr(mint.Key, spl.ErrAlreadyInitialize)
	}
	if !ctx.Rent().IsExempt(mint.Lamports, uint64(len(mint.Data))) {
		return accountErr(mint.Key, runtime.ErrInsufficientFundsForRent)
	}

	m := &spl.Mint{
		MintAuthority:   args.Authority,
		Decimals:        args.Decimals,
		IsInitialized:   true,
		FreezeAuthority: args.FreezeAuthority,
	}
	if err := spl.PackMint(m, mint.Data); err != nil {
		return err
	}
	if spl.HasExtensions(mint.Data) {
		return spl.SetAccountType(mint.Data, spl.AccountTypeMint)
	}
	return nil
}

func (p *tokenProgram) initializeAccount(ctx *runtime.InvokeContext, args *spl.TokenArgs) error {
	acct, err := ctx.Writable(0)
	if err != nil {
		return err
	}
	mintInfo, err := ctx.Account(1)
	if err != nil {
		return err
	}
	owner := args.Owner
	if args.Instruction == spl.TokenInitializeAccount {
		o, err := ctx.Account(2)
		if err != nil {
			return err
		}
		owner = o.Key
	}
	if err := requireOwner(acct, p.id); err != nil {
		return err
	}
	if err := p.checkLayout(acct, spl.AccountTypeAccount); err != nil {
		return err
	}
	if _, err := p.loadMint(mintInfo); err != nil {
		return err
	}
	existing, err := spl.UnpackTokenAccount(acct.Data)
	if err != nil {
		return accountErr(acct.Key, fmt.Errorf("%w: %v", runtime.ErrInvalidAccountData, err))
	}
	if existing.State != spl.AccountStateUninitialized {
		return accountErr(acct.Key, spl.ErrAlreadyInitialize)
	}
	if !ctx.Rent().IsExempt(acct.Lamports, uint64(len(acct.Data))) {
		return accountErr(acct.Key, runtime.ErrInsufficientFundsForRent)
	}

	a := &spl.TokenAccount{
		Mint:  mintInfo.Key,
		Owner: owner,
		State: spl.AccountStateInitialized,
	}
	if err := spl.PackTokenAccount(a, acct.Data); err != nil {
		return err
	}
	if spl.HasExtensions(acct.Data) {
		return spl.SetAccountType(acct.Data, spl.AccountTypeAccount)
	}
	return nil
}

func (p *tokenProgram) mintTo(ctx *runtime.InvokeContext, args *spl.TokenArgs) error {
	mintInfo, err := ctx.Writable(0)
	if err != nil {
		return err
	}
	destInfo, err := ctx.Writable(1)
	if err != nil {
		return err
	}
	auth, err := ctx.Account(2)
	if err != nil {
		return err
	}
	mint, err := p.loadMint(mintInfo)
	if err != nil {
		return err
	}
	dest, err := p.loadTokenAccount(destInfo)
	if err != nil {
		return err
	}
	if dest.Mint != mintInfo.Key {
		return accountErr(destInfo.Key, ErrMintMismatch)
	}
	if dest.State == spl.AccountStateFrozen {
		return accountErr(destInfo.Key, ErrAccountFrozen)
	}
	if mint.MintAuthority == nil {
		return accountErr(mintInfo.Key, ErrFixedSupply)
	}
	if err := checkAuthority(auth, *mint.MintAuthority); err != nil {
		return err
	}

	if mint.Supply+args.Amount < mint.Supply {
		return ErrOverflow
	}
	mint.Supply += args.Amount
	dest.Amount += args.Amount
	if err := spl.PackTokenAccount(dest, destInfo.Data); err != nil {
		return err
	}
	return spl.PackMint(mint, mintInfo.Data)
}

func (p *tokenProgram) transfer(ctx *runtime.InvokeContext, args *spl.TokenArgs) error {
	srcInfo, err := ctx.Writable(0)
	if err != nil {
		return err
	}
	dstInfo, err := ctx.Writable(1)
	if err != nil {
		return err
	}
	auth, err := ctx.Account(2)
	if err != nil {
		return err
	}
	src, err := p.loadTokenAccount(srcInfo)
	if err != nil {
		return err
	}
	dst, err := p.loadTokenAccount(dstInfo)
	if err != nil {
		return err
	}
	if src.Mint != dst.Mint {
		return accountErr(dstInfo.Key, ErrMintMismatch)
	}
	if src.State == spl.AccountStateFrozen || dst.State == spl.AccountStateFrozen {
		return ErrAccountFrozen
	}
	if err := checkAuthority(auth, src.Owner); err != nil {
		return err
	}
	if src.Amount < args.Amount {
		return accountErr(srcInfo.Key, ErrInsufficientTokens)
	}
	if srcInfo.Key == dstInfo.Key {
		return nil
	}
	src.Amount -= args.Amount
	dst.Amount += args.Amount
	if err := spl.PackTokenAccount(src, srcInfo.Data); err != nil {
		return err
	}
	return spl.PackTokenAccount(dst, dstInfo.Data)
}

func (p *tokenProgram) setAuthority(ctx *runtime.InvokeContext, args *spl.TokenArgs) error {
	target, err := ctx.Writable(0)
	if err != nil {
		return err
	}
	auth, err := ctx.Account(1)
	if err != nil {
		return err
	}
	if err := requireOwner(target, p.id); err != nil {
		return err
	}

	if p.isMint(target.Data) {
		mint, err := p.loadMint(target)
		if err != nil {
			return err
		}
		switch args.AuthorityType {
		case spl.AuthorityMintTokens:
			if mint.MintAuthority == nil {
				return accountErr(target.Key, ErrFixedSupply)
			}
			if err := checkAuthority(auth, *mint.MintAuthority); err != nil {
				return err
			}
			mint.MintAuthority = args.Authority
		case spl.AuthorityFreezeAccount:
			if mint.FreezeAuthority == nil {
				return accountErr(target.Key, ErrMintCannotFreeze)
			}
			if err := checkAuthority(auth, *mint.FreezeAuthority); err != nil {
				return err
			}
			mint.FreezeAuthority = args.Authority
		default:
			return accountErr(target.Key, ErrAuthorityType)
		}
		return spl.PackMint(mint, target.Data)
	}

	acct, err := p.loadTokenAccount(target)
	if err != nil {
		return err
	}
	switch args.AuthorityType {
	case spl.AuthorityAccountOwner:
		if err := checkAuthority(auth, acct.Owner); err != nil {
			return err
		}
		if args.Authority == nil {
			return fmt.Errorf("%w: account owner cannot be cleared", runtime.ErrInvalidArgument)
		}
		if _, err := spl.GetExtension(target.Data, spl.ExtensionImmutableOwner); err == nil {
			return accountErr(target.Key, ErrImmutableOwner)
		}
		acct.Owner = *args.Authority
	case spl.AuthorityCloseAccount:
		current := acct.Owner
		if acct.CloseAuthority != nil {
			current = *acct.CloseAuthority
		}
		if err := checkAuthority(auth, current); err != nil {
			return err
		}
		acct.CloseAuthority = args.Authority
	default:
		return accountErr(target.Key, ErrAuthorityType)
	}
	return spl.PackTokenAccount(acct, target.Data)
}

func (p *tokenProgram) initializeImmutableOwner(ctx *runtime.InvokeContext) error {
	if !p.extensions {
		return ErrExtensionNotAllowed
	}
	acct, err := ctx.Writable(0)
	if err != nil {
		return err
	}
	if err := requireOwner(acct, p.id); err != nil {
		return err
	}
	if !spl.HasExtensions(acct.Data) {
		return accountErr(acct.Key, fmt.Errorf("%w: no extension space", runtime.ErrInvalidAccountData))
	}
	if err := p.requireUninitialized(acct, spl.AccountTypeAccount); err != nil {
		return err
	}
	data, err := spl.SetExtension(acct.Data, spl.ExtensionImmutableOwner, nil)
	if err != nil {
		return accountErr(acct.Key, fmt.Errorf("%w: %v", runtime.ErrInvalidAccountData, err))
	}
	acct.Data = data
	return nil
}

func (p *tokenProgram) initializeMetadataPointer(ctx *runtime.InvokeContext, args *spl.TokenArgs) error {
	if !p.extensions {
		return ErrExtensionNotAllowed
	}
	mint, err := ctx.Writable(0)
	if err != nil {
		return err
	}
	if err := requireOwner(mint, p.id); err != nil {
		return err
	}
	if !spl.HasExtensions(mint.Data) {
		return accountErr(mint.Key, fmt.Errorf("%w: no extension space", runtime.ErrInvalidAccountData))
	}
	if err := p.requireUninitialized(mint, spl.AccountTypeMint); err != nil {
		return err
	}
	if args.PointerAuthority == nil && args.PointerAddress == nil {
		return fmt.Errorf("%w: metadata pointer needs an authority or an address", runtime.ErrInvalidInstructionData)
	}
	ptr := spl.MetadataPointer{Authority: args.PointerAuthority, MetadataAddress: args.PointerAddress}
	data, err := spl.SetExtension(mint.Data, spl.ExtensionMetadataPointer, ptr.Pack())
	if err != nil {
		return accountErr(mint.Key, fmt.Errorf("%w: %v", runtime.ErrInvalidAccountData, err))
	}
	mint.Data = data
	return nil
}

// requireUninitialized fails when the base state of an account is already
// initialized. Extensions of this kind must precede initialization.
func (p *tokenProgram) requireUninitialized(ai *runtime.AccountInfo, kind spl.AccountType) error {
	if err := p.checkLayout(ai, kind); err != nil {
		return err
	}
	initialized := false
	if kind == spl.AccountTypeMint {
		m, err := spl.UnpackMint(ai.Data)
		if err != nil {
			return accountErr(ai.Key, fmt.Errorf("%w: %v", runtime.ErrInvalidAccountData, err))
		}
		initialized = m.IsInitialized
	} else {
		a, err := spl.UnpackTokenAccount(ai.Data)
		if err != nil {
			return accountErr(ai.Key, fmt.Errorf("%w: %v", runtime.ErrInvalidAccountData, err))
		}
		initialized = a.State != spl.AccountStateUninitialized
	}
	if initialized {
		return accountErr(ai.Key, spl.ErrAlreadyInitialize)
	}
	return nil
}

// checkAuthority requires ai to be the expected authority and to have
// signed.
func checkAuthority(ai *runtime.AccountInfo, expected common.PublicKey) error {
	if ai.Key != expected {
		return accountErr(ai.Key, ErrOwnerMismatch)
	}
	if !ai.IsSigner {
		return accountErr(ai.Key, runtime.ErrAccountNotSigner)
	}
	return nil
}
