package builtin

import (
	"fmt"

	"github.com/blocto/solana-go-sdk/common"

	"github.com/Klingon-tech/klingnet-nft/internal/runtime"
	"github.com/Klingon-tech/klingnet-nft/pkg/spl"
)

func processAssociated(ctx *runtime.InvokeContext) error {
	kind, err := spl.DecodeAssociatedInstruction(ctx.Data)
	if err != nil {
		return fmt.Errorf("%w: %v", runtime.ErrInvalidInstructionData, err)
	}
	funder, err := ctx.Signer(0)
	if err != nil {
		return err
	}
	ata, err := ctx.Writable(1)
	if err != nil {
		return err
	}
	wallet, err := ctx.Account(2)
	if err != nil {
		return err
	}
	mint, err := ctx.Account(3)
	if err != nil {
		return err
	}
	tokenProgram, err := ctx.Account(5)
	if err != nil {
		return err
	}
	if !spl.IsTokenProgram(tokenProgram.Key) {
		return accountErr(tokenProgram.Key, runtime.ErrIncorrectProgramID)
	}

	ctx.Log("Create")
	expected, bump, err := spl.FindAssociatedTokenAddress(wallet.Key, mint.Key, tokenProgram.Key)
	if err != nil {
		return fmt.Errorf("%w: %v", runtime.ErrInvalidSeeds, err)
	}
	if expected != ata.Key {
		ctx.Log("Error: Associated address does not match seed derivation")
		return accountErr(ata.Key, runtime.ErrInvalidSeeds)
	}

	if kind == spl.AssociatedCreateIdempotent && ata.Owner == tokenProgram.Key {
		existing, err := spl.UnpackTokenAccount(ata.Data)
		if err == nil && existing.State != spl.AccountStateUninitialized {
			if existing.Owner != wallet.Key {
				return accountErr(ata.Key, runtime.ErrIllegalOwner)
			}
			if existing.Mint != mint.Key {
				return accountErr(ata.Key, ErrMintMismatch)
			}
			return nil
		}
	}
	if mint.Owner != tokenProgram.Key {
		return accountErr(mint.Key, runtime.ErrIncorrectProgramID)
	}

	space := spl.TokenAccountSize
	if tokenProgram.Key == spl.Token2022ProgramID {
		if space, err = spl.AccountSpace(spl.ExtensionImmutableOwner); err != nil {
			return err
		}
	}
	seeds := [][]byte{wallet.Key.Bytes(), tokenProgram.Key.Bytes(), mint.Key.Bytes(), {bump}}
	if err := allocateOwned(ctx, funder, ata, uint64(space), tokenProgram.Key, seeds); err != nil {
		return err
	}

	ctx.Log("Initialize the associated token account")
	if tokenProgram.Key == spl.Token2022ProgramID {
		if err := ctx.Invoke(spl.InitializeImmutableOwner(ata.Key)); err != nil {
			return err
		}
	}
	return ctx.Invoke(spl.InitializeAccount3(tokenProgram.Key, ata.Key, mint.Key, wallet.Key))
}

// allocateOwned creates a program-address account of space bytes owned by
// owner. A prefunded address is topped up to rent exemption and then
// allocated and assigned, since CreateAccount refuses accounts holding
// lamports.
func allocateOwned(ctx *runtime.InvokeContext, funder, target *runtime.AccountInfo, space uint64, owner common.PublicKey, seeds [][]byte) error {
	required := ctx.Rent().MinimumBalance(space)

	if target.Lamports == 0 {
		return ctx.CreateAccount(funder.Key, target.Key, required, space, owner, seeds)
	}
	if target.Lamports < required {
		if err := ctx.Invoke(spl.Transfer(funder.Key, target.Key, required-target.Lamports)); err != nil {
			return err
		}
	}
	if err := ctx.InvokeSigned(spl.Allocate(target.Key, space), seeds); err != nil {
		return err
	}
	return ctx.InvokeSigned(spl.Assign(target.Key, owner), seeds)
}
