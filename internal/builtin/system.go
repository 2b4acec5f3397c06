package builtin

import (
	"errors"
	"fmt"

	"github.com/Klingon-tech/klingnet-nft/internal/runtime"
	"github.com/Klingon-tech/klingnet-nft/pkg/spl"
)

// maxPermittedDataLength bounds the space of a single account.
const maxPermittedDataLength = 10 * 1024 * 1024

func processSystem(ctx *runtime.InvokeContext) error {
	args, err := spl.DecodeSystemInstruction(ctx.Data)
	if err != nil {
		return fmt.Errorf("%w: %v", runtime.ErrInvalidInstructionData, err)
	}
	switch args.Instruction {
	case spl.SystemCreateAccount:
		return systemCreateAccount(ctx, args)
	case spl.SystemAssign:
		return systemAssign(ctx, args)
	case spl.SystemTransfer:
		return systemTransfer(ctx, args)
	case spl.SystemAllocate:
		return systemAllocate(ctx, args)
	}
	return runtime.ErrInvalidInstructionData
}

func systemCreateAccount(ctx *runtime.InvokeContext, args *spl.SystemArgs) error {
	from, err := ctx.Signer(0)
	if err != nil {
		return err
	}
	to, err := ctx.Account(1)
	if err != nil {
		return err
	}
	if to.Lamports > 0 || len(to.Data) > 0 || to.Owner != spl.SystemProgramID {
		ctx.Log("Create Account: account %s already in use", to.Key.ToBase58())
		return accountErr(to.Key, runtime.ErrAccountAlreadyInUse)
	}
	if !to.IsSigner {
		return accountErr(to.Key, runtime.ErrAccountNotSigner)
	}
	if args.Space > maxPermittedDataLength {
		return fmt.Errorf("%w: space %d", runtime.ErrInvalidArgument, args.Space)
	}
	if err := transferLamports(ctx, from, to, args.Lamports); err != nil {
		return err
	}
	to.Data = make([]byte, args.Space)
	to.Owner = args.Owner
	return nil
}

func systemAssign(ctx *runtime.InvokeContext, args *spl.SystemArgs) error {
	acc, err := ctx.Account(0)
	if err != nil {
		return err
	}
	if acc.Owner == args.Owner {
		return nil
	}
	if !acc.IsSigner {
		return accountErr(acc.Key, runtime.ErrAccountNotSigner)
	}
	acc.Owner = args.Owner
	return nil
}

func systemTransfer(ctx *runtime.InvokeContext, args *spl.SystemArgs) error {
	from, err := ctx.Signer(0)
	if err != nil {
		return err
	}
	to, err := ctx.Account(1)
	if err != nil {
		return err
	}
	return transferLamports(ctx, from, to, args.Lamports)
}

func systemAllocate(ctx *runtime.InvokeContext, args *spl.SystemArgs) error {
	acc, err := ctx.Signer(0)
	if err != nil {
		return err
	}
	if len(acc.Data) > 0 || acc.Owner != spl.SystemProgramID {
		ctx.Log("Allocate: account %s already in use", acc.Key.ToBase58())
		return accountErr(acc.Key, runtime.ErrAccountAlreadyInUse)
	}
	if args.Space > maxPermittedDataLength {
		return fmt.Errorf("%w: space %d", runtime.ErrInvalidArgument, args.Space)
	}
	acc.Data = make([]byte, args.Space)
	return nil
}

var errFromCarriesData = errors.New("from must not carry data")

func transferLamports(ctx *runtime.InvokeContext, from, to *runtime.AccountInfo, lamports uint64) error {
	if len(from.Data) > 0 {
		return accountErr(from.Key, fmt.Errorf("%w: %w", runtime.ErrInvalidArgument, errFromCarriesData))
	}
	if from.Owner != spl.SystemProgramID {
		return accountErr(from.Key, runtime.ErrInvalidAccountOwner)
	}
	if from.Lamports < lamports {
		ctx.Log("Transfer: insufficient lamports %d, need %d", from.Lamports, lamports)
		return accountErr(from.Key, runtime.ErrInsufficientFunds)
	}
	from.Lamports -= lamports
	to.Lamports += lamports
	return nil
}
