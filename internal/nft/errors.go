package nft

import (
	"errors"

	"github.com/Klingon-tech/klingnet-nft/internal/builtin"
	"github.com/Klingon-tech/klingnet-nft/internal/runtime"
)

// Account constraint errors.
var (
	ErrConstraintSeeds        = errors.New("a seeds constraint was violated")
	ErrConstraintMint         = errors.New("mint does not have zero decimals and the signer as authority")
	ErrConstraintTokenAccount = errors.New("token account is not the signer's associated token account")
	ErrAccountDiscriminator   = errors.New("account discriminator did not match")
	ErrPostCondition          = errors.New("minted token is not a non-fungible token")
)

// Category is the class of a minting failure.
type Category int

const (
	CategoryUnknown Category = iota
	// CategorySizing: the metadata payload could not be sized. Nothing was
	// touched.
	CategorySizing
	// CategoryAccountState: an account already exists, has the wrong owner,
	// lacks funds or a required signature.
	CategoryAccountState
	// CategoryDelegatedCall: a token or metadata program rejected a call.
	CategoryDelegatedCall
	// CategoryAuthority: a program-controlled signature did not validate.
	CategoryAuthority
)

func (c Category) String() string {
	switch c {
	case CategorySizing:
		return "sizing"
	case CategoryAccountState:
		return "account-state"
	case CategoryDelegatedCall:
		return "delegated-call"
	case CategoryAuthority:
		return "authority"
	default:
		return "unknown"
	}
}

var (
	authorityErrors = []error{
		runtime.ErrInvalidSeeds,
		runtime.ErrUnauthorizedSigner,
		ErrConstraintSeeds,
	}
	accountStateErrors = []error{
		runtime.ErrAccountAlreadyInUse,
		runtime.ErrInvalidAccountOwner,
		runtime.ErrIllegalOwner,
		runtime.ErrAccountNotSigner,
		runtime.ErrAccountNotWritable,
		runtime.ErrMissingSigner,
		runtime.ErrMissingAccount,
		runtime.ErrNotEnoughAccountKeys,
		runtime.ErrIncorrectProgramID,
		runtime.ErrInsufficientFunds,
		runtime.ErrInsufficientFundsForFee,
		runtime.ErrInsufficientFundsForRent,
		runtime.ErrUninitializedAccount,
		ErrConstraintMint,
		ErrConstraintTokenAccount,
		ErrAccountDiscriminator,
	}
)

// Classify maps a transaction error onto its failure category.
func Classify(err error) Category {
	switch {
	case err == nil:
		return CategoryUnknown
	case errors.Is(err, ErrSizing):
		return CategorySizing
	case isAny(err, authorityErrors):
		return CategoryAuthority
	case isAny(err, accountStateErrors):
		return CategoryAccountState
	case builtin.IsProgramError(err),
		errors.Is(err, runtime.ErrInvalidInstructionData),
		errors.Is(err, runtime.ErrInvalidArgument),
		errors.Is(err, runtime.ErrInvalidAccountData):
		return CategoryDelegatedCall
	}
	return CategoryUnknown
}

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}
