package runtime

import (
	"errors"
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
)

// Transaction-level errors. A transaction rejected with one of these is not
// executed and pays no fee.
var (
	ErrNoInstructions          = errors.New("transaction has no instructions")
	ErrMissingSigner           = errors.New("missing required signature")
	ErrInvalidSignature        = errors.New("invalid transaction signature")
	ErrBlockhashNotFound       = errors.New("blockhash not found")
	ErrAlreadyProcessed        = errors.New("transaction already processed")
	ErrInsufficientFundsForFee = errors.New("insufficient funds for fee")
	ErrProgramNotFound         = errors.New("program not found")
)

// Execution errors, raised by the runtime or by programs. A transaction
// failing with one of these is rolled back but still pays its fee.
var (
	ErrAccountNotFound          = errors.New("account not found")
	ErrAccountAlreadyInUse      = errors.New("account already in use")
	ErrInsufficientFunds        = errors.New("insufficient funds")
	ErrInsufficientFundsForRent = errors.New("insufficient funds for rent")
	ErrNotEnoughAccountKeys     = errors.New("not enough account keys")
	ErrMissingAccount           = errors.New("account required by instruction is missing")
	ErrInvalidArgument          = errors.New("invalid program argument")
	ErrInvalidInstructionData   = errors.New("invalid instruction data")
	ErrInvalidAccountData       = errors.New("invalid account data for instruction")
	ErrIncorrectProgramID       = errors.New("incorrect program id for instruction")
	ErrIllegalOwner             = errors.New("provided owner is not allowed")
	ErrInvalidAccountOwner      = errors.New("invalid account owner")
	ErrUninitializedAccount     = errors.New("account is not initialized")
	ErrAccountNotSigner         = errors.New("account is not a signer")
	ErrAccountNotWritable       = errors.New("account is not writable")

	ErrReadonlyModified      = errors.New("instruction modified a read-only account")
	ErrExternalDataModified  = errors.New("instruction modified data of an account it does not own")
	ErrExternalLamportSpend  = errors.New("instruction spent from the balance of an account it does not own")
	ErrModifiedProgramID     = errors.New("instruction illegally modified the program id of an account")
	ErrExecutableModified    = errors.New("instruction changed the executable flag of an account")
	ErrUnbalancedInstruction = errors.New("sum of account balances before and after instruction do not match")

	ErrPrivilegeEscalation = errors.New("cross-program invocation with unauthorized writable account")
	ErrUnauthorizedSigner  = errors.New("cross-program invocation with unauthorized signer")
	ErrInvalidSeeds        = errors.New("provided seeds do not result in a valid address")
	ErrCallDepth           = errors.New("cross-program invocation call depth too deep")
	ErrReentrancy          = errors.New("cross-program invocation reentrancy not allowed")
)

// InstructionError reports the failing top-level instruction of a
// transaction.
type InstructionError struct {
	Index   int
	Program common.PublicKey
	Err     error
}

func (e *InstructionError) Error() string {
	return fmt.Sprintf("instruction %d (%s): %v", e.Index, e.Program.ToBase58(), e.Err)
}

func (e *InstructionError) Unwrap() error {
	return e.Err
}

// AccountError attaches the offending address to an error.
type AccountError struct {
	Account common.PublicKey
	Err     error
}

func (e *AccountError) Error() string {
	return fmt.Sprintf("account %s: %v", e.Account.ToBase58(), e.Err)
}

func (e *AccountError) Unwrap() error {
	return e.Err
}

func accountErr(key common.PublicKey, err error) error {
	return &AccountError{Account: key, Err: err}
}
