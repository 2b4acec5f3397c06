package minter

import (
	"context"
	"errors"
	"fmt"

	"github.com/blocto/solana-go-sdk/types"

	"github.com/Klingon-tech/klingnet-nft/internal/runtime"
)

// ErrNoSigners is returned when a transaction is sent without a fee payer.
var ErrNoSigners = errors.New("transaction needs at least one signer")

// Submitter sends transactions to a ledger. The first signer pays the fee.
type Submitter interface {
	MinimumBalance(ctx context.Context, dataLen uint64) (uint64, error)
	Send(ctx context.Context, ixs []types.Instruction, signers ...types.Account) (*Result, error)
}

// Result describes a submitted transaction. Slot, Logs and Events are only
// known when the submitter waits for execution.
type Result struct {
	Signature string          `json:"signature"`
	Slot      uint64          `json:"slot"`
	Fee       uint64          `json:"fee"`
	Logs      []string        `json:"logs"`
	Events    []runtime.Event `json:"events"`
}

// Local submits to an in-process bank and waits for the receipt.
type Local struct {
	bank *runtime.Bank
}

// NewLocal returns a submitter over bank.
func NewLocal(bank *runtime.Bank) *Local {
	return &Local{bank: bank}
}

// MinimumBalance returns the bank's rent-exempt minimum for dataLen bytes.
func (l *Local) MinimumBalance(_ context.Context, dataLen uint64) (uint64, error) {
	return l.bank.MinimumBalance(dataLen), nil
}

// Send signs and executes the transaction. A transaction that executed and
// failed returns both its result and the execution error.
func (l *Local) Send(ctx context.Context, ixs []types.Instruction, signers ...types.Account) (*Result, error) {
	if len(signers) == 0 {
		return nil, ErrNoSigners
	}
	tx := runtime.NewTransaction(signers[0].PublicKey, l.bank.LatestBlockhash(), ixs...)
	if err := tx.Sign(signers...); err != nil {
		return nil, fmt.Errorf("sign: %w", err)
	}
	receipt, err := l.bank.Process(ctx, tx)
	if receipt == nil {
		return nil, err
	}
	return &Result{
		Signature: receipt.Signature,
		Slot:      receipt.Slot,
		Fee:       receipt.Fee,
		Logs:      receipt.Logs,
		Events:    receipt.Events,
	}, err
}
