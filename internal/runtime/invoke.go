package runtime

import (
	"encoding/base64"
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/system"
	"github.com/blocto/solana-go-sdk/types"

	"github.com/Klingon-tech/klingnet-nft/pkg/spl"
)

// maxStackHeight bounds the invocation stack: one top-level instruction
// plus four nested cross-program invocations.
const maxStackHeight = 5

// AccountInfo is an instruction's view of an account. The embedded Account
// is shared with every other view of the same address in the transaction.
type AccountInfo struct {
	Key        common.PublicKey
	IsSigner   bool
	IsWritable bool
	*Account
}

// InvokeContext is what a program sees while processing one instruction.
type InvokeContext struct {
	ProgramID common.PublicKey
	Accounts  []*AccountInfo
	Data      []byte

	txc   *txContext
	frame *frame
}

// Account returns the i-th account of the instruction.
func (c *InvokeContext) Account(i int) (*AccountInfo, error) {
	if i < 0 || i >= len(c.Accounts) {
		return nil, fmt.Errorf("%w: want index %d, have %d", ErrNotEnoughAccountKeys, i, len(c.Accounts))
	}
	return c.Accounts[i], nil
}

// Signer returns the i-th account and requires it to have signed.
func (c *InvokeContext) Signer(i int) (*AccountInfo, error) {
	ai, err := c.Account(i)
	if err != nil {
		return nil, err
	}
	if !ai.IsSigner {
		return nil, accountErr(ai.Key, ErrAccountNotSigner)
	}
	return ai, nil
}

// Writable returns the i-th account and requires it to be writable.
func (c *InvokeContext) Writable(i int) (*AccountInfo, error) {
	ai, err := c.Account(i)
	if err != nil {
		return nil, err
	}
	if !ai.IsWritable {
		return nil, accountErr(ai.Key, ErrAccountNotWritable)
	}
	return ai, nil
}

// StackHeight is 1 for a top-level instruction and grows by one per nested
// invocation.
func (c *InvokeContext) StackHeight() int {
	return len(c.txc.stack)
}

// Rent returns the ledger rent schedule.
func (c *InvokeContext) Rent() spl.Rent {
	return c.txc.rent
}

// Slot returns the slot the transaction executes in.
func (c *InvokeContext) Slot() uint64 {
	return c.txc.slot
}

// Log appends a program log line to the transaction receipt.
func (c *InvokeContext) Log(format string, args ...any) {
	c.txc.log("Program log: " + fmt.Sprintf(format, args...))
}

// EmitEvent records an encoded event on the receipt and logs it as
// program data.
func (c *InvokeContext) EmitEvent(data []byte) {
	c.txc.log("Program data: " + base64.StdEncoding.EncodeToString(data))
	c.txc.events = append(c.txc.events, Event{
		Program: c.ProgramID.ToBase58(),
		Data:    append([]byte(nil), data...),
	})
}

// Invoke runs ix as a cross-program invocation with the caller's
// privileges.
func (c *InvokeContext) Invoke(ix types.Instruction) error {
	return c.InvokeSigned(ix)
}

// InvokeSigned runs ix as a cross-program invocation. Each seed set in
// signerSeeds authorizes the program address it derives under the calling
// program to sign.
func (c *InvokeContext) InvokeSigned(ix types.Instruction, signerSeeds ...[][]byte) error {
	pdaSigners := make(map[common.PublicKey]bool, len(signerSeeds))
	for _, seeds := range signerSeeds {
		addr, err := common.CreateProgramAddress(seeds, c.ProgramID)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSeeds, err)
		}
		pdaSigners[addr] = true
	}

	if c.find(ix.ProgramID) == nil {
		return accountErr(ix.ProgramID, ErrMissingAccount)
	}
	// A key listed more than once carries the union of its flags.
	wantSigner := make(map[common.PublicKey]bool, len(ix.Accounts))
	wantWritable := make(map[common.PublicKey]bool, len(ix.Accounts))
	for _, m := range ix.Accounts {
		wantSigner[m.PubKey] = wantSigner[m.PubKey] || m.IsSigner
		wantWritable[m.PubKey] = wantWritable[m.PubKey] || m.IsWritable
	}
	callee := make([]*AccountInfo, 0, len(ix.Accounts))
	for _, m := range ix.Accounts {
		ai := c.find(m.PubKey)
		if ai == nil {
			return accountErr(m.PubKey, ErrMissingAccount)
		}
		signer, writable := c.privileges(m.PubKey)
		if wantWritable[m.PubKey] && !writable {
			return accountErr(m.PubKey, ErrPrivilegeEscalation)
		}
		if wantSigner[m.PubKey] && !signer && !pdaSigners[m.PubKey] {
			return accountErr(m.PubKey, ErrUnauthorizedSigner)
		}
		callee = append(callee, &AccountInfo{
			Key:        m.PubKey,
			IsSigner:   wantSigner[m.PubKey],
			IsWritable: wantWritable[m.PubKey],
			Account:    ai.Account,
		})
	}

	if err := c.frame.verify(); err != nil {
		return err
	}
	if err := c.txc.execute(ix.ProgramID, callee, ix.Data); err != nil {
		return err
	}
	c.frame.snapshot()
	return nil
}

// CreateAccount funds, allocates and assigns newAccount through the system
// program. seeds sign for newAccount when it is a program address of the
// caller.
func (c *InvokeContext) CreateAccount(payer, newAccount common.PublicKey, lamports, space uint64, owner common.PublicKey, seeds ...[][]byte) error {
	ix := system.CreateAccount(system.CreateAccountParam{
		From:     payer,
		New:      newAccount,
		Owner:    owner,
		Lamports: lamports,
		Space:    space,
	})
	return c.InvokeSigned(ix, seeds...)
}

func (c *InvokeContext) find(key common.PublicKey) *AccountInfo {
	for _, ai := range c.Accounts {
		if ai.Key == key {
			return ai
		}
	}
	return nil
}

// privileges merges the flags of every entry for key in the caller's
// account list.
func (c *InvokeContext) privileges(key common.PublicKey) (signer, writable bool) {
	for _, ai := range c.Accounts {
		if ai.Key == key {
			signer = signer || ai.IsSigner
			writable = writable || ai.IsWritable
		}
	}
	return signer, writable
}
