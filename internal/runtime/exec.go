package runtime

import (
	"fmt"
	"slices"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/rs/zerolog"

	"github.com/Klingon-tech/klingnet-nft/pkg/spl"
)

// txContext is the working state of one transaction. Accounts are loaded
// once into an overlay; nothing reaches storage unless the whole
// transaction succeeds.
type txContext struct {
	programs map[common.PublicKey]registeredProgram
	rent     spl.Rent
	slot     uint64
	logger   zerolog.Logger

	accounts map[common.PublicKey]*Account
	original map[common.PublicKey]*Account
	signers  map[common.PublicKey]bool
	writable map[common.PublicKey]bool

	stack  []common.PublicKey
	logs   []string
	events []Event
}

func (t *txContext) log(line string) {
	t.logs = append(t.logs, line)
	t.logger.Debug().Msg(line)
}

// infosFor builds the top-level account views of ix using the
// transaction-wide signer and writable flags.
func (t *txContext) infosFor(ix types.Instruction) []*AccountInfo {
	infos := make([]*AccountInfo, 0, len(ix.Accounts))
	for _, m := range ix.Accounts {
		infos = append(infos, &AccountInfo{
			Key:        m.PubKey,
			IsSigner:   t.signers[m.PubKey],
			IsWritable: t.writable[m.PubKey],
			Account:    t.accounts[m.PubKey],
		})
	}
	return infos
}

// execute runs one program invocation and verifies its account changes.
func (t *txContext) execute(programID common.PublicKey, accounts []*AccountInfo, data []byte) error {
	prog, ok := t.programs[programID]
	if !ok {
		return accountErr(programID, ErrProgramNotFound)
	}
	if len(t.stack) >= maxStackHeight {
		return ErrCallDepth
	}
	// Only direct self-recursion may re-enter a program.
	if n := len(t.stack); n > 0 && t.stack[n-1] != programID && slices.Contains(t.stack, programID) {
		return ErrReentrancy
	}
	t.stack = append(t.stack, programID)
	defer func() { t.stack = t.stack[:len(t.stack)-1] }()

	id := programID.ToBase58()
	t.log(fmt.Sprintf("Program %s invoke [%d]", id, len(t.stack)))

	fr := newFrame(programID, accounts)
	ctx := &InvokeContext{
		ProgramID: programID,
		Accounts:  accounts,
		Data:      data,
		txc:       t,
		frame:     fr,
	}
	err := prog.program.Process(ctx)
	if err == nil {
		err = fr.verify()
	}
	if err != nil {
		t.log("Program " + id + " failed: " + err.Error())
		return err
	}
	t.log("Program " + id + " success")
	return nil
}

// changed lists the writable accounts whose state differs from storage.
func (t *txContext) changed() []common.PublicKey {
	var out []common.PublicKey
	for key, acc := range t.accounts {
		if !t.writable[key] {
			continue
		}
		if !acc.Equal(t.original[key]) {
			out = append(out, key)
		}
	}
	return out
}

// checkRent requires every changed account to be either closed (zero
// lamports) or rent exempt.
func (t *txContext) checkRent(keys []common.PublicKey) error {
	for _, key := range keys {
		acc := t.accounts[key]
		if acc.Lamports == 0 {
			continue
		}
		if !t.rent.IsExempt(acc.Lamports, uint64(len(acc.Data))) {
			return accountErr(key, ErrInsufficientFundsForRent)
		}
	}
	return nil
}
