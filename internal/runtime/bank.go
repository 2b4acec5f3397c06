// Package runtime is the in-process ledger that executes the minting
// programs. It stores accounts, verifies transaction signatures, charges
// fees, dispatches instructions and cross-program invocations, enforces
// account ownership and rent rules, and commits each transaction
// atomically: either every account change is written in one batch or only
// the fee is taken.
package runtime

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/mr-tron/base58"
	"github.com/rs/zerolog"

	"github.com/Klingon-tech/klingnet-nft/internal/log"
	"github.com/Klingon-tech/klingnet-nft/internal/storage"
	"github.com/Klingon-tech/klingnet-nft/pkg/crypto"
	"github.com/Klingon-tech/klingnet-nft/pkg/spl"
)

// Storage key prefixes.
var (
	accountPrefix = []byte("a/")
	receiptPrefix = []byte("r/")
	metaPrefix    = []byte("m/")

	slotKey      = []byte("slot")
	blockhashKey = []byte("blockhash")
)

// Config holds the ledger parameters.
type Config struct {
	Rent                 spl.Rent
	LamportsPerSignature uint64
	MaxRecentBlockhashes int
}

// DefaultConfig returns mainnet-like parameters.
func DefaultConfig() Config {
	return Config{
		Rent:                 spl.DefaultRent(),
		LamportsPerSignature: 5000,
		MaxRecentBlockhashes: 150,
	}
}

// Hooks observes every transaction the bank finishes, committed or not.
// receipt is nil when the transaction was rejected before execution.
type Hooks interface {
	TransactionProcessed(receipt *Receipt, err error, elapsed time.Duration)
}

// Bank is the ledger state plus the registered programs.
type Bank struct {
	mu sync.Mutex

	batcher  storage.Batcher
	accounts *storage.Table
	receipts *storage.Table
	meta     *storage.Table

	cfg         Config
	programs    map[common.PublicKey]registeredProgram
	slot        uint64
	blockhashes []string
	hooks       Hooks
	logger      zerolog.Logger
}

// NewBank opens the ledger stored in db. The store must support atomic
// batches.
func NewBank(db storage.DB, cfg Config) (*Bank, error) {
	batcher, ok := db.(storage.Batcher)
	if !ok {
		return nil, fmt.Errorf("ledger store %T does not support atomic batches", db)
	}
	if cfg.MaxRecentBlockhashes <= 0 {
		cfg.MaxRecentBlockhashes = DefaultConfig().MaxRecentBlockhashes
	}
	b := &Bank{
		batcher:  batcher,
		accounts: storage.NewTable(db, accountPrefix),
		receipts: storage.NewTable(db, receiptPrefix),
		meta:     storage.NewTable(db, metaPrefix),
		cfg:      cfg,
		programs: make(map[common.PublicKey]registeredProgram),
		logger:   log.Runtime,
	}

	blockhash := base58.Encode(crypto.Hash([]byte("genesis")).Bytes())
	if v, err := b.meta.Get(slotKey); err == nil {
		if len(v) != 8 {
			return nil, fmt.Errorf("corrupt slot record")
		}
		b.slot = binary.BigEndian.Uint64(v)
		if h, err := b.meta.Get(blockhashKey); err == nil {
			blockhash = string(h)
		}
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("load slot: %w", err)
	}
	b.blockhashes = []string{blockhash}
	return b, nil
}

// SetHooks installs a transaction observer.
func (b *Bank) SetHooks(h Hooks) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hooks = h
}

// Register installs a program at id and creates its executable account if
// it does not exist yet.
func (b *Bank) Register(id common.PublicKey, name string, p Program) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.programs[id]; ok {
		return fmt.Errorf("program %s already registered", id.ToBase58())
	}
	b.programs[id] = registeredProgram{name: name, program: p}

	if _, err := b.getAccount(id); err == nil {
		return nil
	} else if !errors.Is(err, ErrAccountNotFound) {
		return err
	}
	acc := &Account{Lamports: 1, Owner: NativeLoaderID, Data: []byte(name), Executable: true}
	batch := b.batcher.NewBatch()
	if err := putAccount(b.accounts.In(batch), id, acc); err != nil {
		return err
	}
	return batch.Commit()
}

// ProgramName returns the registered name of a program.
func (b *Bank) ProgramName(id common.PublicKey) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.programs[id]
	return p.name, ok
}

// Programs returns the registered program ids by name.
func (b *Bank) Programs() map[string]common.PublicKey {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]common.PublicKey, len(b.programs))
	for id, p := range b.programs {
		out[p.name] = id
	}
	return out
}

// Rent returns the rent schedule.
func (b *Bank) Rent() spl.Rent {
	return b.cfg.Rent
}

// MinimumBalance returns the rent-exempt minimum for dataLen bytes.
func (b *Bank) MinimumBalance(dataLen uint64) uint64 {
	return b.cfg.Rent.MinimumBalance(dataLen)
}

// LamportsPerSignature is the fee charged per transaction signature.
func (b *Bank) LamportsPerSignature() uint64 {
	return b.cfg.LamportsPerSignature
}

// Slot returns the number of executed transactions.
func (b *Bank) Slot() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.slot
}

// LatestBlockhash returns the blockhash new transactions should reference.
func (b *Bank) LatestBlockhash() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.blockhashes[len(b.blockhashes)-1]
}

// GetAccount returns the stored state of key.
func (b *Bank) GetAccount(key common.PublicKey) (*Account, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.getAccount(key)
}

func (b *Bank) getAccount(key common.PublicKey) (*Account, error) {
	v, err := b.accounts.Get(key.Bytes())
	if errors.Is(err, storage.ErrNotFound) {
		return nil, accountErr(key, ErrAccountNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load account %s: %w", key.ToBase58(), err)
	}
	var acc Account
	if err := json.Unmarshal(v, &acc); err != nil {
		return nil, fmt.Errorf("decode account %s: %w", key.ToBase58(), err)
	}
	return &acc, nil
}

// Receipt returns the receipt of an executed transaction.
func (b *Bank) Receipt(signature string) (*Receipt, error) {
	v, err := b.receipts.Get([]byte(signature))
	if err != nil {
		return nil, fmt.Errorf("receipt %s: %w", signature, err)
	}
	var r Receipt
	if err := json.Unmarshal(v, &r); err != nil {
		return nil, fmt.Errorf("decode receipt %s: %w", signature, err)
	}
	return &r, nil
}

// Airdrop credits lamports to an address outside of any transaction, the
// way a development faucet does.
func (b *Bank) Airdrop(to common.PublicKey, lamports uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	acc, err := b.getAccount(to)
	if errors.Is(err, ErrAccountNotFound) {
		acc = newEmptyAccount()
	} else if err != nil {
		return err
	}
	acc.Lamports += lamports
	if !b.cfg.Rent.IsExempt(acc.Lamports, uint64(len(acc.Data))) {
		return accountErr(to, ErrInsufficientFundsForRent)
	}
	batch := b.batcher.NewBatch()
	if err := putAccount(b.accounts.In(batch), to, acc); err != nil {
		return err
	}
	if err := batch.Commit(); err != nil {
		return fmt.Errorf("airdrop: %w", err)
	}
	b.logger.Info().Str("to", to.ToBase58()).Uint64("lamports", lamports).Msg("Airdrop")
	return nil
}

// StateDigest hashes every stored account in address order.
func (b *Bank) StateDigest() (crypto.Digest, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var parts [][]byte
	err := b.accounts.ForEach(nil, func(key, value []byte) error {
		parts = append(parts, key, value)
		return nil
	})
	if err != nil {
		return crypto.Digest{}, fmt.Errorf("state digest: %w", err)
	}
	return crypto.HashParts(parts...), nil
}

// Process verifies and executes tx. A transaction that fails verification
// is rejected with a nil receipt. Otherwise the fee is charged, the
// instructions run, and either all of their effects are committed or none
// are; the receipt is returned in both cases, together with the execution
// error on failure.
func (b *Bank) Process(ctx context.Context, tx *Transaction) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	b.mu.Lock()
	defer b.mu.Unlock()

	receipt, err := b.process(tx)
	if b.hooks != nil {
		b.hooks.TransactionProcessed(receipt, err, time.Since(start))
	}
	return receipt, err
}

func (b *Bank) process(tx *Transaction) (*Receipt, error) {
	if err := tx.Verify(); err != nil {
		return nil, err
	}
	sig := tx.ID()
	if ok, _ := b.receipts.Has([]byte(sig)); ok {
		return nil, ErrAlreadyProcessed
	}
	if !slices.Contains(b.blockhashes, tx.RecentBlockhash) {
		return nil, fmt.Errorf("%w: %q", ErrBlockhashNotFound, tx.RecentBlockhash)
	}
	for _, ix := range tx.Instructions {
		if _, ok := b.programs[ix.ProgramID]; !ok {
			return nil, accountErr(ix.ProgramID, ErrProgramNotFound)
		}
	}

	txc, err := b.load(tx)
	if err != nil {
		return nil, err
	}
	fee := uint64(len(tx.Signatures)) * b.cfg.LamportsPerSignature
	payer := txc.accounts[tx.FeePayer]
	if payer.Lamports < fee {
		return nil, accountErr(tx.FeePayer, ErrInsufficientFundsForFee)
	}
	payer.Lamports -= fee
	payerAfterFee := payer.Clone()

	slot := b.slot + 1
	txc.slot = slot

	var execErr error
	for i, ix := range tx.Instructions {
		if err := txc.execute(ix.ProgramID, txc.infosFor(ix), ix.Data); err != nil {
			execErr = &InstructionError{Index: i, Program: ix.ProgramID, Err: err}
			break
		}
	}
	var changed []common.PublicKey
	if execErr == nil {
		changed = txc.changed()
		execErr = txc.checkRent(changed)
	}

	receipt := &Receipt{
		Signature: sig,
		Slot:      slot,
		Fee:       fee,
		Logs:      txc.logs,
		Events:    txc.events,
	}
	final := txc.accounts
	if execErr != nil {
		receipt.Err = execErr.Error()
		receipt.Events = nil
		final = map[common.PublicKey]*Account{tx.FeePayer: payerAfterFee}
		changed = []common.PublicKey{tx.FeePayer}
	}
	if err := b.commit(final, changed, receipt); err != nil {
		return nil, err
	}

	ev := b.logger.Debug()
	if execErr != nil {
		ev = b.logger.Info().Err(execErr)
	}
	ev.Str("signature", sig).Uint64("slot", slot).Int("accounts", len(changed)).Msg("Transaction processed")
	return receipt, execErr
}

// load reads every account the transaction references into a fresh
// overlay.
func (b *Bank) load(tx *Transaction) (*txContext, error) {
	txc := &txContext{
		programs: b.programs,
		rent:     b.cfg.Rent,
		logger:   b.logger,
		accounts: make(map[common.PublicKey]*Account),
		original: make(map[common.PublicKey]*Account),
		signers:  make(map[common.PublicKey]bool),
		writable: make(map[common.PublicKey]bool),
	}
	add := func(key common.PublicKey) error {
		if _, ok := txc.accounts[key]; ok {
			return nil
		}
		acc, err := b.getAccount(key)
		if errors.Is(err, ErrAccountNotFound) {
			acc = newEmptyAccount()
		} else if err != nil {
			return err
		}
		txc.original[key] = acc
		txc.accounts[key] = acc.Clone()
		return nil
	}

	if err := add(tx.FeePayer); err != nil {
		return nil, err
	}
	txc.writable[tx.FeePayer] = true
	for _, s := range tx.Signatures {
		txc.signers[s.PubKey] = true
	}
	for _, ix := range tx.Instructions {
		if err := add(ix.ProgramID); err != nil {
			return nil, err
		}
		for _, m := range ix.Accounts {
			if err := add(m.PubKey); err != nil {
				return nil, err
			}
			if m.IsWritable {
				txc.writable[m.PubKey] = true
			}
		}
	}
	return txc, nil
}

// commit writes the changed accounts, the receipt and the next slot in one
// batch.
func (b *Bank) commit(accounts map[common.PublicKey]*Account, changed []common.PublicKey, receipt *Receipt) error {
	slices.SortFunc(changed, func(x, y common.PublicKey) int {
		return bytes.Compare(x[:], y[:])
	})

	batch := b.batcher.NewBatch()
	accountBatch := b.accounts.In(batch)
	for _, key := range changed {
		if err := putAccount(accountBatch, key, accounts[key]); err != nil {
			return err
		}
	}
	rb, err := json.Marshal(receipt)
	if err != nil {
		return fmt.Errorf("encode receipt: %w", err)
	}
	if err := b.receipts.In(batch).Put([]byte(receipt.Signature), rb); err != nil {
		return err
	}

	prev, _ := base58.Decode(b.blockhashes[len(b.blockhashes)-1])
	var slotBuf [8]byte
	binary.BigEndian.PutUint64(slotBuf[:], receipt.Slot)
	next := base58.Encode(crypto.HashParts(prev, slotBuf[:], []byte(receipt.Signature)).Bytes())
	metaBatch := b.meta.In(batch)
	if err := metaBatch.Put(slotKey, slotBuf[:]); err != nil {
		return err
	}
	if err := metaBatch.Put(blockhashKey, []byte(next)); err != nil {
		return err
	}
	if err := batch.Commit(); err != nil {
		return fmt.Errorf("commit slot %d: %w", receipt.Slot, err)
	}

	b.slot = receipt.Slot
	b.blockhashes = append(b.blockhashes, next)
	if over := len(b.blockhashes) - b.cfg.MaxRecentBlockhashes; over > 0 {
		b.blockhashes = b.blockhashes[over:]
	}
	return nil
}

// putAccount stages acc in the accounts table, deleting it when it holds
// no lamports.
func putAccount(batch storage.Batch, key common.PublicKey, acc *Account) error {
	k := key.Bytes()
	if acc.Lamports == 0 {
		return batch.Delete(k)
	}
	v, err := json.Marshal(acc)
	if err != nil {
		return fmt.Errorf("encode account %s: %w", key.ToBase58(), err)
	}
	return batch.Put(k, v)
}
