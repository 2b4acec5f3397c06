package wallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/blocto/solana-go-sdk/types"
)

// KeyKind says what a keystore entry encrypts.
type KeyKind string

const (
	// KindSeed is a 64-byte BIP-39 seed; accounts are derived from it.
	KindSeed KeyKind = "seed"
	// KindKeypair is a single 64-byte ed25519 keypair.
	KindKeypair KeyKind = "keypair"
)

// Keystore errors.
var (
	ErrWalletExists   = errors.New("wallet already exists")
	ErrWalletNotFound = errors.New("wallet not found")
	ErrNotDerivable   = errors.New("keypair wallets hold a single account")
)

// keystoreFile is the on-disk JSON format of an encrypted wallet.
type keystoreFile struct {
	Version   int            `json:"version"`
	CreatedAt time.Time      `json:"created_at"`
	Kind      KeyKind        `json:"kind"`
	Sealed    []byte         `json:"sealed"`
	Accounts  []AccountEntry `json:"accounts"`
	NextIndex uint32         `json:"next_index"`
}

// AccountEntry records a derived account.
type AccountEntry struct {
	Index   uint32 `json:"index"`
	Name    string `json:"name"`
	Address string `json:"address"` // base58
}

// Keystore manages encrypted wallets in a directory.
type Keystore struct {
	path string
}

// NewKeystore opens the keystore at path, creating the directory.
func NewKeystore(path string) (*Keystore, error) {
	if err := os.MkdirAll(path, 0700); err != nil {
		return nil, fmt.Errorf("create keystore dir: %w", err)
	}
	return &Keystore{path: path}, nil
}

func (ks *Keystore) walletPath(name string) string {
	return filepath.Join(ks.path, name+".wallet")
}

// Create stores secret encrypted under password.
func (ks *Keystore) Create(name string, kind KeyKind, secret, password []byte, params EncryptionParams) error {
	switch kind {
	case KindSeed:
		if len(secret) != SeedSize {
			return fmt.Errorf("seed must be %d bytes, got %d", SeedSize, len(secret))
		}
	case KindKeypair:
		if len(secret) != 64 {
			return fmt.Errorf("%w: got %d", ErrKeypairLength, len(secret))
		}
	default:
		return fmt.Errorf("unknown key kind %q", kind)
	}
	path := ks.walletPath(name)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %q", ErrWalletExists, name)
	}
	sealed, err := Encrypt(secret, password, params)
	if err != nil {
		return fmt.Errorf("encrypt %s: %w", kind, err)
	}
	return ks.writeFile(path, &keystoreFile{
		Version:   1,
		CreatedAt: time.Now().UTC(),
		Kind:      kind,
		Sealed:    sealed,
		Accounts:  []AccountEntry{},
	})
}

// Load decrypts a wallet.
func (ks *Keystore) Load(name string, password []byte) (KeyKind, []byte, error) {
	kf, err := ks.readFile(name)
	if err != nil {
		return "", nil, err
	}
	secret, err := Decrypt(kf.Sealed, password)
	if err != nil {
		return "", nil, fmt.Errorf("decrypt wallet %q: %w", name, err)
	}
	return kf.Kind, secret, nil
}

// Signer returns the keypair of account index. Keypair wallets only have
// index 0.
func (ks *Keystore) Signer(name string, password []byte, index uint32) (types.Account, error) {
	kind, secret, err := ks.Load(name, password)
	if err != nil {
		return types.Account{}, err
	}
	defer wipe(secret)
	switch kind {
	case KindSeed:
		return DeriveAccount(secret, index)
	case KindKeypair:
		if index != 0 {
			return types.Account{}, ErrNotDerivable
		}
		return types.AccountFromBytes(secret)
	}
	return types.Account{}, fmt.Errorf("unknown key kind %q", kind)
}

// AddAccount records a derived account. Re-adding the same index and
// address is a no-op.
func (ks *Keystore) AddAccount(name string, acct AccountEntry) error {
	kf, err := ks.readFile(name)
	if err != nil {
		return err
	}
	for _, existing := range kf.Accounts {
		if existing.Index == acct.Index {
			if existing.Address == acct.Address {
				return nil
			}
			return fmt.Errorf("account index %d already exists", acct.Index)
		}
	}
	kf.Accounts = append(kf.Accounts, acct)
	if acct.Index >= kf.NextIndex {
		kf.NextIndex = acct.Index + 1
	}
	return ks.writeFile(ks.walletPath(name), kf)
}

// ListAccounts returns the recorded accounts of a wallet.
func (ks *Keystore) ListAccounts(name string) ([]AccountEntry, error) {
	kf, err := ks.readFile(name)
	if err != nil {
		return nil, err
	}
	return kf.Accounts, nil
}

// NextIndex returns the first unrecorded account index.
func (ks *Keystore) NextIndex(name string) (uint32, error) {
	kf, err := ks.readFile(name)
	if err != nil {
		return 0, err
	}
	return kf.NextIndex, nil
}

// List returns the names of all wallets.
func (ks *Keystore) List() ([]string, error) {
	entries, err := os.ReadDir(ks.path)
	if err != nil {
		return nil, fmt.Errorf("read keystore dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if ext := filepath.Ext(name); ext == ".wallet" {
			names = append(names, name[:len(name)-len(ext)])
		}
	}
	return names, nil
}

// Delete removes a wallet file.
func (ks *Keystore) Delete(name string) error {
	path := ks.walletPath(name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("%w: %q", ErrWalletNotFound, name)
	}
	return os.Remove(path)
}

func (ks *Keystore) writeFile(path string, kf *keystoreFile) error {
	data, err := json.MarshalIndent(kf, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal wallet: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write wallet: %w", err)
	}
	return nil
}

func (ks *Keystore) readFile(name string) (*keystoreFile, error) {
	data, err := os.ReadFile(ks.walletPath(name))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %q", ErrWalletNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("read wallet: %w", err)
	}
	var kf keystoreFile
	if err := json.Unmarshal(data, &kf); err != nil {
		return nil, fmt.Errorf("parse wallet: %w", err)
	}
	if kf.Version != 1 {
		return nil, fmt.Errorf("unsupported wallet version: %d", kf.Version)
	}
	return &kf, nil
}
