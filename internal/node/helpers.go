package node

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/blocto/solana-go-sdk/types"

	"github.com/Klingon-tech/klingnet-nft/config"
	"github.com/Klingon-tech/klingnet-nft/internal/wallet"
)

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// loadPayer resolves the payer from the configured source. With no source
// a localnet node that funds payers generates a throwaway one; any other
// node returns nil and runs without minting.
func loadPayer(ctx context.Context, cfg *config.Config) (*types.Account, error) {
	w := cfg.Wallet
	switch {
	case w.Keypair != "":
		acc, err := wallet.ReadKeypairFile(expandHome(w.Keypair))
		if err != nil {
			return nil, fmt.Errorf("keypair %s: %w", w.Keypair, err)
		}
		return &acc, nil
	case w.Secret != "":
		acc, err := wallet.LoadSecretKeypair(ctx, w.Secret)
		if err != nil {
			return nil, err
		}
		return &acc, nil
	case w.Name != "":
		ks, err := wallet.NewKeystore(cfg.KeystoreDir())
		if err != nil {
			return nil, fmt.Errorf("open keystore: %w", err)
		}
		acc, err := ks.Signer(w.Name, []byte(w.Password), 0)
		if err != nil {
			return nil, fmt.Errorf("wallet %q: %w", w.Name, err)
		}
		return &acc, nil
	}
	if cfg.Network == config.Localnet && cfg.Ledger.PayerFunding > 0 {
		acc := types.NewAccount()
		return &acc, nil
	}
	return nil, nil
}
