package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks runtime node config for obvious operator mistakes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	switch cfg.Network {
	case Localnet, Devnet, Mainnet:
	default:
		return fmt.Errorf("network must be %q, %q or %q", Localnet, Devnet, Mainnet)
	}
	if cfg.DataDir == "" {
		return errors.New("datadir is required")
	}

	switch cfg.Ledger.Backend {
	case BackendBadger, BackendMemory:
	default:
		return fmt.Errorf("ledger.backend must be %q or %q", BackendBadger, BackendMemory)
	}
	if cfg.Ledger.LamportsPerSignature == 0 {
		return errors.New("ledger.fee must be positive")
	}
	if cfg.Ledger.Faucet && cfg.Ledger.FaucetLimit == 0 {
		return errors.New("ledger.faucetlimit must be positive when the faucet is enabled")
	}
	if cfg.Network == Mainnet && (cfg.Ledger.Faucet || cfg.Ledger.PayerFunding > 0) {
		return errors.New("the faucet and payer funding are not available on mainnet")
	}

	if cfg.RPC.Port < 0 || cfg.RPC.Port > 65535 {
		return errors.New("rpc.port must be in range [0, 65535]")
	}
	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		return errors.New("metrics.path must start with /")
	}
	if cfg.Metrics.Enabled && cfg.Metrics.Path == "/" {
		return errors.New("metrics.path cannot be the RPC root")
	}
	if cfg.Cluster.Endpoint == "" {
		return errors.New("cluster.endpoint is required")
	}

	sources := 0
	for _, s := range []string{cfg.Wallet.Name, cfg.Wallet.Keypair, cfg.Wallet.Secret} {
		if s != "" {
			sources++
		}
	}
	if sources > 1 {
		return errors.New("set only one of wallet.name, wallet.keypair and wallet.secret")
	}
	return nil
}
