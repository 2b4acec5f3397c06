package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "NFTMINT"

// envOverrides mirrors the overridable settings. Field names map to
// variables word by word (RPCPort is NFTMINT_RPC_PORT). Unset variables
// leave their pointer nil.
type envOverrides struct {
	Network *string `split_words:"true"`
	Datadir *string `split_words:"true"`

	LedgerBackend      *string `split_words:"true"`
	LedgerFee          *uint64 `split_words:"true"`
	LedgerFaucet       *bool   `split_words:"true"`
	LedgerFaucetLimit  *uint64 `split_words:"true"`
	LedgerPayerFunding *uint64 `split_words:"true"`

	RPCEnabled *bool     `split_words:"true"`
	RPCAddr    *string   `split_words:"true"`
	RPCPort    *int      `split_words:"true"`
	RPCAllowed *[]string `split_words:"true"`
	RPCCors    *[]string `split_words:"true"`

	MetricsEnabled *bool   `split_words:"true"`
	MetricsPath    *string `split_words:"true"`

	ClusterEndpoint *string `split_words:"true"`

	WalletName     *string `split_words:"true"`
	WalletKeypair  *string `split_words:"true"`
	WalletSecret   *string `split_words:"true"`
	WalletPassword *string `split_words:"true"`

	LogLevel *string `split_words:"true"`
	LogFile  *string `split_words:"true"`
	LogJSON  *bool   `split_words:"true"`
}

// ApplyEnv applies NFTMINT_* environment variables to cfg.
func ApplyEnv(cfg *Config) error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("process environment: %w", err)
	}

	setString := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	setBool := func(dst *bool, v *bool) {
		if v != nil {
			*dst = *v
		}
	}
	setUint := func(dst *uint64, v *uint64) {
		if v != nil {
			*dst = *v
		}
	}

	if env.Network != nil {
		cfg.Network = NetworkType(*env.Network)
	}
	setString(&cfg.DataDir, env.Datadir)

	setString(&cfg.Ledger.Backend, env.LedgerBackend)
	setUint(&cfg.Ledger.LamportsPerSignature, env.LedgerFee)
	setBool(&cfg.Ledger.Faucet, env.LedgerFaucet)
	setUint(&cfg.Ledger.FaucetLimit, env.LedgerFaucetLimit)
	setUint(&cfg.Ledger.PayerFunding, env.LedgerPayerFunding)

	setBool(&cfg.RPC.Enabled, env.RPCEnabled)
	setString(&cfg.RPC.Addr, env.RPCAddr)
	if env.RPCPort != nil {
		cfg.RPC.Port = *env.RPCPort
	}
	if env.RPCAllowed != nil {
		cfg.RPC.AllowedIPs = *env.RPCAllowed
	}
	if env.RPCCors != nil {
		cfg.RPC.CORSOrigins = *env.RPCCors
	}

	setBool(&cfg.Metrics.Enabled, env.MetricsEnabled)
	setString(&cfg.Metrics.Path, env.MetricsPath)

	setString(&cfg.Cluster.Endpoint, env.ClusterEndpoint)

	setString(&cfg.Wallet.Name, env.WalletName)
	setString(&cfg.Wallet.Keypair, env.WalletKeypair)
	setString(&cfg.Wallet.Secret, env.WalletSecret)
	setString(&cfg.Wallet.Password, env.WalletPassword)

	setString(&cfg.Log.Level, env.LogLevel)
	setString(&cfg.Log.File, env.LogFile)
	setBool(&cfg.Log.JSON, env.LogJSON)
	return nil
}
