// Package config handles node configuration.
//
// Values are layered in this order, later layers winning:
//   - built-in defaults for the selected network
//   - the key = value config file in the data directory
//   - NFTMINT_* environment variables
//   - command-line flags
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// NetworkType names the cluster a node mirrors. It selects default ports,
// the data subdirectory and the cluster endpoint used for submission.
type NetworkType string

const (
	Localnet NetworkType = "localnet"
	Devnet   NetworkType = "devnet"
	Mainnet  NetworkType = "mainnet"
)

// Storage backends of the ledger.
const (
	BackendBadger = "badger"
	BackendMemory = "memory"
)

// Config holds node runtime configuration.
type Config struct {
	// Core
	Network NetworkType `conf:"network"`
	DataDir string      `conf:"datadir"`

	// Local ledger
	Ledger LedgerConfig

	// RPC server
	RPC RPCConfig

	// Prometheus endpoint on the RPC listener
	Metrics MetricsConfig

	// Remote cluster used by cluster submission
	Cluster ClusterConfig

	// Payer keypair
	Wallet WalletConfig

	// Logging
	Log LogConfig
}

// LedgerConfig holds the in-process ledger settings.
type LedgerConfig struct {
	Backend              string `conf:"ledger.backend"`
	LamportsPerSignature uint64 `conf:"ledger.fee"`
	// Faucet enables ledger_airdrop.
	Faucet bool `conf:"ledger.faucet"`
	// FaucetLimit caps a single airdrop in lamports.
	FaucetLimit uint64 `conf:"ledger.faucetlimit"`
	// PayerFunding is airdropped to an empty payer at startup.
	PayerFunding uint64 `conf:"ledger.payerfunding"`
}

// RPCConfig holds RPC server settings.
type RPCConfig struct {
	Enabled     bool     `conf:"rpc.enabled"`
	Addr        string   `conf:"rpc.addr"`
	Port        int      `conf:"rpc.port"`
	AllowedIPs  []string `conf:"rpc.allowed"`
	CORSOrigins []string `conf:"rpc.cors"` // Allowed CORS origins ("*" = all).
}

// MetricsConfig holds the Prometheus exporter settings.
type MetricsConfig struct {
	Enabled bool   `conf:"metrics.enabled"`
	Path    string `conf:"metrics.path"`
}

// ClusterConfig holds the remote cluster settings.
type ClusterConfig struct {
	// Endpoint is an RPC URL or one of devnet, testnet, mainnet, localnet.
	Endpoint string `conf:"cluster.endpoint"`
}

// WalletConfig selects where the payer keypair comes from: a keystore
// wallet Name, a Keypair file or a Secret Manager Secret. At most one may
// be set.
type WalletConfig struct {
	Name    string `conf:"wallet.name"`
	Keypair string `conf:"wallet.keypair"`
	// Secret is a Secret Manager version resource name.
	Secret string `conf:"wallet.secret"`
	// Password unlocks the keystore wallet. Read from the environment
	// only, never from the file.
	Password string
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// HasPayer reports whether a payer source is configured.
func (w WalletConfig) HasPayer() bool {
	return w.Name != "" || w.Keypair != "" || w.Secret != ""
}

// =============================================================================
// Directory helpers
// =============================================================================

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.nftmint
//	macOS:   ~/Library/Application Support/NFTMint
//	Windows: %APPDATA%\NFTMint
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".nftmint"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "NFTMint")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "NFTMint")
		}
		return filepath.Join(home, "AppData", "Roaming", "NFTMint")
	default:
		return filepath.Join(home, ".nftmint")
	}
}

// NetworkDataDir returns the network-specific data directory.
func (c *Config) NetworkDataDir() string {
	return filepath.Join(c.DataDir, string(c.Network))
}

// LedgerDir returns the ledger database directory.
func (c *Config) LedgerDir() string {
	return filepath.Join(c.NetworkDataDir(), "ledger")
}

// KeystoreDir returns the keystore directory.
func (c *Config) KeystoreDir() string {
	return filepath.Join(c.DataDir, "keystore")
}

// LogsDir returns the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "nftmint.conf")
}
