package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
)

// Version is the node version reported by --version.
const Version = "0.1.0"

// ErrHelp is returned by Load after --help or --version was handled.
var ErrHelp = errors.New("help requested")

// Flags holds parsed command-line flags.
type Flags struct {
	// Commands
	Help    bool
	Version bool

	// Core
	Network string
	DataDir string
	Config  string

	// Ledger
	Backend      string
	Faucet       bool
	PayerFunding uint64

	// RPC
	RPC        bool
	RPCAddr    string
	RPCPort    int
	RPCAllowed string
	RPCCORS    string

	// Metrics
	Metrics bool

	// Cluster
	Cluster string

	// Wallet
	Wallet  string
	Keypair string
	Secret  string

	// Logging
	LogLevel string
	LogFile  string
	LogJSON  bool

	// Remaining args
	Args []string

	// Explicitly-set bool and zero-valued flags (for true/false overrides).
	SetFaucet       bool
	SetPayerFunding bool
	SetRPC          bool
	SetMetrics      bool
	SetLogJSON      bool
}

// ParseFlags parses command-line arguments, without the program name.
func ParseFlags(args []string) (*Flags, error) {
	f := &Flags{}
	fs := flag.NewFlagSet("nftmintd", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	// Commands
	fs.BoolVar(&f.Help, "help", false, "Show help message")
	fs.BoolVar(&f.Help, "h", false, "Show help message (shorthand)")
	fs.BoolVar(&f.Version, "version", false, "Show version information")
	fs.BoolVar(&f.Version, "v", false, "Show version (shorthand)")

	// Core
	fs.StringVar(&f.Network, "network", "", "Network (localnet, devnet or mainnet)")
	fs.StringVar(&f.DataDir, "datadir", "", "Data directory path")
	fs.StringVar(&f.Config, "config", "", "Config file path")
	fs.StringVar(&f.Config, "c", "", "Config file path (shorthand)")

	// Ledger
	fs.StringVar(&f.Backend, "backend", "", "Ledger storage backend (badger or memory)")
	fs.BoolVar(&f.Faucet, "faucet", false, "Enable ledger_airdrop")
	fs.Uint64Var(&f.PayerFunding, "payer-funding", 0, "Lamports airdropped to an empty payer at startup")

	// RPC
	fs.BoolVar(&f.RPC, "rpc", true, "Enable RPC server")
	fs.StringVar(&f.RPCAddr, "rpc-addr", "", "RPC listen address")
	fs.IntVar(&f.RPCPort, "rpc-port", 0, "RPC listen port")
	fs.StringVar(&f.RPCAllowed, "rpc-allowed", "", "Allowed IPs for RPC")
	fs.StringVar(&f.RPCCORS, "rpc-cors", "", "Allowed CORS origins for RPC (comma-separated)")

	// Metrics
	fs.BoolVar(&f.Metrics, "metrics", true, "Serve Prometheus metrics on the RPC listener")

	// Cluster
	fs.StringVar(&f.Cluster, "cluster", "", "Cluster RPC URL or moniker")

	// Wallet
	fs.StringVar(&f.Wallet, "wallet", "", "Keystore wallet used as payer")
	fs.StringVar(&f.Keypair, "keypair", "", "Solana CLI keypair file used as payer")
	fs.StringVar(&f.Secret, "secret", "", "Secret Manager secret version holding the payer keypair")

	// Logging
	fs.StringVar(&f.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.LogFile, "log-file", "", "Log file path")
	fs.BoolVar(&f.LogJSON, "log-json", false, "Output logs as JSON")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			f.Help = true
			return f, nil
		}
		return nil, err
	}

	f.SetFaucet = isFlagSet(fs, "faucet")
	f.SetPayerFunding = isFlagSet(fs, "payer-funding")
	f.SetRPC = isFlagSet(fs, "rpc")
	f.SetMetrics = isFlagSet(fs, "metrics")
	f.SetLogJSON = isFlagSet(fs, "log-json")

	f.Args = fs.Args()

	// Detect unparsed flags caused by positional arguments stopping the parser.
	for _, arg := range f.Args {
		if strings.HasPrefix(arg, "-") {
			return nil, fmt.Errorf("flag %q was not parsed (positional argument stopped parsing)", arg)
		}
	}

	return f, nil
}

// ApplyFlags applies command-line flags to a Config struct.
func ApplyFlags(cfg *Config, f *Flags) {
	// Core
	if f.Network != "" {
		cfg.Network = NetworkType(f.Network)
	}
	if f.DataDir != "" {
		cfg.DataDir = f.DataDir
	}

	// Ledger
	if f.Backend != "" {
		cfg.Ledger.Backend = strings.ToLower(f.Backend)
	}
	if f.SetFaucet {
		cfg.Ledger.Faucet = f.Faucet
	}
	if f.SetPayerFunding {
		cfg.Ledger.PayerFunding = f.PayerFunding
	}

	// RPC
	if f.SetRPC {
		cfg.RPC.Enabled = f.RPC
	}
	if f.RPCAddr != "" {
		cfg.RPC.Addr = f.RPCAddr
	}
	if f.RPCPort != 0 {
		cfg.RPC.Port = f.RPCPort
	}
	if f.RPCAllowed != "" {
		cfg.RPC.AllowedIPs = parseStringList(f.RPCAllowed)
	}
	if f.RPCCORS != "" {
		cfg.RPC.CORSOrigins = parseStringList(f.RPCCORS)
	}

	// Metrics
	if f.SetMetrics {
		cfg.Metrics.Enabled = f.Metrics
	}

	// Cluster
	if f.Cluster != "" {
		cfg.Cluster.Endpoint = f.Cluster
	}

	// Wallet
	if f.Wallet != "" {
		cfg.Wallet.Name = f.Wallet
	}
	if f.Keypair != "" {
		cfg.Wallet.Keypair = f.Keypair
	}
	if f.Secret != "" {
		cfg.Wallet.Secret = f.Secret
	}

	// Logging
	if f.LogLevel != "" {
		cfg.Log.Level = f.LogLevel
	}
	if f.LogFile != "" {
		cfg.Log.File = f.LogFile
	}
	if f.SetLogJSON {
		cfg.Log.JSON = f.LogJSON
	}
}

// isFlagSet checks if a flag was explicitly set.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// PrintUsage writes the daemon help text to w.
func PrintUsage(w io.Writer) {
	usage := `NFT Mint Node - local ledger running the NFT minting programs

Usage:
  nftmintd [options]
  nftmintd --help

Commands:
  --help, -h      Show this help message
  --version, -v   Show version information

Core Options:
  --network       Network: localnet (default), devnet or mainnet
  --datadir       Data directory (default: ~/.nftmint)
  --config, -c    Config file path (default: <datadir>/nftmint.conf)

Ledger Options:
  --backend         Storage backend: badger (default) or memory
  --faucet          Enable ledger_airdrop (default: on except mainnet)
  --payer-funding   Lamports airdropped to an empty payer at startup

RPC Options:
  --rpc           Enable RPC server (default: true)
  --rpc-addr      RPC listen address (default: 127.0.0.1)
  --rpc-port      RPC port (localnet: 8899, devnet: 8999, mainnet: 9099)
  --rpc-allowed   Allowed IPs for RPC (comma-separated)
  --rpc-cors      Allowed CORS origins for RPC (comma-separated)
  --metrics       Serve Prometheus metrics at /metrics (default: true)

Cluster Options:
  --cluster       Cluster RPC URL or devnet, testnet, mainnet, localnet

Payer Options (set at most one):
  --keypair       Solana CLI keypair file
  --secret        Secret Manager secret version holding a keypair
  --wallet        Keystore wallet name (password: NFTMINT_WALLET_PASSWORD)

Logging Options:
  --log-level     Log level: debug, info, warn, error (default: info)
  --log-file      Log file path (default: stdout)
  --log-json      Output logs as JSON

Environment:
  Every file key can be overridden with NFTMINT_<SECTION>_<KEY>, for
  example NFTMINT_RPC_PORT=9000 or NFTMINT_LEDGER_BACKEND=memory.

Examples:
  # Start a local ledger paying with a Solana CLI keypair
  nftmintd --keypair ~/.config/solana/id.json

  # Throwaway in-memory ledger
  nftmintd --backend memory --datadir /tmp/nftmint
`
	fmt.Fprint(w, usage)
}

// Load loads configuration with the following precedence:
// 1. Default values
// 2. Auto-create data dirs + default config (idempotent)
// 3. Config file
// 4. Environment
// 5. Command-line flags
//
// It returns ErrHelp after printing help or version text.
func Load(args []string) (*Config, *Flags, error) {
	flags, err := ParseFlags(args)
	if err != nil {
		return nil, nil, err
	}

	if flags.Help {
		PrintUsage(os.Stdout)
		return nil, flags, ErrHelp
	}
	if flags.Version {
		fmt.Println("nftmintd version " + Version)
		return nil, flags, ErrHelp
	}

	// Determine network first (needed for defaults)
	network := NetworkType(strings.ToLower(flags.Network))
	if network == "" {
		network = NetworkType(strings.ToLower(os.Getenv(EnvPrefix + "_NETWORK")))
	}

	// Start with defaults
	cfg := Default(network)

	// Override datadir if specified
	if flags.DataDir != "" {
		cfg.DataDir = flags.DataDir
	} else if dir := os.Getenv(EnvPrefix + "_DATADIR"); dir != "" {
		cfg.DataDir = dir
	}

	// Auto-create data directories and default config on first start.
	if err := EnsureDataDirs(cfg); err != nil {
		return nil, nil, fmt.Errorf("ensuring data dirs: %w", err)
	}

	// Determine config file path
	configPath := flags.Config
	if configPath == "" {
		configPath = cfg.ConfigFile()
	}

	// Load config file
	fileValues, err := LoadFile(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config file: %w", err)
	}
	if err := ApplyFileConfig(cfg, fileValues); err != nil {
		return nil, nil, fmt.Errorf("applying config file: %w", err)
	}

	if err := ApplyEnv(cfg); err != nil {
		return nil, nil, err
	}

	// Apply flags (highest precedence)
	ApplyFlags(cfg, flags)
	if err := Validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, flags, nil
}

// EnsureDataDirs creates the data directory structure and a default config
// file if they don't already exist. It is safe to call on every startup.
func EnsureDataDirs(cfg *Config) error {
	dirs := []string{
		cfg.DataDir,
		cfg.NetworkDataDir(),
		cfg.LedgerDir(),
		cfg.KeystoreDir(),
		cfg.LogsDir(),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	// Create default config if it doesn't exist.
	configPath := cfg.ConfigFile()
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := WriteDefaultConfig(configPath, cfg.Network); err != nil {
			return fmt.Errorf("writing config file: %w", err)
		}
	}

	return nil
}
