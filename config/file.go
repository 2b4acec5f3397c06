package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LoadFile loads node configuration from a .conf file.
// Format: key = value (one per line, # for comments)
func LoadFile(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}
	defer file.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse key = value
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("line %d: invalid format (expected key = value)", lineNum)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove quotes if present
		if len(value) >= 2 {
			if (value[0] == '"' && value[len(value)-1] == '"') ||
				(value[0] == '\'' && value[len(value)-1] == '\'') {
				value = value[1 : len(value)-1]
			}
		}

		values[key] = value
	}

	return values, scanner.Err()
}

// ApplyFileConfig applies file configuration to a Config struct.
func ApplyFileConfig(cfg *Config, values map[string]string) error {
	for key, value := range values {
		if err := setConfigValue(cfg, key, value); err != nil {
			return fmt.Errorf("config key %q: %w", key, err)
		}
	}
	return nil
}

// setConfigValue sets a config value by key.
func setConfigValue(cfg *Config, key, value string) error {
	switch key {
	// Core
	case "network":
		cfg.Network = NetworkType(value)
	case "datadir":
		cfg.DataDir = value

	// Ledger
	case "ledger.backend":
		cfg.Ledger.Backend = strings.ToLower(value)
	case "ledger.fee":
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return err
		}
		cfg.Ledger.LamportsPerSignature = n
	case "ledger.faucet":
		cfg.Ledger.Faucet = parseBool(value)
	case "ledger.faucetlimit":
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return err
		}
		cfg.Ledger.FaucetLimit = n
	case "ledger.payerfunding":
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return err
		}
		cfg.Ledger.PayerFunding = n

	// RPC
	case "rpc.enabled", "rpc":
		cfg.RPC.Enabled = parseBool(value)
	case "rpc.addr":
		cfg.RPC.Addr = value
	case "rpc.port":
		port, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.RPC.Port = port
	case "rpc.allowed":
		cfg.RPC.AllowedIPs = parseStringList(value)
	case "rpc.cors":
		cfg.RPC.CORSOrigins = parseStringList(value)

	// Metrics
	case "metrics.enabled", "metrics":
		cfg.Metrics.Enabled = parseBool(value)
	case "metrics.path":
		cfg.Metrics.Path = value

	// Cluster
	case "cluster.endpoint", "cluster":
		cfg.Cluster.Endpoint = value

	// Wallet
	case "wallet.name", "wallet":
		cfg.Wallet.Name = value
	case "wallet.keypair":
		cfg.Wallet.Keypair = value
	case "wallet.secret":
		cfg.Wallet.Secret = value

	// Logging
	case "log.level":
		cfg.Log.Level = value
	case "log.file":
		cfg.Log.File = value
	case "log.json":
		cfg.Log.JSON = parseBool(value)

	default:
		// Unknown keys are ignored
	}
	return nil
}

// parseBool parses a boolean value.
func parseBool(s string) bool {
	s = strings.ToLower(s)
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

// parseStringList parses a comma-separated list.
func parseStringList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// WriteDefaultConfig writes a default node configuration file.
func WriteDefaultConfig(path string, network NetworkType) error {
	cfg := Default(network)
	content := `# NFT Mint Node Configuration
#
# Environment variables (NFTMINT_RPC_PORT, NFTMINT_LOG_LEVEL, ...) override
# this file; command-line flags override both.

# Network: localnet, devnet or mainnet
network = ` + string(network) + `

# Data directory (default: ~/.nftmint)
# datadir = ~/.nftmint

# ============================================================================
# Ledger
# ============================================================================

# Storage backend: badger or memory
ledger.backend = ` + cfg.Ledger.Backend + `

# Fee per signature in lamports
ledger.fee = ` + strconv.FormatUint(cfg.Ledger.LamportsPerSignature, 10) + `

# Enable ledger_airdrop and cap a single airdrop (lamports)
ledger.faucet = ` + strconv.FormatBool(cfg.Ledger.Faucet) + `
ledger.faucetlimit = ` + strconv.FormatUint(cfg.Ledger.FaucetLimit, 10) + `

# Lamports airdropped to an empty payer at startup
ledger.payerfunding = ` + strconv.FormatUint(cfg.Ledger.PayerFunding, 10) + `

# ============================================================================
# RPC Server
# ============================================================================

rpc.enabled = true
rpc.addr = 127.0.0.1
rpc.port = ` + strconv.Itoa(cfg.RPC.Port) + `
rpc.allowed = 127.0.0.1
# CORS allowed origins ("*" for all)
# rpc.cors = http://localhost:3000

# ============================================================================
# Metrics
# ============================================================================

metrics.enabled = true
metrics.path = /metrics

# ============================================================================
# Cluster (remote submission)
# ============================================================================

# RPC URL or one of devnet, testnet, mainnet, localnet
cluster.endpoint = ` + cfg.Cluster.Endpoint + `

# ============================================================================
# Payer wallet (first configured source wins)
# ============================================================================

# Solana CLI keypair file
# wallet.keypair = ~/.config/solana/id.json

# Secret Manager secret version holding a keypair
# wallet.secret = projects/<project>/secrets/<name>/versions/latest

# Keystore wallet name; the password comes from NFTMINT_WALLET_PASSWORD
# wallet.name = default

# ============================================================================
# Logging
# ============================================================================

log.level = info
# log.file =
log.json = false
`
	return os.WriteFile(path, []byte(content), 0644)
}
