package config

// LamportsPerSOL is the number of lamports in one SOL.
const LamportsPerSOL = 1_000_000_000

// DefaultLocalnet returns the default configuration of a standalone node.
func DefaultLocalnet() *Config {
	return &Config{
		Network: Localnet,
		DataDir: DefaultDataDir(),
		Ledger: LedgerConfig{
			Backend:              BackendBadger,
			LamportsPerSignature: 5000,
			Faucet:               true,
			FaucetLimit:          1000 * LamportsPerSOL,
			PayerFunding:         100 * LamportsPerSOL,
		},
		RPC: RPCConfig{
			Enabled:    true,
			Addr:       "127.0.0.1",
			Port:       8899,
			AllowedIPs: []string{"127.0.0.1"},
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Cluster: ClusterConfig{
			Endpoint: "localnet",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultDevnet mirrors devnet: cluster submission goes to devnet and the
// local faucet stays on.
func DefaultDevnet() *Config {
	cfg := DefaultLocalnet()
	cfg.Network = Devnet
	cfg.RPC.Port = 8999
	cfg.Cluster.Endpoint = "devnet"
	return cfg
}

// DefaultMainnet targets mainnet: the local faucet and payer funding are
// disabled.
func DefaultMainnet() *Config {
	cfg := DefaultLocalnet()
	cfg.Network = Mainnet
	cfg.RPC.Port = 9099
	cfg.Cluster.Endpoint = "mainnet"
	cfg.Ledger.Faucet = false
	cfg.Ledger.PayerFunding = 0
	return cfg
}

// Default returns the default configuration for the given network.
func Default(network NetworkType) *Config {
	switch network {
	case Devnet:
		return DefaultDevnet()
	case Mainnet:
		return DefaultMainnet()
	default:
		return DefaultLocalnet()
	}
}
