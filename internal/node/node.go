// Package node provides a reusable minting node that can be embedded
// in any binary (daemon, tests, etc.).
package node

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Klingon-tech/klingnet-nft/config"
	"github.com/Klingon-tech/klingnet-nft/internal/builtin"
	klog "github.com/Klingon-tech/klingnet-nft/internal/log"
	"github.com/Klingon-tech/klingnet-nft/internal/metrics"
	"github.com/Klingon-tech/klingnet-nft/internal/minter"
	"github.com/Klingon-tech/klingnet-nft/internal/nft"
	"github.com/Klingon-tech/klingnet-nft/internal/rpc"
	"github.com/Klingon-tech/klingnet-nft/internal/runtime"
	"github.com/Klingon-tech/klingnet-nft/internal/storage"
)

// Node is a fully-initialized minting node.
type Node struct {
	cfg    *config.Config
	logger zerolog.Logger

	// Core
	db      storage.DB
	bank    *runtime.Bank
	metrics *metrics.Metrics
	reg     *prometheus.Registry

	// Minting (nil when no payer is available)
	payer  *types.Account
	minter *minter.Minter

	// RPC
	rpcServer *rpc.Server
}

// New creates and initializes a new Node. It performs all setup steps
// except starting the RPC listener.
func New(cfg *config.Config) (*Node, error) {
	// ── 1. Init logger ──────────────────────────────────────────────
	logFile := cfg.Log.File
	if logFile == "" {
		logsDir := cfg.LogsDir()
		if err := os.MkdirAll(logsDir, 0755); err != nil {
			return nil, fmt.Errorf("creating logs dir: %w", err)
		}
		logFile = filepath.Join(logsDir, "nftmintd.log")
	}
	if err := klog.Init(cfg.Log.Level, cfg.Log.JSON, logFile); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	logger := klog.WithComponent("node")

	logger.Info().
		Str("network", string(cfg.Network)).
		Str("backend", cfg.Ledger.Backend).
		Str("cluster", cfg.Cluster.Endpoint).
		Msg("Starting NFT minting node")

	// ── 2. Open storage ─────────────────────────────────────────────
	db, err := openStorage(cfg)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("path", cfg.LedgerDir()).Str("backend", cfg.Ledger.Backend).Msg("Database opened")

	// ── 3. Ledger and programs ──────────────────────────────────────
	bankCfg := runtime.DefaultConfig()
	bankCfg.LamportsPerSignature = cfg.Ledger.LamportsPerSignature
	bank, err := runtime.NewBank(db, bankCfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create ledger: %w", err)
	}
	if err := builtin.RegisterAll(bank); err != nil {
		db.Close()
		return nil, fmt.Errorf("register builtin programs: %w", err)
	}
	if err := nft.RegisterPrograms(bank); err != nil {
		db.Close()
		return nil, fmt.Errorf("register nft programs: %w", err)
	}
	for name, id := range bank.Programs() {
		logger.Debug().Str("program", name).Str("id", id.ToBase58()).Msg("Program registered")
	}

	n := &Node{
		cfg:    cfg,
		logger: logger,
		db:     db,
		bank:   bank,
	}

	// ── 4. Metrics ──────────────────────────────────────────────────
	if cfg.Metrics.Enabled {
		n.reg = prometheus.NewRegistry()
		n.reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		n.metrics = metrics.New(n.reg)
		bank.SetHooks(n.metrics)
	}

	// ── 5. Payer and minter ─────────────────────────────────────────
	payer, err := loadPayer(context.Background(), cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("load payer: %w", err)
	}
	if payer != nil {
		if err := n.fundPayer(payer); err != nil {
			db.Close()
			return nil, err
		}
		opts := []minter.Option{}
		if n.metrics != nil {
			opts = append(opts, minter.WithObserver(n.metrics))
		}
		n.payer = payer
		n.minter = minter.New(minter.NewLocal(bank), *payer, opts...)
		logger.Info().Str("payer", payer.PublicKey.ToBase58()).Msg("Minting enabled")
	} else {
		logger.Warn().Msg("No payer configured; minting endpoints disabled")
	}

	// ── 6. RPC server ───────────────────────────────────────────────
	if cfg.RPC.Enabled {
		addr := net.JoinHostPort(cfg.RPC.Addr, strconv.Itoa(cfg.RPC.Port))
		srv := rpc.New(addr, bank, cfg.RPC)
		srv.SetNetwork(string(cfg.Network))
		if n.minter != nil {
			srv.SetMinter(n.minter)
		}
		if cfg.Ledger.Faucet {
			srv.SetFaucet(cfg.Ledger.FaucetLimit)
		}
		if n.reg != nil {
			srv.Handle(cfg.Metrics.Path, promhttp.HandlerFor(n.reg, promhttp.HandlerOpts{}))
		}
		n.rpcServer = srv
	} else {
		logger.Warn().Msg("RPC disabled by config")
	}

	return n, nil
}

// openStorage opens the configured ledger backend.
func openStorage(cfg *config.Config) (storage.DB, error) {
	switch cfg.Ledger.Backend {
	case config.BackendMemory:
		db, err := storage.NewBadgerInMemory()
		if err != nil {
			return nil, fmt.Errorf("open in-memory database: %w", err)
		}
		return db, nil
	default:
		if err := os.MkdirAll(cfg.LedgerDir(), 0755); err != nil {
			return nil, fmt.Errorf("creating ledger dir: %w", err)
		}
		db, err := storage.NewBadger(cfg.LedgerDir())
		if err != nil {
			return nil, fmt.Errorf("open database at %s: %w", cfg.LedgerDir(), err)
		}
		return db, nil
	}
}

// fundPayer airdrops the configured funding to a payer with no balance.
func (n *Node) fundPayer(payer *types.Account) error {
	funding := n.cfg.Ledger.PayerFunding
	if funding == 0 {
		return nil
	}
	acc, err := n.bank.GetAccount(payer.PublicKey)
	if err == nil && acc.Lamports > 0 {
		return nil
	}
	if err != nil && !errors.Is(err, runtime.ErrAccountNotFound) {
		return fmt.Errorf("load payer account: %w", err)
	}
	if err := n.bank.Airdrop(payer.PublicKey, funding); err != nil {
		return fmt.Errorf("fund payer: %w", err)
	}
	n.logger.Info().
		Str("payer", payer.PublicKey.ToBase58()).
		Uint64("lamports", funding).
		Msg("Payer funded")
	return nil
}

// Start launches the RPC listener.
func (n *Node) Start() error {
	if n.rpcServer != nil {
		if err := n.rpcServer.Start(); err != nil {
			return fmt.Errorf("start rpc: %w", err)
		}
		n.logger.Info().Str("addr", n.rpcServer.Addr()).Msg("RPC server started")
		if n.reg != nil {
			n.logger.Info().Str("path", n.cfg.Metrics.Path).Msg("Metrics exporter enabled")
		}
	}

	n.logger.Info().
		Uint64("slot", n.bank.Slot()).
		Bool("minting", n.minter != nil).
		Msg("Node started successfully")

	return nil
}

// Stop performs graceful shutdown in reverse order.
func (n *Node) Stop() {
	if n.rpcServer != nil {
		n.rpcServer.Stop()
	}
	if n.db != nil {
		n.db.Close()
	}

	n.logger.Info().Msg("Goodbye!")
}

// RPCAddr returns the address the RPC server is listening on.
func (n *Node) RPCAddr() string {
	if n.rpcServer == nil {
		return ""
	}
	return n.rpcServer.Addr()
}

// Bank returns the node's ledger.
func (n *Node) Bank() *runtime.Bank {
	return n.bank
}

// Minter returns the node's minter, or nil when minting is disabled.
func (n *Node) Minter() *minter.Minter {
	return n.minter
}
