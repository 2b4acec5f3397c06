package node

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/blocto/solana-go-sdk/types"

	"github.com/Klingon-tech/klingnet-nft/config"
	"github.com/Klingon-tech/klingnet-nft/internal/nft"
	"github.com/Klingon-tech/klingnet-nft/internal/rpc"
	"github.com/Klingon-tech/klingnet-nft/internal/rpcclient"
	"github.com/Klingon-tech/klingnet-nft/internal/wallet"
)

var mintArgs = nft.MintArgs{Name: "Sword", Symbol: "SWD", URI: "https://x/1.json"}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}
	tests := []struct {
		input, want string
	}{
		{"~/foo/bar", filepath.Join(home, "foo/bar")},
		{"~/.nftmint/payer.json", filepath.Join(home, ".nftmint/payer.json")},
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
		{"", ""},
	}
	for _, tt := range tests {
		got := expandHome(tt.input)
		if got != tt.want {
			t.Errorf("expandHome(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

// testConfig returns a localnet config with an in-memory ledger and an RPC
// server on a random port.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultLocalnet()
	cfg.DataDir = t.TempDir()
	cfg.Ledger.Backend = config.BackendMemory
	cfg.RPC.Port = 0
	cfg.Log.Level = "error"
	return cfg
}

func startNode(t *testing.T, cfg *config.Config) (*Node, *rpcclient.Client) {
	t.Helper()
	n, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := n.Start(); err != nil {
		n.Stop()
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(n.Stop)
	return n, rpcclient.New(fmt.Sprintf("http://%s/", n.RPCAddr()))
}

func TestLoadPayer_Keypair(t *testing.T) {
	cfg := testConfig(t)
	want := types.NewAccount()
	path := filepath.Join(t.TempDir(), "payer.json")
	if err := wallet.WriteKeypairFile(path, want); err != nil {
		t.Fatalf("WriteKeypairFile: %v", err)
	}
	cfg.Wallet.Keypair = path

	got, err := loadPayer(context.Background(), cfg)
	if err != nil {
		t.Fatalf("loadPayer() error = %v", err)
	}
	if got.PublicKey != want.PublicKey {
		t.Errorf("loadPayer() = %s, want %s", got.PublicKey.ToBase58(), want.PublicKey.ToBase58())
	}
}

func TestLoadPayer_Keystore(t *testing.T) {
	cfg := testConfig(t)
	want := types.NewAccount()
	ks, err := wallet.NewKeystore(cfg.KeystoreDir())
	if err != nil {
		t.Fatalf("NewKeystore: %v", err)
	}
	params := wallet.EncryptionParams{Memory: 64, Iterations: 1, Parallelism: 1}
	if err := ks.Create("payer", wallet.KindKeypair, want.PrivateKey, []byte("pw"), params); err != nil {
		t.Fatalf("Create: %v", err)
	}
	cfg.Wallet.Name = "payer"
	cfg.Wallet.Password = "pw"

	got, err := loadPayer(context.Background(), cfg)
	if err != nil {
		t.Fatalf("loadPayer() error = %v", err)
	}
	if got.PublicKey != want.PublicKey {
		t.Errorf("loadPayer() = %s, want %s", got.PublicKey.ToBase58(), want.PublicKey.ToBase58())
	}

	cfg.Wallet.Password = "wrong"
	if _, err := loadPayer(context.Background(), cfg); err == nil {
		t.Fatal("loadPayer() with wrong password succeeded")
	}
}

func TestLoadPayer_None(t *testing.T) {
	tests := []struct {
		name    string
		network config.NetworkType
		funding uint64
		want    bool
	}{
		{"localnet throwaway", config.Localnet, config.LamportsPerSOL, true},
		{"localnet unfunded", config.Localnet, 0, false},
		{"devnet", config.Devnet, config.LamportsPerSOL, false},
		{"mainnet", config.Mainnet, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default(tt.network)
			cfg.Ledger.PayerFunding = tt.funding
			got, err := loadPayer(context.Background(), cfg)
			if err != nil {
				t.Fatalf("loadPayer() error = %v", err)
			}
			if (got != nil) != tt.want {
				t.Fatalf("loadPayer() = %v, want payer %v", got, tt.want)
			}
		})
	}
}

func TestLoadPayer_MissingFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.Wallet.Keypair = filepath.Join(t.TempDir(), "missing.json")
	if _, err := loadPayer(context.Background(), cfg); err == nil {
		t.Fatal("expected error for missing keypair file")
	}
}

func TestNode_MintOverRPC(t *testing.T) {
	cfg := testConfig(t)
	n, client := startNode(t, cfg)

	info, err := client.GetInfo()
	if err != nil {
		t.Fatalf("GetInfo() error = %v", err)
	}
	if info.Network != string(config.Localnet) {
		t.Errorf("network = %q, want localnet", info.Network)
	}
	if info.Payer == "" || info.Payer != n.Minter().Payer().ToBase58() {
		t.Errorf("payer = %q, want the minter payer", info.Payer)
	}
	if info.LamportsPerSignature != cfg.Ledger.LamportsPerSignature {
		t.Errorf("lamports_per_signature = %d, want %d", info.LamportsPerSignature, cfg.Ledger.LamportsPerSignature)
	}

	payer, err := client.GetAccount(info.Payer)
	if err != nil {
		t.Fatalf("GetAccount(payer) error = %v", err)
	}
	if payer.Lamports != cfg.Ledger.PayerFunding {
		t.Errorf("payer lamports = %d, want %d", payer.Lamports, cfg.Ledger.PayerFunding)
	}

	minted, err := client.MintExtension(rpc.MintParam{Name: "Sword", Symbol: "SWD", URI: "https://x/1.json"})
	if err != nil {
		t.Fatalf("MintExtension() error = %v", err)
	}
	meta, err := client.GetMetadata(minted.Mint)
	if err != nil {
		t.Fatalf("GetMetadata() error = %v", err)
	}
	if meta.Name != "Sword" {
		t.Errorf("name = %q, want Sword", meta.Name)
	}
}

func TestNode_Metrics(t *testing.T) {
	cfg := testConfig(t)
	n, client := startNode(t, cfg)

	if _, err := client.MintExtension(rpc.MintParam{Name: "Sword", Symbol: "SWD", URI: "u"}); err != nil {
		t.Fatalf("MintExtension() error = %v", err)
	}

	resp, err := http.Get("http://" + n.RPCAddr() + cfg.Metrics.Path)
	if err != nil {
		t.Fatalf("get metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	for _, want := range []string{"nftmint_transactions_total", "nftmint_mints_total", "go_goroutines"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestNode_NoPayer(t *testing.T) {
	cfg := testConfig(t)
	cfg.Ledger.PayerFunding = 0
	_, client := startNode(t, cfg)

	_, err := client.MintExtension(rpc.MintParam{Name: "Sword"})
	rpcErr, ok := err.(*rpcclient.RPCError)
	if !ok || rpcErr.Code != rpc.CodeDisabled {
		t.Fatalf("MintExtension() error = %v, want code %d", err, rpc.CodeDisabled)
	}
}

func TestNode_RPCDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.RPC.Enabled = false

	n, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer n.Stop()
	if err := n.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if n.RPCAddr() != "" {
		t.Errorf("RPCAddr() = %q, want empty", n.RPCAddr())
	}
}

func TestNode_BadgerPersists(t *testing.T) {
	cfg := testConfig(t)
	cfg.Ledger.Backend = config.BackendBadger
	payer := types.NewAccount()
	path := filepath.Join(t.TempDir(), "payer.json")
	if err := wallet.WriteKeypairFile(path, payer); err != nil {
		t.Fatalf("WriteKeypairFile: %v", err)
	}
	cfg.Wallet.Keypair = path

	n, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	minted, err := n.Minter().MintExtension(context.Background(), mintArgs)
	if err != nil {
		n.Stop()
		t.Fatalf("MintExtension() error = %v", err)
	}
	n.Stop()

	// Reopen: the mint survives and the payer is not funded twice.
	n, err = New(cfg)
	if err != nil {
		t.Fatalf("reopen: New() error = %v", err)
	}
	defer n.Stop()
	if _, err := n.Bank().GetAccount(minted.Mint); err != nil {
		t.Fatalf("GetAccount(mint) after reopen: %v", err)
	}
	acc, err := n.Bank().GetAccount(payer.PublicKey)
	if err != nil {
		t.Fatalf("GetAccount(payer): %v", err)
	}
	if acc.Lamports >= cfg.Ledger.PayerFunding {
		t.Errorf("payer lamports = %d, want less than %d after paying for a mint", acc.Lamports, cfg.Ledger.PayerFunding)
	}
}
