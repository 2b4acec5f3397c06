package rpcclient

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/blocto/solana-go-sdk/program/system"
	"github.com/blocto/solana-go-sdk/types"

	"github.com/Klingon-tech/klingnet-nft/internal/builtin"
	klog "github.com/Klingon-tech/klingnet-nft/internal/log"
	"github.com/Klingon-tech/klingnet-nft/internal/minter"
	"github.com/Klingon-tech/klingnet-nft/internal/nft"
	"github.com/Klingon-tech/klingnet-nft/internal/rpc"
	"github.com/Klingon-tech/klingnet-nft/internal/runtime"
	"github.com/Klingon-tech/klingnet-nft/internal/storage"
)

type testEnv struct {
	client *Client
	bank   *runtime.Bank
	payer  types.Account
}

func setupTestEnv(t *testing.T, opts ...minter.Option) *testEnv {
	t.Helper()
	klog.Init("error", false, "")

	bank, err := runtime.NewBank(storage.NewMemory(), runtime.DefaultConfig())
	if err != nil {
		t.Fatalf("NewBank: %v", err)
	}
	if err := builtin.RegisterAll(bank); err != nil {
		t.Fatalf("RegisterAll: %v", err)
	}
	if err := nft.RegisterPrograms(bank); err != nil {
		t.Fatalf("RegisterPrograms: %v", err)
	}
	payer := types.NewAccount()
	if err := bank.Airdrop(payer.PublicKey, 10_000_000_000); err != nil {
		t.Fatalf("Airdrop: %v", err)
	}

	srv := rpc.New("127.0.0.1:0", bank)
	srv.SetFaucet(1_000_000_000)
	srv.SetMinter(minter.New(minter.NewLocal(bank), payer, opts...))
	if err := srv.Start(); err != nil {
		t.Fatalf("start rpc: %v", err)
	}
	t.Cleanup(func() { srv.Stop() })

	return &testEnv{
		client: New(fmt.Sprintf("http://%s/", srv.Addr())),
		bank:   bank,
		payer:  payer,
	}
}

var sword = rpc.MintParam{Name: "Sword", Symbol: "SWD", URI: "https://x/1.json"}

func TestClient_GetInfo(t *testing.T) {
	env := setupTestEnv(t)

	info, err := env.client.GetInfo()
	if err != nil {
		t.Fatalf("GetInfo() error = %v", err)
	}
	if info.Payer != env.payer.PublicKey.ToBase58() {
		t.Errorf("payer = %q, want %q", info.Payer, env.payer.PublicKey.ToBase58())
	}
	if info.Slot != env.bank.Slot() {
		t.Errorf("slot = %d, want %d", info.Slot, env.bank.Slot())
	}
}

func TestClient_Airdrop(t *testing.T) {
	env := setupTestEnv(t)
	to := types.NewAccount().PublicKey.ToBase58()

	if _, err := env.client.Airdrop(to, 1_000_000_000); err != nil {
		t.Fatalf("Airdrop() error = %v", err)
	}
	acc, err := env.client.GetAccount(to)
	if err != nil {
		t.Fatalf("GetAccount() error = %v", err)
	}
	if acc.Lamports != 1_000_000_000 {
		t.Errorf("lamports = %d, want 1000000000", acc.Lamports)
	}
}

func TestClient_SendTransaction(t *testing.T) {
	env := setupTestEnv(t)

	bh, err := env.client.LatestBlockhash()
	if err != nil {
		t.Fatalf("LatestBlockhash() error = %v", err)
	}
	tx := runtime.NewTransaction(env.payer.PublicKey, bh.Blockhash,
		system.Transfer(system.TransferParam{From: env.payer.PublicKey, To: types.NewAccount().PublicKey, Amount: 1_000_000_000}))
	if err := tx.Sign(env.payer); err != nil {
		t.Fatalf("Sign: %v", err)
	}

	receipt, err := env.client.SendTransaction(tx)
	if err != nil {
		t.Fatalf("SendTransaction() error = %v", err)
	}
	got, err := env.client.GetTransaction(receipt.Signature)
	if err != nil {
		t.Fatalf("GetTransaction() error = %v", err)
	}
	if got.Slot != receipt.Slot {
		t.Errorf("slot = %d, want %d", got.Slot, receipt.Slot)
	}
}

func TestClient_MintExtension(t *testing.T) {
	env := setupTestEnv(t)

	minted, err := env.client.MintExtension(sword)
	if err != nil {
		t.Fatalf("MintExtension() error = %v", err)
	}
	mint, err := env.client.GetMint(minted.Mint)
	if err != nil {
		t.Fatalf("GetMint() error = %v", err)
	}
	if mint.Supply != 1 {
		t.Errorf("supply = %d, want 1", mint.Supply)
	}
	meta, err := env.client.GetMetadata(minted.Mint)
	if err != nil {
		t.Fatalf("GetMetadata() error = %v", err)
	}
	if meta.Name != sword.Name {
		t.Errorf("name = %q, want %q", meta.Name, sword.Name)
	}
	ta, err := env.client.GetTokenAccount(minted.TokenAccount)
	if err != nil {
		t.Fatalf("GetTokenAccount() error = %v", err)
	}
	if ta.Amount != 1 {
		t.Errorf("amount = %d, want 1", ta.Amount)
	}

	auth, err := env.client.DeriveAuthority("")
	if err != nil {
		t.Fatalf("DeriveAuthority() error = %v", err)
	}
	if auth.Address != minted.Authority {
		t.Errorf("authority = %q, want %q", auth.Address, minted.Authority)
	}
}

func TestClient_MintLegacy(t *testing.T) {
	env := setupTestEnv(t)

	minted, err := env.client.MintLegacy(rpc.MintParam{Name: "Shield", Symbol: "SHD", URI: "https://x/2.json"})
	if err != nil {
		t.Fatalf("MintLegacy() error = %v", err)
	}
	meta, err := env.client.GetMetadata(minted.Mint)
	if err != nil {
		t.Fatalf("GetMetadata() error = %v", err)
	}
	if meta.Standard != rpc.StandardMetaplex {
		t.Errorf("standard = %q, want %q", meta.Standard, rpc.StandardMetaplex)
	}
}

func TestClient_Estimate(t *testing.T) {
	env := setupTestEnv(t)

	est, err := env.client.Estimate(sword)
	if err != nil {
		t.Fatalf("Estimate() error = %v", err)
	}
	if est.TotalSpace <= est.MintSpace || est.Lamports == 0 {
		t.Errorf("estimate = %+v", est)
	}
}

func TestClient_Initialize(t *testing.T) {
	env := setupTestEnv(t)

	res, err := env.client.Initialize(nft.ShenqiBoxName)
	if err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if !strings.Contains(strings.Join(res.Logs, "\n"), "Greetings from: "+nft.ShenqiBoxProgramID.ToBase58()) {
		t.Errorf("logs = %v", res.Logs)
	}
}

func TestMintFailure(t *testing.T) {
	mint := types.NewAccount()
	env := setupTestEnv(t, minter.WithMintKeypairs(func() types.Account { return mint }))

	if _, err := env.client.MintExtension(sword); err != nil {
		t.Fatalf("first MintExtension() error = %v", err)
	}
	_, err := env.client.MintExtension(sword)
	f, ok := MintFailure(err)
	if !ok {
		t.Fatalf("MintFailure(%v) = false, want true", err)
	}
	if f.Category != nft.CategoryAccountState.String() {
		t.Errorf("category = %q, want %q", f.Category, nft.CategoryAccountState)
	}

	if _, ok := MintFailure(&RPCError{Code: rpc.CodeNotFound}); ok {
		t.Error("MintFailure(not found) = true, want false")
	}
}

func TestClient_Call_InvalidEndpoint(t *testing.T) {
	client := New("http://127.0.0.1:1/") // port 1, should refuse

	var result rpc.InfoResult
	err := client.Call("ledger_getInfo", nil, &result)
	if err == nil {
		t.Fatal("expected connection error")
	}
}

func TestClient_Call_MethodNotFound(t *testing.T) {
	env := setupTestEnv(t)

	var raw json.RawMessage
	err := env.client.Call("nonexistent_method", nil, &raw)
	if err == nil {
		t.Fatal("expected error for unknown method")
	}

	rpcErr, ok := err.(*RPCError)
	if !ok {
		t.Fatalf("expected RPCError, got %T: %v", err, err)
	}
	if rpcErr.Code != rpc.CodeMethodNotFound {
		t.Errorf("error code = %d, want %d", rpcErr.Code, rpc.CodeMethodNotFound)
	}
}
