package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/blocto/solana-go-sdk/program/system"
	"github.com/blocto/solana-go-sdk/types"

	"github.com/Klingon-tech/klingnet-nft/config"
	"github.com/Klingon-tech/klingnet-nft/internal/builtin"
	klog "github.com/Klingon-tech/klingnet-nft/internal/log"
	"github.com/Klingon-tech/klingnet-nft/internal/minter"
	"github.com/Klingon-tech/klingnet-nft/internal/nft"
	"github.com/Klingon-tech/klingnet-nft/internal/runtime"
	"github.com/Klingon-tech/klingnet-nft/internal/storage"
	"github.com/Klingon-tech/klingnet-nft/pkg/spl"
)

const testFaucetLimit = 5_000_000_000

// testEnv holds all components for an RPC test.
type testEnv struct {
	server *Server
	bank   *runtime.Bank
	payer  types.Account
	url    string
}

func newTestBank(t *testing.T) *runtime.Bank {
	t.Helper()
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
	return bank
}

func setupTestEnv(t *testing.T, opts ...minter.Option) *testEnv {
	t.Helper()
	klog.Init("error", false, "")

	bank := newTestBank(t)
	payer := types.NewAccount()
	if err := bank.Airdrop(payer.PublicKey, 10_000_000_000); err != nil {
		t.Fatalf("Airdrop: %v", err)
	}

	// Create and start RPC server on random port.
	srv := New("127.0.0.1:0", bank)
	srv.SetNetwork("localnet")
	srv.SetFaucet(testFaucetLimit)
	srv.SetMinter(minter.New(minter.NewLocal(bank), payer, opts...))
	if err := srv.Start(); err != nil {
		t.Fatalf("start rpc: %v", err)
	}
	t.Cleanup(func() { srv.Stop() })

	return &testEnv{
		server: srv,
		bank:   bank,
		payer:  payer,
		url:    fmt.Sprintf("http://%s/", srv.Addr()),
	}
}

func rpcCall(t *testing.T, url, method string, params interface{}) Response {
	t.Helper()
	req := Request{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
	}
	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post %s: %v", method, err)
	}
	defer resp.Body.Close()

	var rpcResp Response
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return rpcResp
}

// decodeResult re-decodes a generic result into target.
func decodeResult(t *testing.T, v interface{}, target interface{}) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal result: %v", err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
}

func mustSucceed(t *testing.T, resp Response) {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("unexpected error: %d %s", resp.Error.Code, resp.Error.Message)
	}
}

func wantCode(t *testing.T, resp Response, code int) {
	t.Helper()
	if resp.Error == nil {
		t.Fatalf("expected error code %d, got result %v", code, resp.Result)
	}
	if resp.Error.Code != code {
		t.Fatalf("error code = %d (%s), want %d", resp.Error.Code, resp.Error.Message, code)
	}
}

var sword = MintParam{Name: "Sword", Symbol: "SWD", URI: "https://x/1.json"}

// ── Tests ───────────────────────────────────────────────────────────────

func TestRPC_LedgerGetInfo(t *testing.T) {
	env := setupTestEnv(t)

	resp := rpcCall(t, env.url, "ledger_getInfo", nil)
	mustSucceed(t, resp)

	var result InfoResult
	decodeResult(t, resp.Result, &result)

	if result.Network != "localnet" {
		t.Errorf("network = %q, want localnet", result.Network)
	}
	if result.Blockhash != env.bank.LatestBlockhash() {
		t.Errorf("blockhash = %q, want %q", result.Blockhash, env.bank.LatestBlockhash())
	}
	if result.Payer != env.payer.PublicKey.ToBase58() {
		t.Errorf("payer = %q, want %q", result.Payer, env.payer.PublicKey.ToBase58())
	}
	if !result.Faucet {
		t.Error("faucet = false, want true")
	}
	if result.StateDigest == "" {
		t.Error("state_digest is empty")
	}
	for _, name := range []string{nft.Token2022NFTName, nft.MetaplexNFTName, nft.ShenqiBoxName} {
		if _, ok := result.Programs[name]; !ok {
			t.Errorf("programs missing %q", name)
		}
	}
}

func TestRPC_LedgerGetLatestBlockhash(t *testing.T) {
	env := setupTestEnv(t)

	resp := rpcCall(t, env.url, "ledger_getLatestBlockhash", nil)
	mustSucceed(t, resp)

	var result BlockhashResult
	decodeResult(t, resp.Result, &result)
	if result.Blockhash != env.bank.LatestBlockhash() {
		t.Errorf("blockhash = %q, want %q", result.Blockhash, env.bank.LatestBlockhash())
	}
}

func TestRPC_LedgerGetAccount(t *testing.T) {
	env := setupTestEnv(t)

	resp := rpcCall(t, env.url, "ledger_getAccount", AddressParam{Address: env.payer.PublicKey.ToBase58()})
	mustSucceed(t, resp)

	var result AccountResult
	decodeResult(t, resp.Result, &result)
	if result.Lamports != 10_000_000_000 {
		t.Errorf("lamports = %d, want 10000000000", result.Lamports)
	}
	if result.Owner != spl.SystemProgramID.ToBase58() {
		t.Errorf("owner = %s, want system program", result.Owner)
	}
}

func TestRPC_LedgerGetAccount_Errors(t *testing.T) {
	env := setupTestEnv(t)

	tests := []struct {
		name   string
		params interface{}
		code   int
	}{
		{"no params", nil, CodeInvalidParams},
		{"empty address", AddressParam{}, CodeInvalidParams},
		{"bad address", AddressParam{Address: "not-base58!"}, CodeInvalidParams},
		{"missing", AddressParam{Address: types.NewAccount().PublicKey.ToBase58()}, CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wantCode(t, rpcCall(t, env.url, "ledger_getAccount", tt.params), tt.code)
		})
	}
}

func TestRPC_LedgerAirdrop(t *testing.T) {
	env := setupTestEnv(t)
	to := types.NewAccount().PublicKey.ToBase58()

	resp := rpcCall(t, env.url, "ledger_airdrop", AirdropParam{Address: to, Lamports: 1_000_000_000})
	mustSucceed(t, resp)
	var result AirdropResult
	decodeResult(t, resp.Result, &result)
	if result.Balance != 1_000_000_000 {
		t.Errorf("balance = %d, want 1000000000", result.Balance)
	}

	// Second airdrop accumulates.
	resp = rpcCall(t, env.url, "ledger_airdrop", AirdropParam{Address: to, Lamports: 1_000_000_000})
	mustSucceed(t, resp)
	decodeResult(t, resp.Result, &result)
	if result.Balance != 2_000_000_000 {
		t.Errorf("balance = %d, want 2000000000", result.Balance)
	}

	wantCode(t, rpcCall(t, env.url, "ledger_airdrop", AirdropParam{Address: to, Lamports: testFaucetLimit + 1}), CodeInvalidParams)
	wantCode(t, rpcCall(t, env.url, "ledger_airdrop", AirdropParam{Address: to}), CodeInvalidParams)
}

func TestRPC_LedgerAirdrop_Disabled(t *testing.T) {
	env := setupTestEnv(t)
	env.server.SetFaucet(0)

	resp := rpcCall(t, env.url, "ledger_airdrop", AirdropParam{Address: env.payer.PublicKey.ToBase58(), Lamports: 1})
	wantCode(t, resp, CodeDisabled)
}

func TestRPC_TxSendAndGet(t *testing.T) {
	env := setupTestEnv(t)
	to := types.NewAccount().PublicKey

	tx := runtime.NewTransaction(env.payer.PublicKey, env.bank.LatestBlockhash(),
		system.Transfer(system.TransferParam{From: env.payer.PublicKey, To: to, Amount: 1_000_000_000}))
	if err := tx.Sign(env.payer); err != nil {
		t.Fatalf("Sign: %v", err)
	}

	resp := rpcCall(t, env.url, "tx_send", TxSendParam{Transaction: tx})
	mustSucceed(t, resp)
	var receipt runtime.Receipt
	decodeResult(t, resp.Result, &receipt)
	if receipt.Signature != tx.ID() {
		t.Errorf("signature = %q, want %q", receipt.Signature, tx.ID())
	}
	if !receipt.Succeeded() {
		t.Fatalf("receipt err = %q", receipt.Err)
	}

	acc, err := env.bank.GetAccount(to)
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if acc.Lamports != 1_000_000_000 {
		t.Errorf("recipient lamports = %d, want 1000000000", acc.Lamports)
	}

	resp = rpcCall(t, env.url, "tx_get", SignatureParam{Signature: receipt.Signature})
	mustSucceed(t, resp)
	var got runtime.Receipt
	decodeResult(t, resp.Result, &got)
	if got.Signature != receipt.Signature || got.Slot != receipt.Slot {
		t.Errorf("tx_get = %+v, want %+v", got, receipt)
	}

	// Replaying the same transaction is rejected.
	wantCode(t, rpcCall(t, env.url, "tx_send", TxSendParam{Transaction: tx}), CodeTxRejected)
}

func TestRPC_TxSend_Unsigned(t *testing.T) {
	env := setupTestEnv(t)

	tx := runtime.NewTransaction(env.payer.PublicKey, env.bank.LatestBlockhash(),
		system.Transfer(system.TransferParam{From: env.payer.PublicKey, To: types.NewAccount().PublicKey, Amount: 1}))

	wantCode(t, rpcCall(t, env.url, "tx_send", TxSendParam{Transaction: tx}), CodeTxRejected)
	wantCode(t, rpcCall(t, env.url, "tx_send", TxSendParam{}), CodeInvalidParams)
}

func TestRPC_TxGet_NotFound(t *testing.T) {
	env := setupTestEnv(t)

	wantCode(t, rpcCall(t, env.url, "tx_get", SignatureParam{Signature: "nope"}), CodeNotFound)
	wantCode(t, rpcCall(t, env.url, "tx_get", SignatureParam{}), CodeInvalidParams)
}

func TestRPC_NFTMintExtension(t *testing.T) {
	env := setupTestEnv(t)

	resp := rpcCall(t, env.url, "nft_mintExtension", sword)
	mustSucceed(t, resp)
	var minted MintedResult
	decodeResult(t, resp.Result, &minted)

	if minted.Pipeline != minter.PipelineExtension {
		t.Errorf("pipeline = %q, want %q", minted.Pipeline, minter.PipelineExtension)
	}
	if minted.Signature == "" || minted.Authority == "" {
		t.Errorf("minted = %+v, want signature and authority", minted)
	}
	var sawMinted bool
	for _, ev := range minted.Events {
		if ev.Type == "NftMinted" {
			sawMinted = true
			if ev.Mint != minted.Mint || ev.Recipient != env.payer.PublicKey.ToBase58() {
				t.Errorf("NftMinted = %+v", ev)
			}
		}
	}
	if !sawMinted {
		t.Errorf("events = %+v, want NftMinted", minted.Events)
	}

	// Mint state.
	resp = rpcCall(t, env.url, "nft_getMint", AddressParam{Address: minted.Mint})
	mustSucceed(t, resp)
	var mint MintInfoResult
	decodeResult(t, resp.Result, &mint)
	if mint.Supply != 1 || mint.Decimals != 0 {
		t.Errorf("supply = %d decimals = %d, want 1 and 0", mint.Supply, mint.Decimals)
	}
	if mint.MintAuthority != "revoked" {
		t.Errorf("mint_authority = %q, want revoked", mint.MintAuthority)
	}
	if mint.TokenProgram != spl.Token2022ProgramID.ToBase58() {
		t.Errorf("token_program = %q, want Token-2022", mint.TokenProgram)
	}
	if mint.MetadataPointer != minted.Mint {
		t.Errorf("metadata_pointer = %q, want the mint", mint.MetadataPointer)
	}

	// Embedded metadata.
	resp = rpcCall(t, env.url, "nft_getMetadata", AddressParam{Address: minted.Mint})
	mustSucceed(t, resp)
	var meta MetadataResult
	decodeResult(t, resp.Result, &meta)
	if meta.Standard != StandardEmbedded {
		t.Errorf("standard = %q, want %q", meta.Standard, StandardEmbedded)
	}
	if meta.Name != sword.Name || meta.Symbol != sword.Symbol || meta.URI != sword.URI {
		t.Errorf("metadata = %+v, want %+v", meta, sword)
	}
	if meta.Additional[nft.LevelField] != nft.InitialLevel {
		t.Errorf("additional = %v, want level %s", meta.Additional, nft.InitialLevel)
	}
	if meta.UpdateAuthority != minted.Authority {
		t.Errorf("update_authority = %q, want %q", meta.UpdateAuthority, minted.Authority)
	}

	// Holding account.
	resp = rpcCall(t, env.url, "nft_getTokenAccount", AddressParam{Address: minted.TokenAccount})
	mustSucceed(t, resp)
	var ta TokenAccountResult
	decodeResult(t, resp.Result, &ta)
	if ta.Amount != 1 || ta.Mint != minted.Mint || ta.Owner != env.payer.PublicKey.ToBase58() {
		t.Errorf("token account = %+v", ta)
	}
}

func TestRPC_NFTMintLegacy(t *testing.T) {
	env := setupTestEnv(t)

	shield := MintParam{Name: "Shield", Symbol: "SHD", URI: "https://x/2.json"}
	resp := rpcCall(t, env.url, "nft_mintLegacy", shield)
	mustSucceed(t, resp)
	var minted MintedResult
	decodeResult(t, resp.Result, &minted)
	if minted.Metadata == "" || minted.MasterEdition == "" {
		t.Fatalf("minted = %+v, want metadata and master edition", minted)
	}

	resp = rpcCall(t, env.url, "nft_getMetadata", AddressParam{Address: minted.Mint})
	mustSucceed(t, resp)
	var meta MetadataResult
	decodeResult(t, resp.Result, &meta)
	if meta.Standard != StandardMetaplex {
		t.Errorf("standard = %q, want %q", meta.Standard, StandardMetaplex)
	}
	if meta.Address != minted.Metadata {
		t.Errorf("address = %q, want %q", meta.Address, minted.Metadata)
	}
	if meta.Name != shield.Name || meta.Symbol != shield.Symbol || meta.URI != shield.URI {
		t.Errorf("metadata = %+v, want %+v", meta, shield)
	}
	if meta.MasterEdition == nil || meta.MasterEdition.Address != minted.MasterEdition {
		t.Errorf("master_edition = %+v, want %q", meta.MasterEdition, minted.MasterEdition)
	}

	resp = rpcCall(t, env.url, "nft_getMint", AddressParam{Address: minted.Mint})
	mustSucceed(t, resp)
	var mint MintInfoResult
	decodeResult(t, resp.Result, &mint)
	if mint.TokenProgram != spl.TokenProgramID.ToBase58() {
		t.Errorf("token_program = %q, want legacy token program", mint.TokenProgram)
	}
}

func TestRPC_NFTMintLegacy_InvalidArgs(t *testing.T) {
	env := setupTestEnv(t)

	resp := rpcCall(t, env.url, "nft_mintLegacy", MintParam{Name: strings.Repeat("n", spl.MaxNameLength+1)})
	wantCode(t, resp, CodeInvalidParams)
}

func TestRPC_NFTMint_Failure(t *testing.T) {
	mint := types.NewAccount()
	env := setupTestEnv(t, minter.WithMintKeypairs(func() types.Account { return mint }))

	mustSucceed(t, rpcCall(t, env.url, "nft_mintExtension", sword))

	resp := rpcCall(t, env.url, "nft_mintExtension", sword)
	wantCode(t, resp, CodeMintFailed)
	var failure MintFailure
	decodeResult(t, resp.Error.Data, &failure)
	if failure.Category != nft.CategoryAccountState.String() {
		t.Errorf("category = %q, want %q", failure.Category, nft.CategoryAccountState)
	}
	if failure.Mint != mint.PublicKey.ToBase58() {
		t.Errorf("mint = %q, want %q", failure.Mint, mint.PublicKey.ToBase58())
	}
	if failure.Signature == "" {
		t.Error("signature is empty")
	}
}

func TestRPC_NFTMint_Disabled(t *testing.T) {
	env := setupTestEnv(t)
	env.server.SetMinter(nil)

	for _, method := range []string{"nft_mintExtension", "nft_mintLegacy", "nft_estimate"} {
		t.Run(method, func(t *testing.T) {
			wantCode(t, rpcCall(t, env.url, method, sword), CodeDisabled)
		})
	}
	wantCode(t, rpcCall(t, env.url, "nft_initialize", ProgramParam{Program: nft.ShenqiBoxName}), CodeDisabled)
}

func TestRPC_NFTInitialize(t *testing.T) {
	env := setupTestEnv(t)

	tests := []struct {
		name    string
		program string
	}{
		{"by name", nft.ShenqiBoxName},
		{"by address", nft.Token2022NFTProgramID.ToBase58()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := rpcCall(t, env.url, "nft_initialize", ProgramParam{Program: tt.program})
			mustSucceed(t, resp)
			var result InitializeResult
			decodeResult(t, resp.Result, &result)
			if !strings.Contains(strings.Join(result.Logs, "\n"), "Greetings from: "+result.Program) {
				t.Errorf("logs = %v, want greeting from %s", result.Logs, result.Program)
			}
		})
	}

	wantCode(t, rpcCall(t, env.url, "nft_initialize", ProgramParam{Program: "nope"}), CodeInvalidParams)
	wantCode(t, rpcCall(t, env.url, "nft_initialize", ProgramParam{Program: types.NewAccount().PublicKey.ToBase58()}), CodeNotFound)
}

func TestRPC_NFTDeriveAuthority(t *testing.T) {
	env := setupTestEnv(t)

	want, bump, err := nft.DeriveAuthority(nft.Token2022NFTProgramID)
	if err != nil {
		t.Fatalf("DeriveAuthority: %v", err)
	}

	resp := rpcCall(t, env.url, "nft_deriveAuthority", nil)
	mustSucceed(t, resp)
	var result AuthorityResult
	decodeResult(t, resp.Result, &result)
	if result.Address != want.ToBase58() || result.Bump != bump {
		t.Errorf("authority = %s/%d, want %s/%d", result.Address, result.Bump, want.ToBase58(), bump)
	}
}

func TestRPC_NFTEstimate(t *testing.T) {
	env := setupTestEnv(t)

	resp := rpcCall(t, env.url, "nft_estimate", sword)
	mustSucceed(t, resp)
	var est EstimateResult
	decodeResult(t, resp.Result, &est)

	resp = rpcCall(t, env.url, "nft_mintExtension", sword)
	mustSucceed(t, resp)
	var minted MintedResult
	decodeResult(t, resp.Result, &minted)

	resp = rpcCall(t, env.url, "nft_getMint", AddressParam{Address: minted.Mint})
	mustSucceed(t, resp)
	var mint MintInfoResult
	decodeResult(t, resp.Result, &mint)

	if est.TotalSpace != mint.Space {
		t.Errorf("estimate total_space = %d, minted space = %d", est.TotalSpace, mint.Space)
	}
	if est.Lamports != mint.Lamports {
		t.Errorf("estimate lamports = %d, minted lamports = %d", est.Lamports, mint.Lamports)
	}
	if est.Authority != minted.Authority {
		t.Errorf("estimate authority = %s, want %s", est.Authority, minted.Authority)
	}
}

func TestRPC_MethodNotFound(t *testing.T) {
	env := setupTestEnv(t)

	wantCode(t, rpcCall(t, env.url, "chain_getInfo", nil), CodeMethodNotFound)
}

func TestRPC_InvalidRequests(t *testing.T) {
	env := setupTestEnv(t)

	tests := []struct {
		name string
		body string
		code int
	}{
		{"bad json", `{not json`, CodeParseError},
		{"wrong version", `{"jsonrpc":"1.0","method":"ledger_getInfo","id":1}`, CodeInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(env.url, "application/json", strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("post: %v", err)
			}
			defer resp.Body.Close()
			var rpcResp Response
			if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			wantCode(t, rpcResp, tt.code)
		})
	}

	resp, err := http.Get(env.url)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var rpcResp Response
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	wantCode(t, rpcResp, CodeInvalidRequest)
}

func TestRPC_IPFilter(t *testing.T) {
	bank := newTestBank(t)
	srv := New("127.0.0.1:0", bank, config.RPCConfig{AllowedIPs: []string{"10.0.0.0/8"}})
	srv.Handle("/metrics", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, "ok")
	}))
	if err := srv.Start(); err != nil {
		t.Fatalf("start rpc: %v", err)
	}
	t.Cleanup(func() { srv.Stop() })

	for _, path := range []string{"/", "/metrics"} {
		t.Run(path, func(t *testing.T) {
			resp, err := http.Post("http://"+srv.Addr()+path, "application/json", strings.NewReader(`{}`))
			if err != nil {
				t.Fatalf("post: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusForbidden {
				t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusForbidden)
			}
		})
	}
}

func TestRPC_Handle(t *testing.T) {
	env := setupTestEnv(t)
	env.server.Handle("/metrics", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, "ok")
	}))

	resp, err := http.Get(strings.TrimSuffix(env.url, "/") + "/metrics")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "ok" {
		t.Errorf("body = %q, want ok", body)
	}
}

func TestParseAllowedIPs(t *testing.T) {
	nets := parseAllowedIPs([]string{"10.0.0.0/8", "192.168.1.5", "::1", "garbage"})
	if len(nets) != 3 {
		t.Fatalf("parseAllowedIPs() = %d nets, want 3", len(nets))
	}
}

func TestCORS(t *testing.T) {
	bank := newTestBank(t)
	srv := New("127.0.0.1:0", bank, config.RPCConfig{CORSOrigins: []string{"https://app.example"}})
	if err := srv.Start(); err != nil {
		t.Fatalf("start rpc: %v", err)
	}
	t.Cleanup(func() { srv.Stop() })

	tests := []struct {
		origin string
		want   string
	}{
		{"https://app.example", "https://app.example"},
		{"https://evil.example", ""},
	}
	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodOptions, "http://"+srv.Addr()+"/", nil)
			req.Header.Set("Origin", tt.origin)
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("options: %v", err)
			}
			resp.Body.Close()
			if got := resp.Header.Get("Access-Control-Allow-Origin"); got != tt.want {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.want)
			}
		})
	}
}
