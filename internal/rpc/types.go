package rpc

import (
	"github.com/blocto/solana-go-sdk/common"

	"github.com/Klingon-tech/klingnet-nft/internal/minter"
	"github.com/Klingon-tech/klingnet-nft/internal/nft"
	"github.com/Klingon-tech/klingnet-nft/internal/runtime"
)

// JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
	CodeNotFound       = -32000
	CodeTxRejected     = -32001 // Transaction failed verification; nothing was charged.
	CodeTxFailed       = -32002 // Transaction executed and failed; Data holds the receipt.
	CodeMintFailed     = -32003 // Mint request failed; Data holds a MintFailure.
	CodeDisabled       = -32004
)

// Request is a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
	ID      interface{} `json:"id"`
}

// Response is a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string      `json:"jsonrpc"`
	Result  interface{} `json:"result,omitempty"`
	Error   *Error      `json:"error,omitempty"`
	ID      interface{} `json:"id"`
}

// Error is a JSON-RPC 2.0 error object.
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ── Param types ─────────────────────────────────────────────────────────

// AddressParam is used by endpoints that take a single address.
type AddressParam struct {
	Address string `json:"address"`
}

// AirdropParam is used by ledger_airdrop.
type AirdropParam struct {
	Address  string `json:"address"`
	Lamports uint64 `json:"lamports"`
}

// SignatureParam is used by tx_get.
type SignatureParam struct {
	Signature string `json:"signature"`
}

// TxSendParam is used by tx_send.
type TxSendParam struct {
	Transaction *runtime.Transaction `json:"transaction"`
}

// ProgramParam names a program by registered name or address.
type ProgramParam struct {
	Program string `json:"program"`
}

// MintParam is used by nft_mintExtension, nft_mintLegacy and nft_estimate.
type MintParam struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	URI    string `json:"uri"`
}

// Args converts p to program arguments.
func (p MintParam) Args() nft.MintArgs {
	return nft.MintArgs{Name: p.Name, Symbol: p.Symbol, URI: p.URI}
}

// ── Result types ────────────────────────────────────────────────────────

// InfoResult is returned by ledger_getInfo.
type InfoResult struct {
	Network              string            `json:"network"`
	Slot                 uint64            `json:"slot"`
	Blockhash            string            `json:"blockhash"`
	LamportsPerSignature uint64            `json:"lamports_per_signature"`
	StateDigest          string            `json:"state_digest"`
	Programs             map[string]string `json:"programs"`
	Payer                string            `json:"payer,omitempty"`
	Faucet               bool              `json:"faucet"`
}

// BlockhashResult is returned by ledger_getLatestBlockhash.
type BlockhashResult struct {
	Blockhash string `json:"blockhash"`
	Slot      uint64 `json:"slot"`
}

// AccountResult is returned by ledger_getAccount.
type AccountResult struct {
	Address    string `json:"address"`
	Lamports   uint64 `json:"lamports"`
	Owner      string `json:"owner"`
	Data       []byte `json:"data"`
	Space      int    `json:"space"`
	Executable bool   `json:"executable"`
}

// AirdropResult is returned by ledger_airdrop.
type AirdropResult struct {
	Address  string `json:"address"`
	Balance  uint64 `json:"balance"`
	Lamports uint64 `json:"lamports"`
}

// EventResult is a decoded program event.
type EventResult struct {
	Type      string `json:"type"`
	Mint      string `json:"mint"`
	Recipient string `json:"recipient,omitempty"`
	Field     string `json:"field,omitempty"`
	Value     string `json:"value,omitempty"`
}

// MintedResult is returned by nft_mintExtension and nft_mintLegacy.
type MintedResult struct {
	Pipeline      string        `json:"pipeline"`
	Mint          string        `json:"mint"`
	TokenAccount  string        `json:"token_account"`
	Authority     string        `json:"authority,omitempty"`
	Metadata      string        `json:"metadata,omitempty"`
	MasterEdition string        `json:"master_edition,omitempty"`
	Signature     string        `json:"signature"`
	Slot          uint64        `json:"slot"`
	Fee           uint64        `json:"fee"`
	Logs          []string      `json:"logs"`
	Events        []EventResult `json:"events"`
}

// MintFailure is the error data of a failed mint.
type MintFailure struct {
	Category  string   `json:"category"`
	Mint      string   `json:"mint,omitempty"`
	Signature string   `json:"signature,omitempty"`
	Logs      []string `json:"logs,omitempty"`
}

// InitializeResult is returned by nft_initialize.
type InitializeResult struct {
	Program   string   `json:"program"`
	Signature string   `json:"signature"`
	Logs      []string `json:"logs"`
}

// MintInfoResult is returned by nft_getMint.
type MintInfoResult struct {
	Address         string `json:"address"`
	TokenProgram    string `json:"token_program"`
	Supply          uint64 `json:"supply"`
	Decimals        uint8  `json:"decimals"`
	MintAuthority   string `json:"mint_authority"`
	FreezeAuthority string `json:"freeze_authority,omitempty"`
	MetadataPointer string `json:"metadata_pointer,omitempty"`
	Space           int    `json:"space"`
	Lamports        uint64 `json:"lamports"`
}

// Metadata standards reported by nft_getMetadata.
const (
	StandardEmbedded = "token-metadata"
	StandardMetaplex = "metaplex"
)

// MetadataResult is returned by nft_getMetadata.
type MetadataResult struct {
	Standard        string            `json:"standard"`
	Address         string            `json:"address"`
	Mint            string            `json:"mint"`
	UpdateAuthority string            `json:"update_authority"`
	Name            string            `json:"name"`
	Symbol          string            `json:"symbol"`
	URI             string            `json:"uri"`
	Additional      map[string]string `json:"additional,omitempty"`

	SellerFeeBasisPoints uint16               `json:"seller_fee_basis_points,omitempty"`
	Creators             []CreatorResult      `json:"creators,omitempty"`
	IsMutable            bool                 `json:"is_mutable,omitempty"`
	MasterEdition        *MasterEditionResult `json:"master_edition,omitempty"`
}

// CreatorResult is a royalty share holder.
type CreatorResult struct {
	Address  string `json:"address"`
	Verified bool   `json:"verified"`
	Share    uint8  `json:"share"`
}

// MasterEditionResult describes a master edition record.
type MasterEditionResult struct {
	Address   string  `json:"address"`
	Supply    uint64  `json:"supply"`
	MaxSupply *uint64 `json:"max_supply"`
}

// TokenAccountResult is returned by nft_getTokenAccount.
type TokenAccountResult struct {
	Address string `json:"address"`
	Mint    string `json:"mint"`
	Owner   string `json:"owner"`
	Amount  uint64 `json:"amount"`
	Frozen  bool   `json:"frozen"`
}

// AuthorityResult is returned by nft_deriveAuthority.
type AuthorityResult struct {
	Program string `json:"program"`
	Address string `json:"address"`
	Bump    uint8  `json:"bump"`
}

// EstimateResult is returned by nft_estimate.
type EstimateResult struct {
	MintSpace     int    `json:"mint_space"`
	MetadataSpace int    `json:"metadata_space"`
	TotalSpace    int    `json:"total_space"`
	Lamports      uint64 `json:"lamports"`
	Authority     string `json:"authority"`
	Bump          uint8  `json:"bump"`
}

// NewMintedResult flattens a minted NFT for the wire.
func NewMintedResult(m *minter.Minted) *MintedResult {
	r := &MintedResult{
		Pipeline:      m.Pipeline,
		Mint:          m.Mint.ToBase58(),
		TokenAccount:  m.TokenAccount.ToBase58(),
		Authority:     optionalKey(m.Authority),
		Metadata:      optionalKey(m.Metadata),
		MasterEdition: optionalKey(m.MasterEdition),
	}
	if m.Result != nil {
		r.Signature = m.Result.Signature
		r.Slot = m.Result.Slot
		r.Fee = m.Result.Fee
		r.Logs = m.Result.Logs
	}
	for _, ev := range m.Events {
		r.Events = append(r.Events, newEventResult(ev))
	}
	return r
}

func newEventResult(ev any) EventResult {
	switch e := ev.(type) {
	case nft.NftMinted:
		return EventResult{Type: "NftMinted", Mint: e.NftMint.ToBase58(), Recipient: e.Recipient.ToBase58()}
	case nft.NftMetadataUpdated:
		return EventResult{Type: "NftMetadataUpdated", Mint: e.NftMint.ToBase58(), Field: e.Field, Value: e.Value}
	}
	return EventResult{Type: "unknown"}
}

func optionalKey(k *common.PublicKey) string {
	if k == nil {
		return ""
	}
	return k.ToBase58()
}
