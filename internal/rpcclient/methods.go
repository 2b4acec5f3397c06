package rpcclient

import (
	"encoding/json"
	"errors"

	"github.com/Klingon-tech/klingnet-nft/internal/rpc"
	"github.com/Klingon-tech/klingnet-nft/internal/runtime"
)

// MintFailure extracts the failure details of a CodeMintFailed error.
func MintFailure(err error) (*rpc.MintFailure, bool) {
	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) || rpcErr.Code != rpc.CodeMintFailed || len(rpcErr.Data) == 0 {
		return nil, false
	}
	var f rpc.MintFailure
	if json.Unmarshal(rpcErr.Data, &f) != nil {
		return nil, false
	}
	return &f, true
}

// GetInfo calls ledger_getInfo.
func (c *Client) GetInfo() (*rpc.InfoResult, error) {
	var res rpc.InfoResult
	if err := c.Call("ledger_getInfo", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// LatestBlockhash calls ledger_getLatestBlockhash.
func (c *Client) LatestBlockhash() (*rpc.BlockhashResult, error) {
	var res rpc.BlockhashResult
	if err := c.Call("ledger_getLatestBlockhash", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// GetAccount calls ledger_getAccount.
func (c *Client) GetAccount(address string) (*rpc.AccountResult, error) {
	var res rpc.AccountResult
	if err := c.Call("ledger_getAccount", rpc.AddressParam{Address: address}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Airdrop calls ledger_airdrop.
func (c *Client) Airdrop(address string, lamports uint64) (*rpc.AirdropResult, error) {
	var res rpc.AirdropResult
	if err := c.Call("ledger_airdrop", rpc.AirdropParam{Address: address, Lamports: lamports}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// SendTransaction calls tx_send with a signed transaction.
func (c *Client) SendTransaction(tx *runtime.Transaction) (*runtime.Receipt, error) {
	var res runtime.Receipt
	if err := c.Call("tx_send", rpc.TxSendParam{Transaction: tx}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// GetTransaction calls tx_get.
func (c *Client) GetTransaction(signature string) (*runtime.Receipt, error) {
	var res runtime.Receipt
	if err := c.Call("tx_get", rpc.SignatureParam{Signature: signature}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Initialize calls nft_initialize on a program name or address.
func (c *Client) Initialize(program string) (*rpc.InitializeResult, error) {
	var res rpc.InitializeResult
	if err := c.Call("nft_initialize", rpc.ProgramParam{Program: program}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// MintExtension calls nft_mintExtension.
func (c *Client) MintExtension(p rpc.MintParam) (*rpc.MintedResult, error) {
	var res rpc.MintedResult
	if err := c.Call("nft_mintExtension", p, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// MintLegacy calls nft_mintLegacy.
func (c *Client) MintLegacy(p rpc.MintParam) (*rpc.MintedResult, error) {
	var res rpc.MintedResult
	if err := c.Call("nft_mintLegacy", p, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// GetMint calls nft_getMint.
func (c *Client) GetMint(address string) (*rpc.MintInfoResult, error) {
	var res rpc.MintInfoResult
	if err := c.Call("nft_getMint", rpc.AddressParam{Address: address}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// GetMetadata calls nft_getMetadata with a mint address.
func (c *Client) GetMetadata(mint string) (*rpc.MetadataResult, error) {
	var res rpc.MetadataResult
	if err := c.Call("nft_getMetadata", rpc.AddressParam{Address: mint}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// GetTokenAccount calls nft_getTokenAccount.
func (c *Client) GetTokenAccount(address string) (*rpc.TokenAccountResult, error) {
	var res rpc.TokenAccountResult
	if err := c.Call("nft_getTokenAccount", rpc.AddressParam{Address: address}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// DeriveAuthority calls nft_deriveAuthority. An empty program selects
// token_2022_nft.
func (c *Client) DeriveAuthority(program string) (*rpc.AuthorityResult, error) {
	var res rpc.AuthorityResult
	if err := c.Call("nft_deriveAuthority", rpc.ProgramParam{Program: program}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Estimate calls nft_estimate.
func (c *Client) Estimate(p rpc.MintParam) (*rpc.EstimateResult, error) {
	var res rpc.EstimateResult
	if err := c.Call("nft_estimate", p, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
