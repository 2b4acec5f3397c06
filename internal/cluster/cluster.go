// Package cluster submits minting transactions to a Solana cluster over
// JSON-RPC.
package cluster

import (
	"context"
	"fmt"
	"strings"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/rpc"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/rs/zerolog"

	"github.com/Klingon-tech/klingnet-nft/internal/log"
	"github.com/Klingon-tech/klingnet-nft/internal/minter"
)

// Endpoint resolves a cluster moniker to its public RPC endpoint. Anything
// else is taken as a URL.
func Endpoint(name string) string {
	switch strings.ToLower(name) {
	case "", "devnet":
		return rpc.DevnetRPCEndpoint
	case "testnet":
		return rpc.TestnetRPCEndpoint
	case "mainnet", "mainnet-beta":
		return rpc.MainnetRPCEndpoint
	case "localnet", "localhost":
		return rpc.LocalnetRPCEndpoint
	}
	return name
}

// Client is a minter.Submitter backed by a cluster RPC node. Send returns
// once the node accepts the transaction; logs and events are not fetched.
type Client struct {
	endpoint string
	rpc      *client.Client
	logger   zerolog.Logger
}

var _ minter.Submitter = (*Client)(nil)

// New returns a client for endpoint, a URL or a cluster moniker.
func New(endpoint string) *Client {
	url := Endpoint(endpoint)
	return &Client{
		endpoint: url,
		rpc:      client.NewClient(url),
		logger:   log.Cluster.With().Str("endpoint", url).Logger(),
	}
}

// Endpoint returns the RPC URL in use.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// MinimumBalance queries the rent-exempt minimum for dataLen bytes.
func (c *Client) MinimumBalance(ctx context.Context, dataLen uint64) (uint64, error) {
	lamports, err := c.rpc.GetMinimumBalanceForRentExemption(ctx, dataLen)
	if err != nil {
		return 0, fmt.Errorf("get minimum balance: %w", err)
	}
	return lamports, nil
}

// Send signs the instructions against the latest blockhash and submits
// them. The first signer pays the fee.
func (c *Client) Send(ctx context.Context, ixs []types.Instruction, signers ...types.Account) (*minter.Result, error) {
	if len(signers) == 0 {
		return nil, minter.ErrNoSigners
	}
	recent, err := c.rpc.GetLatestBlockhash(ctx)
	if err != nil {
		return nil, fmt.Errorf("get latest blockhash: %w", err)
	}
	tx, err := types.NewTransaction(types.NewTransactionParam{
		Signers: signers,
		Message: types.NewMessage(types.NewMessageParam{
			FeePayer:        signers[0].PublicKey,
			RecentBlockhash: recent.Blockhash,
			Instructions:    ixs,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("build transaction: %w", err)
	}
	sig, err := c.rpc.SendTransaction(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("send transaction: %w", err)
	}
	c.logger.Debug().Str("signature", sig).Int("instructions", len(ixs)).Msg("Transaction sent")
	return &minter.Result{Signature: sig}, nil
}

// Balance returns the lamports held by key.
func (c *Client) Balance(ctx context.Context, key common.PublicKey) (uint64, error) {
	lamports, err := c.rpc.GetBalance(ctx, key.ToBase58())
	if err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return lamports, nil
}

// Airdrop requests lamports for key from a faucet-enabled cluster.
func (c *Client) Airdrop(ctx context.Context, key common.PublicKey, lamports uint64) (string, error) {
	sig, err := c.rpc.RequestAirdrop(ctx, key.ToBase58(), lamports)
	if err != nil {
		return "", fmt.Errorf("request airdrop: %w", err)
	}
	return sig, nil
}
