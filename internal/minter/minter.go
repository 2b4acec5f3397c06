// Package minter composes the single transaction behind each minting entry
// point and submits it, either to the in-process ledger or to a cluster.
package minter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/system"
	"github.com/blocto/solana-go-sdk/program/token"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/rs/zerolog"

	"github.com/Klingon-tech/klingnet-nft/internal/log"
	"github.com/Klingon-tech/klingnet-nft/internal/nft"
	"github.com/Klingon-tech/klingnet-nft/pkg/spl"
)

// Pipelines.
const (
	PipelineExtension = "extension"
	PipelineLegacy    = "legacy"
)

// ErrInvalidArgs is returned for metadata the legacy records cannot hold.
var ErrInvalidArgs = errors.New("invalid mint arguments")

// Observer is told about every finished mint request.
type Observer interface {
	MintCompleted(pipeline string, err error, elapsed time.Duration)
}

// Minted describes a minted NFT.
type Minted struct {
	Pipeline      string            `json:"pipeline"`
	Mint          common.PublicKey  `json:"mint"`
	TokenAccount  common.PublicKey  `json:"token_account"`
	Authority     *common.PublicKey `json:"authority,omitempty"`
	Metadata      *common.PublicKey `json:"metadata,omitempty"`
	MasterEdition *common.PublicKey `json:"master_edition,omitempty"`
	Result        *Result           `json:"result"`
	// Events are the decoded NftMinted and NftMetadataUpdated events.
	Events []any `json:"events"`
}

// Estimate is the cost of an extension mint.
type Estimate struct {
	Sizing    nft.Sizing       `json:"sizing"`
	Authority common.PublicKey `json:"authority"`
	Bump      uint8            `json:"bump"`
}

// Minter mints NFTs paid for by one payer.
type Minter struct {
	sub       Submitter
	payer     types.Account
	extension common.PublicKey
	legacy    common.PublicKey
	observer  Observer
	newMint   func() types.Account
	logger    zerolog.Logger
}

// Option configures a Minter.
type Option func(*Minter)

// WithPrograms overrides the program addresses.
func WithPrograms(extension, legacy common.PublicKey) Option {
	return func(m *Minter) {
		m.extension = extension
		m.legacy = legacy
	}
}

// WithObserver reports every mint request to o.
func WithObserver(o Observer) Option {
	return func(m *Minter) { m.observer = o }
}

// WithMintKeypairs sets the source of fresh mint keypairs.
func WithMintKeypairs(next func() types.Account) Option {
	return func(m *Minter) { m.newMint = next }
}

// New returns a minter that signs with payer and submits through sub.
func New(sub Submitter, payer types.Account, opts ...Option) *Minter {
	m := &Minter{
		sub:       sub,
		payer:     payer,
		extension: nft.Token2022NFTProgramID,
		legacy:    nft.MetaplexNFTProgramID,
		newMint:   types.NewAccount,
		logger:    log.Minter,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Payer returns the fee payer and recipient of every mint.
func (m *Minter) Payer() common.PublicKey {
	return m.payer.PublicKey
}

// MintExtension mints a Token-2022 NFT with embedded metadata.
func (m *Minter) MintExtension(ctx context.Context, args nft.MintArgs) (minted *Minted, err error) {
	defer m.observe(PipelineExtension, time.Now(), &err)

	mint := m.newMint()
	accts, err := nft.NewExtensionAccounts(m.extension, m.payer.PublicKey, mint.PublicKey)
	if err != nil {
		return nil, err
	}
	ix, err := nft.MintExtensionInstruction(m.extension, accts, args)
	if err != nil {
		return nil, err
	}
	res, err := m.sub.Send(ctx, []types.Instruction{ix}, m.payer, mint)
	minted = &Minted{
		Pipeline:     PipelineExtension,
		Mint:         mint.PublicKey,
		TokenAccount: accts.TokenAccount,
		Authority:    &accts.Authority,
		Result:       res,
	}
	if err != nil {
		return minted, fmt.Errorf("mint extension nft: %w", err)
	}
	minted.Events = decodeEvents(res)
	m.logger.Info().
		Str("mint", mint.PublicKey.ToBase58()).
		Str("signature", res.Signature).
		Msg("Minted extension NFT")
	return minted, nil
}

// MintLegacy creates a plain mint owned by the payer and, in the same
// transaction, mints one token with Metaplex metadata and a master edition.
func (m *Minter) MintLegacy(ctx context.Context, args nft.MintArgs) (minted *Minted, err error) {
	defer m.observe(PipelineLegacy, time.Now(), &err)

	data := spl.DataV2{Name: args.Name, Symbol: args.Symbol, URI: args.URI}
	if err := data.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgs, err)
	}
	lamports, err := m.sub.MinimumBalance(ctx, token.MintAccountSize)
	if err != nil {
		return nil, fmt.Errorf("mint rent: %w", err)
	}

	mint := m.newMint()
	payer := m.payer.PublicKey
	accts, err := nft.NewLegacyAccounts(payer, mint.PublicKey, common.TokenProgramID)
	if err != nil {
		return nil, err
	}
	mintIx, err := nft.MintLegacyInstruction(m.legacy, accts, args)
	if err != nil {
		return nil, err
	}
	ixs := []types.Instruction{
		system.CreateAccount(system.CreateAccountParam{
			From:     payer,
			New:      mint.PublicKey,
			Owner:    common.TokenProgramID,
			Lamports: lamports,
			Space:    token.MintAccountSize,
		}),
		token.InitializeMint(token.InitializeMintParam{
			Decimals:   0,
			Mint:       mint.PublicKey,
			MintAuth:   payer,
			FreezeAuth: &payer,
		}),
		mintIx,
	}
	res, err := m.sub.Send(ctx, ixs, m.payer, mint)
	minted = &Minted{
		Pipeline:      PipelineLegacy,
		Mint:          mint.PublicKey,
		TokenAccount:  accts.TokenAccount,
		Metadata:      &accts.Metadata,
		MasterEdition: &accts.MasterEdition,
		Result:        res,
	}
	if err != nil {
		return minted, fmt.Errorf("mint legacy nft: %w", err)
	}
	m.logger.Info().
		Str("mint", mint.PublicKey.ToBase58()).
		Str("signature", res.Signature).
		Msg("Minted legacy NFT")
	return minted, nil
}

// Initialize calls the no-op initialize entry point of programID.
func (m *Minter) Initialize(ctx context.Context, programID common.PublicKey) (*Result, error) {
	res, err := m.sub.Send(ctx, []types.Instruction{nft.InitializeInstruction(programID)}, m.payer)
	if err != nil {
		return res, fmt.Errorf("initialize %s: %w", programID.ToBase58(), err)
	}
	return res, nil
}

// Estimate sizes an extension mint of args without submitting anything.
// The mint address does not affect the size.
func (m *Minter) Estimate(ctx context.Context, args nft.MintArgs) (*Estimate, error) {
	authority, bump, err := nft.DeriveAuthority(m.extension)
	if err != nil {
		return nil, err
	}
	sizing, err := nft.SizeMint(spl.DefaultRent(), nft.MintMetadata(authority, common.PublicKey{}, args))
	if err != nil {
		return nil, err
	}
	if sizing.Lamports, err = m.sub.MinimumBalance(ctx, uint64(sizing.TotalSpace)); err != nil {
		return nil, fmt.Errorf("rent: %w", err)
	}
	return &Estimate{Sizing: sizing, Authority: authority, Bump: bump}, nil
}

func (m *Minter) observe(pipeline string, start time.Time, err *error) {
	if m.observer != nil {
		m.observer.MintCompleted(pipeline, *err, time.Since(start))
	}
	if *err != nil {
		m.logger.Warn().Err(*err).Str("pipeline", pipeline).Msg("Mint failed")
	}
}

func decodeEvents(res *Result) []any {
	if res == nil {
		return nil
	}
	var out []any
	for _, ev := range res.Events {
		if decoded, err := nft.DecodeEvent(ev.Data); err == nil {
			out = append(out, decoded)
		}
	}
	return out
}
