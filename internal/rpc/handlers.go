package rpc

import (
	"context"
	"errors"
	"fmt"

	"github.com/blocto/solana-go-sdk/common"

	"github.com/Klingon-tech/klingnet-nft/internal/minter"
	"github.com/Klingon-tech/klingnet-nft/internal/nft"
	"github.com/Klingon-tech/klingnet-nft/internal/runtime"
	"github.com/Klingon-tech/klingnet-nft/internal/storage"
	"github.com/Klingon-tech/klingnet-nft/pkg/spl"
)

// ── Ledger ──────────────────────────────────────────────────────────────

func (s *Server) handleLedgerGetInfo(_ *Request) (interface{}, *Error) {
	digest, err := s.bank.StateDigest()
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Message: err.Error()}
	}
	programs := make(map[string]string)
	for name, id := range s.bank.Programs() {
		programs[name] = id.ToBase58()
	}
	info := &InfoResult{
		Network:              s.network,
		Slot:                 s.bank.Slot(),
		Blockhash:            s.bank.LatestBlockhash(),
		LamportsPerSignature: s.bank.LamportsPerSignature(),
		StateDigest:          digest.String(),
		Programs:             programs,
		Faucet:               s.faucetLimit > 0,
	}
	if s.minter != nil {
		info.Payer = s.minter.Payer().ToBase58()
	}
	return info, nil
}

func (s *Server) handleLedgerGetLatestBlockhash(_ *Request) (interface{}, *Error) {
	return &BlockhashResult{
		Blockhash: s.bank.LatestBlockhash(),
		Slot:      s.bank.Slot(),
	}, nil
}

func (s *Server) handleLedgerGetAccount(req *Request) (interface{}, *Error) {
	key, acc, rpcErr := s.loadAccount(req)
	if rpcErr != nil {
		return nil, rpcErr
	}
	return &AccountResult{
		Address:    key.ToBase58(),
		Lamports:   acc.Lamports,
		Owner:      acc.Owner.ToBase58(),
		Data:       acc.Data,
		Space:      len(acc.Data),
		Executable: acc.Executable,
	}, nil
}

func (s *Server) handleLedgerAirdrop(req *Request) (interface{}, *Error) {
	if s.faucetLimit == 0 {
		return nil, &Error{Code: CodeDisabled, Message: "faucet is disabled"}
	}
	var p AirdropParam
	if err := parseParams(req, &p); err != nil {
		return nil, err
	}
	to, rpcErr := parseKey(p.Address)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if p.Lamports == 0 || p.Lamports > s.faucetLimit {
		return nil, &Error{
			Code:    CodeInvalidParams,
			Message: fmt.Sprintf("lamports must be between 1 and %d", s.faucetLimit),
		}
	}
	if err := s.bank.Airdrop(to, p.Lamports); err != nil {
		return nil, &Error{Code: CodeInvalidParams, Message: err.Error()}
	}
	acc, err := s.bank.GetAccount(to)
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Message: err.Error()}
	}
	return &AirdropResult{Address: p.Address, Balance: acc.Lamports, Lamports: p.Lamports}, nil
}

// ── Transactions ────────────────────────────────────────────────────────

func (s *Server) handleTxSend(ctx context.Context, req *Request) (interface{}, *Error) {
	var p TxSendParam
	if err := parseParams(req, &p); err != nil {
		return nil, err
	}
	if p.Transaction == nil {
		return nil, &Error{Code: CodeInvalidParams, Message: "transaction is required"}
	}
	receipt, err := s.bank.Process(ctx, p.Transaction)
	if receipt == nil {
		msg := "transaction rejected"
		if err != nil {
			msg = err.Error()
		}
		return nil, &Error{Code: CodeTxRejected, Message: msg}
	}
	if err != nil {
		return nil, &Error{Code: CodeTxFailed, Message: err.Error(), Data: receipt}
	}
	return receipt, nil
}

func (s *Server) handleTxGet(req *Request) (interface{}, *Error) {
	var p SignatureParam
	if err := parseParams(req, &p); err != nil {
		return nil, err
	}
	if p.Signature == "" {
		return nil, &Error{Code: CodeInvalidParams, Message: "signature is required"}
	}
	receipt, err := s.bank.Receipt(p.Signature)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, &Error{Code: CodeNotFound, Message: "transaction not found"}
	}
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Message: err.Error()}
	}
	return receipt, nil
}

// ── NFT ─────────────────────────────────────────────────────────────────

func (s *Server) handleNFTInitialize(ctx context.Context, req *Request) (interface{}, *Error) {
	if s.minter == nil {
		return nil, errMinterDisabled
	}
	var p ProgramParam
	if err := parseParams(req, &p); err != nil {
		return nil, err
	}
	id, rpcErr := s.resolveProgram(p.Program)
	if rpcErr != nil {
		return nil, rpcErr
	}
	res, err := s.minter.Initialize(ctx, id)
	if err != nil {
		return nil, s.mintFailure(err, nil, res)
	}
	return &InitializeResult{Program: id.ToBase58(), Signature: res.Signature, Logs: res.Logs}, nil
}

func (s *Server) handleNFTMint(ctx context.Context, req *Request, pipeline string) (interface{}, *Error) {
	if s.minter == nil {
		return nil, errMinterDisabled
	}
	var p MintParam
	if err := parseParams(req, &p); err != nil {
		return nil, err
	}
	var (
		minted *minter.Minted
		err    error
	)
	switch pipeline {
	case minter.PipelineLegacy:
		minted, err = s.minter.MintLegacy(ctx, p.Args())
	default:
		minted, err = s.minter.MintExtension(ctx, p.Args())
	}
	if errors.Is(err, minter.ErrInvalidArgs) {
		return nil, &Error{Code: CodeInvalidParams, Message: err.Error()}
	}
	if err != nil {
		var res *minter.Result
		if minted != nil {
			res = minted.Result
		}
		return nil, s.mintFailure(err, minted, res)
	}
	return NewMintedResult(minted), nil
}

func (s *Server) handleNFTGetMint(req *Request) (interface{}, *Error) {
	key, acc, rpcErr := s.loadAccount(req)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if !spl.IsTokenProgram(acc.Owner) {
		return nil, &Error{Code: CodeInvalidParams, Message: "account is not owned by a token program"}
	}
	m, err := spl.UnpackMint(acc.Data)
	if err != nil {
		return nil, &Error{Code: CodeInvalidParams, Message: err.Error()}
	}
	res := &MintInfoResult{
		Address:         key.ToBase58(),
		TokenProgram:    acc.Owner.ToBase58(),
		Supply:          m.Supply,
		Decimals:        m.Decimals,
		MintAuthority:   nft.MintAuthority(m).String(),
		FreezeAuthority: optionalKey(m.FreezeAuthority),
		Space:           len(acc.Data),
		Lamports:        acc.Lamports,
	}
	if raw, err := spl.GetExtension(acc.Data, spl.ExtensionMetadataPointer); err == nil {
		if ptr, err := spl.UnpackMetadataPointer(raw); err == nil {
			res.MetadataPointer = optionalKey(ptr.MetadataAddress)
		}
	}
	return res, nil
}

// handleNFTGetMetadata reads the metadata of a mint: the embedded token
// metadata of a Token-2022 mint, or else the Metaplex record derived from
// the mint address.
func (s *Server) handleNFTGetMetadata(req *Request) (interface{}, *Error) {
	key, acc, rpcErr := s.loadAccount(req)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if raw, err := spl.GetExtension(acc.Data, spl.ExtensionTokenMetadata); err == nil {
		meta, err := spl.UnpackTokenMetadata(raw)
		if err != nil {
			return nil, &Error{Code: CodeInternalError, Message: err.Error()}
		}
		res := &MetadataResult{
			Standard:        StandardEmbedded,
			Address:         key.ToBase58(),
			Mint:            meta.Mint.ToBase58(),
			UpdateAuthority: meta.UpdateAuthority.ToBase58(),
			Name:            meta.Name,
			Symbol:          meta.Symbol,
			URI:             meta.URI,
		}
		if len(meta.AdditionalMetadata) > 0 {
			res.Additional = make(map[string]string, len(meta.AdditionalMetadata))
			for _, kv := range meta.AdditionalMetadata {
				res.Additional[kv.Key] = kv.Value
			}
		}
		return res, nil
	}

	addr, err := spl.FindMetadataAddress(key)
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Message: err.Error()}
	}
	rec, rpcErr := s.getAccount(addr)
	if rpcErr != nil {
		return nil, &Error{Code: CodeNotFound, Message: "mint has no metadata"}
	}
	md, err := spl.UnpackMetadataAccount(rec.Data)
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Message: err.Error()}
	}
	res := &MetadataResult{
		Standard:             StandardMetaplex,
		Address:              addr.ToBase58(),
		Mint:                 md.Mint.ToBase58(),
		UpdateAuthority:      md.UpdateAuthority.ToBase58(),
		Name:                 spl.Unpuff(md.Data.Name),
		Symbol:               spl.Unpuff(md.Data.Symbol),
		URI:                  spl.Unpuff(md.Data.URI),
		SellerFeeBasisPoints: md.Data.SellerFeeBasisPoints,
		IsMutable:            md.IsMutable,
	}
	if md.Data.Creators != nil {
		for _, c := range *md.Data.Creators {
			res.Creators = append(res.Creators, CreatorResult{
				Address:  c.Address.ToBase58(),
				Verified: c.Verified,
				Share:    c.Share,
			})
		}
	}
	edAddr, err := spl.FindMasterEditionAddress(key)
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Message: err.Error()}
	}
	if ed, rpcErr := s.getAccount(edAddr); rpcErr == nil {
		if me, err := spl.UnpackMasterEditionAccount(ed.Data); err == nil {
			res.MasterEdition = &MasterEditionResult{
				Address:   edAddr.ToBase58(),
				Supply:    me.Supply,
				MaxSupply: me.MaxSupply,
			}
		}
	}
	return res, nil
}

func (s *Server) handleNFTGetTokenAccount(req *Request) (interface{}, *Error) {
	key, acc, rpcErr := s.loadAccount(req)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if !spl.IsTokenProgram(acc.Owner) {
		return nil, &Error{Code: CodeInvalidParams, Message: "account is not owned by a token program"}
	}
	ta, err := spl.UnpackTokenAccount(acc.Data)
	if err != nil {
		return nil, &Error{Code: CodeInvalidParams, Message: err.Error()}
	}
	return &TokenAccountResult{
		Address: key.ToBase58(),
		Mint:    ta.Mint.ToBase58(),
		Owner:   ta.Owner.ToBase58(),
		Amount:  ta.Amount,
		Frozen:  ta.State == spl.AccountStateFrozen,
	}, nil
}

func (s *Server) handleNFTDeriveAuthority(req *Request) (interface{}, *Error) {
	var p ProgramParam
	if req.Params != nil {
		if err := parseParams(req, &p); err != nil {
			return nil, err
		}
	}
	if p.Program == "" {
		p.Program = nft.Token2022NFTName
	}
	id, rpcErr := s.resolveProgram(p.Program)
	if rpcErr != nil {
		return nil, rpcErr
	}
	addr, bump, err := nft.DeriveAuthority(id)
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Message: err.Error()}
	}
	return &AuthorityResult{Program: id.ToBase58(), Address: addr.ToBase58(), Bump: bump}, nil
}

func (s *Server) handleNFTEstimate(ctx context.Context, req *Request) (interface{}, *Error) {
	if s.minter == nil {
		return nil, errMinterDisabled
	}
	var p MintParam
	if err := parseParams(req, &p); err != nil {
		return nil, err
	}
	est, err := s.minter.Estimate(ctx, p.Args())
	if err != nil {
		return nil, &Error{
			Code:    CodeInvalidParams,
			Message: err.Error(),
			Data:    &MintFailure{Category: nft.Classify(err).String()},
		}
	}
	return &EstimateResult{
		MintSpace:     est.Sizing.MintSpace,
		MetadataSpace: est.Sizing.MetadataSpace,
		TotalSpace:    est.Sizing.TotalSpace,
		Lamports:      est.Sizing.Lamports,
		Authority:     est.Authority.ToBase58(),
		Bump:          est.Bump,
	}, nil
}

// ── Helpers ─────────────────────────────────────────────────────────────

var errMinterDisabled = &Error{Code: CodeDisabled, Message: "minting is disabled: no payer configured"}

func (s *Server) mintFailure(err error, minted *minter.Minted, res *minter.Result) *Error {
	f := &MintFailure{Category: nft.Classify(err).String()}
	if minted != nil {
		f.Mint = minted.Mint.ToBase58()
	}
	if res != nil {
		f.Signature = res.Signature
		f.Logs = res.Logs
	}
	return &Error{Code: CodeMintFailed, Message: err.Error(), Data: f}
}

// resolveProgram accepts a registered program name or a base58 address.
func (s *Server) resolveProgram(program string) (common.PublicKey, *Error) {
	if program == "" {
		return common.PublicKey{}, &Error{Code: CodeInvalidParams, Message: "program is required"}
	}
	if id, ok := s.bank.Programs()[program]; ok {
		return id, nil
	}
	id, err := runtime.ParsePublicKey(program)
	if err != nil {
		return common.PublicKey{}, &Error{Code: CodeInvalidParams, Message: fmt.Sprintf("unknown program %q", program)}
	}
	if _, ok := s.bank.ProgramName(id); !ok {
		return common.PublicKey{}, &Error{Code: CodeNotFound, Message: fmt.Sprintf("program %s is not registered", program)}
	}
	return id, nil
}

func (s *Server) loadAccount(req *Request) (common.PublicKey, *runtime.Account, *Error) {
	var p AddressParam
	if err := parseParams(req, &p); err != nil {
		return common.PublicKey{}, nil, err
	}
	key, rpcErr := parseKey(p.Address)
	if rpcErr != nil {
		return common.PublicKey{}, nil, rpcErr
	}
	acc, rpcErr := s.getAccount(key)
	if rpcErr != nil {
		return common.PublicKey{}, nil, rpcErr
	}
	return key, acc, nil
}

func (s *Server) getAccount(key common.PublicKey) (*runtime.Account, *Error) {
	acc, err := s.bank.GetAccount(key)
	if errors.Is(err, runtime.ErrAccountNotFound) {
		return nil, &Error{Code: CodeNotFound, Message: fmt.Sprintf("account %s not found", key.ToBase58())}
	}
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Message: err.Error()}
	}
	return acc, nil
}

func parseKey(s string) (common.PublicKey, *Error) {
	if s == "" {
		return common.PublicKey{}, &Error{Code: CodeInvalidParams, Message: "address is required"}
	}
	key, err := runtime.ParsePublicKey(s)
	if err != nil {
		return common.PublicKey{}, &Error{Code: CodeInvalidParams, Message: fmt.Sprintf("invalid address: %v", err)}
	}
	return key, nil
}
