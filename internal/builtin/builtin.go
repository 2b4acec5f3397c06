// Package builtin implements the ledger sub-programs the NFT programs call
// into: the system program, the token and Token-2022 programs, the
// associated token account program and the Metaplex token metadata
// program. Each keeps the account layouts of its deployed counterpart.
package builtin

import (
	"errors"
	"fmt"

	"github.com/blocto/solana-go-sdk/common"

	"github.com/Klingon-tech/klingnet-nft/internal/runtime"
	"github.com/Klingon-tech/klingnet-nft/pkg/spl"
)

// Registrar installs programs into a ledger.
type Registrar interface {
	Register(id common.PublicKey, name string, p runtime.Program) error
}

// Program names.
const (
	SystemName          = "system"
	TokenName           = "spl_token"
	Token2022Name       = "spl_token_2022"
	AssociatedTokenName = "spl_associated_token_account"
	MetaplexName        = "mpl_token_metadata"
)

// Token program errors.
var (
	ErrOwnerMismatch       = errors.New("owner does not match")
	ErrMintMismatch        = errors.New("account not associated with this mint")
	ErrFixedSupply         = errors.New("the token supply is fixed; new tokens cannot be minted")
	ErrMintCannotFreeze    = errors.New("the mint has no freeze authority")
	ErrAccountFrozen       = errors.New("account is frozen")
	ErrInsufficientTokens  = errors.New("insufficient token funds")
	ErrOverflow            = errors.New("operation overflowed")
	ErrAuthorityType       = errors.New("authority type not supported for this account")
	ErrImmutableOwner      = errors.New("account owner is immutable")
	ErrImmutableMetadata   = errors.New("token metadata is immutable")
	ErrMetadataLocation    = errors.New("token metadata must live in the mint account")
	ErrNoMetadataPointer   = errors.New("mint has no metadata pointer to itself")
	ErrExtensionNotAllowed = errors.New("extension not supported by this token program")
)

// Metaplex errors.
var (
	ErrEditionSupply       = errors.New("master edition requires a supply of exactly one")
	ErrEditionDecimals     = errors.New("master edition requires zero decimals")
	ErrMintAuthority       = errors.New("mint authority does not match")
	ErrUpdateAuthority     = errors.New("update authority does not match")
	ErrMetadataExists      = errors.New("metadata account already exists")
	ErrMasterEditionExists = errors.New("master edition already exists")
)

// RegisterAll installs every builtin program.
func RegisterAll(r Registrar) error {
	progs := []struct {
		id   common.PublicKey
		name string
		p    runtime.Program
	}{
		{spl.SystemProgramID, SystemName, runtime.ProgramFunc(processSystem)},
		{spl.TokenProgramID, TokenName, &tokenProgram{id: spl.TokenProgramID}},
		{spl.Token2022ProgramID, Token2022Name, &tokenProgram{id: spl.Token2022ProgramID, extensions: true}},
		{spl.AssociatedTokenProgramID, AssociatedTokenName, runtime.ProgramFunc(processAssociated)},
		{spl.MetadataProgramID, MetaplexName, runtime.ProgramFunc(processMetaplex)},
	}
	for _, p := range progs {
		if err := r.Register(p.id, p.name, p.p); err != nil {
			return fmt.Errorf("register %s: %w", p.name, err)
		}
	}
	return nil
}

func accountErr(key common.PublicKey, err error) error {
	return &runtime.AccountError{Account: key, Err: err}
}

func requireOwner(ai *runtime.AccountInfo, owner common.PublicKey) error {
	if ai.Owner != owner {
		return accountErr(ai.Key, runtime.ErrInvalidAccountOwner)
	}
	return nil
}

// IsProgramError reports whether err was raised by one of the builtin
// programs' own checks.
func IsProgramError(err error) bool {
	for _, target := range programErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

var programErrors = []error{
	ErrOwnerMismatch, ErrMintMismatch, ErrFixedSupply, ErrMintCannotFreeze,
	ErrAccountFrozen, ErrInsufficientTokens, ErrOverflow, ErrAuthorityType,
	ErrImmutableOwner, ErrImmutableMetadata, ErrMetadataLocation, ErrNoMetadataPointer,
	ErrExtensionNotAllowed, ErrEditionSupply, ErrEditionDecimals, ErrMintAuthority,
	ErrUpdateAuthority, ErrMetadataExists, ErrMasterEditionExists,
	spl.ErrAlreadyInitialize, spl.ErrMetadataAddress, spl.ErrMasterEditionAddress,
}
