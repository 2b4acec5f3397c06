package nft

import (
	"errors"
	"fmt"

	"github.com/blocto/solana-go-sdk/common"

	"github.com/Klingon-tech/klingnet-nft/pkg/spl"
)

// ErrSizing is returned when a metadata payload cannot be serialized.
var ErrSizing = errors.New("metadata payload cannot be sized")

// Sizing is the storage plan of an extension mint.
type Sizing struct {
	// MintSpace is the account length at creation: base mint plus the
	// metadata pointer extension.
	MintSpace int `json:"mint_space"`
	// MetadataSpace is the TLV entry the embedded metadata will occupy.
	MetadataSpace int `json:"metadata_space"`
	// TotalSpace is the final account length after metadata is written.
	TotalSpace int `json:"total_space"`
	// Lamports is the rent-exempt balance for TotalSpace.
	Lamports uint64 `json:"lamports"`
}

// MintMetadata is the embedded metadata an extension mint ends up with:
// the supplied fields plus the initial level.
func MintMetadata(authority, mint common.PublicKey, args MintArgs) *spl.TokenMetadata {
	return &spl.TokenMetadata{
		UpdateAuthority: authority,
		Mint:            mint,
		Name:            args.Name,
		Symbol:          args.Symbol,
		URI:             args.URI,
		AdditionalMetadata: []spl.KeyValue{
			{Key: LevelField, Value: InitialLevel},
		},
	}
}

// SizeMint computes the storage plan for a mint that will carry meta. meta
// must already hold every field the mint will ever be given in the minting
// transaction, since the balance is reserved once at creation.
func SizeMint(rent spl.Rent, meta *spl.TokenMetadata) (Sizing, error) {
	n, err := meta.PackedLen()
	if err != nil {
		return Sizing{}, fmt.Errorf("%w: %v", ErrSizing, err)
	}
	mintSpace, err := spl.MintSpace(spl.ExtensionMetadataPointer)
	if err != nil {
		return Sizing{}, fmt.Errorf("%w: %v", ErrSizing, err)
	}
	s := Sizing{
		MintSpace:     mintSpace,
		MetadataSpace: spl.ExtensionSpace(n),
	}
	s.TotalSpace = s.MintSpace + s.MetadataSpace
	s.Lamports = rent.MinimumBalance(uint64(s.TotalSpace))
	return s, nil
}
