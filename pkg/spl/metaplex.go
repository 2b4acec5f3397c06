package spl

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/metaplex/token_metadata"
	"github.com/near/borsh-go"
)

// Metaplex token metadata instruction tags.
const (
	MetaplexCreateMasterEditionV3   uint8 = 17
	MetaplexCreateMetadataAccountV3 uint8 = 33
)

// Record keys and limits of the Metaplex token metadata program.
const (
	MetaplexKeyMetadataV1      uint8 = 4
	MetaplexKeyMasterEditionV2 uint8 = 6

	MaxNameLength   = 32
	MaxSymbolLength = 10
	MaxURILength    = 200

	MaxMetadataLen      = 679
	MaxMasterEditionLen = 282

	MaxSellerFeeBasisPoints = 10000
)

// Token standards recorded on metadata.
const (
	TokenStandardNonFungible   uint8 = 0
	TokenStandardFungibleAsset uint8 = 1
	TokenStandardFungible      uint8 = 2
)

// Metaplex errors.
var (
	ErrNameTooLong          = errors.New("name too long")
	ErrSymbolTooLong        = errors.New("symbol too long")
	ErrURITooLong           = errors.New("uri too long")
	ErrInvalidBasisPoints   = errors.New("seller fee basis points out of range")
	ErrInvalidMetadataKey   = errors.New("account is not the expected metadata record")
	ErrMetadataAddress      = errors.New("metadata address does not match mint")
	ErrMasterEditionAddress = errors.New("master edition address does not match mint")
)

// Creator is a verified-or-not royalty share holder.
type Creator struct {
	Address  common.PublicKey `json:"address"`
	Verified bool             `json:"verified"`
	Share    uint8            `json:"share"`
}

// Collection links metadata to a collection mint.
type Collection struct {
	Verified bool             `json:"verified"`
	Key      common.PublicKey `json:"key"`
}

// Uses limits how often an asset can be used.
type Uses struct {
	UseMethod uint8  `json:"use_method"`
	Remaining uint64 `json:"remaining"`
	Total     uint64 `json:"total"`
}

// CollectionDetails marks a collection parent. Only the V1 variant exists.
type CollectionDetails struct {
	Variant uint8  `json:"variant"`
	Size    uint64 `json:"size"`
}

// DataV2 is the metadata payload of CreateMetadataAccountV3.
type DataV2 struct {
	Name                 string      `json:"name"`
	Symbol               string      `json:"symbol"`
	URI                  string      `json:"uri"`
	SellerFeeBasisPoints uint16      `json:"seller_fee_basis_points"`
	Creators             *[]Creator  `json:"creators"`
	Collection           *Collection `json:"collection"`
	Uses                 *Uses       `json:"uses"`
}

// CreateMetadataAccountV3Args is the decoded CreateMetadataAccountV3 body.
type CreateMetadataAccountV3Args struct {
	Data              DataV2
	IsMutable         bool
	CollectionDetails *CollectionDetails
}

// CreateMasterEditionV3Args is the decoded CreateMasterEditionV3 body.
type CreateMasterEditionV3Args struct {
	MaxSupply *uint64
}

// Validate checks the payload against the program's field limits.
func (d *DataV2) Validate() error {
	if len(d.Name) > MaxNameLength {
		return fmt.Errorf("%w: %d > %d", ErrNameTooLong, len(d.Name), MaxNameLength)
	}
	if len(d.Symbol) > MaxSymbolLength {
		return fmt.Errorf("%w: %d > %d", ErrSymbolTooLong, len(d.Symbol), MaxSymbolLength)
	}
	if len(d.URI) > MaxURILength {
		return fmt.Errorf("%w: %d > %d", ErrURITooLong, len(d.URI), MaxURILength)
	}
	if d.SellerFeeBasisPoints > MaxSellerFeeBasisPoints {
		return fmt.Errorf("%w: %d", ErrInvalidBasisPoints, d.SellerFeeBasisPoints)
	}
	return nil
}

// MetadataData is the stored form of the payload. Strings are padded with
// NUL bytes to their maximum lengths.
type MetadataData struct {
	Name                 string     `json:"name"`
	Symbol               string     `json:"symbol"`
	URI                  string     `json:"uri"`
	SellerFeeBasisPoints uint16     `json:"seller_fee_basis_points"`
	Creators             *[]Creator `json:"creators"`
}

// MetadataAccount is the record stored at the metadata address of a mint.
type MetadataAccount struct {
	Key                 uint8              `json:"key"`
	UpdateAuthority     common.PublicKey   `json:"update_authority"`
	Mint                common.PublicKey   `json:"mint"`
	Data                MetadataData       `json:"data"`
	PrimarySaleHappened bool               `json:"primary_sale_happened"`
	IsMutable           bool               `json:"is_mutable"`
	EditionNonce        *uint8             `json:"edition_nonce"`
	TokenStandard       *uint8             `json:"token_standard"`
	Collection          *Collection        `json:"collection"`
	Uses                *Uses              `json:"uses"`
	CollectionDetails   *CollectionDetails `json:"collection_details"`
}

// MasterEditionAccount is the record stored at the master edition address.
// A MaxSupply of zero means no prints can be made.
type MasterEditionAccount struct {
	Key       uint8   `json:"key"`
	Supply    uint64  `json:"supply"`
	MaxSupply *uint64 `json:"max_supply"`
}

// PuffedData returns the stored form of d.
func (d *DataV2) PuffedData() MetadataData {
	return MetadataData{
		Name:                 puff(d.Name, MaxNameLength),
		Symbol:               puff(d.Symbol, MaxSymbolLength),
		URI:                  puff(d.URI, MaxURILength),
		SellerFeeBasisPoints: d.SellerFeeBasisPoints,
		Creators:             d.Creators,
	}
}

func puff(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat("\x00", n-len(s))
}

// Unpuff strips the NUL padding of a stored string.
func Unpuff(s string) string {
	s = strings.TrimRight(s, "\x00")
	if !utf8.ValidString(s) {
		return strings.ToValidUTF8(s, "")
	}
	return s
}

// PackPadded serializes v and zero-pads it to size bytes.
func PackPadded(v any, size int) ([]byte, error) {
	b, err := borsh.Serialize(v)
	if err != nil {
		return nil, fmt.Errorf("serialize record: %w", err)
	}
	if len(b) > size {
		return nil, fmt.Errorf("%w: record is %d bytes, max %d", ErrInvalidLayout, len(b), size)
	}
	out := make([]byte, size)
	copy(out, b)
	return out, nil
}

// UnpackMetadataAccount decodes a metadata record. Trailing padding is
// ignored.
func UnpackMetadataAccount(data []byte) (*MetadataAccount, error) {
	if len(data) == 0 || data[0] != MetaplexKeyMetadataV1 {
		return nil, ErrInvalidMetadataKey
	}
	var m MetadataAccount
	if err := borsh.Deserialize(&m, data); err != nil {
		return nil, fmt.Errorf("deserialize metadata account: %w", err)
	}
	return &m, nil
}

// UnpackMasterEditionAccount decodes a master edition record.
func UnpackMasterEditionAccount(data []byte) (*MasterEditionAccount, error) {
	if len(data) == 0 || data[0] != MetaplexKeyMasterEditionV2 {
		return nil, ErrInvalidMetadataKey
	}
	var e MasterEditionAccount
	if err := borsh.Deserialize(&e, data); err != nil {
		return nil, fmt.Errorf("deserialize master edition: %w", err)
	}
	return &e, nil
}

// DecodeCreateMetadataAccountV3 decodes the instruction body after the tag.
func DecodeCreateMetadataAccountV3(body []byte) (*CreateMetadataAccountV3Args, error) {
	var args CreateMetadataAccountV3Args
	if err := borsh.Deserialize(&args, body); err != nil {
		return nil, fmt.Errorf("%w: create metadata: %v", ErrInvalidInstructionData, err)
	}
	return &args, nil
}

// DecodeCreateMasterEditionV3 decodes the instruction body after the tag.
func DecodeCreateMasterEditionV3(body []byte) (*CreateMasterEditionV3Args, error) {
	var args CreateMasterEditionV3Args
	if err := borsh.Deserialize(&args, body); err != nil {
		return nil, fmt.Errorf("%w: create master edition: %v", ErrInvalidInstructionData, err)
	}
	return &args, nil
}

// FindMetadataAddress derives the metadata record address of mint.
func FindMetadataAddress(mint common.PublicKey) (common.PublicKey, error) {
	addr, err := token_metadata.GetTokenMetaPubkey(mint)
	if err != nil {
		return common.PublicKey{}, fmt.Errorf("derive metadata address: %w", err)
	}
	return addr, nil
}

// FindMasterEditionAddress derives the master edition address of mint.
func FindMasterEditionAddress(mint common.PublicKey) (common.PublicKey, error) {
	addr, err := token_metadata.GetMasterEdition(mint)
	if err != nil {
		return common.PublicKey{}, fmt.Errorf("derive master edition address: %w", err)
	}
	return addr, nil
}

// MetadataSeeds are the derivation seeds of the metadata address of mint.
func MetadataSeeds(mint common.PublicKey) [][]byte {
	return [][]byte{[]byte("metadata"), MetadataProgramID.Bytes(), mint.Bytes()}
}

// MasterEditionSeeds are the derivation seeds of the master edition address.
func MasterEditionSeeds(mint common.PublicKey) [][]byte {
	return append(MetadataSeeds(mint), []byte("edition"))
}
