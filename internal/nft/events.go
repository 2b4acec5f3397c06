package nft

import (
	"errors"
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/near/borsh-go"

	"github.com/Klingon-tech/klingnet-nft/pkg/spl"
)

// NftMinted is emitted once the NFT sits in the recipient's account.
type NftMinted struct {
	NftMint   common.PublicKey `json:"nft_mint"`
	Recipient common.PublicKey `json:"recipient"`
}

// NftMetadataUpdated is emitted for the additional metadata field written
// during minting.
type NftMetadataUpdated struct {
	NftMint common.PublicKey `json:"nft_mint"`
	Field   string           `json:"field"`
	Value   string           `json:"value"`
}

var (
	nftMintedDiscriminator          = spl.EventDiscriminator("NftMinted")
	nftMetadataUpdatedDiscriminator = spl.EventDiscriminator("NftMetadataUpdated")
)

// ErrUnknownEvent is returned for event data without a known discriminator.
var ErrUnknownEvent = errors.New("unknown event")

// EncodeEvent serializes an event as discriminator followed by its borsh
// body.
func EncodeEvent(ev any) ([]byte, error) {
	var d spl.Discriminator
	switch ev.(type) {
	case NftMinted:
		d = nftMintedDiscriminator
	case NftMetadataUpdated:
		d = nftMetadataUpdatedDiscriminator
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownEvent, ev)
	}
	body, err := borsh.Serialize(ev)
	if err != nil {
		return nil, fmt.Errorf("serialize event: %w", err)
	}
	return append(d[:], body...), nil
}

// DecodeEvent parses data written by EncodeEvent into NftMinted or
// NftMetadataUpdated.
func DecodeEvent(data []byte) (any, error) {
	switch {
	case nftMintedDiscriminator.HasPrefix(data):
		var ev NftMinted
		if err := borsh.Deserialize(&ev, data[8:]); err != nil {
			return nil, fmt.Errorf("decode NftMinted: %w", err)
		}
		return ev, nil
	case nftMetadataUpdatedDiscriminator.HasPrefix(data):
		var ev NftMetadataUpdated
		if err := borsh.Deserialize(&ev, data[8:]); err != nil {
			return nil, fmt.Errorf("decode NftMetadataUpdated: %w", err)
		}
		return ev, nil
	}
	return nil, ErrUnknownEvent
}
