package spl

import (
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
)

// MetadataPointerLen is the value length of the metadata pointer extension.
const MetadataPointerLen = 64

// MetadataPointer declares which account holds a mint's metadata. A nil
// field is stored as the all-zero key.
type MetadataPointer struct {
	Authority       *common.PublicKey `json:"authority"`
	MetadataAddress *common.PublicKey `json:"metadata_address"`
}

// Pack encodes p as its 64-byte extension value.
func (p MetadataPointer) Pack() []byte {
	out := make([]byte, MetadataPointerLen)
	if p.Authority != nil {
		copy(out[0:32], p.Authority[:])
	}
	if p.MetadataAddress != nil {
		copy(out[32:64], p.MetadataAddress[:])
	}
	return out
}

// UnpackMetadataPointer decodes a metadata pointer extension value.
func UnpackMetadataPointer(b []byte) (MetadataPointer, error) {
	if len(b) != MetadataPointerLen {
		return MetadataPointer{}, fmt.Errorf("%w: metadata pointer is %d bytes", ErrInvalidLayout, len(b))
	}
	return MetadataPointer{
		Authority:       optionalNonZero(b[0:32]),
		MetadataAddress: optionalNonZero(b[32:64]),
	}, nil
}

func optionalNonZero(b []byte) *common.PublicKey {
	key := common.PublicKeyFromBytes(b)
	if key == (common.PublicKey{}) {
		return nil
	}
	return &key
}
