package runtime

import (
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/mr-tron/base58"
)

const publicKeyLength = 32

// ParsePublicKey decodes a base58 address, rejecting anything that is not
// exactly 32 bytes.
func ParsePublicKey(s string) (common.PublicKey, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return common.PublicKey{}, fmt.Errorf("invalid address %q: %w", s, err)
	}
	if len(b) != publicKeyLength {
		return common.PublicKey{}, fmt.Errorf("invalid address %q: %d bytes", s, len(b))
	}
	return common.PublicKeyFromBytes(b), nil
}
