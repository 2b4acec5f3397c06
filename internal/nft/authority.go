package nft

import (
	"errors"
	"fmt"

	"github.com/blocto/solana-go-sdk/common"

	"github.com/Klingon-tech/klingnet-nft/pkg/spl"
)

// AuthoritySeed is the seed of the program-controlled mint and metadata
// authority.
const AuthoritySeed = "nft_authority"

// authorityAccountSpace holds only the account discriminator.
const authorityAccountSpace = 8

// authorityDiscriminator tags the authority account.
var authorityDiscriminator = spl.AccountDiscriminator("NftAuthority")

// DeriveAuthority returns the program-controlled authority of programID and
// its bump. The result depends only on the seed and the program id.
func DeriveAuthority(programID common.PublicKey) (common.PublicKey, uint8, error) {
	addr, bump, err := common.FindProgramAddress([][]byte{[]byte(AuthoritySeed)}, programID)
	if err != nil {
		return common.PublicKey{}, 0, fmt.Errorf("derive authority: %w", err)
	}
	return addr, bump, nil
}

// AuthoritySeeds are the signer seeds of the authority with the given bump.
func AuthoritySeeds(bump uint8) [][]byte {
	return [][]byte{[]byte(AuthoritySeed), {bump}}
}

// ErrAlreadyRevoked is returned when revoking a revoked authority.
var ErrAlreadyRevoked = errors.New("issuance authority already revoked")

// Authority is the issuance authority of a mint: either Active or Revoked.
// The only legal transition is Active to Revoked.
type Authority interface {
	isAuthority()
	String() string
}

// Active is an authority that can still mint.
type Active struct {
	ID common.PublicKey
}

// Revoked is an authority that no longer exists.
type Revoked struct{}

func (Active) isAuthority()  {}
func (Revoked) isAuthority() {}

func (a Active) String() string { return a.ID.ToBase58() }
func (Revoked) String() string  { return "revoked" }

// MintAuthority returns the issuance authority recorded on m.
func MintAuthority(m *spl.Mint) Authority {
	if m.MintAuthority == nil {
		return Revoked{}
	}
	return Active{ID: *m.MintAuthority}
}

// Revoke moves a to Revoked.
func Revoke(a Authority) (Authority, error) {
	if _, ok := a.(Revoked); ok {
		return nil, ErrAlreadyRevoked
	}
	return Revoked{}, nil
}

// IsRevoked reports whether a can no longer mint.
func IsRevoked(a Authority) bool {
	_, ok := a.(Revoked)
	return ok
}
