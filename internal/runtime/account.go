package runtime

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/blocto/solana-go-sdk/common"
)

// Account is the stored state of a ledger address.
type Account struct {
	Lamports   uint64
	Owner      common.PublicKey
	Data       []byte
	Executable bool
}

// newEmptyAccount is the state of an address that was never written.
func newEmptyAccount() *Account {
	return &Account{Owner: common.SystemProgramID}
}

// Clone returns a deep copy of a.
func (a *Account) Clone() *Account {
	c := *a
	c.Data = slices.Clone(a.Data)
	return &c
}

// IsEmpty reports whether a holds nothing and is owned by the system
// program, i.e. is indistinguishable from an unused address.
func (a *Account) IsEmpty() bool {
	return a.Lamports == 0 && len(a.Data) == 0 && !a.Executable && a.Owner == common.SystemProgramID
}

// Equal reports whether a and b hold the same state.
func (a *Account) Equal(b *Account) bool {
	return a.Lamports == b.Lamports &&
		a.Owner == b.Owner &&
		a.Executable == b.Executable &&
		bytes.Equal(a.Data, b.Data)
}

// accountJSON is the stored and wire encoding of an Account.
type accountJSON struct {
	Lamports   uint64 `json:"lamports"`
	Owner      string `json:"owner"`
	Data       []byte `json:"data"`
	Executable bool   `json:"executable"`
}

// MarshalJSON encodes the owner as base58 and the data as base64.
func (a *Account) MarshalJSON() ([]byte, error) {
	return json.Marshal(accountJSON{
		Lamports:   a.Lamports,
		Owner:      a.Owner.ToBase58(),
		Data:       a.Data,
		Executable: a.Executable,
	})
}

// UnmarshalJSON decodes the form written by MarshalJSON.
func (a *Account) UnmarshalJSON(b []byte) error {
	var aj accountJSON
	if err := json.Unmarshal(b, &aj); err != nil {
		return err
	}
	owner, err := ParsePublicKey(aj.Owner)
	if err != nil {
		return fmt.Errorf("account owner: %w", err)
	}
	a.Lamports = aj.Lamports
	a.Owner = owner
	a.Data = aj.Data
	a.Executable = aj.Executable
	return nil
}
