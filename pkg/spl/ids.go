// Package spl holds the wire layouts and instruction encodings of the ledger
// sub-programs the NFT programs talk to: the system program, the token and
// Token-2022 programs (with the metadata pointer and token metadata
// extensions), the associated token account program and the Metaplex token
// metadata program.
//
// Layouts here are byte-exact with the deployed programs so that the same
// instructions can be executed by the local runtime or sent to a cluster.
package spl

import "github.com/blocto/solana-go-sdk/common"

// Well-known program and sysvar addresses.
var (
	SystemProgramID          = common.SystemProgramID
	TokenProgramID           = common.TokenProgramID
	Token2022ProgramID       = common.PublicKeyFromString("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb")
	AssociatedTokenProgramID = common.SPLAssociatedTokenAccountProgramID
	MetadataProgramID        = common.MetaplexTokenMetaProgramID
	RentSysvarID             = common.PublicKeyFromString("SysvarRent111111111111111111111111111111111")
)

// IsTokenProgram reports whether id is either token program.
func IsTokenProgram(id common.PublicKey) bool {
	return id == TokenProgramID || id == Token2022ProgramID
}
