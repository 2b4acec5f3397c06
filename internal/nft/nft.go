// Package nft implements the NFT minting programs: token_2022_nft, which
// mints Token-2022 NFTs with metadata embedded in the mint, metaplex_nft,
// which mints legacy NFTs described by Metaplex metadata and master edition
// records, and the shenqi_box placeholder.
//
// Every entry point runs inside one ledger transaction. The programs never
// undo their own work; a failing step aborts the transaction and the ledger
// discards all of its effects.
package nft

import (
	"fmt"

	"github.com/blocto/solana-go-sdk/common"

	"github.com/Klingon-tech/klingnet-nft/internal/builtin"
)

// Program addresses.
var (
	Token2022NFTProgramID = common.PublicKeyFromString("2PLQsLqv33ZAtLh4WA7BCnnXTNsrZEY3QBxhVDx8JZTe")
	MetaplexNFTProgramID  = common.PublicKeyFromString("HNyPqG6w1NQTx4gEB4eHGFJNDMQQJibc8LQwJqJ5awoo")
	ShenqiBoxProgramID    = common.PublicKeyFromString("2ZgjDLphMVoLT48YCk2ZvAsHpdwkqtkhyCWsjR1Gda7x")
)

// Program names.
const (
	Token2022NFTName = "token_2022_nft"
	MetaplexNFTName  = "metaplex_nft"
	ShenqiBoxName    = "shenqi_box"
)

// Metadata field written by the extension pipeline.
const (
	LevelField   = "level"
	InitialLevel = "1"
)

// RegisterPrograms installs the three NFT programs.
func RegisterPrograms(r builtin.Registrar) error {
	if err := r.Register(Token2022NFTProgramID, Token2022NFTName, newExtensionProgram(Token2022NFTProgramID)); err != nil {
		return fmt.Errorf("register %s: %w", Token2022NFTName, err)
	}
	if err := r.Register(MetaplexNFTProgramID, MetaplexNFTName, newLegacyProgram(MetaplexNFTProgramID)); err != nil {
		return fmt.Errorf("register %s: %w", MetaplexNFTName, err)
	}
	if err := r.Register(ShenqiBoxProgramID, ShenqiBoxName, shenqiBox{}); err != nil {
		return fmt.Errorf("register %s: %w", ShenqiBoxName, err)
	}
	return nil
}
