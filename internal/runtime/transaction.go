package runtime

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/mr-tron/base58"

	"github.com/Klingon-tech/klingnet-nft/pkg/crypto"
)

// Signature is one signer's ed25519 signature over the message digest.
type Signature struct {
	PubKey common.PublicKey
	Sig    []byte
}

// Transaction is an ordered list of instructions executed atomically and
// paid for by FeePayer.
type Transaction struct {
	FeePayer        common.PublicKey
	RecentBlockhash string
	Instructions    []types.Instruction
	Signatures      []Signature
}

// NewTransaction creates an unsigned transaction.
func NewTransaction(feePayer common.PublicKey, recentBlockhash string, ixs ...types.Instruction) *Transaction {
	return &Transaction{
		FeePayer:        feePayer,
		RecentBlockhash: recentBlockhash,
		Instructions:    ixs,
	}
}

// Message returns the canonical byte encoding that signatures commit to.
func (tx *Transaction) Message() []byte {
	var buf []byte
	buf = append(buf, tx.FeePayer[:]...)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(tx.RecentBlockhash)))
	buf = append(buf, tx.RecentBlockhash...)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(tx.Instructions)))
	for _, ix := range tx.Instructions {
		buf = append(buf, ix.ProgramID[:]...)
		buf = binary.LittleEndian.AppendUint16(buf, uint16(len(ix.Accounts)))
		for _, m := range ix.Accounts {
			buf = append(buf, m.PubKey[:]...)
			var flags byte
			if m.IsSigner {
				flags |= 1
			}
			if m.IsWritable {
				flags |= 2
			}
			buf = append(buf, flags)
		}
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(ix.Data)))
		buf = append(buf, ix.Data...)
	}
	return buf
}

// Digest is the BLAKE3 hash of the message.
func (tx *Transaction) Digest() crypto.Digest {
	return crypto.Hash(tx.Message())
}

// RequiredSigners lists the fee payer followed by every other key marked
// as signer, without duplicates.
func (tx *Transaction) RequiredSigners() []common.PublicKey {
	seen := map[common.PublicKey]bool{tx.FeePayer: true}
	out := []common.PublicKey{tx.FeePayer}
	for _, ix := range tx.Instructions {
		for _, m := range ix.Accounts {
			if m.IsSigner && !seen[m.PubKey] {
				seen[m.PubKey] = true
				out = append(out, m.PubKey)
			}
		}
	}
	return out
}

// Sign adds signatures from every supplied account that is a required
// signer. It may be called repeatedly to collect signatures.
func (tx *Transaction) Sign(signers ...types.Account) error {
	digest := tx.Digest()
	required := make(map[common.PublicKey]bool)
	for _, k := range tx.RequiredSigners() {
		required[k] = true
	}
	for _, acc := range signers {
		if !required[acc.PublicKey] {
			return fmt.Errorf("%s is not a signer of this transaction", acc.PublicKey.ToBase58())
		}
		key, err := crypto.PrivateKeyFromBytes(acc.PrivateKey)
		if err != nil {
			return fmt.Errorf("signer %s: %w", acc.PublicKey.ToBase58(), err)
		}
		sig := key.Sign(digest[:])
		tx.setSignature(acc.PublicKey, sig)
	}
	return nil
}

func (tx *Transaction) setSignature(pub common.PublicKey, sig []byte) {
	for i := range tx.Signatures {
		if tx.Signatures[i].PubKey == pub {
			tx.Signatures[i].Sig = sig
			return
		}
	}
	tx.Signatures = append(tx.Signatures, Signature{PubKey: pub, Sig: sig})
}

// Verify checks that every required signer signed the current message and
// that no foreign signature is attached.
func (tx *Transaction) Verify() error {
	if len(tx.Instructions) == 0 {
		return ErrNoInstructions
	}
	digest := tx.Digest()
	have := make(map[common.PublicKey][]byte, len(tx.Signatures))
	for _, s := range tx.Signatures {
		have[s.PubKey] = s.Sig
	}
	required := tx.RequiredSigners()
	if len(have) != len(tx.Signatures) || len(have) > len(required) {
		return fmt.Errorf("%w: unexpected signatures", ErrInvalidSignature)
	}
	for _, k := range required {
		sig, ok := have[k]
		if !ok {
			return accountErr(k, ErrMissingSigner)
		}
		if !crypto.VerifySignature(digest[:], sig, k.Bytes()) {
			return accountErr(k, ErrInvalidSignature)
		}
	}
	return nil
}

// ID returns the base58 fee payer signature identifying the transaction,
// or "" when unsigned.
func (tx *Transaction) ID() string {
	for _, s := range tx.Signatures {
		if s.PubKey == tx.FeePayer {
			return base58.Encode(s.Sig)
		}
	}
	return ""
}

type metaJSON struct {
	PubKey     string `json:"pubkey"`
	IsSigner   bool   `json:"is_signer"`
	IsWritable bool   `json:"is_writable"`
}

type instructionJSON struct {
	ProgramID string     `json:"program_id"`
	Accounts  []metaJSON `json:"accounts"`
	Data      []byte     `json:"data"`
}

type signatureJSON struct {
	PubKey string `json:"pubkey"`
	Sig    string `json:"signature"`
}

type transactionJSON struct {
	FeePayer        string            `json:"fee_payer"`
	RecentBlockhash string            `json:"recent_blockhash"`
	Instructions    []instructionJSON `json:"instructions"`
	Signatures      []signatureJSON   `json:"signatures"`
}

// MarshalJSON encodes keys and signatures as base58 and data as base64.
func (tx *Transaction) MarshalJSON() ([]byte, error) {
	tj := transactionJSON{
		FeePayer:        tx.FeePayer.ToBase58(),
		RecentBlockhash: tx.RecentBlockhash,
	}
	for _, ix := range tx.Instructions {
		ij := instructionJSON{ProgramID: ix.ProgramID.ToBase58(), Data: ix.Data}
		for _, m := range ix.Accounts {
			ij.Accounts = append(ij.Accounts, metaJSON{PubKey: m.PubKey.ToBase58(), IsSigner: m.IsSigner, IsWritable: m.IsWritable})
		}
		tj.Instructions = append(tj.Instructions, ij)
	}
	for _, s := range tx.Signatures {
		tj.Signatures = append(tj.Signatures, signatureJSON{PubKey: s.PubKey.ToBase58(), Sig: base58.Encode(s.Sig)})
	}
	return json.Marshal(tj)
}

// UnmarshalJSON decodes the form written by MarshalJSON.
func (tx *Transaction) UnmarshalJSON(b []byte) error {
	var tj transactionJSON
	if err := json.Unmarshal(b, &tj); err != nil {
		return err
	}
	payer, err := ParsePublicKey(tj.FeePayer)
	if err != nil {
		return fmt.Errorf("fee payer: %w", err)
	}
	out := Transaction{FeePayer: payer, RecentBlockhash: tj.RecentBlockhash}
	for i, ij := range tj.Instructions {
		prog, err := ParsePublicKey(ij.ProgramID)
		if err != nil {
			return fmt.Errorf("instruction %d program: %w", i, err)
		}
		ix := types.Instruction{ProgramID: prog, Data: ij.Data}
		for _, m := range ij.Accounts {
			key, err := ParsePublicKey(m.PubKey)
			if err != nil {
				return fmt.Errorf("instruction %d account: %w", i, err)
			}
			ix.Accounts = append(ix.Accounts, types.AccountMeta{PubKey: key, IsSigner: m.IsSigner, IsWritable: m.IsWritable})
		}
		out.Instructions = append(out.Instructions, ix)
	}
	for _, sj := range tj.Signatures {
		key, err := ParsePublicKey(sj.PubKey)
		if err != nil {
			return fmt.Errorf("signature key: %w", err)
		}
		sig, err := base58.Decode(sj.Sig)
		if err != nil {
			return fmt.Errorf("signature: %w", err)
		}
		out.Signatures = append(out.Signatures, Signature{PubKey: key, Sig: sig})
	}
	*tx = out
	return nil
}
