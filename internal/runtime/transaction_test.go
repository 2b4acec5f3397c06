package runtime_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/blocto/solana-go-sdk/types"

	"github.com/Klingon-tech/klingnet-nft/internal/runtime"
	"github.com/Klingon-tech/klingnet-nft/pkg/spl"
)

func TestTransaction_SignVerify(t *testing.T) {
	payer := types.NewAccount()
	other := types.NewAccount()
	tx := runtime.NewTransaction(payer.PublicKey, "blockhash", spl.Transfer(other.PublicKey, payer.PublicKey, 10))

	if err := tx.Verify(); !errors.Is(err, runtime.ErrMissingSigner) {
		t.Fatalf("unsigned Verify() = %v, want ErrMissingSigner", err)
	}
	if err := tx.Sign(payer); err != nil {
		t.Fatalf("Sign(payer): %v", err)
	}
	if err := tx.Verify(); !errors.Is(err, runtime.ErrMissingSigner) {
		t.Fatalf("partially signed Verify() = %v, want ErrMissingSigner", err)
	}
	if err := tx.Sign(other); err != nil {
		t.Fatalf("Sign(other): %v", err)
	}
	if err := tx.Verify(); err != nil {
		t.Fatalf("Verify() = %v", err)
	}
	if tx.ID() == "" {
		t.Fatal("signed transaction has no id")
	}

	if err := tx.Sign(types.NewAccount()); err == nil {
		t.Error("Sign() accepted a key that is not a signer")
	}

	tx.Instructions[0].Data[4]++
	if err := tx.Verify(); !errors.Is(err, runtime.ErrInvalidSignature) {
		t.Fatalf("tampered Verify() = %v, want ErrInvalidSignature", err)
	}
}

func TestTransaction_JSON(t *testing.T) {
	payer := types.NewAccount()
	tx := runtime.NewTransaction(payer.PublicKey, "blockhash", spl.Transfer(payer.PublicKey, types.NewAccount().PublicKey, 10))
	if err := tx.Sign(payer); err != nil {
		t.Fatal(err)
	}
	b, err := json.Marshal(tx)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got runtime.Transaction
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.ID() != tx.ID() {
		t.Errorf("ID() = %s, want %s", got.ID(), tx.ID())
	}
	if err := got.Verify(); err != nil {
		t.Errorf("decoded Verify() = %v", err)
	}
}
