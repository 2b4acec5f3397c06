package wallet

import (
	"encoding/hex"
	"errors"
	"testing"
)

// SLIP-0010 ed25519 test vector 1.
func TestNewMasterKey_SLIP10Vector(t *testing.T) {
	seed, _ := hex.DecodeString("000102030405060708090a0b0c0d0e0f")
	master, err := NewMasterKey(seed)
	if err != nil {
		t.Fatalf("NewMasterKey() error: %v", err)
	}
	if got := hex.EncodeToString(master.ChainCode[:]); got != "90046a93de5380a72b5e45010748567d5ea02bbf6522f979e05c0d8d8ca9fffb" {
		t.Errorf("master chain code = %s", got)
	}
	if got := hex.EncodeToString(master.Key[:]); got != "2b4be7f19ee27bbf30c667b642d5f4aa69fd169872f8fc3059c08ebae2eb19e7" {
		t.Errorf("master key = %s", got)
	}

	child, err := master.Child(HardenedOffset)
	if err != nil {
		t.Fatalf("Child() error: %v", err)
	}
	if got := hex.EncodeToString(child.ChainCode[:]); got != "8b59aa11380b624e81507a27fedda59fea6d0b779a778918a2fd3590e16e9c69" {
		t.Errorf("m/0' chain code = %s", got)
	}
	if got := hex.EncodeToString(child.Key[:]); got != "68e0fe46dfb67e368c75379acec591dad19df3cde26e63b93a8e704f1dade7a3" {
		t.Errorf("m/0' key = %s", got)
	}
	if child.Depth != 1 {
		t.Errorf("Depth = %d, want 1", child.Depth)
	}
}

func TestChild_NonHardened(t *testing.T) {
	master, err := NewMasterKey(make([]byte, 32))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := master.Child(0); !errors.Is(err, ErrNonHardened) {
		t.Errorf("Child(0) error = %v, want ErrNonHardened", err)
	}
}

func TestDeriveAccount(t *testing.T) {
	seed, err := SeedFromMnemonic(testMnemonic, "")
	if err != nil {
		t.Fatal(err)
	}
	a0, err := DeriveAccount(seed, 0)
	if err != nil {
		t.Fatalf("DeriveAccount() error: %v", err)
	}
	again, err := DeriveAccount(seed, 0)
	if err != nil {
		t.Fatal(err)
	}
	if a0.PublicKey != again.PublicKey {
		t.Error("DeriveAccount() not deterministic")
	}
	a1, err := DeriveAccount(seed, 1)
	if err != nil {
		t.Fatal(err)
	}
	if a0.PublicKey == a1.PublicKey {
		t.Error("accounts 0 and 1 share a key")
	}
}

func TestParsePath(t *testing.T) {
	got, err := ParsePath("m/44'/501'/0'/0'")
	if err != nil {
		t.Fatalf("ParsePath() error: %v", err)
	}
	want := AccountPath(0)
	if len(got) != len(want) {
		t.Fatalf("ParsePath() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ParsePath() = %v, want %v", got, want)
		}
	}

	for _, bad := range []string{"", "44'/501'", "m/44'/501", "m/x'"} {
		if _, err := ParsePath(bad); err == nil {
			t.Errorf("ParsePath(%q) succeeded", bad)
		}
	}
}
