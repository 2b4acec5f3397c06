package wallet

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/blocto/solana-go-sdk/types"
)

func TestKeypairJSON_Roundtrip(t *testing.T) {
	acc := types.NewAccount()
	data, err := EncodeKeypairJSON(acc)
	if err != nil {
		t.Fatalf("EncodeKeypairJSON() error: %v", err)
	}
	if data[0] != '[' {
		t.Fatalf("keypair file is not a JSON array: %s", data[:10])
	}
	got, err := DecodeKeypairJSON(data)
	if err != nil {
		t.Fatalf("DecodeKeypairJSON() error: %v", err)
	}
	if got.PublicKey != acc.PublicKey {
		t.Errorf("public key = %s, want %s", got.PublicKey.ToBase58(), acc.PublicKey.ToBase58())
	}
}

func TestDecodeKeypairJSON_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "nope"},
		{"short", "[1,2,3]"},
		{"out of range", "[" + repeatInt("300,", 63) + "300]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeKeypairJSON([]byte(tt.data)); err == nil {
				t.Error("DecodeKeypairJSON() succeeded")
			}
		})
	}
	if _, err := DecodeKeypairJSON([]byte("[1,2,3]")); !errors.Is(err, ErrKeypairLength) {
		t.Errorf("short keypair error = %v, want ErrKeypairLength", err)
	}
}

func repeatInt(s string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += s
	}
	return out
}

func TestKeypairFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "id.json")
	acc := types.NewAccount()
	if err := WriteKeypairFile(path, acc); err != nil {
		t.Fatalf("WriteKeypairFile() error: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm&0077 != 0 {
		t.Errorf("keypair file mode = %o, want 0600", perm)
	}
	got, err := ReadKeypairFile(path)
	if err != nil {
		t.Fatalf("ReadKeypairFile() error: %v", err)
	}
	if got.PublicKey != acc.PublicKey {
		t.Error("read keypair does not match")
	}
	if err := WriteKeypairFile(path, types.NewAccount()); err == nil {
		t.Error("WriteKeypairFile() overwrote an existing file")
	}
}
