package cluster

import (
	"context"
	"errors"
	"testing"

	"github.com/blocto/solana-go-sdk/rpc"

	"github.com/Klingon-tech/klingnet-nft/internal/minter"
)

func TestEndpoint(t *testing.T) {
	tests := []struct {
		name, want string
	}{
		{"", rpc.DevnetRPCEndpoint},
		{"devnet", rpc.DevnetRPCEndpoint},
		{"Testnet", rpc.TestnetRPCEndpoint},
		{"mainnet-beta", rpc.MainnetRPCEndpoint},
		{"localnet", rpc.LocalnetRPCEndpoint},
		{"http://10.0.0.1:8899", "http://10.0.0.1:8899"},
	}
	for _, tt := range tests {
		if got := Endpoint(tt.name); got != tt.want {
			t.Errorf("Endpoint(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestSend_NoSigners(t *testing.T) {
	c := New("localnet")
	if _, err := c.Send(context.Background(), nil); !errors.Is(err, minter.ErrNoSigners) {
		t.Fatalf("Send() error = %v, want ErrNoSigners", err)
	}
}
