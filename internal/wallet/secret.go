package wallet

import (
	"context"
	"fmt"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/blocto/solana-go-sdk/types"

	klog "github.com/Klingon-tech/klingnet-nft/internal/log"
)

// LoadSecretKeypair reads a solana-keygen keypair stored as a Secret
// Manager secret version, e.g.
// projects/<project>/secrets/<secret>/versions/latest.
func LoadSecretKeypair(ctx context.Context, name string) (types.Account, error) {
	if name == "" {
		return types.Account{}, fmt.Errorf("secret version name is empty")
	}
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return types.Account{}, fmt.Errorf("secret manager client: %w", err)
	}
	defer client.Close()

	resp, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		return types.Account{}, fmt.Errorf("access secret version: %w", err)
	}
	acc, err := DecodeKeypairJSON(resp.GetPayload().GetData())
	if err != nil {
		return types.Account{}, fmt.Errorf("secret %s: %w", name, err)
	}
	klog.Wallet.Info().Str("secret", name).Str("pubkey", acc.PublicKey.ToBase58()).Msg("Loaded keypair from Secret Manager")
	return acc, nil
}
