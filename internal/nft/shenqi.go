package nft

import (
	"fmt"

	"github.com/Klingon-tech/klingnet-nft/internal/runtime"
)

// shenqiBox is a placeholder program with only initialize.
type shenqiBox struct{}

func (shenqiBox) Process(ctx *runtime.InvokeContext) error {
	if initializeDiscriminator.HasPrefix(ctx.Data) {
		return greet(ctx)
	}
	return fmt.Errorf("%w: instruction fallback not found", runtime.ErrInvalidInstructionData)
}
