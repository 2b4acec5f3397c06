package runtime

import "github.com/blocto/solana-go-sdk/common"

// Program is executable code owned by an address. Process runs one
// instruction addressed to the program.
type Program interface {
	Process(ctx *InvokeContext) error
}

// ProgramFunc adapts a function to the Program interface.
type ProgramFunc func(ctx *InvokeContext) error

// Process calls f(ctx).
func (f ProgramFunc) Process(ctx *InvokeContext) error {
	return f(ctx)
}

// NativeLoaderID owns the accounts of registered programs.
var NativeLoaderID = common.PublicKeyFromString("NativeLoader1111111111111111111111111111111")

type registeredProgram struct {
	name    string
	program Program
}
