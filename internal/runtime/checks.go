package runtime

import (
	"bytes"

	"github.com/blocto/solana-go-sdk/common"
)

// frame is one program invocation's view of its accounts, used to verify
// that the program only made changes it is entitled to.
type frame struct {
	programID common.PublicKey
	accounts  []*AccountInfo
	pre       map[common.PublicKey]*Account
}

func newFrame(programID common.PublicKey, accounts []*AccountInfo) *frame {
	f := &frame{programID: programID, accounts: accounts}
	f.snapshot()
	return f
}

func (f *frame) snapshot() {
	f.pre = make(map[common.PublicKey]*Account, len(f.accounts))
	for _, ai := range f.accounts {
		if _, ok := f.pre[ai.Key]; !ok {
			f.pre[ai.Key] = ai.Account.Clone()
		}
	}
}

func (f *frame) writable(key common.PublicKey) bool {
	for _, ai := range f.accounts {
		if ai.Key == key && ai.IsWritable {
			return true
		}
	}
	return false
}

// verify checks every account change since the last snapshot against the
// ownership rules and that lamports were neither created nor destroyed.
func (f *frame) verify() error {
	var preSum, postSum uint64
	seen := make(map[common.PublicKey]bool, len(f.pre))
	for _, ai := range f.accounts {
		if seen[ai.Key] {
			continue
		}
		seen[ai.Key] = true
		pre := f.pre[ai.Key]
		post := ai.Account
		preSum += pre.Lamports
		postSum += post.Lamports

		if pre.Equal(post) {
			continue
		}
		if !f.writable(ai.Key) {
			return accountErr(ai.Key, ErrReadonlyModified)
		}
		if pre.Executable != post.Executable {
			return accountErr(ai.Key, ErrExecutableModified)
		}
		owned := pre.Owner == f.programID
		if pre.Owner != post.Owner {
			if !owned || !isZeroed(post.Data) {
				return accountErr(ai.Key, ErrModifiedProgramID)
			}
		}
		if post.Lamports < pre.Lamports && !owned {
			return accountErr(ai.Key, ErrExternalLamportSpend)
		}
		if !owned && !bytes.Equal(pre.Data, post.Data) {
			return accountErr(ai.Key, ErrExternalDataModified)
		}
	}
	if preSum != postSum {
		return ErrUnbalancedInstruction
	}
	return nil
}

func isZeroed(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}
