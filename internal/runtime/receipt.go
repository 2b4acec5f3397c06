package runtime

// Event is a program-emitted notification captured during execution.
type Event struct {
	Program string `json:"program"`
	Data    []byte `json:"data"`
}

// Receipt is the stored outcome of an executed transaction. Failed
// transactions have Err set and changed nothing but the fee payer balance.
type Receipt struct {
	Signature string   `json:"signature"`
	Slot      uint64   `json:"slot"`
	Fee       uint64   `json:"fee"`
	Err       string   `json:"err,omitempty"`
	Logs      []string `json:"logs"`
	Events    []Event  `json:"events"`
}

// Succeeded reports whether the transaction committed.
func (r *Receipt) Succeeded() bool {
	return r.Err == ""
}
