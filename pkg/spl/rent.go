package spl

// AccountStorageOverhead is the number of bytes the ledger charges for on top
// of an account's data when computing rent.
const AccountStorageOverhead = 128

// Rent is the ledger's rent schedule.
type Rent struct {
	LamportsPerByteYear uint64  `json:"lamports_per_byte_year"`
	ExemptionThreshold  float64 `json:"exemption_threshold"` // years of rent
}

// DefaultRent returns the mainnet rent schedule.
func DefaultRent() Rent {
	return Rent{
		LamportsPerByteYear: 3480,
		ExemptionThreshold:  2.0,
	}
}

// MinimumBalance returns the lamports an account of dataLen bytes must hold
// to be exempt from rent collection.
func (r Rent) MinimumBalance(dataLen uint64) uint64 {
	bytes := AccountStorageOverhead + dataLen
	return uint64(float64(bytes*r.LamportsPerByteYear) * r.ExemptionThreshold)
}

// IsExempt reports whether lamports cover the minimum balance for dataLen.
func (r Rent) IsExempt(lamports, dataLen uint64) bool {
	return lamports >= r.MinimumBalance(dataLen)
}
