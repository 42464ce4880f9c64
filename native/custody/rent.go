package custody

import "math/big"

// Rent is the storage-deposit accounting collaborator: it answers the minimum
// native deposit required to keep a record of a given size alive on the
// ledger.
type Rent struct {
	// BasePrice is charged per record regardless of size.
	BasePrice *big.Int
	// BytePrice is charged per encoded byte.
	BytePrice *big.Int
}

// DefaultRent mirrors the deposit schedule settlement deployments run with.
func DefaultRent() Rent {
	return Rent{
		BasePrice: big.NewInt(890),
		BytePrice: big.NewInt(7),
	}
}

// MinimumBalance returns the storage-exemption reserve for a record of the
// given encoded size.
func (r Rent) MinimumBalance(size int) *big.Int {
	total := new(big.Int).Mul(r.BytePrice, big.NewInt(int64(size)))
	return total.Add(total, r.BasePrice)
}
