package merkle

import (
	"bytes"
	"encoding/binary"
	"math/big"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// Proof authenticates one secret-hash leaf of a multi-fill order. Index is the
// position of the fill slice the secret unlocks.
type Proof struct {
	Siblings     [][32]byte
	Index        uint64
	HashedSecret [32]byte
}

// HashLeaf computes the leaf commitment for a slice index and its hashed
// secret: keccak256(be64(index) || hashedSecret).
func HashLeaf(index uint64, hashedSecret [32]byte) [32]byte {
	var idx [8]byte
	binary.BigEndian.PutUint64(idx[:], index)
	return ethcrypto.Keccak256Hash(idx[:], hashedSecret[:])
}

// VerifyProof recomputes the root from the proof's leaf by repeated
// sorted-pair combination and reports whether it matches. Sorting each pair
// makes proofs independent of left/right placement.
func VerifyProof(p Proof, root [32]byte) bool {
	return RootFromProof(p) == root
}

// RootFromProof recomputes the root a proof commits to. Callers that overlay
// metadata on the top bits of a stored root can mask both sides before
// comparing.
func RootFromProof(p Proof) [32]byte {
	computed := HashLeaf(p.Index, p.HashedSecret)
	for _, sibling := range p.Siblings {
		computed = combine(sibling, computed)
	}
	return computed
}

func combine(a, b [32]byte) [32]byte {
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	return ethcrypto.Keccak256Hash(a[:], b[:])
}

// ValidPartialFill enforces the slice-index law for multi-fill orders. The
// order total divides into partsAmount equal secret-indexed slices; the index
// a fill must claim is fixed by how much of the order it consumes. A fill that
// exhausts the order must claim one index past the last slice, so a mid-order
// secret can never settle the final fill, and two consecutive fills can never
// claim the same slice.
func ValidPartialFill(makingAmount, remainingAmount, orderAmount *big.Int, partsAmount uint64, claimedIndex uint64) bool {
	if orderAmount == nil || orderAmount.Sign() <= 0 {
		return false
	}
	if makingAmount == nil || remainingAmount == nil {
		return false
	}

	parts := new(big.Int).SetUint64(partsAmount)

	// calculated = ((orderAmount - remaining + making - 1) * parts) / orderAmount
	consumed := new(big.Int).Sub(orderAmount, remainingAmount)
	consumed.Add(consumed, makingAmount)
	consumed.Sub(consumed, big.NewInt(1))
	calculated := consumed.Mul(consumed, parts)
	calculated.Div(calculated, orderAmount)

	if makingAmount.Cmp(remainingAmount) == 0 {
		// Exhausting fill: the distinguished "order fully consumed" index.
		next := new(big.Int).Add(calculated, big.NewInt(1))
		return next.IsUint64() && next.Uint64() == claimedIndex
	}

	if orderAmount.Cmp(remainingAmount) != 0 {
		// Not the first fill: the previous fill's index must differ, or two
		// takers could claim the same slice with different secrets.
		prevConsumed := new(big.Int).Sub(orderAmount, remainingAmount)
		prevConsumed.Sub(prevConsumed, big.NewInt(1))
		prev := prevConsumed.Mul(prevConsumed, parts)
		prev.Div(prev, orderAmount)
		if prev.Cmp(calculated) == 0 {
			return false
		}
	}

	return calculated.IsUint64() && calculated.Uint64() == claimedIndex
}
