package timelock

import (
	"errors"
	"math"

	"github.com/holiman/uint256"
)

// ErrArithmeticOverflow is returned when a stage boundary computation exceeds
// the 32-bit timestamp range. Window arithmetic never saturates; a silently
// wrong settlement window is worse than a failed invocation.
var ErrArithmeticOverflow = errors.New("timelock: arithmetic overflow")

// Stage identifies one of the seven ordered settlement windows encoded in the
// packed register. Source-chain stages gate the maker asset, destination-chain
// stages gate the taker asset.
type Stage uint8

const (
	StageSrcWithdrawal Stage = iota
	StageSrcPublicWithdrawal
	StageSrcCancellation
	StageSrcPublicCancellation
	StageDstWithdrawal
	StageDstPublicWithdrawal
	StageDstCancellation
)

const (
	deployedAtOffset = 224
	stageBitSize     = 32
)

// Timelocks is a 256-bit packed register: the deployment timestamp occupies
// the top 32 bits, and each stage holds a 32-bit delta in slot stage*32. The
// boundary of a stage is deployment timestamp + delta.
type Timelocks struct {
	reg uint256.Int
}

// New packs the seven stage deltas into a register with a zero deployment
// timestamp. The caller is responsible for ordering deltas so that stages are
// non-decreasing per side.
func New(deltas [7]uint32) Timelocks {
	var t Timelocks
	for i, delta := range deltas {
		var d uint256.Int
		d.SetUint64(uint64(delta))
		d.Lsh(&d, uint(i*stageBitSize))
		t.reg.Or(&t.reg, &d)
	}
	return t
}

// FromBytes32 decodes a register from its big-endian byte layout.
func FromBytes32(b [32]byte) Timelocks {
	var t Timelocks
	t.reg.SetBytes32(b[:])
	return t
}

// Bytes32 returns the big-endian byte layout of the register. This is the
// wire form committed into the order hash.
func (t Timelocks) Bytes32() [32]byte {
	return t.reg.Bytes32()
}

// SetDeployedAt clears the top 32 bits and stamps the given deployment
// timestamp. Timelocks is a value type, so the receiver is left untouched.
func (t Timelocks) SetDeployedAt(value uint32) Timelocks {
	mask := new(uint256.Int).SetUint64(math.MaxUint32)
	mask.Lsh(mask, deployedAtOffset)
	cleared := new(uint256.Int).Not(mask)
	cleared.And(cleared, &t.reg)

	stamp := new(uint256.Int).SetUint64(uint64(value))
	stamp.Lsh(stamp, deployedAtOffset)

	var out Timelocks
	out.reg.Or(cleared, stamp)
	return out
}

// DeployedAt extracts the deployment timestamp stamped by SetDeployedAt.
func (t Timelocks) DeployedAt() uint32 {
	shifted := new(uint256.Int).Rsh(&t.reg, deployedAtOffset)
	return uint32(shifted.Uint64())
}

// Delta extracts the raw 32-bit delta stored for the given stage.
func (t Timelocks) Delta(stage Stage) uint32 {
	shifted := new(uint256.Int).Rsh(&t.reg, uint(stage)*stageBitSize)
	return uint32(shifted.Uint64())
}

// Get returns the absolute boundary of the given stage: deployment timestamp
// plus the stage delta, with checked addition.
func (t Timelocks) Get(stage Stage) (uint32, error) {
	sum := uint64(t.DeployedAt()) + uint64(t.Delta(stage))
	if sum > math.MaxUint32 {
		return 0, ErrArithmeticOverflow
	}
	return uint32(sum), nil
}

// RescueStart returns deployment timestamp + delay with checked addition.
func (t Timelocks) RescueStart(delay uint32) (uint32, error) {
	sum := uint64(t.DeployedAt()) + uint64(delay)
	if sum > math.MaxUint32 {
		return 0, ErrArithmeticOverflow
	}
	return uint32(sum), nil
}
