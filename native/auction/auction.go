package auction

import (
	"encoding/binary"
	"errors"
	"math/big"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"atomicswap/native/timelock"
)

// Base1e5 is the rate-bump denominator: a bump of 100_000 equals +100%.
const Base1e5 = 100_000

const maxRateBump = 0xFFFFFF // rate bumps are 24-bit on the wire

var (
	// ErrRateBumpTooLarge is returned when a curve point does not fit the
	// 24-bit wire encoding.
	ErrRateBumpTooLarge = errors.New("auction: rate bump exceeds 24 bits")

	// ErrArithmeticOverflow is shared with the timelock codec so callers can
	// match a single overflow identity across the settlement core.
	ErrArithmeticOverflow = timelock.ErrArithmeticOverflow
)

// PointAndTimeDelta is one checkpoint of the decaying price curve: the bump in
// force RateBump at TimeDelta seconds after the previous checkpoint.
type PointAndTimeDelta struct {
	RateBump  uint32
	TimeDelta uint16
}

// AuctionData describes the piecewise-linear Dutch auction curve. The same
// curve inflates the destination-amount quote early in an order's life and
// sizes the resolver cancellation premium.
type AuctionData struct {
	StartTime           uint32
	Duration            uint32
	InitialRateBump     uint32
	PointsAndTimeDeltas []PointAndTimeDelta
}

// Validate checks that every rate bump fits the 24-bit wire encoding.
func (d AuctionData) Validate() error {
	if d.InitialRateBump > maxRateBump {
		return ErrRateBumpTooLarge
	}
	for _, point := range d.PointsAndTimeDeltas {
		if point.RateBump > maxRateBump {
			return ErrRateBumpTooLarge
		}
	}
	return nil
}

// Bytes returns the canonical big-endian encoding of the curve:
// start(4) | duration(4) | initial bump(3) | n x (bump(3) | delta(2)).
// The order commits to keccak256 of this encoding, so the layout is a wire
// contract.
func (d AuctionData) Bytes() []byte {
	buf := make([]byte, 0, 11+5*len(d.PointsAndTimeDeltas))
	buf = binary.BigEndian.AppendUint32(buf, d.StartTime)
	buf = binary.BigEndian.AppendUint32(buf, d.Duration)
	buf = appendUint24(buf, d.InitialRateBump)
	for _, point := range d.PointsAndTimeDeltas {
		buf = appendUint24(buf, point.RateBump)
		buf = binary.BigEndian.AppendUint16(buf, point.TimeDelta)
	}
	return buf
}

// Hash returns the keccak256 commitment over the canonical encoding.
func (d AuctionData) Hash() [32]byte {
	return ethcrypto.Keccak256Hash(d.Bytes())
}

func appendUint24(buf []byte, v uint32) []byte {
	return append(buf, byte(v>>16), byte(v>>8), byte(v))
}

// CalculateRateBump evaluates the curve at the given timestamp: the initial
// bump before the auction starts, zero at or after it finishes, and linear
// interpolation between the bracketing checkpoints otherwise.
func CalculateRateBump(timestamp uint64, d AuctionData) uint64 {
	if timestamp <= uint64(d.StartTime) {
		return uint64(d.InitialRateBump)
	}
	finishTime := uint64(d.StartTime) + uint64(d.Duration)
	if timestamp >= finishTime {
		return 0
	}

	currentRateBump := uint64(d.InitialRateBump)
	currentPointTime := uint64(d.StartTime)

	for _, point := range d.PointsAndTimeDeltas {
		nextRateBump := uint64(point.RateBump)
		pointTimeDelta := uint64(point.TimeDelta)
		nextPointTime := currentPointTime + pointTimeDelta

		if timestamp <= nextPointTime {
			// pointTimeDelta cannot be zero here: currentPointTime is
			// strictly below timestamp, which is at most nextPointTime.
			return ((timestamp-currentPointTime)*nextRateBump +
				(nextPointTime-timestamp)*currentRateBump) / pointTimeDelta
		}

		currentRateBump = nextRateBump
		currentPointTime = nextPointTime
	}

	return currentRateBump * (finishTime - timestamp) / (finishTime - currentPointTime)
}

// CalculatePremium returns the cancellation premium owed at the given
// timestamp: zero before the auction starts, the maximum at or after it
// finishes, and a linear ramp in between.
func CalculatePremium(timestamp, auctionStartTime, auctionDuration uint32, maxCancellationPremium *big.Int) *big.Int {
	if maxCancellationPremium == nil {
		return big.NewInt(0)
	}
	if timestamp <= auctionStartTime {
		return big.NewInt(0)
	}
	timeElapsed := timestamp - auctionStartTime
	if timeElapsed >= auctionDuration {
		return new(big.Int).Set(maxCancellationPremium)
	}
	premium := new(big.Int).Mul(big.NewInt(int64(timeElapsed)), maxCancellationPremium)
	return premium.Div(premium, big.NewInt(int64(auctionDuration)))
}

// MulDivCeil computes ceil(a*b/den) and rejects results that do not fit the
// 256-bit settlement range.
func MulDivCeil(a, b, den *big.Int) (*big.Int, error) {
	if den == nil || den.Sign() == 0 {
		return nil, ErrArithmeticOverflow
	}
	num := new(big.Int).Mul(a, b)
	quo, rem := new(big.Int).QuoRem(num, den, new(big.Int))
	if rem.Sign() != 0 {
		quo.Add(quo, big.NewInt(1))
	}
	if _, overflow := uint256.FromBig(quo); overflow {
		return nil, ErrArithmeticOverflow
	}
	return quo, nil
}

// GetDstAmount inflates the destination-amount quote by the rate bump in force:
// ceil(dstAmount * (1e5 + bump) / 1e5). Rounding up ensures the taker never
// under-delivers.
func GetDstAmount(dstAmount *big.Int, rateBump uint64) (*big.Int, error) {
	multiplier := new(big.Int).SetUint64(Base1e5 + rateBump)
	return MulDivCeil(dstAmount, multiplier, big.NewInt(Base1e5))
}
