package escrow

import (
	"encoding/binary"
	"math/big"

	"atomicswap/native/timelock"
)

// RescueDelay is the fixed grace period (8 days) between an entity's
// deployment and the point where stray assets parked under its address become
// recoverable.
const RescueDelay uint32 = 691200

// Encoded record footprints, used to size storage-exemption reserves.
const (
	OrderRecordSize  = 352
	EscrowRecordSize = 256
)

// Side distinguishes the two escrow variants of a cross-chain swap. A source
// escrow locks the maker's asset for the taker; a destination escrow locks
// the taker's asset for the maker.
type Side uint8

const (
	SideSrc Side = iota
	SideDst
)

func (s Side) String() string {
	switch s {
	case SideSrc:
		return "src"
	case SideDst:
		return "dst"
	default:
		return "unknown"
	}
}

// Valid reports whether the side value is within the supported range.
func (s Side) Valid() bool {
	return s == SideSrc || s == SideDst
}

// Order captures a maker's funded swap intent. Its hash commits to every
// economic term; the remaining amount is the only field mutated after
// creation, decremented once per fill.
type Order struct {
	OrderHash                   [32]byte
	Hashlock                    [32]byte
	Maker                       [20]byte
	Token                       [20]byte
	Amount                      *big.Int
	RemainingAmount             *big.Int
	SafetyDeposit               *big.Int
	Timelocks                   timelock.Timelocks
	ExpirationTime              uint32
	AssetIsNative               bool
	DstAmount                   *big.Int
	DutchAuctionDataHash        [32]byte
	MaxCancellationPremium      *big.Int
	CancellationAuctionDuration uint32
	AllowMultipleFills          bool
	Salt                        [32]byte
}

// PartsAmount decodes the slice count a multi-fill order is divided into. The
// top 16 bits of the hashlock carry it when multiple fills are enabled.
func (o *Order) PartsAmount() uint16 {
	return binary.BigEndian.Uint16(o.Hashlock[:2])
}

// MerkleRoot returns the hashlock with the parts-amount bits masked off: the
// actual Merkle root per-slice proofs verify against.
func (o *Order) MerkleRoot() [32]byte {
	root := o.Hashlock
	root[0], root[1] = 0, 0
	return root
}

// Address returns the deterministic ledger address the order lives at.
func (o *Order) Address() [20]byte {
	return DeriveOrderAddress(o.OrderHash)
}

// Clone returns a deep copy so callers can mutate the copy without affecting
// the stored instance.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Amount = cloneBigInt(o.Amount)
	clone.RemainingAmount = cloneBigInt(o.RemainingAmount)
	clone.SafetyDeposit = cloneBigInt(o.SafetyDeposit)
	clone.DstAmount = cloneBigInt(o.DstAmount)
	clone.MaxCancellationPremium = cloneBigInt(o.MaxCancellationPremium)
	return &clone
}

// Escrow is one fill minted from an order (source side) or deposited directly
// by a taker (destination side). Escrows from the same order are independent:
// each is withdrawable and cancellable on its own schedule.
type Escrow struct {
	Side          Side
	OrderHash     [32]byte
	Hashlock      [32]byte
	Maker         [20]byte
	Taker         [20]byte
	Token         [20]byte
	Amount        *big.Int
	SafetyDeposit *big.Int
	Timelocks     timelock.Timelocks
	AssetIsNative bool
	DstAmount     *big.Int
	RescueStart   uint32
}

// Address returns the deterministic ledger address the escrow lives at.
// Callers recompute it from the seed tuple to locate the entity.
func (e *Escrow) Address() [20]byte {
	return DeriveEscrowAddress(e.Side, e.OrderHash, e.Hashlock, e.Maker, e.Taker,
		e.Token, e.Amount, e.SafetyDeposit, e.RescueStart)
}

// assetOwner is the party whose asset is locked: funds return here on cancel.
func (e *Escrow) assetOwner() [20]byte {
	if e.Side == SideSrc {
		return e.Maker
	}
	return e.Taker
}

// beneficiary is the counterparty owed the asset on a secret reveal.
func (e *Escrow) beneficiary() [20]byte {
	if e.Side == SideSrc {
		return e.Taker
	}
	return e.Maker
}

func (e *Escrow) withdrawalStage() timelock.Stage {
	if e.Side == SideSrc {
		return timelock.StageSrcWithdrawal
	}
	return timelock.StageDstWithdrawal
}

func (e *Escrow) publicWithdrawalStage() timelock.Stage {
	if e.Side == SideSrc {
		return timelock.StageSrcPublicWithdrawal
	}
	return timelock.StageDstPublicWithdrawal
}

func (e *Escrow) cancellationStage() timelock.Stage {
	if e.Side == SideSrc {
		return timelock.StageSrcCancellation
	}
	return timelock.StageDstCancellation
}

// Clone returns a deep copy so callers can mutate the copy without affecting
// the stored instance.
func (e *Escrow) Clone() *Escrow {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Amount = cloneBigInt(e.Amount)
	clone.SafetyDeposit = cloneBigInt(e.SafetyDeposit)
	clone.DstAmount = cloneBigInt(e.DstAmount)
	return &clone
}

func cloneBigInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
