package events

import (
	"encoding/hex"
	"math/big"
	"strconv"

	"atomicswap/core/types"
)

const (
	// TypeOrderCreated is emitted when a maker intent is accepted and funded.
	TypeOrderCreated = "settlement.order.created"
	// TypeOrderCancelled is emitted when the maker reclaims an open order.
	TypeOrderCancelled = "settlement.order.cancelled"
	// TypeOrderResolverCancelled is emitted when a whitelisted resolver cleans
	// up an expired order for a premium.
	TypeOrderResolverCancelled = "settlement.order.resolver_cancelled"
	// TypeEscrowCreated is emitted for every fill minted from an order, and for
	// destination-side escrows deposited directly by a taker.
	TypeEscrowCreated = "settlement.escrow.created"
	// TypeEscrowWithdrawn is emitted when a secret reveal releases escrowed
	// funds to the counterparty.
	TypeEscrowWithdrawn = "settlement.escrow.withdrawn"
	// TypeEscrowCancelled is emitted when a timed-out escrow returns funds to
	// their original owner.
	TypeEscrowCancelled = "settlement.escrow.cancelled"
	// TypeFundsRescued is emitted when stray assets are recovered from an
	// order or escrow address after the rescue delay.
	TypeFundsRescued = "settlement.funds.rescued"
)

func hexAddr(addr [20]byte) string { return "0x" + hex.EncodeToString(addr[:]) }

func hexHash(h [32]byte) string { return "0x" + hex.EncodeToString(h[:]) }

func amountString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

// OrderCreated carries the identifying fields of a freshly stored order.
type OrderCreated struct {
	OrderHash [32]byte
	Address   [20]byte
	Maker     [20]byte
	Token     [20]byte
	Amount    *big.Int
}

func (OrderCreated) EventType() string { return TypeOrderCreated }

func (e OrderCreated) Event() *types.Event {
	return &types.Event{
		Type: TypeOrderCreated,
		Attributes: map[string]string{
			"orderHash": hexHash(e.OrderHash),
			"address":   hexAddr(e.Address),
			"maker":     hexAddr(e.Maker),
			"token":     hexAddr(e.Token),
			"amount":    amountString(e.Amount),
		},
	}
}

// OrderCancelled records a maker-initiated order refund.
type OrderCancelled struct {
	OrderHash [32]byte
	Maker     [20]byte
	Refunded  *big.Int
}

func (OrderCancelled) EventType() string { return TypeOrderCancelled }

func (e OrderCancelled) Event() *types.Event {
	return &types.Event{
		Type: TypeOrderCancelled,
		Attributes: map[string]string{
			"orderHash": hexHash(e.OrderHash),
			"maker":     hexAddr(e.Maker),
			"refunded":  amountString(e.Refunded),
		},
	}
}

// OrderResolverCancelled records a resolver cleanup of an expired order and
// the premium the resolver collected.
type OrderResolverCancelled struct {
	OrderHash [32]byte
	Resolver  [20]byte
	Premium   *big.Int
}

func (OrderResolverCancelled) EventType() string { return TypeOrderResolverCancelled }

func (e OrderResolverCancelled) Event() *types.Event {
	return &types.Event{
		Type: TypeOrderResolverCancelled,
		Attributes: map[string]string{
			"orderHash": hexHash(e.OrderHash),
			"resolver":  hexAddr(e.Resolver),
			"premium":   amountString(e.Premium),
		},
	}
}

// EscrowCreated carries the identifying fields of a minted escrow.
type EscrowCreated struct {
	OrderHash [32]byte
	Address   [20]byte
	Hashlock  [32]byte
	Taker     [20]byte
	Amount    *big.Int
	DstAmount *big.Int
	Side      string
}

func (EscrowCreated) EventType() string { return TypeEscrowCreated }

func (e EscrowCreated) Event() *types.Event {
	return &types.Event{
		Type: TypeEscrowCreated,
		Attributes: map[string]string{
			"orderHash": hexHash(e.OrderHash),
			"address":   hexAddr(e.Address),
			"hashlock":  hexHash(e.Hashlock),
			"taker":     hexAddr(e.Taker),
			"amount":    amountString(e.Amount),
			"dstAmount": amountString(e.DstAmount),
			"side":      e.Side,
		},
	}
}

// EscrowWithdrawn records a successful secret reveal, including whether the
// public window path was used.
type EscrowWithdrawn struct {
	OrderHash [32]byte
	Address   [20]byte
	Recipient [20]byte
	Amount    *big.Int
	Public    bool
}

func (EscrowWithdrawn) EventType() string { return TypeEscrowWithdrawn }

func (e EscrowWithdrawn) Event() *types.Event {
	return &types.Event{
		Type: TypeEscrowWithdrawn,
		Attributes: map[string]string{
			"orderHash": hexHash(e.OrderHash),
			"address":   hexAddr(e.Address),
			"recipient": hexAddr(e.Recipient),
			"amount":    amountString(e.Amount),
			"public":    strconv.FormatBool(e.Public),
		},
	}
}

// EscrowCancelled records a timed-out escrow returning funds to their owner.
type EscrowCancelled struct {
	OrderHash [32]byte
	Address   [20]byte
	Owner     [20]byte
	Amount    *big.Int
	Public    bool
}

func (EscrowCancelled) EventType() string { return TypeEscrowCancelled }

func (e EscrowCancelled) Event() *types.Event {
	return &types.Event{
		Type: TypeEscrowCancelled,
		Attributes: map[string]string{
			"orderHash": hexHash(e.OrderHash),
			"address":   hexAddr(e.Address),
			"owner":     hexAddr(e.Owner),
			"amount":    amountString(e.Amount),
			"public":    strconv.FormatBool(e.Public),
		},
	}
}

// FundsRescued records recovery of stray assets from a settlement address.
type FundsRescued struct {
	Address   [20]byte
	Token     [20]byte
	Recipient [20]byte
	Amount    *big.Int
}

func (FundsRescued) EventType() string { return TypeFundsRescued }

func (e FundsRescued) Event() *types.Event {
	return &types.Event{
		Type: TypeFundsRescued,
		Attributes: map[string]string{
			"address":   hexAddr(e.Address),
			"token":     hexAddr(e.Token),
			"recipient": hexAddr(e.Recipient),
			"amount":    amountString(e.Amount),
		},
	}
}
