package escrow

import (
	"math/big"

	"atomicswap/core/events"
)

// RescueFundsForOrder recovers stray assets parked at an order address once
// the rescue delay has elapsed. The address is derived from the order hash
// alone, so rescue stays possible after the record has been closed; a
// whitelisted resolver supplies the rescue start and collects the rescued
// funds. While the record is still live the supplied rescue start is checked
// against the order's own timelocks, so the custodied asset can never be
// drained before every settlement window has closed.
func (e *Engine) RescueFundsForOrder(caller [20]byte, orderHash [32]byte, rescueStart uint32, token [20]byte, amount *big.Int) error {
	if err := e.ready(); err != nil {
		return err
	}
	if !e.allowed(caller) {
		return ErrInvalidAccount
	}
	addr := DeriveOrderAddress(orderHash)
	if order, ok := e.state.OrderGet(addr); ok {
		expected, err := order.Timelocks.RescueStart(RescueDelay)
		if err != nil {
			return err
		}
		if rescueStart != expected {
			return ErrInvalidRescueStart
		}
	}
	if e.now() < rescueStart {
		return ErrInvalidTime
	}
	return e.rescue(addr, token, caller, amount)
}

// RescueEscrowParams identifies an escrow by its full seed tuple, so rescue
// stays possible after the record itself has been closed: stray deposits sent
// to the derived address outlive the escrow's settlement.
type RescueEscrowParams struct {
	Side          Side
	OrderHash     [32]byte
	Hashlock      [32]byte
	Maker         [20]byte
	Taker         [20]byte
	Token         [20]byte
	Amount        *big.Int
	SafetyDeposit *big.Int
	RescueStart   uint32
}

// RescueFundsForEscrow recovers stray assets from an escrow address once its
// rescue start has passed. Only the taker named in the seed tuple may rescue;
// a forged tuple simply derives an address holding nothing.
func (e *Engine) RescueFundsForEscrow(caller [20]byte, params RescueEscrowParams, token [20]byte, amount *big.Int) error {
	if err := e.ready(); err != nil {
		return err
	}
	if !params.Side.Valid() {
		return ErrInvalidAccount
	}
	if caller != params.Taker {
		return ErrInvalidAccount
	}
	if e.now() < params.RescueStart {
		return ErrInvalidTime
	}
	addr := DeriveEscrowAddress(params.Side, params.OrderHash, params.Hashlock,
		params.Maker, params.Taker, params.Token, params.Amount,
		params.SafetyDeposit, params.RescueStart)
	return e.rescue(addr, token, params.Taker, amount)
}

// rescue moves amount of token from an entity address to its recovering
// party, reclaiming the holding record when it empties.
func (e *Engine) rescue(addr, token, to [20]byte, amount *big.Int) error {
	rescued := cloneBigInt(amount)
	if rescued.Sign() <= 0 {
		return ErrInvalidAmount
	}
	// The entity address is neither creator nor recipient of anything here;
	// rescuing a token it never held is an addressing mistake.
	ok, err := e.custody.HasHolding(addr, token)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidAccount
	}
	isNative := token == nativeToken
	if err := e.requireHolding(to, token, isNative, ErrMissingRecipientAta); err != nil {
		return err
	}
	balance, err := e.custody.TokenBalance(addr, token)
	if err != nil {
		return err
	}
	if rescued.Cmp(balance) > 0 {
		return ErrInvalidAmount
	}
	if err := e.releaseAsset(addr, to, token, isNative, rescued); err != nil {
		return err
	}
	if rescued.Cmp(balance) == 0 {
		if err := e.custody.CloseHolding(addr, token); err != nil {
			return err
		}
	}
	e.emit(events.FundsRescued{
		Address:   addr,
		Token:     token,
		Recipient: to,
		Amount:    rescued,
	})
	return nil
}
