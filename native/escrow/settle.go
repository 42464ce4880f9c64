package escrow

import (
	"math/big"

	"atomicswap/core/events"
	"atomicswap/native/timelock"
)

// Withdraw releases the escrowed asset to the owed counterparty in exchange
// for the settlement secret. Only the taker may use the private window; the
// escrow's native balance (storage deposit plus safety deposit) returns to
// the taker in full.
func (e *Engine) Withdraw(caller, escrowAddr [20]byte, secret [32]byte) error {
	if err := e.ready(); err != nil {
		return err
	}
	esc, ok := e.state.EscrowGet(escrowAddr)
	if !ok {
		return ErrInvalidAccount
	}
	if caller != esc.Taker {
		return ErrInvalidAccount
	}
	if err := e.checkWindow(esc, esc.withdrawalStage(), esc.cancellationStage()); err != nil {
		return err
	}
	if HashSecret(secret) != esc.Hashlock {
		return ErrInvalidSecret
	}
	return e.settleWithdraw(escrowAddr, esc, caller, false)
}

// PublicWithdraw lets any whitelisted principal complete a withdrawal once
// the public window opens: the asset still goes to the owed counterparty and
// the storage deposit back to the taker, but the safety deposit compensates
// the caller.
func (e *Engine) PublicWithdraw(caller, escrowAddr [20]byte, secret [32]byte) error {
	if err := e.ready(); err != nil {
		return err
	}
	esc, ok := e.state.EscrowGet(escrowAddr)
	if !ok {
		return ErrInvalidAccount
	}
	if !e.allowed(caller) {
		return ErrInvalidAccount
	}
	if err := e.checkWindow(esc, esc.publicWithdrawalStage(), esc.cancellationStage()); err != nil {
		return err
	}
	if HashSecret(secret) != esc.Hashlock {
		return ErrInvalidSecret
	}
	return e.settleWithdraw(escrowAddr, esc, caller, true)
}

// Cancel returns a timed-out escrow's asset to its original owner. Only the
// taker may cancel; no secret is required once the cancellation stage opens.
func (e *Engine) Cancel(caller, escrowAddr [20]byte) error {
	if err := e.ready(); err != nil {
		return err
	}
	esc, ok := e.state.EscrowGet(escrowAddr)
	if !ok {
		return ErrInvalidAccount
	}
	if caller != esc.Taker {
		return ErrInvalidAccount
	}
	start, err := esc.Timelocks.Get(esc.cancellationStage())
	if err != nil {
		return err
	}
	if e.now() < start {
		return ErrInvalidTime
	}
	return e.settleCancel(escrowAddr, esc, caller, false)
}

// PublicCancel lets a whitelisted principal cancel a stuck source escrow once
// the public cancellation stage opens, earning the safety deposit.
// Destination escrows have no public cancellation stage.
func (e *Engine) PublicCancel(caller, escrowAddr [20]byte) error {
	if err := e.ready(); err != nil {
		return err
	}
	esc, ok := e.state.EscrowGet(escrowAddr)
	if !ok {
		return ErrInvalidAccount
	}
	if esc.Side != SideSrc {
		return ErrInvalidAccount
	}
	if !e.allowed(caller) {
		return ErrInvalidAccount
	}
	start, err := esc.Timelocks.Get(timelock.StageSrcPublicCancellation)
	if err != nil {
		return err
	}
	if e.now() < start {
		return ErrInvalidTime
	}
	return e.settleCancel(escrowAddr, esc, caller, true)
}

// checkWindow enforces a half-open stage window [from, until).
func (e *Engine) checkWindow(esc *Escrow, from, until timelock.Stage) error {
	start, err := esc.Timelocks.Get(from)
	if err != nil {
		return err
	}
	end, err := esc.Timelocks.Get(until)
	if err != nil {
		return err
	}
	now := e.now()
	if now < start || now >= end {
		return ErrInvalidTime
	}
	return nil
}

func (e *Engine) settleWithdraw(addr [20]byte, esc *Escrow, caller [20]byte, public bool) error {
	recipient := esc.beneficiary()
	if err := e.requireHolding(recipient, esc.Token, esc.AssetIsNative, ErrMissingRecipientAta); err != nil {
		return err
	}
	amount, err := e.closeEscrowCustody(addr, esc, recipient)
	if err != nil {
		return err
	}
	// Private path: the whole native balance goes back to the taker. Public
	// path: the safety deposit peels off to the caller first.
	first := big.NewInt(0)
	firstTo := esc.Taker
	if public {
		first = esc.SafetyDeposit
		firstTo = caller
	}
	if err := e.drainNative(addr, first, firstTo, esc.Taker); err != nil {
		return err
	}
	if err := e.state.EscrowDelete(addr); err != nil {
		return err
	}
	e.emit(events.EscrowWithdrawn{
		OrderHash: esc.OrderHash,
		Address:   addr,
		Recipient: recipient,
		Amount:    amount,
		Public:    public,
	})
	return nil
}

func (e *Engine) settleCancel(addr [20]byte, esc *Escrow, caller [20]byte, public bool) error {
	owner := esc.assetOwner()
	if err := e.requireHolding(owner, esc.Token, esc.AssetIsNative, ErrMissingCreatorAta); err != nil {
		return err
	}
	amount, err := e.closeEscrowCustody(addr, esc, owner)
	if err != nil {
		return err
	}
	first := big.NewInt(0)
	firstTo := esc.Taker
	if public {
		first = esc.SafetyDeposit
		firstTo = caller
	}
	if err := e.drainNative(addr, first, firstTo, esc.Taker); err != nil {
		return err
	}
	if err := e.state.EscrowDelete(addr); err != nil {
		return err
	}
	e.emit(events.EscrowCancelled{
		OrderHash: esc.OrderHash,
		Address:   addr,
		Owner:     owner,
		Amount:    amount,
		Public:    public,
	})
	return nil
}

// closeEscrowCustody releases the escrow's full custodied asset balance to
// the given recipient and reclaims the emptied holding record.
func (e *Engine) closeEscrowCustody(addr [20]byte, esc *Escrow, to [20]byte) (*big.Int, error) {
	balance, err := e.custody.TokenBalance(addr, esc.Token)
	if err != nil {
		return nil, err
	}
	if err := e.releaseAsset(addr, to, esc.Token, esc.AssetIsNative, balance); err != nil {
		return nil, err
	}
	if err := e.custody.CloseHolding(addr, esc.Token); err != nil {
		return nil, err
	}
	return balance, nil
}
