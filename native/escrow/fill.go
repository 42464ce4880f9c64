package escrow

import (
	"math/big"

	"atomicswap/core/events"
	"atomicswap/native/auction"
	"atomicswap/native/merkle"
	"atomicswap/native/timelock"
)

// CreateEscrow fills an order: it mints a source-side escrow holding the fill
// amount of the maker's asset, priced through the committed Dutch auction
// curve. Multi-fill orders require a Merkle proof admitting the slice;
// single-fill orders must be taken whole. A fill that exhausts the order
// sweeps the order's entire custodied balance, closes the order and refunds
// its native reserve to the maker.
func (e *Engine) CreateEscrow(taker [20]byte, orderHash [32]byte, amount *big.Int, proof *merkle.Proof, auctionData auction.AuctionData) (*Escrow, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	orderAddr := DeriveOrderAddress(orderHash)
	order, ok := e.state.OrderGet(orderAddr)
	if !ok {
		return nil, ErrInvalidAccount
	}
	if !e.allowed(taker) {
		return nil, ErrInvalidAccount
	}
	now := e.now()
	if now >= order.ExpirationTime {
		return nil, ErrOrderHasExpired
	}
	if auctionData.Hash() != order.DutchAuctionDataHash {
		return nil, ErrDutchAuctionDataHashMismatch
	}
	if (proof != nil) != order.AllowMultipleFills {
		return nil, ErrInconsistentMerkleProofTrait
	}
	fillAmount := cloneBigInt(amount)
	if fillAmount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	if order.AllowMultipleFills {
		if fillAmount.Cmp(order.RemainingAmount) > 0 {
			return nil, ErrInvalidAmount
		}
	} else if fillAmount.Cmp(order.Amount) != 0 {
		return nil, ErrInvalidAmount
	}
	hashlock := order.Hashlock
	if proof != nil {
		// The stored hashlock carries the parts count in its top 16 bits, so
		// both sides are masked before comparison.
		computed := merkle.RootFromProof(*proof)
		computed[0], computed[1] = 0, 0
		if computed != order.MerkleRoot() {
			return nil, ErrInvalidMerkleProof
		}
		if !merkle.ValidPartialFill(fillAmount, order.RemainingAmount, order.Amount,
			uint64(order.PartsAmount()), proof.Index) {
			return nil, ErrInvalidPartialFill
		}
		hashlock = proof.HashedSecret
	}

	// This fill's destination quote: the pro-rata share of the order quote,
	// inflated by the current rate bump, both rounded up.
	bump := auction.CalculateRateBump(uint64(now), auctionData)
	share, err := auction.MulDivCeil(order.DstAmount, fillAmount, order.Amount)
	if err != nil {
		return nil, err
	}
	dstAmount, err := auction.GetDstAmount(share, bump)
	if err != nil {
		return nil, err
	}

	stamped := order.Timelocks.SetDeployedAt(now)
	rescueStart, err := stamped.RescueStart(RescueDelay)
	if err != nil {
		return nil, err
	}
	esc := &Escrow{
		Side:          SideSrc,
		OrderHash:     order.OrderHash,
		Hashlock:      hashlock,
		Maker:         order.Maker,
		Taker:         taker,
		Token:         order.Token,
		Amount:        fillAmount,
		SafetyDeposit: cloneBigInt(order.SafetyDeposit),
		Timelocks:     stamped,
		AssetIsNative: order.AssetIsNative,
		DstAmount:     dstAmount,
		RescueStart:   rescueStart,
	}
	escrowAddr := esc.Address()
	if _, exists := e.state.EscrowGet(escrowAddr); exists {
		return nil, ErrInvalidAccount
	}

	need := new(big.Int).Add(e.rent.MinimumBalance(EscrowRecordSize), esc.SafetyDeposit)
	takerBalance, err := e.custody.NativeBalance(taker)
	if err != nil {
		return nil, err
	}
	if takerBalance.Cmp(need) < 0 {
		return nil, ErrInvalidAmount
	}
	exhausting := fillAmount.Cmp(order.RemainingAmount) == 0
	transfer := fillAmount
	if exhausting {
		// An exhausting fill sweeps the order's whole custodied balance,
		// including externally donated surplus.
		transfer, err = e.custody.TokenBalance(orderAddr, order.Token)
		if err != nil {
			return nil, err
		}
	}

	if err := e.custody.OpenHolding(escrowAddr, order.Token); err != nil {
		return nil, err
	}
	// Custodied assets are always held in token form (native funds are
	// wrapped at order creation), so escrow funding is one holding-to-holding
	// move regardless of trait.
	if err := e.custody.TokenTransfer(orderAddr, escrowAddr, order.Token, transfer); err != nil {
		return nil, err
	}
	if err := e.custody.NativeTransfer(taker, escrowAddr, need); err != nil {
		return nil, err
	}
	if exhausting {
		if err := e.custody.CloseHolding(orderAddr, order.Token); err != nil {
			return nil, err
		}
		if err := e.drainNative(orderAddr, big.NewInt(0), order.Maker, order.Maker); err != nil {
			return nil, err
		}
		if err := e.state.OrderDelete(orderAddr); err != nil {
			return nil, err
		}
	} else {
		order.RemainingAmount = new(big.Int).Sub(order.RemainingAmount, fillAmount)
		if err := e.state.OrderPut(order); err != nil {
			return nil, err
		}
	}
	if err := e.state.EscrowPut(esc); err != nil {
		return nil, err
	}
	e.emit(events.EscrowCreated{
		OrderHash: esc.OrderHash,
		Address:   escrowAddr,
		Hashlock:  esc.Hashlock,
		Taker:     esc.Taker,
		Amount:    cloneBigInt(esc.Amount),
		DstAmount: cloneBigInt(esc.DstAmount),
		Side:      esc.Side.String(),
	})
	return esc.Clone(), nil
}

// CreateDstEscrowParams carries a taker's destination-side deposit. The
// source cancellation timestamp bounds the destination cancellation window so
// the taker can never be locked out on both chains at once.
type CreateDstEscrowParams struct {
	Taker                    [20]byte
	Maker                    [20]byte
	OrderHash                [32]byte
	Hashlock                 [32]byte
	Token                    [20]byte
	Amount                   *big.Int
	SafetyDeposit            *big.Int
	Timelocks                timelock.Timelocks
	AssetIsNative            bool
	RescueStart              uint32
	SrcCancellationTimestamp uint32
}

// CreateDstEscrow locks the taker's destination asset for the maker. Unlike
// source escrows it is not minted from a stored order: the taker supplies the
// terms directly and the maker withdraws against the same hashlock.
func (e *Engine) CreateDstEscrow(params CreateDstEscrowParams) (*Escrow, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if !e.allowed(params.Taker) {
		return nil, ErrInvalidAccount
	}
	amount := cloneBigInt(params.Amount)
	safetyDeposit := cloneBigInt(params.SafetyDeposit)
	if amount.Sign() <= 0 || safetyDeposit.Sign() <= 0 {
		return nil, ErrZeroAmountOrDeposit
	}
	if safetyDeposit.Cmp(e.rent.MinimumBalance(EscrowRecordSize)) > 0 {
		return nil, ErrSafetyDepositTooLarge
	}
	if params.AssetIsNative != (params.Token == nativeToken) {
		return nil, ErrInconsistentNativeTrait
	}
	now := e.now()
	stamped := params.Timelocks.SetDeployedAt(now)
	cancellationStart, err := stamped.Get(timelock.StageDstCancellation)
	if err != nil {
		return nil, err
	}
	if cancellationStart > params.SrcCancellationTimestamp {
		return nil, ErrInvalidCreationTime
	}
	minRescue := uint64(now) + uint64(RescueDelay)
	if uint64(params.RescueStart) < minRescue {
		return nil, ErrInvalidRescueStart
	}

	esc := &Escrow{
		Side:          SideDst,
		OrderHash:     params.OrderHash,
		Hashlock:      params.Hashlock,
		Maker:         params.Maker,
		Taker:         params.Taker,
		Token:         params.Token,
		Amount:        amount,
		SafetyDeposit: safetyDeposit,
		Timelocks:     stamped,
		AssetIsNative: params.AssetIsNative,
		DstAmount:     big.NewInt(0),
		RescueStart:   params.RescueStart,
	}
	escrowAddr := esc.Address()
	if _, exists := e.state.EscrowGet(escrowAddr); exists {
		return nil, ErrInvalidAccount
	}

	nativeNeed := new(big.Int).Add(e.rent.MinimumBalance(EscrowRecordSize), safetyDeposit)
	if esc.AssetIsNative {
		nativeNeed.Add(nativeNeed, amount)
	} else {
		ok, err := e.custody.HasHolding(esc.Taker, esc.Token)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrMissingCreatorAta
		}
		balance, err := e.custody.TokenBalance(esc.Taker, esc.Token)
		if err != nil {
			return nil, err
		}
		if balance.Cmp(amount) < 0 {
			return nil, ErrInvalidAmount
		}
	}
	nativeBalance, err := e.custody.NativeBalance(esc.Taker)
	if err != nil {
		return nil, err
	}
	if nativeBalance.Cmp(nativeNeed) < 0 {
		return nil, ErrInvalidAmount
	}

	if err := e.custody.OpenHolding(escrowAddr, esc.Token); err != nil {
		return nil, err
	}
	if err := e.fundAsset(esc.Taker, escrowAddr, esc.Token, esc.AssetIsNative, amount); err != nil {
		return nil, err
	}
	reserve := new(big.Int).Add(e.rent.MinimumBalance(EscrowRecordSize), safetyDeposit)
	if err := e.custody.NativeTransfer(esc.Taker, escrowAddr, reserve); err != nil {
		return nil, err
	}
	if err := e.state.EscrowPut(esc); err != nil {
		return nil, err
	}
	e.emit(events.EscrowCreated{
		OrderHash: esc.OrderHash,
		Address:   escrowAddr,
		Hashlock:  esc.Hashlock,
		Taker:     esc.Taker,
		Amount:    cloneBigInt(esc.Amount),
		DstAmount: cloneBigInt(esc.DstAmount),
		Side:      esc.Side.String(),
	})
	return esc.Clone(), nil
}
