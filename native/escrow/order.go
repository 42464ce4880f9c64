package escrow

import (
	"errors"
	"math/big"

	"atomicswap/core/events"
	"atomicswap/native/auction"
	"atomicswap/native/timelock"
)

var errEngineNotConfigured = errors.New("escrow: engine collaborators not configured")

// CreateOrderParams carries the maker intent for a new order. Every field
// participates in the order hash, so two intents differing in any economic
// term land at distinct addresses.
type CreateOrderParams struct {
	Maker                       [20]byte
	Token                       [20]byte
	Amount                      *big.Int
	SafetyDeposit               *big.Int
	Hashlock                    [32]byte
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

// CreateOrder accepts and funds a maker intent. The maker pays the order
// asset, the storage deposit for the order record, and a native reserve
// covering the full cancellation premium, so a resolver reward is always
// available. The stored timelocks are the maker template stamped with the
// creation time; fills restamp their own copy.
func (e *Engine) CreateOrder(params CreateOrderParams) (*Order, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	now := e.now()
	if now >= params.ExpirationTime {
		return nil, ErrOrderHasExpired
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
	maxPremium := cloneBigInt(params.MaxCancellationPremium)
	if maxPremium.Sign() < 0 {
		return nil, ErrInvalidCancellationFee
	}

	order := &Order{
		Hashlock:                    params.Hashlock,
		Maker:                       params.Maker,
		Token:                       params.Token,
		Amount:                      amount,
		RemainingAmount:             new(big.Int).Set(amount),
		SafetyDeposit:               safetyDeposit,
		Timelocks:                   params.Timelocks.SetDeployedAt(now),
		ExpirationTime:              params.ExpirationTime,
		AssetIsNative:               params.AssetIsNative,
		DstAmount:                   cloneBigInt(params.DstAmount),
		DutchAuctionDataHash:        params.DutchAuctionDataHash,
		MaxCancellationPremium:      maxPremium,
		CancellationAuctionDuration: params.CancellationAuctionDuration,
		AllowMultipleFills:          params.AllowMultipleFills,
		Salt:                        params.Salt,
	}
	if order.AllowMultipleFills && order.PartsAmount() < 2 {
		return nil, ErrInvalidPartsAmount
	}
	order.OrderHash = ComputeOrderHash(
		order.Hashlock, order.Maker, order.Token,
		order.Amount, order.SafetyDeposit, order.Timelocks,
		order.ExpirationTime, order.AssetIsNative, order.DstAmount,
		order.DutchAuctionDataHash, order.MaxCancellationPremium,
		order.CancellationAuctionDuration, order.AllowMultipleFills, order.Salt,
	)
	addr := order.Address()
	if _, exists := e.state.OrderGet(addr); exists {
		return nil, ErrInvalidAccount
	}

	// Affordability is checked up front so the funding transfers below
	// cannot fail halfway through.
	nativeNeed := new(big.Int).Add(e.rent.MinimumBalance(OrderRecordSize), maxPremium)
	if order.AssetIsNative {
		nativeNeed.Add(nativeNeed, amount)
	} else {
		ok, err := e.custody.HasHolding(order.Maker, order.Token)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrMissingCreatorAta
		}
		balance, err := e.custody.TokenBalance(order.Maker, order.Token)
		if err != nil {
			return nil, err
		}
		if balance.Cmp(amount) < 0 {
			return nil, ErrInvalidAmount
		}
	}
	nativeBalance, err := e.custody.NativeBalance(order.Maker)
	if err != nil {
		return nil, err
	}
	if nativeBalance.Cmp(nativeNeed) < 0 {
		return nil, ErrInvalidAmount
	}

	if err := e.custody.OpenHolding(addr, order.Token); err != nil {
		return nil, err
	}
	if err := e.fundAsset(order.Maker, addr, order.Token, order.AssetIsNative, amount); err != nil {
		return nil, err
	}
	reserve := new(big.Int).Add(e.rent.MinimumBalance(OrderRecordSize), maxPremium)
	if err := e.custody.NativeTransfer(order.Maker, addr, reserve); err != nil {
		return nil, err
	}
	if err := e.state.OrderPut(order); err != nil {
		return nil, err
	}
	e.emit(events.OrderCreated{
		OrderHash: order.OrderHash,
		Address:   addr,
		Maker:     order.Maker,
		Token:     order.Token,
		Amount:    cloneBigInt(order.Amount),
	})
	return order.Clone(), nil
}

// CancelOrder refunds the order's full custodied balance to the maker and
// closes the record. Available to the maker at any time, including after
// expiry.
func (e *Engine) CancelOrder(caller [20]byte, orderHash [32]byte, token [20]byte, assetIsNative bool) error {
	if err := e.ready(); err != nil {
		return err
	}
	addr := DeriveOrderAddress(orderHash)
	order, ok := e.state.OrderGet(addr)
	if !ok {
		return ErrInvalidAccount
	}
	if caller != order.Maker {
		return ErrInvalidAccount
	}
	if token != order.Token {
		return ErrInvalidMint
	}
	if assetIsNative != order.AssetIsNative {
		return ErrInconsistentNativeTrait
	}
	if err := e.requireHolding(order.Maker, order.Token, order.AssetIsNative, ErrMissingCreatorAta); err != nil {
		return err
	}

	refunded, err := e.closeOrderCustody(addr, order, order.Maker)
	if err != nil {
		return err
	}
	// The native balance carries the storage deposit plus any unclaimed
	// premium reserve; all of it returns to the maker.
	if err := e.drainNative(addr, big.NewInt(0), order.Maker, order.Maker); err != nil {
		return err
	}
	if err := e.state.OrderDelete(addr); err != nil {
		return err
	}
	e.emit(events.OrderCancelled{
		OrderHash: order.OrderHash,
		Maker:     order.Maker,
		Refunded:  refunded,
	})
	return nil
}

// CancelOrderByResolver lets a whitelisted resolver reclaim an expired order.
// The resolver collects min(premium, rewardLimit) from the order's native
// reserve, where the premium grows linearly over the cancellation auction;
// everything else, asset included, returns to the maker.
func (e *Engine) CancelOrderByResolver(caller [20]byte, orderHash [32]byte, rewardLimit *big.Int) (*big.Int, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	addr := DeriveOrderAddress(orderHash)
	order, ok := e.state.OrderGet(addr)
	if !ok {
		return nil, ErrInvalidAccount
	}
	if !e.allowed(caller) {
		return nil, ErrInvalidAccount
	}
	now := e.now()
	if now < order.ExpirationTime {
		return nil, ErrOrderNotExpired
	}
	if order.MaxCancellationPremium.Sign() == 0 {
		return nil, ErrCancelOrderByResolverForbidden
	}
	if rewardLimit == nil || rewardLimit.Sign() < 0 {
		return nil, ErrInvalidCancellationFee
	}
	if err := e.requireHolding(order.Maker, order.Token, order.AssetIsNative, ErrMissingCreatorAta); err != nil {
		return nil, err
	}

	premium := auction.CalculatePremium(now, order.ExpirationTime,
		order.CancellationAuctionDuration, order.MaxCancellationPremium)
	if premium.Cmp(rewardLimit) > 0 {
		premium = cloneBigInt(rewardLimit)
	}
	if _, err := e.closeOrderCustody(addr, order, order.Maker); err != nil {
		return nil, err
	}
	if err := e.drainNative(addr, premium, caller, order.Maker); err != nil {
		return nil, err
	}
	if err := e.state.OrderDelete(addr); err != nil {
		return nil, err
	}
	e.emit(events.OrderResolverCancelled{
		OrderHash: order.OrderHash,
		Resolver:  caller,
		Premium:   cloneBigInt(premium),
	})
	return cloneBigInt(premium), nil
}

// closeOrderCustody releases the order's full custodied asset balance to the
// given recipient and reclaims the emptied holding record.
func (e *Engine) closeOrderCustody(addr [20]byte, order *Order, to [20]byte) (*big.Int, error) {
	balance, err := e.custody.TokenBalance(addr, order.Token)
	if err != nil {
		return nil, err
	}
	if err := e.releaseAsset(addr, to, order.Token, order.AssetIsNative, balance); err != nil {
		return nil, err
	}
	if err := e.custody.CloseHolding(addr, order.Token); err != nil {
		return nil, err
	}
	return balance, nil
}

func (e *Engine) ready() error {
	if e.state == nil || e.custody == nil || e.rent == nil {
		return errEngineNotConfigured
	}
	return nil
}
