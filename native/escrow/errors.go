package escrow

import (
	"errors"

	"atomicswap/native/timelock"
)

var (
	ErrZeroAmountOrDeposit            = errors.New("escrow: amount and safety deposit must be positive")
	ErrSafetyDepositTooLarge          = errors.New("escrow: safety deposit exceeds storage reserve")
	ErrInvalidSecret                  = errors.New("escrow: secret does not match hashlock")
	ErrInvalidAccount                 = errors.New("escrow: account not authorized for operation")
	ErrInvalidAmount                  = errors.New("escrow: invalid amount")
	ErrInvalidPartsAmount             = errors.New("escrow: parts amount must be at least 2")
	ErrInvalidCreationTime            = errors.New("escrow: creation time violates cancellation ordering")
	ErrInvalidTime                    = errors.New("escrow: operation outside permitted window")
	ErrInvalidRescueStart             = errors.New("escrow: rescue start earlier than minimum delay")
	ErrInvalidMint                    = errors.New("escrow: token does not match entity token")
	ErrMissingCreatorAta              = errors.New("escrow: creator has no holding for token")
	ErrMissingRecipientAta            = errors.New("escrow: recipient has no holding for token")
	ErrInconsistentNativeTrait        = errors.New("escrow: native asset flag inconsistent with token")
	ErrCancelOrderByResolverForbidden = errors.New("escrow: resolver cancellation not permitted")
	ErrOrderNotExpired                = errors.New("escrow: order has not expired")
	ErrOrderHasExpired                = errors.New("escrow: order has expired")
	ErrDutchAuctionDataHashMismatch   = errors.New("escrow: auction data does not match committed hash")
	ErrInvalidCancellationFee         = errors.New("escrow: invalid cancellation premium")
	ErrInvalidMerkleProof             = errors.New("escrow: merkle proof verification failed")
	ErrInvalidPartialFill             = errors.New("escrow: partial fill violates index progression")
	ErrInconsistentMerkleProofTrait   = errors.New("escrow: merkle proof presence inconsistent with order")
)

// ErrArithmeticOverflow is shared with the timelock package so overflow
// surfaces under one identity regardless of where it is detected.
var ErrArithmeticOverflow = timelock.ErrArithmeticOverflow
