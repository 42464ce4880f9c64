package escrow

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"atomicswap/native/timelock"
	"atomicswap/storage"
)

// Store persists orders and escrows RLP-encoded under prefixed keys. It
// implements the engine State interface; absent and unreadable records both
// report as missing, so a transition against either fails the same way.
type Store struct {
	db storage.Database
}

// NewStore creates a store over the given database.
func NewStore(db storage.Database) *Store {
	return &Store{db: db}
}

// storedOrder mirrors Order with the timelock register flattened to its wire
// bytes for encoding.
type storedOrder struct {
	OrderHash                   [32]byte
	Hashlock                    [32]byte
	Maker                       [20]byte
	Token                       [20]byte
	Amount                      *big.Int
	RemainingAmount             *big.Int
	SafetyDeposit               *big.Int
	Timelocks                   [32]byte
	ExpirationTime              uint32
	AssetIsNative               bool
	DstAmount                   *big.Int
	DutchAuctionDataHash        [32]byte
	MaxCancellationPremium      *big.Int
	CancellationAuctionDuration uint32
	AllowMultipleFills          bool
	Salt                        [32]byte
}

type storedEscrow struct {
	Side          uint8
	OrderHash     [32]byte
	Hashlock      [32]byte
	Maker         [20]byte
	Taker         [20]byte
	Token         [20]byte
	Amount        *big.Int
	SafetyDeposit *big.Int
	Timelocks     [32]byte
	AssetIsNative bool
	DstAmount     *big.Int
	RescueStart   uint32
}

// OrderPut stores an order under its derived address.
func (s *Store) OrderPut(order *Order) error {
	rec := storedOrder{
		OrderHash:                   order.OrderHash,
		Hashlock:                    order.Hashlock,
		Maker:                       order.Maker,
		Token:                       order.Token,
		Amount:                      cloneBigInt(order.Amount),
		RemainingAmount:             cloneBigInt(order.RemainingAmount),
		SafetyDeposit:               cloneBigInt(order.SafetyDeposit),
		Timelocks:                   order.Timelocks.Bytes32(),
		ExpirationTime:              order.ExpirationTime,
		AssetIsNative:               order.AssetIsNative,
		DstAmount:                   cloneBigInt(order.DstAmount),
		DutchAuctionDataHash:        order.DutchAuctionDataHash,
		MaxCancellationPremium:      cloneBigInt(order.MaxCancellationPremium),
		CancellationAuctionDuration: order.CancellationAuctionDuration,
		AllowMultipleFills:          order.AllowMultipleFills,
		Salt:                        order.Salt,
	}
	encoded, err := rlp.EncodeToBytes(&rec)
	if err != nil {
		return err
	}
	return s.db.Put(orderStoreKey(order.Address()), encoded)
}

// OrderGet loads the order stored at addr.
func (s *Store) OrderGet(addr [20]byte) (*Order, bool) {
	raw, err := s.db.Get(orderStoreKey(addr))
	if err != nil {
		return nil, false
	}
	var rec storedOrder
	if err := rlp.DecodeBytes(raw, &rec); err != nil {
		return nil, false
	}
	return &Order{
		OrderHash:                   rec.OrderHash,
		Hashlock:                    rec.Hashlock,
		Maker:                       rec.Maker,
		Token:                       rec.Token,
		Amount:                      rec.Amount,
		RemainingAmount:             rec.RemainingAmount,
		SafetyDeposit:               rec.SafetyDeposit,
		Timelocks:                   timelock.FromBytes32(rec.Timelocks),
		ExpirationTime:              rec.ExpirationTime,
		AssetIsNative:               rec.AssetIsNative,
		DstAmount:                   rec.DstAmount,
		DutchAuctionDataHash:        rec.DutchAuctionDataHash,
		MaxCancellationPremium:      rec.MaxCancellationPremium,
		CancellationAuctionDuration: rec.CancellationAuctionDuration,
		AllowMultipleFills:          rec.AllowMultipleFills,
		Salt:                        rec.Salt,
	}, true
}

// OrderDelete removes the order stored at addr.
func (s *Store) OrderDelete(addr [20]byte) error {
	return s.db.Delete(orderStoreKey(addr))
}

// EscrowPut stores an escrow under its derived address.
func (s *Store) EscrowPut(esc *Escrow) error {
	rec := storedEscrow{
		Side:          uint8(esc.Side),
		OrderHash:     esc.OrderHash,
		Hashlock:      esc.Hashlock,
		Maker:         esc.Maker,
		Taker:         esc.Taker,
		Token:         esc.Token,
		Amount:        cloneBigInt(esc.Amount),
		SafetyDeposit: cloneBigInt(esc.SafetyDeposit),
		Timelocks:     esc.Timelocks.Bytes32(),
		AssetIsNative: esc.AssetIsNative,
		DstAmount:     cloneBigInt(esc.DstAmount),
		RescueStart:   esc.RescueStart,
	}
	encoded, err := rlp.EncodeToBytes(&rec)
	if err != nil {
		return err
	}
	return s.db.Put(escrowStoreKey(esc.Address()), encoded)
}

// EscrowGet loads the escrow stored at addr.
func (s *Store) EscrowGet(addr [20]byte) (*Escrow, bool) {
	raw, err := s.db.Get(escrowStoreKey(addr))
	if err != nil {
		return nil, false
	}
	var rec storedEscrow
	if err := rlp.DecodeBytes(raw, &rec); err != nil {
		return nil, false
	}
	return &Escrow{
		Side:          Side(rec.Side),
		OrderHash:     rec.OrderHash,
		Hashlock:      rec.Hashlock,
		Maker:         rec.Maker,
		Taker:         rec.Taker,
		Token:         rec.Token,
		Amount:        rec.Amount,
		SafetyDeposit: rec.SafetyDeposit,
		Timelocks:     timelock.FromBytes32(rec.Timelocks),
		AssetIsNative: rec.AssetIsNative,
		DstAmount:     rec.DstAmount,
		RescueStart:   rec.RescueStart,
	}, true
}

// EscrowDelete removes the escrow stored at addr.
func (s *Store) EscrowDelete(addr [20]byte) error {
	return s.db.Delete(escrowStoreKey(addr))
}
