package custody

import (
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/rlp"

	"atomicswap/storage"
)

var (
	// ErrInvalidAmount is returned for nil or negative transfer amounts.
	ErrInvalidAmount = errors.New("custody: invalid amount")
	// ErrInsufficientFunds is returned when a transfer exceeds the source
	// balance.
	ErrInsufficientFunds = errors.New("custody: insufficient funds")
	// ErrMissingHolding is returned when an operation references a token
	// holding record that was never opened.
	ErrMissingHolding = errors.New("custody: holding record not found")
	// ErrHoldingNotEmpty is returned when closing a holding that still
	// carries a balance.
	ErrHoldingNotEmpty = errors.New("custody: holding record not empty")
)

// NativeToken is the sentinel token identifier for the chain-native asset.
var NativeToken = [20]byte{}

// Ledger is the asset-custody collaborator: it tracks native balances and
// token holding records per settlement address. Native balances exist
// implicitly; token holdings must be opened before they can receive funds,
// mirroring the holding-record model of the host ledger.
type Ledger struct {
	mu sync.RWMutex
	db storage.Database
}

// NewLedger creates a ledger over the given key-value backend.
func NewLedger(db storage.Database) *Ledger {
	return &Ledger{db: db}
}

func (l *Ledger) readBalance(key []byte) (*big.Int, bool, error) {
	raw, err := l.db.Get(key)
	if err == storage.ErrKeyNotFound {
		return big.NewInt(0), false, nil
	}
	if err != nil {
		return nil, false, err
	}
	balance := new(big.Int)
	if err := rlp.DecodeBytes(raw, balance); err != nil {
		return nil, false, err
	}
	return balance, true, nil
}

func (l *Ledger) writeBalance(key []byte, balance *big.Int) error {
	raw, err := rlp.EncodeToBytes(balance)
	if err != nil {
		return err
	}
	return l.db.Put(key, raw)
}

// NativeBalance returns the native-asset balance of an address. Addresses
// with no recorded balance hold zero.
func (l *Ledger) NativeBalance(addr [20]byte) (*big.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	balance, _, err := l.readBalance(nativeKey(addr))
	return balance, err
}

// NativeTransfer moves native funds between addresses. A zero amount is a
// no-op.
func (l *Ledger) NativeTransfer(from, to [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	if amount.Sign() == 0 || from == to {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	fromBalance, _, err := l.readBalance(nativeKey(from))
	if err != nil {
		return err
	}
	if fromBalance.Cmp(amount) < 0 {
		return ErrInsufficientFunds
	}
	toBalance, _, err := l.readBalance(nativeKey(to))
	if err != nil {
		return err
	}
	if err := l.writeBalance(nativeKey(from), new(big.Int).Sub(fromBalance, amount)); err != nil {
		return err
	}
	return l.writeBalance(nativeKey(to), new(big.Int).Add(toBalance, amount))
}

// MintNative credits native funds to an address. Intended for genesis wiring
// and tests.
func (l *Ledger) MintNative(addr [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	balance, _, err := l.readBalance(nativeKey(addr))
	if err != nil {
		return err
	}
	return l.writeBalance(nativeKey(addr), new(big.Int).Add(balance, amount))
}

// OpenHolding creates an empty token holding record for the owner. Opening an
// existing holding is a no-op.
func (l *Ledger) OpenHolding(owner, token [20]byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := tokenKey(owner, token)
	ok, err := l.db.Has(key)
	if err != nil || ok {
		return err
	}
	return l.writeBalance(key, big.NewInt(0))
}

// HasHolding reports whether the owner has an open holding record for the
// token.
func (l *Ledger) HasHolding(owner, token [20]byte) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.db.Has(tokenKey(owner, token))
}

// TokenBalance returns the token balance held in the owner's holding record.
func (l *Ledger) TokenBalance(owner, token [20]byte) (*big.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	balance, ok, err := l.readBalance(tokenKey(owner, token))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrMissingHolding
	}
	return balance, nil
}

// TokenTransfer moves token funds between two open holding records.
func (l *Ledger) TokenTransfer(from, to, token [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	fromBalance, ok, err := l.readBalance(tokenKey(from, token))
	if err != nil {
		return err
	}
	if !ok {
		return ErrMissingHolding
	}
	toBalance, ok, err := l.readBalance(tokenKey(to, token))
	if err != nil {
		return err
	}
	if !ok {
		return ErrMissingHolding
	}
	if amount.Sign() == 0 || from == to {
		return nil
	}
	if fromBalance.Cmp(amount) < 0 {
		return ErrInsufficientFunds
	}
	if err := l.writeBalance(tokenKey(from, token), new(big.Int).Sub(fromBalance, amount)); err != nil {
		return err
	}
	return l.writeBalance(tokenKey(to, token), new(big.Int).Add(toBalance, amount))
}

// MintToken credits tokens to an open holding record. Intended for genesis
// wiring and tests.
func (l *Ledger) MintToken(owner, token [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	balance, ok, err := l.readBalance(tokenKey(owner, token))
	if err != nil {
		return err
	}
	if !ok {
		return ErrMissingHolding
	}
	return l.writeBalance(tokenKey(owner, token), new(big.Int).Add(balance, amount))
}

// Wrap moves native balance from an address into the holder's native-token
// holding record, so native assets can be custodied and transferred exactly
// like any other token.
func (l *Ledger) Wrap(from, holder [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	fromBalance, _, err := l.readBalance(nativeKey(from))
	if err != nil {
		return err
	}
	if fromBalance.Cmp(amount) < 0 {
		return ErrInsufficientFunds
	}
	held, ok, err := l.readBalance(tokenKey(holder, NativeToken))
	if err != nil {
		return err
	}
	if !ok {
		return ErrMissingHolding
	}
	if err := l.writeBalance(nativeKey(from), new(big.Int).Sub(fromBalance, amount)); err != nil {
		return err
	}
	return l.writeBalance(tokenKey(holder, NativeToken), new(big.Int).Add(held, amount))
}

// Unwrap moves balance out of a native-token holding record back into a plain
// native balance.
func (l *Ledger) Unwrap(holder, to [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	held, ok, err := l.readBalance(tokenKey(holder, NativeToken))
	if err != nil {
		return err
	}
	if !ok {
		return ErrMissingHolding
	}
	if held.Cmp(amount) < 0 {
		return ErrInsufficientFunds
	}
	toBalance, _, err := l.readBalance(nativeKey(to))
	if err != nil {
		return err
	}
	if err := l.writeBalance(tokenKey(holder, NativeToken), new(big.Int).Sub(held, amount)); err != nil {
		return err
	}
	return l.writeBalance(nativeKey(to), new(big.Int).Add(toBalance, amount))
}

// CloseHolding removes an emptied holding record so its storage can be
// reclaimed. Closing a holding that still carries funds is rejected.
func (l *Ledger) CloseHolding(owner, token [20]byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	balance, ok, err := l.readBalance(tokenKey(owner, token))
	if err != nil {
		return err
	}
	if !ok {
		return ErrMissingHolding
	}
	if balance.Sign() != 0 {
		return ErrHoldingNotEmpty
	}
	return l.db.Delete(tokenKey(owner, token))
}
