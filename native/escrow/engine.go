package escrow

import (
	"math/big"
	"time"

	"atomicswap/core/events"
)

// nativeToken is the sentinel token identifier for the chain-native asset.
// Native orders must name it as their token, and the engine wraps native
// funds into ordinary holding records so custody moves uniformly.
var nativeToken = [20]byte{}

// State persists orders and escrows keyed by their derived addresses.
type State interface {
	OrderPut(*Order) error
	OrderGet(addr [20]byte) (*Order, bool)
	OrderDelete(addr [20]byte) error
	EscrowPut(*Escrow) error
	EscrowGet(addr [20]byte) (*Escrow, bool)
	EscrowDelete(addr [20]byte) error
}

// Custody is the asset-custody collaborator: it moves native and token funds
// between holding records and reclaims emptied records.
type Custody interface {
	NativeBalance(addr [20]byte) (*big.Int, error)
	NativeTransfer(from, to [20]byte, amount *big.Int) error
	HasHolding(owner, token [20]byte) (bool, error)
	OpenHolding(owner, token [20]byte) error
	TokenBalance(owner, token [20]byte) (*big.Int, error)
	TokenTransfer(from, to, token [20]byte, amount *big.Int) error
	Wrap(from, holder [20]byte, amount *big.Int) error
	Unwrap(holder, to [20]byte, amount *big.Int) error
	CloseHolding(owner, token [20]byte) error
}

// Rent is the storage-deposit accounting collaborator: the minimum native
// deposit keeping a record of a given size alive.
type Rent interface {
	MinimumBalance(size int) *big.Int
}

// Whitelist answers whether a principal is authorized for public operations.
type Whitelist interface {
	Allowed(addr [20]byte) bool
}

// Engine drives order and escrow settlement transitions over external state,
// custody, storage-deposit and allow-list collaborators. Every transition is
// a single synchronous computation: all failure conditions are checked before
// the first mutation, so an error means nothing changed.
type Engine struct {
	state     State
	custody   Custody
	rent      Rent
	whitelist Whitelist
	emitter   events.Emitter
	nowFn     func() uint32
}

// NewEngine creates a settlement engine with a no-op emitter. Collaborators
// must be configured before use.
func NewEngine() *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		nowFn:   defaultNow,
	}
}

func defaultNow() uint32 {
	// Timestamps are stored as u32 to keep the packed register small; the
	// range lasts until 2106.
	return uint32(time.Now().Unix())
}

// SetState configures the entity store used by the engine.
func (e *Engine) SetState(state State) { e.state = state }

// SetCustody configures the asset-custody backend used by the engine.
func (e *Engine) SetCustody(custody Custody) { e.custody = custody }

// SetRent configures the storage-deposit schedule used by the engine.
func (e *Engine) SetRent(rent Rent) { e.rent = rent }

// SetWhitelist configures the allow-list gating public operations.
func (e *Engine) SetWhitelist(wl Whitelist) { e.whitelist = wl }

// SetEmitter configures the event emitter. Passing nil resets it to a no-op
// implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the clock collaborator. Primarily intended for tests
// to provide deterministic timestamps; passing nil restores the system clock.
func (e *Engine) SetNowFunc(now func() uint32) {
	if now == nil {
		e.nowFn = defaultNow
		return
	}
	e.nowFn = now
}

func (e *Engine) now() uint32 {
	if e.nowFn == nil {
		return defaultNow()
	}
	return e.nowFn()
}

func (e *Engine) emit(event events.Event) {
	if e.emitter == nil || event == nil {
		return
	}
	e.emitter.Emit(event)
}

func (e *Engine) allowed(addr [20]byte) bool {
	return e.whitelist != nil && e.whitelist.Allowed(addr)
}

// fundAsset moves an asset from a party's own funds into an entity's holding
// record: a plain token transfer, or a wrap of native balance.
func (e *Engine) fundAsset(from, holder, token [20]byte, isNative bool, amount *big.Int) error {
	if isNative {
		return e.custody.Wrap(from, holder, amount)
	}
	return e.custody.TokenTransfer(from, holder, token, amount)
}

// releaseAsset moves an asset out of an entity's holding record to a party:
// a plain token transfer, or an unwrap back into native balance.
func (e *Engine) releaseAsset(holder, to, token [20]byte, isNative bool, amount *big.Int) error {
	if isNative {
		return e.custody.Unwrap(holder, to, amount)
	}
	return e.custody.TokenTransfer(holder, to, token, amount)
}

// requireHolding reports the given taxonomy error when a non-native recipient
// or refund target has no holding record for the token.
func (e *Engine) requireHolding(owner, token [20]byte, isNative bool, missing error) error {
	if isNative {
		return nil
	}
	ok, err := e.custody.HasHolding(owner, token)
	if err != nil {
		return err
	}
	if !ok {
		return missing
	}
	return nil
}

// drainNative pays the entity's full native balance (storage deposit, safety
// deposit, premium reserve) out in up to two slices: first part to one party,
// remainder to another.
func (e *Engine) drainNative(entity [20]byte, first *big.Int, firstTo, restTo [20]byte) error {
	balance, err := e.custody.NativeBalance(entity)
	if err != nil {
		return err
	}
	slice := cloneBigInt(first)
	if slice.Cmp(balance) > 0 {
		slice = balance
	}
	if err := e.custody.NativeTransfer(entity, firstTo, slice); err != nil {
		return err
	}
	rest := new(big.Int).Sub(balance, slice)
	return e.custody.NativeTransfer(entity, restTo, rest)
}
