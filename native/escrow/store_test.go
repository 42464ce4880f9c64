package escrow

import (
	"math/big"
	"testing"

	"atomicswap/native/timelock"
	"atomicswap/storage"
)

func TestStoreOrderRoundTrip(t *testing.T) {
	store := NewStore(storage.NewMemDB())
	order := &Order{
		OrderHash:                   [32]byte{0x01},
		Hashlock:                    [32]byte{0x02},
		Maker:                       testAddr(0x01),
		Token:                       testAddr(0x30),
		Amount:                      big.NewInt(100_000),
		RemainingAmount:             big.NewInt(75_000),
		SafetyDeposit:               big.NewInt(25),
		Timelocks:                   testTimelocks().SetDeployedAt(testStart),
		ExpirationTime:              testStart + 1000,
		AssetIsNative:               false,
		DstAmount:                   big.NewInt(50_000),
		DutchAuctionDataHash:        [32]byte{0x03},
		MaxCancellationPremium:      big.NewInt(400),
		CancellationAuctionDuration: 100,
		AllowMultipleFills:          true,
		Salt:                        [32]byte{0x04},
	}
	if err := store.OrderPut(order); err != nil {
		t.Fatalf("put: %v", err)
	}
	loaded, ok := store.OrderGet(order.Address())
	if !ok {
		t.Fatal("order not found")
	}
	if loaded.OrderHash != order.OrderHash || loaded.Maker != order.Maker {
		t.Fatal("identity fields mismatch")
	}
	if loaded.RemainingAmount.Cmp(order.RemainingAmount) != 0 {
		t.Fatalf("remaining %s", loaded.RemainingAmount)
	}
	if loaded.Timelocks.DeployedAt() != testStart {
		t.Fatalf("deployed at %d", loaded.Timelocks.DeployedAt())
	}
	if got := loaded.Timelocks.Delta(timelock.StageSrcCancellation); got != 30 {
		t.Fatalf("cancellation delta %d", got)
	}
	if !loaded.AllowMultipleFills {
		t.Fatal("multi-fill flag lost")
	}

	if err := store.OrderDelete(order.Address()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := store.OrderGet(order.Address()); ok {
		t.Fatal("order still present after delete")
	}
}

func TestStoreEscrowRoundTrip(t *testing.T) {
	store := NewStore(storage.NewMemDB())
	esc := &Escrow{
		Side:          SideDst,
		OrderHash:     [32]byte{0x01},
		Hashlock:      [32]byte{0x02},
		Maker:         testAddr(0x01),
		Taker:         testAddr(0x02),
		Token:         testAddr(0x40),
		Amount:        big.NewInt(60_000),
		SafetyDeposit: big.NewInt(25),
		Timelocks:     testTimelocks().SetDeployedAt(testStart),
		AssetIsNative: false,
		DstAmount:     big.NewInt(0),
		RescueStart:   testStart + RescueDelay,
	}
	if err := store.EscrowPut(esc); err != nil {
		t.Fatalf("put: %v", err)
	}
	loaded, ok := store.EscrowGet(esc.Address())
	if !ok {
		t.Fatal("escrow not found")
	}
	if loaded.Side != SideDst {
		t.Fatalf("side %v", loaded.Side)
	}
	if loaded.RescueStart != esc.RescueStart {
		t.Fatalf("rescue start %d", loaded.RescueStart)
	}
	if loaded.Amount.Cmp(esc.Amount) != 0 {
		t.Fatalf("amount %s", loaded.Amount)
	}
	if err := store.EscrowDelete(esc.Address()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := store.EscrowGet(esc.Address()); ok {
		t.Fatal("escrow still present after delete")
	}
}

func TestDeriveEscrowAddressSideSeparation(t *testing.T) {
	amount := big.NewInt(60_000)
	deposit := big.NewInt(25)
	src := DeriveEscrowAddress(SideSrc, [32]byte{0x01}, [32]byte{0x02},
		testAddr(0x01), testAddr(0x02), testAddr(0x30), amount, deposit, testStart)
	dst := DeriveEscrowAddress(SideDst, [32]byte{0x01}, [32]byte{0x02},
		testAddr(0x01), testAddr(0x02), testAddr(0x30), amount, deposit, testStart)
	if src == dst {
		t.Fatal("src and dst seed tuples must derive distinct addresses")
	}
	// The side swaps the creator/recipient seed pair, so mirrored parties on
	// the opposite side collide only if the tuple is otherwise identical.
	mirrored := DeriveEscrowAddress(SideDst, [32]byte{0x01}, [32]byte{0x02},
		testAddr(0x02), testAddr(0x01), testAddr(0x30), amount, deposit, testStart)
	if src != mirrored {
		t.Fatal("dst with swapped parties should mirror the src tuple")
	}
}

func TestComputeOrderHashCommitsToEveryField(t *testing.T) {
	params := defaultOrderParams()
	base := ComputeOrderHash(params.Hashlock, params.Maker, params.Token,
		params.Amount, params.SafetyDeposit, params.Timelocks,
		params.ExpirationTime, params.AssetIsNative, params.DstAmount,
		params.DutchAuctionDataHash, params.MaxCancellationPremium,
		params.CancellationAuctionDuration, params.AllowMultipleFills, params.Salt)
	changed := ComputeOrderHash(params.Hashlock, params.Maker, params.Token,
		params.Amount, params.SafetyDeposit, params.Timelocks,
		params.ExpirationTime, params.AssetIsNative, params.DstAmount,
		params.DutchAuctionDataHash, params.MaxCancellationPremium,
		params.CancellationAuctionDuration, !params.AllowMultipleFills, params.Salt)
	if base == changed {
		t.Fatal("flipping a committed field must change the order hash")
	}
	again := ComputeOrderHash(params.Hashlock, params.Maker, params.Token,
		params.Amount, params.SafetyDeposit, params.Timelocks,
		params.ExpirationTime, params.AssetIsNative, params.DstAmount,
		params.DutchAuctionDataHash, params.MaxCancellationPremium,
		params.CancellationAuctionDuration, params.AllowMultipleFills, params.Salt)
	if base != again {
		t.Fatal("order hash must be deterministic")
	}
}
