package escrow

import (
	"encoding/binary"
	"math/big"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"atomicswap/native/timelock"
)

var (
	orderSeedPrefix  = []byte("order")
	escrowSeedPrefix = []byte("escrow")

	orderStoreKeyPrefix  = []byte("settle/order/")
	escrowStoreKeyPrefix = []byte("settle/escrow/")
)

func orderStoreKey(addr [20]byte) []byte {
	buf := make([]byte, 0, len(orderStoreKeyPrefix)+len(addr))
	buf = append(buf, orderStoreKeyPrefix...)
	return append(buf, addr[:]...)
}

func escrowStoreKey(addr [20]byte) []byte {
	buf := make([]byte, 0, len(escrowStoreKeyPrefix)+len(addr))
	buf = append(buf, escrowStoreKeyPrefix...)
	return append(buf, addr[:]...)
}

func addressFromSeeds(seeds ...[]byte) [20]byte {
	digest := ethcrypto.Keccak256(seeds...)
	var addr [20]byte
	copy(addr[:], digest[12:])
	return addr
}

// DeriveOrderAddress returns the deterministic address an order lives at.
func DeriveOrderAddress(orderHash [32]byte) [20]byte {
	return addressFromSeeds(orderSeedPrefix, orderHash[:])
}

// DeriveEscrowAddress returns the deterministic address an escrow lives at.
// The seed tuple binds every identifying field, so a counterfeit parameter
// set derives an address holding nothing. The creator/recipient pair follows
// the side: the source escrow is seeded (maker, taker), the destination
// escrow (taker, maker).
func DeriveEscrowAddress(side Side, orderHash, hashlock [32]byte, maker, taker, token [20]byte, amount, safetyDeposit *big.Int, rescueStart uint32) [20]byte {
	creator, recipient := maker, taker
	if side == SideDst {
		creator, recipient = taker, maker
	}
	amountBytes := bigToBytes32(amount)
	depositBytes := bigToBytes32(safetyDeposit)
	var rescueBytes [4]byte
	binary.BigEndian.PutUint32(rescueBytes[:], rescueStart)
	return addressFromSeeds(
		escrowSeedPrefix,
		orderHash[:],
		hashlock[:],
		creator[:],
		recipient[:],
		token[:],
		amountBytes[:],
		depositBytes[:],
		rescueBytes[:],
	)
}

// ComputeOrderHash derives the order commitment: keccak256 over the
// big-endian concatenation of every economic term, in the fixed wire order.
func ComputeOrderHash(
	hashlock [32]byte,
	maker, token [20]byte,
	amount, safetyDeposit *big.Int,
	timelocks timelock.Timelocks,
	expirationTime uint32,
	assetIsNative bool,
	dstAmount *big.Int,
	dutchAuctionDataHash [32]byte,
	maxCancellationPremium *big.Int,
	cancellationAuctionDuration uint32,
	allowMultipleFills bool,
	salt [32]byte,
) [32]byte {
	buf := make([]byte, 0, 32*6+20*2+4*2+2+32)
	buf = append(buf, hashlock[:]...)
	buf = append(buf, maker[:]...)
	buf = append(buf, token[:]...)
	buf = appendBig32(buf, amount)
	buf = appendBig32(buf, safetyDeposit)
	tl := timelocks.Bytes32()
	buf = append(buf, tl[:]...)
	buf = binary.BigEndian.AppendUint32(buf, expirationTime)
	buf = appendBool(buf, assetIsNative)
	buf = appendBig32(buf, dstAmount)
	buf = append(buf, dutchAuctionDataHash[:]...)
	buf = appendBig32(buf, maxCancellationPremium)
	buf = binary.BigEndian.AppendUint32(buf, cancellationAuctionDuration)
	buf = appendBool(buf, allowMultipleFills)
	buf = append(buf, salt[:]...)
	return ethcrypto.Keccak256Hash(buf)
}

// HashSecret computes the hashlock commitment for a settlement secret.
func HashSecret(secret [32]byte) [32]byte {
	return ethcrypto.Keccak256Hash(secret[:])
}

func bigToBytes32(v *big.Int) [32]byte {
	var out [32]byte
	if v == nil {
		return out
	}
	v.FillBytes(out[:])
	return out
}

func appendBig32(buf []byte, v *big.Int) []byte {
	b := bigToBytes32(v)
	return append(buf, b[:]...)
}

func appendBool(buf []byte, v bool) []byte {
	if v {
		return append(buf, 1)
	}
	return append(buf, 0)
}
