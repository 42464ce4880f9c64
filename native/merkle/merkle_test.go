package merkle

import (
	"math/big"
	"testing"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/stretchr/testify/require"
)

func testSecrets(n int) [][32]byte {
	out := make([][32]byte, n)
	for i := range out {
		out[i] = ethcrypto.Keccak256Hash([]byte{byte(i), 0xA5})
	}
	return out
}

func TestVerifyRoundTrip(t *testing.T) {
	for _, n := range []int{1, 2, 3, 5, 8, 13} {
		secrets := testSecrets(n)
		root := Root(secrets)
		for i := range secrets {
			proof := ProofFor(secrets, uint64(i))
			require.True(t, VerifyProof(proof, root), "n=%d index=%d", n, i)
		}
	}
}

func TestVerifyRejectsCorruptedProof(t *testing.T) {
	secrets := testSecrets(8)
	root := Root(secrets)
	proof := ProofFor(secrets, 3)

	// A single flipped byte anywhere in the proof must fail verification.
	flipped := proof
	flipped.Siblings = append([][32]byte(nil), proof.Siblings...)
	flipped.Siblings[1][7] ^= 0x01
	require.False(t, VerifyProof(flipped, root))

	wrongIndex := proof
	wrongIndex.Index = 4
	require.False(t, VerifyProof(wrongIndex, root))

	wrongSecret := proof
	wrongSecret.HashedSecret[0] ^= 0x80
	require.False(t, VerifyProof(wrongSecret, root))

	wrongRoot := root
	wrongRoot[31] ^= 0x01
	require.False(t, VerifyProof(proof, wrongRoot))
}

func TestValidPartialFillSequence(t *testing.T) {
	orderAmount := big.NewInt(100_000)
	parts := uint64(4)

	// First fill of 40%: consumes slices 0 and 1, must claim index 1.
	remaining := new(big.Int).Set(orderAmount)
	fill := big.NewInt(40_000)
	require.True(t, ValidPartialFill(fill, remaining, orderAmount, parts, 1))
	require.False(t, ValidPartialFill(fill, remaining, orderAmount, parts, 0))
	require.False(t, ValidPartialFill(fill, remaining, orderAmount, parts, 2))

	// Second fill of 35%: cumulative 75%, claims index 2.
	remaining.Sub(remaining, fill)
	fill = big.NewInt(35_000)
	require.True(t, ValidPartialFill(fill, remaining, orderAmount, parts, 2))

	// Exhausting fill validates only against the distinguished final index.
	remaining.Sub(remaining, fill)
	fill = new(big.Int).Set(remaining)
	require.True(t, ValidPartialFill(fill, remaining, orderAmount, parts, 4))
	require.False(t, ValidPartialFill(fill, remaining, orderAmount, parts, 3))
}

func TestValidPartialFillRejectsRepeatedIndex(t *testing.T) {
	orderAmount := big.NewInt(100_000)
	parts := uint64(4)

	// First fill of 10% claims slice 0.
	remaining := new(big.Int).Set(orderAmount)
	require.True(t, ValidPartialFill(big.NewInt(10_000), remaining, orderAmount, parts, 0))

	// A second tiny fill that lands in the same slice is rejected outright:
	// no claimed index makes it valid.
	remaining.Sub(remaining, big.NewInt(10_000))
	for idx := uint64(0); idx <= parts+1; idx++ {
		require.False(t, ValidPartialFill(big.NewInt(5_000), remaining, orderAmount, parts, idx),
			"index %d accepted for a double-claimed slice", idx)
	}

	// A fill that crosses into the next slice is accepted.
	require.True(t, ValidPartialFill(big.NewInt(20_000), remaining, orderAmount, parts, 1))
}

func TestValidPartialFillConsecutiveIndexesDiffer(t *testing.T) {
	orderAmount := big.NewInt(100_000)
	parts := uint64(8)

	remaining := new(big.Int).Set(orderAmount)
	prevIndex := int64(-1)
	fill := big.NewInt(12_500)
	for remaining.Sign() > 0 {
		var accepted int64 = -1
		for idx := uint64(0); idx <= parts+1; idx++ {
			if ValidPartialFill(fill, remaining, orderAmount, parts, idx) {
				accepted = int64(idx)
				break
			}
		}
		require.GreaterOrEqual(t, accepted, int64(0))
		require.NotEqual(t, prevIndex, accepted)
		prevIndex = accepted
		remaining.Sub(remaining, fill)
	}
}

func TestValidPartialFillDegenerateInputs(t *testing.T) {
	require.False(t, ValidPartialFill(big.NewInt(1), big.NewInt(1), big.NewInt(0), 2, 0))
	require.False(t, ValidPartialFill(nil, big.NewInt(1), big.NewInt(1), 2, 0))
	require.False(t, ValidPartialFill(big.NewInt(1), nil, big.NewInt(1), 2, 0))
}
