package timelock

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	deltas := [7]uint32{10, 20, 30, 40, 50, 60, 70}
	tl := New(deltas).SetDeployedAt(1_700_000_000)

	require.Equal(t, uint32(1_700_000_000), tl.DeployedAt())
	for stage := StageSrcWithdrawal; stage <= StageDstCancellation; stage++ {
		got, err := tl.Get(stage)
		require.NoError(t, err)
		require.Equal(t, 1_700_000_000+deltas[stage], got)
		require.Equal(t, deltas[stage], tl.Delta(stage))
	}
}

func TestSetDeployedAtIsPure(t *testing.T) {
	base := New([7]uint32{1, 2, 3, 4, 5, 6, 7})
	stamped := base.SetDeployedAt(1000)

	require.Equal(t, uint32(0), base.DeployedAt())
	require.Equal(t, uint32(1000), stamped.DeployedAt())

	// Restamping replaces, never accumulates.
	restamped := stamped.SetDeployedAt(2000)
	require.Equal(t, uint32(2000), restamped.DeployedAt())
	require.Equal(t, uint32(3), restamped.Delta(StageSrcCancellation))
}

func TestGetOverflow(t *testing.T) {
	tl := New([7]uint32{0, 0, math.MaxUint32, 0, 0, 0, 0}).SetDeployedAt(2)

	_, err := tl.Get(StageSrcCancellation)
	require.ErrorIs(t, err, ErrArithmeticOverflow)

	// Stages whose sum stays within range still resolve.
	got, err := tl.Get(StageSrcWithdrawal)
	require.NoError(t, err)
	require.Equal(t, uint32(2), got)
}

func TestRescueStart(t *testing.T) {
	tl := New([7]uint32{}).SetDeployedAt(1_000_000)

	got, err := tl.RescueStart(691200)
	require.NoError(t, err)
	require.Equal(t, uint32(1_691_200), got)

	_, err = tl.SetDeployedAt(math.MaxUint32).RescueStart(1)
	require.ErrorIs(t, err, ErrArithmeticOverflow)
}

func TestBytes32RoundTrip(t *testing.T) {
	tl := New([7]uint32{11, 22, 33, 44, 55, 66, 77}).SetDeployedAt(123456)
	decoded := FromBytes32(tl.Bytes32())

	require.Equal(t, tl.DeployedAt(), decoded.DeployedAt())
	for stage := StageSrcWithdrawal; stage <= StageDstCancellation; stage++ {
		require.Equal(t, tl.Delta(stage), decoded.Delta(stage))
	}
}

func TestByteLayout(t *testing.T) {
	// Deployment timestamp lives in the top four bytes, stage zero in the
	// bottom four, big-endian within each slot.
	tl := New([7]uint32{0x01020304}).SetDeployedAt(0xAABBCCDD)
	b := tl.Bytes32()

	require.Equal(t, []byte{0xAA, 0xBB, 0xCC, 0xDD}, b[0:4])
	require.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, b[28:32])
}
