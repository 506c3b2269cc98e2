package mathutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseUint64(t *testing.T) {
	v, ok := ParseUint64("0x2a")
	require.True(t, ok)
	require.Equal(t, uint64(42), v)

	v, ok = ParseUint64("42")
	require.True(t, ok)
	require.Equal(t, uint64(42), v)

	v, ok = ParseUint64("")
	require.True(t, ok)
	require.Equal(t, uint64(0), v)

	_, ok = ParseUint64("not-a-number")
	require.False(t, ok)
}

func TestMustParseUint64Panics(t *testing.T) {
	require.Panics(t, func() { MustParseUint64("nope") })
}

func TestAbsoluteDifference(t *testing.T) {
	require.Equal(t, uint64(5), AbsoluteDifference(10, 5))
	require.Equal(t, uint64(5), AbsoluteDifference(5, 10))
	require.Equal(t, uint64(0), AbsoluteDifference(5, 5))
}

func TestCeilDiv(t *testing.T) {
	require.Equal(t, 3, CeilDiv(7, 3))
	require.Equal(t, 2, CeilDiv(6, 3))
	require.Equal(t, 0, CeilDiv(7, 0))
}

func TestRandInt64IsNonNegative(t *testing.T) {
	for i := 0; i < 10; i++ {
		v, err := RandInt64()
		require.NoError(t, err)
		require.GreaterOrEqual(t, v, int64(0))
	}
}
