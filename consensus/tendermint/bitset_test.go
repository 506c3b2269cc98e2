package tendermint

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBitSetSetAndIsSet(t *testing.T) {
	var b BitSet
	require.False(t, b.IsSet(0))
	b.Set(0)
	b.Set(63)
	b.Set(64)
	b.Set(200)
	require.True(t, b.IsSet(0))
	require.True(t, b.IsSet(63))
	require.True(t, b.IsSet(64))
	require.True(t, b.IsSet(200))
	require.False(t, b.IsSet(1))
	require.Equal(t, 4, b.PopCount())
}

func TestBitSetZeroValueIsEmpty(t *testing.T) {
	var b BitSet
	require.Equal(t, 0, b.PopCount())
	require.False(t, b.IsSet(1000))
}
