package crypto

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	hexBlakeEmpty        = "0e5751c026e543b2e8ab2eb06099daa1d1e5df47778f7787faab45cdf12fe3a8"
	hexBlakeNullRLP      = "45b0cfc220ceec5b7c1c62c4d4193d38e4eba48e8815729ce75f9c0ab0e4c1c0"
	hexBlakeEmptyListRLP = "da223b09967c5bd2110743307e0af6d39f61720aa7218a640a08eed12dd575c7"
)

func TestBlakeEmptyConstants(t *testing.T) {
	require.Equal(t, hexBlakeEmpty, hex.EncodeToString(BlakeEmpty[:]))
	require.Equal(t, hexBlakeNullRLP, hex.EncodeToString(BlakeNullRLP[:]))
	require.Equal(t, hexBlakeEmptyListRLP, hex.EncodeToString(BlakeEmptyListRLP[:]))
}

func TestBlake256KnownVectors(t *testing.T) {
	cases := []struct {
		name string
		in   []byte
		want string
	}{
		{"empty", nil, hexBlakeEmpty},
		{"empty-rlp-string", []byte{0x80}, hexBlakeNullRLP},
		{"empty-rlp-list", []byte{0xc0}, hexBlakeEmptyListRLP},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Blake256(c.in)
			require.Equal(t, c.want, hex.EncodeToString(got[:]))
		})
	}
}

func TestBlake256WithKeyRejectsLongKeys(t *testing.T) {
	_, err := Blake256WithKey(nil, make([]byte, 64))
	require.NoError(t, err)

	_, err = Blake256WithKey(nil, make([]byte, 65))
	require.Error(t, err)
}

func TestBlake256WithKeyChangesOutput(t *testing.T) {
	r1, err := Blake256WithKey(nil, make([]byte, 64))
	require.NoError(t, err)
	key2 := make([]byte, 64)
	key2[0] = 1
	r2, err := Blake256WithKey(nil, key2)
	require.NoError(t, err)
	require.NotEqual(t, r1, r2)
}
