package journaldb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemDBJournalUnderAndGet(t *testing.T) {
	db := NewMemDB()
	defer db.Close()

	addr := []byte("account-1")
	batch := (&Batch{}).Put(Accounts, addr, []byte("snapshot-1"))

	var blockHash [32]byte
	blockHash[0] = 1
	require.NoError(t, db.JournalUnder(1, blockHash, batch))

	value, ok, err := db.Get(Accounts, addr)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("snapshot-1"), value)

	has, err := db.Has(BlockChanges, append(append([]byte{}, blockHash[:]...), encodeUint64(1)...))
	require.NoError(t, err)
	require.True(t, has)
}

func TestMemDBMarkCanonical(t *testing.T) {
	db := NewMemDB()
	defer db.Close()

	var blockHash [32]byte
	blockHash[0] = 7
	require.NoError(t, db.MarkCanonical(blockHash, true))

	value, ok, err := db.Get(CanonicalMarks, blockHash[:])
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte{1}, value)
}

func TestMemDBGetMissingKeyIsNotError(t *testing.T) {
	db := NewMemDB()
	defer db.Close()

	_, ok, err := db.Get(Accounts, []byte("nope"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemDBClosedReturnsError(t *testing.T) {
	db := NewMemDB()
	require.NoError(t, db.Close())

	_, _, err := db.Get(Accounts, []byte("x"))
	require.ErrorIs(t, err, ErrClosed)
}
