package state

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ccnode/ccnode/core/types"
	"github.com/ccnode/ccnode/journaldb"
)

func mkHash(b byte) types.Hash {
	var h types.Hash
	h[0] = b
	return h
}

func commitBlock(t *testing.T, root *StateDB, parent types.Hash, block types.Hash, number uint64, balance uint64, isBest bool) {
	t.Helper()
	handle := root.BoxedCloneCanon(parent)
	handle.AddToAccountCache(testAddr, &types.Account{Balance: balance}, true)
	require.NoError(t, handle.JournalUnder(&journaldb.Batch{}, number, block))
	require.NoError(t, handle.SyncCache(nil, nil, block, isBest))
}

var testAddr = types.Address{1}

// TestStateDBSmokeReorg reproduces the literal commit sequence
// h0 -> h1a(canon) -> h1b(noncanon) -> h2b(from h1b, noncanon) ->
// h2a(from h1a, canon) -> h3a(canon), then a reorg onto h3b.
func TestStateDBSmokeReorg(t *testing.T) {
	journal := journaldb.NewMemDB()
	defer journal.Close()
	root, err := New(journal, 1<<20)
	require.NoError(t, err)

	h0 := mkHash(0x00)
	h1a := mkHash(0x1a)
	h1b := mkHash(0x1b)
	h2a := mkHash(0x2a)
	h2b := mkHash(0x2b)
	h3a := mkHash(0x3a)
	h3b := mkHash(0x3b)

	commitBlock(t, root, h0, h1a, 1, 1, true)
	commitBlock(t, root, h0, h1b, 1, 100, false)
	commitBlock(t, root, h1b, h2b, 2, 200, false)
	commitBlock(t, root, h1a, h2a, 2, 2, true)
	commitBlock(t, root, h2a, h3a, 3, 5, true)

	view := root.BoxedCloneCanon(h3a)
	cached, ok := view.GetCachedAccount(testAddr)
	require.True(t, ok)
	require.NotNil(t, cached)
	require.Equal(t, uint64(5), cached.Balance)

	for _, h := range []types.Hash{h1a, h2b, h1b} {
		view := root.BoxedCloneCanon(h)
		_, ok := view.GetCachedAccount(testAddr)
		require.False(t, ok, "expected cache miss for %x", h)
	}

	// Reorg onto h3b: h1b, h2b, h3b become canon; h1a, h2a, h3a do not.
	reorgHandle := root.BoxedCloneCanon(h2b)
	reorgHandle.AddToAccountCache(testAddr, &types.Account{Balance: 300}, true)
	require.NoError(t, reorgHandle.JournalUnder(&journaldb.Batch{}, 3, h3b))
	require.NoError(t, reorgHandle.SyncCache(
		[]types.Hash{h1b, h2b, h3b},
		[]types.Hash{h1a, h2a, h3a},
		h3b,
		true,
	))

	postReorgView := root.BoxedCloneCanon(h3a)
	_, ok = postReorgView.GetCachedAccount(testAddr)
	require.False(t, ok, "h3a view must read as a cache miss after the reorg")
}

func TestStateDBTwelveBlockHorizon(t *testing.T) {
	journal := journaldb.NewMemDB()
	defer journal.Close()
	root, err := New(journal, 1<<20)
	require.NoError(t, err)

	parent := mkHash(0)
	for i := byte(1); i <= 20; i++ {
		block := mkHash(i)
		commitBlock(t, root, parent, block, uint64(i), uint64(i), true)
		parent = block
	}
	require.LessOrEqual(t, len(root.sharedCache.modifications), StateCacheBlocks)
}

func TestStateDBNonCanonicalHandleNeverPopulatesSharedCache(t *testing.T) {
	journal := journaldb.NewMemDB()
	defer journal.Close()
	root, err := New(journal, 1<<20)
	require.NoError(t, err)

	h0 := mkHash(0)
	h1 := mkHash(1)
	commitBlock(t, root, h0, h1, 1, 42, false)

	_, hit := root.sharedCache.accounts.Get(testAddr)
	require.False(t, hit, "non-canonical commit must not populate the shared cache")
}

func TestStateDBCleanReadsNotTrackedInBlockChanges(t *testing.T) {
	journal := journaldb.NewMemDB()
	defer journal.Close()
	root, err := New(journal, 1<<20)
	require.NoError(t, err)

	h0 := mkHash(0)
	h1 := mkHash(1)
	handle := root.BoxedCloneCanon(h0)
	handle.AddToAccountCache(testAddr, &types.Account{Balance: 7}, false) // clean read, not modified
	require.NoError(t, handle.JournalUnder(&journaldb.Batch{}, 1, h1))
	require.NoError(t, handle.SyncCache(nil, nil, h1, true))

	// The value is still propagated into the shared cache under isBest...
	v, hit := root.sharedCache.accounts.Get(testAddr)
	require.True(t, hit)
	require.Equal(t, uint64(7), v.Balance)

	// ...but is not recorded as a touched address in the new BlockChanges,
	// so it can never by itself make a later view distrust the cache.
	m := root.sharedCache.findModification(h1)
	require.NotNil(t, m)
	_, touched := m.Accounts[testAddr]
	require.False(t, touched)
}
