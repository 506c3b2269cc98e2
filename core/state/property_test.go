// Copyright 2024 The Erigon Authors
// (modifications)
// This file is part of ccnode.
//
// ccnode is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// ccnode is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with ccnode. If not, see <http://www.gnu.org/licenses/>.

package state

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/ccnode/ccnode/core/types"
	"github.com/ccnode/ccnode/journaldb"
)

func hashGen(b byte) types.Hash {
	var h types.Hash
	h[0] = b
	return h
}

// TestPropertyModificationsNeverExceedsHorizon checks that no matter how
// many commits are pushed through sync_cache, AccountCache.modifications
// never grows past StateCacheBlocks.
func TestPropertyModificationsNeverExceedsHorizon(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		cache, err := NewAccountCache(1 << 20)
		if err != nil {
			rt.Fatal(err)
		}

		n := rapid.IntRange(0, 200).Draw(rt, "n")
		for i := 0; i < n; i++ {
			b := byte(i % 256)
			cache.pushModification(&BlockChanges{
				Number:  uint64(i),
				Hash:    hashGen(b),
				Parent:  hashGen(byte(i - 1)),
				IsCanon: rapid.Bool().Draw(rt, "isCanon"),
			})
			if len(cache.modifications) > StateCacheBlocks {
				rt.Fatalf("modifications grew to %d, want <= %d", len(cache.modifications), StateCacheBlocks)
			}
		}
	})
}

// TestPropertyCacheReadUnsafeAfterLaterTouch checks that a view rooted at
// an ancestor strictly older than a block that later touched addr always
// sees a cache miss for addr, matching isAllowed's "a more recent touch
// masks every older view" contract, regardless of the random chain length
// and touch position generated.
func TestPropertyCacheReadUnsafeAfterLaterTouch(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		addr := types.Address{0xAA}

		journal := journaldb.NewMemDB()
		defer journal.Close()
		root, err := New(journal, 1<<20)
		if err != nil {
			rt.Fatal(err)
		}

		steps := rapid.IntRange(2, 10).Draw(rt, "steps")
		touchIndex := rapid.IntRange(1, steps).Draw(rt, "touchIndex")
		queryIndex := rapid.IntRange(0, touchIndex-1).Draw(rt, "queryIndex")

		ancestors := make([]types.Hash, steps+1)
		ancestors[0] = hashGen(0)
		parent := ancestors[0]
		for i := 1; i <= steps; i++ {
			block := hashGen(byte(i))
			handle := root.BoxedCloneCanon(parent)
			if i == touchIndex {
				handle.AddToAccountCache(addr, &types.Account{Balance: uint64(i)}, true)
			}
			n := uint64(i)
			handle.commitHash = &block
			handle.commitNumber = &n
			if err := handle.SyncCache(nil, nil, block, true); err != nil {
				rt.Fatal(err)
			}
			ancestors[i] = block
			parent = block
		}

		view := root.BoxedCloneCanon(ancestors[queryIndex])
		if _, ok := view.GetCachedAccount(addr); ok {
			rt.Fatalf("expected cache miss for an ancestor view older than the touching block, got a hit")
		}
	})
}
