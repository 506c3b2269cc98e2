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

// Package state is the reorg-aware account cache sitting in front of the
// journal: a shared LRU keyed by address, invalidated not by a TTL but by
// walking the chain of recent block modifications a cached read's view
// would have to cross.
package state

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ccnode/ccnode/common/mathutil"
	"github.com/ccnode/ccnode/core/types"
)

// StateCacheBlocks is the maximum number of recent block modifications the
// shared cache remembers, bounding how far back is_allowed ever needs to
// walk.
const StateCacheBlocks = 12

// AccountCacheRatioPercent is the share of the configured cache budget
// reserved for account entries; the remainder is implicitly left for a
// future storage cache, matching the teacher's cache-sizing convention of
// reserving headroom rather than spending the whole budget on one layer.
const AccountCacheRatioPercent = 90

// approxAccountEntryBytes estimates the in-memory footprint of one
// Option<Account> cache entry, used only to translate a byte budget into
// an LRU entry count.
const approxAccountEntryBytes = 64

// BlockChanges is a committed block's delta: which addresses it touched,
// whether it is on the canonical chain, and where it links in the chain.
type BlockChanges struct {
	Number   uint64
	Hash     types.Hash
	Parent   types.Hash
	Accounts map[types.Address]struct{}
	IsCanon  bool
}

// AccountCache is the cache shared by every StateDB handle cloned from the
// same root: an LRU of Option<Account> per address, plus the bounded,
// newest-first deque of BlockChanges that makes reorg-aware invalidation
// possible.
type AccountCache struct {
	mu            sync.Mutex
	accounts      *lru.Cache[types.Address, *types.Account]
	modifications []*BlockChanges
}

// NewAccountCache returns an AccountCache sized to hold roughly cacheBytes
// worth of account entries, reserving AccountCacheRatioPercent of the
// budget the same way the teacher's cache constructors do.
func NewAccountCache(cacheBytes int) (*AccountCache, error) {
	capacity := mathutil.CeilDiv(cacheBytes*AccountCacheRatioPercent/100, approxAccountEntryBytes)
	if capacity < 1 {
		capacity = 1
	}
	accounts, err := lru.New[types.Address, *types.Account](capacity)
	if err != nil {
		return nil, err
	}
	return &AccountCache{accounts: accounts}, nil
}

// findModification returns the BlockChanges for hash, if this cache still
// remembers it.
func (c *AccountCache) findModification(hash types.Hash) *BlockChanges {
	for _, m := range c.modifications {
		if m.Hash == hash {
			return m
		}
	}
	return nil
}

// isAllowed decides whether the shared cache's value for addr is safe to
// hand to a view rooted at parentHash. modifications is kept newest-first,
// so walking it in order visits every block more recent than parentHash's
// eventual canonical ancestor before visiting that ancestor itself: if any
// of those more-recent blocks touched addr, the cache's single global
// entry for addr reflects a write this view should not see, and is_allowed
// must reject it even though the view's own ancestor chain never crossed
// addr directly.
//
// The cursor starts at parentHash and hops to m.Parent each time it
// matches a non-canonical entry, continuing to scan older entries for an
// addr touch until it either matches a canonical entry (allowed) or the
// deque runs out without resolving to one (not allowed).
func (c *AccountCache) isAllowed(addr types.Address, parentHash types.Hash) bool {
	if len(c.modifications) == 0 {
		return true
	}
	cursor := parentHash
	for _, m := range c.modifications {
		if m.Hash == cursor {
			if m.IsCanon {
				return true
			}
			cursor = m.Parent
		}
		if _, touched := m.Accounts[addr]; touched {
			return false
		}
	}
	return false
}

// purge removes every address in addrs from the account cache, used when a
// modification is confirmed canonical or retracted and its addresses can
// no longer be trusted from a stale cache entry.
func (c *AccountCache) purge(addrs map[types.Address]struct{}) {
	for addr := range addrs {
		c.accounts.Remove(addr)
	}
}

// wipe clears both the account cache and the modification deque entirely,
// used when sync_cache can't resolve a hash it was told about.
func (c *AccountCache) wipe() {
	c.accounts.Purge()
	c.modifications = nil
}

// pushModification inserts m into the deque so it stays sorted by block
// number descending (newest first), evicting the oldest entry first if the
// deque is already at StateCacheBlocks.
func (c *AccountCache) pushModification(m *BlockChanges) {
	if len(c.modifications) >= StateCacheBlocks {
		c.modifications = c.modifications[:len(c.modifications)-1]
	}
	i := 0
	for i < len(c.modifications) && c.modifications[i].Number >= m.Number {
		i++
	}
	c.modifications = append(c.modifications, nil)
	copy(c.modifications[i+1:], c.modifications[i:])
	c.modifications[i] = m
}
