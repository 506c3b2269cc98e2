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
	"fmt"

	"github.com/ccnode/ccnode/core/types"
	"github.com/ccnode/ccnode/journaldb"
	"github.com/ccnode/ccnode/metrics"
)

// CacheQueueItem is one pending local write: either a fresh account value
// or a proven absence (Account == nil), plus whether it came from an
// actual state modification (Modified) as opposed to a clean read that
// happened to be cached along the way.
type CacheQueueItem struct {
	Address  types.Address
	Account  *types.Account
	Modified bool
}

// StateDB is one handle onto the journal and the cache shared by every
// handle cloned from the same root. A handle is canonical if ParentHash is
// set; only a canonical handle's cached reads can be trusted, and only a
// canonical handle (with CommitHash and CommitNumber also set, i.e. one
// that has been through JournalUnder) can push new modifications into the
// shared cache.
type StateDB struct {
	journal      journaldb.DB
	sharedCache  *AccountCache
	localCache   []CacheQueueItem
	parentHash   *types.Hash
	commitHash   *types.Hash
	commitNumber *uint64
	metrics      *metrics.Metrics
}

// SetMetrics attaches a metrics bundle this handle (and every handle cloned
// from it, since the pointer is shared) reports cache hits/misses through.
// A nil metrics bundle disables reporting, which is also the default.
func (s *StateDB) SetMetrics(m *metrics.Metrics) { s.metrics = m }

// New returns a fresh, non-canonical StateDB handle over journal, with a
// newly constructed shared cache sized to cacheBytes.
func New(journal journaldb.DB, cacheBytes int) (*StateDB, error) {
	cache, err := NewAccountCache(cacheBytes)
	if err != nil {
		return nil, fmt.Errorf("state: new account cache: %w", err)
	}
	return &StateDB{journal: journal, sharedCache: cache}, nil
}

// Clone returns a cheap handle sharing this StateDB's journal and shared
// cache, carrying forward a copy of its pending local writes.
func (s *StateDB) Clone() *StateDB {
	local := make([]CacheQueueItem, len(s.localCache))
	copy(local, s.localCache)
	return &StateDB{
		journal:      s.journal,
		sharedCache:  s.sharedCache,
		localCache:   local,
		parentHash:   s.parentHash,
		commitHash:   s.commitHash,
		commitNumber: s.commitNumber,
		metrics:      s.metrics,
	}
}

// BoxedCloneCanon returns a handle sharing this StateDB's journal and
// shared cache, rooted at parent with an empty local cache. This is the
// only mode in which reads from the shared cache may succeed (any handle
// still sees its own pending local writes): a handle with pending local
// writes can't trust the shared cache without first accounting for them,
// which BoxedCloneCanon sidesteps by starting clean.
func (s *StateDB) BoxedCloneCanon(parent types.Hash) *StateDB {
	return &StateDB{
		journal:     s.journal,
		sharedCache: s.sharedCache,
		parentHash:  &parent,
		metrics:     s.metrics,
	}
}

// IsCanonical reports whether this handle carries a parent hash.
func (s *StateDB) IsCanonical() bool { return s.parentHash != nil }

// AddToAccountCache records a pending local write. It never touches the
// shared cache directly; SyncCache is what propagates local writes there.
func (s *StateDB) AddToAccountCache(addr types.Address, account *types.Account, modified bool) {
	s.localCache = append(s.localCache, CacheQueueItem{Address: addr, Account: account, Modified: modified})
}

// JournalUnder persists batch as block number's journal entries under
// blockHash, and stamps this handle as having committed that block.
func (s *StateDB) JournalUnder(batch *journaldb.Batch, number uint64, blockHash types.Hash) error {
	if err := s.journal.JournalUnder(number, blockHash, batch); err != nil {
		return fmt.Errorf("state: journal under %s: %w", blockHash, err)
	}
	s.commitHash = &blockHash
	s.commitNumber = &number
	return nil
}

// GetCachedAccount returns the cached Option<Account> for addr if this
// handle's view is authoritative for it: first its own pending local
// writes (always visible to the handle that made them), then the shared
// cache, but only once isAllowed confirms no modification between this
// handle's parent and the canonical chain touched addr. ok is false when
// neither source can answer authoritatively; the caller must fall through
// to the journal.
func (s *StateDB) GetCachedAccount(addr types.Address) (account *types.Account, ok bool) {
	for i := len(s.localCache) - 1; i >= 0; i-- {
		if s.localCache[i].Address == addr {
			return s.localCache[i].Account, true
		}
	}
	if s.parentHash == nil {
		return nil, false
	}

	s.sharedCache.mu.Lock()
	defer s.sharedCache.mu.Unlock()
	if !s.sharedCache.isAllowed(addr, *s.parentHash) {
		return nil, false
	}
	if v, hit := s.sharedCache.accounts.Get(addr); hit {
		return v, true
	}
	return nil, false
}

// GetAccount resolves addr via the cache, falling through to reader on a
// cache miss.
func (s *StateDB) GetAccount(reader *Reader, addr types.Address) (types.Account, bool, error) {
	if cached, ok := s.GetCachedAccount(addr); ok {
		if s.metrics != nil {
			s.metrics.CacheHits.Inc()
		}
		if cached == nil {
			return types.Account{}, false, nil
		}
		return *cached, true, nil
	}
	if s.metrics != nil {
		s.metrics.CacheMisses.Inc()
	}
	return reader.ReadAccount(addr)
}

// SyncCache applies one commit's reorg route to the shared cache, and
// persists the same route to the journal via MarkCanonical so the two
// stores never disagree about which blocks are canonical. It must be
// called exactly once per commit, with the enacted/retracted route the
// chain produced for justCommitted.
func (s *StateDB) SyncCache(enacted, retracted []types.Hash, justCommitted types.Hash, isBest bool) error {
	cache := s.sharedCache
	cache.mu.Lock()
	defer cache.mu.Unlock()

	wipe := false
	for _, h := range enacted {
		if err := s.journal.MarkCanonical(h, true); err != nil {
			return fmt.Errorf("state: mark canonical %s: %w", h, err)
		}
		if h == justCommitted {
			continue
		}
		if m := cache.findModification(h); m != nil {
			m.IsCanon = true
			cache.purge(m.Accounts)
		} else {
			wipe = true
		}
	}
	for _, h := range retracted {
		if err := s.journal.MarkCanonical(h, false); err != nil {
			return fmt.Errorf("state: mark canonical %s: %w", h, err)
		}
		if m := cache.findModification(h); m != nil {
			m.IsCanon = false
			cache.purge(m.Accounts)
		} else {
			wipe = true
		}
	}
	if wipe {
		cache.wipe()
		s.localCache = nil
		return nil
	}

	if s.parentHash == nil || s.commitHash == nil || s.commitNumber == nil {
		s.localCache = nil
		return nil
	}

	// CacheQueueItem.Modified == false entries are clean reads: they are
	// still propagated into the shared cache under isBest, but are not
	// recorded in the new BlockChanges' Accounts set, so a later is_allowed
	// walk never treats a clean read as a reason to distrust this block.
	touched := make(map[types.Address]struct{})
	for _, item := range s.localCache {
		if item.Modified {
			touched[item.Address] = struct{}{}
		}
		if !isBest {
			continue
		}
		if existing, hit := cache.accounts.Get(item.Address); hit && existing != nil && item.Account != nil {
			merged := *existing
			merged.OverwriteWith(*item.Account)
			cache.accounts.Add(item.Address, &merged)
		} else {
			cache.accounts.Add(item.Address, item.Account)
		}
	}

	cache.pushModification(&BlockChanges{
		Number:   *s.commitNumber,
		Hash:     *s.commitHash,
		Parent:   *s.parentHash,
		Accounts: touched,
		IsCanon:  isBest,
	})
	s.localCache = nil
	return nil
}
