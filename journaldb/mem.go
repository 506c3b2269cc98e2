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

package journaldb

import "sync"

// MemDB is an in-memory DB, used by tests that exercise the journal-backed
// read path without touching the filesystem.
type MemDB struct {
	mu      sync.Mutex
	buckets map[Column]map[string][]byte
	closed  bool
}

// NewMemDB returns an empty MemDB with every Column's bucket created.
func NewMemDB() *MemDB {
	buckets := make(map[Column]map[string][]byte, NumColumns)
	for _, c := range Columns {
		buckets[c] = make(map[string][]byte)
	}
	return &MemDB{buckets: buckets}
}

func (m *MemDB) JournalUnder(number uint64, blockHash [32]byte, batch *Batch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	for _, w := range batch.Writes {
		m.buckets[w.Column][string(w.Key)] = append([]byte(nil), w.Value...)
	}
	key := append(append([]byte(nil), blockHash[:]...), encodeUint64(number)...)
	m.buckets[BlockChanges][string(key)] = append([]byte(nil), blockHash[:]...)
	return nil
}

func (m *MemDB) MarkCanonical(blockHash [32]byte, canonical bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	value := byte(0)
	if canonical {
		value = 1
	}
	m.buckets[CanonicalMarks][string(blockHash[:])] = []byte{value}
	return nil
}

func (m *MemDB) Get(column Column, key []byte) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, false, ErrClosed
	}
	v, ok := m.buckets[column][string(key)]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemDB) Has(column Column, key []byte) (bool, error) {
	_, ok, err := m.Get(column, key)
	return ok, err
}

func (m *MemDB) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
