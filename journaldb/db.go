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

// Package journaldb is the node's persisted state store: one committed
// Account snapshot per address, a per-block change journal, and canonical
// marks, behind a small interface so the state cache never talks to a
// concrete embedded-database library directly.
package journaldb

import "errors"

// ErrClosed is returned by MemDB's read and write methods called after
// Close. BoltJournal reports bbolt's own error instead.
var ErrClosed = errors.New("journaldb: database closed")

// Write is one key/value write within a Batch, scoped to a Column.
type Write struct {
	Column Column
	Key    []byte
	Value  []byte
}

// Batch groups the writes a single block commit produces so JournalUnder
// can apply them atomically.
type Batch struct {
	Writes []Write
}

// Put appends a write to the batch and returns the batch, so callers can
// chain Put calls while building one up.
func (b *Batch) Put(column Column, key, value []byte) *Batch {
	b.Writes = append(b.Writes, Write{Column: column, Key: key, Value: value})
	return b
}

// DB is the journal's persistence contract. JournalUnder and MarkCanonical
// are the write path a state commit drives; Get and Has are the
// read-through path a cache miss falls back to.
type DB interface {
	// JournalUnder atomically applies batch as the journal entries for
	// block number under blockHash.
	JournalUnder(number uint64, blockHash [32]byte, batch *Batch) error
	// MarkCanonical records whether blockHash is on the canonical chain.
	MarkCanonical(blockHash [32]byte, canonical bool) error
	// Get reads the value stored at key in column. ok is false if no such
	// key exists; a missing key is not an error.
	Get(column Column, key []byte) (value []byte, ok bool, err error)
	// Has reports whether key exists in column.
	Has(column Column, key []byte) (bool, error)
	// Close releases any resources the implementation holds.
	Close() error
}
