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

import (
	"fmt"

	bolt "go.etcd.io/bbolt"
)

// BoltJournal is the production DB implementation, backed by a single
// bbolt file with one top-level bucket per Column.
type BoltJournal struct {
	db *bolt.DB
}

// OpenBolt opens (creating if absent) a BoltJournal at path, with a bucket
// for every Column created up front.
func OpenBolt(path string) (*BoltJournal, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("journaldb: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, c := range Columns {
			if _, err := tx.CreateBucketIfNotExists([]byte(c)); err != nil {
				return fmt.Errorf("journaldb: create bucket %s: %w", c, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &BoltJournal{db: db}, nil
}

func (j *BoltJournal) JournalUnder(number uint64, blockHash [32]byte, batch *Batch) error {
	return j.db.Update(func(tx *bolt.Tx) error {
		for _, w := range batch.Writes {
			bucket := tx.Bucket([]byte(w.Column))
			if bucket == nil {
				return fmt.Errorf("journaldb: unknown column %s", w.Column)
			}
			if err := bucket.Put(w.Key, w.Value); err != nil {
				return fmt.Errorf("journaldb: put %s/%x: %w", w.Column, w.Key, err)
			}
		}
		blockChanges := tx.Bucket([]byte(BlockChanges))
		key := append(blockHash[:], encodeUint64(number)...)
		if err := blockChanges.Put(key, blockHash[:]); err != nil {
			return fmt.Errorf("journaldb: record block changes for %x: %w", blockHash, err)
		}
		return nil
	})
}

func (j *BoltJournal) MarkCanonical(blockHash [32]byte, canonical bool) error {
	return j.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(CanonicalMarks))
		value := []byte{0}
		if canonical {
			value = []byte{1}
		}
		if err := bucket.Put(blockHash[:], value); err != nil {
			return fmt.Errorf("journaldb: mark canonical %x: %w", blockHash, err)
		}
		return nil
	})
}

func (j *BoltJournal) Get(column Column, key []byte) ([]byte, bool, error) {
	var value []byte
	err := j.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(column))
		if bucket == nil {
			return fmt.Errorf("journaldb: unknown column %s", column)
		}
		if v := bucket.Get(key); v != nil {
			value = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return value, value != nil, nil
}

func (j *BoltJournal) Has(column Column, key []byte) (bool, error) {
	_, ok, err := j.Get(column, key)
	return ok, err
}

func (j *BoltJournal) Close() error {
	return j.db.Close()
}

func encodeUint64(n uint64) []byte {
	b := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		b[i] = byte(n)
		n >>= 8
	}
	return b
}
