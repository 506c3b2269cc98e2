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

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/ccnode/ccnode/core/types"
	"github.com/ccnode/ccnode/journaldb"
)

// Reader is the cache's fall-through read path: when AccountCache doesn't
// hold an authoritative answer, GetAccount asks a Reader for the latest
// committed snapshot straight from the journal.
//
// This mirrors the teacher's history-reader pattern (a thin struct wrapping
// a transaction handle, translating address keys into committed-value
// lookups) but answers "latest committed" rather than "as of this
// transaction": the journal has no notion of an in-progress transaction
// sequence, only committed blocks.
type Reader struct {
	db journaldb.DB
}

// NewReader returns a Reader over db.
func NewReader(db journaldb.DB) *Reader {
	return &Reader{db: db}
}

// ReadAccount returns the latest committed Account for addr. ok is false
// if no account has ever been committed at addr; that is not an error.
func (r *Reader) ReadAccount(addr types.Address) (account types.Account, ok bool, err error) {
	enc, found, err := r.db.Get(journaldb.Accounts, addr[:])
	if err != nil {
		return types.Account{}, false, fmt.Errorf("state: read account %s: %w", addr, err)
	}
	if !found {
		return types.Account{}, false, nil
	}
	var a types.Account
	if err := rlp.DecodeBytes(enc, &a); err != nil {
		return types.Account{}, false, fmt.Errorf("state: decode account %s: %w", addr, err)
	}
	return a, true, nil
}

// EncodeAccount RLP-encodes account for storage under journaldb.Accounts.
func EncodeAccount(account types.Account) ([]byte, error) {
	enc, err := rlp.EncodeToBytes(account)
	if err != nil {
		return nil, fmt.Errorf("state: encode account: %w", err)
	}
	return enc, nil
}
