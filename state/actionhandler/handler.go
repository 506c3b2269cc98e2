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

// Package actionhandler defines the interface a shard's custom transaction
// logic implements to plug into state transition. Handlers never see the
// whole state database: only the trie their own shard owns, and the
// top-level account view every handler shares read/write access to.
package actionhandler

import "github.com/ccnode/ccnode/consensus/action"

// Address is re-exported from the action package so callers of this
// package don't also need to import it for the one type they share.
type Address = action.Address

// Invoice is the outcome of running one action through a Handler: either
// it succeeded, or it failed with an error describing why, but either way
// the transaction is final and its fee is charged.
type Invoice struct {
	Success bool
	Error   string
}

// Success is the Invoice for a Handler call that did not fail.
func Success() Invoice { return Invoice{Success: true} }

// Failure is the Invoice for a Handler call that failed for reason.
func Failure(reason string) Invoice { return Invoice{Success: false, Error: reason} }

// TrieMut is the subset of a Merkle trie a Handler needs to read and
// write its own shard's state. It is deliberately narrower than a full
// key-value store: Init gets exactly one TrieMut, scoped to the shard the
// handler owns.
type TrieMut interface {
	Get(key []byte) ([]byte, error)
	Insert(key, value []byte) error
	Remove(key []byte) error
	RootHash() [32]byte
}

// TopState is the account-level view every Handler shares: balances and
// nonces, independent of any one shard's trie.
type TopState interface {
	Balance(addr Address) (uint64, error)
	AddBalance(addr Address, amount uint64) error
	SubBalance(addr Address, amount uint64) error
	Nonce(addr Address) (uint64, error)
	IncrementNonce(addr Address) error
}

// Handler is implemented once per custom action kind a shard supports.
// HandlerID must be stable across restarts: it is how Init's trie and
// Execute's invocations are routed back to the same handler after the
// node reloads its state.
type Handler interface {
	HandlerID() uint64
	Init(trie TrieMut) error
	Execute(data []byte, state TopState, sender Address) (Invoice, error)
}
