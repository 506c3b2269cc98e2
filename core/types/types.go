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

// Package types holds the chain's smallest shared value types: addresses,
// hashes, block numbers, accounts, headers and transactions. Nothing here
// depends on the state database, the network stack, or consensus.
package types

import "fmt"

// BlockNumber is a 64-bit block height.
type BlockNumber uint64

// Hash is a 32-byte block or state-root identifier.
type Hash [32]byte

func (h Hash) String() string { return fmt.Sprintf("%x", h[:]) }

// Address is a 20-byte account identifier.
type Address [20]byte

func (a Address) String() string { return fmt.Sprintf("%x", a[:]) }

// Account is an opaque per-address state snapshot. Its fields are
// deliberately minimal: balance and nonce are the only state every
// account kind shares; shard-specific state lives in a Handler's own
// trie, not here.
type Account struct {
	Balance    uint64
	Nonce      uint64
	RegularKey [33]byte
	HasRegular bool
}

// OverwriteWith replaces a's fields with other's, matching the original
// merge rule used when a cached account collides with a freshly committed
// one: the newer value always wins wholesale, there is no field-by-field
// merge.
func (a *Account) OverwriteWith(other Account) {
	*a = other
}

// Header is a minimal block header sufficient to round-trip through the
// sync response codec: parent linkage, height, state commitment, and a
// timestamp, plus an extensible extra-data field.
type Header struct {
	ParentHash Hash
	Number     BlockNumber
	StateRoot  Hash
	Timestamp  uint64
	Extra      []byte
}

// Transaction is a minimal signed transaction: a sequence number
// (replay-protection nonce), a fee, an opaque RLP-encoded action payload,
// a network identifier, and a signature.
type Transaction struct {
	Seq       uint64
	Fee       uint64
	Action    []byte
	NetworkID uint64
	Signature [65]byte
}
