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

// Package crypto is a stable hashing facade over the primitives the rest of
// the node depends on: BLAKE2b-256/512, SHA-1, and RIPEMD-160.
package crypto

import (
	"crypto/sha1"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // ripemd160 is deprecated upstream but still the wire hash this chain uses.
)

// BlakeEmpty is the 256-bit BLAKE2b hash of the empty byte string.
var BlakeEmpty = Blake256(nil)

// BlakeNullRLP is the 256-bit BLAKE2b hash of the RLP encoding of empty data (0x80).
var BlakeNullRLP = Blake256([]byte{0x80})

// BlakeEmptyListRLP is the 256-bit BLAKE2b hash of the RLP encoding of an empty list (0xc0).
var BlakeEmptyListRLP = Blake256([]byte{0xc0})

// Blake256 returns the 256-bit BLAKE2b hash of s.
func Blake256(s []byte) [32]byte {
	return blake2b.Sum256(s)
}

// Blake256WithKey returns the 256-bit keyed BLAKE2b hash of s. Keys longer
// than blake2b.Size (64 bytes) are rejected.
func Blake256WithKey(s, key []byte) ([32]byte, error) {
	h, err := blake2b.New256(key)
	if err != nil {
		var zero [32]byte
		return zero, err
	}
	h.Write(s)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out, nil
}

// Blake512 returns the 512-bit BLAKE2b hash of s.
func Blake512(s []byte) [64]byte {
	return blake2b.Sum512(s)
}

// SHA1 returns the 160-bit SHA-1 digest of s.
func SHA1(s []byte) [20]byte {
	sum := sha1.Sum(s)
	return sum
}

// RIPEMD160 returns the 160-bit RIPEMD-160 digest of s.
func RIPEMD160(s []byte) [20]byte {
	h := ripemd160.New()
	h.Write(s)
	var out [20]byte
	copy(out[:], h.Sum(nil))
	return out
}
