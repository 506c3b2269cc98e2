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

package tendermint

import "math/bits"

// BitSet is a fixed-word bitset over validator indices, sized to the
// committee rather than a generic resizable set: validator counts in a
// permissioned chain are small and known ahead of time.
type BitSet struct {
	words []uint64
}

const wordBits = 64

func wordIndex(i uint32) int { return int(i / wordBits) }
func bitMask(i uint32) uint64 { return uint64(1) << (i % wordBits) }

func (b *BitSet) grow(word int) {
	if word < len(b.words) {
		return
	}
	words := make([]uint64, word+1)
	copy(words, b.words)
	b.words = words
}

// Set marks index i as present.
func (b *BitSet) Set(i uint32) {
	b.grow(wordIndex(i))
	b.words[wordIndex(i)] |= bitMask(i)
}

// IsSet reports whether index i is present.
func (b *BitSet) IsSet(i uint32) bool {
	w := wordIndex(i)
	if w >= len(b.words) {
		return false
	}
	return b.words[w]&bitMask(i) != 0
}

// PopCount returns the number of set indices.
func (b *BitSet) PopCount() int {
	n := 0
	for _, w := range b.words {
		n += bits.OnesCount64(w)
	}
	return n
}
