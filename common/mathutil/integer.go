// Copyright 2017 The go-ethereum Authors
// (original work)
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

// Package mathutil collects the handful of integer helpers shared across
// the node that don't belong to any one package: random 64-bit nonce
// generation, cache-sizing division, and flag/config integer
// parsing.
package mathutil

import (
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"strconv"
)

// ParseUint64 parses s as an integer in decimal or hexadecimal syntax.
// Leading zeros are accepted. The empty string parses as zero.
func ParseUint64(s string) (uint64, bool) {
	if s == "" {
		return 0, true
	}
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		v, err := strconv.ParseUint(s[2:], 16, 64)
		return v, err == nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	return v, err == nil
}

// MustParseUint64 parses s as an integer and panics if the string is
// invalid, for use at config-load time where an invalid value is a
// startup-fatal misconfiguration rather than a recoverable error.
func MustParseUint64(s string) uint64 {
	v, ok := ParseUint64(s)
	if !ok {
		panic(fmt.Sprintf("mathutil: invalid unsigned 64-bit integer %q", s))
	}
	return v
}

// AbsoluteDifference returns the absolute value of x-y, used to measure
// how far a peer's reported height is from the local chain's.
func AbsoluteDifference(x, y uint64) uint64 {
	if x > y {
		return x - y
	}
	return y - x
}

// RandInt64 returns a cryptographically random non-negative int64, used to
// seed handshake nonces.
func RandInt64() (int64, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	if err != nil {
		return 0, err
	}
	return n.Int64(), nil
}

// CeilDiv returns ceil(x/y), or 0 if y is 0, used wherever a byte budget
// needs to be translated into a whole number of fixed-size entries.
func CeilDiv(x, y int) int {
	if y == 0 {
		return 0
	}
	return (x + y - 1) / y
}
