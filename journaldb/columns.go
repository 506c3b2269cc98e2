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

// Column names one of the journal's buckets, following the same
// package-level named-table-constant convention the teacher's (much
// larger) table registry uses.
type Column string

const (
	// Accounts holds the latest committed Account snapshot per address.
	Accounts Column = "Accounts"
	// AccountsHistory is a bucket for per-block account writes. Only a
	// caller's Batch writes to it; core/state.Reader reads Accounts alone.
	AccountsHistory Column = "AccountsHistory"
	// BlockChanges records one entry per JournalUnder call, keyed by the
	// block hash followed by the big-endian block number, with the block
	// hash as its value.
	BlockChanges Column = "BlockChanges"
	// CanonicalMarks holds a single byte per block hash recording whether
	// JournalUnder's caller has since marked that block canonical.
	CanonicalMarks Column = "CanonicalMarks"
)

// NumColumns is the number of buckets Columns lists, and the count every
// DB implementation's constructor creates up front at open time.
const NumColumns = 4

// Columns lists every Column in a stable order.
var Columns = []Column{Accounts, AccountsHistory, BlockChanges, CanonicalMarks}
