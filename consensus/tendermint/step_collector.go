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

import "sort"

// stepCollector holds every message seen for a single VoteStep, projected
// three ways: the raw dedup set, one message per signer, and signatures
// grouped by the block they vote for. All three stay in lockstep through
// insert; nothing else mutates them.
type stepCollector struct {
	messages   map[ConsensusMessage]struct{}
	voted      map[uint32]ConsensusMessage
	blockVotes map[OptionalHash]map[uint32]Signature
}

func newStepCollector() *stepCollector {
	return &stepCollector{
		messages:   make(map[ConsensusMessage]struct{}),
		voted:      make(map[uint32]ConsensusMessage),
		blockVotes: make(map[OptionalHash]map[uint32]Signature),
	}
}

// insert records message. It returns (evidence, true) if this exact
// message was not already seen, and evidence is non-nil if recording it
// revealed that the signer had already voted for something different in
// this step. A message byte-identical to one already seen is a pure no-op.
func (c *stepCollector) insert(message ConsensusMessage) (*DoubleVote, bool) {
	if _, seen := c.messages[message]; seen {
		return nil, false
	}
	c.messages[message] = struct{}{}

	previous, had := c.voted[message.SignerIndex]
	c.voted[message.SignerIndex] = message
	if had {
		return &DoubleVote{
			AuthorIndex: message.SignerIndex,
			VoteOne:     previous,
			VoteTwo:     message,
		}, true
	}

	votes := c.blockVotes[message.BlockHash]
	if votes == nil {
		votes = make(map[uint32]Signature)
		c.blockVotes[message.BlockHash] = votes
	}
	votes[message.SignerIndex] = message.Signature
	return nil, true
}

// countBlock returns the set of signers who voted for blockHash. A signer
// never appears under two different blocks in the same step: a second,
// conflicting vote is diverted to DoubleVote evidence by insert before it
// ever reaches blockVotes (invariant: no signer is double-counted).
func (c *stepCollector) countBlock(blockHash OptionalHash) BitSet {
	var set BitSet
	for signer := range c.blockVotes[blockHash] {
		set.Set(signer)
	}
	return set
}

// count returns the set of signers who voted for any block in this step.
// It panics if the same signer index is found under two different blocks,
// which would mean blockVotes and voted have diverged.
func (c *stepCollector) count() BitSet {
	var set BitSet
	for _, votes := range c.blockVotes {
		for signer := range votes {
			if set.IsSet(signer) {
				panic("tendermint: signer counted under two blocks in one step")
			}
			set.Set(signer)
		}
	}
	return set
}

// signaturesAndIndices returns, for blockHash, the signatures and signer
// indices of every vote cast for it, ordered by ascending signer index so
// the result is deterministic across runs.
func (c *stepCollector) signaturesAndIndices(blockHash Hash) ([]Signature, []uint32) {
	votes := c.blockVotes[SomeBlock(blockHash)]
	indices := make([]uint32, 0, len(votes))
	for signer := range votes {
		indices = append(indices, signer)
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })

	sigs := make([]Signature, len(indices))
	for i, signer := range indices {
		sigs[i] = votes[signer]
	}
	return sigs, indices
}

// blockHashes returns every distinct block this step holds votes for,
// excluding nil votes (votes cast for no block).
func (c *stepCollector) blockHashes() []Hash {
	hashes := make([]Hash, 0, len(c.blockVotes))
	for key := range c.blockVotes {
		if key.Valid {
			hashes = append(hashes, key.Value)
		}
	}
	return hashes
}

// all returns every distinct message this step has collected.
func (c *stepCollector) all() []ConsensusMessage {
	out := make([]ConsensusMessage, 0, len(c.messages))
	for m := range c.messages {
		out = append(out, m)
	}
	return out
}

// votesAndIndices returns one (signerIndex, message) pair per signer who
// has voted in this step.
func (c *stepCollector) votesAndIndices() []SignedVote {
	out := make([]SignedVote, 0, len(c.voted))
	for signer, message := range c.voted {
		out = append(out, SignedVote{SignerIndex: signer, Message: message})
	}
	return out
}

// SignedVote pairs a message with the signer index that cast it.
type SignedVote struct {
	SignerIndex uint32
	Message     ConsensusMessage
}
