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

import (
	"sort"

	"github.com/ccnode/ccnode/metrics"
)

// VoteCollector accumulates every vote seen across every round, keyed by
// VoteStep and kept in ascending order the way a BTreeMap would. It carries
// no lock of its own: the caller serializes access to it the same way it
// serializes the rest of the consensus engine's state.
//
// A sentinel entry for the zero VoteStep is present from construction, so a
// new collector is never empty; ThrowOutOld removes the sentinel like any
// other round older than its floor.
type VoteCollector struct {
	rounds     []VoteStep
	collectors map[VoteStep]*stepCollector
	metrics    *metrics.Metrics
}

// NewVoteCollector returns a collector primed with its sentinel entry.
func NewVoteCollector() *VoteCollector {
	sentinel := VoteStep{}
	return &VoteCollector{
		rounds:     []VoteStep{sentinel},
		collectors: map[VoteStep]*stepCollector{sentinel: newStepCollector()},
	}
}

// SetMetrics attaches a metrics bundle this collector reports double-vote
// evidence through. A nil metrics bundle disables reporting, which is also
// the default.
func (v *VoteCollector) SetMetrics(m *metrics.Metrics) { v.metrics = m }

func (v *VoteCollector) stepFor(step VoteStep) *stepCollector {
	c, ok := v.collectors[step]
	if ok {
		return c
	}
	c = newStepCollector()
	v.collectors[step] = c
	i := sort.Search(len(v.rounds), func(i int) bool { return !v.rounds[i].Less(step) })
	v.rounds = append(v.rounds, VoteStep{})
	copy(v.rounds[i+1:], v.rounds[i:])
	v.rounds[i] = step
	return c
}

// Vote records message and returns evidence if doing so caught its signer
// double-voting within the same VoteStep.
func (v *VoteCollector) Vote(message ConsensusMessage) *DoubleVote {
	evidence, _ := v.stepFor(message.VoteStep).insert(message)
	if evidence != nil && v.metrics != nil {
		v.metrics.DoubleVotesReported.Inc()
	}
	return evidence
}

// IsOldOrKnown reports whether message belongs to a round older than the
// oldest round this collector still holds, or is byte-identical to a
// message already recorded. Either way the caller should not act on it
// again.
func (v *VoteCollector) IsOldOrKnown(message ConsensusMessage) bool {
	if len(v.rounds) == 0 {
		return false
	}
	if message.VoteStep.Less(v.rounds[0]) {
		return true
	}
	if c, ok := v.collectors[message.VoteStep]; ok {
		if _, seen := c.messages[message]; seen {
			return true
		}
	}
	return false
}

// ThrowOutOld discards every round strictly older than floor, keeping the
// monotone pruning contract the caller relies on: once a round has been
// thrown out, no vote for it or anything before it will be accepted again
// (it is reported old by IsOldOrKnown). floor itself is kept if present.
// It panics if no round at or after floor is held, so the caller must have
// recorded a vote for floor (or a later round) first.
func (v *VoteCollector) ThrowOutOld(floor VoteStep) {
	keepFrom := 0
	for keepFrom < len(v.rounds) && v.rounds[keepFrom].Less(floor) {
		keepFrom++
	}
	for _, r := range v.rounds[:keepFrom] {
		delete(v.collectors, r)
	}
	kept := make([]VoteStep, len(v.rounds)-keepFrom)
	copy(kept, v.rounds[keepFrom:])
	v.rounds = kept
	if len(v.rounds) == 0 {
		panic("tendermint: ThrowOutOld emptied the collector")
	}
}

// AlignedVotes returns the signers who voted for the same block as message,
// within message's own VoteStep.
func (v *VoteCollector) AlignedVotes(message ConsensusMessage) BitSet {
	c, ok := v.collectors[message.VoteStep]
	if !ok {
		return BitSet{}
	}
	return c.countBlock(message.BlockHash)
}

// RoundSignaturesAndIndices returns the signatures and ascending signer
// indices of every vote cast for blockHash within round.
func (v *VoteCollector) RoundSignaturesAndIndices(round VoteStep, blockHash Hash) ([]Signature, []uint32) {
	c, ok := v.collectors[round]
	if !ok {
		return nil, nil
	}
	return c.signaturesAndIndices(blockHash)
}

// RoundSignature returns the signature the given signer cast for blockHash
// within round, if any.
func (v *VoteCollector) RoundSignature(round VoteStep, blockHash Hash, signer uint32) (Signature, bool) {
	c, ok := v.collectors[round]
	if !ok {
		return Signature{}, false
	}
	votes, ok := c.blockVotes[SomeBlock(blockHash)]
	if !ok {
		return Signature{}, false
	}
	sig, ok := votes[signer]
	return sig, ok
}

// BlockRoundVotes returns the signers who voted for blockHash within round.
func (v *VoteCollector) BlockRoundVotes(round VoteStep, blockHash OptionalHash) BitSet {
	c, ok := v.collectors[round]
	if !ok {
		return BitSet{}
	}
	return c.countBlock(blockHash)
}

// RoundVotes returns every signer who voted for any block within round.
func (v *VoteCollector) RoundVotes(round VoteStep) BitSet {
	c, ok := v.collectors[round]
	if !ok {
		return BitSet{}
	}
	return c.count()
}

// GetBlockHashes returns every block round has votes for, excluding nil
// votes.
func (v *VoteCollector) GetBlockHashes(round VoteStep) []Hash {
	c, ok := v.collectors[round]
	if !ok {
		return nil
	}
	return c.blockHashes()
}

// GetAll returns every distinct message this collector holds, across every
// round still retained.
func (v *VoteCollector) GetAll() []ConsensusMessage {
	var out []ConsensusMessage
	for _, r := range v.rounds {
		out = append(out, v.collectors[r].all()...)
	}
	return out
}

// GetAllInRound returns every distinct message recorded for round.
func (v *VoteCollector) GetAllInRound(round VoteStep) []ConsensusMessage {
	c, ok := v.collectors[round]
	if !ok {
		return nil
	}
	return c.all()
}

// GetAllVotesAndIndicesInRound returns one (signerIndex, message) pair per
// signer who voted within round.
func (v *VoteCollector) GetAllVotesAndIndicesInRound(round VoteStep) []SignedVote {
	c, ok := v.collectors[round]
	if !ok {
		return nil
	}
	return c.votesAndIndices()
}
