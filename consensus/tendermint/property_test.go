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
	"testing"

	"pgregory.net/rapid"
)

func genConsensusMessage(t *rapid.T, round VoteStep, signers uint32) ConsensusMessage {
	signer := rapid.Uint32Range(0, signers-1).Draw(t, "signer")
	blockByte := rapid.Byte().Draw(t, "blockByte")
	sigByte := rapid.Byte().Draw(t, "sigByte")
	var block Hash
	block[0] = blockByte
	var signature Signature
	signature[0] = sigByte
	return ConsensusMessage{
		VoteStep:    round,
		BlockHash:   SomeBlock(block),
		SignerIndex: signer,
		Signature:   signature,
	}
}

// TestPropertyNoDoubleCount checks that for any sequence of inserts into a
// single round, RoundVotes' popcount never exceeds the number of distinct
// signer indices actually observed in that round.
func TestPropertyNoDoubleCount(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		const signers = 8
		round := VoteStep{Height: 1, View: 0, Step: StepPrevote}
		vc := NewVoteCollector()

		distinct := make(map[uint32]struct{})
		n := rapid.IntRange(0, 40).Draw(rt, "n")
		for i := 0; i < n; i++ {
			m := genConsensusMessage(rt, round, signers)
			vc.Vote(m)
			distinct[m.SignerIndex] = struct{}{}
		}

		rv := vc.RoundVotes(round)
		got := rv.PopCount()
		if got > len(distinct) {
			rt.Fatalf("RoundVotes popcount %d exceeds distinct signers observed %d", got, len(distinct))
		}
	})
}

// TestPropertyDoubleVoteWitness checks that inserting two distinct
// messages for the same (round, signer) always returns evidence naming
// exactly those two messages in order, and leaves the block-vote
// projection unchanged by the second call.
func TestPropertyDoubleVoteWitness(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		round := VoteStep{Height: 5, View: 2, Step: StepPrecommit}
		signer := rapid.Uint32Range(0, 15).Draw(rt, "signer")

		var blockA, blockB Hash
		blockA[0] = rapid.Byte().Draw(rt, "blockA")
		blockB[0] = rapid.Byte().Filter(func(b byte) bool { return b != blockA[0] }).Draw(rt, "blockB")

		m1 := ConsensusMessage{VoteStep: round, BlockHash: SomeBlock(blockA), SignerIndex: signer, Signature: Signature{1}}
		m2 := ConsensusMessage{VoteStep: round, BlockHash: SomeBlock(blockB), SignerIndex: signer, Signature: Signature{2}}

		vc := NewVoteCollector()
		if evidence := vc.Vote(m1); evidence != nil {
			rt.Fatalf("first insert unexpectedly produced evidence: %+v", evidence)
		}
		before := vc.RoundVotes(round)

		evidence := vc.Vote(m2)
		if evidence == nil {
			rt.Fatalf("second insert with same (round, signer) but different message produced no evidence")
		}
		if evidence.AuthorIndex != signer || evidence.VoteOne != m1 || evidence.VoteTwo != m2 {
			rt.Fatalf("evidence %+v does not name (m1, m2) in order", evidence)
		}

		after := vc.RoundVotes(round)
		if before.PopCount() != after.PopCount() {
			rt.Fatalf("block_votes projection changed by the double-vote insert: before=%d after=%d",
				before.PopCount(), after.PopCount())
		}
	})
}

// TestPropertyOldOrKnown checks that after ThrowOutOld(floor), every round
// strictly older than floor is reported old, and a byte-identical resend
// of a still-retained message is reported known.
func TestPropertyOldOrKnown(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		vc := NewVoteCollector()

		heights := rapid.SliceOfN(rapid.Uint64Range(0, 20), 1, 10).Draw(rt, "heights")
		var kept ConsensusMessage
		haveKept := false
		for _, h := range heights {
			m := ConsensusMessage{
				VoteStep:    VoteStep{Height: h, View: 0, Step: StepPrevote},
				BlockHash:   SomeBlock(Hash{byte(h)}),
				SignerIndex: 0,
				Signature:   Signature{byte(h)},
			}
			vc.Vote(m)
			kept, haveKept = m, true
		}
		if !haveKept {
			return
		}

		floor := VoteStep{Height: kept.VoteStep.Height, View: 0, Step: StepPrevote}
		vc.ThrowOutOld(floor)

		for _, h := range heights {
			if h < floor.Height {
				old := ConsensusMessage{VoteStep: VoteStep{Height: h, View: 0, Step: StepPrevote}}
				if !vc.IsOldOrKnown(old) {
					rt.Fatalf("round height %d should be reported old after ThrowOutOld(%d)", h, floor.Height)
				}
			}
		}

		if !vc.IsOldOrKnown(kept) {
			rt.Fatalf("byte-identical resend of a retained message should be reported known")
		}
	})
}
