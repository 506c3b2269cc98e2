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

// Package tendermint collects and audits the votes cast during one PBFT
// round: who voted for what, whether a block has quorum, and whether any
// validator has signed two conflicting messages in the same step.
package tendermint

import "fmt"

// Step is one of the three phases a validator moves through within a view.
type Step uint8

const (
	StepPropose Step = iota
	StepPrevote
	StepPrecommit
)

func (s Step) String() string {
	switch s {
	case StepPropose:
		return "propose"
	case StepPrevote:
		return "prevote"
	case StepPrecommit:
		return "precommit"
	default:
		return fmt.Sprintf("step(%d)", uint8(s))
	}
}

// VoteStep identifies one step of consensus: a block height, a view within
// that height, and a step within that view. It orders lexicographically on
// (Height, View, Step) and is used as the round key of a VoteCollector.
type VoteStep struct {
	Height uint64
	View   uint64
	Step   Step
}

// Compare returns -1, 0 or 1 according to whether a sorts before, at, or
// after b.
func (a VoteStep) Compare(b VoteStep) int {
	if a.Height != b.Height {
		if a.Height < b.Height {
			return -1
		}
		return 1
	}
	if a.View != b.View {
		if a.View < b.View {
			return -1
		}
		return 1
	}
	if a.Step != b.Step {
		if a.Step < b.Step {
			return -1
		}
		return 1
	}
	return 0
}

// Less reports whether a sorts strictly before b.
func (a VoteStep) Less(b VoteStep) bool { return a.Compare(b) < 0 }

// Hash is a 256-bit block hash.
type Hash [32]byte

// OptionalHash is a comparable stand-in for Option<Hash>: the collector
// needs to key maps on "the proposal was for block X" or "no block at all"
// (a prevote/precommit on nil), and a Go map key must be comparable, which
// rules out a pointer-to-array for equality-by-value.
type OptionalHash struct {
	Valid bool
	Value Hash
}

// NoBlock is the OptionalHash for a nil vote (no proposal at this step).
var NoBlock = OptionalHash{}

// SomeBlock wraps a concrete block hash.
func SomeBlock(h Hash) OptionalHash { return OptionalHash{Valid: true, Value: h} }

// Signature is a 65-byte Schnorr signature over a ConsensusMessage.
type Signature [65]byte

// ConsensusMessage is one signed vote: a validator's position on a given
// VoteStep, optionally naming the block it votes for. Equality and use as a
// map key compare full byte content, matching the Rust implementation's
// PartialEq derived over all fields including the signature.
type ConsensusMessage struct {
	VoteStep    VoteStep
	BlockHash   OptionalHash
	SignerIndex uint32
	Signature   Signature
}
