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

import "github.com/ccnode/ccnode/consensus/action"

// DoubleVote is the evidence produced when the same validator signs two
// distinct messages for the same VoteStep. VoteOne is whichever of the two
// messages the collector had already accepted; VoteTwo is the one that
// triggered detection.
type DoubleVote struct {
	AuthorIndex uint32
	VoteOne     ConsensusMessage
	VoteTwo     ConsensusMessage
}

// ToAction turns the evidence into the wire report a node submits on the
// validator's behalf. Unlike a parcel Action this has no tag of its own:
// it is the bare 2-element list the collector's own DoubleVote shape
// reuses, encoded and decoded through action.EncodeReportDoubleVote /
// action.DecodeReportDoubleVote rather than EncodeAction/DecodeAction.
func (d DoubleVote) ToAction() action.ReportDoubleVote {
	return action.ReportDoubleVote{
		MessageOne: encodeMessage(d.VoteOne),
		MessageTwo: encodeMessage(d.VoteTwo),
	}
}

func encodeMessage(m ConsensusMessage) action.EncodedConsensusMessage {
	return action.EncodedConsensusMessage{
		VoteStep: action.EncodedVoteStep{
			Height: m.VoteStep.Height,
			View:   m.VoteStep.View,
			Step:   uint8(m.VoteStep.Step),
		},
		HasBlockHash: m.BlockHash.Valid,
		BlockHash:    m.BlockHash.Value,
		SignerIndex:  m.SignerIndex,
		Signature:    m.Signature,
	}
}
