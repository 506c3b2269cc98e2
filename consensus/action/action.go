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

// Package action defines the parcel actions a signed transaction can carry.
// Each variant RLP-encodes as a tagged list whose length is fixed by its
// tag, so a decoder can reject a malformed list before looking at its
// contents.
package action

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
)

// Tag identifies which Action variant a tagged RLP list decodes to.
type Tag byte

const (
	TagChangeShardState Tag = 1
	TagPayment          Tag = 2
	TagSetRegularKey    Tag = 3
	TagCreateShard      Tag = 4
)

// Action is any parcel action. Implementations are RLP round-trippable
// tagged lists; the package-level EncodeAction and DecodeAction below are
// the only supported codec path.
type Action interface {
	Tag() Tag
}

// Address is a 160-bit account identifier, matching the width used
// throughout the chain's account and shard model.
type Address [20]byte

// ShardChange is one shard's state-root transition carried by a
// ChangeShardState action.
type ShardChange struct {
	ShardID  uint16
	PreRoot  [32]byte
	PostRoot [32]byte
}

// ChangeShardState is a 3-element tagged list: [tag, transactions, changes].
type ChangeShardState struct {
	Transactions [][]byte
	Changes      []ShardChange
}

func (ChangeShardState) Tag() Tag { return TagChangeShardState }

// Payment is a 3-element tagged list: [tag, receiver, amount].
type Payment struct {
	Receiver Address
	Amount   uint64
}

func (Payment) Tag() Tag { return TagPayment }

// SetRegularKey is a 2-element tagged list: [tag, key].
type SetRegularKey struct {
	Key [33]byte // compressed public key
}

func (SetRegularKey) Tag() Tag { return TagSetRegularKey }

// CreateShard is a 1-element tagged list: [tag]. It carries no payload; the
// new shard's ID is assigned by the state transition, not chosen by the
// sender.
type CreateShard struct{}

func (CreateShard) Tag() Tag { return TagCreateShard }

// EncodedVoteStep is the wire-level projection of a consensus VoteStep,
// defined here rather than imported so that action has no dependency on
// the consensus package that produces the evidence it carries.
type EncodedVoteStep struct {
	Height uint64
	View   uint64
	Step   uint8
}

// EncodedConsensusMessage is the wire-level projection of a signed
// consensus vote, independent of the consensus package's in-memory type.
type EncodedConsensusMessage struct {
	VoteStep     EncodedVoteStep
	HasBlockHash bool
	BlockHash    [32]byte
	SignerIndex  uint32
	Signature    [65]byte
}

// ReportDoubleVote is the bare, untagged 2-element list [message_one,
// message_two]. Unlike the four parcel actions above it carries no Tag: it
// is not a variant a client ever signs and submits as a parcel, but
// evidence a node generates on a validator's behalf, wire-identical to the
// collector's own DoubleVote shape. It therefore does not implement the
// Action interface and is encoded/decoded through its own functions below
// rather than through EncodeAction/DecodeAction.
type ReportDoubleVote struct {
	MessageOne EncodedConsensusMessage
	MessageTwo EncodedConsensusMessage
}

// EncodeReportDoubleVote RLP-encodes v as the bare 2-element list
// [message_one, message_two], with no leading tag.
func EncodeReportDoubleVote(v ReportDoubleVote) ([]byte, error) {
	return rlp.EncodeToBytes(v)
}

// DecodeReportDoubleVote RLP-decodes data as a bare 2-element list, the
// inverse of EncodeReportDoubleVote.
func DecodeReportDoubleVote(data []byte) (ReportDoubleVote, error) {
	var v ReportDoubleVote
	if err := rlp.DecodeBytes(data, &v); err != nil {
		return ReportDoubleVote{}, fmt.Errorf("action: decode ReportDoubleVote: %w", err)
	}
	return v, nil
}

// rlpChangeShardState and friends are the concrete list shapes EncodeAction
// and DecodeAction serialize; Action itself stays tag-only so callers can
// switch on Tag() without an RLP round trip.
type rlpChangeShardState struct {
	Tag          Tag
	Transactions [][]byte
	Changes      []ShardChange
}

type rlpPayment struct {
	Tag      Tag
	Receiver Address
	Amount   uint64
}

type rlpSetRegularKey struct {
	Tag Tag
	Key [33]byte
}

type rlpCreateShard struct {
	Tag Tag
}

// EncodeAction RLP-encodes a as its tagged list form.
func EncodeAction(a Action) ([]byte, error) {
	switch v := a.(type) {
	case ChangeShardState:
		return rlp.EncodeToBytes(rlpChangeShardState{TagChangeShardState, v.Transactions, v.Changes})
	case Payment:
		return rlp.EncodeToBytes(rlpPayment{TagPayment, v.Receiver, v.Amount})
	case SetRegularKey:
		return rlp.EncodeToBytes(rlpSetRegularKey{TagSetRegularKey, v.Key})
	case CreateShard:
		return rlp.EncodeToBytes(rlpCreateShard{TagCreateShard})
	default:
		return nil, fmt.Errorf("action: unknown action type %T", a)
	}
}

// DecodeAction RLP-decodes data into the Action variant named by its
// leading tag, rejecting any list whose length doesn't match that tag.
func DecodeAction(data []byte) (Action, error) {
	var items []rlp.RawValue
	if err := rlp.DecodeBytes(data, &items); err != nil {
		return nil, fmt.Errorf("action: malformed tagged list: %w", err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("action: empty tagged list")
	}
	var tag Tag
	if err := rlp.DecodeBytes(items[0], &tag); err != nil {
		return nil, fmt.Errorf("action: malformed tag: %w", err)
	}
	// Each arm below redecodes the full list against its exact field count
	// so a too-long or too-short list is rejected rather than silently
	// truncated.
	switch tag {
	case TagChangeShardState:
		var v rlpChangeShardState
		if err := rlp.DecodeBytes(data, &v); err != nil {
			return nil, fmt.Errorf("action: decode ChangeShardState: %w", err)
		}
		return ChangeShardState{Transactions: v.Transactions, Changes: v.Changes}, nil
	case TagPayment:
		var v rlpPayment
		if err := rlp.DecodeBytes(data, &v); err != nil {
			return nil, fmt.Errorf("action: decode Payment: %w", err)
		}
		return Payment{Receiver: v.Receiver, Amount: v.Amount}, nil
	case TagSetRegularKey:
		var v rlpSetRegularKey
		if err := rlp.DecodeBytes(data, &v); err != nil {
			return nil, fmt.Errorf("action: decode SetRegularKey: %w", err)
		}
		return SetRegularKey{Key: v.Key}, nil
	case TagCreateShard:
		var v rlpCreateShard
		if err := rlp.DecodeBytes(data, &v); err != nil {
			return nil, fmt.Errorf("action: decode CreateShard: %w", err)
		}
		return CreateShard{}, nil
	default:
		return nil, fmt.Errorf("action: unknown tag %d", tag)
	}
}
