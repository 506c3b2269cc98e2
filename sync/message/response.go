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

// Package message implements the block-sync response wire codec: header
// lists, snappy-compressed body batches, and opaque state-sync chunks.
package message

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/golang/snappy"

	"github.com/ccnode/ccnode/core/types"
)

// ID discriminates a ResponseMessage's wire shape; unlike consensus
// actions and handshake messages, the id travels alongside the payload
// rather than inside it (matching the protocol's outer message-id
// envelope), so no tag-peek decode is needed here.
type ID byte

const (
	IDHeaders ID = iota
	IDBodies
	IDStateHead
	IDStateChunk
)

// ErrUnknownMessageID is returned by Decode for an id it doesn't
// recognize.
var ErrUnknownMessageID = fmt.Errorf("message: unknown message id")

// IncorrectListLenError reports an RLP list whose length didn't match what
// the decoder for this message kind expects.
type IncorrectListLenError struct {
	Got      int
	Expected int
}

func (e *IncorrectListLenError) Error() string {
	return fmt.Sprintf("message: incorrect list length: got %d, expected %d", e.Got, e.Expected)
}

// ResponseMessage is the tagged union of block-sync response payloads.
type ResponseMessage interface {
	MessageID() ID
}

// Headers carries a batch of block headers, encoded as a bare RLP list
// (no outer one-element wrapper, unlike the other three variants).
type Headers struct {
	Items []types.Header
}

func (Headers) MessageID() ID { return IDHeaders }

// Bodies carries, for each requested block, the list of transactions it
// contains. On the wire it is a one-element list wrapping the
// snappy-compressed bytes of an inner RLP list-of-lists.
type Bodies struct {
	Items [][]types.Transaction
}

func (Bodies) MessageID() ID { return IDBodies }

// StateHead carries the opaque root chunk of a state-sync snapshot.
type StateHead struct {
	Data []byte
}

func (StateHead) MessageID() ID { return IDStateHead }

// StateChunk carries one opaque chunk of a state-sync snapshot.
type StateChunk struct {
	Data []byte
}

func (StateChunk) MessageID() ID { return IDStateChunk }

type rlpOneElement struct {
	Data []byte
}

// Encode serializes m per its wire framing: Headers as a bare list,
// the other three as a one-element list wrapping their payload (Bodies's
// payload being snappy-compressed first).
func Encode(m ResponseMessage) ([]byte, error) {
	switch v := m.(type) {
	case Headers:
		return rlp.EncodeToBytes(v.Items)
	case Bodies:
		uncompressed, err := rlp.EncodeToBytes(v.Items)
		if err != nil {
			return nil, err
		}
		compressed := snappy.Encode(nil, uncompressed)
		return rlp.EncodeToBytes(rlpOneElement{Data: compressed})
	case StateHead:
		return rlp.EncodeToBytes(rlpOneElement{Data: v.Data})
	case StateChunk:
		return rlp.EncodeToBytes(rlpOneElement{Data: v.Data})
	default:
		return nil, fmt.Errorf("message: unknown response message type %T", m)
	}
}

// Decode parses data as the response message identified by id.
func Decode(id ID, data []byte) (ResponseMessage, error) {
	switch id {
	case IDHeaders:
		var headers []types.Header
		if err := rlp.DecodeBytes(data, &headers); err != nil {
			return nil, err
		}
		return Headers{Items: headers}, nil

	case IDBodies:
		var wrapper rlpOneElement
		items, itemCount, err := decodeSingleton(data)
		if err != nil {
			return nil, err
		}
		if itemCount != 1 {
			return nil, &IncorrectListLenError{Got: itemCount, Expected: 1}
		}
		wrapper.Data = items
		uncompressed, err := snappy.Decode(nil, wrapper.Data)
		if err != nil {
			return nil, fmt.Errorf("message: invalid compression format: %w", err)
		}
		var bodies [][]types.Transaction
		if err := rlp.DecodeBytes(uncompressed, &bodies); err != nil {
			return nil, err
		}
		return Bodies{Items: bodies}, nil

	case IDStateHead:
		items, itemCount, err := decodeSingleton(data)
		if err != nil {
			return nil, err
		}
		if itemCount != 1 {
			return nil, &IncorrectListLenError{Got: itemCount, Expected: 1}
		}
		return StateHead{Data: items}, nil

	case IDStateChunk:
		items, itemCount, err := decodeSingleton(data)
		if err != nil {
			return nil, err
		}
		if itemCount != 1 {
			return nil, &IncorrectListLenError{Got: itemCount, Expected: 1}
		}
		return StateChunk{Data: items}, nil

	default:
		return nil, ErrUnknownMessageID
	}
}

// decodeSingleton decodes data as an RLP list and returns its first raw
// element's bytes plus the list's item count, so callers can enforce the
// "exactly one element" invariant before trusting the payload.
func decodeSingleton(data []byte) ([]byte, int, error) {
	var raw []rlp.RawValue
	if err := rlp.DecodeBytes(data, &raw); err != nil {
		return nil, 0, err
	}
	if len(raw) == 0 {
		return nil, 0, nil
	}
	var payload []byte
	if err := rlp.DecodeBytes(raw[0], &payload); err != nil {
		return nil, 0, err
	}
	return payload, len(raw), nil
}
