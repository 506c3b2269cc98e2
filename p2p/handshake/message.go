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

package handshake

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
)

// MessageTag discriminates the wire shape of a Message, peeked before the
// full payload is decoded, the same tagged-list approach used for consensus
// actions.
type MessageTag byte

const (
	TagConnectionRequest MessageTag = iota
	TagConnectionAllowed
	TagConnectionDenied
	TagEcdhRequest
	TagEcdhAllowed
	TagEcdhDenied
)

// Message is one handshake datagram payload, always carrying a sequence
// number alongside its tag-specific body.
type Message interface {
	Tag() MessageTag
	Seq() uint64
}

// ConnectionRequest carries an encrypted nonce proposing a session.
type ConnectionRequest struct {
	SeqNum   uint64
	EncNonce []byte
}

func (m ConnectionRequest) Tag() MessageTag { return TagConnectionRequest }
func (m ConnectionRequest) Seq() uint64     { return m.SeqNum }

// ConnectionAllowed echoes back the (possibly transformed) encrypted nonce.
type ConnectionAllowed struct {
	SeqNum   uint64
	EncNonce []byte
}

func (m ConnectionAllowed) Tag() MessageTag { return TagConnectionAllowed }
func (m ConnectionAllowed) Seq() uint64     { return m.SeqNum }

// ConnectionDenied carries a human-readable refusal reason.
type ConnectionDenied struct {
	SeqNum uint64
	Reason string
}

func (m ConnectionDenied) Tag() MessageTag { return TagConnectionDenied }
func (m ConnectionDenied) Seq() uint64     { return m.SeqNum }

// EcdhRequest, EcdhAllowed and EcdhDenied are declared but reserved: the
// original protocol lists them as unimplemented branches. Decoding one is
// valid, but Engine.onPacket returns an error for EcdhRequest and
// EcdhAllowed and only logs EcdhDenied.
type EcdhRequest struct {
	SeqNum uint64
	Key    []byte
}

func (m EcdhRequest) Tag() MessageTag { return TagEcdhRequest }
func (m EcdhRequest) Seq() uint64     { return m.SeqNum }

type EcdhAllowed struct {
	SeqNum uint64
	Key    []byte
}

func (m EcdhAllowed) Tag() MessageTag { return TagEcdhAllowed }
func (m EcdhAllowed) Seq() uint64     { return m.SeqNum }

type EcdhDenied struct {
	SeqNum uint64
	Reason string
}

func (m EcdhDenied) Tag() MessageTag { return TagEcdhDenied }
func (m EcdhDenied) Seq() uint64     { return m.SeqNum }

type rlpConnectionRequest struct {
	Tag      MessageTag
	SeqNum   uint64
	EncNonce []byte
}

type rlpConnectionAllowed struct {
	Tag      MessageTag
	SeqNum   uint64
	EncNonce []byte
}

type rlpConnectionDenied struct {
	Tag    MessageTag
	SeqNum uint64
	Reason string
}

type rlpEcdh struct {
	Tag    MessageTag
	SeqNum uint64
	Key    []byte
}

type rlpEcdhDenied struct {
	Tag    MessageTag
	SeqNum uint64
	Reason string
}

// EncodeMessage serializes m as an RLP list whose first element is its tag.
func EncodeMessage(m Message) ([]byte, error) {
	switch v := m.(type) {
	case ConnectionRequest:
		return rlp.EncodeToBytes(rlpConnectionRequest{TagConnectionRequest, v.SeqNum, v.EncNonce})
	case ConnectionAllowed:
		return rlp.EncodeToBytes(rlpConnectionAllowed{TagConnectionAllowed, v.SeqNum, v.EncNonce})
	case ConnectionDenied:
		return rlp.EncodeToBytes(rlpConnectionDenied{TagConnectionDenied, v.SeqNum, v.Reason})
	case EcdhRequest:
		return rlp.EncodeToBytes(rlpEcdh{TagEcdhRequest, v.SeqNum, v.Key})
	case EcdhAllowed:
		return rlp.EncodeToBytes(rlpEcdh{TagEcdhAllowed, v.SeqNum, v.Key})
	case EcdhDenied:
		return rlp.EncodeToBytes(rlpEcdhDenied{TagEcdhDenied, v.SeqNum, v.Reason})
	default:
		return nil, fmt.Errorf("handshake: unknown message type %T", m)
	}
}

// DecodeMessage peeks the tag of an RLP-encoded handshake message, then
// decodes the full list against the exact-shape struct for that tag.
func DecodeMessage(data []byte) (Message, error) {
	var items []rlp.RawValue
	if err := rlp.DecodeBytes(data, &items); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("handshake: empty message list")
	}
	var tag MessageTag
	if err := rlp.DecodeBytes(items[0], &tag); err != nil {
		return nil, err
	}
	switch tag {
	case TagConnectionRequest:
		var v rlpConnectionRequest
		if err := rlp.DecodeBytes(data, &v); err != nil {
			return nil, err
		}
		return ConnectionRequest{SeqNum: v.SeqNum, EncNonce: v.EncNonce}, nil
	case TagConnectionAllowed:
		var v rlpConnectionAllowed
		if err := rlp.DecodeBytes(data, &v); err != nil {
			return nil, err
		}
		return ConnectionAllowed{SeqNum: v.SeqNum, EncNonce: v.EncNonce}, nil
	case TagConnectionDenied:
		var v rlpConnectionDenied
		if err := rlp.DecodeBytes(data, &v); err != nil {
			return nil, err
		}
		return ConnectionDenied{SeqNum: v.SeqNum, Reason: v.Reason}, nil
	case TagEcdhRequest:
		var v rlpEcdh
		if err := rlp.DecodeBytes(data, &v); err != nil {
			return nil, err
		}
		return EcdhRequest{SeqNum: v.SeqNum, Key: v.Key}, nil
	case TagEcdhAllowed:
		var v rlpEcdh
		if err := rlp.DecodeBytes(data, &v); err != nil {
			return nil, err
		}
		return EcdhAllowed{SeqNum: v.SeqNum, Key: v.Key}, nil
	case TagEcdhDenied:
		var v rlpEcdhDenied
		if err := rlp.DecodeBytes(data, &v); err != nil {
			return nil, err
		}
		return EcdhDenied{SeqNum: v.SeqNum, Reason: v.Reason}, nil
	default:
		return nil, fmt.Errorf("handshake: unknown message tag %d", tag)
	}
}
