package message

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ccnode/ccnode/core/types"
)

func roundTrip(t *testing.T, m ResponseMessage) ResponseMessage {
	t.Helper()
	data, err := Encode(m)
	require.NoError(t, err)
	decoded, err := Decode(m.MessageID(), data)
	require.NoError(t, err)
	return decoded
}

func TestHeadersRoundTrip(t *testing.T) {
	// RLP does not distinguish a nil byte slice from an empty one; decoding
	// an empty Extra yields []byte{}, so the expected value uses that form.
	m := Headers{Items: []types.Header{{Number: 1, Extra: []byte{}}, {Number: 2, Extra: []byte("x")}}}
	require.Equal(t, m, roundTrip(t, m))
}

func TestBodiesRoundTripEmpty(t *testing.T) {
	m := Bodies{Items: [][]types.Transaction{{}}}
	require.Equal(t, m, roundTrip(t, m))
}

func TestBodiesRoundTripWithTransactions(t *testing.T) {
	tx := types.Transaction{Seq: 1, Fee: 10, Action: []byte{0xaa, 0xbb}, NetworkID: 7}
	m := Bodies{Items: [][]types.Transaction{{tx}}}
	require.Equal(t, m, roundTrip(t, m))
}

func TestStateHeadRoundTrip(t *testing.T) {
	m := StateHead{Data: []byte{1, 2, 3}}
	require.Equal(t, m, roundTrip(t, m))
}

func TestStateChunkRoundTripEmptyPayload(t *testing.T) {
	m := StateChunk{Data: []byte{}}
	require.Equal(t, m, roundTrip(t, m))
}

func TestDecodeUnknownMessageID(t *testing.T) {
	_, err := Decode(ID(99), []byte{0xc0})
	require.ErrorIs(t, err, ErrUnknownMessageID)
}

func TestDecodeBodiesWrongListLength(t *testing.T) {
	// two one-byte strings instead of the required single element.
	data := []byte{0xc2, 0x01, 0x02}
	_, err := Decode(IDBodies, data)
	var listErr *IncorrectListLenError
	require.ErrorAs(t, err, &listErr)
	require.Equal(t, 2, listErr.Got)
	require.Equal(t, 1, listErr.Expected)
}

func TestDecodeStateChunkWrongListLength(t *testing.T) {
	data := []byte{0xc2, 0x01, 0x02}
	_, err := Decode(IDStateChunk, data)
	var listErr *IncorrectListLenError
	require.ErrorAs(t, err, &listErr)
}
