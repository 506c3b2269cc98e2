package handshake

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu                 sync.Mutex
	registered         []SocketAddr
	requestedConnected []SocketAddr
}

func (s *recordingSink) RegisterSession(peer SocketAddr, session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registered = append(s.registered, peer)
}

func (s *recordingSink) RequestConnection(peer SocketAddr, session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requestedConnected = append(s.requestedConnected, peer)
}

func (s *recordingSink) snapshot() (registered, requested []SocketAddr) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SocketAddr{}, s.registered...), append([]SocketAddr{}, s.requestedConnected...)
}

func newEngine(t *testing.T, sink ConnectionSink) *Engine {
	t.Helper()
	addr := &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 0}
	engine, err := Bind(addr, sink, nil)
	require.NoError(t, err)
	t.Cleanup(func() { engine.Close() })
	return engine
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("timed out waiting for condition")
}

func TestHandshakePingPongEstablishesSession(t *testing.T) {
	sinkA := &recordingSink{}
	sinkB := &recordingSink{}
	engineA := newEngine(t, sinkA)
	engineB := newEngine(t, sinkB)

	addrA := FromUDPAddr(engineA.conn.LocalAddr().(*net.UDPAddr))
	addrB := FromUDPAddr(engineB.conn.LocalAddr().(*net.UDPAddr))

	go engineA.RunReceiveLoop()
	go engineB.RunReceiveLoop()

	var secret [32]byte
	secret[0] = 0x1

	// B learns about A up front (as if discovery had already introduced
	// them), so its receive path has a session to look up the datagram
	// against.
	engineB.table.Insert(addrA, NewSessionWithoutNonce(secret))

	engineA.ConnectTo(addrB, secret)
	require.NoError(t, engineA.DrainConnectQueue())

	waitFor(t, func() bool {
		registered, _ := sinkB.snapshot()
		return len(registered) == 1
	})
	registered, _ := sinkB.snapshot()
	require.Equal(t, addrA, registered[0])

	waitFor(t, func() bool {
		_, requested := sinkA.snapshot()
		return len(requested) == 1
	})
	_, requested := sinkA.snapshot()
	require.Equal(t, addrB, requested[0])

	require.Equal(t, Established, engineA.table.Get(addrB).State())
}

func TestHandshakeUnexpectedNonceRejected(t *testing.T) {
	sink := &recordingSink{}
	engine := newEngine(t, sink)

	var secret [32]byte
	addr := FromUDPAddr(&net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 9999})
	engine.table.Insert(addr, NewSessionWithoutNonce(secret))

	session := engine.table.Get(addr)
	session.SetReady(Nonce(42))

	encrypted, err := encryptNonce(session, Nonce(43))
	require.NoError(t, err)

	err = engine.onPacket(ConnectionAllowed{SeqNum: 0, EncNonce: encrypted}, addr)
	require.ErrorIs(t, err, ErrUnexpectedNonce)

	_, requested := sink.snapshot()
	require.Empty(t, requested)
}

func TestHandshakeConnectionAllowedWithoutReadySessionFails(t *testing.T) {
	sink := &recordingSink{}
	engine := newEngine(t, sink)

	var secret [32]byte
	addr := FromUDPAddr(&net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 9999})
	engine.table.Insert(addr, NewSessionWithoutNonce(secret))

	encrypted, err := encryptNonce(engine.table.Get(addr), Nonce(1))
	require.NoError(t, err)

	err = engine.onPacket(ConnectionAllowed{SeqNum: 0, EncNonce: encrypted}, addr)
	require.ErrorIs(t, err, ErrSessionNotReady)
}

func TestHandshakeUnknownPeerFails(t *testing.T) {
	sink := &recordingSink{}
	engine := newEngine(t, sink)
	addr := FromUDPAddr(&net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 9999})

	err := engine.onPacket(ConnectionRequest{SeqNum: 0, EncNonce: []byte{1, 2, 3}}, addr)
	require.ErrorIs(t, err, ErrNoSession)
}

func TestHandshakeConnectionDeniedResetsToIdle(t *testing.T) {
	sink := &recordingSink{}
	engine := newEngine(t, sink)

	var secret [32]byte
	addr := FromUDPAddr(&net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 9999})
	engine.table.Insert(addr, NewSessionWithoutNonce(secret))
	engine.table.Get(addr).SetState(AwaitingPong)

	err := engine.onPacket(ConnectionDenied{SeqNum: 0, Reason: "nope"}, addr)
	require.NoError(t, err)
	require.Equal(t, Idle, engine.table.Get(addr).State())
}

func TestEncodeDecodeMessageRoundTrip(t *testing.T) {
	for _, msg := range []Message{
		ConnectionRequest{SeqNum: 7, EncNonce: []byte{1, 2, 3}},
		ConnectionAllowed{SeqNum: 8, EncNonce: []byte{4, 5}},
		ConnectionDenied{SeqNum: 9, Reason: "busy"},
	} {
		data, err := EncodeMessage(msg)
		require.NoError(t, err)
		decoded, err := DecodeMessage(data)
		require.NoError(t, err)
		require.Equal(t, msg, decoded)
	}
}
