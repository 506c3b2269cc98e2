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
	"net"
	"sync"
)

// Nonce is the per-handshake challenge value exchanged and echoed back
// under session encryption.
type Nonce uint64

// SocketAddr is a fixed-size, comparable stand-in for net.UDPAddr (whose
// net.IP field is a slice and so cannot key a map), letting SessionTable
// use it directly as a map key the way spec.md's session table does.
type SocketAddr struct {
	IP   [16]byte
	Port uint16
}

// FromUDPAddr converts a *net.UDPAddr into a comparable SocketAddr.
func FromUDPAddr(addr *net.UDPAddr) SocketAddr {
	var s SocketAddr
	ip := addr.IP.To16()
	copy(s.IP[:], ip)
	s.Port = uint16(addr.Port)
	return s
}

// UDPAddr converts back to a *net.UDPAddr for use with net.PacketConn.
func (s SocketAddr) UDPAddr() *net.UDPAddr {
	ip := make(net.IP, 16)
	copy(ip, s.IP[:])
	return &net.UDPAddr{IP: ip, Port: int(s.Port)}
}

func (s SocketAddr) String() string {
	return s.UDPAddr().String()
}

// State is a peer session's position in the handshake protocol state
// machine: Idle -> AwaitingAllow/AwaitingPong -> Established, with any
// state able to fall back to Idle on ConnectionDenied.
type State int

const (
	Idle State = iota
	AwaitingAllow
	AwaitingPong
	Established
)

// Session is one peer's handshake state: the shared secret used to
// encrypt/decrypt nonce payloads, and (once a ping has been sent) the
// nonce this peer is expected to echo back.
type Session struct {
	SharedSecret  [32]byte
	state         State
	expectedNonce Nonce
	ready         bool
}

// NewSessionWithoutNonce creates a session with a known shared secret and
// no expected nonce yet, mirroring the placeholder session connect_to
// seeds into the table before a ping is actually sent.
func NewSessionWithoutNonce(secret [32]byte) *Session {
	return &Session{SharedSecret: secret, state: Idle}
}

// SetReady marks the session as having sent a ping with the given nonce,
// now awaiting a matching ConnectionAllowed.
func (s *Session) SetReady(nonce Nonce) {
	s.expectedNonce = nonce
	s.ready = true
	s.state = AwaitingPong
}

// IsReady reports whether SetReady has been called. It stays true after a
// matching ConnectionAllowed moves the session to Established.
func (s *Session) IsReady() bool { return s.ready }

// IsExpectedNonce reports whether nonce matches the one set by SetReady.
func (s *Session) IsExpectedNonce(nonce Nonce) bool {
	return s.ready && nonce == s.expectedNonce
}

// State returns the session's current protocol state.
func (s *Session) State() State { return s.state }

// SetState transitions the session to state, used by the receive-path
// handlers to drive Idle/AwaitingAllow/Established transitions.
func (s *Session) SetState(state State) { s.state = state }

// ErrNoSession is returned when an operation targets a peer with no table
// entry.
var ErrNoSession = fmt.Errorf("handshake: no session")

// ErrSessionNotReady is returned from onPacket when a ConnectionAllowed
// arrives for a session that never sent a ping.
var ErrSessionNotReady = fmt.Errorf("handshake: session not ready")

// SessionTable is the handshake task's peer-session map, mutated only from
// that task under its own lock (spec.md §5's "owned by the handshake task"
// shared-resource rule).
type SessionTable struct {
	mu       sync.Mutex
	sessions map[SocketAddr]*Session
}

// NewSessionTable returns an empty SessionTable.
func NewSessionTable() *SessionTable {
	return &SessionTable{sessions: make(map[SocketAddr]*Session)}
}

// Get returns the session for addr, or nil if none exists.
func (t *SessionTable) Get(addr SocketAddr) *Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sessions[addr]
}

// Insert adds or replaces the session for addr.
func (t *SessionTable) Insert(addr SocketAddr, session *Session) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sessions[addr] = session
}

// Remove deletes the session for addr, if any.
func (t *SessionTable) Remove(addr SocketAddr) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.sessions, addr)
}
