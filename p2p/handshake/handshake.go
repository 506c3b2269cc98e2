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

// Package handshake bootstraps a session with a peer over UDP: a nonce
// challenge encrypted under a shared secret, followed by handing the
// resulting Session off to the connection layer.
package handshake

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"go.uber.org/zap"

	"github.com/ccnode/ccnode/metrics"
)

// MaxPacketSize bounds a single handshake datagram, matching the
// original's fixed read buffer.
const MaxPacketSize = 1024

// ConnectionSink receives the two callbacks the handshake engine makes
// into the connection layer once a session resolves far enough.
type ConnectionSink interface {
	RegisterSession(peer SocketAddr, session *Session)
	RequestConnection(peer SocketAddr, session *Session)
}

// Engine owns the UDP socket and the session table; all table mutation
// happens on the Engine's own read-loop goroutine.
type Engine struct {
	conn  *net.UDPConn
	table *SessionTable
	sink  ConnectionSink
	log   *zap.Logger

	mu           sync.Mutex
	connectQueue []SocketAddr

	closeOnce sync.Once
	closed    chan struct{}

	metrics *metrics.Metrics
}

// SetMetrics attaches a metrics bundle this engine reports handshake
// failures through. A nil bundle (the default) disables reporting.
func (e *Engine) SetMetrics(m *metrics.Metrics) { e.metrics = m }

// Bind opens a UDP socket at addr and returns an Engine with an empty
// session table.
func Bind(addr *net.UDPAddr, sink ConnectionSink, log *zap.Logger) (*Engine, error) {
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("handshake: bind: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		conn:   conn,
		table:  NewSessionTable(),
		sink:   sink,
		log:    log,
		closed: make(chan struct{}),
	}, nil
}

// ConnectTo queues addr for an outgoing ping and seeds a placeholder
// session (no nonce yet) into the table, exactly as the original's
// connect_to handler does before the writable event actually sends.
func (e *Engine) ConnectTo(addr SocketAddr, sharedSecret [32]byte) {
	e.mu.Lock()
	e.connectQueue = append(e.connectQueue, addr)
	e.mu.Unlock()
	e.table.Insert(addr, NewSessionWithoutNonce(sharedSecret))
}

// DrainConnectQueue pops every queued address and sends a ping to each,
// the Go equivalent of the original's stream_writable loop (there the
// mio event loop calls it on writable-readiness; here it is driven
// explicitly, e.g. from a periodic ticker in the owning component).
func (e *Engine) DrainConnectQueue() error {
	for {
		e.mu.Lock()
		if len(e.connectQueue) == 0 {
			e.mu.Unlock()
			return nil
		}
		addr := e.connectQueue[0]
		e.connectQueue = e.connectQueue[1:]
		e.mu.Unlock()

		if err := e.sendPingTo(addr); err != nil {
			e.log.Info("handshake ping failed", zap.Stringer("peer", addr), zap.Error(err))
		}
	}
}

func (e *Engine) sendPingTo(addr SocketAddr) error {
	session := e.table.Get(addr)
	if session == nil {
		return ErrNoSession
	}
	nonce, err := randomNonce()
	if err != nil {
		return err
	}
	session.SetReady(nonce)
	encrypted, err := encryptNonce(session, nonce)
	if err != nil {
		return err
	}
	return e.sendTo(ConnectionRequest{SeqNum: 0, EncNonce: encrypted}, addr)
}

func (e *Engine) sendTo(msg Message, target SocketAddr) error {
	if e.table.Get(target) == nil {
		return ErrNoSession
	}
	data, err := EncodeMessage(msg)
	if err != nil {
		return err
	}
	n, err := e.conn.WriteToUDP(data, target.UDPAddr())
	if err != nil {
		return err
	}
	if n != len(data) {
		return fmt.Errorf("handshake: short write to %s: sent %d of %d bytes", target, n, len(data))
	}
	e.log.Debug("handshake message sent", zap.Stringer("peer", target))
	return nil
}

// RunReceiveLoop blocks reading datagrams until the socket is closed,
// dispatching each to onPacket. It is the idiomatic-Go analogue of the
// original's non-blocking stream_readable loop: one goroutine owns the
// socket and blocks on each read, rather than polling for WouldBlock.
func (e *Engine) RunReceiveLoop() {
	buf := make([]byte, MaxPacketSize)
	for {
		n, from, err := e.conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-e.closed:
				return
			default:
			}
			e.log.Info("handshake receive error", zap.Error(err))
			continue
		}
		addr := FromUDPAddr(from)
		if e.table.Get(addr) == nil {
			e.log.Info("handshake datagram from unknown peer", zap.Stringer("peer", addr))
			continue
		}
		msg, err := DecodeMessage(buf[:n])
		if err != nil {
			e.log.Info("handshake decode error", zap.Stringer("peer", addr), zap.Error(err))
			continue
		}
		if err := e.onPacket(msg, addr); err != nil {
			e.log.Info("handshake packet error", zap.Stringer("peer", addr), zap.Error(err))
			if e.metrics != nil {
				e.metrics.HandshakeFailures.Inc()
			}
		}
	}
}

// ErrUnexpectedNonce is returned when a ConnectionAllowed echoes a nonce
// different from the one this engine sent.
var ErrUnexpectedNonce = errors.New("handshake: unexpected nonce")

func (e *Engine) onPacket(msg Message, from SocketAddr) error {
	switch m := msg.(type) {
	case ConnectionRequest:
		session := e.table.Get(from)
		if session == nil {
			return ErrNoSession
		}
		if session.IsReady() {
			e.log.Info("handshake: nonce already exists, re-registering", zap.Stringer("peer", from))
		}
		nonce, err := decryptNonce(session, m.EncNonce)
		if err != nil {
			return err
		}
		encrypted, err := encryptNonce(session, nonce)
		if err != nil {
			return err
		}
		session.SetState(AwaitingAllow)
		e.sink.RegisterSession(from, session)
		return e.sendTo(ConnectionAllowed{SeqNum: 0, EncNonce: encrypted}, from)

	case ConnectionAllowed:
		session := e.table.Get(from)
		if session == nil {
			return ErrNoSession
		}
		if !session.IsReady() {
			return ErrSessionNotReady
		}
		nonce, err := decryptNonce(session, m.EncNonce)
		if err != nil {
			return err
		}
		if !session.IsExpectedNonce(nonce) {
			return ErrUnexpectedNonce
		}
		session.SetState(Established)
		e.sink.RequestConnection(from, session)
		return nil

	case ConnectionDenied:
		session := e.table.Get(from)
		if session != nil {
			session.SetState(Idle)
		}
		e.log.Info("handshake: connection denied", zap.Stringer("peer", from), zap.String("reason", m.Reason))
		return nil

	case EcdhRequest, EcdhAllowed:
		return fmt.Errorf("handshake: ecdh branch reserved, not implemented")

	case EcdhDenied:
		e.log.Info("handshake: ecdh connection denied", zap.Stringer("peer", from))
		return nil

	default:
		return fmt.Errorf("handshake: unhandled message type %T", m)
	}
}

// Close stops the receive loop and releases the socket.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() { close(e.closed) })
	return e.conn.Close()
}
