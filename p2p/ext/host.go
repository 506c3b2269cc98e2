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

// Package ext hosts protocol extensions: named subsystems that plug into
// the P2P layer, each running in its own goroutine and seeing node events
// through a small set of typed channels rather than shared memory.
package ext

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ccnode/ccnode/metrics"
)

// NodeID identifies a connected peer.
type NodeID [32]byte

// NetworkEventKind tags the variant carried by a NetworkEvent.
type NetworkEventKind int

const (
	NodeAdded NetworkEventKind = iota
	NodeRemoved
	Message
	Timeout
)

// NetworkEvent is delivered to an extension's network channel. Kind selects
// which other fields are meaningful: Node and Version for NodeAdded, Node
// for NodeRemoved, Node and Data for Message, Token for Timeout.
type NetworkEvent struct {
	Kind    NetworkEventKind
	Node    NodeID
	Version uint32
	Data    []byte
	Token   uint64
}

// API is the handle a factory receives when its extension is registered.
// It is the extension's only way to talk back to the host: send bytes to a
// peer, or schedule a timer that delivers a Timeout NetworkEvent.
type API struct {
	name           string
	needEncryption bool
	sendCh         chan<- SendExtensionMessage
	networkCh      chan NetworkEvent
	logger         *zap.Logger

	mu     sync.Mutex
	timers map[uint64]*timerHandle
	nextID uint64
}

// timerHandle tracks one scheduled timer so Cancel can best-effort stop it.
// stop is *time.Timer.Stop or *time.Ticker.Stop; done signals the
// goroutine feeding Timeout events into networkCh to exit.
type timerHandle struct {
	stop func() bool
	done chan struct{}
}

// StartOneShot schedules a single Timeout(token) delivery after d, posted
// into this extension's network channel so it shares a total order with
// message delivery. It returns a token identifying the timer for Cancel.
func (a *API) StartOneShot(d time.Duration) uint64 {
	a.mu.Lock()
	token := a.nextID
	a.nextID++
	done := make(chan struct{})
	timer := time.NewTimer(d)
	a.timers[token] = &timerHandle{stop: timer.Stop, done: done}
	a.mu.Unlock()

	go func() {
		select {
		case <-timer.C:
			a.deliverTimeout(token)
		case <-done:
			timer.Stop()
		}
	}()
	return token
}

// StartRepeating schedules a Timeout(token) delivery every d until
// Cancel(token) is called.
func (a *API) StartRepeating(d time.Duration) uint64 {
	a.mu.Lock()
	token := a.nextID
	a.nextID++
	done := make(chan struct{})
	ticker := time.NewTicker(d)
	a.timers[token] = &timerHandle{stop: func() bool { ticker.Stop(); return true }, done: done}
	a.mu.Unlock()

	go func() {
		for {
			select {
			case <-ticker.C:
				a.deliverTimeout(token)
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()
	return token
}

// Cancel stops the timer identified by token on a best-effort basis: a
// Timeout already in flight on networkCh may still be delivered, and the
// extension must treat that delivery as idempotent.
func (a *API) Cancel(token uint64) {
	a.mu.Lock()
	handle, ok := a.timers[token]
	if ok {
		delete(a.timers, token)
	}
	a.mu.Unlock()
	if ok {
		handle.stop()
		close(handle.done)
	}
}

// cancelAllTimers stops every timer still registered to this extension,
// called when the extension's task exits so timer goroutines don't leak.
func (a *API) cancelAllTimers() {
	a.mu.Lock()
	handles := make([]*timerHandle, 0, len(a.timers))
	for _, h := range a.timers {
		handles = append(handles, h)
	}
	a.timers = make(map[uint64]*timerHandle)
	a.mu.Unlock()
	for _, h := range handles {
		h.stop()
		close(h.done)
	}
}

func (a *API) deliverTimeout(token uint64) {
	select {
	case a.networkCh <- NetworkEvent{Kind: Timeout, Token: token}:
	default:
		a.logger.Warn("timeout event dropped, network channel full", zap.String("extension", a.name))
	}
}

// SendExtensionMessage is posted onto the shared P2P send channel by an
// extension's API.Send.
type SendExtensionMessage struct {
	Node           NodeID
	ExtensionName  string
	NeedEncryption bool
	Data           []byte
}

// Send posts data to node via the shared P2P channel. A send failure (the
// channel is full) is logged and otherwise swallowed: per the
// host's failure contract, a send failure never kills the extension.
func (a *API) Send(node NodeID, data []byte) {
	msg := SendExtensionMessage{Node: node, ExtensionName: a.name, NeedEncryption: a.needEncryption, Data: data}
	select {
	case a.sendCh <- msg:
	default:
		a.logger.Warn("send to P2P channel dropped", zap.String("extension", a.name))
	}
}

// Extension is implemented by every protocol plugin. OnInitialize runs once
// before the host starts multiplexing channels; OnNetworkEvent is called
// for every NetworkEvent the host delivers; OnEvent is called for every
// application-level event posted to this extension.
type Extension interface {
	Name() string
	ProtocolVersions() []uint32
	OnInitialize(api *API)
	OnNetworkEvent(event NetworkEvent)
	OnEvent(event any)
}

// Factory constructs an Extension given its API handle, so the extension
// can capture it in its own state during construction rather than race to
// receive it before OnInitialize.
type Factory func(api *API) Extension

type registeredExtension struct {
	name       string
	extension  Extension
	api        *API
	events     chan any
	network    chan NetworkEvent
	quit       chan struct{}
	stopped    chan struct{}
	cancelFunc context.CancelFunc
}

// Host owns the extension registry and the shared P2P send channel every
// extension's API posts to.
type Host struct {
	mu         sync.RWMutex
	extensions map[string]*registeredExtension
	sendCh     chan SendExtensionMessage
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

// SetMetrics attaches a metrics bundle this host reports extension message
// routing through. A nil bundle (the default) disables reporting.
func (h *Host) SetMetrics(m *metrics.Metrics) { h.metrics = m }

// NewHost returns a Host whose shared send channel has the given buffer
// size.
func NewHost(sendBuffer int, logger *zap.Logger) *Host {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Host{
		extensions: make(map[string]*registeredExtension),
		sendCh:     make(chan SendExtensionMessage, sendBuffer),
		logger:     logger,
	}
}

// SendChannel returns the channel every extension's outbound message is
// posted to; the connection layer drains it.
func (h *Host) SendChannel() <-chan SendExtensionMessage { return h.sendCh }

// RegisterExtension constructs an extension via factory, wires its API
// handle, and spawns its per-extension goroutine. needEncryption is
// latched into the API at registration time, matching spec.md's "latched
// once at task start" rule.
func (h *Host) RegisterExtension(ctx context.Context, name string, needEncryption bool, factory Factory) error {
	h.mu.Lock()
	if _, exists := h.extensions[name]; exists {
		h.mu.Unlock()
		return fmt.Errorf("ext: extension %q already registered", name)
	}
	h.mu.Unlock()

	taskCtx, cancel := context.WithCancel(ctx)
	network := make(chan NetworkEvent, 64)
	api := &API{
		name:           name,
		needEncryption: needEncryption,
		sendCh:         h.sendCh,
		networkCh:      network,
		logger:         h.logger,
		timers:         make(map[uint64]*timerHandle),
	}
	extension := factory(api)

	reg := &registeredExtension{
		name:       name,
		extension:  extension,
		api:        api,
		events:     make(chan any, 64),
		network:    network,
		quit:       make(chan struct{}, 1),
		stopped:    make(chan struct{}),
		cancelFunc: cancel,
	}

	h.mu.Lock()
	h.extensions[name] = reg
	h.mu.Unlock()

	go h.runExtension(taskCtx, reg)
	return nil
}

// runExtension is the single goroutine owning one extension: it calls
// OnInitialize once, then multiplexes events/network/quit with select
// until quit fires, the context is cancelled, or network is closed.
func (h *Host) runExtension(ctx context.Context, reg *registeredExtension) {
	defer close(reg.stopped)
	defer reg.api.cancelAllTimers()
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("extension panicked, task terminated",
				zap.String("extension", reg.name), zap.Any("panic", r))
		}
	}()

	reg.extension.OnInitialize(reg.api)

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("extension task cancelled", zap.String("extension", reg.name))
			return
		case <-reg.quit:
			h.logger.Info("extension task quit", zap.String("extension", reg.name))
			return
		case event, ok := <-reg.network:
			if !ok {
				h.logger.Info("extension network channel closed", zap.String("extension", reg.name))
				return
			}
			reg.extension.OnNetworkEvent(event)
		case event := <-reg.events:
			reg.extension.OnEvent(event)
		}
	}
}

// OnNodeAdded enqueues a NodeAdded event into name's network channel.
func (h *Host) OnNodeAdded(name string, id NodeID, version uint32) {
	h.deliverToOne(name, NetworkEvent{Kind: NodeAdded, Node: id, Version: version})
}

// OnNodeRemoved broadcasts a NodeRemoved event to every registered
// extension.
func (h *Host) OnNodeRemoved(id NodeID) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, reg := range h.extensions {
		h.deliverLocked(reg, NetworkEvent{Kind: NodeRemoved, Node: id})
	}
}

// OnMessage enqueues a Message event into name's network channel.
func (h *Host) OnMessage(name string, id NodeID, data []byte) {
	h.deliverToOne(name, NetworkEvent{Kind: Message, Node: id, Data: data})
}

func (h *Host) deliverToOne(name string, event NetworkEvent) {
	h.mu.RLock()
	reg, ok := h.extensions[name]
	h.mu.RUnlock()
	if !ok {
		return
	}
	h.deliverLocked(reg, event)
}

func (h *Host) deliverLocked(reg *registeredExtension, event NetworkEvent) {
	select {
	case reg.network <- event:
		if h.metrics != nil {
			h.metrics.ExtensionMessagesRouted.WithLabelValues(reg.name).Inc()
		}
	default:
		h.logger.Warn("network channel full, event dropped",
			zap.String("extension", reg.name), zap.Int("kind", int(event.Kind)))
	}
}

// ExtensionVersions returns a snapshot of every registered extension's
// name mapped to its supported protocol versions.
func (h *Host) ExtensionVersions() map[string][]uint32 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make(map[string][]uint32, len(h.extensions))
	for name, reg := range h.extensions {
		out[name] = reg.extension.ProtocolVersions()
	}
	return out
}

// Close signals quit to every extension and blocks until each task's
// goroutine has exited.
func (h *Host) Close() {
	h.mu.Lock()
	extensions := make([]*registeredExtension, 0, len(h.extensions))
	for _, reg := range h.extensions {
		extensions = append(extensions, reg)
	}
	h.mu.Unlock()

	for _, reg := range extensions {
		select {
		case reg.quit <- struct{}{}:
		default:
		}
		reg.cancelFunc()
	}
	for _, reg := range extensions {
		<-reg.stopped
	}
}
