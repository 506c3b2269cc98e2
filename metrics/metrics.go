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

// Package metrics collects the node's Prometheus counters and gauges:
// double-votes reported, account cache hits/misses, extension message
// throughput, and handshake failures.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles every counter/gauge the node exposes, registered against
// a caller-supplied prometheus.Registerer so tests can use a private
// registry instead of the global default one.
type Metrics struct {
	DoubleVotesReported     prometheus.Counter
	CacheHits               prometheus.Counter
	CacheMisses             prometheus.Counter
	ExtensionMessagesRouted *prometheus.CounterVec
	HandshakeFailures       prometheus.Counter
}

// New constructs and registers a Metrics bundle against reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DoubleVotesReported: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ccnode",
			Subsystem: "consensus",
			Name:      "double_votes_reported_total",
			Help:      "Number of double-vote evidence reports detected by the vote collector.",
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ccnode",
			Subsystem: "state",
			Name:      "account_cache_hits_total",
			Help:      "Number of account cache reads served without a journal fallthrough.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ccnode",
			Subsystem: "state",
			Name:      "account_cache_misses_total",
			Help:      "Number of account cache reads that fell through to the journal.",
		}),
		ExtensionMessagesRouted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ccnode",
			Subsystem: "p2p",
			Name:      "extension_messages_routed_total",
			Help:      "Number of network events routed to an extension, labeled by extension name.",
		}, []string{"extension"}),
		HandshakeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ccnode",
			Subsystem: "p2p",
			Name:      "handshake_failures_total",
			Help:      "Number of handshake packets that failed to process (bad session, decrypt, or nonce mismatch).",
		}),
	}
	reg.MustRegister(
		m.DoubleVotesReported,
		m.CacheHits,
		m.CacheMisses,
		m.ExtensionMessagesRouted,
		m.HandshakeFailures,
	)
	return m
}
