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

// Command ccnode runs a single permissioned-chain node: journal DB,
// account cache, vote collector, extension host and handshake engine
// wired together behind a cobra CLI.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ccnode/ccnode/consensus/tendermint"
	"github.com/ccnode/ccnode/core/state"
	"github.com/ccnode/ccnode/internal/config"
	"github.com/ccnode/ccnode/internal/logging"
	"github.com/ccnode/ccnode/journaldb"
	"github.com/ccnode/ccnode/metrics"
	"github.com/ccnode/ccnode/p2p/ext"
	"github.com/ccnode/ccnode/p2p/handshake"
)

// version is set at release time; left as a placeholder default here
// since this node has no release pipeline in this exercise.
var version = "dev"

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "ccnode",
		Short: "Run a permissioned-chain node",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "node.toml", "path to the node's TOML config file")
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(newVersionCommand())
	root.AddCommand(newRunCommand(&configPath))
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the node's version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(version)
			return nil
		},
	}
}

func newRunCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the node",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(afero.NewOsFs(), *configPath)
			if err != nil {
				return err
			}
			cfg = config.OverlayFlags(cfg, cmd.Flags())

			logger, err := logging.New(cfg.LogLevel)
			if err != nil {
				return err
			}
			defer logger.Sync()

			n, err := buildNode(cfg, logger, prometheus.DefaultRegisterer)
			if err != nil {
				return err
			}
			defer n.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			n.run(ctx)
			return nil
		},
	}
}

// node bundles the long-lived components run wires together, so Close can
// tear them all down in reverse order of construction.
type node struct {
	logger    *zap.Logger
	journal   journaldb.DB
	state     *state.StateDB
	votes     *tendermint.VoteCollector
	extHost   *ext.Host
	handshake *handshake.Engine
}

// run blocks until ctx is cancelled, driving the handshake engine's
// receive loop and connect-queue drain in the background.
func (n *node) run(ctx context.Context) {
	go n.handshake.RunReceiveLoop()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			n.logger.Info("ccnode shutting down")
			return
		case <-ticker.C:
			if err := n.handshake.DrainConnectQueue(); err != nil {
				n.logger.Warn("handshake connect queue drain failed", zap.Error(err))
			}
		}
	}
}

func (n *node) Close() {
	if n.handshake != nil {
		n.handshake.Close()
	}
	if n.extHost != nil {
		n.extHost.Close()
	}
	if n.journal != nil {
		n.journal.Close()
	}
}

// buildNode constructs every long-lived component from cfg, registering
// metrics against reg and logging through subsystem loggers derived from
// logger.
func buildNode(cfg config.Config, logger *zap.Logger, reg prometheus.Registerer) (*node, error) {
	m := metrics.New(reg)

	journal, err := journaldb.OpenBolt(cfg.DataDir + "/journal.bolt")
	if err != nil {
		return nil, fmt.Errorf("ccnode: open journal: %w", err)
	}

	stateDB, err := state.New(journal, cfg.CacheSizeBytes)
	if err != nil {
		journal.Close()
		return nil, fmt.Errorf("ccnode: new state db: %w", err)
	}
	stateDB.SetMetrics(m)

	votes := tendermint.NewVoteCollector()
	votes.SetMetrics(m)

	extHost := ext.NewHost(256, logging.Subsystem(logger, "ext"))
	extHost.SetMetrics(m)

	udpAddr, err := net.ResolveUDPAddr("udp", cfg.HandshakeAddr)
	if err != nil {
		journal.Close()
		return nil, fmt.Errorf("ccnode: resolve handshake addr: %w", err)
	}
	handshakeEngine, err := handshake.Bind(udpAddr, &noopConnectionSink{}, logging.Subsystem(logger, "handshake"))
	if err != nil {
		journal.Close()
		return nil, fmt.Errorf("ccnode: bind handshake: %w", err)
	}
	handshakeEngine.SetMetrics(m)

	return &node{
		logger:    logger,
		journal:   journal,
		state:     stateDB,
		votes:     votes,
		extHost:   extHost,
		handshake: handshakeEngine,
	}, nil
}

// noopConnectionSink is the placeholder connection-layer collaborator
// used until a full TCP connection manager is wired in; both of its
// methods do nothing.
type noopConnectionSink struct{}

func (noopConnectionSink) RegisterSession(peer handshake.SocketAddr, session *handshake.Session) {}
func (noopConnectionSink) RequestConnection(peer handshake.SocketAddr, session *handshake.Session) {
}
