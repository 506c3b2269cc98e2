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

// Package config loads the node's TOML configuration file and overlays
// command-line flags on top of it, the same two-layer shape the corpus's
// cmd/ trees use.
package config

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
)

// Config is the node's full runtime configuration.
type Config struct {
	DataDir         string `toml:"data_dir"`
	P2PBindAddr     string `toml:"p2p_bind_addr"`
	HandshakeAddr   string `toml:"handshake_addr"`
	ValidatorKeyHex string `toml:"validator_key"`
	CacheSizeBytes  int    `toml:"cache_size_bytes"`
	LogLevel        string `toml:"log_level"`
}

// Default returns a Config with the node's baseline defaults, overlaid by
// Load/OverlayFlags rather than hardcoded everywhere a Config is built.
func Default() Config {
	return Config{
		DataDir:        "./data",
		P2PBindAddr:    "0.0.0.0:30303",
		HandshakeAddr:  "0.0.0.0:30304",
		CacheSizeBytes: 64 << 20,
		LogLevel:       "info",
	}
}

// Load reads and parses a TOML config file at path through fs, so tests
// can substitute an in-memory afero.Fs instead of touching disk.
func Load(fs afero.Fs, path string) (Config, error) {
	cfg := Default()
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// OverlayFlags applies any flags the user explicitly set on top of cfg,
// matching the corpus's "file provides defaults, flags override" layering.
func OverlayFlags(cfg Config, flags *pflag.FlagSet) Config {
	if v, err := flags.GetString("data-dir"); err == nil && flags.Changed("data-dir") {
		cfg.DataDir = v
	}
	if v, err := flags.GetString("p2p-bind-addr"); err == nil && flags.Changed("p2p-bind-addr") {
		cfg.P2PBindAddr = v
	}
	if v, err := flags.GetString("handshake-addr"); err == nil && flags.Changed("handshake-addr") {
		cfg.HandshakeAddr = v
	}
	if v, err := flags.GetInt("cache-size-bytes"); err == nil && flags.Changed("cache-size-bytes") {
		cfg.CacheSizeBytes = v
	}
	if v, err := flags.GetString("log-level"); err == nil && flags.Changed("log-level") {
		cfg.LogLevel = v
	}
	return cfg
}

// RegisterFlags adds the flags OverlayFlags knows how to read to flags.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("data-dir", "", "node data directory")
	flags.String("p2p-bind-addr", "", "P2P bind address")
	flags.String("handshake-addr", "", "handshake UDP bind address")
	flags.Int("cache-size-bytes", 0, "account cache budget in bytes")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
}
