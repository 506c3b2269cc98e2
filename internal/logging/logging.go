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

// Package logging sets up the node's structured loggers: one zap.Logger
// per subsystem, all sharing a level configured once at startup.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a production zap.Logger at the given level ("debug", "info",
// "warn", or "error").
func New(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("logging: invalid level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	cfg.EncoderConfig.TimeKey = "ts"
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: build logger: %w", err)
	}
	return logger, nil
}

// Subsystem returns a child logger tagged with name, matching the
// "one logger per subsystem" convention: every log line from a subsystem's
// logger carries a "subsystem" field for free.
func Subsystem(base *zap.Logger, name string) *zap.Logger {
	return base.With(zap.String("subsystem", name))
}
