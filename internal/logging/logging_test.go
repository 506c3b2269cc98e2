package logging

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewAcceptsValidLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		logger, err := New(level)
		require.NoError(t, err)
		require.NotNil(t, logger)
	}
}

func TestNewRejectsInvalidLevel(t *testing.T) {
	_, err := New("not-a-level")
	require.Error(t, err)
}

func TestSubsystemAddsField(t *testing.T) {
	base, err := New("info")
	require.NoError(t, err)
	sub := Subsystem(base, "handshake")
	require.NotNil(t, sub)

	core, logs := observer.New(zapcore.InfoLevel)
	Subsystem(zap.New(core), "handshake").Info("hello")
	require.Equal(t, 1, logs.Len())
	require.Equal(t, "handshake", logs.All()[0].ContextMap()["subsystem"])
}
