package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func TestLoadParsesTOMLOverDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()
	err := afero.WriteFile(fs, "/node.toml", []byte(`
data_dir = "/var/lib/ccnode"
cache_size_bytes = 1048576
`), 0o644)
	require.NoError(t, err)

	cfg, err := Load(fs, "/node.toml")
	require.NoError(t, err)
	require.Equal(t, "/var/lib/ccnode", cfg.DataDir)
	require.Equal(t, 1048576, cfg.CacheSizeBytes)
	require.Equal(t, "info", cfg.LogLevel)
}

func TestLoadMissingFileFails(t *testing.T) {
	fs := afero.NewMemMapFs()
	_, err := Load(fs, "/missing.toml")
	require.Error(t, err)
}

func TestOverlayFlagsOnlyAppliesChangedFlags(t *testing.T) {
	cfg := Default()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(flags)
	require.NoError(t, flags.Parse([]string{"--log-level=debug"}))

	overlaid := OverlayFlags(cfg, flags)
	require.Equal(t, "debug", overlaid.LogLevel)
	require.Equal(t, cfg.DataDir, overlaid.DataDir)
}
