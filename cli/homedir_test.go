package cli

import (
	"path/filepath"
	"testing"

	"dxf/config"
	"dxf/testutil/testfs"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func homeCmd(home string) *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Flags().String(FlagHome, home, "")
	return cmd
}

func TestHomeDir(t *testing.T) {
	dir, done := testfs.NewTempDir(t)
	defer done()
	home := filepath.Join(dir, "home")
	cmd := homeCmd(home)

	cfg, err := LoadConfig(cmd)
	require.NoError(t, err)
	require.Equal(t, config.DefaultConfig, *cfg)

	got, err := InitHomeDir(cmd)
	require.NoError(t, err)
	require.Equal(t, home, got)
	_, err = InitHomeDir(cmd)
	require.Error(t, err)

	cfg, err = LoadConfig(cmd)
	require.NoError(t, err)
	require.Equal(t, "R2000", cfg.Codec.Version)
	require.Equal(t, 4, cfg.Batch.Workers)
}

func TestApplyConfig(t *testing.T) {
	cfg := config.DefaultConfig
	cfg.LogLevel = "loud"
	require.Error(t, ApplyConfig(&cfg))

	cfg = config.DefaultConfig
	cfg.LogFormat = "xml"
	require.Error(t, ApplyConfig(&cfg))
}
