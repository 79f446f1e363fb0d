package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  listen: ":9090"
zkproof:
  range_check_strategy: bits
oracle:
  ttl: 30s
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.Server.Listen)
	require.Equal(t, "bits", cfg.ZKProof.RangeCheckStrategy)
	require.Equal(t, 30*time.Second, cfg.Oracle.TTL.Std())
	// untouched values keep their defaults
	require.Equal(t, "poseidon2", cfg.ZKProof.CommitmentScheme)
	require.Equal(t, 18, cfg.ZKProof.CapacityLog2)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PRIVLEND_LISTEN", ":7070")
	t.Setenv("PRIVLEND_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, ":7070", cfg.Server.Listen)
	require.Equal(t, "debug", cfg.Log.Level)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Default()
	cfg.Server.Listen = ""
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.ZKProof.CapacityLog2 = 40
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Oracle.Symbol = ""
	require.Error(t, cfg.Validate())
}
