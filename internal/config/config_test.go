package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadFile_DefaultsAndOverrides(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "config.test.yaml")
	req.NoError(os.WriteFile(path, []byte("port: 9090\nsecret: from-file\nbadger_in_memory: true\n"), 0o600))
	t.Setenv("CHAT_RATE_LIMIT", "3")

	cfg, err := LoadFile(path)
	req.NoError(err)

	req.Equal(9090, cfg.Port)
	req.Equal("from-file", cfg.Secret)
	req.True(cfg.BadgerInMemory)
	req.Equal(3, cfg.RateLimit)
	req.Equal(54*time.Second, cfg.PingPeriod)
	req.Equal(50, cfg.HistoryLimit)
	req.Equal(2000, cfg.MaxMessageLength)
	req.Equal(24*time.Hour, cfg.TokenTTL)
}

func TestLoadFile_RequiresSecret(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoadFile_SecretFromEnv(t *testing.T) {
	req := require.New(t)
	t.Setenv("CHAT_SECRET", "from-env")

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	req.NoError(err)
	req.Equal("from-env", cfg.Secret)
	req.Equal("release", cfg.Mode)
}
