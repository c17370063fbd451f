package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Server.Address)
	require.Equal(t, "mongo", cfg.Database.Driver)
	require.Equal(t, 5*time.Minute, cfg.Catalog.CacheTTL)
	require.Equal(t, time.Hour, cfg.JWT.Expiration)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte("database:\n  driver: memory\njwt:\n  secret: file-secret\n  expiration: 30m\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))
	t.Setenv("JWT_SECRET", "env-secret")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	require.Equal(t, "memory", cfg.Database.Driver)
	require.Equal(t, "env-secret", cfg.JWT.Secret)
	require.Equal(t, 30*time.Minute, cfg.JWT.Expiration)
}
