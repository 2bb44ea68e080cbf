package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(nil, env(nil))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "50302", cfg.Server.Port)
	assert.Equal(t, 100*time.Millisecond, cfg.Storage.Debounce)
	assert.Equal(t, 2*time.Second, cfg.Checkout.PaymentDelay)
	assert.Equal(t, 30*time.Minute, cfg.Sessions.IdleTimeout)
}

func TestLoad_FileThenEnvThenFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "6000"
  http_port: "6001"
storage:
  backend: sqlite
  path: /tmp/from-file.db
  debounce: 250ms
checkout:
  payment_delay: 10ms
  fail_every: 3
sessions:
  idle_timeout: 0s
log:
  development: true
`), 0o644))

	cfg, err := Load([]string{"--config", path, "--http-port", "7001"}, env(map[string]string{
		EnvPort:        "7000",
		EnvStoragePath: "/tmp/from-env.db",
	}))
	require.NoError(t, err)

	assert.Equal(t, "7000", cfg.Server.Port)
	assert.Equal(t, "7001", cfg.Server.HTTPPort)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "/tmp/from-env.db", cfg.Storage.Path)
	assert.Equal(t, 250*time.Millisecond, cfg.Storage.Debounce)
	assert.Equal(t, 10*time.Millisecond, cfg.Checkout.PaymentDelay)
	assert.Equal(t, 3, cfg.Checkout.FailEvery)
	assert.Zero(t, cfg.Sessions.IdleTimeout)
	assert.True(t, cfg.Log.Development)
}

func TestLoadFile_PartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: \"9\"\n"), 0o644))
	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "9", cfg.Server.Port)
	assert.Equal(t, DefaultHTTPPort, cfg.Server.HTTPPort)
	assert.Equal(t, DefaultDebounce, cfg.Storage.Debounce)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}, env(nil))
	assert.Error(t, err)

	_, err = Load(nil, env(map[string]string{EnvStorage: "file"}))
	assert.ErrorContains(t, err, "needs a path")

	_, err = Load(nil, env(map[string]string{EnvStorage: "redis"}))
	assert.ErrorContains(t, err, "unknown storage backend")

	_, err = Load([]string{"--bogus"}, env(nil))
	assert.Error(t, err)

	_, err = Load([]string{"--help"}, env(nil))
	assert.True(t, errors.Is(err, pflag.ErrHelp))
}
