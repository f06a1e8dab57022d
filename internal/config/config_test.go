package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrei-cloud/go_pool/internal/preset"
)

const testConfig = `
server:
  host: 0.0.0.0
  port: 1700
host:
  tick_rate: 20ms
pool:
  enforce_pooling: true
  detach_on_acquire: true
  presets:
    - presets/shooter.yaml
  categories:
    - name: laser
      capacity: 16
      prototype: laser
redis:
  addr: localhost:6379
catalog:
  - laser
  - rock
`

func writeConfig(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o600))
	return path
}

func TestInitialize_File(t *testing.T) {
	require.NoError(t, Initialize(writeConfig(t)))
	cfg := Get()

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 1700, cfg.Server.Port)
	assert.Equal(t, 20*time.Millisecond, cfg.Host.TickRate)
	assert.Equal(t, []string{"presets/shooter.yaml"}, cfg.Pool.Presets)
	assert.Equal(t, []preset.Entry{{Name: "laser", Capacity: 16, Prototype: "laser"}}, cfg.Pool.Categories)
	assert.Equal(t, []string{"laser", "rock"}, cfg.Catalog)
	assert.Equal(t, "gopool:preset", cfg.Redis.Prefix)

	p := cfg.Policy()
	assert.True(t, p.EnforcePooling)
	assert.True(t, p.DetachOnAcquire)
	assert.True(t, p.UsePreset, "default")
	assert.False(t, p.AllowInstantiation)
}

func TestInitialize_EnvAndFlags(t *testing.T) {
	t.Setenv("GOPOOL_POOL_ALLOW_INSTANTIATION", "true")
	t.Setenv("GOPOOL_SERVER_PORT", "1800")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("log-level", "info", "")
	require.NoError(t, fs.Parse([]string{"--log-level", "debug"}))
	BindPFlag("log.level", fs.Lookup("log-level"))
	t.Cleanup(func() { delete(bindings, "log.level") })

	require.NoError(t, Initialize(writeConfig(t)))
	cfg := Get()

	assert.True(t, cfg.Policy().AllowInstantiation)
	assert.Equal(t, 1800, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "debug", GetViper().GetString("log.level"))
}

func TestInitialize_DefaultFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())

	require.NoError(t, Initialize(""))
	assert.FileExists(t, filepath.Join(home, ".go_pool", "config.yaml"))
	assert.Equal(t, 1600, Get().Server.Port)
	assert.Equal(t, 50*time.Millisecond, Get().Host.TickRate)
}

func TestInitialize_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o600))

	assert.Error(t, Initialize(path))
}
