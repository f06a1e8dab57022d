package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrei-cloud/go_pool/internal/config"
	"github.com/andrei-cloud/go_pool/internal/entity"
	"github.com/andrei-cloud/go_pool/internal/preset"
)

func TestNewFactory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shooter.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
categories:
  - name: asteroid
    capacity: 2
    prototype: rock
`), 0o600))

	cfg := &config.Config{}
	cfg.Pool.UsePreset = true
	cfg.Pool.EnforcePooling = true
	cfg.Pool.Presets = []string{path}
	cfg.Pool.Categories = []preset.Entry{{Name: "laser", Capacity: 3, Prototype: "laser"}}
	catalog := entity.NewCatalog("laser", "rock")

	m, err := NewFactory(cfg, catalog, nil, nil)()
	require.NoError(t, err)
	require.NoError(t, m.Start())
	defer m.Shutdown()

	assert.True(t, m.Policy().EnforcePooling)
	require.Equal(t, 2, m.Registry().Len())
	assert.Equal(t, "asteroid", m.Registry().Categories()[0].Name())
	assert.Equal(t, 3, m.Registry().Find("laser").Free())
}

func TestNewFactory_PresetsDisabled(t *testing.T) {
	cfg := &config.Config{}
	cfg.Pool.Presets = []string{filepath.Join(t.TempDir(), "missing.yaml")}

	m, err := NewFactory(cfg, entity.NewCatalog(), nil, nil)()
	require.NoError(t, err)
	require.NoError(t, m.Start())
	assert.Zero(t, m.Registry().Len())
}

func TestNewFactory_UnknownPrototype(t *testing.T) {
	cfg := &config.Config{}
	cfg.Pool.Categories = []preset.Entry{{Name: "laser", Capacity: 3, Prototype: "laser"}}

	_, err := NewFactory(cfg, entity.NewCatalog(), nil, nil)()
	assert.ErrorIs(t, err, preset.ErrUnknownPrototype)
}

func TestNewRedisStore(t *testing.T) {
	cfg := &config.Config{}
	assert.Nil(t, NewRedisStore(cfg))

	cfg.Redis.Addr = "127.0.0.1:6379"
	assert.NotNil(t, NewRedisStore(cfg))
}
