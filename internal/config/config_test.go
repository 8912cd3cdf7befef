package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLoadMissingReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "botdrop.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Empty(t, cfg.Validate())
}

func TestLoadOverridesAndFillsGaps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "botdrop.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
openclaw:
  config_file: /data/openclaw.json
versions:
  cache_ttl: 30m
registry:
  mode: FIXED
  url: https://registry.example.com/
store:
  driver: sqlite
log:
  file: false
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/openclaw.json", cfg.OpenClaw.ConfigFile)
	assert.Equal(t, "openclaw", cfg.OpenClaw.Package)
	assert.Equal(t, 30*time.Minute, cfg.Versions.CacheTTL)
	assert.Equal(t, 90*time.Second, cfg.Versions.CommandTimeout)
	assert.Equal(t, RegistryFixed, cfg.Registry.Mode)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.False(t, cfg.Log.FileEnabled())
	assert.Empty(t, cfg.Validate())
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "botdrop.yaml")
	require.NoError(t, os.WriteFile(path, []byte("versions: [unterminated"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
}

func TestMarshalWritesDurationsAsStrings(t *testing.T) {
	data, err := Default().Marshal()
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, yaml.Unmarshal(data, &raw))
	versions := raw["versions"].(map[string]any)
	assert.Equal(t, "1h0m0s", versions["cache_ttl"])

	path := filepath.Join(t.TempDir(), "botdrop.yaml")
	require.NoError(t, Default().Save(path))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestFileEnabledDefault(t *testing.T) {
	assert.True(t, LogConfig{}.FileEnabled())
	assert.False(t, LogConfig{File: boolPtr(false)}.FileEnabled())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		level  string
		substr string
	}{
		{"unknown registry mode", func(c *Config) { c.Registry.Mode = "proxy" }, "error", "registry.mode"},
		{"fixed without url", func(c *Config) { c.Registry.Mode = RegistryFixed }, "error", "registry.url"},
		{"none with url", func(c *Config) { c.Registry.Mode = RegistryNone; c.Registry.URL = "https://x/" }, "warning", "ignored"},
		{"bad mirror", func(c *Config) { c.Registry.Mirror = "ftp://mirror" }, "error", "registry.mirror"},
		{"bad driver", func(c *Config) { c.Store.Driver = "redis" }, "error", "store.driver"},
		{"memory driver", func(c *Config) { c.Store.Driver = "memory" }, "warning", "memory"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "error", "log.level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "error", "log.format"},
		{"zero timeout", func(c *Config) { c.Versions.CommandTimeout = -time.Second }, "error", "command_timeout"},
		{"pre-release override", func(c *Config) { c.OpenClaw.InstalledVersion = "2.0.0-beta" }, "warning", "installed_version"},
		{"missing catalog", func(c *Config) { c.Models.CatalogFile = "/nonexistent/models.keys" }, "warning", "catalog_file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			results := cfg.Validate()
			require.Len(t, results, 1, "%v", results)
			assert.Equal(t, tt.level, results[0].Level)
			assert.Contains(t, results[0].Message, tt.substr)
			assert.Equal(t, tt.level == "error", HasErrors(results))
		})
	}
}
