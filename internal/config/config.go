package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Registry selection modes.
const (
	RegistryAuto  = "auto"
	RegistryFixed = "fixed"
	RegistryNone  = "none"
)

// Config captures the settings stored in botdrop.yaml.
type Config struct {
	Version  int            `yaml:"version"`
	OpenClaw OpenClawConfig `yaml:"openclaw"`
	Versions VersionsConfig `yaml:"versions"`
	Models   ModelsConfig   `yaml:"models"`
	Registry RegistryConfig `yaml:"registry"`
	Store    StoreConfig    `yaml:"store"`
	Log      LogConfig      `yaml:"log"`
}

// OpenClawConfig locates the agent and its configuration document.
type OpenClawConfig struct {
	ConfigFile string `yaml:"config_file"`
	Package    string `yaml:"package"`
	// InstalledVersion overrides the "openclaw --version" probe when set.
	InstalledVersion string `yaml:"installed_version"`
	Shell            string `yaml:"shell"`
}

// VersionsConfig tunes the version list resolver.
type VersionsConfig struct {
	CacheTTL       time.Duration `yaml:"cache_ttl"`
	CommandTimeout time.Duration `yaml:"command_timeout"`
}

// ModelsConfig tunes the model list resolver. A zero CacheTTL keeps cached
// lists until the agent version changes.
type ModelsConfig struct {
	CacheTTL      time.Duration `yaml:"cache_ttl"`
	MemoryEntries int           `yaml:"memory_entries"`
	CatalogFile   string        `yaml:"catalog_file"`
}

// RegistryConfig selects the npm registry used by generated commands.
type RegistryConfig struct {
	Mode     string        `yaml:"mode"`
	URL      string        `yaml:"url"`
	Default  string        `yaml:"default"`
	Mirror   string        `yaml:"mirror"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// StoreConfig picks the key-value backend for caches.
type StoreConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

// LogConfig controls the zerolog output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   *bool  `yaml:"file,omitempty"`
}

// FileEnabled reports whether logs go to the rotating file, defaulting to
// true.
func (l LogConfig) FileEnabled() bool {
	if l.File == nil {
		return true
	}
	return *l.File
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Version: 1,
		OpenClaw: OpenClawConfig{
			ConfigFile: "~/.openclaw/openclaw.json",
			Package:    "openclaw",
			Shell:      "bash",
		},
		Versions: VersionsConfig{
			CacheTTL:       time.Hour,
			CommandTimeout: 90 * time.Second,
		},
		Models: ModelsConfig{
			MemoryEntries: 8,
		},
		Registry: RegistryConfig{
			Mode:     RegistryAuto,
			Default:  "https://registry.npmjs.org/",
			Mirror:   "https://registry.npmmirror.com/",
			CacheTTL: 24 * time.Hour,
		},
		Store: StoreConfig{
			Driver: "file",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
			File:   boolPtr(true),
		},
	}
}

// Load reads the YAML configuration from disk if it exists, otherwise returns
// the default configuration.
func Load(path string) (Config, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			cfg.ApplyDefaults()
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults fills fields the YAML left empty or zeroed.
func (c *Config) ApplyDefaults() {
	defaults := Default()

	if c.Version == 0 {
		c.Version = defaults.Version
	}
	if strings.TrimSpace(c.OpenClaw.ConfigFile) == "" {
		c.OpenClaw.ConfigFile = defaults.OpenClaw.ConfigFile
	}
	if strings.TrimSpace(c.OpenClaw.Package) == "" {
		c.OpenClaw.Package = defaults.OpenClaw.Package
	}
	if strings.TrimSpace(c.OpenClaw.Shell) == "" {
		c.OpenClaw.Shell = defaults.OpenClaw.Shell
	}
	if c.Versions.CacheTTL == 0 {
		c.Versions.CacheTTL = defaults.Versions.CacheTTL
	}
	if c.Versions.CommandTimeout == 0 {
		c.Versions.CommandTimeout = defaults.Versions.CommandTimeout
	}
	if c.Models.MemoryEntries == 0 {
		c.Models.MemoryEntries = defaults.Models.MemoryEntries
	}
	c.Registry.Mode = strings.ToLower(strings.TrimSpace(c.Registry.Mode))
	if c.Registry.Mode == "" {
		c.Registry.Mode = defaults.Registry.Mode
	}
	if c.Registry.Default == "" {
		c.Registry.Default = defaults.Registry.Default
	}
	if c.Registry.Mirror == "" {
		c.Registry.Mirror = defaults.Registry.Mirror
	}
	if c.Registry.CacheTTL == 0 {
		c.Registry.CacheTTL = defaults.Registry.CacheTTL
	}
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	if c.Store.Driver == "" {
		c.Store.Driver = defaults.Store.Driver
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = defaults.Log.Format
	}
	if c.Log.File == nil {
		c.Log.File = boolPtr(true)
	}
}

// Marshal returns the YAML encoding of the configuration.
func (c Config) Marshal() ([]byte, error) {
	buf, err := yaml.Marshal(&c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return buf, nil
}

// Save writes the configuration to path, creating nothing but the file.
func (c Config) Save(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func boolPtr(v bool) *bool {
	return &v
}
