package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"botdrop/internal/version"
)

// ValidationResult captures a single validation finding.
type ValidationResult struct {
	Level   string `json:"level"` // "error" or "warning"
	Message string `json:"message"`
}

// HasErrors reports whether any result is an error.
func HasErrors(results []ValidationResult) bool {
	for _, r := range results {
		if r.Level == "error" {
			return true
		}
	}
	return false
}

// Validate checks the configuration and returns every finding.
func (c Config) Validate() []ValidationResult {
	var results []ValidationResult
	results = append(results, c.validateRegistry()...)
	results = append(results, c.validateStore()...)
	results = append(results, c.validateLog()...)
	results = append(results, c.validateTimings()...)
	results = append(results, c.validateOpenClaw()...)
	return results
}

func errorf(format string, args ...any) ValidationResult {
	return ValidationResult{Level: "error", Message: fmt.Sprintf(format, args...)}
}

func warnf(format string, args ...any) ValidationResult {
	return ValidationResult{Level: "warning", Message: fmt.Sprintf(format, args...)}
}

func isHTTPURL(v string) bool {
	return strings.HasPrefix(v, "http://") || strings.HasPrefix(v, "https://")
}

func (c Config) validateRegistry() []ValidationResult {
	var results []ValidationResult
	switch c.Registry.Mode {
	case RegistryAuto:
		if !isHTTPURL(c.Registry.Default) {
			results = append(results, errorf("registry.default %q is not an http(s) URL", c.Registry.Default))
		}
		if !isHTTPURL(c.Registry.Mirror) {
			results = append(results, errorf("registry.mirror %q is not an http(s) URL", c.Registry.Mirror))
		}
	case RegistryFixed:
		if !isHTTPURL(strings.TrimSpace(c.Registry.URL)) {
			results = append(results, errorf("registry.url is required for fixed mode and must be an http(s) URL"))
		}
	case RegistryNone:
		if c.Registry.URL != "" {
			results = append(results, warnf("registry.url is ignored when registry.mode is none"))
		}
	default:
		results = append(results, errorf("registry.mode %q must be one of auto, fixed, none", c.Registry.Mode))
	}
	if c.Registry.CacheTTL < 0 {
		results = append(results, errorf("registry.cache_ttl must not be negative"))
	}
	return results
}

func (c Config) validateStore() []ValidationResult {
	switch c.Store.Driver {
	case "file", "sqlite", "memory":
		if c.Store.Driver == "memory" {
			return []ValidationResult{warnf("store.driver memory keeps no cache between runs")}
		}
		return nil
	default:
		return []ValidationResult{errorf("store.driver %q must be one of file, sqlite, memory", c.Store.Driver)}
	}
}

func (c Config) validateLog() []ValidationResult {
	var results []ValidationResult
	if _, err := zerolog.ParseLevel(strings.ToLower(c.Log.Level)); err != nil {
		results = append(results, errorf("log.level %q is not a valid level", c.Log.Level))
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		results = append(results, errorf("log.format %q must be console or json", c.Log.Format))
	}
	return results
}

func (c Config) validateTimings() []ValidationResult {
	var results []ValidationResult
	if c.Versions.CacheTTL < 0 {
		results = append(results, errorf("versions.cache_ttl must not be negative"))
	}
	if c.Versions.CommandTimeout <= 0 {
		results = append(results, errorf("versions.command_timeout must be positive"))
	}
	if c.Models.CacheTTL < 0 {
		results = append(results, errorf("models.cache_ttl must not be negative"))
	}
	if c.Models.MemoryEntries < 1 {
		results = append(results, errorf("models.memory_entries must be at least 1"))
	}
	return results
}

func (c Config) validateOpenClaw() []ValidationResult {
	var results []ValidationResult
	if v := strings.TrimSpace(c.OpenClaw.InstalledVersion); v != "" {
		if normalized, ok := version.Normalize(v); !ok || !version.ClassifyStable(normalized) {
			results = append(results, warnf("openclaw.installed_version %q is not a stable release", v))
		}
	}
	if path := strings.TrimSpace(c.Models.CatalogFile); path != "" {
		if _, err := os.Stat(path); err != nil {
			results = append(results, warnf("models.catalog_file %q not found; the bundled catalog will be used", path))
		}
	}
	return results
}
