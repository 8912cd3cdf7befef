package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"botdrop/internal/config"
)

// StateDirEnv overrides the default state directory when no flag is given.
const StateDirEnv = "BOTDROP_HOME"

// StatePaths captures canonical locations for botdrop's own state.
type StatePaths struct {
	Root       string
	ConfigFile string
	StoreFile  string
	LogsDir    string
	// OpenClawConfig is the agent configuration document the channel
	// commands edit.
	OpenClawConfig string
}

// Resolve determines the state root from the optional --state-dir flag, the
// BOTDROP_HOME environment variable, or ~/.botdrop, in that order.
func Resolve(stateFlag string) (StatePaths, error) {
	root := strings.TrimSpace(stateFlag)
	if root == "" {
		root = strings.TrimSpace(os.Getenv(StateDirEnv))
	}
	if root == "" {
		dir, err := GlobalDir()
		if err != nil {
			return StatePaths{}, err
		}
		root = dir
	}
	root, err := filepath.Abs(ExpandHome(root))
	if err != nil {
		return StatePaths{}, fmt.Errorf("resolve state root: %w", err)
	}
	return newStatePaths(root), nil
}

func newStatePaths(root string) StatePaths {
	return StatePaths{
		Root:           root,
		ConfigFile:     filepath.Join(root, "botdrop.yaml"),
		StoreFile:      filepath.Join(root, "state.json"),
		LogsDir:        filepath.Join(root, "logs"),
		OpenClawConfig: ExpandHome("~/.openclaw/openclaw.json"),
	}
}

// ApplyConfig applies path overrides from the loaded configuration. Relative
// values resolve against the state root.
func ApplyConfig(sp StatePaths, cfg config.Config) StatePaths {
	switch cfg.Store.Driver {
	case "sqlite":
		sp.StoreFile = filepath.Join(sp.Root, "state.db")
	case "memory":
		sp.StoreFile = ""
	}
	if store := strings.TrimSpace(cfg.Store.Path); store != "" && cfg.Store.Driver != "memory" {
		sp.StoreFile = resolveStatePath(sp.Root, store)
	}
	if doc := strings.TrimSpace(cfg.OpenClaw.ConfigFile); doc != "" {
		sp.OpenClawConfig = resolveStatePath(sp.Root, doc)
	}
	return sp
}

func resolveStatePath(root, value string) string {
	value = ExpandHome(value)
	if filepath.IsAbs(value) {
		return filepath.Clean(value)
	}
	return filepath.Join(root, value)
}

// ExpandHome replaces a leading "~" with the user's home directory. The value
// is returned unchanged when the home directory cannot be determined.
func ExpandHome(value string) string {
	if value != "~" && !strings.HasPrefix(value, "~/") {
		return value
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return value
	}
	if value == "~" {
		return home
	}
	return filepath.Join(home, value[2:])
}

// EnsureRoot makes sure the state root and logs directory exist on disk.
func (p StatePaths) EnsureRoot() error {
	for _, dir := range []string{p.Root, p.LogsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// GlobalDir returns the user-level botdrop directory (~/.botdrop) without
// creating it.
func GlobalDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("detect user home: %w", err)
	}
	return filepath.Join(home, ".botdrop"), nil
}

// FileExists reports whether a path exists and is a regular file.
func FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}
