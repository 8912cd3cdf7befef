// Package npm builds the shell command lines used to query and install the
// OpenClaw package. The strings are opaque to the resolvers that run them.
package npm

import (
	"strings"
)

const (
	// DefaultPackage is the npm package that ships the agent.
	DefaultPackage = "openclaw"

	// ModelsCommand lists every model the installed agent knows about.
	ModelsCommand = "openclaw models list --all --plain"

	// InstalledVersionCommand prints the installed agent version.
	InstalledVersionCommand = "openclaw --version"
)

// Commands builds npm command lines for one package.
type Commands struct {
	Package  string
	Registry RegistrySelector
}

// NewCommands returns builders for pkg using the given registry selection.
// A nil selector leaves npm's own registry configuration untouched.
func NewCommands(pkg string, registry RegistrySelector) Commands {
	if strings.TrimSpace(pkg) == "" {
		pkg = DefaultPackage
	}
	if registry == nil {
		registry = NoRegistry{}
	}
	return Commands{Package: pkg, Registry: registry}
}

func (c Commands) pkg() string {
	if c.Package == "" {
		return DefaultPackage
	}
	return c.Package
}

func (c Commands) prefix() string {
	if c.Registry == nil {
		return ""
	}
	return c.Registry.Prefix()
}

// Versions lists every published version as JSON.
func (c Commands) Versions() string {
	return c.prefix() + "npm view " + QuoteSingle(c.pkg()) + " versions --json"
}

// Latest prints the dist-tag latest version with whitespace removed.
func (c Commands) Latest() string {
	return "set -o pipefail; " + c.prefix() +
		"npm view " + QuoteSingle(c.pkg()) + " version 2>/dev/null | tail -1 | tr -d '[:space:]'"
}

// Install installs spec globally, e.g. "openclaw@2026.2.6". An empty spec
// installs "<package>@latest".
func (c Commands) Install(spec string) string {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		spec = c.pkg() + "@latest"
	}
	return c.prefix() + "npm install -g " + QuoteSingle(spec) + " --ignore-scripts --force"
}

// QuoteSingle wraps value in single quotes for sh, escaping embedded quotes.
func QuoteSingle(value string) string {
	if value == "" {
		return "''"
	}
	return "'" + strings.ReplaceAll(value, "'", `'"'"'`) + "'"
}
