package version

import "strings"

// DefaultToolPrefix is the package-spec prefix npm prints for the agent tool.
const DefaultToolPrefix = "openclaw@"

// Normalizer strips decoration from raw version strings before they are
// classified or compared.
type Normalizer struct {
	// ToolPrefix is removed from the front of a token when present, e.g.
	// "openclaw@". Empty disables prefix stripping.
	ToolPrefix string
}

var defaultNormalizer = Normalizer{ToolPrefix: DefaultToolPrefix}

// Normalize trims whitespace, one layer of quoting, the tool prefix and a
// leading "v". ok is false when nothing is left.
func (n Normalizer) Normalize(raw string) (string, bool) {
	v := strings.TrimSpace(raw)
	v = strings.TrimSpace(unquote(v))
	if n.ToolPrefix != "" && strings.HasPrefix(v, n.ToolPrefix) {
		v = strings.TrimSpace(v[len(n.ToolPrefix):])
	}
	if strings.HasPrefix(v, "v") {
		v = strings.TrimSpace(v[1:])
	}
	if v == "" {
		return "", false
	}
	return v, true
}

// InstallSpec returns the "<prefix><version>" package spec used by install
// commands, mapping the latest sentinel to "<prefix>latest".
func (n Normalizer) InstallSpec(raw string) (string, bool) {
	v, ok := n.Normalize(raw)
	if !ok {
		return "", false
	}
	return n.ToolPrefix + v, true
}

// Normalize applies the default normalizer (openclaw@ prefix).
func Normalize(raw string) (string, bool) {
	return defaultNormalizer.Normalize(raw)
}

// InstallSpec applies the default normalizer's InstallSpec.
func InstallSpec(raw string) (string, bool) {
	return defaultNormalizer.InstallSpec(raw)
}

// ClassifyStable reports whether a normalized token is a stable release:
// three integer components with no pre-release or build metadata.
func ClassifyStable(normalized string) bool {
	if normalized == "" || normalized == Latest {
		return false
	}
	if strings.ContainsAny(normalized, "-+") {
		return false
	}
	_, _, _, err := ParseStable(normalized)
	return err == nil
}

// IsAdmissible reports whether a normalized token may appear in a version
// list: either a stable release or the latest sentinel.
func IsAdmissible(normalized string) bool {
	return normalized == Latest || ClassifyStable(normalized)
}

func unquote(v string) string {
	if len(v) < 2 {
		return v
	}
	first, last := v[0], v[len(v)-1]
	if first == last && (first == '"' || first == '\'') {
		return v[1 : len(v)-1]
	}
	return v
}
