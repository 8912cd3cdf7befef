package version

import (
	"encoding/json"
	"regexp"
	"slices"
	"strings"
)

// ListLimit caps every ranked version list.
const ListLimit = 20

var lineSplit = regexp.MustCompile(`\r?\n`)

// SortAndLimit normalizes tokens, drops empties and duplicates, orders the
// remainder with CompareDescending and keeps at most ListLimit entries.
func SortAndLimit(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	unique := make([]string, 0, len(tokens))
	for _, token := range tokens {
		normalized, ok := Normalize(token)
		if !ok {
			continue
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}
		unique = append(unique, normalized)
	}

	slices.SortStableFunc(unique, CompareDescending)
	if len(unique) > ListLimit {
		unique = unique[:ListLimit]
	}
	return unique
}

// NormalizeList keeps only admissible tokens (stable or latest) and ranks
// them.
func NormalizeList(tokens []string) []string {
	admissible := make([]string, 0, len(tokens))
	for _, token := range tokens {
		normalized, ok := Normalize(token)
		if ok && IsAdmissible(normalized) {
			admissible = append(admissible, normalized)
		}
	}
	return SortAndLimit(admissible)
}

// ParseOutput extracts a ranked version list from registry output. A JSON
// array (or single JSON string) is tried first; when it yields no stable
// release the output is re-read one token per line.
func ParseOutput(output string) []string {
	trimmed := strings.TrimSpace(output)
	if trimmed == "" {
		return []string{}
	}

	if fromJSON := parseJSONTokens(trimmed); countStable(fromJSON) > 0 {
		return SortAndLimit(fromJSON)
	}

	var fromLines []string
	for _, line := range lineSplit.Split(trimmed, -1) {
		normalized, ok := Normalize(line)
		if ok && IsAdmissible(normalized) {
			fromLines = append(fromLines, normalized)
		}
	}
	return SortAndLimit(fromLines)
}

// Fallback builds the minimal list used when neither the registry nor the
// cache produced anything: latest plus the installed version when it is a
// stable release.
func Fallback(currentVersion string) []string {
	tokens := []string{Latest}
	if current, ok := Normalize(currentVersion); ok && ClassifyStable(current) {
		tokens = append(tokens, current)
	}
	return SortAndLimit(tokens)
}

// WithInstalled makes sure the installed version is offered alongside the
// resolved list.
func WithInstalled(versions []string, installed string) []string {
	current, ok := Normalize(installed)
	if !ok || slices.Contains(versions, current) {
		return versions
	}
	return SortAndLimit(append(slices.Clone(versions), current))
}

func parseJSONTokens(trimmed string) []string {
	var tokens []string
	switch trimmed[0] {
	case '[':
		var items []any
		if err := json.Unmarshal([]byte(trimmed), &items); err != nil {
			return nil
		}
		for _, item := range items {
			s, ok := item.(string)
			if !ok {
				continue
			}
			if normalized, ok := Normalize(s); ok && IsAdmissible(normalized) {
				tokens = append(tokens, normalized)
			}
		}
	case '"':
		// npm prints a bare string when only one version is published.
		var single string
		if err := json.Unmarshal([]byte(trimmed), &single); err != nil {
			return nil
		}
		if normalized, ok := Normalize(single); ok && IsAdmissible(normalized) {
			tokens = append(tokens, normalized)
		}
	}
	return tokens
}

func countStable(tokens []string) int {
	n := 0
	for _, token := range tokens {
		if ClassifyStable(token) {
			n++
		}
	}
	return n
}
