package models

import (
	"regexp"
	"slices"
	"strings"
)

var modelToken = regexp.MustCompile(`^[A-Za-z0-9._-]+/[A-Za-z0-9._:/-]+$`)

// Model is one "provider/model" entry.
type Model struct {
	FullName string `json:"full_name"`
	Provider string `json:"provider"`
	Name     string `json:"name"`
}

// ParseModel splits a "provider/model" token. Tokens outside the accepted
// character set report false.
func ParseModel(token string) (Model, bool) {
	token = strings.TrimSpace(token)
	if !modelToken.MatchString(token) {
		return Model{}, false
	}
	provider, name, _ := strings.Cut(token, "/")
	return Model{FullName: token, Provider: provider, Name: name}, true
}

// Names returns the full names of models in order.
func Names(models []Model) []string {
	names := make([]string, len(models))
	for i, m := range models {
		names[i] = m.FullName
	}
	return names
}

// SortDescending orders models by full name, case-insensitive, Z to A.
func SortDescending(models []Model) {
	slices.SortStableFunc(models, func(a, b Model) int {
		return strings.Compare(strings.ToLower(b.FullName), strings.ToLower(a.FullName))
	})
}

// Providers lists distinct providers, case-insensitive ascending.
func Providers(models []Model) []string {
	seen := map[string]struct{}{}
	var providers []string
	for _, m := range models {
		if m.Provider == "" {
			continue
		}
		if _, ok := seen[m.Provider]; ok {
			continue
		}
		seen[m.Provider] = struct{}{}
		providers = append(providers, m.Provider)
	}
	slices.SortStableFunc(providers, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})
	return providers
}

// ForProvider returns the models of one provider, Z to A.
func ForProvider(models []Model, provider string) []Model {
	var out []Model
	for _, m := range models {
		if m.Provider == provider {
			out = append(out, m)
		}
	}
	SortDescending(out)
	return out
}

// Filter keeps models whose full or short name contains query,
// case-insensitively. An empty query keeps everything.
func Filter(models []Model, query string) []Model {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return slices.Clone(models)
	}
	var out []Model
	for _, m := range models {
		if strings.Contains(strings.ToLower(m.FullName), query) || strings.Contains(strings.ToLower(m.Name), query) {
			out = append(out, m)
		}
	}
	return out
}

// ParseList extracts models from "openclaw models list --plain" output.
// Blank lines, comments and the header row are skipped and only the first
// column of each row is considered.
func ParseList(output string) []Model {
	var models []Model
	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "Model ") {
			continue
		}
		fields := strings.Fields(trimmed)
		if m, ok := ParseModel(fields[0]); ok {
			models = append(models, m)
		}
	}
	return models
}
