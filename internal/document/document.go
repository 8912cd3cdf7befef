// Package document reads and writes the agent's JSON configuration file
// while leaving keys it does not understand untouched.
package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	json5 "github.com/yosuke-furukawa/json5/encoding/json5"
)

const (
	defaultDirName  = ".openclaw"
	defaultFileName = "openclaw.json"
)

// ErrInvalidDocument is returned when the file exists but is neither JSON
// nor JSON5, or its top level is not an object.
var ErrInvalidDocument = errors.New("invalid configuration document")

// Document is the decoded top-level JSON object. Numbers decoded from strict
// JSON are json.Number so they round-trip unchanged.
type Document map[string]any

// ResolvePath expands "~" and falls back to ~/.openclaw/openclaw.json.
func ResolvePath(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed != "" {
		if strings.HasPrefix(trimmed, "~") {
			if home, err := os.UserHomeDir(); err == nil && strings.TrimSpace(home) != "" {
				return filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
			}
		}
		return filepath.Clean(trimmed)
	}
	home, err := os.UserHomeDir()
	if err != nil || strings.TrimSpace(home) == "" {
		return filepath.Join(os.TempDir(), "openclaw", defaultFileName)
	}
	return filepath.Join(home, defaultDirName, defaultFileName)
}

// Store is one configuration file on disk.
type Store struct {
	path string
}

// NewStore returns a store for path (see ResolvePath).
func NewStore(path string) *Store {
	return &Store{path: ResolvePath(path)}
}

// Path returns the resolved file path.
func (s *Store) Path() string { return s.path }

// Read loads the document. A missing or blank file is an empty document.
func (s *Store) Read() (Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Document{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	return Decode(data)
}

// Decode parses strict JSON first and retries as JSON5 so hand-edited files
// with comments or trailing commas still load.
func Decode(data []byte) (Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Document{}, nil
	}

	var doc Document
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	strictErr := dec.Decode(&doc)
	if strictErr == nil && dec.More() {
		strictErr = errors.New("trailing data after top-level object")
	}
	if strictErr != nil {
		doc = nil
		lenient := json5.NewDecoder(bytes.NewReader(data))
		lenient.UseNumber()
		if err := lenient.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, strictErr)
		}
		for k, v := range doc {
			doc[k] = fromJSON5(v)
		}
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: top level is not an object", ErrInvalidDocument)
	}
	return doc, nil
}

// fromJSON5 swaps json5.Number for json.Number throughout a decoded tree so
// numbers are written back with their original digits.
func fromJSON5(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			t[k] = fromJSON5(child)
		}
		return t
	case []any:
		for i, child := range t {
			t[i] = fromJSON5(child)
		}
		return t
	case json5.Number:
		return jsonNumber(string(t))
	default:
		return v
	}
}

// jsonNumber keeps literals that are already valid JSON numbers verbatim.
// JSON5-only forms such as hex or a leading "+" are rewritten in decimal.
func jsonNumber(literal string) any {
	if json.Valid([]byte(literal)) && literal != "" && literal[0] != '+' {
		return json.Number(literal)
	}
	if n, err := strconv.ParseInt(literal, 0, 64); err == nil {
		return json.Number(strconv.FormatInt(n, 10))
	}
	if f, err := strconv.ParseFloat(literal, 64); err == nil {
		return f
	}
	return literal
}

// Write replaces the file atomically. The previous contents, when present,
// are kept next to it with a .bak suffix.
func (s *Store) Write(doc Document) error {
	if doc == nil {
		doc = Document{}
	}
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	payload = append(payload, '\n')

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("ensure config dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o600); err != nil {
		return fmt.Errorf("write temp document: %w", err)
	}

	if prev, err := os.ReadFile(s.path); err == nil {
		_ = os.WriteFile(s.path+".bak", prev, 0o600)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace document: %w", err)
	}
	return nil
}
