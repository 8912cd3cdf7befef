package models

import (
	"bufio"
	_ "embed"
	"fmt"
	"os"
	"strings"
)

//go:embed catalog/openclaw-models-all.keys
var bundledCatalog string

// Catalog supplies the static model list used when the agent cannot be
// asked.
type Catalog interface {
	Models() ([]Model, error)
}

// BundledCatalog is the list compiled into the binary.
type BundledCatalog struct{}

func (BundledCatalog) Models() ([]Model, error) {
	return parseCatalog(bundledCatalog), nil
}

// FileCatalog reads a newline-delimited "provider/model" file.
type FileCatalog struct {
	Path string
}

func (c FileCatalog) Models() ([]Model, error) {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return nil, fmt.Errorf("read model catalog: %w", err)
	}
	return parseCatalog(string(data)), nil
}

// CatalogFor returns a FileCatalog when path is set and the bundled one
// otherwise.
func CatalogFor(path string) Catalog {
	if strings.TrimSpace(path) == "" {
		return BundledCatalog{}
	}
	return FileCatalog{Path: path}
}

func parseCatalog(text string) []Model {
	var models []Model
	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		if m, ok := ParseModel(scanner.Text()); ok {
			models = append(models, m)
		}
	}
	return models
}
