// Package catalog loads the item catalog a session starts with.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"storeroom/pkg/ledger"
)

//go:embed default.yaml
var defaultCatalog []byte

type document struct {
	Items []entry `yaml:"items"`
}

type entry struct {
	ID                string `yaml:"id"`
	Name              string `yaml:"name"`
	Description       string `yaml:"description"`
	LowStockThreshold int    `yaml:"low_stock_threshold"`
}

// Default returns the built-in catalog.
func Default() (*ledger.Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog file; an empty path selects the built-in catalog.
func Load(path string) (*ledger.Catalog, error) {
	const op = "catalog.Load"

	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", op, path, err)
	}
	return c, nil
}

// Parse decodes a YAML catalog and rejects empty or duplicate ids and names.
func Parse(data []byte) (*ledger.Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Items) == 0 {
		return nil, errors.New("catalog has no items")
	}

	ids := make(map[string]struct{}, len(doc.Items))
	names := make(map[string]struct{}, len(doc.Items))
	items := make([]ledger.Item, 0, len(doc.Items))
	for i, e := range doc.Items {
		id := strings.TrimSpace(e.ID)
		name := strings.TrimSpace(e.Name)
		if id == "" || name == "" {
			return nil, fmt.Errorf("item %d: id and name are required", i+1)
		}
		if _, dup := ids[id]; dup {
			return nil, fmt.Errorf("item %d: duplicate id %q", i+1, id)
		}
		if _, dup := names[strings.ToLower(name)]; dup {
			return nil, fmt.Errorf("item %d: duplicate name %q", i+1, name)
		}
		if e.LowStockThreshold < 0 {
			return nil, fmt.Errorf("item %d: low_stock_threshold must not be negative", i+1)
		}
		ids[id] = struct{}{}
		names[strings.ToLower(name)] = struct{}{}
		items = append(items, ledger.Item{
			ID:                id,
			Name:              name,
			Description:       strings.TrimSpace(e.Description),
			LowStockThreshold: e.LowStockThreshold,
		})
	}
	return ledger.NewCatalog(items), nil
}
