package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storeroom/pkg/catalog"
)

func TestDefault(t *testing.T) {
	c, err := catalog.Default()
	require.NoError(t, err)

	items := c.Items()
	require.Len(t, items, 6)
	assert.Equal(t, "Office Supplies", items[0].Name)

	item, ok := c.Lookup("6")
	require.True(t, ok)
	assert.Equal(t, "Cleaning Supplies", item.Name)
	assert.Equal(t, 15, item.Threshold())
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{name: "valid", doc: "items:\n  - id: a\n    name: Alpha\n"},
		{name: "empty", doc: "items: []\n", wantErr: "no items"},
		{name: "missing name", doc: "items:\n  - id: a\n", wantErr: "id and name are required"},
		{name: "duplicate id", doc: "items:\n  - id: a\n    name: Alpha\n  - id: a\n    name: Beta\n", wantErr: "duplicate id"},
		{name: "duplicate name", doc: "items:\n  - id: a\n    name: Alpha\n  - id: b\n    name: alpha\n", wantErr: "duplicate name"},
		{name: "negative threshold", doc: "items:\n  - id: a\n    name: Alpha\n    low_stock_threshold: -1\n", wantErr: "must not be negative"},
		{name: "not yaml", doc: "items: [", wantErr: "yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := catalog.Parse([]byte(tt.doc))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			item, ok := c.Lookup("a")
			require.True(t, ok)
			assert.Equal(t, 10, item.Threshold())
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.yaml")
	require.NoError(t, os.WriteFile(path, []byte("items:\n  - id: x\n    name: Toner\n    low_stock_threshold: 2\n"), 0o644))

	c, err := catalog.Load(path)
	require.NoError(t, err)
	item, ok := c.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, 2, item.Threshold())

	_, err = catalog.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	c, err = catalog.Load("")
	require.NoError(t, err)
	assert.Len(t, c.Items(), 6)
}
