package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptorFromEntry_BuildsFullDescriptor(t *testing.T) {
	descriptor, ok := DescriptorFromEntry(map[string]any{
		"plugin_file": "plugin-a/plugin-a.php",
		"version":     "2.0",
		"slug":        "plugin-a",
		"package":     "https://updates.example.com/packages/plugin-a.zip",
		"requires":    "6.0",
		"tested":      "6.4",
		"sections":    map[string]any{"description": "A plugin."},
		"icons":       map[string]any{"1x": "https://x/icon.png"},
		"homepage":    "https://example.com/plugin-a",
	})

	require.True(t, ok)
	assert.Equal(t, "plugin-a/plugin-a.php", descriptor.PluginFile)
	assert.Equal(t, "plugin-a", descriptor.Slug)
	assert.Equal(t, "2.0", descriptor.NewVersion)
	assert.Equal(t, "https://updates.example.com/packages/plugin-a.zip", descriptor.Package)
	assert.Equal(t, "6.0", descriptor.Requires)
	assert.Equal(t, "6.4", descriptor.Tested)
	assert.Equal(t, map[string]string{"description": "A plugin."}, descriptor.Sections)
	assert.Equal(t, map[string]string{"1x": "https://x/icon.png"}, descriptor.Icons)
	assert.Equal(t, "https://example.com/plugin-a", descriptor.Homepage)
}

func TestDescriptorFromEntry_SlugFallsBackToDirectory(t *testing.T) {
	descriptor, ok := DescriptorFromEntry(map[string]any{
		"plugin_file": "plugin-b/plugin-b.php",
		"version":     "1.1",
	})

	require.True(t, ok)
	assert.Equal(t, "plugin-b", descriptor.Slug)
}

func TestDescriptorFromEntry_RejectsIncompleteEntries(t *testing.T) {
	tests := []struct {
		name  string
		entry map[string]any
	}{
		{"missing_plugin_file", map[string]any{"version": "2.0"}},
		{"missing_version", map[string]any{"plugin_file": "a/a.php"}},
		{"empty_plugin_file", map[string]any{"plugin_file": "", "version": "2.0"}},
		{"wrong_types", map[string]any{"plugin_file": 1, "version": 2}},
		{"empty_entry", map[string]any{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := DescriptorFromEntry(tt.entry)
			assert.False(t, ok)
		})
	}
}

func TestDescriptorFromEntry_SkipsNonStringSectionValues(t *testing.T) {
	descriptor, ok := DescriptorFromEntry(map[string]any{
		"plugin_file": "plugin-c/plugin-c.php",
		"version":     "3.0",
		"sections": map[string]any{
			"description": "text",
			"changelog":   []any{"not", "a", "string"},
		},
	})

	require.True(t, ok)
	assert.Equal(t, map[string]string{"description": "text"}, descriptor.Sections)
}

func TestNewUpdateCheck(t *testing.T) {
	check := NewUpdateCheck(map[string]string{"a/a.php": "1.0"})

	assert.Equal(t, map[string]string{"a/a.php": "1.0"}, check.Checked)
	assert.NotNil(t, check.Response)
	assert.Empty(t, check.Response)
}

func TestSettings_NormalizedAPIBase(t *testing.T) {
	assert.Equal(t, "", Settings{}.NormalizedAPIBase())
	assert.Equal(t, "https://u.example.com", Settings{APIBase: "https://u.example.com/"}.NormalizedAPIBase())
	assert.Equal(t, "https://u.example.com", Settings{APIBase: "https://u.example.com"}.NormalizedAPIBase())
}
