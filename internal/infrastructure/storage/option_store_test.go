package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestFileOptionStore_RoundTrip(t *testing.T) {
	store, err := NewFileOptionStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("sample", sample{Name: "a", Count: 2}))

	var got sample
	found, err := store.Get("sample", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, sample{Name: "a", Count: 2}, got)
}

func TestFileOptionStore_MissingOption(t *testing.T) {
	store, err := NewFileOptionStore(t.TempDir())
	require.NoError(t, err)

	var got sample
	found, err := store.Get("absent", &got)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, sample{}, got)
}

func TestFileOptionStore_Delete(t *testing.T) {
	store, err := NewFileOptionStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("sample", sample{Name: "a"}))
	require.NoError(t, store.Delete("sample"))

	var got sample
	found, err := store.Get("sample", &got)
	require.NoError(t, err)
	assert.False(t, found)

	// Deleting again is not an error.
	require.NoError(t, store.Delete("sample"))
}

func TestFileOptionStore_RestrictsFilePermissions(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileOptionStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set("sample", sample{Name: "a"}))

	info, err := os.Stat(filepath.Join(dir, "sample.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestMemoryOptionStore_RoundTrip(t *testing.T) {
	store := NewMemoryOptionStore()

	require.NoError(t, store.Set("sample", sample{Name: "b", Count: 7}))

	var got sample
	found, err := store.Get("sample", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, sample{Name: "b", Count: 7}, got)

	require.NoError(t, store.Delete("sample"))
	found, err = store.Get("sample", &got)
	require.NoError(t, err)
	assert.False(t, found)
}
