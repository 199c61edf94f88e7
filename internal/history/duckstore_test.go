package history

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuckStore_AppendAndList(t *testing.T) {
	store, err := NewDuckStore(filepath.Join(t.TempDir(), "history.duckdb"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Append(entry("a")))
	require.NoError(t, store.Append(entry("b")))
	require.NoError(t, store.Append(entry("a"))) // duplicates are kept

	entries, err := store.List()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, []string{"a", "b", "a"}, []string{entries[0].ID, entries[1].ID, entries[2].ID})
	assert.Equal(t, 0.91, entries[0].Confidence)
}

func TestDuckStore_EmptyListsAsEmpty(t *testing.T) {
	store, err := NewDuckStore(filepath.Join(t.TempDir(), "history.duckdb"))
	require.NoError(t, err)
	defer store.Close()

	entries, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDuckStore_PersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.duckdb")

	store, err := NewDuckStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Append(entry("persisted")))
	require.NoError(t, store.Close())

	reopened, err := NewDuckStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	entries, err := reopened.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "persisted", entries[0].ID)
}
