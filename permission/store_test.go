package permission

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStoreSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grants.db")
	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save("bash", "git *", Workspace))

	grants, err := store.Load()
	require.NoError(t, err)
	require.Len(t, grants, 1)
	assert.Equal(t, "bash", grants[0].Kind)
	assert.Equal(t, Workspace, grants[0].Scope)
}

func TestSQLiteStoreReloadsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grants.db")

	store1, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store1.Save("webfetch", "https://example.com/*", Global))
	require.NoError(t, store1.Close())

	store2, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer store2.Close()

	grants, err := store2.Load()
	require.NoError(t, err)
	require.Len(t, grants, 1)
	assert.Equal(t, Global, grants[0].Scope)
}

func TestMediatorLoadsPersistedGrantsAtConstruction(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grants.db")
	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Save("bash", "git *", Workspace))
	require.NoError(t, store.Close())

	store2, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer store2.Close()

	m, err := NewMediator(store2)
	require.NoError(t, err)

	scope, ok := m.cachedGrant("bash", []string{"git *"})
	require.True(t, ok)
	assert.Equal(t, Workspace, scope)
}
