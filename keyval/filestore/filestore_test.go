package filestore_test

import (
	"path/filepath"
	"testing"

	"github.com/hkominsky/bullseye-client/keyval"
	"github.com/hkominsky/bullseye-client/keyval/filestore"
	"github.com/stretchr/testify/require"
)

func TestStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "store.json")
	store, err := filestore.New(path)
	require.NoError(t, err)

	_, err = store.Get("missing")
	require.ErrorIs(t, err, keyval.ErrNotFound)

	require.NoError(t, store.Set("a", "1"))
	require.NoError(t, store.Set("b", "2"))

	got, err := store.Get("a")
	require.NoError(t, err)
	require.Equal(t, "1", got)

	keys, err := store.Keys()
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a", "b"}, keys)

	require.NoError(t, store.Delete("a"))
	_, err = store.Get("a")
	require.ErrorIs(t, err, keyval.ErrNotFound)

	// Deleting an absent key is a no-op.
	require.NoError(t, store.Delete("a"))
}

func TestStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	store, err := filestore.New(path)
	require.NoError(t, err)
	require.NoError(t, store.Set("a", "1"))

	reopened, err := filestore.New(path)
	require.NoError(t, err)
	got, err := reopened.Get("a")
	require.NoError(t, err)
	require.Equal(t, "1", got)
}
