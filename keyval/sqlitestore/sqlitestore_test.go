package sqlitestore_test

import (
	"path/filepath"
	"testing"

	"github.com/hkominsky/bullseye-client/keyval"
	"github.com/hkominsky/bullseye-client/keyval/sqlitestore"
	"github.com/stretchr/testify/require"
)

func TestStore_RoundTrip(t *testing.T) {
	store, err := sqlitestore.Open(filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Get("missing")
	require.ErrorIs(t, err, keyval.ErrNotFound)

	require.NoError(t, store.Set("a", "1"))
	require.NoError(t, store.Set("a", "updated"))
	require.NoError(t, store.Set("b", "2"))

	got, err := store.Get("a")
	require.NoError(t, err)
	require.Equal(t, "updated", got)

	keys, err := store.Keys()
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a", "b"}, keys)

	require.NoError(t, store.Delete("b"))
	_, err = store.Get("b")
	require.ErrorIs(t, err, keyval.ErrNotFound)
}

func TestStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")
	store, err := sqlitestore.Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Set("a", "1"))
	require.NoError(t, store.Close())

	reopened, err := sqlitestore.Open(path)
	require.NoError(t, err)
	defer reopened.Close()
	got, err := reopened.Get("a")
	require.NoError(t, err)
	require.Equal(t, "1", got)
}
