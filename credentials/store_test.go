package credentials_test

import (
	"errors"
	"testing"
	"time"

	"github.com/hkominsky/bullseye-client/clock/fakeclock"
	"github.com/hkominsky/bullseye-client/credentials"
	"github.com/hkominsky/bullseye-client/keyval"
	"github.com/hkominsky/bullseye-client/keyval/memstore"
	"github.com/stretchr/testify/require"
)

const (
	testEmail = "jane@example.com"
	testToken = "token-abc"
)

var testStart = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	clk       *fakeclock.Clock
	durable   *memstore.Store
	ephemeral *memstore.Store
	store     *credentials.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clk := fakeclock.New(testStart)
	durable := memstore.New()
	ephemeral := memstore.New()
	store, err := credentials.NewStore(durable, ephemeral, clk)
	require.NoError(t, err)
	return &fixture{clk: clk, durable: durable, ephemeral: ephemeral, store: store}
}

func testRecord(remember bool) credentials.Record {
	return credentials.Record{
		Token:     testToken,
		TokenKind: "bearer",
		Remember:  remember,
		Email:     testEmail,
	}
}

func testProfile() *credentials.Profile {
	return &credentials.Profile{
		ID:        "user-1",
		Name:      "Jane Doe",
		Email:     testEmail,
		CreatedAt: testStart,
		UpdatedAt: testStart,
	}
}

func TestStore_WriteReadRoundTrip(t *testing.T) {
	t.Run("ephemeral when not remembered", func(t *testing.T) {
		f := newFixture(t)
		stored, err := f.store.Write(testRecord(false), testProfile())
		require.NoError(t, err)
		require.True(t, stored.ExpiresAt.Equal(testStart.Add(credentials.TokenTTL)))

		got, ok := f.store.Read(testEmail)
		require.True(t, ok)
		require.Equal(t, testToken, got.Token)
		require.Equal(t, "bearer", got.TokenKind)
		require.False(t, got.Remember)
		require.True(t, got.ExpiresAt.Equal(stored.ExpiresAt))
		require.Equal(t, 0, f.durable.Len())
	})

	t.Run("durable when remembered", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.store.Write(testRecord(true), testProfile())
		require.NoError(t, err)

		got, ok := f.store.Read(testEmail)
		require.True(t, ok)
		require.True(t, got.Remember)
		require.Equal(t, 0, f.ephemeral.Len())
	})

	t.Run("explicit expiry is preserved", func(t *testing.T) {
		f := newFixture(t)
		rec := testRecord(false)
		rec.ExpiresAt = testStart.Add(2 * time.Hour)
		stored, err := f.store.Write(rec, nil)
		require.NoError(t, err)
		require.True(t, stored.ExpiresAt.Equal(testStart.Add(2*time.Hour)))
	})
}

func TestStore_WriteEvictsOtherTier(t *testing.T) {
	f := newFixture(t)
	_, err := f.store.Write(testRecord(true), testProfile())
	require.NoError(t, err)
	require.NotEqual(t, 0, f.durable.Len())

	// Same account logs in again without remember: the durable copy
	// must not survive alongside the ephemeral one.
	_, err = f.store.Write(testRecord(false), testProfile())
	require.NoError(t, err)
	require.Equal(t, 0, f.durable.Len())

	got, ok := f.store.Read(testEmail)
	require.True(t, ok)
	require.False(t, got.Remember)
}

func TestStore_ReadPurgesCorruptEntries(t *testing.T) {
	f := newFixture(t)
	key := "bullseye_auth_data_" + testEmail
	require.NoError(t, f.durable.Set(key, "{not json"))

	_, ok := f.store.Read(testEmail)
	require.False(t, ok)

	// The corrupt entry must be gone so a fresh login is not blocked.
	_, err := f.durable.Get(key)
	require.ErrorIs(t, err, keyval.ErrNotFound)

	_, err = f.store.Write(testRecord(true), testProfile())
	require.NoError(t, err)
	_, ok = f.store.Read(testEmail)
	require.True(t, ok)
}

func TestStore_EraseClearsBothTiers(t *testing.T) {
	f := newFixture(t)
	_, err := f.store.Write(testRecord(true), testProfile())
	require.NoError(t, err)

	f.store.Erase(testEmail)
	require.Equal(t, 0, f.durable.Len())
	require.Equal(t, 0, f.ephemeral.Len())

	_, ok := f.store.Read(testEmail)
	require.False(t, ok)
	_, ok = f.store.Profile(testEmail)
	require.False(t, ok)
}

func TestStore_ListAccounts(t *testing.T) {
	f := newFixture(t)

	_, err := f.store.Write(testRecord(true), testProfile())
	require.NoError(t, err)

	second := credentials.Record{Token: "token-2", TokenKind: "bearer", Email: "bob@example.com"}
	_, err = f.store.Write(second, nil)
	require.NoError(t, err)

	expired := credentials.Record{
		Token:     "token-3",
		TokenKind: "bearer",
		Email:     "old@example.com",
		ExpiresAt: testStart.Add(-time.Minute),
	}
	_, err = f.store.Write(expired, nil)
	require.NoError(t, err)

	require.Equal(t, []string{"bob@example.com", testEmail}, f.store.ListAccounts())
}

func TestStore_ProfileFallsBackToPersistedCopy(t *testing.T) {
	f := newFixture(t)
	_, err := f.store.Write(testRecord(true), testProfile())
	require.NoError(t, err)

	// A second store over the same tiers simulates a page reload: the
	// in-memory cache is empty but the persisted profile is readable.
	reloaded, err := credentials.NewStore(f.durable, f.ephemeral, f.clk)
	require.NoError(t, err)
	profile, ok := reloaded.Profile(testEmail)
	require.True(t, ok)
	require.Equal(t, "Jane Doe", profile.Name)
}

type failingStore struct {
	keyval.Store
	err error
}

func (f failingStore) Set(_, _ string) error { return f.err }

func TestStore_WriteFailureSurfacesStorageError(t *testing.T) {
	clk := fakeclock.New(testStart)
	quotaErr := errors.New("quota exceeded")
	store, err := credentials.NewStore(memstore.New(), failingStore{Store: memstore.New(), err: quotaErr}, clk)
	require.NoError(t, err)

	_, err = store.Write(testRecord(false), testProfile())
	require.Error(t, err)
	var storageErr *credentials.StorageError
	require.ErrorAs(t, err, &storageErr)
	require.Equal(t, credentials.TierEphemeral, storageErr.Tier)
	require.ErrorIs(t, err, quotaErr)
}
