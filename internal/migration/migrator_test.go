package migration

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hobbyline/cardbinder/internal/localstore"
)

type testEnv struct {
	local       *localstore.Store
	users       *fakeUserRepo
	collections *fakeCollectionRepo
	cards       *fakeCardRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	local, err := localstore.Open(filepath.Join(t.TempDir(), "local.db"))
	require.NoError(t, err)
	t.Cleanup(func() { local.Close() })

	return &testEnv{
		local:       local,
		users:       newFakeUserRepo(),
		collections: newFakeCollectionRepo(),
		cards:       newFakeCardRepo(),
	}
}

func (e *testEnv) migrator(t *testing.T, opts ...Option) *Migrator {
	t.Helper()
	opts = append([]Option{WithReportDir(t.TempDir())}, opts...)
	return NewMigrator(e.local, e.users, e.collections, e.cards, nil, opts...)
}

func (e *testEnv) seedProfile(t *testing.T) {
	t.Helper()
	require.NoError(t, e.local.SaveProfile(&localstore.Profile{
		ID:       "user-1",
		Username: "colleen",
		Email:    "colleen@example.com",
	}))
}

func (e *testEnv) seedCards(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, e.local.PutCard(&localstore.Card{
			ID:        fmt.Sprintf("card-%03d", i),
			UserID:    "user-1",
			Player:    fmt.Sprintf("Player %d", i),
			CreatedAt: "2024-01-01T00:00:00Z",
			UpdatedAt: "2024-01-01T00:00:00Z",
		}))
	}
}

func TestMigrateMovesEverything(t *testing.T) {
	e := newTestEnv(t)
	e.seedProfile(t)
	e.seedCards(t, 5)
	require.NoError(t, e.local.PutCollection(&localstore.Collection{
		ID: "col-1", UserID: "user-1", Name: "Rookies", IsDefault: true,
		CreatedAt: "2024-01-01T00:00:00Z", UpdatedAt: "2024-01-01T00:00:00Z",
	}))

	result, err := e.migrator(t).Migrate(context.Background())
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 1, result.UsersMigrated)
	assert.Equal(t, 1, result.CollectionsMigrated)
	assert.Equal(t, 5, result.CardsMigrated)

	// Remote state matches the local store.
	assert.Len(t, e.cards.cards, 5)
	assert.Len(t, e.collections.collections, 1)
	assert.Contains(t, e.users.users, "user-1")
	assert.Equal(t, "Rookies", e.collections.collections["col-1"].Name)
}

func TestMigrateBatchesCards(t *testing.T) {
	e := newTestEnv(t)
	e.seedProfile(t)
	e.seedCards(t, 250)

	result, err := e.migrator(t).Migrate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 250, result.CardsMigrated)
	assert.Equal(t, []int{100, 100, 50}, e.cards.batchSizes)
}

func TestMigrateProgressCallbacks(t *testing.T) {
	e := newTestEnv(t)
	e.seedProfile(t)
	e.seedCards(t, 3)

	var steps []string
	var percents []int
	m := e.migrator(t, WithProgress(func(step string, percent int) {
		steps = append(steps, step)
		percents = append(percents, percent)
	}))

	_, err := m.Migrate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{25, 50, 75, 100}, percents)
	assert.Equal(t, []string{"user profile", "collections", "cards", "verification"}, steps)
}

func TestMigrateAbortsWithoutProfile(t *testing.T) {
	e := newTestEnv(t)
	e.seedCards(t, 10)

	result, err := e.migrator(t).Migrate(context.Background())
	require.Error(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, 0, result.CardsMigrated)
	assert.Empty(t, e.cards.cards)
}

func TestMigrateAbortsWhenUserWriteFails(t *testing.T) {
	e := newTestEnv(t)
	e.seedProfile(t)
	e.seedCards(t, 10)
	e.users.ensureErr = fmt.Errorf("remote rejected write")

	result, err := e.migrator(t).Migrate(context.Background())
	require.Error(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, 0, result.UsersMigrated)
	assert.Equal(t, 0, result.CardsMigrated)
	assert.Empty(t, e.cards.cards)
}

func TestMigrateCollectsCollectionErrors(t *testing.T) {
	e := newTestEnv(t)
	e.seedProfile(t)
	e.seedCards(t, 2)
	for _, id := range []string{"col-ok", "col-bad"} {
		require.NoError(t, e.local.PutCollection(&localstore.Collection{
			ID: id, UserID: "user-1", Name: "N",
			CreatedAt: "2024-01-01T00:00:00Z", UpdatedAt: "2024-01-01T00:00:00Z",
		}))
	}
	e.collections.upsertErrs["col-bad"] = fmt.Errorf("constraint violation")

	result, err := e.migrator(t).Migrate(context.Background())
	require.Error(t, err)

	// The run continued past the bad collection.
	assert.False(t, result.Success)
	assert.Equal(t, 1, result.CollectionsMigrated)
	assert.Equal(t, 2, result.CardsMigrated)
	assert.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "col-bad")
}

func TestMigrateSkipsMalformedCards(t *testing.T) {
	e := newTestEnv(t)
	e.seedProfile(t)
	e.seedCards(t, 2)

	bad := -5.0
	require.NoError(t, e.local.PutCard(&localstore.Card{
		ID: "card-bad", UserID: "user-1", Player: "X",
		PurchasePrice: &bad,
		CreatedAt:     "2024-01-01T00:00:00Z", UpdatedAt: "2024-01-01T00:00:00Z",
	}))

	result, err := e.migrator(t).Migrate(context.Background())
	require.Error(t, err)

	assert.Equal(t, 2, result.CardsMigrated)
	assert.NotContains(t, e.cards.cards, "card-bad")
}

func TestMigrateIsIdempotent(t *testing.T) {
	e := newTestEnv(t)
	e.seedProfile(t)
	e.seedCards(t, 7)

	m := e.migrator(t)
	first, err := m.Migrate(context.Background())
	require.NoError(t, err)
	second, err := m.Migrate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.CardsMigrated, second.CardsMigrated)
	assert.Len(t, e.cards.cards, 7)
}

func TestMigrateVerifyDetectsMismatch(t *testing.T) {
	e := newTestEnv(t)
	e.seedProfile(t)
	e.seedCards(t, 4)

	m := e.migrator(t)
	_, err := m.Migrate(context.Background())
	require.NoError(t, err)

	// Remove a remote card behind the driver's back and re-verify.
	require.NoError(t, e.cards.Delete(context.Background(), "card-000"))

	report, err := m.Verify(context.Background())
	require.NoError(t, err)
	assert.False(t, report.InSync)
	assert.Equal(t, 4, report.LocalCards)
	assert.Equal(t, int64(3), report.RemoteCards)
}

func TestClearLocalRequiresConfirmation(t *testing.T) {
	e := newTestEnv(t)
	e.seedProfile(t)
	e.seedCards(t, 3)

	m := e.migrator(t)

	err := m.ClearLocal(context.Background(), false)
	require.ErrorIs(t, err, ErrNotConfirmed)

	count, err := e.local.CountCards()
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	require.NoError(t, m.ClearLocal(context.Background(), true))
	count, err = e.local.CountCards()
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestRollbackCopiesRemoteToLocal(t *testing.T) {
	e := newTestEnv(t)
	e.seedProfile(t)
	e.seedCards(t, 2)

	m := e.migrator(t)
	_, err := m.Migrate(context.Background())
	require.NoError(t, err)

	// Change a remote card, then roll back and expect the local copy to
	// carry the remote value.
	remote := e.cards.cards["card-000"]
	remote.Player = "Renamed Remote"

	_, err = m.Rollback(context.Background(), false)
	require.ErrorIs(t, err, ErrNotConfirmed)

	result, err := m.Rollback(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 2, result.CardsRestored)

	got, err := e.local.GetCard("card-000")
	require.NoError(t, err)
	assert.Equal(t, "Renamed Remote", got.Player)
}

func TestConcurrentRunsAreRejected(t *testing.T) {
	e := newTestEnv(t)
	e.seedProfile(t)

	m := e.migrator(t)
	m.running.Store(true)

	_, err := m.Migrate(context.Background())
	require.ErrorIs(t, err, ErrRunInProgress)

	_, err = m.Rollback(context.Background(), true)
	require.ErrorIs(t, err, ErrRunInProgress)

	err = m.ClearLocal(context.Background(), true)
	require.ErrorIs(t, err, ErrRunInProgress)
}
