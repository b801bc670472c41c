package persist

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eastboundjoe/aviation-study-guide/internal/cloud"
	"github.com/eastboundjoe/aviation-study-guide/internal/progress"
)

func TestMigrate_EmptyRemote(t *testing.T) {
	local, kv := openLocal(t)
	rows := openRemote(t)
	ctx := context.Background()
	require.NoError(t, local.Save(ctx, sampleProgress(), nil))

	a := NewAdapter(local, rows, nil)
	res, err := a.MigrateLocalToRemote(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, MigrationCompleted, res.Status)
	assert.Equal(t, 1, res.Chapters)
	assert.Equal(t, 1, res.Sessions)

	remote, err := NewRemoteBackend(rows, "u1").Load(ctx)
	require.NoError(t, err)
	rec := remote.Record(progress.Key{Book: "A", Chapter: 1})
	assert.True(t, rec.Completed)
	assert.Equal(t, 1, rec.Level)
	assert.True(t, rec.NextReview.Equal(testNow.AddDate(0, 0, 1)))
	require.Len(t, remote.History, 1)
	assert.Equal(t, progress.StudySession{Date: testNow, Book: "A", Chapter: 1, Success: true}.Key(), remote.History[0].Key())
	assert.True(t, remote.History[0].Success)

	_, found, err := kv.GetItem(ctx, LocalStorageKey)
	require.NoError(t, err)
	assert.False(t, found, "local copy must be cleared after migration")
}

func TestMigrate_RemoteWins(t *testing.T) {
	local, kv := openLocal(t)
	rows := openRemote(t)
	ctx := context.Background()
	require.NoError(t, local.Save(ctx, sampleProgress(), nil))

	existing := cloud.ProgressRow{
		UserID:            "u1",
		CompletedChapters: `{"Z-9":true}`,
		ReviewDates:       `{}`,
		ReviewLevels:      `{"Z-9":4}`,
		QuizScores:        `{}`,
		UpdatedAt:         testNow.Add(-time.Hour),
	}
	require.NoError(t, rows.UpsertProgress(ctx, existing))
	before, err := rows.GetProgress(ctx, "u1")
	require.NoError(t, err)

	res, err := NewAdapter(local, rows, nil).MigrateLocalToRemote(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, MigrationRemoteWins, res.Status)

	after, err := rows.GetProgress(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, before.CompletedChapters, after.CompletedChapters)
	assert.Equal(t, before.ReviewLevels, after.ReviewLevels)
	assert.True(t, before.UpdatedAt.Equal(after.UpdatedAt))
	hist, err := rows.ListHistory(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, hist)

	_, found, err := kv.GetItem(ctx, LocalStorageKey)
	require.NoError(t, err)
	assert.True(t, found, "local copy must be kept when remote wins")
}

func TestMigrate_NoLocalData(t *testing.T) {
	local, kv := openLocal(t)
	rows := openRemote(t)
	ctx := context.Background()

	res, err := NewAdapter(local, rows, nil).MigrateLocalToRemote(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, MigrationNoLocalData, res.Status)

	require.NoError(t, kv.SetItem(ctx, LocalStorageKey, "not json"))
	res, err = NewAdapter(local, rows, nil).MigrateLocalToRemote(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, MigrationNoLocalData, res.Status)

	_, err = rows.GetProgress(ctx, "u1")
	assert.ErrorIs(t, err, cloud.ErrNotFound)
}

func TestMigrate_OncePerIdentity(t *testing.T) {
	local, _ := openLocal(t)
	rows := openRemote(t)
	ctx := context.Background()
	a := NewAdapter(local, rows, nil)

	res, err := a.MigrateLocalToRemote(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, MigrationNoLocalData, res.Status)

	require.NoError(t, local.Save(ctx, sampleProgress(), nil))
	res, err = a.MigrateLocalToRemote(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, MigrationAlreadyAttempted, res.Status)

	res, err = a.MigrateLocalToRemote(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, MigrationCompleted, res.Status)
}

func TestMigrate_Disabled(t *testing.T) {
	local, _ := openLocal(t)
	res, err := NewAdapter(local, nil, nil).MigrateLocalToRemote(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, MigrationDisabled, res.Status)
}

func TestAdapter_LoadDoesNotMigrate(t *testing.T) {
	local, kv := openLocal(t)
	rows := openRemote(t)
	ctx := context.Background()
	require.NoError(t, local.Save(ctx, sampleProgress(), nil))

	a := NewAdapter(local, rows, nil)
	p, err := a.Load(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, p.IsEmpty())

	_, found, err := kv.GetItem(ctx, LocalStorageKey)
	require.NoError(t, err)
	assert.True(t, found, "device copy stays until a migration runs")
}

// flakyRows fails GetProgress a set number of times.
type flakyRows struct {
	RowStore
	failures int
}

func (f *flakyRows) GetProgress(ctx context.Context, userID string) (*cloud.ProgressRow, error) {
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("connection reset")
	}
	return f.RowStore.GetProgress(ctx, userID)
}

func TestMigrate_RetriesAfterError(t *testing.T) {
	local, kv := openLocal(t)
	rows := &flakyRows{RowStore: openRemote(t), failures: 1}
	ctx := context.Background()
	require.NoError(t, local.Save(ctx, sampleProgress(), nil))

	a := NewAdapter(local, rows, nil)
	_, err := a.MigrateLocalToRemote(ctx, "u1")
	require.Error(t, err)

	res, err := a.MigrateLocalToRemote(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, MigrationCompleted, res.Status)

	res, err = a.MigrateLocalToRemote(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, MigrationAlreadyAttempted, res.Status)

	_, found, err := kv.GetItem(ctx, LocalStorageKey)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSaverFor_GuestIsSynchronous(t *testing.T) {
	local, _ := openLocal(t)
	a := NewAdapter(local, openRemote(t), nil)
	s := a.SaverFor("")
	defer s.Close()

	require.NoError(t, s.Save(context.Background(), sampleProgress(), nil))
	assert.Equal(t, StatusSynced, s.Status())
	p, err := local.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, p.CountCompleted())
}

func TestSaverFor_SignedInQueuesRemote(t *testing.T) {
	local, _ := openLocal(t)
	rows := openRemote(t)
	a := NewAdapter(local, rows, nil)
	s := a.SaverFor("u1")
	ctx := context.Background()

	tr := progress.NewTracker(nil, s, progress.WithClock(func() time.Time { return testNow }))
	tr.RecordOutcome(ctx, progress.Key{Book: "A", Chapter: 1}, true)

	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, s.Flush(ctx2))
	s.Close()

	assert.Equal(t, StatusSynced, s.Status())
	assert.Equal(t, 0, s.Pending())
	hist, err := rows.ListHistory(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, hist, 1)
	guest, err := local.Load(ctx)
	require.NoError(t, err)
	assert.True(t, guest.IsEmpty())
}
