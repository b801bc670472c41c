package cloud

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	d, err := Open(context.Background(), "sqlite", fmt.Sprintf("file:cloud_%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "x")
	assert.Error(t, err)
}

func TestGetProgress_NotFound(t *testing.T) {
	d := openTestDB(t)
	_, err := d.GetProgress(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpsertProgress_ReplacesRow(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	row := ProgressRow{
		UserID:            "user-1",
		CompletedChapters: `{"A-1":true}`,
		ReviewDates:       `{"A-1":"2025-06-11T12:00:00Z"}`,
		ReviewLevels:      `{"A-1":1}`,
		QuizScores:        `{}`,
		UpdatedAt:         now,
	}
	require.NoError(t, d.UpsertProgress(ctx, row))

	row.ReviewLevels = `{"A-1":2}`
	row.UpdatedAt = now.Add(time.Hour)
	require.NoError(t, d.UpsertProgress(ctx, row))

	got, err := d.GetProgress(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, `{"A-1":2}`, got.ReviewLevels)
	assert.True(t, got.UpdatedAt.Equal(now.Add(time.Hour)))

	var n int
	require.NoError(t, d.db.Get(&n, `SELECT COUNT(*) FROM study_progress`))
	assert.Equal(t, 1, n)
}

func TestHistory_InsertAndListOrdered(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, d.InsertHistory(ctx, HistoryRow{UserID: "u", Date: base.Add(48 * time.Hour), BookTitle: "B", ChapterID: 2, Success: false}))
	require.NoError(t, d.InsertHistoryBatch(ctx, []HistoryRow{
		{UserID: "u", Date: base, BookTitle: "A", ChapterID: 1, Success: true},
		{UserID: "u", Date: base.Add(time.Hour), BookTitle: "A", ChapterID: 2, Success: true},
	}))
	require.NoError(t, d.InsertHistory(ctx, HistoryRow{UserID: "other", Date: base, BookTitle: "Z", ChapterID: 9}))

	rows, err := d.ListHistory(ctx, "u")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, 1, rows[0].ChapterID)
	assert.Equal(t, 2, rows[1].ChapterID)
	assert.Equal(t, "B", rows[2].BookTitle)
	assert.False(t, rows[2].Success)
	assert.True(t, rows[0].Success)
	assert.NotEmpty(t, rows[0].ID)
	assert.True(t, rows[0].Date.Equal(base))
}

func TestInsertHistoryBatch_Empty(t *testing.T) {
	d := openTestDB(t)
	assert.NoError(t, d.InsertHistoryBatch(context.Background(), nil))
}

func TestDeleteUser(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, d.UpsertProgress(ctx, ProgressRow{
		UserID: "u", CompletedChapters: "{}", ReviewDates: "{}", ReviewLevels: "{}", QuizScores: "{}",
		UpdatedAt: time.Now().UTC(),
	}))
	require.NoError(t, d.InsertHistory(ctx, HistoryRow{UserID: "u", Date: time.Now().UTC(), BookTitle: "A", ChapterID: 1}))

	require.NoError(t, d.DeleteUser(ctx, "u"))

	_, err := d.GetProgress(ctx, "u")
	assert.ErrorIs(t, err, ErrNotFound)
	rows, err := d.ListHistory(ctx, "u")
	require.NoError(t, err)
	assert.Empty(t, rows)
}
