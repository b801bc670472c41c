package cloud

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// GetProgress returns the aggregate row for userID, or ErrNotFound.
func (d *DB) GetProgress(ctx context.Context, userID string) (*ProgressRow, error) {
	var row ProgressRow
	err := d.db.GetContext(ctx, &row, d.db.Rebind(
		`SELECT user_id, completed_chapters, review_dates, review_levels, quiz_scores, updated_at
		 FROM study_progress WHERE user_id = ?`), userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get progress: %w", err)
	}
	return &row, nil
}

// UpsertProgress writes the aggregate row, replacing any existing row for
// the same user.
func (d *DB) UpsertProgress(ctx context.Context, row ProgressRow) error {
	_, err := d.db.NamedExecContext(ctx,
		`INSERT INTO study_progress
			(user_id, completed_chapters, review_dates, review_levels, quiz_scores, updated_at)
		 VALUES
			(:user_id, :completed_chapters, :review_dates, :review_levels, :quiz_scores, :updated_at)
		 ON CONFLICT (user_id) DO UPDATE SET
			completed_chapters = excluded.completed_chapters,
			review_dates       = excluded.review_dates,
			review_levels      = excluded.review_levels,
			quiz_scores        = excluded.quiz_scores,
			updated_at         = excluded.updated_at`, row)
	if err != nil {
		return fmt.Errorf("upsert progress: %w", err)
	}
	return nil
}

const insertHistory = `INSERT INTO study_history (id, user_id, date, book_title, chapter_id, success)
	VALUES (:id, :user_id, :date, :book_title, :chapter_id, :success)`

// InsertHistory appends one session row. A missing ID is generated.
func (d *DB) InsertHistory(ctx context.Context, row HistoryRow) error {
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	if _, err := d.db.NamedExecContext(ctx, insertHistory, row); err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}

// InsertHistoryBatch appends rows in a single transaction.
func (d *DB) InsertHistoryBatch(ctx context.Context, rows []HistoryRow) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareNamedContext(ctx, insertHistory)
	if err != nil {
		return fmt.Errorf("prepare history insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if row.ID == "" {
			row.ID = uuid.NewString()
		}
		if _, err := stmt.ExecContext(ctx, row); err != nil {
			return fmt.Errorf("insert history: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit history: %w", err)
	}
	return nil
}

// ListHistory returns every session of userID, oldest first.
func (d *DB) ListHistory(ctx context.Context, userID string) ([]HistoryRow, error) {
	var rows []HistoryRow
	err := d.db.SelectContext(ctx, &rows, d.db.Rebind(
		`SELECT id, user_id, date, book_title, chapter_id, success
		 FROM study_history WHERE user_id = ? ORDER BY date ASC`), userID)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return rows, nil
}

// DeleteUser removes the aggregate row and all history of userID.
func (d *DB) DeleteUser(ctx context.Context, userID string) error {
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{
		`DELETE FROM study_history WHERE user_id = ?`,
		`DELETE FROM study_progress WHERE user_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, tx.Rebind(q), userID); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
	}
	return tx.Commit()
}
