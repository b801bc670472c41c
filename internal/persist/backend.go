// Package persist gives LearnerProgress a durable home. Guests are kept in
// the on-device store; signed-in learners are kept in the remote row store,
// seeded once from the device copy.
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/eastboundjoe/aviation-study-guide/internal/cloud"
	"github.com/eastboundjoe/aviation-study-guide/internal/progress"
	"github.com/eastboundjoe/aviation-study-guide/internal/store"
)

// LocalStorageKey is the device-store key holding the progress document.
const LocalStorageKey = "aviation-study-progress"

// Backend loads and saves one learner's progress.
type Backend interface {
	Load(ctx context.Context) (*progress.LearnerProgress, error)
	Save(ctx context.Context, p *progress.LearnerProgress, appended *progress.StudySession) error
}

// RowStore is the subset of the remote row store used here. *cloud.DB
// implements it.
type RowStore interface {
	GetProgress(ctx context.Context, userID string) (*cloud.ProgressRow, error)
	UpsertProgress(ctx context.Context, row cloud.ProgressRow) error
	InsertHistory(ctx context.Context, row cloud.HistoryRow) error
	InsertHistoryBatch(ctx context.Context, rows []cloud.HistoryRow) error
	ListHistory(ctx context.Context, userID string) ([]cloud.HistoryRow, error)
}

// Select picks the backend for identity: the device store for guests, the
// row store otherwise. A nil row store means remote sync is disabled.
func Select(identity string, local *LocalBackend, rows RowStore) Backend {
	if identity == "" || rows == nil {
		return local
	}
	return NewRemoteBackend(rows, identity)
}

// LocalBackend keeps the progress document in the device key/value store.
type LocalBackend struct {
	kv     store.KeyValueRepo
	logger *zap.Logger
}

// NewLocalBackend creates a LocalBackend over kv.
func NewLocalBackend(kv store.KeyValueRepo, logger *zap.Logger) *LocalBackend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalBackend{kv: kv, logger: logger}
}

// Load returns the saved progress, or an empty one when nothing is saved or
// the saved document is corrupt.
func (l *LocalBackend) Load(ctx context.Context) (*progress.LearnerProgress, error) {
	p, ok, err := l.peek(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return progress.New(), nil
	}
	return p, nil
}

// Save overwrites the stored document.
func (l *LocalBackend) Save(ctx context.Context, p *progress.LearnerProgress, _ *progress.StudySession) error {
	b, err := Encode(p)
	if err != nil {
		return err
	}
	return l.kv.SetItem(ctx, LocalStorageKey, string(b))
}

// Clear removes the stored document.
func (l *LocalBackend) Clear(ctx context.Context) error {
	return l.kv.RemoveItem(ctx, LocalStorageKey)
}

// peek reports ok=false when nothing usable is stored.
func (l *LocalBackend) peek(ctx context.Context) (*progress.LearnerProgress, bool, error) {
	raw, found, err := l.kv.GetItem(ctx, LocalStorageKey)
	if err != nil {
		return nil, false, fmt.Errorf("read local progress: %w", err)
	}
	if !found || raw == "" {
		return nil, false, nil
	}
	p, err := Decode([]byte(raw))
	if err != nil {
		l.logger.Warn("discarding corrupt local progress", zap.Error(err))
		return nil, false, nil
	}
	return p, true, nil
}

// RemoteBackend keeps one learner's progress in the row store.
type RemoteBackend struct {
	rows     RowStore
	identity string
	now      func() time.Time
}

// NewRemoteBackend creates a RemoteBackend for identity.
func NewRemoteBackend(rows RowStore, identity string) *RemoteBackend {
	return &RemoteBackend{rows: rows, identity: identity, now: time.Now}
}

// Identity returns the learner this backend writes for.
func (r *RemoteBackend) Identity() string {
	return r.identity
}

// Load merges the aggregate row with the history rows. A learner without an
// aggregate row starts empty.
func (r *RemoteBackend) Load(ctx context.Context) (*progress.LearnerProgress, error) {
	row, err := r.rows.GetProgress(ctx, r.identity)
	if err != nil && !errors.Is(err, cloud.ErrNotFound) {
		return nil, fmt.Errorf("load remote progress: %w", err)
	}
	history, err := r.rows.ListHistory(ctx, r.identity)
	if err != nil {
		return nil, fmt.Errorf("load remote history: %w", err)
	}

	var d document
	if row != nil {
		d, err = rowDocument(row)
		if err != nil {
			return nil, err
		}
	}
	p := fromDocument(d)
	for _, h := range history {
		p.History = append(p.History, progress.StudySession{
			Date:    h.Date,
			Book:    h.BookTitle,
			Chapter: h.ChapterID,
			Success: h.Success,
		})
	}
	return p, nil
}

// Save upserts the aggregate row and appends the new session. The two
// writes are independent; both are attempted and their errors joined.
func (r *RemoteBackend) Save(ctx context.Context, p *progress.LearnerProgress, appended *progress.StudySession) error {
	var errs []error
	row, err := r.progressRow(p)
	if err == nil {
		err = r.rows.UpsertProgress(ctx, row)
	}
	if err != nil {
		errs = append(errs, err)
	}
	if appended != nil {
		if err := r.rows.InsertHistory(ctx, historyRow(r.identity, *appended)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// hasProgress reports whether the learner already has at least one
// completed chapter remotely.
func (r *RemoteBackend) hasProgress(ctx context.Context) (bool, error) {
	row, err := r.rows.GetProgress(ctx, r.identity)
	if errors.Is(err, cloud.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check remote progress: %w", err)
	}
	var completed map[string]bool
	if err := json.Unmarshal([]byte(row.CompletedChapters), &completed); err != nil {
		// A row we cannot read still belongs to the learner.
		return true, nil
	}
	return len(completed) > 0, nil
}

// importAll writes the aggregate and the full history of p.
func (r *RemoteBackend) importAll(ctx context.Context, p *progress.LearnerProgress) error {
	row, err := r.progressRow(p)
	if err != nil {
		return err
	}
	if err := r.rows.UpsertProgress(ctx, row); err != nil {
		return err
	}
	rows := make([]cloud.HistoryRow, 0, len(p.History))
	for _, s := range p.History {
		rows = append(rows, historyRow(r.identity, s))
	}
	return r.rows.InsertHistoryBatch(ctx, rows)
}

func (r *RemoteBackend) progressRow(p *progress.LearnerProgress) (cloud.ProgressRow, error) {
	d := toDocument(p)
	row := cloud.ProgressRow{UserID: r.identity, UpdatedAt: r.now().UTC()}
	for _, f := range []struct {
		dst *string
		src any
	}{
		{&row.CompletedChapters, d.CompletedChapters},
		{&row.ReviewDates, d.ReviewDates},
		{&row.ReviewLevels, d.ReviewLevels},
		{&row.QuizScores, d.QuizScores},
	} {
		b, err := json.Marshal(f.src)
		if err != nil {
			return cloud.ProgressRow{}, fmt.Errorf("encode progress row: %w", err)
		}
		*f.dst = string(b)
	}
	return row, nil
}

func rowDocument(row *cloud.ProgressRow) (document, error) {
	var d document
	for _, f := range []struct {
		src string
		dst any
	}{
		{row.CompletedChapters, &d.CompletedChapters},
		{row.ReviewDates, &d.ReviewDates},
		{row.ReviewLevels, &d.ReviewLevels},
		{row.QuizScores, &d.QuizScores},
	} {
		if f.src == "" {
			continue
		}
		if err := json.Unmarshal([]byte(f.src), f.dst); err != nil {
			return document{}, fmt.Errorf("decode progress row: %w", err)
		}
	}
	return d, nil
}

func historyRow(identity string, s progress.StudySession) cloud.HistoryRow {
	return cloud.HistoryRow{
		UserID:    identity,
		Date:      s.Date.UTC(),
		BookTitle: s.Book,
		ChapterID: s.Chapter,
		Success:   s.Success,
	}
}
