package cloud

import "time"

// ProgressRow is the aggregate record of one learner. The map columns hold
// JSON objects keyed by "Book-Chapter".
type ProgressRow struct {
	UserID            string    `db:"user_id"`
	CompletedChapters string    `db:"completed_chapters"`
	ReviewDates       string    `db:"review_dates"`
	ReviewLevels      string    `db:"review_levels"`
	QuizScores        string    `db:"quiz_scores"`
	UpdatedAt         time.Time `db:"updated_at"`
}

// HistoryRow is one study session.
type HistoryRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Date      time.Time `db:"date"`
	BookTitle string    `db:"book_title"`
	ChapterID int       `db:"chapter_id"`
	Success   bool      `db:"success"`
}
