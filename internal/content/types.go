package content

import "github.com/eastboundjoe/aviation-study-guide/internal/progress"

// Book is one FAA handbook.
type Book struct {
	Title    string    `json:"title"`
	Filename string    `json:"filename"`
	Chapters []Chapter `json:"chapters"`
}

// Chapter is a numbered chapter of a book.
type Chapter struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

// ChapterIDs returns the chapter numbers in book order.
func (b Book) ChapterIDs() []int {
	ids := make([]int, len(b.Chapters))
	for i, c := range b.Chapters {
		ids[i] = c.ID
	}
	return ids
}

// KeyPoint is one idea the learner must explain during a recall checkpoint.
type KeyPoint struct {
	ID       string   `json:"id"`
	Text     string   `json:"text"`
	Keywords []string `json:"keywords"`
}

// Checkpoint is the verbal-recall exercise for a chapter.
type Checkpoint struct {
	BookTitle string     `json:"bookTitle"`
	ChapterID int        `json:"chapterId"`
	Summary   string     `json:"summary"`
	KeyPoints []KeyPoint `json:"keyPoints"`
}

func (c Checkpoint) Key() progress.Key {
	return progress.Key{Book: c.BookTitle, Chapter: c.ChapterID}
}

// Question is a multiple-choice question. CorrectAnswer indexes Options.
type Question struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

// Quiz is the question set for a chapter.
type Quiz struct {
	BookTitle string     `json:"bookTitle"`
	ChapterID int        `json:"chapterId"`
	Questions []Question `json:"questions"`
}

func (q Quiz) Key() progress.Key {
	return progress.Key{Book: q.BookTitle, Chapter: q.ChapterID}
}

// QuizResult is a scored quiz attempt.
type QuizResult struct {
	Correct int  `json:"correct"`
	Total   int  `json:"total"`
	Passed  bool `json:"passed"`
}

// Percent returns the score as a whole percentage.
func (r QuizResult) Percent() int {
	if r.Total == 0 {
		return 0
	}
	return r.Correct * 100 / r.Total
}
