package api

import (
	"net/http"
	"strings"

	"github.com/eastboundjoe/aviation-study-guide/internal/content"
	"github.com/eastboundjoe/aviation-study-guide/internal/progress"
	"github.com/eastboundjoe/aviation-study-guide/internal/recall"
)

type bookSummary struct {
	Title      string  `json:"title"`
	Chapters   int     `json:"chapters"`
	Completion float64 `json:"completion"`
}

type bookDetail struct {
	Title      string          `json:"title"`
	Filename   string          `json:"filename"`
	Completion float64         `json:"completion"`
	Chapters   []chapterDetail `json:"chapters"`
}

type chapterDetail struct {
	chapterState
	HasCheckpoint bool `json:"hasCheckpoint"`
	HasQuiz       bool `json:"hasQuiz"`
}

// quizView hides the answers until the quiz is submitted.
type quizView struct {
	BookTitle string         `json:"bookTitle"`
	ChapterID int            `json:"chapterId"`
	Questions []questionView `json:"questions"`
}

type questionView struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type quizRequest struct {
	Answers []int `json:"answers"`
}

type questionReview struct {
	ID            string `json:"id"`
	Answer        int    `json:"answer"`
	CorrectAnswer int    `json:"correctAnswer"`
	Correct       bool   `json:"correct"`
	Explanation   string `json:"explanation"`
}

type quizResponse struct {
	content.QuizResult
	Percent   int              `json:"percent"`
	Questions []questionReview `json:"questions"`
	outcomeResponse
}

type keyPointView struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type checkpointView struct {
	BookTitle    string         `json:"bookTitle"`
	ChapterID    int            `json:"chapterId"`
	ChapterTitle string         `json:"chapterTitle"`
	Summary      string         `json:"summary"`
	KeyPoints    []keyPointView `json:"keyPoints"`
}

type recallRequest struct {
	Transcript string `json:"transcript"`
	// Covered are ids already credited in earlier attempts.
	Covered []string `json:"coveredPointIds"`
}

type recallResponse struct {
	recall.Result
	// Covered is the running total, earlier attempts included.
	Covered    []string `json:"allCoveredPointIds"`
	AllCovered bool     `json:"allCovered"`
}

type completeRequest struct {
	Covered []string `json:"coveredPointIds"`
}

type completeResponse struct {
	Success bool `json:"success"`
	outcomeResponse
}

// ListBooks returns every book with the learner's completion fraction.
func (h *Handler) ListBooks(w http.ResponseWriter, r *http.Request) {
	l, ok := h.current(w, r)
	if !ok {
		return
	}
	snap := l.Tracker.Snapshot()
	books := h.catalog.Books()
	out := make([]bookSummary, 0, len(books))
	for _, b := range books {
		out = append(out, bookSummary{
			Title:      b.Title,
			Chapters:   len(b.Chapters),
			Completion: snap.BookCompletion(b.Title, b.ChapterIDs()),
		})
	}
	JSON(w, http.StatusOK, out)
}

// GetBook returns one book with per-chapter review state.
func (h *Handler) GetBook(w http.ResponseWriter, r *http.Request) {
	b, ok := h.catalog.Book(pathParam(r, "book"))
	if !ok {
		Error(w, http.StatusNotFound, "book not found")
		return
	}
	l, ok := h.current(w, r)
	if !ok {
		return
	}
	snap := l.Tracker.Snapshot()
	now := l.Tracker.Now()

	out := bookDetail{
		Title:      b.Title,
		Filename:   b.Filename,
		Completion: snap.BookCompletion(b.Title, b.ChapterIDs()),
		Chapters:   make([]chapterDetail, 0, len(b.Chapters)),
	}
	for _, ch := range b.Chapters {
		key := progress.Key{Book: b.Title, Chapter: ch.ID}
		_, hasCP := h.catalog.Checkpoint(key)
		_, hasQuiz := h.catalog.Quiz(key)
		out.Chapters = append(out.Chapters, chapterDetail{
			chapterState:  h.chapterState(snap, key, now),
			HasCheckpoint: hasCP,
			HasQuiz:       hasQuiz,
		})
	}
	JSON(w, http.StatusOK, out)
}

// RandomReview picks a checkpoint from any book for interleaved review.
func (h *Handler) RandomReview(w http.ResponseWriter, r *http.Request) {
	cp, ok := h.randomCheckpoint()
	if !ok {
		Error(w, http.StatusNotFound, "no checkpoints available")
		return
	}
	JSON(w, http.StatusOK, h.checkpointView(cp))
}

// GetQuiz returns a chapter quiz without its answers.
func (h *Handler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	q, ok := h.quiz(w, r)
	if !ok {
		return
	}
	out := quizView{BookTitle: q.BookTitle, ChapterID: q.ChapterID, Questions: make([]questionView, 0, len(q.Questions))}
	for _, qu := range q.Questions {
		out.Questions = append(out.Questions, questionView{ID: qu.ID, Question: qu.Question, Options: qu.Options})
	}
	JSON(w, http.StatusOK, out)
}

// SubmitQuiz scores the answers, stores the percentage and records the
// pass or fail as an outcome.
func (h *Handler) SubmitQuiz(w http.ResponseWriter, r *http.Request) {
	q, ok := h.quiz(w, r)
	if !ok {
		return
	}
	var req quizRequest
	if err := decode(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Answers) > len(q.Questions) {
		Error(w, http.StatusBadRequest, "more answers than questions")
		return
	}
	l, ok := h.current(w, r)
	if !ok {
		return
	}

	res := q.Score(req.Answers)
	review := make([]questionReview, 0, len(q.Questions))
	for i, qu := range q.Questions {
		ans := content.Unanswered
		if i < len(req.Answers) {
			ans = req.Answers[i]
		}
		review = append(review, questionReview{
			ID:            qu.ID,
			Answer:        ans,
			CorrectAnswer: qu.CorrectAnswer,
			Correct:       ans == qu.CorrectAnswer,
			Explanation:   qu.Explanation,
		})
	}

	snap := l.Tracker.RecordQuiz(r.Context(), q.Key(), res.Percent(), res.Passed)
	JSON(w, http.StatusOK, quizResponse{
		QuizResult:      res,
		Percent:         res.Percent(),
		Questions:       review,
		outcomeResponse: h.outcome(l, q.Key(), snap, res.Passed, "quiz"),
	})
}

// GetCheckpoint returns the chapter's recall exercise. Keywords stay on the
// server.
func (h *Handler) GetCheckpoint(w http.ResponseWriter, r *http.Request) {
	cp, ok := h.checkpoint(w, r)
	if !ok {
		return
	}
	JSON(w, http.StatusOK, h.checkpointView(cp))
}

// GradeRecall grades one spoken summary. With a language model configured
// the model decides which key points were covered; otherwise keywords do.
func (h *Handler) GradeRecall(w http.ResponseWriter, r *http.Request) {
	cp, ok := h.checkpoint(w, r)
	if !ok {
		return
	}
	var req recallRequest
	if err := decode(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Transcript) == "" {
		Error(w, http.StatusBadRequest, "transcript is required")
		return
	}

	chTitle := ""
	if ch, ok := h.catalog.Chapter(cp.Key()); ok {
		chTitle = ch.Title
	}
	res := h.grader.Grade(r.Context(), recall.Request{
		BookTitle:    cp.BookTitle,
		ChapterTitle: chTitle,
		KeyPoints:    cp.KeyPoints,
		Transcript:   req.Transcript,
	})

	covered := recall.MergeCovered(cp.KeyPoints, req.Covered, res.CoveredPointIDs)
	JSON(w, http.StatusOK, recallResponse{
		Result:     res,
		Covered:    covered,
		AllCovered: content.CheckpointPassed(cp.KeyPoints, covered),
	})
}

// CompleteCheckpoint records the checkpoint outcome: a pass only when every
// key point was covered.
func (h *Handler) CompleteCheckpoint(w http.ResponseWriter, r *http.Request) {
	cp, ok := h.checkpoint(w, r)
	if !ok {
		return
	}
	var req completeRequest
	if err := decode(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	l, ok := h.current(w, r)
	if !ok {
		return
	}
	success := content.CheckpointPassed(cp.KeyPoints, req.Covered)
	JSON(w, http.StatusOK, completeResponse{
		Success:         success,
		outcomeResponse: h.applyOutcome(r, l, cp.Key(), success, "checkpoint"),
	})
}

func (h *Handler) quiz(w http.ResponseWriter, r *http.Request) (content.Quiz, bool) {
	key, err := chapterKey(r)
	if err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return content.Quiz{}, false
	}
	q, ok := h.catalog.Quiz(key)
	if !ok {
		Error(w, http.StatusNotFound, "no quiz for this chapter")
		return content.Quiz{}, false
	}
	return q, true
}

func (h *Handler) checkpoint(w http.ResponseWriter, r *http.Request) (content.Checkpoint, bool) {
	key, err := chapterKey(r)
	if err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return content.Checkpoint{}, false
	}
	cp, ok := h.catalog.Checkpoint(key)
	if !ok {
		Error(w, http.StatusNotFound, "no checkpoint for this chapter")
		return content.Checkpoint{}, false
	}
	return cp, true
}

func (h *Handler) checkpointView(cp content.Checkpoint) checkpointView {
	v := checkpointView{
		BookTitle: cp.BookTitle,
		ChapterID: cp.ChapterID,
		Summary:   cp.Summary,
		KeyPoints: make([]keyPointView, 0, len(cp.KeyPoints)),
	}
	if ch, ok := h.catalog.Chapter(cp.Key()); ok {
		v.ChapterTitle = ch.Title
	}
	for _, kp := range cp.KeyPoints {
		v.KeyPoints = append(v.KeyPoints, keyPointView{ID: kp.ID, Text: kp.Text})
	}
	return v
}
