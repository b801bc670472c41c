// Package shared holds what every study screen needs: the learner's
// tracker and the content catalog.
package shared

import (
	"fmt"
	"math/rand/v2"

	"github.com/eastboundjoe/aviation-study-guide/internal/content"
	"github.com/eastboundjoe/aviation-study-guide/internal/progress"
	"github.com/eastboundjoe/aviation-study-guide/internal/recall"
)

// Env is passed by value to every screen constructor.
type Env struct {
	Tracker *progress.Tracker
	Catalog *content.Catalog
	// Grader may be nil, in which case summaries are graded by keyword.
	Grader *recall.Grader
	Rand   *rand.Rand
}

// ChapterTitle returns the chapter's title, or "" when the catalog does not
// know the key.
func (e Env) ChapterTitle(key progress.Key) string {
	if ch, ok := e.Catalog.Chapter(key); ok {
		return ch.Title
	}
	return ""
}

// Describe renders a key as "Book · Ch N Title".
func (e Env) Describe(key progress.Key) string {
	s := fmt.Sprintf("%s · Ch %d", key.Book, key.Chapter)
	if t := e.ChapterTitle(key); t != "" {
		s += " " + t
	}
	return s
}

// RandomCheckpoint picks a checkpoint for interleaved review.
func (e Env) RandomCheckpoint() (content.Checkpoint, bool) {
	r := e.Rand
	if r == nil {
		r = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return e.Catalog.RandomCheckpoint(r)
}
