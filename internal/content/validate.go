package content

import (
	"fmt"
	"strings"

	"github.com/eastboundjoe/aviation-study-guide/internal/progress"
)

// validate runs the structural checks and reports every problem at once.
func validate(books []Book, checkpoints []Checkpoint, quizzes []Quiz) error {
	var errs []string

	chapters := make(map[progress.Key]bool)
	titles := make(map[string]bool, len(books))
	for _, b := range books {
		if b.Title == "" {
			errs = append(errs, "book with empty title")
		}
		if titles[b.Title] {
			errs = append(errs, fmt.Sprintf("duplicate book %q", b.Title))
		}
		titles[b.Title] = true

		for _, ch := range b.Chapters {
			key := progress.Key{Book: b.Title, Chapter: ch.ID}
			if !key.Valid() {
				errs = append(errs, fmt.Sprintf("book %q: invalid chapter id %d", b.Title, ch.ID))
			}
			if chapters[key] {
				errs = append(errs, fmt.Sprintf("book %q: duplicate chapter %d", b.Title, ch.ID))
			}
			chapters[key] = true
		}
	}

	seen := make(map[progress.Key]bool, len(checkpoints))
	for _, cp := range checkpoints {
		key := cp.Key()
		if !chapters[key] {
			errs = append(errs, fmt.Sprintf("checkpoint %s references an unknown chapter", key))
		}
		if seen[key] {
			errs = append(errs, fmt.Sprintf("duplicate checkpoint %s", key))
		}
		seen[key] = true

		if len(cp.KeyPoints) == 0 {
			errs = append(errs, fmt.Sprintf("checkpoint %s has no key points", key))
		}
		ids := make(map[string]bool, len(cp.KeyPoints))
		for _, kp := range cp.KeyPoints {
			if ids[kp.ID] {
				errs = append(errs, fmt.Sprintf("checkpoint %s: duplicate key point %q", key, kp.ID))
			}
			ids[kp.ID] = true
			if len(kp.Keywords) == 0 {
				errs = append(errs, fmt.Sprintf("checkpoint %s: key point %q has no keywords", key, kp.ID))
			}
		}
	}

	clear(seen)
	for _, q := range quizzes {
		key := q.Key()
		if !chapters[key] {
			errs = append(errs, fmt.Sprintf("quiz %s references an unknown chapter", key))
		}
		if seen[key] {
			errs = append(errs, fmt.Sprintf("duplicate quiz %s", key))
		}
		seen[key] = true

		if len(q.Questions) == 0 {
			errs = append(errs, fmt.Sprintf("quiz %s has no questions", key))
		}
		for _, qu := range q.Questions {
			if len(qu.Options) < 2 {
				errs = append(errs, fmt.Sprintf("quiz %s question %q: needs at least 2 options", key, qu.ID))
			}
			if qu.CorrectAnswer < 0 || qu.CorrectAnswer >= len(qu.Options) {
				errs = append(errs, fmt.Sprintf("quiz %s question %q: correct answer %d out of range", key, qu.ID, qu.CorrectAnswer))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("content validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}
