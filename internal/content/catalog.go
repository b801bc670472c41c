// Package content holds the study material: the FAA handbooks and their
// chapters, the recall checkpoints and the chapter quizzes.
package content

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/eastboundjoe/aviation-study-guide/internal/progress"
)

//go:embed data/*.json
var dataFS embed.FS

// Catalog indexes books, checkpoints and quizzes.
type Catalog struct {
	books       []Book
	byTitle     map[string]*Book
	checkpoints []Checkpoint
	byCheckKey  map[progress.Key]*Checkpoint
	quizzes     map[progress.Key]*Quiz
}

var defaultCatalog = sync.OnceValues(func() (*Catalog, error) {
	sub, err := fs.Sub(dataFS, "data")
	if err != nil {
		return nil, err
	}
	return Load(sub)
})

// Default returns the embedded catalog. It is parsed once.
func Default() (*Catalog, error) {
	return defaultCatalog()
}

// Load reads books.json, checkpoints.json and quizzes.json from fsys and
// validates them.
func Load(fsys fs.FS) (*Catalog, error) {
	var (
		books       []Book
		checkpoints []Checkpoint
		quizzes     []Quiz
	)
	for name, dst := range map[string]any{
		"books.json":       &books,
		"checkpoints.json": &checkpoints,
		"quizzes.json":     &quizzes,
	} {
		b, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		if err := json.Unmarshal(b, dst); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
	}
	return New(books, checkpoints, quizzes)
}

// New builds a catalog from already-decoded material.
func New(books []Book, checkpoints []Checkpoint, quizzes []Quiz) (*Catalog, error) {
	if err := validate(books, checkpoints, quizzes); err != nil {
		return nil, err
	}

	c := &Catalog{
		books:       books,
		byTitle:     make(map[string]*Book, len(books)),
		checkpoints: checkpoints,
		byCheckKey:  make(map[progress.Key]*Checkpoint, len(checkpoints)),
		quizzes:     make(map[progress.Key]*Quiz, len(quizzes)),
	}
	for i := range c.books {
		c.byTitle[c.books[i].Title] = &c.books[i]
	}
	for i := range c.checkpoints {
		c.byCheckKey[c.checkpoints[i].Key()] = &c.checkpoints[i]
	}
	for i := range quizzes {
		c.quizzes[quizzes[i].Key()] = &quizzes[i]
	}
	return c, nil
}

// Books returns every book in catalog order.
func (c *Catalog) Books() []Book {
	return slices.Clone(c.books)
}

// Book looks a book up by title.
func (c *Catalog) Book(title string) (Book, bool) {
	b, ok := c.byTitle[title]
	if !ok {
		return Book{}, false
	}
	return *b, true
}

// Chapter looks a chapter up by key.
func (c *Catalog) Chapter(key progress.Key) (Chapter, bool) {
	b, ok := c.byTitle[key.Book]
	if !ok {
		return Chapter{}, false
	}
	i := slices.IndexFunc(b.Chapters, func(ch Chapter) bool { return ch.ID == key.Chapter })
	if i < 0 {
		return Chapter{}, false
	}
	return b.Chapters[i], true
}

// Checkpoint returns the recall checkpoint for a chapter, if one exists.
func (c *Catalog) Checkpoint(key progress.Key) (Checkpoint, bool) {
	cp, ok := c.byCheckKey[key]
	if !ok {
		return Checkpoint{}, false
	}
	return *cp, true
}

// Quiz returns the quiz for a chapter, if one exists.
func (c *Catalog) Quiz(key progress.Key) (Quiz, bool) {
	q, ok := c.quizzes[key]
	if !ok {
		return Quiz{}, false
	}
	return *q, true
}

// Checkpoints returns every checkpoint in catalog order.
func (c *Catalog) Checkpoints() []Checkpoint {
	return slices.Clone(c.checkpoints)
}

// RandomCheckpoint picks a checkpoint from any book, for interleaved
// review. ok is false when the catalog has none.
func (c *Catalog) RandomCheckpoint(r *rand.Rand) (Checkpoint, bool) {
	if len(c.checkpoints) == 0 {
		return Checkpoint{}, false
	}
	return c.checkpoints[r.IntN(len(c.checkpoints))], true
}
