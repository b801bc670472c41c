// Package recall grades a spoken chapter summary against the chapter's key
// points.
package recall

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/eastboundjoe/aviation-study-guide/internal/content"
	"github.com/eastboundjoe/aviation-study-guide/internal/llm"
)

const (
	fallbackFeedback = "I had trouble listening just now."
	fallbackClue     = "Try summarizing that last part again for me?"
)

// Request is one grading call.
type Request struct {
	BookTitle    string
	ChapterTitle string
	KeyPoints    []content.KeyPoint
	Transcript   string
}

// Result is the grader's verdict.
type Result struct {
	CoveredPointIDs []string `json:"coveredPointIds"`
	Feedback        string   `json:"feedback"`
	Clue            string   `json:"clue"`

	// Degraded is set when the result is the fallback rather than a grade.
	Degraded bool `json:"degraded"`

	// Source is SourceModel or SourceKeywords.
	Source string `json:"source"`
}

// Grading sources.
const (
	SourceModel    = "llm"
	SourceKeywords = "keywords"
)

// Fallback is the result returned whenever grading is not possible.
func Fallback() Result {
	return Result{
		CoveredPointIDs: []string{},
		Feedback:        fallbackFeedback,
		Clue:            fallbackClue,
		Degraded:        true,
		Source:          SourceModel,
	}
}

// Config tunes the grading call.
type Config struct {
	MaxTokens   int
	Temperature float64

	// Timeout bounds the whole call, retries included. Zero means none.
	Timeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxTokens:   512,
		Temperature: 0.2,
		Timeout:     20 * time.Second,
	}
}

// Grader asks a language model which key points a transcript covers.
type Grader struct {
	provider llm.Provider
	cfg      Config
	logger   *zap.Logger
}

// NewGrader returns a grader. A nil provider yields a grader that always
// falls back.
func NewGrader(provider llm.Provider, cfg Config, logger *zap.Logger) *Grader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Grader{provider: provider, cfg: cfg, logger: logger.Named("recall")}
}

// Enabled reports whether a provider is configured.
func (g *Grader) Enabled() bool {
	return g != nil && g.provider != nil
}

type gradingOutput struct {
	CoveredPointIDs []string `json:"coveredPointIds"`
	Feedback        string   `json:"feedback"`
	Clue            string   `json:"clue"`
}

// Grade grades req with the model when one is configured and by keyword
// match otherwise.
func (g *Grader) Grade(ctx context.Context, req Request) Result {
	if !g.Enabled() {
		return GradeKeywords(req.KeyPoints, req.Transcript)
	}
	return g.Analyze(ctx, req)
}

// Analyze grades req. It never fails: every error is logged and answered
// with Fallback.
func (g *Grader) Analyze(ctx context.Context, req Request) Result {
	if !g.Enabled() || strings.TrimSpace(req.Transcript) == "" {
		return Fallback()
	}

	res, err := g.analyze(ctx, req)
	if err != nil {
		g.logger.Warn("recall grading failed",
			zap.String("book", req.BookTitle),
			zap.String("chapter", req.ChapterTitle),
			zap.Error(err))
		return Fallback()
	}
	return res
}

func (g *Grader) analyze(ctx context.Context, req Request) (Result, error) {
	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}
	ctx = llm.WithPurpose(ctx, "recall-grading")

	msg, err := buildUserMessage(req)
	if err != nil {
		return Result{}, fmt.Errorf("build grading prompt: %w", err)
	}

	resp, err := g.provider.Generate(ctx, llm.Request{
		System:      systemPrompt,
		Messages:    llm.UserPrompt(msg),
		Schema:      GradingSchema,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
	})
	if err != nil {
		return Result{}, err
	}

	var out gradingOutput
	if err := json.Unmarshal([]byte(llm.StripFences(string(resp.Content))), &out); err != nil {
		return Result{}, fmt.Errorf("parse grading response: %w", err)
	}

	return Result{
		CoveredPointIDs: knownIDs(out.CoveredPointIDs, req.KeyPoints),
		Feedback:        out.Feedback,
		Clue:            out.Clue,
		Source:          SourceModel,
	}, nil
}

// knownIDs keeps ids that name one of points, once each, in the order the
// model gave them.
func knownIDs(ids []string, points []content.KeyPoint) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if slices.Contains(out, id) {
			continue
		}
		if slices.ContainsFunc(points, func(kp content.KeyPoint) bool { return kp.ID == id }) {
			out = append(out, id)
		}
	}
	return out
}
