package progress

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Saver persists a progress snapshot. appended is the session added by the
// triggering outcome, or nil when no history row was added.
type Saver interface {
	Save(ctx context.Context, p *LearnerProgress, appended *StudySession) error
}

// SaverFunc adapts a function to the Saver interface.
type SaverFunc func(ctx context.Context, p *LearnerProgress, appended *StudySession) error

// Save calls f.
func (f SaverFunc) Save(ctx context.Context, p *LearnerProgress, appended *StudySession) error {
	return f(ctx, p, appended)
}

// Tracker owns the LearnerProgress of one learner and serializes every
// mutation of it.
type Tracker struct {
	mu     sync.Mutex
	p      *LearnerProgress
	saver  Saver
	now    func() time.Time
	logger *zap.Logger
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithLogger sets the logger used for persistence failures.
func WithLogger(l *zap.Logger) Option {
	return func(t *Tracker) { t.logger = l }
}

// NewTracker creates a Tracker around p. A nil p starts empty; a nil saver
// keeps progress in memory only.
func NewTracker(p *LearnerProgress, saver Saver, opts ...Option) *Tracker {
	if p == nil {
		p = New()
	}
	t := &Tracker{
		p:      p.Clone(),
		saver:  saver,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// RecordOutcome applies one checkpoint or quiz outcome for key: the level
// walks one rung, the next review date is recomputed, the chapter is marked
// completed and a session is appended. The returned snapshot already
// reflects the update; persistence happens afterwards and its failure is
// only logged.
func (t *Tracker) RecordOutcome(ctx context.Context, key Key, success bool) *LearnerProgress {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.p.apply(key, success, t.now())
	snap := t.p.Clone()
	t.save(ctx, snap, &s)
	return snap
}

// RecordQuiz stores the latest quiz score for key and applies the pass or
// fail as one outcome. Both land in a single snapshot and a single save.
func (t *Tracker) RecordQuiz(ctx context.Context, key Key, score int, passed bool) *LearnerProgress {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.p.QuizScores[key] = score
	s := t.p.apply(key, passed, t.now())
	snap := t.p.Clone()
	t.save(ctx, snap, &s)
	return snap
}

// Snapshot returns a deep copy of the current progress.
func (t *Tracker) Snapshot() *LearnerProgress {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.p.Clone()
}

// Replace swaps in p, for example after the learner signs in and their
// remote progress is loaded. Nothing is persisted.
func (t *Tracker) Replace(p *LearnerProgress) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.p = p.Clone()
}

// ResetIf runs fn with every mutation blocked. If fn reports true the
// in-memory progress is emptied before the lock is released. Nothing is
// persisted.
func (t *Tracker) ResetIf(fn func() bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if fn() {
		t.p = New()
	}
}

// Now returns the tracker's current time.
func (t *Tracker) Now() time.Time {
	return t.now()
}

func (t *Tracker) save(ctx context.Context, snap *LearnerProgress, appended *StudySession) {
	if t.saver == nil {
		return
	}
	if err := t.saver.Save(ctx, snap, appended); err != nil {
		t.logger.Warn("progress save failed", zap.Error(err))
	}
}
