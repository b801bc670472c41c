package persist

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eastboundjoe/aviation-study-guide/internal/progress"
)

// gatedBackend blocks every Save until release is closed.
type gatedBackend struct {
	release chan struct{}
	err     error

	mu       sync.Mutex
	saves    int
	sessions []progress.StudySession
	last     *progress.LearnerProgress
}

func newGatedBackend() *gatedBackend {
	return &gatedBackend{release: make(chan struct{})}
}

func (g *gatedBackend) Load(context.Context) (*progress.LearnerProgress, error) {
	return progress.New(), nil
}

func (g *gatedBackend) Save(_ context.Context, p *progress.LearnerProgress, s *progress.StudySession) error {
	<-g.release
	g.mu.Lock()
	defer g.mu.Unlock()
	g.saves++
	g.last = p
	if s != nil {
		g.sessions = append(g.sessions, *s)
	}
	return g.err
}

func session(ch int) *progress.StudySession {
	return &progress.StudySession{Date: testNow, Book: "A", Chapter: ch, Success: true}
}

func flush(t *testing.T, a *AsyncSaver) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, a.Flush(ctx))
}

func TestAsyncSaver_InOrder(t *testing.T) {
	b := newGatedBackend()
	close(b.release)
	a := NewAsyncSaver(b, nil)
	defer a.Close()

	for i := 1; i <= 5; i++ {
		require.NoError(t, a.Save(context.Background(), progress.New(), session(i)))
	}
	flush(t, a)

	require.Len(t, b.sessions, 5)
	for i, s := range b.sessions {
		assert.Equal(t, i+1, s.Chapter)
	}
	assert.Equal(t, StatusSynced, a.Status())
}

func TestAsyncSaver_StatusWhileSyncing(t *testing.T) {
	b := newGatedBackend()
	a := NewAsyncSaver(b, nil)

	require.NoError(t, a.Save(context.Background(), progress.New(), session(1)))
	assert.Equal(t, StatusSyncing, a.Status())
	assert.Equal(t, 1, a.Pending())

	close(b.release)
	flush(t, a)
	assert.Equal(t, StatusSynced, a.Status())
	a.Close()
}

func TestAsyncSaver_FailureWillSyncLater(t *testing.T) {
	b := newGatedBackend()
	b.err = errors.New("network down")
	close(b.release)
	a := NewAsyncSaver(b, nil)
	defer a.Close()

	require.NoError(t, a.Save(context.Background(), progress.New(), session(1)))
	flush(t, a)
	assert.Equal(t, StatusSyncLater, a.Status())
	assert.ErrorContains(t, a.LastError(), "network down")

	b.mu.Lock()
	b.err = nil
	b.mu.Unlock()
	require.NoError(t, a.Save(context.Background(), progress.New(), session(2)))
	flush(t, a)
	assert.Equal(t, StatusSynced, a.Status())
	assert.NoError(t, a.LastError())
}

func TestAsyncSaver_OverflowKeepsHistory(t *testing.T) {
	b := newGatedBackend()
	a := NewAsyncSaver(b, nil, WithQueueSize(2))

	// The first job is taken by the worker and blocks on the gate.
	require.NoError(t, a.Save(context.Background(), progress.New(), session(1)))
	require.Eventually(t, func() bool {
		a.mu.Lock()
		defer a.mu.Unlock()
		return a.inflight
	}, 5*time.Second, time.Millisecond)

	final := progress.New()
	final.QuizScores[progress.Key{Book: "A", Chapter: 9}] = 1
	for i := 2; i <= 6; i++ {
		p := progress.New()
		if i == 6 {
			p = final
		}
		require.NoError(t, a.Save(context.Background(), p, session(i)))
	}
	assert.LessOrEqual(t, a.Pending(), 3)

	close(b.release)
	flush(t, a)
	a.Close()

	chapters := make([]int, 0, len(b.sessions))
	for _, s := range b.sessions {
		chapters = append(chapters, s.Chapter)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, chapters)
	assert.Same(t, final, b.last)
}

func TestAsyncSaver_SaveAfterClose(t *testing.T) {
	b := newGatedBackend()
	close(b.release)
	a := NewAsyncSaver(b, nil)
	a.Close()
	a.Close()
	assert.ErrorIs(t, a.Save(context.Background(), progress.New(), nil), ErrSaverClosed)
}

func TestAsyncSaver_CloseDrains(t *testing.T) {
	b := newGatedBackend()
	close(b.release)
	a := NewAsyncSaver(b, nil)
	for i := 0; i < 10; i++ {
		require.NoError(t, a.Save(context.Background(), progress.New(), nil))
	}
	a.Close()
	assert.Equal(t, 10, b.saves)
}
