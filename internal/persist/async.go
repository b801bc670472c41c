package persist

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/eastboundjoe/aviation-study-guide/internal/progress"
)

// SyncStatus is the user-visible remote sync indicator.
type SyncStatus string

const (
	StatusSynced    SyncStatus = "synced"
	StatusSyncing   SyncStatus = "syncing"
	StatusSyncLater SyncStatus = "will sync later"
)

// DefaultQueueSize bounds the number of snapshots waiting for the worker.
const DefaultQueueSize = 32

// ErrSaverClosed is returned by Save after Close.
var ErrSaverClosed = errors.New("saver closed")

type saveJob struct {
	p        *progress.LearnerProgress
	appended []progress.StudySession
}

// AsyncSaver hands snapshots to a single worker that writes them to a
// Backend in order. Save returns immediately; write failures are logged
// and surfaced through Status and LastError, never retried.
type AsyncSaver struct {
	backend Backend
	logger  *zap.Logger
	size    int

	mu       sync.Mutex
	queue    []saveJob
	inflight bool
	lastErr  error
	closed   bool
	idle     chan struct{}

	wake chan struct{}
	done chan struct{}
}

// AsyncOption configures an AsyncSaver.
type AsyncOption func(*AsyncSaver)

// WithQueueSize sets the queue bound.
func WithQueueSize(n int) AsyncOption {
	return func(a *AsyncSaver) {
		if n > 0 {
			a.size = n
		}
	}
}

// NewAsyncSaver starts the worker for backend.
func NewAsyncSaver(backend Backend, logger *zap.Logger, opts ...AsyncOption) *AsyncSaver {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &AsyncSaver{
		backend: backend,
		logger:  logger,
		size:    DefaultQueueSize,
		idle:    make(chan struct{}),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	for _, o := range opts {
		o(a)
	}
	close(a.idle)
	go a.run()
	return a
}

// Save queues p. When the queue is full the oldest queued snapshot is
// dropped; the session it carried moves to the next snapshot so no history
// row is lost.
func (a *AsyncSaver) Save(_ context.Context, p *progress.LearnerProgress, appended *progress.StudySession) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrSaverClosed
	}

	job := saveJob{p: p}
	if appended != nil {
		job.appended = []progress.StudySession{*appended}
	}
	if len(a.queue) >= a.size {
		oldest := a.queue[0]
		a.queue = a.queue[1:]
		if len(a.queue) > 0 {
			a.queue[0].appended = append(oldest.appended, a.queue[0].appended...)
		} else {
			job.appended = append(oldest.appended, job.appended...)
		}
		a.logger.Debug("sync queue full, dropped oldest snapshot")
	}
	if a.isIdleLocked() {
		a.idle = make(chan struct{})
	}
	a.queue = append(a.queue, job)

	select {
	case a.wake <- struct{}{}:
	default:
	}
	return nil
}

// Pending returns the number of snapshots not yet written.
func (a *AsyncSaver) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := len(a.queue)
	if a.inflight {
		n++
	}
	return n
}

// LastError returns the error of the most recent write, or nil if it
// succeeded.
func (a *AsyncSaver) LastError() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastErr
}

// Status summarizes the sync state.
func (a *AsyncSaver) Status() SyncStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch {
	case !a.isIdleLocked():
		return StatusSyncing
	case a.lastErr != nil:
		return StatusSyncLater
	default:
		return StatusSynced
	}
}

// Flush blocks until every queued snapshot has been written or ctx ends.
func (a *AsyncSaver) Flush(ctx context.Context) error {
	a.mu.Lock()
	idle := a.idle
	a.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close writes what is queued and stops the worker.
func (a *AsyncSaver) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		<-a.done
		return
	}
	a.closed = true
	a.mu.Unlock()

	select {
	case a.wake <- struct{}{}:
	default:
	}
	<-a.done
}

func (a *AsyncSaver) isIdleLocked() bool {
	return len(a.queue) == 0 && !a.inflight
}

func (a *AsyncSaver) run() {
	defer close(a.done)
	for {
		a.mu.Lock()
		if len(a.queue) == 0 {
			closed := a.closed
			a.mu.Unlock()
			if closed {
				return
			}
			<-a.wake
			continue
		}
		job := a.queue[0]
		a.queue = a.queue[1:]
		a.inflight = true
		a.mu.Unlock()

		err := a.write(job)

		a.mu.Lock()
		a.inflight = false
		a.lastErr = err
		if a.isIdleLocked() {
			close(a.idle)
		}
		a.mu.Unlock()

		if err != nil {
			a.logger.Warn("remote save failed, will sync on next change", zap.Error(err))
		}
	}
}

func (a *AsyncSaver) write(job saveJob) error {
	ctx := context.Background()
	if len(job.appended) == 0 {
		return a.backend.Save(ctx, job.p, nil)
	}
	var errs []error
	for i := range job.appended {
		if err := a.backend.Save(ctx, job.p, &job.appended[i]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
