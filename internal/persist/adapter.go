package persist

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/eastboundjoe/aviation-study-guide/internal/progress"
)

// MigrationStatus is the outcome of a local-to-remote migration attempt.
type MigrationStatus string

const (
	MigrationDisabled         MigrationStatus = "disabled"
	MigrationAlreadyAttempted MigrationStatus = "already-attempted"
	MigrationNoLocalData      MigrationStatus = "no-local-data"
	MigrationRemoteWins       MigrationStatus = "remote-has-data"
	MigrationCompleted        MigrationStatus = "migrated"
)

// MigrationResult describes a migration attempt.
type MigrationResult struct {
	Status   MigrationStatus `json:"status"`
	Chapters int             `json:"chapters"`
	Sessions int             `json:"sessions"`
}

// Adapter routes loads and saves to the backend matching the learner's
// identity and performs the one-time guest-to-account migration.
type Adapter struct {
	local  *LocalBackend
	rows   RowStore
	logger *zap.Logger

	mu       sync.Mutex
	migrated map[string]bool
}

// NewAdapter creates an Adapter. rows may be nil, in which case every
// learner is kept in the device store.
func NewAdapter(local *LocalBackend, rows RowStore, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{
		local:    local,
		rows:     rows,
		logger:   logger,
		migrated: make(map[string]bool),
	}
}

// RemoteEnabled reports whether a row store is configured.
func (a *Adapter) RemoteEnabled() bool {
	return a.rows != nil
}

// Backend returns the backend for identity.
func (a *Adapter) Backend(identity string) Backend {
	return Select(identity, a.local, a.rows)
}

// Load returns the progress of identity. It does not migrate; callers that
// hold the guest learner run MigrateLocalToRemote first.
func (a *Adapter) Load(ctx context.Context, identity string) (*progress.LearnerProgress, error) {
	return a.Backend(identity).Load(ctx)
}

// Save writes p for identity.
func (a *Adapter) Save(ctx context.Context, identity string, p *progress.LearnerProgress, appended *progress.StudySession) error {
	return a.Backend(identity).Save(ctx, p, appended)
}

// MigrateLocalToRemote copies the device progress to the row store for
// identity, unless the learner already has remote progress. On success the
// device copy is cleared. Once an attempt for identity has reached a
// decision, later calls return MigrationAlreadyAttempted; an attempt that
// failed on I/O may be retried.
func (a *Adapter) MigrateLocalToRemote(ctx context.Context, identity string) (MigrationResult, error) {
	if identity == "" || a.rows == nil {
		return MigrationResult{Status: MigrationDisabled}, nil
	}

	a.mu.Lock()
	if a.migrated[identity] {
		a.mu.Unlock()
		return MigrationResult{Status: MigrationAlreadyAttempted}, nil
	}
	a.migrated[identity] = true
	a.mu.Unlock()

	res, err := a.migrate(ctx, identity)
	if err != nil {
		a.mu.Lock()
		delete(a.migrated, identity)
		a.mu.Unlock()
	}
	return res, err
}

func (a *Adapter) migrate(ctx context.Context, identity string) (MigrationResult, error) {
	local, ok, err := a.local.peek(ctx)
	if err != nil {
		return MigrationResult{}, err
	}
	if !ok || local.IsEmpty() {
		return MigrationResult{Status: MigrationNoLocalData}, nil
	}

	remote := NewRemoteBackend(a.rows, identity)
	exists, err := remote.hasProgress(ctx)
	if err != nil {
		return MigrationResult{}, err
	}
	if exists {
		return MigrationResult{Status: MigrationRemoteWins}, nil
	}

	if err := remote.importAll(ctx, local); err != nil {
		return MigrationResult{}, fmt.Errorf("migrate progress: %w", err)
	}
	if err := a.local.Clear(ctx); err != nil {
		return MigrationResult{}, fmt.Errorf("clear local progress: %w", err)
	}
	return MigrationResult{
		Status:   MigrationCompleted,
		Chapters: local.CountCompleted(),
		Sessions: len(local.History),
	}, nil
}

// SaverFor returns the progress.Saver for identity. Guest saves go to the
// device store synchronously; signed-in saves are queued for the row store.
// The caller must Close the saver.
func (a *Adapter) SaverFor(identity string) *SessionSaver {
	s := &SessionSaver{identity: identity, adapter: a}
	if identity != "" && a.rows != nil {
		s.async = NewAsyncSaver(a.Backend(identity), a.logger.With(zap.String("identity", identity)))
	}
	return s
}

// SessionSaver persists one learner's progress through the Adapter.
type SessionSaver struct {
	identity string
	adapter  *Adapter
	async    *AsyncSaver
}

// Save implements progress.Saver.
func (s *SessionSaver) Save(ctx context.Context, p *progress.LearnerProgress, appended *progress.StudySession) error {
	if s.async != nil {
		return s.async.Save(ctx, p, appended)
	}
	return s.adapter.Save(ctx, s.identity, p, appended)
}

// Status reports remote sync state. Device saves are always synced.
func (s *SessionSaver) Status() SyncStatus {
	if s.async == nil {
		return StatusSynced
	}
	return s.async.Status()
}

// Pending returns the number of queued remote writes.
func (s *SessionSaver) Pending() int {
	if s.async == nil {
		return 0
	}
	return s.async.Pending()
}

// Flush waits for queued remote writes.
func (s *SessionSaver) Flush(ctx context.Context) error {
	if s.async == nil {
		return nil
	}
	return s.async.Flush(ctx)
}

// Close drains queued writes and stops the worker.
func (s *SessionSaver) Close() {
	if s.async != nil {
		s.async.Close()
	}
}
