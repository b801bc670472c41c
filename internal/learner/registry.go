// Package learner keeps one live progress Tracker per learner identity so
// that the HTTP server, the reminder sweep and the CLI share a single
// in-memory copy of each learner's progress.
package learner

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/eastboundjoe/aviation-study-guide/internal/persist"
	"github.com/eastboundjoe/aviation-study-guide/internal/progress"
)

// Learner is the loaded state of one identity. The empty identity is the
// guest learner on this device.
type Learner struct {
	Identity string
	Tracker  *progress.Tracker

	saver *persist.SessionSaver
}

// SyncStatus reports whether the learner's saves have reached the row store.
func (l *Learner) SyncStatus() persist.SyncStatus {
	return l.saver.Status()
}

// Pending returns the number of queued remote writes.
func (l *Learner) Pending() int {
	return l.saver.Pending()
}

// Flush waits for queued remote writes.
func (l *Learner) Flush(ctx context.Context) error {
	return l.saver.Flush(ctx)
}

// Registry loads learners lazily and caches them by identity.
type Registry struct {
	adapter *persist.Adapter
	logger  *zap.Logger
	opts    []progress.Option

	mu       sync.RWMutex
	learners map[string]*Learner
	locks    sync.Map // identity -> *sync.Mutex
}

// NewRegistry creates a Registry backed by adapter. opts are applied to
// every Tracker it creates.
func NewRegistry(adapter *persist.Adapter, logger *zap.Logger, opts ...progress.Option) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		adapter:  adapter,
		logger:   logger,
		opts:     opts,
		learners: make(map[string]*Learner),
	}
}

// Adapter returns the persistence adapter behind the registry.
func (r *Registry) Adapter() *persist.Adapter {
	return r.adapter
}

// Get returns the learner for identity, loading its progress on first use.
// Concurrent first calls for the same identity load once.
func (r *Registry) Get(ctx context.Context, identity string) (*Learner, error) {
	if l := r.lookup(identity); l != nil {
		return l, nil
	}

	lock := r.lockFor(identity)
	lock.Lock()
	defer lock.Unlock()

	if l := r.lookup(identity); l != nil {
		return l, nil
	}

	if identity != "" {
		r.migrateOnLoad(ctx, identity)
	}
	p, err := r.adapter.Load(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}

	saver := r.adapter.SaverFor(identity)
	logger := r.logger.With(zap.String("identity", displayIdentity(identity)))
	opts := append(slices.Clone(r.opts), progress.WithLogger(logger))
	l := &Learner{
		Identity: identity,
		Tracker:  progress.NewTracker(p, saver, opts...),
		saver:    saver,
	}

	r.mu.Lock()
	r.learners[identity] = l
	r.mu.Unlock()

	logger.Debug("learner loaded",
		zap.Int("chapters", p.CountCompleted()),
		zap.Int("sessions", len(p.History)))
	return l, nil
}

// Migrate moves the guest progress on this device into identity's account.
// The guest is locked for the whole attempt: a concurrent first Get("")
// waits, and a loaded guest Tracker cannot record outcomes. When the device
// copy is cleared the guest Tracker is emptied in place, so later guest
// outcomes cannot write the migrated sessions back.
func (r *Registry) Migrate(ctx context.Context, identity string) (persist.MigrationResult, error) {
	lock := r.lockFor("")
	lock.Lock()
	defer lock.Unlock()

	guest := r.lookup("")
	if guest == nil {
		return r.adapter.MigrateLocalToRemote(ctx, identity)
	}

	var (
		res persist.MigrationResult
		err error
	)
	guest.Tracker.ResetIf(func() bool {
		res, err = r.adapter.MigrateLocalToRemote(ctx, identity)
		return err == nil && res.Status == persist.MigrationCompleted
	})
	return res, err
}

// migrateOnLoad runs the one-time migration before a signed-in learner is
// first loaded. Failure is logged and does not prevent loading.
func (r *Registry) migrateOnLoad(ctx context.Context, identity string) {
	res, err := r.Migrate(ctx, identity)
	if err != nil {
		r.logger.Warn("local progress migration failed", zap.String("identity", identity), zap.Error(err))
		return
	}
	if res.Status == persist.MigrationCompleted {
		r.logger.Info("migrated local progress",
			zap.String("identity", identity),
			zap.Int("chapters", res.Chapters),
			zap.Int("sessions", res.Sessions))
	}
}

// Each calls fn for every loaded learner in identity order.
func (r *Registry) Each(fn func(*Learner)) {
	r.mu.RLock()
	ls := make([]*Learner, 0, len(r.learners))
	for _, l := range r.learners {
		ls = append(ls, l)
	}
	r.mu.RUnlock()

	slices.SortFunc(ls, func(a, b *Learner) int { return cmp.Compare(a.Identity, b.Identity) })
	for _, l := range ls {
		fn(l)
	}
}

// Len returns the number of loaded learners.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.learners)
}

// PendingWrites sums queued remote writes across loaded learners.
func (r *Registry) PendingWrites() int {
	n := 0
	r.Each(func(l *Learner) { n += l.Pending() })
	return n
}

// Close drains and stops every learner's saver.
func (r *Registry) Close() {
	r.mu.Lock()
	ls := r.learners
	r.learners = make(map[string]*Learner)
	r.mu.Unlock()

	for _, l := range ls {
		l.saver.Close()
	}
}

func (r *Registry) lookup(identity string) *Learner {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.learners[identity]
}

func (r *Registry) lockFor(identity string) *sync.Mutex {
	v, _ := r.locks.LoadOrStore(identity, &sync.Mutex{})
	return v.(*sync.Mutex)
}

func displayIdentity(identity string) string {
	if identity == "" {
		return "guest"
	}
	return identity
}
