// Package reminder periodically counts the reviews due for every loaded
// learner and reports them.
package reminder

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/eastboundjoe/aviation-study-guide/internal/learner"
)

// Notifier is told about each learner with reviews due.
type Notifier interface {
	NotifyDue(identity string, due int) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(identity string, due int) error

// NotifyDue calls f.
func (f NotifierFunc) NotifyDue(identity string, due int) error {
	return f(identity, due)
}

// Summary is the result of one sweep.
type Summary struct {
	Learners int
	WithDue  int
	Due      int
}

// Scheduler runs the due sweep on a fixed interval.
type Scheduler struct {
	scheduler *gocron.Scheduler
	learners  *learner.Registry
	interval  time.Duration
	notifier  Notifier
	logger    *zap.Logger

	dueGauge     prometheus.Gauge
	learnerGauge prometheus.Gauge
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithNotifier sends due counts somewhere other than the log.
func WithNotifier(n Notifier) Option {
	return func(s *Scheduler) { s.notifier = n }
}

// New creates a scheduler sweeping learners every interval.
func New(learners *learner.Registry, interval time.Duration, logger *zap.Logger, opts ...Option) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		learners:  learners,
		interval:  interval,
		logger:    logger.Named("reminder"),
		dueGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "reviews_due",
			Help: "Chapter reviews due today across loaded learners",
		}),
		learnerGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "learners_with_reviews_due",
			Help: "Loaded learners with at least one review due today",
		}),
	}
	s.scheduler.SingletonModeAll()
	for _, o := range opts {
		o(s)
	}
	if s.notifier == nil {
		s.notifier = NotifierFunc(s.logDue)
	}
	return s
}

// Register adds the sweep gauges to reg.
func (s *Scheduler) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{s.dueGauge, s.learnerGauge} {
		if err := reg.Register(c); err != nil {
			return fmt.Errorf("register reminder metrics: %w", err)
		}
	}
	return nil
}

// Start schedules the sweep and runs the first one immediately.
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(s.interval).Do(s.Sweep); err != nil {
		return fmt.Errorf("schedule reminder sweep: %w", err)
	}
	s.scheduler.StartAsync()
	s.logger.Info("reminder sweep scheduled", zap.Duration("interval", s.interval))
	return nil
}

// Stop terminates the scheduler.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// Sweep counts due reviews for every loaded learner, notifies those with
// any due, and updates the gauges.
func (s *Scheduler) Sweep() Summary {
	var sum Summary
	s.learners.Each(func(l *learner.Learner) {
		sum.Learners++
		due := l.Tracker.Snapshot().CountDueToday(l.Tracker.Now())
		if due == 0 {
			return
		}
		sum.WithDue++
		sum.Due += due
		if err := s.notifier.NotifyDue(l.Identity, due); err != nil {
			s.logger.Warn("reminder failed", zap.String("identity", l.Identity), zap.Error(err))
		}
	})

	s.dueGauge.Set(float64(sum.Due))
	s.learnerGauge.Set(float64(sum.WithDue))
	s.logger.Debug("reminder sweep",
		zap.Int("learners", sum.Learners),
		zap.Int("with_due", sum.WithDue),
		zap.Int("due", sum.Due))
	return sum
}

func (s *Scheduler) logDue(identity string, due int) error {
	if identity == "" {
		identity = "guest"
	}
	s.logger.Info("reviews due", zap.String("identity", identity), zap.Int("due", due))
	return nil
}
