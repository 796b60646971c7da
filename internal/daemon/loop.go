package daemon

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/raoulx24/backup-warden/internal/logging"
	"github.com/raoulx24/backup-warden/internal/schedule"
	"github.com/raoulx24/backup-warden/internal/snapshot"
	"github.com/raoulx24/backup-warden/internal/watcher"
	"github.com/raoulx24/backup-warden/internal/worker"
)

// State is the control loop's current activity.
type State int

const (
	Starting State = iota
	Idle
	BackingUp
	Snapshotting
)

func (s State) String() string {
	switch s {
	case Starting:
		return "starting"
	case Idle:
		return "idle"
	case BackingUp:
		return "backing-up"
	case Snapshotting:
		return "snapshotting"
	default:
		return "unknown"
	}
}

// Producer runs backup and snapshot cycles. *worker.Worker satisfies it.
type Producer interface {
	HasBackups() bool
	Handle(ctx context.Context, job worker.Job) error
}

// LoopConfig wires a Loop.
type LoopConfig struct {
	Events   <-chan watcher.Event
	Producer Producer
	Schedule cron.Schedule
	// WaitBudget bounds each wait for an event.
	WaitBudget time.Duration
	// SnapshotRetry spaces attempts after a failed snapshot.
	SnapshotRetry time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
	Log logging.Logger
}

// Loop is the single thread of control: it turns change events into backups
// and checks the snapshot schedule after every wake-up. Cycles never overlap.
type Loop struct {
	cfg   LoopConfig
	sched *schedule.Scheduler
	// lastDayOnly drops activations that are noticed after the last day of
	// the month has passed.
	lastDayOnly bool
	retryAt     time.Time

	mu    sync.Mutex
	state State
}

func NewLoop(cfg LoopConfig) *Loop {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Schedule == nil {
		cfg.Schedule = schedule.LastDayOfMonth{}
	}
	if cfg.WaitBudget <= 0 {
		cfg.WaitBudget = 60 * time.Second
	}
	if cfg.SnapshotRetry <= 0 {
		cfg.SnapshotRetry = 5 * time.Minute
	}
	if cfg.Log == nil {
		cfg.Log = logging.Nop{}
	}
	_, lastDayOnly := cfg.Schedule.(schedule.LastDayOfMonth)
	return &Loop{cfg: cfg, lastDayOnly: lastDayOnly, state: Starting}
}

// State reports what the loop is doing right now.
func (l *Loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *Loop) setState(s State) {
	l.mu.Lock()
	l.state = s
	l.mu.Unlock()
}

// Run blocks until ctx is cancelled. Cycle failures are logged and never end
// the loop.
func (l *Loop) Run(ctx context.Context) error {
	l.setState(Starting)
	now := l.cfg.Now()
	l.sched = schedule.NewScheduler(l.cfg.Schedule, now)
	l.retryAt = time.Time{}
	l.cfg.Log.Debug("next snapshot", "at", l.sched.Next().Format(time.RFC3339))

	if !l.cfg.Producer.HasBackups() {
		l.cfg.Log.Info("no backup folders found, creating initial backup")
		l.cycle(ctx, BackingUp, snapshot.Daily, now)
	}

	events := l.cfg.Events
	timer := time.NewTimer(l.cfg.WaitBudget)
	defer timer.Stop()

	for {
		l.setState(Idle)
		timer.Reset(l.cfg.WaitBudget)

		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok {
				l.cfg.Log.Warn("change monitor stopped, continuing on timeouts only")
				events = nil
				break
			}
			l.handle(ctx, ev)

		case <-timer.C:
		}

		if ctx.Err() != nil {
			return nil
		}
		l.checkSnapshot(ctx)
	}
}

// handle reacts to one event plus everything already queued behind it. The
// queued events all happened before the backup starts, so one copy covers them.
func (l *Loop) handle(ctx context.Context, ev watcher.Event) {
	trigger := l.inspect(ev)

	for drained := false; !drained; {
		select {
		case more, ok := <-l.cfg.Events:
			if !ok {
				drained = true
				break
			}
			trigger = l.inspect(more) || trigger
		default:
			drained = true
		}
	}

	if trigger {
		l.cycle(ctx, BackingUp, snapshot.Daily, l.cfg.Now())
	}
}

// inspect logs an event and reports whether it calls for a backup.
func (l *Loop) inspect(ev watcher.Event) bool {
	switch {
	case ev.Err != nil:
		l.cfg.Log.Warn("watch error", "error", ev.Err)
		return false
	case ev.Triggers():
		l.cfg.Log.Debug("change", "op", ev.Op.String(), "path", ev.Path)
		return true
	default:
		return false
	}
}

func (l *Loop) checkSnapshot(ctx context.Context) {
	now := l.cfg.Now()
	if !l.sched.Due(now) {
		return
	}
	if l.lastDayOnly && !schedule.IsLastDayOfMonth(now) {
		l.cfg.Log.Warn("missed monthly snapshot, last day of month has passed",
			"due", l.sched.Next().Format(time.DateOnly))
		l.rearm(now)
		return
	}
	if now.Before(l.retryAt) {
		return
	}

	if err := l.cycle(ctx, Snapshotting, snapshot.Monthly, now); err != nil {
		// Locations that already hold the date are skipped on the next try.
		l.retryAt = now.Add(l.cfg.SnapshotRetry)
		l.cfg.Log.Info("snapshot will be retried", "at", l.retryAt.Format(time.RFC3339))
		return
	}
	l.rearm(now)
}

func (l *Loop) rearm(now time.Time) {
	l.sched.Done(now)
	l.retryAt = time.Time{}
	l.cfg.Log.Debug("next snapshot", "at", l.sched.Next().Format(time.RFC3339))
}

func (l *Loop) cycle(ctx context.Context, s State, kind snapshot.Kind, at time.Time) error {
	l.setState(s)
	job := worker.NewJob(kind, at)
	err := l.cfg.Producer.Handle(ctx, job)
	if err != nil {
		l.cfg.Log.Warn("cycle finished with errors", "cycle", job.ID, "kind", string(kind), "error", err)
	}
	return err
}
