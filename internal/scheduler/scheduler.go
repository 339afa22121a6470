// ABOUTME: Reminder scheduler firing at most one notification per reminder per due minute.
// ABOUTME: Runs on gocron duration jobs and reads reminders from in-memory state.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"

	"github.com/harperreed/healhub/internal/models"
	"github.com/harperreed/healhub/internal/notify"
)

const (
	DefaultInterval   = 30 * time.Second
	DefaultPruneEvery = 10 * time.Minute

	defaultTitle = "Reminder"
	defaultBody  = "Time for your reminder"
)

// Source supplies the reminders to check.
type Source interface {
	ListReminders() []models.Reminder
	LookupMedicine(id models.ID) (models.Medicine, bool)
	NotificationsEnabled() bool
}

// Notifier delivers a notification, natively or through fallback.
type Notifier interface {
	Notify(ctx context.Context, title string, opts notify.Options, fallback notify.Fallback) bool
}

// Options configures a Scheduler.
type Options struct {
	Interval   time.Duration
	PruneEvery time.Duration
	Location   *time.Location
	Clock      clockwork.Clock
	Logger     *log.Logger
	Fallback   notify.Fallback
}

// Scheduler checks reminders on a fixed interval.
type Scheduler struct {
	source   Source
	notifier Notifier
	opts     Options

	mu       sync.Mutex
	notified map[string]string // unique id -> bucket

	cron   gocron.Scheduler
	ctx    context.Context
	cancel context.CancelFunc
}

// New builds a scheduler. It does nothing until Start or Tick is called.
func New(source Source, notifier Notifier, opts Options) *Scheduler {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.PruneEvery <= 0 {
		opts.PruneEvery = DefaultPruneEvery
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Scheduler{
		source:   source,
		notifier: notifier,
		opts:     opts,
		notified: make(map[string]string),
		ctx:      context.Background(),
	}
}

// Start registers the tick and prune jobs and runs one tick immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.cron != nil {
		s.mu.Unlock()
		return fmt.Errorf("scheduler already started")
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	cron, err := gocron.NewScheduler(gocron.WithClock(s.opts.Clock))
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}

	_, err = cron.NewJob(
		gocron.DurationJob(s.opts.Interval),
		gocron.NewTask(func() { s.Tick(s.opts.Clock.Now()) }),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = cron.Shutdown()
		return fmt.Errorf("register tick job: %w", err)
	}

	_, err = cron.NewJob(
		gocron.DurationJob(s.opts.PruneEvery),
		gocron.NewTask(func() { s.Prune(s.opts.Clock.Now()) }),
	)
	if err != nil {
		_ = cron.Shutdown()
		return fmt.Errorf("register prune job: %w", err)
	}

	s.mu.Lock()
	s.cron = cron
	s.mu.Unlock()

	cron.Start()
	s.Tick(s.opts.Clock.Now())
	return nil
}

// Stop cancels pending timers. It is safe to call more than once.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	cron := s.cron
	s.cron = nil
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if cron == nil {
		return nil
	}
	return cron.Shutdown()
}

// Tick checks every reminder against now and returns how many fired.
func (s *Scheduler) Tick(now time.Time) int {
	if !s.source.NotificationsEnabled() {
		s.opts.Logger.Debug("notifications disabled, skipping tick")
		return 0
	}

	nowKey := MinuteBucket(now, s.opts.Location)
	fired := 0
	for _, r := range s.source.ListReminders() {
		if s.check(r, now, nowKey) {
			fired++
		}
	}
	if fired > 0 {
		s.opts.Logger.Debug("tick", "bucket", nowKey, "fired", fired)
	}
	return fired
}

func (s *Scheduler) check(r models.Reminder, now time.Time, nowKey string) (fired bool) {
	defer func() {
		if rec := recover(); rec != nil {
			s.opts.Logger.Warn("reminder check panicked", "reminder", r.ID, "panic", rec)
			fired = false
		}
	}()

	if !r.Pending() {
		return false
	}
	bucket, ok := s.occurrence(r, now)
	if !ok || bucket != nowKey {
		return false
	}

	uid := r.ID.String() + "::" + bucket
	s.mu.Lock()
	if _, seen := s.notified[uid]; seen {
		s.mu.Unlock()
		return false
	}
	s.notified[uid] = bucket
	ctx := s.ctx
	s.mu.Unlock()

	title, body := s.message(r)
	s.notifier.Notify(ctx, title, notify.Options{Body: body, Tag: uid}, s.opts.Fallback)
	return true
}

// occurrence returns the bucket of the reminder's occurrence relevant to now.
func (s *Scheduler) occurrence(r models.Reminder, now time.Time) (string, bool) {
	at, ok := ParseTime(r.Time, s.opts.Location)
	if !ok {
		return "", false
	}
	at = at.In(s.opts.Location)
	local := now.In(s.opts.Location)

	switch r.Repeat {
	case models.RepeatDaily, models.RepeatWeekly:
		if r.Repeat == models.RepeatWeekly && at.Weekday() != local.Weekday() {
			return "", false
		}
		today := time.Date(local.Year(), local.Month(), local.Day(), at.Hour(), at.Minute(), 0, 0, s.opts.Location)
		if today.Before(truncateMinute(at)) {
			return "", false
		}
		return today.Format(BucketLayout), true
	default:
		return at.Format(BucketLayout), true
	}
}

func truncateMinute(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, t.Location())
}

func (s *Scheduler) message(r models.Reminder) (string, string) {
	title := r.Title
	if title == "" {
		title = defaultTitle
	}
	if med, ok := s.source.LookupMedicine(r.MedicineID); ok {
		return title, med.Name + " - " + med.Dosage
	}
	if r.Notes != "" {
		return title, r.Notes
	}
	return title, defaultBody
}

// Prune forgets notifications from buckets before the current minute.
// A reminder is never re-fired within the bucket it already fired in.
func (s *Scheduler) Prune(now time.Time) int {
	nowKey := MinuteBucket(now, s.opts.Location)
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for uid, bucket := range s.notified {
		if bucket < nowKey {
			delete(s.notified, uid)
			removed++
		}
	}
	return removed
}

// Notified returns the number of remembered notifications.
func (s *Scheduler) Notified() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.notified)
}
