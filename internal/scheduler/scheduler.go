package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/complyops/backoffice/internal/models"
	"github.com/complyops/backoffice/internal/queue"
	"github.com/robfig/cron/v3"
)

// JobRecordStore is the slice of the job-record surface the scheduler
// maintains: schedule registration, pause state, and next-run upkeep.
type JobRecordStore interface {
	SetSchedule(ctx context.Context, name, expr, tz string, nextRun *time.Time) error
	SetStatus(ctx context.Context, name, status string) error
	SetNextRun(ctx context.Context, name string, next time.Time) error
}

// Enqueuer is what firing a trigger does: submit one item. The scheduler
// never executes job logic itself.
type Enqueuer interface {
	Enqueue(ctx context.Context, jobType string, payload json.RawMessage, opts queue.Options) (queue.Handle, error)
}

// Scheduler owns the recurring triggers. Each named job type has at most
// one cron entry; firing enqueues an item with the job type as its id, so
// a run still in flight suppresses the next submission rather than
// stacking a duplicate.
type Scheduler struct {
	cron    *cron.Cron
	enq     Enqueuer
	records JobRecordStore

	mu      sync.Mutex
	entries map[string]cron.EntryID
}

func New(enq Enqueuer, records JobRecordStore, defaultTZ string) (*Scheduler, error) {
	loc, err := time.LoadLocation(defaultTZ)
	if err != nil {
		return nil, fmt.Errorf("load scheduler timezone %q: %w", defaultTZ, err)
	}
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(loc)),
		enq:     enq,
		records: records,
		entries: make(map[string]cron.EntryID),
	}, nil
}

// Register adds (or replaces) the recurring trigger for a job type.
// Missed firings while the process was down are not backfilled.
func (s *Scheduler) Register(ctx context.Context, jobType, expr, tz string) error {
	fullExpr := expr
	if tz != "" {
		fullExpr = "CRON_TZ=" + tz + " " + expr
	}

	schedule, err := cron.ParseStandard(fullExpr)
	if err != nil {
		return fmt.Errorf("invalid cron expression %q for %s: %w", expr, jobType, err)
	}

	s.mu.Lock()
	if old, ok := s.entries[jobType]; ok {
		s.cron.Remove(old)
	}
	id := s.cron.Schedule(schedule, cron.FuncJob(func() { s.fire(jobType, schedule) }))
	s.entries[jobType] = id
	s.mu.Unlock()

	next := schedule.Next(time.Now())
	if err := s.records.SetSchedule(ctx, jobType, expr, tz, &next); err != nil {
		return err
	}

	log.Printf("[SCHEDULER] Registered %s (%q tz=%q next=%s)", jobType, expr, tz, next.Format(time.RFC3339))
	return nil
}

func (s *Scheduler) fire(jobType string, schedule cron.Schedule) {
	ctx := context.Background()

	// jobID = jobType: a same-type item still pending means this firing
	// is a no-op instead of a concurrent duplicate.
	if _, err := s.enq.Enqueue(ctx, jobType, json.RawMessage(`{}`), queue.Options{
		Priority: models.PriorityNormal,
		JobID:    jobType,
	}); err != nil {
		log.Printf("[SCHEDULER] enqueue %s: %v", jobType, err)
		return
	}

	if err := s.records.SetNextRun(ctx, jobType, schedule.Next(time.Now())); err != nil {
		log.Printf("[SCHEDULER] next run for %s: %v", jobType, err)
	}
}

// Pause removes the recurrence for a job type and marks its record
// paused. An item already active is unaffected.
func (s *Scheduler) Pause(ctx context.Context, jobType string) error {
	s.mu.Lock()
	id, ok := s.entries[jobType]
	if ok {
		s.cron.Remove(id)
		delete(s.entries, jobType)
	}
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("no recurring trigger registered for %q", jobType)
	}
	return s.records.SetStatus(ctx, jobType, models.JobStatusPaused)
}

// Resume re-registers the recurrence with a (possibly new) pattern.
func (s *Scheduler) Resume(ctx context.Context, jobType, expr, tz string) error {
	return s.Register(ctx, jobType, expr, tz)
}

// Registered reports whether a trigger currently exists for the type.
func (s *Scheduler) Registered(jobType string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[jobType]
	return ok
}

func (s *Scheduler) Start() { s.cron.Start() }

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
