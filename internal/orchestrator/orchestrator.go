package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/complyops/backoffice/internal/models"
	"github.com/complyops/backoffice/internal/pool"
	"github.com/complyops/backoffice/internal/queue"
	"github.com/complyops/backoffice/internal/scheduler"
)

// JobRecordStore is the job-record surface the orchestrator reads and
// writes: run bookkeeping plus the operator views.
type JobRecordStore interface {
	GetByName(ctx context.Context, name string) (*models.JobRecord, error)
	Ensure(ctx context.Context, name string) (*models.JobRecord, error)
	SetStatus(ctx context.Context, name, status string) error
	RecordRun(ctx context.Context, name, status, result string, ranAt time.Time, nextRun *time.Time) error
	List(ctx context.Context) ([]models.JobRecord, error)
}

// Orchestrator fronts the queue, the worker pool and the scheduler with
// the single operator surface the admin API uses. It owns no job logic.
type Orchestrator struct {
	queue     *queue.Queue
	pool      *pool.WorkerPool
	scheduler *scheduler.Scheduler
	records   JobRecordStore
}

func New(q *queue.Queue, p *pool.WorkerPool, s *scheduler.Scheduler, records JobRecordStore) *Orchestrator {
	return &Orchestrator{queue: q, pool: p, scheduler: s, records: records}
}

// Start brings up the recurring triggers and the worker pool.
func (o *Orchestrator) Start() {
	o.scheduler.Start()
	o.pool.Start()
}

// Stop halts the scheduler first so nothing new is enqueued, then drains
// the pool.
func (o *Orchestrator) Stop() {
	o.scheduler.Stop()
	o.pool.Stop()
}

// Enqueue submits an ad hoc item, bypassing any schedule.
func (o *Orchestrator) Enqueue(ctx context.Context, jobType string, payload json.RawMessage, opts queue.Options) (queue.Handle, error) {
	return o.queue.Enqueue(ctx, jobType, payload, opts)
}

// ScheduleJob registers (or replaces) the recurring trigger for a job
// type and ensures its record exists.
func (o *Orchestrator) ScheduleJob(ctx context.Context, jobType, expr, tz string) error {
	if _, err := o.records.Ensure(ctx, jobType); err != nil {
		return err
	}
	return o.scheduler.Register(ctx, jobType, expr, tz)
}

// PauseJob stops future firings of one job type. Items already queued or
// active run to completion.
func (o *Orchestrator) PauseJob(ctx context.Context, jobType string) error {
	return o.scheduler.Pause(ctx, jobType)
}

// ResumeJob re-registers a paused job from its stored schedule.
func (o *Orchestrator) ResumeJob(ctx context.Context, jobType string) error {
	rec, err := o.records.GetByName(ctx, jobType)
	if err != nil {
		return err
	}
	if rec == nil || rec.CronExpression == "" {
		return fmt.Errorf("job %q has no stored schedule", jobType)
	}
	return o.scheduler.Resume(ctx, jobType, rec.CronExpression, rec.Timezone)
}

// PauseAll stops dequeueing across every job type. Enqueueing continues
// so work accumulates for resume.
func (o *Orchestrator) PauseAll() { o.queue.PauseAll() }

// ResumeAll re-enables dequeueing.
func (o *Orchestrator) ResumeAll() { o.queue.ResumeAll() }

func (o *Orchestrator) GetMetrics(ctx context.Context) (queue.Metrics, error) {
	return o.queue.GetMetrics(ctx)
}

func (o *Orchestrator) GetHistory(ctx context.Context, limit int) ([]models.QueueItem, error) {
	return o.queue.GetHistory(ctx, limit)
}

func (o *Orchestrator) ListDeadLetter(ctx context.Context) ([]models.DeadLetterItem, error) {
	return o.queue.ListDeadLetter(ctx)
}

func (o *Orchestrator) RetryFromDeadLetter(ctx context.Context, id string) (queue.Handle, error) {
	return o.queue.RetryFromDeadLetter(ctx, id)
}

func (o *Orchestrator) CleanOlderThan(ctx context.Context, graceDays int) (int64, error) {
	return o.queue.CleanOlderThan(ctx, graceDays)
}

func (o *Orchestrator) GetJobRecord(ctx context.Context, jobType string) (*models.JobRecord, error) {
	return o.records.GetByName(ctx, jobType)
}

func (o *Orchestrator) ListJobRecords(ctx context.Context) ([]models.JobRecord, error) {
	return o.records.List(ctx)
}
