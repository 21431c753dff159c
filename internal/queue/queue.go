package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/complyops/backoffice/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// deadLetterPrefix keeps dead-letter ids from colliding with a replayed
// item that reuses the original caller-supplied id.
const deadLetterPrefix = "dlq:"

// Settings are the queue-level tunables; zero values fall back to the
// documented defaults.
type Settings struct {
	MaxAttempts    int
	BackoffBase    time.Duration
	RetentionAge   time.Duration
	RetentionCount int
	OperatorRoles  []string
}

func (s *Settings) applyDefaults() {
	if s.MaxAttempts == 0 {
		s.MaxAttempts = 3
	}
	if s.BackoffBase == 0 {
		s.BackoffBase = time.Second
	}
	if s.RetentionAge == 0 {
		s.RetentionAge = 24 * time.Hour
	}
	if s.RetentionCount == 0 {
		s.RetentionCount = 1000
	}
	if len(s.OperatorRoles) == 0 {
		s.OperatorRoles = []string{"SystemAdmin"}
	}
}

// Options control a single enqueue call.
type Options struct {
	Priority    int           // default models.PriorityNormal
	Delay       time.Duration // time before the item becomes eligible
	JobID       string        // caller-supplied id for idempotent submission
	MaxAttempts int           // default Settings.MaxAttempts
}

// Handle is the stable reference returned to the submitter.
type Handle struct {
	ID string `json:"id"`
}

// Metrics is the operator-facing queue snapshot.
type Metrics struct {
	Waiting   int64 `json:"waiting"`
	Active    int64 `json:"active"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
	Delayed   int64 `json:"delayed"`
	Paused    bool  `json:"paused"`
}

// Queue is the durable priority queue service. One instance is built at
// process start and injected everywhere; there is no package-level state.
type Queue struct {
	items    ItemStore
	deadLtrs DeadLetterStore
	notifs   NotificationStore
	settings Settings
	paused   atomic.Bool
}

func New(items ItemStore, deadLtrs DeadLetterStore, notifs NotificationStore, settings Settings) *Queue {
	settings.applyDefaults()
	return &Queue{
		items:    items,
		deadLtrs: deadLtrs,
		notifs:   notifs,
		settings: settings,
	}
}

// Enqueue submits one unit of work. When opts.JobID is set and an item
// with that id is still pending, the existing handle is returned instead
// of creating a duplicate.
func (q *Queue) Enqueue(ctx context.Context, jobType string, payload json.RawMessage, opts Options) (Handle, error) {
	if jobType == "" {
		return Handle{}, fmt.Errorf("job type is required")
	}

	id := opts.JobID
	if id == "" {
		id = uuid.NewString()
	} else {
		pending, err := q.items.PendingExists(ctx, id)
		if err != nil {
			return Handle{}, err
		}
		if pending {
			return Handle{ID: id}, nil
		}
		// A finished run left under the same id must not block a fresh
		// submission.
		if err := q.items.DeleteFinished(ctx, id); err != nil {
			return Handle{}, err
		}
	}

	priority := opts.Priority
	if priority == 0 {
		priority = models.PriorityNormal
	}
	maxAttempts := opts.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = q.settings.MaxAttempts
	}

	item := &models.QueueItem{
		ID:          id,
		Type:        jobType,
		Payload:     datatypes.JSON(payload),
		Priority:    priority,
		MaxAttempts: maxAttempts,
		State:       models.StateWaiting,
	}
	if opts.Delay > 0 {
		until := time.Now().Add(opts.Delay)
		item.State = models.StateDelayed
		item.DelayUntil = &until
	}

	if err := q.items.Create(ctx, item); err != nil {
		return Handle{}, err
	}
	return Handle{ID: id}, nil
}

// Dequeue hands the next eligible item to a worker slot, marking it
// active. Returns nil when nothing is eligible or the queue is paused;
// pause never blocks Enqueue.
func (q *Queue) Dequeue(ctx context.Context, lockDuration time.Duration) (*models.QueueItem, error) {
	if q.paused.Load() {
		return nil, nil
	}
	if _, err := q.items.PromoteDelayed(ctx, time.Now()); err != nil {
		return nil, err
	}
	return q.items.AcquireNext(ctx, lockDuration)
}

// Heartbeat extends the lock on an active item.
func (q *Queue) Heartbeat(ctx context.Context, id string, lockDuration time.Duration) error {
	return q.items.ExtendLock(ctx, id, time.Now().Add(lockDuration))
}

// Complete finishes an item successfully and opportunistically applies
// the retention policy to older completed items.
func (q *Queue) Complete(ctx context.Context, id string, result json.RawMessage) error {
	if err := q.items.MarkCompleted(ctx, id, datatypes.JSON(result)); err != nil {
		return err
	}
	if err := q.items.PruneCompleted(ctx, q.settings.RetentionAge, q.settings.RetentionCount); err != nil {
		log.Printf("[QUEUE][WARN] retention prune: %v", err)
	}
	return nil
}

// Fail records a failed attempt. Below the attempt cap the item is
// delayed by an exponential backoff and retried; at the cap it becomes
// terminally failed, is mirrored into the dead-letter store, and one
// notification per operator role is raised.
func (q *Queue) Fail(ctx context.Context, id string, reason string) error {
	item, err := q.items.Get(ctx, id)
	if err != nil {
		return err
	}

	attempts := item.AttemptsMade + 1
	if attempts < item.MaxAttempts {
		until := time.Now().Add(Backoff(attempts, q.settings.BackoffBase))
		return q.items.RetryLater(ctx, id, attempts, until, reason)
	}

	if err := q.items.MarkFailed(ctx, id, attempts, reason); err != nil {
		return err
	}

	now := time.Now()
	dead := &models.DeadLetterItem{
		// Fresh id per failure: a deterministic-id job can fail
		// permanently more than once, and each failure gets its own
		// mirror row. OriginalID links back to the item.
		ID:            deadLetterPrefix + uuid.NewString(),
		OriginalID:    item.ID,
		Type:          item.Type,
		Payload:       item.Payload,
		AttemptsMade:  attempts,
		MaxAttempts:   item.MaxAttempts,
		FailureReason: reason,
		FailedAt:      now,
	}
	if err := q.deadLtrs.Insert(ctx, dead); err != nil {
		return err
	}

	for _, role := range q.settings.OperatorRoles {
		n := &models.Notification{
			Role:  role,
			Title: fmt.Sprintf("Job %q failed permanently", item.Type),
			Body:  fmt.Sprintf("Item %s failed after %d attempts: %s", item.ID, attempts, reason),
		}
		if err := q.notifs.Create(ctx, n); err != nil {
			log.Printf("[QUEUE][WARN] operator notification (%s): %v", role, err)
		}
	}

	log.Printf("[QUEUE] Dead-lettered %s (type=%s attempts=%d)", item.ID, item.Type, attempts)
	return nil
}

// RequeueStalled releases active items whose lock expired. An item that
// stalls more than maxStalledCount times is failed instead of requeued.
func (q *Queue) RequeueStalled(ctx context.Context, maxStalledCount int) error {
	stalled, err := q.items.ListStalled(ctx, time.Now())
	if err != nil {
		return err
	}
	for i := range stalled {
		item := &stalled[i]
		if item.StallCount >= maxStalledCount {
			if err := q.Fail(ctx, item.ID, fmt.Sprintf("stalled %d times with no heartbeat", item.StallCount+1)); err != nil {
				log.Printf("[QUEUE][WARN] fail stalled item %s: %v", item.ID, err)
			}
			continue
		}
		log.Printf("[QUEUE] Requeueing stalled item %s (stall %d)", item.ID, item.StallCount+1)
		if err := q.items.Requeue(ctx, item.ID, item.StallCount+1); err != nil {
			log.Printf("[QUEUE][WARN] requeue stalled item %s: %v", item.ID, err)
		}
	}
	return nil
}

// PauseAll stops dequeues; submissions still land.
func (q *Queue) PauseAll() { q.paused.Store(true) }

// ResumeAll re-enables dequeues.
func (q *Queue) ResumeAll() { q.paused.Store(false) }

func (q *Queue) IsPaused() bool { return q.paused.Load() }

// GetMetrics returns per-state counts plus the pause flag.
func (q *Queue) GetMetrics(ctx context.Context) (Metrics, error) {
	counts, err := q.items.Metrics(ctx)
	if err != nil {
		return Metrics{}, err
	}
	return Metrics{
		Waiting:   counts[models.StateWaiting],
		Active:    counts[models.StateActive],
		Completed: counts[models.StateCompleted],
		Failed:    counts[models.StateFailed],
		Delayed:   counts[models.StateDelayed],
		Paused:    q.paused.Load(),
	}, nil
}

// GetHistory returns the merged completed+failed items, newest first.
func (q *Queue) GetHistory(ctx context.Context, limit int) ([]models.QueueItem, error) {
	if limit <= 0 {
		limit = 50
	}
	return q.items.History(ctx, limit)
}

// CleanOlderThan purges completed and failed items older than the grace
// period. Dead-letter items are never touched.
func (q *Queue) CleanOlderThan(ctx context.Context, graceDays int) (int64, error) {
	if graceDays <= 0 {
		graceDays = 90
	}
	cutoff := time.Now().AddDate(0, 0, -graceDays)
	return q.items.DeleteFinishedBefore(ctx, cutoff)
}

// ListDeadLetter is a pure read of the dead-letter store.
func (q *Queue) ListDeadLetter(ctx context.Context) ([]models.DeadLetterItem, error) {
	return q.deadLtrs.List(ctx)
}

// RetryFromDeadLetter replays a dead-lettered payload as a fresh item
// with a new id and zero attempts, then removes the dead-letter entry.
func (q *Queue) RetryFromDeadLetter(ctx context.Context, id string) (Handle, error) {
	dead, err := q.deadLtrs.Get(ctx, id)
	if err != nil {
		return Handle{}, err
	}

	handle, err := q.Enqueue(ctx, dead.Type, json.RawMessage(dead.Payload), Options{
		MaxAttempts: dead.MaxAttempts,
	})
	if err != nil {
		return Handle{}, err
	}

	if err := q.deadLtrs.Delete(ctx, id); err != nil {
		return Handle{}, err
	}
	return handle, nil
}
