package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/complyops/backoffice/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QueueRepository struct {
	db *gorm.DB
}

func NewQueueRepository(db *gorm.DB) *QueueRepository {
	return &QueueRepository{db: db}
}

// Create inserts a new queue item. Returns an error if the id already
// exists; callers that want idempotent submission check PendingExists
// first.
func (r *QueueRepository) Create(ctx context.Context, item *models.QueueItem) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("create queue item: %w", err)
	}
	return nil
}

// Get retrieves a single queue item by its id.
func (r *QueueRepository) Get(ctx context.Context, id string) (*models.QueueItem, error) {
	var item models.QueueItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("queue item not found: %w", err)
		}
		return nil, fmt.Errorf("get queue item: %w", err)
	}
	return &item, nil
}

// PendingExists reports whether an item with the given id is still in a
// non-terminal state. Used for idempotent enqueue with caller-supplied ids.
func (r *QueueRepository) PendingExists(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.QueueItem{}).
		Where("id = ? AND state IN ?", id, []string{
			models.StateWaiting, models.StateDelayed, models.StateActive,
		}).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("check pending item: %w", err)
	}
	return count > 0, nil
}

// PromoteDelayed flips delayed items whose delay has elapsed back to
// waiting. Returns the number promoted.
func (r *QueueRepository) PromoteDelayed(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.QueueItem{}).
		Where("state = ? AND delay_until <= ?", models.StateDelayed, now).
		Updates(map[string]any{
			"state":       models.StateWaiting,
			"delay_until": nil,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("promote delayed items: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// AcquireNext claims the highest-priority, oldest waiting item. The claim
// is a conditional update on the item's state, so concurrent workers can
// race for the same candidate and exactly one wins; the losers move on to
// the next candidate.
func (r *QueueRepository) AcquireNext(ctx context.Context, lockDuration time.Duration) (*models.QueueItem, error) {
	var candidates []models.QueueItem
	if err := r.db.WithContext(ctx).
		Where("state = ?", models.StateWaiting).
		Order("priority asc").
		Order("created_at asc").
		Limit(5).
		Find(&candidates).Error; err != nil {
		return nil, fmt.Errorf("list waiting items: %w", err)
	}

	now := time.Now()
	lockedUntil := now.Add(lockDuration)

	for i := range candidates {
		res := r.db.WithContext(ctx).Model(&models.QueueItem{}).
			Where("id = ? AND state = ?", candidates[i].ID, models.StateWaiting).
			Updates(map[string]any{
				"state":        models.StateActive,
				"processed_at": now,
				"locked_until": lockedUntil,
			})
		if res.Error != nil {
			return nil, fmt.Errorf("claim queue item: %w", res.Error)
		}
		if res.RowsAffected == 1 {
			item := candidates[i]
			item.State = models.StateActive
			item.ProcessedAt = &now
			item.LockedUntil = &lockedUntil
			return &item, nil
		}
	}

	return nil, nil
}

// ExtendLock pushes an active item's lock forward. Handlers that report
// progress keep their item from being treated as stalled.
func (r *QueueRepository) ExtendLock(ctx context.Context, id string, until time.Time) error {
	if err := r.db.WithContext(ctx).Model(&models.QueueItem{}).
		Where("id = ? AND state = ?", id, models.StateActive).
		Update("locked_until", until).Error; err != nil {
		return fmt.Errorf("extend lock: %w", err)
	}
	return nil
}

// MarkCompleted finishes an item successfully and stores its result.
func (r *QueueRepository) MarkCompleted(ctx context.Context, id string, result datatypes.JSON) error {
	now := time.Now()
	if err := r.db.WithContext(ctx).Model(&models.QueueItem{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"state":        models.StateCompleted,
			"result":       result,
			"finished_on":  now,
			"locked_until": nil,
			"last_error":   "",
		}).Error; err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	return nil
}

// RetryLater records a failed attempt and parks the item in delayed state
// until the backoff elapses.
func (r *QueueRepository) RetryLater(ctx context.Context, id string, attempts int, until time.Time, lastErr string) error {
	if err := r.db.WithContext(ctx).Model(&models.QueueItem{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"state":         models.StateDelayed,
			"attempts_made": attempts,
			"delay_until":   until,
			"locked_until":  nil,
			"last_error":    lastErr,
		}).Error; err != nil {
		return fmt.Errorf("retry later: %w", err)
	}
	return nil
}

// MarkFailed finishes an item terminally after its attempts are exhausted.
func (r *QueueRepository) MarkFailed(ctx context.Context, id string, attempts int, lastErr string) error {
	now := time.Now()
	if err := r.db.WithContext(ctx).Model(&models.QueueItem{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"state":         models.StateFailed,
			"attempts_made": attempts,
			"finished_on":   now,
			"locked_until":  nil,
			"last_error":    lastErr,
		}).Error; err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	return nil
}

// ListStalled returns active items whose lock expired before now.
func (r *QueueRepository) ListStalled(ctx context.Context, now time.Time) ([]models.QueueItem, error) {
	var items []models.QueueItem
	if err := r.db.WithContext(ctx).
		Where("state = ? AND locked_until IS NOT NULL AND locked_until < ?", models.StateActive, now).
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list stalled items: %w", err)
	}
	return items, nil
}

// Requeue releases a stalled item back to waiting and bumps its stall
// counter.
func (r *QueueRepository) Requeue(ctx context.Context, id string, stallCount int) error {
	if err := r.db.WithContext(ctx).Model(&models.QueueItem{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"state":        models.StateWaiting,
			"locked_until": nil,
			"processed_at": nil,
			"stall_count":  stallCount,
		}).Error; err != nil {
		return fmt.Errorf("requeue item: %w", err)
	}
	return nil
}

// Metrics counts items per state.
func (r *QueueRepository) Metrics(ctx context.Context) (map[string]int64, error) {
	type row struct {
		State string
		N     int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).Model(&models.QueueItem{}).
		Select("state, count(*) as n").
		Group("state").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("queue metrics: %w", err)
	}

	counts := map[string]int64{
		models.StateWaiting:   0,
		models.StateActive:    0,
		models.StateDelayed:   0,
		models.StateCompleted: 0,
		models.StateFailed:    0,
	}
	for _, r := range rows {
		counts[r.State] = r.N
	}
	return counts, nil
}

// History returns finished items, newest first by finish time.
func (r *QueueRepository) History(ctx context.Context, limit int) ([]models.QueueItem, error) {
	var items []models.QueueItem
	if err := r.db.WithContext(ctx).
		Where("state IN ?", []string{models.StateCompleted, models.StateFailed}).
		Order("finished_on desc").
		Limit(limit).
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("queue history: %w", err)
	}
	return items, nil
}

// DeleteFinishedBefore purges completed and failed items that finished
// before the cutoff. Dead-letter rows live in their own table and are
// untouched.
func (r *QueueRepository) DeleteFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("state IN ? AND finished_on < ?", []string{models.StateCompleted, models.StateFailed}, cutoff).
		Delete(&models.QueueItem{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete finished items: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// DeleteFinished removes a completed or failed item by id. Lets a
// caller-supplied id be submitted again after the previous run finished.
func (r *QueueRepository) DeleteFinished(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).
		Where("id = ? AND state IN ?", id, []string{models.StateCompleted, models.StateFailed}).
		Delete(&models.QueueItem{}).Error; err != nil {
		return fmt.Errorf("delete finished item: %w", err)
	}
	return nil
}

// PruneCompleted enforces the retention policy: completed items older than
// maxAge go first, then anything beyond the newest keepCount.
func (r *QueueRepository) PruneCompleted(ctx context.Context, maxAge time.Duration, keepCount int) error {
	cutoff := time.Now().Add(-maxAge)
	if err := r.db.WithContext(ctx).
		Where("state = ? AND finished_on < ?", models.StateCompleted, cutoff).
		Delete(&models.QueueItem{}).Error; err != nil {
		return fmt.Errorf("prune aged completed items: %w", err)
	}

	var ids []string
	if err := r.db.WithContext(ctx).Model(&models.QueueItem{}).
		Where("state = ?", models.StateCompleted).
		Order("finished_on desc").
		Offset(keepCount).
		Limit(1000).
		Pluck("id", &ids).Error; err != nil {
		return fmt.Errorf("list excess completed items: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}

	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&models.QueueItem{}).Error; err != nil {
		return fmt.Errorf("prune excess completed items: %w", err)
	}
	return nil
}
