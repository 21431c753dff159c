package queue

import (
	"context"
	"time"

	"github.com/complyops/backoffice/internal/models"
	"gorm.io/datatypes"
)

// ItemStore is the durable queue-item surface the service drives.
type ItemStore interface {
	Create(ctx context.Context, item *models.QueueItem) error
	Get(ctx context.Context, id string) (*models.QueueItem, error)
	PendingExists(ctx context.Context, id string) (bool, error)
	PromoteDelayed(ctx context.Context, now time.Time) (int64, error)
	AcquireNext(ctx context.Context, lockDuration time.Duration) (*models.QueueItem, error)
	ExtendLock(ctx context.Context, id string, until time.Time) error
	MarkCompleted(ctx context.Context, id string, result datatypes.JSON) error
	RetryLater(ctx context.Context, id string, attempts int, until time.Time, lastErr string) error
	MarkFailed(ctx context.Context, id string, attempts int, lastErr string) error
	ListStalled(ctx context.Context, now time.Time) ([]models.QueueItem, error)
	Requeue(ctx context.Context, id string, stallCount int) error
	Metrics(ctx context.Context) (map[string]int64, error)
	History(ctx context.Context, limit int) ([]models.QueueItem, error)
	DeleteFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteFinished(ctx context.Context, id string) error
	PruneCompleted(ctx context.Context, maxAge time.Duration, keepCount int) error
}

// DeadLetterStore holds permanently failed items for inspection and replay.
type DeadLetterStore interface {
	Insert(ctx context.Context, item *models.DeadLetterItem) error
	Get(ctx context.Context, id string) (*models.DeadLetterItem, error)
	List(ctx context.Context) ([]models.DeadLetterItem, error)
	Delete(ctx context.Context, id string) error
}

// NotificationStore receives the operator notifications raised on
// permanent failure.
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
}
