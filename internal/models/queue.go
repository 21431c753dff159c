package models

import (
	"time"

	"gorm.io/datatypes"
)

// QueueItem states. Transitions are monotonic: waiting -> active ->
// completed|failed, with failed looping back through delayed -> waiting
// until MaxAttempts is reached.
const (
	StateWaiting   = "waiting"
	StateActive    = "active"
	StateDelayed   = "delayed"
	StateCompleted = "completed"
	StateFailed    = "failed"
)

// Priority levels. Lower value wins.
const (
	PriorityCritical = 1
	PriorityHigh     = 5
	PriorityNormal   = 10
	PriorityLow      = 15
)

// QueueItem is one submitted unit of work.
type QueueItem struct {
	ID           string         `gorm:"primaryKey;type:varchar(128)"`
	Type         string         `gorm:"type:varchar(100);not null;index:idx_queue_items_type"`
	Payload      datatypes.JSON `gorm:"type:jsonb"`
	Priority     int            `gorm:"not null;default:10;index:idx_queue_items_ready,priority:2"`
	State        string         `gorm:"type:varchar(20);not null;default:'waiting';index:idx_queue_items_ready,priority:1"`
	AttemptsMade int            `gorm:"not null;default:0"`
	MaxAttempts  int            `gorm:"not null;default:3"`
	StallCount   int            `gorm:"not null;default:0"`
	LastError    string         `gorm:"type:text"`
	Result       datatypes.JSON `gorm:"type:jsonb"`
	DelayUntil   *time.Time
	LockedUntil  *time.Time
	CreatedAt    time.Time `gorm:"autoCreateTime;index:idx_queue_items_ready,priority:3"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
	ProcessedAt  *time.Time
	FinishedOn   *time.Time
}

// DeadLetterItem is a QueueItem snapshot taken when attempts are exhausted.
// The ID is prefixed so a replayed item never collides with the original.
type DeadLetterItem struct {
	ID            string         `gorm:"primaryKey;type:varchar(140)"`
	OriginalID    string         `gorm:"type:varchar(128);not null"`
	Type          string         `gorm:"type:varchar(100);not null"`
	Payload       datatypes.JSON `gorm:"type:jsonb"`
	AttemptsMade  int            `gorm:"not null"`
	MaxAttempts   int            `gorm:"not null"`
	FailureReason string         `gorm:"type:text"`
	FailedAt      time.Time      `gorm:"not null"`
	CreatedAt     time.Time      `gorm:"autoCreateTime"`
}

// JobRecord statuses.
const (
	JobStatusScheduled = "scheduled"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
	JobStatusPaused    = "paused"
)

// JobRecord is the operator-facing row for one named recurring job.
// Rows are created lazily on first run or first pause/resume and are
// never deleted.
type JobRecord struct {
	ID             uint   `gorm:"primaryKey;autoIncrement"`
	Name           string `gorm:"type:varchar(100);not null;uniqueIndex"`
	Status         string `gorm:"type:varchar(20);not null;default:'scheduled'"`
	CronExpression string `gorm:"type:varchar(100)"`
	Timezone       string `gorm:"type:varchar(64)"`
	LastRunAt      *time.Time
	NextRunAt      *time.Time
	LastResult     string    `gorm:"type:text"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

// Notification is an in-app operator notification, one per role.
type Notification struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Role      string    `gorm:"type:varchar(50);not null;index"`
	Title     string    `gorm:"type:varchar(255);not null"`
	Body      string    `gorm:"type:text"`
	ReadAt    *time.Time
	CreatedAt time.Time `gorm:"autoCreateTime"`
}
