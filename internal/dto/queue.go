package dto

import (
	"encoding/json"
	"time"
)

type EnqueueDTO struct {
	Type         string          `json:"type" validate:"required"`
	Payload      json.RawMessage `json:"payload"`
	Priority     int             `json:"priority" validate:"gte=0,lte=15"`
	DelaySeconds int             `json:"delay_seconds" validate:"gte=0"`
	JobID        string          `json:"job_id"`
	MaxAttempts  int             `json:"max_attempts" validate:"gte=0,lte=20"`

	// Recurrence registers a schedule for the type instead of creating
	// an immediate item.
	Recurrence *ScheduleDTO `json:"recurrence,omitempty"`
}

type EnqueueResponseDTO struct {
	ID string `json:"id"`
}

type QueueItemDTO struct {
	ID           string          `json:"id"`
	Type         string          `json:"type"`
	State        string          `json:"state"`
	Priority     int             `json:"priority"`
	AttemptsMade int             `json:"attempts_made"`
	MaxAttempts  int             `json:"max_attempts"`
	LastError    string          `json:"last_error,omitempty"`
	Result       json.RawMessage `json:"result,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	FinishedOn   *time.Time      `json:"finished_on,omitempty"`
}

type DeadLetterItemDTO struct {
	ID            string          `json:"id"`
	OriginalID    string          `json:"original_id"`
	Type          string          `json:"type"`
	Payload       json.RawMessage `json:"payload"`
	FailureReason string          `json:"failure_reason"`
	AttemptsMade  int             `json:"attempts_made"`
	FailedAt      time.Time       `json:"failed_at"`
}

type CleanDTO struct {
	GraceDays int `json:"grace_days" validate:"gte=1,lte=3650"`
}

type CleanResponseDTO struct {
	Removed int64 `json:"removed"`
}
