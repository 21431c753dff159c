package admin

import (
	"context"
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/complyops/backoffice/internal/models"
	"github.com/complyops/backoffice/internal/queue"
)

// OrchestratorInterface is the operator surface the HTTP layer fronts.
type OrchestratorInterface interface {
	Enqueue(ctx context.Context, jobType string, payload json.RawMessage, opts queue.Options) (queue.Handle, error)
	ScheduleJob(ctx context.Context, jobType, expr, tz string) error
	PauseJob(ctx context.Context, jobType string) error
	ResumeJob(ctx context.Context, jobType string) error
	PauseAll()
	ResumeAll()
	GetMetrics(ctx context.Context) (queue.Metrics, error)
	GetHistory(ctx context.Context, limit int) ([]models.QueueItem, error)
	ListDeadLetter(ctx context.Context) ([]models.DeadLetterItem, error)
	RetryFromDeadLetter(ctx context.Context, id string) (queue.Handle, error)
	CleanOlderThan(ctx context.Context, graceDays int) (int64, error)
	GetJobRecord(ctx context.Context, jobType string) (*models.JobRecord, error)
	ListJobRecords(ctx context.Context) ([]models.JobRecord, error)
}

// AdminHandlerInterface defines the contract for HTTP request handlers.
type AdminHandlerInterface interface {
	Enqueue(c *gin.Context)
	TriggerSync(c *gin.Context)
	Metrics(c *gin.Context)
	History(c *gin.Context)
	ListDeadLetter(c *gin.Context)
	RetryDeadLetter(c *gin.Context)
	PauseQueue(c *gin.Context)
	ResumeQueue(c *gin.Context)
	Schedule(c *gin.Context)
	PauseJob(c *gin.Context)
	ResumeJob(c *gin.Context)
	ListJobs(c *gin.Context)
	GetJob(c *gin.Context)
	Clean(c *gin.Context)
}
