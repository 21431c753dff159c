package admin

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/complyops/backoffice/common"
	"github.com/complyops/backoffice/internal/dto"
	"github.com/complyops/backoffice/internal/jobs"
	"github.com/complyops/backoffice/internal/models"
	"github.com/complyops/backoffice/internal/queue"
	"github.com/complyops/backoffice/middleware"
)

type AdminHandler struct {
	orch OrchestratorInterface
}

func NewAdminHandler(o OrchestratorInterface) *AdminHandler {
	return &AdminHandler{orch: o}
}

var _ AdminHandlerInterface = (*AdminHandler)(nil)

// Enqueue handles HTTP requests to submit an ad hoc item. The job type
// must be in the registered set; submission is acknowledged with 202
// before the item runs.
func (h *AdminHandler) Enqueue(c *gin.Context) {
	var req dto.EnqueueDTO
	if !middleware.Bind(c, &req) {
		return
	}

	if !jobs.IsValidType(req.Type) {
		c.Error(common.Errf(http.StatusBadRequest, "unknown job type %q", req.Type))
		return
	}

	if req.Recurrence != nil {
		if req.Recurrence.Cron == "" {
			c.Error(common.Errf(http.StatusBadRequest, "recurrence requires a cron expression"))
			return
		}
		if err := h.orch.ScheduleJob(c.Request.Context(), req.Type, req.Recurrence.Cron, req.Recurrence.Timezone); err != nil {
			c.Error(common.Errf(http.StatusBadRequest, "schedule %s: %v", req.Type, err))
			return
		}
		c.JSON(http.StatusAccepted, dto.EnqueueResponseDTO{ID: req.Type})
		return
	}

	handle, err := h.orch.Enqueue(c.Request.Context(), req.Type, req.Payload, queue.Options{
		Priority:    req.Priority,
		Delay:       time.Duration(req.DelaySeconds) * time.Second,
		JobID:       req.JobID,
		MaxAttempts: req.MaxAttempts,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusAccepted, dto.EnqueueResponseDTO{ID: handle.ID})
}

// TriggerSync handles HTTP requests to run one synchronization out of
// band. The sync is enqueued with its type as the item id, so a pending
// run of the same sync makes this a no-op.
func (h *AdminHandler) TriggerSync(c *gin.Context) {
	jobType := c.Param("type")
	if !jobs.IsSyncType(jobType) {
		c.Error(common.Errf(http.StatusBadRequest, "unknown sync type %q", jobType))
		return
	}

	var req dto.SyncTriggerDTO
	if c.Request.ContentLength > 0 && !middleware.Bind(c, &req) {
		return
	}

	payload, _ := json.Marshal(map[string]string{"triggeredBy": req.TriggeredBy})
	handle, err := h.orch.Enqueue(c.Request.Context(), jobType, payload, queue.Options{
		Priority: models.PriorityHigh,
		JobID:    jobType,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusAccepted, dto.EnqueueResponseDTO{ID: handle.ID})
}

func (h *AdminHandler) Metrics(c *gin.Context) {
	m, err := h.orch.GetMetrics(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// History returns recently finished items, newest first. The limit query
// parameter caps the page, defaulting to 50.
func (h *AdminHandler) History(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			c.Error(common.Errf(http.StatusBadRequest, "invalid limit"))
			return
		}
		limit = n
	}

	items, err := h.orch.GetHistory(c.Request.Context(), limit)
	if err != nil {
		c.Error(err)
		return
	}

	out := make([]dto.QueueItemDTO, 0, len(items))
	for i := range items {
		out = append(out, toQueueItemDTO(&items[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *AdminHandler) ListDeadLetter(c *gin.Context) {
	items, err := h.orch.ListDeadLetter(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	out := make([]dto.DeadLetterItemDTO, 0, len(items))
	for i := range items {
		out = append(out, toDeadLetterDTO(&items[i]))
	}
	c.JSON(http.StatusOK, out)
}

// RetryDeadLetter re-submits a dead-lettered item as a fresh one and
// removes the dead-letter entry.
func (h *AdminHandler) RetryDeadLetter(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(common.Errf(http.StatusBadRequest, "invalid ID"))
		return
	}

	handle, err := h.orch.RetryFromDeadLetter(c.Request.Context(), id)
	if err != nil {
		c.Error(common.Errf(http.StatusNotFound, "dead letter item not found"))
		return
	}

	c.JSON(http.StatusAccepted, dto.EnqueueResponseDTO{ID: handle.ID})
}

func (h *AdminHandler) PauseQueue(c *gin.Context) {
	h.orch.PauseAll()
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) ResumeQueue(c *gin.Context) {
	h.orch.ResumeAll()
	c.Status(http.StatusNoContent)
}

// Schedule sets or replaces the recurring trigger for a job type.
func (h *AdminHandler) Schedule(c *gin.Context) {
	jobType := c.Param("type")
	if !jobs.IsValidType(jobType) {
		c.Error(common.Errf(http.StatusBadRequest, "unknown job type %q", jobType))
		return
	}

	var req dto.ScheduleDTO
	if !middleware.Bind(c, &req) {
		return
	}

	if err := h.orch.ScheduleJob(c.Request.Context(), jobType, req.Cron, req.Timezone); err != nil {
		c.Error(common.Errf(http.StatusBadRequest, "schedule %s: %v", jobType, err))
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) PauseJob(c *gin.Context) {
	jobType := c.Param("type")
	if err := h.orch.PauseJob(c.Request.Context(), jobType); err != nil {
		c.Error(common.Errf(http.StatusNotFound, "pause %s: %v", jobType, err))
		return
	}
	c.Status(http.StatusNoContent)
}

// ResumeJob re-registers a paused recurrence. A body with a cron
// expression replaces the stored schedule; without one the stored
// schedule is reused.
func (h *AdminHandler) ResumeJob(c *gin.Context) {
	jobType := c.Param("type")

	if c.Request.ContentLength > 0 {
		var req dto.ScheduleDTO
		if !middleware.Bind(c, &req) {
			return
		}
		if err := h.orch.ScheduleJob(c.Request.Context(), jobType, req.Cron, req.Timezone); err != nil {
			c.Error(common.Errf(http.StatusBadRequest, "resume %s: %v", jobType, err))
			return
		}
		c.Status(http.StatusNoContent)
		return
	}

	if err := h.orch.ResumeJob(c.Request.Context(), jobType); err != nil {
		c.Error(common.Errf(http.StatusNotFound, "resume %s: %v", jobType, err))
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) ListJobs(c *gin.Context) {
	recs, err := h.orch.ListJobRecords(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	out := make([]dto.JobRecordDTO, 0, len(recs))
	for i := range recs {
		out = append(out, toJobRecordDTO(&recs[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *AdminHandler) GetJob(c *gin.Context) {
	rec, err := h.orch.GetJobRecord(c.Request.Context(), c.Param("type"))
	if err != nil {
		c.Error(err)
		return
	}
	if rec == nil {
		c.Error(common.Errf(http.StatusNotFound, "job record not found"))
		return
	}
	c.JSON(http.StatusOK, toJobRecordDTO(rec))
}

// Clean removes finished items older than the grace window. An empty
// body means the default grace period.
func (h *AdminHandler) Clean(c *gin.Context) {
	var req dto.CleanDTO
	if c.Request.ContentLength > 0 && !middleware.Bind(c, &req) {
		return
	}

	removed, err := h.orch.CleanOlderThan(c.Request.Context(), req.GraceDays)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.CleanResponseDTO{Removed: removed})
}

func toQueueItemDTO(item *models.QueueItem) dto.QueueItemDTO {
	return dto.QueueItemDTO{
		ID:           item.ID,
		Type:         item.Type,
		State:        item.State,
		Priority:     item.Priority,
		AttemptsMade: item.AttemptsMade,
		MaxAttempts:  item.MaxAttempts,
		LastError:    item.LastError,
		Result:       json.RawMessage(item.Result),
		CreatedAt:    item.CreatedAt,
		FinishedOn:   item.FinishedOn,
	}
}

func toDeadLetterDTO(item *models.DeadLetterItem) dto.DeadLetterItemDTO {
	return dto.DeadLetterItemDTO{
		ID:            item.ID,
		OriginalID:    item.OriginalID,
		Type:          item.Type,
		Payload:       json.RawMessage(item.Payload),
		FailureReason: item.FailureReason,
		AttemptsMade:  item.AttemptsMade,
		FailedAt:      item.FailedAt,
	}
}

func toJobRecordDTO(rec *models.JobRecord) dto.JobRecordDTO {
	return dto.JobRecordDTO{
		Name:           rec.Name,
		Status:         rec.Status,
		CronExpression: rec.CronExpression,
		Timezone:       rec.Timezone,
		LastRunAt:      rec.LastRunAt,
		NextRunAt:      rec.NextRunAt,
		LastResult:     rec.LastResult,
	}
}
