package mocks

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"github.com/complyops/backoffice/internal/models"
	"github.com/complyops/backoffice/internal/queue"
)

type OrchestratorMock struct {
	mock.Mock
}

func (m *OrchestratorMock) Enqueue(ctx context.Context, jobType string, payload json.RawMessage, opts queue.Options) (queue.Handle, error) {
	args := m.Called(ctx, jobType, payload, opts)

	handle, _ := args.Get(0).(queue.Handle)
	return handle, args.Error(1)
}

func (m *OrchestratorMock) ScheduleJob(ctx context.Context, jobType, expr, tz string) error {
	args := m.Called(ctx, jobType, expr, tz)
	return args.Error(0)
}

func (m *OrchestratorMock) PauseJob(ctx context.Context, jobType string) error {
	args := m.Called(ctx, jobType)
	return args.Error(0)
}

func (m *OrchestratorMock) ResumeJob(ctx context.Context, jobType string) error {
	args := m.Called(ctx, jobType)
	return args.Error(0)
}

func (m *OrchestratorMock) PauseAll() {
	m.Called()
}

func (m *OrchestratorMock) ResumeAll() {
	m.Called()
}

func (m *OrchestratorMock) GetMetrics(ctx context.Context) (queue.Metrics, error) {
	args := m.Called(ctx)

	metrics, _ := args.Get(0).(queue.Metrics)
	return metrics, args.Error(1)
}

func (m *OrchestratorMock) GetHistory(ctx context.Context, limit int) ([]models.QueueItem, error) {
	args := m.Called(ctx, limit)

	items, _ := args.Get(0).([]models.QueueItem)
	return items, args.Error(1)
}

func (m *OrchestratorMock) ListDeadLetter(ctx context.Context) ([]models.DeadLetterItem, error) {
	args := m.Called(ctx)

	items, _ := args.Get(0).([]models.DeadLetterItem)
	return items, args.Error(1)
}

func (m *OrchestratorMock) RetryFromDeadLetter(ctx context.Context, id string) (queue.Handle, error) {
	args := m.Called(ctx, id)

	handle, _ := args.Get(0).(queue.Handle)
	return handle, args.Error(1)
}

func (m *OrchestratorMock) CleanOlderThan(ctx context.Context, graceDays int) (int64, error) {
	args := m.Called(ctx, graceDays)
	return args.Get(0).(int64), args.Error(1)
}

func (m *OrchestratorMock) GetJobRecord(ctx context.Context, jobType string) (*models.JobRecord, error) {
	args := m.Called(ctx, jobType)

	rec, _ := args.Get(0).(*models.JobRecord)
	return rec, args.Error(1)
}

func (m *OrchestratorMock) ListJobRecords(ctx context.Context) ([]models.JobRecord, error) {
	args := m.Called(ctx)

	recs, _ := args.Get(0).([]models.JobRecord)
	return recs, args.Error(1)
}
