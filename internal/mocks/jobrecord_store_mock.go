package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/complyops/backoffice/internal/models"
)

type JobRecordStoreMock struct {
	mock.Mock
}

func (m *JobRecordStoreMock) GetByName(ctx context.Context, name string) (*models.JobRecord, error) {
	args := m.Called(ctx, name)

	rec, _ := args.Get(0).(*models.JobRecord)
	return rec, args.Error(1)
}

func (m *JobRecordStoreMock) Ensure(ctx context.Context, name string) (*models.JobRecord, error) {
	args := m.Called(ctx, name)

	rec, _ := args.Get(0).(*models.JobRecord)
	return rec, args.Error(1)
}

func (m *JobRecordStoreMock) SetSchedule(ctx context.Context, name, expr, tz string, nextRun *time.Time) error {
	args := m.Called(ctx, name, expr, tz, nextRun)
	return args.Error(0)
}

func (m *JobRecordStoreMock) SetStatus(ctx context.Context, name, status string) error {
	args := m.Called(ctx, name, status)
	return args.Error(0)
}

func (m *JobRecordStoreMock) SetNextRun(ctx context.Context, name string, next time.Time) error {
	args := m.Called(ctx, name, next)
	return args.Error(0)
}

func (m *JobRecordStoreMock) RecordRun(ctx context.Context, name, status, result string, ranAt time.Time, nextRun *time.Time) error {
	args := m.Called(ctx, name, status, result, ranAt, nextRun)
	return args.Error(0)
}

func (m *JobRecordStoreMock) List(ctx context.Context) ([]models.JobRecord, error) {
	args := m.Called(ctx)

	recs, _ := args.Get(0).([]models.JobRecord)
	return recs, args.Error(1)
}
