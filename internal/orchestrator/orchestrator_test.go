package orchestrator

import (
	"context"
	"testing"

	"github.com/complyops/backoffice/internal/mocks"
	"github.com/complyops/backoffice/internal/models"
	"github.com/complyops/backoffice/internal/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestOrchestrator(t *testing.T) (*Orchestrator, *mocks.JobRecordStoreMock) {
	t.Helper()

	records := new(mocks.JobRecordStoreMock)
	sched, err := scheduler.New(new(mocks.EnqueuerMock), records, "UTC")
	require.NoError(t, err)

	return New(nil, nil, sched, records), records
}

func TestOrchestrator_ScheduleJob(t *testing.T) {
	o, records := newTestOrchestrator(t)

	records.On("Ensure", mock.Anything, "weekly_digest").Return(&models.JobRecord{Name: "weekly_digest"}, nil)
	records.On("SetSchedule", mock.Anything, "weekly_digest", "0 17 * * 5", "", mock.Anything).Return(nil)

	require.NoError(t, o.ScheduleJob(context.Background(), "weekly_digest", "0 17 * * 5", ""))
	records.AssertExpectations(t)
}

func TestOrchestrator_ResumeJob_UsesStoredSchedule(t *testing.T) {
	o, records := newTestOrchestrator(t)

	records.On("GetByName", mock.Anything, "weekly_digest").Return(&models.JobRecord{
		Name:           "weekly_digest",
		Status:         models.JobStatusPaused,
		CronExpression: "0 17 * * 5",
		Timezone:       "Australia/Sydney",
	}, nil)
	records.On("SetSchedule", mock.Anything, "weekly_digest", "0 17 * * 5", "Australia/Sydney", mock.Anything).Return(nil)

	require.NoError(t, o.ResumeJob(context.Background(), "weekly_digest"))
	records.AssertExpectations(t)
}

func TestOrchestrator_ResumeJob_NoStoredSchedule(t *testing.T) {
	tests := []struct {
		name string
		rec  *models.JobRecord
	}{
		{"record missing", nil},
		{"record without schedule", &models.JobRecord{Name: "email_retry"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, records := newTestOrchestrator(t)
			records.On("GetByName", mock.Anything, "email_retry").Return(tt.rec, nil)

			err := o.ResumeJob(context.Background(), "email_retry")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "no stored schedule")
		})
	}
}
