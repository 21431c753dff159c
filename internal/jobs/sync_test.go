package jobs

import (
	"context"
	"testing"

	"github.com/complyops/backoffice/internal/models"
	"github.com/complyops/backoffice/internal/reconcile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestSyncHandler_RunsReconciliation(t *testing.T) {
	f := newJobsFixture(t)
	source := listSource{records: []reconcile.Record{
		{ExternalID: "EMP-1", Attributes: map[string]any{
			"firstName": "Ana", "lastName": "Reyes", "email": "ana@example.com", "active": true,
		}},
		{ExternalID: "EMP-2", Attributes: map[string]any{
			"firstName": "Ben", "lastName": "Okafor", "email": "ben@example.com", "active": true,
		}},
	}}
	h := SyncHandler(f.engine, TypePayrollSync, source, NewEmployeeUpserter(f.directory))

	out, err := h(context.Background(), datatypes.JSON(`{"triggeredBy":"admin@example.com"}`))
	require.NoError(t, err)

	res := out.(reconcile.Result)
	assert.Equal(t, 2, res.RecordsSynced)
	assert.Equal(t, 0, res.RecordsFailed)

	var logs []models.SyncLog
	require.NoError(t, f.db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, TypePayrollSync, logs[0].SyncType)
	assert.Equal(t, models.SyncStatusCompleted, logs[0].Status)
	require.NotNil(t, logs[0].TriggeredBy)
	assert.Equal(t, "admin@example.com", *logs[0].TriggeredBy)
}

func TestSyncHandler_ScheduledRunHasNoTrigger(t *testing.T) {
	f := newJobsFixture(t)
	h := SyncHandler(f.engine, TypePayrollSync, listSource{}, NewEmployeeUpserter(f.directory))

	_, err := h(context.Background(), nil)
	require.NoError(t, err)

	var logs []models.SyncLog
	require.NoError(t, f.db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Nil(t, logs[0].TriggeredBy)
}

func TestSyncHandler_RunLevelErrorPropagates(t *testing.T) {
	f := newJobsFixture(t)
	h := SyncHandler(f.engine, TypePayrollSync, failingSource{}, NewEmployeeUpserter(f.directory))

	_, err := h(context.Background(), nil)
	require.Error(t, err)

	var logs []models.SyncLog
	require.NoError(t, f.db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, models.SyncStatusFailed, logs[0].Status)
}

type failingSource struct{}

func (failingSource) FetchPage(_ context.Context, _, _ int) ([]reconcile.Record, int, error) {
	return nil, 0, assert.AnError
}
