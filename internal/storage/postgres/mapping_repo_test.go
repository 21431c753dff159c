package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/complyops/backoffice/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestMappingRepository_FindByExternal(t *testing.T) {
	db := SetupTestDB(t)
	repo := NewMappingRepository(db)

	missing, err := repo.FindByExternal(context.Background(), "EMP-1", "payroll:employee")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, repo.Create(context.Background(), &models.MappingRecord{
		ExternalID:   "EMP-1",
		ExternalType: "payroll:employee",
		InternalID:   42,
		InternalType: "employee",
		LastSyncedAt: time.Now(),
	}))

	found, err := repo.FindByExternal(context.Background(), "EMP-1", "payroll:employee")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, uint(42), found.InternalID)

	// Same external id under a different system is a different mapping.
	other, err := repo.FindByExternal(context.Background(), "EMP-1", "lms:student")
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestMappingRepository_Create_DuplicatePair(t *testing.T) {
	db := SetupTestDB(t)
	repo := NewMappingRepository(db)

	rec := &models.MappingRecord{
		ExternalID:   "EMP-1",
		ExternalType: "payroll:employee",
		InternalID:   1,
		InternalType: "employee",
		LastSyncedAt: time.Now(),
	}
	require.NoError(t, repo.Create(context.Background(), rec))

	dup := &models.MappingRecord{
		ExternalID:   "EMP-1",
		ExternalType: "payroll:employee",
		InternalID:   2,
		InternalType: "employee",
		LastSyncedAt: time.Now(),
	}
	err := repo.Create(context.Background(), dup)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create mapping")
}

func TestMappingRepository_Touch(t *testing.T) {
	db := SetupTestDB(t)
	repo := NewMappingRepository(db)

	rec := &models.MappingRecord{
		ExternalID:   "TR-9",
		ExternalType: "lms:trainer",
		InternalID:   9,
		InternalType: "trainer",
		LastSyncedAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, repo.Create(context.Background(), rec))

	syncedAt := time.Now()
	require.NoError(t, repo.Touch(context.Background(), rec.ID, datatypes.JSON(`{"name":"Pat"}`), syncedAt))

	found, err := repo.FindByExternal(context.Background(), "TR-9", "lms:trainer")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.WithinDuration(t, syncedAt, found.LastSyncedAt, time.Second)
	assert.JSONEq(t, `{"name":"Pat"}`, string(found.Metadata))
}

func TestSyncLogRepository_StartAndFinish(t *testing.T) {
	db := SetupTestDB(t)
	repo := NewSyncLogRepository(db)

	operator := "ops@example.com"
	logRow, err := repo.Start(context.Background(), "payroll_employee_sync", &operator)
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusRunning, logRow.Status)
	assert.NotZero(t, logRow.ID)

	require.NoError(t, repo.Finish(context.Background(), logRow.ID, models.SyncStatusCompleted, 50, 49, 1, ""))

	logs, err := repo.ListByType(context.Background(), "payroll_employee_sync", 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.SyncStatusCompleted, logs[0].Status)
	assert.Equal(t, 50, logs[0].RecordsTotal)
	assert.Equal(t, 49, logs[0].RecordsSynced)
	assert.Equal(t, 1, logs[0].RecordsFailed)
	require.NotNil(t, logs[0].CompletedAt)
	require.NotNil(t, logs[0].TriggeredBy)
	assert.Equal(t, operator, *logs[0].TriggeredBy)
}

func TestSyncLogRepository_ListRecent(t *testing.T) {
	db := SetupTestDB(t)
	repo := NewSyncLogRepository(db)

	old := models.SyncLog{SyncType: "lms_trainer_sync", Status: models.SyncStatusCompleted, StartedAt: time.Now().Add(-48 * time.Hour)}
	recent := models.SyncLog{SyncType: "payroll_employee_sync", Status: models.SyncStatusCompleted, StartedAt: time.Now().Add(-time.Hour)}
	require.NoError(t, db.Create(&old).Error)
	require.NoError(t, db.Create(&recent).Error)

	logs, err := repo.ListRecent(context.Background(), time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "payroll_employee_sync", logs[0].SyncType)
}
