package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/complyops/backoffice/internal/models"
	"gorm.io/gorm"
)

type SyncLogRepository struct {
	db *gorm.DB
}

func NewSyncLogRepository(db *gorm.DB) *SyncLogRepository {
	return &SyncLogRepository{db: db}
}

// Start inserts the running row for a new sync run.
func (r *SyncLogRepository) Start(ctx context.Context, syncType string, triggeredBy *string) (*models.SyncLog, error) {
	log := &models.SyncLog{
		SyncType:    syncType,
		Status:      models.SyncStatusRunning,
		TriggeredBy: triggeredBy,
		StartedAt:   time.Now(),
	}
	if err := r.db.WithContext(ctx).Create(log).Error; err != nil {
		return nil, fmt.Errorf("start sync log: %w", err)
	}
	return log, nil
}

// Finish writes the single end-of-run update. The row is immutable after
// this call.
func (r *SyncLogRepository) Finish(ctx context.Context, id uint, status string, total, synced, failed int, errMsg string) error {
	now := time.Now()
	if err := r.db.WithContext(ctx).Model(&models.SyncLog{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":         status,
			"records_total":  total,
			"records_synced": synced,
			"records_failed": failed,
			"error_message":  errMsg,
			"completed_at":   now,
		}).Error; err != nil {
		return fmt.Errorf("finish sync log: %w", err)
	}
	return nil
}

// ListRecent returns runs started after the cutoff, newest first, across
// all sync types. Used by the digest and report jobs.
func (r *SyncLogRepository) ListRecent(ctx context.Context, since time.Time) ([]models.SyncLog, error) {
	var logs []models.SyncLog
	if err := r.db.WithContext(ctx).
		Where("started_at >= ?", since).
		Order("started_at desc").
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list recent sync logs: %w", err)
	}
	return logs, nil
}

// ListByType returns recent runs for one sync type, newest first.
func (r *SyncLogRepository) ListByType(ctx context.Context, syncType string, limit int) ([]models.SyncLog, error) {
	var logs []models.SyncLog
	if err := r.db.WithContext(ctx).
		Where("sync_type = ?", syncType).
		Order("started_at desc").
		Limit(limit).
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list sync logs: %w", err)
	}
	return logs, nil
}
