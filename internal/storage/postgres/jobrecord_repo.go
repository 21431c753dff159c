package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/complyops/backoffice/internal/models"
	"gorm.io/gorm"
)

type JobRecordRepository struct {
	db *gorm.DB
}

func NewJobRecordRepository(db *gorm.DB) *JobRecordRepository {
	return &JobRecordRepository{db: db}
}

// GetByName returns the record for one named job, or nil if none exists
// yet. Records are created lazily, so nil is not an error.
func (r *JobRecordRepository) GetByName(ctx context.Context, name string) (*models.JobRecord, error) {
	var rec models.JobRecord
	err := r.db.WithContext(ctx).First(&rec, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job record: %w", err)
	}
	return &rec, nil
}

// Ensure creates the record for a named job if it does not exist and
// returns it either way.
func (r *JobRecordRepository) Ensure(ctx context.Context, name string) (*models.JobRecord, error) {
	rec, err := r.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if rec != nil {
		return rec, nil
	}

	rec = &models.JobRecord{Name: name, Status: models.JobStatusScheduled}
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return nil, fmt.Errorf("create job record: %w", err)
	}
	return rec, nil
}

// SetSchedule stores the recurrence a job fires on and its next run time.
func (r *JobRecordRepository) SetSchedule(ctx context.Context, name, expr, tz string, nextRun *time.Time) error {
	if _, err := r.Ensure(ctx, name); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Model(&models.JobRecord{}).
		Where("name = ?", name).
		Updates(map[string]any{
			"cron_expression": expr,
			"timezone":        tz,
			"status":          models.JobStatusScheduled,
			"next_run_at":     nextRun,
		}).Error; err != nil {
		return fmt.Errorf("set job schedule: %w", err)
	}
	return nil
}

// SetStatus updates only the status column.
func (r *JobRecordRepository) SetStatus(ctx context.Context, name, status string) error {
	if _, err := r.Ensure(ctx, name); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Model(&models.JobRecord{}).
		Where("name = ?", name).
		Update("status", status).Error; err != nil {
		return fmt.Errorf("set job status: %w", err)
	}
	return nil
}

// RecordRun stores the outcome of one execution together with the next
// scheduled firing, if any.
func (r *JobRecordRepository) RecordRun(ctx context.Context, name, status, result string, ranAt time.Time, nextRun *time.Time) error {
	if _, err := r.Ensure(ctx, name); err != nil {
		return err
	}
	updates := map[string]any{
		"status":      status,
		"last_run_at": ranAt,
		"last_result": result,
	}
	if nextRun != nil {
		updates["next_run_at"] = nextRun
	}
	if err := r.db.WithContext(ctx).Model(&models.JobRecord{}).
		Where("name = ?", name).
		Updates(updates).Error; err != nil {
		return fmt.Errorf("record job run: %w", err)
	}
	return nil
}

// SetNextRun refreshes only the next firing time, leaving status alone.
func (r *JobRecordRepository) SetNextRun(ctx context.Context, name string, next time.Time) error {
	if _, err := r.Ensure(ctx, name); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Model(&models.JobRecord{}).
		Where("name = ?", name).
		Update("next_run_at", next).Error; err != nil {
		return fmt.Errorf("set next run: %w", err)
	}
	return nil
}

func (r *JobRecordRepository) List(ctx context.Context) ([]models.JobRecord, error) {
	var recs []models.JobRecord
	if err := r.db.WithContext(ctx).Order("name asc").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list job records: %w", err)
	}
	return recs, nil
}
