package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/complyops/backoffice/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type MappingRepository struct {
	db *gorm.DB
}

func NewMappingRepository(db *gorm.DB) *MappingRepository {
	return &MappingRepository{db: db}
}

// FindByExternal looks up a mapping by its unique (externalId, externalType)
// pair. Returns nil without error when no mapping exists.
func (r *MappingRepository) FindByExternal(ctx context.Context, externalID, externalType string) (*models.MappingRecord, error) {
	var rec models.MappingRecord
	err := r.db.WithContext(ctx).
		First(&rec, "external_id = ? AND external_type = ?", externalID, externalType).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find mapping: %w", err)
	}
	return &rec, nil
}

func (r *MappingRepository) Create(ctx context.Context, rec *models.MappingRecord) error {
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("create mapping: %w", err)
	}
	return nil
}

// Touch refreshes a mapping after a successful sync pass.
func (r *MappingRepository) Touch(ctx context.Context, id uint, metadata datatypes.JSON, syncedAt time.Time) error {
	updates := map[string]any{"last_synced_at": syncedAt}
	if metadata != nil {
		updates["metadata"] = metadata
	}
	if err := r.db.WithContext(ctx).Model(&models.MappingRecord{}).
		Where("id = ?", id).
		Updates(updates).Error; err != nil {
		return fmt.Errorf("touch mapping: %w", err)
	}
	return nil
}

func (r *MappingRepository) CountByExternalType(ctx context.Context, externalType string) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.MappingRecord{}).
		Where("external_type = ?", externalType).
		Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count mappings: %w", err)
	}
	return n, nil
}
