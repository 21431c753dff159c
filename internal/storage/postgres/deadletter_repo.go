package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/complyops/backoffice/internal/models"
	"gorm.io/gorm"
)

type DeadLetterRepository struct {
	db *gorm.DB
}

func NewDeadLetterRepository(db *gorm.DB) *DeadLetterRepository {
	return &DeadLetterRepository{db: db}
}

func (r *DeadLetterRepository) Insert(ctx context.Context, item *models.DeadLetterItem) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("insert dead letter item: %w", err)
	}
	return nil
}

func (r *DeadLetterRepository) Get(ctx context.Context, id string) (*models.DeadLetterItem, error) {
	var item models.DeadLetterItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("dead letter item not found: %w", err)
		}
		return nil, fmt.Errorf("get dead letter item: %w", err)
	}
	return &item, nil
}

// List returns all dead-letter items, most recent failure first.
func (r *DeadLetterRepository) List(ctx context.Context) ([]models.DeadLetterItem, error) {
	var items []models.DeadLetterItem
	if err := r.db.WithContext(ctx).
		Order("failed_at desc").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list dead letter items: %w", err)
	}
	return items, nil
}

// Delete removes a dead-letter item, typically after replay.
func (r *DeadLetterRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.DeadLetterItem{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete dead letter item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("dead letter item not found: %s", id)
	}
	return nil
}
