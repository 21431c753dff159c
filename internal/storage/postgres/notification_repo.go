package postgres

import (
	"context"
	"fmt"

	"github.com/complyops/backoffice/internal/models"
	"gorm.io/gorm"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

func (r *NotificationRepository) ListByRole(ctx context.Context, role string, limit int) ([]models.Notification, error) {
	var ns []models.Notification
	if err := r.db.WithContext(ctx).
		Where("role = ?", role).
		Order("created_at desc").
		Limit(limit).
		Find(&ns).Error; err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return ns, nil
}
