package postgresql

import (
	"context"
	"fmt"

	"github.com/docsmait/docsmait/internal/domain/repositories"
	"github.com/docsmait/docsmait/internal/infrastructure/database"
	"github.com/docsmait/docsmait/internal/infrastructure/database/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ActivityLogRepository struct {
	db *database.DB
}

func NewActivityLogRepository(db *database.DB) repositories.ActivityLogRepository {
	return &ActivityLogRepository{db: db}
}

func (r *ActivityLogRepository) Create(ctx context.Context, log *models.ActivityLog) error {
	if err := r.db.WithContext(ctx).Create(log).Error; err != nil {
		return fmt.Errorf("failed to create activity log: %w", err)
	}
	return nil
}

func (r *ActivityLogRepository) ListByProject(ctx context.Context, projectID uuid.UUID, params repositories.ListParams) ([]models.ActivityLog, int64, error) {
	return r.list(ctx, params, func(query *gorm.DB) *gorm.DB {
		return query.Where("project_id = ?", projectID)
	})
}

func (r *ActivityLogRepository) ListByEntity(ctx context.Context, entityType models.EntityType, entityID uuid.UUID, params repositories.ListParams) ([]models.ActivityLog, int64, error) {
	return r.list(ctx, params, func(query *gorm.DB) *gorm.DB {
		return query.Where("entity_type = ? AND entity_id = ?", entityType, entityID)
	})
}

func (r *ActivityLogRepository) ListByUser(ctx context.Context, userID uuid.UUID, params repositories.ListParams) ([]models.ActivityLog, int64, error) {
	return r.list(ctx, params, func(query *gorm.DB) *gorm.DB {
		return query.Where("user_id = ?", userID)
	})
}

func (r *ActivityLogRepository) list(ctx context.Context, params repositories.ListParams, scope func(*gorm.DB) *gorm.DB) ([]models.ActivityLog, int64, error) {
	var logs []models.ActivityLog
	var total int64

	query := scope(r.db.WithContext(ctx).Model(&models.ActivityLog{}))

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count activity logs: %w", err)
	}

	offset, limit, orderBy := paginate(params, "created_at DESC")
	err := query.Preload("User").
		Order(orderBy).Offset(offset).Limit(limit).Find(&logs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list activity logs: %w", err)
	}

	return logs, total, nil
}
