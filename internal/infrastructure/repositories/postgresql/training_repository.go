package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/docsmait/docsmait/internal/domain/repositories"
	"github.com/docsmait/docsmait/internal/infrastructure/database"
	"github.com/docsmait/docsmait/internal/infrastructure/database/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TrainingRepository struct {
	db *database.DB
}

func NewTrainingRepository(db *database.DB) repositories.TrainingRepository {
	return &TrainingRepository{db: db}
}

func (r *TrainingRepository) Create(ctx context.Context, record *models.TrainingRecord) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to create training record: %w", err)
	}
	return nil
}

func (r *TrainingRepository) ListByUser(ctx context.Context, userID uuid.UUID, params repositories.ListParams) ([]models.TrainingRecord, int64, error) {
	var records []models.TrainingRecord
	var total int64

	query := r.db.WithContext(ctx).Model(&models.TrainingRecord{}).Where("user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count training records: %w", err)
	}

	offset, limit, orderBy := paginate(params, "assessed_at DESC")
	err := query.Preload("Collection").
		Order(orderBy).Offset(offset).Limit(limit).Find(&records).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list training records: %w", err)
	}

	return records, total, nil
}

func (r *TrainingRepository) ListByCollection(ctx context.Context, collectionID uuid.UUID, params repositories.ListParams) ([]models.TrainingRecord, int64, error) {
	var records []models.TrainingRecord
	var total int64

	query := r.db.WithContext(ctx).Model(&models.TrainingRecord{}).Where("collection_id = ?", collectionID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count training records: %w", err)
	}

	offset, limit, orderBy := paginate(params, "assessed_at DESC")
	err := query.Preload("User").
		Order(orderBy).Offset(offset).Limit(limit).Find(&records).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list training records: %w", err)
	}

	return records, total, nil
}

func (r *TrainingRepository) LatestForUser(ctx context.Context, userID, collectionID uuid.UUID) (*models.TrainingRecord, error) {
	var record models.TrainingRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND collection_id = ?", userID, collectionID).
		Order("assessed_at DESC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get latest training record: %w", err)
	}
	return &record, nil
}
