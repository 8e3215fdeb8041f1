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

type RevisionRepository struct {
	db *database.DB
}

func NewRevisionRepository(db *database.DB) repositories.RevisionRepository {
	return &RevisionRepository{db: db}
}

func (r *RevisionRepository) ListByEntity(ctx context.Context, entityType models.EntityType, entityID uuid.UUID) ([]models.EntityRevision, error) {
	var revisions []models.EntityRevision
	err := r.db.WithContext(ctx).
		Preload("Editor").
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("revision ASC").
		Find(&revisions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list revisions: %w", err)
	}
	return revisions, nil
}

func (r *RevisionRepository) GetByRevision(ctx context.Context, entityType models.EntityType, entityID uuid.UUID, revision int) (*models.EntityRevision, error) {
	var rev models.EntityRevision
	err := r.db.WithContext(ctx).
		Preload("Editor").
		Where("entity_type = ? AND entity_id = ? AND revision = ?", entityType, entityID, revision).
		Take(&rev).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get revision: %w", err)
	}
	return &rev, nil
}
