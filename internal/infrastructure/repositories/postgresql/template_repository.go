package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/docsmait/docsmait/internal/domain/repositories"
	"github.com/docsmait/docsmait/internal/domain/review"
	"github.com/docsmait/docsmait/internal/infrastructure/database"
	"github.com/docsmait/docsmait/internal/infrastructure/database/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TemplateRepository struct {
	db *database.DB
}

func NewTemplateRepository(db *database.DB) repositories.TemplateRepository {
	return &TemplateRepository{db: db}
}

func (r *TemplateRepository) Create(ctx context.Context, template *models.Template) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(template).Error; err != nil {
			return err
		}
		return recordInitialRevision(tx, models.EntityTemplate, template.ID, template.AuthorID, template.Content)
	})
	if err != nil {
		return fmt.Errorf("failed to create template: %w", err)
	}
	return nil
}

func (r *TemplateRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Template, error) {
	var template models.Template
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("id = ?", id).First(&template).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return &template, nil
}

// List returns the project's templates along with the global ones when
// projectID is set, and only the global templates when it is nil.
func (r *TemplateRepository) List(ctx context.Context, projectID *uuid.UUID, params repositories.ListParams) ([]models.Template, int64, error) {
	var templates []models.Template
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Template{})
	if projectID != nil {
		query = query.Where("project_id = ? OR project_id IS NULL", *projectID)
	} else {
		query = query.Where("project_id IS NULL")
	}

	if params.Search != "" {
		searchTerm := "%" + params.Search + "%"
		query = query.Where("name LIKE ? OR description LIKE ?", searchTerm, searchTerm)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count templates: %w", err)
	}

	offset, limit, orderBy := paginate(params, "name ASC")
	err := query.Preload("Author").
		Order(orderBy).Offset(offset).Limit(limit).Find(&templates).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list templates: %w", err)
	}

	return templates, total, nil
}

func (r *TemplateRepository) SaveContent(ctx context.Context, id uuid.UUID, editorID uuid.UUID, content, changeNote string, fromRevision int, fromStatus, newStatus review.Status) (*models.Template, error) {
	var template models.Template
	err := applyContentSave(ctx, r.db, &models.Template{}, models.EntityTemplate,
		id, editorID, "content", content, changeNote, fromRevision, fromStatus, newStatus, &template)
	if err != nil {
		return nil, err
	}
	return &template, nil
}

func (r *TemplateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Template{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete template: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}
