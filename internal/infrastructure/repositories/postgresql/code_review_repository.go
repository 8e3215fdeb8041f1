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

type CodeReviewRepository struct {
	db *database.DB
}

func NewCodeReviewRepository(db *database.DB) repositories.CodeReviewRepository {
	return &CodeReviewRepository{db: db}
}

func (r *CodeReviewRepository) Create(ctx context.Context, codeReview *models.CodeReview) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(codeReview).Error; err != nil {
			return err
		}
		return recordInitialRevision(tx, models.EntityCodeReview, codeReview.ID, codeReview.AuthorID, codeReview.Diff)
	})
	if err != nil {
		return fmt.Errorf("failed to create code review: %w", err)
	}
	return nil
}

func (r *CodeReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.CodeReview, error) {
	var codeReview models.CodeReview
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("id = ?", id).First(&codeReview).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get code review: %w", err)
	}
	return &codeReview, nil
}

func (r *CodeReviewRepository) ListByProject(ctx context.Context, projectID uuid.UUID, params repositories.ListParams) ([]models.CodeReview, int64, error) {
	var codeReviews []models.CodeReview
	var total int64

	query := r.db.WithContext(ctx).Model(&models.CodeReview{}).Where("project_id = ?", projectID)

	if params.Search != "" {
		searchTerm := "%" + params.Search + "%"
		query = query.Where("title LIKE ? OR repository LIKE ?", searchTerm, searchTerm)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count code reviews: %w", err)
	}

	offset, limit, orderBy := paginate(params, "created_at DESC")
	err := query.Preload("Author").
		Order(orderBy).Offset(offset).Limit(limit).Find(&codeReviews).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list code reviews: %w", err)
	}

	return codeReviews, total, nil
}

func (r *CodeReviewRepository) SaveDiff(ctx context.Context, id uuid.UUID, editorID uuid.UUID, diff, changeNote string, fromRevision int, fromStatus, newStatus review.Status) (*models.CodeReview, error) {
	var codeReview models.CodeReview
	err := applyContentSave(ctx, r.db, &models.CodeReview{}, models.EntityCodeReview,
		id, editorID, "diff", diff, changeNote, fromRevision, fromStatus, newStatus, &codeReview)
	if err != nil {
		return nil, err
	}
	return &codeReview, nil
}

func (r *CodeReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.CodeReview{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete code review: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}
