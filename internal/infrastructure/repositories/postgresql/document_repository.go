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

type DocumentRepository struct {
	db *database.DB
}

func NewDocumentRepository(db *database.DB) repositories.DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(ctx context.Context, document *models.Document) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(document).Error; err != nil {
			return err
		}
		return recordInitialRevision(tx, models.EntityDocument, document.ID, document.AuthorID, document.Content)
	})
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	var document models.Document
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("id = ?", id).First(&document).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return &document, nil
}

func (r *DocumentRepository) List(ctx context.Context, projectID uuid.UUID, filters repositories.DocumentFilters) ([]models.Document, int64, error) {
	var documents []models.Document
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Document{}).Where("project_id = ?", projectID)

	if len(filters.DocTypes) > 0 {
		query = query.Where("doc_type IN ?", filters.DocTypes)
	}
	if len(filters.Status) > 0 {
		query = query.Where("status IN ?", filters.Status)
	}
	if filters.AuthorID != nil {
		query = query.Where("author_id = ?", *filters.AuthorID)
	}
	if filters.Search != "" {
		searchTerm := "%" + filters.Search + "%"
		query = query.Where("title LIKE ? OR content LIKE ?", searchTerm, searchTerm)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count documents: %w", err)
	}

	offset, limit, orderBy := paginate(repositories.ListParams{
		Page:     filters.Page,
		PageSize: filters.PageSize,
		SortBy:   filters.SortBy,
		SortDesc: filters.SortDesc,
	}, "created_at DESC")

	err := query.Preload("Author").
		Order(orderBy).Offset(offset).Limit(limit).Find(&documents).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list documents: %w", err)
	}

	return documents, total, nil
}

func (r *DocumentRepository) SaveContent(ctx context.Context, id uuid.UUID, editorID uuid.UUID, content, changeNote string, fromRevision int, fromStatus, newStatus review.Status) (*models.Document, error) {
	var document models.Document
	err := applyContentSave(ctx, r.db, &models.Document{}, models.EntityDocument,
		id, editorID, "content", content, changeNote, fromRevision, fromStatus, newStatus, &document)
	if err != nil {
		return nil, err
	}
	return &document, nil
}

func (r *DocumentRepository) UpdateMeta(ctx context.Context, id uuid.UUID, title string, docType models.DocumentType) error {
	result := r.db.WithContext(ctx).Model(&models.Document{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"title":    title,
			"doc_type": docType,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update document metadata: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Document{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete document: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}
