package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/docsmait/docsmait/internal/domain/repositories"
	"github.com/docsmait/docsmait/internal/infrastructure/database"
	"github.com/docsmait/docsmait/internal/infrastructure/database/models"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type KnowledgeRepository struct {
	db *database.DB
}

func NewKnowledgeRepository(db *database.DB) repositories.KnowledgeRepository {
	return &KnowledgeRepository{db: db}
}

func (r *KnowledgeRepository) CreateCollection(ctx context.Context, collection *models.KnowledgeCollection) error {
	if err := r.db.WithContext(ctx).Create(collection).Error; err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

func (r *KnowledgeRepository) GetCollection(ctx context.Context, id uuid.UUID) (*models.KnowledgeCollection, error) {
	var collection models.KnowledgeCollection
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&collection).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get collection: %w", err)
	}
	return &collection, nil
}

func (r *KnowledgeRepository) ListCollections(ctx context.Context, projectID *uuid.UUID) ([]models.KnowledgeCollection, error) {
	query := r.db.WithContext(ctx).Model(&models.KnowledgeCollection{})
	if projectID != nil {
		query = query.Where("project_id = ? OR project_id IS NULL", *projectID)
	}

	var collections []models.KnowledgeCollection
	if err := query.Order("name ASC").Find(&collections).Error; err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	return collections, nil
}

func (r *KnowledgeRepository) DeleteCollection(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("collection_id = ?", id).Delete(&models.KnowledgeDocument{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.KnowledgeCollection{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return repositories.ErrNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	return nil
}

func (r *KnowledgeRepository) CreateDocument(ctx context.Context, document *models.KnowledgeDocument) error {
	if err := r.db.WithContext(ctx).Create(document).Error; err != nil {
		return fmt.Errorf("failed to create knowledge document: %w", err)
	}
	return nil
}

func (r *KnowledgeRepository) GetDocument(ctx context.Context, id uuid.UUID) (*models.KnowledgeDocument, error) {
	var document models.KnowledgeDocument
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&document).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get knowledge document: %w", err)
	}
	return &document, nil
}

func (r *KnowledgeRepository) ListDocuments(ctx context.Context, collectionID uuid.UUID, params repositories.ListParams) ([]models.KnowledgeDocument, int64, error) {
	var documents []models.KnowledgeDocument
	var total int64

	query := r.db.WithContext(ctx).Model(&models.KnowledgeDocument{}).
		Where("collection_id = ?", collectionID)

	if params.Search != "" {
		searchTerm := "%" + params.Search + "%"
		query = query.Where("title LIKE ?", searchTerm)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count knowledge documents: %w", err)
	}

	offset, limit, orderBy := paginate(params, "created_at DESC")
	err := query.Order(orderBy).Offset(offset).Limit(limit).Find(&documents).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list knowledge documents: %w", err)
	}

	return documents, total, nil
}

func (r *KnowledgeRepository) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.KnowledgeDocument{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete knowledge document: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// SemanticSearch orders documents by cosine distance to the query
// embedding. Requires the pgvector extension, so it refuses to run on
// non-Postgres databases.
func (r *KnowledgeRepository) SemanticSearch(ctx context.Context, collectionID uuid.UUID, embedding []float32, limit int) ([]models.KnowledgeDocument, error) {
	if !r.db.IsPostgres() {
		return nil, fmt.Errorf("semantic search requires postgres with pgvector")
	}
	if limit <= 0 {
		limit = 10
	}

	var documents []models.KnowledgeDocument
	err := r.db.WithContext(ctx).
		Where("collection_id = ?", collectionID).
		Clauses(clause.OrderBy{Expression: clause.Expr{
			SQL:  "embedding <=> ?",
			Vars: []interface{}{pgvector.NewVector(embedding)},
		}}).
		Limit(limit).
		Find(&documents).Error
	if err != nil {
		return nil, fmt.Errorf("semantic search failed: %w", err)
	}
	return documents, nil
}

func (r *KnowledgeRepository) KeywordSearch(ctx context.Context, collectionID uuid.UUID, query string, limit int) ([]models.KnowledgeDocument, error) {
	if limit <= 0 {
		limit = 10
	}

	searchTerm := "%" + query + "%"
	var documents []models.KnowledgeDocument
	err := r.db.WithContext(ctx).
		Where("collection_id = ?", collectionID).
		Where("title LIKE ? OR content LIKE ?", searchTerm, searchTerm).
		Order("created_at DESC").
		Limit(limit).
		Find(&documents).Error
	if err != nil {
		return nil, fmt.Errorf("keyword search failed: %w", err)
	}
	return documents, nil
}
