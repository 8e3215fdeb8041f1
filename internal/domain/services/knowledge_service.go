package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/docsmait/docsmait/internal/domain/repositories"
	"github.com/docsmait/docsmait/internal/domain/review"
	"github.com/docsmait/docsmait/internal/infrastructure/database/models"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

var (
	ErrCollectionNotFound   = errors.New("knowledge collection not found")
	ErrKnowledgeDocNotFound = errors.New("knowledge document not found")
	ErrBadEmbedding         = errors.New("embedding has the wrong dimension")
)

// EmbeddingDim is the expected vector size. Embeddings are produced
// upstream and arrive on the API; this service stores and searches
// them.
const EmbeddingDim = 768

// KnowledgeService manages reference collections and their indexed
// documents.
type KnowledgeService struct {
	knowledgeRepo   repositories.KnowledgeRepository
	activityService *ActivityService
}

func NewKnowledgeService(knowledgeRepo repositories.KnowledgeRepository, activityService *ActivityService) *KnowledgeService {
	return &KnowledgeService{
		knowledgeRepo:   knowledgeRepo,
		activityService: activityService,
	}
}

func (s *KnowledgeService) CreateCollection(ctx context.Context, projectID *uuid.UUID, createdBy uuid.UUID, name, description string) (*models.KnowledgeCollection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &review.ValidationError{Reason: "name is required"}
	}

	collection := &models.KnowledgeCollection{
		ID:          uuid.New(),
		ProjectID:   projectID,
		Name:        name,
		Description: description,
		CreatedBy:   createdBy,
	}
	if err := s.knowledgeRepo.CreateCollection(ctx, collection); err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}
	return collection, nil
}

func (s *KnowledgeService) GetCollection(ctx context.Context, id uuid.UUID) (*models.KnowledgeCollection, error) {
	collection, err := s.knowledgeRepo.GetCollection(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCollectionNotFound
		}
		return nil, err
	}
	return collection, nil
}

func (s *KnowledgeService) ListCollections(ctx context.Context, projectID *uuid.UUID) ([]models.KnowledgeCollection, error) {
	return s.knowledgeRepo.ListCollections(ctx, projectID)
}

func (s *KnowledgeService) DeleteCollection(ctx context.Context, id uuid.UUID) error {
	err := s.knowledgeRepo.DeleteCollection(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrCollectionNotFound
	}
	return err
}

// AddDocumentParams contains one document to index. Embedding may be
// empty when only keyword search is needed.
type AddDocumentParams struct {
	CollectionID uuid.UUID
	CreatedBy    uuid.UUID
	Title        string
	Content      string
	Embedding    []float32
}

func (s *KnowledgeService) AddDocument(ctx context.Context, params AddDocumentParams) (*models.KnowledgeDocument, error) {
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, &review.ValidationError{Reason: "title is required"}
	}
	if params.Content == "" {
		return nil, &review.ValidationError{Reason: "content is required"}
	}
	if len(params.Embedding) != 0 && len(params.Embedding) != EmbeddingDim {
		return nil, ErrBadEmbedding
	}

	if _, err := s.GetCollection(ctx, params.CollectionID); err != nil {
		return nil, err
	}

	hash := sha256.Sum256([]byte(params.Content))
	document := &models.KnowledgeDocument{
		ID:           uuid.New(),
		CollectionID: params.CollectionID,
		Title:        title,
		Content:      params.Content,
		ContentHash:  hex.EncodeToString(hash[:]),
		CreatedBy:    params.CreatedBy,
	}
	if len(params.Embedding) > 0 {
		document.Embedding = pgvector.NewVector(params.Embedding)
	}

	if err := s.knowledgeRepo.CreateDocument(ctx, document); err != nil {
		return nil, fmt.Errorf("failed to add document: %w", err)
	}
	return document, nil
}

func (s *KnowledgeService) GetDocument(ctx context.Context, id uuid.UUID) (*models.KnowledgeDocument, error) {
	document, err := s.knowledgeRepo.GetDocument(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrKnowledgeDocNotFound
		}
		return nil, err
	}
	return document, nil
}

func (s *KnowledgeService) ListDocuments(ctx context.Context, collectionID uuid.UUID, params repositories.ListParams) ([]models.KnowledgeDocument, int64, error) {
	return s.knowledgeRepo.ListDocuments(ctx, collectionID, params)
}

func (s *KnowledgeService) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	err := s.knowledgeRepo.DeleteDocument(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrKnowledgeDocNotFound
	}
	return err
}

// Search runs a semantic search when an embedding is provided and
// falls back to keyword matching otherwise.
func (s *KnowledgeService) Search(ctx context.Context, collectionID uuid.UUID, query string, embedding []float32, limit int) ([]models.KnowledgeDocument, error) {
	if len(embedding) > 0 {
		if len(embedding) != EmbeddingDim {
			return nil, ErrBadEmbedding
		}
		return s.knowledgeRepo.SemanticSearch(ctx, collectionID, embedding, limit)
	}
	if strings.TrimSpace(query) == "" {
		return nil, &review.ValidationError{Reason: "query or embedding is required"}
	}
	return s.knowledgeRepo.KeywordSearch(ctx, collectionID, query, limit)
}
