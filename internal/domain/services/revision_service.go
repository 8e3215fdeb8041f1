package services

import (
	"context"
	"errors"

	"github.com/docsmait/docsmait/internal/domain/repositories"
	"github.com/docsmait/docsmait/internal/infrastructure/database/models"
	"github.com/google/uuid"
)

var ErrRevisionNotFound = errors.New("revision not found")

// RevisionService serves the content history of reviewable entities.
type RevisionService struct {
	revisionRepo repositories.RevisionRepository
}

func NewRevisionService(revisionRepo repositories.RevisionRepository) *RevisionService {
	return &RevisionService{revisionRepo: revisionRepo}
}

func (s *RevisionService) History(ctx context.Context, entityType models.EntityType, entityID uuid.UUID) ([]models.EntityRevision, error) {
	return s.revisionRepo.ListByEntity(ctx, entityType, entityID)
}

func (s *RevisionService) GetRevision(ctx context.Context, entityType models.EntityType, entityID uuid.UUID, revision int) (*models.EntityRevision, error) {
	rev, err := s.revisionRepo.GetByRevision(ctx, entityType, entityID, revision)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRevisionNotFound
		}
		return nil, err
	}
	return rev, nil
}
