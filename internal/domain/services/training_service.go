package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/docsmait/docsmait/internal/domain/repositories"
	"github.com/docsmait/docsmait/internal/domain/review"
	"github.com/docsmait/docsmait/internal/infrastructure/database/models"
	"github.com/google/uuid"
)

// TrainingService records assessment results against knowledge
// collections. The pass threshold is a deployment setting, not a
// per-assessment choice.
type TrainingService struct {
	trainingRepo    repositories.TrainingRepository
	knowledgeRepo   repositories.KnowledgeRepository
	activityService *ActivityService
	passThreshold   float64
}

func NewTrainingService(
	trainingRepo repositories.TrainingRepository,
	knowledgeRepo repositories.KnowledgeRepository,
	activityService *ActivityService,
	passThreshold float64,
) *TrainingService {
	return &TrainingService{
		trainingRepo:    trainingRepo,
		knowledgeRepo:   knowledgeRepo,
		activityService: activityService,
		passThreshold:   passThreshold,
	}
}

// RecordAssessmentParams contains one assessment result.
type RecordAssessmentParams struct {
	UserID       uuid.UUID
	CollectionID uuid.UUID
	Score        float64
	IPAddress    string
}

// RecordAssessment stores a result; pass or fail follows from the
// configured threshold.
func (s *TrainingService) RecordAssessment(ctx context.Context, params RecordAssessmentParams) (*models.TrainingRecord, error) {
	if params.Score < 0 || params.Score > 100 {
		return nil, &review.ValidationError{Reason: "score must be between 0 and 100"}
	}

	if _, err := s.knowledgeRepo.GetCollection(ctx, params.CollectionID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCollectionNotFound
		}
		return nil, err
	}

	record := &models.TrainingRecord{
		ID:           uuid.New(),
		UserID:       params.UserID,
		CollectionID: params.CollectionID,
		Score:        params.Score,
		Passed:       params.Score >= s.passThreshold,
		AssessedAt:   time.Now(),
	}

	if err := s.trainingRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to record assessment: %w", err)
	}

	s.activityService.Record(RecordParams{
		UserID:    params.UserID,
		Action:    models.ActivityAssessment,
		Details:   models.JSONB{"collection_id": params.CollectionID.String(), "score": params.Score, "passed": record.Passed},
		IPAddress: params.IPAddress,
	})

	return record, nil
}

func (s *TrainingService) ListByUser(ctx context.Context, userID uuid.UUID, params repositories.ListParams) ([]models.TrainingRecord, int64, error) {
	return s.trainingRepo.ListByUser(ctx, userID, params)
}

func (s *TrainingService) ListByCollection(ctx context.Context, collectionID uuid.UUID, params repositories.ListParams) ([]models.TrainingRecord, int64, error) {
	return s.trainingRepo.ListByCollection(ctx, collectionID, params)
}

// LatestForUser returns the user's most recent result for a
// collection, nil when they have never been assessed.
func (s *TrainingService) LatestForUser(ctx context.Context, userID, collectionID uuid.UUID) (*models.TrainingRecord, error) {
	record, err := s.trainingRepo.LatestForUser(ctx, userID, collectionID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}
