package services

import (
	"context"

	"github.com/docsmait/docsmait/internal/domain/repositories"
	"github.com/docsmait/docsmait/internal/infrastructure/database/models"
	"github.com/google/uuid"
)

// ActivityService records and queries the audit trail. Writes are
// fire-and-forget so a logging hiccup never fails the operation that
// produced it.
type ActivityService struct {
	activityRepo repositories.ActivityLogRepository
}

func NewActivityService(activityRepo repositories.ActivityLogRepository) *ActivityService {
	return &ActivityService{activityRepo: activityRepo}
}

// RecordParams describes one audit entry.
type RecordParams struct {
	UserID     uuid.UUID
	ProjectID  *uuid.UUID
	EntityType models.EntityType
	EntityID   *uuid.UUID
	Action     models.ActivityAction
	Details    models.JSONB
	IPAddress  string
}

// Record writes an audit entry asynchronously.
func (s *ActivityService) Record(params RecordParams) {
	log := &models.ActivityLog{
		ID:         uuid.New(),
		UserID:     params.UserID,
		ProjectID:  params.ProjectID,
		EntityType: params.EntityType,
		EntityID:   params.EntityID,
		Action:     params.Action,
		Details:    params.Details,
		IPAddress:  params.IPAddress,
	}

	go func() {
		_ = s.activityRepo.Create(context.Background(), log)
	}()
}

func (s *ActivityService) ListByProject(ctx context.Context, projectID uuid.UUID, params repositories.ListParams) ([]models.ActivityLog, int64, error) {
	return s.activityRepo.ListByProject(ctx, projectID, params)
}

func (s *ActivityService) ListByEntity(ctx context.Context, entityType models.EntityType, entityID uuid.UUID, params repositories.ListParams) ([]models.ActivityLog, int64, error) {
	return s.activityRepo.ListByEntity(ctx, entityType, entityID, params)
}

func (s *ActivityService) ListByUser(ctx context.Context, userID uuid.UUID, params repositories.ListParams) ([]models.ActivityLog, int64, error) {
	return s.activityRepo.ListByUser(ctx, userID, params)
}
