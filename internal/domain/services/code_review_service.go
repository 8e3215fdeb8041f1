package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/docsmait/docsmait/internal/domain/repositories"
	"github.com/docsmait/docsmait/internal/domain/review"
	"github.com/docsmait/docsmait/internal/infrastructure/database/models"
	"github.com/google/uuid"
)

var ErrCodeReviewNotFound = errors.New("code review not found")

// CodeReviewService manages code change artifacts, which ride the same
// review workflow as documents.
type CodeReviewService struct {
	codeReviewRepo  repositories.CodeReviewRepository
	projectRepo     repositories.ProjectRepository
	userRepo        repositories.UserRepository
	activityService *ActivityService
	maxContentBytes int
}

func NewCodeReviewService(
	codeReviewRepo repositories.CodeReviewRepository,
	projectRepo repositories.ProjectRepository,
	userRepo repositories.UserRepository,
	activityService *ActivityService,
	maxContentBytes int,
) *CodeReviewService {
	return &CodeReviewService{
		codeReviewRepo:  codeReviewRepo,
		projectRepo:     projectRepo,
		userRepo:        userRepo,
		activityService: activityService,
		maxContentBytes: maxContentBytes,
	}
}

// CreateCodeReviewParams contains parameters for submitting a change
// for review.
type CreateCodeReviewParams struct {
	ProjectID  uuid.UUID
	AuthorID   uuid.UUID
	Title      string
	Repository string
	Branch     string
	Diff       string
	IPAddress  string
}

func (s *CodeReviewService) CreateCodeReview(ctx context.Context, params CreateCodeReviewParams) (*models.CodeReview, error) {
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, &review.ValidationError{Reason: "title is required"}
	}
	if s.maxContentBytes > 0 && len(params.Diff) > s.maxContentBytes {
		return nil, ErrContentTooLarge
	}

	if err := requireMember(ctx, s.projectRepo, s.userRepo, params.ProjectID, params.AuthorID); err != nil {
		return nil, err
	}

	codeReview := &models.CodeReview{
		ID:         uuid.New(),
		ProjectID:  params.ProjectID,
		Title:      title,
		Repository: strings.TrimSpace(params.Repository),
		Branch:     strings.TrimSpace(params.Branch),
		Diff:       params.Diff,
		AuthorID:   params.AuthorID,
		ReviewMeta: models.ReviewMeta{
			Status:          review.StatusDraft,
			CurrentRevision: 1,
		},
	}

	if err := s.codeReviewRepo.Create(ctx, codeReview); err != nil {
		return nil, fmt.Errorf("failed to create code review: %w", err)
	}

	s.activityService.Record(RecordParams{
		UserID:     params.AuthorID,
		ProjectID:  &params.ProjectID,
		EntityType: models.EntityCodeReview,
		EntityID:   &codeReview.ID,
		Action:     models.ActivityCreate,
		Details:    models.JSONB{"title": title},
		IPAddress:  params.IPAddress,
	})

	return codeReview, nil
}

// UpdateDiffParams contains a diff update following rework.
type UpdateDiffParams struct {
	CodeReviewID     uuid.UUID
	EditorID         uuid.UUID
	Diff             string
	ChangeNote       string
	ExpectedRevision int
	IPAddress        string
}

func (s *CodeReviewService) UpdateDiff(ctx context.Context, params UpdateDiffParams) (*models.CodeReview, error) {
	if s.maxContentBytes > 0 && len(params.Diff) > s.maxContentBytes {
		return nil, ErrContentTooLarge
	}

	codeReview, err := s.loadCodeReview(ctx, params.CodeReviewID)
	if err != nil {
		return nil, err
	}
	if err := requireAuthorOrAdmin(ctx, s.userRepo, codeReview.AuthorID, params.EditorID); err != nil {
		return nil, err
	}

	newStatus, err := review.ApplyEdit(codeReview.Status)
	if err != nil {
		return nil, err
	}

	updated, err := s.codeReviewRepo.SaveDiff(ctx, params.CodeReviewID, params.EditorID,
		params.Diff, params.ChangeNote, params.ExpectedRevision, codeReview.Status, newStatus)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrStaleEntity):
			return nil, ErrStaleEdit
		case errors.Is(err, repositories.ErrNotFound):
			return nil, ErrCodeReviewNotFound
		}
		return nil, err
	}

	s.activityService.Record(RecordParams{
		UserID:     params.EditorID,
		ProjectID:  &codeReview.ProjectID,
		EntityType: models.EntityCodeReview,
		EntityID:   &codeReview.ID,
		Action:     models.ActivityUpdate,
		Details:    models.JSONB{"revision": updated.CurrentRevision},
		IPAddress:  params.IPAddress,
	})

	return updated, nil
}

// GetCodeReview returns a code review to a project member or admin.
func (s *CodeReviewService) GetCodeReview(ctx context.Context, codeReviewID, userID uuid.UUID) (*models.CodeReview, error) {
	codeReview, err := s.loadCodeReview(ctx, codeReviewID)
	if err != nil {
		return nil, err
	}
	if err := requireMember(ctx, s.projectRepo, s.userRepo, codeReview.ProjectID, userID); err != nil {
		return nil, err
	}
	return codeReview, nil
}

func (s *CodeReviewService) ListCodeReviews(ctx context.Context, projectID, userID uuid.UUID, params repositories.ListParams) ([]models.CodeReview, int64, error) {
	if err := requireMember(ctx, s.projectRepo, s.userRepo, projectID, userID); err != nil {
		return nil, 0, err
	}
	return s.codeReviewRepo.ListByProject(ctx, projectID, params)
}

func (s *CodeReviewService) loadCodeReview(ctx context.Context, codeReviewID uuid.UUID) (*models.CodeReview, error) {
	codeReview, err := s.codeReviewRepo.GetByID(ctx, codeReviewID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCodeReviewNotFound
		}
		return nil, err
	}
	return codeReview, nil
}

func (s *CodeReviewService) DeleteCodeReview(ctx context.Context, codeReviewID, userID uuid.UUID, ipAddress string) error {
	codeReview, err := s.loadCodeReview(ctx, codeReviewID)
	if err != nil {
		return err
	}
	if err := requireAuthorOrAdmin(ctx, s.userRepo, codeReview.AuthorID, userID); err != nil {
		return err
	}

	if err := s.codeReviewRepo.Delete(ctx, codeReviewID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrCodeReviewNotFound
		}
		return err
	}

	s.activityService.Record(RecordParams{
		UserID:     userID,
		ProjectID:  &codeReview.ProjectID,
		EntityType: models.EntityCodeReview,
		EntityID:   &codeReviewID,
		Action:     models.ActivityDelete,
		Details:    models.JSONB{"title": codeReview.Title},
		IPAddress:  ipAddress,
	})

	return nil
}
