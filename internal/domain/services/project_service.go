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

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrNotProjectOwner = errors.New("only a project owner can do this")
	ErrMemberExists    = errors.New("user is already a member")
)

// ProjectService manages projects and their membership.
type ProjectService struct {
	projectRepo     repositories.ProjectRepository
	userRepo        repositories.UserRepository
	activityService *ActivityService
}

func NewProjectService(
	projectRepo repositories.ProjectRepository,
	userRepo repositories.UserRepository,
	activityService *ActivityService,
) *ProjectService {
	return &ProjectService{
		projectRepo:     projectRepo,
		userRepo:        userRepo,
		activityService: activityService,
	}
}

// CreateProjectParams contains parameters for creating a project.
type CreateProjectParams struct {
	Name        string
	Description string
	CreatedBy   uuid.UUID
	IPAddress   string
}

// CreateProject creates a project with the creator as its first owner.
func (s *ProjectService) CreateProject(ctx context.Context, params CreateProjectParams) (*models.Project, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, &review.ValidationError{Reason: "name is required"}
	}

	project := &models.Project{
		ID:          uuid.New(),
		Name:        name,
		Description: params.Description,
		IsActive:    true,
		CreatedBy:   params.CreatedBy,
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	s.activityService.Record(RecordParams{
		UserID:    params.CreatedBy,
		ProjectID: &project.ID,
		Action:    models.ActivityCreate,
		Details:   models.JSONB{"name": name},
		IPAddress: params.IPAddress,
	})

	return project, nil
}

func (s *ProjectService) GetProject(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return project, nil
}

func (s *ProjectService) ListProjects(ctx context.Context, userID uuid.UUID) ([]models.Project, error) {
	return s.projectRepo.ListForUser(ctx, userID)
}

// AddMember adds a user to the project.
func (s *ProjectService) AddMember(ctx context.Context, projectID, userID, addedBy uuid.UUID) error {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	isMember, err := s.projectRepo.IsMember(ctx, projectID, userID)
	if err != nil {
		return fmt.Errorf("failed to check membership: %w", err)
	}
	if isMember {
		return ErrMemberExists
	}

	member := &models.ProjectMember{
		ID:        uuid.New(),
		ProjectID: projectID,
		UserID:    userID,
	}
	if err := s.projectRepo.AddMember(ctx, member); err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}

	s.activityService.Record(RecordParams{
		UserID:    addedBy,
		ProjectID: &projectID,
		Action:    models.ActivityUpdate,
		Details:   models.JSONB{"added_member": userID.String()},
	})

	return nil
}

func (s *ProjectService) RemoveMember(ctx context.Context, projectID, userID, removedBy uuid.UUID) error {
	if err := s.projectRepo.RemoveMember(ctx, projectID, userID); err != nil {
		return err
	}

	s.activityService.Record(RecordParams{
		UserID:    removedBy,
		ProjectID: &projectID,
		Action:    models.ActivityUpdate,
		Details:   models.JSONB{"removed_member": userID.String()},
	})

	return nil
}

func (s *ProjectService) IsMember(ctx context.Context, projectID, userID uuid.UUID) (bool, error) {
	return s.projectRepo.IsMember(ctx, projectID, userID)
}

func (s *ProjectService) DeleteProject(ctx context.Context, projectID, deletedBy uuid.UUID) error {
	project, err := s.GetProject(ctx, projectID)
	if err != nil {
		return err
	}

	if err := s.projectRepo.Delete(ctx, projectID); err != nil {
		return err
	}

	s.activityService.Record(RecordParams{
		UserID:    deletedBy,
		ProjectID: &projectID,
		Action:    models.ActivityDelete,
		Details:   models.JSONB{"name": project.Name},
	})

	return nil
}
