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

var ErrTemplateNotFound = errors.New("template not found")

// TemplateService manages document templates. Templates move through
// the same review workflow as documents; only approved templates can
// seed new documents.
type TemplateService struct {
	templateRepo    repositories.TemplateRepository
	projectRepo     repositories.ProjectRepository
	userRepo        repositories.UserRepository
	activityService *ActivityService
	maxContentBytes int
}

func NewTemplateService(
	templateRepo repositories.TemplateRepository,
	projectRepo repositories.ProjectRepository,
	userRepo repositories.UserRepository,
	activityService *ActivityService,
	maxContentBytes int,
) *TemplateService {
	return &TemplateService{
		templateRepo:    templateRepo,
		projectRepo:     projectRepo,
		userRepo:        userRepo,
		activityService: activityService,
		maxContentBytes: maxContentBytes,
	}
}

// CreateTemplateParams contains parameters for creating a template. A
// nil ProjectID makes the template available to every project.
type CreateTemplateParams struct {
	ProjectID   *uuid.UUID
	AuthorID    uuid.UUID
	Name        string
	Description string
	DocType     models.DocumentType
	Content     string
	IPAddress   string
}

func (s *TemplateService) CreateTemplate(ctx context.Context, params CreateTemplateParams) (*models.Template, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, &review.ValidationError{Reason: "name is required"}
	}
	if s.maxContentBytes > 0 && len(params.Content) > s.maxContentBytes {
		return nil, ErrContentTooLarge
	}

	if params.ProjectID != nil {
		if err := requireMember(ctx, s.projectRepo, s.userRepo, *params.ProjectID, params.AuthorID); err != nil {
			return nil, err
		}
	}

	docType := params.DocType
	if docType == "" {
		docType = models.DocTypeGeneral
	}

	template := &models.Template{
		ID:          uuid.New(),
		ProjectID:   params.ProjectID,
		Name:        name,
		Description: params.Description,
		DocType:     docType,
		Content:     params.Content,
		AuthorID:    params.AuthorID,
		ReviewMeta: models.ReviewMeta{
			Status:          review.StatusDraft,
			CurrentRevision: 1,
		},
	}

	if err := s.templateRepo.Create(ctx, template); err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}

	s.activityService.Record(RecordParams{
		UserID:     params.AuthorID,
		ProjectID:  params.ProjectID,
		EntityType: models.EntityTemplate,
		EntityID:   &template.ID,
		Action:     models.ActivityCreate,
		Details:    models.JSONB{"name": name},
		IPAddress:  params.IPAddress,
	})

	return template, nil
}

// EditTemplateParams mirrors document edits: optimistic against
// ExpectedRevision, forbidden while the template is under review.
type EditTemplateParams struct {
	TemplateID       uuid.UUID
	EditorID         uuid.UUID
	Content          string
	ChangeNote       string
	ExpectedRevision int
	IPAddress        string
}

func (s *TemplateService) EditTemplate(ctx context.Context, params EditTemplateParams) (*models.Template, error) {
	if s.maxContentBytes > 0 && len(params.Content) > s.maxContentBytes {
		return nil, ErrContentTooLarge
	}

	template, err := s.GetTemplate(ctx, params.TemplateID)
	if err != nil {
		return nil, err
	}
	if err := requireAuthorOrAdmin(ctx, s.userRepo, template.AuthorID, params.EditorID); err != nil {
		return nil, err
	}

	newStatus, err := review.ApplyEdit(template.Status)
	if err != nil {
		return nil, err
	}

	updated, err := s.templateRepo.SaveContent(ctx, params.TemplateID, params.EditorID,
		params.Content, params.ChangeNote, params.ExpectedRevision, template.Status, newStatus)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrStaleEntity):
			return nil, ErrStaleEdit
		case errors.Is(err, repositories.ErrNotFound):
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}

	s.activityService.Record(RecordParams{
		UserID:     params.EditorID,
		ProjectID:  template.ProjectID,
		EntityType: models.EntityTemplate,
		EntityID:   &template.ID,
		Action:     models.ActivityUpdate,
		Details:    models.JSONB{"revision": updated.CurrentRevision},
		IPAddress:  params.IPAddress,
	})

	return updated, nil
}

func (s *TemplateService) GetTemplate(ctx context.Context, templateID uuid.UUID) (*models.Template, error) {
	template, err := s.templateRepo.GetByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	return template, nil
}

// ListTemplates returns project templates plus globals when projectID
// is set, or globals only when it is nil.
func (s *TemplateService) ListTemplates(ctx context.Context, projectID *uuid.UUID, params repositories.ListParams) ([]models.Template, int64, error) {
	return s.templateRepo.List(ctx, projectID, params)
}

func (s *TemplateService) DeleteTemplate(ctx context.Context, templateID, userID uuid.UUID, ipAddress string) error {
	template, err := s.GetTemplate(ctx, templateID)
	if err != nil {
		return err
	}
	if err := requireAuthorOrAdmin(ctx, s.userRepo, template.AuthorID, userID); err != nil {
		return err
	}

	if err := s.templateRepo.Delete(ctx, templateID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrTemplateNotFound
		}
		return err
	}

	s.activityService.Record(RecordParams{
		UserID:     userID,
		ProjectID:  template.ProjectID,
		EntityType: models.EntityTemplate,
		EntityID:   &templateID,
		Action:     models.ActivityDelete,
		Details:    models.JSONB{"name": template.Name},
		IPAddress:  ipAddress,
	})

	return nil
}
