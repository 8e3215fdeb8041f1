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
	ErrDocumentNotFound    = errors.New("document not found")
	ErrNotProjectMember    = errors.New("user is not a member of the project")
	ErrTemplateNotApproved = errors.New("only approved templates can seed documents")
	ErrStaleEdit           = errors.New("document was modified by someone else; reload and retry")
	ErrContentTooLarge     = errors.New("content exceeds the maximum size")
)

// DocumentService manages controlled documents. Content edits are
// versioned: every save snapshots a new revision, and an edit against
// an outdated revision is rejected rather than silently overwriting.
type DocumentService struct {
	documentRepo    repositories.DocumentRepository
	templateRepo    repositories.TemplateRepository
	projectRepo     repositories.ProjectRepository
	userRepo        repositories.UserRepository
	activityService *ActivityService
	maxContentBytes int
}

func NewDocumentService(
	documentRepo repositories.DocumentRepository,
	templateRepo repositories.TemplateRepository,
	projectRepo repositories.ProjectRepository,
	userRepo repositories.UserRepository,
	activityService *ActivityService,
	maxContentBytes int,
) *DocumentService {
	return &DocumentService{
		documentRepo:    documentRepo,
		templateRepo:    templateRepo,
		projectRepo:     projectRepo,
		userRepo:        userRepo,
		activityService: activityService,
		maxContentBytes: maxContentBytes,
	}
}

// CreateDocumentParams contains parameters for creating a document.
type CreateDocumentParams struct {
	ProjectID  uuid.UUID
	AuthorID   uuid.UUID
	Title      string
	DocType    models.DocumentType
	Content    string
	TemplateID *uuid.UUID
	IPAddress  string
}

// CreateDocument creates a draft at revision 1. When TemplateID is
// set the template must be approved and its content seeds the new
// document.
func (s *DocumentService) CreateDocument(ctx context.Context, params CreateDocumentParams) (*models.Document, error) {
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, &review.ValidationError{Reason: "title is required"}
	}

	if err := requireMember(ctx, s.projectRepo, s.userRepo, params.ProjectID, params.AuthorID); err != nil {
		return nil, err
	}

	content := params.Content
	docType := params.DocType
	if params.TemplateID != nil {
		template, err := s.templateRepo.GetByID(ctx, *params.TemplateID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, ErrTemplateNotFound
			}
			return nil, err
		}
		if template.Status != review.StatusApproved {
			return nil, ErrTemplateNotApproved
		}
		if content == "" {
			content = template.Content
		}
		if docType == "" {
			docType = template.DocType
		}
	}
	if docType == "" {
		docType = models.DocTypeGeneral
	}
	if err := s.checkContentSize(content); err != nil {
		return nil, err
	}

	document := &models.Document{
		ID:        uuid.New(),
		ProjectID: params.ProjectID,
		Title:     title,
		DocType:   docType,
		Content:   content,
		AuthorID:  params.AuthorID,
		ReviewMeta: models.ReviewMeta{
			Status:          review.StatusDraft,
			CurrentRevision: 1,
		},
	}

	if err := s.documentRepo.Create(ctx, document); err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	s.activityService.Record(RecordParams{
		UserID:     params.AuthorID,
		ProjectID:  &params.ProjectID,
		EntityType: models.EntityDocument,
		EntityID:   &document.ID,
		Action:     models.ActivityCreate,
		Details:    models.JSONB{"title": title},
		IPAddress:  params.IPAddress,
	})

	return document, nil
}

// EditDocumentParams contains a content edit. ExpectedRevision is the
// revision the editor based their change on.
type EditDocumentParams struct {
	DocumentID       uuid.UUID
	EditorID         uuid.UUID
	Content          string
	ChangeNote       string
	ExpectedRevision int
	IPAddress        string
}

// EditDocument saves new content. Editing a draft keeps it a draft;
// editing an approved or needs-update document pulls it back to draft.
// Editing while a review is in flight is rejected. Only the author or
// an admin may edit.
func (s *DocumentService) EditDocument(ctx context.Context, params EditDocumentParams) (*models.Document, error) {
	if err := s.checkContentSize(params.Content); err != nil {
		return nil, err
	}

	document, err := s.loadDocument(ctx, params.DocumentID)
	if err != nil {
		return nil, err
	}
	if err := requireAuthorOrAdmin(ctx, s.userRepo, document.AuthorID, params.EditorID); err != nil {
		return nil, err
	}

	newStatus, err := review.ApplyEdit(document.Status)
	if err != nil {
		return nil, err
	}

	updated, err := s.documentRepo.SaveContent(ctx, params.DocumentID, params.EditorID,
		params.Content, params.ChangeNote, params.ExpectedRevision, document.Status, newStatus)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrStaleEntity):
			return nil, ErrStaleEdit
		case errors.Is(err, repositories.ErrNotFound):
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}

	s.activityService.Record(RecordParams{
		UserID:     params.EditorID,
		ProjectID:  &document.ProjectID,
		EntityType: models.EntityDocument,
		EntityID:   &document.ID,
		Action:     models.ActivityUpdate,
		Details:    models.JSONB{"revision": updated.CurrentRevision},
		IPAddress:  params.IPAddress,
	})

	return updated, nil
}

// GetDocument returns a document to a project member or admin.
func (s *DocumentService) GetDocument(ctx context.Context, documentID, userID uuid.UUID) (*models.Document, error) {
	document, err := s.loadDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if err := requireMember(ctx, s.projectRepo, s.userRepo, document.ProjectID, userID); err != nil {
		return nil, err
	}
	return document, nil
}

func (s *DocumentService) ListDocuments(ctx context.Context, projectID, userID uuid.UUID, filters repositories.DocumentFilters) ([]models.Document, int64, error) {
	if err := requireMember(ctx, s.projectRepo, s.userRepo, projectID, userID); err != nil {
		return nil, 0, err
	}
	return s.documentRepo.List(ctx, projectID, filters)
}

func (s *DocumentService) loadDocument(ctx context.Context, documentID uuid.UUID) (*models.Document, error) {
	document, err := s.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return document, nil
}

// UpdateMeta renames a document or changes its type without touching
// content or revision.
func (s *DocumentService) UpdateMeta(ctx context.Context, documentID, userID uuid.UUID, title string, docType models.DocumentType) (*models.Document, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, &review.ValidationError{Reason: "title is required"}
	}

	document, err := s.loadDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if err := requireAuthorOrAdmin(ctx, s.userRepo, document.AuthorID, userID); err != nil {
		return nil, err
	}

	if err := s.documentRepo.UpdateMeta(ctx, documentID, title, docType); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return s.loadDocument(ctx, documentID)
}

func (s *DocumentService) DeleteDocument(ctx context.Context, documentID, userID uuid.UUID, ipAddress string) error {
	document, err := s.loadDocument(ctx, documentID)
	if err != nil {
		return err
	}
	if err := requireAuthorOrAdmin(ctx, s.userRepo, document.AuthorID, userID); err != nil {
		return err
	}

	if err := s.documentRepo.Delete(ctx, documentID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrDocumentNotFound
		}
		return err
	}

	s.activityService.Record(RecordParams{
		UserID:     userID,
		ProjectID:  &document.ProjectID,
		EntityType: models.EntityDocument,
		EntityID:   &documentID,
		Action:     models.ActivityDelete,
		Details:    models.JSONB{"title": document.Title},
		IPAddress:  ipAddress,
	})

	return nil
}

func (s *DocumentService) checkContentSize(content string) error {
	if s.maxContentBytes > 0 && len(content) > s.maxContentBytes {
		return ErrContentTooLarge
	}
	return nil
}
