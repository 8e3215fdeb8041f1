package handlers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/docsmait/docsmait/internal/domain/dto"
	"github.com/docsmait/docsmait/internal/domain/repositories"
	"github.com/docsmait/docsmait/internal/domain/review"
	"github.com/docsmait/docsmait/internal/domain/services"
	"github.com/docsmait/docsmait/internal/infrastructure/database/models"
)

// statusNormalizer accepts legacy status vocabulary in query filters.
var statusNormalizer = review.NewNormalizer(nil)

// DocumentHandler serves document CRUD, editing and revision history.
type DocumentHandler struct {
	*BaseHandler
	documentService *services.DocumentService
	revisionService *services.RevisionService
}

func NewDocumentHandler(base *BaseHandler, documentService *services.DocumentService, revisionService *services.RevisionService) *DocumentHandler {
	return &DocumentHandler{
		BaseHandler:     base,
		documentService: documentService,
		revisionService: revisionService,
	}
}

// Create handles POST /api/v1/documents
func (h *DocumentHandler) Create(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	var req dto.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "invalid request body", err)
		return
	}

	document, err := h.documentService.CreateDocument(c.Request.Context(), services.CreateDocumentParams{
		ProjectID:  req.ProjectID,
		AuthorID:   userCtx.UserID,
		Title:      req.Title,
		DocType:    models.DocumentType(req.DocType),
		Content:    req.Content,
		TemplateID: req.TemplateID,
		IPAddress:  c.ClientIP(),
	})
	if err != nil {
		h.respondDocumentError(c, err)
		return
	}

	h.RespondCreated(c, document)
}

// Get handles GET /api/v1/documents/:id
func (h *DocumentHandler) Get(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}
	documentID, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	document, err := h.documentService.GetDocument(c.Request.Context(), documentID, userCtx.UserID)
	if err != nil {
		h.respondDocumentError(c, err)
		return
	}

	h.RespondSuccess(c, document)
}

// List handles GET /api/v1/projects/:id/documents
func (h *DocumentHandler) List(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}
	projectID, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	params := h.ParsePagination(c)
	filters := repositories.DocumentFilters{
		Search:   params.Search,
		Page:     params.Page,
		PageSize: params.PageSize,
		SortBy:   params.SortBy,
		SortDesc: params.SortDesc,
		AuthorID: getUUIDQueryParam(c, "author_id"),
	}
	for _, value := range splitCSVParam(c.Query("doc_type")) {
		filters.DocTypes = append(filters.DocTypes, models.DocumentType(value))
	}
	for _, value := range splitCSVParam(c.Query("status")) {
		status, err := statusNormalizer.Normalize(value)
		if err != nil {
			h.RespondBadRequest(c, "invalid status filter", err)
			return
		}
		filters.Status = append(filters.Status, status)
	}

	documents, total, err := h.documentService.ListDocuments(c.Request.Context(), projectID, userCtx.UserID, filters)
	if err != nil {
		h.respondDocumentError(c, err)
		return
	}

	h.RespondSuccess(c, h.Paginated(documents, params, total))
}

// Edit handles PUT /api/v1/documents/:id/content
func (h *DocumentHandler) Edit(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}
	documentID, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.EditContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "invalid request body", err)
		return
	}

	document, err := h.documentService.EditDocument(c.Request.Context(), services.EditDocumentParams{
		DocumentID:       documentID,
		EditorID:         userCtx.UserID,
		Content:          req.Content,
		ChangeNote:       req.ChangeNote,
		ExpectedRevision: req.ExpectedRevision,
		IPAddress:        c.ClientIP(),
	})
	if err != nil {
		h.respondDocumentError(c, err)
		return
	}

	h.RespondSuccess(c, document)
}

// UpdateMeta handles PUT /api/v1/documents/:id
func (h *DocumentHandler) UpdateMeta(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}
	documentID, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateDocumentMetaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "invalid request body", err)
		return
	}

	document, err := h.documentService.UpdateMeta(c.Request.Context(), documentID, userCtx.UserID, req.Title, models.DocumentType(req.DocType))
	if err != nil {
		h.respondDocumentError(c, err)
		return
	}

	h.RespondSuccess(c, document)
}

// Delete handles DELETE /api/v1/documents/:id
func (h *DocumentHandler) Delete(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}
	documentID, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.documentService.DeleteDocument(c.Request.Context(), documentID, userCtx.UserID, c.ClientIP()); err != nil {
		h.respondDocumentError(c, err)
		return
	}

	h.RespondMessage(c, "document deleted")
}

// History handles GET /api/v1/documents/:id/revisions
func (h *DocumentHandler) History(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}
	documentID, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	if _, err := h.documentService.GetDocument(c.Request.Context(), documentID, userCtx.UserID); err != nil {
		h.respondDocumentError(c, err)
		return
	}

	revisions, err := h.revisionService.History(c.Request.Context(), models.EntityDocument, documentID)
	if err != nil {
		h.RespondInternalError(c, "failed to load revision history", err)
		return
	}

	h.RespondSuccess(c, revisions)
}

// GetRevision handles GET /api/v1/documents/:id/revisions/:revision
func (h *DocumentHandler) GetRevision(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}
	documentID, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	revisionNum := getIntPathParam(c, "revision")
	if revisionNum < 1 {
		h.RespondBadRequest(c, "invalid revision number", nil)
		return
	}

	if _, err := h.documentService.GetDocument(c.Request.Context(), documentID, userCtx.UserID); err != nil {
		h.respondDocumentError(c, err)
		return
	}

	rev, err := h.revisionService.GetRevision(c.Request.Context(), models.EntityDocument, documentID, revisionNum)
	if err != nil {
		if errors.Is(err, services.ErrRevisionNotFound) {
			h.RespondNotFound(c, "revision not found")
			return
		}
		h.RespondInternalError(c, "failed to load revision", err)
		return
	}

	h.RespondSuccess(c, rev)
}

func (h *DocumentHandler) respondDocumentError(c *gin.Context, err error) {
	var transition *review.InvalidTransitionError
	var validation *review.ValidationError
	switch {
	case errors.Is(err, services.ErrDocumentNotFound):
		h.RespondNotFound(c, "document not found")
	case errors.Is(err, services.ErrNotProjectMember):
		h.RespondForbidden(c, "not a project member")
	case errors.Is(err, services.ErrNotEntityAuthor):
		h.RespondForbidden(c, "only the author or an admin can modify this document")
	case errors.Is(err, services.ErrTemplateNotApproved):
		h.RespondBadRequest(c, "template is not approved", nil)
	case errors.Is(err, services.ErrTemplateNotFound):
		h.RespondBadRequest(c, "template not found", nil)
	case errors.Is(err, services.ErrStaleEdit):
		h.RespondConflict(c, "document was modified by someone else; reload and retry", nil)
	case errors.Is(err, services.ErrContentTooLarge):
		h.RespondBadRequest(c, "content exceeds the maximum allowed size", nil)
	case errors.As(err, &transition):
		h.RespondConflict(c, transition.Error(), nil)
	case errors.As(err, &validation):
		h.RespondBadRequest(c, validation.Reason, nil)
	default:
		h.RespondInternalError(c, "document operation failed", err)
	}
}

func splitCSVParam(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := parts[:0]
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
