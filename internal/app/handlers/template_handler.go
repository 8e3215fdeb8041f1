package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/docsmait/docsmait/internal/domain/dto"
	"github.com/docsmait/docsmait/internal/domain/review"
	"github.com/docsmait/docsmait/internal/domain/services"
	"github.com/docsmait/docsmait/internal/infrastructure/database/models"
)

// TemplateHandler serves template CRUD endpoints. Templates with no
// project are global and usable by any project.
type TemplateHandler struct {
	*BaseHandler
	templateService *services.TemplateService
	revisionService *services.RevisionService
}

func NewTemplateHandler(base *BaseHandler, templateService *services.TemplateService, revisionService *services.RevisionService) *TemplateHandler {
	return &TemplateHandler{
		BaseHandler:     base,
		templateService: templateService,
		revisionService: revisionService,
	}
}

// Create handles POST /api/v1/templates
func (h *TemplateHandler) Create(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	var req dto.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "invalid request body", err)
		return
	}

	template, err := h.templateService.CreateTemplate(c.Request.Context(), services.CreateTemplateParams{
		ProjectID:   req.ProjectID,
		AuthorID:    userCtx.UserID,
		Name:        req.Name,
		Description: req.Description,
		DocType:     models.DocumentType(req.DocType),
		Content:     req.Content,
		IPAddress:   c.ClientIP(),
	})
	if err != nil {
		h.respondTemplateError(c, err)
		return
	}

	h.RespondCreated(c, template)
}

// Get handles GET /api/v1/templates/:id
func (h *TemplateHandler) Get(c *gin.Context) {
	if _, ok := h.AuthenticateUser(c); !ok {
		return
	}
	templateID, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	template, err := h.templateService.GetTemplate(c.Request.Context(), templateID)
	if err != nil {
		h.respondTemplateError(c, err)
		return
	}

	h.RespondSuccess(c, template)
}

// List handles GET /api/v1/templates. An optional project_id query
// param scopes the listing; global templates are always included.
func (h *TemplateHandler) List(c *gin.Context) {
	if _, ok := h.AuthenticateUser(c); !ok {
		return
	}

	params := h.ParsePagination(c)
	projectID := getUUIDQueryParam(c, "project_id")

	templates, total, err := h.templateService.ListTemplates(c.Request.Context(), projectID, params)
	if err != nil {
		h.RespondInternalError(c, "failed to list templates", err)
		return
	}

	h.RespondSuccess(c, h.Paginated(templates, params, total))
}

// Edit handles PUT /api/v1/templates/:id/content
func (h *TemplateHandler) Edit(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}
	templateID, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.EditContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "invalid request body", err)
		return
	}

	template, err := h.templateService.EditTemplate(c.Request.Context(), services.EditTemplateParams{
		TemplateID:       templateID,
		EditorID:         userCtx.UserID,
		Content:          req.Content,
		ChangeNote:       req.ChangeNote,
		ExpectedRevision: req.ExpectedRevision,
		IPAddress:        c.ClientIP(),
	})
	if err != nil {
		h.respondTemplateError(c, err)
		return
	}

	h.RespondSuccess(c, template)
}

// Delete handles DELETE /api/v1/templates/:id
func (h *TemplateHandler) Delete(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}
	templateID, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.templateService.DeleteTemplate(c.Request.Context(), templateID, userCtx.UserID, c.ClientIP()); err != nil {
		h.respondTemplateError(c, err)
		return
	}

	h.RespondMessage(c, "template deleted")
}

// History handles GET /api/v1/templates/:id/revisions
func (h *TemplateHandler) History(c *gin.Context) {
	if _, ok := h.AuthenticateUser(c); !ok {
		return
	}
	templateID, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	revisions, err := h.revisionService.History(c.Request.Context(), models.EntityTemplate, templateID)
	if err != nil {
		h.RespondInternalError(c, "failed to load revision history", err)
		return
	}

	h.RespondSuccess(c, revisions)
}

func (h *TemplateHandler) respondTemplateError(c *gin.Context, err error) {
	var transition *review.InvalidTransitionError
	var validation *review.ValidationError
	switch {
	case errors.Is(err, services.ErrTemplateNotFound):
		h.RespondNotFound(c, "template not found")
	case errors.Is(err, services.ErrNotProjectMember):
		h.RespondForbidden(c, "not a project member")
	case errors.Is(err, services.ErrNotEntityAuthor):
		h.RespondForbidden(c, "only the author or an admin can modify this template")
	case errors.Is(err, services.ErrStaleEdit):
		h.RespondConflict(c, "template was modified by someone else; reload and retry", nil)
	case errors.Is(err, services.ErrContentTooLarge):
		h.RespondBadRequest(c, "content exceeds the maximum allowed size", nil)
	case errors.As(err, &transition):
		h.RespondConflict(c, transition.Error(), nil)
	case errors.As(err, &validation):
		h.RespondBadRequest(c, validation.Reason, nil)
	default:
		h.RespondInternalError(c, "template operation failed", err)
	}
}
