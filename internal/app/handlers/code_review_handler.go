package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/docsmait/docsmait/internal/domain/dto"
	"github.com/docsmait/docsmait/internal/domain/review"
	"github.com/docsmait/docsmait/internal/domain/services"
	"github.com/docsmait/docsmait/internal/infrastructure/database/models"
)

// CodeReviewHandler serves code change artifact endpoints.
type CodeReviewHandler struct {
	*BaseHandler
	codeReviewService *services.CodeReviewService
	revisionService   *services.RevisionService
}

func NewCodeReviewHandler(base *BaseHandler, codeReviewService *services.CodeReviewService, revisionService *services.RevisionService) *CodeReviewHandler {
	return &CodeReviewHandler{
		BaseHandler:       base,
		codeReviewService: codeReviewService,
		revisionService:   revisionService,
	}
}

// Create handles POST /api/v1/code-reviews
func (h *CodeReviewHandler) Create(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	var req dto.CreateCodeReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "invalid request body", err)
		return
	}

	codeReview, err := h.codeReviewService.CreateCodeReview(c.Request.Context(), services.CreateCodeReviewParams{
		ProjectID:  req.ProjectID,
		AuthorID:   userCtx.UserID,
		Title:      req.Title,
		Repository: req.Repository,
		Branch:     req.Branch,
		Diff:       req.Diff,
		IPAddress:  c.ClientIP(),
	})
	if err != nil {
		h.respondCodeReviewError(c, err)
		return
	}

	h.RespondCreated(c, codeReview)
}

// Get handles GET /api/v1/code-reviews/:id
func (h *CodeReviewHandler) Get(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}
	codeReviewID, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	codeReview, err := h.codeReviewService.GetCodeReview(c.Request.Context(), codeReviewID, userCtx.UserID)
	if err != nil {
		h.respondCodeReviewError(c, err)
		return
	}

	h.RespondSuccess(c, codeReview)
}

// List handles GET /api/v1/projects/:id/code-reviews
func (h *CodeReviewHandler) List(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}
	projectID, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	params := h.ParsePagination(c)
	codeReviews, total, err := h.codeReviewService.ListCodeReviews(c.Request.Context(), projectID, userCtx.UserID, params)
	if err != nil {
		h.respondCodeReviewError(c, err)
		return
	}

	h.RespondSuccess(c, h.Paginated(codeReviews, params, total))
}

// UpdateDiff handles PUT /api/v1/code-reviews/:id/diff
func (h *CodeReviewHandler) UpdateDiff(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}
	codeReviewID, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateDiffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "invalid request body", err)
		return
	}

	codeReview, err := h.codeReviewService.UpdateDiff(c.Request.Context(), services.UpdateDiffParams{
		CodeReviewID:     codeReviewID,
		EditorID:         userCtx.UserID,
		Diff:             req.Diff,
		ChangeNote:       req.ChangeNote,
		ExpectedRevision: req.ExpectedRevision,
		IPAddress:        c.ClientIP(),
	})
	if err != nil {
		h.respondCodeReviewError(c, err)
		return
	}

	h.RespondSuccess(c, codeReview)
}

// Delete handles DELETE /api/v1/code-reviews/:id
func (h *CodeReviewHandler) Delete(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}
	codeReviewID, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.codeReviewService.DeleteCodeReview(c.Request.Context(), codeReviewID, userCtx.UserID, c.ClientIP()); err != nil {
		h.respondCodeReviewError(c, err)
		return
	}

	h.RespondMessage(c, "code review deleted")
}

// History handles GET /api/v1/code-reviews/:id/revisions
func (h *CodeReviewHandler) History(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}
	codeReviewID, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	if _, err := h.codeReviewService.GetCodeReview(c.Request.Context(), codeReviewID, userCtx.UserID); err != nil {
		h.respondCodeReviewError(c, err)
		return
	}

	revisions, err := h.revisionService.History(c.Request.Context(), models.EntityCodeReview, codeReviewID)
	if err != nil {
		h.RespondInternalError(c, "failed to load revision history", err)
		return
	}

	h.RespondSuccess(c, revisions)
}

func (h *CodeReviewHandler) respondCodeReviewError(c *gin.Context, err error) {
	var transition *review.InvalidTransitionError
	var validation *review.ValidationError
	switch {
	case errors.Is(err, services.ErrCodeReviewNotFound):
		h.RespondNotFound(c, "code review not found")
	case errors.Is(err, services.ErrNotProjectMember):
		h.RespondForbidden(c, "not a project member")
	case errors.Is(err, services.ErrNotEntityAuthor):
		h.RespondForbidden(c, "only the author or an admin can modify this code review")
	case errors.Is(err, services.ErrStaleEdit):
		h.RespondConflict(c, "code review was modified by someone else; reload and retry", nil)
	case errors.Is(err, services.ErrContentTooLarge):
		h.RespondBadRequest(c, "diff exceeds the maximum allowed size", nil)
	case errors.As(err, &transition):
		h.RespondConflict(c, transition.Error(), nil)
	case errors.As(err, &validation):
		h.RespondBadRequest(c, validation.Reason, nil)
	default:
		h.RespondInternalError(c, "code review operation failed", err)
	}
}
