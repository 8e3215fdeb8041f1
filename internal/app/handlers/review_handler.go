package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/docsmait/docsmait/internal/domain/dto"
	"github.com/docsmait/docsmait/internal/domain/review"
	"github.com/docsmait/docsmait/internal/domain/services"
	"github.com/docsmait/docsmait/internal/infrastructure/database/models"
)

// ReviewHandler serves the review workflow: requesting review cycles,
// submitting decisions and reading the review trail. Routes are nested
// under the entity, e.g. /documents/:id/review/request.
type ReviewHandler struct {
	*BaseHandler
	reviewService *services.ReviewService
}

func NewReviewHandler(base *BaseHandler, reviewService *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{BaseHandler: base, reviewService: reviewService}
}

// Request handles POST /api/v1/:entityType/:id/review/request
func (h *ReviewHandler) Request(entityType models.EntityType) gin.HandlerFunc {
	return func(c *gin.Context) {
		userCtx, ok := h.AuthenticateUser(c)
		if !ok {
			return
		}
		entityID, ok := h.ParseUUIDParam(c, "id")
		if !ok {
			return
		}

		var req dto.RequestReviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			h.RespondBadRequest(c, "invalid request body", err)
			return
		}

		err := h.reviewService.RequestReview(c.Request.Context(), services.RequestReviewParams{
			EntityType:  entityType,
			EntityID:    entityID,
			RequestedBy: userCtx.UserID,
			Reviewers:   req.Reviewers,
			Message:     req.Message,
			IPAddress:   c.ClientIP(),
		})
		if err != nil {
			h.respondReviewError(c, err)
			return
		}

		h.RespondMessage(c, "review requested")
	}
}

// Decide handles POST /api/v1/:entityType/:id/review/decision
func (h *ReviewHandler) Decide(entityType models.EntityType) gin.HandlerFunc {
	return func(c *gin.Context) {
		userCtx, ok := h.AuthenticateUser(c)
		if !ok {
			return
		}
		entityID, ok := h.ParseUUIDParam(c, "id")
		if !ok {
			return
		}

		var req dto.SubmitDecisionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			h.RespondBadRequest(c, "invalid request body", err)
			return
		}

		status, err := h.reviewService.SubmitDecision(c.Request.Context(), services.SubmitDecisionParams{
			EntityType: entityType,
			EntityID:   entityID,
			ReviewerID: userCtx.UserID,
			Approved:   req.Approved,
			Comment:    req.Comment,
			Revision:   req.Revision,
			IPAddress:  c.ClientIP(),
		})
		if err != nil {
			h.respondReviewError(c, err)
			return
		}

		h.RespondSuccess(c, gin.H{"status": status})
	}
}

// Comment handles POST /api/v1/:entityType/:id/review/comments
func (h *ReviewHandler) Comment(entityType models.EntityType) gin.HandlerFunc {
	return func(c *gin.Context) {
		userCtx, ok := h.AuthenticateUser(c)
		if !ok {
			return
		}
		entityID, ok := h.ParseUUIDParam(c, "id")
		if !ok {
			return
		}

		var req dto.AddCommentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			h.RespondBadRequest(c, "invalid request body", err)
			return
		}

		comment, err := h.reviewService.AddComment(c.Request.Context(), entityType, entityID, userCtx.UserID, req.Content)
		if err != nil {
			h.respondReviewError(c, err)
			return
		}

		h.RespondCreated(c, comment)
	}
}

// Trail handles GET /api/v1/:entityType/:id/review/trail
func (h *ReviewHandler) Trail(entityType models.EntityType) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := h.AuthenticateUser(c); !ok {
			return
		}
		entityID, ok := h.ParseUUIDParam(c, "id")
		if !ok {
			return
		}

		params := h.ParsePagination(c)
		comments, total, err := h.reviewService.Trail(c.Request.Context(), entityType, entityID, params)
		if err != nil {
			h.respondReviewError(c, err)
			return
		}

		h.RespondSuccess(c, h.Paginated(comments, params, total))
	}
}

// Summary handles GET /api/v1/:entityType/:id/review
func (h *ReviewHandler) Summary(entityType models.EntityType) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := h.AuthenticateUser(c); !ok {
			return
		}
		entityID, ok := h.ParseUUIDParam(c, "id")
		if !ok {
			return
		}

		summary, err := h.reviewService.GetSummary(c.Request.Context(), entityType, entityID)
		if err != nil {
			h.respondReviewError(c, err)
			return
		}

		h.RespondSuccess(c, summary)
	}
}

// Status handles GET /api/v1/:entityType/:id/review/status
func (h *ReviewHandler) Status(entityType models.EntityType) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := h.AuthenticateUser(c); !ok {
			return
		}
		entityID, ok := h.ParseUUIDParam(c, "id")
		if !ok {
			return
		}

		status, err := h.reviewService.GetStatus(c.Request.Context(), entityType, entityID)
		if err != nil {
			h.respondReviewError(c, err)
			return
		}

		h.RespondSuccess(c, gin.H{"status": status})
	}
}

// AssignedToMe handles GET /api/v1/reviews/assigned
func (h *ReviewHandler) AssignedToMe(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	pendingOnly := getBoolParam(c, "pending_only", true)
	assignments, err := h.reviewService.ListAssignedTo(c.Request.Context(), userCtx.UserID, pendingOnly)
	if err != nil {
		h.RespondInternalError(c, "failed to list assignments", err)
		return
	}

	h.RespondSuccess(c, assignments)
}

func (h *ReviewHandler) respondReviewError(c *gin.Context, err error) {
	var transition *review.InvalidTransitionError
	var validation *review.ValidationError
	switch {
	case errors.Is(err, services.ErrEntityNotFound):
		h.RespondNotFound(c, "entity not found")
	case errors.Is(err, services.ErrNotAuthor):
		h.RespondForbidden(c, "only the author can request a review")
	case errors.Is(err, services.ErrNoReviewers):
		h.RespondBadRequest(c, "at least one reviewer is required", nil)
	case errors.Is(err, services.ErrAuthorAsReviewer):
		h.RespondBadRequest(c, "the author cannot review their own work", nil)
	case errors.Is(err, services.ErrReviewerNotMember):
		h.RespondBadRequest(c, "all reviewers must be project members", nil)
	case errors.Is(err, services.ErrNotAssigned):
		h.RespondForbidden(c, "you are not assigned to this review")
	case errors.Is(err, services.ErrAlreadySubmitted):
		h.RespondConflict(c, "decision already submitted for this cycle", nil)
	case errors.Is(err, services.ErrNotInReview):
		h.RespondConflict(c, "entity is not in review", nil)
	case errors.Is(err, services.ErrCommentRequired):
		h.RespondBadRequest(c, "a decision requires a comment", nil)
	case errors.As(err, &transition):
		h.RespondConflict(c, transition.Error(), nil)
	case errors.As(err, &validation):
		h.RespondBadRequest(c, validation.Reason, nil)
	default:
		h.RespondInternalError(c, "review operation failed", err)
	}
}
