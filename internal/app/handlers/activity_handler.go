package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/docsmait/docsmait/internal/domain/services"
	"github.com/docsmait/docsmait/internal/infrastructure/database/models"
)

// ActivityHandler serves the audit trail read endpoints.
type ActivityHandler struct {
	*BaseHandler
	activityService *services.ActivityService
}

func NewActivityHandler(base *BaseHandler, activityService *services.ActivityService) *ActivityHandler {
	return &ActivityHandler{BaseHandler: base, activityService: activityService}
}

// ByProject handles GET /api/v1/projects/:id/activity
func (h *ActivityHandler) ByProject(c *gin.Context) {
	if _, ok := h.AuthenticateUser(c); !ok {
		return
	}
	projectID, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	params := h.ParsePagination(c)
	logs, total, err := h.activityService.ListByProject(c.Request.Context(), projectID, params)
	if err != nil {
		h.RespondInternalError(c, "failed to list activity", err)
		return
	}

	h.RespondSuccess(c, h.Paginated(logs, params, total))
}

// ByEntity handles GET /api/v1/:entityType/:id/activity
func (h *ActivityHandler) ByEntity(entityType models.EntityType) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := h.AuthenticateUser(c); !ok {
			return
		}
		entityID, ok := h.ParseUUIDParam(c, "id")
		if !ok {
			return
		}

		params := h.ParsePagination(c)
		logs, total, err := h.activityService.ListByEntity(c.Request.Context(), entityType, entityID, params)
		if err != nil {
			h.RespondInternalError(c, "failed to list activity", err)
			return
		}

		h.RespondSuccess(c, h.Paginated(logs, params, total))
	}
}

// Mine handles GET /api/v1/activity
func (h *ActivityHandler) Mine(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	params := h.ParsePagination(c)
	logs, total, err := h.activityService.ListByUser(c.Request.Context(), userCtx.UserID, params)
	if err != nil {
		h.RespondInternalError(c, "failed to list activity", err)
		return
	}

	h.RespondSuccess(c, h.Paginated(logs, params, total))
}
