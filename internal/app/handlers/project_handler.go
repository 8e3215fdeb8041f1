package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/docsmait/docsmait/internal/domain/dto"
	"github.com/docsmait/docsmait/internal/domain/review"
	"github.com/docsmait/docsmait/internal/domain/services"
)

// ProjectHandler serves project and membership endpoints.
type ProjectHandler struct {
	*BaseHandler
	projectService *services.ProjectService
}

func NewProjectHandler(base *BaseHandler, projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{BaseHandler: base, projectService: projectService}
}

// Create handles POST /api/v1/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "invalid request body", err)
		return
	}

	project, err := h.projectService.CreateProject(c.Request.Context(), services.CreateProjectParams{
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   userCtx.UserID,
		IPAddress:   c.ClientIP(),
	})
	if err != nil {
		var validation *review.ValidationError
		if errors.As(err, &validation) {
			h.RespondBadRequest(c, validation.Reason, nil)
			return
		}
		h.RespondInternalError(c, "failed to create project", err)
		return
	}

	h.RespondCreated(c, project)
}

// Get handles GET /api/v1/projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}
	projectID, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	isMember, err := h.projectService.IsMember(c.Request.Context(), projectID, userCtx.UserID)
	if err != nil {
		h.RespondInternalError(c, "failed to load project", err)
		return
	}
	if !isMember {
		h.RespondForbidden(c, "not a project member")
		return
	}

	project, err := h.projectService.GetProject(c.Request.Context(), projectID)
	if err != nil {
		if errors.Is(err, services.ErrProjectNotFound) {
			h.RespondNotFound(c, "project not found")
			return
		}
		h.RespondInternalError(c, "failed to load project", err)
		return
	}

	h.RespondSuccess(c, project)
}

// List handles GET /api/v1/projects
func (h *ProjectHandler) List(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	projects, err := h.projectService.ListProjects(c.Request.Context(), userCtx.UserID)
	if err != nil {
		h.RespondInternalError(c, "failed to list projects", err)
		return
	}

	h.RespondSuccess(c, projects)
}

// AddMember handles POST /api/v1/projects/:id/members
func (h *ProjectHandler) AddMember(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}
	projectID, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "invalid request body", err)
		return
	}

	err := h.projectService.AddMember(c.Request.Context(), projectID, req.UserID, userCtx.UserID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrProjectNotFound):
			h.RespondNotFound(c, "project not found")
		case errors.Is(err, services.ErrNotProjectOwner):
			h.RespondForbidden(c, "only the project owner can manage members")
		case errors.Is(err, services.ErrMemberExists):
			h.RespondConflict(c, "user is already a member", nil)
		default:
			h.RespondInternalError(c, "failed to add member", err)
		}
		return
	}

	h.RespondMessage(c, "member added")
}

// RemoveMember handles DELETE /api/v1/projects/:id/members/:userId
func (h *ProjectHandler) RemoveMember(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}
	projectID, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	memberID, ok := h.ParseUUIDParam(c, "userId")
	if !ok {
		return
	}

	err := h.projectService.RemoveMember(c.Request.Context(), projectID, memberID, userCtx.UserID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrProjectNotFound):
			h.RespondNotFound(c, "project not found")
		case errors.Is(err, services.ErrNotProjectOwner):
			h.RespondForbidden(c, "only the project owner can manage members")
		default:
			h.RespondInternalError(c, "failed to remove member", err)
		}
		return
	}

	h.RespondMessage(c, "member removed")
}

// Delete handles DELETE /api/v1/projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}
	projectID, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	err := h.projectService.DeleteProject(c.Request.Context(), projectID, userCtx.UserID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrProjectNotFound):
			h.RespondNotFound(c, "project not found")
		case errors.Is(err, services.ErrNotProjectOwner):
			h.RespondForbidden(c, "only the project owner can delete the project")
		default:
			h.RespondInternalError(c, "failed to delete project", err)
		}
		return
	}

	h.RespondMessage(c, "project deleted")
}
