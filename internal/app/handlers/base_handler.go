package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/docsmait/docsmait/internal/app/middleware"
	"github.com/docsmait/docsmait/internal/domain/dto"
	"github.com/docsmait/docsmait/internal/domain/repositories"
)

// BaseHandler provides shared response and parsing helpers for all
// API handlers.
type BaseHandler struct {
	config *HandlerConfig
}

func NewBaseHandler() *BaseHandler {
	return &BaseHandler{config: NewHandlerConfig()}
}

// AuthenticateUser fetches the user context set by the auth middleware.
// Writes a 401 response and returns false when the request is anonymous.
func (h *BaseHandler) AuthenticateUser(c *gin.Context) (*middleware.UserContext, bool) {
	userCtx := middleware.GetUserContext(c)
	if userCtx == nil {
		h.RespondUnauthorized(c, "authentication required")
		return nil, false
	}
	return userCtx, true
}

func (h *BaseHandler) RespondError(c *gin.Context, status int, errType, message string, details error) {
	resp := dto.ErrorResponse{
		Error:   errType,
		Message: message,
		Status:  status,
	}
	if details != nil && h.config.EnableDebugErrors {
		resp.Details = details.Error()
	}
	c.JSON(status, resp)
}

func (h *BaseHandler) RespondUnauthorized(c *gin.Context, message string) {
	h.RespondError(c, http.StatusUnauthorized, "unauthorized", message, nil)
}

func (h *BaseHandler) RespondBadRequest(c *gin.Context, message string, details error) {
	h.RespondError(c, http.StatusBadRequest, "bad_request", message, details)
}

func (h *BaseHandler) RespondForbidden(c *gin.Context, message string) {
	h.RespondError(c, http.StatusForbidden, "forbidden", message, nil)
}

func (h *BaseHandler) RespondNotFound(c *gin.Context, message string) {
	h.RespondError(c, http.StatusNotFound, "not_found", message, nil)
}

func (h *BaseHandler) RespondConflict(c *gin.Context, message string, details error) {
	h.RespondError(c, http.StatusConflict, "conflict", message, details)
}

func (h *BaseHandler) RespondInternalError(c *gin.Context, message string, details error) {
	h.RespondError(c, http.StatusInternalServerError, "internal_error", message, details)
}

func (h *BaseHandler) RespondSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

func (h *BaseHandler) RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

func (h *BaseHandler) RespondMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, dto.SuccessResponse{Message: message})
}

// ParsePagination reads page/page_size query params and fills ListParams.
func (h *BaseHandler) ParsePagination(c *gin.Context) repositories.ListParams {
	page := getIntParam(c, "page", 1)
	if page < 1 {
		page = 1
	}
	pageSize := h.config.ValidatePageSize(getIntParam(c, "page_size", h.config.DefaultPageSize))

	return repositories.ListParams{
		Page:     page,
		PageSize: pageSize,
		Search:   c.Query("search"),
		SortBy:   c.Query("sort_by"),
		SortDesc: getBoolParam(c, "sort_desc", false),
	}
}

// ParseUUIDParam parses a path parameter as a UUID, writing a 400 response
// on failure.
func (h *BaseHandler) ParseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.RespondBadRequest(c, "invalid "+name, err)
		return uuid.Nil, false
	}
	return id, true
}

// Paginated wraps a list payload with paging metadata.
func (h *BaseHandler) Paginated(data interface{}, params repositories.ListParams, total int64) dto.PaginatedResponse {
	totalPages := int((total + int64(params.PageSize) - 1) / int64(params.PageSize))
	return dto.PaginatedResponse{
		Data:       data,
		Page:       params.Page,
		PageSize:   params.PageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}
