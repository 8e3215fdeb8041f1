package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/docsmait/docsmait/internal/domain/repositories"
	"github.com/docsmait/docsmait/internal/domain/services"
)

// NotificationHandler serves in-app notification endpoints.
type NotificationHandler struct {
	*BaseHandler
	notificationService *services.NotificationService
}

func NewNotificationHandler(base *BaseHandler, notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{BaseHandler: base, notificationService: notificationService}
}

// List handles GET /api/v1/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	params := h.ParsePagination(c)
	unreadOnly := getBoolParam(c, "unread_only", false)

	notifications, total, err := h.notificationService.List(c.Request.Context(), userCtx.UserID, unreadOnly, params)
	if err != nil {
		h.RespondInternalError(c, "failed to list notifications", err)
		return
	}

	h.RespondSuccess(c, h.Paginated(notifications, params, total))
}

// UnreadCount handles GET /api/v1/notifications/unread-count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	count, err := h.notificationService.CountUnread(c.Request.Context(), userCtx.UserID)
	if err != nil {
		h.RespondInternalError(c, "failed to count notifications", err)
		return
	}

	h.RespondSuccess(c, gin.H{"unread": count})
}

// MarkRead handles POST /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}
	notificationID, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	err := h.notificationService.MarkRead(c.Request.Context(), notificationID, userCtx.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			h.RespondNotFound(c, "notification not found")
			return
		}
		h.RespondInternalError(c, "failed to mark notification read", err)
		return
	}

	h.RespondMessage(c, "notification marked read")
}

// MarkAllRead handles POST /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	if err := h.notificationService.MarkAllRead(c.Request.Context(), userCtx.UserID); err != nil {
		h.RespondInternalError(c, "failed to mark notifications read", err)
		return
	}

	h.RespondMessage(c, "all notifications marked read")
}
