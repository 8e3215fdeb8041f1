package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/docsmait/docsmait/internal/domain/dto"
	"github.com/docsmait/docsmait/internal/domain/services"
)

// UserHandler serves admin user management endpoints.
type UserHandler struct {
	*BaseHandler
	userService *services.UserService
}

func NewUserHandler(base *BaseHandler, userService *services.UserService) *UserHandler {
	return &UserHandler{BaseHandler: base, userService: userService}
}

// List handles GET /api/v1/users
func (h *UserHandler) List(c *gin.Context) {
	params := h.ParsePagination(c)

	users, total, err := h.userService.List(c.Request.Context(), params)
	if err != nil {
		h.RespondInternalError(c, "failed to list users", err)
		return
	}

	responses := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, dto.NewUserResponse(&users[i]))
	}

	h.RespondSuccess(c, h.Paginated(responses, params, total))
}

// Deactivate handles POST /api/v1/users/:id/deactivate
func (h *UserHandler) Deactivate(c *gin.Context) {
	userID, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.userService.Deactivate(c.Request.Context(), userID); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			h.RespondNotFound(c, "user not found")
			return
		}
		h.RespondInternalError(c, "failed to deactivate user", err)
		return
	}

	h.RespondMessage(c, "user deactivated")
}
