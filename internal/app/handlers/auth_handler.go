package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/docsmait/docsmait/internal/domain/dto"
	"github.com/docsmait/docsmait/internal/domain/services"
)

// AuthHandler serves registration, login and profile endpoints.
type AuthHandler struct {
	*BaseHandler
	userService *services.UserService
}

func NewAuthHandler(base *BaseHandler, userService *services.UserService) *AuthHandler {
	return &AuthHandler{BaseHandler: base, userService: userService}
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "invalid request body", err)
		return
	}

	user, err := h.userService.Register(c.Request.Context(), services.RegisterParams{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserExists):
			h.RespondConflict(c, "email already registered", nil)
		case errors.Is(err, services.ErrInvalidEmail), errors.Is(err, services.ErrWeakPassword):
			h.RespondBadRequest(c, err.Error(), nil)
		default:
			h.RespondInternalError(c, "registration failed", err)
		}
		return
	}

	h.RespondCreated(c, dto.NewUserResponse(user))
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "invalid request body", err)
		return
	}

	result, err := h.userService.Login(c.Request.Context(), services.LoginParams{
		Email:     req.Email,
		Password:  req.Password,
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			h.RespondUnauthorized(c, "invalid email or password")
		case errors.Is(err, services.ErrUserInactive):
			h.RespondForbidden(c, "account deactivated")
		default:
			h.RespondInternalError(c, "login failed", err)
		}
		return
	}

	h.RespondSuccess(c, dto.LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      dto.NewUserResponse(result.User),
	})
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	user, err := h.userService.GetProfile(c.Request.Context(), userCtx.UserID)
	if err != nil {
		h.RespondNotFound(c, "user not found")
		return
	}

	h.RespondSuccess(c, dto.NewUserResponse(user))
}

// UpdateProfile handles PUT /api/v1/auth/me
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "invalid request body", err)
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), userCtx.UserID, req.FirstName, req.LastName)
	if err != nil {
		h.RespondInternalError(c, "profile update failed", err)
		return
	}

	h.RespondSuccess(c, dto.NewUserResponse(user))
}

// ChangePassword handles POST /api/v1/auth/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "invalid request body", err)
		return
	}

	err := h.userService.ChangePassword(c.Request.Context(), userCtx.UserID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			h.RespondUnauthorized(c, "current password is incorrect")
		case errors.Is(err, services.ErrWeakPassword):
			h.RespondBadRequest(c, err.Error(), nil)
		default:
			h.RespondInternalError(c, "password change failed", err)
		}
		return
	}

	h.RespondMessage(c, "password changed")
}
