package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/docsmait/docsmait/internal/domain/services"
	"github.com/docsmait/docsmait/internal/infrastructure/auth/jwt"
	"github.com/docsmait/docsmait/internal/infrastructure/database/models"
)

// UserContext carries the authenticated user through a request.
type UserContext struct {
	UserID   uuid.UUID `json:"user_id"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	IsActive bool      `json:"is_active"`
}

// ErrorResponse is the error body written by the middleware layer.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// AuthMiddleware verifies the Bearer token and loads the user into the
// gin context under "user", "user_id" and "user_role".
func AuthMiddleware(tokens *jwt.TokenService, users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			abortUnauthorized(c, "missing or malformed Authorization header")
			return
		}

		claims, err := tokens.Verify(token)
		if err != nil {
			if err == jwt.ErrExpiredToken {
				abortUnauthorized(c, "token expired")
				return
			}
			abortUnauthorized(c, "invalid token")
			return
		}

		// Re-read the user so deactivation and role changes take effect
		// before the token expires.
		user, err := users.GetProfile(c.Request.Context(), claims.UserID)
		if err != nil {
			abortUnauthorized(c, "user not found")
			return
		}
		if !user.IsActive {
			abortUnauthorized(c, "account deactivated")
			return
		}

		userCtx := &UserContext{
			UserID:   user.ID,
			Email:    user.Email,
			Role:     string(user.Role),
			IsActive: user.IsActive,
		}

		c.Set("user", userCtx)
		c.Set("user_id", user.ID)
		c.Set("user_role", userCtx.Role)
		c.Next()
	}
}

// OptionalAuthMiddleware loads the user when a valid token is present but
// lets anonymous requests through.
func OptionalAuthMiddleware(tokens *jwt.TokenService, users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}

		claims, err := tokens.Verify(token)
		if err != nil {
			c.Next()
			return
		}

		user, err := users.GetProfile(c.Request.Context(), claims.UserID)
		if err != nil || !user.IsActive {
			c.Next()
			return
		}

		c.Set("user", &UserContext{
			UserID:   user.ID,
			Email:    user.Email,
			Role:     string(user.Role),
			IsActive: user.IsActive,
		})
		c.Set("user_id", user.ID)
		c.Set("user_role", string(user.Role))
		c.Next()
	}
}

// AdminRequiredMiddleware rejects requests from non-admin users. Must run
// after AuthMiddleware.
func AdminRequiredMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userCtx := GetUserContext(c)
		if userCtx == nil {
			abortUnauthorized(c, "authentication required")
			return
		}
		if userCtx.Role != string(models.UserRoleAdmin) {
			c.JSON(http.StatusForbidden, ErrorResponse{
				Error:   "forbidden",
				Message: "admin access required",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetUserContext returns the authenticated user, or nil for anonymous
// requests.
func GetUserContext(c *gin.Context) *UserContext {
	value, exists := c.Get("user")
	if !exists {
		return nil
	}
	userCtx, ok := value.(*UserContext)
	if !ok {
		return nil
	}
	return userCtx
}

// GetUserID returns the authenticated user's ID.
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, false
	}
	id, ok := value.(uuid.UUID)
	return id, ok
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func abortUnauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, ErrorResponse{
		Error:   "unauthorized",
		Message: message,
	})
	c.Abort()
}
