package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/docsmait/docsmait/internal/infrastructure/database/models"
)

// ErrorResponse is the standard error body for all API endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Details string `json:"details,omitempty"`
	Status  int    `json:"status,omitempty"`
}

// SuccessResponse wraps non-entity success messages.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// PaginatedResponse wraps list payloads with paging metadata.
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	Total      int64       `json:"total"`
	TotalPages int         `json:"total_pages"`
}

// --- auth ---

type RegisterRequest struct {
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

type UpdateProfileRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      string(u.Role),
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// --- projects ---

type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type AddMemberRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
	Role   string    `json:"role"`
}

// --- documents ---

type CreateDocumentRequest struct {
	ProjectID  uuid.UUID  `json:"project_id" binding:"required"`
	Title      string     `json:"title" binding:"required"`
	DocType    string     `json:"doc_type"`
	Content    string     `json:"content"`
	TemplateID *uuid.UUID `json:"template_id"`
}

type EditContentRequest struct {
	Content          string `json:"content" binding:"required"`
	ChangeNote       string `json:"change_note"`
	ExpectedRevision int    `json:"expected_revision" binding:"required"`
}

type UpdateDocumentMetaRequest struct {
	Title   string `json:"title" binding:"required"`
	DocType string `json:"doc_type" binding:"required"`
}

// --- templates ---

type CreateTemplateRequest struct {
	ProjectID   *uuid.UUID `json:"project_id"`
	Name        string     `json:"name" binding:"required"`
	Description string     `json:"description"`
	DocType     string     `json:"doc_type"`
	Content     string     `json:"content"`
}

// --- code reviews ---

type CreateCodeReviewRequest struct {
	ProjectID  uuid.UUID `json:"project_id" binding:"required"`
	Title      string    `json:"title" binding:"required"`
	Repository string    `json:"repository"`
	Branch     string    `json:"branch"`
	Diff       string    `json:"diff"`
}

type UpdateDiffRequest struct {
	Diff             string `json:"diff" binding:"required"`
	ChangeNote       string `json:"change_note"`
	ExpectedRevision int    `json:"expected_revision" binding:"required"`
}

// --- reviews ---

type RequestReviewRequest struct {
	Reviewers []uuid.UUID `json:"reviewers" binding:"required"`
	Message   string      `json:"message"`
}

type SubmitDecisionRequest struct {
	Approved bool   `json:"approved"`
	Comment  string `json:"comment"`
	Revision int    `json:"revision" binding:"required"`
}

type AddCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

// --- knowledge ---

type CreateCollectionRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type AddKnowledgeDocumentRequest struct {
	Title     string    `json:"title" binding:"required"`
	Content   string    `json:"content" binding:"required"`
	Embedding []float32 `json:"embedding"`
}

type KnowledgeSearchRequest struct {
	Query     string    `json:"query"`
	Embedding []float32 `json:"embedding"`
	Limit     int       `json:"limit"`
}

// --- training ---

type RecordAssessmentRequest struct {
	CollectionID uuid.UUID `json:"collection_id" binding:"required"`
	Score        float64   `json:"score"`
}
