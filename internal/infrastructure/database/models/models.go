package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/docsmait/docsmait/internal/domain/review"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// Custom Types
type EntityType string
type UserRole string
type DocumentType string
type CommentType string
type ActivityAction string
type NotificationType string

const (
	// Reviewable entity kinds
	EntityDocument   EntityType = "document"
	EntityTemplate   EntityType = "template"
	EntityCodeReview EntityType = "code_review"

	// User Roles
	UserRoleAdmin UserRole = "admin"
	UserRoleUser  UserRole = "user"

	// Document Types
	DocTypePlanning      DocumentType = "planning"
	DocTypeDesign        DocumentType = "design"
	DocTypeRequirement   DocumentType = "requirement"
	DocTypeRiskAnalysis  DocumentType = "risk_analysis"
	DocTypeTestProtocol  DocumentType = "test_protocol"
	DocTypeProcedure     DocumentType = "procedure"
	DocTypeTrainingGuide DocumentType = "training_guide"
	DocTypeGeneral       DocumentType = "general"

	// Review trail entry kinds
	CommentReviewRequest CommentType = "review_request"
	CommentGeneral       CommentType = "comment"
	CommentDecision      CommentType = "decision"

	// Activity Actions
	ActivityCreate        ActivityAction = "create"
	ActivityUpdate        ActivityAction = "update"
	ActivityDelete        ActivityAction = "delete"
	ActivityReviewRequest ActivityAction = "review_request"
	ActivityDecision      ActivityAction = "decision"
	ActivityLogin         ActivityAction = "login"
	ActivityAssessment    ActivityAction = "assessment"

	// Notification Types
	NotifyReviewRequested NotificationType = "review_requested"
	NotifyDecisionMade    NotificationType = "decision_made"
	NotifyReviewReminder  NotificationType = "review_reminder"
)

// JSONB type for PostgreSQL jsonb columns
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(bytes, j)
}

// ReviewMeta is embedded by every reviewable entity. Status always
// holds a canonical value at rest; legacy values are normalized on the
// way in by the migrate tool and at the API boundary.
type ReviewMeta struct {
	Status          review.Status `json:"status" gorm:"type:varchar(20);not null;default:'draft';index"`
	CurrentRevision int           `json:"current_revision" gorm:"not null;default:1"`
}

// Core Models

type User struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primary_key"`
	Email        string     `json:"email" gorm:"type:varchar(320);unique;not null"`
	PasswordHash string     `json:"-" gorm:"type:varchar(255);not null"`
	FirstName    string     `json:"first_name" gorm:"type:varchar(100);not null"`
	LastName     string     `json:"last_name" gorm:"type:varchar(100);not null"`
	Role         UserRole   `json:"role" gorm:"type:varchar(20);not null;default:'user'"`
	IsActive     bool       `json:"is_active" gorm:"not null;default:true"`
	LastLoginAt  *time.Time `json:"last_login_at"`

	CreatedAt time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`

	// Relationships
	Memberships       []ProjectMember    `json:"memberships,omitempty" gorm:"foreignKey:UserID"`
	AuthoredDocuments []Document         `json:"authored_documents,omitempty" gorm:"foreignKey:AuthorID"`
	Assignments       []ReviewAssignment `json:"assignments,omitempty" gorm:"foreignKey:ReviewerID"`
}

type Project struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	Name        string    `json:"name" gorm:"type:varchar(255);unique;not null"`
	Description string    `json:"description" gorm:"type:text"`
	IsActive    bool      `json:"is_active" gorm:"not null;default:true"`
	CreatedBy   uuid.UUID `json:"created_by" gorm:"type:uuid;not null;index"`

	CreatedAt time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`

	// Relationships
	Creator     User            `json:"creator,omitempty" gorm:"foreignKey:CreatedBy"`
	Members     []ProjectMember `json:"members,omitempty" gorm:"foreignKey:ProjectID"`
	Documents   []Document      `json:"documents,omitempty" gorm:"foreignKey:ProjectID"`
	Templates   []Template      `json:"templates,omitempty" gorm:"foreignKey:ProjectID"`
	CodeReviews []CodeReview    `json:"code_reviews,omitempty" gorm:"foreignKey:ProjectID"`
}

type ProjectMember struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	ProjectID uuid.UUID `json:"project_id" gorm:"type:uuid;not null;uniqueIndex:idx_project_member"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_project_member"`
	IsOwner   bool      `json:"is_owner" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at" gorm:"not null"`

	// Relationships
	Project Project `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
	User    User    `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// Document is a controlled quality document under the review workflow.
type Document struct {
	ID        uuid.UUID    `json:"id" gorm:"type:uuid;primary_key"`
	ProjectID uuid.UUID    `json:"project_id" gorm:"type:uuid;not null;index"`
	Title     string       `json:"title" gorm:"type:varchar(255);not null"`
	DocType   DocumentType `json:"document_type" gorm:"type:varchar(50);not null;default:'general';index"`
	Content   string       `json:"content" gorm:"type:text"`
	AuthorID  uuid.UUID    `json:"author_id" gorm:"type:uuid;not null;index"`

	ReviewMeta

	CreatedAt time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`

	// Relationships
	Project Project `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
	Author  User    `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
}

// Template is a reusable document skeleton; approved templates seed
// new documents. Templates go through the same review workflow as
// documents.
type Template struct {
	ID          uuid.UUID    `json:"id" gorm:"type:uuid;primary_key"`
	ProjectID   *uuid.UUID   `json:"project_id" gorm:"type:uuid;index"` // nil: available to all projects
	Name        string       `json:"name" gorm:"type:varchar(255);not null"`
	Description string       `json:"description" gorm:"type:text"`
	DocType     DocumentType `json:"document_type" gorm:"type:varchar(50);not null;default:'general'"`
	Content     string       `json:"content" gorm:"type:text"`
	AuthorID    uuid.UUID    `json:"author_id" gorm:"type:uuid;not null;index"`

	ReviewMeta

	CreatedAt time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`

	// Relationships
	Project *Project `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
	Author  User     `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
}

// CodeReview is a lightweight code change artifact reviewed with the
// same state machine as documents.
type CodeReview struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	ProjectID  uuid.UUID `json:"project_id" gorm:"type:uuid;not null;index"`
	Title      string    `json:"title" gorm:"type:varchar(255);not null"`
	Repository string    `json:"repository" gorm:"type:varchar(500)"`
	Branch     string    `json:"branch" gorm:"type:varchar(255)"`
	Diff       string    `json:"diff" gorm:"type:text"`
	AuthorID   uuid.UUID `json:"author_id" gorm:"type:uuid;not null;index"`

	ReviewMeta

	CreatedAt time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`

	// Relationships
	Project Project `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
	Author  User    `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
}

// EntityRevision is an immutable snapshot of an entity's content taken
// on every content-modifying save. Revision numbers are contiguous and
// strictly increasing per entity.
type EntityRevision struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primary_key"`
	EntityType EntityType `json:"entity_type" gorm:"type:varchar(20);not null;uniqueIndex:idx_entity_revision"`
	EntityID   uuid.UUID  `json:"entity_id" gorm:"type:uuid;not null;uniqueIndex:idx_entity_revision"`
	Revision   int        `json:"revision" gorm:"not null;uniqueIndex:idx_entity_revision"`
	Content    string     `json:"content" gorm:"type:text"`
	ChangeNote string     `json:"change_note" gorm:"type:text"`
	EditedBy   uuid.UUID  `json:"edited_by" gorm:"type:uuid;not null"`
	CreatedAt  time.Time  `json:"created_at" gorm:"not null"`

	// Relationships
	Editor User `json:"editor,omitempty" gorm:"foreignKey:EditedBy"`
}

// ReviewAssignment pairs an entity with a reviewer for one review
// cycle. ReviewApproved stays nil until the reviewer submits;
// ReviewSubmitted flips true exactly once per cycle.
type ReviewAssignment struct {
	ID               uuid.UUID  `json:"id" gorm:"type:uuid;primary_key"`
	EntityType       EntityType `json:"entity_type" gorm:"type:varchar(20);not null;uniqueIndex:idx_entity_reviewer"`
	EntityID         uuid.UUID  `json:"entity_id" gorm:"type:uuid;not null;uniqueIndex:idx_entity_reviewer"`
	ReviewerID       uuid.UUID  `json:"reviewer_id" gorm:"type:uuid;not null;uniqueIndex:idx_entity_reviewer;index"`
	ReviewedRevision int        `json:"reviewed_revision" gorm:"not null"`
	ReviewSubmitted  bool       `json:"review_submitted" gorm:"not null;default:false"`
	ReviewApproved   *bool      `json:"review_approved"`
	Comment          string     `json:"comment" gorm:"type:text"`
	SubmittedAt      *time.Time `json:"submitted_at"`

	CreatedAt time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`

	// Relationships
	Reviewer User `json:"reviewer,omitempty" gorm:"foreignKey:ReviewerID"`
}

// ReviewComment is an append-only trail entry on an entity: review
// requests, free comments, and reviewer decisions.
type ReviewComment struct {
	ID         uuid.UUID   `json:"id" gorm:"type:uuid;primary_key"`
	EntityType EntityType  `json:"entity_type" gorm:"type:varchar(20);not null;index:idx_comment_entity"`
	EntityID   uuid.UUID   `json:"entity_id" gorm:"type:uuid;not null;index:idx_comment_entity"`
	UserID     uuid.UUID   `json:"user_id" gorm:"type:uuid;not null;index"`
	Type       CommentType `json:"type" gorm:"type:varchar(20);not null"`
	Revision   int         `json:"revision" gorm:"not null"`
	Content    string      `json:"content" gorm:"type:text;not null"`
	CreatedAt  time.Time   `json:"created_at" gorm:"not null"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// ActivityLog records every lifecycle operation for the audit views.
type ActivityLog struct {
	ID         uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	UserID     uuid.UUID      `json:"user_id" gorm:"type:uuid;not null;index"`
	ProjectID  *uuid.UUID     `json:"project_id" gorm:"type:uuid;index"`
	EntityType EntityType     `json:"entity_type" gorm:"type:varchar(20);index:idx_activity_entity"`
	EntityID   *uuid.UUID     `json:"entity_id" gorm:"type:uuid;index:idx_activity_entity"`
	Action     ActivityAction `json:"action" gorm:"type:varchar(30);not null"`
	Details    JSONB          `json:"details" gorm:"type:jsonb"`
	IPAddress  string         `json:"ip_address" gorm:"type:varchar(45)"`
	CreatedAt  time.Time      `json:"created_at" gorm:"not null"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// Knowledge Base

type KnowledgeCollection struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primary_key"`
	ProjectID   *uuid.UUID `json:"project_id" gorm:"type:uuid;index"`
	Name        string     `json:"name" gorm:"type:varchar(255);not null;uniqueIndex"`
	Description string     `json:"description" gorm:"type:text"`
	CreatedBy   uuid.UUID  `json:"created_by" gorm:"type:uuid;not null"`

	CreatedAt time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`

	// Relationships
	Documents []KnowledgeDocument `json:"documents,omitempty" gorm:"foreignKey:CollectionID"`
}

// KnowledgeDocument holds indexed reference material. The embedding is
// supplied by the caller; this service only stores and searches it.
type KnowledgeDocument struct {
	ID           uuid.UUID       `json:"id" gorm:"type:uuid;primary_key"`
	CollectionID uuid.UUID       `json:"collection_id" gorm:"type:uuid;not null;index"`
	Title        string          `json:"title" gorm:"type:varchar(255);not null"`
	Content      string          `json:"content" gorm:"type:text;not null"`
	ContentHash  string          `json:"content_hash" gorm:"type:varchar(64);not null;index"`
	Embedding    pgvector.Vector `json:"-" gorm:"type:vector(768)"`
	CreatedBy    uuid.UUID       `json:"created_by" gorm:"type:uuid;not null"`

	CreatedAt time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`

	// Relationships
	Collection KnowledgeCollection `json:"collection,omitempty" gorm:"foreignKey:CollectionID"`
}

// TrainingRecord is one user's assessment result against a knowledge
// collection.
type TrainingRecord struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	UserID       uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	CollectionID uuid.UUID `json:"collection_id" gorm:"type:uuid;not null;index"`
	Score        float64   `json:"score" gorm:"type:decimal(5,2);not null"`
	Passed       bool      `json:"passed" gorm:"not null"`
	AssessedAt   time.Time `json:"assessed_at" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at" gorm:"not null"`

	// Relationships
	User       User                `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Collection KnowledgeCollection `json:"collection,omitempty" gorm:"foreignKey:CollectionID"`
}

// Notification System
type Notification struct {
	ID         uuid.UUID        `json:"id" gorm:"type:uuid;primary_key"`
	UserID     uuid.UUID        `json:"user_id" gorm:"type:uuid;not null;index"`
	Type       NotificationType `json:"type" gorm:"type:varchar(30);not null"`
	Title      string           `json:"title" gorm:"type:varchar(255);not null"`
	Message    string           `json:"message" gorm:"type:text;not null"`
	EntityType EntityType       `json:"entity_type" gorm:"type:varchar(20)"`
	EntityID   *uuid.UUID       `json:"entity_id" gorm:"type:uuid"`
	IsRead     bool             `json:"is_read" gorm:"not null;default:false"`
	CreatedAt  time.Time        `json:"created_at" gorm:"not null"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// IDs are generated in Go so the schema works on both Postgres and
// SQLite. Timestamps come from GORM's create/update tracking.

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (m *User) BeforeCreate(*gorm.DB) error                { ensureID(&m.ID); return nil }
func (m *Project) BeforeCreate(*gorm.DB) error             { ensureID(&m.ID); return nil }
func (m *ProjectMember) BeforeCreate(*gorm.DB) error       { ensureID(&m.ID); return nil }
func (m *Document) BeforeCreate(*gorm.DB) error            { ensureID(&m.ID); return nil }
func (m *Template) BeforeCreate(*gorm.DB) error            { ensureID(&m.ID); return nil }
func (m *CodeReview) BeforeCreate(*gorm.DB) error          { ensureID(&m.ID); return nil }
func (m *EntityRevision) BeforeCreate(*gorm.DB) error      { ensureID(&m.ID); return nil }
func (m *ReviewAssignment) BeforeCreate(*gorm.DB) error    { ensureID(&m.ID); return nil }
func (m *ReviewComment) BeforeCreate(*gorm.DB) error       { ensureID(&m.ID); return nil }
func (m *ActivityLog) BeforeCreate(*gorm.DB) error         { ensureID(&m.ID); return nil }
func (m *KnowledgeCollection) BeforeCreate(*gorm.DB) error { ensureID(&m.ID); return nil }
func (m *KnowledgeDocument) BeforeCreate(*gorm.DB) error   { ensureID(&m.ID); return nil }
func (m *TrainingRecord) BeforeCreate(*gorm.DB) error      { ensureID(&m.ID); return nil }
func (m *Notification) BeforeCreate(*gorm.DB) error        { ensureID(&m.ID); return nil }

// GetAllModels returns all models for migration
func GetAllModels() []interface{} {
	return []interface{}{
		&User{},
		&Project{},
		&ProjectMember{},
		&Document{},
		&Template{},
		&CodeReview{},
		&EntityRevision{},
		&ReviewAssignment{},
		&ReviewComment{},
		&ActivityLog{},
		&KnowledgeCollection{},
		&KnowledgeDocument{},
		&TrainingRecord{},
		&Notification{},
	}
}
