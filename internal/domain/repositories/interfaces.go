package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/docsmait/docsmait/internal/domain/review"
	"github.com/docsmait/docsmait/internal/infrastructure/database/models"
	"github.com/google/uuid"
)

// Core repository interfaces for clean architecture

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrStaleEntity is returned when an optimistic write lost against a
	// concurrent modification; callers should re-read and retry or fail.
	ErrStaleEntity = errors.New("entity was modified concurrently")
)

type ListParams struct {
	Page     int
	PageSize int
	Search   string
	SortBy   string
	SortDesc bool
}

// EntitySnapshot is the review-relevant projection of a document,
// template, or code review.
type EntitySnapshot struct {
	EntityType      models.EntityType
	EntityID        uuid.UUID
	ProjectID       *uuid.UUID
	AuthorID        uuid.UUID
	Title           string
	Status          review.Status
	CurrentRevision int
}

// ReviewTx exposes the review state of one entity inside a single
// transaction. Implementations hold the entity row for the duration of
// the callback so that concurrent reviewer submissions serialize.
type ReviewTx interface {
	// Entity returns the snapshot read at transaction start.
	Entity() *EntitySnapshot

	// SetStatus writes the entity's status.
	SetStatus(status review.Status) error

	// Assignments re-reads the full reviewer set for the entity.
	Assignments() ([]models.ReviewAssignment, error)

	// Assignment fetches one reviewer's assignment, ErrNotFound if the
	// user is not assigned.
	Assignment(reviewerID uuid.UUID) (*models.ReviewAssignment, error)

	// ResetAssignments replaces the reviewer set for a new cycle: listed
	// reviewers get fresh unsubmitted assignments tied to revision,
	// reviewers no longer listed are removed.
	ResetAssignments(reviewers []uuid.UUID, revision int) error

	// SaveAssignment persists a reviewer's submitted decision.
	SaveAssignment(assignment *models.ReviewAssignment) error

	// AppendComment appends an immutable trail entry.
	AppendComment(comment *models.ReviewComment) error
}

type ReviewRepository interface {
	// Transact runs fn against the entity's review state in one
	// transaction. Errors from fn roll the transaction back.
	Transact(ctx context.Context, entityType models.EntityType, entityID uuid.UUID, fn func(tx ReviewTx) error) error

	Snapshot(ctx context.Context, entityType models.EntityType, entityID uuid.UUID) (*EntitySnapshot, error)
	ListAssignments(ctx context.Context, entityType models.EntityType, entityID uuid.UUID) ([]models.ReviewAssignment, error)
	ListAssignedTo(ctx context.Context, reviewerID uuid.UUID, pendingOnly bool) ([]models.ReviewAssignment, error)
	ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]models.ReviewAssignment, error)
	ListComments(ctx context.Context, entityType models.EntityType, entityID uuid.UUID, params ListParams) ([]models.ReviewComment, int64, error)
	AppendComment(ctx context.Context, comment *models.ReviewComment) error
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdateLastLogin(ctx context.Context, userID uuid.UUID) error
	List(ctx context.Context, params ListParams) ([]models.User, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	Update(ctx context.Context, project *models.Project) error
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Project, error)
	AddMember(ctx context.Context, member *models.ProjectMember) error
	RemoveMember(ctx context.Context, projectID, userID uuid.UUID) error
	IsMember(ctx context.Context, projectID, userID uuid.UUID) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type DocumentFilters struct {
	DocTypes []models.DocumentType
	Status   []review.Status
	AuthorID *uuid.UUID
	Search   string
	Page     int
	PageSize int
	SortBy   string
	SortDesc bool
}

type DocumentRepository interface {
	// Create persists the document and its revision 1 snapshot.
	Create(ctx context.Context, document *models.Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error)
	List(ctx context.Context, projectID uuid.UUID, filters DocumentFilters) ([]models.Document, int64, error)

	// SaveContent applies a content-modifying save: it bumps
	// current_revision from fromRevision to fromRevision+1, moves the
	// status from fromStatus to newStatus, and records the revision
	// snapshot, all in one transaction. Returns ErrStaleEntity if the
	// row no longer matches (fromRevision, fromStatus).
	SaveContent(ctx context.Context, id uuid.UUID, editorID uuid.UUID, content, changeNote string, fromRevision int, fromStatus, newStatus review.Status) (*models.Document, error)

	UpdateMeta(ctx context.Context, id uuid.UUID, title string, docType models.DocumentType) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type TemplateRepository interface {
	Create(ctx context.Context, template *models.Template) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Template, error)
	List(ctx context.Context, projectID *uuid.UUID, params ListParams) ([]models.Template, int64, error)
	SaveContent(ctx context.Context, id uuid.UUID, editorID uuid.UUID, content, changeNote string, fromRevision int, fromStatus, newStatus review.Status) (*models.Template, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type CodeReviewRepository interface {
	Create(ctx context.Context, codeReview *models.CodeReview) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.CodeReview, error)
	ListByProject(ctx context.Context, projectID uuid.UUID, params ListParams) ([]models.CodeReview, int64, error)
	SaveDiff(ctx context.Context, id uuid.UUID, editorID uuid.UUID, diff, changeNote string, fromRevision int, fromStatus, newStatus review.Status) (*models.CodeReview, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type RevisionRepository interface {
	ListByEntity(ctx context.Context, entityType models.EntityType, entityID uuid.UUID) ([]models.EntityRevision, error)
	GetByRevision(ctx context.Context, entityType models.EntityType, entityID uuid.UUID, revision int) (*models.EntityRevision, error)
}

type ActivityLogRepository interface {
	Create(ctx context.Context, log *models.ActivityLog) error
	ListByProject(ctx context.Context, projectID uuid.UUID, params ListParams) ([]models.ActivityLog, int64, error)
	ListByEntity(ctx context.Context, entityType models.EntityType, entityID uuid.UUID, params ListParams) ([]models.ActivityLog, int64, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params ListParams) ([]models.ActivityLog, int64, error)
}

type KnowledgeRepository interface {
	CreateCollection(ctx context.Context, collection *models.KnowledgeCollection) error
	GetCollection(ctx context.Context, id uuid.UUID) (*models.KnowledgeCollection, error)
	ListCollections(ctx context.Context, projectID *uuid.UUID) ([]models.KnowledgeCollection, error)
	DeleteCollection(ctx context.Context, id uuid.UUID) error

	CreateDocument(ctx context.Context, document *models.KnowledgeDocument) error
	GetDocument(ctx context.Context, id uuid.UUID) (*models.KnowledgeDocument, error)
	ListDocuments(ctx context.Context, collectionID uuid.UUID, params ListParams) ([]models.KnowledgeDocument, int64, error)
	DeleteDocument(ctx context.Context, id uuid.UUID) error

	// SemanticSearch orders by embedding distance; Postgres only.
	SemanticSearch(ctx context.Context, collectionID uuid.UUID, embedding []float32, limit int) ([]models.KnowledgeDocument, error)
	KeywordSearch(ctx context.Context, collectionID uuid.UUID, query string, limit int) ([]models.KnowledgeDocument, error)
}

type TrainingRepository interface {
	Create(ctx context.Context, record *models.TrainingRecord) error
	ListByUser(ctx context.Context, userID uuid.UUID, params ListParams) ([]models.TrainingRecord, int64, error)
	ListByCollection(ctx context.Context, collectionID uuid.UUID, params ListParams) ([]models.TrainingRecord, int64, error)
	LatestForUser(ctx context.Context, userID, collectionID uuid.UUID) (*models.TrainingRecord, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, params ListParams) ([]models.Notification, int64, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
}
