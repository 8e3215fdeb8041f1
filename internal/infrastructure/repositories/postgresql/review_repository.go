package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/docsmait/docsmait/internal/domain/repositories"
	"github.com/docsmait/docsmait/internal/domain/review"
	"github.com/docsmait/docsmait/internal/infrastructure/database"
	"github.com/docsmait/docsmait/internal/infrastructure/database/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReviewRepository serializes review operations per entity. Transact
// takes a row lock on the entity so concurrent reviewer submissions
// observe each other's writes before the status is recomputed.
type ReviewRepository struct {
	db *database.DB
}

func NewReviewRepository(db *database.DB) repositories.ReviewRepository {
	return &ReviewRepository{db: db}
}

// entityTable maps an entity type to its table name. The review tables
// themselves are polymorphic over (entity_type, entity_id).
func entityTable(entityType models.EntityType) (string, error) {
	switch entityType {
	case models.EntityDocument:
		return "documents", nil
	case models.EntityTemplate:
		return "templates", nil
	case models.EntityCodeReview:
		return "code_reviews", nil
	default:
		return "", fmt.Errorf("unknown entity type: %s", entityType)
	}
}

// entityRow is the shared column set read from any reviewable table.
type entityRow struct {
	ID              uuid.UUID
	ProjectID       *uuid.UUID
	AuthorID        uuid.UUID
	Title           string
	Status          review.Status
	CurrentRevision int
}

func loadEntity(tx *gorm.DB, entityType models.EntityType, entityID uuid.UUID, lock bool) (*repositories.EntitySnapshot, error) {
	table, err := entityTable(entityType)
	if err != nil {
		return nil, err
	}

	query := tx.Table(table).Where("id = ?", entityID)
	if lock {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var row entityRow
	selectCols := "id, project_id, author_id, title, status, current_revision"
	if entityType == models.EntityTemplate {
		// Templates carry a name, not a title.
		selectCols = "id, project_id, author_id, name AS title, status, current_revision"
	}
	if err := query.Select(selectCols).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load %s: %w", entityType, err)
	}

	return &repositories.EntitySnapshot{
		EntityType:      entityType,
		EntityID:        row.ID,
		ProjectID:       row.ProjectID,
		AuthorID:        row.AuthorID,
		Title:           row.Title,
		Status:          row.Status,
		CurrentRevision: row.CurrentRevision,
	}, nil
}

// reviewTx implements repositories.ReviewTx over one gorm transaction.
type reviewTx struct {
	tx       *gorm.DB
	snapshot *repositories.EntitySnapshot
	table    string
}

func (t *reviewTx) Entity() *repositories.EntitySnapshot {
	return t.snapshot
}

func (t *reviewTx) SetStatus(status review.Status) error {
	err := t.tx.Table(t.table).
		Where("id = ?", t.snapshot.EntityID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to set status: %w", err)
	}
	t.snapshot.Status = status
	return nil
}

func (t *reviewTx) Assignments() ([]models.ReviewAssignment, error) {
	var assignments []models.ReviewAssignment
	err := t.tx.
		Where("entity_type = ? AND entity_id = ?", t.snapshot.EntityType, t.snapshot.EntityID).
		Order("created_at ASC").
		Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load assignments: %w", err)
	}
	return assignments, nil
}

func (t *reviewTx) Assignment(reviewerID uuid.UUID) (*models.ReviewAssignment, error) {
	var assignment models.ReviewAssignment
	err := t.tx.
		Where("entity_type = ? AND entity_id = ? AND reviewer_id = ?",
			t.snapshot.EntityType, t.snapshot.EntityID, reviewerID).
		Take(&assignment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load assignment: %w", err)
	}
	return &assignment, nil
}

func (t *reviewTx) ResetAssignments(reviewers []uuid.UUID, revision int) error {
	// Drop reviewers not in the new set.
	query := t.tx.Where("entity_type = ? AND entity_id = ?", t.snapshot.EntityType, t.snapshot.EntityID)
	if len(reviewers) > 0 {
		query = query.Where("reviewer_id NOT IN ?", reviewers)
	}
	if err := query.Delete(&models.ReviewAssignment{}).Error; err != nil {
		return fmt.Errorf("failed to remove stale assignments: %w", err)
	}

	// Fresh, unsubmitted assignment per listed reviewer for this cycle.
	now := time.Now()
	for _, reviewerID := range reviewers {
		assignment := models.ReviewAssignment{
			EntityType:       t.snapshot.EntityType,
			EntityID:         t.snapshot.EntityID,
			ReviewerID:       reviewerID,
			ReviewedRevision: revision,
			ReviewSubmitted:  false,
			ReviewApproved:   nil,
			Comment:          "",
			SubmittedAt:      nil,
		}
		err := t.tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "entity_type"}, {Name: "entity_id"}, {Name: "reviewer_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"reviewed_revision": revision,
				"review_submitted":  false,
				"review_approved":   nil,
				"comment":           "",
				"submitted_at":      nil,
				"updated_at":        now,
			}),
		}).Create(&assignment).Error
		if err != nil {
			return fmt.Errorf("failed to reset assignment: %w", err)
		}
	}
	return nil
}

func (t *reviewTx) SaveAssignment(assignment *models.ReviewAssignment) error {
	if err := t.tx.Save(assignment).Error; err != nil {
		return fmt.Errorf("failed to save assignment: %w", err)
	}
	return nil
}

func (t *reviewTx) AppendComment(comment *models.ReviewComment) error {
	if err := t.tx.Create(comment).Error; err != nil {
		return fmt.Errorf("failed to append comment: %w", err)
	}
	return nil
}

func (r *ReviewRepository) Transact(ctx context.Context, entityType models.EntityType, entityID uuid.UUID, fn func(tx repositories.ReviewTx) error) error {
	table, err := entityTable(entityType)
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// SQLite serializes writers itself and rejects FOR UPDATE.
		snapshot, err := loadEntity(tx, entityType, entityID, r.db.IsPostgres())
		if err != nil {
			return err
		}
		return fn(&reviewTx{tx: tx, snapshot: snapshot, table: table})
	})
}

func (r *ReviewRepository) Snapshot(ctx context.Context, entityType models.EntityType, entityID uuid.UUID) (*repositories.EntitySnapshot, error) {
	return loadEntity(r.db.WithContext(ctx), entityType, entityID, false)
}

func (r *ReviewRepository) ListAssignments(ctx context.Context, entityType models.EntityType, entityID uuid.UUID) ([]models.ReviewAssignment, error) {
	var assignments []models.ReviewAssignment
	err := r.db.WithContext(ctx).
		Preload("Reviewer").
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at ASC").
		Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	return assignments, nil
}

func (r *ReviewRepository) ListAssignedTo(ctx context.Context, reviewerID uuid.UUID, pendingOnly bool) ([]models.ReviewAssignment, error) {
	query := r.db.WithContext(ctx).Where("reviewer_id = ?", reviewerID)
	if pendingOnly {
		query = query.Where("review_submitted = ?", false)
	}

	var assignments []models.ReviewAssignment
	if err := query.Order("created_at ASC").Find(&assignments).Error; err != nil {
		return nil, fmt.Errorf("failed to list assignments for reviewer: %w", err)
	}
	return assignments, nil
}

func (r *ReviewRepository) ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]models.ReviewAssignment, error) {
	var assignments []models.ReviewAssignment
	err := r.db.WithContext(ctx).
		Where("review_submitted = ? AND created_at < ?", false, cutoff).
		Order("created_at ASC").
		Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending assignments: %w", err)
	}
	return assignments, nil
}

func (r *ReviewRepository) ListComments(ctx context.Context, entityType models.EntityType, entityID uuid.UUID, params repositories.ListParams) ([]models.ReviewComment, int64, error) {
	var comments []models.ReviewComment
	var total int64

	query := r.db.WithContext(ctx).Model(&models.ReviewComment{}).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count comments: %w", err)
	}

	// Newest entries first for display.
	offset, limit, orderBy := paginate(params, "created_at DESC")
	err := query.Preload("User").
		Order(orderBy).Offset(offset).Limit(limit).Find(&comments).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list comments: %w", err)
	}

	return comments, total, nil
}

func (r *ReviewRepository) AppendComment(ctx context.Context, comment *models.ReviewComment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return fmt.Errorf("failed to append comment: %w", err)
	}
	return nil
}
