package postgresql

import (
	"context"
	"fmt"

	"github.com/docsmait/docsmait/internal/domain/repositories"
	"github.com/docsmait/docsmait/internal/domain/review"
	"github.com/docsmait/docsmait/internal/infrastructure/database"
	"github.com/docsmait/docsmait/internal/infrastructure/database/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// applyContentSave performs the shared content-modifying save for all
// reviewable entities: one transaction that bumps current_revision by
// exactly 1, moves the status, and records the revision snapshot. The
// WHERE clause pins the expected (revision, status) pair so a lost
// concurrent update surfaces as ErrStaleEntity instead of silently
// overwriting.
func applyContentSave(
	ctx context.Context,
	db *database.DB,
	model interface{},
	entityType models.EntityType,
	id, editorID uuid.UUID,
	contentColumn, content, changeNote string,
	fromRevision int,
	fromStatus, newStatus review.Status,
	out interface{},
) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(model).
			Where("id = ? AND current_revision = ? AND status = ?", id, fromRevision, fromStatus).
			Updates(map[string]interface{}{
				contentColumn:      content,
				"status":           newStatus,
				"current_revision": fromRevision + 1,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to save %s content: %w", entityType, result.Error)
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
				return fmt.Errorf("failed to check %s existence: %w", entityType, err)
			}
			if count == 0 {
				return repositories.ErrNotFound
			}
			return repositories.ErrStaleEntity
		}

		revision := &models.EntityRevision{
			EntityType: entityType,
			EntityID:   id,
			Revision:   fromRevision + 1,
			Content:    content,
			ChangeNote: changeNote,
			EditedBy:   editorID,
		}
		if err := tx.Create(revision).Error; err != nil {
			return fmt.Errorf("failed to record revision: %w", err)
		}

		return tx.Where("id = ?", id).First(out).Error
	})
}

// recordInitialRevision writes the revision 1 snapshot for a freshly
// created entity inside the caller's transaction.
func recordInitialRevision(tx *gorm.DB, entityType models.EntityType, id, authorID uuid.UUID, content string) error {
	revision := &models.EntityRevision{
		EntityType: entityType,
		EntityID:   id,
		Revision:   1,
		Content:    content,
		ChangeNote: "initial revision",
		EditedBy:   authorID,
	}
	if err := tx.Create(revision).Error; err != nil {
		return fmt.Errorf("failed to record initial revision: %w", err)
	}
	return nil
}
