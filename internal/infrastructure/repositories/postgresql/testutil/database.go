package testutil

import (
	"fmt"
	"testing"

	"github.com/docsmait/docsmait/internal/domain/review"
	"github.com/docsmait/docsmait/internal/infrastructure/database"
	"github.com/docsmait/docsmait/internal/infrastructure/database/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// SetupTestDB opens an isolated in-memory SQLite database and migrates
// the full schema. Each call gets its own database, so tests can run in
// parallel without sharing state.
func SetupTestDB(t *testing.T) *database.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := database.New(dsn)
	require.NoError(t, err, "failed to open test database")

	err = db.AutoMigrate(models.GetAllModels()...)
	require.NoError(t, err, "failed to migrate test database")

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

// CreateTestUser inserts a user with a unique email.
func CreateTestUser(t *testing.T, db *database.DB) *models.User {
	t.Helper()

	user := &models.User{
		ID:           uuid.New(),
		Email:        fmt.Sprintf("user-%s@example.com", uuid.New().String()[:8]),
		PasswordHash: "$2a$10$test.hash.not.a.real.one",
		FirstName:    "Test",
		LastName:     "User",
		Role:         models.UserRoleUser,
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateTestAdmin inserts a user with the admin role.
func CreateTestAdmin(t *testing.T, db *database.DB) *models.User {
	t.Helper()

	admin := CreateTestUser(t, db)
	admin.Role = models.UserRoleAdmin
	require.NoError(t, db.Model(admin).Update("role", models.UserRoleAdmin).Error)
	return admin
}

// CreateTestProject inserts a project and makes creator its first
// owner-member.
func CreateTestProject(t *testing.T, db *database.DB, creator *models.User) *models.Project {
	t.Helper()

	project := &models.Project{
		ID:          uuid.New(),
		Name:        fmt.Sprintf("project-%s", uuid.New().String()[:8]),
		Description: "test project",
		IsActive:    true,
		CreatedBy:   creator.ID,
	}
	require.NoError(t, db.Create(project).Error)

	member := &models.ProjectMember{
		ID:        uuid.New(),
		ProjectID: project.ID,
		UserID:    creator.ID,
		IsOwner:   true,
	}
	require.NoError(t, db.Create(member).Error)

	return project
}

// AddTestMember adds user to project as a regular member.
func AddTestMember(t *testing.T, db *database.DB, project *models.Project, user *models.User) {
	t.Helper()

	member := &models.ProjectMember{
		ID:        uuid.New(),
		ProjectID: project.ID,
		UserID:    user.ID,
	}
	require.NoError(t, db.Create(member).Error)
}

// CreateTestDocument inserts a draft document at revision 1, with its
// initial revision snapshot.
func CreateTestDocument(t *testing.T, db *database.DB, project *models.Project, author *models.User) *models.Document {
	t.Helper()

	document := &models.Document{
		ID:        uuid.New(),
		ProjectID: project.ID,
		Title:     "Test Document",
		DocType:   models.DocTypeGeneral,
		Content:   "initial content",
		AuthorID:  author.ID,
		ReviewMeta: models.ReviewMeta{
			Status:          review.StatusDraft,
			CurrentRevision: 1,
		},
	}
	require.NoError(t, db.Create(document).Error)

	revision := &models.EntityRevision{
		ID:         uuid.New(),
		EntityType: models.EntityDocument,
		EntityID:   document.ID,
		Revision:   1,
		Content:    document.Content,
		ChangeNote: "initial revision",
		EditedBy:   author.ID,
	}
	require.NoError(t, db.Create(revision).Error)

	return document
}

// CreateTestTemplate inserts a draft template at revision 1.
func CreateTestTemplate(t *testing.T, db *database.DB, projectID *uuid.UUID, author *models.User) *models.Template {
	t.Helper()

	template := &models.Template{
		ID:        uuid.New(),
		ProjectID: projectID,
		Name:      fmt.Sprintf("template-%s", uuid.New().String()[:8]),
		DocType:   models.DocTypeGeneral,
		Content:   "template content",
		AuthorID:  author.ID,
		ReviewMeta: models.ReviewMeta{
			Status:          review.StatusDraft,
			CurrentRevision: 1,
		},
	}
	require.NoError(t, db.Create(template).Error)
	return template
}

// CreateTestCodeReview inserts a draft code review at revision 1.
func CreateTestCodeReview(t *testing.T, db *database.DB, project *models.Project, author *models.User) *models.CodeReview {
	t.Helper()

	codeReview := &models.CodeReview{
		ID:         uuid.New(),
		ProjectID:  project.ID,
		Title:      "Test Code Review",
		Repository: "git@example.com:test/repo.git",
		Branch:     "feature/test",
		Diff:       "--- a/main.go\n+++ b/main.go\n",
		AuthorID:   author.ID,
		ReviewMeta: models.ReviewMeta{
			Status:          review.StatusDraft,
			CurrentRevision: 1,
		},
	}
	require.NoError(t, db.Create(codeReview).Error)
	return codeReview
}
