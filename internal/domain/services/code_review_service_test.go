package services

import (
	"context"
	"testing"

	"github.com/docsmait/docsmait/internal/domain/repositories"
	"github.com/docsmait/docsmait/internal/infrastructure/repositories/postgresql"
	"github.com/docsmait/docsmait/internal/infrastructure/repositories/postgresql/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeReviewService_AccessControl(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repos := postgresql.NewRepositories(db)
	service := NewCodeReviewService(repos.CodeReviews, repos.Projects, repos.Users, NewActivityService(repos.Activity), 1<<20)
	ctx := context.Background()

	author := testutil.CreateTestUser(t, db)
	project := testutil.CreateTestProject(t, db, author)
	codeReview := testutil.CreateTestCodeReview(t, db, project, author)

	stranger := testutil.CreateTestUser(t, db)

	_, err := service.GetCodeReview(ctx, codeReview.ID, stranger.ID)
	assert.ErrorIs(t, err, ErrNotProjectMember)

	_, _, err = service.ListCodeReviews(ctx, project.ID, stranger.ID, repositories.ListParams{})
	assert.ErrorIs(t, err, ErrNotProjectMember)

	_, err = service.UpdateDiff(ctx, UpdateDiffParams{
		CodeReviewID:     codeReview.ID,
		EditorID:         stranger.ID,
		Diff:             "tampered",
		ExpectedRevision: 1,
	})
	assert.ErrorIs(t, err, ErrNotEntityAuthor)

	err = service.DeleteCodeReview(ctx, codeReview.ID, stranger.ID, "")
	assert.ErrorIs(t, err, ErrNotEntityAuthor)

	// The author keeps full control of their own change.
	updated, err := service.UpdateDiff(ctx, UpdateDiffParams{
		CodeReviewID:     codeReview.ID,
		EditorID:         author.ID,
		Diff:             "--- a/main.go\n+++ b/main.go\n@@ fixed\n",
		ExpectedRevision: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.CurrentRevision)

	require.NoError(t, service.DeleteCodeReview(ctx, codeReview.ID, author.ID, ""))
}
