package services

import (
	"context"
	"testing"

	"github.com/docsmait/docsmait/internal/infrastructure/repositories/postgresql"
	"github.com/docsmait/docsmait/internal/infrastructure/repositories/postgresql/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateService_WriteRequiresAuthorOrAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repos := postgresql.NewRepositories(db)
	service := NewTemplateService(repos.Templates, repos.Projects, repos.Users, NewActivityService(repos.Activity), 1<<20)
	ctx := context.Background()

	author := testutil.CreateTestUser(t, db)
	template := testutil.CreateTestTemplate(t, db, nil, author)

	stranger := testutil.CreateTestUser(t, db)
	_, err := service.EditTemplate(ctx, EditTemplateParams{
		TemplateID:       template.ID,
		EditorID:         stranger.ID,
		Content:          "tampered",
		ExpectedRevision: 1,
	})
	assert.ErrorIs(t, err, ErrNotEntityAuthor)

	err = service.DeleteTemplate(ctx, template.ID, stranger.ID, "")
	assert.ErrorIs(t, err, ErrNotEntityAuthor)

	// The author edits their own template freely.
	updated, err := service.EditTemplate(ctx, EditTemplateParams{
		TemplateID:       template.ID,
		EditorID:         author.ID,
		Content:          "v2",
		ExpectedRevision: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.CurrentRevision)

	admin := testutil.CreateTestAdmin(t, db)
	require.NoError(t, service.DeleteTemplate(ctx, template.ID, admin.ID, ""))
}
