package services

import (
	"context"
	"testing"

	"github.com/docsmait/docsmait/internal/domain/repositories"
	"github.com/docsmait/docsmait/internal/domain/review"
	"github.com/docsmait/docsmait/internal/infrastructure/database"
	"github.com/docsmait/docsmait/internal/infrastructure/database/models"
	"github.com/docsmait/docsmait/internal/infrastructure/repositories/postgresql"
	"github.com/docsmait/docsmait/internal/infrastructure/repositories/postgresql/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDocumentService(t *testing.T) (*DocumentService, *postgresql.Repositories, *database.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := postgresql.NewRepositories(db)
	service := NewDocumentService(repos.Documents, repos.Templates, repos.Projects, repos.Users, NewActivityService(repos.Activity), 1<<20)
	return service, repos, db
}

func TestDocumentService_CreateDocument(t *testing.T) {
	service, _, db := newDocumentService(t)
	ctx := context.Background()

	author := testutil.CreateTestUser(t, db)
	project := testutil.CreateTestProject(t, db, author)

	document, err := service.CreateDocument(ctx, CreateDocumentParams{
		ProjectID: project.ID,
		AuthorID:  author.ID,
		Title:     "Usability Test Protocol",
		DocType:   models.DocTypeTestProtocol,
		Content:   "steps",
	})
	require.NoError(t, err)
	assert.Equal(t, review.StatusDraft, document.Status)
	assert.Equal(t, 1, document.CurrentRevision)
}

func TestDocumentService_CreateRequiresMembership(t *testing.T) {
	service, _, db := newDocumentService(t)
	ctx := context.Background()

	owner := testutil.CreateTestUser(t, db)
	project := testutil.CreateTestProject(t, db, owner)
	stranger := testutil.CreateTestUser(t, db)

	_, err := service.CreateDocument(ctx, CreateDocumentParams{
		ProjectID: project.ID,
		AuthorID:  stranger.ID,
		Title:     "Doc",
	})
	assert.ErrorIs(t, err, ErrNotProjectMember)
}

func TestDocumentService_CreateFromTemplate(t *testing.T) {
	service, _, db := newDocumentService(t)
	ctx := context.Background()

	author := testutil.CreateTestUser(t, db)
	project := testutil.CreateTestProject(t, db, author)
	template := testutil.CreateTestTemplate(t, db, nil, author)

	// Draft template cannot seed a document.
	_, err := service.CreateDocument(ctx, CreateDocumentParams{
		ProjectID:  project.ID,
		AuthorID:   author.ID,
		Title:      "From Template",
		TemplateID: &template.ID,
	})
	assert.ErrorIs(t, err, ErrTemplateNotApproved)

	// Approve it through the normal workflow tables.
	require.NoError(t, db.Model(&models.Template{}).
		Where("id = ?", template.ID).
		Update("status", review.StatusApproved).Error)

	document, err := service.CreateDocument(ctx, CreateDocumentParams{
		ProjectID:  project.ID,
		AuthorID:   author.ID,
		Title:      "From Template",
		TemplateID: &template.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, template.Content, document.Content)
	assert.Equal(t, template.DocType, document.DocType)
}

func TestDocumentService_EditDraftKeepsDraft(t *testing.T) {
	service, _, db := newDocumentService(t)
	ctx := context.Background()

	author := testutil.CreateTestUser(t, db)
	project := testutil.CreateTestProject(t, db, author)
	doc := testutil.CreateTestDocument(t, db, project, author)

	updated, err := service.EditDocument(ctx, EditDocumentParams{
		DocumentID:       doc.ID,
		EditorID:         author.ID,
		Content:          "v2",
		ExpectedRevision: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, review.StatusDraft, updated.Status)
	assert.Equal(t, 2, updated.CurrentRevision)
}

func TestDocumentService_EditDuringReviewRejected(t *testing.T) {
	service, repos, db := newDocumentService(t)
	ctx := context.Background()

	author := testutil.CreateTestUser(t, db)
	project := testutil.CreateTestProject(t, db, author)
	doc := testutil.CreateTestDocument(t, db, project, author)

	err := repos.Reviews.Transact(ctx, models.EntityDocument, doc.ID, func(tx repositories.ReviewTx) error {
		return tx.SetStatus(review.StatusReviewRequest)
	})
	require.NoError(t, err)

	_, err = service.EditDocument(ctx, EditDocumentParams{
		DocumentID:       doc.ID,
		EditorID:         author.ID,
		Content:          "sneaky edit",
		ExpectedRevision: 1,
	})
	var transitionErr *review.InvalidTransitionError
	assert.ErrorAs(t, err, &transitionErr)
}

func TestDocumentService_EditApprovedPullsBackToDraft(t *testing.T) {
	service, _, db := newDocumentService(t)
	ctx := context.Background()

	author := testutil.CreateTestUser(t, db)
	project := testutil.CreateTestProject(t, db, author)
	doc := testutil.CreateTestDocument(t, db, project, author)

	require.NoError(t, db.Model(&models.Document{}).
		Where("id = ?", doc.ID).
		Update("status", review.StatusApproved).Error)

	updated, err := service.EditDocument(ctx, EditDocumentParams{
		DocumentID:       doc.ID,
		EditorID:         author.ID,
		Content:          "post-approval change",
		ExpectedRevision: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, review.StatusDraft, updated.Status, "editing approved content invalidates the approval")
	assert.Equal(t, 2, updated.CurrentRevision)
}

func TestDocumentService_EditStaleRevision(t *testing.T) {
	service, _, db := newDocumentService(t)
	ctx := context.Background()

	author := testutil.CreateTestUser(t, db)
	project := testutil.CreateTestProject(t, db, author)
	doc := testutil.CreateTestDocument(t, db, project, author)

	_, err := service.EditDocument(ctx, EditDocumentParams{
		DocumentID: doc.ID, EditorID: author.ID, Content: "first", ExpectedRevision: 1,
	})
	require.NoError(t, err)

	_, err = service.EditDocument(ctx, EditDocumentParams{
		DocumentID: doc.ID, EditorID: author.ID, Content: "second", ExpectedRevision: 1,
	})
	assert.ErrorIs(t, err, ErrStaleEdit)
}

func TestDocumentService_EditRequiresAuthorOrAdmin(t *testing.T) {
	service, _, db := newDocumentService(t)
	ctx := context.Background()

	author := testutil.CreateTestUser(t, db)
	project := testutil.CreateTestProject(t, db, author)
	doc := testutil.CreateTestDocument(t, db, project, author)

	require.NoError(t, db.Model(&models.Document{}).
		Where("id = ?", doc.ID).
		Update("status", review.StatusApproved).Error)

	// Neither an outsider nor a fellow member may touch someone
	// else's document.
	stranger := testutil.CreateTestUser(t, db)
	member := testutil.CreateTestUser(t, db)
	testutil.AddTestMember(t, db, project, member)

	for _, editor := range []*models.User{stranger, member} {
		_, err := service.EditDocument(ctx, EditDocumentParams{
			DocumentID:       doc.ID,
			EditorID:         editor.ID,
			Content:          "tampered",
			ExpectedRevision: 1,
		})
		assert.ErrorIs(t, err, ErrNotEntityAuthor)
	}

	// The rejected edits changed nothing.
	current, err := service.GetDocument(ctx, doc.ID, author.ID)
	require.NoError(t, err)
	assert.Equal(t, review.StatusApproved, current.Status)
	assert.Equal(t, 1, current.CurrentRevision)
	assert.Equal(t, "initial content", current.Content)

	// An admin may edit on the author's behalf.
	admin := testutil.CreateTestAdmin(t, db)
	updated, err := service.EditDocument(ctx, EditDocumentParams{
		DocumentID:       doc.ID,
		EditorID:         admin.ID,
		Content:          "admin correction",
		ExpectedRevision: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, review.StatusDraft, updated.Status)
	assert.Equal(t, 2, updated.CurrentRevision)
}

func TestDocumentService_DeleteRequiresAuthorOrAdmin(t *testing.T) {
	service, _, db := newDocumentService(t)
	ctx := context.Background()

	author := testutil.CreateTestUser(t, db)
	project := testutil.CreateTestProject(t, db, author)
	doc := testutil.CreateTestDocument(t, db, project, author)

	stranger := testutil.CreateTestUser(t, db)
	err := service.DeleteDocument(ctx, doc.ID, stranger.ID, "")
	assert.ErrorIs(t, err, ErrNotEntityAuthor)

	_, err = service.UpdateMeta(ctx, doc.ID, stranger.ID, "Renamed", models.DocTypeGeneral)
	assert.ErrorIs(t, err, ErrNotEntityAuthor)

	require.NoError(t, service.DeleteDocument(ctx, doc.ID, author.ID, ""))
}

func TestDocumentService_ReadRequiresMembership(t *testing.T) {
	service, _, db := newDocumentService(t)
	ctx := context.Background()

	author := testutil.CreateTestUser(t, db)
	project := testutil.CreateTestProject(t, db, author)
	doc := testutil.CreateTestDocument(t, db, project, author)

	stranger := testutil.CreateTestUser(t, db)
	_, err := service.GetDocument(ctx, doc.ID, stranger.ID)
	assert.ErrorIs(t, err, ErrNotProjectMember)

	_, _, err = service.ListDocuments(ctx, project.ID, stranger.ID, repositories.DocumentFilters{})
	assert.ErrorIs(t, err, ErrNotProjectMember)

	// Admins can read any project.
	admin := testutil.CreateTestAdmin(t, db)
	got, err := service.GetDocument(ctx, doc.ID, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, got.ID)
}

func TestDocumentService_ContentTooLarge(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repos := postgresql.NewRepositories(db)
	service := NewDocumentService(repos.Documents, repos.Templates, repos.Projects, repos.Users, NewActivityService(repos.Activity), 8)
	ctx := context.Background()

	author := testutil.CreateTestUser(t, db)
	project := testutil.CreateTestProject(t, db, author)

	_, err := service.CreateDocument(ctx, CreateDocumentParams{
		ProjectID: project.ID,
		AuthorID:  author.ID,
		Title:     "Doc",
		Content:   "more than eight bytes",
	})
	assert.ErrorIs(t, err, ErrContentTooLarge)
}
