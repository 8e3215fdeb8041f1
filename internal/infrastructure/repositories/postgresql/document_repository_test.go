package postgresql

import (
	"context"
	"testing"

	"github.com/docsmait/docsmait/internal/domain/repositories"
	"github.com/docsmait/docsmait/internal/domain/review"
	"github.com/docsmait/docsmait/internal/infrastructure/database/models"
	"github.com/docsmait/docsmait/internal/infrastructure/repositories/postgresql/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentRepository_CreateRecordsInitialRevision(t *testing.T) {
	db := testutil.SetupTestDB(t)
	docs := NewDocumentRepository(db)
	revisions := NewRevisionRepository(db)
	ctx := context.Background()

	author := testutil.CreateTestUser(t, db)
	project := testutil.CreateTestProject(t, db, author)

	document := &models.Document{
		ID:        uuid.New(),
		ProjectID: project.ID,
		Title:     "Risk Analysis v1",
		DocType:   models.DocTypeRiskAnalysis,
		Content:   "hazard list",
		AuthorID:  author.ID,
		ReviewMeta: models.ReviewMeta{
			Status:          review.StatusDraft,
			CurrentRevision: 1,
		},
	}
	require.NoError(t, docs.Create(ctx, document))

	history, err := revisions.ListByEntity(ctx, models.EntityDocument, document.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 1, history[0].Revision)
	assert.Equal(t, "hazard list", history[0].Content)
	assert.Equal(t, author.ID, history[0].EditedBy)
}

func TestDocumentRepository_GetByIDNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	docs := NewDocumentRepository(db)

	_, err := docs.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestDocumentRepository_SaveContentBumpsRevision(t *testing.T) {
	db := testutil.SetupTestDB(t)
	docs := NewDocumentRepository(db)
	revisions := NewRevisionRepository(db)
	ctx := context.Background()

	author := testutil.CreateTestUser(t, db)
	project := testutil.CreateTestProject(t, db, author)
	doc := testutil.CreateTestDocument(t, db, project, author)

	updated, err := docs.SaveContent(ctx, doc.ID, author.ID,
		"revised content", "added section 3", 1, review.StatusDraft, review.StatusDraft)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.CurrentRevision)
	assert.Equal(t, "revised content", updated.Content)
	assert.Equal(t, review.StatusDraft, updated.Status)

	history, err := revisions.ListByEntity(ctx, models.EntityDocument, doc.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 2, history[1].Revision)
	assert.Equal(t, "added section 3", history[1].ChangeNote)
}

func TestDocumentRepository_SaveContentStaleRevision(t *testing.T) {
	db := testutil.SetupTestDB(t)
	docs := NewDocumentRepository(db)
	ctx := context.Background()

	author := testutil.CreateTestUser(t, db)
	project := testutil.CreateTestProject(t, db, author)
	doc := testutil.CreateTestDocument(t, db, project, author)

	// First save wins.
	_, err := docs.SaveContent(ctx, doc.ID, author.ID,
		"first edit", "", 1, review.StatusDraft, review.StatusDraft)
	require.NoError(t, err)

	// Second save against the already-consumed revision loses.
	_, err = docs.SaveContent(ctx, doc.ID, author.ID,
		"second edit", "", 1, review.StatusDraft, review.StatusDraft)
	assert.ErrorIs(t, err, repositories.ErrStaleEntity)
}

func TestDocumentRepository_SaveContentStaleStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	docs := NewDocumentRepository(db)
	reviews := NewReviewRepository(db)
	ctx := context.Background()

	author := testutil.CreateTestUser(t, db)
	project := testutil.CreateTestProject(t, db, author)
	doc := testutil.CreateTestDocument(t, db, project, author)

	// The document moves to review between the caller's read and save.
	err := reviews.Transact(ctx, models.EntityDocument, doc.ID, func(tx repositories.ReviewTx) error {
		return tx.SetStatus(review.StatusReviewRequest)
	})
	require.NoError(t, err)

	_, err = docs.SaveContent(ctx, doc.ID, author.ID,
		"edit", "", 1, review.StatusDraft, review.StatusDraft)
	assert.ErrorIs(t, err, repositories.ErrStaleEntity)
}

func TestDocumentRepository_SaveContentMissingDocument(t *testing.T) {
	db := testutil.SetupTestDB(t)
	docs := NewDocumentRepository(db)

	_, err := docs.SaveContent(context.Background(), uuid.New(), uuid.New(),
		"content", "", 1, review.StatusDraft, review.StatusDraft)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestDocumentRepository_ListFilters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	docs := NewDocumentRepository(db)
	ctx := context.Background()

	author := testutil.CreateTestUser(t, db)
	project := testutil.CreateTestProject(t, db, author)

	mk := func(title string, docType models.DocumentType, status review.Status) {
		document := &models.Document{
			ID:        uuid.New(),
			ProjectID: project.ID,
			Title:     title,
			DocType:   docType,
			Content:   "x",
			AuthorID:  author.ID,
			ReviewMeta: models.ReviewMeta{
				Status:          status,
				CurrentRevision: 1,
			},
		}
		require.NoError(t, docs.Create(ctx, document))
	}

	mk("Sterilization Procedure", models.DocTypeProcedure, review.StatusApproved)
	mk("Design Plan", models.DocTypeDesign, review.StatusDraft)
	mk("Test Protocol", models.DocTypeTestProtocol, review.StatusDraft)

	byType, total, err := docs.List(ctx, project.ID, repositories.DocumentFilters{
		DocTypes: []models.DocumentType{models.DocTypeProcedure},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, byType, 1)
	assert.Equal(t, "Sterilization Procedure", byType[0].Title)

	byStatus, total, err := docs.List(ctx, project.ID, repositories.DocumentFilters{
		Status: []review.Status{review.StatusDraft},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, byStatus, 2)

	bySearch, total, err := docs.List(ctx, project.ID, repositories.DocumentFilters{
		Search: "Protocol",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, bySearch, 1)
	assert.Equal(t, "Test Protocol", bySearch[0].Title)
}

func TestDocumentRepository_UpdateMeta(t *testing.T) {
	db := testutil.SetupTestDB(t)
	docs := NewDocumentRepository(db)
	ctx := context.Background()

	author := testutil.CreateTestUser(t, db)
	project := testutil.CreateTestProject(t, db, author)
	doc := testutil.CreateTestDocument(t, db, project, author)

	require.NoError(t, docs.UpdateMeta(ctx, doc.ID, "Renamed SOP", models.DocTypeProcedure))

	got, err := docs.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed SOP", got.Title)
	assert.Equal(t, models.DocTypeProcedure, got.DocType)

	err = docs.UpdateMeta(ctx, uuid.New(), "x", models.DocTypeGeneral)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}
