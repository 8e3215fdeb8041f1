package services

import (
	"context"
	"testing"
	"time"

	"github.com/docsmait/docsmait/internal/domain/repositories"
	"github.com/docsmait/docsmait/internal/domain/review"
	"github.com/docsmait/docsmait/internal/infrastructure/database"
	"github.com/docsmait/docsmait/internal/infrastructure/database/models"
	"github.com/docsmait/docsmait/internal/infrastructure/repositories/postgresql"
	"github.com/docsmait/docsmait/internal/infrastructure/repositories/postgresql/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reviewFixture struct {
	db       *database.DB
	repos    *postgresql.Repositories
	service  *ReviewService
	author   *models.User
	project  *models.Project
	document *models.Document
}

func newReviewFixture(t *testing.T) *reviewFixture {
	t.Helper()

	db := testutil.SetupTestDB(t)
	repos := postgresql.NewRepositories(db)

	activity := NewActivityService(repos.Activity)
	notifications := NewNotificationService(repos.Notifications, nil)
	service := NewReviewService(repos.Reviews, repos.Projects, repos.Users, activity, notifications, nil, time.Minute)

	author := testutil.CreateTestUser(t, db)
	project := testutil.CreateTestProject(t, db, author)
	document := testutil.CreateTestDocument(t, db, project, author)

	return &reviewFixture{
		db:       db,
		repos:    repos,
		service:  service,
		author:   author,
		project:  project,
		document: document,
	}
}

func (f *reviewFixture) addReviewer(t *testing.T) *models.User {
	t.Helper()
	reviewer := testutil.CreateTestUser(t, f.db)
	require.NoError(t, f.repos.Projects.AddMember(context.Background(), &models.ProjectMember{
		ID:        uuid.New(),
		ProjectID: f.project.ID,
		UserID:    reviewer.ID,
	}))
	return reviewer
}

func (f *reviewFixture) requestReview(t *testing.T, reviewers ...*models.User) {
	t.Helper()
	ids := make([]uuid.UUID, len(reviewers))
	for i, r := range reviewers {
		ids[i] = r.ID
	}
	err := f.service.RequestReview(context.Background(), RequestReviewParams{
		EntityType:  models.EntityDocument,
		EntityID:    f.document.ID,
		RequestedBy: f.author.ID,
		Reviewers:   ids,
	})
	require.NoError(t, err)
}

func TestReviewService_RequestReview(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()
	reviewer := f.addReviewer(t)

	f.requestReview(t, reviewer)

	status, err := f.service.GetStatus(ctx, models.EntityDocument, f.document.ID)
	require.NoError(t, err)
	assert.Equal(t, review.StatusReviewRequest, status)

	// The reviewer was notified and the request landed in the trail.
	notifications, _, err := f.repos.Notifications.ListByUser(ctx, reviewer.ID, true, repositories.ListParams{})
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotifyReviewRequested, notifications[0].Type)

	trail, total, err := f.service.Trail(ctx, models.EntityDocument, f.document.ID, repositories.ListParams{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, models.CommentReviewRequest, trail[0].Type)
}

func TestReviewService_RequestReviewValidation(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()
	reviewer := f.addReviewer(t)
	stranger := testutil.CreateTestUser(t, f.db)

	tests := []struct {
		name    string
		params  RequestReviewParams
		wantErr error
	}{
		{
			name: "no reviewers",
			params: RequestReviewParams{
				EntityType: models.EntityDocument, EntityID: f.document.ID,
				RequestedBy: f.author.ID,
			},
			wantErr: ErrNoReviewers,
		},
		{
			name: "author reviewing own work",
			params: RequestReviewParams{
				EntityType: models.EntityDocument, EntityID: f.document.ID,
				RequestedBy: f.author.ID, Reviewers: []uuid.UUID{f.author.ID},
			},
			wantErr: ErrAuthorAsReviewer,
		},
		{
			name: "requester is not the author",
			params: RequestReviewParams{
				EntityType: models.EntityDocument, EntityID: f.document.ID,
				RequestedBy: reviewer.ID, Reviewers: []uuid.UUID{reviewer.ID},
			},
			wantErr: ErrNotAuthor,
		},
		{
			name: "reviewer outside the project",
			params: RequestReviewParams{
				EntityType: models.EntityDocument, EntityID: f.document.ID,
				RequestedBy: f.author.ID, Reviewers: []uuid.UUID{stranger.ID},
			},
			wantErr: ErrReviewerNotMember,
		},
		{
			name: "entity does not exist",
			params: RequestReviewParams{
				EntityType: models.EntityDocument, EntityID: uuid.New(),
				RequestedBy: f.author.ID, Reviewers: []uuid.UUID{reviewer.ID},
			},
			wantErr: ErrEntityNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.service.RequestReview(ctx, tt.params)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	// None of the rejected requests moved the document.
	status, err := f.service.GetStatus(ctx, models.EntityDocument, f.document.ID)
	require.NoError(t, err)
	assert.Equal(t, review.StatusDraft, status)
}

func TestReviewService_RequestReviewFromReviewState(t *testing.T) {
	f := newReviewFixture(t)
	reviewer := f.addReviewer(t)
	f.requestReview(t, reviewer)

	// Requesting again while already under review is not a legal
	// transition.
	err := f.service.RequestReview(context.Background(), RequestReviewParams{
		EntityType:  models.EntityDocument,
		EntityID:    f.document.ID,
		RequestedBy: f.author.ID,
		Reviewers:   []uuid.UUID{reviewer.ID},
	})
	var transitionErr *review.InvalidTransitionError
	assert.ErrorAs(t, err, &transitionErr)
}

func TestReviewService_UnanimousApproval(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()
	first := f.addReviewer(t)
	second := f.addReviewer(t)
	f.requestReview(t, first, second)

	status, err := f.service.SubmitDecision(ctx, SubmitDecisionParams{
		EntityType: models.EntityDocument, EntityID: f.document.ID,
		ReviewerID: first.ID, Approved: true, Comment: "looks good", Revision: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, review.StatusReviewRequest, status, "one of two approvals is not enough")

	status, err = f.service.SubmitDecision(ctx, SubmitDecisionParams{
		EntityType: models.EntityDocument, EntityID: f.document.ID,
		ReviewerID: second.ID, Approved: true, Comment: "ship it", Revision: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, review.StatusApproved, status)

	// Author heard about both decisions.
	notifications, _, err := f.repos.Notifications.ListByUser(ctx, f.author.ID, true, repositories.ListParams{})
	require.NoError(t, err)
	assert.Len(t, notifications, 2)
}

func TestReviewService_RejectionSendsBackForRework(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()
	approver := f.addReviewer(t)
	rejecter := f.addReviewer(t)
	f.requestReview(t, approver, rejecter)

	_, err := f.service.SubmitDecision(ctx, SubmitDecisionParams{
		EntityType: models.EntityDocument, EntityID: f.document.ID,
		ReviewerID: approver.ID, Approved: true, Comment: "fine by me", Revision: 1,
	})
	require.NoError(t, err)

	status, err := f.service.SubmitDecision(ctx, SubmitDecisionParams{
		EntityType: models.EntityDocument, EntityID: f.document.ID,
		ReviewerID: rejecter.ID, Approved: false, Comment: "section 4 contradicts the risk analysis", Revision: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, review.StatusNeedsUpdate, status)

	// The newest trail entry is the rejection with its comment.
	trail, _, err := f.service.Trail(ctx, models.EntityDocument, f.document.ID, repositories.ListParams{})
	require.NoError(t, err)
	newest := trail[0]
	assert.Equal(t, models.CommentDecision, newest.Type)
	assert.Contains(t, newest.Content, "section 4 contradicts")
}

func TestReviewService_SubmitDecisionGuards(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()
	reviewer := f.addReviewer(t)
	outsider := f.addReviewer(t)
	f.requestReview(t, reviewer)

	// A decision without a comment, approving or not.
	_, err := f.service.SubmitDecision(ctx, SubmitDecisionParams{
		EntityType: models.EntityDocument, EntityID: f.document.ID,
		ReviewerID: reviewer.ID, Approved: false, Revision: 1,
	})
	assert.ErrorIs(t, err, ErrCommentRequired)
	_, err = f.service.SubmitDecision(ctx, SubmitDecisionParams{
		EntityType: models.EntityDocument, EntityID: f.document.ID,
		ReviewerID: reviewer.ID, Approved: true, Comment: "   ", Revision: 1,
	})
	assert.ErrorIs(t, err, ErrCommentRequired)

	// A decision against the wrong revision.
	_, err = f.service.SubmitDecision(ctx, SubmitDecisionParams{
		EntityType: models.EntityDocument, EntityID: f.document.ID,
		ReviewerID: reviewer.ID, Approved: true, Comment: "ok", Revision: 7,
	})
	var validationErr *review.ValidationError
	assert.ErrorAs(t, err, &validationErr)

	// Not an assigned reviewer.
	_, err = f.service.SubmitDecision(ctx, SubmitDecisionParams{
		EntityType: models.EntityDocument, EntityID: f.document.ID,
		ReviewerID: outsider.ID, Approved: true, Comment: "ok", Revision: 1,
	})
	assert.ErrorIs(t, err, ErrNotAssigned)

	// Double submission.
	_, err = f.service.SubmitDecision(ctx, SubmitDecisionParams{
		EntityType: models.EntityDocument, EntityID: f.document.ID,
		ReviewerID: reviewer.ID, Approved: true, Comment: "ok", Revision: 1,
	})
	require.NoError(t, err)
	_, err = f.service.SubmitDecision(ctx, SubmitDecisionParams{
		EntityType: models.EntityDocument, EntityID: f.document.ID,
		ReviewerID: reviewer.ID, Approved: true, Comment: "ok again", Revision: 1,
	})
	assert.ErrorIs(t, err, ErrNotInReview, "single-reviewer approval already closed the cycle")
}

func TestReviewService_DecisionOutsideReview(t *testing.T) {
	f := newReviewFixture(t)

	_, err := f.service.SubmitDecision(context.Background(), SubmitDecisionParams{
		EntityType: models.EntityDocument, EntityID: f.document.ID,
		ReviewerID: f.author.ID, Approved: true, Comment: "ok", Revision: 1,
	})
	assert.ErrorIs(t, err, ErrNotInReview)
}

func TestReviewService_ReworkCycleResetsDecisions(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()
	reviewer := f.addReviewer(t)
	f.requestReview(t, reviewer)

	_, err := f.service.SubmitDecision(ctx, SubmitDecisionParams{
		EntityType: models.EntityDocument, EntityID: f.document.ID,
		ReviewerID: reviewer.ID, Approved: false, Comment: "needs work", Revision: 1,
	})
	require.NoError(t, err)

	// Author reworks: edit pulls needs_update back to draft.
	docs := NewDocumentService(f.repos.Documents, f.repos.Templates, f.repos.Projects, f.repos.Users, NewActivityService(f.repos.Activity), 0)
	updated, err := docs.EditDocument(ctx, EditDocumentParams{
		DocumentID: f.document.ID, EditorID: f.author.ID,
		Content: "reworked", ExpectedRevision: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, review.StatusDraft, updated.Status)
	assert.Equal(t, 2, updated.CurrentRevision)

	// Second cycle starts clean.
	f.requestReview(t, reviewer)
	summary, err := f.service.GetSummary(ctx, models.EntityDocument, f.document.ID)
	require.NoError(t, err)
	assert.Equal(t, review.StatusReviewRequest, summary.Status)
	assert.Equal(t, 0, summary.Submitted)
	require.Len(t, summary.Assignments, 1)
	assert.Equal(t, 2, summary.Assignments[0].ReviewedRevision)
}

func TestReviewService_GetSummaryProgress(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()
	first := f.addReviewer(t)
	second := f.addReviewer(t)
	third := f.addReviewer(t)
	f.requestReview(t, first, second, third)

	_, err := f.service.SubmitDecision(ctx, SubmitDecisionParams{
		EntityType: models.EntityDocument, EntityID: f.document.ID,
		ReviewerID: first.ID, Approved: true, Comment: "no objections", Revision: 1,
	})
	require.NoError(t, err)
	_, err = f.service.SubmitDecision(ctx, SubmitDecisionParams{
		EntityType: models.EntityDocument, EntityID: f.document.ID,
		ReviewerID: second.ID, Approved: false, Comment: "typo in 2.1", Revision: 1,
	})
	require.NoError(t, err)

	summary, err := f.service.GetSummary(ctx, models.EntityDocument, f.document.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Submitted)
	assert.Equal(t, 1, summary.Approvals)
	assert.Equal(t, 1, summary.Rejections)
	assert.Len(t, summary.Assignments, 3)
}

func TestReviewService_AddComment(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()

	comment, err := f.service.AddComment(ctx, models.EntityDocument, f.document.ID, f.author.ID, "context for reviewers")
	require.NoError(t, err)
	assert.Equal(t, models.CommentGeneral, comment.Type)
	assert.Equal(t, 1, comment.Revision)

	_, err = f.service.AddComment(ctx, models.EntityDocument, f.document.ID, f.author.ID, "   ")
	var validationErr *review.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestReviewService_RemindStalledReviews(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()
	reviewer := f.addReviewer(t)
	f.requestReview(t, reviewer)

	// Nothing is overdue yet.
	sent, err := f.service.RemindStalledReviews(ctx, time.Hour)
	require.NoError(t, err)
	assert.Zero(t, sent)

	// With a zero window everything pending is overdue.
	sent, err = f.service.RemindStalledReviews(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	notifications, _, err := f.repos.Notifications.ListByUser(ctx, reviewer.ID, true, repositories.ListParams{})
	require.NoError(t, err)
	require.Len(t, notifications, 2) // request + reminder
}
