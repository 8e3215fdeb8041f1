package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/docsmait/docsmait/internal/domain/repositories"
	"github.com/docsmait/docsmait/internal/domain/review"
	"github.com/docsmait/docsmait/internal/infrastructure/database/models"
	"github.com/google/uuid"
)

var (
	ErrEntityNotFound    = errors.New("entity not found")
	ErrNotAuthor         = errors.New("only the author can request a review")
	ErrNoReviewers       = errors.New("at least one reviewer is required")
	ErrAuthorAsReviewer  = errors.New("the author cannot review their own work")
	ErrReviewerNotMember = errors.New("reviewer is not a member of the project")
	ErrNotAssigned       = errors.New("user is not an assigned reviewer")
	ErrAlreadySubmitted  = errors.New("decision already submitted for this cycle")
	ErrNotInReview       = errors.New("entity is not under review")
	ErrCommentRequired   = errors.New("a decision requires a comment")
)

// ReviewService drives entities through the review workflow. Every
// state change runs inside one repository transaction so concurrent
// submissions on the same entity serialize and the recomputed status
// always reflects the full reviewer set.
type ReviewService struct {
	reviewRepo          repositories.ReviewRepository
	projectRepo         repositories.ProjectRepository
	userRepo            repositories.UserRepository
	activityService     *ActivityService
	notificationService *NotificationService
	cache               CacheService
	statusCacheTTL      time.Duration
}

func NewReviewService(
	reviewRepo repositories.ReviewRepository,
	projectRepo repositories.ProjectRepository,
	userRepo repositories.UserRepository,
	activityService *ActivityService,
	notificationService *NotificationService,
	cache CacheService,
	statusCacheTTL time.Duration,
) *ReviewService {
	return &ReviewService{
		reviewRepo:          reviewRepo,
		projectRepo:         projectRepo,
		userRepo:            userRepo,
		activityService:     activityService,
		notificationService: notificationService,
		cache:               cache,
		statusCacheTTL:      statusCacheTTL,
	}
}

// RequestReviewParams contains parameters for starting a review cycle.
type RequestReviewParams struct {
	EntityType  models.EntityType
	EntityID    uuid.UUID
	RequestedBy uuid.UUID
	Reviewers   []uuid.UUID
	Message     string
	IPAddress   string
}

// RequestReview moves an entity into review and assigns the reviewer
// set. Re-requesting after rework replaces the previous cycle's
// assignments; reviewers dropped from the set lose their pending
// assignment.
func (s *ReviewService) RequestReview(ctx context.Context, params RequestReviewParams) error {
	reviewers := dedupReviewers(params.Reviewers)
	if len(reviewers) == 0 {
		return ErrNoReviewers
	}

	var snapshot *repositories.EntitySnapshot
	err := s.reviewRepo.Transact(ctx, params.EntityType, params.EntityID, func(tx repositories.ReviewTx) error {
		entity := tx.Entity()
		snapshot = entity

		if entity.AuthorID != params.RequestedBy {
			return ErrNotAuthor
		}
		for _, reviewerID := range reviewers {
			if reviewerID == entity.AuthorID {
				return ErrAuthorAsReviewer
			}
		}
		if err := review.ValidateTransition(entity.Status, review.StatusReviewRequest); err != nil {
			return err
		}
		if err := s.checkReviewerMembership(ctx, entity.ProjectID, reviewers); err != nil {
			return err
		}

		if err := tx.ResetAssignments(reviewers, entity.CurrentRevision); err != nil {
			return err
		}

		comment := &models.ReviewComment{
			ID:         uuid.New(),
			EntityType: params.EntityType,
			EntityID:   params.EntityID,
			UserID:     params.RequestedBy,
			Type:       models.CommentReviewRequest,
			Revision:   entity.CurrentRevision,
			Content:    reviewRequestTrailContent(params.Message),
		}
		if err := tx.AppendComment(comment); err != nil {
			return err
		}

		return tx.SetStatus(review.StatusReviewRequest)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrEntityNotFound
		}
		return err
	}

	s.invalidateStatus(ctx, params.EntityType, params.EntityID)

	for _, reviewerID := range reviewers {
		_ = s.notificationService.Notify(ctx, NotifyParams{
			UserID:     reviewerID,
			Type:       models.NotifyReviewRequested,
			Title:      "Review requested",
			Message:    fmt.Sprintf("%q is awaiting your review", snapshot.Title),
			EntityType: params.EntityType,
			EntityID:   &params.EntityID,
		})
	}

	s.activityService.Record(RecordParams{
		UserID:     params.RequestedBy,
		ProjectID:  snapshot.ProjectID,
		EntityType: params.EntityType,
		EntityID:   &params.EntityID,
		Action:     models.ActivityReviewRequest,
		Details:    models.JSONB{"reviewers": len(reviewers), "revision": snapshot.CurrentRevision},
		IPAddress:  params.IPAddress,
	})

	return nil
}

// SubmitDecisionParams contains one reviewer's verdict. Revision is the
// revision the reviewer looked at; a decision against anything but the
// entity's current revision is refused.
type SubmitDecisionParams struct {
	EntityType models.EntityType
	EntityID   uuid.UUID
	ReviewerID uuid.UUID
	Approved   bool
	Comment    string
	Revision   int
	IPAddress  string
}

// SubmitDecision records a reviewer's verdict and recomputes the
// entity status from the full assignment set: any rejection sends the
// entity back for rework, unanimous approval approves it, anything
// else leaves it in review. Every decision carries a comment.
func (s *ReviewService) SubmitDecision(ctx context.Context, params SubmitDecisionParams) (review.Status, error) {
	if strings.TrimSpace(params.Comment) == "" {
		return "", ErrCommentRequired
	}

	var snapshot *repositories.EntitySnapshot
	var result review.Status
	err := s.reviewRepo.Transact(ctx, params.EntityType, params.EntityID, func(tx repositories.ReviewTx) error {
		entity := tx.Entity()
		snapshot = entity

		if entity.Status != review.StatusReviewRequest {
			return ErrNotInReview
		}

		assignment, err := tx.Assignment(params.ReviewerID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrNotAssigned
			}
			return err
		}
		if assignment.ReviewSubmitted {
			return ErrAlreadySubmitted
		}
		if params.Revision != entity.CurrentRevision {
			return &review.ValidationError{
				Reason: fmt.Sprintf("decision references revision %d but the current revision is %d", params.Revision, entity.CurrentRevision),
			}
		}

		now := time.Now()
		approved := params.Approved
		assignment.ReviewSubmitted = true
		assignment.ReviewApproved = &approved
		assignment.Comment = params.Comment
		assignment.SubmittedAt = &now
		if err := tx.SaveAssignment(assignment); err != nil {
			return err
		}

		comment := &models.ReviewComment{
			ID:         uuid.New(),
			EntityType: params.EntityType,
			EntityID:   params.EntityID,
			UserID:     params.ReviewerID,
			Type:       models.CommentDecision,
			Revision:   entity.CurrentRevision,
			Content:    decisionTrailContent(params.Approved, params.Comment),
		}
		if err := tx.AppendComment(comment); err != nil {
			return err
		}

		// The decision set is re-read inside the transaction so a
		// concurrent submission cannot be missed.
		all, err := tx.Assignments()
		if err != nil {
			return err
		}
		decisions := make([]review.Decision, len(all))
		for i, a := range all {
			decisions[i] = review.Decision{Submitted: a.ReviewSubmitted, Approved: a.ReviewApproved}
		}

		result = review.Aggregate(decisions)
		if result == entity.Status {
			return nil
		}
		if err := review.ValidateTransition(entity.Status, result); err != nil {
			return err
		}
		return tx.SetStatus(result)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", ErrEntityNotFound
		}
		return "", err
	}

	s.invalidateStatus(ctx, params.EntityType, params.EntityID)

	verdict := "approved"
	if !params.Approved {
		verdict = "requested changes on"
	}
	_ = s.notificationService.Notify(ctx, NotifyParams{
		UserID:     snapshot.AuthorID,
		Type:       models.NotifyDecisionMade,
		Title:      "Review decision",
		Message:    fmt.Sprintf("A reviewer %s %q", verdict, snapshot.Title),
		EntityType: params.EntityType,
		EntityID:   &params.EntityID,
	})

	s.activityService.Record(RecordParams{
		UserID:     params.ReviewerID,
		ProjectID:  snapshot.ProjectID,
		EntityType: params.EntityType,
		EntityID:   &params.EntityID,
		Action:     models.ActivityDecision,
		Details:    models.JSONB{"approved": params.Approved, "status": string(result)},
		IPAddress:  params.IPAddress,
	})

	return result, nil
}

// AddComment appends a free-form trail entry without touching the
// entity's status.
func (s *ReviewService) AddComment(ctx context.Context, entityType models.EntityType, entityID, userID uuid.UUID, content string) (*models.ReviewComment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, &review.ValidationError{Reason: "comment content is required"}
	}

	snapshot, err := s.reviewRepo.Snapshot(ctx, entityType, entityID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrEntityNotFound
		}
		return nil, err
	}

	comment := &models.ReviewComment{
		ID:         uuid.New(),
		EntityType: entityType,
		EntityID:   entityID,
		UserID:     userID,
		Type:       models.CommentGeneral,
		Revision:   snapshot.CurrentRevision,
		Content:    content,
	}
	if err := s.reviewRepo.AppendComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// ReviewSummary is the review state of one entity.
type ReviewSummary struct {
	EntityType      models.EntityType         `json:"entity_type"`
	EntityID        uuid.UUID                 `json:"entity_id"`
	Title           string                    `json:"title"`
	Status          review.Status             `json:"status"`
	CurrentRevision int                       `json:"current_revision"`
	Assignments     []models.ReviewAssignment `json:"assignments"`
	Submitted       int                       `json:"submitted"`
	Approvals       int                       `json:"approvals"`
	Rejections      int                       `json:"rejections"`
}

// GetSummary returns the entity's status and reviewer progress.
func (s *ReviewService) GetSummary(ctx context.Context, entityType models.EntityType, entityID uuid.UUID) (*ReviewSummary, error) {
	snapshot, err := s.reviewRepo.Snapshot(ctx, entityType, entityID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrEntityNotFound
		}
		return nil, err
	}

	assignments, err := s.reviewRepo.ListAssignments(ctx, entityType, entityID)
	if err != nil {
		return nil, err
	}

	summary := &ReviewSummary{
		EntityType:      snapshot.EntityType,
		EntityID:        snapshot.EntityID,
		Title:           snapshot.Title,
		Status:          snapshot.Status,
		CurrentRevision: snapshot.CurrentRevision,
		Assignments:     assignments,
	}
	for _, a := range assignments {
		if !a.ReviewSubmitted {
			continue
		}
		summary.Submitted++
		if a.ReviewApproved != nil && *a.ReviewApproved {
			summary.Approvals++
		} else {
			summary.Rejections++
		}
	}
	return summary, nil
}

// GetStatus returns just the entity's status, served from cache when
// possible.
func (s *ReviewService) GetStatus(ctx context.Context, entityType models.EntityType, entityID uuid.UUID) (review.Status, error) {
	key := fmt.Sprintf(StatusCacheKeyPattern, entityType, entityID)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key); err == nil {
			if status := review.Status(cached); status.Valid() {
				return status, nil
			}
		}
	}

	snapshot, err := s.reviewRepo.Snapshot(ctx, entityType, entityID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", ErrEntityNotFound
		}
		return "", err
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, key, string(snapshot.Status), s.statusCacheTTL)
	}
	return snapshot.Status, nil
}

// ListAssignedTo returns the reviews waiting on a reviewer.
func (s *ReviewService) ListAssignedTo(ctx context.Context, reviewerID uuid.UUID, pendingOnly bool) ([]models.ReviewAssignment, error) {
	return s.reviewRepo.ListAssignedTo(ctx, reviewerID, pendingOnly)
}

// Trail returns the entity's append-only comment history.
func (s *ReviewService) Trail(ctx context.Context, entityType models.EntityType, entityID uuid.UUID, params repositories.ListParams) ([]models.ReviewComment, int64, error) {
	return s.reviewRepo.ListComments(ctx, entityType, entityID, params)
}

// RemindStalledReviews nudges reviewers whose assignments have been
// pending longer than olderThan. A SetNX key per assignment keeps a
// reviewer from being re-nagged on every worker pass; the key expires
// with the reminder window so a still-pending review is nagged again
// next window. Returns the number of reminders sent.
func (s *ReviewService) RemindStalledReviews(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)
	stalled, err := s.reviewRepo.ListPendingOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to find stalled reviews: %w", err)
	}

	sent := 0
	for _, assignment := range stalled {
		if s.cache != nil {
			key := fmt.Sprintf(ReminderSentKeyPattern, assignment.EntityType, assignment.EntityID, assignment.ReviewerID)
			fresh, err := s.cache.SetNX(ctx, key, time.Now().Unix(), olderThan)
			if err != nil || !fresh {
				continue
			}
		}

		snapshot, err := s.reviewRepo.Snapshot(ctx, assignment.EntityType, assignment.EntityID)
		if err != nil {
			continue
		}
		// The entity may have left review since the assignment query.
		if snapshot.Status != review.StatusReviewRequest {
			continue
		}

		if err := s.notificationService.Notify(ctx, NotifyParams{
			UserID:     assignment.ReviewerID,
			Type:       models.NotifyReviewReminder,
			Title:      "Review reminder",
			Message:    fmt.Sprintf("%q has been waiting for your review since %s", snapshot.Title, assignment.CreatedAt.Format("Jan 2")),
			EntityType: assignment.EntityType,
			EntityID:   &assignment.EntityID,
		}); err == nil {
			sent++
		}
	}
	return sent, nil
}

func (s *ReviewService) checkReviewerMembership(ctx context.Context, projectID *uuid.UUID, reviewers []uuid.UUID) error {
	// Global templates have no project; any active user may review.
	if projectID == nil {
		return nil
	}
	for _, reviewerID := range reviewers {
		isMember, err := s.projectRepo.IsMember(ctx, *projectID, reviewerID)
		if err != nil {
			return fmt.Errorf("failed to check membership: %w", err)
		}
		if !isMember {
			return ErrReviewerNotMember
		}
	}
	return nil
}

func (s *ReviewService) invalidateStatus(ctx context.Context, entityType models.EntityType, entityID uuid.UUID) {
	if s.cache != nil {
		_ = s.cache.Delete(ctx, fmt.Sprintf(StatusCacheKeyPattern, entityType, entityID))
	}
}

func dedupReviewers(reviewers []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(reviewers))
	out := make([]uuid.UUID, 0, len(reviewers))
	for _, id := range reviewers {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func reviewRequestTrailContent(message string) string {
	message = strings.TrimSpace(message)
	if message == "" {
		return "Review requested"
	}
	return "Review requested: " + message
}

func decisionTrailContent(approved bool, comment string) string {
	verdict := "Approved"
	if !approved {
		verdict = "Changes requested"
	}
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return verdict
	}
	return verdict + ": " + comment
}
