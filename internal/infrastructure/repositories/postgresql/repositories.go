package postgresql

import (
	"context"

	"github.com/docsmait/docsmait/internal/domain/repositories"
	"github.com/docsmait/docsmait/internal/infrastructure/database"
)

// Repositories aggregates all repository implementations
type Repositories struct {
	Users         repositories.UserRepository
	Projects      repositories.ProjectRepository
	Documents     repositories.DocumentRepository
	Templates     repositories.TemplateRepository
	CodeReviews   repositories.CodeReviewRepository
	Reviews       repositories.ReviewRepository
	Revisions     repositories.RevisionRepository
	Activity      repositories.ActivityLogRepository
	Knowledge     repositories.KnowledgeRepository
	Training      repositories.TrainingRepository
	Notifications repositories.NotificationRepository
}

// NewRepositories creates all repositories backed by the given database
func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Users:         NewUserRepository(db),
		Projects:      NewProjectRepository(db),
		Documents:     NewDocumentRepository(db),
		Templates:     NewTemplateRepository(db),
		CodeReviews:   NewCodeReviewRepository(db),
		Reviews:       NewReviewRepository(db),
		Revisions:     NewRevisionRepository(db),
		Activity:      NewActivityLogRepository(db),
		Knowledge:     NewKnowledgeRepository(db),
		Training:      NewTrainingRepository(db),
		Notifications: NewNotificationRepository(db),
	}
}

// HealthCheck verifies the database connection is alive
func (r *Repositories) HealthCheck(ctx context.Context) error {
	repo, ok := r.Users.(*UserRepository)
	if !ok {
		return nil
	}
	return repo.db.Ping()
}
