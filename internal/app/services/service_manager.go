package services

import (
	"context"
	"fmt"

	"github.com/docsmait/docsmait/internal/app/config"
	domainservices "github.com/docsmait/docsmait/internal/domain/services"
	"github.com/docsmait/docsmait/internal/infrastructure/auth/jwt"
	"github.com/docsmait/docsmait/internal/infrastructure/cache"
	"github.com/docsmait/docsmait/internal/infrastructure/database"
	"github.com/docsmait/docsmait/internal/infrastructure/repositories/postgresql"
)

// ServiceManager wires repositories, infrastructure and domain services
// for the server and worker entrypoints.
type ServiceManager struct {
	Config       *config.Config
	DB           *database.DB
	Repositories *postgresql.Repositories
	Cache        domainservices.CacheService
	Tokens       *jwt.TokenService

	Users         *domainservices.UserService
	Projects      *domainservices.ProjectService
	Documents     *domainservices.DocumentService
	Templates     *domainservices.TemplateService
	CodeReviews   *domainservices.CodeReviewService
	Reviews       *domainservices.ReviewService
	Revisions     *domainservices.RevisionService
	Activity      *domainservices.ActivityService
	Knowledge     *domainservices.KnowledgeService
	Training      *domainservices.TrainingService
	Notifications *domainservices.NotificationService
}

// NewServiceManager builds the full service graph. The cache is
// optional: when Redis is unreachable the services degrade to direct
// database reads.
func NewServiceManager(cfg *config.Config, db *database.DB) (*ServiceManager, error) {
	repos := postgresql.NewRepositories(db)

	var cacheService domainservices.CacheService
	if cfg.Redis.URL != "" {
		cs, err := cache.CreateCacheService(cfg.Redis.URL)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		cacheService = cs
	}

	tokens := jwt.NewTokenService(cfg.JWT.Secret, cfg.JWT.Expiry)

	activity := domainservices.NewActivityService(repos.Activity)
	notifications := domainservices.NewNotificationService(repos.Notifications, cacheService)
	users := domainservices.NewUserService(repos.Users, tokens, activity)
	projects := domainservices.NewProjectService(repos.Projects, repos.Users, activity)
	documents := domainservices.NewDocumentService(repos.Documents, repos.Templates, repos.Projects, repos.Users, activity, cfg.Limits.MaxContentBytes)
	templates := domainservices.NewTemplateService(repos.Templates, repos.Projects, repos.Users, activity, cfg.Limits.MaxContentBytes)
	codeReviews := domainservices.NewCodeReviewService(repos.CodeReviews, repos.Projects, repos.Users, activity, cfg.Limits.MaxContentBytes)
	reviews := domainservices.NewReviewService(repos.Reviews, repos.Projects, repos.Users, activity, notifications, cacheService, cfg.Review.StatusCacheTTL)
	revisions := domainservices.NewRevisionService(repos.Revisions)
	knowledge := domainservices.NewKnowledgeService(repos.Knowledge, activity)
	training := domainservices.NewTrainingService(repos.Training, repos.Knowledge, activity, cfg.Training.PassThreshold)

	return &ServiceManager{
		Config:        cfg,
		DB:            db,
		Repositories:  repos,
		Cache:         cacheService,
		Tokens:        tokens,
		Users:         users,
		Projects:      projects,
		Documents:     documents,
		Templates:     templates,
		CodeReviews:   codeReviews,
		Reviews:       reviews,
		Revisions:     revisions,
		Activity:      activity,
		Knowledge:     knowledge,
		Training:      training,
		Notifications: notifications,
	}, nil
}

// HealthCheck verifies the database and cache connections.
func (sm *ServiceManager) HealthCheck(ctx context.Context) error {
	if err := sm.DB.Ping(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if sm.Cache != nil {
		if err := sm.Cache.Ping(ctx); err != nil {
			return fmt.Errorf("cache: %w", err)
		}
	}
	return nil
}

// Close releases the cache and database connections.
func (sm *ServiceManager) Close() error {
	if sm.Cache != nil {
		if err := sm.Cache.Close(); err != nil {
			return err
		}
	}
	return sm.DB.Close()
}
