package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/docsmait/docsmait/internal/app/config"
	"github.com/docsmait/docsmait/internal/app/handlers"
	"github.com/docsmait/docsmait/internal/app/middleware"
	appservices "github.com/docsmait/docsmait/internal/app/services"
	"github.com/docsmait/docsmait/internal/infrastructure/database/models"
	"github.com/docsmait/docsmait/pkg/logger"
)

// Server hosts the HTTP API.
type Server struct {
	config   *config.Config
	logger   *logger.Logger
	router   *gin.Engine
	server   *http.Server
	services *appservices.ServiceManager
}

// New creates the server and wires all routes.
func New(cfg *config.Config, log *logger.Logger, sm *appservices.ServiceManager) *Server {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		config:   cfg,
		logger:   log,
		router:   router,
		services: sm,
	}

	router.Use(s.corsMiddleware())
	router.Use(s.loggingMiddleware())

	s.setupRoutes()

	return s
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.config.Server.Host, s.config.Server.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting server", "addr", addr, "environment", s.config.Environment)

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Router returns the underlying HTTP handler.
func (s *Server) Router() http.Handler {
	return s.router
}

// Shutdown gracefully stops the server and closes shared resources.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")

	if err := s.services.Close(); err != nil {
		s.logger.Error("failed to close services", "error", err)
	}

	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthCheck)

	base := handlers.NewBaseHandler()
	sm := s.services

	authHandler := handlers.NewAuthHandler(base, sm.Users)
	userHandler := handlers.NewUserHandler(base, sm.Users)
	projectHandler := handlers.NewProjectHandler(base, sm.Projects)
	documentHandler := handlers.NewDocumentHandler(base, sm.Documents, sm.Revisions)
	templateHandler := handlers.NewTemplateHandler(base, sm.Templates, sm.Revisions)
	codeReviewHandler := handlers.NewCodeReviewHandler(base, sm.CodeReviews, sm.Revisions)
	reviewHandler := handlers.NewReviewHandler(base, sm.Reviews)
	knowledgeHandler := handlers.NewKnowledgeHandler(base, sm.Knowledge)
	trainingHandler := handlers.NewTrainingHandler(base, sm.Training)
	notificationHandler := handlers.NewNotificationHandler(base, sm.Notifications)
	activityHandler := handlers.NewActivityHandler(base, sm.Activity)

	v1 := s.router.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	authed := v1.Group("")
	authed.Use(middleware.AuthMiddleware(sm.Tokens, sm.Users))
	{
		me := authed.Group("/auth")
		{
			me.GET("/me", authHandler.Me)
			me.PUT("/me", authHandler.UpdateProfile)
			me.POST("/change-password", authHandler.ChangePassword)
		}

		admin := authed.Group("/users")
		admin.Use(middleware.AdminRequiredMiddleware())
		{
			admin.GET("", userHandler.List)
			admin.POST("/:id/deactivate", userHandler.Deactivate)
		}

		projects := authed.Group("/projects")
		{
			projects.POST("", projectHandler.Create)
			projects.GET("", projectHandler.List)
			projects.GET("/:id", projectHandler.Get)
			projects.DELETE("/:id", projectHandler.Delete)
			projects.POST("/:id/members", projectHandler.AddMember)
			projects.DELETE("/:id/members/:userId", projectHandler.RemoveMember)
			projects.GET("/:id/documents", documentHandler.List)
			projects.GET("/:id/code-reviews", codeReviewHandler.List)
			projects.GET("/:id/activity", activityHandler.ByProject)
		}

		documents := authed.Group("/documents")
		{
			documents.POST("", documentHandler.Create)
			documents.GET("/:id", documentHandler.Get)
			documents.PUT("/:id", documentHandler.UpdateMeta)
			documents.PUT("/:id/content", documentHandler.Edit)
			documents.DELETE("/:id", documentHandler.Delete)
			documents.GET("/:id/revisions", documentHandler.History)
			documents.GET("/:id/revisions/:revision", documentHandler.GetRevision)
			documents.GET("/:id/activity", activityHandler.ByEntity(models.EntityDocument))
			s.reviewRoutes(documents, reviewHandler, models.EntityDocument)
		}

		templates := authed.Group("/templates")
		{
			templates.POST("", templateHandler.Create)
			templates.GET("", templateHandler.List)
			templates.GET("/:id", templateHandler.Get)
			templates.PUT("/:id/content", templateHandler.Edit)
			templates.DELETE("/:id", templateHandler.Delete)
			templates.GET("/:id/revisions", templateHandler.History)
			templates.GET("/:id/activity", activityHandler.ByEntity(models.EntityTemplate))
			s.reviewRoutes(templates, reviewHandler, models.EntityTemplate)
		}

		codeReviews := authed.Group("/code-reviews")
		{
			codeReviews.POST("", codeReviewHandler.Create)
			codeReviews.GET("/:id", codeReviewHandler.Get)
			codeReviews.PUT("/:id/diff", codeReviewHandler.UpdateDiff)
			codeReviews.DELETE("/:id", codeReviewHandler.Delete)
			codeReviews.GET("/:id/revisions", codeReviewHandler.History)
			codeReviews.GET("/:id/activity", activityHandler.ByEntity(models.EntityCodeReview))
			s.reviewRoutes(codeReviews, reviewHandler, models.EntityCodeReview)
		}

		authed.GET("/reviews/assigned", reviewHandler.AssignedToMe)

		knowledge := authed.Group("/knowledge/collections")
		{
			knowledge.POST("", knowledgeHandler.CreateCollection)
			knowledge.GET("", knowledgeHandler.ListCollections)
			knowledge.DELETE("/:id", knowledgeHandler.DeleteCollection)
			knowledge.POST("/:id/documents", knowledgeHandler.AddDocument)
			knowledge.GET("/:id/documents", knowledgeHandler.ListDocuments)
			knowledge.POST("/:id/search", knowledgeHandler.Search)
			knowledge.GET("/:id/assessments", trainingHandler.CollectionRecords)
		}

		training := authed.Group("/training")
		{
			training.POST("/assessments", trainingHandler.RecordAssessment)
			training.GET("/assessments", trainingHandler.MyRecords)
			training.GET("/assessments/latest", trainingHandler.Latest)
		}

		notifications := authed.Group("/notifications")
		{
			notifications.GET("", notificationHandler.List)
			notifications.GET("/unread-count", notificationHandler.UnreadCount)
			notifications.POST("/:id/read", notificationHandler.MarkRead)
			notifications.POST("/read-all", notificationHandler.MarkAllRead)
		}

		authed.GET("/activity", activityHandler.Mine)
	}
}

// reviewRoutes nests the shared review workflow under an entity group.
func (s *Server) reviewRoutes(group *gin.RouterGroup, h *handlers.ReviewHandler, entityType models.EntityType) {
	group.GET("/:id/review", h.Summary(entityType))
	group.GET("/:id/review/status", h.Status(entityType))
	group.POST("/:id/review/request", h.Request(entityType))
	group.POST("/:id/review/decision", h.Decide(entityType))
	group.POST("/:id/review/comments", h.Comment(entityType))
	group.GET("/:id/review/trail", h.Trail(entityType))
}

func (s *Server) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := s.services.HealthCheck(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"environment": s.config.Environment,
		"timestamp":   time.Now().UTC(),
	})
}

func (s *Server) corsMiddleware() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     s.config.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		s.logger.Info("request",
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
		)
	}
}
