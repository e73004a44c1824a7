// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"moim/internal/ai"
	"moim/internal/cache"
	"moim/internal/config"
	"moim/internal/database"
	"moim/internal/middleware"
	"moim/internal/models"
	"moim/internal/notifications"
	"moim/internal/repository"
	"moim/internal/service"
	"moim/internal/storage"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config *config.Config
	db     *gorm.DB
	redis  *redis.Client

	userRepo repository.UserRepository

	feedSvc         *service.FeedService
	postSvc         *service.PostService
	commentSvc      *service.CommentService
	attachmentSvc   *service.AttachmentService
	applicationSvc  *service.ApplicationService
	notificationSvc *service.NotificationService
	viewSvc         *service.ViewService
	aiSvc           *service.AIService

	notifier *notifications.Notifier
	hub      *notifications.Hub
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	store, err := storage.NewDiskStorage(cfg.UploadDir, cfg.PublicBaseURL)
	if err != nil {
		return nil, fmt.Errorf("object storage init failed: %w", err)
	}

	return NewServerWithDeps(cfg, db, redisClient, store), nil
}

// NewServerWithDeps wires a server from already constructed external
// collaborators. Tests use it to substitute sqlite, miniredis or an
// in-memory store.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, store storage.ObjectStorage) *Server {
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	studyRepo := repository.NewStudyRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	viewRepo := repository.NewViewRepository(db)
	draftRepo := repository.NewAIDraftRepository(db)

	s := &Server{
		config:   cfg,
		db:       db,
		redis:    redisClient,
		userRepo: userRepo,
		hub:      notifications.NewHub(),
	}
	if redisClient != nil {
		s.notifier = notifications.NewNotifier(redisClient)
	}

	dispatcher := notifications.NewDispatcher(s.hub, s.notifier)
	s.notificationSvc = service.NewNotificationService(notificationRepo, dispatcher)

	s.feedSvc = service.NewFeedService(postRepo, studyRepo, attachmentRepo)
	s.postSvc = service.NewPostService(postRepo, studyRepo, attachmentRepo, s.notificationSvc, store)
	s.commentSvc = service.NewCommentService(commentRepo, postRepo)
	s.attachmentSvc = service.NewAttachmentService(attachmentRepo, postRepo, store)
	s.applicationSvc = service.NewApplicationService(studyRepo, postRepo, s.notificationSvc, cfg.AllowReapplyAfterReject)
	s.viewSvc = service.NewViewService(viewRepo)

	aiClient := ai.NewClient(cfg.AIBaseURL, cfg.AIAPIKey, cfg.AIModel, cfg.AIRequestTimeout)
	s.aiSvc = service.NewAIService(aiClient, draftRepo)

	return s
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(requestid.New())
	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	prometheus := fiberprometheus.New("moim")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Uploaded attachment blobs.
	app.Static("/media", s.config.UploadDir)
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	api.Get("/", s.HealthCheck)

	// Public reads: optional auth resolves per-user liked flags.
	public := api.Group("", middleware.OptionalAuth(s.config.JWTSecret))
	public.Get("/posts/list", s.ListFeed)
	public.Get("/posts/:id/comments", s.ListComments)
	public.Get("/posts/:id/attachments", s.ListAttachments)
	public.Get("/posts/:id", s.GetPost)
	public.Get("/rankings/weekly", s.WeeklyRanking)

	// View counting is open; a read is a read either way.
	api.Post("/posts/:id/views", s.RecordView)

	protected := api.Group("", middleware.AuthRequired(s.config.JWTSecret))

	posts := protected.Group("/posts")
	posts.Post("/", middleware.RateLimit(s.redis, 10, time.Minute, "create_post"), s.CreatePost)
	posts.Post("/:id/like", s.ToggleLike)
	posts.Post("/:id/comments", middleware.RateLimit(s.redis, 20, time.Minute, "create_comment"), s.CreateComment)
	posts.Patch("/:id/comments/:commentId", s.UpdateComment)
	posts.Delete("/:id/comments/:commentId", s.DeleteComment)
	posts.Post("/:id/attachments", middleware.RateLimit(s.redis, 20, time.Minute, "upload"), s.UploadAttachment)
	posts.Delete("/:id/attachments/:attachmentId", s.DeleteAttachment)
	posts.Get("/:id/applications", s.ListApplicationsByPost)
	posts.Patch("/:id", s.UpdatePost)
	posts.Delete("/:id", s.DeletePost)

	applications := protected.Group("/applications")
	applications.Post("/", middleware.RateLimit(s.redis, 10, time.Minute, "apply"), s.Apply)
	applications.Get("/mine", s.ListMyApplications)
	applications.Post("/:id/approve", s.ApproveApplication)
	applications.Post("/:id/reject", s.RejectApplication)

	notificationsGroup := protected.Group("/notifications")
	notificationsGroup.Get("/", s.ListNotifications)
	notificationsGroup.Get("/unread-count", s.UnreadNotificationCount)
	notificationsGroup.Post("/read-all", s.MarkAllNotificationsRead)
	notificationsGroup.Post("/:id/read", s.MarkNotificationRead)

	aiGroup := protected.Group("/ai")
	aiGroup.Post("/study-plans", middleware.RateLimit(s.redis, 5, time.Minute, "ai_plan"), s.GenerateStudyPlan)
	aiGroup.Post("/summaries", middleware.RateLimit(s.redis, 5, time.Minute, "ai_summary"), s.Summarize)
	aiGroup.Get("/drafts", s.ListDrafts)
	aiGroup.Get("/drafts/:id", s.GetDraft)
	aiGroup.Delete("/drafts/:id", s.DeleteDraft)

	ws := api.Group("/ws", middleware.AuthRequired(s.config.JWTSecret))
	ws.Get("/notifications", s.NotificationSocket())
}

// HealthCheck handles health check requests
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(fiber.Map{
		"message": "moim",
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// App builds the configured Fiber application without listening. Start
// uses it; handler tests drive it through app.Test.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "Moim Board API",
		BodyLimit: 20 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// StartNotificationWiring subscribes the hub to the Redis notification
// channels. No-op without a Redis client; the hub then only reaches
// clients connected to this instance.
func (s *Server) StartNotificationWiring(ctx context.Context) {
	if s.notifier == nil {
		return
	}
	go func() {
		if err := s.hub.StartWiring(ctx, s.notifier); err != nil {
			log.Printf("failed to start notification hub wiring: %v", err)
		}
	}()
}

// Start starts the server
func (s *Server) Start() error {
	app := s.App()
	s.StartNotificationWiring(context.Background())

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.hub != nil {
		if err := s.hub.Shutdown(ctx); err != nil {
			log.Printf("error shutting down notification hub: %v", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
