package app

import (
	"context"
	"net/http"
	"time"

	"learnlink_backend/internal/config"
	"learnlink_backend/internal/controller"
	"learnlink_backend/internal/repository"
	"learnlink_backend/internal/service"
	"learnlink_backend/pkg/configwatcher"
	"learnlink_backend/pkg/database"
	"learnlink_backend/pkg/logger"
	"learnlink_backend/pkg/monitoring"
	"learnlink_backend/pkg/tracing"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// App wires configuration, storage, services and the HTTP server together.
type App struct {
	Config *config.Config
	DB     *gorm.DB
	Redis  *redis.Client

	server         *http.Server
	tracerProvider *sdktrace.TracerProvider

	authController         *controller.AuthController
	resourceController     *controller.ResourceController
	notificationController *controller.NotificationController
	lessonController       *controller.LessonController
	discussionController   *controller.DiscussionController
	userController         *controller.UserController
	dashboardController    *controller.DashboardController
	healthController       *controller.HealthController
}

func New(configPath string) (*App, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger.InitLogger(cfg.Server.Mode)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		return nil, err
	}

	redisClient, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		// notification counts fall back to the database
		logger.Log.Warn("redis unavailable, unread counts will not be cached", zap.Error(err))
		redisClient = nil
	}

	var tracerProvider *sdktrace.TracerProvider
	if cfg.Tracing.Enabled {
		tracerProvider, err = tracing.InitTracer("learnlink-backend", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Warn("tracing disabled", zap.Error(err))
		}
	}

	monitoring.Init()

	app := &App{
		Config:         cfg,
		DB:             db,
		Redis:          redisClient,
		tracerProvider: tracerProvider,
	}
	app.wire()

	configwatcher.WatchConfig(configPath, func(newCfg *config.Config) {
		logger.Log.Info("configuration reloaded", zap.String("storage", newCfg.Storage.Type))
		app.Config.RateLimit = newCfg.RateLimit
		app.Config.CORS = newCfg.CORS
	})

	return app, nil
}

func (a *App) wire() {
	users := repository.NewUserRepository(a.DB)
	resources := repository.NewResourceRepository(a.DB)
	likes := repository.NewLikeRepository(a.DB)
	histories := repository.NewReadingHistoryRepository(a.DB)
	notifications := repository.NewNotificationRepository(a.DB)
	lessons := repository.NewLessonRepository(a.DB)
	discussions := repository.NewDiscussionRepository(a.DB)
	activity := repository.NewActivityRepository(a.DB)
	recommendations := repository.NewRecommendationRepository(a.DB)
	stats := repository.NewStatsRepository(a.DB)

	storage := service.NewStorageService(a.Config)
	notificationService := service.NewNotificationService(notifications, a.Redis)
	resourceService := service.NewResourceService(resources, users, activity, storage, notificationService)
	engagementService := service.NewEngagementService(likes, resources, histories, activity)
	lessonService := service.NewLessonService(lessons, resources, likes, notificationService)
	discussionService := service.NewDiscussionService(discussions, likes, notificationService)
	authService := service.NewAuthService(users, activity, a.Config)
	userService := service.NewUserService(users, activity, notificationService)
	dashboardService := service.NewDashboardService(stats, activity, histories, recommendations,
		users, resources, lessons, discussions, likes)

	a.authController = controller.NewAuthController(authService)
	a.resourceController = controller.NewResourceController(resourceService, engagementService)
	a.notificationController = controller.NewNotificationController(notificationService)
	a.lessonController = controller.NewLessonController(lessonService, engagementService)
	a.discussionController = controller.NewDiscussionController(discussionService, engagementService)
	a.userController = controller.NewUserController(userService)
	a.dashboardController = controller.NewDashboardController(dashboardService)
	a.healthController = controller.NewHealthController(a.DB, a.Redis)
}

// Run starts the HTTP server and blocks until it exits.
func (a *App) Run() error {
	router := a.setupRouter()

	a.server = &http.Server{
		Addr:         ":" + a.Config.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Log.Info("server starting", zap.String("port", a.Config.Server.Port))
	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and closes dependencies.
func (a *App) Shutdown(ctx context.Context) error {
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			return err
		}
	}
	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			logger.Log.Warn("tracer shutdown failed", zap.Error(err))
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			logger.Log.Warn("redis close failed", zap.Error(err))
		}
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Log.Warn("database close failed", zap.Error(err))
		}
	}
	return nil
}
