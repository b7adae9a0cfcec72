package app

import (
	"time"

	"learnlink_backend/internal/middleware"
	"learnlink_backend/internal/model"
	"learnlink_backend/pkg/monitoring"
	"learnlink_backend/pkg/security"
	"learnlink_backend/pkg/tracing"

	"learnlink_backend/docs"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) setupRouter() *gin.Engine {
	docs.SwaggerInfo.BasePath = "/api"

	gin.SetMode(a.Config.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(security.CORS(a.Config.CORS.AllowedOrigins))
	router.Use(security.Secure())
	if a.Config.RateLimit.MaxRequests > 0 {
		router.Use(security.RateLimiter(a.Config.RateLimit.MaxRequests,
			time.Duration(a.Config.RateLimit.WindowMinutes)*time.Minute))
	}
	router.Use(monitoring.MetricsMiddleware())
	if a.Config.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	if a.Config.Storage.Type == "local" {
		router.Static("/uploads", a.Config.Storage.LocalPath)
	}

	api := router.Group("/api")
	api.GET("/health", a.healthController.Health)

	auth := api.Group("/auth")
	{
		auth.POST("/register", a.authController.Register)
		auth.POST("/login", a.authController.Login)
		auth.POST("/logout", middleware.AuthMiddleware(a.Config), a.authController.Logout)
		auth.GET("/profile", middleware.AuthMiddleware(a.Config), a.authController.Profile)
		auth.PUT("/profile", middleware.AuthMiddleware(a.Config), a.authController.UpdateProfile)
		auth.PUT("/password", middleware.AuthMiddleware(a.Config), a.authController.ChangePassword)
	}

	resources := api.Group("/resources")
	{
		resources.GET("", middleware.TryAuthMiddleware(a.Config), a.resourceController.List)
		resources.GET("/:id", middleware.TryAuthMiddleware(a.Config), a.resourceController.Get)
		resources.POST("/:id/view", middleware.TryAuthMiddleware(a.Config), a.resourceController.View)

		authed := resources.Group("", middleware.AuthMiddleware(a.Config))
		{
			authed.POST("", middleware.RoleMiddleware(model.Contributor, model.Manager), a.resourceController.Submit)
			authed.PUT("/:id", a.resourceController.Update)
			authed.DELETE("", a.resourceController.BatchDelete)
			authed.POST("/:id/submit", a.resourceController.SubmitForReview)
			authed.GET("/:id/download", a.resourceController.Download)
			authed.POST("/:id/like", a.resourceController.Like)
			authed.POST("/:id/rate", a.resourceController.Rate)
			authed.POST("/:id/bookmark", a.resourceController.Bookmark)
			authed.PUT("/:id/progress", a.resourceController.Progress)

			review := authed.Group("", middleware.RoleMiddleware(model.Manager))
			{
				review.GET("/pending", a.resourceController.Pending)
				review.POST("/:id/approve", a.resourceController.Approve)
				review.POST("/:id/reject", a.resourceController.Reject)
			}
		}
	}

	api.GET("/reading-history", middleware.AuthMiddleware(a.Config), a.resourceController.History)

	notifications := api.Group("/notifications", middleware.AuthMiddleware(a.Config))
	{
		notifications.GET("", a.notificationController.List)
		notifications.GET("/unread-count", a.notificationController.UnreadCount)
		notifications.POST("/:id/read", a.notificationController.MarkRead)
		notifications.POST("/read-all", a.notificationController.MarkAllRead)
	}

	lessons := api.Group("/lessons")
	{
		lessons.GET("", middleware.TryAuthMiddleware(a.Config), a.lessonController.List)
		lessons.GET("/:id", middleware.TryAuthMiddleware(a.Config), a.lessonController.Get)

		authed := lessons.Group("", middleware.AuthMiddleware(a.Config))
		{
			authed.POST("", a.lessonController.Create)
			authed.PUT("/:id", a.lessonController.Update)
			authed.DELETE("/:id", a.lessonController.Delete)
			authed.POST("/:id/like", a.lessonController.Like)
		}
	}

	discussions := api.Group("/discussions")
	{
		discussions.GET("", middleware.TryAuthMiddleware(a.Config), a.discussionController.List)
		discussions.GET("/popular-tags", a.discussionController.PopularTags)
		discussions.GET("/:id", middleware.TryAuthMiddleware(a.Config), a.discussionController.Get)

		authed := discussions.Group("", middleware.AuthMiddleware(a.Config))
		{
			authed.POST("", a.discussionController.Create)
			authed.PUT("/:id", a.discussionController.Update)
			authed.DELETE("/:id", a.discussionController.Delete)
			authed.POST("/:id/replies", a.discussionController.Reply)
			authed.DELETE("/replies/:id", a.discussionController.DeleteReply)
			authed.POST("/:id/best-answer", a.discussionController.MarkBestAnswer)
			authed.POST("/:id/like", a.discussionController.Like)
		}
	}

	api.GET("/dashboard", middleware.AuthMiddleware(a.Config), a.dashboardController.Dashboard)
	api.GET("/profile", middleware.AuthMiddleware(a.Config), a.dashboardController.Profile)
	api.POST("/recommendations/refresh", middleware.AuthMiddleware(a.Config), a.dashboardController.RefreshRecommendations)

	admin := api.Group("/admin", middleware.AuthMiddleware(a.Config), middleware.RoleMiddleware(model.Manager))
	{
		admin.GET("/reports", a.dashboardController.Report)
		admin.GET("/users", a.userController.List)
		admin.POST("/users", a.userController.Add)
		admin.DELETE("/users", a.userController.BatchDelete)
		admin.GET("/users/:id", a.userController.Get)
		admin.PUT("/users/:id", a.userController.Edit)
		admin.DELETE("/users/:id", a.userController.Delete)
		admin.PUT("/users/:id/role", a.userController.ChangeRole)
		admin.POST("/users/:id/suspend", a.userController.Suspend)
		admin.POST("/users/:id/reactivate", a.userController.Reactivate)
	}

	return router
}
