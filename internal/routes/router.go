package routes

import (
	"net/http"

	"dojo-admin/internal/app"
	"dojo-admin/internal/delivery/http/handler"
	"dojo-admin/internal/logger"
	"dojo-admin/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const jsonBodyLimit = 1 << 20

func SetupRoutes(application *app.App) *gin.Engine {
	cfg := application.Config
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Order: recovery, request ID, logging, security headers, CORS, request size limit, general rate limit
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware(cfg.IsProduction()))
	router.Use(middleware.CORSMiddleware(&cfg.CORS))
	router.Use(middleware.RequestSizeLimitMiddleware(jsonBodyLimit, cfg.App.MaxUploadBytes))
	router.Use(middleware.RateLimitMiddleware(cfg.RateLimit.GeneralRPS, cfg.RateLimit.GeneralBurst))

	router.GET("/health", func(c *gin.Context) {
		if err := application.DB.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"message": "Database connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Service is running",
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	userHandler := handler.NewUserHandler(application.Users)
	paymentHandler := handler.NewPaymentHandler(application.Payments)
	documentHandler := handler.NewDocumentHandler(application.Documents)
	announcementHandler := handler.NewAnnouncementHandler(application.Announcements)
	activityHandler := handler.NewActivityHandler(application.Activities)
	trackingHandler := handler.NewTrackingHandler(application.Tracking)
	notificationHandler := handler.NewNotificationHandler(application.Notifications, application.Reminders)

	v1 := router.Group("/api/v1")
	{
		public := v1.Group("")
		public.Use(middleware.RateLimitMiddleware(cfg.RateLimit.AuthRPS, cfg.RateLimit.AuthBurst))
		{
			userHandler.RegisterAuthRoutes(public)
		}

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(application.Tokens))
		{
			userHandler.RegisterRoutes(protected)
			paymentHandler.RegisterRoutes(protected)
			documentHandler.RegisterRoutes(protected)
			announcementHandler.RegisterRoutes(protected)
			activityHandler.RegisterRoutes(protected)
			trackingHandler.RegisterRoutes(protected)
			notificationHandler.RegisterRoutes(protected)
		}
	}

	logger.Info("All routes initialized")
	return router
}
