package http

import (
	"github.com/gin-gonic/gin"
	"github.com/quoteflow/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, verifier TokenVerifier) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))
	router.Use(RateLimitMiddleware(cfg.RateLimit.PerIP, cfg.RateLimit.Burst))

	router.GET("/health", handler.HealthCheck)

	v1 := router.Group("/api/v1")
	v1.Use(AuthMiddleware(verifier))
	{
		similar := v1.Group("/similar-quotes")
		{
			similar.POST("", handler.FindSimilarQuotes)
			similar.POST("/batch", handler.FindSimilarQuotesBatch)
		}

		requests := v1.Group("/requests")
		{
			requests.POST("", handler.CreateRequest)
			requests.GET("", handler.ListRequests)
			requests.GET("/:id", handler.GetRequest)
			requests.POST("/:id/close", handler.CloseRequest)
			requests.POST("/:id/quotes", handler.SubmitQuote)
		}

		v1.PATCH("/quotes/:id/status", handler.UpdateQuoteStatus)

		notifications := v1.Group("/notifications")
		{
			notifications.GET("", handler.ListNotifications)
			notifications.POST("/:id/read", handler.MarkNotificationRead)
			notifications.DELETE("", handler.ClearNotifications)
		}
	}

	return router
}
