package api

import (
	"net/http"

	"searchsync-backend/internal/auth/delivery"
	authUsecase "searchsync-backend/internal/auth/usecase"
	syncDelivery "searchsync-backend/internal/sync/delivery"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, authUc authUsecase.AuthUsecase, syncHandler *syncDelivery.SyncHandler) {
	authHandler := delivery.NewAuthHandler(authUc)

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
		}

		// Callback endpoint: authenticated by correlation-token match only,
		// the remote API has no session credential
		api.POST("/sync/callback/:uid", syncHandler.Callback)

		// Batch control routes (protected)
		syncRoutes := api.Group("/sync")
		syncRoutes.Use(delivery.AuthMiddleware(authUc))
		{
			syncRoutes.POST("/initiate", syncHandler.Initiate)
			syncRoutes.POST("/process", syncHandler.ProcessNext)
			syncRoutes.GET("/validate", syncHandler.Validate)
			syncRoutes.POST("/test", syncHandler.TestConnection)
			syncRoutes.GET("/notice", syncHandler.Notice)
			syncRoutes.POST("/notice/dismiss", syncHandler.DismissNotice)
		}

		// Record routes (protected)
		records := api.Group("/records")
		records.Use(delivery.AuthMiddleware(authUc))
		{
			records.POST("/:id/sync", syncHandler.SyncRecord)
			records.DELETE("/:id/sync", syncHandler.DeleteRecord)
			records.GET("/:id/status", syncHandler.RecordStatus)
		}

		// Settings routes (protected) - Runtime configuration
		settings := api.Group("/settings")
		settings.Use(delivery.AuthMiddleware(authUc))
		{
			settings.GET("/sync", GetSyncSettings)
			settings.PUT("/sync", UpdateSyncSettings)
		}
	}
}
