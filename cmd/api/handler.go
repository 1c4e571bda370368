package api

import (
	authUsecase "searchsync-backend/internal/auth/usecase"
	recordRepo "searchsync-backend/internal/record/repository"
	syncDelivery "searchsync-backend/internal/sync/delivery"
	syncUsecasePkg "searchsync-backend/internal/sync/usecase"
	"searchsync-backend/pkg/config"
	"searchsync-backend/pkg/searchapi"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	authUsecase authUsecase.AuthUsecase
	syncHandler *syncDelivery.SyncHandler
	config      *config.Config
}

func NewHandler(authUc authUsecase.AuthUsecase, syncUc syncUsecasePkg.SyncUsecase, settingsRepo recordRepo.SettingsRepository, client *searchapi.Client, cfg *config.Config) *Handler {
	syncHandler := syncDelivery.NewSyncHandler(syncUc, settingsRepo, client)

	return &Handler{
		authUsecase: authUc,
		syncHandler: syncHandler,
		config:      cfg,
	}
}

func (h *Handler) Start(addr string) error {
	r := gin.Default()
	gin.SetMode(gin.ReleaseMode)

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Setup routes
	SetupRoutes(r, h.authUsecase, h.syncHandler)

	return r.Run(addr)
}
