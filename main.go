package main

import (
	"log"
	"os"

	api "searchsync-backend/cmd/api"
	authUsecase "searchsync-backend/internal/auth/usecase"
	recorddomain "searchsync-backend/internal/record/domain"
	recordRepo "searchsync-backend/internal/record/repository"
	syncUsecase "searchsync-backend/internal/sync/usecase"
	"searchsync-backend/pkg/config"
	"searchsync-backend/pkg/database"
	"searchsync-backend/pkg/renderer"
	"searchsync-backend/pkg/searchapi"
	"searchsync-backend/pkg/translation"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(&recorddomain.Record{}, &recorddomain.SyncState{}, &recordRepo.Setting{}, &translation.RecordTranslation{}); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repositories (dependency injection)
	recordRepository := recordRepo.NewRecordRepository(db)
	syncStateRepository := recordRepo.NewSyncStateRepository(db)
	settingsRepository := recordRepo.NewSettingsRepository(db)

	// Remote document API client follows runtime settings updates
	api.InitRuntimeConfig(cfg.SearchBaseURL, cfg.SearchToken)
	client := searchapi.NewClientWithGetters(api.GetRuntimeSearchBaseURL, api.GetRuntimeSearchToken, cfg.RequestTimeout)

	// Collaborators
	docRenderer := renderer.NewFieldRenderer(cfg.SiteURL)
	translationProvider := translation.NewService(db)

	// Initialize use cases (dependency injection)
	authUsecaseInstance := authUsecase.NewAuthUsecase(cfg)
	syncUsecaseInstance := syncUsecase.NewSyncUsecase(recordRepository, syncStateRepository, client, docRenderer, translationProvider, cfg)

	// Initialize HTTP handler
	handler := api.NewHandler(authUsecaseInstance, syncUsecaseInstance, settingsRepository, client, cfg)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	log.Printf("Server starting on port %s", port)
	if err := handler.Start(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
