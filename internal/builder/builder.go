package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/campusbuddy/chat-backend/internal/api"
	chatapi "github.com/campusbuddy/chat-backend/internal/api/chat"
	ingestapi "github.com/campusbuddy/chat-backend/internal/api/ingest"
	"github.com/campusbuddy/chat-backend/internal/config"
	"github.com/campusbuddy/chat-backend/internal/entity"
	"github.com/campusbuddy/chat-backend/internal/integration/openai"
	"github.com/campusbuddy/chat-backend/internal/pipeline"
	"github.com/campusbuddy/chat-backend/internal/pkg/validator"
	"github.com/campusbuddy/chat-backend/internal/repository"
	"github.com/campusbuddy/chat-backend/internal/usecase/chat"
	"github.com/campusbuddy/chat-backend/internal/usecase/ingest"
	"github.com/campusbuddy/chat-backend/internal/watcher"
)

// modelClient is the full surface the pipeline needs from the hosted API,
// satisfied by both the real and the mock connector.
type modelClient interface {
	ChatCompletion(ctx context.Context, messages []entity.ChatMessage) (string, error)
	CreateEmbeddings(ctx context.Context, texts []string) ([][]float64, error)
}

func Build() (*App, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
	)

	// Setup database connection
	db, err := setupDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}

	// Run database migrations
	logger.Info("Running database migrations")
	if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	// Initialize repositories
	turnRepo := repository.NewTurnPostgres(db)
	logger.Info("Repositories initialized")

	// Initialize the model connector (with mock support)
	var model modelClient
	if cfg.EnableMocks {
		logger.Info("Using mock connector for the model service")
		model = openai.NewMockConnector(logger)
	} else {
		logger.Info("Using real connector for the model service")
		model = openai.NewConnector(cfg.OpenAICfg, logger)
	}

	// Initialize validators
	uploadValidator := validator.NewUploadValidator(cfg.DocumentCfg)
	logger.Info("Validators initialized")

	// Initialize the chain holder and use cases
	holder := pipeline.NewHolder()

	ingestUC := ingest.NewUsecase(cfg, model, model, uploadValidator, holder, logger)
	chatUC := chat.NewUsecase(holder, model, turnRepo, logger)
	logger.Info("Use cases initialized")

	// Restore the pipeline from disk if possible; a failure here is logged
	// and the service starts not-ready instead of crashing.
	if err := ingestUC.LoadOrRebuild(ctx); err != nil {
		logger.Warn("initial pipeline load failed, starting not-ready", zap.Error(err))
	}

	// Setup API handlers
	chatHandler := chatapi.NewHandler(chatUC, ingestUC)
	ingestHandler := ingestapi.NewHandler(ingestUC, cfg.DocumentCfg.MaxFileSize)
	logger.Info("API handlers initialized")

	// Setup router
	router := api.SetupRouter(chatHandler, ingestHandler, logger)
	logger.Info("HTTP router configured")

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Setup the source-document watcher
	var docWatcher *watcher.Watcher
	if cfg.WatcherCfg.Enabled {
		docWatcher, err = watcher.New(cfg.DocumentCfg.Path, cfg.WatcherCfg.Debounce, ingestUC, logger)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("setup document watcher: %w", err)
		}
		logger.Info("Document watcher configured", zap.String("path", cfg.DocumentCfg.Path))
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server:  server,
		db:      db,
		watcher: docWatcher,
		logger:  logger,
	}, nil
}
