package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/hwangtech/linebot-backend/internal/api"
	adminapi "github.com/hwangtech/linebot-backend/internal/api/admin"
	webhookapi "github.com/hwangtech/linebot-backend/internal/api/webhook"
	"github.com/hwangtech/linebot-backend/internal/config"
	"github.com/hwangtech/linebot-backend/internal/integration/line"
	"github.com/hwangtech/linebot-backend/internal/integration/pipeline"
	"github.com/hwangtech/linebot-backend/internal/repository"
	"github.com/hwangtech/linebot-backend/internal/usecase/chat"
)

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
		zap.String("history_backend", cfg.HistoryCfg.Backend),
	)

	// Conversation store: the persistence choice is explicit config.
	var store chat.ConversationStore
	var db *pgxpool.Pool

	switch cfg.HistoryCfg.Backend {
	case config.HistoryBackendPostgres:
		db, err = setupDatabase(ctx, cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("setup database: %w", err)
		}

		logger.Info("Running database migrations")
		if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
			db.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("Database migrations completed successfully")

		store = repository.NewConversationPostgres(db, cfg.HistoryCfg.MaxTurns)
	default:
		store = repository.NewConversationMemory(cfg.HistoryCfg.MaxTurns, cfg.HistoryCfg.IdleTTL)
	}
	logger.Info("Conversation store initialized")

	// External service connectors (with mock support)
	var pipelineConnector chat.PipelineConnector
	var lineConnector chat.LineConnector
	var quotaConnector adminapi.QuotaConnector

	if cfg.EnableMocks {
		logger.Info("Using mock connectors for external services")
		pipelineConnector = pipeline.NewMockConnector(logger)
		lineMock := line.NewMockConnector(logger)
		lineConnector = lineMock
		quotaConnector = lineMock
	} else {
		logger.Info("Using real connectors for external services")
		pipelineConnector = pipeline.NewConnector(cfg.PipelineCfg, logger)
		lineConn := line.NewConnector(cfg.LineCfg, logger)
		lineConnector = lineConn
		quotaConnector = lineConn
	}

	// Use case
	chatUC := chat.NewUsecase(
		store,
		pipelineConnector,
		lineConnector,
		cfg.HistoryCfg.FallbackMessage,
		logger,
	)
	logger.Info("Use cases initialized")

	// API handlers
	webhookHandler := webhookapi.NewHandler(chatUC, cfg.LineCfg.ChannelSecret)
	adminHandler := adminapi.NewHandler(chatUC, quotaConnector)
	logger.Info("API handlers initialized")

	router := api.SetupRouter(webhookHandler, adminHandler, logger)
	logger.Info("HTTP router configured")

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server: server,
		db:     db,
		logger: logger,
	}, nil
}

// BuildIndexer wires the pieces the document indexer CLI needs.
func BuildIndexer() (*pipeline.Connector, *zap.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building document indexer",
		zap.String("environment", cfg.Environment),
		zap.String("pipeline_url", cfg.PipelineCfg.Url),
	)

	return pipeline.NewConnector(cfg.PipelineCfg, logger), logger, nil
}
