package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mcoot/ladder/internal/api"
	"github.com/mcoot/ladder/internal/config"
	"github.com/mcoot/ladder/internal/factory"
	"github.com/mcoot/ladder/internal/services/auth"
	"github.com/mcoot/ladder/internal/services/game"
	redisstorage "github.com/mcoot/ladder/internal/storage/redis"
	sqlitestorage "github.com/mcoot/ladder/internal/storage/sqlite"
)

// How often expired sessions are dropped
const sessionJanitorInterval = 10 * time.Minute

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	app, err := factory.New(factoryConfig(cfg, logger))
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("failed to close storage", slog.String("error", err.Error()))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loadQuestions(ctx, app, cfg.QuestionsPath, logger)

	go app.AuthService.RunJanitor(ctx, sessionJanitorInterval)

	router := api.NewRouter(api.RouterConfig{
		Logger:          logger,
		AuthService:     app.AuthService,
		PlayerService:   app.PlayerService,
		QuestionService: app.QuestionService,
		GameController:  app.GameController,
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Port = cfg.Port
	server := api.NewServer(router, serverConfig, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", cfg.StorageType),
		slog.Bool("auto_credit", cfg.AutoCredit),
	)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	if err := server.Shutdown(context.Background()); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}

func factoryConfig(cfg *config.Config, logger *slog.Logger) factory.Config {
	fc := factory.Config{
		AuthConfig:  auth.Config{SessionDuration: cfg.SessionTTL},
		GameConfig:  game.Config{AutoCredit: cfg.AutoCredit},
		Logger:      logger,
		StorageType: cfg.StorageType,
	}

	switch cfg.StorageType {
	case factory.StorageTypeRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		redisCfg.FinishedGameTTL = cfg.FinishedGameTTL
		fc.RedisConfig = &redisCfg
	case factory.StorageTypeSQLite:
		fc.SQLiteConfig = &sqlitestorage.Config{Path: cfg.SQLitePath}
	}
	return fc
}

// loadQuestions fills the pool from the questions file. The server still
// starts without it, but games cannot be created until every level has a
// question.
func loadQuestions(ctx context.Context, app *factory.App, path string, logger *slog.Logger) {
	if path != "" {
		if _, err := app.QuestionService.LoadFromFile(ctx, path); err != nil {
			logger.Warn("could not load questions",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
		}
	}

	missing, err := app.QuestionService.MissingLevels(ctx)
	if err != nil {
		logger.Warn("could not check question pool", slog.String("error", err.Error()))
		return
	}
	if len(missing) > 0 {
		logger.Warn("question pool is incomplete, games cannot start",
			slog.Any("missing_levels", missing),
		)
	}
}
