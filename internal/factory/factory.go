package factory

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/ladder/internal/dependencies/clock"
	"github.com/mcoot/ladder/internal/dependencies/random"
	"github.com/mcoot/ladder/internal/services/auth"
	"github.com/mcoot/ladder/internal/services/game"
	"github.com/mcoot/ladder/internal/services/player"
	"github.com/mcoot/ladder/internal/services/pool"
	"github.com/mcoot/ladder/internal/services/questions"
	"github.com/mcoot/ladder/internal/storage"
	"github.com/mcoot/ladder/internal/storage/memory"
	redisstorage "github.com/mcoot/ladder/internal/storage/redis"
	sqlitestorage "github.com/mcoot/ladder/internal/storage/sqlite"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeSQLite = "sqlite"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	QuestionService *questions.Service
	PoolService     *pool.Service
	PlayerService   *player.Service
	AuthService     *auth.Service
	GameController  *game.Controller
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// GameConfig holds the payout policy
	GameConfig game.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "sqlite")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLiteConfig holds the database location (required if StorageType is "sqlite")
	SQLiteConfig *sqlitestorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := newStorage(cfg)
	if err != nil {
		return nil, err
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	// Use default auth config if not provided
	authCfg := cfg.AuthConfig
	if authCfg.SessionDuration == 0 {
		authCfg = auth.DefaultConfig()
	}

	return newWithDependencies(store, clk, rnd, authCfg, cfg.GameConfig, logger), nil
}

func newStorage(cfg Config) (storage.Storage, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		return redisstorage.New(*cfg.RedisConfig)
	case StorageTypeSQLite:
		if cfg.SQLiteConfig == nil {
			return nil, errors.New("SQLiteConfig required when StorageType is sqlite")
		}
		return sqlitestorage.New(*cfg.SQLiteConfig)
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be 'memory', 'redis' or 'sqlite'", storageType)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	authCfg auth.Config,
	gameCfg game.Config,
	logger *slog.Logger,
) *App {
	questionService := questions.New(store, logger)
	poolService := pool.New(store, rnd)
	playerService := player.New(store)
	authService := auth.New(store, clk, authCfg, logger)
	gameController := game.NewController(store, poolService, clk, rnd, logger, gameCfg)

	return &App{
		Storage:         store,
		Clock:           clk,
		Random:          rnd,
		QuestionService: questionService,
		PoolService:     poolService,
		PlayerService:   playerService,
		AuthService:     authService,
		GameController:  gameController,
	}
}

// Close releases the storage backend's connections, if it holds any
func (a *App) Close() error {
	if c, ok := a.Storage.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
