package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/mcoot/dominotrain/internal/dependencies/clock"
	"github.com/mcoot/dominotrain/internal/dependencies/random"
	"github.com/mcoot/dominotrain/internal/model"
	"github.com/mcoot/dominotrain/internal/push"
	"github.com/mcoot/dominotrain/internal/services/catalog"
	"github.com/mcoot/dominotrain/internal/services/game"
	"github.com/mcoot/dominotrain/internal/services/ledger"
	"github.com/mcoot/dominotrain/internal/services/orchestrator"
	"github.com/mcoot/dominotrain/internal/services/reconcile"
	"github.com/mcoot/dominotrain/internal/storage"
	"github.com/mcoot/dominotrain/internal/storage/memory"
	redisstorage "github.com/mcoot/dominotrain/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Catalog        *catalog.Catalog
	Ledger         *ledger.Service
	Reconciler     *reconcile.Engine
	Orchestrator   *orchestrator.Service
	GameController *game.Controller

	// Push delivery
	HubManager  *push.HubManager
	Broadcaster *push.Broadcaster
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// Defaults fill zero fields of new sessions' configs
	Defaults model.SessionConfig
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	return newWithDependencies(store, clk, rnd, cfg.Defaults, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, defaults model.SessionConfig, logger *slog.Logger) *App {
	// Create services
	cat := catalog.New()
	ledgerService := ledger.New(cat, rnd, logger)
	reconciler := reconcile.New(logger)
	orchestratorService := orchestrator.New(clk, logger)
	gameController := game.NewController(store, cat, ledgerService, reconciler, orchestratorService, defaults, clk, rnd, logger)

	// Events flow from the controller to the session hubs
	hubManager := push.NewHubManager(logger)
	broadcaster := push.NewBroadcaster(hubManager, logger)
	gameController.SetPublisher(broadcaster)

	return &App{
		Storage:        store,
		Clock:          clk,
		Random:         rnd,
		Catalog:        cat,
		Ledger:         ledgerService,
		Reconciler:     reconciler,
		Orchestrator:   orchestratorService,
		GameController: gameController,
		HubManager:     hubManager,
		Broadcaster:    broadcaster,
	}
}

// Close releases the storage connection, if it holds one
func (a *App) Close() error {
	a.HubManager.CloseAll()
	if closer, ok := a.Storage.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
