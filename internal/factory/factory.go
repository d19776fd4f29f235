package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/zn-har/Bingo/internal/config"
	"github.com/zn-har/Bingo/internal/dependencies/clock"
	"github.com/zn-har/Bingo/internal/dependencies/idgen"
	"github.com/zn-har/Bingo/internal/dependencies/qrcode"
	"github.com/zn-har/Bingo/internal/metrics"
	"github.com/zn-har/Bingo/internal/model"
	"github.com/zn-har/Bingo/internal/services/board"
	"github.com/zn-har/Bingo/internal/services/game"
	"github.com/zn-har/Bingo/internal/services/ledger"
	"github.com/zn-har/Bingo/internal/services/player"
	"github.com/zn-har/Bingo/internal/services/scan"
	"github.com/zn-har/Bingo/internal/services/scoring"
	"github.com/zn-har/Bingo/internal/services/task"
	"github.com/zn-har/Bingo/internal/sse"
	"github.com/zn-har/Bingo/internal/storage"
	"github.com/zn-har/Bingo/internal/storage/memory"
	redisstorage "github.com/zn-har/Bingo/internal/storage/redis"
	sqlstorage "github.com/zn-har/Bingo/internal/storage/sql"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeSQL    = "sql"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock clock.Clock
	IDs   idgen.Generator
	QR    qrcode.Encoder

	// Services
	BoardService   *board.Service
	ScoringService *scoring.Service
	LedgerService  *ledger.Service
	TaskService    *task.Service
	PlayerService  *player.Service
	GameService    *game.Service
	ScanController *scan.Controller

	// Live events and observability
	Hub         *sse.Hub
	Broadcaster *sse.Broadcaster
	Metrics     *metrics.Metrics

	game   GameConfig
	logger *slog.Logger
}

// GameConfig holds the rules the services are built with
type GameConfig struct {
	WinScheme             model.WinScheme
	FreePosition          int
	ShuffleBoards         bool
	MaxWinners            int
	AllowDuplicateTargets bool
	SeedTasks             bool
}

// DefaultGameConfig returns the festival defaults
func DefaultGameConfig() GameConfig {
	return GameConfig{
		WinScheme:             model.WinSchemeLines,
		FreePosition:          board.DefaultConfig().FreePosition,
		ShuffleBoards:         true,
		MaxWinners:            model.DefaultMaxWinners,
		AllowDuplicateTargets: model.DefaultAllowDuplicateTargets,
		SeedTasks:             true,
	}
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "sql")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLConfig holds database settings (required if StorageType is "sql")
	SQLConfig *sqlstorage.Config
	// Game holds the game rules; the zero value means DefaultGameConfig
	Game *GameConfig
	// QRSize is the edge length of QR images in pixels (optional)
	QRSize int
}

// ConfigFrom maps the server configuration onto a factory Config
func ConfigFrom(c *config.Config, logger *slog.Logger) Config {
	return Config{
		Logger:      logger,
		StorageType: c.Storage.Type,
		RedisConfig: &redisstorage.Config{
			URL:           c.Storage.Redis.URL,
			PoolSize:      c.Storage.Redis.PoolSize,
			MinIdleConns:  c.Storage.Redis.MinIdleConns,
			LedgerRetries: c.Storage.Redis.LedgerRetries,
		},
		SQLConfig: &sqlstorage.Config{
			Driver:          c.Storage.SQL.Driver,
			DSN:             c.Storage.SQL.DSN,
			MaxIdleConns:    c.Storage.SQL.MaxIdleConns,
			MaxOpenConns:    c.Storage.SQL.MaxOpenConns,
			ConnMaxLifetime: c.Storage.SQL.ConnMaxLifetime,
			LogLevel:        c.Storage.SQL.LogLevel,
		},
		Game: &GameConfig{
			WinScheme:             model.WinScheme(c.Game.WinScheme),
			FreePosition:          c.Game.FreePosition,
			ShuffleBoards:         c.Game.ShuffleBoards,
			MaxWinners:            c.Game.MaxWinners,
			AllowDuplicateTargets: c.Game.AllowDuplicateTargets,
			SeedTasks:             c.Game.SeedTasks,
		},
		QRSize: c.Game.QRSize,
	}
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
	case StorageTypeSQL:
		if cfg.SQLConfig == nil {
			return nil, errors.New("SQLConfig required when StorageType is sql")
		}
		sqlStore, err := sqlstorage.New(*cfg.SQLConfig, logger.With(slog.String("component", "gorm")))
		if err != nil {
			return nil, err
		}
		store = sqlStore
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be 'memory', 'redis' or 'sql'", storageType)
	}

	gameCfg := DefaultGameConfig()
	if cfg.Game != nil {
		gameCfg = *cfg.Game
	}

	return newWithDependencies(store, clock.New(), idgen.New(), qrcode.New(cfg.QRSize), gameCfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	ids idgen.Generator,
	qr qrcode.Encoder,
	gameCfg GameConfig,
	logger *slog.Logger,
) *App {
	component := func(name string) *slog.Logger {
		return logger.With(slog.String("component", name))
	}

	// Create services
	scoringService := scoring.New(scoring.Config{
		Scheme:       gameCfg.WinScheme,
		FreePosition: gameCfg.FreePosition,
	})
	boardService := board.New(store, scoringService, board.Config{
		FreePosition: gameCfg.FreePosition,
		Shuffle:      gameCfg.ShuffleBoards,
	}, component("board"))
	ledgerService := ledger.New(store, clk, component("ledger"))
	taskService := task.New(store, component("task"))
	playerService := player.New(store, ids, qr, clk, component("player"))
	gameService := game.New(store, clk, component("game"))
	scanController := scan.NewController(store, boardService, scoringService, ledgerService, clk, component("scan"))

	hub := sse.NewHub(logger)

	return &App{
		Storage:        store,
		Clock:          clk,
		IDs:            ids,
		QR:             qr,
		BoardService:   boardService,
		ScoringService: scoringService,
		LedgerService:  ledgerService,
		TaskService:    taskService,
		PlayerService:  playerService,
		GameService:    gameService,
		ScanController: scanController,
		Hub:            hub,
		Broadcaster:    sse.NewBroadcaster(hub, logger),
		Metrics:        metrics.New(),
		game:           gameCfg,
		logger:         logger,
	}
}

// Bootstrap seeds the default tasks when enabled and the task table is
// empty, then writes the initial game state if none exists.
func (a *App) Bootstrap(ctx context.Context) error {
	if a.game.SeedTasks {
		if _, err := a.TaskService.SeedDefaults(ctx); err != nil {
			return fmt.Errorf("seed tasks: %w", err)
		}
	}

	if err := a.GameService.Init(ctx, a.game.MaxWinners, a.game.AllowDuplicateTargets); err != nil {
		return fmt.Errorf("init game state: %w", err)
	}

	status, err := a.GameService.Status(ctx)
	if err != nil {
		return fmt.Errorf("read game state: %w", err)
	}
	a.Metrics.SetGameState(status.State.GameActive, status.WinnerCount)

	a.logger.Info("application bootstrapped",
		slog.String("win_scheme", string(a.ScoringService.Scheme())),
		slog.Int("free_position", a.BoardService.FreePosition()),
		slog.Bool("game_active", status.State.GameActive),
		slog.Int("winner_count", status.WinnerCount),
	)
	return nil
}

// Close stops the event hub and releases storage connections
func (a *App) Close() error {
	a.Hub.Close()
	if closer, ok := a.Storage.(storage.Closer); ok {
		return closer.Close()
	}
	return nil
}
