package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/zn-har/Bingo/internal/api/apierr"
	"github.com/zn-har/Bingo/internal/api/handler"
	"github.com/zn-har/Bingo/internal/api/middleware"
	"github.com/zn-har/Bingo/internal/api/response"
	"github.com/zn-har/Bingo/internal/dependencies/clock"
	"github.com/zn-har/Bingo/internal/metrics"
	basemiddleware "github.com/zn-har/Bingo/internal/middleware"
	"github.com/zn-har/Bingo/internal/services/board"
	"github.com/zn-har/Bingo/internal/services/game"
	"github.com/zn-har/Bingo/internal/services/player"
	"github.com/zn-har/Bingo/internal/services/scan"
	"github.com/zn-har/Bingo/internal/services/task"
	"github.com/zn-har/Bingo/internal/sse"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	Clock          clock.Clock
	PlayerService  player.ServiceInterface
	BoardService   board.ServiceInterface
	ScanController scan.ControllerInterface
	GameService    game.ServiceInterface
	TaskService    task.ServiceInterface
	Hub            *sse.Hub
	Publisher      handler.Publisher
	Metrics        *metrics.Metrics

	// ScanLimiter throttles POST /scans per client IP; nil disables it
	ScanLimiter    *basemiddleware.IPRateLimiter
	AllowedOrigins []string
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	playerHandler := handler.NewPlayerHandler(cfg.PlayerService, cfg.BoardService, cfg.Publisher, cfg.Metrics, cfg.Clock, cfg.Logger)
	scanHandler := handler.NewScanHandler(cfg.ScanController, cfg.Publisher, cfg.Metrics, cfg.Logger)
	gameHandler := handler.NewGameHandler(cfg.GameService, cfg.TaskService, cfg.Publisher, cfg.Metrics, cfg.Clock, cfg.Logger)
	eventsHandler := handler.NewEventsHandler(cfg.Hub)

	// Create middleware
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Player routes
	api.HandleFunc("/players", playerHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/players/{id}", playerHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/players/{id}/qr.png", playerHandler.QRCode).Methods(http.MethodGet)
	api.HandleFunc("/players/{id}/board", playerHandler.Board).Methods(http.MethodGet)
	api.HandleFunc("/players/{id}/scans", playerHandler.Scans).Methods(http.MethodGet)

	// Scan routes
	submit := http.Handler(http.HandlerFunc(scanHandler.Submit))
	if cfg.ScanLimiter != nil {
		submit = middleware.ScanRateLimit(cfg.ScanLimiter, cfg.Metrics, cfg.Logger)(submit)
	}
	api.Handle("/scans", submit).Methods(http.MethodPost)
	api.HandleFunc("/scans/{id}", scanHandler.UpdateStatus).Methods(http.MethodPatch)

	// Game routes
	api.HandleFunc("/game-state", gameHandler.GetState).Methods(http.MethodGet)
	api.HandleFunc("/game-state", gameHandler.UpdateState).Methods(http.MethodPatch)
	api.HandleFunc("/winners", gameHandler.Winners).Methods(http.MethodGet)
	api.HandleFunc("/tasks", gameHandler.Tasks).Methods(http.MethodGet)

	// Live events
	api.HandleFunc("/events", eventsHandler.Stream).Methods(http.MethodGet)

	// Health check endpoint
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	// Prometheus scrape endpoint
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics.Handler()).Methods(http.MethodGet)
	}

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		apierr.WriteError(w, apierr.NewNotFoundError())
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		apierr.WriteError(w, apierr.NewMethodNotAllowedError())
	})

	// CORS wraps the router so preflight requests never reach route matching
	return middleware.CORS(cfg.AllowedOrigins)(r)
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}
