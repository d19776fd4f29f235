package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/zn-har/Bingo/internal/api/request"
	"github.com/zn-har/Bingo/internal/api/response"
	"github.com/zn-har/Bingo/internal/dependencies/clock"
	"github.com/zn-har/Bingo/internal/metrics"
	"github.com/zn-har/Bingo/internal/model"
	"github.com/zn-har/Bingo/internal/services/game"
	"github.com/zn-har/Bingo/internal/services/task"
)

// GameHandler handles game-state, winner and task endpoints
type GameHandler struct {
	game      game.ServiceInterface
	tasks     task.ServiceInterface
	publisher Publisher
	metrics   *metrics.Metrics
	clock     clock.Clock
	logger    *slog.Logger
}

// NewGameHandler creates a new game handler
func NewGameHandler(
	game game.ServiceInterface,
	tasks task.ServiceInterface,
	publisher Publisher,
	metrics *metrics.Metrics,
	clock clock.Clock,
	logger *slog.Logger,
) *GameHandler {
	return &GameHandler{
		game:      game,
		tasks:     tasks,
		publisher: publisher,
		metrics:   metrics,
		clock:     clock,
		logger:    logger,
	}
}

// GetState handles GET /api/v1/game-state
func (h *GameHandler) GetState(w http.ResponseWriter, r *http.Request) {
	status, err := h.game.Status(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameStateFromStatus(status))
}

// UpdateState handles PATCH /api/v1/game-state
func (h *GameHandler) UpdateState(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateGameStateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.IsEmpty() {
		WriteError(w, NewInvalidRequestError("at least one of game_active, max_winners, allow_duplicate_targets is required"))
		return
	}

	status, err := h.game.Update(r.Context(), model.GameStateUpdate{
		GameActive:            req.GameActive,
		MaxWinners:            req.MaxWinners,
		AllowDuplicateTargets: req.AllowDuplicateTargets,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	h.metrics.SetGameState(status.State.GameActive, status.WinnerCount)
	h.publisher.Publish(model.Event{
		Type:      model.EventGameStateChanged,
		Timestamp: h.clock.Now(),
		Payload:   *status.State,
	})

	response.JSON(w, http.StatusOK, response.GameStateFromStatus(status))
}

// Winners handles GET /api/v1/winners
func (h *GameHandler) Winners(w http.ResponseWriter, r *http.Request) {
	entries, err := h.game.Winners(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.WinnersFromEntries(entries))
}

// Tasks handles GET /api/v1/tasks
func (h *GameHandler) Tasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.tasks.List(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.TasksFromModel(tasks))
}
