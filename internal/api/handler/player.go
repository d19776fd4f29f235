package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/zn-har/Bingo/internal/api/request"
	"github.com/zn-har/Bingo/internal/api/response"
	"github.com/zn-har/Bingo/internal/dependencies/clock"
	"github.com/zn-har/Bingo/internal/metrics"
	"github.com/zn-har/Bingo/internal/model"
	"github.com/zn-har/Bingo/internal/services/board"
	"github.com/zn-har/Bingo/internal/services/player"
)

// PlayerHandler handles player-related endpoints
type PlayerHandler struct {
	players   player.ServiceInterface
	boards    board.ServiceInterface
	publisher Publisher
	metrics   *metrics.Metrics
	clock     clock.Clock
	logger    *slog.Logger
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(
	players player.ServiceInterface,
	boards board.ServiceInterface,
	publisher Publisher,
	metrics *metrics.Metrics,
	clock clock.Clock,
	logger *slog.Logger,
) *PlayerHandler {
	return &PlayerHandler{
		players:   players,
		boards:    boards,
		publisher: publisher,
		metrics:   metrics,
		clock:     clock,
		logger:    logger,
	}
}

// Register handles POST /api/v1/players. A phone number that is already
// registered returns the existing player with 200.
func (h *PlayerHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	p, created, err := h.players.Register(r.Context(), req.Name, req.Phone)
	if err != nil {
		WriteError(w, err)
		return
	}
	h.metrics.PlayerRegistered(created)

	qr, err := h.players.QRDataURL(p)
	if err != nil {
		h.logger.Error("failed to render qr code",
			slog.String("player_id", string(p.ID)),
			slog.String("error", err.Error()),
		)
		WriteError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		h.publisher.Publish(model.Event{
			Type:      model.EventPlayerRegistered,
			Timestamp: h.clock.Now(),
			PlayerID:  p.ID,
			Payload:   *p,
		})
	}

	response.JSON(w, status, response.RegisterResponse{
		Player:  response.PlayerFromModel(p, qr),
		Created: created,
	})
}

// Get handles GET /api/v1/players/{id}
func (h *PlayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.players.Get(r.Context(), playerIDFromPath(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	qr, err := h.players.QRDataURL(p)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerFromModel(p, qr))
}

// QRCode handles GET /api/v1/players/{id}/qr.png
func (h *PlayerHandler) QRCode(w http.ResponseWriter, r *http.Request) {
	png, err := h.players.QRCode(r.Context(), playerIDFromPath(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.PNG(w, png)
}

// Board handles GET /api/v1/players/{id}/board
func (h *PlayerHandler) Board(w http.ResponseWriter, r *http.Request) {
	b, err := h.boards.GetBoard(r.Context(), playerIDFromPath(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.BoardFromModel(b))
}

// Scans handles GET /api/v1/players/{id}/scans
func (h *PlayerHandler) Scans(w http.ResponseWriter, r *http.Request) {
	scans, err := h.players.Scans(r.Context(), playerIDFromPath(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ScansFromModel(scans))
}

func playerIDFromPath(r *http.Request) model.PlayerID {
	return model.PlayerID(mux.Vars(r)["id"])
}
