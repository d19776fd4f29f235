package handler

import (
	"net/http"

	"github.com/zn-har/Bingo/internal/model"
	"github.com/zn-har/Bingo/internal/sse"
)

// Publisher receives domain events produced by the handlers
type Publisher interface {
	Publish(event model.Event)
}

// EventsHandler streams live game events over SSE
type EventsHandler struct {
	hub *sse.Hub
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(hub *sse.Hub) *EventsHandler {
	return &EventsHandler{hub: hub}
}

// Stream handles GET /api/v1/events. The optional player_id query parameter
// only labels the connection.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	playerID := model.PlayerID(r.URL.Query().Get("player_id"))
	sse.ServeSSE(w, r, h.hub, playerID)
}
