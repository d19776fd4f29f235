package sse

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/zn-har/Bingo/internal/model"
)

// message is the JSON body of every event
type message struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	PlayerID  string    `json:"player_id,omitempty"`
	Data      any       `json:"data"`
}

type scanData struct {
	ScanID         int64  `json:"scan_id"`
	ScannerID      string `json:"scanner_id"`
	TargetID       string `json:"target_id"`
	TaskID         int64  `json:"task_id"`
	CompletedLines int    `json:"completed_lines"`
}

type winData struct {
	PlayerName string   `json:"player_name"`
	WinTypes   []string `json:"win_types"`
}

type gameEndedData struct {
	WinnerCount int `json:"winner_count"`
	MaxWinners  int `json:"max_winners"`
}

type gameStateData struct {
	GameActive            bool `json:"game_active"`
	MaxWinners            int  `json:"max_winners"`
	AllowDuplicateTargets bool `json:"allow_duplicate_targets"`
}

type playerData struct {
	Name string `json:"name"`
}

// Broadcaster turns domain events into SSE messages on the hub
type Broadcaster struct {
	hub    *Hub
	logger *slog.Logger
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hub *Hub, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hub:    hub,
		logger: logger.With(slog.String("component", "sse-broadcaster")),
	}
}

// Publish encodes an event and sends it to every client
func (b *Broadcaster) Publish(event model.Event) {
	data, err := encodePayload(event.Payload)
	if err != nil {
		b.logger.Error("sse failed to encode event",
			slog.String("type", string(event.Type)),
			slog.String("error", err.Error()))
		return
	}
	body, err := json.Marshal(message{
		Type:      string(event.Type),
		Timestamp: event.Timestamp,
		PlayerID:  string(event.PlayerID),
		Data:      data,
	})
	if err != nil {
		b.logger.Error("sse failed to encode event",
			slog.String("type", string(event.Type)),
			slog.String("error", err.Error()))
		return
	}
	b.hub.BroadcastEvent(string(event.Type), string(body))
}

// encodePayload maps model payloads onto their wire shape
func encodePayload(payload any) (any, error) {
	switch p := payload.(type) {
	case model.ScanAcceptedPayload:
		return scanData{
			ScanID:         int64(p.Scan.ID),
			ScannerID:      string(p.Scan.ScannerID),
			TargetID:       string(p.Scan.TargetID),
			TaskID:         int64(p.Scan.TaskID),
			CompletedLines: p.CompletedLines,
		}, nil
	case model.WinRecordedPayload:
		types := make([]string, len(p.WinTypes))
		for i, t := range p.WinTypes {
			types[i] = string(t)
		}
		return winData{PlayerName: p.PlayerName, WinTypes: types}, nil
	case model.GameEndedPayload:
		return gameEndedData{WinnerCount: p.WinnerCount, MaxWinners: p.MaxWinners}, nil
	case model.GameState:
		return gameStateData{
			GameActive:            p.GameActive,
			MaxWinners:            p.MaxWinners,
			AllowDuplicateTargets: p.AllowDuplicateTargets,
		}, nil
	case model.Player:
		return playerData{Name: p.Name}, nil
	case nil:
		return struct{}{}, nil
	default:
		return payload, nil
	}
}
