package model

import "time"

// EventType identifies the type of event
type EventType string

const (
	EventScanAccepted     EventType = "scan"
	EventWinRecorded      EventType = "win"
	EventGameEnded        EventType = "game-ended"
	EventGameStateChanged EventType = "game-state"
	EventPlayerRegistered EventType = "player-registered"
)

// Event is the base structure for all events
type Event struct {
	Type      EventType
	Timestamp time.Time
	PlayerID  PlayerID // The player who triggered or is affected
	Payload   any      // Type-specific data
}

// ScanAcceptedPayload contains data for accepted scan events
type ScanAcceptedPayload struct {
	Scan           ScanRecord
	CompletedLines int
}

// WinRecordedPayload contains data for win events
type WinRecordedPayload struct {
	PlayerName string
	WinTypes   []WinType
}

// GameEndedPayload contains data for game ended events
type GameEndedPayload struct {
	WinnerCount int
	MaxWinners  int
}
