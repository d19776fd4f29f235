package response

import (
	"time"

	"github.com/zn-har/Bingo/internal/model"
	"github.com/zn-har/Bingo/internal/services/game"
	"github.com/zn-har/Bingo/internal/services/scan"
)

// Player represents a player in API responses
type Player struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	QRCodeURL string    `json:"qr_code_url,omitempty"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player, qrCodeURL string) Player {
	return Player{
		ID:        string(p.ID),
		Name:      p.Name,
		Phone:     p.Phone,
		CreatedAt: p.CreatedAt,
		QRCodeURL: qrCodeURL,
	}
}

// RegisterResponse is the response for the registration endpoint
type RegisterResponse struct {
	Player  Player `json:"player"`
	Created bool   `json:"created"`
}

// Task represents a task in API responses
type Task struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
	Position    int    `json:"position"`
}

// TaskFromModel converts a model.Task
func TaskFromModel(t *model.Task) Task {
	return Task{
		ID:          int64(t.ID),
		Description: t.Description,
		Position:    t.Position,
	}
}

// TasksFromModel converts a task list
func TasksFromModel(tasks []*model.Task) []Task {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = TaskFromModel(t)
	}
	return out
}

// Cell is one square of a board, in display order
type Cell struct {
	TaskID            int64  `json:"task_id"`
	Description       string `json:"description"`
	Position          int    `json:"position"`
	CanonicalPosition int    `json:"canonical_position"`
	Completed         bool   `json:"completed"`
	IsFreeSpace       bool   `json:"is_free_space"`
}

// Line is a completed line of the board
type Line struct {
	Kind      string `json:"kind"`
	Index     int    `json:"index"`
	Positions []int  `json:"positions"`
}

// Progress summarises a board's evaluation
type Progress struct {
	Completed      []int    `json:"completed"`
	CompletedLines int      `json:"completed_lines"`
	Lines          []Line   `json:"lines"`
	WinTypes       []string `json:"win_types"`
	Bingo          bool     `json:"bingo"`
}

// ProgressFromModel converts model.Progress
func ProgressFromModel(p model.Progress) Progress {
	lines := make([]Line, len(p.Lines))
	for i, l := range p.Lines {
		lines[i] = Line{
			Kind:      string(l.Kind),
			Index:     l.Index,
			Positions: append([]int(nil), l.Positions[:]...),
		}
	}
	completed := p.Completed
	if completed == nil {
		completed = []int{}
	}
	return Progress{
		Completed:      completed,
		CompletedLines: p.CompletedLines,
		Lines:          lines,
		WinTypes:       winTypeStrings(p.WinTypes),
		Bingo:          p.Bingo,
	}
}

// Board represents a player's board
type Board struct {
	PlayerID string   `json:"player_id"`
	Cells    []Cell   `json:"cells"`
	Progress Progress `json:"progress"`
}

// BoardFromModel converts model.Board
func BoardFromModel(b *model.Board) Board {
	cells := make([]Cell, len(b.Cells))
	for i, c := range b.Cells {
		cells[i] = Cell{
			TaskID:            int64(c.TaskID),
			Description:       c.Description,
			Position:          c.Position,
			CanonicalPosition: c.CanonicalPosition,
			Completed:         c.Completed,
			IsFreeSpace:       c.IsFreeSpace,
		}
	}
	return Board{
		PlayerID: string(b.PlayerID),
		Cells:    cells,
		Progress: ProgressFromModel(b.Progress),
	}
}

// Scan represents a scan record
type Scan struct {
	ID        int64     `json:"id"`
	ScannerID string    `json:"scanner_id"`
	TargetID  string    `json:"target_id"`
	TaskID    int64     `json:"task_id"`
	Timestamp time.Time `json:"timestamp"`
	Status    string    `json:"status"`
}

// ScanFromModel converts model.ScanRecord
func ScanFromModel(s *model.ScanRecord) Scan {
	return Scan{
		ID:        int64(s.ID),
		ScannerID: string(s.ScannerID),
		TargetID:  string(s.TargetID),
		TaskID:    int64(s.TaskID),
		Timestamp: s.Timestamp,
		Status:    string(s.Status),
	}
}

// ScansFromModel converts a scan list
func ScansFromModel(scans []*model.ScanRecord) []Scan {
	out := make([]Scan, len(scans))
	for i, s := range scans {
		out[i] = ScanFromModel(s)
	}
	return out
}

// ScanResult is the response after an accepted scan
type ScanResult struct {
	Scan            Scan     `json:"scan"`
	ScannerName     string   `json:"scanner_name"`
	TargetName      string   `json:"target_name"`
	TaskDescription string   `json:"task_description"`
	Progress        Progress `json:"progress"`
	NewWins         []string `json:"new_wins"`
	GameActive      bool     `json:"game_active"`
	WinnerCount     int      `json:"winner_count"`
}

// ScanResultFromModel converts scan.Result
func ScanResultFromModel(r *scan.Result) ScanResult {
	return ScanResult{
		Scan:            ScanFromModel(r.Scan),
		ScannerName:     r.Scanner.Name,
		TargetName:      r.Target.Name,
		TaskDescription: r.Task.Description,
		Progress:        ProgressFromModel(r.Progress),
		NewWins:         winTypeStrings(r.NewWins),
		GameActive:      r.GameActive,
		WinnerCount:     r.WinnerCount,
	}
}

// GameState represents the singleton game state
type GameState struct {
	GameActive            bool      `json:"game_active"`
	MaxWinners            int       `json:"max_winners"`
	WinnerCount           int       `json:"winner_count"`
	AllowDuplicateTargets bool      `json:"allow_duplicate_targets"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// GameStateFromStatus converts game.Status
func GameStateFromStatus(s *game.Status) GameState {
	return GameState{
		GameActive:            s.State.GameActive,
		MaxWinners:            s.State.MaxWinners,
		WinnerCount:           s.WinnerCount,
		AllowDuplicateTargets: s.State.AllowDuplicateTargets,
		UpdatedAt:             s.State.UpdatedAt,
	}
}

// Winner represents a recorded win
type Winner struct {
	ID         int64     `json:"id"`
	PlayerID   string    `json:"player_id"`
	PlayerName string    `json:"player_name"`
	WinType    string    `json:"win_type"`
	WonAt      time.Time `json:"won_at"`
}

// WinnersFromEntries converts the game service's winner list
func WinnersFromEntries(entries []game.WinnerEntry) []Winner {
	out := make([]Winner, len(entries))
	for i, e := range entries {
		out[i] = Winner{
			ID:         int64(e.Winner.ID),
			PlayerID:   string(e.Winner.PlayerID),
			PlayerName: e.PlayerName,
			WinType:    string(e.Winner.WinType),
			WonAt:      e.Winner.WonAt,
		}
	}
	return out
}

// Health is the body of the health endpoint
type Health struct {
	Status string `json:"status"`
}

func winTypeStrings(types []model.WinType) []string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}
