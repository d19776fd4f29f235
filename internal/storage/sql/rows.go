package sql

import (
	"time"

	"github.com/zn-har/Bingo/internal/model"
)

type playerRow struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Name      string    `gorm:"size:100;not null"`
	Phone     string    `gorm:"size:10;not null;uniqueIndex:idx_player_phone"`
	CreatedAt time.Time `gorm:"autoCreateTime:false"`
}

func (playerRow) TableName() string { return "players" }

func playerRowFromModel(p *model.Player) playerRow {
	return playerRow{ID: string(p.ID), Name: p.Name, Phone: p.Phone, CreatedAt: p.CreatedAt}
}

func (r playerRow) toModel() *model.Player {
	return &model.Player{ID: model.PlayerID(r.ID), Name: r.Name, Phone: r.Phone, CreatedAt: r.CreatedAt.UTC()}
}

type taskRow struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	Description string `gorm:"size:200;not null"`
	Position    int    `gorm:"not null;uniqueIndex:idx_task_position"`
}

func (taskRow) TableName() string { return "tasks" }

func (r taskRow) toModel() *model.Task {
	return &model.Task{ID: model.TaskID(r.ID), Description: r.Description, Position: r.Position}
}

// scanRow carries TargetKey only while duplicate targets are disallowed.
// NULLs never collide in a unique index, so idx_scan_scanner_target only
// constrains scans created under that rule.
type scanRow struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	ScannerID string    `gorm:"size:36;not null;index;uniqueIndex:idx_scan_scanner_task,priority:1;uniqueIndex:idx_scan_scanner_target,priority:1"`
	TargetID  string    `gorm:"size:36;not null"`
	TargetKey *string   `gorm:"size:36;uniqueIndex:idx_scan_scanner_target,priority:2"`
	TaskID    int64     `gorm:"not null;uniqueIndex:idx_scan_scanner_task,priority:2"`
	Timestamp time.Time `gorm:"not null"`
	Status    string    `gorm:"size:16;not null"`
}

func (scanRow) TableName() string { return "scans" }

func scanRowFromModel(s *model.ScanRecord, uniqueTarget bool) scanRow {
	row := scanRow{
		ID:        int64(s.ID),
		ScannerID: string(s.ScannerID),
		TargetID:  string(s.TargetID),
		TaskID:    int64(s.TaskID),
		Timestamp: s.Timestamp,
		Status:    string(s.Status),
	}
	if uniqueTarget {
		key := string(s.TargetID)
		row.TargetKey = &key
	}
	return row
}

func (r scanRow) toModel() *model.ScanRecord {
	return &model.ScanRecord{
		ID:        model.ScanID(r.ID),
		ScannerID: model.PlayerID(r.ScannerID),
		TargetID:  model.PlayerID(r.TargetID),
		TaskID:    model.TaskID(r.TaskID),
		Timestamp: r.Timestamp.UTC(),
		Status:    model.VerificationStatus(r.Status),
	}
}

type gameStateRow struct {
	ID                    int `gorm:"primaryKey;autoIncrement:false"`
	GameActive            bool
	MaxWinners            int
	AllowDuplicateTargets bool
	UpdatedAt             time.Time `gorm:"autoUpdateTime:false"`
}

func (gameStateRow) TableName() string { return "game_state" }

func gameStateRowFromModel(g *model.GameState) gameStateRow {
	return gameStateRow{
		ID:                    model.GameStateKey,
		GameActive:            g.GameActive,
		MaxWinners:            g.MaxWinners,
		AllowDuplicateTargets: g.AllowDuplicateTargets,
		UpdatedAt:             g.UpdatedAt,
	}
}

func (r gameStateRow) toModel() *model.GameState {
	return &model.GameState{
		GameActive:            r.GameActive,
		MaxWinners:            r.MaxWinners,
		AllowDuplicateTargets: r.AllowDuplicateTargets,
		UpdatedAt:             r.UpdatedAt.UTC(),
	}
}

type winnerRow struct {
	ID       int64     `gorm:"primaryKey;autoIncrement"`
	PlayerID string    `gorm:"size:36;not null;uniqueIndex:idx_winner_player_type,priority:1"`
	WinType  string    `gorm:"size:16;not null;uniqueIndex:idx_winner_player_type,priority:2"`
	WonAt    time.Time `gorm:"not null;index"`
}

func (winnerRow) TableName() string { return "winners" }

func (r winnerRow) toModel() *model.Winner {
	return &model.Winner{
		ID:       model.WinnerID(r.ID),
		PlayerID: model.PlayerID(r.PlayerID),
		WinType:  model.WinType(r.WinType),
		WonAt:    r.WonAt.UTC(),
	}
}

// allRows lists every table for migration
func allRows() []any {
	return []any{&playerRow{}, &taskRow{}, &scanRow{}, &gameStateRow{}, &winnerRow{}}
}
