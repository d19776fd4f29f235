package model

import "time"

// WinnerID uniquely identifies a win record
type WinnerID int64

// WinType names the pattern a player completed
type WinType string

const (
	WinRow      WinType = "row"
	WinColumn   WinType = "column"
	WinDiagonal WinType = "diagonal"
	WinFull     WinType = "full"

	// WinBingo is the single consolidated type awarded under the line-count scheme
	WinBingo WinType = "bingo"
)

// Winner is a recorded win. Unique per (player, win type).
type Winner struct {
	ID       WinnerID
	PlayerID PlayerID
	WinType  WinType
	WonAt    time.Time
}
