package storage

import (
	"context"

	"github.com/zn-har/Bingo/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// Player operations
	CreatePlayer(ctx context.Context, player *model.Player) error // ErrPhoneTaken if the phone is in use
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	GetPlayerByPhone(ctx context.Context, phone string) (*model.Player, error)

	// Task operations
	SaveTasks(ctx context.Context, tasks []*model.Task) error // assigns IDs to tasks with a zero ID
	ListTasks(ctx context.Context) ([]*model.Task, error)     // ordered by position
	GetTask(ctx context.Context, id model.TaskID) (*model.Task, error)

	// Scan operations
	//
	// CreateScan assigns the scan ID and enforces uniqueness of (scanner, task)
	// and, when uniqueTarget is set, of (scanner, target). Violations are
	// reported as ErrDuplicateTask and ErrDuplicateTarget. The game must still
	// be active when the record is written, otherwise ErrGameEnded.
	CreateScan(ctx context.Context, scan *model.ScanRecord, uniqueTarget bool) error
	GetScan(ctx context.Context, id model.ScanID) (*model.ScanRecord, error)
	ListScansByScanner(ctx context.Context, scannerID model.PlayerID) ([]*model.ScanRecord, error) // newest first
	UpdateScanStatus(ctx context.Context, id model.ScanID, status model.VerificationStatus) error
	HasScannedTarget(ctx context.Context, scannerID, targetID model.PlayerID) (bool, error)
	HasCompletedTask(ctx context.Context, scannerID model.PlayerID, taskID model.TaskID) (bool, error)
	CompletedPositions(ctx context.Context, scannerID model.PlayerID) ([]int, error) // canonical positions

	// Game state operations
	//
	// GetGameState never fails with not-found: an uninitialised game reads as
	// model.NewGameState with a zero UpdatedAt.
	GetGameState(ctx context.Context) (*model.GameState, error)
	SaveGameState(ctx context.Context, state *model.GameState) error
	InitGameState(ctx context.Context, state *model.GameState) (bool, error) // false if already initialised

	// Winner operations
	ListWinners(ctx context.Context) ([]*model.Winner, error) // ordered by WonAt ascending
	CountDistinctWinners(ctx context.Context) (int, error)

	// UpdateLedger runs fn as one atomic unit against the game state and the
	// winners. Writes made through the LedgerTx are applied only if fn returns nil.
	UpdateLedger(ctx context.Context, fn func(tx LedgerTx) error) error
}

// LedgerTx is the view of storage available inside UpdateLedger
type LedgerTx interface {
	GetGameState(ctx context.Context) (*model.GameState, error)
	SaveGameState(ctx context.Context, state *model.GameState) error
	HasWin(ctx context.Context, playerID model.PlayerID, winType model.WinType) (bool, error)
	AddWinner(ctx context.Context, winner *model.Winner) error // ErrDuplicateWin if already recorded
	CountDistinctWinners(ctx context.Context) (int, error)
}

// Closer is implemented by backends holding external connections
type Closer interface {
	Close() error
}
