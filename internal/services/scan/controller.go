package scan

import (
	"context"
	"errors"
	"log/slog"

	"github.com/zn-har/Bingo/internal/dependencies/clock"
	"github.com/zn-har/Bingo/internal/model"
	"github.com/zn-har/Bingo/internal/services/board"
	"github.com/zn-har/Bingo/internal/services/ledger"
	"github.com/zn-har/Bingo/internal/storage"
)

// Submission is a scan as reported by a player's device
type Submission struct {
	ScannerID model.PlayerID
	TargetID  model.PlayerID
	TaskID    model.TaskID
}

// Result is the outcome of an accepted scan
type Result struct {
	Scan        *model.ScanRecord
	Scanner     *model.Player
	Target      *model.Player
	Task        *model.Task
	Progress    model.Progress
	NewWins     []model.WinType
	GameActive  bool
	WinnerCount int
	MaxWinners  int
	GameEnded   bool // this scan closed the game
}

// ControllerInterface defines the scan operations used by the API layer
type ControllerInterface interface {
	Submit(ctx context.Context, sub Submission) (*Result, error)
	Get(ctx context.Context, id model.ScanID) (*model.ScanRecord, error)
	UpdateStatus(ctx context.Context, id model.ScanID, status model.VerificationStatus) (*model.ScanRecord, error)
}

// Controller validates scans and drives progress evaluation and win recording
type Controller struct {
	storage   storage.Storage
	boards    board.ServiceInterface
	evaluator board.Evaluator
	ledger    ledger.ServiceInterface
	clock     clock.Clock
	logger    *slog.Logger
}

// NewController creates a new scan Controller
func NewController(
	storage storage.Storage,
	boards board.ServiceInterface,
	evaluator board.Evaluator,
	ledger ledger.ServiceInterface,
	clock clock.Clock,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage:   storage,
		boards:    boards,
		evaluator: evaluator,
		ledger:    ledger,
		clock:     clock,
		logger:    logger,
	}
}

// Ensure Controller implements ControllerInterface
var _ ControllerInterface = (*Controller)(nil)

// Submit validates a scan and, if accepted, records it and any wins it
// produces. Checks run in a fixed order: game active, self scan, scanner,
// target, task, repeated target, repeated task. A rejected scan writes
// nothing.
func (c *Controller) Submit(ctx context.Context, sub Submission) (*Result, error) {
	state, err := c.storage.GetGameState(ctx)
	if err != nil {
		return nil, err
	}
	if !state.GameActive {
		return nil, model.ErrGameEnded
	}

	if sub.ScannerID == sub.TargetID {
		return nil, model.ErrSelfScan
	}

	scanner, err := c.storage.GetPlayer(ctx, sub.ScannerID)
	if err != nil {
		return nil, notFoundAs(err, model.ErrPlayerNotFound, model.ErrScannerNotFound)
	}
	target, err := c.storage.GetPlayer(ctx, sub.TargetID)
	if err != nil {
		return nil, notFoundAs(err, model.ErrPlayerNotFound, model.ErrTargetNotFound)
	}
	task, err := c.storage.GetTask(ctx, sub.TaskID)
	if err != nil {
		return nil, err
	}

	uniqueTarget := !state.AllowDuplicateTargets
	if uniqueTarget {
		scanned, err := c.storage.HasScannedTarget(ctx, scanner.ID, target.ID)
		if err != nil {
			return nil, err
		}
		if scanned {
			return nil, model.ErrDuplicateTarget
		}
	}
	done, err := c.storage.HasCompletedTask(ctx, scanner.ID, task.ID)
	if err != nil {
		return nil, err
	}
	if done {
		return nil, model.ErrDuplicateTask
	}

	// The store re-checks both rules, so a concurrent duplicate that got
	// past the reads above is still rejected here.
	record := &model.ScanRecord{
		ScannerID: scanner.ID,
		TargetID:  target.ID,
		TaskID:    task.ID,
		Timestamp: c.clock.Now(),
		Status:    model.VerificationPending,
	}
	if err := c.storage.CreateScan(ctx, record, uniqueTarget); err != nil {
		return nil, err
	}

	completed, err := c.storage.CompletedPositions(ctx, scanner.ID)
	if err != nil {
		return nil, err
	}
	progress := c.evaluator.Evaluate(c.boards.LayoutFor(scanner.ID), completed)

	recorded, err := c.ledger.Record(ctx, scanner.ID, progress)
	if err != nil {
		return nil, err
	}

	c.logger.Info("scan accepted",
		slog.Int64("scan_id", int64(record.ID)),
		slog.String("scanner_id", string(scanner.ID)),
		slog.String("target_id", string(target.ID)),
		slog.Int64("task_id", int64(task.ID)),
		slog.Int("completed_lines", progress.CompletedLines),
	)

	return &Result{
		Scan:        record,
		Scanner:     scanner,
		Target:      target,
		Task:        task,
		Progress:    progress,
		NewWins:     recorded.NewWins,
		GameActive:  recorded.GameActive,
		WinnerCount: recorded.WinnerCount,
		MaxWinners:  recorded.MaxWinners,
		GameEnded:   recorded.GameEnded,
	}, nil
}

// Get returns a scan by ID
func (c *Controller) Get(ctx context.Context, id model.ScanID) (*model.ScanRecord, error) {
	return c.storage.GetScan(ctx, id)
}

// UpdateStatus sets the advisory verification status of a scan. It never
// changes progress or wins.
func (c *Controller) UpdateStatus(ctx context.Context, id model.ScanID, status model.VerificationStatus) (*model.ScanRecord, error) {
	if !status.IsValid() {
		return nil, model.ErrInvalidStatus
	}
	if err := c.storage.UpdateScanStatus(ctx, id, status); err != nil {
		return nil, err
	}
	c.logger.Info("scan status updated",
		slog.Int64("scan_id", int64(id)),
		slog.String("status", string(status)),
	)
	return c.storage.GetScan(ctx, id)
}

// notFoundAs replaces a generic not-found error with a role-specific one
func notFoundAs(err, generic, specific error) error {
	if errors.Is(err, generic) {
		return specific
	}
	return err
}
