package board

import (
	"context"
	"log/slog"

	"github.com/zn-har/Bingo/internal/model"
	"github.com/zn-har/Bingo/internal/storage"
)

// Evaluator turns a player's completed canonical positions into progress
type Evaluator interface {
	Evaluate(layout Layout, completed []int) model.Progress
}

// Config controls how boards are laid out
type Config struct {
	FreePosition int // model.NoFreePosition disables the free cell
	Shuffle      bool
}

// DefaultConfig returns the festival defaults: centre free cell, shuffled boards
func DefaultConfig() Config {
	return Config{
		FreePosition: 12,
		Shuffle:      true,
	}
}

// ServiceInterface defines the board operations used by the API layer
type ServiceInterface interface {
	GetBoard(ctx context.Context, playerID model.PlayerID) (*model.Board, error)
	LayoutFor(playerID model.PlayerID) Layout
	FreePosition() int
}

// Service assembles player boards from tasks, completions and layouts
type Service struct {
	storage   storage.Storage
	evaluator Evaluator
	cfg       Config
	logger    *slog.Logger
}

// New creates a new board Service
func New(storage storage.Storage, evaluator Evaluator, cfg Config, logger *slog.Logger) *Service {
	if !IsValidPosition(cfg.FreePosition) {
		cfg.FreePosition = model.NoFreePosition
	}
	return &Service{
		storage:   storage,
		evaluator: evaluator,
		cfg:       cfg,
		logger:    logger,
	}
}

// Ensure Service implements ServiceInterface
var _ ServiceInterface = (*Service)(nil)

// FreePosition returns the configured free cell, or model.NoFreePosition
func (s *Service) FreePosition() int {
	return s.cfg.FreePosition
}

// LayoutFor returns the player's display layout
func (s *Service) LayoutFor(playerID model.PlayerID) Layout {
	return NewLayout(playerID, s.cfg.FreePosition, s.cfg.Shuffle)
}

// GetBoard returns the player's 25 cells in display order with their progress
func (s *Service) GetBoard(ctx context.Context, playerID model.PlayerID) (*model.Board, error) {
	if _, err := s.storage.GetPlayer(ctx, playerID); err != nil {
		return nil, err
	}

	tasks, err := s.storage.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	byPosition, err := indexTasks(tasks)
	if err != nil {
		s.logger.Warn("task set does not fill the board",
			slog.Int("task_count", len(tasks)),
		)
		return nil, err
	}

	completed, err := s.storage.CompletedPositions(ctx, playerID)
	if err != nil {
		return nil, err
	}

	layout := s.LayoutFor(playerID)
	progress := s.evaluator.Evaluate(layout, completed)

	done := make(map[int]bool, len(completed))
	for _, p := range completed {
		done[p] = true
	}

	cells := make([]model.Cell, model.BoardCells)
	for slot := range cells {
		canonical := layout.Slot(slot)
		task := byPosition[canonical]
		free := canonical == s.cfg.FreePosition
		cells[slot] = model.Cell{
			TaskID:            task.ID,
			Description:       task.Description,
			Position:          slot,
			CanonicalPosition: canonical,
			Completed:         free || done[canonical],
			IsFreeSpace:       free,
		}
	}

	return &model.Board{
		PlayerID: playerID,
		Cells:    cells,
		Progress: progress,
	}, nil
}

// indexTasks maps each canonical position to its task. The set must cover
// every position exactly once.
func indexTasks(tasks []*model.Task) ([model.BoardCells]*model.Task, error) {
	var byPosition [model.BoardCells]*model.Task
	if len(tasks) != model.BoardCells {
		return byPosition, model.ErrBoardIncomplete
	}
	for _, t := range tasks {
		if !IsValidPosition(t.Position) || byPosition[t.Position] != nil {
			return byPosition, model.ErrBoardIncomplete
		}
		byPosition[t.Position] = t
	}
	return byPosition, nil
}
