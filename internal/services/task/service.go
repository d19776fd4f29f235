package task

import (
	"context"
	"log/slog"

	"github.com/zn-har/Bingo/internal/model"
	"github.com/zn-har/Bingo/internal/services/board"
	"github.com/zn-har/Bingo/internal/storage"
)

// ServiceInterface defines the task operations used by the API layer
type ServiceInterface interface {
	List(ctx context.Context) ([]*model.Task, error)
	SeedDefaults(ctx context.Context) (bool, error)
}

// Service manages the board's task set
type Service struct {
	storage storage.Storage
	logger  *slog.Logger
}

// New creates a new task Service
func New(storage storage.Storage, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// Ensure Service implements ServiceInterface
var _ ServiceInterface = (*Service)(nil)

// List returns all tasks ordered by canonical position
func (s *Service) List(ctx context.Context) ([]*model.Task, error) {
	return s.storage.ListTasks(ctx)
}

// SeedDefaults stores the default 25-task set when no tasks exist yet.
// It reports whether anything was written.
func (s *Service) SeedDefaults(ctx context.Context) (bool, error) {
	existing, err := s.storage.ListTasks(ctx)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}

	if err := s.Replace(ctx, model.DefaultTasks()); err != nil {
		return false, err
	}
	s.logger.Info("default tasks seeded", slog.Int("count", model.BoardCells))
	return true, nil
}

// Replace validates and stores a full task set
func (s *Service) Replace(ctx context.Context, tasks []*model.Task) error {
	if err := Validate(tasks); err != nil {
		return err
	}
	return s.storage.SaveTasks(ctx, tasks)
}

// Validate checks that tasks cover every board position exactly once
func Validate(tasks []*model.Task) error {
	if len(tasks) != model.BoardCells {
		return model.ErrInvalidTaskSet
	}
	var seen [model.BoardCells]bool
	for _, t := range tasks {
		if !board.IsValidPosition(t.Position) || seen[t.Position] || t.Description == "" {
			return model.ErrInvalidTaskSet
		}
		seen[t.Position] = true
	}
	return nil
}
