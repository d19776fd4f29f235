package game

import (
	"context"
	"errors"
	"log/slog"

	"github.com/zn-har/Bingo/internal/dependencies/clock"
	"github.com/zn-har/Bingo/internal/model"
	"github.com/zn-har/Bingo/internal/storage"
)

// Status is the game state together with the current distinct winner count
type Status struct {
	State       *model.GameState
	WinnerCount int
}

// WinnerEntry is a winner joined with the player's display name
type WinnerEntry struct {
	Winner     *model.Winner
	PlayerName string
}

// ServiceInterface defines the game-state operations used by the API layer
type ServiceInterface interface {
	Status(ctx context.Context) (*Status, error)
	Update(ctx context.Context, update model.GameStateUpdate) (*Status, error)
	Winners(ctx context.Context) ([]WinnerEntry, error)
}

// Service owns the singleton game state and the winners list
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new game Service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger,
	}
}

// Ensure Service implements ServiceInterface
var _ ServiceInterface = (*Service)(nil)

// Init writes the initial game state unless one already exists
func (s *Service) Init(ctx context.Context, maxWinners int, allowDuplicateTargets bool) error {
	if maxWinners < 1 {
		return model.ErrInvalidMaxWinners
	}
	state := model.NewGameState(s.clock.Now())
	state.MaxWinners = maxWinners
	state.AllowDuplicateTargets = allowDuplicateTargets

	created, err := s.storage.InitGameState(ctx, state)
	if err != nil {
		return err
	}
	if created {
		s.logger.Info("game state initialised",
			slog.Int("max_winners", maxWinners),
			slog.Bool("allow_duplicate_targets", allowDuplicateTargets),
		)
	}
	return nil
}

// Status returns the current game state and winner count
func (s *Service) Status(ctx context.Context) (*Status, error) {
	state, err := s.storage.GetGameState(ctx)
	if err != nil {
		return nil, err
	}
	count, err := s.storage.CountDistinctWinners(ctx)
	if err != nil {
		return nil, err
	}
	return &Status{State: state, WinnerCount: count}, nil
}

// Update applies an admin override. It runs as a ledger update so it
// cannot interleave with win recording. A game whose winner quota is met
// is left inactive whatever the override asks for.
func (s *Service) Update(ctx context.Context, update model.GameStateUpdate) (*Status, error) {
	if update.MaxWinners != nil && *update.MaxWinners < 1 {
		return nil, model.ErrInvalidMaxWinners
	}

	var status *Status
	err := s.storage.UpdateLedger(ctx, func(tx storage.LedgerTx) error {
		state, err := tx.GetGameState(ctx)
		if err != nil {
			return err
		}
		count, err := tx.CountDistinctWinners(ctx)
		if err != nil {
			return err
		}
		update.Apply(state)
		// The game cannot stay open once the quota is met
		if state.QuotaReached(count) {
			state.GameActive = false
		}
		state.UpdatedAt = s.clock.Now()
		if err := tx.SaveGameState(ctx, state); err != nil {
			return err
		}
		status = &Status{State: state, WinnerCount: count}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("game state updated",
		slog.Bool("game_active", status.State.GameActive),
		slog.Int("max_winners", status.State.MaxWinners),
		slog.Bool("allow_duplicate_targets", status.State.AllowDuplicateTargets),
	)
	return status, nil
}

// Winners lists every recorded win, oldest first
func (s *Service) Winners(ctx context.Context) ([]WinnerEntry, error) {
	winners, err := s.storage.ListWinners(ctx)
	if err != nil {
		return nil, err
	}

	names := make(map[model.PlayerID]string)
	entries := make([]WinnerEntry, 0, len(winners))
	for _, w := range winners {
		name, ok := names[w.PlayerID]
		if !ok {
			p, err := s.storage.GetPlayer(ctx, w.PlayerID)
			switch {
			case err == nil:
				name = p.Name
			case errors.Is(err, model.ErrPlayerNotFound):
			default:
				return nil, err
			}
			names[w.PlayerID] = name
		}
		entries = append(entries, WinnerEntry{Winner: w, PlayerName: name})
	}
	return entries, nil
}
