package ledger

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/zn-har/Bingo/internal/dependencies/clock"
	"github.com/zn-har/Bingo/internal/model"
	"github.com/zn-har/Bingo/internal/storage"
)

// Result describes what a single Record call changed
type Result struct {
	NewWins     []model.WinType
	GameActive  bool
	WinnerCount int
	MaxWinners  int
	// GameEnded is set when this call closed the game
	GameEnded bool
}

// ServiceInterface defines the ledger operations used by scan intake
type ServiceInterface interface {
	Record(ctx context.Context, playerID model.PlayerID, progress model.Progress) (*Result, error)
}

// Service records wins and closes the game once the winner quota is met
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new ledger Service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger,
	}
}

// Ensure Service implements ServiceInterface
var _ ServiceInterface = (*Service)(nil)

// Record stores every win type in progress that the player does not hold
// yet, then deactivates the game if the distinct winner count has reached
// the quota. All of it happens in one storage ledger update, so the count
// that decides deactivation includes every concurrently committed win.
// Nothing is recorded once the game is inactive.
func (s *Service) Record(ctx context.Context, playerID model.PlayerID, progress model.Progress) (*Result, error) {
	var result *Result
	err := s.storage.UpdateLedger(ctx, func(tx storage.LedgerTx) error {
		// The closure may run more than once; start from scratch each time.
		result = &Result{NewWins: []model.WinType{}}

		state, err := tx.GetGameState(ctx)
		if err != nil {
			return err
		}
		result.MaxWinners = state.MaxWinners
		count, err := tx.CountDistinctWinners(ctx)
		if err != nil {
			return err
		}
		result.WinnerCount = count
		if !state.GameActive {
			return nil
		}

		now := s.clock.Now()
		if state.QuotaReached(count) {
			// An admin override left the game open with the quota already met
			return s.endGame(ctx, tx, state, now, result)
		}

		for _, winType := range progress.WinTypes {
			winner := &model.Winner{PlayerID: playerID, WinType: winType, WonAt: now}
			err := tx.AddWinner(ctx, winner)
			if errors.Is(err, model.ErrDuplicateWin) {
				continue
			}
			if err != nil {
				return err
			}
			result.NewWins = append(result.NewWins, winType)
		}

		count, err = tx.CountDistinctWinners(ctx)
		if err != nil {
			return err
		}
		result.WinnerCount = count
		result.GameActive = true

		if state.QuotaReached(count) {
			return s.endGame(ctx, tx, state, now, result)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("failed to update win ledger",
			slog.String("player_id", string(playerID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	if len(result.NewWins) > 0 {
		s.logger.Info("wins recorded",
			slog.String("player_id", string(playerID)),
			slog.Any("win_types", result.NewWins),
			slog.Int("winner_count", result.WinnerCount),
		)
	}
	if result.GameEnded {
		s.logger.Info("winner quota reached, game ended",
			slog.Int("winner_count", result.WinnerCount),
		)
	}
	return result, nil
}

func (s *Service) endGame(ctx context.Context, tx storage.LedgerTx, state *model.GameState, now time.Time, result *Result) error {
	state.GameActive = false
	state.UpdatedAt = now
	if err := tx.SaveGameState(ctx, state); err != nil {
		return err
	}
	result.GameActive = false
	result.GameEnded = true
	return nil
}
