package sql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/zn-har/Bingo/internal/model"
	"github.com/zn-har/Bingo/internal/storage"
)

// Storage is a relational implementation of the storage interface backed by gorm
type Storage struct {
	db *gorm.DB
}

// New opens the configured database, applies pool settings and migrates the schema
func New(cfg Config, logger *slog.Logger) (*Storage, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case DriverSQLite:
		dialector = sqlite.Open(cfg.DSN)
	case DriverPostgres:
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 newGormLogger(logger, cfg.LogLevel),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	if cfg.Driver == DriverSQLite {
		// SQLite serialises writers; an in-memory database also lives on a
		// single connection.
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	} else {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return NewWithDB(db)
}

// NewWithDB wraps an existing gorm handle and migrates the schema
func NewWithDB(db *gorm.DB) (*Storage, error) {
	if err := db.AutoMigrate(allRows()...); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return &Storage{db: db}, nil
}

// Close closes the underlying connection pool
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// isUniqueViolation reports whether err came from a unique index
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value")
}

// exists runs a count query and reports whether any rows matched
func exists(q *gorm.DB) (bool, error) {
	var n int64
	if err := q.Limit(1).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// Player operations

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) error {
	row := playerRowFromModel(player)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return model.ErrPhoneTaken
		}
		return err
	}
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	var row playerRow
	err := s.db.WithContext(ctx).Where("id = ?", string(id)).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrPlayerNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toModel(), nil
}

func (s *Storage) GetPlayerByPhone(ctx context.Context, phone string) (*model.Player, error) {
	var row playerRow
	err := s.db.WithContext(ctx).Where("phone = ?", phone).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrPlayerNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toModel(), nil
}

// Task operations

func (s *Storage) SaveTasks(ctx context.Context, tasks []*model.Task) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, task := range tasks {
			row := taskRow{ID: int64(task.ID), Description: task.Description, Position: task.Position}
			var err error
			if row.ID == 0 {
				err = tx.Create(&row).Error
			} else {
				err = tx.Save(&row).Error
			}
			if err != nil {
				if isUniqueViolation(err) {
					return model.ErrInvalidTaskSet
				}
				return err
			}
			task.ID = model.TaskID(row.ID)
		}
		return nil
	})
}

func (s *Storage) ListTasks(ctx context.Context) ([]*model.Task, error) {
	var rows []taskRow
	if err := s.db.WithContext(ctx).Order("position asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	tasks := make([]*model.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, row.toModel())
	}
	return tasks, nil
}

func (s *Storage) GetTask(ctx context.Context, id model.TaskID) (*model.Task, error) {
	var row taskRow
	err := s.db.WithContext(ctx).First(&row, int64(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrTaskNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toModel(), nil
}

// Scan operations

func (s *Storage) CreateScan(ctx context.Context, scan *model.ScanRecord, uniqueTarget bool) error {
	if scan.Status == "" {
		scan.Status = model.VerificationPending
	}
	row := scanRowFromModel(scan, uniqueTarget)
	row.ID = 0

	// A shared lock on the game state orders the insert against a ledger
	// update that ends the game.
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		state, err := readGameState(tx, "SHARE")
		if err != nil {
			return err
		}
		if !state.GameActive {
			return model.ErrGameEnded
		}
		return tx.Create(&row).Error
	})
	if err == nil {
		scan.ID = model.ScanID(row.ID)
		return nil
	}
	if errors.Is(err, model.ErrGameEnded) || !isUniqueViolation(err) {
		return err
	}

	// The insert lost to an existing claim; report the one that matches the
	// order the checks are applied in.
	if uniqueTarget {
		dup, qerr := s.HasScannedTarget(ctx, scan.ScannerID, scan.TargetID)
		if qerr != nil {
			return qerr
		}
		if dup {
			return model.ErrDuplicateTarget
		}
	}
	return model.ErrDuplicateTask
}

func (s *Storage) GetScan(ctx context.Context, id model.ScanID) (*model.ScanRecord, error) {
	var row scanRow
	err := s.db.WithContext(ctx).First(&row, int64(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrScanNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toModel(), nil
}

func (s *Storage) ListScansByScanner(ctx context.Context, scannerID model.PlayerID) ([]*model.ScanRecord, error) {
	var rows []scanRow
	err := s.db.WithContext(ctx).
		Where("scanner_id = ?", string(scannerID)).
		Order("timestamp desc, id desc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	scans := make([]*model.ScanRecord, 0, len(rows))
	for _, row := range rows {
		scans = append(scans, row.toModel())
	}
	return scans, nil
}

func (s *Storage) UpdateScanStatus(ctx context.Context, id model.ScanID, status model.VerificationStatus) error {
	res := s.db.WithContext(ctx).Model(&scanRow{}).Where("id = ?", int64(id)).Update("status", string(status))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrScanNotFound
	}
	return nil
}

func (s *Storage) HasScannedTarget(ctx context.Context, scannerID, targetID model.PlayerID) (bool, error) {
	return exists(s.db.WithContext(ctx).Model(&scanRow{}).
		Where("scanner_id = ? AND target_id = ?", string(scannerID), string(targetID)))
}

func (s *Storage) HasCompletedTask(ctx context.Context, scannerID model.PlayerID, taskID model.TaskID) (bool, error) {
	return exists(s.db.WithContext(ctx).Model(&scanRow{}).
		Where("scanner_id = ? AND task_id = ?", string(scannerID), int64(taskID)))
}

func (s *Storage) CompletedPositions(ctx context.Context, scannerID model.PlayerID) ([]int, error) {
	positions := []int{}
	err := s.db.WithContext(ctx).
		Table("scans").
		Joins("JOIN tasks ON tasks.id = scans.task_id").
		Where("scans.scanner_id = ?", string(scannerID)).
		Order("tasks.position asc").
		Pluck("tasks.position", &positions).Error
	if err != nil {
		return nil, err
	}
	return positions, nil
}

// Game state operations

func (s *Storage) GetGameState(ctx context.Context) (*model.GameState, error) {
	return readGameState(s.db.WithContext(ctx), "")
}

func (s *Storage) SaveGameState(ctx context.Context, state *model.GameState) error {
	row := gameStateRowFromModel(state)
	return s.db.WithContext(ctx).Save(&row).Error
}

func (s *Storage) InitGameState(ctx context.Context, state *model.GameState) (bool, error) {
	row := gameStateRowFromModel(state)
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// readGameState loads the singleton, taking a row lock of the given
// strength (UPDATE or SHARE) when one is named
func readGameState(db *gorm.DB, lock string) (*model.GameState, error) {
	if lock != "" {
		db = db.Clauses(clause.Locking{Strength: lock})
	}
	var row gameStateRow
	err := db.First(&row, model.GameStateKey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.NewGameState(time.Time{}), nil
	}
	if err != nil {
		return nil, err
	}
	return row.toModel(), nil
}

// Winner operations

func (s *Storage) ListWinners(ctx context.Context) ([]*model.Winner, error) {
	var rows []winnerRow
	if err := s.db.WithContext(ctx).Order("won_at asc, id asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	winners := make([]*model.Winner, 0, len(rows))
	for _, row := range rows {
		winners = append(winners, row.toModel())
	}
	return winners, nil
}

func (s *Storage) CountDistinctWinners(ctx context.Context) (int, error) {
	return countDistinctWinners(s.db.WithContext(ctx))
}

func countDistinctWinners(db *gorm.DB) (int, error) {
	var n int64
	if err := db.Model(&winnerRow{}).Distinct("player_id").Count(&n).Error; err != nil {
		return 0, err
	}
	return int(n), nil
}

// UpdateLedger runs fn inside a database transaction holding a row lock on
// the game state, so concurrent ledger updates are serialised.
func (s *Storage) UpdateLedger(ctx context.Context, fn func(tx storage.LedgerTx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The lock needs a row to hold on to.
		seed := gameStateRowFromModel(model.NewGameState(time.Time{}))
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return err
		}
		state, err := readGameState(tx, "UPDATE")
		if err != nil {
			return err
		}
		return fn(&ledgerTx{tx: tx, state: state})
	})
}

type ledgerTx struct {
	tx    *gorm.DB
	state *model.GameState
}

func (t *ledgerTx) GetGameState(ctx context.Context) (*model.GameState, error) {
	gs := *t.state
	return &gs, nil
}

func (t *ledgerTx) SaveGameState(ctx context.Context, state *model.GameState) error {
	row := gameStateRowFromModel(state)
	if err := t.tx.Save(&row).Error; err != nil {
		return err
	}
	gs := *state
	t.state = &gs
	return nil
}

func (t *ledgerTx) HasWin(ctx context.Context, playerID model.PlayerID, winType model.WinType) (bool, error) {
	return exists(t.tx.Model(&winnerRow{}).
		Where("player_id = ? AND win_type = ?", string(playerID), string(winType)))
}

func (t *ledgerTx) AddWinner(ctx context.Context, winner *model.Winner) error {
	row := winnerRow{
		PlayerID: string(winner.PlayerID),
		WinType:  string(winner.WinType),
		WonAt:    winner.WonAt,
	}
	// A failed statement would abort a Postgres transaction, so conflicts are
	// skipped and detected through the affected row count.
	res := t.tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrDuplicateWin
	}
	winner.ID = model.WinnerID(row.ID)
	return nil
}

func (t *ledgerTx) CountDistinctWinners(ctx context.Context) (int, error) {
	return countDistinctWinners(t.tx)
}
