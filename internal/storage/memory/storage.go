package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/zn-har/Bingo/internal/model"
	"github.com/zn-har/Bingo/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	players    map[model.PlayerID]*model.Player
	phoneIndex map[string]model.PlayerID

	tasks      map[model.TaskID]*model.Task
	nextTaskID model.TaskID

	scans         map[model.ScanID]*model.ScanRecord
	scansByPlayer map[model.PlayerID][]model.ScanID
	taskClaims    map[taskClaim]model.ScanID
	targetClaims  map[targetClaim]model.ScanID
	nextScanID    model.ScanID

	gameState    *model.GameState
	winners      []*model.Winner
	winKinds     map[model.PlayerID]map[model.WinType]bool
	nextWinnerID model.WinnerID
}

type taskClaim struct {
	scannerID model.PlayerID
	taskID    model.TaskID
}

type targetClaim struct {
	scannerID model.PlayerID
	targetID  model.PlayerID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players:       make(map[model.PlayerID]*model.Player),
		phoneIndex:    make(map[string]model.PlayerID),
		tasks:         make(map[model.TaskID]*model.Task),
		scans:         make(map[model.ScanID]*model.ScanRecord),
		scansByPlayer: make(map[model.PlayerID][]model.ScanID),
		taskClaims:    make(map[taskClaim]model.ScanID),
		targetClaims:  make(map[targetClaim]model.ScanID),
		winKinds:      make(map[model.PlayerID]map[model.WinType]bool),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.phoneIndex[player.Phone]; taken {
		return model.ErrPhoneTaken
	}
	p := *player
	s.players[p.ID] = &p
	s.phoneIndex[p.Phone] = p.ID
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	p := *player
	return &p, nil
}

func (s *Storage) GetPlayerByPhone(ctx context.Context, phone string) (*model.Player, error) {
	s.mu.RLock()
	id, ok := s.phoneIndex[phone]
	s.mu.RUnlock()
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return s.GetPlayer(ctx, id)
}

// Task operations

func (s *Storage) SaveTasks(ctx context.Context, tasks []*model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, task := range tasks {
		if task.ID == 0 {
			s.nextTaskID++
			task.ID = s.nextTaskID
		} else if task.ID > s.nextTaskID {
			s.nextTaskID = task.ID
		}
		t := *task
		s.tasks[t.ID] = &t
	}
	return nil
}

func (s *Storage) ListTasks(ctx context.Context) ([]*model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tasks := make([]*model.Task, 0, len(s.tasks))
	for _, task := range s.tasks {
		t := *task
		tasks = append(tasks, &t)
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].Position < tasks[j].Position
	})
	return tasks, nil
}

func (s *Storage) GetTask(ctx context.Context, id model.TaskID) (*model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.tasks[id]
	if !ok {
		return nil, model.ErrTaskNotFound
	}
	t := *task
	return &t, nil
}

// Scan operations

func (s *Storage) CreateScan(ctx context.Context, scan *model.ScanRecord, uniqueTarget bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.gameStateLocked().GameActive {
		return model.ErrGameEnded
	}
	tc := targetClaim{scannerID: scan.ScannerID, targetID: scan.TargetID}
	if _, exists := s.targetClaims[tc]; exists && uniqueTarget {
		return model.ErrDuplicateTarget
	}
	kc := taskClaim{scannerID: scan.ScannerID, taskID: scan.TaskID}
	if _, exists := s.taskClaims[kc]; exists {
		return model.ErrDuplicateTask
	}

	s.nextScanID++
	scan.ID = s.nextScanID
	if scan.Status == "" {
		scan.Status = model.VerificationPending
	}
	sc := *scan
	s.scans[sc.ID] = &sc
	s.scansByPlayer[sc.ScannerID] = append(s.scansByPlayer[sc.ScannerID], sc.ID)
	s.taskClaims[kc] = sc.ID
	if _, exists := s.targetClaims[tc]; !exists {
		s.targetClaims[tc] = sc.ID
	}
	return nil
}

func (s *Storage) GetScan(ctx context.Context, id model.ScanID) (*model.ScanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	scan, ok := s.scans[id]
	if !ok {
		return nil, model.ErrScanNotFound
	}
	sc := *scan
	return &sc, nil
}

func (s *Storage) ListScansByScanner(ctx context.Context, scannerID model.PlayerID) ([]*model.ScanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.scansByPlayer[scannerID]
	scans := make([]*model.ScanRecord, 0, len(ids))
	for _, id := range ids {
		sc := *s.scans[id]
		scans = append(scans, &sc)
	}
	storage.SortScansNewestFirst(scans)
	return scans, nil
}

func (s *Storage) UpdateScanStatus(ctx context.Context, id model.ScanID, status model.VerificationStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	scan, ok := s.scans[id]
	if !ok {
		return model.ErrScanNotFound
	}
	scan.Status = status
	return nil
}

func (s *Storage) HasScannedTarget(ctx context.Context, scannerID, targetID model.PlayerID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.targetClaims[targetClaim{scannerID: scannerID, targetID: targetID}]
	return ok, nil
}

func (s *Storage) HasCompletedTask(ctx context.Context, scannerID model.PlayerID, taskID model.TaskID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.taskClaims[taskClaim{scannerID: scannerID, taskID: taskID}]
	return ok, nil
}

func (s *Storage) CompletedPositions(ctx context.Context, scannerID model.PlayerID) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	positions := make([]int, 0, len(s.scansByPlayer[scannerID]))
	for _, id := range s.scansByPlayer[scannerID] {
		if task, ok := s.tasks[s.scans[id].TaskID]; ok {
			positions = append(positions, task.Position)
		}
	}
	sort.Ints(positions)
	return positions, nil
}

// Game state operations

func (s *Storage) GetGameState(ctx context.Context) (*model.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gameStateLocked(), nil
}

func (s *Storage) SaveGameState(ctx context.Context, state *model.GameState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	gs := *state
	s.gameState = &gs
	return nil
}

func (s *Storage) InitGameState(ctx context.Context, state *model.GameState) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gameState != nil {
		return false, nil
	}
	gs := *state
	s.gameState = &gs
	return true, nil
}

func (s *Storage) gameStateLocked() *model.GameState {
	if s.gameState == nil {
		return model.NewGameState(time.Time{})
	}
	gs := *s.gameState
	return &gs
}

// Winner operations

func (s *Storage) ListWinners(ctx context.Context) ([]*model.Winner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	winners := make([]*model.Winner, 0, len(s.winners))
	for _, w := range s.winners {
		cp := *w
		winners = append(winners, &cp)
	}
	storage.SortWinnersByTime(winners)
	return winners, nil
}

func (s *Storage) CountDistinctWinners(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.winKinds), nil
}

func (s *Storage) UpdateLedger(ctx context.Context, fn func(tx storage.LedgerTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &ledgerTx{s: s}
	if err := fn(tx); err != nil {
		return err
	}

	if tx.state != nil {
		s.gameState = tx.state
	}
	for _, w := range tx.winners {
		s.nextWinnerID++
		w.ID = s.nextWinnerID
		cp := *w
		s.winners = append(s.winners, &cp)
		kinds, ok := s.winKinds[w.PlayerID]
		if !ok {
			kinds = make(map[model.WinType]bool)
			s.winKinds[w.PlayerID] = kinds
		}
		kinds[w.WinType] = true
	}
	return nil
}

// ledgerTx buffers writes until the ledger function succeeds. The storage
// lock is held by UpdateLedger for its whole lifetime.
type ledgerTx struct {
	s       *Storage
	state   *model.GameState
	winners []*model.Winner
}

func (t *ledgerTx) GetGameState(ctx context.Context) (*model.GameState, error) {
	if t.state != nil {
		gs := *t.state
		return &gs, nil
	}
	return t.s.gameStateLocked(), nil
}

func (t *ledgerTx) SaveGameState(ctx context.Context, state *model.GameState) error {
	gs := *state
	t.state = &gs
	return nil
}

func (t *ledgerTx) HasWin(ctx context.Context, playerID model.PlayerID, winType model.WinType) (bool, error) {
	if t.s.winKinds[playerID][winType] {
		return true, nil
	}
	for _, w := range t.winners {
		if w.PlayerID == playerID && w.WinType == winType {
			return true, nil
		}
	}
	return false, nil
}

func (t *ledgerTx) AddWinner(ctx context.Context, winner *model.Winner) error {
	if has, _ := t.HasWin(ctx, winner.PlayerID, winner.WinType); has {
		return model.ErrDuplicateWin
	}
	t.winners = append(t.winners, winner)
	return nil
}

func (t *ledgerTx) CountDistinctWinners(ctx context.Context) (int, error) {
	count := len(t.s.winKinds)
	seen := make(map[model.PlayerID]bool)
	for _, w := range t.winners {
		if _, recorded := t.s.winKinds[w.PlayerID]; !recorded && !seen[w.PlayerID] {
			seen[w.PlayerID] = true
			count++
		}
	}
	return count, nil
}
