package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zn-har/Bingo/internal/model"
	"github.com/zn-har/Bingo/internal/storage"
)

// ErrContention is returned when a transaction keeps losing its optimistic
// lock to concurrent writers
var ErrContention = errors.New("transaction retries exhausted")

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	// The phone index doubles as the uniqueness guard. It is written in the
	// same MULTI as the player, so a lookup by phone never sees a dangling id.
	phoneKey := phoneIndexKey(player.Phone)
	return s.watch(ctx, func(tx *redis.Tx) error {
		taken, err := tx.Exists(ctx, phoneKey).Result()
		if err != nil {
			return err
		}
		if taken > 0 {
			return model.ErrPhoneTaken
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, playerKey(player.ID), data, 0)
			pipe.Set(ctx, phoneKey, string(player.ID), 0)
			return nil
		})
		return err
	}, phoneKey)
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	var player model.Player
	if err := s.getJSON(ctx, playerKey(id), &player); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}
	return &player, nil
}

func (s *Storage) GetPlayerByPhone(ctx context.Context, phone string) (*model.Player, error) {
	// Look up player ID from phone index
	playerID, err := s.client.Get(ctx, phoneIndexKey(phone)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	return s.GetPlayer(ctx, model.PlayerID(playerID))
}

// Task operations

func (s *Storage) SaveTasks(ctx context.Context, tasks []*model.Task) error {
	values := make([]any, 0, 2*len(tasks))
	for _, task := range tasks {
		if task.ID == 0 {
			id, err := s.client.Incr(ctx, sequenceKey("task")).Result()
			if err != nil {
				return err
			}
			task.ID = model.TaskID(id)
		}
		data, err := json.Marshal(task)
		if err != nil {
			return err
		}
		values = append(values, strconv.FormatInt(int64(task.ID), 10), data)
	}
	if len(values) == 0 {
		return nil
	}
	return s.client.HSet(ctx, tasksKey(), values...).Err()
}

func (s *Storage) ListTasks(ctx context.Context) ([]*model.Task, error) {
	raw, err := s.client.HGetAll(ctx, tasksKey()).Result()
	if err != nil {
		return nil, err
	}

	tasks := make([]*model.Task, 0, len(raw))
	for _, data := range raw {
		var task model.Task
		if err := json.Unmarshal([]byte(data), &task); err != nil {
			return nil, err
		}
		tasks = append(tasks, &task)
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].Position < tasks[j].Position
	})
	return tasks, nil
}

func (s *Storage) GetTask(ctx context.Context, id model.TaskID) (*model.Task, error) {
	data, err := s.client.HGet(ctx, tasksKey(), strconv.FormatInt(int64(id), 10)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrTaskNotFound
		}
		return nil, err
	}

	var task model.Task
	if err := json.Unmarshal(data, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// Scan operations

// CreateScan checks the game is active and both uniqueness guards under
// WATCH on the game state and the scanner's task and target sets, then
// writes the record and the claims in one MULTI/EXEC. A concurrent scan by
// the same scanner or a ledger commit aborts the EXEC and the checks run
// again against the committed data.
func (s *Storage) CreateScan(ctx context.Context, scan *model.ScanRecord, uniqueTarget bool) error {
	targetsKey := scannerTargetsKey(scan.ScannerID)
	tasksKey := scannerTasksKey(scan.ScannerID)
	taskMember := strconv.FormatInt(int64(scan.TaskID), 10)

	return s.watch(ctx, func(tx *redis.Tx) error {
		state, err := readGameState(ctx, tx)
		if err != nil {
			return err
		}
		if !state.GameActive {
			return model.ErrGameEnded
		}
		if uniqueTarget {
			seen, err := tx.SIsMember(ctx, targetsKey, string(scan.TargetID)).Result()
			if err != nil {
				return err
			}
			if seen {
				return model.ErrDuplicateTarget
			}
		}
		done, err := tx.SIsMember(ctx, tasksKey, taskMember).Result()
		if err != nil {
			return err
		}
		if done {
			return model.ErrDuplicateTask
		}

		id, err := tx.Incr(ctx, sequenceKey("scan")).Result()
		if err != nil {
			return err
		}
		record := *scan
		record.ID = model.ScanID(id)
		if record.Status == "" {
			record.Status = model.VerificationPending
		}
		data, err := json.Marshal(record)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, scanKey(record.ID), data, 0)
			pipe.SAdd(ctx, scansByScannerKey(record.ScannerID), strconv.FormatInt(id, 10))
			pipe.SAdd(ctx, tasksKey, taskMember)
			pipe.SAdd(ctx, targetsKey, string(record.TargetID))
			return nil
		})
		if err != nil {
			return err
		}
		*scan = record
		return nil
	}, gameStateKey(), targetsKey, tasksKey)
}

func (s *Storage) GetScan(ctx context.Context, id model.ScanID) (*model.ScanRecord, error) {
	var scan model.ScanRecord
	if err := s.getJSON(ctx, scanKey(id), &scan); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrScanNotFound
		}
		return nil, err
	}
	return &scan, nil
}

func (s *Storage) ListScansByScanner(ctx context.Context, scannerID model.PlayerID) ([]*model.ScanRecord, error) {
	ids, err := s.client.SMembers(ctx, scansByScannerKey(scannerID)).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*model.ScanRecord{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = scanKeyFromString(id)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	scans := make([]*model.ScanRecord, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue // Scan key missing
		}
		var scan model.ScanRecord
		if err := json.Unmarshal([]byte(str), &scan); err != nil {
			return nil, err
		}
		scans = append(scans, &scan)
	}
	storage.SortScansNewestFirst(scans)
	return scans, nil
}

func (s *Storage) UpdateScanStatus(ctx context.Context, id model.ScanID, status model.VerificationStatus) error {
	scan, err := s.GetScan(ctx, id)
	if err != nil {
		return err
	}
	scan.Status = status
	data, err := json.Marshal(scan)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, scanKey(id), data, 0).Err()
}

func (s *Storage) HasScannedTarget(ctx context.Context, scannerID, targetID model.PlayerID) (bool, error) {
	return s.client.SIsMember(ctx, scannerTargetsKey(scannerID), string(targetID)).Result()
}

func (s *Storage) HasCompletedTask(ctx context.Context, scannerID model.PlayerID, taskID model.TaskID) (bool, error) {
	return s.client.SIsMember(ctx, scannerTasksKey(scannerID), strconv.FormatInt(int64(taskID), 10)).Result()
}

func (s *Storage) CompletedPositions(ctx context.Context, scannerID model.PlayerID) ([]int, error) {
	taskIDs, err := s.client.SMembers(ctx, scannerTasksKey(scannerID)).Result()
	if err != nil {
		return nil, err
	}
	if len(taskIDs) == 0 {
		return []int{}, nil
	}

	values, err := s.client.HMGet(ctx, tasksKey(), taskIDs...).Result()
	if err != nil {
		return nil, err
	}

	positions := make([]int, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue // Task was removed
		}
		var task model.Task
		if err := json.Unmarshal([]byte(str), &task); err != nil {
			return nil, err
		}
		positions = append(positions, task.Position)
	}
	sort.Ints(positions)
	return positions, nil
}

// Game state operations

func (s *Storage) GetGameState(ctx context.Context) (*model.GameState, error) {
	return readGameState(ctx, s.client)
}

func (s *Storage) SaveGameState(ctx context.Context, state *model.GameState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, gameStateKey(), data, 0).Err()
}

func (s *Storage) InitGameState(ctx context.Context, state *model.GameState) (bool, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return false, err
	}
	return s.client.SetNX(ctx, gameStateKey(), data, 0).Result()
}

// getter is satisfied by both the client and a watched transaction
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// readGameState loads the singleton through either source, so the ledger can
// read it on its watched connection
func readGameState(ctx context.Context, c getter) (*model.GameState, error) {
	data, err := c.Get(ctx, gameStateKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.NewGameState(time.Time{}), nil
		}
		return nil, err
	}

	var state model.GameState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// Winner operations

func (s *Storage) ListWinners(ctx context.Context) ([]*model.Winner, error) {
	ids, err := s.client.LRange(ctx, winnersKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*model.Winner{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = winnerKeyFromString(id)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	winners := make([]*model.Winner, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var w model.Winner
		if err := json.Unmarshal([]byte(str), &w); err != nil {
			return nil, err
		}
		winners = append(winners, &w)
	}
	storage.SortWinnersByTime(winners)
	return winners, nil
}

func (s *Storage) CountDistinctWinners(ctx context.Context) (int, error) {
	n, err := s.client.SCard(ctx, winnerPlayersKey()).Result()
	return int(n), err
}

// UpdateLedger runs fn under WATCH on the game state and the ledger version
// key, then commits its buffered writes in one MULTI/EXEC. A commit by any
// other writer in between aborts the EXEC and fn is run again.
func (s *Storage) UpdateLedger(ctx context.Context, fn func(tx storage.LedgerTx) error) error {
	return s.watch(ctx, func(tx *redis.Tx) error {
		lt := &ledgerTx{tx: tx}
		if err := fn(lt); err != nil {
			return err
		}
		return lt.commit(ctx)
	}, gameStateKey(), ledgerVersionKey())
}

// watch runs fn under WATCH on keys, retrying while a concurrent writer
// invalidates the transaction
func (s *Storage) watch(ctx context.Context, fn func(tx *redis.Tx) error, keys ...string) error {
	for attempt := 0; attempt <= s.cfg.LedgerRetries; attempt++ {
		err := s.client.Watch(ctx, fn, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return ErrContention
}

// ledgerTx reads through the watched connection and buffers writes
type ledgerTx struct {
	tx      *redis.Tx
	state   *model.GameState
	winners []*model.Winner
}

func (t *ledgerTx) GetGameState(ctx context.Context) (*model.GameState, error) {
	if t.state != nil {
		gs := *t.state
		return &gs, nil
	}
	return readGameState(ctx, t.tx)
}

func (t *ledgerTx) SaveGameState(ctx context.Context, state *model.GameState) error {
	gs := *state
	t.state = &gs
	return nil
}

func (t *ledgerTx) HasWin(ctx context.Context, playerID model.PlayerID, winType model.WinType) (bool, error) {
	for _, w := range t.winners {
		if w.PlayerID == playerID && w.WinType == winType {
			return true, nil
		}
	}
	return t.tx.SIsMember(ctx, playerWinsKey(playerID), string(winType)).Result()
}

func (t *ledgerTx) AddWinner(ctx context.Context, winner *model.Winner) error {
	has, err := t.HasWin(ctx, winner.PlayerID, winner.WinType)
	if err != nil {
		return err
	}
	if has {
		return model.ErrDuplicateWin
	}
	t.winners = append(t.winners, winner)
	return nil
}

func (t *ledgerTx) CountDistinctWinners(ctx context.Context) (int, error) {
	n, err := t.tx.SCard(ctx, winnerPlayersKey()).Result()
	if err != nil {
		return 0, err
	}
	count := int(n)

	seen := make(map[model.PlayerID]bool)
	for _, w := range t.winners {
		if seen[w.PlayerID] {
			continue
		}
		seen[w.PlayerID] = true
		recorded, err := t.tx.SIsMember(ctx, winnerPlayersKey(), string(w.PlayerID)).Result()
		if err != nil {
			return 0, err
		}
		if !recorded {
			count++
		}
	}
	return count, nil
}

func (t *ledgerTx) commit(ctx context.Context) error {
	if t.state == nil && len(t.winners) == 0 {
		return nil
	}

	payloads := make([][]byte, len(t.winners))
	for i, w := range t.winners {
		id, err := t.tx.Incr(ctx, sequenceKey("winner")).Result()
		if err != nil {
			return err
		}
		w.ID = model.WinnerID(id)
		data, err := json.Marshal(w)
		if err != nil {
			return err
		}
		payloads[i] = data
	}

	var stateData []byte
	if t.state != nil {
		data, err := json.Marshal(t.state)
		if err != nil {
			return err
		}
		stateData = data
	}

	_, err := t.tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, w := range t.winners {
			pipe.Set(ctx, winnerKey(w.ID), payloads[i], 0)
			pipe.RPush(ctx, winnersKey(), strconv.FormatInt(int64(w.ID), 10))
			pipe.SAdd(ctx, winnerPlayersKey(), string(w.PlayerID))
			pipe.SAdd(ctx, playerWinsKey(w.PlayerID), string(w.WinType))
		}
		if stateData != nil {
			pipe.Set(ctx, gameStateKey(), stateData, 0)
		}
		pipe.Incr(ctx, ledgerVersionKey())
		return nil
	})
	return err
}

// getJSON loads key and decodes it into dst; redis.Nil is passed through
func (s *Storage) getJSON(ctx context.Context, key string, dst any) error {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}
